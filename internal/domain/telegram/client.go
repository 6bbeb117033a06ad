package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending messages via a Telegram bot.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}

// Callback uniques of the attendance sheet buttons.
const (
	CallbackOpenSheet   = "att_open"   // data: session id
	CallbackTap         = "att_tap"    // data: session id | fincode
	CallbackSaveSheet   = "att_save"   // data: session id
	CallbackReloadSheet = "att_reload" // data: session id
	CallbackCancelSheet = "att_cancel" // data: session id
)
