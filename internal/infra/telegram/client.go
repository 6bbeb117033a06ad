// internal/infra/telegram/client.go
package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface on top of a telebot bot.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends text to a chat. Coaches are reached in their private chat,
// whose ID equals their user ID.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	if _, err := tba.bot.Send(telebot.ChatID(recipientChatID), text, options); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", recipientChatID, err)
	}
	return nil
}
