// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"team_attendance_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const coachHelp = "`/next`\n - Next meets and sessions.\n\n" +
	"`/sessions [YYYY-MM-DD]`\n - Sessions of a day with buttons to take attendance.\n\n" +
	"`/week [YYYY-MM-DD]`\n - Sessions of the week.\n\n" +
	"`/add_session <date> <start> <end> <group> <Swim|Gym> [title]`\n - Schedule a session.\n\n" +
	"`/edit_session <id> key=value...`\n - Change a session. Keys: title, date, start, end, group, type, description, volume, location, pool, length.\n\n" +
	"`/delete_session <id>`\n - Delete a session and its attendance.\n\n" +
	"`/add_meet <date> [end] name=... [place=...] [course=SCM|LCM] [groups=A,B]`\n - Put a meet on the calendar.\n\n" +
	"`/delete_meet <id>`\n - Remove a meet.\n\n" +
	"`/stats [season] [Swim|Gym|all] [group|all]`\n - Season attendance table.\n\n" +
	"`/trend <fincode> [season] [Swim|Gym|all]`\n - Monthly attendance of an athlete.\n\n" +
	"`/roster <group> [season]`\n - Athletes of a group.\n\n" +
	"`/athlete <fincode>`\n - Details of one athlete.\n\n" +
	"`/seasons`\n - Known seasons.\n\n"

const adminHelp = "`/athlete_group <fincode> <group> [season]`\n - Move an athlete to a group.\n\n" +
	"`/rename_athlete <fincode> <name>`\n - Change an athlete's name.\n\n" +
	"`/edit_athlete <fincode> [birthdate=YYYY-MM-DD] [gender=...] [email=...] [phone=...]`\n - Change personal details, an empty value clears the field.\n\n" +
	"`/remove_athlete <fincode>`\n - Remove an athlete from the team.\n\n"

func RegisterBotCommands(
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID and coach IDs
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hi %s! You are the team admin. Use /help for the list of commands.", c.Sender().FirstName))
		}
		if cfg.IsCoach(senderID) {
			logCtx.Info("User identified as Coach")
			return c.Send(fmt.Sprintf("Hi %s! I keep track of training attendance. Use /sessions to take attendance for today.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send(fmt.Sprintf("Hi! I am the team attendance bot. Ask the admin to add your Telegram ID (%d) to the coaches.", senderID))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		var helpText strings.Builder
		switch {
		case senderID == cfg.AdminTelegramID:
			logCtx.Info("User identified as Admin, sending admin help.")
			helpText.WriteString("Coach and admin commands:\n\n")
			helpText.WriteString(coachHelp)
			helpText.WriteString(adminHelp)
		case cfg.IsCoach(senderID):
			logCtx.Info("User identified as Coach, sending coach help.")
			helpText.WriteString("Coach commands:\n\n")
			helpText.WriteString(coachHelp)
		default:
			logCtx.Info("User is unknown, sending restricted help.")
			return c.Send("No commands are available to you. Ask the admin to add you as a coach.")
		}
		helpText.WriteString("`/help`\n - Show this message.\n\n")
		helpText.WriteString("On a sheet, tap an athlete to cycle ⬜ not set → ✅ present → 🟡 justified → ❌ absent, then Save.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
