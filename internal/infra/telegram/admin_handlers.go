package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"team_attendance_bot/internal/app"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, athlete service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, athleteService *app.AthleteService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/athlete_group", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/athlete_group",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		args := c.Args()
		// Expected format: /athlete_group <fincode> <group> [season]
		if len(args) < 2 || len(args) > 3 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Usage: /athlete_group <fincode> <group> [season]")
		}

		fincode, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: fincode must be a number.")
		}
		season := argAt(args, 2)
		handlerLogger = handlerLogger.WithField("fincode", fincode)

		updated, err := athleteService.AssignGroup(ctx, c.Sender().ID, fincode, args[1], season)
		if err != nil {
			return replyAdminError(c, handlerLogger, err, fincode)
		}
		if season == "" {
			season = athleteService.CurrentSeason()
		}
		return c.Send(fmt.Sprintf("%s (%d) is now in group %s for %s.", updated.Name, updated.Fincode, updated.Groups, season))
	})

	b.Handle("/rename_athlete", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/rename_athlete",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		args := c.Args()
		// Expected format: /rename_athlete <fincode> <name...>
		if len(args) < 2 {
			return c.Send("Usage: /rename_athlete <fincode> <name>")
		}
		fincode, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: fincode must be a number.")
		}
		handlerLogger = handlerLogger.WithField("fincode", fincode)

		updated, err := athleteService.Rename(ctx, c.Sender().ID, fincode, strings.Join(args[1:], " "))
		if err != nil {
			return replyAdminError(c, handlerLogger, err, fincode)
		}
		handlerLogger.Info("Athlete renamed")
		return c.Send(fmt.Sprintf("Athlete %d is now called %s.", updated.Fincode, updated.Name))
	})

	b.Handle("/edit_athlete", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/edit_athlete",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		// Expected format: /edit_athlete <fincode> birthdate=YYYY-MM-DD gender=F email=... phone=...
		fincode, details, err := parseEditAthleteArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error() + "\nUsage: /edit_athlete <fincode> [birthdate=YYYY-MM-DD] [gender=...] [email=...] [phone=...]")
		}
		handlerLogger = handlerLogger.WithField("fincode", fincode)

		updated, err := athleteService.UpdateDetails(ctx, c.Sender().ID, fincode, details)
		if err != nil {
			return replyAdminError(c, handlerLogger, err, fincode)
		}
		handlerLogger.Info("Athlete details updated")
		return c.Send("Athlete updated:\n" + FormatAthlete(updated))
	})

	b.Handle("/remove_athlete", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_athlete",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		args := c.Args()
		// Expected format: /remove_athlete <fincode>
		if len(args) != 1 {
			return c.Send("Usage: /remove_athlete <fincode>")
		}
		fincode, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid fincode format")
			return c.Send("Error: fincode must be a number.")
		}
		handlerLogger = handlerLogger.WithField("fincode", fincode)

		removed, err := athleteService.Remove(ctx, c.Sender().ID, fincode)
		if err != nil {
			return replyAdminError(c, handlerLogger, err, fincode)
		}
		return c.Send(fmt.Sprintf("%s (%d) removed. Past attendance rows are kept.", removed.Name, removed.Fincode))
	})
}

func replyAdminError(c telebot.Context, handlerLogger *logrus.Entry, err error, fincode int64) error {
	logWithError := handlerLogger.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized): // Redundant here due to the initial sender check
		logWithError.Warn("Admin not authorized (service level)")
		return c.Send("Error: you are not allowed to use this command.")
	case errors.Is(err, idb.ErrAthleteNotFound):
		logWithError.Warn("Athlete not found")
		return c.Send(fmt.Sprintf("No athlete with fincode %d.", fincode))
	case errors.Is(err, app.ErrInvalidInput):
		logWithError.Warn("Invalid input")
		return c.Send(err.Error())
	default:
		logWithError.Error("Admin command failed")
		return c.Send(fmt.Sprintf("An error occurred: %s", err.Error()))
	}
}
