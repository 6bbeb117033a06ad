package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/session"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const addSessionUsage = "Usage: /add_session <YYYY-MM-DD> <start HH:MM> <end HH:MM> <group> <Swim|Gym> [title] [key=value...]"

const editSessionUsage = "Usage: /edit_session <id> key=value...\nKeys: " +
	"title, date, start, end, group, type, description, volume, location, pool, length"

// RegisterSessionHandlers registers the session listing and editing commands.
func RegisterSessionHandlers(ctx context.Context, b *telebot.Bot, sessionService *app.SessionService, roles app.Roles, baseLogger *logrus.Entry) {
	b.Handle("/sessions", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/sessions", "sender_id": c.Sender().ID})
		if !roles.IsCoach(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		day, err := parseDateArg(c.Args(), time.Now())
		if err != nil {
			return c.Send(err.Error())
		}
		sessions, err := sessionService.ListForDay(ctx, day)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list sessions")
			return c.Send("Could not load sessions, try again later.")
		}

		text := FormatSessions("Sessions on "+day.Format(dateLayout), sessions)
		if len(sessions) == 0 {
			return c.Send(text)
		}
		return sendLong(c, text, OpenSheetMarkup(sessions))
	})

	b.Handle("/week", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/week", "sender_id": c.Sender().ID})
		if !roles.IsCoach(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		day, err := parseDateArg(c.Args(), time.Now())
		if err != nil {
			return c.Send(err.Error())
		}
		monday, sessions, err := sessionService.ListWeek(ctx, day)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list week")
			return c.Send("Could not load sessions, try again later.")
		}
		return sendLong(c, FormatSessions("Week of "+monday.Format(dateLayout), sessions))
	})

	b.Handle("/add_session", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/add_session", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		sess, err := parseAddSessionArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error() + "\n" + addSessionUsage)
		}

		if err := sessionService.Save(ctx, c.Sender().ID, sess); err != nil {
			return replySessionSaveError(c, handlerLogger, err)
		}

		handlerLogger.WithField("session_id", sess.ID).Info("Session created")
		return c.Send("Session created:\n"+SessionLine(sess), OpenSheetMarkup([]*session.Session{sess}))
	})

	b.Handle("/edit_session", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/edit_session", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		if !roles.IsCoach(c.Sender().ID) {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to use this command.")
		}

		id, fields, err := parseEditSessionArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error() + "\n" + editSessionUsage)
		}
		handlerLogger = handlerLogger.WithField("session_id", id)

		sess, err := sessionService.Get(ctx, id)
		if err != nil {
			if errors.Is(err, idb.ErrSessionNotFound) {
				return c.Send(fmt.Sprintf("Session #%d not found.", id))
			}
			handlerLogger.WithError(err).Error("Failed to load session")
			return c.Send("Could not load the session, try again later.")
		}
		if err := applySessionFields(sess, fields); err != nil {
			return c.Send(err.Error() + "\n" + editSessionUsage)
		}

		if err := sessionService.Save(ctx, c.Sender().ID, sess); err != nil {
			return replySessionSaveError(c, handlerLogger, err)
		}
		handlerLogger.Info("Session updated")
		return c.Send("Session updated:\n" + SessionLine(sess))
	})

	b.Handle("/delete_session", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": "/delete_session", "sender_id": c.Sender().ID})
		handlerLogger.Info("Command received")

		id, err := parseSessionArg(c.Args())
		if err != nil {
			return c.Send("Usage: /delete_session <session id>")
		}
		handlerLogger = handlerLogger.WithField("session_id", id)

		if err := sessionService.Delete(ctx, c.Sender().ID, id); err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrNotAuthorized):
				logWithError.Warn("Unauthorized access attempt")
				return c.Send("Error: you are not allowed to use this command.")
			case errors.Is(err, idb.ErrSessionNotFound):
				logWithError.Warn("Session to delete not found")
				return c.Send(fmt.Sprintf("Session #%d not found.", id))
			default:
				logWithError.Error("Failed to delete session")
				return c.Send("Could not delete the session, try again later.")
			}
		}
		return c.Send(fmt.Sprintf("Session #%d deleted together with its attendance.", id))
	})
}

func replySessionSaveError(c telebot.Context, handlerLogger *logrus.Entry, err error) error {
	logWithError := handlerLogger.WithError(err)
	switch {
	case errors.Is(err, app.ErrNotAuthorized):
		logWithError.Warn("Unauthorized access attempt")
		return c.Send("Error: you are not allowed to use this command.")
	case errors.Is(err, app.ErrInvalidInput):
		logWithError.Warn("Invalid session")
		return c.Send(err.Error())
	case errors.Is(err, idb.ErrSessionNotFound):
		logWithError.Warn("Session disappeared while saving")
		return c.Send("This session no longer exists.")
	default:
		logWithError.Error("Failed to save session")
		return c.Send("Could not save the session, try again later.")
	}
}
