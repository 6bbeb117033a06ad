package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/meet"
	idb "team_attendance_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const addMeetUsage = "Usage: /add_meet <YYYY-MM-DD> [end YYYY-MM-DD] name=<name> [place=<place>] [course=SCM|LCM] [groups=A,B]"

// RegisterDashboardHandlers registers /next and the meet calendar commands. Coaches only.
func RegisterDashboardHandlers(ctx context.Context, b *telebot.Bot, dashboardService *app.DashboardService, roles app.Roles, baseLogger *logrus.Entry) {
	guard := func(command string, next func(c telebot.Context, log *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			handlerLogger := baseLogger.WithFields(logrus.Fields{"handler": command, "sender_id": c.Sender().ID})
			if !roles.IsCoach(c.Sender().ID) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send("Error: you are not allowed to use this command.")
			}
			return next(c, handlerLogger)
		}
	}

	b.Handle("/next", guard("/next", func(c telebot.Context, log *logrus.Entry) error {
		dashboard, err := dashboardService.Next(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to load dashboard")
			return c.Send("Could not load the calendar, try again later.")
		}
		if len(dashboard.Sessions) == 0 {
			return sendLong(c, FormatDashboard(dashboard))
		}
		return sendLong(c, FormatDashboard(dashboard), OpenSheetMarkup(dashboard.Sessions))
	}))

	b.Handle("/add_meet", guard("/add_meet", func(c telebot.Context, log *logrus.Entry) error {
		from, to, fields, err := parseAddMeetArgs(c.Args())
		if err != nil {
			log.WithError(err).Warn("Invalid command format")
			return c.Send(err.Error() + "\n" + addMeetUsage)
		}

		m := &meet.Meet{
			Name:    fields["name"],
			Place:   fields["place"],
			Course:  fields["course"],
			Groups:  fields["groups"],
			MinDate: from,
			MaxDate: to,
		}
		if err := dashboardService.AddMeet(ctx, c.Sender().ID, m); err != nil {
			if errors.Is(err, app.ErrInvalidInput) {
				log.WithError(err).Warn("Invalid meet")
				return c.Send(err.Error())
			}
			log.WithError(err).Error("Failed to create meet")
			return c.Send("Could not create the meet, try again later.")
		}
		return c.Send("Meet added:\n" + MeetLine(m))
	}))

	b.Handle("/delete_meet", guard("/delete_meet", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		id, err := strconv.ParseInt(argAt(args, 0), 10, 64)
		if err != nil || len(args) != 1 {
			return c.Send("Usage: /delete_meet <meet id>")
		}

		if err := dashboardService.DeleteMeet(ctx, c.Sender().ID, id); err != nil {
			if errors.Is(err, idb.ErrMeetNotFound) {
				return c.Send(fmt.Sprintf("Meet #%d not found.", id))
			}
			log.WithError(err).Error("Failed to delete meet")
			return c.Send("Could not delete the meet, try again later.")
		}
		return c.Send(fmt.Sprintf("Meet #%d deleted.", id))
	}))
}
