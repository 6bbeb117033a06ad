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

// RegisterReportHandlers registers the roster and statistics commands. Coaches only.
func RegisterReportHandlers(
	ctx context.Context,
	b *telebot.Bot,
	statsService *app.StatsService,
	athleteService *app.AthleteService,
	roles app.Roles,
	baseLogger *logrus.Entry,
) {
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

	// /stats [season] [type|all] [group|all]
	b.Handle("/stats", guard("/stats", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		season, sessionType, group := argAt(args, 0), argAt(args, 1), argAt(args, 2)

		stats, err := statsService.SeasonStats(ctx, season, sessionType, group)
		if err != nil {
			return replyReportError(c, log, err)
		}
		if season == "" {
			season = athleteService.CurrentSeason()
		}
		return sendLong(c, FormatStats(season, orAll(sessionType), orAll(group), stats))
	}))

	// /trend <fincode> [season] [type]
	b.Handle("/trend", guard("/trend", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		fincode, err := strconv.ParseInt(argAt(args, 0), 10, 64)
		if err != nil {
			return c.Send("Usage: /trend <fincode> [season] [Swim|Gym|all]")
		}
		season := argAt(args, 1)

		trend, err := statsService.MonthlyTrend(ctx, fincode, season, argAt(args, 2))
		if err != nil {
			return replyReportError(c, log, err)
		}
		if season == "" {
			season = athleteService.CurrentSeason()
		}
		return sendLong(c, FormatTrend(fincode, season, trend))
	}))

	// /roster <group> [season]
	b.Handle("/roster", guard("/roster", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) < 1 {
			return c.Send("Usage: /roster <group> [season]")
		}
		roster, err := athleteService.Roster(ctx, argAt(args, 1), args[0])
		if err != nil {
			return replyReportError(c, log, err)
		}
		if len(roster) == 0 {
			return c.Send("No athletes in this group.")
		}

		var response strings.Builder
		fmt.Fprintf(&response, "Group %s, %d athletes\n", strings.ToUpper(args[0]), len(roster))
		for _, a := range roster {
			fmt.Fprintf(&response, "%d %s\n", a.Fincode, a.Name)
		}
		return sendLong(c, response.String())
	}))

	b.Handle("/seasons", guard("/seasons", func(c telebot.Context, log *logrus.Entry) error {
		seasons, err := athleteService.Seasons(ctx)
		if err != nil {
			return replyReportError(c, log, err)
		}
		if len(seasons) == 0 {
			return c.Send("No seasons recorded.")
		}
		var response strings.Builder
		for _, s := range seasons {
			response.WriteString(s.Description)
			if s.Description == athleteService.CurrentSeason() {
				response.WriteString(" (current)")
			}
			response.WriteString("\n")
		}
		return sendLong(c, response.String())
	}))

	// /athlete <fincode>
	b.Handle("/athlete", guard("/athlete", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		fincode, err := strconv.ParseInt(argAt(args, 0), 10, 64)
		if err != nil || len(args) != 1 {
			return c.Send("Usage: /athlete <fincode>")
		}

		a, err := athleteService.Get(ctx, fincode)
		if err != nil {
			if errors.Is(err, idb.ErrAthleteNotFound) {
				return c.Send(fmt.Sprintf("No athlete with fincode %d.", fincode))
			}
			return replyReportError(c, log, err)
		}
		return c.Send(FormatAthlete(a))
	}))
}

func replyReportError(c telebot.Context, log *logrus.Entry, err error) error {
	if errors.Is(err, app.ErrInvalidInput) {
		log.WithError(err).Warn("Invalid arguments")
		return c.Send(err.Error())
	}
	log.WithError(err).Error("Report failed")
	return c.Send("Could not build the report, try again later.")
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func orAll(v string) string {
	if v == "" {
		return app.FilterAll
	}
	return v
}
