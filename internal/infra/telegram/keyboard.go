// internal/infra/telegram/keyboard.go
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/athlete"
	"team_attendance_bot/internal/domain/attendance"
	"team_attendance_bot/internal/domain/meet"
	"team_attendance_bot/internal/domain/session"
	domainTelegram "team_attendance_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

const dateLayout = "2006-01-02"

// displayDateLayout is how dates are shown to people.
const displayDateLayout = "02.01.2006"

func statusBadge(s attendance.Status) string {
	switch s.Normalize() {
	case attendance.StatusPresent:
		return "✅"
	case attendance.StatusJustified:
		return "🟡"
	case attendance.StatusAbsent:
		return "❌"
	default:
		return "⬜"
	}
}

// SheetText is the message above the sheet keyboard.
func SheetText(sheet *attendance.Sheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance %s, group %s (%s)\n", sheet.SessionDate.Format(dateLayout), sheet.Group, sheet.Season)
	b.WriteString(sheet.Counts().String())
	if len(sheet.Entries) == 0 {
		b.WriteString("\nNo athletes in this group for the season.")
	}
	if n := len(sheet.Orphaned); n > 0 {
		fmt.Fprintf(&b, "\n%d stored rows belong to athletes outside the roster and are kept as they are.", n)
	}
	if sheet.Stale {
		b.WriteString("\nThe last save failed halfway. Reload the sheet before saving again.")
	}
	return b.String()
}

// SheetMarkup renders one button per athlete plus the action row.
// A stale sheet only offers Reload and Cancel.
func SheetMarkup(sheet *attendance.Sheet) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	sid := strconv.FormatInt(sheet.SessionID, 10)

	rows := make([]telebot.Row, 0, len(sheet.Entries)+1)
	if !sheet.Stale {
		for _, e := range sheet.Entries {
			label := statusBadge(e.Status) + " " + e.Name
			rows = append(rows, markup.Row(markup.Data(label, domainTelegram.CallbackTap, sid, strconv.FormatInt(e.Fincode, 10))))
		}
	}

	cancel := markup.Data("Cancel", domainTelegram.CallbackCancelSheet, sid)
	if sheet.Stale {
		rows = append(rows, markup.Row(markup.Data("Reload", domainTelegram.CallbackReloadSheet, sid), cancel))
	} else {
		rows = append(rows, markup.Row(markup.Data("Save", domainTelegram.CallbackSaveSheet, sid), cancel))
	}
	markup.Inline(rows...)
	return markup
}

// OpenSheetMarkup offers one "take attendance" button per session.
func OpenSheetMarkup(sessions []*session.Session) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(sessions))
	for _, s := range sessions {
		label := fmt.Sprintf("%s %s %s", s.StartTime, s.Groups, s.Type)
		rows = append(rows, markup.Row(markup.Data(label, domainTelegram.CallbackOpenSheet, strconv.FormatInt(s.ID, 10))))
	}
	markup.Inline(rows...)
	return markup
}

// SessionLine is the one-line summary of a session.
func SessionLine(s *session.Session) string {
	line := fmt.Sprintf("#%d %s %s-%s %s group %s", s.ID, s.Date.Format(dateLayout), s.StartTime, s.EndTime, s.Type, s.Groups)
	if s.Title != "" {
		line += " · " + s.Title
	}
	if s.Type == session.TypeSwim && s.PoolLength > 0 {
		line += fmt.Sprintf(" · %s %dm", s.Location, s.PoolLength)
	} else if s.Location != "" {
		line += " · " + s.Location
	}
	return line
}

// FormatSessions lists sessions under a heading, or says there are none.
func FormatSessions(heading string, sessions []*session.Session) string {
	if len(sessions) == 0 {
		return heading + "\nNo sessions."
	}
	var b strings.Builder
	b.WriteString(heading)
	for _, s := range sessions {
		b.WriteString("\n")
		b.WriteString(SessionLine(s))
	}
	return b.String()
}

// FormatStats renders the season table, one athlete per line.
func FormatStats(season, sessionType, group string, stats []attendance.AthleteStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance %s, type %s, group %s\n", season, sessionType, group)
	if len(stats) == 0 {
		b.WriteString("No athletes found.")
		return b.String()
	}
	for i, st := range stats {
		fmt.Fprintf(&b, "%d. %s (%d): %.0f%% P:%d J:%d A:%d of %d\n",
			i+1, st.Name, st.Fincode, st.Percent, st.Present, st.Justified, st.Absent, st.TotalSessions)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTrend renders the monthly percentages with a ten step bar.
func FormatTrend(fincode int64, season string, trend []attendance.MonthlyPercentage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly attendance of %d in %s\n", fincode, season)
	for _, p := range trend {
		filled := int(p.Percent/10 + 0.5)
		if filled > 10 {
			filled = 10
		}
		fmt.Fprintf(&b, "%s %s %3.0f%%\n", p.Month, strings.Repeat("█", filled)+strings.Repeat("░", 10-filled), p.Percent)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAthlete shows the record of one athlete. Unset fields print as "-".
func FormatAthlete(a *athlete.Athlete) string {
	orDash := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	birthdate := ""
	if a.Birthdate.Valid {
		birthdate = a.Birthdate.Time.Format(displayDateLayout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n", a.Name, a.Fincode)
	fmt.Fprintf(&b, "Group: %s\n", orDash(a.Groups))
	fmt.Fprintf(&b, "Birthdate: %s\n", orDash(birthdate))
	fmt.Fprintf(&b, "Gender: %s\n", orDash(a.Gender.String))
	fmt.Fprintf(&b, "Email: %s\n", orDash(a.Email.String))
	fmt.Fprintf(&b, "Phone: %s", orDash(a.Phone.String))
	return b.String()
}

// MeetLine is the one-line summary of a meet.
func MeetLine(m *meet.Meet) string {
	dates := m.MinDate.Format(displayDateLayout)
	if !m.SingleDay() {
		dates += "-" + m.MaxDate.Format(displayDateLayout)
	}
	line := fmt.Sprintf("#%d %s %s", m.ID, dates, m.Name)
	if m.Place != "" {
		line += ", " + m.Place
	}
	if m.Course != "" {
		line += " (" + m.Course + ")"
	}
	if m.Groups != "" {
		line += " groups " + m.Groups
	}
	return line
}

// FormatDashboard lists the next meets and sessions.
func FormatDashboard(d *app.Dashboard) string {
	var b strings.Builder
	b.WriteString("Next meets")
	if len(d.Meets) == 0 {
		b.WriteString("\nNo meets scheduled.")
	}
	for _, m := range d.Meets {
		b.WriteString("\n")
		b.WriteString(MeetLine(m))
	}
	b.WriteString("\n\n")
	b.WriteString(FormatSessions("Next sessions", d.Sessions))
	return b.String()
}

// parseSessionArg reads the session id at args[0].
func parseSessionArg(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing session id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", args[0])
	}
	return id, nil
}

// parseTapArgs reads "session id|fincode" callback arguments.
func parseTapArgs(args []string) (sessionID, fincode int64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected session id and fincode, got %d values", len(args))
	}
	if sessionID, err = parseSessionArg(args); err != nil {
		return 0, 0, err
	}
	fincode, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fincode %q", args[1])
	}
	return sessionID, fincode, nil
}

// parseDateArg parses an optional YYYY-MM-DD argument, defaulting to today.
func parseDateArg(args []string, now time.Time) (time.Time, error) {
	if len(args) == 0 {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
	}
	return d, nil
}
