package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"team_attendance_bot/internal/app"
	"team_attendance_bot/internal/domain/session"
)

// parseKeyValues splits command arguments into leading positional words and
// key=value fields. Words after a field belong to its value, so
// "title=Morning swim pool=Lido" gives title "Morning swim".
func parseKeyValues(args []string) ([]string, map[string]string, error) {
	var positional []string
	fields := make(map[string]string)
	key := ""
	for _, arg := range args {
		if arg == "" {
			continue
		}
		if k, v, ok := strings.Cut(arg, "="); ok && k != "" {
			key = strings.ToLower(k)
			if _, dup := fields[key]; dup {
				return nil, nil, fmt.Errorf("%s is given twice", key)
			}
			fields[key] = v
			continue
		}
		if key == "" {
			positional = append(positional, arg)
			continue
		}
		if fields[key] == "" {
			fields[key] = arg
		} else {
			fields[key] += " " + arg
		}
	}
	return positional, fields, nil
}

// sessionFieldKeys lists the keys /add_session and /edit_session accept.
var sessionFieldKeys = map[string]func(*session.Session, string) error{
	"title":       func(s *session.Session, v string) error { s.Title = v; return nil },
	"date":        setSessionDate,
	"start":       func(s *session.Session, v string) error { s.StartTime = v; return nil },
	"end":         func(s *session.Session, v string) error { s.EndTime = v; return nil },
	"group":       func(s *session.Session, v string) error { s.Groups = v; return nil },
	"type":        func(s *session.Session, v string) error { s.Type = v; return nil },
	"description": func(s *session.Session, v string) error { s.Description = v; return nil },
	"volume":      setSessionVolume,
	"location":    func(s *session.Session, v string) error { s.Location = v; return nil },
	"pool":        func(s *session.Session, v string) error { s.PoolName = v; return nil },
	"length":      setSessionPoolLength,
}

// applySessionFields copies key=value fields onto sess.
func applySessionFields(sess *session.Session, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		set, ok := sessionFieldKeys[k]
		if !ok {
			return fmt.Errorf("unknown field %q, use one of: %s", k, sessionFieldNames())
		}
		if err := set(sess, strings.TrimSpace(fields[k])); err != nil {
			return err
		}
	}
	return nil
}

func sessionFieldNames() string {
	names := make([]string, 0, len(sessionFieldKeys))
	for k := range sessionFieldKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func setSessionDate(s *session.Session, v string) error {
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	s.Date = d
	return nil
}

func setSessionVolume(s *session.Session, v string) error {
	if v == "" {
		s.Volume = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("volume must be a number of meters, got %q", v)
	}
	s.Volume = n
	return nil
}

func setSessionPoolLength(s *session.Session, v string) error {
	if v == "" {
		s.PoolLength = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "m"))
	if err != nil {
		return fmt.Errorf("length must be 25 or 50, got %q", v)
	}
	s.PoolLength = n
	return nil
}

// parseAddSessionArgs reads "<date> <start> <end> <group> <type> [title...] [key=value...]".
func parseAddSessionArgs(args []string) (*session.Session, error) {
	positional, fields, err := parseKeyValues(args)
	if err != nil {
		return nil, err
	}
	if len(positional) < 5 {
		return nil, fmt.Errorf("not enough arguments")
	}
	date, err := time.Parse(dateLayout, positional[0])
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", positional[0])
	}

	sess := &session.Session{
		Date:      date,
		StartTime: positional[1],
		EndTime:   positional[2],
		Groups:    positional[3],
		Type:      positional[4],
		Title:     strings.Join(positional[5:], " "),
	}
	if err := applySessionFields(sess, fields); err != nil {
		return nil, err
	}
	return sess, nil
}

// parseEditSessionArgs reads "<id> key=value...".
func parseEditSessionArgs(args []string) (int64, map[string]string, error) {
	positional, fields, err := parseKeyValues(args)
	if err != nil {
		return 0, nil, err
	}
	if len(positional) != 1 {
		return 0, nil, fmt.Errorf("expected the session id followed by key=value fields")
	}
	id, err := parseSessionArg(positional)
	if err != nil {
		return 0, nil, err
	}
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("nothing to change")
	}
	return id, fields, nil
}

// parseEditAthleteArgs reads "<fincode> birthdate=... gender=... email=... phone=...".
func parseEditAthleteArgs(args []string) (int64, app.AthleteDetails, error) {
	var details app.AthleteDetails
	positional, fields, err := parseKeyValues(args)
	if err != nil {
		return 0, details, err
	}
	if len(positional) != 1 {
		return 0, details, fmt.Errorf("expected the fincode followed by key=value fields")
	}
	fincode, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil {
		return 0, details, fmt.Errorf("fincode must be a number")
	}

	for k, v := range fields {
		switch k {
		case "birthdate":
			details.Birthdate = &v
		case "gender":
			details.Gender = &v
		case "email":
			details.Email = &v
		case "phone":
			details.Phone = &v
		default:
			return 0, details, fmt.Errorf("unknown field %q, use birthdate, gender, email or phone", k)
		}
	}
	if details.Empty() {
		return 0, details, fmt.Errorf("nothing to change")
	}
	return fincode, details, nil
}

// parseAddMeetArgs reads "<from> [to] name=... [place=...] [course=SCM|LCM] [groups=A,B]".
func parseAddMeetArgs(args []string) (from, to time.Time, fields map[string]string, err error) {
	positional, fields, err := parseKeyValues(args)
	if err != nil {
		return from, to, nil, err
	}
	if len(positional) < 1 || len(positional) > 2 {
		return from, to, nil, fmt.Errorf("expected the start date and an optional end date")
	}
	if from, err = time.Parse(dateLayout, positional[0]); err != nil {
		return from, to, nil, fmt.Errorf("invalid date %q", positional[0])
	}
	if len(positional) == 2 {
		if to, err = time.Parse(dateLayout, positional[1]); err != nil {
			return from, to, nil, fmt.Errorf("invalid date %q", positional[1])
		}
	}
	for k := range fields {
		switch k {
		case "name", "place", "course", "groups":
		default:
			return from, to, nil, fmt.Errorf("unknown field %q, use name, place, course or groups", k)
		}
	}
	return from, to, fields, nil
}
