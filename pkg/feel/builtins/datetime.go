package builtins

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func registerDateTime(r *Registry) {
	r.Register(&Function{Name: "now", MinArgs: 0, MaxArgs: 0, Impl: builtinNow})
	r.Register(&Function{Name: "today", MinArgs: 0, MaxArgs: 0, Impl: builtinToday})
	r.Register(&Function{Name: "date", MinArgs: 1, MaxArgs: 3, Impl: builtinDate})
	r.Register(&Function{Name: "time", MinArgs: 1, MaxArgs: 4, Impl: builtinTime})
	r.Register(&Function{Name: "date and time", MinArgs: 1, MaxArgs: 2, Impl: builtinDateAndTime})
	r.Register(&Function{Name: "duration", MinArgs: 1, MaxArgs: 1, Impl: builtinDuration})
	r.Register(&Function{Name: "years and months duration", MinArgs: 2, MaxArgs: 2, Impl: builtinYearsAndMonthsDuration})
}

func builtinNow(env *Env, _ []any) (any, error) {
	return env.Clock(), nil
}

func builtinToday(env *Env, _ []any) (any, error) {
	now := env.Clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
}

// builtinDate accepts date("2024-01-15"), date(y, m, d) with a 1-based
// month, or an existing date-time to truncate.
func builtinDate(_ *Env, args []any) (any, error) {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case string:
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				return nil, invalidArgs("date", "cannot parse %q as a date", v)
			}
			return t, nil
		case time.Time:
			return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, v.Location()), nil
		default:
			return nil, invalidArgs("date", "expected a date string or date-time, got %s", describeValue(v))
		}
	}
	if len(args) != 3 {
		return nil, invalidArgs("date", "expected (year, month, day), got %d argument(s)", len(args))
	}

	parts := make([]int, 3)
	names := []string{"year", "month", "day"}
	for i, arg := range args {
		n, ok := ToNumber(arg)
		if !ok {
			return nil, invalidArgs("date", "expected a numeric %s, got %s", names[i], describeValue(arg))
		}
		parts[i] = int(n)
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC), nil
}

// builtinTime accepts time("14:30:00"), time("14:30:00+02:00"), or
// time(h, m, s[, offset]) where offset is a "+HH:MM" string. The result is a
// date-time anchored at year 1.
func builtinTime(_ *Env, args []any) (any, error) {
	if len(args) == 1 {
		s, ok := args[0].(string)
		if !ok {
			return nil, invalidArgs("time", "expected a time string, got %s", describeValue(args[0]))
		}
		for _, layout := range []string{"15:04:05Z07:00", "15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, invalidArgs("time", "cannot parse %q as a time", s)
	}
	if len(args) < 3 {
		return nil, invalidArgs("time", "expected (hour, minute, second), got %d argument(s)", len(args))
	}

	parts := make([]int, 3)
	names := []string{"hour", "minute", "second"}
	var secFrac float64
	for i := 0; i < 3; i++ {
		n, ok := ToNumber(args[i])
		if !ok {
			return nil, invalidArgs("time", "expected a numeric %s, got %s", names[i], describeValue(args[i]))
		}
		parts[i] = int(n)
		if i == 2 {
			secFrac = n - float64(int(n))
		}
	}

	loc := time.UTC
	if len(args) == 4 && args[3] != nil {
		offset, ok := args[3].(string)
		if !ok {
			return nil, invalidArgs("time", "expected an offset string, got %s", describeValue(args[3]))
		}
		parsed, err := parseUTCOffset(offset)
		if err != nil {
			return nil, invalidArgs("time", "invalid offset %q", offset)
		}
		loc = parsed
	}

	nanos := int(secFrac * float64(time.Second))
	return time.Date(1, 1, 1, parts[0], parts[1], parts[2], nanos, loc), nil
}

func parseUTCOffset(s string) (*time.Location, error) {
	if s == "Z" || s == "z" {
		return time.UTC, nil
	}
	var sign int
	switch {
	case strings.HasPrefix(s, "+"):
		sign = 1
	case strings.HasPrefix(s, "-"):
		sign = -1
	default:
		return nil, fmt.Errorf("offset must start with + or -")
	}
	rest := strings.Split(s[1:], ":")
	if len(rest) != 2 {
		return nil, fmt.Errorf("offset must be +HH:MM")
	}
	hours, err := strconv.Atoi(rest[0])
	if err != nil {
		return nil, err
	}
	minutes, err := strconv.Atoi(rest[1])
	if err != nil {
		return nil, err
	}
	return time.FixedZone(s, sign*(hours*3600+minutes*60)), nil
}

// builtinDateAndTime accepts date and time("2024-01-15T14:30:00") or
// date and time(date, time) combining the date part of the first argument
// with the clock part of the second.
func builtinDateAndTime(_ *Env, args []any) (any, error) {
	if len(args) == 1 {
		s, ok := args[0].(string)
		if !ok {
			return nil, invalidArgs("date and time", "expected a string, got %s", describeValue(args[0]))
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, invalidArgs("date and time", "cannot parse %q as a date-time", s)
	}

	datePart, ok := args[0].(time.Time)
	if !ok {
		return nil, invalidArgs("date and time", "expected a date, got %s", describeValue(args[0]))
	}
	timePart, ok := args[1].(time.Time)
	if !ok {
		return nil, invalidArgs("date and time", "expected a time, got %s", describeValue(args[1]))
	}
	return time.Date(
		datePart.Year(), datePart.Month(), datePart.Day(),
		timePart.Hour(), timePart.Minute(), timePart.Second(), timePart.Nanosecond(),
		timePart.Location(),
	), nil
}

// Duration is an ISO-8601 duration (P[nY][nM][nD][T[nH][nM][nS]]). Calendar
// components stay separate; no temporal arithmetic is performed beyond
// parsing and rendering.
type Duration struct {
	Negative bool
	Years    int
	Months   int
	Days     int
	Hours    int
	Minutes  int
	Seconds  float64
}

var durationPattern = regexp.MustCompile(
	`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration parses an ISO-8601 duration string. At least one component
// must be present: "P" and "PT" alone are rejected.
func ParseDuration(s string) (*Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}
	hasComponent := false
	for _, part := range m[2:] {
		if part != "" {
			hasComponent = true
			break
		}
	}
	if !hasComponent {
		return nil, fmt.Errorf("invalid ISO-8601 duration %q: no components", s)
	}

	d := &Duration{Negative: m[1] == "-"}
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	d.Years = atoi(m[2])
	d.Months = atoi(m[3])
	d.Days = atoi(m[4])
	d.Hours = atoi(m[5])
	d.Minutes = atoi(m[6])
	if m[7] != "" {
		d.Seconds, _ = strconv.ParseFloat(m[7], 64)
	}
	return d, nil
}

// IsZero returns true when every component is zero.
func (d *Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0 && d.Days == 0 &&
		d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// String renders the duration back to ISO-8601 form.
func (d *Duration) String() string {
	if d.IsZero() {
		return "P0D"
	}
	var sb strings.Builder
	if d.Negative {
		sb.WriteString("-")
	}
	sb.WriteString("P")
	if d.Years > 0 {
		fmt.Fprintf(&sb, "%dY", d.Years)
	}
	if d.Months > 0 {
		fmt.Fprintf(&sb, "%dM", d.Months)
	}
	if d.Days > 0 {
		fmt.Fprintf(&sb, "%dD", d.Days)
	}
	if d.Hours > 0 || d.Minutes > 0 || d.Seconds > 0 {
		sb.WriteString("T")
		if d.Hours > 0 {
			fmt.Fprintf(&sb, "%dH", d.Hours)
		}
		if d.Minutes > 0 {
			fmt.Fprintf(&sb, "%dM", d.Minutes)
		}
		if d.Seconds > 0 {
			fmt.Fprintf(&sb, "%sS", FormatNumber(d.Seconds))
		}
	}
	return sb.String()
}

func builtinDuration(_ *Env, args []any) (any, error) {
	s, ok := args[0].(string)
	if !ok {
		return nil, invalidArgs("duration", "expected a string, got %s", describeValue(args[0]))
	}
	d, err := ParseDuration(s)
	if err != nil {
		return nil, invalidArgs("duration", "%v", err)
	}
	return d, nil
}

// builtinYearsAndMonthsDuration computes the whole-month span between two
// dates, normalized to years and months.
func builtinYearsAndMonthsDuration(_ *Env, args []any) (any, error) {
	from, ok := args[0].(time.Time)
	if !ok {
		return nil, invalidArgs("years and months duration", "expected a date, got %s", describeValue(args[0]))
	}
	to, ok := args[1].(time.Time)
	if !ok {
		return nil, invalidArgs("years and months duration", "expected a date, got %s", describeValue(args[1]))
	}

	negative := false
	if to.Before(from) {
		from, to = to, from
		negative = true
	}

	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}

	return &Duration{
		Negative: negative && months > 0,
		Years:    months / 12,
		Months:   months % 12,
	}, nil
}
