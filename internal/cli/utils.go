package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultPeriodDays = 7

type periodRange struct {
	From  time.Time
	To    time.Time
	Label string
}

// resolvePeriod turns a /summary argument into a time range. Date flags win over the argument.
func resolvePeriod(arg string, opts Options, now time.Time) (periodRange, error) {
	if opts.From != "" || opts.To != "" {
		return parsePeriodFromFlags(opts, now)
	}

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return periodRange{From: startOfDay(now), To: now, Label: "today"}, nil
	case "yesterday":
		day := now.AddDate(0, 0, -1)
		return periodRange{From: startOfDay(day), To: endOfDay(day), Label: "yesterday"}, nil
	case "week":
		return periodRange{From: startOfDay(now.AddDate(0, 0, -defaultPeriodDays+1)), To: now, Label: "last 7 days"}, nil
	case "month":
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return periodRange{From: from, To: now, Label: now.Format("January 2006")}, nil
	default:
		day, err := parseDate(arg)
		if err != nil {
			return periodRange{}, fmt.Errorf("unknown period %q: use today, yesterday, week, month or YYYY-MM-DD", arg)
		}
		return periodRange{From: startOfDay(day), To: endOfDay(day), Label: day.Format("2006-01-02")}, nil
	}
}

func parsePeriodFromFlags(opts Options, now time.Time) (periodRange, error) {
	var from, to time.Time
	var err error

	if opts.From != "" {
		from, err = parseDate(opts.From)
		if err != nil {
			return periodRange{}, fmt.Errorf("invalid --from date: %w", err)
		}
		from = startOfDay(from)
	}
	if opts.To != "" {
		to, err = parseDate(opts.To)
		if err != nil {
			return periodRange{}, fmt.Errorf("invalid --to date: %w", err)
		}
		to = endOfDay(to)
	}
	if from.IsZero() {
		from = startOfDay(now.AddDate(0, 0, -defaultPeriodDays+1))
	}
	if to.IsZero() {
		to = now
	}
	if to.Before(from) {
		return periodRange{}, errors.New("--to must be after --from")
	}
	return periodRange{
		From:  from,
		To:    to,
		Label: fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// splitCommand separates "/cmd rest of line" into the lowercased command and its argument.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// parseSettings reads "k=v" pairs; values may be quoted to include spaces.
func parseSettings(arg string) (map[string]string, error) {
	settings := map[string]string{}
	rest := strings.TrimSpace(arg)
	for rest != "" {
		key, after, ok := strings.Cut(rest, "=")
		if !ok || strings.TrimSpace(key) == "" || strings.ContainsAny(strings.TrimSpace(key), " \t") {
			return nil, fmt.Errorf("expected key=value, got %q", rest)
		}
		key = strings.TrimSpace(key)
		after = strings.TrimLeft(after, " ")

		var value string
		if strings.HasPrefix(after, `"`) {
			end := strings.Index(after[1:], `"`)
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote for %s", key)
			}
			value = after[1 : end+1]
			rest = strings.TrimSpace(after[end+2:])
		} else {
			value, rest, _ = strings.Cut(after, " ")
			rest = strings.TrimSpace(rest)
		}
		settings[key] = value
	}
	return settings, nil
}
