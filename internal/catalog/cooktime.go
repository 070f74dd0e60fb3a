package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CookTime is a parsed cooking duration. Values that could not be parsed are
// kept as unknown rather than rejected.
type CookTime struct {
	Duration time.Duration
	Known    bool
}

// UnknownCookTime is the value substituted for unparseable input.
var UnknownCookTime = CookTime{}

func (c CookTime) String() string {
	if !c.Known {
		return "unknown"
	}
	return c.Duration.String()
}

var (
	isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	timedeltaRe   = regexp.MustCompile(`^(?:(-?\d+) days? ?)?(\d{1,2}):(\d{2}):(\d{2})(?:\.(\d+))?$`)
)

// ParseCookTime accepts ISO-8601 durations ("PT1H30M"), Go duration strings
// ("1h30m") and timedelta text ("0 days 00:45:00"). The boolean result
// reports whether the value was understood; on false the returned CookTime is
// UnknownCookTime.
func ParseCookTime(raw string) (CookTime, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return UnknownCookTime, false
	}

	if m := isoDurationRe.FindStringSubmatch(strings.ToUpper(s)); m != nil && m[1]+m[2]+m[3]+m[4] != "" {
		var d time.Duration
		d += atoiDuration(m[1]) * 24 * time.Hour
		d += atoiDuration(m[2]) * time.Hour
		d += atoiDuration(m[3]) * time.Minute
		if m[4] != "" {
			secs, err := strconv.ParseFloat(m[4], 64)
			if err != nil {
				return UnknownCookTime, false
			}
			d += time.Duration(secs * float64(time.Second))
		}
		return CookTime{Duration: d, Known: true}, true
	}

	if m := timedeltaRe.FindStringSubmatch(s); m != nil {
		d := atoiDuration(m[1]) * 24 * time.Hour
		d += atoiDuration(m[2]) * time.Hour
		d += atoiDuration(m[3]) * time.Minute
		d += atoiDuration(m[4]) * time.Second
		return CookTime{Duration: d, Known: true}, true
	}

	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return CookTime{Duration: d, Known: true}, true
	}

	return UnknownCookTime, false
}

func atoiDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return time.Duration(n)
}
