package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock supplies "now" so the rolling key generators and profit windows stay
// testable. Production wiring passes time.Now.
type Clock func() time.Time

// WeekKeyOf returns the calendar bucket key for a timestamp at weekly
// granularity. The week-of-month is ceil((dayOfMonth + weekdayOfFirst)/7),
// which is what the downstream reports have always keyed on. It is not ISO
// week numbering: long months can produce a sixth week and dates in one ISO
// week can land in different buckets near month boundaries. Report
// continuity depends on the formula staying exactly this.
func WeekKeyOf(t time.Time) string {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	week := (day + int(first.Weekday()) + 6) / 7
	return fmt.Sprintf("%d-%02d-W%d", year, int(month), week)
}

// MonthKeyOf returns the calendar bucket key at monthly granularity.
func MonthKeyOf(t time.Time) string {
	year, month, _ := t.Date()
	return fmt.Sprintf("%d-%02d", year, int(month))
}

// LastNWeekKeys returns the trailing n week keys, oldest first, anchored at
// local midnight today and walking back in fixed 7-day steps. Adjacent
// duplicates are possible when two steps land in the same week-of-month
// bucket; aggregation merges them, the generator does not.
func LastNWeekKeys(n int, now Clock) []string {
	if n <= 0 {
		return nil
	}
	t := now()
	anchor := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, WeekKeyOf(anchor.AddDate(0, 0, -7*i)))
	}
	return keys
}

// LastNMonthKeys returns the trailing n month keys, oldest first, anchored
// at the first day of the current month.
func LastNMonthKeys(n int, now Clock) []string {
	if n <= 0 {
		return nil
	}
	t := now()
	anchor := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, MonthKeyOf(anchor.AddDate(0, -i, 0)))
	}
	return keys
}

// WeekLabel renders a week key as a short human label, "W2 Mar". Malformed
// keys come back unchanged; callers never see an error from labelling.
func WeekLabel(key string) string {
	parts := strings.Split(key, "-")
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "W") {
		return key
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return key
	}
	if _, err := strconv.Atoi(parts[2][1:]); err != nil {
		return key
	}
	return parts[2] + " " + time.Month(month).String()[:3]
}
