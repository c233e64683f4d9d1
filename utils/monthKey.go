package utils

import (
	"fmt"
	"regexp"
	"time"

	"github.com/opencantine/pantry_backend/config"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// MonthKey maps a point in time to its calendar-month identifier ("YYYY-MM")
// in the given timezone.
func MonthKey(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// CurrentMonthKey returns the month key of the open billing month. It is
// computed at call time in the reference timezone; callers must not cache it
// across a month boundary.
func CurrentMonthKey() string {
	return MonthKey(time.Now(), config.ReferenceLocation())
}

func IsValidMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}
