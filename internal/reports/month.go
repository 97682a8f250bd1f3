package reports

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

const monthLayout = "2006-01"

// MonthRange parses "YYYY-MM" and returns [first day of month, first day of
// next month) in loc.
func MonthRange(month string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	month = strings.TrimSpace(month)
	if month == "" {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "month is required (YYYY-MM)")
	}
	parsed, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "month must be formatted as YYYY-MM").
			WithDetails(map[string]any{"month": month})
	}
	start := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}
