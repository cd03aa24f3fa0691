package attendance

import (
	"context"
	"errors"
	"time"
)

// Day is one calendar day in an assembled month view.
type Day struct {
	Date   string `json:"date"`
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// ErrInvalidMonth is returned when month is outside 1..12.
var ErrInvalidMonth = errors.New("invalid year/month")

// MonthRange returns the first day of (year, month) and the first day of the
// following month. time.Date normalizes month 13, so December rolls into
// January of year+1.
func MonthRange(year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// BuildMonth produces one Day per calendar day of (year, month) in ascending
// order. Days with a stored record take its status and reason; the rest
// default to StatusNone with an empty reason.
func BuildMonth(ctx context.Context, store Store, year, month int) ([]Day, error) {
	start, end, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	stored, err := store.GetRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var days []Day
	for cur := start; cur.Before(end); cur = cur.AddDate(0, 0, 1) {
		key := cur.Format(DateFormat)
		day := Day{Date: key, Status: StatusNone, Reason: ""}
		if e, ok := stored[key]; ok {
			day.Status = e.Status
			day.Reason = e.Reason
		}
		days = append(days, day)
	}
	return days, nil
}
