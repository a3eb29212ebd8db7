// Package backfill expands a date specification into ordered date points and
// drives one independent engine run per point, aggregating the outcomes.
package backfill

import (
	"fmt"
	"time"

	"github.com/dagflow-sched/dagflow/contracts"
)

// DateLayout is the canonical date-point format.
const DateLayout = "2006-01-02"

// Granularity selects how a start/end range is stepped.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// DateSpec describes the date points to backfill. CustomDates, when set,
// is used verbatim and wins over the range fields.
type DateSpec struct {
	CustomDates []string
	StartDate   string
	EndDate     string
	Granularity Granularity
}

// Plan expands the spec into ordered date points.
//
// Ranges step by calendar day, by week (start rolled back to its Monday,
// then 7-day steps), or by month (start rolled back to the 1st, then
// first-of-month steps), always inclusive of end. An end before start or an
// unparsable date fails with ErrInvalidDateRange.
func Plan(spec DateSpec) ([]string, error) {
	if len(spec.CustomDates) > 0 {
		for _, d := range spec.CustomDates {
			if _, err := time.Parse(DateLayout, d); err != nil {
				return nil, fmt.Errorf("custom date %q: %w", d, contracts.ErrInvalidDateRange)
			}
		}
		return spec.CustomDates, nil
	}

	start, err := time.Parse(DateLayout, spec.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start date %q: %w", spec.StartDate, contracts.ErrInvalidDateRange)
	}
	end, err := time.Parse(DateLayout, spec.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end date %q: %w", spec.EndDate, contracts.ErrInvalidDateRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s: %w", spec.EndDate, spec.StartDate, contracts.ErrInvalidDateRange)
	}

	granularity := spec.Granularity
	if granularity == "" {
		granularity = GranularityDay
	}

	var step func(time.Time) time.Time
	switch granularity {
	case GranularityDay:
		step = func(d time.Time) time.Time { return d.AddDate(0, 0, 1) }
	case GranularityWeek:
		// Roll back to the Monday of the start week.
		start = start.AddDate(0, 0, -((int(start.Weekday()) + 6) % 7))
		step = func(d time.Time) time.Time { return d.AddDate(0, 0, 7) }
	case GranularityMonth:
		start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		step = func(d time.Time) time.Time { return d.AddDate(0, 1, 0) }
	default:
		return nil, fmt.Errorf("granularity %q: %w", granularity, contracts.ErrInvalidDateRange)
	}

	var dates []string
	for d := start; !d.After(end); d = step(d) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}
