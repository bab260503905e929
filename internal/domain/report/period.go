package report

import (
	"fmt"
	"time"

	"github.com/finledger/backend/internal/domain/shared"
)

// PeriodType classifies a reporting period
type PeriodType string

const (
	PeriodTypeMonthly   PeriodType = "MONTHLY"   // 月度
	PeriodTypeQuarterly PeriodType = "QUARTERLY" // 季度
	PeriodTypeYearly    PeriodType = "YEARLY"    // 年度
	PeriodTypeCustom    PeriodType = "CUSTOM"    // 自定义
)

// DisplayName returns the English display name
func (p PeriodType) DisplayName() string {
	switch p {
	case PeriodTypeMonthly:
		return "Monthly"
	case PeriodTypeQuarterly:
		return "Quarterly"
	case PeriodTypeYearly:
		return "Yearly"
	}
	return "Custom"
}

// ReportPeriod is an inclusive date range. Dates carry no time of day.
type ReportPeriod struct {
	Start time.Time
	End   time.Time
	Type  PeriodType
}

// Monthly returns the calendar month
func Monthly(year int, month time.Month) (ReportPeriod, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return newPeriod(start, start.AddDate(0, 1, -1), PeriodTypeMonthly)
}

// Quarterly returns the calendar quarter (1-4)
func Quarterly(year, quarter int) (ReportPeriod, error) {
	if quarter < 1 || quarter > 4 {
		return ReportPeriod{}, shared.NewValidationError("INVALID_QUARTER", "Quarter must be between 1 and 4")
	}
	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return newPeriod(start, start.AddDate(0, 3, -1), PeriodTypeQuarterly)
}

// Yearly returns the calendar year
func Yearly(year int) (ReportPeriod, error) {
	return newPeriod(
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		PeriodTypeYearly,
	)
}

// Custom returns an arbitrary range
func Custom(start, end time.Time) (ReportPeriod, error) {
	return newPeriod(dateOnly(start), dateOnly(end), PeriodTypeCustom)
}

// PreviousMonth returns the month before now
func PreviousMonth(now time.Time) (ReportPeriod, error) {
	last := now.AddDate(0, -1, 0)
	return Monthly(last.Year(), last.Month())
}

func newPeriod(start, end time.Time, periodType PeriodType) (ReportPeriod, error) {
	if err := validateRange(start, end, time.Now()); err != nil {
		return ReportPeriod{}, err
	}
	return ReportPeriod{Start: start, End: end, Type: periodType}, nil
}

// DurationInDays counts both endpoints
func (p ReportPeriod) DurationInDays() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Contains reports whether date falls inside the period
func (p ReportPeriod) Contains(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports whether the two periods share at least one day
func (p ReportPeriod) Overlaps(other ReportPeriod) bool {
	return !p.End.Before(other.Start) && !p.Start.After(other.End)
}

// Description returns e.g. "Monthly (2024-01-01 to 2024-01-31)"
func (p ReportPeriod) Description() string {
	return fmt.Sprintf("%s (%s to %s)", p.Type.DisplayName(), p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

// validateRange requires start <= end <= today
func validateRange(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return shared.NewValidationError("INVALID_PERIOD", "Start date and end date cannot be empty")
	}
	if dateOnly(start).After(dateOnly(end)) {
		return shared.NewValidationError("INVALID_PERIOD", "Start date cannot be after end date")
	}
	if dateOnly(end).After(dateOnly(now)) {
		return shared.NewValidationError("INVALID_PERIOD", "End date cannot be in the future")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
