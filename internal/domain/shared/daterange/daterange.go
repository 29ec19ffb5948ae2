package daterange

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must be after start")

// DateRange is a half-open interval [Start, End) at date granularity.
// A stay that checks out on day X does not collide with one checking in
// on day X.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New builds a range after snapping both bounds to UTC midnight.
func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the whole number of nights covered by the range.
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

// Adjacent reports whether the ranges touch without overlapping.
func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.End.Equal(other.Start) || dr.Start.Equal(other.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && d.Before(dr.End)
}

func (dr DateRange) Equal(other DateRange) bool {
	return dr.Start.Equal(other.Start) && dr.End.Equal(other.End)
}

func (dr DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
}
