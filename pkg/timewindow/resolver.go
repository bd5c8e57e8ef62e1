// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package timewindow

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidClock is returned when the injected reference time is unusable.
// Window arithmetic never proceeds without a valid reference time, since a
// corrupt boundary would silently poison every downstream metric.
var ErrInvalidClock = errors.New("invalid reference clock")

// DefaultTimezone is the business timezone the stores operate in.
const DefaultTimezone = "America/Sao_Paulo"

// Window is a closed calendar interval [Start, End] in the business timezone.
// DaysElapsed is only set on the current (partial) week: calendar days from
// its Sunday start to the reference time, inclusive (1-7).
type Window struct {
	Label       string    `json:"label"`
	Start       time.Time `json:"startDate"`
	End         time.Time `json:"endDate"`
	DaysElapsed int       `json:"daysElapsed,omitempty"`
}

// Contains reports whether t falls within the window, bounds inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Weekly holds the three weekly windows every dashboard load needs.
type Weekly struct {
	CurrentWeek      Window `json:"currentWeek"`
	LastCompleteWeek Window `json:"lastCompleteWeek"`
	PreviousWeek     Window `json:"previousWeek"`
}

// Resolver computes calendar-anchored windows in a fixed business timezone.
// The reference time is always injected by the caller; the resolver never
// reads a global clock.
type Resolver struct {
	loc *time.Location
}

// NewResolver creates a resolver for the given IANA timezone name.
func NewResolver(timezone string) (*Resolver, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load business timezone %s: %w", timezone, err)
	}

	return &Resolver{loc: loc}, nil
}

// Location returns the business timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve computes the current partial week, the last complete week and the
// week before that, anchored to Sunday 00:00:00 / Saturday 23:59:59 in the
// business timezone.
func (r *Resolver) Resolve(now time.Time) (Weekly, error) {
	if err := r.checkClock(now); err != nil {
		return Weekly{}, err
	}

	// Normalize once; all boundary math happens in the business timezone.
	now = now.In(r.loc)

	// Most recent Sunday at or before now starts the current week. The
	// Saturday before it ends the most recently completed week.
	currentStart := startOfDay(now, r.loc).AddDate(0, 0, -int(now.Weekday()))
	daysElapsed := int(now.Weekday()) + 1

	lastStart := currentStart.AddDate(0, 0, -7)
	prevStart := lastStart.AddDate(0, 0, -7)

	weekly := Weekly{
		CurrentWeek: Window{
			Label:       "current_week",
			Start:       currentStart,
			End:         now,
			DaysElapsed: daysElapsed,
		},
		LastCompleteWeek: Window{
			Label: "last_complete_week",
			Start: lastStart,
			End:   endOfDay(lastStart.AddDate(0, 0, 6), r.loc),
		},
		PreviousWeek: Window{
			Label: "previous_week",
			Start: prevStart,
			End:   endOfDay(prevStart.AddDate(0, 0, 6), r.loc),
		},
	}

	logrus.Debugf("resolved weekly windows: current start=%s daysElapsed=%d",
		currentStart.Format("2006-01-02"), daysElapsed)

	return weekly, nil
}

// Lookback returns the trailing window [now - days, now].
func (r *Resolver) Lookback(now time.Time, days int) (Window, error) {
	if err := r.checkClock(now); err != nil {
		return Window{}, err
	}
	if days < 1 {
		return Window{}, fmt.Errorf("lookback days must be positive, got %d", days)
	}

	now = now.In(r.loc)

	return Window{
		Label: fmt.Sprintf("lookback_%d", days),
		Start: startOfDay(now, r.loc).AddDate(0, 0, -days),
		End:   now,
	}, nil
}

func (r *Resolver) checkClock(now time.Time) error {
	if now.IsZero() {
		return ErrInvalidClock
	}
	return nil
}

// DaysBetween returns whole calendar days from a to b in the given timezone.
// Same calendar date yields 0 regardless of the time of day.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	// Rounding keeps the count stable across days shortened or stretched
	// by a timezone transition.
	hours := startOfDay(b.In(loc), loc).Sub(startOfDay(a.In(loc), loc)).Hours()
	return int(math.Round(hours / 24))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
}
