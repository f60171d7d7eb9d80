// Package schedule resolves when a simulated-live webinar starts for a viewer:
// just-in-time delays, recurring weekly slots, explicit date lists, on-demand.
// All times are computed in the schedule's IANA zone and returned in UTC.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Type selects how a webinar's watch start time is computed.
type Type string

const (
	TypeJustInTime    Type = "JUST_IN_TIME"
	TypeRecurring     Type = "RECURRING"
	TypeSpecificDates Type = "SPECIFIC_DATES"
	TypeOnDemand      Type = "ON_DEMAND"
)

const (
	// DefaultJustInTimeDelayMinutes is used when a webinar does not configure its own delay.
	DefaultJustInTimeDelayMinutes = 15
	// maxSearchDays bounds the forward search for recurring slots.
	maxSearchDays = 60
)

// RecurringSchedule describes a weekly repeating broadcast window.
type RecurringSchedule struct {
	Days     []time.Weekday `json:"days"`     // 0=Sunday .. 6=Saturday
	Times    []string       `json:"times"`    // 24h "HH:MM" in Timezone
	Timezone string         `json:"timezone"` // IANA zone name, e.g. "Asia/Tokyo"
}

// Options carries the schedule policy inputs for ResolveStartAt.
type Options struct {
	JustInTimeDelayMinutes int
	Recurring              *RecurringSchedule
	SpecificDates          []string // RFC3339
	SelectedTime           *time.Time
}

// JustInTimeStart returns registeredAt plus the configured delay.
func JustInTimeStart(registeredAt time.Time, delayMinutes int) time.Time {
	return registeredAt.Add(time.Duration(delayMinutes) * time.Minute)
}

type clockTime struct {
	hour, minute int
}

func parseClock(s string) (clockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return clockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return clockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return clockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return clockTime{hour: h, minute: m}, nil
}

// NextAvailableTimes returns up to count upcoming slots strictly after from,
// searching day by day in the schedule's zone up to 60 days ahead. An empty
// day or time list yields no candidates and no error.
func NextAvailableTimes(s RecurringSchedule, count int, from time.Time) ([]time.Time, error) {
	if len(s.Days) == 0 || len(s.Times) == 0 {
		return nil, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	clocks := make([]clockTime, 0, len(s.Times))
	for _, t := range s.Times {
		ct, err := parseClock(t)
		if err != nil {
			return nil, err
		}
		clocks = append(clocks, ct)
	}
	enabled := make(map[time.Weekday]bool, len(s.Days))
	for _, d := range s.Days {
		enabled[d] = true
	}

	zonedNow := from.In(loc)
	y, mo, d := zonedNow.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, loc)

	var results []time.Time
	for checked := 0; len(results) < count && checked < maxSearchDays; checked++ {
		if enabled[day.Weekday()] {
			for _, ct := range clocks {
				candidate := time.Date(day.Year(), day.Month(), day.Day(), ct.hour, ct.minute, 0, 0, loc)
				if candidate.After(from) {
					results = append(results, candidate.UTC())
					if len(results) >= count {
						break
					}
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Before(results[j]) })
	return results, nil
}

// NextFromSpecificDates returns up to count dates strictly after from, sorted
// ascending. Entries that fail to parse as RFC3339 are skipped.
func NextFromSpecificDates(dates []string, count int, from time.Time) []time.Time {
	var results []time.Time
	for _, s := range dates {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if t.After(from) {
			results = append(results, t.UTC())
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Before(results[j]) })
	if len(results) > count {
		results = results[:count]
	}
	return results
}

// ResolveStartAt computes the concrete watch start time for a registration.
// When the viewer already picked a slot it is used verbatim. If a recurring or
// specific-date schedule produces no candidate, the start falls back to
// registeredAt plus 15 minutes.
func ResolveStartAt(t Type, registeredAt time.Time, opts Options) time.Time {
	fallback := JustInTimeStart(registeredAt, DefaultJustInTimeDelayMinutes)

	switch t {
	case TypeJustInTime:
		delay := opts.JustInTimeDelayMinutes
		if delay <= 0 {
			delay = DefaultJustInTimeDelayMinutes
		}
		return JustInTimeStart(registeredAt, delay)

	case TypeRecurring:
		if opts.SelectedTime != nil {
			return *opts.SelectedTime
		}
		if opts.Recurring != nil {
			next, err := NextAvailableTimes(*opts.Recurring, 1, registeredAt)
			if err == nil && len(next) > 0 {
				return next[0]
			}
		}
		return fallback

	case TypeSpecificDates:
		if opts.SelectedTime != nil {
			return *opts.SelectedTime
		}
		if next := NextFromSpecificDates(opts.SpecificDates, 1, registeredAt); len(next) > 0 {
			return next[0]
		}
		return fallback

	case TypeOnDemand:
		return registeredAt

	default:
		return fallback
	}
}
