// Package pricing models an electricity price schedule: a set of daily
// time intervals, each with a flat price per kWh, covering 24 hours.
package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var ErrSchedule = errors.New("malformed electricity price schedule")

// Band is one daily interval with a flat price. Start and End are minutes
// since midnight; a band with End <= Start wraps past midnight.
type Band struct {
	Start int
	End   int
	Price float64
}

func (b Band) minutes() int {
	d := b.End - b.Start
	if d <= 0 {
		d += minutesPerDay
	}
	return d
}

func (b Band) contains(minute int) bool {
	if b.Start < b.End {
		return minute >= b.Start && minute < b.End
	}
	return minute >= b.Start || minute < b.End
}

// Schedule is an ordered list of bands. A valid schedule partitions the
// day exactly: bands are chronologically consecutive and sum to 24 hours.
type Schedule []Band

// Flat returns a schedule with a single all-day price.
func Flat(price float64) Schedule {
	return Schedule{{Start: 0, End: 0, Price: price}}
}

// Parse reads a schedule of the form
//
//	"08:30-19:00=0.35,19:00-06:00=0.21,06:00-08:30=0.28"
//
// and validates it.
func Parse(raw string) (Schedule, error) {
	var s Schedule

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		interval, price, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q has no price", ErrSchedule, part)
		}

		from, to, ok := strings.Cut(interval, "-")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an interval", ErrSchedule, interval)
		}

		start, err := parseClock(from)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(to)
		if err != nil {
			return nil, err
		}

		p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
		if err != nil || p < 0 {
			return nil, fmt.Errorf("%w: bad price %q", ErrSchedule, price)
		}

		s = append(s, Band{Start: start, End: end, Price: p})
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the bands are consecutive and cover exactly one day.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no intervals", ErrSchedule)
	}

	total := 0
	for i, b := range s {
		if i > 0 && b.Start != s[i-1].End%minutesPerDay {
			return fmt.Errorf("%w: interval %d does not start where the previous one ends", ErrSchedule, i+1)
		}
		total += b.minutes()
	}

	if total != minutesPerDay {
		return fmt.Errorf("%w: intervals cover %d minutes, want %d", ErrSchedule, total, minutesPerDay)
	}
	if s[0].Start != s[len(s)-1].End%minutesPerDay {
		return fmt.Errorf("%w: last interval does not wrap back to the first", ErrSchedule)
	}
	return nil
}

// PriceAt returns the price per kWh in effect at the given wall-clock time.
func (s Schedule) PriceAt(at time.Time) float64 {
	minute := at.Hour()*60 + at.Minute()
	for _, b := range s {
		if b.contains(minute) {
			return b.Price
		}
	}
	return 0
}

// CostOf prices an energy delta consumed at the given time.
func (s Schedule) CostOf(energyKWh float64, at time.Time) float64 {
	if energyKWh == 0 {
		return 0
	}
	return energyKWh * s.PriceAt(at)
}

func parseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	hh, mm, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, fmt.Errorf("%w: bad time %q", ErrSchedule, raw)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrSchedule, raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrSchedule, raw)
	}

	return (h*60 + m) % minutesPerDay, nil
}
