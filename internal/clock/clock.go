// Package clock supplies the current instant in a fixed civil time zone.
//
// Receipt timestamps and the on-time decision both read from a Clock, so the
// daily cutoff keeps its meaning regardless of the host's local zone.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for minimal container images
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Zoned is a wall clock whose readings are expressed in Loc.
type Zoned struct {
	Loc *time.Location
}

// NewZoned returns a Zoned clock for loc (UTC when nil).
func NewZoned(loc *time.Location) Zoned {
	if loc == nil {
		loc = time.UTC
	}
	return Zoned{Loc: loc}
}

// Now returns time.Now converted into the clock's zone.
func (z Zoned) Now() time.Time {
	loc := z.Loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now implements Clock.
func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time { return f() }

// LoadZone resolves an IANA zone name such as "Europe/Moscow".
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}
