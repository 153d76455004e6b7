package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Clock est une heure de journée (sans date ni fuseau), telle qu'affichée
// sur les grilles horaires: "18:30".
type Clock struct {
	Hour   int
	Minute int
}

var ErrBadClock = errors.New("malformed clock value")

// ParseClock parses a 24-hour "HH:MM" label.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

func (c Clock) After(o Clock) bool {
	return c.Minutes() > o.Minutes()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window est la plage [At, Until] pendant laquelle une séance est pertinente.
// Les deux bornes sont incluses.
type Window struct {
	At    Clock `json:"at"`
	Until Clock `json:"until"`
}

func (w Window) Contains(c Clock) bool {
	return !c.Before(w.At) && !c.After(w.Until)
}

func (w Window) Valid() bool {
	return !w.Until.Before(w.At)
}

func (w Window) String() string {
	return w.At.String() + "," + w.Until.String()
}
