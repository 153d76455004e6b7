package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cinedigest/cinedigest/internal/domain"
)

var weekdayByKey = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Listings.BaseURL) == "" {
		return fmt.Errorf("listings.base_url is required")
	}
	if c.Listings.Days < 1 || c.Listings.Days > 14 {
		return fmt.Errorf("listings.days must be between 1 and 14, got %d", c.Listings.Days)
	}
	if c.Listings.Concurrency < 1 {
		c.Listings.Concurrency = 1
	}
	if c.IMDB.Concurrency < 1 {
		c.IMDB.Concurrency = 1
	}
	if len(c.Languages.Approved) == 0 {
		return fmt.Errorf("languages.approved must list at least one language")
	}

	windows := make(map[time.Weekday]domain.Window, len(c.Availability))
	for key, raw := range c.Availability {
		day, ok := weekdayByKey[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return fmt.Errorf("availability: unknown weekday %q (use mon..sun)", key)
		}
		win, err := parseWindow(raw)
		if err != nil {
			return fmt.Errorf("availability.%s: %w", key, err)
		}
		windows[day] = win
	}
	c.windows = Windows{byDay: windows}

	if c.Server.RunEvery != "" {
		d, err := time.ParseDuration(c.Server.RunEvery)
		if err != nil {
			return fmt.Errorf("server.run_every: %w", err)
		}
		if d < time.Minute {
			return fmt.Errorf("server.run_every must be at least 1m, got %s", d)
		}
		c.Server.runEvery = d
	}

	return nil
}

// parseWindow lit une fenêtre "17:00,22:00" (format hérité du settings.ini
// d'origine).
func parseWindow(raw string) (domain.Window, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return domain.Window{}, fmt.Errorf("expected \"HH:MM,HH:MM\", got %q", raw)
	}
	at, err := domain.ParseClock(parts[0])
	if err != nil {
		return domain.Window{}, err
	}
	until, err := domain.ParseClock(parts[1])
	if err != nil {
		return domain.Window{}, err
	}
	w := domain.Window{At: at, Until: until}
	if !w.Valid() {
		return domain.Window{}, fmt.Errorf("window ends before it starts: %q", raw)
	}
	return w, nil
}
