package domain

import (
	"testing"
	"time"
)

func TestDate_WeekdayName(t *testing.T) {
	// 2026-09-07 est un lundi.
	d := NewDate(2026, time.September, 7)
	if d.WeekdayName() != "Mon" {
		t.Fatalf("unexpected weekday: %q", d.WeekdayName())
	}
	if d.AddDays(5).WeekdayName() != "Sat" {
		t.Fatalf("unexpected weekday after AddDays: %q", d.AddDays(5).WeekdayName())
	}
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(2026, time.September, 7)
	b := a.AddDays(1)
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %s before %s", a, b)
	}
	if a.Before(a) {
		t.Fatalf("date should not order against itself")
	}
	// Changement de mois.
	endOfMonth := NewDate(2026, time.September, 30)
	if next := endOfMonth.AddDays(1); next.String() != "2026-10-01" {
		t.Fatalf("unexpected rollover: %s", next)
	}
}

func TestDate_TextRoundtrip(t *testing.T) {
	d := NewDate(2026, time.September, 7)
	b, err := d.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Date
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Fatalf("roundtrip mismatch: %s != %s", back, d)
	}
}
