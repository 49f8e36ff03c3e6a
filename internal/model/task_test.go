package model

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewTaskComputesPriority(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task, err := NewTask("Essay draft", now.AddDate(0, 0, 2), "writing", 40, 0, now, time.UTC)
	if err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
	if task.Sections != 1 {
		t.Fatalf("expected sections default 1, got %d", task.Sections)
	}
	if task.Priority != 0.25+20 {
		t.Fatalf("unexpected priority: %v", task.Priority)
	}
	if task.Energy() != EnergyMedium {
		t.Fatalf("expected medium tier, got %s", task.Energy())
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if _, err := NewTask("  ", now, "reading", 30, 1, now, time.UTC); err == nil {
		t.Fatal("expected error for blank name")
	}
	_, err := NewTask("Read", now, "reading", 0, 1, now, time.UTC)
	if err == nil || !errors.Is(err, ErrInvalidEstimate) {
		t.Fatalf("expected ErrInvalidEstimate, got: %v", err)
	}
	if _, err := NewTask("Read", time.Time{}, "reading", 10, 1, now, time.UTC); err == nil {
		t.Fatal("expected error for missing deadline")
	}
	if _, err := NewTask("Read", now, "reading", 10, -2, now, time.UTC); err == nil {
		t.Fatal("expected error for negative sections")
	}
}

func TestPriorityOverdueIsFiniteAndLarger(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	tomorrow := Priority(now.AddDate(0, 0, 1), 30, now, time.UTC)
	for _, offset := range []int{0, -1, -30} {
		p := Priority(now.AddDate(0, 0, offset), 30, now, time.UTC)
		if math.IsInf(p, 0) || math.IsNaN(p) {
			t.Fatalf("offset %d: expected finite priority, got %v", offset, p)
		}
		if p <= tomorrow {
			t.Fatalf("offset %d: expected priority %v above tomorrow's %v", offset, p, tomorrow)
		}
	}
}

func TestDaysLeftNormalizesToReferenceZone(t *testing.T) {
	chicago := time.FixedZone("CST", -6*3600)
	// 03:00 UTC on the 10th is still the 9th in Chicago.
	now := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 2, 10, 12, 0, 0, 0, chicago)
	if got := DaysLeft(deadline, now, chicago); got != 1 {
		t.Fatalf("expected 1 day left in reference zone, got %d", got)
	}
	if got := DaysLeft(deadline, now, time.UTC); got != 0 {
		t.Fatalf("expected 0 days left in UTC, got %d", got)
	}
}

func TestHistoryEntryRoundTripToTask(t *testing.T) {
	now := time.Date(2026, 2, 9, 14, 35, 0, 0, time.UTC)
	task, err := NewTask("Lab report", now.AddDate(0, 0, 3), "project", 90, 1, now, time.UTC)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	task.MarkFinished(75)
	entry := NewHistoryEntry(task, now)
	if entry.CompletedDate != NewDate(2026, 2, 9) || entry.CompletedAt.String() != "14:35" {
		t.Fatalf("unexpected completion stamp: %+v", entry)
	}
	rebuilt := entry.Task(now, time.UTC)
	if !rebuilt.Finished || rebuilt.ActualTime != 75 || rebuilt.Duration() != 75 {
		t.Fatalf("unexpected rebuilt task: %+v", rebuilt)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		minutes int
		want    EnergyTier
	}{
		{10, EnergyLow},
		{30, EnergyLow},
		{31, EnergyMedium},
		{90, EnergyMedium},
		{91, EnergyHigh},
	}
	for _, tc := range cases {
		if got := TierFor(tc.minutes); got != tc.want {
			t.Fatalf("TierFor(%d) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
	if _, err := ParseEnergyTier("extreme"); !errors.Is(err, ErrUnknownEnergyTier) {
		t.Fatalf("expected ErrUnknownEnergyTier, got %v", err)
	}
	if tier, err := ParseEnergyTier(" HIGH "); err != nil || tier != EnergyHigh {
		t.Fatalf("expected high, got %s, %v", tier, err)
	}
}
