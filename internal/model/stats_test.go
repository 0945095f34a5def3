package model

import (
	"testing"
	"time"
)

func TestTotalRuns(t *testing.T) {
	items := []Item{{NumberOfRuns: 10}, {NumberOfRuns: 5}, {}}
	if got := TotalRuns(items); got != 15 {
		t.Errorf("TotalRuns = %d, want 15", got)
	}
	if got := TotalRuns(nil); got != 0 {
		t.Errorf("TotalRuns(nil) = %d, want 0", got)
	}
}

func TestDaysSinceFloorsAtOne(t *testing.T) {
	if got := DaysSince(time.Now()); got != 1 {
		t.Errorf("DaysSince(now) = %d, want 1", got)
	}
	if got := DaysSince(time.Now().AddDate(0, 0, -10)); got != 10 {
		t.Errorf("DaysSince(10 days ago) = %d, want 10", got)
	}
}

func TestRunsPerDay(t *testing.T) {
	tenDaysAgo := time.Now().AddDate(0, 0, -10)
	items := []Item{
		{NumberOfRuns: 20, CreatedAt: tenDaysAgo},
		{NumberOfRuns: 5, CreatedAt: time.Now().AddDate(0, 0, -2)},
	}
	// 25 runs over 10 days since the earliest hunt started.
	if got := RunsPerDay(items); got != 2.5 {
		t.Errorf("RunsPerDay = %v, want 2.5", got)
	}

	if got := RunsPerDay(nil); got != 0 {
		t.Errorf("RunsPerDay(nil) = %v, want 0", got)
	}
	if got := RunsPerDay([]Item{{CreatedAt: tenDaysAgo}}); got != 0 {
		t.Errorf("RunsPerDay with no runs = %v, want 0", got)
	}
}

func TestSortPlayersByLastUsed(t *testing.T) {
	now := time.Now()
	old := now.AddDate(0, 0, -30)
	recent := now.AddDate(0, 0, -1)

	players := []Player{
		{ID: "created-long-ago", CreatedAt: old},
		{ID: "used-yesterday", CreatedAt: old, LastUsedAt: &recent},
		{ID: "created-now", CreatedAt: now},
	}

	sorted := SortPlayersByLastUsed(players)
	if sorted[0].ID != "created-now" {
		t.Errorf("expected newest activity first, got %q", sorted[0].ID)
	}
	if sorted[1].ID != "used-yesterday" {
		t.Errorf("expected lastUsedAt to beat old createdAt, got %q", sorted[1].ID)
	}

	// The input order is untouched.
	if players[0].ID != "created-long-ago" {
		t.Error("sort must not mutate its input")
	}
}

func TestMostRecentPlayer(t *testing.T) {
	if got := MostRecentPlayer(nil); got != nil {
		t.Errorf("expected nil for no players, got %+v", got)
	}

	recent := time.Now()
	players := []Player{
		{ID: "a", CreatedAt: recent.AddDate(0, 0, -5)},
		{ID: "b", CreatedAt: recent.AddDate(0, 0, -5), LastUsedAt: &recent},
	}
	if got := MostRecentPlayer(players); got == nil || got.ID != "b" {
		t.Errorf("expected player b, got %+v", got)
	}
}
