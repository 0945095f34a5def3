package model

import (
	"math"
	"slices"
	"time"
)

// TotalRuns sums farming runs across all items.
func TotalRuns(items []Item) int {
	total := 0
	for _, item := range items {
		total += item.NumberOfRuns
	}
	return total
}

// DaysSince returns the number of whole days between start and now, never
// less than one so that rate calculations stay finite.
func DaysSince(start time.Time) int {
	days := int(math.Floor(time.Since(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// RunsPerDay computes the average daily run rate across all items, measured
// from the earliest "hunting since" date, rounded to two decimals.
func RunsPerDay(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}

	earliest := items[0].CreatedAt
	for _, item := range items[1:] {
		if item.CreatedAt.Before(earliest) {
			earliest = item.CreatedAt
		}
	}

	total := TotalRuns(items)
	days := DaysSince(earliest)
	if total == 0 || days == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(days)*100) / 100
}

// SortPlayersByLastUsed returns a copy of players ordered most recently used
// first, falling back to creation time for players never selected.
func SortPlayersByLastUsed(players []Player) []Player {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b Player) int {
		return b.LastActivity().Compare(a.LastActivity())
	})
	return sorted
}

// MostRecentPlayer returns the most recently used player, or nil if there
// are no players.
func MostRecentPlayer(players []Player) *Player {
	if len(players) == 0 {
		return nil
	}
	sorted := SortPlayersByLastUsed(players)
	return &sorted[0]
}
