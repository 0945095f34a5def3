package model

import "time"

// Item represents a single collectible a player is farming.
type Item struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	NumberOfRuns    int       `json:"numberOfRuns"`
	CreatedAt       time.Time `json:"createdAt"`
	PlayerID        string    `json:"playerId"`
	Rarity          int       `json:"rarity,omitempty"`
	MinutesPerRun   float64   `json:"minutesPerRun,omitempty"`
	AchievementText string    `json:"achievementText,omitempty"`
	Found           bool      `json:"found,omitempty"`
}

// Item field limits enforced at the API boundary.
const (
	MaxItemNameLength = 100
	MaxRuns           = 1000000
	MaxRarity         = 1000000
	MaxMinutesPerRun  = 10000
)
