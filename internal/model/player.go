package model

import "time"

// Player represents a player profile. Items are never embedded in the stored
// record; they are joined on PlayerID at read time.
type Player struct {
	ID              string     `json:"id"`
	CreatedAt       time.Time  `json:"createdAt"`
	HeroName        string     `json:"heroName,omitempty"`
	FoundItemsCount int        `json:"foundItemsCount"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

// MaxHeroNameLength limits sanitized hero names.
const MaxHeroNameLength = 50

// LastActivity returns the timestamp used for "continue quest" ordering:
// LastUsedAt when set, CreatedAt otherwise.
func (p Player) LastActivity() time.Time {
	if p.LastUsedAt != nil {
		return *p.LastUsedAt
	}
	return p.CreatedAt
}
