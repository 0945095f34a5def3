package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/storage"
)

// playersKey is the collection key for all players.
const playersKey = "players"

func loadPlayers(ctx context.Context, kv *storage.Store) []model.Player {
	var players []model.Player
	kv.Get(ctx, playersKey, &players)
	return players
}

func savePlayers(ctx context.Context, kv *storage.Store, players []model.Player) error {
	return kv.Save(ctx, playersKey, players)
}

// CreatePlayer creates a new empty player profile.
func CreatePlayer(ctx context.Context, kv *storage.Store) (*model.Player, error) {
	player := model.Player{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	players := append(loadPlayers(ctx, kv), player)
	if err := savePlayers(ctx, kv, players); err != nil {
		return nil, err
	}
	return &player, nil
}

// ListPlayers returns a snapshot of every player. Items are never embedded;
// join them with ListItemsByPlayer when a full view is needed.
func ListPlayers(ctx context.Context, kv *storage.Store) []model.Player {
	return loadPlayers(ctx, kv)
}

// GetPlayer returns a player by ID, or nil if it doesn't exist.
func GetPlayer(ctx context.Context, kv *storage.Store, id string) *model.Player {
	for _, player := range loadPlayers(ctx, kv) {
		if player.ID == id {
			return &player
		}
	}
	return nil
}

func updatePlayer(ctx context.Context, kv *storage.Store, id string, mutate func(*model.Player)) (*model.Player, error) {
	players := loadPlayers(ctx, kv)
	for i := range players {
		if players[i].ID != id {
			continue
		}
		mutate(&players[i])
		if err := savePlayers(ctx, kv, players); err != nil {
			return nil, err
		}
		return &players[i], nil
	}
	return nil, nil
}

// SetHeroName updates a player's display name. A name that trims to empty
// clears the stored value.
func SetHeroName(ctx context.Context, kv *storage.Store, id, heroName string) (*model.Player, error) {
	return updatePlayer(ctx, kv, id, func(p *model.Player) {
		p.HeroName = strings.TrimSpace(heroName)
	})
}

// SetFoundItemsCount overwrites a player's cached found-item count.
func SetFoundItemsCount(ctx context.Context, kv *storage.Store, id string, count int) (*model.Player, error) {
	return updatePlayer(ctx, kv, id, func(p *model.Player) {
		p.FoundItemsCount = count
	})
}

// TouchPlayer records that a player was just selected to continue a session.
func TouchPlayer(ctx context.Context, kv *storage.Store, id string) (*model.Player, error) {
	now := time.Now().UTC()
	return updatePlayer(ctx, kv, id, func(p *model.Player) {
		p.LastUsedAt = &now
	})
}

// DeletePlayer removes a player and cascades to every item the player owns,
// so no orphaned items remain reachable.
func DeletePlayer(ctx context.Context, kv *storage.Store, id string) error {
	players := loadPlayers(ctx, kv)
	kept := players[:0]
	for _, player := range players {
		if player.ID != id {
			kept = append(kept, player)
		}
	}
	if err := savePlayers(ctx, kv, kept); err != nil {
		return err
	}
	return DeleteItemsByPlayer(ctx, kv, id)
}

// CountFound counts the items in the supplied list that have dropped. Pure
// helper; the found flag on each item is the source of truth, never the
// cached counter.
func CountFound(items []model.Item) int {
	count := 0
	for _, item := range items {
		if item.Found {
			count++
		}
	}
	return count
}
