package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/rarity"
	"github.com/zanvidmar/dropquest/internal/storage"
)

// itemsKey is the collection key for all items. Every mutation is a full
// read-modify-write of the collection.
const itemsKey = "items"

func loadItems(ctx context.Context, kv *storage.Store) []model.Item {
	var items []model.Item
	kv.Get(ctx, itemsKey, &items)
	return items
}

func saveItems(ctx context.Context, kv *storage.Store, items []model.Item) error {
	return kv.Save(ctx, itemsKey, items)
}

// CreateItem creates a new item owned by the given player.
func CreateItem(ctx context.Context, kv *storage.Store, name, playerID string) (*model.Item, error) {
	item := model.Item{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		PlayerID:  playerID,
	}

	items := append(loadItems(ctx, kv), item)
	if err := saveItems(ctx, kv, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns a snapshot of every item.
func ListItems(ctx context.Context, kv *storage.Store) []model.Item {
	return loadItems(ctx, kv)
}

// ListItemsByPlayer returns a snapshot of the items owned by playerID.
func ListItemsByPlayer(ctx context.Context, kv *storage.Store, playerID string) []model.Item {
	var owned []model.Item
	for _, item := range loadItems(ctx, kv) {
		if item.PlayerID != "" && item.PlayerID == playerID {
			owned = append(owned, item)
		}
	}
	return owned
}

// GetItem returns an item by ID, or nil if it doesn't exist.
func GetItem(ctx context.Context, kv *storage.Store, id string) *model.Item {
	for _, item := range loadItems(ctx, kv) {
		if item.ID == id {
			return &item
		}
	}
	return nil
}

// ItemUpdate holds the fields an update may touch; nil means "leave as is".
type ItemUpdate struct {
	Name          *string
	NumberOfRuns  *int
	Rarity        *int
	MinutesPerRun *float64
	CreatedAt     *time.Time
	Found         *bool
}

// UpdateItem merges the update into the stored item. Achievement text stays
// consistent with runs and rarity: whenever the merge touches either and both
// end up set, it is recomputed from the merged values. Returns nil, nil if
// the item doesn't exist.
func UpdateItem(ctx context.Context, kv *storage.Store, id string, update ItemUpdate) (*model.Item, error) {
	items := loadItems(ctx, kv)
	idx := indexOf(items, id)
	if idx == -1 {
		return nil, nil
	}

	item := items[idx]
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.NumberOfRuns != nil {
		item.NumberOfRuns = *update.NumberOfRuns
	}
	if update.Rarity != nil {
		item.Rarity = *update.Rarity
	}
	if update.MinutesPerRun != nil {
		item.MinutesPerRun = *update.MinutesPerRun
	}
	if update.CreatedAt != nil {
		item.CreatedAt = *update.CreatedAt
	}
	if update.Found != nil {
		item.Found = *update.Found
	}

	if (update.NumberOfRuns != nil || update.Rarity != nil) && item.Rarity > 0 {
		item.AchievementText = rarity.AchievementText(item.NumberOfRuns, item.Rarity)
	}

	items[idx] = item
	if err := saveItems(ctx, kv, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddRuns increments an item's run count by delta and recomputes the
// achievement text when a rarity is set. Returns nil, nil if the item
// doesn't exist.
func AddRuns(ctx context.Context, kv *storage.Store, id string, delta int) (*model.Item, error) {
	items := loadItems(ctx, kv)
	idx := indexOf(items, id)
	if idx == -1 {
		return nil, nil
	}

	item := items[idx]
	item.NumberOfRuns += delta
	if item.Rarity > 0 {
		item.AchievementText = rarity.AchievementText(item.NumberOfRuns, item.Rarity)
	}

	items[idx] = item
	if err := saveItems(ctx, kv, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItemRarity sets an item's 1-in-N rarity.
func SetItemRarity(ctx context.Context, kv *storage.Store, id string, rarityN int) (*model.Item, error) {
	return UpdateItem(ctx, kv, id, ItemUpdate{Rarity: &rarityN})
}

// SetItemCreatedAt updates the "hunting since" date.
func SetItemCreatedAt(ctx context.Context, kv *storage.Store, id string, createdAt time.Time) (*model.Item, error) {
	return UpdateItem(ctx, kv, id, ItemUpdate{CreatedAt: &createdAt})
}

// SetItemName renames an item.
func SetItemName(ctx context.Context, kv *storage.Store, id, name string) (*model.Item, error) {
	return UpdateItem(ctx, kv, id, ItemUpdate{Name: &name})
}

// SetItemFound flips an item's found flag. The owning player's cached found
// count is the caller's concern; the flag here is the source of truth.
func SetItemFound(ctx context.Context, kv *storage.Store, id string, found bool) (*model.Item, error) {
	return UpdateItem(ctx, kv, id, ItemUpdate{Found: &found})
}

// SetItemMinutesPerRun updates the per-run time estimate.
func SetItemMinutesPerRun(ctx context.Context, kv *storage.Store, id string, minutes float64) (*model.Item, error) {
	return UpdateItem(ctx, kv, id, ItemUpdate{MinutesPerRun: &minutes})
}

// DeleteItem removes an item from the collection.
func DeleteItem(ctx context.Context, kv *storage.Store, id string) error {
	items := loadItems(ctx, kv)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return saveItems(ctx, kv, kept)
}

// DeleteItemsByPlayer removes every item owned by playerID. Used by the
// player delete cascade.
func DeleteItemsByPlayer(ctx context.Context, kv *storage.Store, playerID string) error {
	items := loadItems(ctx, kv)
	kept := items[:0]
	for _, item := range items {
		if item.PlayerID != playerID {
			kept = append(kept, item)
		}
	}
	return saveItems(ctx, kv, kept)
}

func indexOf(items []model.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
