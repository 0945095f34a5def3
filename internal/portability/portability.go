// Package portability implements backup export and import of the full data
// set as a single JSON document.
package portability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/storage"
)

// AppName tags every backup so files from other apps are refused on import.
const AppName = "DropQuest"

// FormatVersion is written into every export.
const FormatVersion = "1.0.0"

const (
	playersKey = "players"
	itemsKey   = "items"
)

// Archive is the on-disk backup format.
type Archive struct {
	Players    []model.Player `json:"players"`
	Items      []model.Item   `json:"items"`
	Version    string         `json:"version"`
	ExportDate time.Time      `json:"exportDate"`
	AppName    string         `json:"appName"`
}

// ImportResult reports how many records an import added or replaced.
type ImportResult struct {
	PlayersImported int
	ItemsImported   int
}

// Summary describes the current data set for display.
type Summary struct {
	Players   int
	Items     int
	SizeBytes int64
}

// Export snapshots all players and items into an archive.
func Export(ctx context.Context, kv *storage.Store) *Archive {
	var players []model.Player
	var items []model.Item
	kv.Get(ctx, playersKey, &players)
	kv.Get(ctx, itemsKey, &items)

	if players == nil {
		players = []model.Player{}
	}
	if items == nil {
		items = []model.Item{}
	}

	return &Archive{
		Players:    players,
		Items:      items,
		Version:    FormatVersion,
		ExportDate: time.Now().UTC(),
		AppName:    AppName,
	}
}

// Write serializes the archive as indented JSON.
func (a *Archive) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// rawArchive defers element decoding so each record can be checked for its
// minimum required fields before the whole file is trusted.
type rawArchive struct {
	Players []json.RawMessage `json:"players"`
	Items   []json.RawMessage `json:"items"`
	Version string            `json:"version"`
	AppName string            `json:"appName"`
}

func validateArchive(raw *rawArchive) error {
	if raw.AppName != AppName {
		return errors.New("this file is not a DropQuest backup file")
	}
	if raw.Version == "" {
		return errors.New("backup file is missing version information")
	}

	for _, p := range raw.Players {
		var fields struct {
			ID        string `json:"id"`
			CreatedAt string `json:"createdAt"`
		}
		if err := json.Unmarshal(p, &fields); err != nil || fields.ID == "" {
			return errors.New("invalid player data - missing or invalid ID")
		}
		if fields.CreatedAt == "" {
			return errors.New("invalid player data - missing or invalid creation date")
		}
	}

	for _, i := range raw.Items {
		var fields struct {
			ID           string           `json:"id"`
			Name         string           `json:"name"`
			NumberOfRuns *json.RawMessage `json:"numberOfRuns"`
		}
		if err := json.Unmarshal(i, &fields); err != nil || fields.ID == "" {
			return errors.New("invalid item data - missing or invalid ID")
		}
		if fields.Name == "" {
			return errors.New("invalid item data - missing or invalid name")
		}
		if fields.NumberOfRuns != nil {
			var n float64
			if err := json.Unmarshal(*fields.NumberOfRuns, &n); err != nil {
				return errors.New("invalid item data - numberOfRuns must be a number")
			}
		}
	}

	return nil
}

// Import reads a backup and loads it into the store. In merge mode records
// whose IDs already exist are skipped; in replace mode the current data set
// is overwritten wholesale.
func Import(ctx context.Context, kv *storage.Store, r io.Reader, replace bool) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}

	var raw rawArchive
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New("invalid file format - not a valid JSON object")
	}
	if err := validateArchive(&raw); err != nil {
		return nil, err
	}

	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, errors.New("invalid file format - not a valid JSON object")
	}

	finalPlayers := archive.Players
	finalItems := archive.Items
	result := &ImportResult{
		PlayersImported: len(archive.Players),
		ItemsImported:   len(archive.Items),
	}

	if !replace {
		var existingPlayers []model.Player
		var existingItems []model.Item
		kv.Get(ctx, playersKey, &existingPlayers)
		kv.Get(ctx, itemsKey, &existingItems)

		playerIDs := make(map[string]bool, len(existingPlayers))
		for _, p := range existingPlayers {
			playerIDs[p.ID] = true
		}
		itemIDs := make(map[string]bool, len(existingItems))
		for _, i := range existingItems {
			itemIDs[i.ID] = true
		}

		finalPlayers = existingPlayers
		result.PlayersImported = 0
		for _, p := range archive.Players {
			if !playerIDs[p.ID] {
				finalPlayers = append(finalPlayers, p)
				result.PlayersImported++
			}
		}

		finalItems = existingItems
		result.ItemsImported = 0
		for _, i := range archive.Items {
			if !itemIDs[i.ID] {
				finalItems = append(finalItems, i)
				result.ItemsImported++
			}
		}
	}

	if err := kv.Save(ctx, playersKey, finalPlayers); err != nil {
		return nil, err
	}
	if err := kv.Save(ctx, itemsKey, finalItems); err != nil {
		return nil, err
	}

	return result, nil
}

// Summarize reports record counts and the serialized size of the namespace.
func Summarize(ctx context.Context, kv *storage.Store) (*Summary, error) {
	archive := Export(ctx, kv)
	size, err := kv.Size(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Players:   len(archive.Players),
		Items:     len(archive.Items),
		SizeBytes: size,
	}, nil
}
