package api

import (
	"net/http"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/storage"
	"github.com/zanvidmar/dropquest/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	KV *storage.Store
}

type createItemRequest struct {
	Name     string `json:"name"`
	PlayerID string `json:"playerId"`
}

type updateItemRequest struct {
	ItemID        string   `json:"itemId"`
	Name          *string  `json:"name"`
	NumberOfRuns  *int     `json:"numberOfRuns"`
	Rarity        *int     `json:"rarity"`
	MinutesPerRun *float64 `json:"minutesPerRun"`
	CreatedAt     *string  `json:"createdAt"`
}

type markFoundRequest struct {
	ItemID string `json:"itemId"`
	Found  *bool  `json:"found"`
}

// List handles GET /api/items?playerId=X. A missing or blank playerId is an
// empty result, not an error.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		jsonResponse(w, http.StatusOK, []model.Item{})
		return
	}

	items := store.ListItemsByPlayer(r.Context(), h.KV, playerID)
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := store.GetItem(r.Context(), h.KV, r.PathValue("id"))
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, msg := sanitizeItemName(req.Name)
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validatePlayerID(req.PlayerID); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := store.CreateItem(r.Context(), h.KV, name, req.PlayerID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PATCH /api/items. Any subset of the updatable fields may be
// present; everything is validated before the first write. A numberOfRuns
// value at or above the current count is applied as an addition of the
// difference so achievement text recomputes through the runs-added path; a
// lower value is a direct overwrite.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateItemID(req.ItemID); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	update := store.ItemUpdate{
		Rarity:        req.Rarity,
		MinutesPerRun: req.MinutesPerRun,
	}

	if req.Name != nil {
		name, msg := sanitizeItemName(*req.Name)
		if msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
		update.Name = &name
	}
	if req.NumberOfRuns != nil {
		if msg := validateRuns(*req.NumberOfRuns); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Rarity != nil {
		if msg := validateRarity(*req.Rarity); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.MinutesPerRun != nil {
		if msg := validateMinutesPerRun(*req.MinutesPerRun); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.CreatedAt != nil {
		parsed, msg := parseItemDate(*req.CreatedAt)
		if msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
		update.CreatedAt = &parsed
	}

	ctx := r.Context()
	var item *model.Item
	var err error

	if req.NumberOfRuns != nil {
		current := store.GetItem(ctx, h.KV, req.ItemID)
		if current == nil {
			jsonError(w, http.StatusNotFound, "Item not found")
			return
		}
		if *req.NumberOfRuns >= current.NumberOfRuns {
			item, err = store.AddRuns(ctx, h.KV, req.ItemID, *req.NumberOfRuns-current.NumberOfRuns)
		} else {
			item, err = store.UpdateItem(ctx, h.KV, req.ItemID, store.ItemUpdate{NumberOfRuns: req.NumberOfRuns})
		}
		if err != nil {
			storeError(w, err)
			return
		}
	}

	if update != (store.ItemUpdate{}) {
		item, err = store.UpdateItem(ctx, h.KV, req.ItemID, update)
		if err != nil {
			storeError(w, err)
			return
		}
	}

	// A body with no updatable fields is a no-op, not a miss.
	if req.NumberOfRuns == nil && update == (store.ItemUpdate{}) {
		item = store.GetItem(ctx, h.KV, req.ItemID)
	}

	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// MarkFound handles PATCH /api/items/found: it flips the item's found flag
// and refreshes the owning player's cached found-item count from the live
// item set.
func (h *ItemsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	var req markFoundRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Found must be a boolean value")
		return
	}

	if msg := validateItemID(req.ItemID); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Found == nil {
		jsonError(w, http.StatusBadRequest, "Found is required")
		return
	}

	ctx := r.Context()
	item, err := store.SetItemFound(ctx, h.KV, req.ItemID, *req.Found)
	if err != nil {
		storeError(w, err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	owned := store.ListItemsByPlayer(ctx, h.KV, item.PlayerID)
	if _, err := store.SetFoundItemsCount(ctx, h.KV, item.PlayerID, store.CountFound(owned)); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if msg := validateItemID(id); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	if store.GetItem(ctx, h.KV, id) == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err := store.DeleteItem(ctx, h.KV, id); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
