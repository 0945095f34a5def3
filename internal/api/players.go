package api

import (
	"net/http"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/rarity"
	"github.com/zanvidmar/dropquest/internal/storage"
	"github.com/zanvidmar/dropquest/internal/store"
)

// PlayersHandler handles player endpoints.
type PlayersHandler struct {
	KV *storage.Store
}

type updateHeroNameRequest struct {
	HeroName string `json:"heroName"`
}

// playerView is the response for GET /api/player/{id}: the stored record
// plus joined items, a found count recomputed from those items, and the
// rarity-weighted luck metric.
type playerView struct {
	model.Player
	Items []model.Item `json:"items"`
	Luck  float64      `json:"luck"`
}

// List handles GET /api/players. Items are not joined here.
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	players := store.ListPlayers(r.Context(), h.KV)
	if players == nil {
		players = []model.Player{}
	}
	jsonResponse(w, http.StatusOK, players)
}

// Create handles POST /api/players.
func (h *PlayersHandler) Create(w http.ResponseWriter, r *http.Request) {
	player, err := store.CreatePlayer(r.Context(), h.KV)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, player)
}

// Get handles GET /api/player/{id}. The found-item count in the response is
// always recomputed from the live item set; the cached value on the stored
// record is never trusted here.
func (h *PlayersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	player := store.GetPlayer(ctx, h.KV, r.PathValue("id"))
	if player == nil {
		jsonError(w, http.StatusNotFound, "Player not found")
		return
	}

	items := store.ListItemsByPlayer(ctx, h.KV, player.ID)
	if items == nil {
		items = []model.Item{}
	}

	view := playerView{
		Player: *player,
		Items:  items,
		Luck:   rarity.PlayerLuck(items),
	}
	view.FoundItemsCount = store.CountFound(items)

	jsonResponse(w, http.StatusOK, view)
}

// UpdateHeroName handles PATCH /api/player/{id}/hero-name.
func (h *PlayersHandler) UpdateHeroName(w http.ResponseWriter, r *http.Request) {
	var req updateHeroNameRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	heroName, msg := sanitizeHeroName(req.HeroName)
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	player, err := store.SetHeroName(r.Context(), h.KV, r.PathValue("id"), heroName)
	if err != nil {
		storeError(w, err)
		return
	}
	if player == nil {
		jsonError(w, http.StatusNotFound, "Player not found")
		return
	}
	jsonResponse(w, http.StatusOK, player)
}

// Touch handles PATCH /api/player/{id}/last-used, recording that the player
// was selected to continue a session.
func (h *PlayersHandler) Touch(w http.ResponseWriter, r *http.Request) {
	player, err := store.TouchPlayer(r.Context(), h.KV, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	if player == nil {
		jsonError(w, http.StatusNotFound, "Player not found")
		return
	}
	jsonResponse(w, http.StatusOK, player)
}

// Delete handles DELETE /api/player/{id}. Deletion cascades to the player's
// items.
func (h *PlayersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if store.GetPlayer(ctx, h.KV, id) == nil {
		jsonError(w, http.StatusNotFound, "Player not found")
		return
	}
	if err := store.DeletePlayer(ctx, h.KV, id); err != nil {
		storeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Player deleted successfully"})
}
