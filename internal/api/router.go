package api

import (
	"net/http"

	"github.com/zanvidmar/dropquest/internal/storage"
)

// NewRouter creates the API router with all endpoints registered. Panics
// anywhere in dispatch surface as a generic 500.
func NewRouter(kv *storage.Store) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{KV: kv}
	playersHandler := &PlayersHandler{KV: kv}

	// Players.
	mux.HandleFunc("GET /api/players", playersHandler.List)
	mux.HandleFunc("POST /api/players", playersHandler.Create)
	mux.HandleFunc("GET /api/player/{id}", playersHandler.Get)
	mux.HandleFunc("PATCH /api/player/{id}/hero-name", playersHandler.UpdateHeroName)
	mux.HandleFunc("PATCH /api/player/{id}/last-used", playersHandler.Touch)
	mux.HandleFunc("DELETE /api/player/{id}", playersHandler.Delete)

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("PATCH /api/items", itemsHandler.Update)
	mux.HandleFunc("PATCH /api/items/found", itemsHandler.MarkFound)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)

	// Everything unmatched is a JSON 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "Not found")
	})

	return RecoverMiddleware(mux)
}
