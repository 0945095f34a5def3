package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zanvidmar/dropquest/internal/model"
	"github.com/zanvidmar/dropquest/internal/storage"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	kv := storage.NewTestStore(t)
	server := httptest.NewServer(NewRouter(kv))
	t.Cleanup(server.Close)
	return server
}

func request(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func createPlayer(t *testing.T, server *httptest.Server) model.Player {
	t.Helper()
	resp := request(t, "POST", server.URL+"/api/players", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating player: expected 201, got %d", resp.StatusCode)
	}
	return decode[model.Player](t, resp)
}

func createItem(t *testing.T, server *httptest.Server, name, playerID string) model.Item {
	t.Helper()
	resp := request(t, "POST", server.URL+"/api/items", map[string]string{
		"name":     name,
		"playerId": playerID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating item: expected 201, got %d", resp.StatusCode)
	}
	return decode[model.Item](t, resp)
}

func TestPlayerItemFlow(t *testing.T) {
	server := setupTestServer(t)

	player := createPlayer(t, server)
	if !strings.Contains(player.ID, "-") || len(player.ID) != 36 {
		t.Errorf("expected a UUID player id, got %q", player.ID)
	}
	if player.FoundItemsCount != 0 {
		t.Errorf("expected foundItemsCount 0, got %d", player.FoundItemsCount)
	}

	item := createItem(t, server, "Sword", player.ID)

	// Runs go from 0 to 10 through the addition path.
	resp := request(t, "PATCH", server.URL+"/api/items", map[string]any{
		"itemId":       item.ID,
		"numberOfRuns": 10,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decode[model.Item](t, resp)
	if updated.NumberOfRuns != 10 {
		t.Errorf("expected 10 runs, got %d", updated.NumberOfRuns)
	}

	// Setting rarity 5 puts the ratio at 2, which has a flavor tier.
	resp = request(t, "PATCH", server.URL+"/api/items", map[string]any{
		"itemId": item.ID,
		"rarity": 5,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated = decode[model.Item](t, resp)
	if !strings.Contains(updated.AchievementText, "whispers") {
		t.Errorf("expected ratio-2 achievement text, got %q", updated.AchievementText)
	}

	resp = request(t, "DELETE", server.URL+"/api/items/"+item.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["message"] == "" {
		t.Error("expected a confirmation message")
	}

	resp = request(t, "GET", server.URL+"/api/items/"+item.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateItemValidation(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"playerId": player.ID}},
		{"blank name", map[string]string{"name": "   ", "playerId": player.ID}},
		{"name too long", map[string]string{"name": strings.Repeat("a", 101), "playerId": player.ID}},
		{"missing playerId", map[string]string{"name": "Sword"}},
		{"malformed playerId", map[string]string{"name": "Sword", "playerId": "not-a-uuid"}},
	}
	for _, tc := range cases {
		resp := request(t, "POST", server.URL+"/api/items", tc.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestItemNameValidationMessages(t *testing.T) {
	cases := []struct {
		name, input, want string
	}{
		{"too long", strings.Repeat("a", 101), "Name must be 100 characters or less"},
		{"disallowed characters", "Sword ♥ of Wrath", "Name contains invalid characters"},
		{"injection pattern", "alert(1)", "Name contains potentially dangerous content"},
	}
	for _, tc := range cases {
		if _, msg := sanitizeItemName(tc.input); msg != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, msg, tc.want)
		}
	}
}

func TestUpdateItemValidation(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	item := createItem(t, server, "Sword", player.ID)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad item id", map[string]any{"itemId": "nope", "rarity": 5}},
		{"negative runs", map[string]any{"itemId": item.ID, "numberOfRuns": -1}},
		{"runs too large", map[string]any{"itemId": item.ID, "numberOfRuns": 1000001}},
		{"zero rarity", map[string]any{"itemId": item.ID, "rarity": 0}},
		{"rarity too large", map[string]any{"itemId": item.ID, "rarity": 1000001}},
		{"negative minutes", map[string]any{"itemId": item.ID, "minutesPerRun": -1}},
		{"minutes too large", map[string]any{"itemId": item.ID, "minutesPerRun": 10001}},
		{"future date", map[string]any{"itemId": item.ID, "createdAt": "2099-01-01"}},
		{"garbage date", map[string]any{"itemId": item.ID, "createdAt": "not a date"}},
	}
	for _, tc := range cases {
		resp := request(t, "PATCH", server.URL+"/api/items", tc.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
	}

	// A failed validation must not have mutated anything.
	resp := request(t, "GET", server.URL+"/api/items/"+item.ID, nil)
	got := decode[model.Item](t, resp)
	if got.NumberOfRuns != 0 || got.Rarity != 0 {
		t.Errorf("validation failure leaked a partial update: %+v", got)
	}
}

func TestUpdateItemWithoutFieldsIsNoOp(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	item := createItem(t, server, "Sword", player.ID)

	resp := request(t, "PATCH", server.URL+"/api/items", map[string]any{
		"itemId": item.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an empty update, got %d", resp.StatusCode)
	}
	got := decode[model.Item](t, resp)
	if got.ID != item.ID || got.Name != "Sword" {
		t.Errorf("expected the unchanged item back, got %+v", got)
	}
}

func TestUpdateRunsOverwriteBelowCurrent(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	item := createItem(t, server, "Sword", player.ID)

	request(t, "PATCH", server.URL+"/api/items", map[string]any{
		"itemId": item.ID, "numberOfRuns": 10,
	}).Body.Close()

	// Lowering the count is a direct overwrite, not an addition.
	resp := request(t, "PATCH", server.URL+"/api/items", map[string]any{
		"itemId": item.ID, "numberOfRuns": 4,
	})
	updated := decode[model.Item](t, resp)
	if updated.NumberOfRuns != 4 {
		t.Errorf("expected overwrite to 4 runs, got %d", updated.NumberOfRuns)
	}
}

func TestMarkFoundRefreshesPlayerCount(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	item := createItem(t, server, "Sword", player.ID)
	createItem(t, server, "Shield", player.ID)

	// Marking found twice must not double-count.
	for range 2 {
		resp := request(t, "PATCH", server.URL+"/api/items/found", map[string]any{
			"itemId": item.ID, "found": true,
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}

	resp := request(t, "GET", server.URL+"/api/player/"+player.ID, nil)
	view := decode[struct {
		model.Player
		Items []model.Item `json:"items"`
	}](t, resp)
	if view.FoundItemsCount != 1 {
		t.Errorf("expected foundItemsCount 1, got %d", view.FoundItemsCount)
	}
	if len(view.Items) != 2 {
		t.Errorf("expected 2 joined items, got %d", len(view.Items))
	}

	resp = request(t, "PATCH", server.URL+"/api/items/found", map[string]any{
		"itemId": item.ID, "found": false,
	})
	resp.Body.Close()

	resp = request(t, "GET", server.URL+"/api/player/"+player.ID, nil)
	view = decode[struct {
		model.Player
		Items []model.Item `json:"items"`
	}](t, resp)
	if view.FoundItemsCount != 0 {
		t.Errorf("expected foundItemsCount 0 after unmark, got %d", view.FoundItemsCount)
	}
}

func TestMarkFoundValidation(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	item := createItem(t, server, "Sword", player.ID)

	resp := request(t, "PATCH", server.URL+"/api/items/found", map[string]any{
		"itemId": item.ID,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing found flag: expected 400, got %d", resp.StatusCode)
	}

	resp = request(t, "PATCH", server.URL+"/api/items/found", map[string]any{
		"itemId": "00000000-0000-0000-0000-000000000000", "found": true,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown item: expected 404, got %d", resp.StatusCode)
	}
}

func TestHeroName(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)

	resp := request(t, "PATCH", server.URL+"/api/player/"+player.ID+"/hero-name", map[string]string{
		"heroName": "  Leeroy  ",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decode[model.Player](t, resp)
	if updated.HeroName != "Leeroy" {
		t.Errorf("expected trimmed hero name, got %q", updated.HeroName)
	}

	resp = request(t, "PATCH", server.URL+"/api/player/"+player.ID+"/hero-name", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty hero name: expected 400, got %d", resp.StatusCode)
	}

	resp = request(t, "PATCH", server.URL+"/api/player/missing/hero-name", map[string]string{
		"heroName": "Leeroy",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown player: expected 404, got %d", resp.StatusCode)
	}
}

func TestTouchPlayer(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)

	resp := request(t, "PATCH", server.URL+"/api/player/"+player.ID+"/last-used", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	touched := decode[model.Player](t, resp)
	if touched.LastUsedAt == nil {
		t.Error("expected lastUsedAt to be set")
	}
}

func TestDeletePlayerCascades(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	createItem(t, server, "Sword", player.ID)

	resp := request(t, "DELETE", server.URL+"/api/player/"+player.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = request(t, "GET", server.URL+"/api/player/"+player.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for deleted player, got %d", resp.StatusCode)
	}

	resp = request(t, "GET", server.URL+"/api/items?playerId="+player.ID, nil)
	items := decode[[]model.Item](t, resp)
	if len(items) != 0 {
		t.Errorf("expected no items after cascade, got %d", len(items))
	}
}

func TestItemsListWithoutPlayerID(t *testing.T) {
	server := setupTestServer(t)
	player := createPlayer(t, server)
	createItem(t, server, "Sword", player.ID)

	resp := request(t, "GET", server.URL+"/api/items", nil)
	items := decode[[]model.Item](t, resp)
	if len(items) != 0 {
		t.Errorf("missing playerId should yield an empty list, got %d items", len(items))
	}
}

func TestUnknownRoute(t *testing.T) {
	server := setupTestServer(t)

	resp := request(t, "GET", server.URL+"/api/quests", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("expected JSON error body, got %q", ct)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t)

	resp := request(t, "PUT", server.URL+"/api/items", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestQuotaSurfacesAsInsufficientStorage(t *testing.T) {
	kv := storage.NewTestStoreQuota(t, 10)
	server := httptest.NewServer(NewRouter(kv))
	t.Cleanup(server.Close)

	// First collection fits while the namespace is empty.
	player := createPlayer(t, server)

	// The items collection would be a new key past the ceiling.
	resp := request(t, "POST", server.URL+"/api/items", map[string]string{
		"name": "Sword", "playerId": player.ID,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInsufficientStorage {
		t.Fatalf("expected 507, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["code"] != "STORAGE_FULL" {
		t.Errorf("expected STORAGE_FULL code, got %v", body["code"])
	}
}
