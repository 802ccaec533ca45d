//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:80")

type item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Quantity int64   `json:"quantity"`
}

func TestSystem_E2E_InventoryFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/healtz")

	var all []item
	doJSON(t, http.MethodGet, baseURL+"/inventory", nil, &all, 200)

	var first item
	doJSON(t, http.MethodGet, baseURL+"/inventory/1", nil, &first, 200)
	if first.Name != "Item A" {
		t.Fatalf("item 1 name=%q", first.Name)
	}

	doJSON(t, http.MethodGet, baseURL+"/inventory/9999", nil, nil, 404)
	doJSON(t, http.MethodPost, baseURL+"/inventory", map[string]any{"name": "New Item", "cost": 100}, nil, 400)

	var created item
	doJSON(t, http.MethodPost, baseURL+"/inventory", map[string]any{
		"name":     "New Item",
		"cost":     100,
		"quantity": 1,
	}, &created, 200)
	if created.ID == 0 {
		t.Fatalf("created item has no id")
	}
	itemURL := fmt.Sprintf("%s/inventory/%d", baseURL, created.ID)

	doJSON(t, http.MethodPut, itemURL, map[string]any{"quantity": 10}, nil, 200)

	var got item
	doJSON(t, http.MethodGet, itemURL, nil, &got, 200)
	if got.Quantity != 10 {
		t.Fatalf("quantity=%d want=10", got.Quantity)
	}

	doJSON(t, http.MethodPut, itemURL, map[string]any{"id": 0}, nil, 400)
	doJSON(t, http.MethodDelete, baseURL+"/inventory/9999", nil, nil, 404)
	doJSON(t, http.MethodDelete, itemURL, nil, nil, 200)
	doJSON(t, http.MethodGet, itemURL, nil, nil, 404)
}

// The inventory lives in memory only: a restart brings back the seed data.
func TestSystem_E2E_RestartResetsInventory(t *testing.T) {
	if os.Getenv("E2E_RESTART") != "1" {
		t.Skip("set E2E_RESTART=1 to restart the compose service")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/healtz")
	doJSON(t, http.MethodPost, baseURL+"/inventory", map[string]any{
		"name": "Temp", "cost": 1, "quantity": 1,
	}, nil, 200)

	restartService(t, ctx, getenv("E2E_SERVICE", "api"))
	waitReady(t, ctx, baseURL+"/healtz")

	var all []item
	doJSON(t, http.MethodGet, baseURL+"/inventory", nil, &all, 200)
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("inventory after restart=%+v, want the two seed items", all)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
