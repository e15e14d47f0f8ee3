package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/nkoval/vitrine/internal/app/apiapp"
	"github.com/nkoval/vitrine/internal/config"
	"github.com/nkoval/vitrine/internal/transport/http/dto"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClientConfigServesTierTable(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/config")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload dto.ClientConfigResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Tiers) != 5 {
		t.Fatalf("expected 5 tiers, got %d", len(payload.Tiers))
	}
}

func TestBrowseRequiresAgeConfirmation(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/listings")
	if err != nil {
		t.Fatalf("get listings: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestModerationRoutesRejectAnonymous(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/moderation/queue/next")
	if err != nil {
		t.Fatalf("get moderation queue: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}
