package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/nkoval/vitrine/internal/services/auth"
)

func TestRequireRoleAllowsCaseInsensitiveMatch(t *testing.T) {
	mw := RequireRole("ADMIN")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   "admin",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsForbiddenRole(t *testing.T) {
	mw := RequireRole("ADMIN")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 2,
		SID:    "sid-2",
		Role:   "ESCORT",
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleRejectsAnonymous(t *testing.T) {
	mw := RequireRole("ADMIN")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAgeGateMiddlewareRequiresConfirmation(t *testing.T) {
	mw := AgeGateMiddleware(true)

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called before age confirmation")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestAgeGateMiddlewarePassesConfirmedVisitor(t *testing.T) {
	mw := AgeGateMiddleware(true)

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	req.Header.Set("X-Age-Confirmed", "true")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAgeGateMiddlewareDisabled(t *testing.T) {
	mw := AgeGateMiddleware(false)

	req := httptest.NewRequest(http.MethodGet, "/listings", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestOptionalAuthMiddlewarePassesGuestThrough(t *testing.T) {
	mw := OptionalAuthMiddleware(nil)

	req := httptest.NewRequest(http.MethodGet, "/listings/42", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authsvc.IdentityFromContext(r.Context()); ok {
			t.Fatalf("guest request must not carry an identity")
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		token, ok := extractBearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Fatalf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
