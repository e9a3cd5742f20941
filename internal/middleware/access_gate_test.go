package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nabil/meshbari/internal/gate"
	"github.com/nabil/meshbari/internal/model"
)

func gateRequest(t *testing.T, path string, auth *Auth) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != nil {
		req = req.WithContext(ContextWithAuth(req.Context(), *auth))
	}
	return req
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole_Unauthenticated_PageRedirectsToLogin(t *testing.T) {
	called := false
	mw := RequireRole(model.RoleStudent)
	rec := httptest.NewRecorder()

	mw(okHandler(&called)).ServeHTTP(rec, gateRequest(t, "/dashboard/student", nil))

	if called {
		t.Error("protected handler ran for unauthenticated request")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != gate.LoginPath {
		t.Errorf("Location = %q, want %q", loc, gate.LoginPath)
	}
}

func TestRequireRole_WrongRole_PageRedirectsToOwnDashboard(t *testing.T) {
	called := false
	mw := RequireRole(model.RoleAdmin)
	rec := httptest.NewRecorder()
	auth := &Auth{UserID: "u1", Role: model.RoleOwner}

	mw(okHandler(&called)).ServeHTTP(rec, gateRequest(t, "/dashboard/admin", auth))

	if called {
		t.Error("protected handler ran for wrong role")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != gate.OwnerDashboardPath {
		t.Errorf("Location = %q, want %q", loc, gate.OwnerDashboardPath)
	}
}

func TestRequireRole_MatchingRole_Allows(t *testing.T) {
	called := false
	mw := RequireRole(model.RoleAdmin)
	rec := httptest.NewRecorder()
	auth := &Auth{UserID: "u1", Role: model.RoleAdmin}

	mw(okHandler(&called)).ServeHTTP(rec, gateRequest(t, "/dashboard/admin", auth))

	if !called {
		t.Error("protected handler did not run for matching role")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRole_NoRoleList_AdmitsAnyAuthenticated(t *testing.T) {
	called := false
	mw := RequireRole()
	rec := httptest.NewRecorder()
	auth := &Auth{UserID: "u1", Role: model.RoleStudent}

	mw(okHandler(&called)).ServeHTTP(rec, gateRequest(t, "/bookings", auth))

	if !called {
		t.Error("protected handler did not run for authenticated request")
	}
}

func TestRequireRole_Unauthenticated_APIGetsJSON401(t *testing.T) {
	mw := RequireRole(model.RoleStudent)
	rec := httptest.NewRecorder()

	mw(okHandler(new(bool))).ServeHTTP(rec, gateRequest(t, "/api/bookings", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("error code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestRequireRole_WrongRole_APIGetsJSON403(t *testing.T) {
	mw := RequireRole(model.RoleOwner)
	rec := httptest.NewRecorder()
	auth := &Auth{UserID: "u1", Role: model.RoleStudent}

	mw(okHandler(new(bool))).ServeHTTP(rec, gateRequest(t, "/api/owner/listings", auth))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
