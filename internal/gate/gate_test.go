package gate

import (
	"testing"

	"github.com/nabil/meshbari/internal/model"
)

// While the session is still loading, nothing is rendered and nothing
// redirects, regardless of the guard.
func TestDecide_Loading_NoRedirect(t *testing.T) {
	session := SessionState{Loading: true, IsAuthenticated: true, Role: model.RoleAdmin}

	for _, guard := range []Guard{
		{},
		RequireRoles(model.RoleStudent),
		RequireRoles(model.RoleAdmin),
	} {
		d := Decide(session, guard)
		if d.Outcome != OutcomeLoading {
			t.Errorf("Decide(loading, %v) = %v, want OutcomeLoading", guard.Roles, d.Outcome)
		}
		if d.RedirectTo != "" {
			t.Errorf("loading decision carries redirect %q", d.RedirectTo)
		}
	}
}

func TestDecide_Unauthenticated_RedirectsToLogin(t *testing.T) {
	session := SessionState{}

	d := Decide(session, RequireRoles(model.RoleStudent))
	if d.Outcome != OutcomeRedirectLogin {
		t.Fatalf("outcome = %v, want OutcomeRedirectLogin", d.Outcome)
	}
	if d.RedirectTo != LoginPath {
		t.Errorf("RedirectTo = %q, want %q", d.RedirectTo, LoginPath)
	}

	// Also with no role requirement: authentication is still required.
	d = Decide(session, Guard{})
	if d.Outcome != OutcomeRedirectLogin {
		t.Errorf("outcome = %v, want OutcomeRedirectLogin", d.Outcome)
	}
}

// A role mismatch redirects to the caller's own dashboard, never renders the
// other role's view.
func TestDecide_RoleMismatch_RedirectsToOwnDashboard(t *testing.T) {
	tests := []struct {
		role     model.Role
		required []model.Role
		want     string
	}{
		{model.RoleOwner, []model.Role{model.RoleAdmin}, OwnerDashboardPath},
		{model.RoleStudent, []model.Role{model.RoleOwner}, StudentDashboardPath},
		{model.RoleAdmin, []model.Role{model.RoleStudent}, AdminDashboardPath},
		{model.Role("ghost"), []model.Role{model.RoleAdmin}, HomePath},
	}

	for _, tt := range tests {
		session := SessionState{IsAuthenticated: true, Role: tt.role}
		d := Decide(session, RequireRoles(tt.required...))
		if d.Outcome != OutcomeRedirectDashboard {
			t.Errorf("role %s: outcome = %v, want OutcomeRedirectDashboard", tt.role, d.Outcome)
			continue
		}
		if d.RedirectTo != tt.want {
			t.Errorf("role %s: RedirectTo = %q, want %q", tt.role, d.RedirectTo, tt.want)
		}
	}
}

func TestDecide_MatchingRole_Allows(t *testing.T) {
	session := SessionState{IsAuthenticated: true, Role: model.RoleAdmin}

	// Single required role.
	if d := Decide(session, RequireRoles(model.RoleAdmin)); d.Outcome != OutcomeAllow {
		t.Errorf("outcome = %v, want OutcomeAllow", d.Outcome)
	}

	// Role set containing the caller's role.
	if d := Decide(session, RequireRoles(model.RoleOwner, model.RoleAdmin)); d.Outcome != OutcomeAllow {
		t.Errorf("outcome = %v, want OutcomeAllow", d.Outcome)
	}
}

// An empty guard admits any authenticated user.
func TestDecide_NoRequiredRole_AllowsAnyAuthenticated(t *testing.T) {
	for _, role := range []model.Role{model.RoleStudent, model.RoleOwner, model.RoleAdmin} {
		session := SessionState{IsAuthenticated: true, Role: role}
		if d := Decide(session, Guard{}); d.Outcome != OutcomeAllow {
			t.Errorf("role %s: outcome = %v, want OutcomeAllow", role, d.Outcome)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role model.Role
		want string
	}{
		{model.RoleStudent, "/dashboard/student"},
		{model.RoleOwner, "/dashboard/owner"},
		{model.RoleAdmin, "/dashboard/admin"},
		{model.Role("unknown"), "/"},
		{model.Role(""), "/"},
	}
	for _, tt := range tests {
		if got := DashboardPath(tt.role); got != tt.want {
			t.Errorf("DashboardPath(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
