// Package gate implements the role-based access gate: given a session
// snapshot and a route's guard, it decides whether to render, redirect to
// login, or redirect to the caller's own dashboard. The decision is pure and
// re-evaluated on every request; it never mutates the session.
package gate

import "github.com/nabil/meshbari/internal/model"

// SessionState is the snapshot the gate decides on. While Loading is true
// the other fields must not be trusted.
type SessionState struct {
	Loading         bool
	IsAuthenticated bool
	Role            model.Role
}

// Guard is a route's access requirement. An empty Roles slice means any
// authenticated user.
type Guard struct {
	Roles []model.Role
}

// RequireRoles builds a guard from one or more roles.
func RequireRoles(roles ...model.Role) Guard {
	return Guard{Roles: roles}
}

// Outcome is the kind of gate decision.
type Outcome int

const (
	// OutcomeLoading renders a neutral placeholder; no redirect yet.
	OutcomeLoading Outcome = iota
	// OutcomeRedirectLogin sends the caller to the login view.
	OutcomeRedirectLogin
	// OutcomeRedirectDashboard sends the caller to their own role's
	// dashboard.
	OutcomeRedirectDashboard
	// OutcomeAllow renders the protected content unchanged.
	OutcomeAllow
)

// Decision is the gate's verdict. RedirectTo is set for the redirect
// outcomes.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Route paths the gate redirects to.
const (
	LoginPath            = "/login"
	HomePath             = "/"
	StudentDashboardPath = "/dashboard/student"
	OwnerDashboardPath   = "/dashboard/owner"
	AdminDashboardPath   = "/dashboard/admin"
)

// DashboardPath maps a role to its dashboard. Unknown roles map to home.
func DashboardPath(role model.Role) string {
	switch role {
	case model.RoleStudent:
		return StudentDashboardPath
	case model.RoleOwner:
		return OwnerDashboardPath
	case model.RoleAdmin:
		return AdminDashboardPath
	default:
		return HomePath
	}
}

// Decide evaluates the gate state machine:
//
//	Loading         -> OutcomeLoading, nothing rendered or redirected yet
//	Unauthenticated -> redirect to /login, regardless of the guard
//	Role mismatch   -> redirect to the caller's own dashboard
//	otherwise       -> allow
//
// The decision must be taken before any protected content is produced, so a
// wrong role never sees another role's view even transiently.
func Decide(session SessionState, guard Guard) Decision {
	if session.Loading {
		return Decision{Outcome: OutcomeLoading}
	}
	if !session.IsAuthenticated {
		return Decision{Outcome: OutcomeRedirectLogin, RedirectTo: LoginPath}
	}
	if len(guard.Roles) > 0 && !roleAllowed(session.Role, guard.Roles) {
		return Decision{
			Outcome:    OutcomeRedirectDashboard,
			RedirectTo: DashboardPath(session.Role),
		}
	}
	return Decision{Outcome: OutcomeAllow}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
