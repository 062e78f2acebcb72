// Package guard decides whether a page may be shown to the current session.
//
// Guards never fail. Every problem reaching the user (no credential, expired
// credential, API down) becomes a redirect to the login page, and a role that
// is too weak or too strong becomes a redirect to the matching dashboard.
package guard

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-affiliate-portal/apiclient"
	"github.com/jrsteele09/go-affiliate-portal/internal/metrics"
	"github.com/jrsteele09/go-affiliate-portal/users"
	"github.com/rs/zerolog/log"
)

// UserSource resolves the user behind the session. *apiclient.Client implements it.
type UserSource interface {
	CurrentUser(ctx context.Context) (*users.Profile, error)
}

var _ UserSource = (*apiclient.Client)(nil)

// Result is the outcome of a guard: exactly one of User and Redirect is set.
type Result struct {
	User     *users.Profile
	Redirect string
}

// Allowed reports whether the page may be shown.
func (r Result) Allowed() bool {
	return r.Redirect == "" && r.User != nil
}

func allow(name string, user *users.Profile) Result {
	metrics.GuardDecisionsTotal.WithLabelValues(name, "allow").Inc()
	return Result{User: user}
}

func redirect(name, path string) Result {
	metrics.GuardDecisionsTotal.WithLabelValues(name, path).Inc()
	return Result{Redirect: path}
}

// RequireAuth allows any authenticated user.
func RequireAuth(ctx context.Context, src UserSource) Result {
	return requireAuth(ctx, src, "auth")
}

func requireAuth(ctx context.Context, src UserSource, name string) Result {
	user, err := src.CurrentUser(ctx)
	if errors.Is(err, apiclient.ErrSessionChanged) {
		// A sign-in landed mid-fetch; ask once more under the new credential.
		user, err = src.CurrentUser(ctx)
	}
	if err != nil {
		log.Debug().Err(err).Str("guard", name).Msg("no authenticated user")
		return redirect(name, apiclient.LoginPath)
	}
	if user == nil {
		return redirect(name, apiclient.LoginPath)
	}
	return allow(name, user)
}

// RequireAdmin allows admin and super_admin. Everyone else goes to the affiliate dashboard.
func RequireAdmin(ctx context.Context, src UserSource) Result {
	const name = "admin"
	res := requireAuth(ctx, src, name)
	if !res.Allowed() {
		return res
	}
	if !res.User.IsAdmin() {
		return redirect(name, apiclient.DashboardPath)
	}
	return res
}

// RequireNonSuperAdmin keeps super admins out of affiliate pages.
func RequireNonSuperAdmin(ctx context.Context, src UserSource) Result {
	const name = "non_super_admin"
	res := requireAuth(ctx, src, name)
	if !res.Allowed() {
		return res
	}
	if res.User.IsSuperAdmin() {
		return redirect(name, apiclient.AdminDashboardPath)
	}
	return res
}
