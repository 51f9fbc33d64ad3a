package guard

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	ready chan struct{}
	user  *models.User
}

func newFakeSession(user *models.User) *fakeSession {
	s := &fakeSession{ready: make(chan struct{}), user: user}
	close(s.ready)
	return s
}

func (s *fakeSession) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSession) IsAuthenticated() bool { return s.user != nil }
func (s *fakeSession) User() *models.User    { return s.user }
func (s *fakeSession) HasPermission(role models.Role) bool {
	return services.HasPermission(s.user, role)
}

func loc(t *testing.T, raw string) Location {
	t.Helper()
	l, err := ParseLocation(raw)
	require.NoError(t, err)
	return l
}

func TestGuard_Before(t *testing.T) {
	admin := &models.User{ID: "1", Role: models.RoleAdmin}
	user := &models.User{ID: "2", Role: models.RoleUser}

	tests := []struct {
		name     string
		user     *models.User
		to       string
		from     string
		redirect string
	}{
		{name: "anonymous home", to: "/", from: "/", redirect: "/auth/login?redirect=%2F"},
		{name: "anonymous profile keeps query", to: "/profile?tab=security", from: "/", redirect: "/auth/login?redirect=%2Fprofile%3Ftab%3Dsecurity"},
		{name: "anonymous admin", to: "/admin", from: "/", redirect: "/auth/login?redirect=%2Fadmin"},
		{name: "anonymous login allowed", to: "/auth/login", from: "/"},
		{name: "anonymous register allowed", to: "/auth/register", from: "/"},
		{name: "anonymous reset allowed", to: "/auth/reset-password", from: "/"},
		{name: "anonymous not found allowed", to: "/nowhere", from: "/"},
		{name: "user home allowed", user: user, to: "/", from: "/"},
		{name: "user profile allowed", user: user, to: "/profile", from: "/"},
		{name: "user login goes home", user: user, to: "/auth/login", from: "/profile", redirect: "/"},
		{name: "user login follows redirect", user: user, to: "/auth/login", from: "/auth/login?redirect=%2Fprofile", redirect: "/profile"},
		{name: "user redirect to guest route goes home", user: user, to: "/auth/login", from: "/auth/login?redirect=%2Fauth%2Fregister", redirect: "/"},
		{name: "user redirect through static route to guest route goes home", user: user, to: "/auth/register", from: "/auth/register?redirect=%2Fauth", redirect: "/"},
		{name: "user admin denied", user: user, to: "/admin", from: "/", redirect: "/"},
		{name: "admin admin allowed", user: admin, to: "/admin", from: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(NewTable(DefaultRoutes()), newFakeSession(tt.user))

			d, err := g.Before(context.Background(), loc(t, tt.to), loc(t, tt.from))
			require.NoError(t, err)

			if tt.redirect == "" {
				assert.True(t, d.Allowed(), "expected navigation to be allowed, got %v", d.Redirect)
				return
			}
			require.False(t, d.Allowed())
			assert.Equal(t, tt.redirect, d.Redirect.FullPath())
		})
	}
}

func TestGuard_RoleCheckNeedsUser(t *testing.T) {
	table := NewTable([]Route{{Path: "/ops", Name: "Ops", RequiredRole: models.RoleAdmin}})
	g := NewGuard(table, newFakeSession(nil))

	d, err := g.Before(context.Background(), loc(t, "/ops"), loc(t, "/"))
	require.NoError(t, err)
	assert.True(t, d.Allowed())
}

func TestGuard_WaitsForSession(t *testing.T) {
	s := &fakeSession{ready: make(chan struct{})}
	g := NewGuard(NewTable(DefaultRoutes()), s)

	done := make(chan Decision, 1)
	go func() {
		d, _ := g.Before(context.Background(), loc(t, "/"), loc(t, "/"))
		done <- d
	}()

	select {
	case <-done:
		t.Fatal("guard decided before the session was ready")
	case <-time.After(20 * time.Millisecond):
	}

	s.user = &models.User{ID: "1", Role: models.RoleUser}
	close(s.ready)

	select {
	case d := <-done:
		assert.True(t, d.Allowed())
	case <-time.After(time.Second):
		t.Fatal("guard did not resume")
	}
}

func TestGuard_ContextCancelled(t *testing.T) {
	s := &fakeSession{ready: make(chan struct{})}
	g := NewGuard(NewTable(DefaultRoutes()), s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Before(ctx, loc(t, "/"), loc(t, "/"))
	require.ErrorIs(t, err, context.Canceled)
}
