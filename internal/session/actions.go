package session

import (
	"context"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/services"
)

func (m *Manager) startSession(ctx context.Context, resp *models.AuthResponse, remember bool) {
	m.mu.Lock()
	m.rememberMe = remember
	m.mu.Unlock()
	m.setAuth(ctx, &resp.User, resp.Token)
}

func (m *Manager) Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error) {
	var resp *models.AuthResponse
	err := m.run(ctx, "registration failed", func(ctx context.Context) error {
		var err error
		if resp, err = m.svc.Register(ctx, data); err != nil {
			return err
		}
		m.startSession(ctx, resp, true)
		return nil
	})
	return resp, err
}

// Login signs in. Without creds.RememberMe the snapshot is removed again by
// Close.
func (m *Manager) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	var resp *models.AuthResponse
	err := m.run(ctx, "login failed", func(ctx context.Context) error {
		var err error
		if resp, err = m.svc.Login(ctx, creds); err != nil {
			return err
		}
		m.startSession(ctx, resp, creds.RememberMe)
		return nil
	})
	return resp, err
}

func (m *Manager) SocialAuth(ctx context.Context, data models.SocialAuthData) (*models.AuthResponse, error) {
	var resp *models.AuthResponse
	err := m.run(ctx, "social login failed", func(ctx context.Context) error {
		var err error
		if resp, err = m.svc.SocialAuth(ctx, data); err != nil {
			return err
		}
		m.startSession(ctx, resp, true)
		return nil
	})
	return resp, err
}

// Logout ends the session. Local state is cleared even when the service
// call fails.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.update(func(s *State) { s.Loading = true })

	if token := m.Token(); token != "" {
		if err := m.svc.Logout(ctx, token); err != nil {
			m.logger.Warn(ctx, "logout failed, clearing local session anyway", "error", err)
		}
	}

	m.clear(ctx)
}

func (m *Manager) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error) {
	var msg string
	err := m.run(ctx, "password reset request failed", func(ctx context.Context) error {
		var err error
		msg, err = m.svc.RequestPasswordReset(ctx, req)
		return err
	})
	return msg, err
}

func (m *Manager) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) (string, error) {
	var msg string
	err := m.run(ctx, "password reset failed", func(ctx context.Context) error {
		var err error
		msg, err = m.svc.ConfirmPasswordReset(ctx, req)
		return err
	})
	return msg, err
}

// UpdateProfile updates the signed-in user.
func (m *Manager) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	var updated *models.User
	err := m.run(ctx, "profile update failed", func(ctx context.Context) error {
		user := m.User()
		if user == nil {
			return common.ErrNotAuthenticated
		}
		var err error
		if updated, err = m.svc.UpdateProfile(ctx, user.ID, patch); err != nil {
			return err
		}
		m.update(func(s *State) { s.User = updated.Clone() })
		m.save(ctx)
		return nil
	})
	return updated, err
}

// VerifyEmail consumes a verification link. When someone is signed in the
// cached user is refreshed so a verified account shows as such.
func (m *Manager) VerifyEmail(ctx context.Context, token string) (string, error) {
	var msg string
	err := m.run(ctx, "email verification failed", func(ctx context.Context) error {
		var err error
		if msg, err = m.svc.VerifyEmail(ctx, token); err != nil {
			return err
		}
		m.refreshUser(ctx)
		return nil
	})
	return msg, err
}

func (m *Manager) refreshUser(ctx context.Context) {
	s := m.State()
	if !s.IsAuthenticated {
		return
	}
	user, err := m.svc.GetCurrentUser(ctx, s.Token)
	if err != nil || user == nil {
		return
	}
	m.update(func(s *State) { s.User = user })
	m.save(ctx)
}

// RequestEmailVerification re-sends the verification link of the signed-in
// user.
func (m *Manager) RequestEmailVerification(ctx context.Context) (string, error) {
	var msg string
	err := m.run(ctx, "verification request failed", func(ctx context.Context) error {
		user := m.User()
		if user == nil {
			return common.ErrNotAuthenticated
		}
		var err error
		msg, err = m.svc.RequestEmailVerification(ctx, user.ID)
		return err
	})
	return msg, err
}

// HasPermission checks the current user against role; see
// services.HasPermission.
func (m *Manager) HasPermission(role models.Role) bool {
	return services.HasPermission(m.User(), role)
}

func (m *Manager) IsAdmin() bool {
	return services.IsAdmin(m.User())
}

func (m *Manager) ClearError() {
	m.update(func(s *State) { s.Error = "" })
}

// Reset drops the local session without contacting the service.
func (m *Manager) Reset(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.clear(ctx)
}
