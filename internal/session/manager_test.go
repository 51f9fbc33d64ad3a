package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
	"github.com/dmitrijs2005/todoauth/internal/repositories/resettokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/tokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
	"github.com/dmitrijs2005/todoauth/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService overrides selected operations of a real service.
type scriptedService struct {
	services.AuthService
	logoutErr    error
	loginGate    chan struct{}
	currentErr   error
	currentCalls int
}

func (s *scriptedService) Logout(ctx context.Context, token string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	return s.AuthService.Logout(ctx, token)
}

func (s *scriptedService) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	if s.loginGate != nil {
		<-s.loginGate
	}
	return s.AuthService.Login(ctx, creds)
}

func (s *scriptedService) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	s.currentCalls++
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	return s.AuthService.GetCurrentUser(ctx, token)
}

type env struct {
	store  *kv.MemoryRepository
	outbox *mail.Outbox
	svc    *scriptedService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logging.NewDiscardLogger()
	store := kv.NewMemoryRepository()
	outbox := mail.NewOutbox()
	cfg := &config.Config{SecretKey: "k", ResetTokenTTL: time.Hour, VerificationTokenTTL: time.Hour}
	svc := services.NewAuthService(services.Stores{
		Users:       users.NewKVRepository(store, log),
		Tokens:      tokens.NewKVRepository(store, log),
		ResetTokens: resettokens.NewKVRepository(store, log),
	}, outbox, cfg, log)
	return &env{store: store, outbox: outbox, svc: &scriptedService{AuthService: svc}}
}

func (e *env) manager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(e.svc, e.store, logging.NewDiscardLogger())
	m.Init(context.Background())
	require.NoError(t, m.WaitReady(context.Background()))
	return m
}

func (e *env) snapshot(t *testing.T) map[string]any {
	t.Helper()
	raw, err := e.store.Get(context.Background(), common.AuthStateStorageKey)
	require.NoError(t, err)
	if raw == nil {
		return nil
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func registerData(email, username string) models.RegisterData {
	return models.RegisterData{Email: email, Username: username, Password: "secret1", ConfirmPassword: "secret1"}
}

func TestInit_WithoutSnapshotIsClearedAndReady(t *testing.T) {
	e := newEnv(t)
	m := NewManager(e.svc, e.store, logging.NewDiscardLogger())
	assert.Equal(t, PhaseInit, m.Phase())

	m.Init(context.Background())

	select {
	case <-m.Ready():
	default:
		t.Fatal("Ready must be closed when there is nothing to revalidate")
	}
	assert.Equal(t, PhaseCleared, m.Phase())
	assert.Equal(t, 0, e.svc.currentCalls)
}

func TestRegister_SetsStateAndPersistsTrimmedSnapshot(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)

	resp, err := m.Register(context.Background(), registerData("a@x.com", "a"))
	require.NoError(t, err)

	s := m.State()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, resp.Token, s.Token)
	assert.Equal(t, resp.User.ID, s.User.ID)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, PhaseActive, m.Phase())

	snap := e.snapshot(t)
	require.NotNil(t, snap)
	assert.Len(t, snap, 3)
	assert.Equal(t, resp.Token, snap["token"])
	assert.Equal(t, true, snap["isAuthenticated"])
	assert.NotContains(t, snap, "loading")
	assert.NotContains(t, snap, "error")
}

func TestLogin_FailureStoresMessageAndReturnsError(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)

	_, err := m.Login(context.Background(), models.LoginCredentials{Email: "nobody@x.com", Password: "secret1"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.Equal(t, "invalid email or password", m.Error())
	assert.False(t, m.Loading())
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, PhaseError, m.Phase())
	assert.Nil(t, e.snapshot(t))

	m.ClearError()
	assert.Empty(t, m.Error())
	assert.Equal(t, PhaseCleared, m.Phase())
}

func TestAction_ClearsPreviousError(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()

	_, err := m.Register(ctx, models.RegisterData{})
	require.Error(t, err)
	assert.Equal(t, "all fields are required", m.Error())

	_, err = m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	assert.Empty(t, m.Error())
}

func TestAction_NonAuthErrorUsesFallback(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Login(ctx, models.LoginCredentials{Email: "a@x.com", Password: "secret1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "login failed", m.Error())
}

func TestLoading_IsVisibleWhileCallIsInFlight(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	e.svc.loginGate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := m.Login(ctx, models.LoginCredentials{Email: "a@x.com", Password: "secret1"})
		done <- err
	}()

	require.Eventually(t, m.Loading, time.Second, time.Millisecond)
	close(e.svc.loginGate)
	require.NoError(t, <-done)
	assert.False(t, m.Loading())
}

func TestLogout_ClearsEvenWhenServiceFails(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	e.svc.logoutErr = errors.New("network down")
	m.Logout(ctx)

	assert.Equal(t, State{}, m.State())
	assert.Nil(t, e.snapshot(t))
	assert.Equal(t, PhaseCleared, m.Phase())
}

func TestLogout_RevokesServerSession(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	resp, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	m.Logout(ctx)

	u, err := e.svc.AuthService.GetCurrentUser(ctx, resp.Token)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestInit_RevalidatesStoredSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.manager(t)
	resp, err := first.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	// a new process picks the session up
	second := e.manager(t)
	assert.True(t, second.IsAuthenticated())
	assert.Equal(t, resp.Token, second.Token())
	assert.Equal(t, resp.User.ID, second.User().ID)
	assert.False(t, second.Loading())
	assert.Equal(t, PhaseActive, second.Phase())
}

func TestInit_InvalidStoredTokenClearsSnapshot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	raw, _ := json.Marshal(Snapshot{User: &models.User{ID: "ghost"}, Token: "stale", IsAuthenticated: true})
	require.NoError(t, e.store.Set(ctx, common.AuthStateStorageKey, raw))

	m := e.manager(t)

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User())
	assert.Nil(t, e.snapshot(t))
	assert.Equal(t, 1, e.svc.currentCalls)
}

func TestInit_ServiceErrorClearsSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	raw, _ := json.Marshal(Snapshot{Token: "t", IsAuthenticated: true})
	require.NoError(t, e.store.Set(ctx, common.AuthStateStorageKey, raw))
	e.svc.currentErr = errors.New("boom")

	m := e.manager(t)

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, e.snapshot(t))
}

func TestInit_CorruptSnapshotIsIgnored(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.store.Set(context.Background(), common.AuthStateStorageKey, []byte("{{{")))

	m := e.manager(t)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 0, e.svc.currentCalls)
}

func TestInit_IsIdempotent(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	m.Init(context.Background())
	m.Init(context.Background())
	assert.Equal(t, PhaseCleared, m.Phase())
}

func TestWaitReady_HonorsContext(t *testing.T) {
	e := newEnv(t)
	m := NewManager(e.svc, e.store, logging.NewDiscardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.WaitReady(ctx), context.DeadlineExceeded)
}

func TestUpdateProfile_RequiresLogin(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)

	_, err := m.UpdateProfile(context.Background(), models.ProfileUpdate{Username: "x"})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Equal(t, "user is not logged in", m.Error())
}

func TestUpdateProfile_UpdatesCachedUserAndSnapshot(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	u, err := m.UpdateProfile(ctx, models.ProfileUpdate{Username: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)
	assert.Equal(t, "renamed", m.User().Username)

	snapUser := e.snapshot(t)["user"].(map[string]any)
	assert.Equal(t, "renamed", snapUser["username"])
}

func TestUpdateProfile_ServiceErrorIsSurfaced(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	_, err = m.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "newpass1", ConfirmPassword: "newpass1"})
	require.ErrorIs(t, err, common.ErrCurrentPasswordRequired)
	assert.Equal(t, "current password is required", m.Error())
	assert.True(t, m.IsAuthenticated(), "a failed action keeps the session")
}

func TestVerifyEmail_RefreshesCachedUser(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	resp, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	require.False(t, m.User().EmailVerified)

	msg, err := m.VerifyEmail(ctx, resp.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, services.MsgEmailVerified, msg)
	assert.True(t, m.User().EmailVerified)

	snapUser := e.snapshot(t)["user"].(map[string]any)
	assert.Equal(t, true, snapUser["emailVerified"])
}

func TestVerifyEmail_InvalidLink(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)

	_, err := m.VerifyEmail(context.Background(), "bogus")
	require.ErrorIs(t, err, common.ErrInvalidVerificationLink)
	assert.Equal(t, "verification link is invalid", m.Error())
}

func TestRequestEmailVerification(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()

	_, err := m.RequestEmailVerification(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	before := len(e.outbox.Messages())

	msg, err := m.RequestEmailVerification(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.MsgVerificationSent, msg)
	assert.Len(t, e.outbox.Messages(), before+1)
}

func TestPasswordResetFlow(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ctx := context.Background()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	m.Logout(ctx)

	msg, err := m.RequestPasswordReset(ctx, models.PasswordResetRequest{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, services.MsgResetRequested, msg)

	reset, ok := e.outbox.Last("a@x.com", mail.KindPasswordReset)
	require.True(t, ok)

	_, err = m.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Token: reset.Token, NewPassword: "newpass1", ConfirmPassword: "newpass1"})
	require.NoError(t, err)
	assert.False(t, m.IsAuthenticated(), "a password reset does not sign in")

	_, err = m.ConfirmPasswordReset(ctx, models.PasswordResetConfirm{Token: reset.Token, NewPassword: "newpass1", ConfirmPassword: "newpass1"})
	require.ErrorIs(t, err, common.ErrResetTokenInvalid)
	assert.Equal(t, "reset link is invalid or has expired", m.Error())

	_, err = m.Login(ctx, models.LoginCredentials{Email: "a@x.com", Password: "newpass1"})
	require.NoError(t, err)
}

func TestSocialAuth_StartsSession(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)

	resp, err := m.SocialAuth(context.Background(), models.SocialAuthData{Provider: models.ProviderFacebook})
	require.NoError(t, err)
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, resp.User.ID, m.User().ID)
	assert.NotNil(t, e.snapshot(t))

	_, err = m.SocialAuth(context.Background(), models.SocialAuthData{Provider: "myspace"})
	require.ErrorIs(t, err, common.ErrUnsupportedProvider)
	assert.Equal(t, "unsupported social provider", m.Error())
}

func TestPermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)

	assert.False(t, m.HasPermission(""))
	assert.False(t, m.IsAdmin())

	_, err := m.Register(ctx, registerData("admin@x.com", "admin"))
	require.NoError(t, err)
	assert.True(t, m.HasPermission(""))
	assert.True(t, m.HasPermission(models.RoleAdmin))
	assert.True(t, m.IsAdmin())

	m.Logout(ctx)
	_, err = m.Register(ctx, registerData("b@x.com", "b"))
	require.NoError(t, err)
	assert.True(t, m.HasPermission(models.RoleUser))
	assert.False(t, m.HasPermission(models.RoleAdmin))
}

func TestClose_ForgetsSessionWithoutRememberMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	m.Logout(ctx)

	_, err = m.Login(ctx, models.LoginCredentials{Email: "a@x.com", Password: "secret1", RememberMe: false})
	require.NoError(t, err)
	require.NotNil(t, e.snapshot(t))

	require.NoError(t, m.Close(ctx))
	assert.Nil(t, e.snapshot(t))
}

func TestClose_KeepsRememberedSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)
	m.Logout(ctx)

	_, err = m.Login(ctx, models.LoginCredentials{Email: "a@x.com", Password: "secret1", RememberMe: true})
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx))
	assert.NotNil(t, e.snapshot(t))
}

func TestReset_DropsLocalSessionOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)
	resp, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	m.Reset(ctx)
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, e.snapshot(t))

	u, err := e.svc.AuthService.GetCurrentUser(ctx, resp.Token)
	require.NoError(t, err)
	assert.NotNil(t, u, "server session survives a local reset")
}

func TestSubscribe_ReceivesLatestState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)

	ch, unsubscribe := m.Subscribe()
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	var last State
	require.Eventually(t, func() bool {
		select {
		case s := <-ch:
			last = s
		default:
		}
		return last.IsAuthenticated && !last.Loading
	}, time.Second, time.Millisecond)

	unsubscribe()
	unsubscribe()
	for range ch {
	}
}

func TestSubscribe_ClosedByClose(t *testing.T) {
	e := newEnv(t)
	m := e.manager(t)
	ch, unsubscribe := m.Subscribe()

	require.NoError(t, m.Close(context.Background()))
	for range ch {
	}
	unsubscribe()
}

func TestState_ReturnsCopy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	m := e.manager(t)
	_, err := m.Register(ctx, registerData("a@x.com", "a"))
	require.NoError(t, err)

	s := m.State()
	s.User.Username = "mutated"
	assert.Equal(t, "a", m.User().Username)
}
