package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
	"github.com/dmitrijs2005/todoauth/internal/repositories/resettokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/tokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc    AuthService
	store  *kv.MemoryRepository
	users  *users.KVRepository
	tokens *tokens.KVRepository
	resets *resettokens.KVRepository
	outbox *mail.Outbox
	clock  *fakeClock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:            "test-secret",
		ResetTokenTTL:        time.Hour,
		VerificationTokenTTL: 24 * time.Hour,
		SimulateLatency:      false,
	}
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log := logging.NewDiscardLogger()
	store := kv.NewMemoryRepository()
	f := &fixture{
		store:  store,
		users:  users.NewKVRepository(store, log),
		tokens: tokens.NewKVRepository(store, log),
		resets: resettokens.NewKVRepository(store, log),
		outbox: mail.NewOutbox(),
		clock:  &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)},
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.svc = NewAuthService(Stores{Users: f.users, Tokens: f.tokens, ResetTokens: f.resets}, f.outbox, testConfig(), log, opts...)
	return f
}

func (f *fixture) register(t *testing.T, email, username, password string) *models.AuthResponse {
	t.Helper()
	resp, err := f.svc.Register(context.Background(), models.RegisterData{
		Email:           email,
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return resp
}
