// Package services contains the auth business rules: registration, login,
// logout, password reset, profile updates, email verification, simulated
// social login and role checks. Every operation reads and writes the user,
// session-token and reset-token stores; none of them keeps state of its own
// beyond a mutex that serializes the read-modify-write cycles.
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/resettokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/tokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
	"github.com/google/uuid"
)

// Messages returned on success.
const (
	MsgRegistered       = "Registration successful! Please check your email to verify your address."
	MsgLoggedIn         = "Login successful!"
	MsgResetRequested   = "If the email is registered, a reset link has been sent to it."
	MsgPasswordReset    = "Password has been reset."
	MsgEmailVerified    = "Email verified."
	MsgVerificationSent = "Verification email sent."
	MsgAlreadyVerified  = "Email is already verified."
)

// Simulated network latency per operation.
const (
	registerDelay      = 1000 * time.Millisecond
	loginDelay         = 800 * time.Millisecond
	logoutDelay        = 300 * time.Millisecond
	currentUserDelay   = 200 * time.Millisecond
	resetRequestDelay  = 1000 * time.Millisecond
	resetConfirmDelay  = 1000 * time.Millisecond
	updateProfileDelay = 800 * time.Millisecond
	verifyEmailDelay   = 500 * time.Millisecond
	socialAuthDelay    = 1500 * time.Millisecond
)

const (
	sessionTokenSize = 32
	resetTokenSize   = 32

	// Social usernames end in a number below this bound.
	socialUsernameRange = 1000
)

// AuthService defines the auth operations used by the session layer.
//
// Contract:
//   - Business-rule violations return one of the sentinel errors in
//     internal/common; their text is the message shown to the user.
//   - Login returns common.ErrInvalidCredentials for both an unknown email
//     and a wrong password.
//   - Logout and GetCurrentUser never fail on unknown tokens.
//   - RequestPasswordReset answers identically for known and unknown emails.
//   - Every method honors context cancellation during its simulated delay.
type AuthService interface {
	Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error)
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	GetCurrentUser(ctx context.Context, token string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error)
	ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) (string, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfileUpdate) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	RequestEmailVerification(ctx context.Context, userID string) (string, error)
	SocialAuth(ctx context.Context, data models.SocialAuthData) (*models.AuthResponse, error)
	HasPermission(user *models.User, required models.Role) bool
	IsAdmin(user *models.User) bool
}

// Stores groups the repositories the service reads and writes.
type Stores struct {
	Users       users.Repository
	Tokens      tokens.Repository
	ResetTokens resettokens.Repository
}

type authService struct {
	users  users.Repository
	tokens tokens.Repository
	resets resettokens.Repository
	mailer mail.Mailer
	logger logging.Logger

	secretKey       []byte
	resetTTL        time.Duration
	verificationTTL time.Duration
	simulateLatency bool

	now   func() time.Time
	newID func() string
	intn  func(n int) int

	// mu serializes operations that write to the stores.
	mu sync.Mutex

	dummyHash func() string
}

// Option customizes an AuthService.
type Option func(*authService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

// WithIDGenerator replaces the UUID user id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *authService) { s.newID = gen }
}

// WithRandIntn replaces the source of social-login username suffixes.
func WithRandIntn(intn func(n int) int) Option {
	return func(s *authService) { s.intn = intn }
}

// NewAuthService constructs an AuthService over the given stores. Links are
// delivered through mailer; cfg supplies the signing key, link lifetimes and
// whether to simulate latency.
func NewAuthService(stores Stores, mailer mail.Mailer, cfg *config.Config, logger logging.Logger, opts ...Option) AuthService {
	s := &authService{
		users:           stores.Users,
		tokens:          stores.Tokens,
		resets:          stores.ResetTokens,
		mailer:          mailer,
		logger:          logger.With("component", "auth"),
		secretKey:       []byte(cfg.SecretKey),
		resetTTL:        cfg.ResetTokenTTL,
		verificationTTL: cfg.VerificationTokenTTL,
		simulateLatency: cfg.SimulateLatency,
		now:             time.Now,
		newID:           uuid.NewString,
		intn:            rand.IntN,
		dummyHash: sync.OnceValue(func() string {
			return cryptox.HashPassword([]byte("dummy-password"))
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// delay waits d when latency simulation is on, returning early with the
// context error on cancellation.
func (s *authService) delay(ctx context.Context, d time.Duration) error {
	if !s.simulateLatency || d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// issueSessionToken binds a fresh random token to userID, replacing the
// previous one.
func (s *authService) issueSessionToken(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(sessionTokenSize)
	if err != nil {
		return "", fmt.Errorf("%w: session token: %v", common.ErrorInternal, err)
	}
	s.tokens.Put(ctx, userID, token)
	return token, nil
}

// send delivers msg; delivery failures are logged and do not fail the
// calling operation.
func (s *authService) send(ctx context.Context, msg mail.Message) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "failed to send mail", "to", msg.To, "kind", string(msg.Kind), "error", err)
	}
}
