package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
)

func validatePassword(password, confirm string) error {
	if password != confirm {
		return common.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return common.ErrPasswordTooShort
	}
	return nil
}

// Register creates an account and starts a session for it. The first
// account ever created is an admin.
func (s *authService) Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error) {
	if err := s.delay(ctx, registerDelay); err != nil {
		return nil, err
	}

	email := users.NormalizeEmail(data.Email)
	username := strings.TrimSpace(data.Username)
	if email == "" || username == "" || data.Password == "" || data.ConfirmPassword == "" {
		return nil, common.ErrMissingFields
	}
	if err := validatePassword(data.Password, data.ConfirmPassword); err != nil {
		return nil, err
	}

	hash := cryptox.HashPassword([]byte(data.Password))

	s.mu.Lock()
	defer s.mu.Unlock()

	var created models.StoredUser
	err := s.users.Update(ctx, func(list []models.StoredUser) ([]models.StoredUser, error) {
		if users.IndexByEmail(list, email) >= 0 {
			return nil, common.ErrEmailTaken
		}
		if users.IndexByUsername(list, username) >= 0 {
			return nil, common.ErrUsernameTaken
		}

		role := models.RoleUser
		if len(list) == 0 {
			role = models.RoleAdmin
		}
		created = models.StoredUser{
			User: models.User{
				ID:        s.newID(),
				Email:     email,
				Username:  username,
				Role:      role,
				CreatedAt: s.now().UTC(),
			},
			PasswordHash: hash,
		}
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueSessionToken(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID, "role", string(created.Role))

	return &models.AuthResponse{
		User:              created.Public(),
		Token:             token,
		Message:           MsgRegistered,
		VerificationToken: s.sendVerification(ctx, created.User),
	}, nil
}

// Login checks the credentials and starts a new session, replacing the
// user's previous token.
func (s *authService) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error) {
	if err := s.delay(ctx, loginDelay); err != nil {
		return nil, err
	}

	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, common.ErrMissingCredentials
	}

	user, ok := s.users.FindByEmail(ctx, creds.Email)
	if !ok {
		// Spend the same hashing time as a real check.
		cryptox.VerifyPassword([]byte(creds.Password), s.dummyHash())
		return nil, common.ErrInvalidCredentials
	}
	if !cryptox.VerifyPassword([]byte(creds.Password), user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.issueSessionToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &models.AuthResponse{User: user.Public(), Token: token, Message: MsgLoggedIn}, nil
}

// Logout removes the session bound to token. Unknown tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.delay(ctx, logoutDelay); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if userID, ok := s.tokens.UserIDByToken(ctx, token); ok {
		s.tokens.DeleteByUserID(ctx, userID)
		s.logger.Info(ctx, "user logged out", "user_id", userID)
	}
	return nil
}

// GetCurrentUser resolves token to its user. It returns (nil, nil) when the
// token or its user is unknown.
func (s *authService) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	if err := s.delay(ctx, currentUserDelay); err != nil {
		return nil, err
	}

	userID, ok := s.tokens.UserIDByToken(ctx, token)
	if !ok {
		return nil, nil
	}
	user, ok := s.users.FindByID(ctx, userID)
	if !ok {
		return nil, nil
	}
	pub := user.Public()
	return &pub, nil
}
