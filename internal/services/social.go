package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
)

// SocialEmail is the synthetic address that identifies a provider's account.
func SocialEmail(provider models.SocialProvider) string {
	return fmt.Sprintf("user_%s@example.com", provider)
}

// SocialAuth simulates an OAuth login. The account is keyed by the provider
// email: the first call creates it (verified, no password), later calls
// reuse it. The access token is not inspected.
func (s *authService) SocialAuth(ctx context.Context, data models.SocialAuthData) (*models.AuthResponse, error) {
	if err := s.delay(ctx, socialAuthDelay); err != nil {
		return nil, err
	}
	if !data.Provider.Valid() {
		return nil, common.ErrUnsupportedProvider
	}

	email := SocialEmail(data.Provider)

	s.mu.Lock()
	defer s.mu.Unlock()

	var user models.StoredUser
	created := false
	err := s.users.Update(ctx, func(list []models.StoredUser) ([]models.StoredUser, error) {
		if i := users.IndexByEmail(list, email); i >= 0 {
			user = list[i]
			return list, nil
		}
		user = models.StoredUser{
			User: models.User{
				ID:            s.newID(),
				Email:         email,
				Username:      s.socialUsername(list, data.Provider),
				Role:          models.RoleUser,
				EmailVerified: true,
				CreatedAt:     s.now().UTC(),
			},
		}
		created = true
		return append(list, user), nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueSessionToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "social login", "provider", string(data.Provider), "user_id", user.ID, "created", created)

	return &models.AuthResponse{
		User:    user.Public(),
		Token:   token,
		Message: fmt.Sprintf("%s login successful!", data.Provider),
	}, nil
}

// socialUsername draws <provider>_user_<n> until it finds a free name. If
// every suffix is taken the user count is appended instead.
func (s *authService) socialUsername(list []models.StoredUser, provider models.SocialProvider) string {
	for range socialUsernameRange {
		name := fmt.Sprintf("%s_user_%d", provider, s.intn(socialUsernameRange))
		if users.IndexByUsername(list, name) < 0 {
			return name
		}
	}
	return fmt.Sprintf("%s_user_%d", provider, socialUsernameRange+len(list))
}
