package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todoauth/internal/auth"
	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
)

// UpdateProfile applies the non-empty fields of patch. Checks run in order:
// username, email, then password (current password present, new passwords
// match, length, current password correct). A changed email must be
// verified again.
func (s *authService) UpdateProfile(ctx context.Context, userID string, patch models.ProfileUpdate) (*models.User, error) {
	if err := s.delay(ctx, updateProfileDelay); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(patch.Username)
	email := users.NormalizeEmail(patch.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated models.StoredUser
	emailChanged := false
	err := s.users.Update(ctx, func(list []models.StoredUser) ([]models.StoredUser, error) {
		i := users.IndexByID(list, userID)
		if i < 0 {
			return nil, common.ErrUserNotFound
		}
		u := list[i]

		if username != "" && username != u.Username {
			if j := users.IndexByUsername(list, username); j >= 0 && j != i {
				return nil, common.ErrUsernameTaken
			}
			u.Username = username
		}

		if email != "" && email != users.NormalizeEmail(u.Email) {
			if j := users.IndexByEmail(list, email); j >= 0 && j != i {
				return nil, common.ErrEmailTaken
			}
			u.Email = email
			u.EmailVerified = false
			emailChanged = true
		}

		if patch.NewPassword != "" {
			if patch.CurrentPassword == "" {
				return nil, common.ErrCurrentPasswordRequired
			}
			if err := validatePassword(patch.NewPassword, patch.ConfirmPassword); err != nil {
				return nil, err
			}
			if !cryptox.VerifyPassword([]byte(patch.CurrentPassword), u.PasswordHash) {
				return nil, common.ErrWrongCurrentPassword
			}
			u.PasswordHash = cryptox.HashPassword([]byte(patch.NewPassword))
		}

		list[i] = u
		updated = u
		return list, nil
	})
	if err != nil {
		return nil, err
	}

	if emailChanged {
		s.sendVerification(ctx, updated.User)
	}

	s.logger.Info(ctx, "profile updated", "user_id", userID, "email_changed", emailChanged)

	pub := updated.Public()
	return &pub, nil
}

// sendVerification mints a verification link for u and mails it. It returns
// the token, or "" when minting failed.
func (s *authService) sendVerification(ctx context.Context, u models.User) string {
	now := s.now()
	token, err := auth.GenerateToken(u.ID, u.Email, auth.PurposeEmailVerification, s.secretKey, now, s.verificationTTL)
	if err != nil {
		s.logger.Error(ctx, "failed to mint verification token", "user_id", u.ID, "error", err)
		return ""
	}
	s.send(ctx, mail.Message{To: u.Email, Kind: mail.KindEmailVerification, Token: token, SentAt: now})
	return token
}

// VerifyEmail marks the account named by a verification token as verified.
// Any token that is not a valid, unexpired link for the account's current
// email fails with common.ErrInvalidVerificationLink.
func (s *authService) VerifyEmail(ctx context.Context, token string) (string, error) {
	if err := s.delay(ctx, verifyEmailDelay); err != nil {
		return "", err
	}

	claims, err := auth.ParseToken(token, auth.PurposeEmailVerification, s.secretKey, s.now())
	if err != nil {
		s.logger.Debug(ctx, "rejected verification token", "error", err)
		return "", common.ErrInvalidVerificationLink
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.users.Update(ctx, func(list []models.StoredUser) ([]models.StoredUser, error) {
		i := users.IndexByID(list, claims.UserID)
		if i < 0 || !strings.EqualFold(list[i].Email, claims.Subject) {
			return nil, common.ErrInvalidVerificationLink
		}
		list[i].EmailVerified = true
		return list, nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "email verified", "user_id", claims.UserID)
	return MsgEmailVerified, nil
}

// RequestEmailVerification mails a fresh verification link to userID.
func (s *authService) RequestEmailVerification(ctx context.Context, userID string) (string, error) {
	if err := s.delay(ctx, verifyEmailDelay); err != nil {
		return "", err
	}

	user, ok := s.users.FindByID(ctx, userID)
	if !ok {
		return "", common.ErrUserNotFound
	}
	if user.EmailVerified {
		return MsgAlreadyVerified, nil
	}

	if s.sendVerification(ctx, user.User) == "" {
		return "", fmt.Errorf("%w: verification token", common.ErrorInternal)
	}
	return MsgVerificationSent, nil
}
