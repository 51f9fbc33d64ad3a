package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
)

// RequestPasswordReset mails a reset link when the email is registered.
// The reply is the same either way.
func (s *authService) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error) {
	if err := s.delay(ctx, resetRequestDelay); err != nil {
		return "", err
	}

	user, ok := s.users.FindByEmail(ctx, users.NormalizeEmail(req.Email))
	if !ok {
		s.logger.Debug(ctx, "password reset for unknown email")
		return MsgResetRequested, nil
	}

	token, err := common.MakeRandHexString(resetTokenSize)
	if err != nil {
		return "", fmt.Errorf("%w: reset token: %v", common.ErrorInternal, err)
	}

	now := s.now()

	s.mu.Lock()
	s.resets.Put(ctx, user.ID, models.NewResetToken(token, now, s.resetTTL))
	s.mu.Unlock()

	s.send(ctx, mail.Message{To: user.Email, Kind: mail.KindPasswordReset, Token: token, SentAt: now})
	s.logger.Info(ctx, "password reset requested", "user_id", user.ID)

	return MsgResetRequested, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
// Unknown, expired and already used tokens all fail with
// common.ErrResetTokenInvalid.
func (s *authService) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) (string, error) {
	if err := s.delay(ctx, resetConfirmDelay); err != nil {
		return "", err
	}

	if err := validatePassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, rt, ok := s.resets.FindByToken(ctx, req.Token)
	if !ok {
		return "", common.ErrResetTokenInvalid
	}
	if rt.Expired(s.now()) {
		s.resets.DeleteByUserID(ctx, userID)
		return "", common.ErrResetTokenInvalid
	}

	hash := cryptox.HashPassword([]byte(req.NewPassword))
	err := s.users.Update(ctx, func(list []models.StoredUser) ([]models.StoredUser, error) {
		i := users.IndexByID(list, userID)
		if i < 0 {
			return nil, common.ErrUserNotFound
		}
		list[i].PasswordHash = hash
		return list, nil
	})

	s.resets.DeleteByUserID(ctx, userID)

	if errors.Is(err, common.ErrUserNotFound) {
		return "", common.ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "password reset", "user_id", userID)
	return MsgPasswordReset, nil
}
