package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

func (a *App) ResetRequest(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.session.RequestPasswordReset(ctx, models.PasswordResetRequest{Email: email})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	fmt.Fprintln(a.out, "Type 'outbox' to see delivered links.")
	return nil
}

// ResetConfirm sets a new password with a reset token given as the only
// argument or entered at the prompt.
func (a *App) ResetConfirm(ctx context.Context, args []string) error {
	req := models.PasswordResetConfirm{}
	var err error
	if req.Token, err = a.tokenArg(args, "Enter reset token"); err != nil {
		return err
	}
	if req.NewPassword, err = a.readPassword("Enter new password"); err != nil {
		return err
	}
	if req.ConfirmPassword, err = a.readPassword("Confirm new password"); err != nil {
		return err
	}
	msg, err := a.session.ConfirmPasswordReset(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Profile edits the signed-in user. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	var (
		patch models.ProfileUpdate
		err   error
	)
	if patch.Username, err = getSimpleText(a.reader, "New username (empty to keep)", a.out); err != nil {
		return err
	}
	if patch.Email, err = getSimpleText(a.reader, "New email (empty to keep)", a.out); err != nil {
		return err
	}
	change, err := getConfirmation(a.reader, "Change password?", a.out)
	if err != nil {
		return err
	}
	if change {
		if patch.CurrentPassword, err = a.readPassword("Current password"); err != nil {
			return err
		}
		if patch.NewPassword, err = a.readPassword("New password"); err != nil {
			return err
		}
		if patch.ConfirmPassword, err = a.readPassword("Confirm new password"); err != nil {
			return err
		}
	}

	u, err := a.session.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	a.printUser(u)
	return nil
}

func (a *App) Verify(ctx context.Context, args []string) error {
	token, err := a.tokenArg(args, "Enter verification token")
	if err != nil {
		return err
	}
	msg, err := a.session.VerifyEmail(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) ResendVerification(ctx context.Context) error {
	msg, err := a.session.RequestEmailVerification(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) tokenArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}
