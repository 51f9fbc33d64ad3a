package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/guard"
	"github.com/dmitrijs2005/todoauth/internal/models"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

var errUsage = errors.New("usage")

func (a *App) readPassword(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for email, username and password twice, creates the
// account and signs in.
func (a *App) Register(ctx context.Context) error {
	var (
		data models.RegisterData
		err  error
	)
	if data.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if data.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if data.Password, err = a.readPassword("Enter password"); err != nil {
		return err
	}
	if data.ConfirmPassword, err = a.readPassword("Confirm password"); err != nil {
		return err
	}

	resp, err := a.session.Register(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return a.afterSignIn(ctx)
}

// Login prompts for credentials and the remember-me choice.
func (a *App) Login(ctx context.Context) error {
	var (
		creds models.LoginCredentials
		err   error
	)
	if creds.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if creds.Password, err = a.readPassword("Enter password"); err != nil {
		return err
	}
	if creds.RememberMe, err = getConfirmation(a.reader, "Remember me?", a.out); err != nil {
		return err
	}

	resp, err := a.session.Login(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return a.afterSignIn(ctx)
}

// Social signs in with one of the demo identity providers.
func (a *App) Social(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: social <google|facebook|github>")
		return errUsage
	}
	resp, err := a.session.SocialAuth(ctx, models.SocialAuthData{Provider: models.SocialProvider(args[0])})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return a.afterSignIn(ctx)
}

// Logout always succeeds locally and returns to the login screen.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return a.Go(ctx, []string{guard.PathLogin})
}

// afterSignIn continues to the destination saved by the guard, or home.
func (a *App) afterSignIn(ctx context.Context) error {
	target := a.nav.Current().Query.Get("redirect")
	if target == "" {
		target = guard.PathHome
	}
	return a.Go(ctx, []string{target})
}
