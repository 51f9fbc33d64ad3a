package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/todoauth/internal/guard"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/models"
)

// Session is the part of session.Manager the CLI drives.
type Session interface {
	Register(ctx context.Context, data models.RegisterData) (*models.AuthResponse, error)
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResponse, error)
	SocialAuth(ctx context.Context, data models.SocialAuthData) (*models.AuthResponse, error)
	Logout(ctx context.Context)
	RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error)
	ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirm) (string, error)
	UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	RequestEmailVerification(ctx context.Context) (string, error)
	User() *models.User
	IsAuthenticated() bool
	IsAdmin() bool
	Error() string
	ClearError()
}

type App struct {
	session Session
	nav     *guard.Navigator
	outbox  *mail.Outbox
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(session Session, nav *guard.Navigator, outbox *mail.Outbox, in io.Reader, out io.Writer) *App {
	return &App{
		session: session,
		nav:     nav,
		outbox:  outbox,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run enters the home route and starts the REPL. It returns when the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to the todo auth CLI (type 'help' for commands)")
	if err := a.Go(ctx, []string{guard.PathHome}); err != nil {
		return err
	}
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// getStatus renders "(username location)" for the prompt.
func (a *App) getStatus() string {
	s := ""
	if u := a.session.User(); u != nil {
		s = u.Username + " "
	}
	s += a.nav.Current().FullPath()
	return fmt.Sprintf("(%s)", s)
}

// reportError prints the message recorded by the session, or err itself
// when the session has none.
func (a *App) reportError(err error) {
	msg := a.session.Error()
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(a.out, "Error:", msg)
	a.session.ClearError()
}
