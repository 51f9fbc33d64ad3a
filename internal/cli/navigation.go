package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

// Go navigates to the path in args[0] through the route guard and prints
// where the visitor ended up.
func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: go <path>")
		for _, r := range a.nav.Routes() {
			fmt.Fprintf(a.out, "  %-22s %s\n", r.Path, r.Name)
		}
		return errUsage
	}
	route, err := a.nav.Push(ctx, args[0])
	if err != nil {
		return err
	}
	if route.Name == "NotFound" {
		fmt.Fprintf(a.out, "404: %s not found\n", route.Path)
		return nil
	}
	fmt.Fprintf(a.out, "[%s] %s\n", route.Name, a.nav.Current().FullPath())
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.printUser(u)
	return nil
}

func (a *App) printUser(u *models.User) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", u.ID)
	fmt.Fprintf(tw, "username\t%s\n", u.Username)
	fmt.Fprintf(tw, "email\t%s\n", u.Email)
	fmt.Fprintf(tw, "role\t%s\n", u.Role)
	fmt.Fprintf(tw, "verified\t%t\n", u.EmailVerified)
	fmt.Fprintf(tw, "created\t%s\n", u.CreatedAt.Format(time.RFC3339))
	tw.Flush()
}

// Outbox prints the mail delivered during this run.
func (a *App) Outbox(ctx context.Context) error {
	msgs := a.outbox.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "Outbox is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT\tTO\tKIND\tTOKEN")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.SentAt.Format(time.TimeOnly), m.To, m.Kind, m.Token)
	}
	return tw.Flush()
}
