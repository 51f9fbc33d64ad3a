package guard

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

// Session is the view of the auth session the guard needs.
type Session interface {
	WaitReady(ctx context.Context) error
	IsAuthenticated() bool
	User() *models.User
	HasPermission(role models.Role) bool
}

// Decision is the outcome of a guard check. A nil Redirect allows the
// navigation.
type Decision struct {
	Redirect *Location
}

func (d Decision) Allowed() bool { return d.Redirect == nil }

type Guard struct {
	table   *Table
	session Session
}

func NewGuard(table *Table, session Session) *Guard {
	return &Guard{table: table, session: session}
}

// Before runs ahead of each navigation from `from` to `to`. It first waits
// until the session has finished initializing.
func (g *Guard) Before(ctx context.Context, to, from Location) (Decision, error) {
	if err := g.session.WaitReady(ctx); err != nil {
		return Decision{}, err
	}

	route := g.table.Match(to.Path)
	authenticated := g.session.IsAuthenticated()

	if route.RequiresAuth && !authenticated {
		return redirect(Location{
			Path:  PathLogin,
			Query: url.Values{"redirect": {to.FullPath()}},
		}), nil
	}

	if route.RequiresGuest && authenticated {
		target := from.Query.Get("redirect")
		if target == "" {
			target = PathHome
		}
		loc, err := ParseLocation(target)
		if err != nil || g.guestOnly(loc.Path) {
			loc = Location{Path: PathHome}
		}
		return redirect(loc), nil
	}

	// The role check only applies to a known user; RequiresAuth covers the
	// anonymous case.
	if route.RequiredRole != "" && g.session.User() != nil && !g.session.HasPermission(route.RequiredRole) {
		return redirect(Location{Path: PathHome}), nil
	}

	return Decision{}, nil
}

// guestOnly reports whether path, after static redirects, ends on a route
// an authenticated user would be bounced from again.
func (g *Guard) guestOnly(path string) bool {
	for range maxRedirects {
		route := g.table.Match(path)
		if route.Redirect == "" {
			return route.RequiresGuest
		}
		path = route.Redirect
	}
	return true
}

func redirect(loc Location) Decision {
	return Decision{Redirect: &loc}
}
