package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/todoauth/internal/logging"
)

const maxRedirects = 10

var ErrTooManyRedirects = errors.New("too many redirects")

// Navigator tracks the current location and moves between routes through
// the guard.
type Navigator struct {
	table  *Table
	guard  *Guard
	logger logging.Logger

	mu      sync.Mutex
	current Location
}

// NewNavigator starts at the empty location; the first Push decides where
// the visitor actually lands.
func NewNavigator(table *Table, guard *Guard, logger logging.Logger) *Navigator {
	return &Navigator{
		table:   table,
		guard:   guard,
		logger:  logger.With("component", "navigator"),
		current: Location{Path: ""},
	}
}

func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Route returns the route at the current location.
func (n *Navigator) Route() Route {
	return n.table.Match(n.Current().Path)
}

// Push navigates to raw, following static and guard redirects, and returns
// the route finally entered.
func (n *Navigator) Push(ctx context.Context, raw string) (Route, error) {
	to, err := ParseLocation(raw)
	if err != nil {
		return Route{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return n.Navigate(ctx, to)
}

func (n *Navigator) Navigate(ctx context.Context, to Location) (Route, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	from := n.current
	for range maxRedirects {
		route := n.table.Match(to.Path)
		if route.Redirect != "" {
			next, err := ParseLocation(route.Redirect)
			if err != nil {
				return Route{}, err
			}
			to = next
			continue
		}

		decision, err := n.guard.Before(ctx, to, from)
		if err != nil {
			return Route{}, err
		}
		if !decision.Allowed() {
			to = *decision.Redirect
			continue
		}

		n.current = to
		n.logger.Info(ctx, "navigated", "from", from.FullPath(), "to", to.FullPath())
		return route, nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrTooManyRedirects, to.FullPath())
}

// Routes lists the enterable routes.
func (n *Navigator) Routes() []Route {
	return n.table.Routes()
}
