// Package guard holds the route table of the application and the navigation
// guard that decides, before each transition, whether the visitor may enter
// the target route or must be redirected.
package guard

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

type Layout string

const (
	LayoutDefault Layout = "default"
	LayoutAuth    Layout = "auth"
)

// Route describes one destination. A route with Redirect set is never
// entered; navigation continues at Redirect.
type Route struct {
	Path          string
	Name          string
	Redirect      string
	RequiresAuth  bool
	RequiresGuest bool
	RequiredRole  models.Role
	Layout        Layout
}

const (
	PathHome          = "/"
	PathAuth          = "/auth"
	PathLogin         = "/auth/login"
	PathRegister      = "/auth/register"
	PathPasswordReset = "/auth/reset-password"
	PathProfile       = "/profile"
	PathAdmin         = "/admin"
)

// NotFound is matched by every path missing from the table.
var NotFound = Route{Name: "NotFound", Layout: LayoutDefault}

// DefaultRoutes returns the routes of the application.
func DefaultRoutes() []Route {
	return []Route{
		{Path: PathHome, Name: "Home", RequiresAuth: true, Layout: LayoutDefault},
		{Path: PathLogin, Name: "Login", RequiresGuest: true, Layout: LayoutAuth},
		{Path: PathRegister, Name: "Register", RequiresGuest: true, Layout: LayoutAuth},
		{Path: PathPasswordReset, Name: "PasswordReset", RequiresGuest: true, Layout: LayoutAuth},
		{Path: PathAuth, Redirect: PathLogin},
		{Path: PathProfile, Name: "Profile", RequiresAuth: true, Layout: LayoutDefault},
		{Path: PathAdmin, Name: "Admin", RequiresAuth: true, RequiredRole: models.RoleAdmin, Layout: LayoutDefault},
	}
}

type Table struct {
	routes []Route
	byPath map[string]Route
}

func NewTable(routes []Route) *Table {
	t := &Table{byPath: make(map[string]Route, len(routes))}
	for _, r := range routes {
		r.Path = cleanPath(r.Path)
		t.routes = append(t.routes, r)
		t.byPath[r.Path] = r
	}
	return t
}

// Match returns the route registered for path, or NotFound.
func (t *Table) Match(path string) Route {
	if r, ok := t.byPath[cleanPath(path)]; ok {
		return r
	}
	nf := NotFound
	nf.Path = path
	return nf
}

// Routes lists the enterable routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		if r.Redirect == "" {
			out = append(out, r)
		}
	}
	return out
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// Location is a navigation target: a path plus its query.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses a path with an optional query string, such as
// "/auth/login?redirect=%2Fprofile".
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, err
	}
	return Location{Path: cleanPath(u.Path), Query: u.Query()}, nil
}

// FullPath renders the location back to "path?query".
func (l Location) FullPath() string {
	p := cleanPath(l.Path)
	if q := l.Query.Encode(); q != "" {
		return p + "?" + q
	}
	return p
}
