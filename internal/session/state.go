// Package session holds the client's view of "who am I right now": the
// current user and token, plus the loading flag and last error of the most
// recent action. A Manager is created once by the entry point and shared
// with everything that needs the session (CLI commands, the route guard).
//
// Every action wraps one auth service call: loading is set and the error
// cleared before the call; on success the state and its persisted snapshot
// are updated; on failure the user-facing message is stored in Error and the
// error is returned; loading is always reset afterwards.
package session

import "github.com/dmitrijs2005/todoauth/internal/models"

// State is the full session state.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}

// Snapshot is the persisted subset of State.
type Snapshot struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Phase is the lifecycle stage derived from State.
type Phase string

const (
	// PhaseInit lasts until the persisted session has been revalidated.
	PhaseInit Phase = "init"
	// PhaseActive means a user is signed in and the last action succeeded.
	PhaseActive Phase = "active"
	// PhaseError means the last action failed.
	PhaseError Phase = "error"
	// PhaseCleared means nobody is signed in.
	PhaseCleared Phase = "cleared"
)
