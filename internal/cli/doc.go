// Package cli provides the interactive command-line front end of the todo
// auth core.
//
// It drives a session.Manager through a read-eval-print loop: every session
// action (register, login, logout, password reset, profile update, email
// verification, social sign-in) has a command, and every screen change goes
// through the route guard via the "go" command.
//
// Delivered mail (reset and verification links) is kept in an in-memory
// outbox that the "outbox" command prints, since there is no real mail
// transport.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
