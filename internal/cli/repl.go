package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	reportError(err error)
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Social(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	ResetRequest(ctx context.Context) error
	ResetConfirm(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	ResendVerification(ctx context.Context) error
	Go(ctx context.Context, args []string) error
	Outbox(ctx context.Context) error
}

const (
	guestHelp = "Available commands: register, login, social <provider>, reset-request, reset-confirm [token], verify [token], go <path>, outbox, whoami, exit"
	userHelp  = "Available commands: whoami, profile, verify [token], resend-verification, go <path>, outbox, logout, exit"
)

// runREPL starts a read-eval-print loop over reader.
//
// The first token of each line is the command and the rest are its
// arguments. Errors returned by command handlers are reported through
// a.reportError and never stop the loop. The loop exits on EOF or when the
// user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "social":
			cmdErr = a.Social(ctx, args)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "reset-request":
			cmdErr = a.ResetRequest(ctx)

		case "reset-confirm":
			cmdErr = a.ResetConfirm(ctx, args)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "verify":
			cmdErr = a.Verify(ctx, args)

		case "resend-verification":
			cmdErr = a.ResendVerification(ctx)

		case "go":
			cmdErr = a.Go(ctx, args)

		case "outbox":
			cmdErr = a.Outbox(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil && !errors.Is(cmdErr, errUsage) {
			a.reportError(cmdErr)
		}
	}
}
