package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Balance(ctx context.Context) error
	Send(ctx context.Context) error
	History(ctx context.Context) error
	Details(ctx context.Context) error
	Fund(ctx context.Context) error

	Blocks(ctx context.Context) error
	Pending(ctx context.Context) error
	Mine(ctx context.Context) error
	Validate(ctx context.Context) error
	Zakat(ctx context.Context) error

	Profile(ctx context.Context) error
	SetProfile(ctx context.Context) error
	Beneficiaries(ctx context.Context) error
	AddBeneficiary(ctx context.Context) error
	RemoveBeneficiary(ctx context.Context) error
	ChangeEmail(ctx context.Context) error

	AdminLogin(ctx context.Context) error
	AdminLogout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the wallet CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wallet %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: balance, send, history, details, fund, blocks, pending, mine, validate, zakat, profile, setprofile, beneficiaries, addben, rmben, changemail, admin, adminlogout, logout, exit")
			} else {
				printlnFn("Available commands: register, login, blocks, pending, validate, admin, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "b", "balance":
			_ = a.Balance(ctx)

		case "send":
			_ = a.Send(ctx)

		case "h", "history":
			_ = a.History(ctx)

		case "details":
			_ = a.Details(ctx)

		case "fund":
			_ = a.Fund(ctx)

		case "blocks":
			_ = a.Blocks(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "mine":
			_ = a.Mine(ctx)

		case "validate":
			_ = a.Validate(ctx)

		case "zakat":
			_ = a.Zakat(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "setprofile":
			_ = a.SetProfile(ctx)

		case "beneficiaries":
			_ = a.Beneficiaries(ctx)

		case "addben":
			_ = a.AddBeneficiary(ctx)

		case "rmben":
			_ = a.RemoveBeneficiary(ctx)

		case "changemail":
			_ = a.ChangeEmail(ctx)

		case "admin":
			_ = a.AdminLogin(ctx)

		case "adminlogout":
			_ = a.AdminLogout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
