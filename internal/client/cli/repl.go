package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/client/nav"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	route() nav.Route

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	GoLogin(ctx context.Context) error
	GoSignUp(ctx context.Context) error
	GoHome(ctx context.Context) error
	Back(ctx context.Context) error

	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Total(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, field string, args []string) error
	Select(ctx context.Context, args []string) error
	Selected(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	DeleteSelected(ctx context.Context) error
}

var helpText = map[nav.Route]string{
	nav.RouteLogin:  "Available commands: login, signup, home, help, exit",
	nav.RouteSignUp: "Available commands: register, login, help, exit",
	nav.RouteHome: "Available commands: (l)ist, refresh, total, add, amount <id> <value>, " +
		"category <id> <value>, method <id> <value>, select <id>, selected, delete <id>, " +
		"delete-selected, whoami, home, back, logout, help, exit",
}

// runREPL starts a simple read–eval–print loop for the expense CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' according to the current view. Unknown
// commands are reported back to the user. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("expenses (%s)> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printlnFn(helpText[a.route()])
			continue
		}

		if !dispatch(ctx, a, cmd, args) {
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch a.route() {
	case nav.RouteLogin:
		switch cmd {
		case "login":
			_ = a.Login(ctx)
		case "signup":
			_ = a.GoSignUp(ctx)
		case "home":
			_ = a.GoHome(ctx)
		default:
			return false
		}

	case nav.RouteSignUp:
		switch cmd {
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.GoLogin(ctx)
		default:
			return false
		}

	case nav.RouteHome:
		switch cmd {
		case "l", "list":
			_ = a.List(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "total":
			_ = a.Total(ctx)
		case "add":
			_ = a.Add(ctx)
		case "amount", "category", "method":
			_ = a.Edit(ctx, cmd, args)
		case "select":
			_ = a.Select(ctx, args)
		case "selected":
			_ = a.Selected(ctx)
		case "delete":
			_ = a.Delete(ctx, args)
		case "delete-selected":
			_ = a.DeleteSelected(ctx)
		case "whoami":
			_ = a.Whoami(ctx)
		case "home":
			_ = a.GoHome(ctx)
		case "back":
			_ = a.Back(ctx)
		case "logout":
			_ = a.Logout(ctx)
		default:
			return false
		}

	default:
		return false
	}
	return true
}
