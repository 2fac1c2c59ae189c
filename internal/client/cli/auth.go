package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/expensekeeper/internal/client/nav"
	"github.com/dmitrijs2005/expensekeeper/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

var roles = []string{services.RoleUser, services.RoleAdmin}

// Register prompts for name, email, password and role and creates the
// account. The server message is shown either way; the form is not kept.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	role, err := getChoice(a.reader, "Role", roles, a.out)
	if err != nil {
		return err
	}

	msg, err := a.auth.Register(ctx, name, email, password, role)
	if err != nil {
		printFailure(a.out, msg)
		return err
	}
	printSuccess(a.out, msg)
	return nil
}

// Login prompts for credentials and, on success, stores the session and
// shows the home view. On failure the login view stays and the store is
// untouched.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	role, err := getChoice(a.reader, "Role", roles, a.out)
	if err != nil {
		return err
	}

	msg, err := a.auth.Login(ctx, email, password, role)
	if err != nil {
		printFailure(a.out, msg)
		return err
	}
	printSuccess(a.out, msg)
	a.navigate(ctx, nav.RouteHome)
	return nil
}

// Logout removes the session and returns to the login view. The history
// entry is replaced so "back" cannot return to home.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		printFailure(a.out, "Logout failed.")
		return err
	}
	a.show(ctx, a.router.Replace(ctx, nav.RouteLogin))
	printSuccess(a.out, "Logged out.")
	return nil
}

// Whoami prints what the stored session says about the user.
func (a *App) Whoami(ctx context.Context) error {
	who, ok, err := a.auth.Whoami(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(a.out, "  Email:    %s\n", who.Email)
	if who.Identity.Subject != "" {
		fmt.Fprintf(a.out, "  User ID:  %s\n", who.Identity.Subject)
	}
	if who.Identity.Role != "" {
		fmt.Fprintf(a.out, "  Role:     %s\n", who.Identity.Role)
	}
	if !who.Identity.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "  Expires:  %s\n", who.Identity.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}
