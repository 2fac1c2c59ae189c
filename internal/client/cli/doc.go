// Package cli provides the interactive expense tracker command-line client.
//
// It wires configuration, the session store, the backend client and an
// interactive REPL whose commands depend on the current view:
//
//   - login view: log in, go to sign-up
//   - sign-up view: register, go to login
//   - home view (session required): list, add, edit, select, delete and
//     bulk-delete expenses, show the total, log out
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// An authorization failure on the home view ends the session and returns to
// the login view.
package cli
