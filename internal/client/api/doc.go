// Package api is the HTTP client of the expense tracker backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering
//     Register/Login and the expense list/create/update/delete calls.
//  2. A concrete implementation over net/http (see HTTPClient) that reads the
//     bearer token from a TokenSource at the moment each request is built and
//     maps HTTP status codes to sentinel errors.
//  3. DeleteMany, which fans per-id deletes out with a concurrency cap and
//     reports which ids were confirmed deleted.
//
// # Error Handling
//
// Failures returned by the backend are *APIError values that unwrap to one of
// ErrUnauthorized (401/403), ErrUnavailable (5xx) or ErrRequestFailed (other
// statuses). Transport errors and timeouts also match ErrUnavailable. Match
// with errors.Is; use Message to get the server's explanation.
//
// All operations accept context.Context and honor cancellation.
package api
