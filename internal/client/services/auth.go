// Package services contains application services for the expense client.
// This file defines the authentication service: register, login, logout and
// a description of the current session.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
)

// Fallback messages shown when the backend gives none.
const (
	MsgLoginFailed        = "Login failed!"
	MsgRegistrationFailed = "Registration failed!"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidRole  = errors.New("role must be user or admin")
	ErrMissingInput = errors.New("all fields are required")
)

// Whoami describes the stored session.
type Whoami struct {
	Email    string
	Identity session.Identity
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and persist the token with the email. On failure
//     the store is left untouched.
//   - Register: create an account; no session is created.
//   - Logout: forget the stored token.
//   - Whoami: describe the stored session, ok=false when there is none.
//
// Returned messages are meant for the user; errors wrap api and session
// sentinels.
type AuthService interface {
	Login(ctx context.Context, email, password, role string) (string, error)
	Register(ctx context.Context, name, email, password, role string) (string, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (Whoami, bool, error)
}

type authService struct {
	client api.Client
	store  session.Store
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(client api.Client, store session.Store, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Discard()
	}
	return &authService{client: client, store: store, log: log}
}

// NormalizeRole lower-cases r and checks it is a known role.
func NormalizeRole(r string) (string, error) {
	r = strings.ToLower(strings.TrimSpace(r))
	if r != RoleUser && r != RoleAdmin {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Login returns the server message on success, or the message to show with
// the error on failure.
func (a *authService) Login(ctx context.Context, email, password, role string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return MsgLoginFailed, ErrMissingInput
	}
	role, err := NormalizeRole(role)
	if err != nil {
		return MsgLoginFailed, err
	}

	resp, err := a.client.Login(ctx, api.LoginRequest{Email: email, Password: password, Role: role})
	if err != nil {
		a.log.Warn(ctx, "login failed", "email", email, "error", err)
		return api.Message(err, MsgLoginFailed), fmt.Errorf("login: %w", err)
	}

	if err := session.Save(ctx, a.store, resp.Token, email); err != nil {
		return MsgLoginFailed, fmt.Errorf("save session: %w", err)
	}
	a.log.Info(ctx, "logged in", "email", email)
	return resp.Message, nil
}

func (a *authService) Register(ctx context.Context, name, email, password, role string) (string, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return MsgRegistrationFailed, ErrMissingInput
	}
	role, err := NormalizeRole(role)
	if err != nil {
		return MsgRegistrationFailed, err
	}

	msg, err := a.client.Register(ctx, api.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		a.log.Warn(ctx, "registration failed", "email", email, "error", err)
		return api.Message(err, MsgRegistrationFailed), fmt.Errorf("register: %w", err)
	}
	return msg, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

// Whoami reads the stored session. The token is decoded without verification
// for display only; an opaque token yields an empty Identity.
func (a *authService) Whoami(ctx context.Context) (Whoami, bool, error) {
	token, ok, err := a.store.Get(ctx)
	if err != nil || !ok {
		return Whoami{}, false, err
	}
	email, err := a.store.Email(ctx)
	if err != nil {
		return Whoami{}, false, err
	}

	w := Whoami{Email: email}
	if id, err := session.DescribeToken(token); err == nil {
		w.Identity = id
	} else {
		a.log.Debug(ctx, "token is not a readable jwt", "error", err)
	}
	return w, true, nil
}
