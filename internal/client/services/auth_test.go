package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/api/apitest"
	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
)

// ---- fake client ----

type fakeClient struct {
	api.Client

	LoginResp   api.LoginResponse
	LoginErr    error
	RegisterMsg string
	RegisterErr error

	LastLogin    api.LoginRequest
	LastRegister api.RegisterRequest
	Calls        int
}

func (f *fakeClient) Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error) {
	f.Calls++
	f.LastLogin = req
	return f.LoginResp, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	f.Calls++
	f.LastRegister = req
	return f.RegisterMsg, f.RegisterErr
}

// ---- tests ----

func TestLogin_StoresTokenAndEmail(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	fc := &fakeClient{LoginResp: api.LoginResponse{Token: "tok", Message: "Login successful"}}
	svc := NewAuthService(fc, store, nil)

	msg, err := svc.Login(ctx, " ann@example.com ", "pw", "User")
	require.NoError(t, err)
	assert.Equal(t, "Login successful", msg)
	assert.Equal(t, api.LoginRequest{Email: "ann@example.com", Password: "pw", Role: "user"}, fc.LastLogin)

	token, ok, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", token)
	email, err := store.Email(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", email)
}

func TestLogin_FailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"server message", &api.APIError{StatusCode: 400, Message: "Invalid credentials", Err: api.ErrRequestFailed}, "Invalid credentials"},
		{"no message", api.ErrUnavailable, MsgLoginFailed},
		{"empty token", api.ErrEmptyToken, MsgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			require.NoError(t, session.Save(ctx, store, "old", "old@example.com"))
			svc := NewAuthService(&fakeClient{LoginErr: tt.err}, store, nil)

			msg, err := svc.Login(ctx, "ann@example.com", "pw", "user")
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantMsg, msg)

			token, ok, err := store.Get(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "old", token)
		})
	}
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{}
	svc := NewAuthService(fc, session.NewMemoryStore(), nil)

	_, err := svc.Login(ctx, "", "pw", "user")
	assert.ErrorIs(t, err, ErrMissingInput)
	_, err = svc.Login(ctx, "ann@example.com", "pw", "root")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Zero(t, fc.Calls)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	fc := &fakeClient{RegisterMsg: "User registered successfully"}
	svc := NewAuthService(fc, store, nil)

	msg, err := svc.Register(ctx, "Ann", "ann@example.com", "pw", "admin")
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
	assert.Equal(t, "admin", fc.LastRegister.Role)
	assert.False(t, session.Present(ctx, store), "register does not log in")
}

func TestRegister_Failure(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(&fakeClient{RegisterErr: errors.New("dial tcp: refused")}, session.NewMemoryStore(), nil)

	msg, err := svc.Register(ctx, "Ann", "ann@example.com", "pw", "user")
	require.Error(t, err)
	assert.Equal(t, MsgRegistrationFailed, msg)
}

func TestLogout_ClearsStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, session.Save(ctx, store, "tok", "ann@example.com"))
	svc := NewAuthService(&fakeClient{}, store, nil)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, session.Present(ctx, store))

	_, ok, err := svc.Whoami(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuth_AgainstBackend(t *testing.T) {
	ctx := context.Background()
	b := apitest.NewBackend(t)
	store := session.NewMemoryStore()
	client, err := api.NewHTTPClient(b.URL(), store)
	require.NoError(t, err)
	svc := NewAuthService(client, store, nil)

	_, err = svc.Register(ctx, "Ann", "ann@example.com", "pw", "user")
	require.NoError(t, err)

	msg, err := svc.Login(ctx, "ann@example.com", "wrong", "user")
	require.Error(t, err)
	assert.NotEmpty(t, msg)
	assert.False(t, session.Present(ctx, store))

	_, err = svc.Login(ctx, "ann@example.com", "pw", "user")
	require.NoError(t, err)
	assert.True(t, session.Present(ctx, store))

	who, ok, err := svc.Whoami(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", who.Email)
	assert.Equal(t, "user", who.Identity.Role)
	assert.NotEmpty(t, who.Identity.Subject)
}
