package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api/apitest"
	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
)

const email = "ann@example.com"

func coffee() models.NewExpense {
	return models.NewExpense{
		Amount:        decimal.NewFromInt(50),
		Description:   "coffee",
		Date:          models.NewDate(2024, time.January, 1),
		Category:      models.CategoryOther,
		PaymentMethod: models.PaymentCash,
	}
}

func newClient(t *testing.T, b *apitest.Backend, store session.Store) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(b.URL(), store)
	require.NoError(t, err)
	return c
}

func loggedIn(t *testing.T, b *apitest.Backend) (*HTTPClient, session.Store) {
	t.Helper()
	b.AddUser("Ann", email, "pw", "user")
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), b.IssueToken(email)))
	return newClient(t, b, store), store
}

func TestNewHTTPClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewHTTPClient("ftp://example.com/api", nil)
	require.Error(t, err)

	_, err = NewHTTPClient("://nope", nil)
	require.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	b := apitest.NewBackend(t)
	c := newClient(t, b, session.NewMemoryStore())
	ctx := context.Background()

	msg, err := c.Register(ctx, RegisterRequest{Name: "Ann", Email: email, Password: "pw", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)

	_, err = c.Register(ctx, RegisterRequest{Name: "Ann", Email: email, Password: "pw", Role: "user"})
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "User already exists", Message(err, "Registration failed!"))

	resp, err := c.Login(ctx, LoginRequest{Email: email, Password: "pw", Role: "user"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Login successful", resp.Message)

	_, err = c.Login(ctx, LoginRequest{Email: email, Password: "wrong", Role: "user"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", Message(err, "Login failed!"))

	for _, r := range b.Requests() {
		assert.Empty(t, r.Authorization, "auth endpoints carry no bearer token")
	}
}

func TestLogin_EmptyTokenIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"","message":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/api", nil)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), LoginRequest{Email: "a", Password: "b", Role: "user"})
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestExpenseCRUD(t *testing.T) {
	b := apitest.NewBackend(t)
	c, store := loggedIn(t, b)
	ctx := context.Background()

	list, err := c.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	created, err := c.CreateExpense(ctx, coffee())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "coffee", created.Description)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(50)))

	require.NoError(t, c.UpdateExpense(ctx, created.ID, models.CategoryPatch(models.CategoryGroceries)))
	stored := b.Expenses(email)
	require.Len(t, stored, 1)
	assert.Equal(t, models.CategoryGroceries, stored[0].Category)
	assert.Equal(t, "coffee", stored[0].Description, "untouched fields survive a patch")

	require.NoError(t, c.DeleteExpense(ctx, created.ID))
	assert.Empty(t, b.Expenses(email))

	err = c.DeleteExpense(ctx, created.ID)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Expense not found", Message(err, ""))

	token, _, _ := store.Get(ctx)
	for _, r := range b.Requests() {
		assert.Equal(t, "Bearer "+token, r.Authorization, r.Method+" "+r.Path)
		assert.NotEmpty(t, r.RequestID)
	}
}

func TestCreateExpense_ValidatesBeforeNetwork(t *testing.T) {
	b := apitest.NewBackend(t)
	c, _ := loggedIn(t, b)

	incomplete := coffee()
	incomplete.Description = ""

	_, err := c.CreateExpense(context.Background(), incomplete)
	require.ErrorIs(t, err, models.ErrMissingField)
	assert.Empty(t, b.Requests())
}

func TestUpdateExpense_EmptyPatchIsLocal(t *testing.T) {
	b := apitest.NewBackend(t)
	c, _ := loggedIn(t, b)

	err := c.UpdateExpense(context.Background(), "exp-1", models.Patch{})
	require.ErrorIs(t, err, ErrEmptyPatch)
	assert.Empty(t, b.Requests())
}

func TestRequests_WithoutTokenAreUnauthorized(t *testing.T) {
	b := apitest.NewBackend(t)
	c := newClient(t, b, session.NewMemoryStore())

	_, err := c.ListExpenses(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)

	reqs := b.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization, "absent token means no Authorization header")
}

func TestRequests_ReadTokenAtConstruction(t *testing.T) {
	b := apitest.NewBackend(t)
	c, store := loggedIn(t, b)
	ctx := context.Background()

	_, err := c.ListExpenses(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	_, err = c.ListExpenses(ctx)
	require.ErrorIs(t, err, ErrUnauthorized, "a cleared token is not cached by the client")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusBadRequest, ErrRequestFailed},
		{http.StatusNotFound, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			b := apitest.NewBackend(t)
			c, _ := loggedIn(t, b)
			b.Fail(http.MethodGet, "/expense", tt.status)

			_, err := c.ListExpenses(context.Background())
			require.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, http.StatusText(tt.status), apiErr.Message)
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url+"/api", session.NewMemoryStore())
	require.NoError(t, err)

	_, err = c.ListExpenses(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewHTTPClient(srv.URL+"/api", nil, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.ListExpenses(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContextIsNotUnavailable(t *testing.T) {
	b := apitest.NewBackend(t)
	c, _ := loggedIn(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListExpenses(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expenses": "nope"`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/api", nil)
	require.NoError(t, err)

	_, err = c.ListExpenses(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "decode response"))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Login failed!", Message(errors.New("boom"), "Login failed!"))
	assert.Equal(t, "Login failed!", Message(&APIError{StatusCode: 500, Err: ErrUnavailable}, "Login failed!"))
	assert.Equal(t, "nope", Message(&APIError{StatusCode: 400, Message: "nope", Err: ErrRequestFailed}, "x"))
}
