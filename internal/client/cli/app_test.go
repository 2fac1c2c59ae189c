package cli

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/api/apitest"
	"github.com/dmitrijs2005/expensekeeper/internal/client/config"
	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
	"github.com/dmitrijs2005/expensekeeper/internal/client/nav"
	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
)

const email = "ann@example.com"

// ------------ helpers ------------

type harness struct {
	t       *testing.T
	backend *apitest.Backend
	store   *session.MemoryStore
	out     bytes.Buffer
	app     *App
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	capturePrintln(t)
	stubTerminal(t, false, nil)

	h := &harness{t: t, backend: apitest.NewBackend(t), store: session.NewMemoryStore()}
	h.backend.AddUser("Ann", email, "pw", "user")
	if loggedIn {
		require.NoError(t, session.Save(context.Background(), h.store, h.backend.IssueToken(email), email))
	}
	return h
}

func (h *harness) seed(amounts ...int64) []models.Expense {
	list := make([]models.Expense, len(amounts))
	for i, a := range amounts {
		list[i] = models.Expense{
			Amount:        decimal.NewFromInt(a),
			Description:   "item",
			Date:          models.NewDate(2024, time.February, 1),
			Category:      models.CategoryGroceries,
			PaymentMethod: models.PaymentCash,
		}
	}
	return h.backend.Seed(email, list...)
}

// run feeds lines to a fresh App and blocks until the REPL returns.
func (h *harness) run(lines ...string) *App {
	h.t.Helper()
	client, err := api.NewHTTPClient(h.backend.URL(), h.store)
	require.NoError(h.t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BulkDeleteConcurrency = 2

	h.app = newApp(Deps{
		Config: cfg,
		Store:  h.store,
		Client: client,
		In:     strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:    &h.out,
	})
	h.app.Run(context.Background())
	return h.app
}

func (h *harness) loggedIn() bool {
	return session.Present(context.Background(), h.store)
}

// ------------ tests ------------

func TestApp_LoginShowsHome(t *testing.T) {
	h := newHarness(t, false)
	h.seed(10, 20)

	app := h.run("login", email, "pw", "user", "total", "exit")

	assert.True(t, h.loggedIn())
	stored, err := h.store.Email(context.Background())
	require.NoError(t, err)
	assert.Equal(t, email, stored)

	assert.Equal(t, nav.RouteHome, app.route())
	assert.Contains(t, h.out.String(), "Login successful")
	assert.Contains(t, h.out.String(), "Total: 30.00")
	assert.Equal(t, 1, h.backend.Count(http.MethodGet, "/expense"))
}

func TestApp_LoginFailureStaysOnLogin(t *testing.T) {
	h := newHarness(t, false)

	app := h.run("login", email, "wrong", "user", "exit")

	assert.False(t, h.loggedIn())
	assert.Equal(t, nav.RouteLogin, app.route())
	assert.Contains(t, h.out.String(), "Invalid credentials")
	assert.Zero(t, h.backend.Count(http.MethodGet, "/expense"))
}

func TestApp_RegisterThenLogin(t *testing.T) {
	h := newHarness(t, false)

	app := h.run(
		"signup",
		"register", "Bob", "bob@example.com", "pw2", "admin",
		"login",
		"login", "bob@example.com", "pw2", "admin",
		"exit",
	)

	assert.Contains(t, h.out.String(), "User registered successfully")
	assert.Equal(t, nav.RouteHome, app.route())
	assert.True(t, h.loggedIn())
}

func TestApp_HomeWithoutSessionRedirects(t *testing.T) {
	h := newHarness(t, false)

	app := h.run("home", "exit")

	assert.Equal(t, nav.RouteLogin, app.route())
	assert.Contains(t, h.out.String(), "Please log in first.")
	assert.Zero(t, h.backend.Count(http.MethodGet, "/expense"))
}

func TestApp_StoredSessionStartsOnHome(t *testing.T) {
	h := newHarness(t, true)
	h.seed(5)

	app := h.run("exit")

	assert.Equal(t, nav.RouteHome, app.route())
	assert.Contains(t, h.out.String(), "Total: 5.00")
}

func TestApp_LogoutThenHomeRedirects(t *testing.T) {
	h := newHarness(t, true)

	app := h.run("logout", "home", "exit")

	assert.False(t, h.loggedIn())
	assert.Equal(t, nav.RouteLogin, app.route())
	assert.Contains(t, h.out.String(), "Logged out.")
	assert.Contains(t, h.out.String(), "Please log in first.")

	r, _ := app.router.Back(context.Background())
	assert.NotEqual(t, nav.RouteHome, r)
}

func TestApp_AddCoffee(t *testing.T) {
	h := newHarness(t, true)
	h.seed(10)

	h.run("add", "50", "coffee", "2024-01-01", "other", "cash", "exit")

	list := h.backend.Expenses(email)
	require.Len(t, list, 2)
	assert.Equal(t, "coffee", list[1].Description)
	assert.Contains(t, h.out.String(), "Expense added.")
	assert.Contains(t, h.out.String(), "Total: 60.00")
}

func TestApp_AddMissingFieldKeepsDraft(t *testing.T) {
	h := newHarness(t, true)

	h.run(
		"add", "50", "", "2024-01-01", "other", "cash",
		// second attempt: Enter keeps the previous answers
		"add", "", "coffee", "", "", "",
		"exit",
	)

	assert.Contains(t, h.out.String(), "All fields are required!")
	assert.Equal(t, 1, h.backend.Count(http.MethodPost, "/expense"))
	list := h.backend.Expenses(email)
	require.Len(t, list, 1)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, models.CategoryOther, list[0].Category)
}

func TestApp_EditFields(t *testing.T) {
	h := newHarness(t, true)
	seeded := h.seed(10)
	id := seeded[0].ID

	h.run(
		"amount "+id+" 12.50",
		"category "+id+" rent",
		"method "+id+" online",
		"amount "+id+" lots",
		"amount missing 1",
		"exit",
	)

	got := h.backend.Expenses(email)[0]
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, models.CategoryRent, got.Category)
	assert.Equal(t, models.PaymentOnline, got.PaymentMethod)
	assert.Equal(t, 3, h.backend.Count(http.MethodPatch, "/expense/"))
	assert.Contains(t, h.out.String(), "No expense with id missing")
}

func TestApp_DeleteAsksFirst(t *testing.T) {
	h := newHarness(t, true)
	seeded := h.seed(10, 20)

	h.run(
		"delete "+seeded[0].ID, "n",
		"delete "+seeded[1].ID, "y",
		"exit",
	)

	list := h.backend.Expenses(email)
	require.Len(t, list, 1)
	assert.Equal(t, seeded[0].ID, list[0].ID)
	assert.Equal(t, 1, h.backend.Count(http.MethodDelete, "/expense/"))
	assert.Contains(t, h.out.String(), "Total: 10.00")
}

func TestApp_BulkDeleteTwoOfThree(t *testing.T) {
	h := newHarness(t, true)
	seeded := h.seed(10, 20, 30)

	app := h.run(
		"select "+seeded[0].ID+" "+seeded[2].ID,
		"selected",
		"delete-selected", "y",
		"exit",
	)

	list := h.backend.Expenses(email)
	require.Len(t, list, 1)
	assert.Equal(t, seeded[1].ID, list[0].ID)
	assert.Contains(t, h.out.String(), "Deleted 2 expense(s).")
	assert.Nil(t, app.home, "controller is released when the app closes")
}

func TestApp_ExpiredSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t, true)
	h.seed(10)

	// the token is revoked after the home view has loaded
	client, err := api.NewHTTPClient(h.backend.URL(), h.store)
	require.NoError(t, err)
	h.app = newApp(Deps{
		Store:  h.store,
		Client: client,
		In:     strings.NewReader("refresh\nexit\n"),
		Out:    &h.out,
	})
	ctx := context.Background()
	h.app.show(ctx, h.app.router.Navigate(ctx, nav.RouteHome))
	require.Equal(t, nav.RouteHome, h.app.route())

	h.backend.RevokeTokens()
	runREPL(ctx, h.app, h.app.getStatus, h.app.reader)

	assert.False(t, h.loggedIn())
	assert.Equal(t, nav.RouteLogin, h.app.route())
	assert.Contains(t, h.out.String(), "Your session has expired")
	assert.Nil(t, h.app.home)
}

// heldUpdates delays every update until release is closed.
type heldUpdates struct {
	api.Client
	arrived chan struct{}
	release chan struct{}
}

func (h *heldUpdates) UpdateExpense(ctx context.Context, id string, p models.Patch) error {
	h.arrived <- struct{}{}
	<-h.release
	return h.Client.UpdateExpense(ctx, id, p)
}

func TestApp_EditRefusedWhileRowUpdating(t *testing.T) {
	h := newHarness(t, true)
	id := h.seed(10)[0].ID

	inner, err := api.NewHTTPClient(h.backend.URL(), h.store)
	require.NoError(t, err)
	held := &heldUpdates{Client: inner, arrived: make(chan struct{}, 1), release: make(chan struct{})}

	ctx := context.Background()
	app := newApp(Deps{Store: h.store, Client: held, In: strings.NewReader(""), Out: &h.out})
	app.show(ctx, app.router.Navigate(ctx, nav.RouteHome))
	require.NotNil(t, app.home)
	defer app.Close()

	done := make(chan error, 1)
	go func() { done <- app.home.Update(ctx, id, models.AmountPatch(decimal.NewFromInt(11))) }()
	select {
	case <-held.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("update did not start")
	}

	assert.ErrorIs(t, app.Edit(ctx, "amount", []string{id, "12"}), errBusy)
	assert.ErrorIs(t, app.Delete(ctx, []string{id}), errBusy)
	assert.Contains(t, h.out.String(), "Expense "+id+" is still being updated.")

	close(held.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.backend.Count(http.MethodPatch, "/expense/"))
	assert.Zero(t, h.backend.Count(http.MethodDelete, "/expense/"))
	assert.True(t, h.backend.Expenses(email)[0].Amount.Equal(decimal.NewFromInt(11)))
}

func TestApp_WhoamiShowsSession(t *testing.T) {
	h := newHarness(t, true)

	h.run("whoami", "exit")

	out := h.out.String()
	assert.Contains(t, out, "Email:    "+email)
	assert.Contains(t, out, "Role:     user")
}
