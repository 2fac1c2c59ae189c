package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/config"
	"github.com/dmitrijs2005/expensekeeper/internal/client/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/client/nav"
	"github.com/dmitrijs2005/expensekeeper/internal/client/services"
	"github.com/dmitrijs2005/expensekeeper/internal/client/session"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
)

type App struct {
	config *config.Config
	store  session.Store
	client api.Client
	auth   services.AuthService
	router *nav.Router
	log    logging.Logger

	// home is the controller of the home view while it is shown.
	home *expenses.Controller
	view nav.Route

	reader *bufio.Reader
	out    io.Writer
	closer io.Closer
}

// Deps are the collaborators of an App.
type Deps struct {
	Config *config.Config
	Store  session.Store
	Client api.Client
	Log    logging.Logger
	In     io.Reader
	Out    io.Writer
}

// NewApp opens the session store and the backend client described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	var (
		store  session.Store
		closer io.Closer
	)
	if c.Ephemeral {
		store = session.NewMemoryStore()
	} else {
		s, err := session.Open(ctx, c.SessionDBPath)
		if err != nil {
			log.Error(ctx, "error initializing session store", "path", c.SessionDBPath, "error", err)
			return nil, err
		}
		store, closer = s, s
	}

	client, err := api.NewHTTPClient(c.APIBaseURL, store,
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(log.With("component", "api")),
	)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	a := newApp(Deps{
		Config: c,
		Store:  store,
		Client: client,
		Log:    log,
		In:     os.Stdin,
		Out:    os.Stdout,
	})
	a.closer = closer
	return a, nil
}

func newApp(d Deps) *App {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Config == nil {
		d.Config = &config.Config{}
		d.Config.LoadDefaults()
	}

	router := nav.NewRouter(nav.RouteLogin, nav.RouteLogin)
	router.Protect(nav.RouteHome, nav.RequireSession(d.Store))

	return &App{
		config: d.Config,
		store:  d.Store,
		client: d.Client,
		auth:   services.NewAuthService(d.Client, d.Store, d.Log.With("component", "auth")),
		router: router,
		log:    d.Log,
		view:   nav.RouteLogin,
		reader: bufio.NewReader(d.In),
		out:    d.Out,
	}
}

// Run shows the start view and blocks in the REPL until the user exits or
// input ends. A stored session starts on the home view.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Expense Tracker CLI (type 'help' for commands)")
	if session.Present(ctx, a.store) {
		a.show(ctx, a.router.Navigate(ctx, nav.RouteHome))
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	if a.home != nil {
		a.home.Close()
		a.home = nil
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *App) route() nav.Route {
	return a.view
}

func (a *App) getStatus() string {
	switch a.view {
	case nav.RouteHome:
		email, _ := a.store.Email(context.Background())
		if email != "" {
			return "home " + email
		}
		return "home"
	case nav.RouteSignUp:
		return "signup"
	default:
		return "login"
	}
}

// show makes r the current view. Entering home mounts a fresh controller
// and lists the expenses; leaving it detaches the controller.
func (a *App) show(ctx context.Context, r nav.Route) {
	prev := a.view
	a.view = r

	if prev == nav.RouteHome && r != nav.RouteHome && a.home != nil {
		a.home.Close()
		a.home = nil
	}
	if r != nav.RouteHome || a.home != nil {
		return
	}

	a.home = expenses.NewController(a.client, a.confirmer(),
		expenses.WithLogger(a.log.With("component", "expenses")),
		expenses.WithBulkLimit(a.config.BulkDeleteConcurrency),
	)
	if err := a.home.Mount(ctx); err != nil {
		a.fail(ctx, err, a.home.Message())
		return
	}
	a.printList()
}

func (a *App) navigate(ctx context.Context, to nav.Route) {
	a.show(ctx, a.router.Navigate(ctx, to))
}

// GoLogin shows the login view.
func (a *App) GoLogin(ctx context.Context) error {
	a.navigate(ctx, nav.RouteLogin)
	return nil
}

func (a *App) GoSignUp(ctx context.Context) error {
	a.navigate(ctx, nav.RouteSignUp)
	return nil
}

// GoHome navigates to the home view through the access guard.
func (a *App) GoHome(ctx context.Context) error {
	wasHome := a.view == nav.RouteHome
	a.navigate(ctx, nav.RouteHome)
	switch {
	case a.view != nav.RouteHome:
		printFailure(a.out, "Please log in first.")
	case wasHome:
		a.printList()
	}
	return nil
}

func (a *App) Back(ctx context.Context) error {
	r, ok := a.router.Back(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Nothing to go back to.")
		return nil
	}
	a.show(ctx, r)
	return nil
}

// fail reports err to the user. An authorization failure ends the session
// and returns to the login view.
func (a *App) fail(ctx context.Context, err error, msg string) {
	if msg == "" {
		msg = err.Error()
	}
	printFailure(a.out, msg)
	a.log.Debug(ctx, "command failed", "error", err)

	if errors.Is(err, api.ErrUnauthorized) {
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			a.log.Error(ctx, "clear session failed", "error", clearErr)
		}
		printFailure(a.out, "Your session has expired. Please log in again.")
		a.show(ctx, a.router.Replace(ctx, nav.RouteLogin))
	}
}
