// Package expenses holds the state behind the home view: the list of the
// user's expenses, their total, the add form, the row selection and the
// edit/delete operations on it.
//
// The local collection only ever changes to mirror a change the backend has
// confirmed. All transitions go through Reduce.
package expenses

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/expensekeeper/internal/client/api"
	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
	"github.com/dmitrijs2005/expensekeeper/internal/logging"
)

// User-facing messages.
const (
	MsgFetchFailed       = "Failed to fetch expenses."
	MsgAllFieldsRequired = "All fields are required!"
	MsgAddFailed         = "Failed to add expense."
	MsgUpdateFailed      = "Failed to update expense."
	MsgDeleteFailed      = "Failed to delete expense."
	MsgBulkDeleteFailed  = "Failed to delete selected expenses."

	PromptDelete     = "Are you sure you want to delete this expense?"
	PromptBulkDelete = "Are you sure you want to delete selected expenses?"
)

var (
	ErrClosed   = errors.New("controller closed")
	ErrNotFound = errors.New("expense not found")
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// View is a copy of the controller state for rendering.
type View struct {
	State    State
	Expenses []models.Expense
	Selected []string
	Total    decimal.Decimal
	Message  string
	Draft    Draft
}

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithBulkLimit caps concurrent deletes issued by BulkDelete.
func WithBulkLimit(n int) Option {
	return func(c *Controller) { c.bulkLimit = n }
}

type Controller struct {
	client    api.Client
	confirm   ConfirmFunc
	log       logging.Logger
	bulkLimit int

	mu       sync.Mutex
	state    State
	expenses []models.Expense
	selected map[string]struct{}
	message  string
	draft    Draft
	closed   bool

	// fetchGen discards list responses overtaken by a newer refresh.
	fetchGen uint64
	// seq numbers row updates. inflight counts the unresolved updates of a
	// row; merged holds, per row and field, the seq of the newest update
	// whose confirmation has been merged. Both are dropped together once a
	// row has nothing in flight.
	seq      uint64
	inflight map[string]int
	merged   map[string]map[string]uint64
}

func NewController(client api.Client, confirm ConfirmFunc, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		confirm:   confirm,
		log:       logging.Discard(),
		bulkLimit: api.DefaultDeleteConcurrency,
		selected:  make(map[string]struct{}),
		inflight:  make(map[string]int),
		merged:    make(map[string]map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount loads the collection for the first time.
func (c *Controller) Mount(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh replaces the collection with the backend listing. On failure the
// collection is left as it was.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateLoading
	c.fetchGen++
	gen := c.fetchGen
	c.mu.Unlock()

	list, err := c.client.ListExpenses(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.fetchGen {
		c.log.Debug(ctx, "discarding stale expense listing")
		return nil
	}
	if err != nil {
		c.state = StateError
		c.message = MsgFetchFailed
		c.log.Warn(ctx, "fetch expenses failed", "error", err)
		return fmt.Errorf("fetch expenses: %w", err)
	}

	c.applyLocked(Fetched{Expenses: list})
	c.state = StateReady
	c.message = ""
	c.log.Debug(ctx, "expenses fetched", "count", len(c.expenses))
	return nil
}

// Add validates d and creates the expense. The draft is kept unless the
// backend confirms the create.
func (c *Controller) Add(ctx context.Context, d Draft) (models.Expense, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Expense{}, ErrClosed
	}
	c.draft = d
	c.mu.Unlock()

	n, err := d.Parse()
	if err != nil {
		c.mu.Lock()
		if errors.Is(err, ErrAllFieldsRequired) {
			c.message = MsgAllFieldsRequired
		} else {
			c.message = err.Error()
		}
		c.mu.Unlock()
		return models.Expense{}, err
	}

	created, err := c.client.CreateExpense(ctx, n)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return models.Expense{}, ErrClosed
	}
	if err != nil {
		c.message = MsgAddFailed
		c.log.Warn(ctx, "create expense failed", "error", err)
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	c.applyLocked(Created{Expense: created})
	c.draft = Draft{}
	c.message = ""
	return created, nil
}

// Update sends p for row id and merges the fields the backend confirmed.
// Responses may arrive in any order: a confirmation only lands on fields no
// later update has already been merged into, and a failure leaves whatever
// an earlier confirmed update of the same field put there.
func (c *Controller) Update(ctx context.Context, id string, p models.Patch) error {
	if p.IsEmpty() {
		return api.ErrEmptyPatch
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.indexLocked(id) < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.seq++
	seq := c.seq
	c.inflight[id]++
	c.mu.Unlock()

	err := c.client.UpdateExpense(ctx, id, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.settleLocked(id)

	if c.closed {
		return nil
	}
	fields := p.Fields()
	fresh := c.freshLocked(id, fields, seq)
	if err != nil {
		c.log.Warn(ctx, "update expense failed", "id", id, "error", err)
		if len(fresh) > 0 {
			c.message = MsgUpdateFailed
		}
		return fmt.Errorf("update expense %s: %w", id, err)
	}
	if len(fresh) < len(fields) {
		c.log.Debug(ctx, "update superseded", "id", id, "seq", seq)
	}

	row := c.merged[id]
	if row == nil {
		row = make(map[string]uint64)
		c.merged[id] = row
	}
	for f := range fresh {
		row[f] = seq
	}
	c.applyLocked(Updated{ID: id, Patch: restrict(p, fresh)})
	return nil
}

// Pending reports whether an update of row id is in flight.
func (c *Controller) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[id] > 0
}

// freshLocked returns the fields of seq that no later update has been merged
// into.
func (c *Controller) freshLocked(id string, fields []string, seq uint64) map[string]bool {
	fresh := make(map[string]bool, len(fields))
	row := c.merged[id]
	for _, f := range fields {
		if row[f] < seq {
			fresh[f] = true
		}
	}
	return fresh
}

func (c *Controller) settleLocked(id string) {
	c.inflight[id]--
	if c.inflight[id] <= 0 {
		delete(c.inflight, id)
		delete(c.merged, id)
	}
}

func restrict(p models.Patch, owned map[string]bool) models.Patch {
	var out models.Patch
	if owned["amount"] {
		out.Amount = p.Amount
	}
	if owned["description"] {
		out.Description = p.Description
	}
	if owned["date"] {
		out.Date = p.Date
	}
	if owned["category"] {
		out.Category = p.Category
	}
	if owned["paymentMethod"] {
		out.PaymentMethod = p.PaymentMethod
	}
	return out
}

// Delete asks for confirmation and removes row id once the backend confirms.
// It reports whether the row was deleted.
func (c *Controller) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.indexLocked(id) < 0 {
		c.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.mu.Unlock()

	ok, err := c.confirm(ctx, PromptDelete)
	if err != nil || !ok {
		return false, err
	}

	err = c.client.DeleteExpense(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, nil
	}
	if err != nil {
		c.message = MsgDeleteFailed
		c.log.Warn(ctx, "delete expense failed", "id", id, "error", err)
		return false, fmt.Errorf("delete expense %s: %w", id, err)
	}
	c.applyLocked(Deleted{ID: id})
	return true, nil
}

// BulkDelete deletes every selected row after one confirmation and returns
// the deleted ids. Confirmed rows leave the collection and the selection.
// The selection is empty afterwards only if every delete succeeded: on a
// partial failure the rows that failed stay selected, so calling BulkDelete
// again retries exactly those.
func (c *Controller) BulkDelete(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	ids := c.selectionLocked()
	c.mu.Unlock()

	if len(ids) == 0 {
		return nil, nil
	}

	ok, err := c.confirm(ctx, PromptBulkDelete)
	if err != nil || !ok {
		return nil, err
	}

	deleted, err := api.DeleteMany(ctx, c.client, ids, c.bulkLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil
	}
	c.applyLocked(BulkDeleted{IDs: deleted})
	if err != nil {
		c.message = MsgBulkDeleteFailed
		c.log.Warn(ctx, "bulk delete partially failed",
			"requested", len(ids), "deleted", len(deleted), "error", err)
		return deleted, fmt.Errorf("delete selected: %w", err)
	}
	c.log.Info(ctx, "deleted selected expenses", "count", len(deleted))
	return deleted, nil
}

// ToggleSelect flips the selection of row id and returns whether it is now
// selected.
func (c *Controller) ToggleSelect(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(id) < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false, nil
	}
	c.selected[id] = struct{}{}
	return true, nil
}

// Selected returns the selected ids in collection order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectionLocked()
}

func (c *Controller) selectionLocked() []string {
	ids := make([]string, 0, len(c.selected))
	for _, e := range c.expenses {
		if _, ok := c.selected[e.ID]; ok {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (c *Controller) Expenses() []models.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Expense(nil), c.expenses...)
}

func (c *Controller) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.expenses)
}

// TotalString is Total with two decimals.
func (c *Controller) TotalString() string {
	return FormatTotal(c.Total())
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Message returns the last user-facing message, or "".
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Draft returns the add form as last submitted.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:    c.state,
		Expenses: append([]models.Expense(nil), c.expenses...),
		Selected: c.selectionLocked(),
		Total:    Total(c.expenses),
		Message:  c.message,
		Draft:    c.draft,
	}
}

// Close detaches the controller from the view. Responses arriving later are
// dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) applyLocked(ev Event) {
	c.expenses = Reduce(c.expenses, ev)

	present := make(map[string]struct{}, len(c.expenses))
	for _, e := range c.expenses {
		present[e.ID] = struct{}{}
	}
	for id := range c.selected {
		if _, ok := present[id]; !ok {
			delete(c.selected, id)
		}
	}
}

func (c *Controller) indexLocked(id string) int {
	for i, e := range c.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
