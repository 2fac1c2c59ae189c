package expenses

import (
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

// Event is a confirmed change of server state to mirror locally.
type Event interface {
	event()
}

// Fetched replaces the collection with a full listing.
type Fetched struct{ Expenses []models.Expense }

// Created adds the server-returned record.
type Created struct{ Expense models.Expense }

// Updated merges the fields set in Patch into record ID.
type Updated struct {
	ID    string
	Patch models.Patch
}

// Deleted drops record ID.
type Deleted struct{ ID string }

// BulkDeleted drops every record in IDs.
type BulkDeleted struct{ IDs []string }

func (Fetched) event()     {}
func (Created) event()     {}
func (Updated) event()     {}
func (Deleted) event()     {}
func (BulkDeleted) event() {}

// Reduce returns the collection after ev. It never modifies list; ids stay
// unique (a repeated id keeps its first position).
func Reduce(list []models.Expense, ev Event) []models.Expense {
	switch ev := ev.(type) {
	case Fetched:
		out := make([]models.Expense, 0, len(ev.Expenses))
		seen := make(map[string]struct{}, len(ev.Expenses))
		for _, e := range ev.Expenses {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
		return out

	case Created:
		out := make([]models.Expense, 0, len(list)+1)
		replaced := false
		for _, e := range list {
			if e.ID == ev.Expense.ID {
				e = ev.Expense
				replaced = true
			}
			out = append(out, e)
		}
		if !replaced {
			out = append(out, ev.Expense)
		}
		return out

	case Updated:
		out := make([]models.Expense, len(list))
		for i, e := range list {
			if e.ID == ev.ID {
				e = ev.Patch.Apply(e)
			}
			out[i] = e
		}
		return out

	case Deleted:
		return without(list, map[string]struct{}{ev.ID: {}})

	case BulkDeleted:
		drop := make(map[string]struct{}, len(ev.IDs))
		for _, id := range ev.IDs {
			drop[id] = struct{}{}
		}
		return without(list, drop)
	}
	return append([]models.Expense(nil), list...)
}

func without(list []models.Expense, drop map[string]struct{}) []models.Expense {
	out := make([]models.Expense, 0, len(list))
	for _, e := range list {
		if _, gone := drop[e.ID]; !gone {
			out = append(out, e)
		}
	}
	return out
}

// Total sums the amounts of list.
func Total(list []models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range list {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// FormatTotal renders a total with two decimals.
func FormatTotal(d decimal.Decimal) string {
	return d.StringFixed(2)
}
