package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/client/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

var (
	errNotHome = errors.New("not on the home view")
	errBusy    = errors.New("expense update in flight")
)

func msgBusy(id string) string {
	return "Expense " + id + " is still being updated."
}

func (a *App) homeView() (*expenses.Controller, error) {
	if a.home == nil {
		printFailure(a.out, "Please log in first.")
		return nil, errNotHome
	}
	return a.home, nil
}

func (a *App) printList() {
	if a.home == nil {
		return
	}
	printExpenses(a.out, a.home.Snapshot())
}

func (a *App) List(ctx context.Context) error {
	if _, err := a.homeView(); err != nil {
		return err
	}
	a.printList()
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	if err := home.Refresh(ctx); err != nil {
		a.fail(ctx, err, home.Message())
		return err
	}
	a.printList()
	return nil
}

func (a *App) Total(ctx context.Context) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total: %s\n", home.TotalString())
	return nil
}

// Add prompts for the five fields of a new expense. After a failed attempt
// the previous answers are offered again; pressing Enter keeps them.
func (a *App) Add(ctx context.Context) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	prev := home.Draft()

	var d expenses.Draft
	fields := []struct {
		prompt string
		keep   string
		dst    *string
	}{
		{"Amount", prev.Amount, &d.Amount},
		{"Description", prev.Description, &d.Description},
		{"Date (YYYY-MM-DD)", prev.Date, &d.Date},
		{"Category (" + joinCategories() + ")", prev.Category, &d.Category},
		{"Payment method (cash/online)", prev.PaymentMethod, &d.PaymentMethod},
	}
	for _, f := range fields {
		prompt := f.prompt
		if f.keep != "" {
			prompt += " [" + f.keep + "]"
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if v == "" {
			v = f.keep
		}
		*f.dst = v
	}

	created, err := home.Add(ctx, d)
	if err != nil {
		a.fail(ctx, err, home.Message())
		return err
	}
	printSuccess(a.out, "Expense added.")
	printExpense(a.out, created)
	fmt.Fprintf(a.out, "Total: %s\n", home.TotalString())
	return nil
}

func joinCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "/")
}

// Edit updates one field of a row: "amount <id> <value>",
// "category <id> <value>" or "method <id> <value>".
func (a *App) Edit(ctx context.Context, field string, args []string) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		fmt.Fprintf(a.out, "Usage: %s <id> <value>\n", field)
		return nil
	}
	id, value := args[0], strings.Join(args[1:], " ")
	if home.Pending(id) {
		printFailure(a.out, msgBusy(id))
		return errBusy
	}

	var p models.Patch
	switch field {
	case "amount":
		amount, perr := models.ParseAmount(value)
		if perr != nil {
			printFailure(a.out, perr.Error())
			return perr
		}
		p = models.AmountPatch(amount)
	case "category":
		c, perr := models.ParseCategory(value)
		if perr != nil {
			printFailure(a.out, perr.Error())
			return perr
		}
		p = models.CategoryPatch(c)
	case "method":
		m, perr := models.ParsePaymentMethod(value)
		if perr != nil {
			printFailure(a.out, perr.Error())
			return perr
		}
		p = models.PaymentMethodPatch(m)
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	if err := home.Update(ctx, id, p); err != nil {
		if errors.Is(err, expenses.ErrNotFound) {
			printFailure(a.out, "No expense with id "+id)
			return err
		}
		a.fail(ctx, err, home.Message())
		return err
	}
	printSuccess(a.out, "Expense updated.")
	fmt.Fprintf(a.out, "Total: %s\n", home.TotalString())
	return nil
}

func (a *App) Select(ctx context.Context, args []string) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: select <id> [<id>...]")
		return nil
	}
	for _, id := range args {
		on, err := home.ToggleSelect(id)
		if err != nil {
			printFailure(a.out, "No expense with id "+id)
			continue
		}
		if on {
			fmt.Fprintln(a.out, "Selected", id)
		} else {
			fmt.Fprintln(a.out, "Unselected", id)
		}
	}
	return nil
}

func (a *App) Selected(ctx context.Context) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	ids := home.Selected()
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No expenses selected.")
		return nil
	}
	fmt.Fprintf(a.out, "Selected (%d): %s\n", len(ids), strings.Join(ids, ", "))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: delete <id>")
		return nil
	}
	if home.Pending(args[0]) {
		printFailure(a.out, msgBusy(args[0]))
		return errBusy
	}

	deleted, err := home.Delete(ctx, args[0])
	if err != nil {
		if errors.Is(err, expenses.ErrNotFound) {
			printFailure(a.out, "No expense with id "+args[0])
			return err
		}
		a.fail(ctx, err, home.Message())
		return err
	}
	if deleted {
		printSuccess(a.out, "Expense deleted.")
		fmt.Fprintf(a.out, "Total: %s\n", home.TotalString())
	}
	return nil
}

func (a *App) DeleteSelected(ctx context.Context) error {
	home, err := a.homeView()
	if err != nil {
		return err
	}
	if len(home.Selected()) == 0 {
		fmt.Fprintln(a.out, "No expenses selected.")
		return nil
	}

	deleted, err := home.BulkDelete(ctx)
	if len(deleted) > 0 {
		printSuccess(a.out, fmt.Sprintf("Deleted %d expense(s).", len(deleted)))
	}
	if err != nil {
		a.fail(ctx, err, home.Message())
		return err
	}
	if len(deleted) > 0 {
		fmt.Fprintf(a.out, "Total: %s\n", home.TotalString())
	}
	return nil
}
