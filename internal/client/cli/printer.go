package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/expensekeeper/internal/client/expenses"
	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
)

func printSuccess(w io.Writer, msg string) {
	if msg != "" {
		green.Fprintln(w, msg)
	}
}

func printFailure(w io.Writer, msg string) {
	if msg != "" {
		red.Fprintln(w, msg)
	}
}

// printExpenses renders the home view: one row per expense, selected rows
// marked with '*', followed by the total.
func printExpenses(w io.Writer, v expenses.View) {
	if len(v.Expenses) == 0 {
		yellow.Fprintln(w, "No expenses yet. Use 'add' to create one.")
		fmt.Fprintf(w, "Total: %s\n", expenses.FormatTotal(v.Total))
		return
	}

	selected := make(map[string]bool, len(v.Selected))
	for _, id := range v.Selected {
		selected[id] = true
	}

	cyan.Fprintf(w, "Expenses (%d)\n", len(v.Expenses))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tDATE\tDESCRIPTION\tCATEGORY\tMETHOD\tAMOUNT")
	for _, e := range v.Expenses {
		mark := " "
		if selected[e.ID] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, e.ID, e.Date, e.Description, e.Category, e.PaymentMethod, e.Amount.StringFixed(2))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "Total: %s\n", expenses.FormatTotal(v.Total))
}

func printExpense(w io.Writer, e models.Expense) {
	fmt.Fprintf(w, "  %s  %s  %s  %s  %s  %s\n",
		e.ID, e.Date, e.Description, e.Category, e.PaymentMethod, e.Amount.StringFixed(2))
}
