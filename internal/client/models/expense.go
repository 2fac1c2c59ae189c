package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNegativeAmount = errors.New("amount must not be negative")

// Expense is one expense record as known to the backend.
type Expense struct {
	ID            string
	Amount        decimal.Decimal
	Description   string
	Date          Date
	Category      Category
	PaymentMethod PaymentMethod
}

type expenseJSON struct {
	ID            string          `json:"_id,omitempty"`
	AltID         string          `json:"id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          Date            `json:"date"`
	Category      Category        `json:"category"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            string        `json:"_id,omitempty"`
		Amount        json.Number   `json:"amount"`
		Description   string        `json:"description"`
		Date          Date          `json:"date"`
		Category      Category      `json:"category"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}{e.ID, json.Number(e.Amount.String()), e.Description, e.Date, e.Category, e.PaymentMethod})
}

// UnmarshalJSON reads "_id", falling back to "id".
func (e *Expense) UnmarshalJSON(b []byte) error {
	var w expenseJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	*e = Expense{
		ID:            id,
		Amount:        w.Amount,
		Description:   w.Description,
		Date:          w.Date,
		Category:      w.Category,
		PaymentMethod: w.PaymentMethod,
	}
	return nil
}

// NewExpense is the body of a create request: an expense without id.
type NewExpense struct {
	Amount        decimal.Decimal
	Description   string
	Date          Date
	Category      Category
	PaymentMethod PaymentMethod
}

func (n NewExpense) MarshalJSON() ([]byte, error) {
	return Expense{
		Amount:        n.Amount,
		Description:   n.Description,
		Date:          n.Date,
		Category:      n.Category,
		PaymentMethod: n.PaymentMethod,
	}.MarshalJSON()
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, ErrNegativeAmount
	}
	return d, nil
}

// ErrMissingField reports a create payload with an empty required field.
var ErrMissingField = errors.New("missing required field")

// Validate checks that every field of a create payload is set. A zero
// amount is a value, not a missing field.
func (n NewExpense) Validate() error {
	switch {
	case strings.TrimSpace(n.Description) == "":
		return fmt.Errorf("%w: description", ErrMissingField)
	case n.Date.IsZero():
		return fmt.Errorf("%w: date", ErrMissingField)
	case n.Category == "":
		return fmt.Errorf("%w: category", ErrMissingField)
	case n.PaymentMethod == "":
		return fmt.Errorf("%w: paymentMethod", ErrMissingField)
	case n.Amount.IsNegative():
		return ErrNegativeAmount
	}
	return nil
}
