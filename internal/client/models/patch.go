package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Patch is a partial update. Nil fields are neither sent nor merged.
type Patch struct {
	Amount        *decimal.Decimal
	Description   *string
	Date          *Date
	Category      *Category
	PaymentMethod *PaymentMethod
}

func (p Patch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && p.Date == nil &&
		p.Category == nil && p.PaymentMethod == nil
}

// Fields returns the wire names of the set fields.
func (p Patch) Fields() []string {
	var fields []string
	if p.Amount != nil {
		fields = append(fields, "amount")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Date != nil {
		fields = append(fields, "date")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.PaymentMethod != nil {
		fields = append(fields, "paymentMethod")
	}
	return fields
}

// Apply returns e with the set fields of p merged in.
func (p Patch) Apply(e Expense) Expense {
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.PaymentMethod != nil {
		e.PaymentMethod = *p.PaymentMethod
	}
	return e
}

func (p Patch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 5)
	if p.Amount != nil {
		m["amount"] = json.Number(p.Amount.String())
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Date != nil {
		m["date"] = *p.Date
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.PaymentMethod != nil {
		m["paymentMethod"] = *p.PaymentMethod
	}
	return json.Marshal(m)
}

// UnmarshalJSON is used by test backends to decode PATCH bodies.
func (p *Patch) UnmarshalJSON(b []byte) error {
	var w struct {
		Amount        *decimal.Decimal `json:"amount"`
		Description   *string          `json:"description"`
		Date          *Date            `json:"date"`
		Category      *Category        `json:"category"`
		PaymentMethod *PaymentMethod   `json:"paymentMethod"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Patch{
		Amount:        w.Amount,
		Description:   w.Description,
		Date:          w.Date,
		Category:      w.Category,
		PaymentMethod: w.PaymentMethod,
	}
	return nil
}

func AmountPatch(d decimal.Decimal) Patch { return Patch{Amount: &d} }

func CategoryPatch(c Category) Patch { return Patch{Category: &c} }

func PaymentMethodPatch(m PaymentMethod) Patch { return Patch{PaymentMethod: &m} }
