package expenses

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensekeeper/internal/client/models"
)

var (
	ErrAllFieldsRequired = errors.New("all fields are required")
	ErrInvalidField      = errors.New("invalid field")
)

// Draft is the add-expense form as typed by the user.
type Draft struct {
	Amount        string
	Description   string
	Date          string
	Category      string
	PaymentMethod string
}

// Complete reports whether every field is non-blank.
func (d Draft) Complete() bool {
	for _, v := range []string{d.Amount, d.Description, d.Date, d.Category, d.PaymentMethod} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Parse checks presence first, then converts the fields.
func (d Draft) Parse() (models.NewExpense, error) {
	if !d.Complete() {
		return models.NewExpense{}, ErrAllFieldsRequired
	}

	amount, err := models.ParseAmount(d.Amount)
	if err != nil {
		return models.NewExpense{}, fmt.Errorf("%w: amount: %v", ErrInvalidField, err)
	}
	date, err := models.ParseDate(d.Date)
	if err != nil {
		return models.NewExpense{}, fmt.Errorf("%w: date: %v", ErrInvalidField, err)
	}
	category, err := models.ParseCategory(d.Category)
	if err != nil {
		return models.NewExpense{}, fmt.Errorf("%w: category: %v", ErrInvalidField, err)
	}
	method, err := models.ParsePaymentMethod(d.PaymentMethod)
	if err != nil {
		return models.NewExpense{}, fmt.Errorf("%w: payment method: %v", ErrInvalidField, err)
	}

	return models.NewExpense{
		Amount:        amount,
		Description:   strings.TrimSpace(d.Description),
		Date:          date,
		Category:      category,
		PaymentMethod: method,
	}, nil
}
