package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

type Category string

const (
	CategoryGroceries      Category = "groceries"
	CategoryRent           Category = "rent"
	CategoryUtilities      Category = "utilities"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryOther          Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryGroceries,
	CategoryRent,
	CategoryUtilities,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentOnline}

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentOnline
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
	return p, nil
}
