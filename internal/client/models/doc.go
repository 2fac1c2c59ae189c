// Package models defines the expense records exchanged with the backend and
// the value types they are built from.
//
// Wire format notes: the backend identifies records by "_id", sends amounts as
// JSON numbers and dates as RFC 3339 timestamps. Amounts are kept as
// decimal.Decimal so totals do not accumulate float error; dates are civil
// dates and are sent back as YYYY-MM-DD.
package models
