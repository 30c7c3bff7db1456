// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrChequeNotFound indicates that the cheque is not found.
	ErrChequeNotFound = errors.New("Cheque not found")
	// ErrNumberAlreadyExists indicates that another cheque already uses the number.
	ErrNumberAlreadyExists = errors.New("Cheque number already exists.")
	// ErrIDMismatch indicates that the route id and the submitted id differ.
	ErrIDMismatch = errors.New("Invalid request: id mismatch.")
	// ErrChequeGone indicates that the cheque disappeared before the update could read it.
	ErrChequeGone = errors.New("The cheque no longer exists.")
	// ErrChequeDeleted indicates that the cheque was deleted while the update was being saved.
	ErrChequeDeleted = errors.New("The cheque was deleted by another operation.")
	// ErrVersionConflict indicates that the cheque was changed since the editor loaded it.
	ErrVersionConflict = errors.New("The cheque was modified by another operation. Reload it and try again.")
)

// Cheque holds a single payment instrument record.
type Cheque struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	PayeeName    string          `json:"payee_name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	IssueDate    time.Time       `json:"issue_date"`
	DueDate      time.Time       `json:"due_date"`
	Status       ChequeStatus    `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	Version      int32           `json:"version"`
	CreatedAtUTC time.Time       `json:"created_at_utc"`
}

// ChequeParams holds the client editable cheque fields.
type ChequeParams struct {
	Number    string          `json:"number" validate:"required,max=30"`
	PayeeName string          `json:"payee_name" validate:"required,max=120"`
	Amount    decimal.Decimal `json:"amount" validate:"money_range,money_scale"`
	Currency  string          `json:"currency" validate:"required,len=3,currency"`
	IssueDate time.Time       `json:"issue_date"`
	DueDate   time.Time       `json:"due_date"`
	Status    ChequeStatus    `json:"status" validate:"oneof=0 1 2 3 4"`
	Notes     string          `json:"notes" validate:"max=500"`
}

// UpdateChequeParams is the input data to update a cheque.
//
// Version is the one the editor loaded; zero is never a stored version.
//
// CreatedAtUTC is whatever the client sent; the service always replaces it with the stored value.
type UpdateChequeParams struct {
	ID           int64     `json:"id"`
	Version      int32     `json:"version" validate:"required"`
	CreatedAtUTC time.Time `json:"created_at_utc"`
	ChequeParams
}

// ChequeFilter narrows down the cheque list. Zero values impose no constraint.
type ChequeFilter struct {
	Query      string        `json:"q,omitempty"`
	Status     *ChequeStatus `json:"status,omitempty"`
	IssuedFrom time.Time     `json:"from,omitempty"`
	DueTo      time.Time     `json:"to,omitempty"`
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
