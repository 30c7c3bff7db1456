package domain

import (
	"fmt"
	"strconv"
)

// ChequeStatus is the lifecycle state of a cheque. Any status may follow any other.
type ChequeStatus int

// Cheque statuses.
const (
	StatusDraft ChequeStatus = iota
	StatusIssued
	StatusCleared
	StatusBounced
	StatusVoided
)

var statusNames = [...]string{"Draft", "Issued", "Cleared", "Bounced", "Voided"}

// ChequeStatuses lists all statuses in display order.
var ChequeStatuses = []ChequeStatus{StatusDraft, StatusIssued, StatusCleared, StatusBounced, StatusVoided}

// String returns the display name of the status.
func (s ChequeStatus) String() string {
	if !s.Valid() {
		return "ChequeStatus(" + strconv.Itoa(int(s)) + ")"
	}

	return statusNames[s]
}

// Valid reports whether s is one of the known statuses.
func (s ChequeStatus) Valid() bool {
	return s >= StatusDraft && s <= StatusVoided
}

// ParseChequeStatus parses a status from its number or its name.
func ParseChequeStatus(v string) (ChequeStatus, error) {
	if n, err := strconv.Atoi(v); err == nil {
		s := ChequeStatus(n)
		if s.Valid() {
			return s, nil
		}

		return 0, fmt.Errorf("unknown cheque status %d", n)
	}

	for i, name := range statusNames {
		if name == v {
			return ChequeStatus(i), nil
		}
	}

	return 0, fmt.Errorf("unknown cheque status %q", v)
}
