package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "Pending"
	StatusAccepted  InvoiceStatus = "Accepted"
	StatusRejected  InvoiceStatus = "Rejected"
	StatusPaid      InvoiceStatus = "Paid"
	StatusOverdue   InvoiceStatus = "Overdue"
	StatusCancelled InvoiceStatus = "Cancelled"
)

var invoiceStatuses = []InvoiceStatus{
	StatusPending, StatusAccepted, StatusRejected, StatusPaid, StatusOverdue, StatusCancelled,
}

// validTransitions defines the allowed state machine transitions. Every status
// without an entry is terminal.
var validTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusPending: {StatusAccepted, StatusRejected, StatusPaid, StatusOverdue, StatusCancelled},
}

// userSettable lists the target statuses an assigned User may request through a
// plain status update. Rejection needs a reason and goes through RejectInvoice.
// Admins may request any target the transition table allows.
var userSettable = map[InvoiceStatus]bool{
	StatusAccepted: true,
}

// ParseInvoiceStatus matches s case-insensitively against the known statuses.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range invoiceStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", NewValidationError("status", "Invalid status. Must be one of: Pending, Accepted, Rejected, Paid, Overdue, Cancelled")
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s InvoiceStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// SettableBy reports whether role may request s as a target status.
func (s InvoiceStatus) SettableBy(role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return userSettable[s]
	}
	return false
}

// stampsAcceptedDate reports whether entering s records the accepted date.
func (s InvoiceStatus) stampsAcceptedDate() bool {
	return s == StatusAccepted || s == StatusPaid
}

// InvoiceItem is a single immutable invoice line.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// NewInvoiceItem builds an item and computes its line total once.
func NewInvoiceItem(description string, quantity int, unitPrice decimal.Decimal) InvoiceItem {
	return InvoiceItem{
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// SumItems returns the sum of the items' line totals.
func SumItems(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// Invoice is the workflow aggregate. Items are owned by the invoice and never
// change after creation.
type Invoice struct {
	ID             string          `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	CustomerName   string          `json:"customerName"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        time.Time       `json:"dueDate"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         InvoiceStatus   `json:"status"`
	AcceptedDate   *time.Time      `json:"acceptedDate,omitempty"`
	AssignedUserID string          `json:"assignedUserId"`
	// CreatedByAdminID is empty when the creator is unknown.
	CreatedByAdminID string        `json:"createdByAdminId,omitempty"`
	Items            []InvoiceItem `json:"items"`
}

// Transition moves the invoice to next, stamping the accepted date when the
// target requires it.
func (inv *Invoice) Transition(next InvoiceStatus, at time.Time) error {
	if !inv.Status.CanTransitionTo(next) {
		if inv.Status.IsTerminal() {
			return ErrInvoiceProcessed
		}
		return ErrInvalidTransition
	}
	inv.Status = next
	if next.stampsAcceptedDate() {
		ts := at.UTC()
		inv.AcceptedDate = &ts
	}
	return nil
}
