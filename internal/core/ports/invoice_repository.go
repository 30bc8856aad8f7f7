package ports

import (
	"context"
	"time"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// InvoiceFilter scopes invoice listings. An empty AssignedUserID lists all invoices.
type InvoiceFilter struct {
	AssignedUserID string
}

// InvoiceRepository defines persistence operations for invoices.
type InvoiceRepository interface {
	// Create inserts the invoice together with its items and sets inv.ID.
	// Returns domain.ErrDuplicateInvoiceNumber on a number collision.
	Create(ctx context.Context, inv *domain.Invoice) error
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	// List returns matching invoices, most recently issued first.
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	// UpdateStatus moves the invoice from one status to another only while it
	// is still in from. Returns domain.ErrInvoiceProcessed when it is not.
	UpdateStatus(ctx context.Context, id string, from, to domain.InvoiceStatus, acceptedDate *time.Time) error
}

// InvoiceSequence hands out per-second invoice number suffixes.
type InvoiceSequence interface {
	Next(ctx context.Context, at time.Time) (int64, error)
}

// InvoiceRenderer turns an invoice snapshot into a PDF document.
type InvoiceRenderer interface {
	Render(ctx context.Context, inv *domain.Invoice) ([]byte, error)
}

// Transactor runs fn as one atomic unit. Repositories called with the ctx
// passed to fn take part in the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
