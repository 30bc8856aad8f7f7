package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// InvoiceItemInput is a single requested invoice line.
type InvoiceItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput carries all data needed to create a new invoice.
type CreateInvoiceInput struct {
	CustomerName   string
	DueDate        time.Time
	AssignedUserID string
	Items          []InvoiceItemInput
}

// RenderedInvoice is the binary document produced for a download.
type RenderedInvoice struct {
	InvoiceNumber string
	Content       []byte
}

// InvoiceService defines the invoice workflow use cases. Every operation runs
// under the given principal.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, actor domain.Principal, input CreateInvoiceInput) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, actor domain.Principal, invoiceID string, status domain.InvoiceStatus) (*domain.Invoice, error)
	AcceptInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*domain.Invoice, error)
	RejectInvoice(ctx context.Context, actor domain.Principal, invoiceID, reason string) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, actor domain.Principal) ([]*domain.Invoice, error)
	DownloadInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*RenderedInvoice, error)
	ListAssignableUsers(ctx context.Context, actor domain.Principal) ([]*domain.User, error)
}
