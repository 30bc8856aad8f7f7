package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/pkg/metrics"
)

const (
	maxNumberAttempts = 3
	maxReasonLength   = 500
	maxCustomerName   = 200
	maxDescription    = 200
)

// InvoiceService owns invoice creation and status transitions.
type InvoiceService struct {
	invoices ports.InvoiceRepository
	users    ports.UserRepository
	notifier ports.Notifier
	tx       ports.Transactor
	sequence ports.InvoiceSequence
	renderer ports.InvoiceRenderer
	logger   zerolog.Logger
	now      func() time.Time
}

// InvoiceServiceDeps groups the collaborators of InvoiceService. Sequence is
// optional; without it invoice numbers use a random suffix.
type InvoiceServiceDeps struct {
	Invoices ports.InvoiceRepository
	Users    ports.UserRepository
	Notifier ports.Notifier
	Tx       ports.Transactor
	Sequence ports.InvoiceSequence
	Renderer ports.InvoiceRenderer
}

func NewInvoiceService(deps InvoiceServiceDeps, logger zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		invoices: deps.Invoices,
		users:    deps.Users,
		notifier: deps.Notifier,
		tx:       deps.Tx,
		sequence: deps.Sequence,
		renderer: deps.Renderer,
		logger:   logger.With().Str("component", "invoices").Logger(),
		now:      time.Now,
	}
}

// CreateInvoice validates and stores a new Pending invoice and notifies the
// assigned user in the same transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, actor domain.Principal, input ports.CreateInvoiceInput) (*domain.Invoice, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := s.now().UTC()
	if err := validateCreateInput(input, now); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, input.AssignedUserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewValidationError("assignedUserId", "Assigned user not found")
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	items := make([]domain.InvoiceItem, 0, len(input.Items))
	for _, it := range input.Items {
		items = append(items, domain.NewInvoiceItem(it.Description, it.Quantity, it.UnitPrice))
	}

	inv := &domain.Invoice{
		CustomerName:     strings.TrimSpace(input.CustomerName),
		IssueDate:        now,
		DueDate:          input.DueDate.UTC(),
		TotalAmount:      domain.SumItems(items),
		Status:           domain.StatusPending,
		AssignedUserID:   input.AssignedUserID,
		CreatedByAdminID: actor.ID,
		Items:            items,
	}

	var notification *domain.Notification
	for attempt := 1; ; attempt++ {
		inv.ID = ""
		inv.InvoiceNumber = s.nextInvoiceNumber(ctx, now, attempt)

		err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.invoices.Create(ctx, inv); err != nil {
				return err
			}
			msg := fmt.Sprintf("New invoice #%s has been assigned to you for %s", inv.InvoiceNumber, inv.CustomerName)
			n, err := s.notifier.Record(ctx, inv.AssignedUserID, msg)
			if err != nil {
				return err
			}
			notification = n
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateInvoiceNumber) && attempt < maxNumberAttempts {
			s.logger.Warn().Str("invoice_number", inv.InvoiceNumber).Msg("invoice number collision, retrying")
			continue
		}
		s.logger.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("failed to create invoice")
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	metrics.InvoicesCreatedTotal.Inc()
	s.notifier.Deliver(notification)
	s.notifier.Broadcast(domain.AdminsGroup,
		fmt.Sprintf("Invoice #%s created for %s", inv.InvoiceNumber, inv.CustomerName))

	s.logger.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("assigned_user_id", inv.AssignedUserID).
		Str("total", inv.TotalAmount.StringFixed(2)).
		Msg("invoice created")

	return inv, nil
}

func validateCreateInput(in ports.CreateInvoiceInput, now time.Time) error {
	verr := &domain.ValidationError{}

	name := strings.TrimSpace(in.CustomerName)
	switch {
	case name == "":
		verr.Add("customerName", "Customer name is required")
	case utf8.RuneCountInString(name) > maxCustomerName:
		verr.Add("customerName", fmt.Sprintf("Customer name must be at most %d characters", maxCustomerName))
	}
	if !in.DueDate.After(now) {
		verr.Add("dueDate", "Due date must be in the future")
	}
	if strings.TrimSpace(in.AssignedUserID) == "" {
		verr.Add("assignedUserId", "Assigned user is required")
	}
	if len(in.Items) == 0 {
		verr.Add("items", "At least one invoice item is required")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		desc := strings.TrimSpace(it.Description)
		switch {
		case desc == "":
			verr.Add(field+".description", "Item description is required")
		case utf8.RuneCountInString(desc) > maxDescription:
			verr.Add(field+".description", fmt.Sprintf("Item description must be at most %d characters", maxDescription))
		}
		if it.Quantity <= 0 {
			verr.Add(field+".quantity", "Quantity must be greater than zero")
		}
		if !it.UnitPrice.IsPositive() {
			verr.Add(field+".unitPrice", "Unit price must be greater than zero")
		}
	}
	return verr.OrNil()
}

// nextInvoiceNumber returns INV-{yyyyMMddHHmmss}-{suffix}. The first attempt
// uses the shared sequence; retries and sequence failures use a random suffix.
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, now time.Time, attempt int) string {
	stamp := now.Format("20060102150405")
	if s.sequence != nil && attempt == 1 {
		n, err := s.sequence.Next(ctx, now)
		if err == nil {
			return fmt.Sprintf("INV-%s-%04d", stamp, n)
		}
		s.logger.Warn().Err(err).Msg("invoice sequence unavailable, using random suffix")
	}
	return fmt.Sprintf("INV-%s-%s", stamp, randomSuffix())
}

func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%06X", b)
}

// UpdateStatus applies a transition requested by an Admin or by the assigned User.
func (s *InvoiceService) UpdateStatus(ctx context.Context, actor domain.Principal, invoiceID string, status domain.InvoiceStatus) (*domain.Invoice, error) {
	if _, err := domain.ParseInvoiceStatus(string(status)); err != nil {
		return nil, err
	}
	settable := func() error {
		if !status.SettableBy(actor.Role) {
			return domain.ErrForbidden
		}
		return nil
	}
	return s.transition(ctx, actor, invoiceID, status, settable, func(inv *domain.Invoice, from domain.InvoiceStatus) string {
		if actor.IsAdmin() {
			return fmt.Sprintf("Invoice #%s status changed from %s to %s", inv.InvoiceNumber, from, inv.Status)
		}
		return fmt.Sprintf("Invoice #%s status changed from %s to %s by %s", inv.InvoiceNumber, from, inv.Status, actor.Username)
	})
}

func (s *InvoiceService) AcceptInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*domain.Invoice, error) {
	if actor.Role != domain.RoleUser {
		return nil, domain.ErrForbidden
	}
	return s.transition(ctx, actor, invoiceID, domain.StatusAccepted, nil, func(inv *domain.Invoice, _ domain.InvoiceStatus) string {
		return fmt.Sprintf("Invoice #%s has been accepted by %s", inv.InvoiceNumber, actor.Username)
	})
}

func (s *InvoiceService) RejectInvoice(ctx context.Context, actor domain.Principal, invoiceID, reason string) (*domain.Invoice, error) {
	if actor.Role != domain.RoleUser {
		return nil, domain.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return nil, domain.NewValidationError("reason", "Rejection reason is required")
	case utf8.RuneCountInString(reason) > maxReasonLength:
		return nil, domain.NewValidationError("reason", fmt.Sprintf("Rejection reason must be at most %d characters", maxReasonLength))
	}
	return s.transition(ctx, actor, invoiceID, domain.StatusRejected, nil, func(inv *domain.Invoice, _ domain.InvoiceStatus) string {
		return fmt.Sprintf("Invoice #%s has been rejected by %s. Reason: %s", inv.InvoiceNumber, actor.Username, reason)
	})
}

// transition loads, authorizes and moves an invoice to next, then notifies the
// counterparty. guard, when set, runs after the ownership check. The status
// write and the notification insert share one transaction.
func (s *InvoiceService) transition(
	ctx context.Context,
	actor domain.Principal,
	invoiceID string,
	next domain.InvoiceStatus,
	guard func() error,
	message func(inv *domain.Invoice, from domain.InvoiceStatus) string,
) (*domain.Invoice, error) {
	// 1. Load and authorize.
	inv, err := s.authorized(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(); err != nil {
			return nil, err
		}
	}

	// 2. Validate against the transition table.
	from := inv.Status
	if err := inv.Transition(next, s.now()); err != nil {
		return nil, err
	}

	// 3. Pick the counterparty. A User's change goes to the creating admin when known.
	recipient := inv.AssignedUserID
	if !actor.IsAdmin() {
		recipient = inv.CreatedByAdminID
	}
	msg := message(inv, from)

	// 4. Conditional status write + notification insert.
	var notification *domain.Notification
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoices.UpdateStatus(ctx, inv.ID, from, inv.Status, inv.AcceptedDate); err != nil {
			return err
		}
		if recipient == "" {
			return nil
		}
		n, err := s.notifier.Record(ctx, recipient, msg)
		if err != nil {
			return err
		}
		notification = n
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceProcessed) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("invoice_id", inv.ID).Msg("failed to update invoice status")
		return nil, fmt.Errorf("update invoice status: %w", err)
	}

	metrics.InvoiceTransitionsTotal.WithLabelValues(string(from), string(inv.Status), string(actor.Role)).Inc()

	// 5. Push after commit.
	if notification != nil {
		s.notifier.Deliver(notification)
	} else {
		s.notifier.Broadcast(domain.AdminsGroup, msg)
	}

	s.logger.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("from", string(from)).
		Str("to", string(inv.Status)).
		Str("actor_id", actor.ID).
		Msg("invoice status changed")

	return inv, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*domain.Invoice, error) {
	return s.authorized(ctx, actor, invoiceID)
}

// ListInvoices returns every invoice to an Admin and only assigned invoices to a User.
func (s *InvoiceService) ListInvoices(ctx context.Context, actor domain.Principal) ([]*domain.Invoice, error) {
	filter := ports.InvoiceFilter{}
	if !actor.IsAdmin() {
		filter.AssignedUserID = actor.ID
	}
	items, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return items, nil
}

func (s *InvoiceService) DownloadInvoice(ctx context.Context, actor domain.Principal, invoiceID string) (*ports.RenderedInvoice, error) {
	inv, err := s.authorized(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	content, err := s.renderer.Render(ctx, inv)
	if err != nil {
		s.logger.Error().Err(err).Str("invoice_id", inv.ID).Msg("failed to render invoice")
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return &ports.RenderedInvoice{InvoiceNumber: inv.InvoiceNumber, Content: content}, nil
}

// ListAssignableUsers returns the non-admin users an invoice can be assigned to.
func (s *InvoiceService) ListAssignableUsers(ctx context.Context, actor domain.Principal) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.ListByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list assignable users: %w", err)
	}
	return users, nil
}

func (s *InvoiceService) authorized(ctx context.Context, actor domain.Principal, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAct(inv.AssignedUserID) {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}
