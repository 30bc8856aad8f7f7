package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type invoiceFixture struct {
	svc           *InvoiceService
	users         *stubUserRepo
	invoices      *stubInvoiceRepo
	notifications *stubNotificationRepo
	queue         *stubQueue
	tx            *stubTx
	sequence      *stubSequence
	renderer      *stubRenderer

	admin domain.Principal
	user  domain.Principal
	other domain.Principal
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		users:         newStubUserRepo(),
		invoices:      newStubInvoiceRepo(),
		notifications: newStubNotificationRepo(),
		queue:         &stubQueue{},
		sequence:      &stubSequence{},
		renderer:      &stubRenderer{content: []byte("%PDF-1.3 test")},
	}
	f.tx = &stubTx{invoices: f.invoices, notifications: f.notifications}

	f.users.seed(&domain.User{ID: "admin-1", Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin})
	f.users.seed(&domain.User{ID: "user-1", Username: "john_doe", Email: "john@example.com", Role: domain.RoleUser})
	f.users.seed(&domain.User{ID: "user-2", Username: "jane_smith", Email: "jane@example.com", Role: domain.RoleUser})

	f.admin = domain.Principal{ID: "admin-1", Username: "admin", Role: domain.RoleAdmin}
	f.user = domain.Principal{ID: "user-1", Username: "john_doe", Role: domain.RoleUser}
	f.other = domain.Principal{ID: "user-2", Username: "jane_smith", Role: domain.RoleUser}

	notifier := NewNotificationService(f.notifications, f.queue, zerolog.Nop())
	f.svc = NewInvoiceService(InvoiceServiceDeps{
		Invoices: f.invoices,
		Users:    f.users,
		Notifier: notifier,
		Tx:       f.tx,
		Sequence: f.sequence,
		Renderer: f.renderer,
	}, zerolog.Nop())
	return f
}

func validCreateInput(assignee string) ports.CreateInvoiceInput {
	return ports.CreateInvoiceInput{
		CustomerName:   "Acme",
		DueDate:        time.Now().Add(30 * 24 * time.Hour),
		AssignedUserID: assignee,
		Items: []ports.InvoiceItemInput{
			{Description: "Consulting", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
		},
	}
}

func (f *invoiceFixture) create(t *testing.T) *domain.Invoice {
	t.Helper()
	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.user.ID))
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	f.queue.messages = nil
	return inv
}

// ---------------------------------------------------------------------------
// CreateInvoice
// ---------------------------------------------------------------------------

func TestInvoiceService_CreateInvoice_Success(t *testing.T) {
	f := newInvoiceFixture()
	input := validCreateInput(f.user.ID)
	input.Items = append(input.Items, ports.InvoiceItemInput{Description: "Hosting", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")})

	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !inv.TotalAmount.Equal(decimal.RequireFromString("159.97")) {
		t.Errorf("expected total 159.97, got %s", inv.TotalAmount)
	}
	if inv.Status != domain.StatusPending {
		t.Errorf("expected Pending, got %s", inv.Status)
	}
	if inv.CreatedByAdminID != f.admin.ID || inv.AssignedUserID != f.user.ID {
		t.Errorf("unexpected ownership: %+v", inv)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "INV-") || !strings.HasSuffix(inv.InvoiceNumber, "-0001") {
		t.Errorf("unexpected invoice number: %s", inv.InvoiceNumber)
	}

	got := f.notifications.forUser(f.user.ID)
	if len(got) != 1 {
		t.Fatalf("expected one notification for assignee, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, inv.InvoiceNumber) || !strings.Contains(got[0].Message, "Acme") {
		t.Errorf("unexpected message: %q", got[0].Message)
	}

	events := f.queue.events()
	if len(events) != 2 || events[0] != "user:user-1 ReceiveNotification" || events[1] != "group:Admins ReceiveNotification" {
		t.Errorf("unexpected push events: %v", events)
	}
}

func TestInvoiceService_CreateInvoice_TotalMatchesItems(t *testing.T) {
	f := newInvoiceFixture()
	cases := [][]ports.InvoiceItemInput{
		{{Description: "a", Quantity: 1, UnitPrice: decimal.RequireFromString("0.01")}},
		{{Description: "a", Quantity: 7, UnitPrice: decimal.RequireFromString("3.33")}, {Description: "b", Quantity: 2, UnitPrice: decimal.RequireFromString("0.50")}},
		{{Description: "a", Quantity: 1000, UnitPrice: decimal.RequireFromString("1234.56")}},
	}
	for i, items := range cases {
		input := validCreateInput(f.user.ID)
		input.Items = items
		inv, err := f.svc.CreateInvoice(context.Background(), f.admin, input)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		want := decimal.Zero
		for _, it := range items {
			want = want.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if !inv.TotalAmount.Equal(want) {
			t.Errorf("case %d: expected %s, got %s", i, want, inv.TotalAmount)
		}
	}
}

func TestInvoiceService_CreateInvoice_Validation(t *testing.T) {
	cases := map[string]func(in *ports.CreateInvoiceInput){
		"blank customer":   func(in *ports.CreateInvoiceInput) { in.CustomerName = "   " },
		"past due date":    func(in *ports.CreateInvoiceInput) { in.DueDate = time.Now().Add(-time.Hour) },
		"no items":         func(in *ports.CreateInvoiceInput) { in.Items = nil },
		"zero quantity":    func(in *ports.CreateInvoiceInput) { in.Items[0].Quantity = 0 },
		"negative price":   func(in *ports.CreateInvoiceInput) { in.Items[0].UnitPrice = decimal.RequireFromString("-1") },
		"zero price":       func(in *ports.CreateInvoiceInput) { in.Items[0].UnitPrice = decimal.Zero },
		"blank item":       func(in *ports.CreateInvoiceInput) { in.Items[0].Description = "" },
		"unknown assignee": func(in *ports.CreateInvoiceInput) { in.AssignedUserID = "nobody" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newInvoiceFixture()
			input := validCreateInput(f.user.ID)
			mutate(&input)

			_, err := f.svc.CreateInvoice(context.Background(), f.admin, input)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(f.invoices.byID) != 0 {
				t.Fatal("no invoice must be created")
			}
			if len(f.notifications.byID) != 0 || len(f.queue.messages) != 0 {
				t.Fatal("no notification must be created")
			}
		})
	}
}

func TestInvoiceService_CreateInvoice_AdminOnly(t *testing.T) {
	f := newInvoiceFixture()
	if _, err := f.svc.CreateInvoice(context.Background(), f.user, validCreateInput(f.user.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestInvoiceService_CreateInvoice_RetriesNumberCollision(t *testing.T) {
	f := newInvoiceFixture()
	f.invoices.createErrs = []error{domain.ErrDuplicateInvoiceNumber}

	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.user.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasSuffix(inv.InvoiceNumber, "-0001") {
		t.Errorf("retry must use a fresh suffix, got %s", inv.InvoiceNumber)
	}
	if f.tx.calls != 2 {
		t.Errorf("expected 2 transaction attempts, got %d", f.tx.calls)
	}
}

func TestInvoiceService_CreateInvoice_SequenceDownFallsBack(t *testing.T) {
	f := newInvoiceFixture()
	f.sequence.err = errors.New("redis unavailable")

	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.user.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := strings.Split(inv.InvoiceNumber, "-")
	if len(parts) != 3 || len(parts[1]) != 14 || len(parts[2]) != 6 {
		t.Fatalf("unexpected fallback number: %s", inv.InvoiceNumber)
	}
}

func TestInvoiceService_CreateInvoice_NotificationFailureRollsBack(t *testing.T) {
	f := newInvoiceFixture()
	f.notifications.createErr = errors.New("mongo unavailable")

	if _, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.user.ID)); err == nil {
		t.Fatal("expected error")
	}
	if len(f.invoices.byID) != 0 {
		t.Fatal("invoice insert must be rolled back")
	}
	if len(f.queue.messages) != 0 {
		t.Fatal("nothing must be pushed for a failed transaction")
	}
}

// ---------------------------------------------------------------------------
// Status transitions
// ---------------------------------------------------------------------------

func TestInvoiceService_UpdateStatus_AdminNotifiesAssignee(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	updated, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.StatusPaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusPaid || updated.AcceptedDate == nil {
		t.Fatalf("expected Paid with accepted date, got %+v", updated)
	}

	stored, _ := f.invoices.FindByID(context.Background(), inv.ID)
	if stored.Status != domain.StatusPaid {
		t.Fatalf("expected stored status Paid, got %s", stored.Status)
	}

	got := f.notifications.forUser(f.user.ID)
	if len(got) != 2 {
		t.Fatalf("expected creation + update notifications, got %d", len(got))
	}
	var update *domain.Notification
	for _, n := range got {
		if strings.Contains(n.Message, "status changed") {
			update = n
		}
	}
	if update == nil || !strings.Contains(update.Message, "Pending") || !strings.Contains(update.Message, "Paid") || !strings.Contains(update.Message, inv.InvoiceNumber) {
		t.Fatalf("unexpected update notification: %+v", got)
	}
}

func TestInvoiceService_UpdateStatus_UserOnForeignInvoiceForbidden(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	for _, st := range []domain.InvoiceStatus{domain.StatusAccepted, domain.StatusRejected, domain.StatusPaid, domain.StatusCancelled, domain.StatusPending} {
		if _, err := f.svc.UpdateStatus(context.Background(), f.other, inv.ID, st); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("status %s: expected ErrForbidden, got %v", st, err)
		}
	}
}

func TestInvoiceService_UpdateStatus_UserLimitedTargets(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.UpdateStatus(context.Background(), f.user, inv.ID, domain.StatusPaid); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for Paid, got %v", err)
	}

	updated, err := f.svc.UpdateStatus(context.Background(), f.user, inv.ID, domain.StatusAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Fatalf("expected Accepted, got %s", updated.Status)
	}
	if n := f.notifications.forUser(f.admin.ID); len(n) != 1 || !strings.Contains(n[0].Message, "by john_doe") {
		t.Fatalf("expected one admin notification naming the user, got %+v", n)
	}
}

func TestInvoiceService_UpdateStatus_UserCannotRejectWithoutReason(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.UpdateStatus(context.Background(), f.user, inv.ID, domain.StatusRejected); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := f.invoices.byID[inv.ID].Status; got != domain.StatusPending {
		t.Fatalf("invoice must stay Pending, got %s", got)
	}
	if n := f.notifications.forUser(f.admin.ID); len(n) != 0 {
		t.Fatalf("refused update must not notify, got %+v", n)
	}
}

func TestInvoiceService_UpdateStatus_Errors(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, "missing", domain.StatusPaid); !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.InvoiceStatus("Shipped")); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.StatusPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.StatusPaid); !errors.Is(err, domain.ErrInvoiceProcessed) {
		t.Errorf("expected ErrInvoiceProcessed from terminal state, got %v", err)
	}
}

func TestInvoiceService_UpdateStatus_LostRaceIsConflict(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)
	f.invoices.updateErr = domain.ErrInvoiceProcessed

	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, inv.ID, domain.StatusPaid); !errors.Is(err, domain.ErrInvoiceProcessed) {
		t.Fatalf("expected ErrInvoiceProcessed, got %v", err)
	}
	if len(f.queue.messages) != 0 {
		t.Fatal("nothing must be pushed when the update lost")
	}
}

func TestInvoiceService_UpdateStatus_UnknownCreatorBroadcastsToAdmins(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)
	f.invoices.byID[inv.ID].CreatedByAdminID = ""

	if _, err := f.svc.AcceptInvoice(context.Background(), f.user, inv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.notifications.forUser(f.admin.ID)) != 0 {
		t.Fatal("no persisted notification without a known creator")
	}
	if events := f.queue.events(); len(events) != 1 || events[0] != "group:Admins ReceiveNotification" {
		t.Fatalf("expected admin group broadcast, got %v", events)
	}
}

func TestInvoiceService_AcceptInvoice_Scenario(t *testing.T) {
	f := newInvoiceFixture()

	inv, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.user.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !inv.TotalAmount.Equal(decimal.RequireFromString("100.00")) || inv.Status != domain.StatusPending {
		t.Fatalf("unexpected invoice: total=%s status=%s", inv.TotalAmount, inv.Status)
	}
	if n := f.notifications.forUser(f.user.ID); len(n) != 1 || !strings.Contains(n[0].Message, inv.InvoiceNumber) {
		t.Fatalf("assignee must be notified about %s: %+v", inv.InvoiceNumber, n)
	}

	accepted, err := f.svc.AcceptInvoice(context.Background(), f.user, inv.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != domain.StatusAccepted || accepted.AcceptedDate == nil {
		t.Fatalf("expected Accepted with date, got %+v", accepted)
	}
	adminInbox := f.notifications.forUser(f.admin.ID)
	if len(adminInbox) != 1 || !strings.Contains(adminInbox[0].Message, "accepted") || !strings.Contains(adminInbox[0].Message, inv.InvoiceNumber) {
		t.Fatalf("admin must be notified of acceptance: %+v", adminInbox)
	}

	if _, err := f.svc.AcceptInvoice(context.Background(), f.user, inv.ID); !errors.Is(err, domain.ErrInvoiceProcessed) {
		t.Fatalf("expected second accept to fail with ErrInvoiceProcessed, got %v", err)
	}
	if len(f.notifications.forUser(f.admin.ID)) != 1 {
		t.Fatal("failed accept must not notify")
	}
}

func TestInvoiceService_AcceptInvoice_Guards(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.AcceptInvoice(context.Background(), f.other, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-assignee, got %v", err)
	}
	if _, err := f.svc.AcceptInvoice(context.Background(), f.admin, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for admin, got %v", err)
	}
}

func TestInvoiceService_RejectInvoice(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.RejectInvoice(context.Background(), f.user, inv.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank reason, got %v", err)
	}
	if _, err := f.svc.RejectInvoice(context.Background(), f.user, inv.ID, strings.Repeat("x", 501)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for long reason, got %v", err)
	}

	rejected, err := f.svc.RejectInvoice(context.Background(), f.user, inv.ID, "Wrong amount")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != domain.StatusRejected || rejected.AcceptedDate != nil {
		t.Fatalf("unexpected invoice: %+v", rejected)
	}
	inbox := f.notifications.forUser(f.admin.ID)
	if len(inbox) != 1 || !strings.Contains(inbox[0].Message, "Wrong amount") {
		t.Fatalf("reason must reach the admin: %+v", inbox)
	}

	if _, err := f.svc.AcceptInvoice(context.Background(), f.user, inv.ID); !errors.Is(err, domain.ErrInvoiceProcessed) {
		t.Fatalf("expected accept after reject to fail, got %v", err)
	}
}

func TestInvoiceService_RejectInvoice_KeepsFullReason(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)
	long := domain.Principal{ID: "user-3", Username: strings.Repeat("n", domain.MaxUsernameLength), Role: domain.RoleUser}
	f.users.seed(&domain.User{ID: long.ID, Username: long.Username, Email: "n@example.com", Role: domain.RoleUser})
	f.invoices.byID[inv.ID].AssignedUserID = long.ID

	reason := strings.Repeat("a", 487) + "END-OF-REASON"
	if _, err := f.svc.RejectInvoice(context.Background(), long, inv.ID, reason); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	inbox := f.notifications.forUser(f.admin.ID)
	if len(inbox) != 1 || !strings.Contains(inbox[0].Message, reason) {
		t.Fatalf("full reason must reach the admin, got %+v", inbox)
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestInvoiceService_ListInvoices_RoleFiltered(t *testing.T) {
	f := newInvoiceFixture()
	first := f.create(t)
	f.invoices.byID[first.ID].IssueDate = time.Now().Add(-time.Hour)
	second := f.create(t)
	if _, err := f.svc.CreateInvoice(context.Background(), f.admin, validCreateInput(f.other.ID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := f.svc.ListInvoices(context.Background(), f.admin)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin must see all invoices, got %d (%v)", len(all), err)
	}

	mine, err := f.svc.ListInvoices(context.Background(), f.user)
	if err != nil || len(mine) != 2 {
		t.Fatalf("user must see own invoices, got %d (%v)", len(mine), err)
	}
	if mine[0].ID != second.ID {
		t.Errorf("expected newest first, got %s", mine[0].ID)
	}
}

func TestInvoiceService_GetInvoice(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	if _, err := f.svc.GetInvoice(context.Background(), f.user, inv.ID); err != nil {
		t.Errorf("assignee must read invoice: %v", err)
	}
	if _, err := f.svc.GetInvoice(context.Background(), f.admin, inv.ID); err != nil {
		t.Errorf("admin must read invoice: %v", err)
	}
	if _, err := f.svc.GetInvoice(context.Background(), f.other, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestInvoiceService_DownloadInvoice(t *testing.T) {
	f := newInvoiceFixture()
	inv := f.create(t)

	out, err := f.svc.DownloadInvoice(context.Background(), f.user, inv.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out.Content) != "%PDF-1.3 test" || out.InvoiceNumber != inv.InvoiceNumber {
		t.Fatalf("renderer output must be returned unmodified: %+v", out)
	}
	if f.renderer.last == nil || f.renderer.last.ID != inv.ID {
		t.Fatal("renderer must receive the invoice snapshot")
	}

	if _, err := f.svc.DownloadInvoice(context.Background(), f.other, inv.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestInvoiceService_ListAssignableUsers(t *testing.T) {
	f := newInvoiceFixture()

	users, err := f.svc.ListAssignableUsers(context.Background(), f.admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected only non-admin users, got %d", len(users))
	}
	for _, u := range users {
		if u.Role != domain.RoleUser {
			t.Errorf("unexpected role %s", u.Role)
		}
	}

	if _, err := f.svc.ListAssignableUsers(context.Background(), f.user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
