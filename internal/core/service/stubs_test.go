package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User // by ID
	seq       int
	createErr error
	findErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if domain.LookupKey(u.Username) == domain.LookupKey(user.Username) ||
			domain.LookupKey(u.Email) == domain.LookupKey(user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return domain.LookupKey(u.Username) == domain.LookupKey(username) })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return domain.LookupKey(u.Email) == domain.LookupKey(email) })
}

func (r *stubUserRepo) FindByRefreshToken(_ context.Context, tokenHash string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return tokenHash != "" && u.RefreshTokenHash == tokenHash })
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshTokenHash = tokenHash
	u.RefreshTokenExpiresAt = expiresAt
	return nil
}

// RotateRefreshToken mirrors the conditional update of the real store.
func (r *stubUserRepo) RotateRefreshToken(_ context.Context, userID, oldHash, newHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.RefreshTokenHash != oldHash {
		return domain.ErrInvalidToken
	}
	u.RefreshTokenHash = newHash
	u.RefreshTokenExpiresAt = expiresAt
	return nil
}

func (r *stubUserRepo) ClearRefreshToken(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if tokenHash != "" && u.RefreshTokenHash == tokenHash {
			u.RefreshTokenHash = ""
			u.RefreshTokenExpiresAt = time.Time{}
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneUser(u)
	r.users[stored.ID] = stored
	return cloneUser(stored)
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

type stubInvoiceRepo struct {
	byID       map[string]*domain.Invoice
	seq        int
	createErrs []error // consumed one per Create call
	updateErr  error
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{byID: make(map[string]*domain.Invoice)}
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	clone := *inv
	clone.Items = append([]domain.InvoiceItem(nil), inv.Items...)
	if inv.AcceptedDate != nil {
		ts := *inv.AcceptedDate
		clone.AcceptedDate = &ts
	}
	return &clone
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range r.byID {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicateInvoiceNumber
		}
	}
	r.seq++
	inv.ID = fmt.Sprintf("inv-%d", r.seq)
	r.byID[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *stubInvoiceRepo) List(_ context.Context, f ports.InvoiceFilter) ([]*domain.Invoice, error) {
	var out []*domain.Invoice
	for _, inv := range r.byID {
		if f.AssignedUserID != "" && inv.AssignedUserID != f.AssignedUserID {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, nil
}

func (r *stubInvoiceRepo) UpdateStatus(_ context.Context, id string, from, to domain.InvoiceStatus, acceptedDate *time.Time) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	inv, ok := r.byID[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if inv.Status != from {
		return domain.ErrInvoiceProcessed
	}
	inv.Status = to
	inv.AcceptedDate = acceptedDate
	return nil
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	byID      map[string]*domain.Notification
	seq       int
	createErr error
	countErr  error
	// afterMarkAll runs once MarkAllRead has updated the store.
	afterMarkAll func()
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{byID: make(map[string]*domain.Notification)}
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	n.ID = fmt.Sprintf("ntf-%d", r.seq)
	clone := *n
	r.byID[n.ID] = &clone
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range r.byID {
		if n.UserID == userID {
			clone := *n
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string) error {
	n, ok := r.byID[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var marked int64
	for _, n := range r.byID {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			marked++
		}
	}
	if r.afterMarkAll != nil {
		r.afterMarkAll()
	}
	return marked, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotificationNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, item := range r.byID {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) forUser(userID string) []*domain.Notification {
	items, _ := r.ListByUser(context.Background(), userID)
	return items
}

// ---------------------------------------------------------------------------
// Transactions, push queue, sequence, renderer
// ---------------------------------------------------------------------------

// stubTx restores the invoice and notification stores when fn fails.
type stubTx struct {
	invoices      *stubInvoiceRepo
	notifications *stubNotificationRepo
	calls         int
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	invSnapshot := make(map[string]*domain.Invoice, len(t.invoices.byID))
	for k, v := range t.invoices.byID {
		invSnapshot[k] = cloneInvoice(v)
	}
	ntfSnapshot := make(map[string]*domain.Notification, len(t.notifications.byID))
	for k, v := range t.notifications.byID {
		clone := *v
		ntfSnapshot[k] = &clone
	}

	if err := fn(ctx); err != nil {
		t.invoices.byID = invSnapshot
		t.notifications.byID = ntfSnapshot
		return err
	}
	return nil
}

type stubQueue struct {
	messages []ports.PushMessage
	full     bool
}

func (q *stubQueue) Enqueue(msg ports.PushMessage) bool {
	if q.full {
		return false
	}
	q.messages = append(q.messages, msg)
	return true
}

func (q *stubQueue) events() []string {
	out := make([]string, 0, len(q.messages))
	for _, m := range q.messages {
		out = append(out, m.Target.Key()+" "+m.Event)
	}
	return out
}

type stubSequence struct {
	next int64
	err  error
}

func (s *stubSequence) Next(_ context.Context, _ time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

type stubRenderer struct {
	content []byte
	err     error
	last    *domain.Invoice
}

func (r *stubRenderer) Render(_ context.Context, inv *domain.Invoice) ([]byte, error) {
	r.last = inv
	return r.content, r.err
}
