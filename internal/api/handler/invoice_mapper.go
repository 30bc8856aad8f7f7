package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInvoiceInput(req createInvoiceRequest) (ports.CreateInvoiceInput, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return ports.CreateInvoiceInput{}, err
	}

	items := make([]ports.InvoiceItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.InvoiceItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	return ports.CreateInvoiceInput{
		CustomerName:   req.CustomerName,
		DueDate:        due,
		AssignedUserID: req.AssignedUserID,
		Items:          items,
	}, nil
}

// parseDueDate leaves an empty value as the zero time so the service reports
// it together with the other field problems.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("dueDate", "dueDate must be a date (yyyy-mm-dd) or an RFC 3339 timestamp")
}

// --- Domain → Response ---

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	items := make([]invoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, invoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   money(it.UnitPrice),
			TotalPrice:  money(it.TotalPrice),
		})
	}

	return invoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		CustomerName:     inv.CustomerName,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		TotalAmount:      money(inv.TotalAmount),
		Status:           string(inv.Status),
		AcceptedDate:     inv.AcceptedDate,
		AssignedUserID:   inv.AssignedUserID,
		CreatedByAdminID: inv.CreatedByAdminID,
		Items:            items,
	}
}

func toInvoiceResponses(invs []*domain.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     string(u.Role),
		})
	}
	return out
}
