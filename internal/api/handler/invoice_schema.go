package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// --- Request / Response types ---

type invoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" swaggertype:"number"`
}

type createInvoiceRequest struct {
	CustomerName string `json:"customerName"`
	// DueDate accepts RFC 3339 or a plain yyyy-mm-dd date.
	DueDate        string               `json:"dueDate" example:"2026-12-31"`
	AssignedUserID string               `json:"assignedUserId"`
	Items          []invoiceItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status" example:"Paid"`
}

type rejectInvoiceRequest struct {
	Reason string `json:"reason"`
}

type invoiceItemResponse struct {
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unitPrice" swaggertype:"number"`
	TotalPrice  json.Number `json:"totalPrice" swaggertype:"number"`
}

type invoiceResponse struct {
	ID               string                `json:"id"`
	InvoiceNumber    string                `json:"invoiceNumber"`
	CustomerName     string                `json:"customerName"`
	IssueDate        time.Time             `json:"issueDate"`
	DueDate          time.Time             `json:"dueDate"`
	TotalAmount      json.Number           `json:"totalAmount" swaggertype:"number"`
	Status           string                `json:"status"`
	AcceptedDate     *time.Time            `json:"acceptedDate,omitempty"`
	AssignedUserID   string                `json:"assignedUserId"`
	CreatedByAdminID string                `json:"createdByAdminId,omitempty"`
	Items            []invoiceItemResponse `json:"items"`
}

type statusUpdateResponse struct {
	Message string          `json:"message"`
	Invoice invoiceResponse `json:"invoice"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
