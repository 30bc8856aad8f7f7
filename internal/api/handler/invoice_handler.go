package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for the invoice workflow.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// List returns every invoice for admins and the assigned invoices for users,
// newest first.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   invoiceResponse
// @Failure      401  {object}  errorBody
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	invoices, err := h.service.ListInvoices(c.Request().Context(), actor)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInvoiceResponses(invoices))
}

// Get returns a single invoice.
//
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoiceResponse
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	inv, err := h.service.GetInvoice(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Create issues a new Pending invoice and notifies the assigned user.
//
// @Summary      Create invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice details"
// @Success      201   {object}  invoiceResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input, err := toCreateInvoiceInput(req)
	if err != nil {
		return err
	}

	inv, err := h.service.CreateInvoice(c.Request().Context(), actor, input)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/invoices/"+inv.ID)
	return c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

// UpdateStatus moves an invoice to a new status.
//
// @Summary      Update invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Invoice ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  statusUpdateResponse
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status, err := domain.ParseInvoiceStatus(req.Status)
	if err != nil {
		return err
	}

	inv, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusUpdateResponse{
		Message: "Invoice status updated successfully",
		Invoice: toInvoiceResponse(inv),
	})
}

// Accept is the assigned user's approval of a Pending invoice.
//
// @Summary      Accept invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  invoiceResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Failure      409  {object}  errorBody
// @Router       /api/invoices/{id}/accept [post]
func (h *InvoiceHandler) Accept(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	inv, err := h.service.AcceptInvoice(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Reject is the assigned user's refusal of a Pending invoice.
//
// @Summary      Reject invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invoice ID"
// @Param        body  body      rejectInvoiceRequest  true  "Rejection reason"
// @Success      200   {object}  invoiceResponse
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /api/invoices/{id}/reject [post]
func (h *InvoiceHandler) Reject(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req rejectInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inv, err := h.service.RejectInvoice(c.Request().Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Download renders the invoice as a PDF attachment.
//
// @Summary      Download invoice PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /api/invoices/{id}/download [get]
func (h *InvoiceHandler) Download(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	doc, err := h.service.DownloadInvoice(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "Invoice_"+doc.InvoiceNumber+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", doc.Content)
}
