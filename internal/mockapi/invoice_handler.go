package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type invoiceRequest struct {
	InvoiceNumber string        `json:"invoice_number" binding:"required"`
	ClientName    string        `json:"client_name"    binding:"required"`
	ClientEmail   string        `json:"client_email"   binding:"required,email"`
	ClientAddress string        `json:"client_address"`
	Status        domain.Status `json:"status"         binding:"omitempty,oneof=draft sent"`
	IssueDate     domain.Date   `json:"issue_date"`
	DueDate       domain.Date   `json:"due_date"`
	Notes         string        `json:"notes"`
	Items         []itemRequest `json:"items"          binding:"required,min=1,dive"`
}

type itemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    int             `json:"quantity"    binding:"min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (r invoiceRequest) invoice() domain.Invoice {
	items := make([]domain.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.LineItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	status := r.Status
	if status == "" {
		status = domain.StatusDraft
	}
	inv := domain.Invoice{
		InvoiceNumber: strings.TrimSpace(r.InvoiceNumber),
		ClientName:    strings.TrimSpace(r.ClientName),
		ClientEmail:   strings.TrimSpace(r.ClientEmail),
		ClientAddress: r.ClientAddress,
		Status:        status,
		IssueDate:     r.IssueDate,
		DueDate:       r.DueDate,
		Notes:         r.Notes,
		Items:         items,
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = domain.Today()
	}
	inv.ApplyDefaults()
	return inv
}

// GET /api/invoices/
func (h *Handler) ListInvoices(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Invoices(c.GetString(userIDKey)))
}

// POST /api/invoices/
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, h.store.CreateInvoice(actor, req.invoice()))
}

// GET /api/invoices/:id/
func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.store.Invoice(c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errInvoiceNotFound})
		return
	}
	c.JSON(http.StatusOK, inv)
}

// PUT /api/invoices/:id/
// Only drafts can be changed; anything else is 403.
func (h *Handler) UpdateInvoice(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id := c.Param("id")

	// A non-draft is refused before the body is validated.
	current, err := h.store.Invoice(actor.ID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errInvoiceNotFound})
		return
	}
	if !current.Editable() {
		c.JSON(http.StatusForbidden, gin.H{"error": errInvoiceNotEditable})
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}

	updated, err := h.store.UpdateInvoice(actor, id, req.invoice())
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errInvoiceNotFound})
	case errors.Is(err, domain.ErrInvoiceNotEditable):
		c.JSON(http.StatusForbidden, gin.H{"error": errInvoiceNotEditable})
	case err != nil:
		h.internal(c, "update invoice", err)
	default:
		h.logger.InfoContext(c.Request.Context(), "invoice updated", "invoice_id", id, "status", updated.Status)
		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /api/invoices/:id/
func (h *Handler) DeleteInvoice(c *gin.Context) {
	err := h.store.DeleteInvoice(c.GetString(userIDKey), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errInvoiceNotFound})
	case errors.Is(err, errInvoiceDeleteDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": errInvoiceNotDeletable})
	case err != nil:
		h.internal(c, "delete invoice", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

// GET /api/invoices/:id/audit-log/
func (h *Handler) AuditLog(c *gin.Context) {
	entries, err := h.store.AuditLog(c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errInvoiceNotFound})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) actor(c *gin.Context) (*domain.User, bool) {
	u, err := h.store.User(c.GetString(userIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return nil, false
	}
	return u, true
}
