package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// blankItemRows is how many empty line item rows a form offers below the
// filled ones.
const blankItemRows = 2

type invoiceUsecaser interface {
	List(ctx context.Context, status, query string) (usecase.InvoiceList, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	AuditLog(ctx context.Context, id string) ([]domain.AuditLogEntry, error)
	Create(ctx context.Context, input usecase.InvoiceInput) (*domain.Invoice, error)
	Update(ctx context.Context, id string, input usecase.InvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	PDF(ctx context.Context, id string) ([]byte, string, error)
	Send(ctx context.Context, id string) (*domain.Invoice, error)
}

type InvoiceHandler struct {
	invoices invoiceUsecaser
	logger   *slog.Logger
}

func NewInvoiceHandler(invoices invoiceUsecaser, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		logger:   logger.With("component", "invoice_handler"),
	}
}

type itemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
}

func (r itemRow) blank() bool {
	return strings.TrimSpace(r.Description) == "" && strings.TrimSpace(r.Quantity) == "" && strings.TrimSpace(r.UnitPrice) == ""
}

// invoiceForm holds the submitted values as typed, so a rejected form is
// shown back unchanged. Line items arrive as parallel item_* arrays.
type invoiceForm struct {
	InvoiceNumber string    `form:"invoice_number" binding:"required,max=50"`
	ClientName    string    `form:"client_name" binding:"required,max=200"`
	ClientEmail   string    `form:"client_email" binding:"required,email"`
	ClientAddress string    `form:"client_address"`
	IssueDate     string    `form:"issue_date" binding:"required"`
	DueDate       string    `form:"due_date"`
	Notes         string    `form:"notes"`
	Status        string    `form:"status"`
	Items         []itemRow `form:"-"`
}

type listView struct {
	Invoices []domain.Invoice
	Shown    int
	Total    int
	Status   string
	Query    string
	Statuses []domain.Status
}

type formView struct {
	Heading  string
	Action   string
	Form     invoiceForm
	AuditLog []domain.AuditLogEntry
}

// GET /invoices?status=&q=
func (h *InvoiceHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", "all")
	query := strings.TrimSpace(c.Query("q"))

	list, err := h.invoices.List(c.Request.Context(), status, query)
	if err != nil {
		failPage(c, h.logger, err)
		return
	}

	p := page{Title: "Invoices", Nav: "invoices", Data: listView{
		Invoices: list.Invoices,
		Shown:    len(list.Invoices),
		Total:    list.Total,
		Status:   status,
		Query:    query,
		Statuses: domain.Statuses,
	}}
	if c.Query("deleted") == "1" {
		p.succeed(msgInvoiceDeleted)
	}
	render(c, http.StatusOK, "invoices.html", p)
}

// GET /invoices/new
func (h *InvoiceHandler) New(c *gin.Context) {
	form := invoiceForm{IssueDate: domain.Today().String(), Items: padRows(nil)}
	render(c, http.StatusOK, "invoice_form.html", page{
		Title: "New invoice",
		Nav:   "invoices",
		Focus: "invoice_number",
		Data:  formView{Heading: "New invoice", Action: "/invoices", Form: form},
	})
}

// POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	view := formView{Heading: "New invoice", Action: "/invoices"}
	input, ok := h.bindInvoice(c, view, "New invoice")
	if !ok {
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), input)
	if err != nil {
		view.Form = submitted(c)
		failForm(c, h.logger, err, "invoice_form.html", page{Title: "New invoice", Nav: "invoices", Data: view})
		return
	}

	c.Redirect(http.StatusSeeOther, "/invoices/"+inv.ID+"?created=1")
}

// GET /invoices/:id
func (h *InvoiceHandler) Show(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPage(c, h.logger, err)
		return
	}

	p := page{Title: "Invoice " + inv.InvoiceNumber, Nav: "invoices", Data: inv}
	switch {
	case c.Query("created") == "1":
		p.succeed(msgInvoiceCreated)
	case c.Query("saved") == "1":
		p.succeed(msgInvoiceSaved)
	case c.Query("sent") == "1":
		p.succeed(msgInvoiceSent)
	case c.Query("locked") == "1":
		p.fail(errInvoiceNotEdit)
	}
	render(c, http.StatusOK, "invoice.html", p)
}

// GET /invoices/:id/edit
// Only drafts have an edit form; anything else goes back to the detail page.
func (h *InvoiceHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	inv, err := h.invoices.Get(ctx, id)
	if err != nil {
		failPage(c, h.logger, err)
		return
	}
	if !inv.Editable() {
		c.Redirect(http.StatusFound, "/invoices/"+id+"?locked=1")
		return
	}

	view := h.editView(ctx, id)
	view.Form = formFrom(inv)
	render(c, http.StatusOK, "invoice_form.html", page{
		Title: "Edit " + inv.InvoiceNumber,
		Nav:   "invoices",
		Focus: "invoice_number",
		Data:  view,
	})
}

// POST /invoices/:id/edit
func (h *InvoiceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	view := h.editView(ctx, id)
	input, ok := h.bindInvoice(c, view, "Edit invoice")
	if !ok {
		return
	}

	_, err := h.invoices.Update(ctx, id, input)
	switch {
	case errors.Is(err, domain.ErrInvoiceNotEditable):
		c.Redirect(http.StatusSeeOther, "/invoices/"+id+"?locked=1")
		return
	case err != nil:
		view.Form = submitted(c)
		failForm(c, h.logger, err, "invoice_form.html", page{Title: "Edit invoice", Nav: "invoices", Data: view})
		return
	}

	c.Redirect(http.StatusSeeOther, "/invoices/"+id+"?saved=1")
}

// POST /invoices/:id/delete
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.invoices.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrInvoiceNotEditable):
		c.Redirect(http.StatusSeeOther, "/invoices/"+id+"?locked=1")
		return
	case err != nil:
		failPage(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/invoices?deleted=1")
}

// POST /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.invoices.Send(ctx, id); err != nil {
		inv, getErr := h.invoices.Get(ctx, id)
		if getErr != nil {
			failPage(c, h.logger, err)
			return
		}
		failForm(c, h.logger, err, "invoice.html", page{Title: "Invoice " + inv.InvoiceNumber, Nav: "invoices", Data: inv})
		return
	}
	c.Redirect(http.StatusSeeOther, "/invoices/"+id+"?sent=1")
}

// GET /invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *gin.Context) {
	doc, filename, err := h.invoices.PDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPage(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// editView loads the audit log shown under the edit form. A failed load only
// hides the history.
func (h *InvoiceHandler) editView(ctx context.Context, id string) formView {
	view := formView{Heading: "Edit invoice", Action: "/invoices/" + id + "/edit"}
	entries, err := h.invoices.AuditLog(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "load audit log", "invoice_id", id, "error", err)
		return view
	}
	view.AuditLog = entries
	return view
}

// bindInvoice validates the submitted form. On failure it renders the form
// with field errors and reports false.
func (h *InvoiceHandler) bindInvoice(c *gin.Context, view formView, title string) (usecase.InvoiceInput, bool) {
	var form invoiceForm
	errs := map[string]string{}
	first := ""
	if err := c.ShouldBind(&form); err != nil {
		errs, first = formErrors(err, &form)
	}
	form.Items = itemRows(c)

	input, parseErrs := parseInvoice(form)
	for _, field := range []string{"issue_date", "due_date", "items"} {
		if msg, ok := parseErrs[field]; ok {
			if _, dup := errs[field]; !dup {
				errs[field] = msg
			}
			if first == "" {
				first = field
			}
		}
	}
	if len(errs) == 0 {
		return input, true
	}

	view.Form = form
	view.Form.Items = padRows(form.Items)
	p := page{Title: title, Nav: "invoices", Errors: errs, Focus: first, Data: view}
	p.Status = statusError
	render(c, http.StatusBadRequest, "invoice_form.html", p)
	return usecase.InvoiceInput{}, false
}

func parseInvoice(form invoiceForm) (usecase.InvoiceInput, map[string]string) {
	errs := map[string]string{}
	input := usecase.InvoiceInput{
		InvoiceNumber: form.InvoiceNumber,
		ClientName:    form.ClientName,
		ClientEmail:   form.ClientEmail,
		ClientAddress: form.ClientAddress,
		Notes:         form.Notes,
		Status:        domain.Status(form.Status),
	}
	if input.Status == "" {
		input.Status = domain.StatusDraft
	}

	var err error
	if input.IssueDate, err = domain.ParseDate(strings.TrimSpace(form.IssueDate)); err != nil {
		errs["issue_date"] = errInvalidDate
	}
	if input.DueDate, err = domain.ParseDate(strings.TrimSpace(form.DueDate)); err != nil {
		errs["due_date"] = errInvalidDate
	} else if !input.DueDate.IsZero() && input.DueDate.Before(input.IssueDate.Time) {
		errs["due_date"] = errDueBeforeIssue
	}

	for i, row := range form.Items {
		if row.blank() {
			continue
		}
		item, msg := parseItem(row)
		if msg != "" {
			errs["items"] = fmt.Sprintf("Line %d: %s", i+1, msg)
			break
		}
		input.Items = append(input.Items, item)
	}
	if _, bad := errs["items"]; !bad && len(input.Items) == 0 {
		errs["items"] = errNoLineItems
	}
	return input, errs
}

func parseItem(row itemRow) (usecase.LineItemInput, string) {
	item := usecase.LineItemInput{Description: strings.TrimSpace(row.Description)}
	if item.Description == "" {
		return item, "description is required"
	}

	qty, err := strconv.Atoi(strings.TrimSpace(row.Quantity))
	if err != nil || qty < 1 {
		return item, "quantity must be a whole number of at least 1"
	}
	item.Quantity = qty

	price, err := decimal.NewFromString(strings.TrimSpace(row.UnitPrice))
	if err != nil || price.IsNegative() {
		return item, "unit price must be a positive amount"
	}
	item.UnitPrice = price
	return item, ""
}

// itemRows zips the item_* arrays into rows, in submission order.
func itemRows(c *gin.Context) []itemRow {
	desc := c.PostFormArray("item_description")
	qty := c.PostFormArray("item_quantity")
	price := c.PostFormArray("item_unit_price")

	n := max(len(desc), len(qty), len(price))
	rows := make([]itemRow, n)
	for i := range rows {
		rows[i] = itemRow{Description: at(desc, i), Quantity: at(qty, i), UnitPrice: at(price, i)}
	}
	return rows
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// submitted re-reads a bound form for re-rendering after an API failure.
func submitted(c *gin.Context) invoiceForm {
	var form invoiceForm
	_ = c.ShouldBind(&form)
	form.Items = padRows(itemRows(c))
	return form
}

func formFrom(inv *domain.Invoice) invoiceForm {
	form := invoiceForm{
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
		IssueDate:     inv.IssueDate.String(),
		DueDate:       inv.DueDate.String(),
		Notes:         inv.Notes,
		Status:        string(inv.Status),
	}
	rows := make([]itemRow, 0, len(inv.Items))
	for _, it := range inv.Items {
		rows = append(rows, itemRow{
			Description: it.Description,
			Quantity:    strconv.Itoa(it.Quantity),
			UnitPrice:   it.UnitPrice.StringFixed(2),
		})
	}
	form.Items = padRows(rows)
	return form
}

// padRows drops trailing blank rows and appends blankItemRows fresh ones.
func padRows(rows []itemRow) []itemRow {
	for len(rows) > 0 && rows[len(rows)-1].blank() {
		rows = rows[:len(rows)-1]
	}
	for range blankItemRows {
		rows = append(rows, itemRow{})
	}
	if len(rows) < blankItemRows+1 {
		rows = append(rows, itemRow{})
	}
	return rows
}
