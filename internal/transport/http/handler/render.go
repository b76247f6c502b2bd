package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// formStatus is the server-side state of a page's form. The browser adds a
// transient "loading" state while a submit is in flight.
type formStatus string

const (
	statusIdle    formStatus = "idle"
	statusSuccess formStatus = "success"
	statusError   formStatus = "error"
)

// page is the data every template receives.
type page struct {
	Title    string
	Nav      string
	SignedIn bool
	Status   formStatus
	Message  string
	// Errors maps a form field name to its message.
	Errors map[string]string
	// Focus names the field that gets autofocus.
	Focus string
	Data  any
}

func (p *page) fail(msg string) {
	p.Status = statusError
	p.Message = msg
}

func (p *page) succeed(msg string) {
	p.Status = statusSuccess
	p.Message = msg
}

func render(c *gin.Context, code int, name string, p page) {
	p.SignedIn = sessionctx.FromContext(c.Request.Context()) != nil
	if p.Status == "" {
		p.Status = statusIdle
	}
	c.HTML(code, name, p)
}

// failPage renders err on the shared error page. A lost session sends the
// user back to the login page instead.
func failPage(c *gin.Context, logger *slog.Logger, err error) {
	if redirectLoggedOut(c, err) {
		return
	}
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "page failed", "path", c.FullPath(), "error", err)
	}
	title := userMessage(err)
	switch {
	case code == http.StatusNotFound && !errors.Is(err, domain.ErrInvoiceNotFound):
		title = titleNotFound
	case title == "":
		title = titleSomethingFailed
	}
	render(c, code, "error.html", page{Title: title, Status: statusError})
}

// failForm re-renders a form page with err as its banner.
func failForm(c *gin.Context, logger *slog.Logger, err error, name string, p page) {
	if redirectLoggedOut(c, err) {
		return
	}
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "form submit failed", "path", c.FullPath(), "error", err)
	}
	p.fail(userMessage(err))
	render(c, code, name, p)
}

func redirectLoggedOut(c *gin.Context, err error) bool {
	if !errors.Is(err, domain.ErrLoggedOut) {
		return false
	}
	c.Redirect(http.StatusFound, "/login")
	return true
}

// formErrors maps binding failures onto the form's field names, in struct
// order, and reports the first invalid field. form must be a pointer to the
// struct that was bound.
func formErrors(err error, form any) (map[string]string, string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": errFieldInvalid}, ""
	}

	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make(map[string]string, len(verrs))
	first := ""
	for _, fe := range verrs {
		name := fe.StructField()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag, _, _ := strings.Cut(f.Tag.Get("form"), ","); tag != "" {
				name = tag
			}
		}
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = validationMessage(fe)
		if first == "" {
			first = name
		}
	}
	return out, first
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return errFieldRequired
	case "email":
		return errFieldEmail
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "eqfield":
		return errPasswordMismatch
	}
	return errFieldInvalid
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// NotFound renders the error page for unknown routes.
func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "error.html", page{Title: titleNotFound, Status: statusError})
}
