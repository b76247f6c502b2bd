package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

const (
	errInternalServer    = "Something went wrong. Please try again."
	errUpstreamTimeout   = "The server took too long to respond. Please try again."
	errInvalidLogin      = "Invalid email or password"
	errPasswordMismatch  = "Passwords do not match"
	errPasswordTooShort  = "Password must be at least 6 characters"
	errInvoiceNotFound   = "Invoice not found"
	errInvoiceNotEdit    = "Only draft invoices can be edited"
	errInvalidStatus     = "Invoices can only be saved as draft or sent"
	errNoLineItems       = "Add at least one line item"
	errNoClientEmail     = "This invoice has no client email"
	errAvatarTooLarge    = "Avatar must be 5 MB or smaller"
	errInvalidDate       = "Enter a date as YYYY-MM-DD"
	errDueBeforeIssue    = "Due date cannot be before the issue date"
	errFieldRequired     = "This field is required"
	errFieldEmail        = "Enter a valid email address"
	errFieldInvalid      = "This value is invalid"
	msgRegistered        = "Account created. Please log in."
	msgProfileSaved      = "Profile updated"
	msgInvoiceCreated    = "Invoice created"
	msgInvoiceSaved      = "Invoice saved"
	msgInvoiceSent       = "Invoice emailed to the client"
	msgInvoiceDeleted    = "Invoice deleted"
	titleNotFound        = "Page not found"
	titleSomethingFailed = "Something went wrong"
)

// userMessage turns an error from the usecases into the sentence shown on
// the page. API errors carry their own explanation.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return errInvalidLogin
	case errors.Is(err, domain.ErrPasswordMismatch):
		return errPasswordMismatch
	case errors.Is(err, domain.ErrPasswordTooShort):
		return errPasswordTooShort
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return errInvoiceNotFound
	case errors.Is(err, domain.ErrInvoiceNotEditable):
		return errInvoiceNotEdit
	case errors.Is(err, domain.ErrInvalidStatus):
		return errInvalidStatus
	case errors.Is(err, domain.ErrNoLineItems):
		return errNoLineItems
	case errors.Is(err, domain.ErrNoClientEmail):
		return errNoClientEmail
	case errors.Is(err, context.DeadlineExceeded):
		return errUpstreamTimeout
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.StatusCode < http.StatusInternalServerError {
		return apiErr.Message
	}
	return errInternalServer
}

// statusFor picks the response code for a failed page.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvoiceNotEditable):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNoLineItems),
		errors.Is(err, domain.ErrNoClientEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if code := apiclient.StatusCode(err); code != 0 {
		if code >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
		return code
	}
	return http.StatusInternalServerError
}
