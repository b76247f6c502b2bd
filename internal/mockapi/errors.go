package mockapi

const (
	errInternalServer      = "Internal server error"
	errUnauthorized        = "Unauthorized"
	errTokenExpired        = "Given token not valid for any token type"
	errTokenBlacklisted    = "Token is blacklisted"
	errInvalidLogin        = "Invalid email or password"
	errUserNotFound        = "User not found"
	errInvoiceNotFound     = "Invoice not found"
	errInvoiceNotEditable  = "Only draft invoices can be edited"
	errInvoiceNotDeletable = "Only draft invoices can be deleted"
	errEmailTaken          = "A user with that email already exists."
	errPasswordMismatch    = "The two password fields didn't match."
	errPasswordTooShort    = "This password is too short. It must contain at least 6 characters."
	errInvalidStatus       = "Status must be draft or sent"
	errNoLineItems         = "At least one line item is required"
	errAvatarNotFound      = "Avatar not found"
)
