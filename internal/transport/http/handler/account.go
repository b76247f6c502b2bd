package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 5 << 20

type accountUsecaser interface {
	Profile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
}

type AccountHandler struct {
	accounts accountUsecaser
	logger   *slog.Logger
}

func NewAccountHandler(accounts accountUsecaser, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

type accountForm struct {
	Name               string `form:"name" binding:"required,max=150"`
	Description        string `form:"description"`
	BusinessName       string `form:"business_name"`
	VATNumber          string `form:"vat_number"`
	RegistrationNumber string `form:"registration_number"`
	Address            string `form:"address"`
	City               string `form:"city"`
	PostalCode         string `form:"postal_code"`
	Country            string `form:"country"`
	Phone              string `form:"phone"`
}

type accountView struct {
	User *domain.User
}

// GET /account
func (h *AccountHandler) Show(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context())
	if err != nil {
		failPage(c, h.logger, err)
		return
	}
	p := page{Title: "Account", Nav: "account", Data: accountView{User: user}}
	if c.Query("saved") == "1" {
		p.succeed(msgProfileSaved)
	}
	render(c, http.StatusOK, "account.html", p)
}

// POST /account
// Multipart form. Leaving the avatar input empty keeps the current avatar.
func (h *AccountHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var form accountForm
	if err := c.ShouldBind(&form); err != nil {
		errs, first := formErrors(err, &form)
		p := page{Title: "Account", Nav: "account", Errors: errs, Focus: first, Data: accountView{User: h.draft(ctx, form)}}
		p.Status = statusError
		render(c, http.StatusBadRequest, "account.html", p)
		return
	}

	avatar, err := readAvatar(c)
	if err != nil {
		p := page{Title: "Account", Nav: "account", Errors: map[string]string{"avatar": errAvatarTooLarge}, Data: accountView{User: h.draft(ctx, form)}}
		p.fail(errAvatarTooLarge)
		render(c, http.StatusBadRequest, "account.html", p)
		return
	}

	_, err = h.accounts.UpdateProfile(ctx, domain.ProfileUpdate{
		Name:               form.Name,
		Description:        form.Description,
		BusinessName:       form.BusinessName,
		VATNumber:          form.VATNumber,
		RegistrationNumber: form.RegistrationNumber,
		Address:            form.Address,
		City:               form.City,
		PostalCode:         form.PostalCode,
		Country:            form.Country,
		Phone:              form.Phone,
		Avatar:             avatar,
	})
	if err != nil {
		failForm(c, h.logger, err, "account.html", page{Title: "Account", Nav: "account", Data: accountView{User: h.draft(ctx, form)}})
		return
	}

	c.Redirect(http.StatusSeeOther, "/account?saved=1")
}

// draft is the submitted profile for re-rendering a rejected form. Email and
// avatar come from the stored profile when it can be loaded.
func (h *AccountHandler) draft(ctx context.Context, form accountForm) *domain.User {
	u := &domain.User{}
	if stored, err := h.accounts.Profile(ctx); err == nil {
		u.ID, u.Email, u.AvatarURL = stored.ID, stored.Email, stored.AvatarURL
	}
	u.Name = form.Name
	u.Description = form.Description
	u.BusinessName = form.BusinessName
	u.VATNumber = form.VATNumber
	u.RegistrationNumber = form.RegistrationNumber
	u.Address = form.Address
	u.City = form.City
	u.PostalCode = form.PostalCode
	u.Country = form.Country
	u.Phone = form.Phone
	return u
}

// readAvatar returns nil when no file was chosen.
func readAvatar(c *gin.Context) (*domain.Upload, error) {
	fh, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if fh.Size > maxAvatarBytes {
		return nil, fmt.Errorf("avatar is %d bytes", fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open avatar: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("avatar exceeds %d bytes", maxAvatarBytes)
	}
	return &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
