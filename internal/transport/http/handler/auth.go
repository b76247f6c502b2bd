package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/middleware"
	"github.com/ErlanBelekov/invoice-console/internal/usecase"
	"github.com/gin-gonic/gin"
)

// sessionUsecaser is the subset of SessionUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type sessionUsecaser interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, input usecase.RegisterInput) error
	Logout(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	sessions sessionUsecaser
	cookie   middleware.Cookie
	logger   *slog.Logger
}

func NewAuthHandler(sessions sessionUsecaser, cookie middleware.Cookie, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		cookie:   cookie,
		logger:   logger.With("component", "auth_handler"),
	}
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type registerForm struct {
	Name      string `form:"name" binding:"required,max=150"`
	Email     string `form:"email" binding:"required,email"`
	Password1 string `form:"password1" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	p := page{Title: "Log in", Focus: "email", Data: loginForm{Next: c.Query("next")}}
	if c.Query("registered") == "true" {
		p.succeed(msgRegistered)
	}
	render(c, http.StatusOK, "login.html", p)
}

// POST /login
// On success the session cookie is set and the user lands on ?next or the
// dashboard.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		errs, first := formErrors(err, &form)
		p := page{Title: "Log in", Errors: errs, Focus: first, Data: loginForm{Email: form.Email, Next: form.Next}}
		p.Status = statusError
		render(c, http.StatusBadRequest, "login.html", p)
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		p := page{Title: "Log in", Focus: "password", Data: loginForm{Email: form.Email, Next: form.Next}}
		failForm(c, h.logger, err, "login.html", p)
		return
	}

	h.cookie.Set(c, s)
	c.Redirect(http.StatusSeeOther, safeNext(form.Next, "/dashboard"))
}

// GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", page{Title: "Register", Focus: "name", Data: registerForm{}})
}

// POST /register
// Registration does not sign the user in; they are sent to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		errs, first := formErrors(err, &form)
		p := page{Title: "Register", Errors: errs, Focus: first, Data: registerForm{Name: form.Name, Email: form.Email}}
		p.Status = statusError
		render(c, http.StatusBadRequest, "register.html", p)
		return
	}

	err := h.sessions.Register(c.Request.Context(), usecase.RegisterInput{
		Name:      form.Name,
		Email:     form.Email,
		Password1: form.Password1,
		Password2: form.Password2,
	})
	if err != nil {
		p := page{Title: "Register", Focus: "email", Data: registerForm{Name: form.Name, Email: form.Email}}
		failForm(c, h.logger, err, "register.html", p)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?registered=true")
}

// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if id, err := c.Cookie(h.cookie.Name); err == nil && id != "" {
		if err := h.sessions.Logout(c.Request.Context(), id); err != nil {
			h.logger.ErrorContext(c.Request.Context(), "logout", "error", err)
		}
	}
	h.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
