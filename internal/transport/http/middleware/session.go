package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
	"github.com/gin-gonic/gin"
)

const errSessionUnavailable = "Session store unavailable"

// SessionLoader resolves a session id from the cookie.
type SessionLoader interface {
	Current(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Cookie describes the session cookie. It is always HttpOnly and SameSite=Lax.
type Cookie struct {
	Name   string
	Secure bool
}

// Set writes the cookie for s, expiring with its refresh token.
func (k Cookie) Set(c *gin.Context, s *domain.Session) {
	maxAge := int(time.Until(s.RefreshExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.Name, s.ID, maxAge, "/", "", k.Secure, true)
}

func (k Cookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(k.Name, "", -1, "/", "", k.Secure, true)
}

// Session attaches the caller's session to the request context when the
// cookie names a usable one. A stale cookie is cleared. Requests without a
// session continue anonymously; RequireSession decides what they may see.
func Session(loader SessionLoader, cookie Cookie, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.Name)
		if err != nil || id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		s, err := loader.Current(ctx, id)
		switch {
		case errors.Is(err, domain.ErrLoggedOut):
			cookie.Clear(c)
		case err != nil:
			logger.ErrorContext(ctx, "load session", "error", err)
			c.String(http.StatusServiceUnavailable, errSessionUnavailable)
			c.Abort()
			return
		default:
			c.Request = c.Request.WithContext(sessionctx.With(ctx, s))
		}
		c.Next()
	}
}

// RequireSession sends anonymous visitors to the login page. GET requests
// carry their own location as ?next so the user lands back after login.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionctx.FromContext(c.Request.Context()) != nil {
			c.Next()
			return
		}
		target := "/login"
		if c.Request.Method == http.MethodGet {
			target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// RedirectSignedIn keeps signed-in users off the login and register pages.
func RedirectSignedIn(to string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionctx.FromContext(c.Request.Context()) != nil {
			c.Redirect(http.StatusFound, to)
			c.Abort()
			return
		}
		c.Next()
	}
}
