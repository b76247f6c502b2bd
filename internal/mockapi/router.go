package mockapi

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

// NewRouter mounts the REST contract consumed by the console.
func NewRouter(logger *slog.Logger, h *Handler, hmacKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})
	r.GET("/media/avatars/:name", h.Avatar)

	auth := r.Group("/api/auth")
	auth.POST("/register/", h.Register)
	auth.POST("/login/", h.Login)
	auth.POST("/token/refresh/", h.RefreshToken)
	auth.POST("/logout/", h.Logout)
	auth.POST("/edit/", Bearer(hmacKey), h.EditProfile)
	auth.GET("/:id/", h.UserDetail)

	invoices := r.Group("/api/invoices", Bearer(hmacKey))
	invoices.GET("/", h.ListInvoices)
	invoices.POST("/", h.CreateInvoice)
	invoices.GET("/:id/", h.GetInvoice)
	invoices.PUT("/:id/", h.UpdateInvoice)
	invoices.DELETE("/:id/", h.DeleteInvoice)
	invoices.GET("/:id/audit-log/", h.AuditLog)

	return r
}
