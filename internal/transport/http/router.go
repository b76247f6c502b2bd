package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/transport/http/handler"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/middleware"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/views"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// Handlers groups the page handlers mounted by NewRouter.
type Handlers struct {
	Auth     *handler.AuthHandler
	Account  *handler.AccountHandler
	Invoices *handler.InvoiceHandler
	Reports  *handler.ReportHandler
}

func NewRouter(logger *slog.Logger, h Handlers, sessions middleware.SessionLoader, cookie middleware.Cookie) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(views.Templates())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cookie.Secure))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Session(sessions, cookie, logger))

	r.NoRoute(handler.NotFound)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	guest := r.Group("", middleware.RedirectSignedIn("/dashboard"))
	guest.GET("/login", h.Auth.LoginPage)
	guest.POST("/login", h.Auth.Login)
	guest.GET("/register", h.Auth.RegisterPage)
	guest.POST("/register", h.Auth.Register)

	r.POST("/logout", h.Auth.Logout)

	// Signed-in pages
	app := r.Group("", middleware.RequireSession())
	app.GET("/dashboard", h.Reports.Dashboard)
	app.GET("/analytics", h.Reports.Analytics)
	app.GET("/account", h.Account.Show)
	app.POST("/account", h.Account.Update)

	invoices := app.Group("/invoices")
	invoices.GET("", h.Invoices.List)
	invoices.GET("/new", h.Invoices.New)
	invoices.POST("", h.Invoices.Create)
	invoices.GET("/:id", h.Invoices.Show)
	invoices.GET("/:id/edit", h.Invoices.Edit)
	invoices.POST("/:id/edit", h.Invoices.Update)
	invoices.POST("/:id/delete", h.Invoices.Delete)
	invoices.POST("/:id/send", h.Invoices.Send)
	invoices.GET("/:id/pdf", h.Invoices.PDF)

	return r
}
