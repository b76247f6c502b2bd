package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type reportUsecaser interface {
	Dashboard(ctx context.Context) (usecase.Dashboard, error)
	Analytics(ctx context.Context) (domain.Analytics, error)
}

type ReportHandler struct {
	reports reportUsecaser
	logger  *slog.Logger
}

func NewReportHandler(reports reportUsecaser, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger.With("component", "report_handler"),
	}
}

// bar is one row of a horizontal chart. Percent is relative to the largest
// value in its chart.
type bar struct {
	Label   string
	Value   decimal.Decimal
	Percent int
}

type statusCount struct {
	Status domain.Status
	Count  int
}

type analyticsView struct {
	Analytics domain.Analytics
	Months    []bar
	Clients   []bar
	Statuses  []statusCount
}

// GET /dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		failPage(c, h.logger, err)
		return
	}
	render(c, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Nav: "dashboard", Data: d})
}

// GET /analytics
func (h *ReportHandler) Analytics(c *gin.Context) {
	a, err := h.reports.Analytics(c.Request.Context())
	if err != nil {
		failPage(c, h.logger, err)
		return
	}
	render(c, http.StatusOK, "analytics.html", page{Title: "Analytics", Nav: "analytics", Data: newAnalyticsView(a)})
}

func newAnalyticsView(a domain.Analytics) analyticsView {
	view := analyticsView{Analytics: a}

	for _, m := range a.RevenueByMonth {
		view.Months = append(view.Months, bar{Label: m.Label, Value: m.Revenue})
	}
	for _, cl := range a.TopClients {
		view.Clients = append(view.Clients, bar{Label: cl.Name, Value: cl.Revenue})
	}
	scale(view.Months)
	scale(view.Clients)

	for _, s := range domain.Statuses {
		view.Statuses = append(view.Statuses, statusCount{Status: s, Count: a.StatusCounts[s]})
	}
	return view
}

func scale(bars []bar) {
	top := decimal.Zero
	for _, b := range bars {
		if b.Value.GreaterThan(top) {
			top = b.Value
		}
	}
	if top.IsZero() {
		return
	}
	hundred := decimal.NewFromInt(100)
	for i := range bars {
		bars[i].Percent = int(bars[i].Value.Mul(hundred).Div(top).Round(0).IntPart())
	}
}
