// Package views holds the console's HTML templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page. Pages are addressed by file name, e.g.
// "invoices.html".
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html"))
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":     money,
		"date":      formatDate,
		"timestamp": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"title":     func(v any) string { return titleCase(fmt.Sprint(v)) },
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatDate(d domain.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("Jan 2, 2006")
}

// titleCase turns "status_changed" into "Status changed".
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "_", " ")
}
