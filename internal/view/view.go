// Package view holds the HTML templates rendered by the handlers.
package view

import (
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

const dateLayout = "2006-01-02"

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format(dateLayout)
	},
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"field": func(fields map[string]string, name string) string {
		return fields[name]
	},
}

// Parse parses the embedded templates. Each template is named after its file.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templatesFS, "templates/*.html")
}

// Load installs the templates into the gin engine.
func Load(engine *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}

	engine.SetHTMLTemplate(tmpl)

	return nil
}
