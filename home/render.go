package home

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("root").Funcs(template.FuncMap{
	"comma":   func(n int) string { return humanize.Comma(int64(n)) },
	"ago":     humanize.Time,
	"rfc3339": func(t time.Time) string { return t.Format(time.RFC3339) },
}).ParseFS(templateFS, "templates/*.html"))

// Render writes the page as HTML. Nothing is written on error.
func Render(w io.Writer, p Page) error {
	p.Meta = p.Meta.WithDefaults()
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("render home: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
