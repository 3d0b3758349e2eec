// Package meta renders the HTML head documents served to link-preview
// crawlers and used as the meta-image fallback.
package meta

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"

	lens "github.com/anatolykoptev/go-lenster"
)

// Defaults applied to empty fields.
const (
	DefaultTitle       = "Lenster"
	DefaultDescription = "Lenster is a composable, decentralized, and permissionless social media web app built with Lens 🌿"
	DefaultImage       = "https://assets.lenster.xyz/images/og/logo.jpeg"
	DefaultType        = "website"
	TwitterSite        = "@lensterxyz"
)

// Meta is the set of tags for one page.
type Meta struct {
	Title       string
	Description string
	Image       string
	URL         string
	Type        string
}

// WithDefaults fills empty fields with the generic Lenster values.
func (m Meta) WithDefaults() Meta {
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Description == "" {
		m.Description = DefaultDescription
	}
	if m.Image == "" {
		m.Image = DefaultImage
	}
	if m.Type == "" {
		m.Type = DefaultType
	}
	return m
}

var page = template.Must(template.New("meta").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:image" content="{{.Image}}">
<meta property="og:type" content="{{.Type}}">
{{- if .URL}}
<meta property="og:url" content="{{.URL}}">
{{- end}}
<meta property="og:site_name" content="Lenster">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:site" content="{{.Site}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:image" content="{{.Image}}">
</head>
<body></body>
</html>
`))

var minifier = func() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	return m
}()

// Generate renders a full, minified HTML document for m.
func Generate(m Meta) []byte {
	m = m.WithDefaults()
	var buf bytes.Buffer
	data := struct {
		Meta
		Site string
	}{m, TwitterSite}
	if err := page.Execute(&buf, data); err != nil {
		slog.Error("render meta", slog.Any("error", err))
		return nil
	}
	out, err := minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		slog.Warn("meta minify failed", slog.Any("error", err))
		return buf.Bytes()
	}
	return out
}

var fallback = sync.OnceValue(func() []byte { return Generate(Meta{}) })

// Fallback returns the generic Lenster meta document.
func Fallback() []byte {
	return fallback()
}

// ForProfile returns the tags describing a profile page.
func ForProfile(p *lens.Profile, imageURL string) Meta {
	return Meta{
		Title:       fmt.Sprintf("%s (@%s) • Lenster", p.DisplayName(), p.Handle),
		Description: p.Bio,
		Image:       imageURL,
		Type:        "profile",
	}
}
