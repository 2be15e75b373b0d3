package render

import (
	"embed"
	"html/template"
	"io"
	"time"
)

//go:embed templates/map.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/map.html"))

const DefaultTitle = "ResourceFinda"

// Page is the data behind the map page. ReloadURL is empty for static snapshots, which
// hides the retry button.
type Page struct {
	Title       string
	View        View
	Error       string
	ReloadURL   string
	GeneratedAt time.Time
}

// HTML writes the map page for p.
func HTML(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = time.Now().UTC()
	}
	return pageTemplate.ExecuteTemplate(w, "map.html", p)
}
