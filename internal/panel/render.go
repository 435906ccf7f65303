package panel

import (
	"embed"
	"html/template"
	"io"
	"io/fs"

	"pagsusi/internal/anomaly"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var tmpl = template.Must(template.New("panel").Funcs(template.FuncMap{
	"legend":         Legend,
	"legendGradient": LegendGradient,
}).ParseFS(templatesFS, "templates/*.tmpl"))

// RenderList writes the sidebar list with the given ids highlighted.
func RenderList(w io.Writer, records []anomaly.Record, selectedIDs []int) error {
	return tmpl.ExecuteTemplate(w, "list", NewList(records, selectedIDs))
}

// RenderPopup writes the popup, or nothing when v is closed.
func RenderPopup(w io.Writer, v PopupView) error {
	return tmpl.ExecuteTemplate(w, "popup", v)
}

// RenderLegend writes the severity legend.
func RenderLegend(w io.Writer) error {
	return tmpl.ExecuteTemplate(w, "legend", nil)
}

// RenderMethodology writes the methodology sheet.
func RenderMethodology(w io.Writer, m Methodology) error {
	return tmpl.ExecuteTemplate(w, "methodology", m)
}

// RenderPage writes the whole dashboard document.
func RenderPage(w io.Writer, p Page) error {
	if p.Method.Title == "" {
		p.Method = DefaultMethodology
	}
	return tmpl.ExecuteTemplate(w, "page", p)
}

// Static is the browser glue served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
