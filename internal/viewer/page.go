package viewer

import (
	"embed"
	"html/template"
	"net/http"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/output"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

func renderPage(w http.ResponseWriter, r *output.Report) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return pageTemplates.ExecuteTemplate(w, "report.html.tmpl", r)
}

func renderMissing(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(StatusOf(reperrors.CodeOf(err)))
	_ = pageTemplates.ExecuteTemplate(w, "missing.html.tmpl", err.Error())
}
