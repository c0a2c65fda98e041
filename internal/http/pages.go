package http

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ciaraugasmoy/user-management-api/internal/logging"
	"github.com/ciaraugasmoy/user-management-api/templates"
)

// pageHandler serves the embedded HTML pages that exercise the API
// from a browser
type pageHandler struct {
	tmpl   *template.Template
	logger *logging.Logger
}

func newPageHandler(logger *logging.Logger) *pageHandler {
	return &pageHandler{
		tmpl:   template.Must(template.ParseFS(templates.PagesFS, "pages/*.html")),
		logger: logger,
	}
}

func (p *pageHandler) Register(w http.ResponseWriter, r *http.Request) {
	p.render(w, "register.html", nil)
}

func (p *pageHandler) Login(w http.ResponseWriter, r *http.Request) {
	p.render(w, "login.html", nil)
}

func (p *pageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p.render(w, "profile.html", map[string]string{
		"UserID": chi.URLParam(r, "userID"),
	})
}

func (p *pageHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.tmpl.ExecuteTemplate(w, name, data); err != nil {
		p.logger.Error("failed to render page", "page", name, "error", err.Error())
	}
}
