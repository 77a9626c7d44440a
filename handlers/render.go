package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/ui"
)

var templateFuncs = template.FuncMap{
	"statusClass": func(status string) string {
		return "status-" + strings.ToLower(strings.ReplaceAll(status, " ", "-"))
	},
}

// parseTemplates builds one template set per page, each layered on base.html.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(ui.Files, "html/*.html")
	if err != nil {
		return nil, err
	}
	cache := make(map[string]*template.Template)
	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		ts, err := template.New("base.html").Funcs(templateFuncs).ParseFS(ui.Files, "html/base.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		cache[name] = ts
	}
	return cache, nil
}

// render executes a page into a buffer first so a template error never leaves
// a half written response behind.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	ts, ok := a.templates[page]
	if !ok {
		a.serverError(w, r, fmt.Errorf("template %s does not exist", page))
		return
	}

	s := currentSession(r)
	pd := models.PageData{
		Title:      title,
		CSRFtoken:  s.CSRFToken,
		IsLoggedIn: s.IsAuthenticated(),
		UserName:   s.Name,
		Role:       s.Role,
		Data:       data,
	}
	if len(s.Flashes) > 0 {
		pd.Flashes = s.PopFlashes()
		if err := a.sessions.Save(r.Context(), s); err != nil {
			a.logger.Warn("clear flashes", zap.Error(err))
		}
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base.html", pd); err != nil {
		a.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("request failed",
		zap.String("request_id", requestID(r)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// flash queues a notice for the next rendered page.
func (a *App) flash(r *http.Request, category, message string) {
	s := currentSession(r)
	s.AddFlash(category, message)
	if err := a.sessions.Save(r.Context(), s); err != nil {
		a.logger.Warn("save flash", zap.Error(err))
	}
}

func (a *App) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
