package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/rs/zerolog/log"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title       string
	CurrentUser string
	Data        any
	Errors      viewmodels.FieldErrors
}

// Renderer renders pages by name, e.g. "teams/index".
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(viewmodels.DateLayout)
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
	"derefStr": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"isSelected": func(selected *int, id int) bool {
		return selected != nil && *selected == id
	},
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || path.Ext(p) != ".html" {
			return nil
		}
		tmpl, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(templateFS, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		log.Ctx(req.Context()).Error().Str("template", name).Msg("template not found")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		log.Ctx(req.Context()).Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Ctx(req.Context()).Debug().Err(err).Msg("failed to write response")
	}
}

// Has reports whether a page template with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
