package app

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/simp-lee/clientes/internal/pkg"
)

const (
	templateRoot = "templates"

	// fragmentSep separates a page from one of its blocks in a render name:
	// "cliente/list.html#cliente_table" executes only the cliente_table block
	// with the page's template set. htmx swaps use it to re-render part of a
	// page without a second template file.
	fragmentSep = "#"
)

// TemplateRenderer is the gin HTML renderer for the admin pages.
//
// Every page under templates/ (outside layouts/ and partials/) is compiled
// into its own set: layouts and partials first, then the page, so a page can
// fill the layout's "title" and "content" blocks and call any partial. Pages
// are addressed by their path relative to templates/, e.g. "cliente/form.html".
//
// In debug mode the sets are rebuilt on every render, so edits on disk show up
// without a restart. Otherwise they are compiled once by NewTemplateRenderer.
type TemplateRenderer struct {
	fs      fs.FS
	funcMap template.FuncMap
	debug   bool

	mu        sync.RWMutex
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a renderer over fsys, which must contain the
// templates/ directory: os.DirFS("web") while developing, web.EmbeddedFS in
// release builds.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		fs:      fsys,
		funcMap: templateFuncMap(),
		debug:   debug,
	}
	if debug {
		return r, nil
	}

	templates, err := r.parseAllTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.templates = templates
	return r, nil
}

// Instance implements render.HTMLRender. name is a page path, optionally
// followed by "#block" to render a single block of that page.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	page, block, _ := strings.Cut(name, fragmentSep)
	if block == "" {
		block = page
	}

	templates, err := r.lookupSet()
	if err != nil {
		return &HTMLInstance{Name: name, err: err}
	}
	return &HTMLInstance{Template: templates[page], Name: block, Data: data}
}

func (r *TemplateRenderer) lookupSet() (map[string]*template.Template, error) {
	if r.debug {
		return r.parseAllTemplates()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates, nil
}

// parseAllTemplates compiles one template set per page.
func (r *TemplateRenderer) parseAllTemplates() (map[string]*template.Template, error) {
	base, err := r.parseBase()
	if err != nil {
		return nil, err
	}

	pageFiles, err := r.discoverPageTemplates()
	if err != nil {
		return nil, fmt.Errorf("discover pages: %w", err)
	}

	templates := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := strings.TrimPrefix(file, templateRoot+"/")
		set, err := r.compilePage(base, file, name)
		if err != nil {
			return nil, err
		}
		templates[name] = set
	}
	return templates, nil
}

// parseBase parses layouts, then partials, into one set.
func (r *TemplateRenderer) parseBase() (*template.Template, error) {
	base := template.New("").Funcs(r.funcMap)
	for _, dir := range []string{"layouts", "partials"} {
		files, err := fs.Glob(r.fs, path.Join(templateRoot, dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		for _, f := range files {
			if err := r.parseInto(base, f, f); err != nil {
				return nil, err
			}
		}
	}
	return base, nil
}

func (r *TemplateRenderer) compilePage(base *template.Template, file, name string) (*template.Template, error) {
	set, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone base for %s: %w", file, err)
	}
	if err := r.parseInto(set, file, name); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *TemplateRenderer) parseInto(set *template.Template, file, name string) error {
	content, err := fs.ReadFile(r.fs, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := set.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}

// discoverPageTemplates lists the .html files under templates/ outside
// layouts/ and partials/.
func (r *TemplateRenderer) discoverPageTemplates() ([]string, error) {
	var pages []string
	err := fs.WalkDir(r.fs, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		switch strings.SplitN(strings.TrimPrefix(p, templateRoot+"/"), "/", 2)[0] {
		case "layouts", "partials":
			return nil
		}
		pages = append(pages, p)
		return nil
	})
	return pages, err
}

// templateFuncMap returns the default set of template helper functions.
func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// json marshals v to a JSON string and returns it as template.JS so it
		// can be embedded in hx-vals and hx-headers attributes.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},

		// formatDate formats an optional timestamp as "YYYY-MM-DD HH:MM"; nil renders as "-".
		"formatDate": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04")
		},

		// estadoLabel renders the active flag.
		"estadoLabel": func(active bool) string {
			if active {
				return "Activo"
			}
			return "Inactivo"
		},

		// pageURL returns the list URL for page n keeping sort and filters.
		"pageURL": func(q pkg.ListQuery, n int) string {
			return q.WithPage(n).URL(listPath)
		},

		// sortURL returns the list URL that asks the list to sort by field.
		"sortURL": func(q pkg.ListQuery, field string) string {
			return q.URL(listPath) + "&action=sort&field=" + url.QueryEscape(field)
		},

		// withQuery appends the list state to path so row actions can
		// re-render the same page.
		"withQuery": withQuery,
	}
}

const listPath = "/clientes"

func withQuery(path string, q pkg.ListQuery) string {
	return q.URL(path)
}

// HTMLInstance executes one template of a page set.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error // parse failure in debug mode
}

const htmlContentType = "text/html; charset=utf-8"

func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	switch {
	case h.err != nil:
		return h.err
	case h.Template == nil:
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if len(header["Content-Type"]) == 0 {
		header["Content-Type"] = []string{htmlContentType}
	}
}
