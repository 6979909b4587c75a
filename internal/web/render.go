package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

const titleSuffix = "MuttaqiLab | Premium Design Laboratory"

// pages holds one template set per page, each a clone of the shared
// layout with the page's own "content" block.
type pages map[string]*template.Template

var funcs = template.FuncMap{
	"date": func(ms int64) string {
		if ms == 0 {
			return ""
		}
		return time.UnixMilli(ms).UTC().Format("2006-01-02")
	},
	"stars": func(rating int) []bool {
		out := make([]bool, 5)
		for i := range out {
			out[i] = i < rating
		}
		return out
	},
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
	"lines": func(s []string) string { return strings.Join(s, "\n") },
	"has": func(list []string, v string) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	},
	"img":      imageSrc,
	"analysis": func(s string) template.HTML { return template.HTML(s) },
}

// imageSrc admits the two image reference forms the editor produces:
// web URLs and uploaded data URLs. Anything else renders as an empty src.
func imageSrc(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "/"):
		return template.URL(s)
	case strings.HasPrefix(s, "data:image/"):
		return template.URL(s)
	}
	return ""
}

func loadPages() (pages, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	out := make(pages, len(names))
	for _, name := range names {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return out, nil
}

// Instance implements gin's render.HTMLRender.
func (p pages) Instance(name string, data any) render.Render {
	return render.HTML{Template: p[name], Name: "layout", Data: data}
}
