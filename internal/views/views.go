// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ayush/vipauth/internal/models"
)

const (
	Index      = "index"
	Error      = "error"
	Signup     = "auth/signup"
	Login      = "auth/login"
	Profile    = "users/user-profile"
	VIPMain    = "vip/main"
	VIPPrivate = "vip/private"
)

var pageTitles = map[string]string{
	Index:      "Home",
	Error:      "Error",
	Signup:     "Sign up",
	Login:      "Log in",
	Profile:    "Profile",
	VIPMain:    "Main",
	VIPPrivate: "Private",
}

//go:embed templates
var templateFS embed.FS

// Page is the data every view receives.
type Page struct {
	Title        string
	ErrorMessage string
	Username     string       // value echoed back into a form
	User         *models.User // session user, nil when anonymous
}

// Renderer executes named views.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every view against the shared layout.
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageTitles))
	for name := range pageTitles {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes view name with status. The page is executed into a buffer
// first so a template failure never leaves a half-written response.
func (v *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	if page.Title == "" {
		page.Title = pageTitles[name]
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
