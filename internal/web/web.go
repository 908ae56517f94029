// Package web embeds the HTML templates and static assets served by the portal.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Fragments lists the page fragments that may be loaded by name.
var Fragments = map[string]string{
	"home":     "fragment_home",
	"about_us": "fragment_about_us",
	"contacts": "fragment_contacts",
}

// Templates parses every embedded template.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs()).ParseFS(templateFS, "templates/*.html"))
}

// Static returns the embedded static assets rooted at static/.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"displayName": func(fullName, username string) string {
			if strings.TrimSpace(fullName) != "" {
				return fullName
			}
			return username
		},
	}
}
