// Package swagger serves the OpenAPI description of the HTTP API.
package swagger

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
	ErrParse = errors.New("openapi parse failed")
)

// Endpoint is one documented operation.
type Endpoint struct {
	Method  string
	Path    string
	Summary string
}

type document struct {
	Info struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]struct {
		Summary string `yaml:"summary"`
	} `yaml:"paths"`
}

// Endpoints lists the operations in spec sorted by path, then method.
func Endpoints(spec []byte) (title string, endpoints []Endpoint, err error) {
	var doc document
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for path, ops := range doc.Paths {
		for method, op := range ops {
			endpoints = append(endpoints, Endpoint{
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	return strings.TrimSpace(doc.Info.Title + " " + doc.Info.Version), endpoints, nil
}

// Register attaches the OpenAPI routes to mux.
// Routes:
//
//	GET /openapi.yaml -> embedded OpenAPI spec
//	GET /api-docs     -> endpoint index rendered from the spec
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	title, endpoints, err := Endpoints(OpenAPI)

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, fmt.Errorf("%w: %w", ErrServe, err).Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = indexTemplate.Execute(w, struct {
			Title     string
			Endpoints []Endpoint
		}{title, endpoints})
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>body{font-family:system-ui,sans-serif;margin:2rem}td{padding:.25rem 1rem .25rem 0}code{font-weight:600}</style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <p>Full description: <a href="/openapi.yaml">openapi.yaml</a></p>
    <table>
      {{range .Endpoints}}<tr><td><code>{{.Method}}</code></td><td>{{.Path}}</td><td>{{.Summary}}</td></tr>
      {{end}}
    </table>
  </body>
</html>`))
