package swagger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
)

// RedocCDN is the default ReDoc bundle loaded by the docs page.
const RedocCDN = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// Option customises the served document and page.
type Option func(*docs)

type docs struct {
	version  string
	server   string
	redocURL string
}

// WithVersion replaces info.version with the build version.
func WithVersion(v string) Option {
	return func(d *docs) {
		d.version = v
	}
}

// WithServerURL replaces the servers list with a single entry.
func WithServerURL(u string) Option {
	return func(d *docs) {
		d.server = u
	}
}

// WithRedocURL loads ReDoc from u instead of the CDN, e.g. a self-hosted copy.
func WithRedocURL(u string) Option {
	return func(d *docs) {
		if u != "" {
			d.redocURL = u
		}
	}
}

// Register attaches the ReDoc page and the OpenAPI document to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> OpenAPI document
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	d := docs{redocURL: RedocCDN}
	for _, opt := range opts {
		opt(&d)
	}

	doc, err := Document(opts...)
	if err != nil {
		doc = OpenAPI
	}
	page, err := renderIndex(d.redocURL)
	if err != nil {
		panic(err)
	}

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(doc)
	})
}

// Document returns the embedded OpenAPI document with the options applied.
func Document(opts ...Option) ([]byte, error) {
	var d docs
	for _, opt := range opts {
		opt(&d)
	}
	if d.version == "" && d.server == "" {
		return OpenAPI, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(OpenAPI, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrServe)
	}
	top := root.Content[0]

	if d.version != "" {
		info := lookup(top, "info")
		if info == nil || info.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: missing info", ErrServe)
		}
		setScalar(info, "version", d.version)
	}
	if d.server != "" {
		var servers yaml.Node
		if err := servers.Encode([]map[string]string{{"url": d.server}}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrServe, err)
		}
		if existing := lookup(top, "servers"); existing != nil {
			*existing = servers
		} else {
			top.Content = append(top.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "servers"}, &servers)
		}
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return out, nil
}

// lookup returns the value node under key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key, value string) {
	if n := lookup(m, key); n != nil {
		n.Kind, n.Tag, n.Value, n.Style = yaml.ScalarNode, "!!str", value, yaml.DoubleQuotedStyle
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>fplsquad API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="{{.}}"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`))

func renderIndex(redocURL string) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, redocURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return buf.Bytes(), nil
}
