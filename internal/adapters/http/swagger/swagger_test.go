package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, RedocCDN)
			})
		})
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		var doc struct {
			OpenAPI string                 `yaml:"openapi"`
			Paths   map[string]interface{} `yaml:"paths"`
		}
		err := yaml.Unmarshal(OpenAPI, &doc)

		convey.Convey("Then it parses and lists every route", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			for _, path := range []string{"/healthz", "/stats", "/squad", "/players", "/rank/{id}", "/fixtures", "/refresh"} {
				convey.So(doc.Paths, convey.ShouldContainKey, path)
			}
		})
	})
}

func TestDocumentOptions(t *testing.T) {
	convey.Convey("Given a build version and a public server URL", t, func() {
		out, err := Document(WithVersion("2.3.4"), WithServerURL("https://squad.example.com"))
		convey.So(err, convey.ShouldBeNil)

		var doc struct {
			Info struct {
				Title   string `yaml:"title"`
				Version string `yaml:"version"`
			} `yaml:"info"`
			Servers []struct {
				URL string `yaml:"url"`
			} `yaml:"servers"`
			Paths map[string]interface{} `yaml:"paths"`
		}
		convey.So(yaml.Unmarshal(out, &doc), convey.ShouldBeNil)

		convey.Convey("Then info and servers are replaced and the paths kept", func() {
			convey.So(doc.Info.Title, convey.ShouldEqual, "fplsquad")
			convey.So(doc.Info.Version, convey.ShouldEqual, "2.3.4")
			convey.So(doc.Servers, convey.ShouldHaveLength, 1)
			convey.So(doc.Servers[0].URL, convey.ShouldEqual, "https://squad.example.com")
			convey.So(doc.Paths, convey.ShouldContainKey, "/squad")
		})
	})

	convey.Convey("Given no options", t, func() {
		out, err := Document()

		convey.Convey("Then the embedded bytes are served unchanged", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(out), convey.ShouldEqual, string(OpenAPI))
		})
	})

	convey.Convey("Given a self-hosted ReDoc bundle", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux, WithRedocURL("/static/redoc.js"), WithVersion("dev"))

		convey.Convey("Then the page loads it and the document carries the version", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="/static/redoc.js"`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, RedocCDN)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `version: "dev"`)
		})

		convey.Convey("Then other methods are not found", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/openapi.yaml", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSwaggerHandlerWithNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		ctx := context.Background()

		convey.Convey("When registering the swagger handler", func() {
			convey.Convey("Then it should panic", func() {
				convey.So(func() {
					Register(ctx, nil)
				}, convey.ShouldPanic)
			})
		})
	})
}
