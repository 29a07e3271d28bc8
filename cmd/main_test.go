package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/fplsquad/internal/config"
	"github.com/okian/fplsquad/internal/sampledata"
	"github.com/okian/fplsquad/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// fakeFPL serves a generated league on the FPL API paths.
func fakeFPL() *httptest.Server {
	b, fx, err := sampledata.Generate(sampledata.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return httptest.NewServer(sampledata.Handler(b, fx))
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FPLSQUAD_ADDR", ":8080")
			_ = os.Setenv("FPLSQUAD_MAX_PLAYERS_LIMIT", "50")
			defer func() {
				_ = os.Unsetenv("FPLSQUAD_ADDR")
				_ = os.Unsetenv("FPLSQUAD_MAX_PLAYERS_LIMIT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxPlayersLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When testing service creation", func() {
			svc, err := newService(config.New(), logger.NewNop())

			convey.Convey("Then service should be creatable from defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.GetStats()["started"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When the config names an unknown position", func() {
			cfg := config.New()
			cfg.StartingMins["winger"] = 1

			_, err := newService(cfg, logger.NewNop())

			convey.Convey("Then service creation should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service backed by a fake FPL API", t, func() {
		upstream := fakeFPL()
		defer upstream.Close()

		cfg := config.New()
		cfg.FPL.BaseURL = upstream.URL + "/api"
		cfg.AllowedOrigins = []string{"https://example.com"}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc, err := newService(cfg, logger.NewNop())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		handler := newHandler(ctx, cfg, svc)

		convey.Convey("When requesting a squad", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/squad", nil))

			convey.Convey("Then a complete squad is returned", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body["status"], convey.ShouldEqual, "complete")
			})
		})

		convey.Convey("When a browser sends a preflight request", func() {
			req := httptest.NewRequest(http.MethodOptions, "/squad", nil)
			req.Header.Set("Origin", "https://example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			convey.Convey("Then the allowed origin is echoed", func() {
				convey.So(rec.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "https://example.com")
			})
		})

		convey.Convey("When the docs are requested", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

			convey.Convey("Then the OpenAPI document is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the catalog is refreshed in the background", func() {
			convey.So(func() { refreshCatalog(ctx, svc, logger.NewNop()) }, convey.ShouldNotPanic)

			convey.Convey("Then the ranking stays populated", func() {
				convey.So(svc.GetStats()["rankedPlayers"], convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing the catalog refresher", func() {
			svc, err := newService(config.New(), logger.NewNop())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it should return once the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startCatalogRefresher(ctx, svc, time.Hour, logger.NewNop())
				}, convey.ShouldNotPanic)
			})

			convey.Convey("Then a zero interval disables it", func() {
				convey.So(func() {
					startCatalogRefresher(context.Background(), svc, 0, logger.NewNop())
				}, convey.ShouldNotPanic)
			})
		})
	})
}
