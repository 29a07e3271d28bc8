package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/fplsquad/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Quotas, convey.ShouldResemble, map[string]int{"gk": 2, "def": 5, "mid": 5, "fwd": 3})
				convey.So(cfg.GameweekWeights, convey.ShouldResemble, []float64{0.95, 1.05, 1.0, 1.1})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FPLSQUAD_ADDR", ":8080")
			_ = os.Setenv("FPLSQUAD_BUDGET", "95.5")
			_ = os.Setenv("FPLSQUAD_AVAILABILITY_THRESHOLD", "60")
			_ = os.Setenv("FPLSQUAD_RELAX_THRESHOLDS", "40")
			_ = os.Setenv("FPLSQUAD_FPL__BASE_URL", "http://localhost:9999/api")
			_ = os.Setenv("FPLSQUAD_SCORING__FORM", "0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Budget, convey.ShouldEqual, 95.5)
				convey.So(cfg.AvailabilityThreshold, convey.ShouldEqual, 60.0)
				convey.So(cfg.RelaxThresholds, convey.ShouldResemble, []float64{40})
				convey.So(cfg.FPL.BaseURL, convey.ShouldEqual, "http://localhost:9999/api")
				convey.So(cfg.FPL.Burst, convey.ShouldEqual, 2)
				convey.So(cfg.Scoring.Form, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# squad shape
addr: ":9090"
budget: 98
quotas:
  def: 4
  mid: 6
gameweek_weights: [1, 1]
risk:
  safe: 40
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FPLSQUAD_CONFIG", tmpFile)
			_ = os.Setenv("FPLSQUAD_BUDGET", "97")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then maps merge over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Quotas, convey.ShouldResemble, map[string]int{"gk": 2, "def": 4, "mid": 6, "fwd": 3})
				convey.So(cfg.Risk.Safe, convey.ShouldEqual, 40.0)
				convey.So(cfg.Risk.Balanced, convey.ShouldEqual, 15.0)
			})

			convey.Convey("Then lists replace the defaults", func() {
				convey.So(cfg.GameweekWeights, convey.ShouldResemble, []float64{1, 1})
			})

			convey.Convey("Then env vars win over the file", func() {
				convey.So(cfg.Budget, convey.ShouldEqual, 97.0)
			})
		})

		convey.Convey("When the YAML file names a position twice", func() {
			tmpFile := createTempConfigFile("quotas:\n  gkp: 0\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FPLSQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			tmpFile := createTempConfigFile("addr: \"\"\nbudget: 100\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FPLSQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file cannot be read", func() {
			_ = os.Setenv("FPLSQUAD_CONFIG", "/nonexistent/fplsquad.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the YAML file is malformed", func() {
			tmpFile := createTempConfigFile("quotas: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FPLSQUAD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FPLSQUAD_CONFIG",
		"FPLSQUAD_ADDR",
		"FPLSQUAD_BUDGET",
		"FPLSQUAD_AVAILABILITY_THRESHOLD",
		"FPLSQUAD_RELAX_THRESHOLDS",
		"FPLSQUAD_FPL__BASE_URL",
		"FPLSQUAD_SCORING__FORM",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fplsquad-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
