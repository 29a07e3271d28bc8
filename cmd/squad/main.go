// Command squad builds one squad and prints it. It reads saved FPL payloads when
// -bootstrap is given and calls the live API otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/fplsquad/internal/adapters/catalog"
	"github.com/okian/fplsquad/internal/adapters/fpl"
	app "github.com/okian/fplsquad/internal/app"
	"github.com/okian/fplsquad/internal/config"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/okian/fplsquad/pkg/logger"
	"github.com/shopspring/decimal"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitIncomplete = 2
)

var errUsage = errors.New("usage")

type options struct {
	bootstrap string
	fixtures  string
	budget    float64
	threshold float64
	lock      string
	exclude   string
	format    string
	logLevel  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(exitOK)
	case errors.Is(err, model.ErrSquadIncomplete):
		fmt.Fprintln(os.Stderr, "squad:", err)
		os.Exit(exitIncomplete)
	default:
		fmt.Fprintln(os.Stderr, "squad:", err)
		os.Exit(exitFailure)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("squad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.bootstrap, "bootstrap", "", "saved bootstrap-static JSON; live API when empty")
	fs.StringVar(&o.fixtures, "fixtures", "", "saved fixtures JSON (used with -bootstrap)")
	fs.Float64Var(&o.budget, "budget", 0, "budget in millions; config default when 0")
	fs.Float64Var(&o.threshold, "threshold", -1, "availability threshold 0-100; config default when negative")
	fs.StringVar(&o.lock, "lock", "", "comma separated player ids or names to keep")
	fs.StringVar(&o.exclude, "exclude", "", "comma separated player ids or names to leave out")
	fs.StringVar(&o.format, "format", formatTable, "output format: table, json or yaml")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	switch o.format {
	case formatTable, formatJSON, formatYAML:
	default:
		return o, fmt.Errorf("%w: unknown format %q", errUsage, o.format)
	}
	if o.fixtures != "" && o.bootstrap == "" {
		return o, fmt.Errorf("%w: -fixtures needs -bootstrap", errUsage)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(o.logLevel), logger.WithWriter(stderr)); err != nil {
		return err
	}
	l := logger.Get()

	var source catalog.Source
	if o.bootstrap != "" {
		files, err := catalog.LoadFiles(o.bootstrap, o.fixtures)
		if err != nil {
			return err
		}
		source = files
	} else {
		source = fpl.NewClient(
			fpl.WithBaseURL(cfg.FPL.BaseURL),
			fpl.WithTimeout(cfg.FPLTimeout()),
			fpl.WithRateLimit(cfg.FPL.RateLimit, cfg.FPL.Burst),
			fpl.WithUserAgent(cfg.FPL.UserAgent),
			fpl.WithLogger(l.Named("fpl")),
		)
	}
	provider := catalog.NewProvider(source,
		catalog.WithTTL(cfg.CatalogTTL()),
		catalog.WithNormalizeOptions(cfg.NormalizeOptions()),
		catalog.WithLogger(l.Named("catalog")),
	)

	snap, err := provider.Snapshot(ctx)
	if err != nil {
		return err
	}
	req, err := buildRequest(o, snap.Candidates)
	if err != nil {
		return err
	}

	svcOpts, err := app.ConfigOptions(cfg)
	if err != nil {
		return err
	}
	svc := app.New(append(svcOpts, app.WithCatalog(provider), app.WithLogger(l.Named("service")))...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	res, buildErr := svc.BuildSquad(ctx, req)
	if buildErr != nil && !errors.Is(buildErr, model.ErrSquadIncomplete) {
		return buildErr
	}
	if err := render(stdout, o.format, newReport(res)); err != nil {
		return err
	}
	return buildErr
}

func buildRequest(o options, cands []model.Candidate) (app.Request, error) {
	var req app.Request
	if o.budget != 0 {
		b := decimal.NewFromFloat(o.budget).Round(1)
		req.Budget = &b
	}
	if o.threshold >= 0 {
		t := o.threshold
		req.AvailabilityThreshold = &t
	}
	var err error
	if req.Locked, err = catalog.ResolveIDs(cands, splitList(o.lock)); err != nil {
		return req, fmt.Errorf("lock: %w", err)
	}
	if req.Excluded, err = catalog.ResolveIDs(cands, splitList(o.exclude)); err != nil {
		return req, fmt.Errorf("exclude: %w", err)
	}
	return req, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
