// Command sample-data writes a synthetic FPL league to disk and can serve it on the
// FPL API paths, so the service and the squad CLI run without network access.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fplsquad/internal/sampledata"
	"github.com/okian/fplsquad/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type options struct {
	out      string
	serve    string
	clubs    int
	seed     int64
	gameweek int
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "sample-data:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	o := options{}
	fs := flag.NewFlagSet("sample-data", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.out, "out", "testdata", "directory for bootstrap-static.json and fixtures.json")
	fs.StringVar(&o.serve, "serve", "", "also serve the league on this address, e.g. :9999")
	fs.IntVar(&o.clubs, "clubs", sampledata.DefaultClubs, "number of clubs")
	fs.Int64Var(&o.seed, "seed", sampledata.DefaultSeed, "random seed")
	fs.IntVar(&o.gameweek, "gameweek", sampledata.DefaultGameweek, "current gameweek")
	fs.BoolVar(&o.verbose, "verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.out == "" && o.serve == "" {
		return o, errors.New("nothing to do: set -out or -serve")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := "info"
	if o.verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithLevel(level), logger.WithWriter(stderr)); err != nil {
		return err
	}
	l := logger.Get()

	b, fx, err := sampledata.Generate(sampledata.Config{Clubs: o.clubs, Seed: o.seed, Gameweek: o.gameweek})
	if err != nil {
		return err
	}
	l.Debug(ctx, "league generated",
		logger.Int("clubs", len(b.Teams)),
		logger.Int("players", len(b.Elements)),
		logger.Int("fixtures", len(fx)))

	if o.out != "" {
		bootstrapPath, fixturesPath, err := sampledata.WriteFiles(o.out, b, fx)
		if err != nil {
			return err
		}
		l.Info(ctx, "sample data written",
			logger.String("bootstrap", bootstrapPath),
			logger.String("fixtures", fixturesPath))
	}

	if o.serve == "" {
		return nil
	}
	srv := &http.Server{
		Addr:              o.serve,
		Handler:           sampledata.Handler(b, fx),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "serving sample FPL API", logger.String("addr", o.serve), logger.String("base_url", "http://localhost"+o.serve+"/api"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
