package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fplsquad/internal/adapters/fpl"
	"github.com/okian/fplsquad/pkg/logger"
	"github.com/okian/fplsquad/pkg/metrics"
)

// DefaultTTL is how long a snapshot is served before the source is asked again.
const DefaultTTL = 10 * time.Minute

// Source supplies raw FPL payloads. *fpl.Client and FileSource implement it.
type Source interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context) ([]fpl.Fixture, error)
}

// Provider owns the single cached snapshot.
type Provider struct {
	source Source
	opts   NormalizeOptions
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger

	mu          sync.RWMutex
	snapshot    Snapshot
	loaded      bool
	lastRefresh time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithTTL sets the snapshot lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithNormalizeOptions sets the projection window.
func WithNormalizeOptions(opts NormalizeOptions) Option {
	return func(p *Provider) {
		p.opts = opts
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProvider creates a provider reading from source.
func NewProvider(source Source, opts ...Option) *Provider {
	p := &Provider{
		source: source,
		opts:   DefaultNormalizeOptions(),
		ttl:    DefaultTTL,
		now:    time.Now,
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the cached snapshot while it is fresh and refreshes it otherwise.
func (p *Provider) Snapshot(ctx context.Context) (Snapshot, error) {
	p.mu.RLock()
	if p.fresh() {
		snap := p.snapshot
		p.mu.RUnlock()
		return snap, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fresh() {
		return p.snapshot, nil
	}
	return p.refreshLocked(ctx)
}

// Refresh fetches a new snapshot regardless of age.
func (p *Provider) Refresh(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx)
}

// Invalidate drops the cached snapshot.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
}

// LastRefresh returns when the snapshot was last fetched.
func (p *Provider) LastRefresh() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRefresh
}

func (p *Provider) fresh() bool {
	return p.loaded && p.now().Sub(p.lastRefresh) < p.ttl
}

func (p *Provider) refreshLocked(ctx context.Context) (Snapshot, error) {
	const op = "catalog.refresh"

	b, err := p.source.Bootstrap(ctx)
	if err != nil {
		metrics.RecordCatalogRefresh("error")
		return Snapshot{}, fmt.Errorf("%s: bootstrap: %w", op, err)
	}
	fx, err := p.source.Fixtures(ctx)
	if err != nil {
		metrics.RecordCatalogRefresh("error")
		return Snapshot{}, fmt.Errorf("%s: fixtures: %w", op, err)
	}
	snap, err := Normalize(b, fx, p.opts)
	if err != nil {
		metrics.RecordCatalogRefresh("error")
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	snap.FetchedAt = p.now()
	p.snapshot = snap
	p.loaded = true
	p.lastRefresh = snap.FetchedAt

	metrics.RecordCatalogRefresh("ok")
	metrics.RecordRejectedCandidates(len(snap.Rejected))
	metrics.UpdateCatalogPlayers(len(snap.Candidates))
	if len(snap.Rejected) > 0 {
		p.log.Warn(ctx, "players rejected at ingestion", logger.Int("count", len(snap.Rejected)))
	}
	p.log.Info(ctx, "catalog refreshed",
		logger.Int("gameweek", snap.Gameweek),
		logger.Int("candidates", len(snap.Candidates)),
	)
	return snap, nil
}
