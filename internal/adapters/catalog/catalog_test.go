package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/fplsquad/internal/adapters/catalog"
	"github.com/okian/fplsquad/internal/adapters/fpl"
	"github.com/okian/fplsquad/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func bootstrap() *fpl.Bootstrap {
	return &fpl.Bootstrap{
		Events: []fpl.Event{{ID: 4}, {ID: 5, IsCurrent: true}, {ID: 6, IsNext: true}},
		Teams:  []fpl.Team{{ID: 1, Name: "Arsenal"}, {ID: 2, Name: "Brentford"}},
		Elements: []fpl.Element{
			{ID: 1, FirstName: "Martin", SecondName: "Ødegaard", Team: 1, ElementType: 3, NowCost: 85,
				Form: 4.5, PointsPerGame: 5.0, SelectedByPercent: 12.4, Status: "a",
				TransfersInEvent: 5000, TransfersOutEvent: 1000},
			{ID: 2, FirstName: "Bukayo", SecondName: "Saka", Team: 1, ElementType: 3, NowCost: 95,
				PointsPerGame: 6.0, Status: "d", ChanceOfPlayingNextRound: intp(75)},
			{ID: 3, FirstName: "Iván", SecondName: "Toney", Team: 2, ElementType: 4, NowCost: 70,
				PointsPerGame: 4.0, Status: "d"},
			{ID: 4, FirstName: "Injured", SecondName: "Player", Team: 2, ElementType: 2, NowCost: 45,
				Status: "i", ChanceOfPlayingNextRound: intp(0)},
			{ID: 5, FirstName: "No", SecondName: "Club", Team: 9, ElementType: 1, NowCost: 40, Status: "a"},
			{ID: 6, FirstName: "Bad", SecondName: "Type", Team: 1, ElementType: 5, NowCost: 40, Status: "a"},
		},
	}
}

func gw(v int) *int { return &v }

func fixtureList() []fpl.Fixture {
	return []fpl.Fixture{
		{ID: 1, Event: gw(5), TeamH: 1, TeamA: 2, TeamHDifficulty: 5, TeamADifficulty: 5},
		{ID: 2, Event: gw(6), TeamH: 1, TeamA: 2, TeamHDifficulty: 2, TeamADifficulty: 4},
		{ID: 3, Event: gw(7), TeamH: 2, TeamA: 1, TeamHDifficulty: 3, TeamADifficulty: 4},
		{ID: 4, Event: nil, TeamH: 2, TeamA: 1, TeamHDifficulty: 1, TeamADifficulty: 1},
	}
}

func TestNormalize(t *testing.T) {
	snap, err := catalog.Normalize(bootstrap(), fixtureList(), catalog.DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Gameweek)
	require.Len(t, snap.Candidates, 4)
	require.Len(t, snap.Rejected, 2)
	assert.Equal(t, 5, snap.Rejected[0].ID)
	assert.Equal(t, 6, snap.Rejected[1].ID)
	assert.Contains(t, snap.Rejected[0].Reason, model.ErrInvalidCandidate.Error())

	ode := snap.Candidates[0]
	assert.Equal(t, "Martin Ødegaard", ode.Name)
	assert.Equal(t, "Arsenal", ode.Club)
	assert.Equal(t, model.Midfielder, ode.Position)
	assert.Equal(t, "8.5", ode.Price.String())
	assert.InDelta(t, 12.4, ode.Ownership, 1e-9)
	assert.Equal(t, 4000, ode.NetTransfers())
	// 5.0 * (0.95 + 1.05 + 1.0 + 1.1)
	assert.InDelta(t, 20.5, ode.PredictedPoints, 1e-9)
	require.Len(t, ode.PredictedByGameweek, 4)
	assert.Equal(t, 6, ode.PredictedByGameweek[0].Gameweek)
	assert.Equal(t, 9, ode.PredictedByGameweek[3].Gameweek)
	assert.InDelta(t, 4.75, ode.PredictedByGameweek[0].Points, 1e-9)
	assert.InDelta(t, 5.5, ode.PredictedByGameweek[3].Points, 1e-9)
	sum := 0.0
	for _, gp := range ode.PredictedByGameweek {
		sum += gp.Points
	}
	assert.InDelta(t, ode.PredictedPoints, sum, 1e-9)

	assert.Equal(t, model.Doubtful(75), snap.Candidates[1].Availability)
	assert.Equal(t, model.Doubtful(catalog.DefaultDoubtfulChance), snap.Candidates[2].Availability)
	assert.Equal(t, model.Unavailable(), snap.Candidates[3].Availability)

	// the window starts after the current gameweek
	assert.Equal(t, 6, snap.Table.StartGameweek())
	mean, ok := snap.Table.Mean("Arsenal")
	require.True(t, ok)
	assert.InDelta(t, 3.0, mean, 1e-9)
	assert.InDelta(t, 3.0/3.5, snap.Table.Multiplier("Brentford"), 1e-9)
}

func TestNormalizeOptions(t *testing.T) {
	opts := catalog.NormalizeOptions{Lookahead: 6, GameweekWeights: []float64{2}}
	snap, err := catalog.Normalize(bootstrap(), nil, opts)
	require.NoError(t, err)
	// 5.0 * (2 + 5 * 1.0)
	assert.InDelta(t, 35.0, snap.Candidates[0].PredictedPoints, 1e-9)
	byGW := snap.Candidates[0].PredictedByGameweek
	require.Len(t, byGW, 6)
	assert.InDelta(t, 10.0, byGW[0].Points, 1e-9)
	assert.InDelta(t, 5.0, byGW[5].Points, 1e-9)
	assert.Equal(t, 1.0, snap.Table.Multiplier("Arsenal"))

	_, err = catalog.Normalize(nil, nil, opts)
	assert.ErrorIs(t, err, catalog.ErrNoBootstrap)
}

type countingSource struct {
	calls int32
	fail  error
}

func (s *countingSource) Bootstrap(context.Context) (*fpl.Bootstrap, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.fail != nil {
		return nil, s.fail
	}
	return bootstrap(), nil
}

func (s *countingSource) Fixtures(context.Context) ([]fpl.Fixture, error) {
	return fixtureList(), nil
}

func TestProviderTTL(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	src := &countingSource{}
	p := catalog.NewProvider(src,
		catalog.WithTTL(time.Minute),
		catalog.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	first, err := p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, now, first.FetchedAt)

	_, err = p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls), "fresh snapshot should be served from cache")

	now = now.Add(2 * time.Minute)
	_, err = p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.calls), "stale snapshot should be refetched")
	assert.Equal(t, now, p.LastRefresh())

	p.Invalidate()
	_, err = p.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&src.calls))

	_, err = p.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&src.calls))
}

func TestProviderError(t *testing.T) {
	src := &countingSource{fail: fpl.ErrUpstream}
	p := catalog.NewProvider(src)

	_, err := p.Snapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fpl.ErrUpstream))
}

func TestFindByName(t *testing.T) {
	snap, err := catalog.Normalize(bootstrap(), nil, catalog.DefaultNormalizeOptions())
	require.NoError(t, err)

	found := catalog.FindByName(snap.Candidates, "  MARTIN  ØDEGAARD ")
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].ID)

	found = catalog.FindByName(snap.Candidates, "ivan toney")
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].ID)

	assert.Len(t, catalog.FindByName(snap.Candidates, "SAKA"), 1)
	assert.Empty(t, catalog.FindByName(snap.Candidates, ""))
	assert.Equal(t, "jose muniz", catalog.Fold("José  Muñiz"))

	ids, err := catalog.ResolveIDs(snap.Candidates, []string{"7", "toney", " "})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, ids)

	_, err = catalog.ResolveIDs(snap.Candidates, []string{"haaland"})
	assert.ErrorIs(t, err, catalog.ErrPlayerNotFound)

	_, err = catalog.ResolveIDs(snap.Candidates, []string{"a"})
	assert.ErrorIs(t, err, catalog.ErrAmbiguousPlayer)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	bootstrapPath := filepath.Join(dir, "bootstrap.json")
	require.NoError(t, os.WriteFile(bootstrapPath, []byte(`{"events":[{"id":1,"is_current":true}],"teams":[],"elements":[]}`), 0o600))

	src, err := catalog.LoadFiles(bootstrapPath, "")
	require.NoError(t, err)
	b, err := src.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, b.CurrentGameweek())
	fx, err := src.Fixtures(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fx)

	_, err = catalog.LoadFiles(filepath.Join(dir, "missing.json"), "")
	assert.Error(t, err)

	nullPath := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(nullPath, []byte(`null`), 0o600))
	_, err = catalog.LoadFiles(nullPath, "")
	assert.ErrorIs(t, err, catalog.ErrNoBootstrap)
}
