package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/oddsgrid/fetch"
	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

type countingFetcher struct {
	calls atomic.Int32
	rows  []row.Row
}

func (f *countingFetcher) FetchAll(context.Context, string) ([]row.Row, error) {
	f.calls.Add(1)
	out := make([]row.Row, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func oddsRows() []row.Row {
	return []row.Row{
		{"Game Matchup": "A @ B", "Game Book": "DK", "EV %": 0.05},
		{"Game Matchup": "C @ D", "Game Book": "FD", "EV %": 0.125},
		{"Game Matchup": nil, "Game Book": nil, "EV %": nil},
	}
}

func newTestSession(t *testing.T, cfg Config) (*Session, *countingFetcher) {
	t.Helper()
	f := &countingFetcher{rows: oddsRows()}
	cfg.Fetcher = f
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, f
}

func TestNewRequiresBaseURLWithoutFetcher(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.ErrorIs(t, err, fetch.ErrBaseURL)
}

func TestNewRejectsUnknownOptions(t *testing.T) {
	f := &countingFetcher{}
	_, err := New(context.Background(), Config{Fetcher: f, Codec: "xml"})
	require.ErrorContains(t, err, "unknown codec")

	_, err = New(context.Background(), Config{Fetcher: f, Provider: "memcached"})
	require.ErrorContains(t, err, "unknown cache provider")

	_, err = New(context.Background(), Config{Fetcher: f, Provider: ProviderRedis})
	require.ErrorIs(t, err, ErrRedisURL)
}

func TestTableLoadsThroughCache(t *testing.T) {
	for _, prov := range []string{ProviderRistretto, ProviderBigcache} {
		for _, cdc := range []string{CodecJSON, CodecCBOR, CodecMsgpack, CodecProtobuf} {
			t.Run(prov+"/"+cdc, func(t *testing.T) {
				s, f := newTestSession(t, Config{Provider: prov, Codec: cdc, MaxDecodeBytes: 1 << 20})
				ctx := context.Background()

				tb := s.NewTable("CBBallGameOdds", nil)
				require.NoError(t, tb.SetData(ctx))
				require.Equal(t, 2, tb.RowCount(), "blank row dropped")

				tb2 := s.NewTable("CBBallGameOdds", nil)
				require.NoError(t, tb2.SetData(ctx))
				assert.Equal(t, int32(1), f.calls.Load())
				assert.Equal(t, tb.Data(), tb2.Data())
			})
		}
	}
}

func TestCachedRowsExpireAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, f := newTestSession(t, Config{Clock: clock})
	ctx := context.Background()

	_, err := s.Source.Load(ctx, "CBBallGameOdds")
	require.NoError(t, err)
	clock.Advance(4*time.Minute + 59*time.Second)
	_, err = s.Source.Load(ctx, "CBBallGameOdds")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())

	clock.Advance(time.Second)
	_, err = s.Source.Load(ctx, "CBBallGameOdds")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRefreshRefetchesAndKeepsState(t *testing.T) {
	s, f := newTestSession(t, Config{})
	ctx := context.Background()

	tb := s.NewTable("CBBallGameOdds", []grid.Column{{Field: "Game Book"}})
	require.NoError(t, tb.SetData(ctx))
	tb.SetHeaderFilterValue("Game Book", "dk")
	tb.SetSort(grid.Sorter{Field: "EV %", Dir: grid.Desc})

	require.NoError(t, s.Refresh(ctx, "CBBallGameOdds", tb))
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, []grid.HeaderFilter{{Field: "Game Book", Value: "dk"}}, tb.HeaderFilters())
	assert.Len(t, tb.Visible(), 1)
}

func TestDisabledCacheAlwaysFetches(t *testing.T) {
	s, f := newTestSession(t, Config{DisableCache: true})
	ctx := context.Background()
	for range 3 {
		_, err := s.Source.Load(ctx, "x")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), f.calls.Load())
}

func TestWidgetsShareSessionState(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s, _ := newTestSession(t, Config{Clock: clock})
	tb := s.NewTable("CBBallGameOdds", nil)

	b := s.BankrollInput(tb, "Quarter Kelly %", "CBB Game Quarter Kelly %")
	b.Input("200")
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool {
		return s.Bankroll.Get("CBB Game Quarter Kelly %") == 200
	}, time.Second, time.Millisecond)

	b2 := s.BankrollInput(nil, "Quarter Kelly %", "CBB Game Quarter Kelly %")
	assert.Equal(t, "200", b2.Text())

	assert.Equal(t, "Game Book", s.SetFilter(tb, "Game Book").Field())
	assert.Equal(t, "Game Line", s.RangeFilter(tb, "Game Line").Field())
}
