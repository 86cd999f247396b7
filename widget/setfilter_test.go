package widget

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/oddsgrid/filter"
	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

func newSet(g grid.Grid, field string, clock clockwork.Clock) *SetFilter {
	return NewSetFilter(g, field, SetFilterOptions{Clock: clock})
}

func TestLoadValuesDistinctSorted(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.LoadValues()

	assert.True(t, sf.Initialized())
	assert.Equal(t, []string{"DK", "FD", "MGM"}, sf.AllValues())
	assert.Equal(t, []string{"DK", "FD", "MGM"}, sf.Selected())
	assert.Equal(t, "All", sf.Label())
}

func TestLoadValuesNumericField(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Line", clockwork.NewFakeClock())
	sf.LoadValues()
	assert.Equal(t, []string{"-3.5", "2", "10"}, sf.AllValues())
}

func TestLoadValuesLookupOverride(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := NewSetFilter(g, "Game Book", SetFilterOptions{
		Clock:  clockwork.NewFakeClock(),
		Values: func([]row.Row) []string { return []string{"Z", "A"} },
	})
	sf.LoadValues()
	assert.Equal(t, []string{"A", "Z"}, sf.AllValues())
}

func TestLoadValuesWithoutDataIsNoop(t *testing.T) {
	sf := newSet(newFakeGrid(nil), "Game Book", clockwork.NewFakeClock())
	sf.LoadValues()
	assert.False(t, sf.Initialized())
}

func TestToggleDebouncesPush(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.LoadValues()

	sf.Toggle("FD")
	sf.Toggle("MGM")
	assert.Equal(t, "1 of 3", sf.Label())

	clock.Advance(SetDebounce - time.Millisecond)
	assert.Empty(t, g.calls())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, tick)
	assert.Equal(t, setCall{"Game Book", []string{"DK"}}, g.calls()[0])
	require.Eventually(t, func() bool { r, _ := g.counts(); return r == 1 }, waitFor, tick)
}

func TestToggleIgnoresUnknownValue(t *testing.T) {
	sf := newSet(newFakeGrid(bookRows()), "Game Book", clockwork.NewFakeClock())
	sf.LoadValues()
	sf.Toggle("Caesars")
	assert.Equal(t, []string{"DK", "FD", "MGM"}, sf.Selected())
}

func TestToggleAllAndEncodings(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.LoadValues()

	sf.ToggleAll()
	assert.Equal(t, "None", sf.Label())
	clock.Advance(SetDebounce)
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, tick)
	assert.Equal(t, filter.NoMatchSentinel, g.calls()[0].value)

	sf.ToggleAll()
	assert.Equal(t, "All", sf.Label())
	clock.Advance(SetDebounce)
	require.Eventually(t, func() bool { return len(g.calls()) == 2 }, waitFor, tick)
	assert.Equal(t, "", g.calls()[1].value)
	_, active := g.filter("Game Book")
	assert.False(t, active)
}

func TestToggleAllBeforeLoadIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.ToggleAll()
	assert.False(t, sf.deb.Pending())
}

func TestExternalFilterIsAdopted(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.Start()
	sf.LoadValues()

	g.setExternal("Game Book", []string{"MGM", "DK"})
	assert.ElementsMatch(t, []string{"DK", "MGM"}, sf.Selected())
	assert.Equal(t, "2 of 3", sf.Label())

	g.setExternal("Game Book", filter.NoMatchSentinel)
	assert.Empty(t, sf.Selected())
	assert.Equal(t, "None", sf.Label())

	// clearing is not an explicit selection; the widget keeps its state
	g.setExternal("Game Book", "")
	assert.Empty(t, sf.Selected())
}

func TestExternalFilterRestrictedToKnownValues(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.Start()
	sf.LoadValues()

	g.setExternal("Game Book", []string{"DK", "Caesars"})
	assert.Equal(t, []string{"DK"}, sf.Selected())
}

func TestOtherFieldsDoNotAffectSelection(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.Start()
	sf.LoadValues()

	g.setExternal("Game Line", []string{"2"})
	assert.Equal(t, "All", sf.Label())
}

func TestPendingPushIsNotOverwrittenBySync(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.Start()
	sf.LoadValues()

	g.setExternal("Game Book", []string{"DK", "FD"})
	sf.Toggle("MGM") // now all three, push pending
	g.setExternal("Other", []string{"x"})
	assert.Equal(t, "All", sf.Label())
}

func TestLoadAdoptsExistingFilter(t *testing.T) {
	g := newFakeGrid(bookRows())
	g.setExternal("Game Book", []string{"FD"})
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.LoadValues()
	assert.Equal(t, []string{"FD"}, sf.Selected())

	g2 := newFakeGrid(bookRows())
	g2.setExternal("Game Book", filter.NoMatchSentinel)
	sf2 := newSet(g2, "Game Book", clockwork.NewFakeClock())
	sf2.LoadValues()
	assert.Empty(t, sf2.Selected())
}

func TestStartLoadsAfterFrameAndPushesRestrictedSelection(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	g.setExternal("Game Book", []string{"FD"})
	sf := newSet(g, "Game Book", clock)
	sf.Start()
	assert.False(t, sf.Initialized())

	advanceUntil(t, clock, FrameDelay, sf.Initialized)
	assert.Equal(t, []string{"FD"}, sf.Selected())
	advanceUntil(t, clock, SetDebounce, func() bool { return len(g.calls()) == 1 })
	assert.Equal(t, []string{"FD"}, g.calls()[0].value)
}

func TestStartWithFullSelectionPushesNothing(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.Start()

	advanceUntil(t, clock, FrameDelay, sf.Initialized)
	clock.Advance(time.Second)
	assert.Never(t, func() bool { return len(g.calls()) > 0 }, 50*time.Millisecond, tick)
}

func TestStartPollsUntilDataArrives(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(nil)
	sf := newSet(g, "Game Book", clock)
	sf.Start()

	advanceUntil(t, clock, FrameDelay, func() bool {
		sf.mu.Lock()
		defer sf.mu.Unlock()
		return sf.attempts >= 2
	})
	assert.False(t, sf.Initialized())

	g.setData(bookRows())
	advanceUntil(t, clock, 500*time.Millisecond, sf.Initialized)
}

func TestStartGivesUpAfterFiveAttempts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sf := newSet(newFakeGrid(nil), "Game Book", clock)
	sf.Start()

	advanceUntil(t, clock, 100*time.Millisecond, func() bool {
		sf.mu.Lock()
		defer sf.mu.Unlock()
		return sf.attempts == 5
	})
	clock.Advance(5 * time.Second)
	assert.Never(t, func() bool {
		sf.mu.Lock()
		defer sf.mu.Unlock()
		return sf.attempts > 5
	}, 50*time.Millisecond, tick)
}

func TestDataLoadedReloadsValues(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tb := grid.NewTable(grid.Options{Columns: []grid.Column{{Field: "Game Book", Filter: filter.MatchSet}}})
	tb.Replace(bookRows())

	sf := newSet(tb, "Game Book", clock)
	sf.Start()
	advanceUntil(t, clock, FrameDelay, sf.Initialized)

	tb.Replace(append(bookRows(), row.Row{"Game Book": "Caesars"}))
	advanceUntil(t, clock, 50*time.Millisecond, func() bool { return len(sf.AllValues()) == 4 })
	assert.Equal(t, "All", sf.Label())
}

func TestBulkRedrawWaitsOneFrame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	g.rowCount = BulkRowThreshold + 1
	sf := newSet(g, "Game Book", clock)
	sf.LoadValues()

	sf.Toggle("DK")
	clock.Advance(SetDebounce)
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, tick)
	r, _ := g.counts()
	assert.Zero(t, r)

	advanceUntil(t, clock, FrameDelay, func() bool { r, _ := g.counts(); return r == 1 })
}

func TestOpenLoadsLazily(t *testing.T) {
	sf := newSet(newFakeGrid(bookRows()), "Game Book", clockwork.NewFakeClock())
	assert.False(t, sf.IsOpen())
	sf.Open()
	assert.True(t, sf.IsOpen())
	assert.True(t, sf.Initialized())
	sf.Close()
	assert.False(t, sf.IsOpen())
}

func TestDestroyCancelsPushAndDetaches(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clock)
	sf.Start()
	sf.LoadValues()
	require.Equal(t, 2, g.handlerCount())

	sf.Toggle("DK")
	sf.Destroy()
	assert.Zero(t, g.handlerCount())

	clock.Advance(time.Second)
	assert.Never(t, func() bool { return len(g.calls()) > 0 }, 50*time.Millisecond, tick)
}

func TestNilGridIsTolerated(t *testing.T) {
	sf := newSet(nil, "Game Book", clockwork.NewFakeClock())
	sf.Start()
	sf.LoadValues()
	sf.Toggle("x")
	sf.ToggleAll()
	sf.Open()
	sf.Destroy()
	assert.False(t, sf.Initialized())
}

func TestSetFilterAgainstTable(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tb := grid.NewTable(grid.Options{
		Columns: []grid.Column{{Field: "Game Book", Filter: filter.MatchSet}},
		Loader:  func(context.Context) ([]row.Row, error) { return bookRows(), nil },
	})
	require.NoError(t, tb.SetData(context.Background()))

	sf := newSet(tb, "Game Book", clock)
	sf.Start()
	sf.LoadValues()
	sf.Toggle("DK")
	sf.Toggle("FD")

	advanceUntil(t, clock, SetDebounce, func() bool { return len(tb.HeaderFilters()) == 1 })
	visible := tb.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "MGM", visible[0]["Game Book"])
	assert.Equal(t, "1 of 3", sf.Label())
}

func TestReloadKeepsPendingToggle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tb := grid.NewTable(grid.Options{
		Columns: []grid.Column{{Field: "Game Book", Filter: filter.MatchSet}},
		Loader:  func(context.Context) ([]row.Row, error) { return bookRows(), nil },
	})
	require.NoError(t, tb.SetData(context.Background()))

	sf := newSet(tb, "Game Book", clock)
	sf.Start()
	advanceUntil(t, clock, FrameDelay, sf.Initialized)

	sf.Toggle("DK")
	require.NoError(t, tb.SetData(context.Background()))

	// settle reload fires before the debounced push
	clock.Advance(100 * time.Millisecond)
	assert.Never(t, func() bool { return len(sf.Selected()) != 2 }, 30*time.Millisecond, tick)
	assert.Equal(t, "2 of 3", sf.Label())

	advanceUntil(t, clock, 10*time.Millisecond, func() bool {
		_, ok := grid.FilterValue(tb, "Game Book")
		return ok
	})
	v, _ := grid.FilterValue(tb, "Game Book")
	assert.Equal(t, []string{"FD", "MGM"}, v)
	assert.Equal(t, []string{"FD", "MGM"}, sf.Selected())
	require.Len(t, tb.Visible(), 2)
}

func TestFlushPushesWithoutWaiting(t *testing.T) {
	g := newFakeGrid(bookRows())
	sf := newSet(g, "Game Book", clockwork.NewFakeClock())
	sf.LoadValues()

	assert.False(t, sf.Flush())
	sf.Toggle("DK")
	require.True(t, sf.Flush())
	require.Len(t, g.calls(), 1)
	assert.Equal(t, []string{"FD", "MGM"}, g.calls()[0].value)
}
