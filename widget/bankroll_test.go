package widget

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/oddsgrid/bankroll"
)

const kellyField = "Game Quarter Kelly %"

func TestBankrollStartsFromStore(t *testing.T) {
	store := bankroll.NewStore()
	store.Set("CBB Game Quarter Kelly %", 250)

	b := NewBankroll(nil, kellyField, "CBB Game Quarter Kelly %", store, InputOptions{Clock: clockwork.NewFakeClock()})
	assert.Equal(t, "250", b.Text())
	assert.Equal(t, "CBB Game Quarter Kelly %", b.Key())

	b2 := NewBankroll(nil, kellyField, "", nil, InputOptions{Clock: clockwork.NewFakeClock()})
	assert.Equal(t, kellyField, b2.Key())
	assert.Empty(t, b2.Text())
}

func TestBankrollInputUpdatesStoreAndReformats(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(bookRows())
	store := bankroll.NewStore()
	b := NewBankroll(g, kellyField, "", store, InputOptions{Clock: clock})

	b.Input("10")
	b.Input("1000")
	clock.Advance(InputDebounce - time.Millisecond)
	assert.Zero(t, store.Get(kellyField))

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, tick)
	assert.Equal(t, 1000.0, store.Get(kellyField))
	assert.Nil(t, g.calls()[0].value)
	_, reformats := g.counts()
	assert.Equal(t, 1, reformats)
}

func TestBankrollInvalidInputStoresZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(nil)
	store := bankroll.NewStore()
	store.Set(kellyField, 500)
	b := NewBankroll(g, kellyField, "", store, InputOptions{Clock: clock})

	b.Input("-40")
	clock.Advance(InputDebounce)
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, tick)
	assert.Zero(t, store.Get(kellyField))
}

func TestBankrollEscapeClears(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(nil)
	store := bankroll.NewStore()
	store.Set(kellyField, 500)
	b := NewBankroll(g, kellyField, "", store, InputOptions{Clock: clock})
	require.Equal(t, "500", b.Text())

	b.Escape()
	assert.Empty(t, b.Text())
	clock.Advance(InputDebounce)
	require.Eventually(t, func() bool { return store.Get(kellyField) == 0 }, waitFor, tick)
}

func TestBankrollDestroyCancels(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := newFakeGrid(nil)
	store := bankroll.NewStore()
	b := NewBankroll(g, kellyField, "", store, InputOptions{Clock: clock})

	b.Input("100")
	b.Destroy()
	clock.Advance(time.Second)
	assert.Never(t, func() bool { return store.Get(kellyField) != 0 }, 50*time.Millisecond, tick)
}

func TestBankrollFlush(t *testing.T) {
	g := newFakeGrid(nil)
	store := bankroll.NewStore()
	b := NewBankroll(g, kellyField, "", store, InputOptions{Clock: clockwork.NewFakeClock()})
	b.Input("75.5")
	require.True(t, b.Flush())
	assert.Equal(t, 75.5, store.Get(kellyField))
}
