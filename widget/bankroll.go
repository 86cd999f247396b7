package widget

import (
	"strconv"
	"sync"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/bankroll"
	"github.com/unkn0wn-root/oddsgrid/debounce"
	"github.com/unkn0wn-root/oddsgrid/grid"
)

// Bankroll is the input over a kelly column. It never filters; a new amount is
// stored under its key and the grid re-renders so kelly cells show stakes.
type Bankroll struct {
	g     grid.Grid
	field string
	key   string
	store *bankroll.Store
	log   oddsgrid.Logger
	deb   *debounce.Timer

	mu   sync.Mutex
	text string
}

// NewBankroll binds an input to field. key names the store entry; "" => field.
// The input starts with the stored amount, if any.
func NewBankroll(g grid.Grid, field, key string, store *bankroll.Store, opts InputOptions) *Bankroll {
	opts.defaults()
	if key == "" {
		key = field
	}
	if store == nil {
		store = bankroll.NewStore()
	}
	b := &Bankroll{
		g:     g,
		field: field,
		key:   key,
		store: store,
		log:   opts.Logger,
		deb:   debounce.New(opts.Clock, opts.Debounce),
	}
	if v := store.Get(key); v > 0 {
		b.text = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return b
}

func (b *Bankroll) Field() string { return b.field }
func (b *Bankroll) Key() string   { return b.key }

func (b *Bankroll) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Input replaces the input text and schedules an update.
func (b *Bankroll) Input(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
	b.deb.Arm(b.apply)
}

func (b *Bankroll) Enter() { b.deb.Arm(b.apply) }

// Escape clears the input and schedules the update (which stores 0).
func (b *Bankroll) Escape() { b.Input("") }

func (b *Bankroll) apply() {
	amount := bankroll.Parse(b.Text())
	b.store.Set(b.key, amount)
	b.log.Debug("bankroll updated", oddsgrid.Fields{"key": b.key, "amount": amount})
	if b.g == nil {
		return
	}
	b.g.Reformat()
	b.g.SetHeaderFilterValue(b.field, nil)
}

// Flush applies pending input now.
func (b *Bankroll) Flush() bool { return b.deb.Flush() }

func (b *Bankroll) Destroy() { b.deb.Cancel() }
