package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flashmart/stock-sync/internal/core/domain"
	"github.com/flashmart/stock-sync/internal/core/store"
	"github.com/flashmart/stock-sync/internal/port"
)

const (
	// DefaultDebounce is the quiet period required after the last keystroke
	// in a numeric field before its value is written out. Stepper clicks
	// bypass it entirely.
	DefaultDebounce = 2 * time.Second

	// DefaultRequestTimeout bounds each remote call, including the re-fetch
	// issued after a failed write.
	DefaultRequestTimeout = 5 * time.Second
)

// Config tunes a Reconciler. The zero value is usable; defaults fill in.
type Config struct {
	// Debounce is the coalescing window for absolute edits.
	Debounce time.Duration

	// RequestTimeout bounds each remote call.
	RequestTimeout time.Duration

	// Logger receives dispatch, commit and rollback events.
	Logger zerolog.Logger

	// OnError is invoked when a write ultimately fails, after the store has
	// already been restored to a server-traceable value. Advisory only;
	// typically used to raise a user-visible message. May be nil.
	OnError func(itemID string, err error)
}

// Reconciler merges optimistic local edits with the remote stock service.
//
// Every edit updates the ItemStore synchronously so the UI can re-render at
// once, then schedules at most one deferred write per item. Responses are
// merged back through the store's Commit path; failures re-fetch the
// authoritative value or, as a last resort, revert to the last confirmed
// one. The store is never left mismatched with what the service would
// report.
type Reconciler struct {
	store   *store.ItemStore
	remote  port.StockService
	tracker *writeTracker
	cfg     Config

	wg sync.WaitGroup
}

func NewReconciler(st *store.ItemStore, remote port.StockService, cfg Config) *Reconciler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Reconciler{
		store:   st,
		remote:  remote,
		tracker: newWriteTracker(),
		cfg:     cfg,
	}
}

// EditAbsolute handles a change to a free-form numeric field. The raw input
// is coerced (negative and non-numeric values clamp to zero), shown
// immediately, and written out once the debounce window closes without a
// newer keystroke.
func (r *Reconciler) EditAbsolute(itemID, raw string) {
	value := domain.ParseStock(raw)
	r.store.SetDisplay(itemID, value)
	r.tracker.schedule(itemID, writeSpec{kind: writeAbsolute, value: value}, r.cfg.Debounce, r.flush)
}

// EditDelta handles a stepper click. The proposed value is computed against
// the currently displayed count, shown immediately, and dispatched without
// debounce: each click is already a single intentional edit, so delaying it
// would add latency without saving a request.
//
// A delta arriving while an absolute edit is still debouncing cancels the
// pending absolute and folds both into one write carrying the displayed
// result, so neither the typed value nor the click is lost.
func (r *Reconciler) EditDelta(itemID string, delta int) {
	it, _ := r.store.Get(itemID)
	proposed := domain.ClampStock(it.DisplayStock + delta)
	r.store.SetDisplay(itemID, proposed)

	spec := writeSpec{kind: writeDelta, delta: delta}
	if _, folded := r.tracker.cancelPending(itemID); folded {
		spec = writeSpec{kind: writeAbsolute, value: proposed}
	}
	r.flush(itemID, spec)
}

// flush hands a due write to the dispatch path, queueing it if another
// request for the same item is still outstanding.
func (r *Reconciler) flush(itemID string, spec writeSpec) {
	if !r.tracker.beginFlight(itemID, spec) {
		return
	}
	r.wg.Add(1)
	go r.dispatch(itemID, spec)
}

// dispatch performs writes for the item until its queue drains. It is the
// only goroutine touching the network for this item while the in-flight
// flag is set.
func (r *Reconciler) dispatch(itemID string, spec writeSpec) {
	defer r.wg.Done()

	for {
		r.perform(itemID, spec)

		next, ok := r.tracker.finishFlight(itemID)
		if !ok {
			return
		}
		spec = next
	}
}

func (r *Reconciler) perform(itemID string, spec writeSpec) {
	writeID := uuid.NewString()
	log := r.cfg.Logger.With().Str("item", itemID).Str("write", writeID).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RequestTimeout)
	defer cancel()

	var (
		confirmed int
		err       error
	)
	switch spec.kind {
	case writeAbsolute:
		log.Debug().Int("value", spec.value).Msg("dispatching absolute stock write")
		confirmed, err = r.remote.SetStock(ctx, itemID, spec.value)
	case writeDelta:
		log.Debug().Int("delta", spec.delta).Msg("dispatching stock delta")
		confirmed, err = r.remote.ApplyDelta(ctx, itemID, spec.delta)
	}

	if err == nil {
		r.store.Commit(itemID, confirmed)
		log.Debug().Int("confirmed", confirmed).Msg("stock write committed")
		return
	}

	log.Warn().Err(err).Msg("stock write failed")
	r.resolveFailure(itemID, spec, log)
	if r.cfg.OnError != nil {
		r.cfg.OnError(itemID, err)
	}
}

// resolveFailure restores a server-traceable value after a failed write.
// Absolute writes re-fetch the authoritative count before falling back to
// the last confirmed value; delta writes revert directly, since the server
// never applied the change.
func (r *Reconciler) resolveFailure(itemID string, spec writeSpec, log zerolog.Logger) {
	if spec.kind == writeDelta {
		r.store.Revert(itemID)
		return
	}

	// Fresh context: the write may have failed by exhausting its own.
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RequestTimeout)
	defer cancel()

	fresh, err := r.remote.GetStock(ctx, itemID)
	if err != nil {
		log.Warn().Err(err).Msg("re-fetch failed, reverting to last confirmed")
		r.store.Revert(itemID)
		return
	}
	r.store.Commit(itemID, fresh)
	log.Debug().Int("confirmed", fresh).Msg("re-synced after failed write")
}

// DisplayValue returns the value the UI should render for the item right
// now. Unknown items read as zero.
func (r *Reconciler) DisplayValue(itemID string) int {
	it, _ := r.store.Get(itemID)
	return it.DisplayStock
}

// IsSaving reports whether a write for the item is currently outstanding.
// Drives the saving indicator next to each edit surface.
func (r *Reconciler) IsSaving(itemID string) bool {
	return r.tracker.isInFlight(itemID)
}

// Detach cancels the item's pending timers and queued writes. Must be
// called when the item's editor unmounts so a dangling timer cannot fire a
// write with no live display. A request already on the wire is left to
// complete; its response is still merged into the store.
func (r *Reconciler) Detach(itemID string) {
	r.tracker.cancel(itemID)
}

// Close detaches every item and waits for in-flight writes to resolve.
func (r *Reconciler) Close() {
	r.tracker.cancelAll()
	r.wg.Wait()
}
