package service

import (
	"sync"
	"time"
)

type writeKind int

const (
	writeAbsolute writeKind = iota
	writeDelta
)

// writeSpec describes one deferred write. Absolute specs carry the target
// value; delta specs carry the signed change.
type writeSpec struct {
	kind  writeKind
	value int
	delta int
}

// trackEntry is the per-item scheduling record. It exists only while a
// debounce window, an in-flight request, or a queued follow-up write is
// active for the item.
type trackEntry struct {
	timer    *time.Timer
	pending  *writeSpec
	inFlight bool
	queue    []writeSpec
}

func (e *trackEntry) idle() bool {
	return e.pending == nil && !e.inFlight && len(e.queue) == 0
}

// writeTracker coalesces rapid-fire edits into single writes and enforces
// the one-request-in-flight-per-item discipline. It replaces the per-page
// dictionaries of raw timer handles the editing screens used to maintain
// by hand.
type writeTracker struct {
	mu      sync.Mutex
	entries map[string]*trackEntry
}

func newWriteTracker() *writeTracker {
	return &writeTracker{entries: make(map[string]*trackEntry)}
}

func (t *writeTracker) entry(id string) *trackEntry {
	e, ok := t.entries[id]
	if !ok {
		e = &trackEntry{}
		t.entries[id] = e
	}
	return e
}

// schedule replaces the item's pending write and restarts its debounce
// timer. When the timer fires, fire is invoked with the spec that was
// current at that moment.
func (t *writeTracker) schedule(id string, spec writeSpec, delay time.Duration, fire func(string, writeSpec)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(id)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.pending = &spec
	e.timer = time.AfterFunc(delay, func() {
		spec, ok := t.takePending(id)
		if ok {
			fire(id, spec)
		}
	})
}

// takePending consumes the pending write, if any. Called from the timer
// callback; a timer that was stopped after its goroutine started finds the
// pending slot already cleared and does nothing.
func (t *writeTracker) takePending(id string) (writeSpec, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok || e.pending == nil {
		return writeSpec{}, false
	}
	spec := *e.pending
	e.pending = nil
	e.timer = nil
	if e.idle() {
		delete(t.entries, id)
	}
	return spec, true
}

// cancelPending stops the debounce timer and discards the pending write
// without dispatching it. Reports whether a write was pending.
func (t *writeTracker) cancelPending(id string) (writeSpec, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok || e.pending == nil {
		return writeSpec{}, false
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	spec := *e.pending
	e.pending = nil
	if e.idle() {
		delete(t.entries, id)
	}
	return spec, true
}

// beginFlight marks the item in flight, or queues the spec if another
// request is already outstanding. Reports whether the caller should
// dispatch now.
func (t *writeTracker) beginFlight(id string, spec writeSpec) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entry(id)
	if e.inFlight {
		e.enqueue(spec)
		return false
	}
	e.inFlight = true
	return true
}

// enqueue appends a follow-up write. Only the newest absolute target
// matters, so a queued absolute replaces any absolute already waiting;
// deltas accumulate so no stepper click is lost.
func (e *trackEntry) enqueue(spec writeSpec) {
	if spec.kind == writeAbsolute {
		kept := e.queue[:0]
		for _, q := range e.queue {
			if q.kind != writeAbsolute {
				kept = append(kept, q)
			}
		}
		e.queue = kept
	}
	e.queue = append(e.queue, spec)
}

// finishFlight clears the in-flight flag and hands back the next queued
// write, which the caller must dispatch while the flag stays set.
func (t *writeTracker) finishFlight(id string) (writeSpec, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return writeSpec{}, false
	}
	if len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		return next, true
	}
	e.inFlight = false
	if e.idle() {
		delete(t.entries, id)
	}
	return writeSpec{}, false
}

func (t *writeTracker) isInFlight(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	return ok && e.inFlight
}

// cancel tears down all scheduling state for the item: the debounce timer,
// the pending write and any queued follow-ups. An already-dispatched
// request is not interrupted; its response is still merged when it lands.
func (t *writeTracker) cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = nil
	e.queue = nil
	if !e.inFlight {
		delete(t.entries, id)
	}
}

// cancelAll tears down every item. Used on engine shutdown.
func (t *writeTracker) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, e := range t.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.pending = nil
		e.queue = nil
		if !e.inFlight {
			delete(t.entries, id)
		}
	}
}
