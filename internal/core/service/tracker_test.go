package service

import (
	"sync"
	"testing"
	"time"
)

func TestSchedule_ReplacesPendingAndRestartsTimer(t *testing.T) {
	tr := newWriteTracker()

	var (
		mu    sync.Mutex
		fired []writeSpec
	)
	fire := func(id string, spec writeSpec) {
		mu.Lock()
		fired = append(fired, spec)
		mu.Unlock()
	}

	tr.schedule("p1", writeSpec{kind: writeAbsolute, value: 5}, 30*time.Millisecond, fire)
	tr.schedule("p1", writeSpec{kind: writeAbsolute, value: 9}, 30*time.Millisecond, fire)

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 {
		t.Fatalf("expected one fire, got %d", len(fired))
	}
	if fired[0].value != 9 {
		t.Errorf("expected the replacement value 9, got %d", fired[0].value)
	}
}

func TestCancelPending_StopsTimer(t *testing.T) {
	tr := newWriteTracker()

	fired := make(chan writeSpec, 1)
	fire := func(id string, spec writeSpec) { fired <- spec }

	tr.schedule("p1", writeSpec{kind: writeAbsolute, value: 5}, 30*time.Millisecond, fire)

	spec, ok := tr.cancelPending("p1")
	if !ok || spec.value != 5 {
		t.Fatalf("expected to cancel pending write of 5, got %v %v", spec, ok)
	}

	select {
	case <-fired:
		t.Error("expected no fire after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBeginFlight_QueuesWhileOutstanding(t *testing.T) {
	tr := newWriteTracker()

	if !tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: -1}) {
		t.Fatal("expected first write to dispatch")
	}
	if tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: -1}) {
		t.Fatal("expected second write to queue behind the first")
	}
	if !tr.isInFlight("p1") {
		t.Error("expected p1 in flight")
	}

	next, ok := tr.finishFlight("p1")
	if !ok || next.delta != -1 {
		t.Fatalf("expected queued delta to dispatch next, got %v %v", next, ok)
	}
	if _, ok := tr.finishFlight("p1"); ok {
		t.Error("expected empty queue")
	}
	if tr.isInFlight("p1") {
		t.Error("expected p1 no longer in flight")
	}
}

func TestEnqueue_AbsoluteReplacesQueuedAbsolute(t *testing.T) {
	tr := newWriteTracker()

	tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: +1})
	tr.beginFlight("p1", writeSpec{kind: writeAbsolute, value: 5})
	tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: -1})
	tr.beginFlight("p1", writeSpec{kind: writeAbsolute, value: 9})

	var specs []writeSpec
	for {
		next, ok := tr.finishFlight("p1")
		if !ok {
			break
		}
		specs = append(specs, next)
	}

	if len(specs) != 2 {
		t.Fatalf("expected stale absolute dropped, got %v", specs)
	}
	if specs[0].kind != writeDelta || specs[0].delta != -1 {
		t.Errorf("expected the delta to survive, got %v", specs[0])
	}
	if specs[1].kind != writeAbsolute || specs[1].value != 9 {
		t.Errorf("expected only the newest absolute, got %v", specs[1])
	}
}

func TestCancel_DropsQueueButNotFlight(t *testing.T) {
	tr := newWriteTracker()

	tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: +1})
	tr.beginFlight("p1", writeSpec{kind: writeDelta, delta: +1})

	tr.cancel("p1")

	if !tr.isInFlight("p1") {
		t.Error("expected dispatched request to stay in flight")
	}
	if _, ok := tr.finishFlight("p1"); ok {
		t.Error("expected queued writes dropped by cancel")
	}
}
