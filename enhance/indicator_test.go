package enhance

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestIndicator_ShowOnFirstAcquire(t *testing.T) {
	var shows atomic.Int32
	ind := NewIndicator(func() { shows.Add(1) }, nil, 10*time.Millisecond)

	ind.Acquire()
	ind.Acquire()

	if got := shows.Load(); got != 1 {
		t.Errorf("show fired %d times, want 1 (only the zero-to-one transition)", got)
	}
	if !ind.Busy() {
		t.Error("Busy = false with two passes in flight")
	}
}

func TestIndicator_HideAfterDebounce(t *testing.T) {
	var hides atomic.Int32
	ind := NewIndicator(nil, func() { hides.Add(1) }, 10*time.Millisecond)

	ind.Acquire()
	ind.Release()

	if got := hides.Load(); got != 0 {
		t.Error("hide fired before the debounce elapsed")
	}
	time.Sleep(50 * time.Millisecond)
	if got := hides.Load(); got != 1 {
		t.Errorf("hide fired %d times, want 1", got)
	}
	if ind.Busy() {
		t.Error("Busy = true after release")
	}
}

func TestIndicator_ReacquireCancelsPendingHide(t *testing.T) {
	var hides atomic.Int32
	ind := NewIndicator(nil, func() { hides.Add(1) }, 30*time.Millisecond)

	ind.Acquire()
	ind.Release()
	ind.Acquire() // back in flight before the debounce fires

	time.Sleep(80 * time.Millisecond)
	if got := hides.Load(); got != 0 {
		t.Errorf("hide fired %d times while a pass was in flight", got)
	}
	if !ind.Busy() {
		t.Error("Busy = false")
	}
}

func TestIndicator_BalancedNesting(t *testing.T) {
	var hides atomic.Int32
	ind := NewIndicator(nil, func() { hides.Add(1) }, 10*time.Millisecond)

	ind.Acquire()
	ind.Acquire()
	ind.Release()

	time.Sleep(50 * time.Millisecond)
	if got := hides.Load(); got != 0 {
		t.Error("hide fired with one pass still in flight")
	}

	ind.Release()
	time.Sleep(50 * time.Millisecond)
	if got := hides.Load(); got != 1 {
		t.Errorf("hide fired %d times after the last release, want 1", got)
	}
}

func TestIndicator_NilCallbacks(t *testing.T) {
	ind := NewIndicator(nil, nil, 0)
	ind.Acquire()
	ind.Release()
	time.Sleep(DefaultHideDelay + 50*time.Millisecond)
}
