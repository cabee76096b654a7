package enhance

import (
	"sync"
	"time"
)

// Indicator is a reference-counted busy signal: shown while at least
// one enhancement pass is in flight anywhere, hidden after a short
// debounce once the count returns to zero. The debounce prevents
// flicker from back-to-back passes.
type Indicator struct {
	mu        sync.Mutex
	count     int
	gen       int // invalidates pending hides when the count rises again
	hideDelay time.Duration
	show      func()
	hide      func()
}

// DefaultHideDelay is the debounce before hiding an idle indicator.
const DefaultHideDelay = 200 * time.Millisecond

// NewIndicator creates an Indicator driving the given show/hide
// callbacks. Either callback may be nil.
func NewIndicator(show, hide func(), hideDelay time.Duration) *Indicator {
	if hideDelay <= 0 {
		hideDelay = DefaultHideDelay
	}
	return &Indicator{show: show, hide: hide, hideDelay: hideDelay}
}

// Acquire registers an in-flight pass, showing the indicator on the
// zero-to-one transition.
func (i *Indicator) Acquire() {
	i.mu.Lock()
	i.count++
	i.gen++
	first := i.count == 1
	i.mu.Unlock()

	if first && i.show != nil {
		i.show()
	}
}

// Release unregisters a pass. When the count reaches zero the hide
// callback fires after the debounce, unless another pass started in
// the meantime.
func (i *Indicator) Release() {
	i.mu.Lock()
	if i.count > 0 {
		i.count--
	}
	idle := i.count == 0
	gen := i.gen
	i.mu.Unlock()

	if !idle {
		return
	}

	time.AfterFunc(i.hideDelay, func() {
		i.mu.Lock()
		stillIdle := i.count == 0 && i.gen == gen
		i.mu.Unlock()
		if stillIdle && i.hide != nil {
			i.hide()
		}
	})
}

// Busy reports whether any pass is currently in flight.
func (i *Indicator) Busy() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count > 0
}
