// Package enhance progressively applies cached translations to
// rendered HTML. It is the server-side counterpart of a client-side
// DOM enhancer: it collects a page's text nodes, requests best-
// available translations from the cache endpoint, applies them by
// exact value match, and re-polls a shrinking outstanding subset on a
// bounded schedule while the background filler catches up.
package enhance

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/motorplaza/lingocache"
)

// PassKind distinguishes a full-page pass from an incremental subtree
// pass triggered by dynamic content.
type PassKind int

const (
	// PassFull enhances a whole document.
	PassFull PassKind = iota
	// PassSubtree enhances a dynamically updated fragment. Subtree
	// passes are frequent, so they throttle harder and fail fast.
	PassSubtree
)

// DefaultCooldown is the minimum gap between subtree passes.
const DefaultCooldown = 600 * time.Millisecond

// Retry schedules: delays between re-polls of the still-missing
// subset. A full pass polls patiently; a subtree pass gives up after
// one retry.
var (
	fullRetrySchedule    = []time.Duration{500 * time.Millisecond, 1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	subtreeRetrySchedule = []time.Duration{800 * time.Millisecond}
)

// Enhancer runs enhancement passes against a cache endpoint.
type Enhancer struct {
	client        *Client
	locale        string
	defaultLocale string
	cooldown      time.Duration
	indicator     *Indicator

	fullSchedule    []time.Duration
	subtreeSchedule []time.Duration

	mu           sync.Mutex
	fullInFlight bool
	lastDone     time.Time
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithCooldown sets the subtree-pass throttle window.
func WithCooldown(d time.Duration) Option {
	return func(e *Enhancer) {
		e.cooldown = d
	}
}

// WithIndicator attaches a busy indicator.
func WithIndicator(i *Indicator) Option {
	return func(e *Enhancer) {
		e.indicator = i
	}
}

// WithSchedules overrides the retry schedules for full and subtree
// passes.
func WithSchedules(full, subtree []time.Duration) Option {
	return func(e *Enhancer) {
		e.fullSchedule = full
		e.subtreeSchedule = subtree
	}
}

// New creates an Enhancer targeting the given locale pair.
func New(client *Client, locale, defaultLocale string, opts ...Option) *Enhancer {
	e := &Enhancer{
		client:          client,
		locale:          locale,
		defaultLocale:   defaultLocale,
		cooldown:        DefaultCooldown,
		fullSchedule:    fullRetrySchedule,
		subtreeSchedule: subtreeRetrySchedule,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnhanceHTML parses an HTML document, runs a full pass over it, and
// returns the enhanced markup. Parse failures return the input
// unchanged along with the error.
func (e *Enhancer) EnhanceHTML(ctx context.Context, content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content, err
	}
	e.EnhanceDocument(ctx, doc)
	out, err := doc.Html()
	if err != nil {
		return content, err
	}
	return out, nil
}

// EnhanceDocument runs a full pass over a parsed document, mutating
// its text nodes in place.
func (e *Enhancer) EnhanceDocument(ctx context.Context, doc *goquery.Document) {
	e.run(ctx, doc.Selection, PassFull)
}

// EnhanceSubtree runs an incremental pass over a fragment. It may be
// skipped entirely by the throttle or reentrancy gates; skipping is
// not an error, a later pass reconciles the same nodes.
func (e *Enhancer) EnhanceSubtree(ctx context.Context, sel *goquery.Selection) {
	e.run(ctx, sel, PassSubtree)
}

func (e *Enhancer) run(ctx context.Context, sel *goquery.Selection, kind PassKind) {
	// Short-circuit: identity locale needs no enhancement at all.
	if lingocache.SameLocale(e.locale, e.defaultLocale) {
		return
	}

	c := collect(sel)
	if len(c.texts) == 0 {
		return
	}

	if !e.admit(kind) {
		return
	}
	defer e.finish(kind)

	if e.indicator != nil {
		e.indicator.Acquire()
		defer e.indicator.Release()
	}

	schedule := e.fullSchedule
	if kind == PassSubtree {
		schedule = e.subtreeSchedule
	}

	outstanding := c.texts
	for attempt := 0; ; attempt++ {
		translations, ok := e.client.Translations(ctx, outstanding, e.locale, e.defaultLocale)
		if ok {
			outstanding = c.apply(outstanding, translations)
		}
		// Terminal states: everything applied, or the schedule is
		// exhausted and the rest stays untranslated.
		if len(outstanding) == 0 || attempt >= len(schedule) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(schedule[attempt]):
		}
	}
}

// admit applies the throttle and reentrancy gates. A subtree pass is
// dropped when another pass completed within the cooldown window or a
// full pass is already in flight; a full pass always runs.
func (e *Enhancer) admit(kind PassKind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if kind == PassSubtree {
		if e.fullInFlight {
			return false
		}
		if !e.lastDone.IsZero() && time.Since(e.lastDone) < e.cooldown {
			return false
		}
	}
	if kind == PassFull {
		e.fullInFlight = true
	}
	return true
}

func (e *Enhancer) finish(kind PassKind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if kind == PassFull {
		e.fullInFlight = false
	}
	e.lastDone = time.Now()
}
