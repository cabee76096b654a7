package lingocache

import (
	"log"
	"sync/atomic"
)

// debugEnabled gates verbose timing/count logs on store and batch
// operations. Off by default; flipped once at startup from config or
// per-request via the endpoint's debug query flag.
var debugEnabled atomic.Bool

// SetDebug toggles verbose diagnostic logging process-wide.
func SetDebug(on bool) {
	debugEnabled.Store(on)
}

// DebugEnabled reports whether verbose logging is on.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf logs through the standard logger when debug logging is on.
func Debugf(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("lingocache: "+format, args...)
	}
}
