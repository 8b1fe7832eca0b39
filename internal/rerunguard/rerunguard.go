// Package rerunguard prevents an invocation that already failed (or, in
// local replay mode, already succeeded) from being handed back out on the
// next call to next_invocation. Without it a crashing local handler would
// loop forever against the same replayed event.
//
// Ported from the original's BLOCK_NEXT_INVOCATION static in
// cargo-lambda-emulator/src/handlers/mod.rs and the park-on-rerun behavior in
// lambda-debugger/src/handlers/next_invocation.rs.
package rerunguard

import (
	"sync"
	"time"
)

// ParkDuration is how long next_invocation sleeps when it finds the guard
// set, instead of handing out another invocation. It is effectively
// "forever" relative to any real debugging session; the original parks for
// 31563000 seconds (one year) for the same reason.
const ParkDuration = 31563000 * time.Second

// Guard is a process-wide latch: set on any error response, or on a
// successful response while replaying from a local file. Zero value is
// ready to use.
type Guard struct {
	mu  sync.RWMutex
	set bool
}

// Set marks the guard, blocking the next call to CheckAndClear from
// returning false.
func (g *Guard) Set() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.set = true
}

// CheckAndClear reports whether the guard was set, clearing it as a side
// effect. Call at the top of next_invocation: a true result means the
// caller should park rather than serve another invocation.
func (g *Guard) CheckAndClear() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	was := g.set
	g.set = false
	return was
}
