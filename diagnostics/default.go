package diagnostics

import "sync/atomic"

var _default atomic.Pointer[Bridge]

func init() {
	_default.Store(New())
}

// Default returns the process-wide bridge.
func Default() *Bridge {
	return _default.Load()
}

// Configure replaces the process-wide bridge. Call it before the first
// report; the previous bridge is returned so it can be stopped.
func Configure(opts ...Option) *Bridge {
	return _default.Swap(New(opts...))
}

func NewTick(t float32) { Default().NewTick(t) }

func SetStat(d Direction, msgID int16, name string, amount int) {
	Default().SetStat(d, msgID, name, amount)
}

func IncrementStat(d Direction, msgID int16, name string, amount int) {
	Default().IncrementStat(d, msgID, name, amount)
}

func SetMessageStat(d Direction, payload any, amount int) {
	Default().SetMessageStat(d, payload, amount)
}

func IncrementMessageStat(d Direction, payload any, amount int) {
	Default().IncrementMessageStat(d, payload, amount)
}

func ResetAll() { Default().ResetAll() }

func Stop() { Default().Stop() }
