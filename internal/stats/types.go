package stats

import "errors"

// ErrPoisoned is returned once a panic has escaped a critical section of the
// counter. The map may be half-updated at that point, so it is never read again.
var ErrPoisoned = errors.New("request counter lock poisoned")

// IPCount is a single entry of a counter snapshot
type IPCount struct {
	IP    string `json:"ip"`
	Count uint64 `json:"count"`
}
