package database

import (
	"sync/atomic"
	"time"
)

// lastTimeStamp holds the last value handed out by Now.
var lastTimeStamp atomic.Uint64

// Now returns the current time in nanoseconds since the Unix epoch. Values
// are strictly increasing across calls within the process, even when the
// wall clock stalls or steps backwards.
func Now() uint64 {
	for {
		now := uint64(time.Now().UTC().UnixNano())

		last := lastTimeStamp.Load()
		if now <= last {
			now = last + 1
		}

		if lastTimeStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}
