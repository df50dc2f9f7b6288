// Package events fans chain events out to any number of receivers, such as
// websocket clients watching blocks get mined and admitted.
package events

import (
	"fmt"
	"sync"
)

// DefaultBuffer is the number of events held for a receiver that isn't
// keeping up. Once full, new events for that receiver are dropped.
const DefaultBuffer = 100

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	buffer int

	mu       sync.RWMutex
	m        map[string]chan string
	dropped  map[string]uint64
	shutdown bool
}

// New constructs an events for registering and receiving events. A buffer
// of zero or less uses DefaultBuffer.
func New(buffer ...int) *Events {
	size := DefaultBuffer
	if len(buffer) > 0 && buffer[0] > 0 {
		size = buffer[0]
	}

	return &Events{
		buffer:  size,
		m:       make(map[string]chan string),
		dropped: make(map[string]uint64),
	}
}

// Shutdown closes and removes every channel provided by Acquire. Events
// sent afterwards are discarded.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		delete(evt.dropped, id)
		close(ch)
	}

	evt.shutdown = true
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events. After Shutdown the channel returned is closed.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.shutdown {
		ch := make(chan string)
		close(ch)
		return ch
	}

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	ch = make(chan string, evt.buffer)
	evt.m[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	delete(evt.dropped, id)
	close(ch)

	return nil
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		select {
		case ch <- s:
		default:
			evt.dropped[id]++
		}
	}
}

// Receivers returns the number of registered receivers.
func (evt *Events) Receivers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Dropped returns how many events the receiver has missed because its
// buffer was full.
func (evt *Events) Dropped(id string) uint64 {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return evt.dropped[id]
}
