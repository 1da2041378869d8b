package mididarwin

import "sync"

// delivery admits CoreMIDI callbacks until it is closed. close waits for every
// callback already admitted to leave.
type delivery struct {
	mu     sync.RWMutex
	closed bool
}

// enter reports whether the callback may deliver. A true result must be paired with leave.
func (d *delivery) enter() bool {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return false
	}
	return true
}

func (d *delivery) leave() { d.mu.RUnlock() }

func (d *delivery) open() {
	d.mu.Lock()
	d.closed = false
	d.mu.Unlock()
}

func (d *delivery) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
