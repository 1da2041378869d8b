// Package dispatch owns the set of held keys and forwards press/release
// transitions to a key emitter.
package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

const keySlots = 1 << 8 // one slot per contracts.KeyID value

type slot struct {
	mu   sync.Mutex
	held bool
}

// Stats counts what the dispatcher did during a session.
type Stats struct {
	Presses  uint64 // press emissions
	Releases uint64 // release emissions
	Ignored  uint64 // repeated note on for a held key, or note off for a free key
	Failed   uint64 // emissions the emitter reported as failed
}

// Dispatcher guarantees that presses and releases of each key alternate, whatever
// duplicated or out-of-order note messages arrive. Calls for the same key are
// serialized; calls for different keys never wait for each other.
type Dispatcher struct {
	emitter contracts.KeyEmitter
	logger  contracts.Logger
	slots   [keySlots]slot

	presses, releases, ignored, failed atomic.Uint64
}

// New returns a dispatcher with no keys held.
func New(emitter contracts.KeyEmitter, logger contracts.Logger) *Dispatcher {
	return &Dispatcher{emitter: emitter, logger: logger}
}

// NoteOn presses key unless it is already held.
func (d *Dispatcher) NoteOn(key contracts.KeyID) {
	d.transition(key, true)
}

// NoteOff releases key if it is held.
func (d *Dispatcher) NoteOff(key contracts.KeyID) {
	d.transition(key, false)
}

// The slot lock covers check, update and emit so two messages for one key cannot
// interleave their emissions.
func (d *Dispatcher) transition(key contracts.KeyID, press bool) bool {
	s := &d.slots[key]
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held == press {
		d.ignored.Add(1)
		return false
	}
	s.held = press

	if press {
		d.presses.Add(1)
	} else {
		d.releases.Add(1)
	}

	if d.logger.Enabled(contracts.DebugLevel) {
		d.logger.Debug("key transition",
			d.logger.Field().Stringer("key", key),
			d.logger.Field().Bool("pressed", press))
	}

	if err := d.emitter.Emit(key, press); err != nil {
		d.failed.Add(1)
		d.logger.Error("failed to emit key",
			d.logger.Field().Stringer("key", key),
			d.logger.Field().Bool("pressed", press),
			d.logger.Field().Error("error", err))
	}
	return true
}

// Held returns the currently held keys in ascending order.
func (d *Dispatcher) Held() []contracts.KeyID {
	var held []contracts.KeyID
	for i := range d.slots {
		s := &d.slots[i]
		s.mu.Lock()
		if s.held {
			held = append(held, contracts.KeyID(i))
		}
		s.mu.Unlock()
	}
	return held
}

// ReleaseAll releases every held key and returns the keys it released.
func (d *Dispatcher) ReleaseAll() []contracts.KeyID {
	var released []contracts.KeyID
	for i := range d.slots {
		key := contracts.KeyID(i)
		s := &d.slots[i]

		s.mu.Lock()
		held := s.held
		s.mu.Unlock()

		if held && d.transition(key, false) {
			released = append(released, key)
		}
	}
	if len(released) > 0 {
		d.logger.Info("released held keys", d.logger.Field().Int("count", len(released)))
	}
	return released
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Presses:  d.presses.Load(),
		Releases: d.releases.Load(),
		Ignored:  d.ignored.Load(),
		Failed:   d.failed.Load(),
	}
}
