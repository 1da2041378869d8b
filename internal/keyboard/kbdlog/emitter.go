// Package kbdlog provides a key emitter that only logs, for dry runs and for
// systems without an input injector.
package kbdlog

import (
	"sync"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// Emitter logs every key event at info level and keeps a running count.
type Emitter struct {
	logger contracts.Logger
	mu     sync.Mutex
	count  int
}

// NewEmitter returns a logging emitter.
func NewEmitter(logger contracts.Logger) *Emitter {
	return &Emitter{logger: logger}
}

// Emit logs the key event. It never fails.
func (e *Emitter) Emit(key contracts.KeyID, pressed bool) error {
	e.mu.Lock()
	e.count++
	n := e.count
	e.mu.Unlock()

	action := "release"
	if pressed {
		action = "press"
	}
	e.logger.Info(action,
		e.logger.Field().Stringer("key", key),
		e.logger.Field().Int("n", n))
	return nil
}

// Count returns the number of events emitted so far.
func (e *Emitter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
