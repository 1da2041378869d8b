// Package keyboard creates the key emitter for the current operating system.
package keyboard

import (
	"fmt"
	"runtime"

	"github.com/leandrodaf/midikeys/internal/keyboard/kbdlog"
	"github.com/leandrodaf/midikeys/internal/keyboard/kbdwindows"
	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// emitterInitializers maps OS names to key injectors.
var emitterInitializers = map[string]func(contracts.Logger) (contracts.KeyEmitter, error){
	"windows": kbdwindows.NewEmitter,
}

// NewEmitter returns the injector for the current OS, or a logging emitter when
// dryRun is set. Systems without an injector get contracts.ErrUnsupportedOS.
func NewEmitter(logger contracts.Logger, dryRun bool) (contracts.KeyEmitter, error) {
	return newEmitterFor(runtime.GOOS, logger, dryRun)
}

func newEmitterFor(goos string, logger contracts.Logger, dryRun bool) (contracts.KeyEmitter, error) {
	if dryRun {
		return kbdlog.NewEmitter(logger), nil
	}
	if initializer, exists := emitterInitializers[goos]; exists {
		return initializer(logger)
	}
	return nil, fmt.Errorf("key injection: %w: %s (use --dry-run)", contracts.ErrUnsupportedOS, goos)
}
