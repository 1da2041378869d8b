//go:build !windows
// +build !windows

package kbdwindows

import (
	"fmt"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// NewEmitter fails on systems without SendInput.
func NewEmitter(logger contracts.Logger) (contracts.KeyEmitter, error) {
	logger.Debug("SendInput emitter requested on a non-Windows system")
	return nil, fmt.Errorf("SendInput: %w", contracts.ErrUnsupportedOS)
}
