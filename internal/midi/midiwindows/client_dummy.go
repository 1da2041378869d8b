//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

// ListDevices reports that MIDI input is unavailable on this platform.
func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("winmm input: %w", contracts.ErrUnsupportedOS)
}

// SelectDevice reports that MIDI input is unavailable on this platform.
func (m *dummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("winmm input: %w", contracts.ErrUnsupportedOS)
}

// StartCapture reports that MIDI input is unavailable on this platform.
func (m *dummyMIDIClient) StartCapture(handler contracts.MessageHandler) error {
	m.logger.Warn("StartCapture called on dummy MIDI client")
	return fmt.Errorf("winmm input: %w", contracts.ErrUnsupportedOS)
}

// Stop is a no-op.
func (m *dummyMIDIClient) Stop() error {
	return nil
}
