//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Debug("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *DummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy MIDI client")
	return nil, fmt.Errorf("coremidi input: %w", contracts.ErrUnsupportedOS)
}

func (m *DummyMIDIClient) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy MIDI client")
	return fmt.Errorf("coremidi input: %w", contracts.ErrUnsupportedOS)
}

func (m *DummyMIDIClient) StartCapture(handler contracts.MessageHandler) error {
	m.logger.Warn("StartCapture called on dummy MIDI client")
	return fmt.Errorf("coremidi input: %w", contracts.ErrUnsupportedOS)
}

func (m *DummyMIDIClient) Stop() error {
	return nil
}
