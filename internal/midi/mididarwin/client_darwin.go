//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid manages MIDI input on Darwin (macOS) systems through CoreMIDI.
type ClientMid struct {
	logger          contracts.Logger
	handler         atomic.Pointer[contracts.MessageHandler] // Handler invoked from CoreMIDI's thread.
	client          coremidi.Client                          // CoreMIDI client instance for MIDI operations.
	inputPort       coremidi.InputPort                       // Input port for receiving MIDI events.
	portConn        internalPortConnection                   // Connection to the MIDI port.
	midiEventFilter *contracts.MIDIEventFilter               // Filter for specific MIDI events.
	coreMIDIConfig  *contracts.CoreMIDIConfig                // Configuration for MIDI client.
	mu              sync.Mutex                               // Guards the port connection.
	delivery        delivery                                 // Tracks packets being processed.
}

// NewMIDIClient initializes a new ClientMid for handling MIDI events on macOS.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI client successfully created")

	return &ClientMid{
		logger:          options.Logger,
		client:          client,
		midiEventFilter: options.MIDIEventFilter,
		coreMIDIConfig:  options.CoreMIDIConfig,
	}, nil
}

// ListDevices retrieves the available MIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(contracts.ErrNoMIDIDevices.Error())
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects an input port to the source at deviceID, dropping any
// previous connection.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(contracts.ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return contracts.ErrInvalidMIDIDevice
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, m.coreMIDIConfig.PortName, m.handleMIDIMessage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handleMIDIMessage passes every channel message in a CoreMIDI packet to the registered handler.
func (m *ClientMid) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	if !m.delivery.enter() {
		return
	}
	defer m.delivery.leave()

	h := m.handler.Load()
	if h == nil {
		return
	}

	for _, msg := range splitPacket(packet.Data, uint64(time.Now().UTC().UnixNano())) {
		if m.midiEventFilter.Allows(msg.Command) {
			(*h)(msg)
		}
	}
}

// StartCapture registers the handler; CoreMIDI delivers as soon as the port is connected.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		return errors.New("StartCapture called with nil handler")
	}
	if m.portConn == nil {
		return fmt.Errorf("cannot start capture: %w", contracts.ErrInvalidMIDIDevice)
	}

	m.logger.Info("Starting MIDI event capture")
	m.handler.Store(&handler)
	m.delivery.open()
	return nil
}

// Stop disconnects from the device and waits for packets in flight.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handler.Store(nil)
	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}
	m.delivery.close()

	m.logger.Info("MIDI capture stopped")
	return nil
}
