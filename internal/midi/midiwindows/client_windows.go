//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_LONGDATA  = 0x3C4 // System exclusive buffer received
	MIM_ERROR     = 0x3C5 // Invalid MIDI message
	MIM_LONGERROR = 0x3C6 // Invalid system exclusive message
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInReset      = winmm.NewProc("midiInReset")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// The driver calls back with an opaque instance value. It carries a client id
// rather than a Go pointer; clients are looked up here.
var (
	midiInProc   = windows.NewCallback(midiInCallback)
	clients      sync.Map // uintptr -> *ClientMid
	nextClientID atomic.Uintptr
)

// ClientMid manages MIDI input on Windows through the multimedia API.
type ClientMid struct {
	id              uintptr
	logger          contracts.Logger
	handler         atomic.Pointer[contracts.MessageHandler]
	handle          HMIDIIN
	device          int
	portConn        bool
	capturing       bool
	mu              sync.Mutex
	midiEventFilter *contracts.MIDIEventFilter
}

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for Windows")

	m := &ClientMid{
		id:              nextClientID.Add(1),
		logger:          options.Logger,
		midiEventFilter: options.MIDIEventFilter,
	}
	clients.Store(m.id, m)
	return m, nil
}

// ListDevices lists the available MIDI input devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn("No MIDI devices found")
		return nil, contracts.ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn("Failed to get information for MIDI device", m.logger.Field().Int("device", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens a MIDI input device, closing any device opened before.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.portConn {
		if err := m.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}

	r1, _, _ := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		midiInProc,
		m.id,
		uintptr(CALLBACK_FUNCTION),
	)
	if r1 != 0 {
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("device", deviceID),
			m.logger.Field().Uint64("mmresult", uint64(r1)))
		return fmt.Errorf("midiInOpen device %d: MMRESULT %d", deviceID, r1)
	}

	m.portConn = true
	m.device = deviceID
	m.logger.Info("MIDI device connected", m.logger.Field().Int("device", deviceID))
	return nil
}

// StartCapture registers handler and starts delivering input.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn || m.handle == 0 {
		return fmt.Errorf("cannot start capture: %w", contracts.ErrInvalidMIDIDevice)
	}
	if m.capturing {
		m.logger.Warn("Capture already started")
		return nil
	}

	m.handler.Store(&handler)

	r1, _, _ := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.handler.Store(nil)
		return fmt.Errorf("midiInStart: MMRESULT %d", r1)
	}

	m.capturing = true
	m.logger.Info("MIDI capture started")
	return nil
}

// midiInCallback runs on a driver thread. It only decodes the message and calls
// the registered handler.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	v, ok := clients.Load(dwInstance)
	if !ok {
		return 0
	}
	m := v.(*ClientMid)

	switch wMsg {
	case MIM_DATA, MIM_MOREDATA:
		event := contracts.ParseShortMessage(uint32(dwParam1), uint64(time.Now().UTC().UnixNano()))
		if !m.midiEventFilter.Allows(event.Command) {
			return 0
		}
		if h := m.handler.Load(); h != nil {
			(*h)(event)
		}
	case MIM_OPEN:
		m.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Debug("MIDI device closed")
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Warn("Invalid MIDI message received", m.logger.Field().Uint64("msg", uint64(wMsg)))
	}

	return 0
}

// Stop stops capture and closes the device.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn {
		m.logger.Debug("No MIDI device is connected")
		return nil
	}

	if err := m.closeDevice(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed", m.logger.Field().Int("device", m.device))
	return nil
}

// closeDevice stops the capture and releases the device handle. Callers hold m.mu.
func (m *ClientMid) closeDevice() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	m.handler.Store(nil)

	if r1, _, _ := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
		return fmt.Errorf("midiInStop: MMRESULT %d", r1)
	}
	_, _, _ = procMidiInReset.Call(uintptr(m.handle))
	if r1, _, _ := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		return fmt.Errorf("midiInClose: MMRESULT %d", r1)
	}

	m.portConn = false
	m.capturing = false
	m.handle = 0
	return nil
}
