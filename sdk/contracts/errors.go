package contracts

import (
	"errors"
	"fmt"
)

// Errors shared by the transports and the live listener.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrUnsupportedOS     = errors.New("unsupported operating system")
)

// FormatError reports a malformed MIDI file. Offset is the byte position in the
// file at which decoding failed.
type FormatError struct {
	Op     string
	Offset int
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("midi file: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DeviceError reports a failure to enumerate, open or start a MIDI input device.
type DeviceError struct {
	Op     string
	Device int
	Err    error
}

func (e *DeviceError) Error() string {
	if e.Device < 0 {
		return fmt.Sprintf("midi device: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("midi device %d: %s: %v", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
