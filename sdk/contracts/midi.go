package contracts

// MIDI represents a short MIDI message received from an input device.
type MIDI struct {
	Timestamp uint64 // Timestamp indicates the time the event occurred.
	Command   byte   // Command is the status byte with the channel nibble removed (e.g., Note On, Note Off).
	Channel   byte   // Channel is the zero-based MIDI channel.
	Note      byte   // Note represents the MIDI note number (0-127).
	Velocity  byte   // Velocity indicates the strength of the note being played (0-127).
}

// IsNoteOn reports whether the message starts a note. A Note On with velocity 0 is a release.
func (m MIDI) IsNoteOn() bool {
	return m.Command == byte(NoteOn) && m.Velocity > 0
}

// IsNoteOff reports whether the message ends a note.
func (m MIDI) IsNoteOff() bool {
	return m.Command == byte(NoteOff) || (m.Command == byte(NoteOn) && m.Velocity == 0)
}

// ParseShortMessage splits a packed short message (status | data1<<8 | data2<<16),
// as delivered by the Windows multimedia API, into a MIDI value.
func ParseShortMessage(packed uint32, timestamp uint64) MIDI {
	status := byte(packed & 0xFF)
	return MIDI{
		Timestamp: timestamp,
		Command:   status & 0xF0,
		Channel:   status & 0x0F,
		Note:      byte((packed >> 8) & 0xFF),
		Velocity:  byte((packed >> 16) & 0xFF),
	}
}

// MessageHandler is invoked by a transport for every incoming short message.
// It runs on a transport-owned thread and must return quickly.
type MessageHandler func(MIDI)

// ClientMIDI defines an interface for MIDI input transport operations.
type ClientMIDI interface {
	Stop() error                                // Stops capture, closes the device and releases resources.
	ListDevices() ([]DeviceInfo, error)         // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error            // Opens a MIDI input device by its index.
	StartCapture(handler MessageHandler) error // Registers the handler and starts delivering messages.
}

// NoteEvent is a timed note decoded from a MIDI file.
type NoteEvent struct {
	TimestampMs uint64 // Milliseconds from the start of the file.
	Note        uint8  // MIDI note number (0-127).
	On          bool   // True for a note start, false for a note end.
}
