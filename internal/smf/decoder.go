// Package smf decodes Standard MIDI Files into a single time-ordered stream of
// note events.
package smf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

var (
	headerChunk = [4]byte{'M', 'T', 'h', 'd'}
	trackChunk  = [4]byte{'M', 'T', 'r', 'k'}
)

const (
	minHeaderLength = 6

	statusFlag  = 0x80
	commandMask = 0xF0

	noteOff         = 0x80
	noteOn          = 0x90
	polyPressure    = 0xA0
	controlChange   = 0xB0
	programChange   = 0xC0
	channelPressure = 0xD0
	pitchBend       = 0xE0

	sysEx          = 0xF0
	songPosition   = 0xF2
	timeCodeQuart  = 0xF1
	songSelect     = 0xF3
	sysExEscape    = 0xF7
	metaEvent      = 0xFF
	metaSetTempo   = 0x51
	setTempoLength = 3
)

// Decoding failures. Every decode error is a *contracts.FormatError wrapping one of these.
var (
	ErrBadHeader   = errors.New("invalid header chunk signature")
	ErrBadTrack    = errors.New("invalid track chunk signature")
	ErrTruncated   = errors.New("unexpected end of data")
	ErrBadDivision = errors.New("unsupported time division")
)

// Song is a decoded MIDI file.
type Song struct {
	Format          uint16
	Tracks          uint16
	TicksPerQuarter uint16
	Tempo           *Timeline
	Events          []contracts.NoteEvent
}

// Duration returns the timestamp of the last event in milliseconds.
func (s *Song) Duration() uint64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].TimestampMs
}

type rawEvent struct {
	tick uint32
	note uint8
	on   bool
}

// Decode parses a MIDI file and returns its note events ordered by timestamp.
func Decode(data []byte) ([]contracts.NoteEvent, error) {
	song, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return song.Events, nil
}

// DecodeReader reads r to the end and decodes it.
func DecodeReader(r io.Reader) (*Song, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read midi data: %w", err)
	}
	return Parse(buf.Bytes())
}

// DecodeFile opens and decodes the MIDI file at path.
func DecodeFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open midi file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a complete MIDI file. Any malformed chunk aborts the whole decode.
func Parse(data []byte) (*Song, error) {
	r := newReader(data)

	song, err := parseHeader(r)
	if err != nil {
		return nil, err
	}

	var (
		raw    []rawEvent
		tempos []TempoChange
	)
	for i := 0; i < int(song.Tracks); i++ {
		raw, tempos, err = parseTrack(r, i, raw, tempos)
		if err != nil {
			return nil, err
		}
	}

	song.Tempo = NewTimeline(tempos, song.TicksPerQuarter)

	events := make([]contracts.NoteEvent, len(raw))
	for i, ev := range raw {
		events[i] = contracts.NoteEvent{
			TimestampMs: song.Tempo.Millis(ev.tick),
			Note:        ev.note,
			On:          ev.on,
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].TimestampMs < events[j].TimestampMs })
	song.Events = events

	return song, nil
}

func formatError(op string, r *reader, err error) error {
	return &contracts.FormatError{Op: op, Offset: r.offset(), Err: err}
}

func parseHeader(r *reader) (*Song, error) {
	sig, err := r.next(4)
	if err != nil {
		return nil, formatError("read header", r, err)
	}
	if [4]byte(sig) != headerChunk {
		return nil, formatError("read header", r, ErrBadHeader)
	}

	length, err := r.uint32()
	if err != nil {
		return nil, formatError("read header length", r, err)
	}
	if length < minHeaderLength {
		return nil, formatError("read header", r, fmt.Errorf("%w: header length %d", ErrTruncated, length))
	}

	body, err := r.sub(length)
	if err != nil {
		return nil, formatError("read header", r, err)
	}

	// The body holds at least six bytes, so these reads cannot fail.
	format, _ := body.uint16()
	tracks, _ := body.uint16()
	division, _ := body.uint16()

	// An SMPTE division is used as read, so only zero is unusable.
	if division == 0 {
		return nil, formatError("read header", body, fmt.Errorf("%w: 0x%04X", ErrBadDivision, division))
	}

	return &Song{Format: format, Tracks: tracks, TicksPerQuarter: division}, nil
}

func parseTrack(r *reader, index int, raw []rawEvent, tempos []TempoChange) ([]rawEvent, []TempoChange, error) {
	op := fmt.Sprintf("read track %d", index)

	sig, err := r.next(4)
	if err != nil {
		return nil, nil, formatError(op, r, err)
	}
	if [4]byte(sig) != trackChunk {
		return nil, nil, formatError(op, r, ErrBadTrack)
	}

	length, err := r.uint32()
	if err != nil {
		return nil, nil, formatError(op, r, err)
	}

	body, err := r.sub(length)
	if err != nil {
		return nil, nil, formatError(op, r, err)
	}

	var (
		tick       uint32
		lastStatus byte
	)
	for !body.done() {
		delta, err := body.vlq()
		if err != nil {
			return nil, nil, formatError(op, body, err)
		}
		tick += delta

		status, err := body.readByte()
		if err != nil {
			return nil, nil, formatError(op, body, err)
		}
		if status < statusFlag {
			if lastStatus == 0 {
				// Stray data byte before any channel status.
				continue
			}
			body.unreadByte()
			status = lastStatus
		} else if status < sysEx {
			lastStatus = status
		}

		switch command := status & commandMask; {
		case command == noteOn || command == noteOff:
			data, err := body.next(2)
			if err != nil {
				return nil, nil, formatError(op, body, err)
			}
			raw = append(raw, rawEvent{
				tick: tick,
				note: data[0],
				on:   command == noteOn && data[1] > 0,
			})
		case status == metaEvent:
			tc, ok, err := readMeta(body, tick)
			if err != nil {
				return nil, nil, formatError(op, body, err)
			}
			if ok {
				tempos = append(tempos, tc)
			}
		default:
			if err := skipEvent(body, status); err != nil {
				return nil, nil, formatError(op, body, err)
			}
		}
	}

	return raw, tempos, nil
}

// readMeta consumes a meta event and reports a tempo change if it was one.
func readMeta(r *reader, tick uint32) (TempoChange, bool, error) {
	metaType, err := r.readByte()
	if err != nil {
		return TempoChange{}, false, err
	}
	length, err := r.vlq()
	if err != nil {
		return TempoChange{}, false, err
	}

	if metaType == metaSetTempo && length == setTempoLength {
		b, err := r.next(setTempoLength)
		if err != nil {
			return TempoChange{}, false, err
		}
		tempo := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		return TempoChange{Tick: tick, MicrosPerQuarter: tempo}, true, nil
	}

	return TempoChange{}, false, r.skip(length)
}

// skipEvent consumes the data bytes of an event that carries no note information.
func skipEvent(r *reader, status byte) error {
	switch status & commandMask {
	case programChange, channelPressure:
		return r.skip(1)
	case polyPressure, controlChange, pitchBend:
		return r.skip(2)
	}

	switch status {
	case sysEx, sysExEscape:
		length, err := r.vlq()
		if err != nil {
			return err
		}
		return r.skip(length)
	case timeCodeQuart, songSelect:
		return r.skip(1)
	case songPosition:
		return r.skip(2)
	}
	return nil
}
