package smf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(format, tracks, tpqn uint16) []byte {
	b := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6}
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, tracks)
	return binary.BigEndian.AppendUint16(b, tpqn)
}

func track(events ...byte) []byte {
	b := []byte{'M', 'T', 'r', 'k'}
	b = binary.BigEndian.AppendUint32(b, uint32(len(events)))
	return append(b, events...)
}

func file(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

func note(ms uint64, n uint8, on bool) contracts.NoteEvent {
	return contracts.NoteEvent{TimestampMs: ms, Note: n, On: on}
}

var (
	tempo120 = []byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20} // 500000 us per quarter
	tempo60  = []byte{0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40} // 1000000 us per quarter
	eot      = []byte{0x00, 0xFF, 0x2F, 0x00}
)

func events(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestDecodeSingleTrackSingleTempo(t *testing.T) {
	data := file(
		header(0, 1, 480),
		track(events(
			[]byte{0x00}, tempo120,
			[]byte{0x00, 0x90, 60, 100},
			[]byte{0x83, 0x60, 0x80, 60, 0},
			[]byte{0x83, 0x60, 0x90, 62, 100},
			eot,
		)...),
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{
		note(0, 60, true),
		note(500, 60, false),
		note(1000, 62, true),
	}, got)
}

func TestDecodeMidFileTempoChange(t *testing.T) {
	data := file(
		header(0, 1, 480),
		track(events(
			[]byte{0x00}, tempo120,
			[]byte{0x00, 0x90, 60, 100},
			[]byte{0x83, 0x60}, tempo60,
			[]byte{0x83, 0x60, 0x80, 60, 0},
		)...),
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true), note(1500, 60, false)}, got)
}

func TestDecodeMergesTracks(t *testing.T) {
	data := file(
		header(1, 3, 480),
		track(events([]byte{0x00}, tempo120, eot)...),
		track(
			0x00, 0x90, 60, 64,
			0x83, 0x60, 0x80, 60, 0,
		),
		track(
			0x81, 0x70, 0x91, 64, 64, // tick 240
			0x83, 0x60, 0x81, 64, 0, // tick 720
		),
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{
		note(0, 60, true),
		note(250, 64, true),
		note(500, 60, false),
		note(750, 64, false),
	}, got)
}

func TestDecodeTempoFromLaterTrackAppliesToEarlierTrack(t *testing.T) {
	data := file(
		header(1, 2, 480),
		track(
			0x00, 0x90, 60, 64,
			0x87, 0x40, 0x80, 60, 0, // tick 960
		),
		track(events([]byte{0x83, 0x60}, tempo60)...), // tempo change at tick 480
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true), note(1500, 60, false)}, got)
}

func TestDecodeKeepsTrackOrderForEqualTimestamps(t *testing.T) {
	data := file(
		header(1, 2, 96),
		track(0x00, 0x90, 72, 64),
		track(0x00, 0x90, 48, 64, 0x00, 0x80, 48, 0),
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{
		note(0, 72, true),
		note(0, 48, true),
		note(0, 48, false),
	}, got)
}

func TestDecodeRunningStatusAndZeroVelocity(t *testing.T) {
	data := file(
		header(0, 1, 480),
		track(
			0x00, 0x90, 60, 64,
			0x60, 62, 64, // running status note on, tick 96
			0x60, 60, 0, // note on velocity 0, tick 192
			0x00, 0xB0, 7, 100, // control change resets running status to 0xB0
			0x00, 10, 90, // running status control change
			0x60, 0x90, 62, 0,
		),
	)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{
		note(0, 60, true),
		note(100, 62, true),
		note(200, 60, false),
		note(300, 62, false),
	}, got)
}

func TestDecodeSkipsNonNoteEvents(t *testing.T) {
	data := file(
		header(0, 1, 480),
		track(
			0x00, 0xB0, 7, 100, // control change
			0x00, 0xC0, 5, // program change
			0x00, 0xD0, 40, // channel pressure
			0x00, 0xA0, 60, 30, // polyphonic pressure
			0x00, 0xE0, 0x00, 0x40, // pitch bend
			0x00, 0xF0, 0x03, 0x7E, 0x01, 0xF7, // sysex
			0x00, 0xF7, 0x01, 0xF7, // escape
			0x00, 0xFF, 0x03, 0x04, 'l', 'e', 'a', 'd', // track name
			0x00, 0xFF, 0x51, 0x02, 0x00, 0x00, // tempo with wrong length is skipped
			0x00, 0x90, 60, 64,
			0x00, 0xFF, 0x2F, 0x00,
		),
	)

	song, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true)}, song.Events)
	assert.Empty(t, song.Tempo.Changes())
}

func TestDecodeSkipsExtraHeaderBytes(t *testing.T) {
	hdr := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 8, 0, 0, 0, 1, 0x01, 0xE0, 0xAA, 0xBB}
	data := file(hdr, track(0x00, 0x90, 60, 64))

	song, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(480), song.TicksPerQuarter)
	assert.Equal(t, uint16(1), song.Tracks)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true)}, song.Events)
}

func TestDecodeSkipsDataByteWithoutStatus(t *testing.T) {
	data := file(header(0, 1, 480), track(
		0x00, 60, // stray data byte, no status seen yet
		0x00, 0x90, 60, 64,
		0x83, 0x60, 60, 0, // running status from here on, tick 480
	))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true), note(500, 60, false)}, got)
}

func TestDecodeSMPTEDivisionUsedAsRead(t *testing.T) {
	song, err := Parse(file(header(0, 1, 0xE728), track(0x00, 0x90, 60, 64)))
	require.NoError(t, err)
	assert.Equal(t, uint16(0xE728), song.TicksPerQuarter)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true)}, song.Events)
}

func TestDecodeNoTracks(t *testing.T) {
	song, err := Parse(header(1, 0, 480))
	require.NoError(t, err)
	assert.Empty(t, song.Events)
	assert.Zero(t, song.Duration())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"wrong header signature", file([]byte("RIFF\x00\x00\x00\x06\x00\x00\x00\x01\x01\xE0"), track(0x00, 0x90, 60, 64)), ErrBadHeader},
		{"short header signature", []byte("MTh"), ErrTruncated},
		{"header length too small", []byte{'M', 'T', 'h', 'd', 0, 0, 0, 4, 0, 0, 0, 1}, ErrTruncated},
		{"header past end of data", []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0}, ErrTruncated},
		{"zero division", header(0, 0, 0), ErrBadDivision},
		{"wrong track signature", file(header(0, 1, 480), []byte("MTrx\x00\x00\x00\x04\x00\x90\x3C\x40")), ErrBadTrack},
		{"missing track", header(0, 2, 480), ErrTruncated},
		{"track past end of data", file(header(0, 1, 480), []byte("MTrk\x00\x00\x00\x10\x00\x90\x3C\x40")), ErrTruncated},
		{"note past end of chunk", file(header(0, 2, 480), track(0x00, 0x90, 60), track(0x00, 0x90, 60, 64)), ErrTruncated},
		{"meta length past end of chunk", file(header(0, 1, 480), track(0x00, 0xFF, 0x03, 0x10, 'x')), ErrTruncated},
		{"sysex length past end of chunk", file(header(0, 1, 480), track(0x00, 0xF0, 0x05, 0x01)), ErrTruncated},
		{"delta without event", file(header(0, 1, 480), track(0x81)), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			assert.Nil(t, got)
			require.Error(t, err)

			var ferr *contracts.FormatError
			require.True(t, errors.As(err, &ferr), "want *contracts.FormatError, got %T", err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeBadHeaderFailsBeforeTracks(t *testing.T) {
	_, err := Decode([]byte("XXXX\x00\x00\x00\x06"))

	var ferr *contracts.FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "read header", ferr.Op)
	assert.Equal(t, 4, ferr.Offset)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	data := file(header(0, 1, 480), track(0x00, 0x90, 60, 64, 0x83, 0x60, 0x80, 60, 0))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	song, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, song.Events, 2)
	assert.Equal(t, uint64(500), song.Duration())

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.mid"))
	require.Error(t, err)
	var ferr *contracts.FormatError
	assert.False(t, errors.As(err, &ferr), "a missing file is not a format error")
}

func TestDecodeReader(t *testing.T) {
	data := file(header(0, 1, 480), track(0x00, 0x90, 60, 64))
	song, err := DecodeReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []contracts.NoteEvent{note(0, 60, true)}, song.Events)
}
