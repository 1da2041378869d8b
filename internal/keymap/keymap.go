// Package keymap translates MIDI note numbers into keyboard keys.
package keymap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// Preset selects one of the fixed note tables.
type Preset int

const (
	// PresetFull covers three chromatic octaves, notes 48 to 84.
	PresetFull Preset = iota
	// PresetWhites covers the white notes from middle C (60) to 84.
	PresetWhites
)

func (p Preset) String() string {
	switch p {
	case PresetFull:
		return "full"
	case PresetWhites:
		return "whites"
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// ParsePreset accepts "full" or "whites".
func ParsePreset(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "full":
		return PresetFull, nil
	case "whites", "whites-only", "white":
		return PresetWhites, nil
	}
	return PresetFull, fmt.Errorf("unknown key preset %q", name)
}

var fullTable = map[uint8]contracts.KeyID{
	48: contracts.KeyComma, 49: 'L', 50: contracts.KeyPeriod, 51: contracts.KeySemicolon,
	52: contracts.KeySlash, 53: 'O', 54: '0', 55: 'P', 56: contracts.KeyMinus,
	57: contracts.KeyLeftBracket, 58: contracts.KeyEquals, 59: contracts.KeyRightBracket,

	60: 'Z', 61: 'S', 62: 'X', 63: 'D', 64: 'C',
	65: 'V', 66: 'G', 67: 'B', 68: 'H', 69: 'N',
	70: 'J', 71: 'M',

	72: 'Q', 73: '2', 74: 'W', 75: '3', 76: 'E',
	77: 'R', 78: '5', 79: 'T', 80: '6', 81: 'Y',
	82: '7', 83: 'U', 84: 'I',
}

var whitesTable = map[uint8]contracts.KeyID{
	60: 'A', 62: 'S', 64: 'D', 65: 'F', 67: 'G', 69: 'H', 71: 'J',
	72: 'Q', 74: 'W', 76: 'E', 77: 'R', 79: 'T', 81: 'Y', 83: 'U', 84: 'I',
}

// Mapper is an immutable note to key table.
type Mapper struct {
	preset Preset
	keys   map[uint8]contracts.KeyID
}

// New builds the table for preset. Unknown presets fall back to PresetFull.
func New(preset Preset) *Mapper {
	src := fullTable
	if preset == PresetWhites {
		src = whitesTable
	} else {
		preset = PresetFull
	}

	keys := make(map[uint8]contracts.KeyID, len(src))
	for note, key := range src {
		keys[note] = key
	}
	return &Mapper{preset: preset, keys: keys}
}

// Map returns the key for note. ok is false for notes outside the table.
func (m *Mapper) Map(note uint8) (key contracts.KeyID, ok bool) {
	key, ok = m.keys[note]
	return key, ok
}

// Preset returns the table this mapper was built from.
func (m *Mapper) Preset() Preset { return m.preset }

// Notes lists the mapped notes in ascending order.
func (m *Mapper) Notes() []uint8 {
	notes := make([]uint8, 0, len(m.keys))
	for note := range m.keys {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}
