// Package kbdwindows injects keyboard input on Windows with SendInput.
package kbdwindows

import "github.com/leandrodaf/midikeys/sdk/contracts"

// Flags for KEYBDINPUT.dwFlags
const (
	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
	KEYEVENTF_SCANCODE    = 0x0008
)

// MapVirtualKey returns wrong scan codes for these keys, so they are fixed here.
var manualScanCodes = map[contracts.KeyID]uint16{
	contracts.KeyComma:        0x33,
	contracts.KeyPeriod:       0x34,
	contracts.KeySemicolon:    0x27,
	contracts.KeySlash:        0x35,
	contracts.KeyBacktick:     0x29,
	contracts.KeyLeftBracket:  0x1A,
	contracts.KeyBackslash:    0x2B,
	contracts.KeyRightBracket: 0x1B,
	contracts.KeyQuote:        0x28,
	contracts.KeyMinus:        0x0C,
	contracts.KeyEquals:       0x0D,
	contracts.KeySpace:        0x39,
	contracts.KeyEnter:        0x1C,
	contracts.KeyBackspace:    0x0E,
	contracts.KeyTab:          0x0F,
	contracts.KeyEscape:       0x01,
}

// isExtended reports keys that need KEYEVENTF_EXTENDEDKEY.
func isExtended(key contracts.KeyID) bool {
	return (key >= contracts.KeyPageUp && key <= contracts.KeyDown) ||
		(key >= contracts.KeyInsert && key <= contracts.KeyDelete) ||
		key == contracts.KeyLeftWin || key == contracts.KeyRightWin ||
		key == contracts.KeyApps ||
		key == contracts.KeyRightCtrl ||
		key == contracts.KeyRightAlt
}

// keyFlags builds dwFlags for a scancode key event.
func keyFlags(key contracts.KeyID, pressed bool) uint32 {
	flags := uint32(KEYEVENTF_SCANCODE)
	if isExtended(key) {
		flags |= KEYEVENTF_EXTENDEDKEY
	}
	if !pressed {
		flags |= KEYEVENTF_KEYUP
	}
	return flags
}
