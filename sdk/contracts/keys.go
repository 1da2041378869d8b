package contracts

// KeyID identifies a keyboard key independent of how the OS injects it.
// Values follow the Windows virtual-key numbering, which covers every key the
// mapping presets use.
type KeyID uint8

// Virtual-key codes for keys that have no printable ASCII equivalent.
// Letters and digits use their upper-case ASCII code ('A', '0').
const (
	KeyBackspace KeyID = 0x08
	KeyTab       KeyID = 0x09
	KeyEnter     KeyID = 0x0D
	KeyEscape    KeyID = 0x1B
	KeySpace     KeyID = 0x20
	KeyPageUp    KeyID = 0x21
	KeyPageDown  KeyID = 0x22
	KeyEnd       KeyID = 0x23
	KeyHome      KeyID = 0x24
	KeyLeft      KeyID = 0x25
	KeyUp        KeyID = 0x26
	KeyRight     KeyID = 0x27
	KeyDown      KeyID = 0x28
	KeyInsert    KeyID = 0x2D
	KeyDelete    KeyID = 0x2E
	KeyLeftWin   KeyID = 0x5B
	KeyRightWin  KeyID = 0x5C
	KeyApps      KeyID = 0x5D
	KeyRightCtrl KeyID = 0xA3
	KeyRightAlt  KeyID = 0xA5

	KeySemicolon    KeyID = 0xBA // ;:
	KeyEquals       KeyID = 0xBB // =+
	KeyComma        KeyID = 0xBC // ,<
	KeyMinus        KeyID = 0xBD // -_
	KeyPeriod       KeyID = 0xBE // .>
	KeySlash        KeyID = 0xBF // /?
	KeyBacktick     KeyID = 0xC0 // `~
	KeyLeftBracket  KeyID = 0xDB // [{
	KeyBackslash    KeyID = 0xDC // \|
	KeyRightBracket KeyID = 0xDD // ]}
	KeyQuote        KeyID = 0xDE // '"
)

var keyNames = map[KeyID]string{
	KeyBackspace: "Backspace", KeyTab: "Tab", KeyEnter: "Enter", KeyEscape: "Escape",
	KeySpace: "Space", KeyPageUp: "PageUp", KeyPageDown: "PageDown", KeyEnd: "End",
	KeyHome: "Home", KeyLeft: "Left", KeyUp: "Up", KeyRight: "Right", KeyDown: "Down",
	KeyInsert: "Insert", KeyDelete: "Delete", KeyLeftWin: "LeftWin", KeyRightWin: "RightWin",
	KeyApps: "Apps", KeyRightCtrl: "RightCtrl", KeyRightAlt: "RightAlt",
	KeySemicolon: ";", KeyEquals: "=", KeyComma: ",", KeyMinus: "-", KeyPeriod: ".",
	KeySlash: "/", KeyBacktick: "`", KeyLeftBracket: "[", KeyBackslash: `\`,
	KeyRightBracket: "]", KeyQuote: "'",
}

// String returns a human readable key name.
func (k KeyID) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	if (k >= 'A' && k <= 'Z') || (k >= '0' && k <= '9') {
		return string(rune(k))
	}
	return "VK_" + hexByte(byte(k))
}

func hexByte(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}

// KeyEmitter injects synthetic key presses and releases.
type KeyEmitter interface {
	Emit(key KeyID, pressed bool) error
}

// NoteMapper resolves a note number to a key. ok is false for unmapped notes.
type NoteMapper interface {
	Map(note uint8) (key KeyID, ok bool)
}

// KeyDispatcher receives mapped note starts and ends.
type KeyDispatcher interface {
	NoteOn(key KeyID)
	NoteOff(key KeyID)
}
