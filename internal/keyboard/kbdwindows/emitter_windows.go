//go:build windows
// +build windows

package kbdwindows

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"golang.org/x/sys/windows"
)

const (
	INPUT_KEYBOARD  = 1
	MAPVK_VK_TO_VSC = 0
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// keyboardInput mirrors INPUT with the keyboard member of the union. The padding
// makes the struct as large as the MOUSEINPUT member on both 386 and amd64.
type keyboardInput struct {
	inputType uint32
	ki        keybdInput
	padding   [8]byte
}

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procSendInput      = user32.NewProc("SendInput")
	procMapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

// Emitter sends scancode key events to the foreground window.
type Emitter struct {
	logger contracts.Logger
	mu     sync.Mutex
	scans  map[contracts.KeyID]uint16
}

// NewEmitter checks that user32 is available and returns an emitter.
func NewEmitter(logger contracts.Logger) (contracts.KeyEmitter, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("load SendInput: %w", err)
	}
	if err := procMapVirtualKeyW.Find(); err != nil {
		return nil, fmt.Errorf("load MapVirtualKeyW: %w", err)
	}
	logger.Debug("SendInput keyboard emitter ready")
	return &Emitter{logger: logger, scans: make(map[contracts.KeyID]uint16)}, nil
}

func (e *Emitter) scanCode(key contracts.KeyID) uint16 {
	if sc, ok := manualScanCodes[key]; ok {
		return sc
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if sc, ok := e.scans[key]; ok {
		return sc
	}
	r, _, _ := procMapVirtualKeyW.Call(uintptr(key), MAPVK_VK_TO_VSC)
	sc := uint16(r)
	e.scans[key] = sc
	return sc
}

// Emit presses or releases key.
func (e *Emitter) Emit(key contracts.KeyID, pressed bool) error {
	sc := e.scanCode(key)
	if sc == 0 {
		return fmt.Errorf("no scan code for key %s", key)
	}

	input := keyboardInput{
		inputType: INPUT_KEYBOARD,
		ki: keybdInput{
			wScan:   sc,
			dwFlags: keyFlags(key, pressed),
		},
	}

	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&input)), unsafe.Sizeof(input))
	if n != 1 {
		return fmt.Errorf("SendInput %s: %w", key, err)
	}
	return nil
}
