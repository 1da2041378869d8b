package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/midikeys/internal/dispatch"
	"github.com/leandrodaf/midikeys/internal/keyboard/kbdlog"
	"github.com/leandrodaf/midikeys/internal/keymap"
	"github.com/leandrodaf/midikeys/internal/live"
	"github.com/leandrodaf/midikeys/internal/logger"
	"github.com/leandrodaf/midikeys/sdk/contracts"
	"github.com/leandrodaf/midikeys/sdk/midi"
)

// Logs the keys a live MIDI keyboard would press, without injecting anything.
func main() {
	log := logger.NewZapLogger()
	log.SetLevel(contracts.DebugLevel)

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithMIDIEventFilter(contracts.NoteFilter()),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}

	devices, err := client.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	dispatcher := dispatch.New(kbdlog.NewEmitter(log), log)
	listener := live.New(client, keymap.New(keymap.PresetFull), dispatcher, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	if err := listener.Run(ctx); err != nil {
		log.Error("Live session failed", log.Field().Error("error", err))
	}
}
