package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midikeys/internal/config"
	"github.com/leandrodaf/midikeys/internal/dispatch"
	"github.com/leandrodaf/midikeys/internal/keymap"
	"github.com/leandrodaf/midikeys/internal/live"
	"github.com/leandrodaf/midikeys/internal/logger"
	"github.com/leandrodaf/midikeys/internal/playback"
	"github.com/leandrodaf/midikeys/internal/smf"
	"github.com/leandrodaf/midikeys/sdk/contracts"
	"github.com/leandrodaf/midikeys/sdk/keyboard"
	"github.com/leandrodaf/midikeys/sdk/midi"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func runMidikeys(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if opts.listDevices {
		return listDevices(log)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-stdin.Pressed():
			log.Info("stop requested")
			stop()
		case <-ctx.Done():
		}
	}()

	emitter, err := keyboard.NewEmitter(log, cfg.DryRun)
	if err != nil {
		return err
	}
	mapper := keymap.New(cfg.KeyPreset())
	dispatcher := dispatch.New(emitter, log)

	if len(args) == 1 {
		err = playFile(ctx, args[0], cfg, mapper, dispatcher, log)
	} else {
		err = listen(ctx, cfg, mapper, dispatcher, log)
	}

	stats := dispatcher.Stats()
	log.Info("session finished",
		log.Field().Uint64("presses", stats.Presses),
		log.Field().Uint64("releases", stats.Releases),
		log.Field().Uint64("failed", stats.Failed))
	return err
}

func newLogger(cfg config.Config) (contracts.Logger, error) {
	log := logger.NewZapLogger()
	log.SetLevel(cfg.Level())
	if cfg.LogFile != "" {
		if err := log.SetDestination(contracts.FileLog, cfg.LogFile); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func playFile(ctx context.Context, path string, cfg config.Config, mapper *keymap.Mapper, dispatcher *dispatch.Dispatcher, log contracts.Logger) error {
	song, err := smf.DecodeFile(path)
	if err != nil {
		return err
	}
	log.Info("loaded midi file",
		log.Field().String("path", path),
		log.Field().Int("events", len(song.Events)),
		log.Field().Int("tempoChanges", len(song.Tempo.Changes())),
		log.Field().Uint64("durationMs", song.Duration()))

	fmt.Printf("Playback in %d seconds. Focus the target window.\n", int(cfg.Countdown.Seconds()))
	sched := playback.New(mapper, dispatcher, log, playback.WithLeadIn(cfg.Countdown))
	err = sched.Run(ctx, song.Events)

	if released := dispatcher.ReleaseAll(); len(released) > 0 {
		log.Debug("released held keys", log.Field().Int("count", len(released)))
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func listen(ctx context.Context, cfg config.Config, mapper *keymap.Mapper, dispatcher *dispatch.Dispatcher, log contracts.Logger) error {
	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithMIDIEventFilter(contracts.NoteFilter()),
	)
	if err != nil {
		return err
	}

	fmt.Println("Listening for MIDI input. Press Enter to stop.")
	l := live.New(client, mapper, dispatcher, log, live.WithDevice(cfg.Device))
	return l.Run(ctx)
}

func listDevices(log contracts.Logger) (err error) {
	client, err := midi.NewMIDIClient(contracts.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Stop()) }()

	devices, err := client.ListDevices()
	if err != nil {
		return &contracts.DeviceError{Op: "list devices", Device: -1, Err: err}
	}
	if len(devices) == 0 {
		fmt.Println("No MIDI input devices found.")
		return nil
	}
	for i, d := range devices {
		fmt.Printf("%d: %s\n", i, d)
	}
	return nil
}
