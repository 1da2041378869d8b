// Command midikeys turns MIDI notes into keyboard presses, either by playing a
// Standard MIDI File or by listening to a live input device.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type flags struct {
	configPath  string
	whites      bool
	device      int
	countdown   time.Duration
	logLevel    string
	logFile     string
	dryRun      bool
	listDevices bool
}

var opts flags

var rootCmd = &cobra.Command{
	Use:   "midikeys [file.mid]",
	Short: "Play MIDI notes as computer key presses",
	Long: `midikeys maps MIDI notes to keyboard keys and injects them into the focused window.

With a file argument the notes are played back on the file's timeline after a
countdown. Without one, notes are read from a live MIDI input until Enter or
Ctrl+C is pressed.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMidikeys,
}

func init() {
	// Double-clicking the exe or dropping a file on it starts a session from Explorer.
	cobra.MousetrapHelpText = ""
	registerFlags(rootCmd.Flags(), &opts)
}

func registerFlags(fs *pflag.FlagSet, f *flags) {
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML settings file")
	fs.BoolVarP(&f.whites, "whites", "w", false, "use the white-keys-only layout")
	fs.IntVarP(&f.device, "device", "d", 0, "live MIDI input device index")
	fs.DurationVar(&f.countdown, "countdown", 3*time.Second, "delay before file playback starts")
	fs.StringVarP(&f.logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to this file instead of stderr")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "log key actions instead of injecting them")
	fs.BoolVar(&f.listDevices, "list-devices", false, "print the live MIDI inputs and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Press Enter to quit.")
		stdin.Wait()
		os.Exit(1)
	}
}
