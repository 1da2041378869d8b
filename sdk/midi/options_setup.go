package midi

import (
	"github.com/leandrodaf/midikeys/internal/logger"
	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if the log destination could not be applied.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	ownLogger := options.Logger == nil
	if ownLogger {
		options.Logger = logger.NewZapLogger()
	}

	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{}
	}
	if options.CoreMIDIConfig.ClientName == "" {
		options.CoreMIDIConfig.ClientName = "midikeys"
	}
	if options.CoreMIDIConfig.PortName == "" {
		options.CoreMIDIConfig.PortName = "Input Port"
	}

	// A caller-supplied logger keeps its own level and destination.
	if ownLogger {
		options.Logger.SetLevel(options.LogLevel)
		if options.LogFilePath != "" {
			if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
				return contracts.ClientOptions{}, err
			}
		}
	}
	return *options, nil
}
