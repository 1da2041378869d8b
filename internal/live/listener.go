// Package live forwards notes from a MIDI input device to the key dispatcher.
package live

import (
	"context"
	"sync"

	"github.com/leandrodaf/midikeys/sdk/contracts"
	"go.uber.org/multierr"
)

// Releaser is implemented by dispatchers that can drop every held key.
type Releaser interface {
	ReleaseAll() []contracts.KeyID
}

// Option configures a Listener.
type Option func(*Listener)

// WithDevice selects the input device index. The default is the first device.
func WithDevice(index int) Option {
	return func(l *Listener) { l.device = index }
}

// WithReleaseOnStop controls whether held keys are released when the session stops.
// It is enabled by default.
func WithReleaseOnStop(release bool) Option {
	return func(l *Listener) { l.releaseOnStop = release }
}

// Listener runs one live session on a MIDI input transport.
type Listener struct {
	client        contracts.ClientMIDI
	mapper        contracts.NoteMapper
	dispatcher    contracts.KeyDispatcher
	logger        contracts.Logger
	device        int
	releaseOnStop bool

	mu      sync.RWMutex // held for reading while Handle dispatches
	stopped bool
}

// New returns a listener that opens a device on client.
func New(client contracts.ClientMIDI, mapper contracts.NoteMapper, dispatcher contracts.KeyDispatcher, logger contracts.Logger, opts ...Option) *Listener {
	l := &Listener{
		client:        client,
		mapper:        mapper,
		dispatcher:    dispatcher,
		logger:        logger,
		releaseOnStop: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run opens the device, forwards notes until ctx is done, then stops and closes the
// device. Failing to enumerate, open or start the device returns a *contracts.DeviceError.
func (l *Listener) Run(ctx context.Context) (err error) {
	devices, err := l.client.ListDevices()
	if err != nil {
		return &contracts.DeviceError{Op: "list devices", Device: -1, Err: err}
	}
	if len(devices) == 0 {
		return &contracts.DeviceError{Op: "list devices", Device: -1, Err: contracts.ErrNoMIDIDevices}
	}
	if l.device < 0 || l.device >= len(devices) {
		return &contracts.DeviceError{Op: "select device", Device: l.device, Err: contracts.ErrInvalidMIDIDevice}
	}

	if err := l.client.SelectDevice(l.device); err != nil {
		return &contracts.DeviceError{Op: "open", Device: l.device, Err: err}
	}
	l.setStopped(false)
	if err := l.client.StartCapture(l.Handle); err != nil {
		return multierr.Append(
			&contracts.DeviceError{Op: "start", Device: l.device, Err: err},
			l.client.Stop(),
		)
	}

	l.logger.Info("listening for MIDI input",
		l.logger.Field().Int("device", l.device),
		l.logger.Field().String("name", devices[l.device].String()))

	<-ctx.Done()

	err = l.client.Stop()
	// A callback may still be running after Stop. Wait for it so its press
	// cannot land after the release below.
	l.setStopped(true)
	if r, ok := l.dispatcher.(Releaser); ok && l.releaseOnStop {
		r.ReleaseAll()
	}
	l.logger.Info("stopped listening", l.logger.Field().Int("device", l.device))
	return err
}

// Handle processes one incoming message. It is called on the transport's thread and
// only waits on the per-key dispatch lock, or briefly while the session is stopping.
// Anything that is not a mapped note start or end is ignored, and so is every
// message once Run has begun releasing keys.
func (l *Listener) Handle(msg contracts.MIDI) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return
	}

	on := msg.IsNoteOn()
	if !on && !msg.IsNoteOff() {
		return
	}
	key, ok := l.mapper.Map(msg.Note)
	if !ok {
		return
	}
	if on {
		l.dispatcher.NoteOn(key)
	} else {
		l.dispatcher.NoteOff(key)
	}
}

func (l *Listener) setStopped(stopped bool) {
	l.mu.Lock()
	l.stopped = stopped
	l.mu.Unlock()
}
