package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leandrodaf/midikeys/internal/logger"
	"github.com/leandrodaf/midikeys/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type emission struct {
	key     contracts.KeyID
	pressed bool
}

type recordingEmitter struct {
	mu    sync.Mutex
	calls []emission
	err   error
}

func (r *recordingEmitter) Emit(key contracts.KeyID, pressed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, emission{key, pressed})
	return r.err
}

func (r *recordingEmitter) emissions() []emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emission(nil), r.calls...)
}

func TestDispatcherIdempotence(t *testing.T) {
	em := &recordingEmitter{}
	d := New(em, logger.NewNopLogger())

	d.NoteOn('Z')
	d.NoteOn('Z')
	assert.Equal(t, []emission{{'Z', true}}, em.emissions())

	d.NoteOff('Z')
	assert.Equal(t, []emission{{'Z', true}, {'Z', false}}, em.emissions())

	d.NoteOff('Z')
	assert.Len(t, em.emissions(), 2)

	assert.Equal(t, Stats{Presses: 1, Releases: 1, Ignored: 2}, d.Stats())
}

func TestDispatcherReleaseWithoutPress(t *testing.T) {
	em := &recordingEmitter{}
	d := New(em, logger.NewNopLogger())

	d.NoteOff('Q')
	assert.Empty(t, em.emissions())
	assert.Empty(t, d.Held())
}

func TestDispatcherHeldAndReleaseAll(t *testing.T) {
	em := &recordingEmitter{}
	d := New(em, logger.NewNopLogger())

	d.NoteOn('Z')
	d.NoteOn(contracts.KeyComma)
	d.NoteOn('A')
	d.NoteOff('A')

	assert.Equal(t, []contracts.KeyID{'Z', contracts.KeyComma}, d.Held())

	released := d.ReleaseAll()
	assert.Equal(t, []contracts.KeyID{'Z', contracts.KeyComma}, released)
	assert.Empty(t, d.Held())
	assert.Empty(t, d.ReleaseAll())

	calls := em.emissions()
	assert.Equal(t, []emission{{'Z', false}, {contracts.KeyComma, false}}, calls[len(calls)-2:])
}

func TestDispatcherEmitErrorKeepsAlternation(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	em := &recordingEmitter{err: errors.New("injection blocked")}
	d := New(em, logger.NewFromCore(core))

	d.NoteOn('Z')
	d.NoteOn('Z')
	d.NoteOff('Z')

	assert.Equal(t, []emission{{'Z', true}, {'Z', false}}, em.emissions())
	assert.Equal(t, uint64(2), d.Stats().Failed)
	assert.Equal(t, 2, logs.FilterMessage("failed to emit key").Len())
}

func TestDispatcherConcurrentAlternation(t *testing.T) {
	em := &recordingEmitter{}
	d := New(em, logger.NewNopLogger())

	keys := []contracts.KeyID{'Z', 'X', 'C'}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := keys[(w+i)%len(keys)]
				if (w+i)%2 == 0 {
					d.NoteOn(key)
				} else {
					d.NoteOff(key)
				}
			}
		}(w)
	}
	wg.Wait()

	last := map[contracts.KeyID]bool{}
	for i, e := range em.emissions() {
		assert.NotEqual(t, last[e.key], e.pressed, "emission %d repeats state for key %s", i, e.key)
		last[e.key] = e.pressed
	}

	held := map[contracts.KeyID]bool{}
	for _, k := range d.Held() {
		held[k] = true
	}
	for _, k := range keys {
		assert.Equal(t, last[k], held[k], "held set disagrees with last emission for %s", k)
	}
}

type blockingEmitter struct {
	entered chan struct{}
	release chan struct{}
	blockOn contracts.KeyID
	recordingEmitter
}

func (b *blockingEmitter) Emit(key contracts.KeyID, pressed bool) error {
	if key == b.blockOn {
		close(b.entered)
		<-b.release
	}
	return b.recordingEmitter.Emit(key, pressed)
}

func TestDispatcherKeysDoNotBlockEachOther(t *testing.T) {
	em := &blockingEmitter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		blockOn: 'Z',
	}
	d := New(em, logger.NewNopLogger())

	go d.NoteOn('Z')
	<-em.entered

	done := make(chan struct{})
	go func() {
		d.NoteOn('X')
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch of an unrelated key waited for a slow emission")
	}
	close(em.release)

	require.Eventually(t, func() bool { return len(d.Held()) == 2 }, time.Second, 5*time.Millisecond)
}

// countingLogger counts the fields built through it.
type countingLogger struct {
	contracts.Logger
	fields atomic.Int64
}

func (c *countingLogger) Field() contracts.Field {
	c.fields.Add(1)
	return c.Logger.Field()
}

func TestDispatcherSkipsDebugFieldsWhenDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &countingLogger{Logger: logger.NewFromCore(core)}
	d := New(&recordingEmitter{}, log)

	d.NoteOn('Z')
	d.NoteOff('Z')
	assert.Zero(t, log.fields.Load())
	assert.Zero(t, logs.Len())
}

func TestDispatcherLogsTransitionsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := New(&recordingEmitter{}, logger.NewFromCore(core))

	d.NoteOn('Z')
	d.NoteOn('Z')
	d.NoteOff('Z')

	entries := logs.FilterMessage("key transition").All()
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0].ContextMap()["pressed"])
	assert.Equal(t, false, entries[1].ContextMap()["pressed"])
}
