// Package playback replays decoded note events against the wall clock.
package playback

import (
	"context"
	"time"

	"github.com/leandrodaf/midikeys/sdk/contracts"
)

// Clock abstracts time for the scheduler.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until t or until ctx is done. It returns at once if t has passed.
	SleepUntil(ctx context.Context, t time.Time) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) SleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLeadIn delays the first event by d, giving the user time to focus the target window.
func WithLeadIn(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.leadIn = d
		}
	}
}

// Scheduler plays events on one goroutine, each at a fixed offset from the start.
type Scheduler struct {
	mapper     contracts.NoteMapper
	dispatcher contracts.KeyDispatcher
	logger     contracts.Logger
	clock      Clock
	leadIn     time.Duration
}

// New returns a scheduler that resolves notes with mapper and forwards them to dispatcher.
func New(mapper contracts.NoteMapper, dispatcher contracts.KeyDispatcher, logger contracts.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		mapper:     mapper,
		dispatcher: dispatcher,
		logger:     logger,
		clock:      wallClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plays events in order. Each wait target is origin + TimestampMs, so a late event
// never delays the ones after it. Cancelling ctx stops before the next event and
// Run returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context, events []contracts.NoteEvent) error {
	origin := s.clock.Now().Add(s.leadIn)
	if s.leadIn > 0 {
		s.logger.Info("playback scheduled", s.logger.Field().Duration("leadIn", s.leadIn))
	}

	var played, skipped int
	for _, ev := range events {
		target := origin.Add(time.Duration(ev.TimestampMs) * time.Millisecond)
		if err := s.clock.SleepUntil(ctx, target); err != nil {
			s.logger.Info("playback stopped",
				s.logger.Field().Int("played", played),
				s.logger.Field().Int("remaining", len(events)-played-skipped))
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		key, ok := s.mapper.Map(ev.Note)
		if !ok {
			skipped++
			continue
		}
		if ev.On {
			s.dispatcher.NoteOn(key)
		} else {
			s.dispatcher.NoteOff(key)
		}
		played++
	}

	s.logger.Info("playback finished",
		s.logger.Field().Int("played", played),
		s.logger.Field().Int("unmapped", skipped))
	return nil
}
