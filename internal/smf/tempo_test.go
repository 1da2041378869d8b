package smf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicksToMicros(t *testing.T) {
	tests := []struct {
		name    string
		tick    uint32
		changes []TempoChange
		tpqn    uint16
		want    uint64
	}{
		{"default tempo", 480, nil, 480, 500000},
		{"explicit tempo at zero", 960, []TempoChange{{0, 500000}}, 480, 1000000},
		{
			name:    "mid file change",
			tick:    960,
			changes: []TempoChange{{0, 500000}, {480, 1000000}},
			tpqn:    480,
			want:    1500000,
		},
		{
			name:    "change at target tick does not apply to it",
			tick:    480,
			changes: []TempoChange{{480, 1000000}},
			tpqn:    480,
			want:    500000,
		},
		{
			name:    "default tempo before first change",
			tick:    960,
			changes: []TempoChange{{480, 250000}},
			tpqn:    480,
			want:    500000 + 250000,
		},
		{
			name:    "each segment truncates",
			tick:    2,
			changes: []TempoChange{{1, 1000}},
			tpqn:    3,
			want:    500000/3 + 1000/3,
		},
		{"zero tpqn", 100, nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TicksToMicros(tt.tick, tt.changes, tt.tpqn))
		})
	}
}

func TestNewTimelineSortsStable(t *testing.T) {
	in := []TempoChange{{960, 400000}, {0, 600000}, {480, 1000000}, {480, 750000}}
	tl := NewTimeline(in, 480)

	assert.Equal(t, []TempoChange{{0, 600000}, {480, 1000000}, {480, 750000}, {960, 400000}}, tl.Changes())
	assert.Equal(t, TempoChange{960, 400000}, in[0], "input must not be reordered")

	// 480 ticks at 600000, then 0 ticks at 1000000, then 480 ticks at 750000.
	assert.Equal(t, uint64(600000+750000), tl.Micros(960))
	assert.Equal(t, uint64(1350), tl.Millis(960))
}

func TestTempoChangeBPM(t *testing.T) {
	assert.InDelta(t, 120.0, TempoChange{MicrosPerQuarter: 500000}.BPM(), 1e-9)
	assert.InDelta(t, 60.0, TempoChange{MicrosPerQuarter: 1000000}.BPM(), 1e-9)
	assert.Zero(t, TempoChange{}.BPM())
}
