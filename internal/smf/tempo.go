package smf

import "sort"

// DefaultMicrosPerQuarter is the tempo in effect before the first tempo change (120 BPM).
const DefaultMicrosPerQuarter = 500000

// TempoChange sets the tempo from Tick onward.
type TempoChange struct {
	Tick             uint32
	MicrosPerQuarter uint32
}

// BPM returns the tempo in beats per minute.
func (tc TempoChange) BPM() float64 {
	if tc.MicrosPerQuarter == 0 {
		return 0
	}
	return 60_000_000 / float64(tc.MicrosPerQuarter)
}

// TicksToMicros converts an absolute tick to microseconds. sorted must be ordered
// by Tick. Each whole segment is truncated separately, so the result only depends
// on the tempo map and never on which track the tick came from.
func TicksToMicros(tick uint32, sorted []TempoChange, tpqn uint16) uint64 {
	if tpqn == 0 {
		return 0
	}

	var (
		us       uint64
		lastTick uint32
		tempo    uint64 = DefaultMicrosPerQuarter
	)

	for _, tc := range sorted {
		if tc.Tick >= tick {
			break
		}
		us += uint64(tc.Tick-lastTick) * tempo / uint64(tpqn)
		lastTick = tc.Tick
		tempo = uint64(tc.MicrosPerQuarter)
	}

	return us + uint64(tick-lastTick)*tempo/uint64(tpqn)
}

// Timeline is a frozen tempo map shared by every track of a file.
type Timeline struct {
	changes []TempoChange
	tpqn    uint16
}

// NewTimeline copies changes and sorts them by tick, keeping the file order of
// changes that share a tick.
func NewTimeline(changes []TempoChange, tpqn uint16) *Timeline {
	sorted := make([]TempoChange, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })
	return &Timeline{changes: sorted, tpqn: tpqn}
}

// Micros returns the time of tick in microseconds.
func (t *Timeline) Micros(tick uint32) uint64 {
	return TicksToMicros(tick, t.changes, t.tpqn)
}

// Millis returns the time of tick in whole milliseconds.
func (t *Timeline) Millis(tick uint32) uint64 {
	return t.Micros(tick) / 1000
}

// Changes returns a copy of the sorted tempo map.
func (t *Timeline) Changes() []TempoChange {
	out := make([]TempoChange, len(t.changes))
	copy(out, t.changes)
	return out
}
