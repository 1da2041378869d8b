package mididarwin

import "github.com/leandrodaf/midikeys/sdk/contracts"

// splitPacket decodes the channel messages in a CoreMIDI packet. A packet may hold
// several messages and may omit repeated status bytes. Parsing stops at the first
// system message or at incomplete data.
func splitPacket(data []byte, timestamp uint64) []contracts.MIDI {
	var (
		msgs   []contracts.MIDI
		status byte
	)
	for len(data) > 0 {
		if data[0]&0x80 != 0 {
			status = data[0]
			data = data[1:]
		}
		if status == 0 || status >= 0xF0 {
			break
		}

		size := 2
		if cmd := status & 0xF0; cmd == 0xC0 || cmd == 0xD0 {
			size = 1
		}
		if len(data) < size {
			break
		}

		msg := contracts.MIDI{
			Timestamp: timestamp,
			Command:   status & 0xF0,
			Channel:   status & 0x0F,
			Note:      data[0],
		}
		if size == 2 {
			msg.Velocity = data[1]
		}
		msgs = append(msgs, msg)
		data = data[size:]
	}
	return msgs
}
