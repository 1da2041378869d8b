package smf

import "encoding/binary"

const (
	vlqMaxBytes     = 4
	vlqContinueFlag = 0x80
	vlqValueMask    = 0x7F
)

// reader is a bounds-checked cursor over one chunk (or the whole file).
// Every read that would pass the end of data fails with ErrTruncated.
type reader struct {
	data []byte
	pos  int
	base int // file offset of data[0], for error reporting
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) offset() int { return r.base + r.pos }

func (r *reader) done() bool { return r.pos >= len(r.data) }

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) unreadByte() {
	if r.pos > 0 {
		r.pos--
	}
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, ErrTruncated
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n uint32) error {
	if uint64(n) > uint64(len(r.data)-r.pos) {
		return ErrTruncated
	}
	r.pos += int(n)
	return nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// sub returns a reader over the next n bytes and advances past them.
func (r *reader) sub(n uint32) (*reader, error) {
	if uint64(n) > uint64(len(r.data)-r.pos) {
		return nil, ErrTruncated
	}
	s := &reader{data: r.data[r.pos : r.pos+int(n)], base: r.offset()}
	r.pos += int(n)
	return s, nil
}

// vlq reads a variable-length quantity of at most four bytes. A fourth byte
// that still carries the continuation flag ends the quantity anyway.
func (r *reader) vlq() (uint32, error) {
	var value uint32
	for i := 0; i < vlqMaxBytes; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&vlqValueMask)
		if b&vlqContinueFlag == 0 {
			return value, nil
		}
	}
	return value, nil
}

// ReadVLQ decodes a variable-length quantity from the start of data and returns
// the value and the number of bytes consumed.
func ReadVLQ(data []byte) (uint32, int, error) {
	r := newReader(data)
	v, err := r.vlq()
	if err != nil {
		return 0, r.pos, err
	}
	return v, r.pos, nil
}
