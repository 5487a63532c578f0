package wire

import (
	"encoding/binary"
	"errors"
)

// Encoding faults. Both are fatal to the session that observes them.
var (
	ErrShortPacket = errors.New("packet too short")
	ErrLongPacket  = errors.New("packet too long")
)

// Buffer wraps up the encoding details of the SSH wire format.
//
// All integers are big-endian. A string is a uint32 length followed by that
// many raw bytes, with no terminator. Data types are encoded as per
// https://tools.ietf.org/html/draft-ietf-secsh-architecture-09#page-8
type Buffer struct {
	b   []byte
	off int
}

// NewBuffer creates a Buffer using buf as its initial contents.
// The Buffer takes ownership of buf; the caller should not use it afterwards.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{b: buf}
}

// newPacketBuffer starts a packet of the given type and request id.
// It reserves the leading 4 bytes for the length field, which packet()
// fills in once the body is complete. size is a capacity hint for the
// body that follows the request id.
func newPacketBuffer(packetType PacketType, requestID uint32, size int) *Buffer {
	buf := NewBuffer(make([]byte, 4, 4+1+4+size))
	buf.AppendUint8(uint8(packetType))
	buf.AppendUint32(requestID)
	return buf
}

// packet finalizes a Buffer started by newPacketBuffer. It writes the
// frame length (everything after the length field itself, plus any
// pass-through payload) into the reserved leading bytes and returns the
// header and payload slices ready to be written to the channel.
func (b *Buffer) packet(payload []byte) (header, payloadPassThru []byte, err error) {
	binary.BigEndian.PutUint32(b.b, uint32(len(b.b)-4+len(payload)))
	return b.b, payload, nil
}

// Len returns the number of unconsumed bytes in the Buffer.
func (b *Buffer) Len() int { return len(b.b) - b.off }

// Bytes returns the unconsumed bytes in the Buffer.
// The slice is only valid until the next Append or Consume call.
func (b *Buffer) Bytes() []byte { return b.b[b.off:] }

// ConsumeUint8 consumes a single byte from the Buffer.
func (b *Buffer) ConsumeUint8() (uint8, error) {
	if b.Len() < 1 {
		return 0, ErrShortPacket
	}

	v := b.b[b.off]
	b.off++
	return v, nil
}

// AppendUint8 appends a single byte to the Buffer.
func (b *Buffer) AppendUint8(v uint8) {
	b.b = append(b.b, v)
}

// ConsumeUint32 consumes a single uint32 from the Buffer.
func (b *Buffer) ConsumeUint32() (uint32, error) {
	if b.Len() < 4 {
		return 0, ErrShortPacket
	}

	v := binary.BigEndian.Uint32(b.b[b.off:])
	b.off += 4
	return v, nil
}

// AppendUint32 appends a single uint32 to the Buffer.
func (b *Buffer) AppendUint32(v uint32) {
	b.b = append(b.b,
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v>>0),
	)
}

// ConsumeUint64 consumes a single uint64 from the Buffer.
func (b *Buffer) ConsumeUint64() (uint64, error) {
	if b.Len() < 8 {
		return 0, ErrShortPacket
	}

	v := binary.BigEndian.Uint64(b.b[b.off:])
	b.off += 8
	return v, nil
}

// AppendUint64 appends a single uint64 to the Buffer.
func (b *Buffer) AppendUint64(v uint64) {
	b.b = append(b.b,
		byte(v>>56),
		byte(v>>48),
		byte(v>>40),
		byte(v>>32),
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v>>0),
	)
}

// ConsumeByteSlice consumes a single string of raw binary data from the
// Buffer. If the Buffer declares a length larger than what remains, it
// returns ErrShortPacket.
//
// The returned slice aliases the Buffer's backing array.
func (b *Buffer) ConsumeByteSlice() ([]byte, error) {
	length, err := b.ConsumeUint32()
	if err != nil {
		return nil, err
	}

	if b.Len() < int(length) {
		return nil, ErrShortPacket
	}

	v := b.b[b.off : b.off+int(length) : b.off+int(length)]
	b.off += int(length)
	return v, nil
}

// AppendByteSlice appends a single string of raw binary data to the Buffer.
func (b *Buffer) AppendByteSlice(v []byte) {
	b.AppendUint32(uint32(len(v)))
	b.b = append(b.b, v...)
}

// ConsumeString consumes a single string from the Buffer.
//
// NOTE: Go implicitly assumes strings contain UTF-8 encoded data.
// All caveats on using arbitrary binary data in Go strings apply.
func (b *Buffer) ConsumeString() (string, error) {
	v, err := b.ConsumeByteSlice()
	if err != nil {
		return "", err
	}

	return string(v), nil
}

// AppendString appends a single string to the Buffer.
func (b *Buffer) AppendString(v string) {
	b.AppendByteSlice([]byte(v))
}
