package wire

import (
	"encoding/binary"
	"io"
)

// ProtocolVersion is the one SFTP protocol version this package speaks.
const ProtocolVersion = 3

// MaxPacketLength is the ceiling on the advertised length of an inbound
// frame. It is sized to accommodate large SSH_FXP_DATA and SSH_FXP_NAME
// replies; anything longer is treated as a framing fault.
const MaxPacketLength = 32 << 20

// Packet is a request that can be framed onto the wire with an assigned
// request id.
type Packet interface {
	// Type returns the SSH_FXP_* type code of the packet.
	Type() PacketType

	// MarshalPacket returns the length-prefixed binary encoding of the
	// packet in two parts: a header covering everything up to any bulk
	// payload, and the payload itself (nil for most packets). Splitting
	// the bulk data out lets callers avoid copying large writes.
	MarshalPacket(reqid uint32) (header, payload []byte, err error)
}

// ComposePacket converts returns from MarshalPacket into the returns
// expected by MarshalBinary.
func ComposePacket(header, payload []byte, err error) ([]byte, error) {
	return append(header, payload...), err
}

// SendPacket marshals p under the given request id and writes it to w.
// The frame is emitted with at most two writes, header before payload.
func SendPacket(w io.Writer, reqid uint32, p Packet) error {
	header, payload, err := p.MarshalPacket(reqid)
	if err != nil {
		return err
	}

	if _, err := w.Write(header); err != nil {
		return err
	}

	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	return nil
}

// RecvPacket reads one length-prefixed frame from r and returns its type
// and body. A frame shorter than the 1-byte type or longer than
// maxPacket is rejected with ErrShortPacket or ErrLongPacket. The body
// excludes the type byte; for response packets it begins with the
// request id.
func RecvPacket(r io.Reader, maxPacket uint32) (PacketType, *Buffer, error) {
	var lenbuf [4]byte
	if _, err := io.ReadFull(r, lenbuf[:]); err != nil {
		return 0, nil, err
	}

	length := binary.BigEndian.Uint32(lenbuf[:])
	if length < 1 {
		return 0, nil, ErrShortPacket
	}
	if length > maxPacket {
		return 0, nil, ErrLongPacket
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}

	return PacketType(body[0]), NewBuffer(body[1:]), nil
}

// InitPacket defines the SSH_FXP_INIT packet. It is the one request that
// carries a protocol version where every other request carries an id, so
// it does not implement Packet.
type InitPacket struct {
	Version    uint32
	Extensions []ExtensionPair
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *InitPacket) MarshalBinary() ([]byte, error) {
	size := 1 + 4 // byte(type) + uint32(version)
	for _, ext := range p.Extensions {
		size += ext.Len()
	}

	b := NewBuffer(make([]byte, 4, 4+size))
	b.AppendUint8(uint8(PacketTypeInit))
	b.AppendUint32(p.Version)
	for _, ext := range p.Extensions {
		ext.MarshalInto(b)
	}

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint8(type) has already been consumed.
func (p *InitPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Version, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	for buf.Len() > 0 {
		var ext ExtensionPair
		if err := ext.UnmarshalFrom(buf); err != nil {
			return err
		}

		p.Extensions = append(p.Extensions, ext)
	}

	return nil
}

// VersionPacket defines the SSH_FXP_VERSION packet, the server's reply
// to SSH_FXP_INIT. Same shape as InitPacket.
type VersionPacket struct {
	Version    uint32
	Extensions []ExtensionPair
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *VersionPacket) MarshalBinary() ([]byte, error) {
	size := 1 + 4 // byte(type) + uint32(version)
	for _, ext := range p.Extensions {
		size += ext.Len()
	}

	b := NewBuffer(make([]byte, 4, 4+size))
	b.AppendUint8(uint8(PacketTypeVersion))
	b.AppendUint32(p.Version)
	for _, ext := range p.Extensions {
		ext.MarshalInto(b)
	}

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint8(type) has already been consumed.
func (p *VersionPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Version, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	for buf.Len() > 0 {
		var ext ExtensionPair
		if err := ext.UnmarshalFrom(buf); err != nil {
			return err
		}

		p.Extensions = append(p.Extensions, ext)
	}

	return nil
}
