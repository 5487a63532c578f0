package wire

// ExtendedPacket defines the SSH_FXP_EXTENDED packet. The payload after
// the request name is carried opaquely; vendor extensions define their
// own encodings.
type ExtendedPacket struct {
	Request string
	Payload []byte
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *ExtendedPacket) Type() PacketType { return PacketTypeExtended }

// MarshalPacket returns p as a two-part binary encoding of p.
// The opaque payload is returned as the payload part, aliasing p.Payload.
func (p *ExtendedPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Request) // string(request-name); payload passed through raw

	b := newPacketBuffer(PacketTypeExtended, reqid, size)
	b.AppendString(p.Request)

	return b.packet(p.Payload)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ExtendedPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Request, err = buf.ConsumeString(); err != nil {
		return err
	}

	p.Payload = buf.Bytes()
	return nil
}

// ExtendedReplyPacket defines the SSH_FXP_EXTENDED_REPLY packet. The
// payload is opaque to this package.
type ExtendedReplyPacket struct {
	RequestID uint32
	Payload   []byte
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *ExtendedReplyPacket) MarshalBinary() ([]byte, error) {
	b := newPacketBuffer(PacketTypeExtendedReply, p.RequestID, 0)

	return ComposePacket(b.packet(p.Payload))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ExtendedReplyPacket) UnmarshalPacketBody(buf *Buffer) error {
	p.Payload = buf.Bytes()
	return nil
}
