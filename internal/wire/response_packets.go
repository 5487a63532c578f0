package wire

// StatusPacket defines the SSH_FXP_STATUS packet.
//
// Specified in https://tools.ietf.org/html/draft-ietf-secsh-filexfer-02#section-7
type StatusPacket struct {
	RequestID    uint32
	StatusCode   Status
	ErrorMessage string
	LanguageTag  string
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *StatusPacket) MarshalBinary() ([]byte, error) {
	// uint32(status code) + string(error message) + string(language tag)
	size := 4 + 4 + len(p.ErrorMessage) + 4 + len(p.LanguageTag)

	b := newPacketBuffer(PacketTypeStatus, p.RequestID, size)
	b.AppendUint32(uint32(p.StatusCode))
	b.AppendString(p.ErrorMessage)
	b.AppendString(p.LanguageTag)

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *StatusPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	code, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}
	p.StatusCode = Status(code)

	if p.ErrorMessage, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.LanguageTag, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// HandlePacket defines the SSH_FXP_HANDLE packet.
type HandlePacket struct {
	RequestID uint32
	Handle    string
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *HandlePacket) MarshalBinary() ([]byte, error) {
	size := 4 + len(p.Handle) // string(handle)

	b := newPacketBuffer(PacketTypeHandle, p.RequestID, size)
	b.AppendString(p.Handle)

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *HandlePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// DataPacket defines the SSH_FXP_DATA packet.
type DataPacket struct {
	RequestID uint32
	Data      []byte
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *DataPacket) MarshalBinary() ([]byte, error) {
	size := 4 // uint32(len(data)); data content in payload

	b := newPacketBuffer(PacketTypeData, p.RequestID, size)
	b.AppendUint32(uint32(len(p.Data)))

	return ComposePacket(b.packet(p.Data))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
//
// NOTE: To avoid an extra allocation, Data aliases the Buffer's bytes.
func (p *DataPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	p.Data, err = buf.ConsumeByteSlice()
	return err
}

// NamePacket defines the SSH_FXP_NAME packet.
type NamePacket struct {
	RequestID uint32
	Entries   []NameEntry
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *NamePacket) MarshalBinary() ([]byte, error) {
	size := 4 // uint32(count)
	for i := range p.Entries {
		size += p.Entries[i].Len()
	}

	b := newPacketBuffer(PacketTypeName, p.RequestID, size)
	b.AppendUint32(uint32(len(p.Entries)))
	for i := range p.Entries {
		p.Entries[i].MarshalInto(b)
	}

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *NamePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	count, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}

	p.Entries = make([]NameEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		var e NameEntry
		if err := e.UnmarshalFrom(buf); err != nil {
			return err
		}

		p.Entries = append(p.Entries, e)
	}

	return nil
}

// AttrsPacket defines the SSH_FXP_ATTRS packet.
type AttrsPacket struct {
	RequestID uint32
	Attrs     Attributes
}

// MarshalBinary returns p as the length-prefixed binary encoding of p.
func (p *AttrsPacket) MarshalBinary() ([]byte, error) {
	b := newPacketBuffer(PacketTypeAttrs, p.RequestID, p.Attrs.Len())
	p.Attrs.MarshalInto(b)

	return ComposePacket(b.packet(nil))
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *AttrsPacket) UnmarshalPacketBody(buf *Buffer) error {
	return p.Attrs.UnmarshalFrom(buf)
}
