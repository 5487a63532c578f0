package wire

// SSH_FXF_* open flags. Truncate and Exclusive are only meaningful
// together with Create; the server enforces that, not this package.
const (
	FlagRead      = 1 << iota // SSH_FXF_READ
	FlagWrite                 // SSH_FXF_WRITE
	FlagAppend                // SSH_FXF_APPEND
	FlagCreate                // SSH_FXF_CREAT
	FlagTruncate              // SSH_FXF_TRUNC
	FlagExclusive             // SSH_FXF_EXCL
)

// marshalPathPacket covers the requests whose body is a single string:
// a path, filename or handle.
func marshalPathPacket(typ PacketType, reqid uint32, str string) (header, payload []byte, err error) {
	size := 4 + len(str) // string(str)

	b := newPacketBuffer(typ, reqid, size)
	b.AppendString(str)

	return b.packet(nil)
}

// unmarshalPathPacket is the inverse of marshalPathPacket, with the
// uint32(request-id) already consumed.
func unmarshalPathPacket(buf *Buffer, str *string) (err error) {
	*str, err = buf.ConsumeString()
	return err
}

// OpenPacket defines the SSH_FXP_OPEN packet.
type OpenPacket struct {
	Path   string
	PFlags uint32
	Attrs  Attributes
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *OpenPacket) Type() PacketType { return PacketTypeOpen }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *OpenPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Path) + 4 + // string(path) + uint32(pflags)
		p.Attrs.Len()

	b := newPacketBuffer(PacketTypeOpen, reqid, size)
	b.AppendString(p.Path)
	b.AppendUint32(p.PFlags)
	p.Attrs.MarshalInto(b)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *OpenPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.PFlags, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// ClosePacket defines the SSH_FXP_CLOSE packet.
type ClosePacket struct {
	Handle string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *ClosePacket) Type() PacketType { return PacketTypeClose }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *ClosePacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeClose, reqid, p.Handle)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ClosePacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Handle)
}

// ReadPacket defines the SSH_FXP_READ packet.
type ReadPacket struct {
	Handle string
	Offset uint64
	Length uint32
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *ReadPacket) Type() PacketType { return PacketTypeRead }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *ReadPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Handle) + // string(handle)
		8 + 4 // uint64(offset) + uint32(length)

	b := newPacketBuffer(PacketTypeRead, reqid, size)
	b.AppendString(p.Handle)
	b.AppendUint64(p.Offset)
	b.AppendUint32(p.Length)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ReadPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.Offset, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	if p.Length, err = buf.ConsumeUint32(); err != nil {
		return err
	}

	return nil
}

// WritePacket defines the SSH_FXP_WRITE packet.
type WritePacket struct {
	Handle string
	Offset uint64
	Data   []byte
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *WritePacket) Type() PacketType { return PacketTypeWrite }

// MarshalPacket returns p as a two-part binary encoding of p.
// The data is returned as the payload part, aliasing p.Data.
func (p *WritePacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Handle) + // string(handle)
		8 + 4 // uint64(offset) + uint32(len(data)); data in payload

	b := newPacketBuffer(PacketTypeWrite, reqid, size)
	b.AppendString(p.Handle)
	b.AppendUint64(p.Offset)
	b.AppendUint32(uint32(len(p.Data)))

	return b.packet(p.Data)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *WritePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.Offset, err = buf.ConsumeUint64(); err != nil {
		return err
	}

	if p.Data, err = buf.ConsumeByteSlice(); err != nil {
		return err
	}

	return nil
}

// LstatPacket defines the SSH_FXP_LSTAT packet.
type LstatPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *LstatPacket) Type() PacketType { return PacketTypeLstat }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *LstatPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeLstat, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *LstatPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// FstatPacket defines the SSH_FXP_FSTAT packet.
type FstatPacket struct {
	Handle string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *FstatPacket) Type() PacketType { return PacketTypeFstat }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *FstatPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeFstat, reqid, p.Handle)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *FstatPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Handle)
}

// SetstatPacket defines the SSH_FXP_SETSTAT packet.
type SetstatPacket struct {
	Path  string
	Attrs Attributes
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *SetstatPacket) Type() PacketType { return PacketTypeSetstat }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *SetstatPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Path) + // string(path)
		p.Attrs.Len()

	b := newPacketBuffer(PacketTypeSetstat, reqid, size)
	b.AppendString(p.Path)
	p.Attrs.MarshalInto(b)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *SetstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// FsetstatPacket defines the SSH_FXP_FSETSTAT packet.
type FsetstatPacket struct {
	Handle string
	Attrs  Attributes
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *FsetstatPacket) Type() PacketType { return PacketTypeFsetstat }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *FsetstatPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Handle) + // string(handle)
		p.Attrs.Len()

	b := newPacketBuffer(PacketTypeFsetstat, reqid, size)
	b.AppendString(p.Handle)
	p.Attrs.MarshalInto(b)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *FsetstatPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// OpendirPacket defines the SSH_FXP_OPENDIR packet.
type OpendirPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *OpendirPacket) Type() PacketType { return PacketTypeOpendir }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *OpendirPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeOpendir, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *OpendirPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// ReaddirPacket defines the SSH_FXP_READDIR packet.
type ReaddirPacket struct {
	Handle string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *ReaddirPacket) Type() PacketType { return PacketTypeReaddir }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *ReaddirPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeReaddir, reqid, p.Handle)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ReaddirPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Handle)
}

// RemovePacket defines the SSH_FXP_REMOVE packet.
type RemovePacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *RemovePacket) Type() PacketType { return PacketTypeRemove }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *RemovePacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeRemove, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *RemovePacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// MkdirPacket defines the SSH_FXP_MKDIR packet.
type MkdirPacket struct {
	Path  string
	Attrs Attributes
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *MkdirPacket) Type() PacketType { return PacketTypeMkdir }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *MkdirPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.Path) + // string(path)
		p.Attrs.Len()

	b := newPacketBuffer(PacketTypeMkdir, reqid, size)
	b.AppendString(p.Path)
	p.Attrs.MarshalInto(b)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *MkdirPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}

	return p.Attrs.UnmarshalFrom(buf)
}

// RmdirPacket defines the SSH_FXP_RMDIR packet.
type RmdirPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *RmdirPacket) Type() PacketType { return PacketTypeRmdir }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *RmdirPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeRmdir, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *RmdirPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// RealpathPacket defines the SSH_FXP_REALPATH packet.
type RealpathPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *RealpathPacket) Type() PacketType { return PacketTypeRealpath }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *RealpathPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeRealpath, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *RealpathPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// StatPacket defines the SSH_FXP_STAT packet.
type StatPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *StatPacket) Type() PacketType { return PacketTypeStat }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *StatPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeStat, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *StatPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// RenamePacket defines the SSH_FXP_RENAME packet.
type RenamePacket struct {
	OldPath string
	NewPath string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *RenamePacket) Type() PacketType { return PacketTypeRename }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *RenamePacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.OldPath) + // string(oldpath)
		4 + len(p.NewPath) // string(newpath)

	b := newPacketBuffer(PacketTypeRename, reqid, size)
	b.AppendString(p.OldPath)
	b.AppendString(p.NewPath)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *RenamePacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.OldPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.NewPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}

// ReadlinkPacket defines the SSH_FXP_READLINK packet.
type ReadlinkPacket struct {
	Path string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *ReadlinkPacket) Type() PacketType { return PacketTypeReadlink }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *ReadlinkPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	return marshalPathPacket(PacketTypeReadlink, reqid, p.Path)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *ReadlinkPacket) UnmarshalPacketBody(buf *Buffer) error {
	return unmarshalPathPacket(buf, &p.Path)
}

// SymlinkPacket defines the SSH_FXP_SYMLINK packet: create LinkPath as
// a symbolic link pointing at TargetPath.
type SymlinkPacket struct {
	LinkPath   string
	TargetPath string
}

// Type returns the SSH_FXP_xy value associated with this packet type.
func (p *SymlinkPacket) Type() PacketType { return PacketTypeSymlink }

// MarshalPacket returns p as a two-part binary encoding of p.
func (p *SymlinkPacket) MarshalPacket(reqid uint32) (header, payload []byte, err error) {
	size := 4 + len(p.LinkPath) + // string(linkpath)
		4 + len(p.TargetPath) // string(targetpath)

	b := newPacketBuffer(PacketTypeSymlink, reqid, size)
	b.AppendString(p.LinkPath)
	b.AppendString(p.TargetPath)

	return b.packet(nil)
}

// UnmarshalPacketBody unmarshals the packet body from the given Buffer.
// It is assumed the uint32(request-id) has already been consumed.
func (p *SymlinkPacket) UnmarshalPacketBody(buf *Buffer) (err error) {
	if p.LinkPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	if p.TargetPath, err = buf.ConsumeString(); err != nil {
		return err
	}

	return nil
}
