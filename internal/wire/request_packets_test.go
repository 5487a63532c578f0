package wire

import (
	"bytes"
	"testing"
)

// marshalAndConsumeID marshals p under the given request id, checks the
// frame length is self-consistent, and returns a Buffer positioned at
// the packet body with the type byte and request id already consumed.
func marshalAndConsumeID(t *testing.T, p Packet, reqid uint32) *Buffer {
	t.Helper()

	data, err := ComposePacket(p.MarshalPacket(reqid))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	buf := NewBuffer(data)

	length, err := buf.ConsumeUint32()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if int(length) != len(data)-4 {
		t.Fatalf("frame length = %d, but %d bytes follow the length field", length, len(data)-4)
	}

	typ, err := buf.ConsumeUint8()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if PacketType(typ) != p.Type() {
		t.Fatalf("packet type = %v, but expected %v", PacketType(typ), p.Type())
	}

	id, err := buf.ConsumeUint32()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if id != reqid {
		t.Fatalf("request id = %d, but expected %d", id, reqid)
	}

	return buf
}

func TestOpenPacket(t *testing.T) {
	const id = 42

	p := &OpenPacket{
		Path:   "/foo",
		PFlags: FlagRead | FlagWrite | FlagCreate,
		Attrs: Attributes{
			Flags:       AttrPermissions,
			Permissions: 0644,
		},
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 25,
		3,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x04, '/', 'f', 'o', 'o',
		0x00, 0x00, 0x00, 0x0B,
		0x00, 0x00, 0x00, 0x04,
		0x00, 0x00, 0x01, 0xA4,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(OpenPacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Path != p.Path || got.PFlags != p.PFlags || got.Attrs.Permissions != p.Attrs.Permissions {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestClosePacket(t *testing.T) {
	const id = 42

	p := &ClosePacket{
		Handle: "somehandle",
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 19,
		4,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 10, 's', 'o', 'm', 'e', 'h', 'a', 'n', 'd', 'l', 'e',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(ClosePacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Handle != p.Handle {
		t.Fatalf("Handle was %q, but expected %q", got.Handle, p.Handle)
	}
}

func TestReadPacket(t *testing.T) {
	const id = 42

	p := &ReadPacket{
		Handle: "somehandle",
		Offset: 0x123456789ABCDEF0,
		Length: 0xFEDCBA98,
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 31,
		5,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 10, 's', 'o', 'm', 'e', 'h', 'a', 'n', 'd', 'l', 'e',
		0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
		0xFE, 0xDC, 0xBA, 0x98,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(ReadPacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if *got != *p {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestWritePacket(t *testing.T) {
	const id = 42

	p := &WritePacket{
		Handle: "somehandle",
		Offset: 0x123456789ABCDEF0,
		Data:   []byte("foobar"),
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 37,
		6,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 10, 's', 'o', 'm', 'e', 'h', 'a', 'n', 'd', 'l', 'e',
		0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
		0x00, 0x00, 0x00, 0x06, 'f', 'o', 'o', 'b', 'a', 'r',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(WritePacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Handle != p.Handle || got.Offset != p.Offset || !bytes.Equal(got.Data, p.Data) {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestRenamePacket(t *testing.T) {
	const id = 42

	p := &RenamePacket{
		OldPath: "/old",
		NewPath: "/new",
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 21,
		18,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x04, '/', 'o', 'l', 'd',
		0x00, 0x00, 0x00, 0x04, '/', 'n', 'e', 'w',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(RenamePacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if *got != *p {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

// TestSymlinkPacket pins the field order: linkpath before targetpath.
func TestSymlinkPacket(t *testing.T) {
	const id = 42

	p := &SymlinkPacket{
		LinkPath:   "/lnk",
		TargetPath: "/tgt",
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 21,
		20,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x04, '/', 'l', 'n', 'k',
		0x00, 0x00, 0x00, 0x04, '/', 't', 'g', 't',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}

	got := new(SymlinkPacket)
	if err := got.UnmarshalPacketBody(marshalAndConsumeID(t, p, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if *got != *p {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestMkdirPacket(t *testing.T) {
	const id = 42

	p := &MkdirPacket{
		Path: "/dir",
		Attrs: Attributes{
			Flags:       AttrPermissions,
			Permissions: 0755,
		},
	}

	data, err := ComposePacket(p.MarshalPacket(id))
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 21,
		14,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x04, '/', 'd', 'i', 'r',
		0x00, 0x00, 0x00, 0x04,
		0x00, 0x00, 0x01, 0xED,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalPacket() = %X, but wanted %X", data, want)
	}
}

// TestPathPackets drives the single-string request family through the
// shared marshal helper.
func TestPathPackets(t *testing.T) {
	const id = 7

	tests := []struct {
		pkt  Packet
		typ  PacketType
		body string
	}{
		{&LstatPacket{Path: "/p"}, PacketTypeLstat, "/p"},
		{&FstatPacket{Handle: "h"}, PacketTypeFstat, "h"},
		{&OpendirPacket{Path: "/d"}, PacketTypeOpendir, "/d"},
		{&ReaddirPacket{Handle: "h"}, PacketTypeReaddir, "h"},
		{&RemovePacket{Path: "/p"}, PacketTypeRemove, "/p"},
		{&RmdirPacket{Path: "/d"}, PacketTypeRmdir, "/d"},
		{&RealpathPacket{Path: "."}, PacketTypeRealpath, "."},
		{&StatPacket{Path: "/p"}, PacketTypeStat, "/p"},
		{&ReadlinkPacket{Path: "/l"}, PacketTypeReadlink, "/l"},
	}

	for _, tt := range tests {
		if tt.pkt.Type() != tt.typ {
			t.Errorf("%T: Type() = %v, but expected %v", tt.pkt, tt.pkt.Type(), tt.typ)
		}

		buf := marshalAndConsumeID(t, tt.pkt, id)

		str, err := buf.ConsumeString()
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", tt.pkt, err)
		}

		if str != tt.body {
			t.Errorf("%T: body string = %q, but expected %q", tt.pkt, str, tt.body)
		}

		if buf.Len() != 0 {
			t.Errorf("%T: %d trailing bytes in packet body", tt.pkt, buf.Len())
		}
	}
}
