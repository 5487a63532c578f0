package wire

import (
	"bytes"
	"reflect"
	"testing"
)

// consumeResponseHeader checks the frame length, type and request id of
// a marshaled response, returning a Buffer positioned at the body.
func consumeResponseHeader(t *testing.T, data []byte, typ PacketType, reqid uint32) *Buffer {
	t.Helper()

	buf := NewBuffer(data)

	length, err := buf.ConsumeUint32()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if int(length) != len(data)-4 {
		t.Fatalf("frame length = %d, but %d bytes follow the length field", length, len(data)-4)
	}

	gotType, err := buf.ConsumeUint8()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if PacketType(gotType) != typ {
		t.Fatalf("packet type = %v, but expected %v", PacketType(gotType), typ)
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

func TestStatusPacket(t *testing.T) {
	const id = 42

	p := &StatusPacket{
		RequestID:    id,
		StatusCode:   StatusNoSuchFile,
		ErrorMessage: "no such file",
		LanguageTag:  "en",
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 31,
		101,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 12, 'n', 'o', ' ', 's', 'u', 'c', 'h', ' ', 'f', 'i', 'l', 'e',
		0x00, 0x00, 0x00, 0x02, 'e', 'n',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}

	got := new(StatusPacket)
	got.RequestID = id
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeStatus, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if !reflect.DeepEqual(got, p) {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestHandlePacket(t *testing.T) {
	const id = 42

	p := &HandlePacket{
		RequestID: id,
		Handle:    "h1",
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 11,
		102,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x02, 'h', '1',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}

	got := new(HandlePacket)
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeHandle, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Handle != p.Handle {
		t.Fatalf("Handle was %q, but expected %q", got.Handle, p.Handle)
	}
}

func TestDataPacket(t *testing.T) {
	const id = 42

	p := &DataPacket{
		RequestID: id,
		Data:      []byte("abcd"),
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 13,
		103,
		0x00, 0x00, 0x00, id,
		0x00, 0x00, 0x00, 0x04, 'a', 'b', 'c', 'd',
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}

	got := new(DataPacket)
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeData, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if !bytes.Equal(got.Data, p.Data) {
		t.Fatalf("Data was %X, but expected %X", got.Data, p.Data)
	}
}

func TestNamePacket(t *testing.T) {
	const id = 42

	p := &NamePacket{
		RequestID: id,
		Entries: []NameEntry{
			{
				Filename: "a",
				Longname: "-rw-r--r-- a",
				Attrs:    Attributes{Flags: AttrSize, Size: 1},
			},
			{
				Filename: "b",
				Longname: "-rw-r--r-- b",
				Attrs:    Attributes{Flags: AttrSize, Size: 2},
			},
		},
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	got := new(NamePacket)
	got.RequestID = id
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeName, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if !reflect.DeepEqual(got, p) {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestAttrsPacket(t *testing.T) {
	const id = 42

	p := &AttrsPacket{
		RequestID: id,
		Attrs: Attributes{
			Flags:       AttrSize | AttrPermissions,
			Size:        532,
			Permissions: 0100644,
		},
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	got := new(AttrsPacket)
	got.RequestID = id
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeAttrs, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if !reflect.DeepEqual(got, p) {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestExtendedReplyPacket(t *testing.T) {
	const id = 42

	p := &ExtendedReplyPacket{
		RequestID: id,
		Payload:   []byte{0xCA, 0xFE},
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 7,
		201,
		0x00, 0x00, 0x00, id,
		0xCA, 0xFE,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}

	got := new(ExtendedReplyPacket)
	if err := got.UnmarshalPacketBody(consumeResponseHeader(t, data, PacketTypeExtendedReply, id)); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if !bytes.Equal(got.Payload, p.Payload) {
		t.Fatalf("Payload was %X, but expected %X", got.Payload, p.Payload)
	}
}
