package wire

import (
	"bytes"
	"testing"
)

func TestInitPacket(t *testing.T) {
	p := &InitPacket{
		Version: 3,
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 0x05,
		0x01,
		0x00, 0x00, 0x00, 0x03,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}
}

func TestInitPacketExtensions(t *testing.T) {
	p := &InitPacket{
		Version: 3,
		Extensions: []ExtensionPair{
			{Name: "ext@example.com", Data: "1"},
		},
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	typ, buf, err := RecvPacket(bytes.NewReader(data), MaxPacketLength)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if typ != PacketTypeInit {
		t.Fatalf("packet type = %v, but expected %v", typ, PacketTypeInit)
	}

	got := new(InitPacket)
	if err := got.UnmarshalPacketBody(buf); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Version != 3 || len(got.Extensions) != 1 || got.Extensions[0] != p.Extensions[0] {
		t.Fatalf("UnmarshalPacketBody() = %#v, but expected %#v", got, p)
	}
}

func TestVersionPacket(t *testing.T) {
	p := &VersionPacket{
		Version: 3,
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	want := []byte{
		0x00, 0x00, 0x00, 0x05,
		0x02,
		0x00, 0x00, 0x00, 0x03,
	}

	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary() = %X, but wanted %X", data, want)
	}
}

func TestReadPacketFraming(t *testing.T) {
	p := &StatusPacket{
		RequestID:  9,
		StatusCode: StatusOK,
	}

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	typ, buf, err := RecvPacket(bytes.NewReader(data), MaxPacketLength)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if typ != PacketTypeStatus {
		t.Fatalf("packet type = %v, but expected %v", typ, PacketTypeStatus)
	}

	// The frame length covers the type byte plus the body.
	if buf.Len() != len(data)-4-1 {
		t.Fatalf("body length = %d, but expected %d", buf.Len(), len(data)-4-1)
	}
}

func TestReadPacketZeroLength(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00}

	if _, _, err := RecvPacket(bytes.NewReader(data), MaxPacketLength); err != ErrShortPacket {
		t.Fatalf("RecvPacket() = %v, but expected ErrShortPacket", err)
	}
}

func TestReadPacketCeiling(t *testing.T) {
	// Advertises a 2 GiB frame; must be rejected before any allocation.
	data := []byte{0x80, 0x00, 0x00, 0x00}

	if _, _, err := RecvPacket(bytes.NewReader(data), MaxPacketLength); err != ErrLongPacket {
		t.Fatalf("RecvPacket() = %v, but expected ErrLongPacket", err)
	}
}

func TestSendPacketRoundTrip(t *testing.T) {
	const id = 13

	var wireBytes bytes.Buffer

	req := &WritePacket{
		Handle: "h",
		Offset: 1024,
		Data:   []byte("payload"),
	}

	if err := SendPacket(&wireBytes, id, req); err != nil {
		t.Fatal("unexpected error:", err)
	}

	typ, buf, err := RecvPacket(&wireBytes, MaxPacketLength)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if typ != PacketTypeWrite {
		t.Fatalf("packet type = %v, but expected %v", typ, PacketTypeWrite)
	}

	reqid, err := buf.ConsumeUint32()
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	if reqid != id {
		t.Fatalf("request id = %d, but expected %d", reqid, id)
	}

	got := new(WritePacket)
	if err := got.UnmarshalPacketBody(buf); err != nil {
		t.Fatal("unexpected error:", err)
	}

	if got.Handle != req.Handle || got.Offset != req.Offset || !bytes.Equal(got.Data, req.Data) {
		t.Fatalf("round trip = %#v, but expected %#v", got, req)
	}
}
