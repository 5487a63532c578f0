package sftp

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/ankerfs/sftp/internal/logger"
	"github.com/ankerfs/sftp/internal/wire"
)

const (
	// defaultHandshakeTimeout bounds the wait for SSH_FXP_VERSION,
	// measured from the moment the subsystem channel is handed over.
	defaultHandshakeTimeout = 15 * time.Second

	// defaultMaxDataLength is the largest data block sent in one
	// SSH_FXP_READ or SSH_FXP_WRITE request.
	defaultMaxDataLength = 32768
)

// ClientOption specifies an option that can be set on a client.
type ClientOption func(*Client) error

// WithLogger sets the logger the client emits protocol and lifecycle
// records on. The default discards everything.
func WithLogger(log *slog.Logger) ClientOption {
	return func(cl *Client) error {
		if log == nil {
			return errors.New("sftp: nil logger")
		}

		cl.conn.log = log
		return nil
	}
}

// WithExtension adds a (name, data) extension pair to the client's
// SSH_FXP_INIT packet.
func WithExtension(name, data string) ClientOption {
	return func(cl *Client) error {
		cl.initExts = append(cl.initExts, wire.ExtensionPair{Name: name, Data: data})
		return nil
	}
}

// WithMaxPacketLength sets the ceiling on the advertised length of an
// inbound frame. Lengths below the protocol's 34000-byte working packet
// size are rejected.
func WithMaxPacketLength(length int) ClientOption {
	return func(cl *Client) error {
		if length < 34000 {
			return errors.New("sftp: max packet length too small")
		}

		cl.conn.maxPacket = uint32(length)
		return nil
	}
}

// WithHandshakeTimeout overrides the 15-second handshake deadline.
func WithHandshakeTimeout(d time.Duration) ClientOption {
	return func(cl *Client) error {
		if d <= 0 {
			return errors.New("sftp: handshake timeout must be positive")
		}

		cl.handshakeTimeout = d
		return nil
	}
}

// Client is an SFTP session on an established SSH connection. Its
// methods may be called concurrently from multiple goroutines; replies
// are correlated to callers by request id.
type Client struct {
	conn clientConn

	handshakeTimeout time.Duration
	maxDataLen       int

	initExts []wire.ExtensionPair
	exts     map[string]string
}

// NewClient opens an sftp subsystem session on conn and completes the
// protocol handshake before returning.
func NewClient(conn *ssh.Client, opts ...ClientOption) (*Client, error) {
	s, err := conn.NewSession()
	if err != nil {
		return nil, err
	}

	w, err := s.StdinPipe()
	if err != nil {
		s.Close()
		return nil, err
	}

	r, err := s.StdoutPipe()
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := s.RequestSubsystem("sftp"); err != nil {
		s.Close()
		return nil, err
	}

	return NewClientPipe(r, w, opts...)
}

// NewClientPipe creates a new SFTP client from a ready duplex byte
// channel bound to the remote sftp subsystem. This suits transports
// other than x/crypto/ssh, such as driving a system ssh binary.
//
// No user request is accepted until the handshake has completed; if the
// server does not answer SSH_FXP_INIT within the handshake timeout, or
// negotiates a version below 3, NewClientPipe fails.
func NewClientPipe(rd io.Reader, wr io.WriteCloser, opts ...ClientOption) (*Client, error) {
	cl := &Client{
		handshakeTimeout: defaultHandshakeTimeout,
		maxDataLen:       defaultMaxDataLength,
	}

	cl.conn.rd = rd
	cl.conn.wr = wr
	cl.conn.log = logger.Nop()
	cl.conn.maxPacket = wire.MaxPacketLength
	cl.conn.inflight = make(map[uint32]chan<- result)

	for _, opt := range opts {
		if err := opt(cl); err != nil {
			return nil, err
		}
	}

	exts, err := cl.conn.handshake(cl.initExts, cl.handshakeTimeout)
	if err != nil {
		wr.Close()
		return nil, err
	}

	cl.exts = exts
	cl.conn.log.Info("session opened", "version", wire.ProtocolVersion, "extensions", len(exts))

	go func() {
		err := cl.conn.recvLoop()
		if errors.Is(err, wire.ErrShortPacket) || errors.Is(err, wire.ErrLongPacket) {
			// A framing fault, unlike a closed channel, is worth surfacing.
			cl.conn.log.Warn("session failed", "err", err)
			cl.conn.disconnect(err)
			cl.conn.wr.Close()
			return
		}

		cl.conn.disconnect(ErrConnectionClosed)
		cl.conn.wr.Close()
	}()

	return cl, nil
}

// Close shuts the session down. Every pending request fails with
// ErrConnectionClosed. Close is idempotent.
func (cl *Client) Close() error {
	cl.conn.disconnect(ErrConnectionClosed)
	cl.conn.log.Info("session closed")
	return cl.conn.wr.Close()
}

// HasExtension reports whether the server announced the named extension
// in its SSH_FXP_VERSION packet, and returns its data if so.
func (cl *Client) HasExtension(name string) (string, bool) {
	data, ok := cl.exts[name]
	return data, ok
}

// sendPacket dispatches p and blocks until its reply or the session's
// end. Individual requests carry no deadline; a waiter is released by a
// routed reply or by the close sweep.
func (cl *Client) sendPacket(p wire.Packet) (wire.PacketType, *wire.Buffer, error) {
	ch, err := cl.conn.dispatch(p)
	if err != nil {
		return 0, nil, err
	}

	res := <-ch
	if res.err != nil {
		return 0, nil, res.err
	}

	return res.typ, res.body, nil
}

// unexpectedPacket records and reports a reply whose type does not
// match the shape the request requires.
func (cl *Client) unexpectedPacket(want, got wire.PacketType) error {
	err := &UnexpectedPacketError{Want: uint8(want), Got: uint8(got)}
	cl.conn.log.Warn("protocol error", "err", err)
	return err
}

// decodeStatus unmarshals a status reply body. A body that cannot be
// decoded is a protocol fault and tears the session down.
func (cl *Client) decodeStatus(body *wire.Buffer) (*wire.StatusPacket, error) {
	var pkt wire.StatusPacket
	if err := pkt.UnmarshalPacketBody(body); err != nil {
		cl.conn.log.Warn("malformed SSH_FXP_STATUS packet", "err", err)
		cl.conn.disconnect(err)
		return nil, err
	}

	return &pkt, nil
}

// statusToError converts a decoded status reply into its error form.
// StatusOK maps to success only where the operation permits a bare OK;
// StatusEOF maps to io.EOF, which read and readdir paths treat as the
// end sentinel rather than a failure.
func (cl *Client) statusToError(pkt *wire.StatusPacket, okExpected bool) error {
	switch pkt.StatusCode {
	case wire.StatusOK:
		if !okExpected {
			return errors.New("sftp: unexpected SSH_FX_OK")
		}
		return nil

	case wire.StatusEOF:
		return io.EOF
	}

	err := &StatusError{
		Code:        uint32(pkt.StatusCode),
		Message:     pkt.ErrorMessage,
		LanguageTag: pkt.LanguageTag,
	}
	cl.conn.log.Warn("operation failed", "status", pkt.StatusCode.String(), "msg", pkt.ErrorMessage)
	return err
}

// expectStatus sends p and requires an OK status reply.
func (cl *Client) expectStatus(p wire.Packet) error {
	typ, body, err := cl.sendPacket(p)
	if err != nil {
		return err
	}

	if typ != wire.PacketTypeStatus {
		return cl.unexpectedPacket(wire.PacketTypeStatus, typ)
	}

	pkt, err := cl.decodeStatus(body)
	if err != nil {
		return err
	}

	return cl.statusToError(pkt, true)
}

// expectHandle sends p and requires a handle reply.
func (cl *Client) expectHandle(p wire.Packet) (string, error) {
	typ, body, err := cl.sendPacket(p)
	if err != nil {
		return "", err
	}

	switch typ {
	case wire.PacketTypeHandle:
		var pkt wire.HandlePacket
		if err := pkt.UnmarshalPacketBody(body); err != nil {
			cl.conn.disconnect(err)
			return "", err
		}
		return pkt.Handle, nil

	case wire.PacketTypeStatus:
		pkt, err := cl.decodeStatus(body)
		if err != nil {
			return "", err
		}
		return "", cl.statusToError(pkt, false)

	default:
		return "", cl.unexpectedPacket(wire.PacketTypeHandle, typ)
	}
}

// expectAttrs sends p and requires an attributes reply.
func (cl *Client) expectAttrs(p wire.Packet) (wire.Attributes, error) {
	typ, body, err := cl.sendPacket(p)
	if err != nil {
		return wire.Attributes{}, err
	}

	switch typ {
	case wire.PacketTypeAttrs:
		var pkt wire.AttrsPacket
		if err := pkt.UnmarshalPacketBody(body); err != nil {
			cl.conn.disconnect(err)
			return wire.Attributes{}, err
		}
		return pkt.Attrs, nil

	case wire.PacketTypeStatus:
		pkt, err := cl.decodeStatus(body)
		if err != nil {
			return wire.Attributes{}, err
		}
		return wire.Attributes{}, cl.statusToError(pkt, false)

	default:
		return wire.Attributes{}, cl.unexpectedPacket(wire.PacketTypeAttrs, typ)
	}
}

// expectData sends p and requires a data reply. An EOF status comes
// back as (nil, io.EOF).
func (cl *Client) expectData(p wire.Packet) ([]byte, error) {
	typ, body, err := cl.sendPacket(p)
	if err != nil {
		return nil, err
	}

	switch typ {
	case wire.PacketTypeData:
		var pkt wire.DataPacket
		if err := pkt.UnmarshalPacketBody(body); err != nil {
			cl.conn.disconnect(err)
			return nil, err
		}
		return pkt.Data, nil

	case wire.PacketTypeStatus:
		pkt, err := cl.decodeStatus(body)
		if err != nil {
			return nil, err
		}
		return nil, cl.statusToError(pkt, false)

	default:
		return nil, cl.unexpectedPacket(wire.PacketTypeData, typ)
	}
}

// expectName sends p and requires a name reply. An EOF status comes
// back as (nil, io.EOF), the end-of-directory sentinel.
func (cl *Client) expectName(p wire.Packet) ([]wire.NameEntry, error) {
	typ, body, err := cl.sendPacket(p)
	if err != nil {
		return nil, err
	}

	switch typ {
	case wire.PacketTypeName:
		var pkt wire.NamePacket
		if err := pkt.UnmarshalPacketBody(body); err != nil {
			cl.conn.disconnect(err)
			return nil, err
		}
		return pkt.Entries, nil

	case wire.PacketTypeStatus:
		pkt, err := cl.decodeStatus(body)
		if err != nil {
			return nil, err
		}
		return nil, cl.statusToError(pkt, false)

	default:
		return nil, cl.unexpectedPacket(wire.PacketTypeName, typ)
	}
}

// expectPath sends p and requires a name reply with at least one entry,
// whose first filename is the server's answer.
func (cl *Client) expectPath(p wire.Packet) (string, error) {
	entries, err := cl.expectName(p)
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return "", errors.New("sftp: empty SSH_FXP_NAME reply")
	}

	return entries[0].Filename, nil
}

// RealPath asks the server to canonicalize name into an absolute path.
func (cl *Client) RealPath(name string) (string, error) {
	p, err := cl.expectPath(&wire.RealpathPacket{Path: name})
	if err != nil {
		return "", wrapPathError("realpath", name, err)
	}

	cl.conn.log.Debug("resolved path", "path", name, "realpath", p)
	return p, nil
}

// ReadLink returns the destination of the named symbolic link.
func (cl *Client) ReadLink(name string) (string, error) {
	p, err := cl.expectPath(&wire.ReadlinkPacket{Path: name})
	if err != nil {
		return "", wrapPathError("readlink", name, err)
	}

	return p, nil
}

// Stat returns a FileInfo describing the named file. If the file is a
// symbolic link, the returned FileInfo describes the link's target.
func (cl *Client) Stat(name string) (os.FileInfo, error) {
	attrs, err := cl.expectAttrs(&wire.StatPacket{Path: name})
	if err != nil {
		return nil, wrapPathError("stat", name, err)
	}

	return fileInfoFromAttrs(name, attrs), nil
}

// Lstat returns a FileInfo describing the named file. Unlike Stat, it
// makes no attempt to follow a symbolic link.
func (cl *Client) Lstat(name string) (os.FileInfo, error) {
	attrs, err := cl.expectAttrs(&wire.LstatPacket{Path: name})
	if err != nil {
		return nil, wrapPathError("lstat", name, err)
	}

	return fileInfoFromAttrs(name, attrs), nil
}

// Remove removes the named file.
func (cl *Client) Remove(name string) error {
	return wrapPathError("remove", name,
		cl.expectStatus(&wire.RemovePacket{Path: name}))
}

// Mkdir creates the specified directory with the given permissions. The
// parent directory must already exist.
func (cl *Client) Mkdir(name string, perm os.FileMode) error {
	err := cl.expectStatus(&wire.MkdirPacket{
		Path: name,
		Attrs: wire.Attributes{
			Flags:       wire.AttrPermissions,
			Permissions: wire.FileMode(fromFileMode(perm)) & wire.ModePerm,
		},
	})
	if err != nil {
		return wrapPathError("mkdir", name, err)
	}

	cl.conn.log.Debug("created directory", "path", name)
	return nil
}

// RemoveDirectory removes the named directory, which must be empty.
func (cl *Client) RemoveDirectory(name string) error {
	return wrapPathError("rmdir", name,
		cl.expectStatus(&wire.RmdirPacket{Path: name}))
}

// Rename renames (moves) oldpath to newpath. SFTP version 3 servers
// typically refuse to replace an existing newpath.
func (cl *Client) Rename(oldpath, newpath string) error {
	return wrapLinkError("rename", oldpath, newpath,
		cl.expectStatus(&wire.RenamePacket{OldPath: oldpath, NewPath: newpath}))
}

// Symlink creates newname as a symbolic link pointing at oldname.
func (cl *Client) Symlink(oldname, newname string) error {
	return wrapLinkError("symlink", oldname, newname,
		cl.expectStatus(&wire.SymlinkPacket{LinkPath: newname, TargetPath: oldname}))
}

func (cl *Client) setstat(name string, attrs wire.Attributes) error {
	return wrapPathError("setstat", name,
		cl.expectStatus(&wire.SetstatPacket{Path: name, Attrs: attrs}))
}

// Chmod changes the permissions of the named file.
func (cl *Client) Chmod(name string, mode os.FileMode) error {
	return cl.setstat(name, wire.Attributes{
		Flags:       wire.AttrPermissions,
		Permissions: wire.FileMode(fromFileMode(mode)) & wire.ModePerm,
	})
}

// Chown changes the numeric uid and gid of the named file.
func (cl *Client) Chown(name string, uid, gid int) error {
	return cl.setstat(name, wire.Attributes{
		Flags: wire.AttrUIDGID,
		UID:   uint32(uid),
		GID:   uint32(gid),
	})
}

// Chtimes changes the access and modification times of the named file.
// The protocol carries whole seconds only; finer precision is truncated.
func (cl *Client) Chtimes(name string, atime, mtime time.Time) error {
	return cl.setstat(name, wire.Attributes{
		Flags: wire.AttrACModTime,
		ATime: uint32(atime.Unix()),
		MTime: uint32(mtime.Unix()),
	})
}

// Truncate changes the size of the named file.
func (cl *Client) Truncate(name string, size int64) error {
	return cl.setstat(name, wire.Attributes{
		Flags: wire.AttrSize,
		Size:  uint64(size),
	})
}

// ReadDir reads the named directory and returns a listing of its
// entries in the order the server produced them.
func (cl *Client) ReadDir(name string) ([]os.FileInfo, error) {
	d, err := cl.OpenDir(name)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var fis []os.FileInfo
	for {
		batch, err := d.ReadBatch()
		if err == io.EOF {
			return fis, nil
		}
		if err != nil {
			return fis, err
		}

		for _, ent := range batch {
			fis = append(fis, ent.Info())
		}
	}
}

// SendExtended sends an SSH_FXP_EXTENDED request named request with an
// opaque payload, and returns the opaque bytes of the extended reply.
// Servers answer unknown requests with SSH_FX_OP_UNSUPPORTED.
func (cl *Client) SendExtended(request string, payload []byte) ([]byte, error) {
	typ, body, err := cl.sendPacket(&wire.ExtendedPacket{Request: request, Payload: payload})
	if err != nil {
		return nil, err
	}

	switch typ {
	case wire.PacketTypeExtendedReply:
		var pkt wire.ExtendedReplyPacket
		if err := pkt.UnmarshalPacketBody(body); err != nil {
			cl.conn.disconnect(err)
			return nil, err
		}
		return pkt.Payload, nil

	case wire.PacketTypeStatus:
		pkt, err := cl.decodeStatus(body)
		if err != nil {
			return nil, err
		}
		return nil, cl.statusToError(pkt, false)

	default:
		return nil, cl.unexpectedPacket(wire.PacketTypeExtendedReply, typ)
	}
}
