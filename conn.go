package sftp

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/ankerfs/sftp/internal/logger"
	"github.com/ankerfs/sftp/internal/wire"
)

// result is what a pending waiter receives: either the deframed reply
// body (request id already consumed) or the error that ended its wait.
type result struct {
	typ  wire.PacketType
	body *wire.Buffer
	err  error
}

// clientConn multiplexes concurrent requests over one duplex byte
// channel. It owns the request id allocator and the in-flight table;
// the receive loop routes replies to waiters by id, and disconnect
// sweeps every pending waiter exactly once.
type clientConn struct {
	rd  io.Reader
	wr  io.WriteCloser
	log *slog.Logger

	maxPacket uint32

	reqid atomic.Uint32

	wmu sync.Mutex // serialises packet writes

	mu       sync.Mutex
	inflight map[uint32]chan<- result
	closed   bool
	err      error
}

// nextID allocates the next request id: a wrapping monotonic increment
// starting from 1. Uniqueness is not checked here; dispatch warns if an
// allocated id is still in flight.
func (c *clientConn) nextID() uint32 {
	return c.reqid.Add(1)
}

// dispatch allocates a request id, registers a completion slot for it,
// and writes the marshaled packet. The slot is registered before any
// bytes are flushed, so a fast reply can never miss its waiter.
func (c *clientConn) dispatch(p wire.Packet) (<-chan result, error) {
	reqid := c.nextID()
	ch := make(chan result, 1)

	c.mu.Lock()
	if c.closed {
		err := c.err
		c.mu.Unlock()
		if err == nil {
			err = ErrConnectionClosed
		}
		return nil, err
	}
	if _, loaded := c.inflight[reqid]; loaded {
		// The id space has wrapped with a request still outstanding.
		// Matches the warn-only contract: the old waiter is abandoned.
		c.log.Warn("request id already in flight, overwriting", "id", reqid)
	}
	c.inflight[reqid] = ch
	c.mu.Unlock()

	logger.Trace(c.log, "send packet", "type", p.Type().String(), "id", reqid)

	c.wmu.Lock()
	err := wire.SendPacket(c.wr, reqid, p)
	c.wmu.Unlock()

	if err != nil {
		c.forget(reqid)
		return nil, errors.Wrapf(err, "sftp: send %v", p.Type())
	}

	return ch, nil
}

func (c *clientConn) forget(reqid uint32) {
	c.mu.Lock()
	delete(c.inflight, reqid)
	c.mu.Unlock()
}

// recvLoop reads frames from the server and completes the matching
// waiters. It returns on the first read or framing error, which is
// fatal to the session.
func (c *clientConn) recvLoop() error {
	for {
		typ, body, err := wire.RecvPacket(c.rd, c.maxPacket)
		if err != nil {
			return err
		}

		reqid, err := body.ConsumeUint32()
		if err != nil {
			return errors.Wrapf(err, "sftp: malformed %v packet", typ)
		}

		logger.Trace(c.log, "recv packet", "type", typ.String(), "id", reqid)

		c.mu.Lock()
		ch, loaded := c.inflight[reqid]
		delete(c.inflight, reqid)
		c.mu.Unlock()

		if !loaded {
			// Nothing is waiting under this id; most likely the reply to
			// a request whose waiter was already abandoned.
			c.log.Warn("dropping response with no matching request",
				"type", typ.String(), "id", reqid)
			continue
		}

		ch <- result{typ: typ, body: body}
	}
}

// disconnect transitions the connection to closed and fails every
// pending waiter with cause. It is idempotent; only the first cause is
// retained.
func (c *clientConn) disconnect(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.err = cause

	listeners := make([]chan<- result, 0, len(c.inflight))
	for reqid, ch := range c.inflight {
		listeners = append(listeners, ch)
		delete(c.inflight, reqid)
	}
	c.mu.Unlock()

	for _, ch := range listeners {
		ch <- result{err: cause}
	}
}

// handshake sends SSH_FXP_INIT and waits for the server's
// SSH_FXP_VERSION, which must be the next inbound packet, must arrive
// within timeout, and must carry version 3 or newer. On success the
// server's extension pairs are returned.
func (c *clientConn) handshake(exts []wire.ExtensionPair, timeout time.Duration) (map[string]string, error) {
	init := &wire.InitPacket{
		Version:    wire.ProtocolVersion,
		Extensions: exts,
	}

	data, err := init.MarshalBinary()
	if err != nil {
		return nil, err
	}

	logger.Trace(c.log, "send packet", "type", wire.PacketTypeInit.String())

	// The deadline covers the INIT write as well as the wait for VERSION.
	deadline := time.After(timeout)
	versionc := make(chan result, 1)

	go func() {
		if _, err := c.wr.Write(data); err != nil {
			versionc <- result{err: errors.Wrap(err, "sftp: send SSH_FXP_INIT")}
			return
		}

		typ, body, err := wire.RecvPacket(c.rd, c.maxPacket)
		versionc <- result{typ: typ, body: body, err: errors.Wrap(err, "sftp: await SSH_FXP_VERSION")}
	}()

	var res result
	select {
	case res = <-versionc:
	case <-deadline:
		return nil, ErrMissingResponse
	}

	if res.err != nil {
		return nil, res.err
	}

	logger.Trace(c.log, "recv packet", "type", res.typ.String())

	if res.typ != wire.PacketTypeVersion {
		return nil, &UnexpectedPacketError{
			Want: uint8(wire.PacketTypeVersion),
			Got:  uint8(res.typ),
		}
	}

	var pkt wire.VersionPacket
	if err := pkt.UnmarshalPacketBody(res.body); err != nil {
		return nil, errors.Wrap(err, "sftp: malformed SSH_FXP_VERSION packet")
	}

	if pkt.Version < wire.ProtocolVersion {
		return nil, &UnsupportedVersionError{Version: pkt.Version}
	}

	serverExts := make(map[string]string, len(pkt.Extensions))
	for _, ext := range pkt.Extensions {
		serverExts[ext.Name] = ext.Data
	}

	return serverExts, nil
}
