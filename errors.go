package sftp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ankerfs/sftp/internal/wire"
)

var (
	// ErrConnectionClosed is observed by every waiter pending when the
	// session terminates, and by any request submitted afterwards.
	ErrConnectionClosed = errors.New("sftp: connection closed")

	// ErrMissingResponse reports that the server did not answer the
	// handshake within the handshake timeout.
	ErrMissingResponse = errors.New("sftp: timed out waiting for server response")

	// ErrClosedHandle reports use of a file or directory after Close.
	ErrClosedHandle = errors.New("sftp: handle already closed")
)

// UnsupportedVersionError reports a server that negotiated an SFTP
// protocol version below 3.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("sftp: server speaks unsupported protocol version %d", e.Version)
}

// UnexpectedPacketError reports a well-formed reply whose type does not
// match the shape expected for the request. It always indicates a
// protocol error by the server.
type UnexpectedPacketError struct {
	Want uint8
	Got  uint8
}

func (e *UnexpectedPacketError) Error() string {
	return fmt.Sprintf("sftp: unexpected packet: want %v, got %v",
		wire.PacketType(e.Want), wire.PacketType(e.Got))
}

// StatusError is a well-formed SSH_FXP_STATUS reply carrying a non-OK
// code on an operation that required OK.
type StatusError struct {
	Code        uint32
	Message     string
	LanguageTag string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sftp: %v", wire.Status(e.Code))
	}

	return fmt.Sprintf("sftp: %q (%v)", e.Message, wire.Status(e.Code))
}

// Is lets callers test status errors against the standard filesystem
// sentinels with errors.Is.
func (e *StatusError) Is(target error) bool {
	switch wire.Status(e.Code) {
	case wire.StatusNoSuchFile:
		return target == fs.ErrNotExist
	case wire.StatusPermissionDenied:
		return target == fs.ErrPermission
	}

	return false
}

func wrapPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	// Numerous callers break if io.EOF does not come back bare.
	if err == io.EOF {
		return io.EOF
	}

	return &fs.PathError{Op: op, Path: path, Err: err}
}

func wrapLinkError(op, oldpath, newpath string, err error) error {
	if err == nil {
		return nil
	}

	return &os.LinkError{Op: op, Old: oldpath, New: newpath, Err: err}
}
