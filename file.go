package sftp

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ankerfs/sftp/internal/wire"
)

// These aliases to the os package values are provided as a convenience
// to avoid needing two imports to use OpenFile.
const (
	// Exactly one of OpenFlagReadOnly, OpenFlagWriteOnly,
	// OpenFlagReadWrite must be specified.
	OpenFlagReadOnly  = os.O_RDONLY
	OpenFlagWriteOnly = os.O_WRONLY
	OpenFlagReadWrite = os.O_RDWR
	// The remaining values may be or'ed in to control behavior.
	OpenFlagAppend    = os.O_APPEND
	OpenFlagCreate    = os.O_CREATE
	OpenFlagTruncate  = os.O_TRUNC
	OpenFlagExclusive = os.O_EXCL
)

// toPortableFlags converts the flags passed to OpenFile into SFTP
// pflags. Unsupported flags are ignored.
func toPortableFlags(f int) uint32 {
	var out uint32
	switch f & (OpenFlagReadOnly | OpenFlagWriteOnly | OpenFlagReadWrite) {
	case OpenFlagReadOnly:
		out |= wire.FlagRead
	case OpenFlagWriteOnly:
		out |= wire.FlagWrite
	case OpenFlagReadWrite:
		out |= wire.FlagRead | wire.FlagWrite
	}
	if f&OpenFlagAppend == OpenFlagAppend {
		out |= wire.FlagAppend
	}
	if f&OpenFlagCreate == OpenFlagCreate {
		out |= wire.FlagCreate
	}
	if f&OpenFlagTruncate == OpenFlagTruncate {
		out |= wire.FlagTruncate
	}
	if f&OpenFlagExclusive == OpenFlagExclusive {
		out |= wire.FlagExclusive
	}
	return out
}

// File wraps an open file handle issued by the server. A File holds its
// handle exclusively; sharing one File across goroutines without
// external synchronization is a caller error.
type File struct {
	cl   *Client
	name string

	mu     sync.Mutex
	handle string
	closed bool
	offset int64
}

// Open opens the named file for reading.
func (cl *Client) Open(name string) (*File, error) {
	return cl.OpenFile(name, OpenFlagReadOnly, 0)
}

// Create creates or truncates the named file for reading and writing,
// with mode 0o666 before umask if it did not exist.
func (cl *Client) Create(name string) (*File, error) {
	return cl.OpenFile(name, OpenFlagReadWrite|OpenFlagCreate|OpenFlagTruncate, 0666)
}

// OpenFile is the generalized open call. The permission bits are
// encoded into the request's attributes block; servers consult them
// only when creating the file.
//
// Note well: every write goes through an offset-carrying request, so
// OpenFlagAppend only has whatever meaning the server gives it.
func (cl *Client) OpenFile(name string, flag int, perm os.FileMode) (*File, error) {
	handle, err := cl.expectHandle(&wire.OpenPacket{
		Path:   name,
		PFlags: toPortableFlags(flag),
		Attrs: wire.Attributes{
			Flags:       wire.AttrPermissions,
			Permissions: wire.FileMode(fromFileMode(perm)) & wire.ModePerm,
		},
	})
	if err != nil {
		return nil, wrapPathError("open", name, err)
	}

	cl.conn.log.Debug("opened file", "path", name)

	return &File{
		cl:     cl,
		name:   name,
		handle: handle,
	}, nil
}

// WithFile opens the named file, runs fn with it, and closes it on
// every path out. If both fn and the close fail, the returned error
// carries both, fn's first.
func (cl *Client) WithFile(name string, flag int, perm os.FileMode, fn func(*File) error) error {
	f, err := cl.OpenFile(name, flag, perm)
	if err != nil {
		return err
	}

	return errors.Join(fn(f), f.Close())
}

// Name returns the name of the file as presented to Open.
// It is safe to call Name after Close.
func (f *File) Name() string {
	return f.name
}

// getHandle returns the wire handle, or ErrClosedHandle once the File
// has been closed.
func (f *File) getHandle() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", ErrClosedHandle
	}

	return f.handle, nil
}

// Close surrenders the file's handle to the server. Closing an already
// closed File is a no-op that returns nil; the SSH_FXP_CLOSE packet is
// sent exactly once.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	handle := f.handle
	f.mu.Unlock()

	f.cl.conn.log.Debug("closed file", "path", f.name)

	return wrapPathError("close", f.name,
		f.cl.expectStatus(&wire.ClosePacket{Handle: handle}))
}

// readChunk issues a single SSH_FXP_READ for up to len(p) bytes at off.
// The server may legally return fewer bytes than requested.
func (f *File) readChunk(p []byte, off int64) (int, error) {
	handle, err := f.getHandle()
	if err != nil {
		return 0, err
	}

	length := len(p)
	if length > f.cl.maxDataLen {
		length = f.cl.maxDataLen
	}

	data, err := f.cl.expectData(&wire.ReadPacket{
		Handle: handle,
		Offset: uint64(off),
		Length: uint32(length),
	})
	if err != nil {
		return 0, err
	}

	if len(data) > length {
		return 0, errors.New("sftp: server returned more data than requested")
	}

	return copy(p, data), nil
}

// Read reads up to len(p) bytes from the file at the current offset.
// It returns io.EOF at end of file.
func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	off := f.offset
	f.mu.Unlock()

	n, err := f.readChunk(p, off)

	f.mu.Lock()
	f.offset = off + int64(n)
	f.mu.Unlock()

	if err == io.EOF {
		return n, io.EOF
	}
	if err != nil {
		return n, wrapPathError("read", f.name, err)
	}

	return n, nil
}

// ReadAt reads len(p) bytes from the file starting at offset off. As
// per the io.ReaderAt contract, it returns a non-nil error whenever it
// returns fewer than len(p) bytes.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	n := 0
	for n < len(p) {
		m, err := f.readChunk(p[n:], off+int64(n))
		n += m

		if err == io.EOF {
			return n, io.EOF
		}
		if err != nil {
			return n, wrapPathError("read", f.name, err)
		}
		if m == 0 {
			// An empty DATA reply without an EOF status; do not spin.
			return n, io.ErrUnexpectedEOF
		}
	}

	return n, nil
}

// writeChunk issues a single SSH_FXP_WRITE for at most maxDataLen bytes
// and returns how many bytes it sent.
func (f *File) writeChunk(p []byte, off int64) (int, error) {
	handle, err := f.getHandle()
	if err != nil {
		return 0, err
	}

	length := len(p)
	if length > f.cl.maxDataLen {
		length = f.cl.maxDataLen
	}

	err = f.cl.expectStatus(&wire.WritePacket{
		Handle: handle,
		Offset: uint64(off),
		Data:   p[:length],
	})
	if err != nil {
		return 0, err
	}

	return length, nil
}

// Write writes len(p) bytes to the file at the current offset.
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	off := f.offset
	f.mu.Unlock()

	n, err := f.writeAt(p, off)

	f.mu.Lock()
	f.offset = off + int64(n)
	f.mu.Unlock()

	return n, err
}

// WriteAt writes len(p) bytes to the file starting at offset off.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	return f.writeAt(p, off)
}

func (f *File) writeAt(p []byte, off int64) (int, error) {
	n := 0
	for n < len(p) {
		m, err := f.writeChunk(p[n:], off+int64(n))
		n += m

		if err != nil {
			return n, wrapPathError("write", f.name, err)
		}
	}

	return n, nil
}

// Seek sets the offset for the next Read or Write, interpreted
// according to whence. Seeking relative to the end costs a round trip
// to stat the file.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var abs int64

	switch whence {
	case io.SeekStart:
		abs = offset

	case io.SeekCurrent:
		f.mu.Lock()
		abs = f.offset + offset
		f.mu.Unlock()

	case io.SeekEnd:
		fi, err := f.Stat()
		if err != nil {
			return 0, err
		}
		abs = fi.Size() + offset

	default:
		return 0, wrapPathError("seek", f.name, errors.New("invalid whence"))
	}

	if abs < 0 {
		return 0, wrapPathError("seek", f.name, errors.New("negative position"))
	}

	f.mu.Lock()
	f.offset = abs
	f.mu.Unlock()

	return abs, nil
}

// Stat returns a FileInfo describing the file, using the server-side
// handle rather than the path.
func (f *File) Stat() (os.FileInfo, error) {
	handle, err := f.getHandle()
	if err != nil {
		return nil, wrapPathError("fstat", f.name, err)
	}

	attrs, err := f.cl.expectAttrs(&wire.FstatPacket{Handle: handle})
	if err != nil {
		return nil, wrapPathError("fstat", f.name, err)
	}

	return fileInfoFromAttrs(f.name, attrs), nil
}

func (f *File) setstat(attrs wire.Attributes) error {
	handle, err := f.getHandle()
	if err != nil {
		return wrapPathError("fsetstat", f.name, err)
	}

	return wrapPathError("fsetstat", f.name,
		f.cl.expectStatus(&wire.FsetstatPacket{Handle: handle, Attrs: attrs}))
}

// Truncate changes the size of the file. It does not change the I/O
// offset.
func (f *File) Truncate(size int64) error {
	return f.setstat(wire.Attributes{
		Flags: wire.AttrSize,
		Size:  uint64(size),
	})
}

// Chmod changes the permissions of the file.
func (f *File) Chmod(mode os.FileMode) error {
	return f.setstat(wire.Attributes{
		Flags:       wire.AttrPermissions,
		Permissions: wire.FileMode(fromFileMode(mode)) & wire.ModePerm,
	})
}

// Chown changes the numeric uid and gid of the file.
func (f *File) Chown(uid, gid int) error {
	return f.setstat(wire.Attributes{
		Flags: wire.AttrUIDGID,
		UID:   uint32(uid),
		GID:   uint32(gid),
	})
}

// Chtimes changes the access and modification times of the file.
func (f *File) Chtimes(atime, mtime time.Time) error {
	return f.setstat(wire.Attributes{
		Flags: wire.AttrACModTime,
		ATime: uint32(atime.Unix()),
		MTime: uint32(mtime.Unix()),
	})
}
