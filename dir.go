package sftp

import (
	"errors"
	"os"
	"path"
	"sync"

	"github.com/ankerfs/sftp/internal/wire"
)

// DirEntry is one directory listing entry: the short filename, the
// server-rendered `ls -l` style longname, and the entry's attributes.
type DirEntry struct {
	Filename string
	Longname string
	Stat     *FileStat
}

// Info returns the entry as an os.FileInfo.
func (e DirEntry) Info() os.FileInfo {
	return &fileInfo{
		name: path.Base(e.Filename),
		stat: e.Stat,
	}
}

// Dir wraps an open directory handle issued by the server. Like File,
// a Dir holds its handle exclusively.
type Dir struct {
	cl   *Client
	name string

	mu     sync.Mutex
	handle string
	closed bool
}

// OpenDir opens the named directory for listing.
func (cl *Client) OpenDir(name string) (*Dir, error) {
	handle, err := cl.expectHandle(&wire.OpendirPacket{Path: name})
	if err != nil {
		return nil, wrapPathError("opendir", name, err)
	}

	cl.conn.log.Debug("opened directory", "path", name)

	return &Dir{
		cl:     cl,
		name:   name,
		handle: handle,
	}, nil
}

// WithDir opens the named directory, runs fn with it, and closes it on
// every path out. If both fn and the close fail, the returned error
// carries both, fn's first.
func (cl *Client) WithDir(name string, fn func(*Dir) error) error {
	d, err := cl.OpenDir(name)
	if err != nil {
		return err
	}

	return errors.Join(fn(d), d.Close())
}

// Name returns the name of the directory as presented to OpenDir.
func (d *Dir) Name() string {
	return d.name
}

// Close surrenders the directory's handle to the server. Closing an
// already closed Dir is a no-op that returns nil; the SSH_FXP_CLOSE
// packet is sent exactly once.
func (d *Dir) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	handle := d.handle
	d.mu.Unlock()

	d.cl.conn.log.Debug("closed directory", "path", d.name)

	return wrapPathError("close", d.name,
		d.cl.expectStatus(&wire.ClosePacket{Handle: handle}))
}

// ReadBatch issues one SSH_FXP_READDIR and returns the server's batch
// of entries, in server order. At end of directory it returns io.EOF
// with no entries; readdir is driven by calling ReadBatch until then.
func (d *Dir) ReadBatch() ([]DirEntry, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, wrapPathError("readdir", d.name, ErrClosedHandle)
	}
	handle := d.handle
	d.mu.Unlock()

	entries, err := d.cl.expectName(&wire.ReaddirPacket{Handle: handle})
	if err != nil {
		// io.EOF is the end-of-directory sentinel, passed through bare.
		return nil, wrapPathError("readdir", d.name, err)
	}

	batch := make([]DirEntry, 0, len(entries))
	for _, ent := range entries {
		batch = append(batch, DirEntry{
			Filename: ent.Filename,
			Longname: ent.Longname,
			Stat:     fileStatFromAttrs(ent.Attrs),
		})
	}

	d.cl.conn.log.Debug("read directory batch", "path", d.name, "entries", len(batch))

	return batch, nil
}
