package sftp

import (
	"os"
	"path"
	"time"

	"github.com/ankerfs/sftp/internal/wire"
)

// FileStat holds the SFTP v3 file attributes as the server sent them.
// Fields the server did not include are zero.
type FileStat struct {
	Size     uint64
	Mode     uint32 // raw POSIX mode bits as on the wire
	UID      uint32
	GID      uint32
	Atime    uint32
	Mtime    uint32
	Extended []StatExtended
}

// StatExtended is one (type, data) pair of the extended attribute list.
type StatExtended struct {
	ExtType string
	ExtData string
}

// FileMode returns the mode translated into os.FileMode values.
func (s *FileStat) FileMode() os.FileMode {
	return toFileMode(s.Mode)
}

// AccessTime returns the access time of the file.
func (s *FileStat) AccessTime() time.Time {
	return time.Unix(int64(s.Atime), 0)
}

// ModTime returns the modification time of the file.
func (s *FileStat) ModTime() time.Time {
	return time.Unix(int64(s.Mtime), 0)
}

func fileStatFromAttrs(a wire.Attributes) *FileStat {
	st := &FileStat{
		Size:  a.Size,
		Mode:  uint32(a.Permissions),
		UID:   a.UID,
		GID:   a.GID,
		Atime: a.ATime,
		Mtime: a.MTime,
	}

	for _, ext := range a.Extended {
		st.Extended = append(st.Extended, StatExtended{
			ExtType: ext.Type,
			ExtData: ext.Data,
		})
	}

	return st
}

// fileInfo adapts a FileStat to os.FileInfo.
type fileInfo struct {
	name string
	stat *FileStat
}

func fileInfoFromAttrs(name string, a wire.Attributes) os.FileInfo {
	return &fileInfo{
		name: path.Base(name),
		stat: fileStatFromAttrs(a),
	}
}

// Name returns the base name of the file.
func (fi *fileInfo) Name() string { return fi.name }

// Size returns the length in bytes for regular files; system-dependent
// for others.
func (fi *fileInfo) Size() int64 { return int64(fi.stat.Size) }

// Mode returns the file mode bits.
func (fi *fileInfo) Mode() os.FileMode { return fi.stat.FileMode() }

// ModTime returns the last modification time of the file.
func (fi *fileInfo) ModTime() time.Time { return fi.stat.ModTime() }

// IsDir reports whether the file is a directory.
func (fi *fileInfo) IsDir() bool { return fi.Mode().IsDir() }

// Sys returns the underlying *FileStat.
func (fi *fileInfo) Sys() interface{} { return fi.stat }

// toFileMode converts raw SFTP mode bits to the os.FileMode specification.
func toFileMode(mode uint32) os.FileMode {
	fm := os.FileMode(mode & 0777)

	switch wire.FileMode(mode) & wire.ModeType {
	case wire.ModeDevice:
		fm |= os.ModeDevice
	case wire.ModeCharDevice:
		fm |= os.ModeDevice | os.ModeCharDevice
	case wire.ModeDir:
		fm |= os.ModeDir
	case wire.ModeNamedPipe:
		fm |= os.ModeNamedPipe
	case wire.ModeSymlink:
		fm |= os.ModeSymlink
	case wire.ModeRegular:
		// nothing to do
	case wire.ModeSocket:
		fm |= os.ModeSocket
	}

	if wire.FileMode(mode)&wire.ModeSetUID != 0 {
		fm |= os.ModeSetuid
	}
	if wire.FileMode(mode)&wire.ModeSetGID != 0 {
		fm |= os.ModeSetgid
	}
	if wire.FileMode(mode)&wire.ModeSticky != 0 {
		fm |= os.ModeSticky
	}

	return fm
}

// fromFileMode converts from the os.FileMode specification to raw SFTP
// mode bits.
func fromFileMode(mode os.FileMode) uint32 {
	ret := wire.FileMode(mode & os.ModePerm)

	switch mode & os.ModeType {
	case os.ModeDevice | os.ModeCharDevice:
		ret |= wire.ModeCharDevice
	case os.ModeDevice:
		ret |= wire.ModeDevice
	case os.ModeDir:
		ret |= wire.ModeDir
	case os.ModeNamedPipe:
		ret |= wire.ModeNamedPipe
	case os.ModeSymlink:
		ret |= wire.ModeSymlink
	case 0:
		ret |= wire.ModeRegular
	case os.ModeSocket:
		ret |= wire.ModeSocket
	}

	if mode&os.ModeSetuid != 0 {
		ret |= wire.ModeSetUID
	}
	if mode&os.ModeSetgid != 0 {
		ret |= wire.ModeSetGID
	}
	if mode&os.ModeSticky != 0 {
		ret |= wire.ModeSticky
	}

	return uint32(ret)
}
