package nmo

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// Whence mirrors io.Seeker's whence constants; re-exported so callers of
// the Port contract do not need to import "io" themselves.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

// Port is the byte-oriented I/O contract the core talks to (spec §6):
// sequential read/write, seek, tell, close. The core never assumes more
// than this: no directory listings, no stat, no locking.
type Port interface {
	io.Reader
	io.Writer
	io.Closer
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
}

// filePort adapts an *os.File to Port. Sequential writes are required
// after pipeline phase 10 and seek(0) must succeed for the phase-11
// header rewrite; *os.File satisfies both.
type filePort struct {
	f *os.File
}

// OpenFile opens name for the given flag/perm and wraps it as a Port.
func OpenFile(name string, flag int, perm os.FileMode) (Port, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, wrapErr(KindIO, "OpenFile", "open "+name, err)
	}
	return &filePort{f: f}, nil
}

func (p *filePort) Read(b []byte) (int, error)  { return p.f.Read(b) }
func (p *filePort) Write(b []byte) (int, error)  { return p.f.Write(b) }
func (p *filePort) Close() error                 { return p.f.Close() }
func (p *filePort) Seek(off int64, whence int) (int64, error) {
	return p.f.Seek(off, whence)
}
func (p *filePort) Tell() (int64, error) { return p.f.Seek(0, io.SeekCurrent) }

// mmapPort is a read-only Port backed by a memory-mapped file, grounded on
// the teacher's mmap-go-based File.New — used by OpenReadOnly for large
// files where the caller only ever loads, never saves back to the same
// handle.
type mmapPort struct {
	f    *os.File
	data mmap.MMap
	pos  int64
}

// OpenReadOnly memory-maps name for read-only sequential access.
func OpenReadOnly(name string) (Port, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapErr(KindIO, "OpenReadOnly", "open "+name, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, wrapErr(KindIO, "OpenReadOnly", "mmap "+name, err)
	}
	return &mmapPort{f: f, data: data}, nil
}

func (p *mmapPort) Read(b []byte) (int, error) {
	if p.pos >= int64(len(p.data)) {
		return 0, io.EOF
	}
	n := copy(b, p.data[p.pos:])
	p.pos += int64(n)
	return n, nil
}

func (p *mmapPort) Write([]byte) (int, error) {
	return 0, newErr(KindIO, "mmapPort.Write", "port opened read-only")
}

func (p *mmapPort) Close() error {
	if err := p.data.Unmap(); err != nil {
		p.f.Close()
		return wrapErr(KindIO, "mmapPort.Close", "unmap", err)
	}
	return p.f.Close()
}

func (p *mmapPort) Seek(off int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = p.pos
	case io.SeekEnd:
		base = int64(len(p.data))
	default:
		return 0, newErr(KindInvalidArgument, "mmapPort.Seek", "bad whence")
	}
	np := base + off
	if np < 0 || np > int64(len(p.data)) {
		return 0, newErr(KindInvalidArgument, "mmapPort.Seek", "out of range")
	}
	p.pos = np
	return p.pos, nil
}

func (p *mmapPort) Tell() (int64, error) { return p.pos, nil }

// MemPort is an in-memory Port, used by tests and by callers that already
// hold the whole file in a []byte.
type MemPort struct {
	buf []byte
	pos int64
}

// NewMemPort wraps buf as a read/write Port; writes past the end grow buf.
func NewMemPort(buf []byte) *MemPort {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return &MemPort{buf: cp}
}

func (p *MemPort) Read(b []byte) (int, error) {
	if p.pos >= int64(len(p.buf)) {
		return 0, io.EOF
	}
	n := copy(b, p.buf[p.pos:])
	p.pos += int64(n)
	return n, nil
}

func (p *MemPort) Write(b []byte) (int, error) {
	end := p.pos + int64(len(b))
	if end > int64(len(p.buf)) {
		grown := make([]byte, end)
		copy(grown, p.buf)
		p.buf = grown
	}
	copy(p.buf[p.pos:end], b)
	p.pos = end
	return len(b), nil
}

func (p *MemPort) Close() error { return nil }

func (p *MemPort) Seek(off int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = p.pos
	case io.SeekEnd:
		base = int64(len(p.buf))
	default:
		return 0, newErr(KindInvalidArgument, "memPort.Seek", "bad whence")
	}
	np := base + off
	if np < 0 {
		return 0, newErr(KindInvalidArgument, "memPort.Seek", "negative position")
	}
	p.pos = np
	return p.pos, nil
}

func (p *MemPort) Tell() (int64, error) { return p.pos, nil }

// Bytes returns the current contents of an in-memory Port. Only valid for
// ports created with NewMemPort.
func (p *MemPort) Bytes() []byte { return p.buf }
