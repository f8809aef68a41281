package scratchdir

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/afero/mem"
)

// Spooled creates a temporary file that lives in memory until its size
// exceeds MaxSize, at which point the content transparently rolls over to
// a file on disk inside the scratch root. With MaxSize of zero or below it
// never rolls over.
func (sd *ScratchDir) Spooled(o SpooledOptions) (*SpooledFile, error) {
	if err := sd.ensureActive("spooled"); err != nil {
		return nil, err
	}

	sf := &SpooledFile{
		fs:   sd.fs,
		dir:  sd.dir(o.Dir),
		pat:  pattern(o.Prefix, o.Suffix),
		max:  o.MaxSize,
		file: mem.NewFileHandle(mem.CreateFile("spooled")),
	}

	sd.track(&spoolResource{sf})

	return sf, nil
}

// SpooledFile buffers content in memory and overflows onto disk once it
// grows past its threshold. The zero value is not usable; obtain one from
// ScratchDir.Spooled.
type SpooledFile struct {
	fs  afero.Fs
	dir string
	pat string
	max int64

	file   afero.File
	path   string
	rolled bool
	closed bool
}

// RolledOver reports whether the content has moved to a file on disk.
func (s *SpooledFile) RolledOver() bool {
	return s.rolled
}

// Name returns the path of the disk file backing the spool, or an empty
// string while the content is still in memory.
func (s *SpooledFile) Name() string {
	return s.path
}

func (s *SpooledFile) Write(p []byte) (int, error) {
	if s.closed {
		return 0, afero.ErrFileClosed
	}

	n, err := s.file.Write(p)
	if err != nil {
		return n, err
	}

	if !s.rolled && s.max > 0 {
		info, serr := s.file.Stat()
		if serr != nil {
			return n, serr
		}
		if info.Size() > s.max {
			if rerr := s.rollover(); rerr != nil {
				return n, rerr
			}
		}
	}

	return n, nil
}

func (s *SpooledFile) Read(p []byte) (int, error) {
	if s.closed {
		return 0, afero.ErrFileClosed
	}
	return s.file.Read(p)
}

func (s *SpooledFile) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, afero.ErrFileClosed
	}
	return s.file.Seek(offset, whence)
}

func (s *SpooledFile) Truncate(size int64) error {
	if s.closed {
		return afero.ErrFileClosed
	}
	return s.file.Truncate(size)
}

// Close releases the handle and removes the disk file if the spool rolled
// over. Closing twice is a no-op.
func (s *SpooledFile) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.file.Close()

	if s.rolled {
		if rerr := s.fs.Remove(s.path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}

	return err
}

// rollover moves the in-memory content to a fresh temp file on disk while
// preserving the current offset.
func (s *SpooledFile) rollover() error {
	disk, err := afero.TempFile(s.fs, s.dir, s.pat)
	if err != nil {
		return err
	}

	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(disk, s.file); err != nil {
		return err
	}
	if _, err := disk.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	_ = s.file.Close()

	s.file = disk
	s.path = disk.Name()
	s.rolled = true

	return nil
}

type spoolResource struct {
	f *SpooledFile
}

func (r *spoolResource) remove(afero.Fs) error {
	return r.f.Close()
}
