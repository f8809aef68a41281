package scratchdir

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// File creates an anonymous temporary file inside the scratch root. The
// directory entry is unlinked right away while the handle stays open, so
// the file is unreachable by path and its storage is reclaimed once the
// handle closes. Creation failures come back unwrapped from the underlying
// filesystem.
func (sd *ScratchDir) File(o FileOptions) (afero.File, error) {
	if err := sd.ensureActive("file"); err != nil {
		return nil, err
	}

	f, err := afero.TempFile(sd.fs, sd.dir(o.Dir), pattern(o.Prefix, o.Suffix))
	if err != nil {
		return nil, err
	}

	// Filesystems that refuse to unlink an open file keep the path tracked
	// so teardown removes it instead.
	if rerr := sd.fs.Remove(f.Name()); rerr != nil {
		sd.track(&fileResource{file: f, path: f.Name()})
	} else {
		sd.track(&fileResource{file: f})
	}

	return f, nil
}

// Named creates a named temporary file inside the scratch root and returns
// a handle that knows its own path. With DeleteOnClose set, closing the
// handle also removes the file; teardown removes it regardless.
func (sd *ScratchDir) Named(o NamedOptions) (*File, error) {
	if err := sd.ensureActive("named"); err != nil {
		return nil, err
	}

	f, err := afero.TempFile(sd.fs, sd.dir(o.Dir), pattern(o.Prefix, o.Suffix))
	if err != nil {
		return nil, err
	}

	nf := &File{File: f, fs: sd.fs, deleteOnClose: o.DeleteOnClose}
	sd.track(&fileResource{file: nf, path: f.Name()})

	return nf, nil
}

// Secure creates a temporary file with an exclusive-create open, so the
// name can never be raced by another process, and returns both the open
// handle and its path.
func (sd *ScratchDir) Secure(o SecureOptions) (afero.File, string, error) {
	if err := sd.ensureActive("secure"); err != nil {
		return nil, "", err
	}

	f, err := afero.TempFile(sd.fs, sd.dir(o.Dir), pattern(o.Prefix, o.Suffix))
	if err != nil {
		return nil, "", err
	}

	sd.track(&fileResource{file: f, path: f.Name()})

	return f, f.Name(), nil
}

// Directory creates a uniquely named subdirectory inside the scratch root
// and returns its path. The directory and anything later placed in it are
// removed on teardown.
func (sd *ScratchDir) Directory(o DirOptions) (string, error) {
	if err := sd.ensureActive("directory"); err != nil {
		return "", err
	}

	path, err := tempDir(sd.fs, sd.dir(o.Dir), o.Prefix, o.Suffix)
	if err != nil {
		return "", err
	}

	sd.track(&dirResource{path: path})

	return path, nil
}

// Filename returns a unique path inside the scratch root without creating
// anything on disk. Nothing is tracked; callers that create the file
// themselves own its lifetime until teardown removes the root.
func (sd *ScratchDir) Filename(o FilenameOptions) (string, error) {
	if err := sd.ensureActive("filename"); err != nil {
		return "", err
	}

	return sd.Join(o.Prefix + uuid.NewString() + o.Suffix), nil
}

// File is a named temporary file handle. Name reports its path on disk.
type File struct {
	afero.File

	fs            afero.Fs
	deleteOnClose bool
	closed        bool
}

// Close closes the handle and, if the file was created with DeleteOnClose,
// removes it from disk. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	err := f.File.Close()

	if f.deleteOnClose {
		if rerr := f.fs.Remove(f.Name()); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}

	return err
}

// fileResource cleans up one file handle. path is empty for anonymous
// files that were already unlinked at creation.
type fileResource struct {
	file io.Closer
	path string
}

func (r *fileResource) remove(fs afero.Fs) error {
	// Close errors are irrelevant here, removal is what teardown is about.
	_ = r.file.Close()

	if r.path == "" {
		return nil
	}

	if err := fs.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", r.path, err)
	}

	return nil
}

type dirResource struct {
	path string
}

func (r *dirResource) remove(fs afero.Fs) error {
	if err := fs.RemoveAll(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", r.path, err)
	}
	return nil
}
