package scratchdir

import (
	"github.com/op/go-logging"
	"github.com/spf13/afero"
)

// DefaultSuffix marks a generated directory as a scratch root. Tools that
// sweep leaked roots key off this suffix.
const DefaultSuffix = ".scratchdir"

// Option mutates a ScratchDir during construction.
type Option func(*ScratchDir)

// WithPrefix sets the name prefix of the generated scratch root.
func WithPrefix(prefix string) Option {
	return func(sd *ScratchDir) {
		sd.prefix = prefix
	}
}

// WithSuffix overrides the name suffix of the generated scratch root.
func WithSuffix(suffix string) Option {
	return func(sd *ScratchDir) {
		sd.suffix = suffix
	}
}

// WithBaseDir overrides the directory the scratch root is created under.
// The default is the system temp location. The base is created if missing.
func WithBaseDir(base string) Option {
	return func(sd *ScratchDir) {
		sd.baseDir = base
	}
}

// WithFs substitutes the backing filesystem, e.g. afero.NewMemMapFs for
// hermetic tests.
func WithFs(fs afero.Fs) Option {
	return func(sd *ScratchDir) {
		if fs != nil {
			sd.fs = fs
		}
	}
}

// WithLogger overrides the package logger for this instance and any
// children created from it.
func WithLogger(logger *logging.Logger) Option {
	return func(sd *ScratchDir) {
		if logger != nil {
			sd.logger = logger
		}
	}
}

// FileOptions decorates anonymous temp file creation.
type FileOptions struct {
	Prefix string
	Suffix string
	// Dir is a root-relative subdirectory to create the file in. It must
	// already exist. Empty means the scratch root itself.
	Dir string
}

// NamedOptions decorates named temp file creation.
type NamedOptions struct {
	Prefix string
	Suffix string
	Dir    string
	// DeleteOnClose removes the file from disk when the handle is closed.
	// Teardown removes it either way.
	DeleteOnClose bool
}

// SpooledOptions decorates spooled temp file creation.
type SpooledOptions struct {
	Prefix string
	Suffix string
	Dir    string
	// MaxSize is the number of bytes kept in memory before the content
	// rolls over to a file on disk. Zero or negative means never roll over.
	MaxSize int64
}

// SecureOptions decorates race-free temp file creation.
type SecureOptions struct {
	Prefix string
	Suffix string
	Dir    string
}

// DirOptions decorates temp subdirectory creation.
type DirOptions struct {
	Prefix string
	Suffix string
	Dir    string
}

// FilenameOptions decorates unique filename generation.
type FilenameOptions struct {
	Prefix string
	Suffix string
}

// pattern builds an afero/os temp pattern out of a prefix and suffix.
func pattern(prefix, suffix string) string {
	return prefix + "*" + suffix
}
