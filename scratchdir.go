// Package scratchdir manages disposable working storage on disk. A
// ScratchDir owns one lazily created root directory, hands out temporary
// files and subdirectories underneath it, and removes everything it handed
// out when torn down. Instances nest: a child ScratchDir lives inside its
// parent's root and is destroyed together with it.
//
// A ScratchDir is not safe for concurrent use from multiple goroutines;
// callers that share one must synchronize externally.
package scratchdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"github.com/spf13/afero"
)

var log = logging.MustGetLogger("scratchdir")

// State describes where a ScratchDir is in its lifecycle.
type State int

const (
	// StateUninitialized means Setup has not run and no root exists yet.
	StateUninitialized State = iota
	// StateActive means the scratch root exists on disk.
	StateActive
	// StateTornDown means the instance was destroyed and cannot be reused.
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// resource is anything a ScratchDir created and must clean up on teardown.
// remove must treat an already absent resource as success.
type resource interface {
	remove(fs afero.Fs) error
}

// ScratchDir owns a scratch root and every resource created through it.
type ScratchDir struct {
	fs     afero.Fs
	logger *logging.Logger

	prefix  string
	suffix  string
	baseDir string

	// parent is informational only; cleanup always runs top-down from the
	// instance Teardown was called on.
	parent   *ScratchDir
	children []resource

	root  string
	state State
}

// New builds a ScratchDir in the uninitialized state. No directory is
// created until Setup or the first creation call.
func New(opts ...Option) *ScratchDir {
	sd := &ScratchDir{
		fs:     afero.NewOsFs(),
		logger: log,
		suffix: DefaultSuffix,
	}

	for _, opt := range opts {
		opt(sd)
	}

	return sd
}

// Root returns the scratch root path, or an empty string before Setup.
func (sd *ScratchDir) Root() string {
	return sd.root
}

// State returns the current lifecycle state.
func (sd *ScratchDir) State() State {
	return sd.state
}

// Parent returns the owning ScratchDir for a nested instance, nil otherwise.
func (sd *ScratchDir) Parent() *ScratchDir {
	return sd.parent
}

// Setup materializes the scratch root. Calling it on an active instance is
// a no-op, so accidental double setup is harmless. A torn down instance
// cannot be reactivated and yields a *StateError.
func (sd *ScratchDir) Setup() error {
	switch sd.state {
	case StateActive:
		return nil
	case StateTornDown:
		return &StateError{Op: "setup", State: sd.state}
	}

	if sd.baseDir != "" {
		if err := sd.fs.MkdirAll(sd.baseDir, 0o755); err != nil {
			return &SetupError{Base: sd.baseDir, Err: err}
		}
	}

	root, err := tempDir(sd.fs, sd.baseDir, sd.prefix, sd.suffix)
	if err != nil {
		return &SetupError{Base: sd.baseDir, Err: err}
	}

	sd.root = root
	sd.state = StateActive

	sd.logger.Debugf("created scratch root [%s]", root)

	return nil
}

// Teardown destroys every tracked resource in reverse creation order, then
// removes the scratch root itself. Resources that are already gone count as
// removed; any other failure is collected into a *TeardownError after all
// siblings have been attempted. Teardown is idempotent and a no-op on an
// uninitialized instance. The instance ends up torn down even when some
// removals failed.
func (sd *ScratchDir) Teardown() error {
	if sd.state != StateActive {
		return nil
	}

	var failed []error

	for i := len(sd.children) - 1; i >= 0; i-- {
		if err := sd.children[i].remove(sd.fs); err != nil {
			failed = append(failed, err)
		}
	}
	sd.children = nil

	if err := sd.fs.RemoveAll(sd.root); err != nil && !os.IsNotExist(err) {
		failed = append(failed, fmt.Errorf("removing scratch root %s: %w", sd.root, err))
	}

	sd.state = StateTornDown

	sd.logger.Debugf("removed scratch root [%s]", sd.root)

	if len(failed) > 0 {
		return &TeardownError{Errs: failed}
	}

	return nil
}

// Child creates a nested ScratchDir whose root lives inside this one and
// registers it for teardown, so destroying the parent destroys the whole
// subtree. The child is returned already active. It inherits the parent's
// filesystem and logger; WithPrefix and WithSuffix apply as usual, while
// any WithBaseDir option is overridden by the parent root.
func (sd *ScratchDir) Child(opts ...Option) (*ScratchDir, error) {
	if err := sd.ensureActive("child"); err != nil {
		return nil, err
	}

	child := &ScratchDir{
		fs:     sd.fs,
		logger: sd.logger,
		suffix: DefaultSuffix,
		parent: sd,
	}
	for _, opt := range opts {
		opt(child)
	}
	child.baseDir = sd.root

	if err := child.Setup(); err != nil {
		return nil, err
	}

	sd.children = append(sd.children, child)

	return child, nil
}

// Join returns root joined with the given path segments. It touches nothing
// on disk and does not trigger setup; before Setup the result is relative
// to an empty root.
func (sd *ScratchDir) Join(parts ...string) string {
	return filepath.Join(append([]string{sd.root}, parts...)...)
}

// remove lets a child ScratchDir participate in its parent's teardown.
func (sd *ScratchDir) remove(afero.Fs) error {
	return sd.Teardown()
}

// ensureActive performs the lazy setup shared by all creation methods.
func (sd *ScratchDir) ensureActive(op string) error {
	if sd.state == StateTornDown {
		return &StateError{Op: op, State: sd.state}
	}
	return sd.Setup()
}

// dir resolves a root-relative subpath used by per-call Dir options.
func (sd *ScratchDir) dir(rel string) string {
	if rel == "" {
		return sd.root
	}
	return sd.Join(rel)
}

func (sd *ScratchDir) track(r resource) {
	sd.children = append(sd.children, r)
}

// tempDir mirrors afero.TempDir but decorates the generated name with both
// a prefix and a suffix. The uuid component makes collisions a non-issue.
func tempDir(fs afero.Fs, dir, prefix, suffix string) (string, error) {
	if dir == "" {
		dir = afero.GetTempDir(fs, "")
	}

	name := filepath.Join(dir, prefix+uuid.NewString()+suffix)
	if err := fs.Mkdir(name, 0o700); err != nil {
		return "", err
	}

	return name, nil
}
