package scratchdir

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.SetBackend(logging.NewLogBackend(io.Discard, "", 0))
	os.Exit(m.Run())
}

// recordingFs remembers the order of RemoveAll calls so teardown ordering
// can be observed.
type recordingFs struct {
	afero.Fs
	removed []string
}

func (r *recordingFs) RemoveAll(path string) error {
	r.removed = append(r.removed, path)
	return r.Fs.RemoveAll(path)
}

// denyRemoveFs fails Remove for a single path to simulate a file the
// process is not allowed to delete.
type denyRemoveFs struct {
	afero.Fs
	denied string
}

func (d *denyRemoveFs) Remove(name string) error {
	if name == d.denied {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Remove(name)
}

func TestSetupCreatesRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	sd := New(WithFs(fs), WithPrefix("grandparent-"))

	require.NoError(t, sd.Setup())

	assert.Equal(t, StateActive, sd.State())
	assert.NotEmpty(t, sd.Root())

	exists, err := afero.DirExists(fs, sd.Root())
	require.NoError(t, err)
	assert.True(t, exists)

	name := filepath.Base(sd.Root())
	assert.True(t, strings.HasPrefix(name, "grandparent-"))
	assert.True(t, strings.HasSuffix(name, DefaultSuffix))
}

func TestSetupIsIdempotent(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))

	require.NoError(t, sd.Setup())
	root := sd.Root()

	// A second setup must not replace the root.
	require.NoError(t, sd.Setup())
	assert.Equal(t, root, sd.Root())
}

func TestSetupAfterTeardownIsRejected(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))

	require.NoError(t, sd.Setup())
	require.NoError(t, sd.Teardown())

	err := sd.Setup()
	require.Error(t, err)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateTornDown, stateErr.State)
}

func TestTeardownRemovesEverything(t *testing.T) {
	fs := afero.NewMemMapFs()
	sd := New(WithFs(fs))

	named, err := sd.Named(NamedOptions{Prefix: "data-"})
	require.NoError(t, err)

	dir, err := sd.Directory(DirOptions{})
	require.NoError(t, err)

	child, err := sd.Child()
	require.NoError(t, err)

	require.NoError(t, sd.Teardown())
	assert.Equal(t, StateTornDown, sd.State())

	for _, path := range []string{named.Name(), dir, child.Root(), sd.Root()} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, "expected [%s] to be gone after teardown", path)
	}
}

func TestTeardownIsIdempotent(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))

	require.NoError(t, sd.Setup())
	require.NoError(t, sd.Teardown())
	require.NoError(t, sd.Teardown())
}

func TestTeardownOnUninitialized(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))

	require.NoError(t, sd.Teardown())
	assert.Equal(t, StateUninitialized, sd.State())
}

func TestTeardownSurvivesExternalDeletion(t *testing.T) {
	fs := afero.NewMemMapFs()
	sd := New(WithFs(fs))

	named, err := sd.Named(NamedOptions{})
	require.NoError(t, err)

	dir, err := sd.Directory(DirOptions{})
	require.NoError(t, err)

	// Somebody else cleaned up parts of the tree behind our back.
	require.NoError(t, fs.Remove(named.Name()))
	require.NoError(t, fs.RemoveAll(dir))

	require.NoError(t, sd.Teardown())

	exists, err := afero.Exists(fs, sd.Root())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTeardownCollectsFailuresAndContinues(t *testing.T) {
	mem := afero.NewMemMapFs()
	sd := New(WithFs(mem))

	blocked, err := sd.Named(NamedOptions{Prefix: "blocked-"})
	require.NoError(t, err)

	removable, err := sd.Named(NamedOptions{Prefix: "removable-"})
	require.NoError(t, err)

	// Swap in a filesystem that refuses to delete one of the two files.
	sd.fs = &denyRemoveFs{Fs: mem, denied: blocked.Name()}

	err = sd.Teardown()
	require.Error(t, err)

	var teardownErr *TeardownError
	require.ErrorAs(t, err, &teardownErr)
	assert.Len(t, teardownErr.Errs, 1)
	assert.ErrorIs(t, err, os.ErrPermission)

	// The failing sibling must not have stopped the cleanup of the rest.
	exists, _ := afero.Exists(mem, removable.Name())
	assert.False(t, exists)
	assert.Equal(t, StateTornDown, sd.State())
}

func TestNestedTeardownOrder(t *testing.T) {
	fs := &recordingFs{Fs: afero.NewMemMapFs()}
	root := New(WithFs(fs))
	require.NoError(t, root.Setup())

	a, err := root.Child(WithPrefix("a-"))
	require.NoError(t, err)
	b, err := a.Child(WithPrefix("b-"))
	require.NoError(t, err)

	require.NoError(t, root.Teardown())

	indexOf := func(path string) int {
		for i, p := range fs.removed {
			if p == path {
				return i
			}
		}
		t.Fatalf("no RemoveAll recorded for [%s]", path)
		return -1
	}

	// Innermost first: b before a before the root.
	assert.Less(t, indexOf(b.Root()), indexOf(a.Root()))
	assert.Less(t, indexOf(a.Root()), indexOf(root.Root()))
}

func TestChildNestsUnderParent(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()), WithPrefix("grandparent-"))
	require.NoError(t, sd.Setup())

	child, err := sd.Child(WithPrefix("parent-"))
	require.NoError(t, err)

	assert.Equal(t, StateActive, child.State())
	assert.True(t, strings.HasPrefix(child.Root(), sd.Root()+string(filepath.Separator)))
	assert.True(t, strings.HasPrefix(filepath.Base(child.Root()), "parent-"))
	assert.Same(t, sd, child.Parent())
}

func TestChildBaseDirCannotEscape(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))
	require.NoError(t, sd.Setup())

	child, err := sd.Child(WithBaseDir("/elsewhere"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(child.Root(), sd.Root()+string(filepath.Separator)))
}

func TestChildOnTornDown(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))
	require.NoError(t, sd.Setup())
	require.NoError(t, sd.Teardown())

	_, err := sd.Child()

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestChildTornDownOutOfBand(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))
	require.NoError(t, sd.Setup())

	child, err := sd.Child()
	require.NoError(t, err)

	// Tearing the child down first must not upset the parent's teardown.
	require.NoError(t, child.Teardown())
	require.NoError(t, sd.Teardown())
}

func TestJoin(t *testing.T) {
	fs := afero.NewMemMapFs()
	sd := New(WithFs(fs))
	require.NoError(t, sd.Setup())

	joined := sd.Join("a", "b")
	assert.Equal(t, filepath.Join(sd.Root(), "a", "b"), joined)

	// Join is purely lexical; nothing may appear on disk.
	exists, err := afero.Exists(fs, joined)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestJoinDoesNotSetup(t *testing.T) {
	sd := New(WithFs(afero.NewMemMapFs()))

	_ = sd.Join("a")
	assert.Equal(t, StateUninitialized, sd.State())
}

func TestEveryPathIsUnderRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	sd := New(WithFs(fs))
	require.NoError(t, sd.Setup())

	prefix := sd.Root() + string(filepath.Separator)

	named, err := sd.Named(NamedOptions{})
	require.NoError(t, err)

	_, securePath, err := sd.Secure(SecureOptions{})
	require.NoError(t, err)

	dir, err := sd.Directory(DirOptions{})
	require.NoError(t, err)

	child, err := sd.Child()
	require.NoError(t, err)

	filename, err := sd.Filename(FilenameOptions{})
	require.NoError(t, err)

	for _, path := range []string{named.Name(), securePath, dir, child.Root(), filename} {
		if !strings.HasPrefix(path, prefix) {
			t.Errorf("expected [%s] to live under [%s]", path, sd.Root())
		}
	}
}

func TestWithLoggerOverride(t *testing.T) {
	logger := logging.MustGetLogger("scratchdir-test")
	sd := New(WithFs(afero.NewMemMapFs()), WithLogger(logger))

	require.NoError(t, sd.Setup())

	child, err := sd.Child()
	require.NoError(t, err)
	assert.Same(t, logger, child.logger)

	require.NoError(t, sd.Teardown())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "torn down", StateTornDown.String())
}
