package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealCmdRunnerRunsInDir(t *testing.T) {
	dir := t.TempDir()
	runner := &RealCmdRunner{}

	err := runner.Run(dir, nil, "touch", "marker")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "marker"))
	assert.NoError(t, err)
}

func TestRealCmdRunnerPassesEnv(t *testing.T) {
	dir := t.TempDir()
	runner := &RealCmdRunner{}

	err := runner.Run(dir, []string{"MARKER_NAME=from-env"}, "sh", "-c", "touch \"$MARKER_NAME\"")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "from-env"))
	assert.NoError(t, err)
}

func TestRealCmdRunnerPropagatesFailure(t *testing.T) {
	runner := &RealCmdRunner{}

	err := runner.Run(t.TempDir(), nil, "false")
	assert.Error(t, err)
}
