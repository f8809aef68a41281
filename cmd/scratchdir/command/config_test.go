package command

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	// Test case 1: No config file requested yields a zero config.
	cfg, err := loadFileConfig(fs, "")
	require.NoError(t, err)
	assert.Equal(t, fileConfig{}, cfg)

	// Test case 2: Values are picked up from the yaml file.
	require.NoError(t, afero.WriteFile(fs, "/etc/scratchdir.yaml",
		[]byte("prefix: ci-\nsuffix: .work\nbase: /var/tmp\n"), 0o644))

	cfg, err = loadFileConfig(fs, "/etc/scratchdir.yaml")
	require.NoError(t, err)
	assert.Equal(t, fileConfig{Prefix: "ci-", Suffix: ".work", Base: "/var/tmp"}, cfg)

	// Test case 3: A missing explicit path is an error.
	_, err = loadFileConfig(fs, "/etc/missing.yaml")
	assert.Error(t, err)

	// Test case 4: Malformed yaml is an error.
	require.NoError(t, afero.WriteFile(fs, "/etc/broken.yaml", []byte("prefix: ["), 0o644))
	_, err = loadFileConfig(fs, "/etc/broken.yaml")
	assert.Error(t, err)
}
