package paths

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSourceDirs(t *testing.T) {
	dirs := DefaultSourceDirs()
	require.Len(t, dirs, 2)

	assert.Equal(t, filepath.Join("/var", "lib", "flatpak", "exports", "bin"), dirs[0])
	assert.True(t, strings.HasSuffix(dirs[1], filepath.Join("flatpak", "exports", "bin")))
	assert.True(t, filepath.IsAbs(dirs[1]))
}

func TestConfigFileCandidates(t *testing.T) {
	candidates := ConfigFileCandidates()
	require.Len(t, candidates, 2)

	assert.True(t, strings.HasSuffix(candidates[0], filepath.Join("applinker", "applinker.toml")))
	assert.True(t, strings.HasSuffix(candidates[1], filepath.Join("applinker", "applinker.yaml")))
}
