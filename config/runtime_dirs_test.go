package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-bpfarray/config"
)

func TestNewRuntimeDirs(t *testing.T) {
	dirs, err := config.NewRuntimeDirs("/run/bpfarray")
	require.NoError(t, err)

	assert.Equal(t, "/run/bpfarray", dirs.Base())
	assert.Equal(t, "/run/bpfarray/fs", dirs.FS())
	assert.Equal(t, "/run/bpfarray/fs/maps", dirs.FSMaps())
	assert.Equal(t, "/run/bpfarray/db", dirs.DB())
	assert.Equal(t, "/run/bpfarray/db/state.db", dirs.DBPath())
	assert.Equal(t, "/run/bpfarray/.lock", dirs.Lock())
	assert.Equal(t, "/run/bpfarray/fs/maps/counts", dirs.MapPin("counts"))
}

func TestNewRuntimeDirsRejectsEmpty(t *testing.T) {
	_, err := config.NewRuntimeDirs("")
	assert.Error(t, err)
}

func TestNewRuntimeDirsRejectsRelative(t *testing.T) {
	_, err := config.NewRuntimeDirs("run/bpfarray")
	assert.Error(t, err)
}

func TestDefaultRuntimeDirs(t *testing.T) {
	dirs := config.DefaultRuntimeDirs()
	assert.Equal(t, config.DefaultBase, dirs.Base())
}
