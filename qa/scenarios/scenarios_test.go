package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	noTicks := filepath.Join(dir, "noticks.yaml")
	require.NoError(t, os.WriteFile(noTicks, []byte("name: x\n"), 0o644))
	_, err = Load(noTicks)
	assert.ErrorContains(t, err, "ticks")

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("name: x\nticks: 1\nloadout: {slots: [{name: a}, {name: a}]}\n"), 0o644))
	_, err = Load(dup)
	assert.ErrorContains(t, err, "duplicate slot")
}
