package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleDefaultsToNominalCadence(t *testing.T) {
	c := &CliConfig{}
	assert.Equal(t, 5*time.Second, c.Cycle())

	c.CycleInterval = 50 * time.Millisecond
	assert.Equal(t, 50*time.Millisecond, c.Cycle())
}

func TestSetTokenTrimsWhitespace(t *testing.T) {
	c := &CliConfig{}
	c.SetToken(" secret\n")
	assert.Equal(t, "secret", c.Token())
}

func TestLoadTokenSkipsEmptyFile(t *testing.T) {
	f := t.TempDir() + "/token"
	require.NoError(t, os.WriteFile(f, []byte(""), 0644))

	c := &CliConfig{TokenFile: f, APIToken: "existing"}
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "existing", c.Token())

	require.NoError(t, os.WriteFile(f, []byte("fromfile\n"), 0644))
	require.NoError(t, c.LoadToken())
	assert.Equal(t, "fromfile", c.Token())
}
