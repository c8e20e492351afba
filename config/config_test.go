package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sim", c.Backend)
	assert.Equal(t, protocol.ProController, c.ControllerType())
	assert.Equal(t, []string{"exit", "quit", "q", "bye", "shutdown"}, c.ExitKeywords)
	assert.Equal(t, []string{"a", "b", "home"}, c.GreetButtons)
	assert.Equal(t, "a", c.AutoGreetButton)
	assert.Equal(t, joytransfer.DefaultTiming(), c.PulseTiming())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOYTRANSFER_TIMING_HOLD", "80ms")
	t.Setenv("JOYTRANSFER_TIMING_RELEASE", "5ms")
	t.Setenv("JOYTRANSFER_CONTROLLER", "joycon_r")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, protocol.JoyConR, c.ControllerType())

	timing := c.PulseTiming()
	assert.Equal(t, 80*time.Millisecond, timing.Hold)
	// below the minimum
	assert.Equal(t, joytransfer.MinRelease, timing.Release)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joytransfer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "sim"
controller = "JOYCON_L"
log_level = "debug"
exit_keywords = ["stop"]

[timing]
settle = "3s"

[sim]
peer_addr = "AA:BB:CC:DD:EE:FF"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, protocol.JoyConL, c.ControllerType())
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, []string{"stop"}, c.ExitKeywords)
	assert.Equal(t, 3*time.Second, c.Timing.Settle)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", c.Sim.PeerAddr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOYTRANSFER_CONTROLLER", "gamecube")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	good := Config{
		Backend:      "sim",
		Controller:   "PRO_CONTROLLER",
		LogLevel:     "info",
		ExitKeywords: []string{"q"},
		GreetButtons: []string{"a"},
	}
	require.NoError(t, good.Validate())

	bad := good
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())

	bad = good
	bad.Sim.PeerAddr = "7C:BB"
	assert.Error(t, bad.Validate())

	bad = good
	bad.ExitKeywords = nil
	assert.Error(t, bad.Validate())
}
