package router

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/protocol/protocoltest"
	"github.com/f-ready/joytransfer-with-nfc/pulse"
)

func newRouter(c protocol.ControllerType) (*Router, *protocoltest.Protocol, *logtest.Hook) {
	lg, hook := logtest.NewNullLogger()
	lg.SetLevel(logrus.DebugLevel)
	p := protocoltest.NewProtocol(protocoltest.NewState(c, "a", "b", "home", "pause"))
	r := New(p, pulse.New(joytransfer.DefaultTiming()), joytransfer.NewLogger(lg))
	r.loadTag = func(path string) (*nfc.Tag, error) {
		if strings.HasSuffix(path, ".bin") {
			return nfc.NewTag(path, make([]byte, 540))
		}
		return nil, errors.Errorf("can't read %s", path)
	}
	return r, p, hook
}

func logged(hook *logtest.Hook, substr string) bool {
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestParse(t *testing.T) {
	cmd, ok, err := Parse(`nfc "my amiibo.bin"`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Command{Verb: "nfc", Args: []string{"my amiibo.bin"}}, cmd)

	for _, line := range []string{"", "   ", `""`} {
		_, ok, err = Parse(line)
		require.NoError(t, err)
		assert.False(t, ok, "%q", line)
	}

	_, ok, err = Parse(`nfc "unterminated`)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPauseNeverPressed(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	for _, line := range []string{"pause", "PAUSE", "Pause extra", "unpause", "UnPause"} {
		require.NoError(t, r.Route(context.Background(), line))
	}

	assert.Equal(t, 3, p.Pauses)
	assert.Equal(t, 2, p.Unpauses)
	assert.False(t, p.Paused)
	// "pause" is an available button on this fake and still never pulsed
	assert.Empty(t, p.State.Events())
}

func TestRouteButton(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	var pressed []string
	r.OnPress(func(button string, out pulse.Outcome) {
		if out == pulse.Sent {
			pressed = append(pressed, button)
		}
	})

	require.NoError(t, r.Route(context.Background(), "b"))
	require.NoError(t, r.Route(context.Background(), "x"))
	require.NoError(t, r.Route(context.Background(), ""))

	assert.Len(t, p.State.Sends(), 2)
	assert.Equal(t, []string{"b"}, pressed)
}

func TestRouteNoArgSubcommandIsButton(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), "nfc"))
	require.NoError(t, r.Route(context.Background(), "debug"))

	assert.Empty(t, p.DebugArgs)
	assert.Empty(t, p.State.Events())
}

func TestRouteDebug(t *testing.T) {
	r, p, hook := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), "DEBUG state 'two words'"))
	require.Len(t, p.DebugArgs, 1)
	assert.Equal(t, []string{"state", "two words"}, p.DebugArgs[0])
	assert.True(t, logged(hook, "custom command detected"))

	p.DebugErr = errors.New("boom")
	require.NoError(t, r.Route(context.Background(), "debug state"))
	assert.True(t, logged(hook, "boom"))
}

func TestNFCRemoveIdempotent(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), "nfc sample.bin"))
	require.NotNil(t, p.State.NFC())

	require.NoError(t, r.Route(context.Background(), "nfc remove"))
	assert.Nil(t, p.State.NFC())

	require.NoError(t, r.nfc([]string{"remove"}))
	assert.Nil(t, p.State.NFC())
}

func TestNFCQuotedPath(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), `nfc "dir with space/zelda.bin"`))
	require.NotNil(t, p.State.NFC())
	assert.Equal(t, "dir with space/zelda.bin", p.State.NFC().Source)
}

func TestNFCUnsupportedLeavesState(t *testing.T) {
	r, p, hook := newRouter(protocol.JoyConL)

	tag, err := nfc.NewTag("kept.bin", make([]byte, 540))
	require.NoError(t, err)
	p.State.SetNFC(tag)

	err = r.nfc([]string{"sample.bin"})
	assert.True(t, joytransfer.IsConfigurationError(err))
	assert.Equal(t, tag, p.State.NFC())

	err = r.nfc([]string{"remove"})
	assert.True(t, joytransfer.IsConfigurationError(err))
	assert.Equal(t, tag, p.State.NFC())

	// through Route the error is reported and the loop goes on
	require.NoError(t, r.Route(context.Background(), "nfc sample.bin"))
	assert.True(t, logged(hook, "NFC content cannot be set for JOYCON_L"))
	require.NoError(t, r.Route(context.Background(), "a"))
	assert.Len(t, p.State.Sends(), 2)
}

func TestNFCLoadError(t *testing.T) {
	r, p, hook := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), "nfc missing.txt"))
	assert.Nil(t, p.State.NFC())
	assert.True(t, logged(hook, "can't read missing.txt"))
}

func TestRouteDisconnected(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)
	p.State.SendErr = protocol.ErrDisconnected

	err := r.Route(context.Background(), "a")
	assert.Equal(t, protocol.ErrDisconnected, errors.Cause(err))
}

func TestRouteMalformed(t *testing.T) {
	r, p, _ := newRouter(protocol.ProController)

	require.NoError(t, r.Route(context.Background(), `a "b`))
	assert.Empty(t, p.State.Events())
}
