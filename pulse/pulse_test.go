package pulse

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/protocol/protocoltest"
)

func TestPressNotAvailable(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, "a", "b")
	e := New(joytransfer.DefaultTiming())

	for _, name := range []string{"c", "A", "", "nfc"} {
		out, err := e.Press(context.Background(), s, name)
		require.NoError(t, err)
		assert.Equal(t, NotAvailable, out, name)
	}
	assert.Empty(t, s.Events())
}

func TestPressTiming(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, "a", "b")
	e := New(joytransfer.DefaultTiming())

	start := time.Now()
	out, err := e.Press(context.Background(), s, "b")
	done := time.Now()
	require.NoError(t, err)
	assert.Equal(t, Sent, out)

	sends := s.Sends()
	require.Len(t, sends, 2)
	assert.Equal(t, []string{"b"}, sends[0].Pressed)
	assert.Empty(t, sends[1].Pressed)

	assert.True(t, sends[0].At.After(start) || sends[0].At.Equal(start))
	assert.True(t, sends[1].At.Sub(sends[0].At) >= joytransfer.MinHold, "hold %s", sends[1].At.Sub(sends[0].At))
	assert.True(t, done.Sub(sends[1].At) >= joytransfer.MinRelease, "release %s", done.Sub(sends[1].At))
}

func TestWakeClearsFirst(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, "a")
	require.NoError(t, s.Buttons().Set("a", true))
	e := New(joytransfer.DefaultTiming())

	start := time.Now()
	out, err := e.Press(context.Background(), s, WakeToken)
	done := time.Now()
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, out)

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "clear", events[0].Kind)
	assert.Equal(t, "send", events[1].Kind)
	assert.Empty(t, events[1].Pressed)
	assert.True(t, done.Sub(start) >= joytransfer.MinWakeSettle)
}

func TestWakeAvailableButton(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, WakeToken)
	e := New(joytransfer.DefaultTiming())

	out, err := e.Press(context.Background(), s, WakeToken)
	require.NoError(t, err)
	assert.Equal(t, Sent, out)

	events := s.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "clear", events[0].Kind)
	assert.True(t, events[2].At.Sub(events[1].At) >= joytransfer.MinWakeSettle)
}

func TestTimingClamped(t *testing.T) {
	e := New(joytransfer.Timing{Hold: time.Millisecond, Release: time.Millisecond, WakeSettle: 0})
	assert.Equal(t, joytransfer.MinHold, e.Timing().Hold)
	assert.Equal(t, joytransfer.MinRelease, e.Timing().Release)
	assert.Equal(t, joytransfer.MinWakeSettle, e.Timing().WakeSettle)

	e = New(joytransfer.Timing{Hold: 80 * time.Millisecond})
	assert.Equal(t, 80*time.Millisecond, e.Timing().Hold)
}

func TestPressSendError(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, "a")
	s.SendErr = protocol.ErrDisconnected
	e := New(joytransfer.DefaultTiming())

	_, err := e.Press(context.Background(), s, "a")
	assert.Equal(t, protocol.ErrDisconnected, errors.Cause(err))
}

func TestPressCancelled(t *testing.T) {
	s := protocoltest.NewState(protocol.ProController, "a")
	e := New(joytransfer.DefaultTiming())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Press(ctx, s, "a")
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Len(t, s.Sends(), 1)
}
