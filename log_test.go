package joytransfer

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildLoggerTags(t *testing.T) {
	lg, hook := logtest.NewNullLogger()
	l := NewLogger(lg).ChildLogger(map[string]interface{}{"session": "x"})

	l.Infof("hello %d", 1)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "hello 1", hook.LastEntry().Message)
	assert.Equal(t, "x", hook.LastEntry().Data["session"])
}

func TestSetLogLevel(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	SetLogger(buildDefaultLogger())
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, GetLogger().(*defaultLogger).Entry.Logger.GetLevel())
	assert.Error(t, SetLogLevel("chatty"))

	lg, _ := logtest.NewNullLogger()
	SetLogger(nopLogger{NewLogger(lg)})
	assert.Error(t, SetLogLevel("info"))
}

type nopLogger struct{ Logger }
