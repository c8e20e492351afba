package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestInvalidReconnectAddr(t *testing.T) {
	err := newApp().Run([]string{"joytransfer", "-r", "7C:BB:8A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bluetooth address")
}

func TestWorkerCommandHidden(t *testing.T) {
	app := newApp()
	cmd := app.Command("worker")
	require.NotNil(t, cmd)
	assert.True(t, cmd.Hidden)
}

func TestPassthrough(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range commonFlags() {
		f.Apply(set)
	}
	require.NoError(t, set.Parse([]string{"--log-level", "debug", "--backend", "sim"}))

	c := cli.NewContext(newApp(), set, nil)
	assert.Equal(t, []string{"--log-level", "debug", "--backend", "sim"}, passthrough(c))
}
