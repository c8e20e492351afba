package supervisor

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/mailbox"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/protocol/sim"
	"github.com/f-ready/joytransfer-with-nfc/worker"
)

// workerEnv makes the test binary act as the worker subcommand, so
// ExecSpawner can re-execute it.
const workerEnv = "JOYTRANSFER_TEST_WORKER"

func TestMain(m *testing.M) {
	if os.Getenv(workerEnv) == "1" {
		os.Exit(serveWorker(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// serveWorker understands the arguments WorkerArgs renders.
func serveWorker(args []string) int {
	var desc joytransfer.Descriptor
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--id":
			i++
			desc.ID = args[i]
		case "--ordinal":
			i++
			desc.Ordinal, _ = strconv.Atoi(args[i])
		case "--peer":
			i++
			desc.PeerAddr = args[i]
		case "--auto":
			desc.AutoGreet = true
		}
	}

	lg := logrus.New()
	lg.SetOutput(os.Stderr)
	sess, err := worker.New(desc, sim.New(), protocol.ProController,
		mailbox.NewWorkerEnd(os.Stdin, os.Stdout),
		joytransfer.OptLogger(joytransfer.NewLogger(lg)))
	if err != nil {
		return 1
	}
	if err := sess.Serve(context.Background()); err != nil {
		return 1
	}
	return 0
}

func execSpawner(t *testing.T) *ExecSpawner {
	t.Setenv(workerEnv, "1")
	exe, err := os.Executable()
	require.NoError(t, err)
	return &ExecSpawner{Path: exe}
}

func TestExecPairingThenReconnect(t *testing.T) {
	sp := execSpawner(t)
	con := newScript(
		func() (string, error) {
			// the reconnect worker reads it once unlocked
			time.Sleep(50 * time.Millisecond)
			return "b", nil
		},
		line("quit"),
	)
	sup, _ := newSupervisor(Config{AutoGreet: true}, sp, con)

	results, err := sup.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, Exited, results[0].Outcome, results[0].String())
	assert.Equal(t, sim.DefaultPeerAddr, results[0].Addr)
	assert.Equal(t, Killed, results[1].Outcome, results[1].String())
	assert.Equal(t, sim.DefaultPeerAddr, results[1].Desc.PeerAddr)
}

func TestExecPeerDropIsFailed(t *testing.T) {
	sp := execSpawner(t)
	con := newScript(line("debug disconnect"), line("a"))
	sup, _ := newSupervisor(Config{ReconnectAddr: "AA:BB:CC:DD:EE:FF"}, sp, con)

	results, err := sup.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	// the failed message is read after the process is gone
	assert.Equal(t, Failed, results[0].Outcome, results[0].String())
	assert.Contains(t, results[0].Reason, "peer disconnected")
}

func TestExecProcessStdinEOF(t *testing.T) {
	sp := execSpawner(t)
	p, err := sp.Spawn(context.Background(), joytransfer.Descriptor{
		ID:       "e",
		Ordinal:  joytransfer.OrdinalReconnect,
		PeerAddr: "AA:BB:CC:DD:EE:FF",
	})
	require.NoError(t, err)

	select {
	case m := <-p.Mailbox().Messages():
		assert.Equal(t, mailbox.Unlock(), m)
	case <-time.After(5 * time.Second):
		t.Fatal("no unlock from worker")
	}

	require.NoError(t, p.Mailbox().Close())
	require.NoError(t, p.Wait())
	_, ok := <-p.Mailbox().Messages()
	assert.False(t, ok)

	// killing an exited worker is not an error
	assert.NoError(t, p.Kill())
}

func TestExecProcessKill(t *testing.T) {
	sp := execSpawner(t)
	p, err := sp.Spawn(context.Background(), joytransfer.Descriptor{
		ID:       "k",
		Ordinal:  joytransfer.OrdinalReconnect,
		PeerAddr: "AA:BB:CC:DD:EE:FF",
	})
	require.NoError(t, err)

	select {
	case m := <-p.Mailbox().Messages():
		assert.Equal(t, mailbox.Unlock(), m)
	case <-time.After(5 * time.Second):
		t.Fatal("no unlock from worker")
	}

	require.NoError(t, p.Kill())
	assert.Error(t, p.Wait())
	p.Mailbox().Close()
}
