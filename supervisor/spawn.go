package supervisor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/mailbox"
)

// Process is one running worker session.
type Process interface {
	Mailbox() *mailbox.SupervisorEnd
	// Wait blocks until the process has exited.
	Wait() error
	// Kill terminates the process without any drain.
	Kill() error
}

// Spawner starts worker sessions.
type Spawner interface {
	Spawn(ctx context.Context, desc joytransfer.Descriptor) (Process, error)
}

// ExecSpawner re-executes a binary with the hidden worker subcommand. The
// worker reads commands on stdin, writes messages on stdout and shares our
// stderr for logs.
type ExecSpawner struct {
	// Path defaults to the running executable.
	Path string
	// Args are appended after the session flags, e.g. --config.
	Args []string
}

// WorkerArgs renders desc as worker subcommand arguments.
func WorkerArgs(desc joytransfer.Descriptor) []string {
	args := []string{
		"worker",
		"--id", desc.ID,
		"--ordinal", strconv.Itoa(desc.Ordinal),
		"--peer", desc.PeerAddr,
	}
	if desc.AutoGreet {
		args = append(args, "--auto")
	}
	return args
}

func (e *ExecSpawner) Spawn(ctx context.Context, desc joytransfer.Descriptor) (Process, error) {
	path := e.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "can't find own executable")
		}
		path = exe
	}

	// the kill is explicit, the process must outlive ctx deadlines
	cmd := exec.Command(path, append(WorkerArgs(desc), e.Args...)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "can't create worker stdin")
	}
	// not StdoutPipe: Wait would close it before the last message is read
	r, w, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, errors.Wrap(err, "can't create worker stdout")
	}
	cmd.Stdout = w

	if err := cmd.Start(); err != nil {
		stdin.Close()
		r.Close()
		w.Close()
		return nil, errors.Wrapf(err, "can't start %s", path)
	}
	w.Close()

	return &execProcess{
		cmd: cmd,
		mb:  mailbox.NewSupervisorEnd(closeOnEOF{r}, stdin),
	}, nil
}

type execProcess struct {
	cmd *exec.Cmd
	mb  *mailbox.SupervisorEnd
}

func (p *execProcess) Mailbox() *mailbox.SupervisorEnd { return p.mb }

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if err == os.ErrProcessDone {
		return nil
	}
	return err
}

// closeOnEOF releases the read end of the stdout pipe once drained.
type closeOnEOF struct {
	f *os.File
}

func (c closeOnEOF) Read(p []byte) (int, error) {
	n, err := c.f.Read(p)
	if err == io.EOF {
		c.f.Close()
	}
	return n, err
}
