package mailbox

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
)

// WorkerEnd is the worker side: commands come in, the address, unlock and
// failed messages go out. It rejects anything out of handshake order with
// joytransfer.ErrHandshake.
type WorkerEnd struct {
	enc *Encoder
	in  *pump

	mu          sync.Mutex
	addressSent bool
	unlockSent  bool
	failedSent  bool
}

func NewWorkerEnd(r io.Reader, w io.Writer) *WorkerEnd {
	return &WorkerEnd{enc: NewEncoder(w), in: newPump(r)}
}

// SendAddress publishes the peer address. Allowed once, before unlock.
func (e *WorkerEnd) SendAddress(addr string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.failedSent:
		return errors.Wrap(joytransfer.ErrHandshake, "address after failed")
	case e.unlockSent:
		return errors.Wrap(joytransfer.ErrHandshake, "address after unlock")
	case e.addressSent:
		return errors.Wrap(joytransfer.ErrHandshake, "address sent twice")
	}
	if err := e.enc.Encode(Address(addr)); err != nil {
		return err
	}
	e.addressSent = true
	return nil
}

// SendUnlock signals readiness. Allowed exactly once.
func (e *WorkerEnd) SendUnlock() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.failedSent:
		return errors.Wrap(joytransfer.ErrHandshake, "unlock after failed")
	case e.unlockSent:
		return errors.Wrap(joytransfer.ErrHandshake, "unlock sent twice")
	}
	if err := e.enc.Encode(Unlock()); err != nil {
		return err
	}
	e.unlockSent = true
	return nil
}

// SendFailed is terminal: nothing can be sent after it.
func (e *WorkerEnd) SendFailed(reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failedSent {
		return errors.Wrap(joytransfer.ErrHandshake, "failed sent twice")
	}
	e.failedSent = true
	return e.enc.Encode(Failed(reason))
}

// Unlocked reports whether unlock went out.
func (e *WorkerEnd) Unlocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unlockSent
}

// RecvCommand blocks for the next operator line. It returns io.EOF once the
// supervisor closed its side.
func (e *WorkerEnd) RecvCommand(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case m, ok := <-e.in.c:
		if !ok {
			if e.in.err != nil {
				return "", e.in.err
			}
			return "", io.EOF
		}
		if m.Kind != KindCommand {
			return "", errors.Wrapf(joytransfer.ErrHandshake, "unexpected %s from supervisor", m)
		}
		return m.Line, nil
	}
}

// SupervisorEnd is the supervisor side of one worker.
type SupervisorEnd struct {
	enc *Encoder
	w   io.Writer
	in  *pump
}

// NewSupervisorEnd reads the worker's messages from r and writes commands
// to w.
func NewSupervisorEnd(r io.Reader, w io.Writer) *SupervisorEnd {
	return &SupervisorEnd{enc: NewEncoder(w), w: w, in: newPump(r)}
}

func (e *SupervisorEnd) SendCommand(line string) error {
	return e.enc.Encode(Command(line))
}

// Messages yields everything the worker sends. It is closed when the worker
// closes its output.
func (e *SupervisorEnd) Messages() <-chan Message {
	return e.in.c
}

// Err returns the decode error that closed Messages, if any.
func (e *SupervisorEnd) Err() error {
	return e.in.err
}

// Close closes the command stream so the worker reads EOF.
func (e *SupervisorEnd) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
