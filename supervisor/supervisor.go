// Package supervisor runs the sessions one after the other: a pairing run
// that learns the console address, then a reconnect run that takes the
// operator's commands.
package supervisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/linux/hci/socket"
	"github.com/f-ready/joytransfer-with-nfc/mailbox"
)

// DefaultExitKeywords end the current session from the console.
var DefaultExitKeywords = []string{"exit", "quit", "q", "bye", "shutdown"}

// ErrSessionAborted means a worker went away before its handshake.
var ErrSessionAborted = errors.New("session aborted before handshake")

type Config struct {
	// ReconnectAddr skips the pairing run. It may be joytransfer.AutoAddr.
	ReconnectAddr string
	AutoGreet     bool
	ExitKeywords  []string
	// Pacing follows every forwarded line, Settle every session.
	Pacing time.Duration
	Settle time.Duration
	Logger joytransfer.Logger
}

type Outcome int

const (
	// Exited means the worker returned on its own.
	Exited Outcome = iota
	// Killed means the operator or the supervisor ended it.
	Killed
	// Failed means the worker reported a fault or exited with an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Exited:
		return "exited"
	case Killed:
		return "killed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is how one session ended.
type Result struct {
	Desc    joytransfer.Descriptor
	Outcome Outcome
	Reason  string
	// Addr is the peer address published by a pairing run.
	Addr string
}

func (r Result) String() string {
	if r.Outcome == Failed {
		return fmt.Sprintf("%s failed(%s)", r.Desc, r.Reason)
	}
	return fmt.Sprintf("%s %s", r.Desc, r.Outcome)
}

type Supervisor struct {
	cfg     Config
	spawner Spawner
	lines   *lineReader
	log     joytransfer.Logger

	euid  func() int
	probe func() ([]socket.Adapter, error)
	newID func() string
}

func New(cfg Config, sp Spawner, con Console) *Supervisor {
	if len(cfg.ExitKeywords) == 0 {
		cfg.ExitKeywords = DefaultExitKeywords
	}
	lg := cfg.Logger
	if lg == nil {
		lg = joytransfer.GetLogger()
	}
	return &Supervisor{
		cfg:     cfg,
		spawner: sp,
		lines:   newLineReader(con),
		log:     lg.ChildLogger(map[string]interface{}{"component": "supervisor"}),
		euid:    unix.Geteuid,
		probe:   socket.List,
		newID:   func() string { return uuid.New().String() },
	}
}

// Run drives all sessions and returns how each ended. It fails before
// spawning anything when not run as root.
func (s *Supervisor) Run(ctx context.Context) ([]Result, error) {
	if s.euid() != 0 {
		return nil, joytransfer.ErrPrivilege
	}
	s.preflight()

	ordinal := joytransfer.OrdinalPairing
	peer := s.cfg.ReconnectAddr
	if peer != "" {
		ordinal = joytransfer.OrdinalReconnect
	}

	var results []Result
	for ; ordinal <= joytransfer.OrdinalReconnect; ordinal++ {
		desc := joytransfer.Descriptor{
			ID:        s.newID(),
			Ordinal:   ordinal,
			PeerAddr:  peer,
			AutoGreet: s.cfg.AutoGreet,
		}

		res, stop, err := s.session(ctx, desc)
		results = append(results, res)
		if err != nil {
			return results, err
		}
		if desc.Pairing() {
			peer = res.Addr
		}

		// wait reconnection
		s.log.Debugf("settling for %s", s.cfg.Settle)
		if err := sleep(ctx, s.cfg.Settle); err != nil {
			return results, err
		}
		if stop {
			break
		}
	}

	s.log.Info("bye")
	return results, nil
}

func (s *Supervisor) preflight() {
	adapters, err := s.probe()
	if err != nil {
		s.log.Warnf("can't list bluetooth adapters: %v", err)
		return
	}
	if len(adapters) == 0 {
		s.log.Warn("no bluetooth adapter found")
		return
	}
	for _, a := range adapters {
		s.log.Infof("adapter %s", a)
	}
}

// session runs one worker to its end. stop is set when the operator closed
// the console and no further phase should start.
func (s *Supervisor) session(ctx context.Context, desc joytransfer.Descriptor) (Result, bool, error) {
	log := s.log.ChildLogger(map[string]interface{}{"session": desc.ID, "ordinal": desc.Ordinal})
	log.Infof("starting %s", desc)

	p, err := s.spawner.Spawn(ctx, desc)
	if err != nil {
		err = errors.Wrapf(err, "can't spawn %s", desc)
		return Result{Desc: desc, Outcome: Failed, Reason: err.Error()}, true, err
	}

	r := &run{
		desc:   desc,
		proc:   p,
		mb:     p.Mailbox(),
		msgs:   p.Mailbox().Messages(),
		exited: make(chan error, 1),
		log:    log,
	}
	go func() { r.exited <- p.Wait() }()

	// the pairing run is done with the handshake once the address is in,
	// unlock follows the greeting
	handshake := func() bool { return r.unlocked }
	if desc.Pairing() {
		handshake = func() bool { return r.addr != "" }
	}

	if err := r.waitFor(ctx, handshake); err != nil {
		return r.result(), true, err
	}
	if !handshake() {
		res := r.result()
		log.Errorf("session ended: %s", res)
		return res, true, errors.Wrapf(ErrSessionAborted, "%s", res)
	}

	stop, err := s.forward(ctx, r)
	res := r.result()
	if res.Outcome == Failed {
		log.Errorf("session ended: %s", res)
	} else {
		log.Infof("session ended: %s", res)
	}
	return res, stop, err
}

// forward hands operator lines to the worker while it lives. A pairing
// worker that has unlocked is on its way out, so lines are left for the
// next session.
func (s *Supervisor) forward(ctx context.Context, r *run) (bool, error) {
	for !r.done {
		var lines <-chan lineResult
		if !r.desc.Pairing() || !r.unlocked {
			lines = s.lines.C()
		}

		select {
		case m, ok := <-r.msgs:
			if !ok {
				r.msgs = nil
				continue
			}
			r.handle(m)

		case err := <-r.exited:
			r.finish(err)

		case res := <-lines:
			s.lines.taken()
			if res.err != nil {
				r.log.Infof("console closed: %v", res.err)
				r.stop()
				return true, nil
			}
			if s.isExitKeyword(res.line) {
				r.stop()
				return false, nil
			}
			if err := r.mb.SendCommand(res.line); err != nil {
				r.log.Warnf("command dropped: %v", err)
			}
			if err := sleep(ctx, s.cfg.Pacing); err != nil {
				r.stop()
				return true, err
			}

		case <-ctx.Done():
			r.stop()
			return true, ctx.Err()
		}
	}
	return false, nil
}

func (s *Supervisor) isExitKeyword(line string) bool {
	line = strings.TrimSpace(line)
	for _, k := range s.cfg.ExitKeywords {
		if line == k {
			return true
		}
	}
	return false
}

// run is the supervisor's view of one live worker. It is only touched from
// the supervisor goroutine.
type run struct {
	desc   joytransfer.Descriptor
	proc   Process
	mb     *mailbox.SupervisorEnd
	msgs   <-chan mailbox.Message
	exited chan error
	log    joytransfer.Logger

	addr     string
	unlocked bool
	reason   string
	killed   bool
	done     bool
	exitErr  error
}

func (r *run) handle(m mailbox.Message) {
	switch m.Kind {
	case mailbox.KindAddress:
		r.addr = m.Addr
		r.log.Infof("NINTENDO SWITCH %s", m.Addr)
	case mailbox.KindUnlock:
		r.unlocked = true
		r.log.Debug("console unlocked")
	case mailbox.KindFailed:
		r.reason = m.Reason
	default:
		r.log.Warnf("unexpected %s from worker", m)
	}
}

func (r *run) waitFor(ctx context.Context, cond func() bool) error {
	for !cond() && !r.done {
		select {
		case m, ok := <-r.msgs:
			if !ok {
				r.msgs = nil
				continue
			}
			r.handle(m)
		case err := <-r.exited:
			r.finish(err)
		case <-ctx.Done():
			r.stop()
			return ctx.Err()
		}
	}
	return nil
}

// finish records the exit and reads whatever the worker wrote before it.
func (r *run) finish(err error) {
	r.exitErr = err
	if r.msgs != nil {
		for m := range r.msgs {
			r.handle(m)
		}
		r.msgs = nil
	}
	if err := r.mb.Err(); err != nil {
		r.log.Warnf("bad message from worker: %v", err)
	}
	r.mb.Close()
	r.done = true
}

// stop kills the worker and joins it.
func (r *run) stop() {
	if r.done {
		return
	}
	r.killed = true
	if err := r.proc.Kill(); err != nil {
		r.log.Warnf("can't kill worker: %v", err)
	}
	r.finish(<-r.exited)
}

func (r *run) result() Result {
	res := Result{Desc: r.desc, Addr: r.addr}
	switch {
	case r.killed:
		res.Outcome = Killed
	case r.reason != "":
		res.Outcome, res.Reason = Failed, r.reason
	case r.exitErr != nil:
		res.Outcome, res.Reason = Failed, r.exitErr.Error()
	case !r.done:
		res.Outcome, res.Reason = Failed, "still running"
	default:
		res.Outcome = Exited
	}
	return res
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
