// Package worker runs one controller session: it brings up the HID server,
// greets the console on a pairing run and then routes operator commands
// until the supervisor goes away.
package worker

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/mailbox"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/pulse"
	"github.com/f-ready/joytransfer-with-nfc/router"
)

var (
	// DefaultAutoButton is pressed on the grip menu when --auto is set.
	DefaultAutoButton = "a"
	// DefaultGreetButtons complete a manual greeting.
	DefaultGreetButtons = []string{"a", "b", "home"}
)

type Session struct {
	desc    joytransfer.Descriptor
	backend protocol.Backend
	ctrl    protocol.ControllerType
	end     *mailbox.WorkerEnd
	log     joytransfer.Logger

	timing       joytransfer.Timing
	autoButton   string
	greetButtons []string
	resolve      joytransfer.AddrResolver
}

// New builds the session described by desc. Nothing is started until Run.
func New(desc joytransfer.Descriptor, b protocol.Backend, c protocol.ControllerType, end *mailbox.WorkerEnd, opts ...joytransfer.Option) (*Session, error) {
	if b == nil || end == nil {
		return nil, errors.New("worker: backend and mailbox are required")
	}
	s := &Session{
		desc:         desc,
		backend:      b,
		ctrl:         c,
		end:          end,
		timing:       joytransfer.DefaultTiming(),
		autoButton:   DefaultAutoButton,
		greetButtons: DefaultGreetButtons,
	}
	s.log = joytransfer.GetLogger().ChildLogger(s.tags())

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "worker option")
		}
	}
	return s, nil
}

func (s *Session) tags() map[string]interface{} {
	return map[string]interface{}{"session": s.desc.ID, "ordinal": s.desc.Ordinal}
}

// Descriptor returns what the session was built from.
func (s *Session) Descriptor() joytransfer.Descriptor {
	return s.desc
}

// Serve runs the session and turns any error or panic into a failed
// message, so the supervisor can tell a dropped peer from a kill.
func (s *Session) Serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		s.log.Errorf("session failed: %v", err)
		if ferr := s.end.SendFailed(err.Error()); ferr != nil {
			s.log.Warnf("can't report failure: %v", ferr)
		}
	}()

	return s.Run(ctx)
}

// Run goes through the session states. A pairing run returns once the
// console is greeted and unlock is sent; a reconnect run returns when the
// command stream ends.
func (s *Session) Run(ctx context.Context) error {
	pairing := s.desc.Pairing()
	peer := s.peerAddr(ctx)

	s.log.Info("Waiting for Switch to connect...")
	if pairing {
		s.log.Info(`Please open the "Change Grip/Order" menu`)
	}

	factory := s.backend.NewFactory(s.ctrl, peer)
	opts := []protocol.ServerOption{
		protocol.OptPSM(protocol.ControlPSM, protocol.InterruptPSM),
		protocol.OptUnpair(peer == ""),
	}
	if peer != "" {
		opts = append(opts, protocol.OptReconnect(peer))
	}

	transport, proto, addr, err := s.backend.CreateHIDServer(ctx, factory, opts...)
	if err != nil {
		return errors.Wrap(err, "can't create hid server")
	}
	defer transport.Close()

	state := proto.ControllerState()
	if err := state.Connect(ctx); err != nil {
		return errors.Wrap(err, "can't connect controller state")
	}

	engine := pulse.New(s.timing)
	rt := router.New(proto, engine, s.log)

	if pairing {
		if err := s.end.SendAddress(addr.String()); err != nil {
			return err
		}
		s.log.Infof("NINTENDO SWITCH %s", addr)
		if err := s.greet(ctx, rt, engine, state); err != nil {
			return err
		}
	}

	if err := s.end.SendUnlock(); err != nil {
		return err
	}
	s.log.Info("hi :3")

	if pairing {
		// free the radio for the reconnect run
		return nil
	}
	return s.loop(ctx, rt)
}

// peerAddr resolves the auto sentinel. A failed lookup leaves it to the
// backend.
func (s *Session) peerAddr(ctx context.Context) string {
	peer := s.desc.PeerAddr
	if !strings.EqualFold(peer, joytransfer.AutoAddr) || s.resolve == nil {
		return peer
	}
	a, err := s.resolve(ctx)
	if err != nil {
		s.log.Warnf("can't resolve %s peer, leaving it to the backend: %v", peer, err)
		return peer
	}
	s.log.Infof("resolved %s peer to %s", peer, a)
	return a
}

func (s *Session) greet(ctx context.Context, rt *router.Router, engine *pulse.Engine, state protocol.ControllerState) error {
	if s.desc.AutoGreet {
		out, err := engine.Press(ctx, state, s.autoButton)
		if err != nil {
			return errors.Wrap(err, "auto greeting")
		}
		if out == pulse.Sent {
			return nil
		}
		s.log.Warnf("auto greeting button %q %s, waiting for the operator", s.autoButton, out)
	}

	names := make([]string, len(s.greetButtons))
	for i, b := range s.greetButtons {
		names[i] = strings.ToUpper(b)
	}
	s.log.Infof("Press the button %s", strings.Join(names, " or "))

	greeted := make(chan struct{})
	var once sync.Once
	rt.OnPress(func(button string, out pulse.Outcome) {
		if out == pulse.Sent && s.isGreetButton(button) {
			once.Do(func() { close(greeted) })
		}
	})
	defer rt.OnPress(nil)

	for {
		line, err := s.end.RecvCommand(ctx)
		if err != nil {
			return errors.Wrap(err, "waiting for greeting")
		}
		if err := rt.Route(ctx, line); err != nil {
			return err
		}
		select {
		case <-greeted:
			return nil
		default:
		}
	}
}

func (s *Session) isGreetButton(button string) bool {
	for _, b := range s.greetButtons {
		if b == button {
			return true
		}
	}
	return false
}

func (s *Session) loop(ctx context.Context, rt *router.Router) error {
	for {
		line, err := s.end.RecvCommand(ctx)
		if err == io.EOF {
			s.log.Debug("command stream closed")
			return nil
		}
		if err != nil {
			return err
		}
		if err := rt.Route(ctx, line); err != nil {
			return err
		}
	}
}
