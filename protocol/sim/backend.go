// Package sim is a protocol backend that keeps the console on the other side
// of a simulated link. It renders real input reports, which makes it useful
// for dry runs and tests.
package sim

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

// DefaultPeerAddr is the console address used when none is known.
const DefaultPeerAddr = "7C:BB:8A:5E:2D:01"

func init() {
	protocol.Register("sim", New())
}

// Backend implements protocol.Backend.
type Backend struct {
	// PeerAddr is reported on pairing runs and for the auto sentinel.
	PeerAddr string
	// ConnectDelay is how long CreateHIDServer waits for the peer.
	ConnectDelay time.Duration

	mu         sync.Mutex
	transports []*Transport
}

func New() *Backend {
	return &Backend{PeerAddr: DefaultPeerAddr}
}

func (b *Backend) NewFactory(c protocol.ControllerType, reconnectAddr string) protocol.Factory {
	return func() protocol.Protocol {
		p := &controllerProtocol{
			ctrl:      c,
			reconnect: reconnectAddr,
			log:       joytransfer.GetLogger().ChildLogger(map[string]interface{}{"backend": "sim"}),
		}
		p.state = newControllerState(p)
		return p
	}
}

func (b *Backend) CreateHIDServer(ctx context.Context, f protocol.Factory, opts ...protocol.ServerOption) (protocol.Transport, protocol.Protocol, joytransfer.Addr, error) {
	cfg := protocol.NewServerConfig(opts...)

	p, ok := f().(*controllerProtocol)
	if !ok {
		return nil, nil, nil, errors.New("sim: factory did not build a sim protocol")
	}

	peer := b.PeerAddr
	if cfg.ReconnectAddr != "" && !strings.EqualFold(cfg.ReconnectAddr, joytransfer.AutoAddr) {
		peer = cfg.ReconnectAddr
	}
	addr, err := joytransfer.ParseAddr(peer)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "sim: bad peer address")
	}

	p.log.Infof("hid server on psm %d/%d, unpair=%v", cfg.ControlPSM, cfg.InterruptPSM, cfg.Unpair)

	if b.ConnectDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, nil, ctx.Err()
		case <-time.After(b.ConnectDelay):
		}
	}

	t := newTransport(addr, p.log)
	p.transport = t

	b.mu.Lock()
	b.transports = append(b.transports, t)
	b.mu.Unlock()

	p.log.Infof("connected to %s", addr)
	return t, p, addr, nil
}

// Transports returns every transport created so far, oldest first.
func (b *Backend) Transports() []*Transport {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Transport, len(b.transports))
	copy(out, b.transports)
	return out
}

type controllerProtocol struct {
	ctrl      protocol.ControllerType
	reconnect string
	log       joytransfer.Logger
	state     *controllerState
	transport *Transport

	mu     sync.Mutex
	paused bool
}

func (p *controllerProtocol) ControllerState() protocol.ControllerState {
	return p.state
}

func (p *controllerProtocol) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	p.log.Info("input reports paused")
}

func (p *controllerProtocol) Unpause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	p.log.Info("input reports resumed")
}

func (p *controllerProtocol) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Debug understands:
//
//	state        print the current input report and nfc content
//	disconnect   drop the link as if the console went away
func (p *controllerProtocol) Debug(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("debug: missing command")
	}
	switch strings.ToLower(args[0]) {
	case "state":
		p.state.mu.Lock()
		report := p.state.report()
		tag := p.state.tag
		p.state.mu.Unlock()
		p.log.Infof("controller %s paused=%v", p.ctrl, p.Paused())
		p.log.Infof("report %s", hex.EncodeToString(report))
		if tag != nil {
			p.log.Infof("nfc %s", tag)
		}
		return nil
	case "disconnect":
		if p.transport == nil {
			return errors.New("debug: not connected")
		}
		p.transport.Drop()
		return nil
	default:
		return errors.Errorf("debug: unknown command %q", args[0])
	}
}
