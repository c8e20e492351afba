package sim

import (
	"encoding/hex"
	"sync"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

// Transport stands in for the interrupt channel. Every input report is kept
// so the peer side can be inspected.
type Transport struct {
	peer joytransfer.Addr
	log  joytransfer.Logger

	mu      sync.Mutex
	reports [][]byte
	dropped bool
	closed  bool
}

func newTransport(peer joytransfer.Addr, log joytransfer.Logger) *Transport {
	return &Transport{peer: peer, log: log}
}

// Peer returns the connected console address.
func (t *Transport) Peer() joytransfer.Addr {
	return t.peer
}

func (t *Transport) write(report []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dropped || t.closed {
		return protocol.ErrDisconnected
	}
	p := make([]byte, len(report))
	copy(p, report)
	t.reports = append(t.reports, p)
	t.log.Debugf("itr > %s", hex.EncodeToString(p))
	return nil
}

// Reports returns a copy of the input reports written so far.
func (t *Transport) Reports() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.reports))
	copy(out, t.reports)
	return out
}

// Drop simulates the console going away.
func (t *Transport) Drop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dropped {
		t.log.Warnf("peer %s dropped the link", t.peer)
	}
	t.dropped = true
}

func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.log.Debugf("closing transport to %s", t.peer)
	}
	t.closed = true
	return nil
}
