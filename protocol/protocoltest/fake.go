// Package protocoltest provides recording fakes of the protocol interfaces.
package protocoltest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/f-ready/joytransfer-with-nfc/nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

// Event is one call observed by State.
type Event struct {
	Kind    string // "clear" or "send"
	At      time.Time
	Pressed []string
}

// State is a ControllerState that records every clear and flush.
type State struct {
	Type protocol.ControllerType
	// SendErr is returned by Send when set.
	SendErr error

	mu        sync.Mutex
	available map[string]bool
	pressed   map[string]bool
	events    []Event
	tag       *nfc.Tag
	connected bool
}

// NewState returns a state offering the given buttons.
func NewState(c protocol.ControllerType, buttons ...string) *State {
	s := &State{
		Type:      c,
		available: map[string]bool{},
		pressed:   map[string]bool{},
	}
	for _, b := range buttons {
		s.available[b] = true
	}
	return s
}

func (s *State) Controller() protocol.ControllerType { return s.Type }

func (s *State) Buttons() protocol.ButtonState { return (*buttons)(s) }

func (s *State) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *State) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *State) Send(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.events = append(s.events, Event{Kind: "send", At: time.Now(), Pressed: s.pressedLocked()})
	return nil
}

func (s *State) NFC() *nfc.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

func (s *State) SetNFC(tag *nfc.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tag
}

// Events returns everything recorded so far.
func (s *State) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Sends returns only the flushes.
func (s *State) Sends() []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Kind == "send" {
			out = append(out, e)
		}
	}
	return out
}

func (s *State) pressedLocked() []string {
	var out []string
	for b, p := range s.pressed {
		if p {
			out = append(out, b)
		}
	}
	sort.Strings(out)
	return out
}

type buttons State

func (b *buttons) Available() []string {
	var out []string
	for k := range b.available {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (b *buttons) IsAvailable(name string) bool {
	return b.available[name]
}

func (b *buttons) Set(name string, pushed bool) error {
	if !b.available[name] {
		return errors.Errorf("button %q not available", name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed[name] = pushed
	return nil
}

func (b *buttons) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = map[string]bool{}
	b.events = append(b.events, Event{Kind: "clear", At: time.Now()})
}

// Protocol wraps a State and records pause and debug calls.
type Protocol struct {
	State *State

	mu        sync.Mutex
	Paused    bool
	Pauses    int
	Unpauses  int
	DebugArgs [][]string
	DebugErr  error
}

func NewProtocol(s *State) *Protocol {
	return &Protocol{State: s}
}

func (p *Protocol) ControllerState() protocol.ControllerState { return p.State }

func (p *Protocol) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Paused = true
	p.Pauses++
}

func (p *Protocol) Unpause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Paused = false
	p.Unpauses++
}

func (p *Protocol) Debug(ctx context.Context, args []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DebugArgs = append(p.DebugArgs, args)
	return p.DebugErr
}
