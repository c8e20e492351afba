// Package protocol is the contract with the controller-protocol library that
// speaks the HID wire protocol to the console. joytransfer only drives it.
package protocol

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/nfc"
)

// ErrDisconnected is returned by Send once the link to the peer is gone.
var ErrDisconnected = errors.New("peer disconnected")

// Well-known L2CAP PSMs of the HID control and interrupt channels.
const (
	ControlPSM   = 17
	InterruptPSM = 19
)

type ControllerType int

const (
	ProController ControllerType = iota
	JoyConL
	JoyConR
)

var controllerNames = map[ControllerType]string{
	ProController: "PRO_CONTROLLER",
	JoyConL:       "JOYCON_L",
	JoyConR:       "JOYCON_R",
}

func (c ControllerType) String() string {
	if s, ok := controllerNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// SupportsNFC reports whether NFC content can be attached. The left Joy-Con
// has no NFC reader.
func (c ControllerType) SupportsNFC() bool {
	return c != JoyConL
}

func ParseControllerType(s string) (ControllerType, error) {
	for c, name := range controllerNames {
		if strings.EqualFold(s, name) {
			return c, nil
		}
	}
	return 0, errors.Errorf("unknown controller type %q", s)
}

// ButtonState is the pressed/released state of every button.
type ButtonState interface {
	Available() []string
	IsAvailable(name string) bool
	Set(name string, pushed bool) error
	Clear()
}

// ControllerState is owned by the protocol; callers mutate it and flush it
// with Send.
type ControllerState interface {
	Controller() ControllerType
	Buttons() ButtonState

	// Connect performs the initial handshake. Send is invalid before it.
	Connect(ctx context.Context) error
	// Send flushes the current state to the wire.
	Send(ctx context.Context) error

	NFC() *nfc.Tag
	SetNFC(tag *nfc.Tag)
}

type Protocol interface {
	ControllerState() ControllerState
	Pause()
	Unpause()
}

// Debugger is implemented by protocols that accept debug commands.
type Debugger interface {
	Debug(ctx context.Context, args []string) error
}

type Transport interface {
	io.Closer
}

// Factory builds a protocol state machine for one connection.
type Factory func() Protocol

// Backend is a controller-protocol implementation.
type Backend interface {
	// NewFactory returns a factory for the given type. reconnectAddr is empty
	// on a pairing run.
	NewFactory(c ControllerType, reconnectAddr string) Factory

	// CreateHIDServer starts the HID server and blocks until the peer
	// connects.
	CreateHIDServer(ctx context.Context, f Factory, opts ...ServerOption) (Transport, Protocol, joytransfer.Addr, error)
}
