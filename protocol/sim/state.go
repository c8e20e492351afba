package sim

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

const (
	reportLen         = 50
	reportStandard    = 0x30
	connInfoFullProCn = 0x8e // battery full, pro controller, powered by switch
	vibratorAck       = 0x80
)

// controllerState renders a 0x30 standard input report on every Send.
type controllerState struct {
	ctrl    protocol.ControllerType
	buttons *buttonState
	proto   *controllerProtocol
	log     joytransfer.Logger

	mu        sync.Mutex
	connected bool
	timer     byte
	tag       *nfc.Tag
}

func newControllerState(p *controllerProtocol) *controllerState {
	return &controllerState{
		ctrl:    p.ctrl,
		buttons: newButtonState(p.ctrl),
		proto:   p,
		log:     p.log,
	}
}

func (s *controllerState) Controller() protocol.ControllerType {
	return s.ctrl
}

func (s *controllerState) Buttons() protocol.ButtonState {
	return s.buttons
}

func (s *controllerState) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	s.log.Debug("controller state connected")
	return nil
}

func (s *controllerState) Send(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return errors.New("controller state not connected")
	}
	s.timer++
	report := s.report()
	s.mu.Unlock()

	if s.proto.Paused() {
		s.log.Debug("paused, input report held back")
		return nil
	}
	return s.proto.transport.write(report)
}

func (s *controllerState) report() []byte {
	r := make([]byte, reportLen)
	r[0] = 0xa1
	r[1] = reportStandard
	r[2] = s.timer
	r[3] = connInfoFullProCn
	b := s.buttons.bytes()
	copy(r[4:7], b[:])
	copy(r[7:10], neutralStick)
	copy(r[10:13], neutralStick)
	r[13] = vibratorAck
	return r
}

// 12-bit horizontal and vertical axes centred at 0x800.
var neutralStick = []byte{0x00, 0x08, 0x80}

func (s *controllerState) NFC() *nfc.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

func (s *controllerState) SetNFC(tag *nfc.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tag
}
