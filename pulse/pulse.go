// Package pulse turns a button name into a timed press/release pair.
package pulse

import (
	"context"
	"time"

	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

// WakeToken clears all buttons and flushes before the link has been idle.
const WakeToken = "wake"

type Outcome int

const (
	// Sent means a press and a release went out.
	Sent Outcome = 0
	// NotAvailable means the controller has no such button; nothing was sent.
	NotAvailable Outcome = 1
)

func (o Outcome) String() string {
	if o == NotAvailable {
		return "not available"
	}
	return "sent"
}

type Engine struct {
	timing joytransfer.Timing
	sleep  func(ctx context.Context, d time.Duration) error
}

// New returns an engine with t clamped to the minimum delays.
func New(t joytransfer.Timing) *Engine {
	return &Engine{timing: t.Clamp(), sleep: sleep}
}

func (e *Engine) Timing() joytransfer.Timing {
	return e.timing
}

// Press pulses button on state.
func (e *Engine) Press(ctx context.Context, state protocol.ControllerState, button string) (Outcome, error) {
	buttons := state.Buttons()

	if button == WakeToken {
		buttons.Clear()
		if err := state.Send(ctx); err != nil {
			return NotAvailable, errors.Wrap(err, "wake flush")
		}
		if err := e.sleep(ctx, e.timing.WakeSettle); err != nil {
			return NotAvailable, err
		}
	}

	if !buttons.IsAvailable(button) {
		return NotAvailable, nil
	}

	if err := buttons.Set(button, true); err != nil {
		return NotAvailable, err
	}
	if err := state.Send(ctx); err != nil {
		return NotAvailable, errors.Wrapf(err, "press %s", button)
	}
	if err := e.sleep(ctx, e.timing.Hold); err != nil {
		return NotAvailable, err
	}

	if err := buttons.Set(button, false); err != nil {
		return NotAvailable, err
	}
	if err := state.Send(ctx); err != nil {
		return NotAvailable, errors.Wrapf(err, "release %s", button)
	}
	if err := e.sleep(ctx, e.timing.Release); err != nil {
		return NotAvailable, err
	}

	return Sent, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
