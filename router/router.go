// Package router dispatches console lines to the controller.
package router

import (
	"context"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/pulse"
)

// Command is one parsed console line.
type Command struct {
	Verb string
	Args []string
}

// Parse splits line with shell quoting. ok is false for a no-op tick.
func Parse(line string) (cmd Command, ok bool, err error) {
	if strings.TrimSpace(line) == "" {
		return Command{}, false, nil
	}
	tokens, err := shellquote.Split(line)
	if err != nil {
		return Command{}, false, errors.Wrapf(err, "can't parse %q", line)
	}
	if len(tokens) == 0 || tokens[0] == "" {
		return Command{}, false, nil
	}
	return Command{Verb: tokens[0], Args: tokens[1:]}, true, nil
}

// PressFunc observes every button press the router issues.
type PressFunc func(button string, outcome pulse.Outcome)

type Router struct {
	proto  protocol.Protocol
	state  protocol.ControllerState
	engine *pulse.Engine
	log    joytransfer.Logger

	onPress PressFunc
	loadTag func(path string) (*nfc.Tag, error)
}

func New(p protocol.Protocol, e *pulse.Engine, log joytransfer.Logger) *Router {
	return &Router{
		proto:   p,
		state:   p.ControllerState(),
		engine:  e,
		log:     log,
		loadTag: nfc.LoadAmiibo,
	}
}

// OnPress registers f to be called after each button pulse.
func (r *Router) OnPress(f PressFunc) {
	r.onPress = f
}

// Route dispatches one line. Errors of a single command are reported and
// dropped; only a lost peer or a cancelled context is returned.
func (r *Router) Route(ctx context.Context, line string) error {
	cmd, ok, err := Parse(line)
	if err != nil {
		r.log.Debugf("ignoring malformed command: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	r.log.Infof("%q", append([]string{cmd.Verb}, cmd.Args...))

	err = r.dispatch(ctx, cmd)
	switch errors.Cause(err) {
	case nil:
		return nil
	case protocol.ErrDisconnected, context.Canceled, context.DeadlineExceeded:
		return err
	default:
		r.log.Error(err)
		return nil
	}
}

func (r *Router) dispatch(ctx context.Context, cmd Command) error {
	switch strings.ToLower(cmd.Verb) {
	case "pause":
		r.proto.Pause()
		return nil
	case "unpause":
		r.proto.Unpause()
		return nil
	}

	if len(cmd.Args) > 0 {
		switch strings.ToLower(cmd.Verb) {
		case "debug":
			r.log.Info("custom command detected")
			return r.debug(ctx, cmd.Args)
		case "nfc":
			r.log.Info("custom command detected")
			r.log.Info("nfc command detected")
			err := r.nfc(cmd.Args)
			r.log.Info("nfc command end")
			return err
		}
	}

	return r.press(ctx, cmd.Verb)
}

func (r *Router) press(ctx context.Context, button string) error {
	out, err := r.engine.Press(ctx, r.state, button)
	if err != nil {
		return err
	}
	if out == pulse.NotAvailable {
		r.log.Debugf("button %q %s", button, out)
	}
	if r.onPress != nil {
		r.onPress(button, out)
	}
	return nil
}

func (r *Router) debug(ctx context.Context, args []string) error {
	d, ok := r.proto.(protocol.Debugger)
	if !ok {
		return errors.New("debug commands not supported by this protocol")
	}
	return errors.Wrap(d.Debug(ctx, args), "debug")
}

// nfc handles
//
//	nfc <file_name>   set controller state NFC content to file
//	nfc remove        remove NFC content from controller state
func (r *Router) nfc(args []string) error {
	if c := r.state.Controller(); !c.SupportsNFC() {
		return errors.Wrapf(joytransfer.ErrUnsupportedCapability, "NFC content cannot be set for %s", c)
	}

	if args[0] == "remove" {
		r.state.SetNFC(nil)
		r.log.Info("Removed nfc content.")
		return nil
	}

	r.log.Info("attempting to add nfc content")
	tag, err := r.loadTag(args[0])
	if err != nil {
		return err
	}
	r.state.SetNFC(tag)
	r.log.Infof("added nfc content %s", tag)
	return nil
}
