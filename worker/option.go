package worker

import (
	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
)

// SetTiming overrides the pulse delays.
func (s *Session) SetTiming(t joytransfer.Timing) error {
	s.timing = t.Clamp()
	return nil
}

// SetGreetButtons sets the --auto button and the buttons that complete a
// manual greeting.
func (s *Session) SetGreetButtons(auto string, manual []string) error {
	if auto == "" && len(manual) == 0 {
		return errors.New("no greeting button")
	}
	if auto != "" {
		s.autoButton = auto
	}
	if len(manual) > 0 {
		s.greetButtons = append([]string(nil), manual...)
	}
	return nil
}

// SetAddrResolver sets how the auto reconnect address is looked up.
func (s *Session) SetAddrResolver(r joytransfer.AddrResolver) error {
	s.resolve = r
	return nil
}

// SetLogger replaces the session logger. Session tags are kept.
func (s *Session) SetLogger(l joytransfer.Logger) error {
	if l == nil {
		return errors.New("nil logger")
	}
	s.log = l.ChildLogger(s.tags())
	return nil
}
