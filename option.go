package joytransfer

import "context"

// AddrResolver turns the AutoAddr sentinel into a concrete peer address.
type AddrResolver func(ctx context.Context) (string, error)

// SessionOption is an interface which the worker session implements to allow
// using configuration options
type SessionOption interface {
	SetTiming(Timing) error
	SetGreetButtons(auto string, manual []string) error
	SetAddrResolver(AddrResolver) error
	SetLogger(Logger) error
}

// An Option is a configuration function, which configures the session.
type Option func(SessionOption) error

// OptTiming overrides the pulse delays. Values below the minimums are raised.
func OptTiming(t Timing) Option {
	return func(opt SessionOption) error {
		return opt.SetTiming(t.Clamp())
	}
}

// OptGreetButtons sets the button pressed by --auto and the buttons that
// complete a manual greeting.
func OptGreetButtons(auto string, manual ...string) Option {
	return func(opt SessionOption) error {
		return opt.SetGreetButtons(auto, manual)
	}
}

// OptAddrResolver sets how the "auto" reconnect address is resolved.
func OptAddrResolver(r AddrResolver) Option {
	return func(opt SessionOption) error {
		return opt.SetAddrResolver(r)
	}
}

// OptLogger replaces the session logger.
func OptLogger(l Logger) Option {
	return func(opt SessionOption) error {
		return opt.SetLogger(l)
	}
}
