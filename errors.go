package joytransfer

import "github.com/pkg/errors"

var (
	// ErrUnsupportedCapability is a configuration error: the emulated
	// controller type cannot do what the command asked for.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrPrivilege means the process lacks the rights to bind raw bluetooth
	// resources.
	ErrPrivilege = errors.New("script must be run as root")

	// ErrHandshake is returned when the worker-side mailbox is used out of
	// order (address after unlock, unlock twice...).
	ErrHandshake = errors.New("mailbox handshake violation")
)

// IsConfigurationError reports whether err only aborts the offending command.
func IsConfigurationError(err error) bool {
	return errors.Cause(err) == ErrUnsupportedCapability
}
