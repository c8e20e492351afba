package joytransfer

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// AutoAddr asks the reconnect run to detect the paired console itself.
const AutoAddr = "auto"

// Addr represents a Bluetooth device address (BD_ADDR), e.g. the peer console.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from string without validating it.
func NewAddr(s string) Addr {
	return addr(strings.ToUpper(s))
}

// ParseAddr validates a colon separated 6-byte address.
func ParseAddr(s string) (Addr, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return nil, errors.Errorf("invalid bluetooth address %q", s)
	}
	for _, p := range parts {
		if len(p) != 2 {
			return nil, errors.Errorf("invalid bluetooth address %q", s)
		}
		if _, err := hex.DecodeString(p); err != nil {
			return nil, errors.Wrapf(err, "invalid bluetooth address %q", s)
		}
	}
	return NewAddr(s), nil
}

// ValidReconnectAddr reports whether s is usable as -r value.
func ValidReconnectAddr(s string) error {
	if strings.EqualFold(s, AutoAddr) {
		return nil
	}
	_, err := ParseAddr(s)
	return err
}

type addr string

func (a addr) String() string {
	return string(a)
}

func (a addr) Bytes() []byte {
	hexStr := strings.Replace(a.String(), ":", "", -1)

	out, err := hex.DecodeString(hexStr)
	if err != nil {
		GetLogger().Errorf("error decoding address %s: %v", a.String(), err)
	}

	return out
}
