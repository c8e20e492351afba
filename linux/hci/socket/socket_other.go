//go:build !linux
// +build !linux

package socket

import "github.com/pkg/errors"

// List is only implemented on linux.
func List() ([]Adapter, error) {
	return nil, errors.New("hci sockets are not supported on this platform")
}
