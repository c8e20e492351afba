// Package socket talks to the kernel HCI layer to find the local bluetooth
// adapters.
package socket

import (
	"bytes"
	"fmt"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
)

// hci_dev_info flag bits
const (
	hciUp      = 0
	hciRunning = 2
	hciPScan   = 3
	hciISCan   = 4
)

// devInfo mirrors struct hci_dev_info.
type devInfo struct {
	id         uint16
	name       [8]byte
	bdaddr     [6]byte
	flags      uint32
	typ        uint8
	features   [8]uint8
	pktType    uint32
	linkPolicy uint32
	linkMode   uint32
	aclMtu     uint16
	aclPkts    uint16
	scoMtu     uint16
	scoPkts    uint16
	stats      [10]uint32
}

// Adapter is one local HCI device.
type Adapter struct {
	ID          int
	Name        string
	Addr        joytransfer.Addr
	Up          bool
	Running     bool
	Connectable bool
}

func (di *devInfo) adapter() Adapter {
	name := di.name[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	if len(name) == 0 {
		name = []byte(fmt.Sprintf("hci%d", di.id))
	}

	// bdaddr_t is stored least significant byte first
	b := di.bdaddr
	addr := fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[5], b[4], b[3], b[2], b[1], b[0])

	return Adapter{
		ID:          int(di.id),
		Name:        string(name),
		Addr:        joytransfer.NewAddr(addr),
		Up:          di.flags&(1<<hciUp) != 0,
		Running:     di.flags&(1<<hciRunning) != 0,
		Connectable: di.flags&(1<<hciPScan) != 0,
	}
}

func (a Adapter) String() string {
	state := "down"
	if a.Up {
		state = "up"
	}
	if a.Up && a.Running {
		state = "up running"
	}
	if a.Connectable {
		state += " pscan"
	}
	return fmt.Sprintf("%s %s %s", a.Name, a.Addr, state)
}
