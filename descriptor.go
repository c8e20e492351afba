package joytransfer

import "fmt"

const (
	// OrdinalPairing is the first session: it pairs and learns the peer address.
	OrdinalPairing = 0
	// OrdinalReconnect resumes the link using a known peer address.
	OrdinalReconnect = 1
)

// Descriptor describes one Worker Session. It is built by the supervisor
// before each spawn and never modified afterwards.
type Descriptor struct {
	ID        string
	Ordinal   int
	PeerAddr  string
	AutoGreet bool
}

// Pairing reports whether the session has to publish the peer address and
// wait for the greeting.
func (d Descriptor) Pairing() bool {
	return d.Ordinal == OrdinalPairing
}

func (d Descriptor) String() string {
	kind := "reconnect"
	if d.Pairing() {
		kind = "pairing"
	}
	if d.PeerAddr == "" {
		return fmt.Sprintf("%s#%d(%s)", kind, d.Ordinal, d.ID)
	}
	return fmt.Sprintf("%s#%d(%s, peer %s)", kind, d.Ordinal, d.ID, d.PeerAddr)
}
