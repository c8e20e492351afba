// Package mailbox is the channel between the supervisor and a worker
// process. Messages travel as one JSON object per line.
package mailbox

import "fmt"

type Kind string

const (
	// KindAddress carries the peer address learned on a pairing run.
	KindAddress Kind = "address"
	// KindUnlock tells the supervisor the console may be handed over.
	KindUnlock Kind = "unlock"
	// KindCommand is one operator line. An empty line is a no-op tick.
	KindCommand Kind = "command"
	// KindFailed is the last thing a worker says before exiting on a fault.
	KindFailed Kind = "failed"
)

type Message struct {
	Kind   Kind   `json:"kind"`
	Addr   string `json:"addr,omitempty"`
	Line   string `json:"line,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func Address(addr string) Message { return Message{Kind: KindAddress, Addr: addr} }
func Unlock() Message { return Message{Kind: KindUnlock} }
func Command(line string) Message { return Message{Kind: KindCommand, Line: line} }
func Failed(reason string) Message { return Message{Kind: KindFailed, Reason: reason} }

func (m Message) String() string {
	switch m.Kind {
	case KindAddress:
		return fmt.Sprintf("address(%s)", m.Addr)
	case KindCommand:
		return fmt.Sprintf("command(%q)", m.Line)
	case KindFailed:
		return fmt.Sprintf("failed(%s)", m.Reason)
	default:
		return string(m.Kind)
	}
}
