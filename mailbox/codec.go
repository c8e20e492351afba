package mailbox

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Encoder writes messages as JSON lines. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, "can't encode %s", m)
	}
	b = append(b, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(b); err != nil {
		return errors.Wrapf(err, "can't send %s", m)
	}
	return nil
}

// MaxLine is the longest message line the pump accepts. Longer lines are
// dropped and reading goes on.
const MaxLine = 64 * 1024

// pump decodes r into a channel until EOF or the first bad line. The
// channel is closed when decoding stops; err is valid only after that.
type pump struct {
	c   chan Message
	err error
}

func newPump(r io.Reader) *pump {
	p := &pump{c: make(chan Message, 16)}
	go p.loop(bufio.NewReader(r))
	return p
}

func (p *pump) loop(br *bufio.Reader) {
	defer close(p.c)

	for {
		line, long, err := readLine(br)
		switch {
		case long:
			joytransfer.GetLogger().Debugf("mailbox: dropping line longer than %d bytes", MaxLine)
		case len(bytes.TrimSpace(line)) > 0:
			var m Message
			if err := json.Unmarshal(line, &m); err != nil {
				p.err = errors.Wrapf(err, "mailbox decode %q", line)
				return
			}
			p.c <- m
		}

		if err == io.EOF {
			return
		}
		if err != nil {
			p.err = errors.Wrap(err, "mailbox read")
			return
		}
	}
}

// readLine returns the next line without its newline. long is set when the
// line exceeded MaxLine; its bytes are consumed but not returned.
func readLine(br *bufio.Reader) (line []byte, long bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !long {
			if len(line)+len(chunk) > MaxLine+1 {
				long, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return bytes.TrimSuffix(line, []byte{'\n'}), long, err
	}
}
