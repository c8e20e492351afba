package supervisor

import (
	"io"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// Prompt is shown before every operator line.
const Prompt = "cmd >> "

// Console is where operator lines come from. Readline returns io.EOF once
// the operator is done.
type Console interface {
	Readline() (string, error)
	Close() error
}

type readlineConsole struct {
	rl *readline.Instance
}

func filterCtrlZ(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// NewConsole opens an interactive console on the terminal.
func NewConsole() (Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		FuncFilterInputRune: filterCtrlZ,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't initialize console")
	}
	return &readlineConsole{rl: rl}, nil
}

// Readline treats ^C on an empty line like EOF and otherwise drops the
// line being typed.
func (c *readlineConsole) Readline() (string, error) {
	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return "", io.EOF
			}
			continue
		}
		return line, err
	}
}

func (c *readlineConsole) Close() error {
	return c.rl.Close()
}

type lineResult struct {
	line string
	err  error
}

// lineReader keeps at most one Readline in flight. A line typed while a
// session winds down is handed to the next session.
type lineReader struct {
	con     Console
	res     chan lineResult
	pending bool
}

func newLineReader(con Console) *lineReader {
	return &lineReader{con: con, res: make(chan lineResult, 1)}
}

// C starts a read if none is pending. Call taken after receiving from it.
func (l *lineReader) C() <-chan lineResult {
	if !l.pending {
		l.pending = true
		go func() {
			line, err := l.con.Readline()
			l.res <- lineResult{line: line, err: err}
		}()
	}
	return l.res
}

func (l *lineReader) taken() {
	l.pending = false
}
