package sim

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

type buttonBit struct {
	index int
	mask  byte
}

// | Byte       | x01 | x02 | x04    | x08    | x10 | x20    | x40 | x80         |
// |:----------:|:---:|:---:|:------:|:------:|:---:|:------:|:---:|:-----------:|
// | 0 (Right)  | Y   | X   | B      | A      | SR  | SL     | R   | ZR          |
// | 1 (Shared) | -   | +   | R Stick| L Stick| Home| Capture| --  |Charging Grip|
// | 2 (Left)   | Down| Up  | Right  | Left   | SR  | SL     | L   | ZL          |
var (
	rightButtons = map[string]buttonBit{
		"y":  {0, 0x01},
		"x":  {0, 0x02},
		"b":  {0, 0x04},
		"a":  {0, 0x08},
		"r":  {0, 0x40},
		"zr": {0, 0x80},
	}
	sharedButtons = map[string]buttonBit{
		"minus":   {1, 0x01},
		"plus":    {1, 0x02},
		"r_stick": {1, 0x04},
		"l_stick": {1, 0x08},
		"home":    {1, 0x10},
		"capture": {1, 0x20},
	}
	leftButtons = map[string]buttonBit{
		"down":  {2, 0x01},
		"up":    {2, 0x02},
		"right": {2, 0x04},
		"left":  {2, 0x08},
		"l":     {2, 0x40},
		"zl":    {2, 0x80},
	}
)

func layoutFor(c protocol.ControllerType) map[string]buttonBit {
	m := map[string]buttonBit{}
	switch c {
	case protocol.JoyConL:
		for k, v := range leftButtons {
			m[k] = v
		}
		m["sr"] = buttonBit{2, 0x10}
		m["sl"] = buttonBit{2, 0x20}
		m["minus"] = sharedButtons["minus"]
		m["l_stick"] = sharedButtons["l_stick"]
		m["capture"] = sharedButtons["capture"]
	case protocol.JoyConR:
		for k, v := range rightButtons {
			m[k] = v
		}
		m["sr"] = buttonBit{0, 0x10}
		m["sl"] = buttonBit{0, 0x20}
		m["plus"] = sharedButtons["plus"]
		m["r_stick"] = sharedButtons["r_stick"]
		m["home"] = sharedButtons["home"]
	default:
		for _, src := range []map[string]buttonBit{rightButtons, sharedButtons, leftButtons} {
			for k, v := range src {
				m[k] = v
			}
		}
	}
	return m
}

type buttonState struct {
	mu     sync.Mutex
	layout map[string]buttonBit
	data   [3]byte
}

func newButtonState(c protocol.ControllerType) *buttonState {
	return &buttonState{layout: layoutFor(c)}
}

func (b *buttonState) Available() []string {
	out := make([]string, 0, len(b.layout))
	for k := range b.layout {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (b *buttonState) IsAvailable(name string) bool {
	_, ok := b.layout[name]
	return ok
}

func (b *buttonState) Set(name string, pushed bool) error {
	bit, ok := b.layout[name]
	if !ok {
		return errors.Errorf("button %q not available", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if pushed {
		b.data[bit.index] |= bit.mask
	} else {
		b.data[bit.index] &^= bit.mask
	}
	return nil
}

func (b *buttonState) Get(name string) bool {
	bit, ok := b.layout[name]
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data[bit.index]&bit.mask != 0
}

func (b *buttonState) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = [3]byte{}
}

func (b *buttonState) bytes() [3]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}
