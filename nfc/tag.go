// Package nfc loads amiibo dumps that can be attached to an emulated
// controller as NFC content.
package nfc

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Accepted NTAG215 dump sizes: bare pages, pages plus password/PACK, and the
// extended format carrying the originality signature.
const (
	ntag215Pages     = 532
	ntag215Full      = 540
	ntag215Signature = 572
)

// Tag is an amiibo payload.
type Tag struct {
	Source string
	data   []byte
}

// LoadAmiibo reads an amiibo dump from path.
func LoadAmiibo(path string) (*Tag, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read amiibo file")
	}
	return NewTag(filepath.Base(path), b)
}

// NewTag validates and wraps a raw dump.
func NewTag(source string, b []byte) (*Tag, error) {
	switch len(b) {
	case ntag215Pages, ntag215Full, ntag215Signature:
	default:
		return nil, errors.Errorf("invalid amiibo dump %s: %d bytes", source, len(b))
	}

	data := make([]byte, ntag215Full)
	copy(data, b)
	return &Tag{Source: source, data: data}, nil
}

// UID returns the 7-byte tag uid. Byte 3 of the dump is the BCC0 check byte
// and is skipped.
func (t *Tag) UID() []byte {
	uid := make([]byte, 0, 7)
	uid = append(uid, t.data[0:3]...)
	uid = append(uid, t.data[4:8]...)
	return uid
}

// Data returns a copy of the 540-byte tag memory.
func (t *Tag) Data() []byte {
	out := make([]byte, len(t.data))
	copy(out, t.data)
	return out
}

func (t *Tag) String() string {
	return t.Source + " (uid " + hex.EncodeToString(t.UID()) + ")"
}
