// Package manifest stores a snapshot of one compilation run: the resolved
// alias chains, the alias trail and a digest of the CSS they produced.
//
// Format: MAGIC(4) | VERSION(2) | BODY_LEN(4) | BODY
//
// BODY is the manifest in canonical CBOR, so equal manifests are equal
// bytes.
package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	// Magic is the file magic number "CPMF" (4 bytes)
	Magic = "CPMF"

	// Version is the format version (uint16, little-endian)
	Version uint16 = 0x0001

	maxBodyLen = 16 * 1024 * 1024
)

// ErrDigestMismatch is returned by Verify when CSS does not match the
// manifest.
var ErrDigestMismatch = errors.New("css digest mismatch")

// Manifest is the snapshot of one run.
type Manifest struct {
	Source  string  `cbor:"1,keyasint"`
	Digest  string  `cbor:"2,keyasint"` // "blake2b:<hex>" of the CSS output
	Entries []Entry `cbor:"3,keyasint,omitempty"`
	Trail   []Edge  `cbor:"4,keyasint,omitempty"`
}

// Entry is one resolution cache entry, in insertion order.
type Entry struct {
	Name  string `cbor:"1,keyasint"`
	Next  string `cbor:"2,keyasint,omitempty"` // alias the entry chains to
	Color string `cbor:"3,keyasint"`           // literal fallback
	Index int    `cbor:"4,keyasint"`
}

// Edge is one alias trail edge, in discovery order.
type Edge struct {
	Source     string `cbor:"1,keyasint"`
	Referenced string `cbor:"2,keyasint"`
}

// Digest returns the BLAKE2b-256 digest of css as "blake2b:<hex>".
func Digest(css []byte) string {
	sum := blake2b.Sum256(css)
	return fmt.Sprintf("blake2b:%x", sum)
}

// Verify reports ErrDigestMismatch if css is not the output m describes.
func (m *Manifest) Verify(css []byte) error {
	if got := Digest(css); got != m.Digest {
		return fmt.Errorf("%w: manifest has %s, file has %s", ErrDigestMismatch, m.Digest, got)
	}
	return nil
}

// Chain returns the alias chain starting at name by following Next links,
// e.g. [@a @b @c].
func (m *Manifest) Chain(name string) []string {
	byName := make(map[string]Entry, len(m.Entries))
	for _, e := range m.Entries {
		byName[e.Name] = e
	}

	var chain []string
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		e, ok := byName[name]
		if !ok {
			break
		}
		seen[name] = true
		chain = append(chain, name)
		if e.Next == name {
			break
		}
		name = e.Next
	}
	return chain
}

// MarshalBinary produces the deterministic CBOR body.
func (m *Manifest) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	// Alias avoids recursing into MarshalBinary
	type manifestAlias Manifest
	data, err := encMode.Marshal((*manifestAlias)(m))
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Write writes m to w and returns the BLAKE2b-256 hash of the body.
func Write(w io.Writer, m *Manifest) ([32]byte, error) {
	body, err := m.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	if len(body) > maxBodyLen {
		return [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", len(body), maxBodyLen)
	}

	var preamble bytes.Buffer
	preamble.WriteString(Magic)
	if err := binary.Write(&preamble, binary.LittleEndian, Version); err != nil {
		return [32]byte{}, err
	}
	if err := binary.Write(&preamble, binary.LittleEndian, uint32(len(body))); err != nil {
		return [32]byte{}, err
	}

	if _, err := w.Write(preamble.Bytes()); err != nil {
		return [32]byte{}, err
	}
	if _, err := w.Write(body); err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(body), nil
}

// Read reads a manifest from r and returns it with its body hash.
func Read(r io.Reader) (*Manifest, [32]byte, error) {
	var preamble [10]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read preamble: %w", err)
	}

	if magic := string(preamble[0:4]); magic != Magic {
		return nil, [32]byte{}, fmt.Errorf("invalid magic: got %q, expected %q", magic, Magic)
	}
	if version := binary.LittleEndian.Uint16(preamble[4:6]); version != Version {
		return nil, [32]byte{}, fmt.Errorf("unsupported version: got 0x%04x, expected 0x%04x", version, Version)
	}

	bodyLen := binary.LittleEndian.Uint32(preamble[6:10])
	if bodyLen > maxBodyLen {
		return nil, [32]byte{}, fmt.Errorf("body length %d exceeds maximum %d", bodyLen, maxBodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, [32]byte{}, fmt.Errorf("read body: %w", err)
	}

	var m Manifest
	if err := cbor.Unmarshal(body, &m); err != nil {
		return nil, [32]byte{}, fmt.Errorf("parse body: %w", err)
	}
	return &m, blake2b.Sum256(body), nil
}
