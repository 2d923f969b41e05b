package manifest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Manifest {
	css := []byte(".a {\n  color: var(--a, var(--b, #fff));\n}\n")
	return &Manifest{
		Source: "site.less",
		Digest: Digest(css),
		Entries: []Entry{
			{Name: "@a", Next: "@b", Color: "#fff", Index: -1},
			{Name: "@b", Next: "@b", Color: "#fff", Index: -1},
		},
		Trail: []Edge{{Source: "@a", Referenced: "@b"}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := sample()

	var buf bytes.Buffer
	writeHash, err := Write(&buf, m)
	require.NoError(t, err)
	assert.Equal(t, Magic, buf.String()[:4])

	got, readHash, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, writeHash, readHash)

	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	_, err := Write(&a, sample())
	require.NoError(t, err)
	_, err = Write(&b, sample())
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestDigestFormat(t *testing.T) {
	d := Digest([]byte("x"))
	assert.True(t, strings.HasPrefix(d, "blake2b:"))
	assert.Len(t, d, len("blake2b:")+64)
	assert.NotEqual(t, d, Digest([]byte("y")))
}

func TestVerify(t *testing.T) {
	m := sample()
	require.NoError(t, m.Verify([]byte(".a {\n  color: var(--a, var(--b, #fff));\n}\n")))

	err := m.Verify([]byte(".a { color: red; }"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDigestMismatch))
}

func TestChain(t *testing.T) {
	m := sample()
	assert.Equal(t, []string{"@a", "@b"}, m.Chain("@a"))
	assert.Equal(t, []string{"@b"}, m.Chain("@b"))
	assert.Nil(t, m.Chain("@missing"))

	m.Entries = append(m.Entries, Entry{Name: "@x", Next: "@y"}, Entry{Name: "@y", Next: "@x"})
	assert.Equal(t, []string{"@x", "@y"}, m.Chain("@x"), "cycles stop")
}

func TestReadRejects(t *testing.T) {
	var good bytes.Buffer
	_, err := Write(&good, sample())
	require.NoError(t, err)
	valid := good.Bytes()

	badVersion := append([]byte{}, valid...)
	badVersion[4] = 0x09

	tests := []struct {
		name        string
		input       []byte
		errContains string
	}{
		{"empty", nil, "read preamble"},
		{"bad magic", append([]byte("OPAL"), valid[4:]...), "invalid magic"},
		{"bad version", badVersion, "unsupported version"},
		{"truncated body", valid[:len(valid)-3], "read body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(bytes.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
