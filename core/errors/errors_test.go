package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "plain",
			err:  NewUnresolvedReference("@primary"),
			want: `UNRESOLVED_REFERENCE: trying to access unresolved variable reference for "@primary"`,
		},
		{
			name: "suggestion",
			err:  NewMissingFrameBinding("@primay", "@primary"),
			want: "MISSING_FRAME_BINDING: variable @primay is undefined (did you mean @primary?)",
		},
		{
			name: "cause",
			err:  Wrap(ParseError, fmt.Errorf("unexpected '}'"), "theme.less:3:1"),
			want: "PARSE_ERROR: theme.less:3:1: unexpected '}'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := NewUnsupportedIndirection("@@@x", "more than one level of indirection")
	wrapped := fmt.Errorf("declaration color: %w", base)

	assert.True(t, IsKind(wrapped, UnsupportedIndirection))
	assert.False(t, IsKind(wrapped, MissingFrameBinding))
	assert.True(t, stderrors.Is(wrapped, &Error{Kind: UnsupportedIndirection}))
	assert.Equal(t, UnsupportedIndirection, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
}

func TestIsKindMatchesNestedCause(t *testing.T) {
	inner := NewRecursiveVariable("@a", []string{"@a", "@b", "@a"})
	outer := Wrap(ParseError, inner, "compile")

	assert.True(t, IsKind(outer, ParseError))
	assert.True(t, IsKind(outer, RecursiveVariable))
}

func TestContext(t *testing.T) {
	err := NewMissingFrameBinding("@x", "")

	v, ok := err.Value("variable")
	require.True(t, ok)
	assert.Equal(t, "@x", v)

	_, ok = err.Value("suggestion")
	assert.False(t, ok)

	err.WithContext("line", 4)
	assert.Equal(t, []string{"line", "variable"}, err.Keys())
}
