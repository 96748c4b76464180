package pay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEscapeJSONStringControlChars exercises spec.md §8's JSON-encoding
// invariant: control-character bytes are replaced by '?', and '"'/'\'
// are escaped rather than passed through raw.
func TestEscapeJSONStringControlChars(t *testing.T) {
	in := "hello\x00\x01\x1fworld\"quote\\backslash\x7f"
	out := escapeJSONString(in)

	require.True(t, len(out) >= 2)
	require.Equal(t, byte('"'), out[0])
	require.Equal(t, byte('"'), out[len(out)-1])

	inner := out[1 : len(out)-1]
	require.NotContains(t, inner, "\x00")
	require.NotContains(t, inner, "\x01")
	require.Contains(t, inner, "???world")
	require.Contains(t, inner, `\"quote\\backslash`)

	for _, r := range inner {
		require.True(t, r == '\\' || r == '"' ||
			(r >= 0x20 && r < 0x7f),
			"non-printable rune %q leaked through", r)
	}
}

func TestEscapeJSONStringPlain(t *testing.T) {
	require.Equal(t, `"plain text"`, escapeJSONString("plain text"))
}

func TestFailureReplyMarshalJSON(t *testing.T) {
	f := &FailureReply{
		Code:    ErrRouteNotFound,
		Message: "no route\x01found",
		Data:    map[string]any{"getroute_tries": 3},
	}

	raw, err := f.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(raw), `"message":"no route?found"`)
	require.Contains(t, string(raw), `"getroute_tries":3`)
}
