package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	payload, err := Marshal(map[string]int{"x": 7})
	require.NoError(t, err)

	bytes, err := Wrap(payload, 3, MsgType{Kind: P2P, To: 1}, P2pOnly)
	require.NoError(t, err)

	env, ok := Unwrap(bytes)
	require.True(t, ok)
	require.Equal(t, uint32(3), env.From)
	require.Equal(t, P2P, env.MsgType.Kind)
	require.Equal(t, uint32(1), env.MsgType.To)

	var got map[string]int
	require.NoError(t, Unmarshal(env.Payload, &got))
	require.Equal(t, 7, got["x"])
}

func TestUnwrapRejectsGarbage(t *testing.T) {
	_, ok := Unwrap([]byte("not cbor at all, hopefully"))
	require.False(t, ok)
}

func TestUnwrapRejectsVersionMismatch(t *testing.T) {
	inner, err := Marshal(Envelope{From: 1})
	require.NoError(t, err)
	outer, err := Marshal(versioned{Version: Version + 1, Payload: inner})
	require.NoError(t, err)

	_, ok := Unwrap(outer)
	require.False(t, ok)
}
