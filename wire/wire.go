// Package wire implements the versioned CBOR message envelope exchanged
// between parties: a MsgType (broadcast or point-to-point), the sender's
// share index, and an opaque round payload. Deserialization failures are
// treated as non-fatal - a malformed inbound message degrades to a missing
// message fault rather than aborting the whole party.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is bumped whenever the envelope or payload encoding changes
// incompatibly.
const Version uint16 = 0

// MsgKind distinguishes a broadcast message from a point-to-point one.
type MsgKind uint8

const (
	Bcast MsgKind = iota
	P2P
)

// MsgType carries the routing metadata for a message: whether it's a
// broadcast or, for p2p, which party it's addressed to.
type MsgType struct {
	Kind MsgKind `cbor:"1,keyasint"`
	To   uint32  `cbor:"2,keyasint"` // meaningful only when Kind == P2P
}

// ExpectedMsgType is the channel shape a sender declares for every message
// it sends during a round - the same value on every envelope the sender
// produces that round, so a recipient can catch a sender that switches
// shape mid-round without waiting to observe every message first.
type ExpectedMsgType uint8

const (
	BcastOnly ExpectedMsgType = iota
	P2pOnly
	BcastAndP2p
)

// Envelope is the inner, versioned wire structure: round payload plus
// routing metadata and the sender's index.
type Envelope struct {
	MsgType          MsgType         `cbor:"1,keyasint"`
	From             uint32          `cbor:"2,keyasint"`
	ExpectedMsgTypes ExpectedMsgType `cbor:"3,keyasint"`
	Payload          []byte          `cbor:"4,keyasint"`
}

type versioned struct {
	Version uint16 `cbor:"1,keyasint"`
	Payload []byte `cbor:"2,keyasint"`
}

// Wrap serializes payload into a versioned envelope ready to put on the
// wire.
func Wrap(payload []byte, from uint32, msgType MsgType, expected ExpectedMsgType) ([]byte, error) {
	inner, err := cbor.Marshal(Envelope{MsgType: msgType, From: from, ExpectedMsgTypes: expected, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("wire: marshal envelope: %w", err)
	}
	outer, err := cbor.Marshal(versioned{Version: Version, Payload: inner})
	if err != nil {
		return nil, fmt.Errorf("wire: marshal outer frame: %w", err)
	}
	return outer, nil
}

// Unwrap decodes an inbound byte string back into an Envelope. It returns
// ok=false (never an error) on any malformed input or version mismatch,
// since the caller treats that as a received-but-unusable message, not a
// protocol abort.
func Unwrap(bytes []byte) (env Envelope, ok bool) {
	var v versioned
	if err := cbor.Unmarshal(bytes, &v); err != nil {
		return Envelope{}, false
	}
	if v.Version != Version {
		return Envelope{}, false
	}
	if err := cbor.Unmarshal(v.Payload, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

// Marshal CBOR-encodes an arbitrary round payload, used by callers before
// handing bytes to Wrap.
func Marshal(v interface{}) ([]byte, error) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal payload: %w", err)
	}
	return b, nil
}

// Unmarshal CBOR-decodes a round payload previously produced by Marshal.
func Unmarshal(b []byte, v interface{}) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: unmarshal payload: %w", err)
	}
	return nil
}
