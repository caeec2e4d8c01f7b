// Package keygen implements the GG20 distributed key generation protocol:
// each of n parties contributes a Feldman VSS share of a random secret,
// proves its Paillier key and ZK setup parameters are well formed, and the
// parties jointly derive a public key y and, per party, a polynomial
// (Shamir) share x_i of the corresponding private key with publicly
// verifiable shares X_i = x_i*G.
package keygen

import (
	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// ShareID indexes a keygen participant's VSS share. Keygen runs one share
// per party (no sub-sharing), so ShareID and PartyID carry the same range,
// but the sdk.Round driver is generic over both and keygen keeps them
// distinct to match its shape.
type ShareID struct{}

// PartyID indexes a physical party.
type PartyID struct{}

// SharePublicInfo is a single party's public key material: its public
// share X_i, its Paillier encryption key, and its ZK setup
// parameters, all needed by the other parties during signing.
type SharePublicInfo struct {
	X   *curve.Point
	EK  *paillier.EncryptionKey
	Zkp *zksetup.ZkSetup
}

// GroupPublicInfo is the public output of keygen, common to every party.
type GroupPublicInfo struct {
	Threshold int
	Y         *curve.Point
	AllShares *collections.VecMap[ShareID, SharePublicInfo]
}

// ShareSecretInfo is a single party's private output of keygen: its own
// index, Paillier decryption key, and polynomial secret share x_i.
type ShareSecretInfo struct {
	Index collections.TypedUsize[ShareID]
	DK    *paillier.DecryptionKey
	X     *curve.Scalar
}

// SecretKeyShare bundles a party's full keygen output: the group's public
// key material plus this party's own secret share. Sign takes one of these
// as input.
type SecretKeyShare struct {
	Group *GroupPublicInfo
	Share *ShareSecretInfo
}
