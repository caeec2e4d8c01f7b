// Package sign implements GG20 threshold ECDSA signing: a committee of t+1
// parties holding keygen shares jointly produce a signature over a message
// digest without ever reconstructing the private key. Unlike keygen, a
// signing committee is renumbered for the session - SignerID indexes a
// participant's position within this particular committee, distinct from
// the keygen ShareID each participant actually owns.
//
// The protocol runs eight rounds (R1-R8). Two rounds can branch into an
// evidence-opening path instead of their happy-path message: R6 opens
// Type-5 evidence if the committee's nonce-point shares R_i = k_i*R don't
// sum to the generator, and R7 opens Type-7 evidence if the committee's signature
// shares don't sum to the group public key. Both cases are GG20's
// identifiable-abort guarantee in action: an aggregate inconsistency that
// no single round-3 proof caught gets traced back to whoever caused it.
package sign

import (
	"crypto/sha256"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// SignerID indexes a participant within one signing committee.
type SignerID struct{}

// committeeMember collects the public material every signer needs about one
// other committee member: its VSS index (for Lagrange weighting), its
// Lagrange-weighted public share W_k = lambda_k*X_k, and the Paillier/ZK
// setup keygen published for it.
type committeeMember struct {
	shareIndex *curve.Scalar
	w          *curve.Point // lambda_k * X_k
	ek         *paillier.EncryptionKey
	zkp        *zksetup.ZkSetup
}

// Signature is a completed threshold ECDSA signature: r is R's x-coordinate
// reduced mod the curve order, s is the aggregated response, already
// normalized to the low-s form.
type Signature struct {
	R *big.Int
	S *big.Int
}

// pedersenH is the second generator used for the Pedersen commitments in
// round 3/6. It is derived by hashing a fixed domain-separation string to a
// scalar and multiplying the base point by it - a standard "hash to curve
// via hash to scalar" construction, not a verifiable nothing-up-my-sleeve
// generator (a true NUMS generator needs a documented, externally
// auditable derivation; this is a pragmatic stand-in, noted in DESIGN.md).
func pedersenH() *curve.Point {
	return curve.ScalarBaseMult(hashToScalar("tofn-sub000/sign/pedersen-h"))
}

func hashToScalar(domain string) *curve.Scalar {
	digest := sha256.Sum256([]byte(domain))
	// ScalarFromBytes only rejects a wrong-length input; a 32-byte SHA-256
	// digest always decodes, reducing mod q if it happens to exceed it.
	s, _ := curve.ScalarFromBytes(digest[:])
	return s
}
