package sign

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/chaumpedersen"
)

// round8 is the final round. On the happy path it verifies every peer's
// signature summand s_i against the fully public relation
// s_i*R == m*R_i + r*S_i (derivable since s_i = m*k_i + r*sigma_i,
// R_i = k_i*R and S_i = sigma_i*R), which alone identifies a bad summand
// without needing an evidence-opening round. On a Type-7 abort it instead
// checks every peer's Chaum-Pedersen proof that SigmaG_i and S_i share the
// same exponent.
type round8 struct {
	msgHash *big.Int
	members []committeeMember
	y       *curve.Point

	R   *curve.Point
	Ris []*curve.Point
	Ss  []*curve.Point

	r *curve.Scalar
	m *curve.Scalar

	Si    *curve.Point
	type7 bool
}

// errType7Unattributed is returned when every party's Type-7 self-consistency
// proof checks out individually yet the committee's S_i shares still fail to
// sum to the group public key. Pinning the fault further would require
// recovering the Paillier randomness behind an MtA ciphertext, which this
// package's paillier implementation does not expose.
var errType7Unattributed = errors.New("sign round 8: type-7 abort could not be attributed to a single signer")

func (r *round8) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)

	bcasts7 := make([]Bcast7, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast7
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts7[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	if r.type7 {
		for j := 0; j < n; j++ {
			SigmaGj, err := curve.PointFromBytes(bcasts7[j].SigmaG)
			if err != nil {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
				continue
			}
			proof, err := chaumPedersenProofFromWire(bcasts7[j].SigmaProof)
			if err != nil {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
				continue
			}
			if err := chaumpedersen.Verify(curve.Generator(), r.R, SigmaGj, r.Ss[j], proof); err != nil {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.ProtocolFault)
			}
		}
		if !faulters.IsEmpty() {
			return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
		}
		return nil, errType7Unattributed
	}

	q := curve.Order()
	for j := 0; j < n; j++ {
		sj, err := curve.ScalarFromBytes(bcasts7[j].S)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		lhs := curve.ScalarMult(sj, r.R)
		rhs := curve.ScalarMult(r.m, r.Ris[j]).Add(curve.ScalarMult(r.r, r.Ss[j]))
		if !lhs.Equal(rhs) {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.ProtocolFault)
			continue
		}
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	sSum := big.NewInt(0)
	for j := 0; j < n; j++ {
		sj, err := curve.ScalarFromBytes(bcasts7[j].S)
		if err != nil {
			return nil, fmt.Errorf("sign round 8: unreachable: s_%d re-parse: %w", j, err)
		}
		sSum.Add(sSum, sj.BigInt())
	}
	sSum.Mod(sSum, q)

	half := new(big.Int).Rsh(q, 1)
	if sSum.Cmp(half) > 0 {
		sSum.Sub(q, sSum)
	}

	sig := Signature{R: new(big.Int).Set(r.r.BigInt()), S: sSum}
	return &sdk.RoundResult[Signature, SignerID]{Output: &sig}, nil
}
