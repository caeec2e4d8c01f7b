package keygen

import (
	"fmt"
	"io"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/vss"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/schnorr"
)

// round3 checks every peer's y_i reveal against its round 1 commitment,
// decrypts and validates its own VSS share from each peer, then derives its
// polynomial secret share x_i and the group's public key material.
type round3 struct {
	rnd       io.Reader
	threshold int
	dk        *paillier.DecryptionKey
	myShare   vss.Share // this party's own VSS share of its own polynomial
	bcasts1   []Bcast1
}

// Bcast3 is round 3's broadcast: a Schnorr proof of knowledge of this
// party's secret share x_i against its public share X_i.
type Bcast3 struct {
	XIProof schnorrProofWire
}

func (r *round3) Execute(myShareID collections.TypedUsize[ShareID], bcastsIn *collections.VecMap[ShareID, []byte], p2psIn *collections.HoleVecMap[ShareID, []byte]) (*sdk.RoundResult[SecretKeyShare, ShareID], error) {
	n := bcastsIn.Len()
	faulters := collections.NewFillVecMap[ShareID, sdk.Fault](n)

	bcasts2 := make([]Bcast2, n)
	vssCommits := make([]*vss.Commitments, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[ShareID], payload []byte) error {
		var b Bcast2
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts2[from.AsUsize()] = b

		coeffs := make([]*curve.Point, len(b.VssCommits))
		for i, pb := range b.VssCommits {
			p, err := curve.PointFromBytes(pb)
			if err != nil {
				_ = faulters.Set(from, sdk.CorruptedMessage)
				return nil
			}
			coeffs[i] = p
		}
		commits := &vss.Commitments{Coeffs: coeffs}
		vssCommits[from.AsUsize()] = commits

		yCommit := commit.WithRandomness(commits.Constant().Bytes(), b.YReveal)
		if yCommit != r.bcasts1[from.AsUsize()].YCommit {
			_ = faulters.Set(from, sdk.ProtocolFault)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[SecretKeyShare, ShareID]{Faulters: faulters}, nil
	}

	// decrypt and validate each incoming VSS share. A share that fails to
	// validate against its sender's published commitments is faulted
	// directly: unlike a third party relaying an accusation, the recipient
	// decrypted the share with its own secret key, so there is no "forged
	// accusation" case to adjudicate the way a relayed complaint would need.
	x := r.myShare.Value
	if err := p2psIn.Iter(func(from collections.TypedUsize[ShareID], payload []byte) error {
		var p P2p2
		if err := wire.Unmarshal(payload, &p); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		ct := paillier.CiphertextFromNat(natFromBig(p.ShareCiphertext))
		plaintext, err := r.dk.Decrypt(ct)
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		value, err := plaintextToScalar(plaintext)
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		share := vss.Share{Index: shareIndex(myShareID), Value: value}
		if err := vss.Verify(vssCommits[from.AsUsize()], share); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		x = x.Add(value)
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[SecretKeyShare, ShareID]{Faulters: faulters}, nil
	}

	y := curve.NewIdentityPoint()
	for _, c := range vssCommits {
		y = y.Add(c.Constant())
	}

	allX := make([]*curve.Point, n)
	for k := 0; k < n; k++ {
		idx := shareIndex(collections.NewTypedUsize[ShareID](uint32(k)))
		acc := curve.NewIdentityPoint()
		for _, c := range vssCommits {
			acc = acc.Add(vss.ShareCommitment(c, idx))
		}
		allX[k] = acc
	}

	randomness, err := schnorr.NewRandomness(r.rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen round 3: schnorr randomness: %w", err)
	}
	proof := schnorr.Prove(randomness, x, allX[myShareID.AsUsize()])

	bcastOut, err := wire.Marshal(Bcast3{XIProof: schnorrProofToWire(proof)})
	if err != nil {
		return nil, fmt.Errorf("keygen round 3: marshal bcast: %w", err)
	}

	r4 := &round4{
		threshold: r.threshold,
		dk:        r.dk,
		bcasts1:   r.bcasts1,
		y:         y,
		x:         x,
		allX:      allX,
	}

	return &sdk.RoundResult[SecretKeyShare, ShareID]{
		BcastOut: bcastOut,
		Next:     r4,
	}, nil
}
