package keygen

import (
	"fmt"
	"io"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/vss"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/paillierkey"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round2 verifies every peer's round 1 proofs, then sends each peer its
// Paillier-encrypted VSS share and broadcasts the reveal of its own y_i
// commitment plus its VSS commitments.
type round2 struct {
	rnd        io.Reader
	threshold  int
	dk         *paillier.DecryptionKey
	vssCommits *vss.Commitments
	vssShares  []vss.Share
	yReveal    commit.Decommitment
}

// Bcast2 is round 2's broadcast: the reveal of this party's y_i commitment
// and the point commitments to its VSS polynomial.
type Bcast2 struct {
	YReveal    commit.Decommitment
	VssCommits [][]byte // one curve.Point.Bytes() per polynomial coefficient
}

// P2p2 is round 2's point-to-point message: the recipient's Paillier-
// encrypted VSS share.
type P2p2 struct {
	ShareCiphertext *big.Int
}

func (r *round2) Execute(myShareID collections.TypedUsize[ShareID], bcastsIn *collections.VecMap[ShareID, []byte], _ *collections.HoleVecMap[ShareID, []byte]) (*sdk.RoundResult[SecretKeyShare, ShareID], error) {
	n := bcastsIn.Len()
	faulters := collections.NewFillVecMap[ShareID, sdk.Fault](n)

	bcasts1 := make([]Bcast1, n)
	eks := make([]*paillier.EncryptionKey, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[ShareID], payload []byte) error {
		var b Bcast1
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts1[from.AsUsize()] = b

		ek, err := paillier.NewEncryptionKey(natFromBig(b.EK))
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		eks[from.AsUsize()] = ek

		if err := paillierkey.Verify(paillierkey.Statement{N: ek.N()}, pkProofFromWire(b.EKProof)); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}

		zkp := &zksetup.ZkSetup{Nhat: natFromBig(b.Nhat), H1: natFromBig(b.H1), H2: natFromBig(b.H2)}
		fwd := cdlogProofFromWire(b.ZkpProofFwd)
		inv := cdlogProofFromWire(b.ZkpProofInv)
		if err := zkp.Verify(fwd, inv); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if !faulters.IsEmpty() {
		return &sdk.RoundResult[SecretKeyShare, ShareID]{Faulters: faulters}, nil
	}

	me := myShareID.AsUsize()
	p2psOut := collections.NewHoleVecMap[ShareID, []byte](myShareID, make([][]byte, n-1))
	for i := 0; i < n; i++ {
		if uint32(i) == me {
			continue
		}
		share := r.vssShares[i]
		ct, _ := eks[i].Encrypt(r.rnd, scalarToPlaintext(share.Value))
		payload, err := wire.Marshal(P2p2{ShareCiphertext: natToBig(ct.Nat())})
		if err != nil {
			return nil, fmt.Errorf("keygen round 2: marshal p2p: %w", err)
		}
		if err := p2psOut.Set(collections.NewTypedUsize[ShareID](uint32(i)), payload); err != nil {
			return nil, err
		}
	}

	commitBytes := make([][]byte, len(r.vssCommits.Coeffs))
	for i, c := range r.vssCommits.Coeffs {
		commitBytes[i] = c.Bytes()
	}
	bcastOut, err := wire.Marshal(Bcast2{YReveal: r.yReveal, VssCommits: commitBytes})
	if err != nil {
		return nil, fmt.Errorf("keygen round 2: marshal bcast: %w", err)
	}

	r3 := &round3{
		rnd:       r.rnd,
		threshold: r.threshold,
		dk:        r.dk,
		myShare:   r.vssShares[me],
		bcasts1:   bcasts1,
	}

	return &sdk.RoundResult[SecretKeyShare, ShareID]{
		BcastOut: bcastOut,
		P2psOut:  p2psOut,
		Next:     r3,
	}, nil
}
