package keygen

import (
	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/schnorr"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round4 is keygen's final round: it verifies every peer's Schnorr proof of
// knowledge of its secret share against the public share everyone derived
// independently in round 3, then assembles the finished SecretKeyShare.
type round4 struct {
	threshold int
	dk        *paillier.DecryptionKey
	bcasts1   []Bcast1
	y         *curve.Point
	x         *curve.Scalar
	allX      []*curve.Point
}

func (r *round4) Execute(myShareID collections.TypedUsize[ShareID], bcastsIn *collections.VecMap[ShareID, []byte], _ *collections.HoleVecMap[ShareID, []byte]) (*sdk.RoundResult[SecretKeyShare, ShareID], error) {
	n := bcastsIn.Len()
	faulters := collections.NewFillVecMap[ShareID, sdk.Fault](n)

	if err := bcastsIn.Iter(func(from collections.TypedUsize[ShareID], payload []byte) error {
		var b Bcast3
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		proof, err := schnorrProofFromWire(b.XIProof)
		if err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		if err := schnorr.Verify(r.allX[from.AsUsize()], proof); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[SecretKeyShare, ShareID]{Faulters: faulters}, nil
	}

	allShares := make([]SharePublicInfo, n)
	for k := 0; k < n; k++ {
		ek, err := paillier.NewEncryptionKey(natFromBig(r.bcasts1[k].EK))
		if err != nil {
			return nil, err
		}
		zkp := &zksetup.ZkSetup{
			Nhat: natFromBig(r.bcasts1[k].Nhat),
			H1:   natFromBig(r.bcasts1[k].H1),
			H2:   natFromBig(r.bcasts1[k].H2),
		}
		allShares[k] = SharePublicInfo{X: r.allX[k], EK: ek, Zkp: zkp}
	}

	output := SecretKeyShare{
		Group: &GroupPublicInfo{
			Threshold: r.threshold,
			Y:         r.y,
			AllShares: collections.NewVecMap[ShareID, SharePublicInfo](allShares),
		},
		Share: &ShareSecretInfo{
			Index: myShareID,
			DK:    r.dk,
			X:     r.x,
		},
	}

	return &sdk.RoundResult[SecretKeyShare, ShareID]{Output: &output}, nil
}
