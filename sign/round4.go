package sign

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round4 sums every committee member's delta_i summand into the global
// nonce-blinding product delta, then reveals this party's Gamma_i - the
// point committed to back in round 1 - so round 5 can check every peer's
// reveal against its commitment before aggregating.
type round4 struct {
	rnd         io.Reader
	msgHash     *big.Int
	members     []committeeMember
	y           *curve.Point
	wMine       *curve.Scalar
	gamma       *curve.Scalar
	k           *curve.Scalar
	Gamma       *curve.Point
	gammaCommit commit.Commitment
	gammaReveal commit.Decommitment
	kCiphertext *paillier.Ciphertext
	kRandomness *paillier.Randomness
	dk          *paillier.DecryptionKey
	myEK        *paillier.EncryptionKey
	myZkp       *zksetup.ZkSetup

	bcasts1    []Bcast1
	betas      []*curve.Scalar
	nus        []*curve.Scalar
	betaPrimes []*big.Int
	rBlinds    []*big.Int
	nuPrimes   []*big.Int
	rKeyshares []*big.Int

	alphas         []*curve.Scalar
	mus            []*curve.Scalar
	recvC2Blind    []*big.Int
	recvC2Keyshare []*big.Int

	sigma *curve.Scalar
	l     *curve.Scalar
	T     *curve.Point
	delta *curve.Scalar
}

// Bcast4 is round 4's broadcast: the reveal of round 1's Gamma_i commitment.
type Bcast4 struct {
	Gamma       []byte
	GammaReveal commit.Decommitment
}

var errZeroDelta = errors.New("sign round 4: aggregate delta is zero")

func (r *round4) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)

	bcasts3 := make([]Bcast3, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast3
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts3[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	deltas := make([]*curve.Scalar, n)
	Ts := make([]*curve.Point, n)
	delta := curve.ScalarFromInt(0)
	for j := 0; j < n; j++ {
		deltaJ, err := curve.ScalarFromBytes(bcasts3[j].Delta)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		Tj, err := curve.PointFromBytes(bcasts3[j].T)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		deltas[j] = deltaJ
		Ts[j] = Tj
		delta = delta.Add(deltaJ)
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}
	if delta.IsZero() {
		return nil, errZeroDelta
	}
	deltaInv := delta.Inverse()

	bcast := Bcast4{Gamma: r.Gamma.Bytes(), GammaReveal: r.gammaReveal}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 4: marshal bcast: %w", err)
	}

	r5 := &round5{
		rnd: r.rnd, msgHash: r.msgHash, members: r.members, y: r.y, wMine: r.wMine,
		gamma: r.gamma, k: r.k, Gamma: r.Gamma, gammaCommit: r.gammaCommit,
		kCiphertext: r.kCiphertext, kRandomness: r.kRandomness, dk: r.dk, myEK: r.myEK, myZkp: r.myZkp,
		bcasts1: r.bcasts1, betas: r.betas, nus: r.nus,
		betaPrimes: r.betaPrimes, rBlinds: r.rBlinds, nuPrimes: r.nuPrimes, rKeyshares: r.rKeyshares,
		alphas: r.alphas, mus: r.mus, recvC2Blind: r.recvC2Blind, recvC2Keyshare: r.recvC2Keyshare,
		sigma: r.sigma, l: r.l, T: r.T, Ts: Ts, deltas: deltas, deltaInv: deltaInv,
	}

	return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r5}, nil
}
