package sign

import (
	"fmt"
	"io"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
	rangeproof "github.com/axelarnetwork/tofn-sub000/zkproof/range"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round5 opens every peer's round 1 Gamma commitment, aggregates the nonce
// point R, and publishes this party's share of it (R_i = k_i*R) along with a
// proof that R_i is consistent with the K_i ciphertext broadcast in round 1.
type round5 struct {
	rnd         io.Reader
	msgHash     *big.Int
	members     []committeeMember
	y           *curve.Point
	wMine       *curve.Scalar
	gamma       *curve.Scalar
	k           *curve.Scalar
	Gamma       *curve.Point
	gammaCommit commit.Commitment
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

	sigma    *curve.Scalar
	l        *curve.Scalar
	T        *curve.Point
	Ts       []*curve.Point
	deltas   []*curve.Scalar
	deltaInv *curve.Scalar
}

// Bcast5 is round 5's broadcast: this party's share R_i of the nonce point.
type Bcast5 struct {
	Ri []byte
}

// P2p5 is round 5's point-to-point message: a range proof binding Ri to the
// K ciphertext broadcast in round 1, checked against the recipient's ZK
// setup.
type P2p5 struct {
	Proof rangeProofWcWire
}

func (r *round5) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)
	meIdx := me.AsUsize()

	bcasts4 := make([]Bcast4, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast4
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts4[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	Gammas := make([]*curve.Point, n)
	GammaSum := curve.NewIdentityPoint()
	for j := 0; j < n; j++ {
		Gj, err := curve.PointFromBytes(bcasts4[j].Gamma)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		if err := commit.Verify(r.bcasts1[j].GammaCommit, bcasts4[j].Gamma, bcasts4[j].GammaReveal); err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.ProtocolFault)
			continue
		}
		Gammas[j] = Gj
		GammaSum = GammaSum.Add(Gj)
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	R := curve.ScalarMult(r.deltaInv, GammaSum)
	Ri := curve.ScalarMult(r.k, R)

	bcast := Bcast5{Ri: Ri.Bytes()}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 5: marshal bcast: %w", err)
	}

	p2psOut := collections.NewHoleVecMap[SignerID, []byte](me, make([][]byte, n-1))
	for j := 0; j < n; j++ {
		if uint32(j) == meIdx {
			continue
		}
		proof, err := rangeproof.ProveWc(r.rnd, rangeproof.StatementWc{
			Statement: rangeproof.Statement{Ciphertext: r.kCiphertext, EK: r.myEK, Verifier: r.members[j].zkp},
			MsgG:      Ri,
			Base:      R,
		}, rangeproof.Witness{M: r.k.BigInt(), Rho: r.kRandomness})
		if err != nil {
			return nil, fmt.Errorf("sign round 5: range proof wc for signer %d: %w", j, err)
		}
		payload, err := wire.Marshal(P2p5{Proof: rangeProofWcToWire(proof)})
		if err != nil {
			return nil, fmt.Errorf("sign round 5: marshal p2p: %w", err)
		}
		if err := p2psOut.Set(collections.NewTypedUsize[SignerID](uint32(j)), payload); err != nil {
			return nil, err
		}
	}

	r6 := &round6{
		rnd: r.rnd, msgHash: r.msgHash, members: r.members, y: r.y, wMine: r.wMine,
		gamma: r.gamma, k: r.k, kCiphertext: r.kCiphertext, kRandomness: r.kRandomness,
		dk: r.dk, myEK: r.myEK, myZkp: r.myZkp,
		bcasts1: r.bcasts1, betas: r.betas, nus: r.nus,
		betaPrimes: r.betaPrimes, rBlinds: r.rBlinds, nuPrimes: r.nuPrimes, rKeyshares: r.rKeyshares,
		alphas: r.alphas, mus: r.mus, recvC2Blind: r.recvC2Blind, recvC2Keyshare: r.recvC2Keyshare,
		sigma: r.sigma, l: r.l, T: r.T, Ts: r.Ts, deltas: r.deltas,
		R: R, Ri: Ri, Gammas: Gammas,
	}

	return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, P2psOut: p2psOut, Next: r6}, nil
}
