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
	"github.com/axelarnetwork/tofn-sub000/zkproof/mta"
	"github.com/axelarnetwork/tofn-sub000/zkproof/mtawc"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round3 verifies and decrypts every peer's MtA response, accumulates this
// party's additive summands of the nonce-blinding product (delta_i) and the
// signature-weight product (sigma_i), and opens a Pedersen commitment to
// sigma_i. Unlike round 1's range proof, T_i carries no accompanying
// knowledge proof here - its opening is validated transitively in round 6/7,
// the same way the source this was ported from leaves it as an open item in
// its own round 3.
type round3 struct {
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

	bcasts1 []Bcast1

	// betas/nus are this party's own blinding summands, already negated, from
	// acting as Bob against every other committee member's K ciphertext.
	betas []*curve.Scalar
	nus   []*curve.Scalar

	// betaPrimes/rBlinds/nuPrimes/rKeyshares are the raw plaintexts and
	// encryption randomness chosen for each of those Bob responses, retained
	// only so this party can open them as Type-5/Type-7 evidence later - they
	// never need to be sent anywhere if every round finishes on the happy
	// path.
	betaPrimes []*big.Int
	rBlinds    []*big.Int
	nuPrimes   []*big.Int
	rKeyshares []*big.Int
}

// Bcast3 is round 3's broadcast: the additive summand of the nonce-blinding
// product, and a commitment to this party's signature-weight summand.
type Bcast3 struct {
	Delta []byte
	T     []byte
}

// P2p2 arrives here (see round2.go); round3 stores nothing from round 2's
// broadcast slot since round 2 sent only point-to-point messages.

func (r *round3) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)
	meIdx := me.AsUsize()

	alphas := make([]*curve.Scalar, n)
	mus := make([]*curve.Scalar, n)
	recvC2Blind := make([]*big.Int, n)
	recvC2Keyshare := make([]*big.Int, n)

	if err := p2psIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var p P2p2
		if err := wire.Unmarshal(payload, &p); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		j := from.AsUsize()

		c2Blind := ciphertextFromBig(p.C2Blind)
		proofBlind := mtaProofFromWire(p.ProofBlind)
		if err := mta.Verify(mta.Statement{
			C1: r.kCiphertext, C2: c2Blind, EK: r.myEK, Verifier: r.myZkp,
		}, proofBlind); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		alphaInt, err := r.dk.Decrypt(c2Blind)
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		alphaScalar, err := bigToScalar(signedIntToBig(alphaInt))
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}

		c2Keyshare := ciphertextFromBig(p.C2Keyshare)
		proofKeyshare, err := mtawcProofFromWire(p.ProofKeyshare)
		if err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		if err := mtawc.Verify(mtawc.Statement{
			C1: r.kCiphertext, C2: c2Keyshare, EK: r.myEK, Verifier: r.myZkp, XG: r.members[j].w,
		}, proofKeyshare); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		muInt, err := r.dk.Decrypt(c2Keyshare)
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}
		muScalar, err := bigToScalar(signedIntToBig(muInt))
		if err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
			return nil
		}

		alphas[j] = alphaScalar
		mus[j] = muScalar
		recvC2Blind[j] = p.C2Blind
		recvC2Keyshare[j] = p.C2Keyshare
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	delta := r.k.Mul(r.gamma)
	sigma := r.k.Mul(r.wMine)
	for j := 0; j < n; j++ {
		if uint32(j) == meIdx {
			continue
		}
		delta = delta.Add(alphas[j]).Add(r.betas[j])
		sigma = sigma.Add(mus[j]).Add(r.nus[j])
	}

	l, err := curve.SampleScalar(r.rnd)
	if err != nil {
		return nil, fmt.Errorf("sign round 3: sample l: %w", err)
	}
	T := curve.ScalarBaseMult(sigma).Add(curve.ScalarMult(l, pedersenH()))

	bcast := Bcast3{Delta: delta.Bytes(), T: T.Bytes()}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 3: marshal bcast: %w", err)
	}

	r4 := &round4{
		rnd: r.rnd, msgHash: r.msgHash, members: r.members, y: r.y, wMine: r.wMine,
		gamma: r.gamma, k: r.k, Gamma: r.Gamma, gammaCommit: r.gammaCommit, gammaReveal: r.gammaReveal,
		kCiphertext: r.kCiphertext, kRandomness: r.kRandomness, dk: r.dk, myEK: r.myEK, myZkp: r.myZkp,
		bcasts1: r.bcasts1, betas: r.betas, nus: r.nus,
		betaPrimes: r.betaPrimes, rBlinds: r.rBlinds, nuPrimes: r.nuPrimes, rKeyshares: r.rKeyshares,
		alphas: alphas, mus: mus, recvC2Blind: recvC2Blind, recvC2Keyshare: recvC2Keyshare,
		sigma: sigma, l: l, T: T, delta: delta,
	}

	return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r4}, nil
}
