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
	rangeproof "github.com/axelarnetwork/tofn-sub000/zkproof/range"
)

// round2 verifies every peer's round 1 range proof on its K_i ciphertext,
// then, acting as Bob for each peer's K_j, builds the two MtA responses
// (the "blind" exchange on gamma_i, and the "wc" exchange on w_i bound to
// the public W_i) this party owes that peer.
type round2 struct {
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
}

// P2p2 is round 2's point-to-point message: the two MtA response
// ciphertexts this party owes the recipient, plus their proofs.
type P2p2 struct {
	C2Blind      *big.Int
	ProofBlind   mtaProofWire
	C2Keyshare   *big.Int
	ProofKeyshare mtawcProofWire
}

func (r *round2) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := bcastsIn.Len()
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)
	meIdx := me.AsUsize()

	bcasts1 := make([]Bcast1, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast1
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts1[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}

	myZkp := r.members[meIdx].zkp
	if err := p2psIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var p P2p1
		if err := wire.Unmarshal(payload, &p); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		peerCt := ciphertextFromBig(bcasts1[from.AsUsize()].KCiphertext)
		proof, err := rangeProofFromWireChecked(p.Proof)
		if err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		stmt := rangeproof.Statement{Ciphertext: peerCt, EK: r.members[from.AsUsize()].ek, Verifier: myZkp}
		if err := rangeproof.Verify(stmt, proof); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	p2psOut := collections.NewHoleVecMap[SignerID, []byte](me, make([][]byte, n-1))
	betas := make([]*curve.Scalar, n)
	nus := make([]*curve.Scalar, n)
	betaPrimes := make([]*big.Int, n)
	rBlinds := make([]*big.Int, n)
	nuPrimes := make([]*big.Int, n)
	rKeyshares := make([]*big.Int, n)
	for j := 0; j < n; j++ {
		if uint32(j) == meIdx {
			continue
		}
		peerEK := r.members[j].ek
		Kj := ciphertextFromBig(bcasts1[j].KCiphertext)

		betaPrime := peerEK.RandomPlaintext(r.rnd)
		rBlind := peerEK.SampleRandomness(r.rnd)
		scaledBlind := peerEK.HomomorphicMulPlainSigned(Kj, r.gamma.BigInt())
		blindBlind := peerEK.EncryptWithRandomness(betaPrime, rBlind)
		c2Blind := peerEK.HomomorphicAdd(scaledBlind, blindBlind)
		proofBlind, err := mta.Prove(r.rnd, mta.Statement{
			C1: Kj, C2: c2Blind, EK: peerEK, Verifier: r.members[j].zkp,
		}, mta.Witness{X: r.gamma.BigInt(), Beta: rBlind})
		if err != nil {
			return nil, fmt.Errorf("sign round 2: mta proof for signer %d: %w", j, err)
		}
		betaScalar, err := bigToScalar(betaPrime.Big())
		if err != nil {
			return nil, fmt.Errorf("sign round 2: beta scalar: %w", err)
		}
		betas[j] = betaScalar.Negate()
		betaPrimes[j] = betaPrime.Big()
		rBlinds[j] = rBlind.Big()

		nuPrime := peerEK.RandomPlaintext(r.rnd)
		rKeyshare := peerEK.SampleRandomness(r.rnd)
		scaledKeyshare := peerEK.HomomorphicMulPlainSigned(Kj, r.wMine.BigInt())
		blindKeyshare := peerEK.EncryptWithRandomness(nuPrime, rKeyshare)
		c2Keyshare := peerEK.HomomorphicAdd(scaledKeyshare, blindKeyshare)
		proofKeyshare, err := mtawc.Prove(r.rnd, mtawc.Statement{
			C1: Kj, C2: c2Keyshare, EK: peerEK, Verifier: r.members[j].zkp, XG: r.members[meIdx].w,
		}, mtawc.Witness{X: r.wMine.BigInt(), XScalar: r.wMine, Beta: rKeyshare})
		if err != nil {
			return nil, fmt.Errorf("sign round 2: mtawc proof for signer %d: %w", j, err)
		}
		nuScalar, err := bigToScalar(nuPrime.Big())
		if err != nil {
			return nil, fmt.Errorf("sign round 2: nu scalar: %w", err)
		}
		nus[j] = nuScalar.Negate()
		nuPrimes[j] = nuPrime.Big()
		rKeyshares[j] = rKeyshare.Big()

		payload, err := wire.Marshal(P2p2{
			C2Blind:       natToBig(c2Blind.Nat()),
			ProofBlind:    mtaProofToWire(proofBlind),
			C2Keyshare:    natToBig(c2Keyshare.Nat()),
			ProofKeyshare: mtawcProofToWire(proofKeyshare),
		})
		if err != nil {
			return nil, fmt.Errorf("sign round 2: marshal p2p: %w", err)
		}
		if err := p2psOut.Set(collections.NewTypedUsize[SignerID](uint32(j)), payload); err != nil {
			return nil, err
		}
	}

	r3 := &round3{
		rnd:         r.rnd,
		msgHash:     r.msgHash,
		members:     r.members,
		y:           r.y,
		wMine:       r.wMine,
		gamma:       r.gamma,
		k:           r.k,
		Gamma:       r.Gamma,
		gammaCommit: r.gammaCommit,
		gammaReveal: r.gammaReveal,
		kCiphertext: r.kCiphertext,
		kRandomness: r.kRandomness,
		dk:          r.dk,
		myEK:        r.members[meIdx].ek,
		myZkp:       myZkp,
		bcasts1:     bcasts1,
		betas:       betas,
		nus:         nus,
		betaPrimes:  betaPrimes,
		rBlinds:     rBlinds,
		nuPrimes:    nuPrimes,
		rKeyshares:  rKeyshares,
	}

	return &sdk.RoundResult[Signature, SignerID]{P2psOut: p2psOut, Next: r3}, nil
}

func rangeProofFromWireChecked(w rangeProofWire) (*rangeproof.Proof, error) {
	if w.S == nil || w.A == nil || w.T == nil || w.S1 == nil || w.S2 == nil || w.T2 == nil {
		return nil, fmt.Errorf("sign: malformed range proof")
	}
	return rangeProofFromWire(w), nil
}
