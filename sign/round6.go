package sign

import (
	"fmt"
	"io"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/pedersen"
	rangeproof "github.com/axelarnetwork/tofn-sub000/zkproof/range"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// round6 verifies every peer's round 5 range-wc proof that R_i is
// consistent with its K_i ciphertext, then checks the committee's identified
// -abort invariant for this phase: the R_i shares must sum to the
// generator. A mismatch (Type-5) means some earlier MtA pairing was built on
// a value inconsistent with its sender's own committed nonce or blinding
// factor; this party opens its own blind-path secrets instead of producing
// its happy-path signature share, so the fault can be traced without
// exposing anyone's permanent key-share secret (the blind path uses only
// single-use gamma/k material).
type round6 struct {
	rnd         io.Reader
	msgHash     *big.Int
	members     []committeeMember
	y           *curve.Point
	wMine       *curve.Scalar
	gamma       *curve.Scalar
	k           *curve.Scalar
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

	sigma  *curve.Scalar
	l      *curve.Scalar
	T      *curve.Point
	Ts     []*curve.Point
	deltas []*curve.Scalar

	R      *curve.Point
	Ri     *curve.Point
	Gammas []*curve.Point
}

// Bcast6 is round 6's broadcast. On the happy path it carries S_i and its
// proof binding S_i to T_i under base R. On a Type-5 abort it instead opens
// this party's blind-path secrets: its nonce k_i, the Paillier randomness
// K_i was encrypted with, its blinding factor gamma_i (both already pinned
// by round 1/4's commitments), and, for every peer, the MtA summands this
// party sent as Bob and received as Alice on the blind exchange.
type Bcast6 struct {
	Type5 bool

	S        []byte
	SProofWc pedersenProofWcWire

	K           []byte
	KRandomness *big.Int
	Gamma       []byte
	BetaPrimes  []*big.Int
	RBlinds     []*big.Int
	Alphas      [][]byte
	RecvC2Blind []*big.Int
}

// P2p5 proofs are consumed entirely in round 6; there is no P2p6 message.

func (r *round6) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)

	bcasts5 := make([]Bcast5, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast5
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts5[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	Ris := make([]*curve.Point, n)
	for j := 0; j < n; j++ {
		Rj, err := curve.PointFromBytes(bcasts5[j].Ri)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		Ris[j] = Rj
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	if err := p2psIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var p P2p5
		if err := wire.Unmarshal(payload, &p); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		j := from.AsUsize()
		proof, err := rangeProofWcFromWire(p.Proof)
		if err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		stmt := rangeproof.StatementWc{
			Statement: rangeproof.Statement{
				Ciphertext: ciphertextFromBig(r.bcasts1[j].KCiphertext),
				EK:         r.members[j].ek,
				Verifier:   r.myZkp,
			},
			MsgG: Ris[j],
			Base: r.R,
		}
		if err := rangeproof.VerifyWc(stmt, proof); err != nil {
			_ = faulters.Set(from, sdk.ProtocolFault)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	RiSum := curve.NewIdentityPoint()
	for _, Rj := range Ris {
		RiSum = RiSum.Add(Rj)
	}

	if !RiSum.Equal(curve.Generator()) {
		bcast := Bcast6{
			Type5:       true,
			K:           r.k.Bytes(),
			KRandomness: natToBig(r.kRandomness),
			Gamma:       r.gamma.Bytes(),
			BetaPrimes:  r.betaPrimes,
			RBlinds:     r.rBlinds,
			Alphas:      scalarsToBytesSlice(r.alphas),
			RecvC2Blind: r.recvC2Blind,
		}
		bcastOut, err := wire.Marshal(bcast)
		if err != nil {
			return nil, fmt.Errorf("sign round 6: marshal type-5 evidence: %w", err)
		}
		r7 := &round7{
			rnd: r.rnd, msgHash: r.msgHash, members: r.members, y: r.y,
			dk: r.dk, myEK: r.myEK,
			bcasts1: r.bcasts1, betas: r.betas, nus: r.nus, deltas: r.deltas,
			sigma: r.sigma, l: r.l, T: r.T, Ts: r.Ts,
			R: r.R, Ri: r.Ri, Ris: Ris, Gammas: r.Gammas, type5: true,
			wMine: r.wMine, k: r.k, gamma: r.gamma,
			recvC2Keyshare: r.recvC2Keyshare, mus: r.mus, nuPrimes: r.nuPrimes, rKeyshares: r.rKeyshares,
		}
		return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r7}, nil
	}

	Si := curve.ScalarMult(r.sigma, r.R)
	proof, err := pedersen.ProveWc(r.rnd, pedersenH(), r.R, r.sigma, r.l, r.T, Si)
	if err != nil {
		return nil, fmt.Errorf("sign round 6: pedersen proof wc: %w", err)
	}

	bcast := Bcast6{S: Si.Bytes(), SProofWc: pedersenProofWcToWire(proof)}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 6: marshal bcast: %w", err)
	}

	r7 := &round7{
		rnd: r.rnd, msgHash: r.msgHash, members: r.members, y: r.y,
		dk: r.dk, myEK: r.myEK,
		bcasts1: r.bcasts1, betas: r.betas, nus: r.nus, deltas: r.deltas,
		sigma: r.sigma, l: r.l, T: r.T, Ts: r.Ts,
		R: r.R, Ri: r.Ri, Ris: Ris, Gammas: r.Gammas, Si: Si,
		wMine: r.wMine, k: r.k, gamma: r.gamma,
		recvC2Keyshare: r.recvC2Keyshare, mus: r.mus, nuPrimes: r.nuPrimes, rKeyshares: r.rKeyshares,
	}
	return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r7}, nil
}

func scalarsToBytesSlice(ss []*curve.Scalar) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		if s == nil {
			continue
		}
		out[i] = s.Bytes()
	}
	return out
}
