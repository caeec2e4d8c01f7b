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
	"github.com/axelarnetwork/tofn-sub000/zkproof/chaumpedersen"
	"github.com/axelarnetwork/tofn-sub000/zkproof/pedersen"
)

// round7 either resolves a Type-5 abort opened in round 6, or - on the happy
// path - verifies every peer's S_i opening, checks the committee's second
// identified-abort invariant (the S_i shares must sum to the group public
// key), and produces this party's signature summand s_i.
type round7 struct {
	rnd     io.Reader
	msgHash *big.Int
	members []committeeMember
	y       *curve.Point
	dk      *paillier.DecryptionKey
	myEK    *paillier.EncryptionKey

	bcasts1 []Bcast1
	betas   []*curve.Scalar
	nus     []*curve.Scalar
	deltas  []*curve.Scalar

	sigma *curve.Scalar
	l     *curve.Scalar
	T     *curve.Point
	Ts    []*curve.Point

	R      *curve.Point
	Ri     *curve.Point
	Ris    []*curve.Point
	Gammas []*curve.Point
	type5  bool
	Si     *curve.Point

	wMine *curve.Scalar
	k     *curve.Scalar
	gamma *curve.Scalar

	recvC2Keyshare []*big.Int
	mus            []*curve.Scalar
	nuPrimes       []*big.Int
	rKeyshares     []*big.Int
}

// Bcast7 is round 7's broadcast. On the happy path it carries this party's
// signature summand s_i. On a Type-7 abort (the S_i shares don't sum to the
// group public key) it instead opens sigma_i*G and a proof tying it to S_i,
// letting every other party confirm this party's own share is internally
// consistent - deliberately not the pairwise MtA summands behind sigma_i,
// since those are keyed to the permanent key share w_i and opening them
// alongside an opened nonce would leak it (see DESIGN.md).
type Bcast7 struct {
	Type7 bool

	S []byte

	K           []byte
	KRandomness *big.Int
	L           []byte
	SigmaG      []byte
	SigmaProof  chaumPedersenProofWire
}

func (r *round7) Execute(me collections.TypedUsize[SignerID], bcastsIn *collections.VecMap[SignerID, []byte], p2psIn *collections.HoleVecMap[SignerID, []byte]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	faulters := collections.NewFillVecMap[SignerID, sdk.Fault](n)

	if r.type5 {
		return r.executeType5(bcastsIn, faulters)
	}

	bcasts6 := make([]Bcast6, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast6
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts6[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	Ss := make([]*curve.Point, n)
	for j := 0; j < n; j++ {
		Sj, err := curve.PointFromBytes(bcasts6[j].S)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		proof, err := pedersenProofWcFromWire(bcasts6[j].SProofWc)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.CorruptedMessage)
			continue
		}
		if err := pedersen.VerifyWc(pedersenH(), r.R, r.Ts[j], Sj, proof); err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(j)), sdk.ProtocolFault)
			continue
		}
		Ss[j] = Sj
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	SSum := curve.NewIdentityPoint()
	for _, Sj := range Ss {
		SSum = SSum.Add(Sj)
	}

	if !SSum.Equal(r.y) {
		SigmaG := curve.ScalarBaseMult(r.sigma)
		proof, err := chaumpedersen.Prove(r.rnd, curve.Generator(), r.R, SigmaG, r.Si, r.sigma)
		if err != nil {
			return nil, fmt.Errorf("sign round 7: chaum-pedersen proof: %w", err)
		}
		bcast := Bcast7{
			Type7:       true,
			K:           r.k.Bytes(),
			KRandomness: nil,
			L:           r.l.Bytes(),
			SigmaG:      SigmaG.Bytes(),
			SigmaProof:  chaumPedersenProofToWire(proof),
		}
		bcastOut, err := wire.Marshal(bcast)
		if err != nil {
			return nil, fmt.Errorf("sign round 7: marshal type-7 evidence: %w", err)
		}
		r8 := &round8{
			msgHash: r.msgHash, members: r.members, y: r.y,
			R: r.R, Ris: r.Ris, Ss: Ss, Si: r.Si, type7: true,
		}
		return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r8}, nil
	}

	rOrd := r.R.XCoordMod()
	q := curve.Order()
	mScalar, err := bigToScalar(new(big.Int).Mod(r.msgHash, q))
	if err != nil {
		return nil, fmt.Errorf("sign round 7: message scalar: %w", err)
	}
	mk := new(big.Int).Mul(mScalar.BigInt(), r.k.BigInt())
	rSigma := new(big.Int).Mul(rOrd.BigInt(), r.sigma.BigInt())
	sVal := new(big.Int).Add(mk, rSigma)
	sVal.Mod(sVal, q)
	si, err := bigToScalar(sVal)
	if err != nil {
		return nil, fmt.Errorf("sign round 7: signature summand: %w", err)
	}

	bcast := Bcast7{S: si.Bytes()}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 7: marshal bcast: %w", err)
	}

	r8 := &round8{
		msgHash: r.msgHash, members: r.members, y: r.y,
		R: r.R, Ris: r.Ris, Ss: Ss, r: rOrd, m: mScalar,
	}
	return &sdk.RoundResult[Signature, SignerID]{BcastOut: bcastOut, Next: r8}, nil
}

// executeType5 adjudicates a Type-5 abort: every party opened its blind-path
// secrets in round 6, and this checks each party's claims for internal
// self-consistency and for agreement with every peer it exchanged an MtA
// response with.
func (r *round7) executeType5(bcastsIn *collections.VecMap[SignerID, []byte], faulters *collections.FillVecMap[SignerID, sdk.Fault]) (*sdk.RoundResult[Signature, SignerID], error) {
	n := len(r.members)
	bcasts6 := make([]Bcast6, n)
	if err := bcastsIn.Iter(func(from collections.TypedUsize[SignerID], payload []byte) error {
		var b Bcast6
		if err := wire.Unmarshal(payload, &b); err != nil {
			_ = faulters.Set(from, sdk.CorruptedMessage)
			return nil
		}
		bcasts6[from.AsUsize()] = b
		return nil
	}); err != nil {
		return nil, err
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	ks := make([]*curve.Scalar, n)
	gammas := make([]*curve.Scalar, n)
	for i := 0; i < n; i++ {
		ki, err := curve.ScalarFromBytes(bcasts6[i].K)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.CorruptedMessage)
			continue
		}
		gi, err := curve.ScalarFromBytes(bcasts6[i].Gamma)
		if err != nil {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.CorruptedMessage)
			continue
		}
		ks[i] = ki
		gammas[i] = gi

		Ki := r.members[i].ek.EncryptWithRandomness(natFromBig(new(big.Int).SetBytes(bcasts6[i].K)), natFromBig(bcasts6[i].KRandomness))
		if natToBig(Ki.Nat()).Cmp(r.bcasts1[i].KCiphertext) != 0 {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.ProtocolFault)
			continue
		}
		if !curve.ScalarBaseMult(gi).Equal(r.Gammas[i]) {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.ProtocolFault)
		}
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	for i := 0; i < n; i++ {
		deltaExpected := ks[i].Mul(gammas[i])
		for m := 0; m < n; m++ {
			if m == i {
				continue
			}
			alphaIm, err := curve.ScalarFromBytes(bcasts6[i].Alphas[m])
			if err != nil {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.CorruptedMessage)
				continue
			}
			betaPrimeIm, err := bigToScalar(bcasts6[i].BetaPrimes[m])
			if err != nil {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.CorruptedMessage)
				continue
			}
			deltaExpected = deltaExpected.Add(alphaIm).Add(betaPrimeIm.Negate())
		}
		if isNone, _ := faulters.IsNone(collections.NewTypedUsize[SignerID](uint32(i))); !isNone {
			continue
		}
		if !scalarsEqual(deltaExpected, r.deltas[i]) {
			_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.ProtocolFault)
		}
	}
	if !faulters.IsEmpty() {
		return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			Kj := ciphertextFromBig(r.bcasts1[j].KCiphertext)
			jEK := r.members[j].ek
			scaled := jEK.HomomorphicMulPlainSigned(Kj, gammas[i].BigInt())
			blind := jEK.EncryptWithRandomness(natFromBig(bcasts6[i].BetaPrimes[j]), natFromBig(bcasts6[i].RBlinds[j]))
			expected := jEK.HomomorphicAdd(scaled, blind)
			if natToBig(expected.Nat()).Cmp(bcasts6[j].RecvC2Blind[i]) != 0 {
				_ = faulters.Set(collections.NewTypedUsize[SignerID](uint32(i)), sdk.ProtocolFault)
			}
		}
	}

	return &sdk.RoundResult[Signature, SignerID]{Faulters: faulters}, nil
}
