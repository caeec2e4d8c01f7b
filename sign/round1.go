package sign

import (
	"fmt"
	"io"
	"math/big"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/keygen"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/vss"
	"github.com/axelarnetwork/tofn-sub000/wire"
	rangeproof "github.com/axelarnetwork/tofn-sub000/zkproof/range"
)

// Bcast1 is round 1's broadcast: the encrypted nonce summand K_i and a
// commitment to the blinding point Gamma_i.
type Bcast1 struct {
	KCiphertext *big.Int
	GammaCommit commit.Commitment
}

// P2p1 is round 1's point-to-point message: a range proof that KCiphertext
// encrypts a value below q^3, built against the recipient's ZK setup.
type P2p1 struct {
	Proof rangeProofWire
}

// New begins signing for one local committee member. committeeShareIDs
// lists, in committee order, the keygen ShareID of every participant in
// this signing session; mySignerID is this party's position in that list.
// msgHash is the (already hashed and reduced) message digest to be signed.
func New(
	rnd io.Reader,
	msgHash *big.Int,
	share *keygen.SecretKeyShare,
	committeeShareIDs []uint32,
	mySignerID collections.TypedUsize[SignerID],
	partyShareCounts *sdk.PartyShareCounts[SignerID],
) (*sdk.Round[Signature, SignerID, SignerID], error) {
	n := len(committeeShareIDs)
	me := mySignerID.AsUsize()
	if int(me) >= n {
		return nil, fmt.Errorf("sign round 1: signer index %d out of range for committee of %d", me, n)
	}

	shareIdx := make([]*curve.Scalar, n)
	for k, id := range committeeShareIDs {
		shareIdx[k] = curve.ScalarFromInt(id + 1)
	}

	lambdas := make([]*curve.Scalar, n)
	for k := range shareIdx {
		lambdas[k] = vss.LagrangeCoefficient(shareIdx[k], shareIdx)
	}

	members := make([]committeeMember, n)
	for k, id := range committeeShareIDs {
		pub, err := share.Group.AllShares.Get(collections.NewTypedUsize[keygen.ShareID](id))
		if err != nil {
			return nil, fmt.Errorf("sign round 1: keygen share %d not found: %w", id, err)
		}
		members[k] = committeeMember{
			shareIndex: shareIdx[k],
			w:          curve.ScalarMult(lambdas[k], pub.X),
			ek:         pub.EK,
			zkp:        pub.Zkp,
		}
	}
	wMine := lambdas[me].Mul(share.Share.X)
	y := share.Group.Y

	gamma, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("sign round 1: sample gamma: %w", err)
	}
	k, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("sign round 1: sample k: %w", err)
	}
	Gamma := curve.ScalarBaseMult(gamma)
	gammaCommit, gammaReveal, err := commit.New(rnd, Gamma.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign round 1: commit gamma: %w", err)
	}

	myEK := members[me].ek
	kPlaintext := new(paillier.Plaintext).SetBytes(k.Bytes())
	kCiphertext, kRandomness := myEK.Encrypt(rnd, kPlaintext)

	bcast := Bcast1{KCiphertext: natToBig(kCiphertext.Nat()), GammaCommit: gammaCommit}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("sign round 1: marshal bcast: %w", err)
	}

	p2psOut := collections.NewHoleVecMap[SignerID, []byte](mySignerID, make([][]byte, n-1))
	for j := 0; j < n; j++ {
		if uint32(j) == me {
			continue
		}
		proof, err := rangeproof.Prove(rnd, rangeproof.Statement{
			Ciphertext: kCiphertext,
			EK:         myEK,
			Verifier:   members[j].zkp,
		}, rangeproof.Witness{M: k.BigInt(), Rho: kRandomness})
		if err != nil {
			return nil, fmt.Errorf("sign round 1: range proof for signer %d: %w", j, err)
		}
		payload, err := wire.Marshal(P2p1{Proof: rangeProofToWire(proof)})
		if err != nil {
			return nil, fmt.Errorf("sign round 1: marshal p2p: %w", err)
		}
		if err := p2psOut.Set(collections.NewTypedUsize[SignerID](uint32(j)), payload); err != nil {
			return nil, err
		}
	}

	r2 := &round2{
		rnd:         rnd,
		msgHash:     msgHash,
		members:     members,
		y:           y,
		wMine:       wMine,
		gamma:       gamma,
		k:           k,
		Gamma:       Gamma,
		gammaCommit: gammaCommit,
		gammaReveal: gammaReveal,
		kCiphertext: kCiphertext,
		kRandomness: kRandomness,
		dk:          share.Share.DK,
	}

	return sdk.NewRound[Signature, SignerID, SignerID](
		r2, mySignerID, mySignerID, partyShareCounts, 1, bcastOut, p2psOut,
	)
}
