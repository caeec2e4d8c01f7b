package keygen

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/commit"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/sdk"
	"github.com/axelarnetwork/tofn-sub000/vss"
	"github.com/axelarnetwork/tofn-sub000/wire"
	"github.com/axelarnetwork/tofn-sub000/zkproof/paillierkey"
	"github.com/axelarnetwork/tofn-sub000/zksetup"
)

// Bcast1 is round 1's broadcast: a commitment to this party's VSS constant
// term y_i, plus the Paillier key and ZK setup it will use for the rest of
// the run, each accompanied by a proof that it was generated correctly.
type Bcast1 struct {
	YCommit     commit.Commitment
	EK          *big.Int
	EKProof     pkProofWire
	Nhat, H1, H2 *big.Int
	ZkpProofFwd cdlogProofWire
	ZkpProofInv cdlogProofWire
}

// New begins keygen for one local share: it generates this party's VSS
// polynomial, Paillier keypair, and ZK setup, and returns the first Round
// already carrying round 1's broadcast - there is nothing to receive before
// round 1 runs, so unlike every later round it isn't built via an Executer.
func New(
	rnd io.Reader,
	threshold int,
	myShareID collections.TypedUsize[ShareID],
	myPartyID collections.TypedUsize[PartyID],
	partyShareCounts *sdk.PartyShareCounts[PartyID],
) (*sdk.Round[SecretKeyShare, ShareID, PartyID], error) {
	n := partyShareCounts.TotalShareCount()

	secret, err := curve.SampleScalar(rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: sample secret: %w", err)
	}
	vssCommits, vssShares, err := vss.Share(rnd, threshold, n, secret)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: vss share: %w", err)
	}

	yCommit, yReveal, err := commit.New(rnd, vssCommits.Constant().Bytes())
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: commit: %w", err)
	}

	ek, dk, err := paillier.KeyGen(rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: paillier keygen: %w", err)
	}
	// Ñ gets its own safe primes, so it is a modulus distinct from the Paillier N.
	_, zkDK, err := paillier.KeyGen(rnd)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: zksetup primes: %w", err)
	}
	zkp, zkpSecret, err := zksetup.New(rnd, zkDK.P(), zkDK.Q())
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: zksetup: %w", err)
	}
	zkpProof, zkpInvProof, err := zkp.Prove(rnd, zkpSecret)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: zksetup proof: %w", err)
	}

	phiMod := safenum.ModulusFromNat(dk.Phi())
	ekWitness := paillierkey.Witness{
		Phi:        dk.Phi(),
		NInvModPhi: new(safenum.Nat).ModInverse(ek.N(), phiMod),
	}
	ekProof := paillierkey.Prove(paillierkey.Statement{N: ek.N()}, ekWitness)

	bcast := Bcast1{
		YCommit:     yCommit,
		EK:          natToBig(ek.N()),
		EKProof:     pkProofToWire(ekProof),
		Nhat:        natToBig(zkp.Nhat),
		H1:          natToBig(zkp.H1),
		H2:          natToBig(zkp.H2),
		ZkpProofFwd: cdlogProofToWire(zkpProof),
		ZkpProofInv: cdlogProofToWire(zkpInvProof),
	}
	bcastOut, err := wire.Marshal(bcast)
	if err != nil {
		return nil, fmt.Errorf("keygen round 1: marshal bcast: %w", err)
	}

	r2 := &round2{
		rnd:        rnd,
		threshold:  threshold,
		dk:         dk,
		vssCommits: vssCommits,
		vssShares:  vssShares,
		yReveal:    yReveal,
	}

	return sdk.NewRound[SecretKeyShare, ShareID, PartyID](
		r2, myShareID, myPartyID, partyShareCounts, 1, bcastOut, nil,
	)
}
