package keygen

import (
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/collections"
	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/zkproof/compositedlog"
	"github.com/axelarnetwork/tofn-sub000/zkproof/paillierkey"
	"github.com/axelarnetwork/tofn-sub000/zkproof/schnorr"
)

// shareIndex maps a 0-based ShareID to the 1-based VSS evaluation point
// every party uses for that share, e.g. as the x-coordinate in the Feldman
// polynomial.
func shareIndex(id collections.TypedUsize[ShareID]) *curve.Scalar {
	return curve.ScalarFromInt(id.AsUsize() + 1)
}

// schnorrProofWire is the wire shape of a schnorr.Proof.
type schnorrProofWire struct {
	A []byte
	Z []byte
}

func schnorrProofToWire(p *schnorr.Proof) schnorrProofWire {
	return schnorrProofWire{A: p.A.Bytes(), Z: p.Z.Bytes()}
}

func schnorrProofFromWire(w schnorrProofWire) (*schnorr.Proof, error) {
	a, err := curve.PointFromBytes(w.A)
	if err != nil {
		return nil, err
	}
	z, err := curve.ScalarFromBytes(w.Z)
	if err != nil {
		return nil, err
	}
	return &schnorr.Proof{A: a, Z: z}, nil
}

// scalarToPlaintext embeds a curve scalar as a Paillier plaintext: since q
// (the secp256k1 order) is far smaller than any valid Paillier modulus, the
// scalar's unsigned 32-byte representation is already a valid element of
// Z_N with no reduction needed.
func scalarToPlaintext(s *curve.Scalar) *paillier.Plaintext {
	return new(safenum.Nat).SetBytes(s.Bytes())
}

// plaintextToScalar recovers a curve scalar from a decrypted Paillier
// plaintext. Share values are always small non-negative integers relative
// to N, so the signed representative Decrypt returns is never actually
// negative here; Abs just makes that assumption explicit.
func plaintextToScalar(pt *safenum.Int) (*curve.Scalar, error) {
	b := pt.Abs().Bytes()
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return curve.ScalarFromBytes(padded)
}

// natToBig and natFromBig cross a safenum.Nat to the wire and back: CBOR
// has native bignum support for math/big.Int but no reflection hook for
// safenum's unexported limb representation, so every safenum value that
// crosses a round boundary is converted at the edge.
func natToBig(n *safenum.Nat) *big.Int { return n.Big() }

func natFromBig(b *big.Int) *safenum.Nat { return new(safenum.Nat).SetBytes(b.Bytes()) }

// cdlogProofWire is the wire shape of a compositedlog.Proof.
type cdlogProofWire struct {
	A *big.Int
	Z *big.Int
}

func cdlogProofToWire(p *compositedlog.Proof) cdlogProofWire {
	return cdlogProofWire{A: natToBig(p.A), Z: p.Z}
}

func cdlogProofFromWire(w cdlogProofWire) *compositedlog.Proof {
	return &compositedlog.Proof{A: natFromBig(w.A), Z: w.Z}
}

// pkProofWire is the wire shape of a paillierkey.Proof.
type pkProofWire struct {
	Sigmas [paillierkey.ParamM]*big.Int
}

func pkProofToWire(p *paillierkey.Proof) pkProofWire {
	var w pkProofWire
	for i, s := range p.Sigmas {
		w.Sigmas[i] = natToBig(s)
	}
	return w
}

func pkProofFromWire(w pkProofWire) *paillierkey.Proof {
	var p paillierkey.Proof
	for i, b := range w.Sigmas {
		p.Sigmas[i] = natFromBig(b)
	}
	return &p
}
