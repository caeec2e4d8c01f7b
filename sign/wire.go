package sign

import (
	"bytes"
	"math/big"

	"github.com/cronokirby/safenum"

	"github.com/axelarnetwork/tofn-sub000/curve"
	"github.com/axelarnetwork/tofn-sub000/paillier"
	"github.com/axelarnetwork/tofn-sub000/zkproof/chaumpedersen"
	"github.com/axelarnetwork/tofn-sub000/zkproof/mta"
	"github.com/axelarnetwork/tofn-sub000/zkproof/mtawc"
	"github.com/axelarnetwork/tofn-sub000/zkproof/pedersen"
	rangeproof "github.com/axelarnetwork/tofn-sub000/zkproof/range"
)

func pointFromBytesLocal(b []byte) (*curve.Point, error)   { return curve.PointFromBytes(b) }
func scalarFromBytesLocal(b []byte) (*curve.Scalar, error) { return curve.ScalarFromBytes(b) }

// natToBig and natFromBig cross a safenum.Nat to the wire and back, the
// same pattern keygen/wire.go uses: CBOR has native bignum support for
// math/big.Int but no reflection hook for safenum's unexported
// representation.
func natToBig(n *safenum.Nat) *big.Int { return n.Big() }

func natFromBig(b *big.Int) *safenum.Nat { return new(safenum.Nat).SetBytes(b.Bytes()) }

// scalarMod reduces a decrypted MtA summand (large relative to q before
// reduction) into [0, q).
func scalarMod(v *big.Int, q *big.Int) *big.Int {
	return new(big.Int).Mod(v, q)
}

// signedIntToBig converts a decrypted Paillier plaintext's symmetric signed
// representation to a math/big.Int, preserving its sign.
func signedIntToBig(v *safenum.Int) *big.Int {
	b := new(big.Int).SetBytes(v.Abs().Bytes())
	if v.IsNegative() {
		b.Neg(b)
	}
	return b
}

// scalarsEqual compares two scalars by their canonical encoding; curve.Scalar
// has no Equal method of its own.
func scalarsEqual(a, b *curve.Scalar) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// bigToScalar reduces v mod the curve order and encodes it as a Scalar.
func bigToScalar(v *big.Int) (*curve.Scalar, error) {
	reduced := scalarMod(v, curve.Order())
	b := reduced.Bytes()
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return curve.ScalarFromBytes(padded)
}

// rangeProofWire is the wire shape of a rangeproof.Proof.
type rangeProofWire struct {
	S, A, T *big.Int
	S1      *big.Int
	S2      *big.Int
	T2      *big.Int
}

func rangeProofToWire(p *rangeproof.Proof) rangeProofWire {
	return rangeProofWire{S: natToBig(p.S), A: natToBig(p.A), T: natToBig(p.T), S1: p.S1, S2: natToBig(p.S2), T2: p.T2}
}

func rangeProofFromWire(w rangeProofWire) *rangeproof.Proof {
	return &rangeproof.Proof{S: natFromBig(w.S), A: natFromBig(w.A), T: natFromBig(w.T), S1: w.S1, S2: natFromBig(w.S2), T2: w.T2}
}

// rangeProofWcWire is the wire shape of a rangeproof.ProofWc.
type rangeProofWcWire struct {
	S, A, T *big.Int
	U       []byte
	S1      *big.Int
	S2      *big.Int
	T2      *big.Int
}

func rangeProofWcToWire(p *rangeproof.ProofWc) rangeProofWcWire {
	return rangeProofWcWire{S: natToBig(p.S), A: natToBig(p.A), T: natToBig(p.T), U: p.U.Bytes(), S1: p.S1, S2: natToBig(p.S2), T2: p.T2}
}

func rangeProofWcFromWire(w rangeProofWcWire) (*rangeproof.ProofWc, error) {
	u, err := pointFromBytesLocal(w.U)
	if err != nil {
		return nil, err
	}
	return &rangeproof.ProofWc{S: natFromBig(w.S), A: natFromBig(w.A), T: natFromBig(w.T), U: u, S1: w.S1, S2: natFromBig(w.S2), T2: w.T2}, nil
}

// mtaProofWire is the wire shape of an mta.Proof.
type mtaProofWire struct {
	S, A, T *big.Int
	S1      *big.Int
	S2      *big.Int
	T2      *big.Int
}

func mtaProofToWire(p *mta.Proof) mtaProofWire {
	return mtaProofWire{S: natToBig(p.S), A: natToBig(p.A), T: natToBig(p.T), S1: p.S1, S2: natToBig(p.S2), T2: p.T2}
}

func mtaProofFromWire(w mtaProofWire) *mta.Proof {
	return &mta.Proof{S: natFromBig(w.S), A: natFromBig(w.A), T: natFromBig(w.T), S1: w.S1, S2: natFromBig(w.S2), T2: w.T2}
}

// mtawcProofWire is the wire shape of an mtawc.Proof.
type mtawcProofWire struct {
	S, A, T *big.Int
	U       []byte
	S1      *big.Int
	S2      *big.Int
	T2      *big.Int
}

func mtawcProofToWire(p *mtawc.Proof) mtawcProofWire {
	return mtawcProofWire{S: natToBig(p.S), A: natToBig(p.A), T: natToBig(p.T), U: p.U.Bytes(), S1: p.S1, S2: natToBig(p.S2), T2: p.T2}
}

func mtawcProofFromWire(w mtawcProofWire) (*mtawc.Proof, error) {
	u, err := pointFromBytesLocal(w.U)
	if err != nil {
		return nil, err
	}
	return &mtawc.Proof{S: natFromBig(w.S), A: natFromBig(w.A), T: natFromBig(w.T), U: u, S1: w.S1, S2: natFromBig(w.S2), T2: w.T2}, nil
}

// pedersenProofWire is the wire shape of a pedersen.Proof.
type pedersenProofWire struct {
	A      []byte
	Z1, Z2 []byte
}

func pedersenProofToWire(p *pedersen.Proof) pedersenProofWire {
	return pedersenProofWire{A: p.A.Bytes(), Z1: p.Z1.Bytes(), Z2: p.Z2.Bytes()}
}

func pedersenProofFromWire(w pedersenProofWire) (*pedersen.Proof, error) {
	a, err := pointFromBytesLocal(w.A)
	if err != nil {
		return nil, err
	}
	z1, err := scalarFromBytesLocal(w.Z1)
	if err != nil {
		return nil, err
	}
	z2, err := scalarFromBytesLocal(w.Z2)
	if err != nil {
		return nil, err
	}
	return &pedersen.Proof{A: a, Z1: z1, Z2: z2}, nil
}

// pedersenProofWcWire is the wire shape of a pedersen.ProofWc.
type pedersenProofWcWire struct {
	A, B   []byte
	Z1, Z2 []byte
}

func pedersenProofWcToWire(p *pedersen.ProofWc) pedersenProofWcWire {
	return pedersenProofWcWire{A: p.A.Bytes(), B: p.B.Bytes(), Z1: p.Z1.Bytes(), Z2: p.Z2.Bytes()}
}

func pedersenProofWcFromWire(w pedersenProofWcWire) (*pedersen.ProofWc, error) {
	a, err := pointFromBytesLocal(w.A)
	if err != nil {
		return nil, err
	}
	b, err := pointFromBytesLocal(w.B)
	if err != nil {
		return nil, err
	}
	z1, err := scalarFromBytesLocal(w.Z1)
	if err != nil {
		return nil, err
	}
	z2, err := scalarFromBytesLocal(w.Z2)
	if err != nil {
		return nil, err
	}
	return &pedersen.ProofWc{A: a, B: b, Z1: z1, Z2: z2}, nil
}

// chaumPedersenProofWire is the wire shape of a chaumpedersen.Proof.
type chaumPedersenProofWire struct {
	A1, A2 []byte
	Z      []byte
}

func chaumPedersenProofToWire(p *chaumpedersen.Proof) chaumPedersenProofWire {
	return chaumPedersenProofWire{A1: p.A1.Bytes(), A2: p.A2.Bytes(), Z: p.Z.Bytes()}
}

func chaumPedersenProofFromWire(w chaumPedersenProofWire) (*chaumpedersen.Proof, error) {
	a1, err := pointFromBytesLocal(w.A1)
	if err != nil {
		return nil, err
	}
	a2, err := pointFromBytesLocal(w.A2)
	if err != nil {
		return nil, err
	}
	z, err := scalarFromBytesLocal(w.Z)
	if err != nil {
		return nil, err
	}
	return &chaumpedersen.Proof{A1: a1, A2: a2, Z: z}, nil
}

// ciphertextToBig and ciphertextFromBig cross a paillier.Ciphertext to the
// wire and back, the same reasoning as natToBig/natFromBig.
func ciphertextToBig(ct *paillier.Ciphertext) *big.Int { return natToBig(ct.Nat()) }

func ciphertextFromBig(b *big.Int) *paillier.Ciphertext {
	return paillier.CiphertextFromNat(natFromBig(b))
}
