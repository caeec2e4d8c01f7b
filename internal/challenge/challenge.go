// Package challenge builds domain-separated Fiat-Shamir challenges for the
// zkproof suite using blake3, and exposes a blake3 XOF for the Paillier
// square-free proof's M parallel challenges. Every proof chains a domain tag
// ahead of its statement bytes so a transcript generated under one domain
// can never verify under another — the domain-separation property required
// of every proof system in the suite.
package challenge

import (
	"math/big"

	"github.com/zeebo/blake3"
)

// Domain tags, one per proof system. Each is a fixed ASCII string; changing
// any of these is a wire-incompatible change.
const (
	DomainCompositeDLog        = "tofn/zk/composite-dlog"
	DomainCompositeDLogInverse = "tofn/zk/composite-dlog-inverse"
	DomainPaillierKey          = "tofn/zk/paillier-key"
	DomainRange                = "tofn/zk/range"
	DomainRangeWc              = "tofn/zk/range-wc"
	DomainMta                  = "tofn/zk/mta"
	DomainMtaWc                = "tofn/zk/mta-wc"
	DomainPedersen             = "tofn/zk/pedersen"
	DomainSchnorr              = "tofn/zk/schnorr"
	DomainChaumPedersen        = "tofn/zk/chaum-pedersen"
)

// Builder accumulates transcript bytes behind a domain tag.
type Builder struct {
	h *blake3.Hasher
}

// New starts a fresh transcript under domain.
func New(domain string) *Builder {
	h := blake3.New()
	h.Write([]byte(domain))
	return &Builder{h: h}
}

// Write appends transcript bytes, length-prefixed so that concatenation
// boundaries can't be shifted by an adversary (a classic Fiat-Shamir
// transcript pitfall).
func (b *Builder) Write(data []byte) *Builder {
	var lenBuf [8]byte
	n := uint64(len(data))
	for i := 0; i < 8; i++ {
		lenBuf[i] = byte(n >> (8 * (7 - i)))
	}
	b.h.Write(lenBuf[:])
	b.h.Write(data)
	return b
}

// WriteAll is a convenience for chaining several byte slices.
func (b *Builder) WriteAll(datas ...[]byte) *Builder {
	for _, d := range datas {
		b.Write(d)
	}
	return b
}

// Bytes finalizes the transcript to a 32-byte digest.
func (b *Builder) Bytes() []byte {
	sum := b.h.Sum(nil)
	return sum
}

// Int finalizes the transcript and reduces it into Z_modulus, for challenges
// that must be a proper ring/field element rather than raw bytes.
func (b *Builder) Int(modulus *big.Int) *big.Int {
	digest := b.Bytes()
	i := new(big.Int).SetBytes(digest)
	return i.Mod(i, modulus)
}

// XOF derives outLen pseudorandom bytes from domain and transcript data,
// used by the Paillier square-free proof to derive its M=11 parallel
// challenges ρ_i from a single transcript.
func XOF(domain string, transcript [][]byte, outLen int) []byte {
	h := blake3.New()
	h.Write([]byte(domain))
	for _, t := range transcript {
		h.Write(t)
	}
	out := make([]byte, outLen)
	xof := h.Digest()
	_, _ = xof.Read(out)
	return out
}

// XOFInts derives count independent challenges each reduced mod modulus,
// by reading consecutive chunks of XOF output and reducing them.
func XOFInts(domain string, transcript [][]byte, count int, modulus *big.Int) []*big.Int {
	chunk := (modulus.BitLen()+7)/8 + 16
	raw := XOF(domain, transcript, chunk*count)
	out := make([]*big.Int, count)
	for i := 0; i < count; i++ {
		v := new(big.Int).SetBytes(raw[i*chunk : (i+1)*chunk])
		out[i] = v.Mod(v, modulus)
	}
	return out
}
