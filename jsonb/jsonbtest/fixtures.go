// Package jsonbtest builds raw jsonb byte buffers for use by the jsonb
// package's own tests. It deliberately does not import jsonb: it is an
// independent, from-scratch encoder used only to manufacture well-formed
// (and deliberately malformed) fixtures, the way dump/setup_test.go keeps
// its fixture-handler type out of the package under test.
package jsonbtest

import (
	"encoding/binary"
	"math/big"
	"sort"
)

// JEntry/JContainer bit constants, duplicated from the decoder's own
// (unexported) constants so this package has no dependency on jsonb.
const (
	jeTypeString    uint32 = 0x00000000
	jeTypeNumeric   uint32 = 0x10000000
	jeTypeBoolFalse uint32 = 0x20000000
	jeTypeBoolTrue  uint32 = 0x30000000
	jeTypeNull      uint32 = 0x40000000
	jeTypeContainer uint32 = 0x50000000

	jcScalarBit uint32 = 0x10000000
	jcObjectBit uint32 = 0x20000000
	jcArrayBit  uint32 = 0x40000000
)

// Node is one value in a tree to be encoded into a jsonb byte buffer.
type Node struct {
	kind nodeKind

	boolVal bool
	str     string

	numCoeff *big.Int
	numExp   int
	numNeg   bool

	arr []Node
	obj []KV
}

type nodeKind int

const (
	kindNull nodeKind = iota
	kindBool
	kindString
	kindNumeric
	kindArray
	kindObject
)

// KV is one key/value pair of an object literal.
type KV struct {
	Key string
	Val Node
}

func Null() Node             { return Node{kind: kindNull} }
func Bool(b bool) Node       { return Node{kind: kindBool, boolVal: b} }
func Str(s string) Node      { return Node{kind: kindString, str: s} }
func Arr(items ...Node) Node { return Node{kind: kindArray, arr: items} }

// Obj builds an object literal. Pairs are re-sorted into the on-disk
// ascending length-then-bytewise key order (spec §3 invariant), even
// though the decoder does not require it.
func Obj(pairs ...KV) Node {
	sorted := append([]KV(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Key, sorted[j].Key
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return Node{kind: kindObject, obj: sorted}
}

func Pair(key string, val Node) KV { return KV{Key: key, Val: val} }

// Numeric builds a numeric literal from an explicit coefficient, base-10
// exponent, and sign: the value is coeff*10^exp (or its negation).
func Numeric(coeff *big.Int, exp int, negative bool) Node {
	c := new(big.Int).Abs(coeff)
	return Node{kind: kindNumeric, numCoeff: c, numExp: exp, numNeg: negative}
}

// Int builds a numeric literal holding an exact integer.
func Int(i int64) Node {
	neg := i < 0
	c := big.NewInt(i)
	if neg {
		c.Neg(c)
	}
	return Numeric(c, 0, neg)
}

// BigInt builds a numeric literal holding an arbitrary-precision integer.
func BigInt(v *big.Int) Node {
	neg := v.Sign() < 0
	return Numeric(v, 0, neg)
}

// Encode renders a Node tree into a jsonb byte buffer (spec §3, §4.4,
// §4.5). A non-container root is wrapped in the synthetic 1-element
// scalar array.
func Encode(root Node) []byte {
	switch root.kind {
	case kindArray:
		return buildContainer(false, len(root.arr), arrEntries(root.arr))
	case kindObject:
		return buildContainer(true, len(root.obj), objEntries(root.obj))
	default:
		buf := buildContainer(false, 1, []Node{root})
		h := binary.LittleEndian.Uint32(buf[0:4])
		h |= jcScalarBit
		binary.LittleEndian.PutUint32(buf[0:4], h)
		return buf
	}
}

func arrEntries(items []Node) []Node { return items }

func objEntries(pairs []KV) []Node {
	out := make([]Node, 0, 2*len(pairs))
	for _, p := range pairs {
		out = append(out, Str(p.Key))
	}
	for _, p := range pairs {
		out = append(out, p.Val)
	}
	return out
}

// buildContainer assembles a JContainer header, its JEntries, and their
// values area. HAS_OFF is never set: every JEntry carries a plain length,
// which is a well-formed (if non-stride-compressed) encoding the decoder
// must accept per spec §4.4.
func buildContainer(isObject bool, size int, entries []Node) []byte {
	entryWords := make([]uint32, len(entries))
	var valuesBuf []byte
	voff := 0
	for i, item := range entries {
		payload, typeBits := encodeEntry(item, voff)
		entryWords[i] = typeBits | uint32(len(payload))
		valuesBuf = append(valuesBuf, payload...)
		voff += len(payload)
	}

	header := uint32(size)
	if isObject {
		header |= jcObjectBit
	} else {
		header |= jcArrayBit
	}

	buf := make([]byte, 4, 4+4*len(entries)+len(valuesBuf))
	binary.LittleEndian.PutUint32(buf[0:4], header)
	for _, je := range entryWords {
		var w [4]byte
		binary.LittleEndian.PutUint32(w[:], je)
		buf = append(buf, w[:]...)
	}
	buf = append(buf, valuesBuf...)
	return buf
}

func encodeEntry(item Node, voff int) (payload []byte, typeBits uint32) {
	switch item.kind {
	case kindNull:
		return nil, jeTypeNull
	case kindBool:
		if item.boolVal {
			return nil, jeTypeBoolTrue
		}
		return nil, jeTypeBoolFalse
	case kindString:
		return []byte(item.str), jeTypeString
	case kindNumeric:
		pad := alignPad(voff)
		inner := encodeNumeric(item.numCoeff, item.numExp, item.numNeg)
		return append(make([]byte, pad), inner...), jeTypeNumeric
	case kindArray:
		pad := alignPad(voff)
		inner := buildContainer(false, len(item.arr), arrEntries(item.arr))
		return append(make([]byte, pad), inner...), jeTypeContainer
	case kindObject:
		pad := alignPad(voff)
		inner := buildContainer(true, len(item.obj), objEntries(item.obj))
		return append(make([]byte, pad), inner...), jeTypeContainer
	default:
		panic("jsonbtest: unknown node kind")
	}
}

func alignPad(pos int) int { return (4 - (pos % 4)) % 4 }

var ten4 = big.NewInt(10000)

// encodeNumeric packs coeff*10^exp into PostgreSQL's on-disk numeric
// representation (the inverse of the jsonb package's numeric decoder):
// a 4-byte varlena placeholder, then ndigits/weight/sign/dscale, then the
// base-10000 digit words.
func encodeNumeric(coeff *big.Int, exp int, negative bool) []byte {
	r := exp % 4
	if r < 0 {
		r += 4
	}
	q := (exp - r) / 4

	scaled := new(big.Int).Set(coeff)
	if r > 0 {
		scaled.Mul(scaled, pow10(r))
	}

	var groups []int64
	tmp := new(big.Int).Set(scaled)
	rem := new(big.Int)
	for tmp.Sign() != 0 {
		tmp.DivMod(tmp, ten4, rem)
		groups = append(groups, rem.Int64())
	}
	// groups is least-significant-first; reverse to most-significant-first.
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	ndigits := len(groups)
	weight := 0
	if ndigits > 0 {
		weight = q + ndigits - 1
	}

	sign := uint16(0x0000)
	if negative {
		sign = 0x4000
	}
	dscale := uint16(0)
	if r > 0 {
		dscale = uint16(r)
	}

	buf := make([]byte, 4+8+2*ndigits)
	// The varlena header's own content is never interpreted by the
	// decoder; only its 4-byte width matters.
	binary.LittleEndian.PutUint16(buf[4:6], uint16(int16(ndigits)))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(int16(weight)))
	binary.LittleEndian.PutUint16(buf[8:10], sign)
	binary.LittleEndian.PutUint16(buf[10:12], dscale)
	for i, g := range groups {
		binary.LittleEndian.PutUint16(buf[12+2*i:14+2*i], uint16(g))
	}
	return buf
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// The following return the exact literal byte sequences from spec §8's
// "Concrete scenarios", independent of the Encode/buildContainer path
// above, so tests can check the decoder against the specification's own
// wire bytes rather than only against this package's own encoder.

func EmptyArray() []byte {
	return leWords(0x40000000)
}

func EmptyObject() []byte {
	return leWords(0x20000000)
}

func ScalarTrue() []byte {
	return leWords(0x50000001, 0x30000000)
}

func ScalarNull() []byte {
	return leWords(0x50000001, 0x40000000)
}

func ScalarHello() []byte {
	buf := leWords(0x50000001, 0x00000005)
	return append(buf, "hello"...)
}

func ArrayAEmptyArray() []byte {
	buf := leWords(0x40000002, 0x00000001, 0x50000004)
	buf = append(buf, 'a', 0, 0, 0)
	buf = append(buf, leWords(0x40000000)...)
	return buf
}

func ObjectAB() []byte {
	buf := leWords(0x20000001, 0x00000001, 0x00000001)
	buf = append(buf, 'a', 'b')
	return buf
}

func leWords(words ...uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:4*i+4], w)
	}
	return buf
}
