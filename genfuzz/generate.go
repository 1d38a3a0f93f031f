// Package genfuzz is the random JSON generator the core decoder's tests
// fuzz against (spec.md §1: "a random JSON generator used only for test
// fuzzing, never imported by the decoder itself"). It is grounded on
// original_source/jsonb_parser/faker.py's JsonFaker, translated into Go.
package genfuzz

import (
	"math/big"
	"math/rand"

	"github.com/pingcap/errors"

	"github.com/gongzhxu/jsonbparser/jsonb"
	"github.com/gongzhxu/jsonbparser/jsonb/jsonbtest"
)

// Faker generates random jsonbtest.Node trees, mirroring JsonFaker's
// shrinking-container-chance recursive descent. MaxDepth bounds how many
// container levels deep RandomJSON is willing to recurse: once reached,
// only scalars are produced, the way a depth-limited fuzzer must to avoid
// generating documents no decoder could ever accept.
type Faker struct {
	rng *rand.Rand

	ContainerChance float64
	ContainerMax    int
	StringMax       int
	KeyMax          int
	MaxDepth        int
}

// NewFaker builds a Faker drawing from rng, with JsonFaker's defaults and
// the given maximum container nesting depth.
func NewFaker(rng *rand.Rand, maxDepth int) *Faker {
	return &Faker{
		rng:             rng,
		ContainerChance: 0.66,
		ContainerMax:    100,
		StringMax:       100,
		KeyMax:          50,
		MaxDepth:        maxDepth,
	}
}

// Generate builds a random, fully decoded jsonb.Value tree bounded to
// maxDepth levels of container nesting, drawing randomness from rng. It
// is the "reference random-document generator" supplementing spec.md's
// core decoder tests (original_source/jsonb_parser/faker.py's
// json_faker), round-tripped through jsonbtest's encoder and the
// decoder's own public DecodeWithMaxDepth entry point so the returned Value is
// exactly what a real caller would observe. It panics if the generated
// buffer fails to decode, which would indicate a bug in the generator or
// the encoder, not in caller input.
func Generate(rng *rand.Rand, maxDepth int) jsonb.Value {
	f := NewFaker(rng, maxDepth)
	tree := f.RandomJSON(f.ContainerChance, 0)
	raw := jsonbtest.Encode(tree)
	v, err := jsonb.DecodeWithMaxDepth(raw, maxDepth+1)
	if err != nil {
		panic(errors.Annotatef(err, "genfuzz: generated buffer failed to decode"))
	}
	return v
}

// RandomJSON returns a random value, recursing into containers with
// probability contChance as long as depth has not yet reached MaxDepth.
func (f *Faker) RandomJSON(contChance float64, depth int) jsonbtest.Node {
	if depth < f.MaxDepth && f.rng.Float64() < contChance {
		return f.RandomContainer(contChance, depth)
	}
	return f.RandomScalar()
}

// RandomContainer returns a random array or object.
func (f *Faker) RandomContainer(contChance float64, depth int) jsonbtest.Node {
	if f.rng.Intn(2) == 0 {
		return f.RandomList(contChance, depth)
	}
	return f.RandomObject(contChance, depth)
}

// RandomScalar returns a random non-container leaf: null, bool, string, or
// numeric, unlike JsonFaker's Python counterpart which (per its own TODO)
// left numbers out because its target format had no number support.
// jsonb's wire format always has one, so numerics are included here.
func (f *Faker) RandomScalar() jsonbtest.Node {
	switch f.rng.Intn(4) {
	case 0:
		return jsonbtest.Null()
	case 1:
		return jsonbtest.Bool(f.rng.Intn(2) == 0)
	case 2:
		return jsonbtest.Str(f.RandomString(f.StringMax, 0.2))
	default:
		return f.RandomNumeric()
	}
}

// RandomList returns a random array, each element recursing at half the
// container chance and one level deeper, per JsonFaker.random_list.
func (f *Faker) RandomList(contChance float64, depth int) jsonbtest.Node {
	n := f.rng.Intn(f.ContainerMax)
	items := make([]jsonbtest.Node, n)
	for i := range items {
		items[i] = f.RandomJSON(contChance/2.0, depth+1)
	}
	return jsonbtest.Arr(items...)
}

// RandomObject returns a random object, per JsonFaker.random_object.
func (f *Faker) RandomObject(contChance float64, depth int) jsonbtest.Node {
	n := f.rng.Intn(f.ContainerMax)
	pairs := make([]jsonbtest.KV, n)
	for i := range pairs {
		key := f.RandomString(f.KeyMax, 0.2)
		pairs[i] = jsonbtest.Pair(key, f.RandomJSON(contChance/2.0, depth+1))
	}
	return jsonbtest.Obj(pairs...)
}

// RandomString returns a random valid Unicode string, occasionally
// picking a non-ASCII code point (never a surrogate), per
// JsonFaker.random_str.
func (f *Faker) RandomString(strMax int, uniChance float64) string {
	length := f.rng.Intn(strMax + 1)
	runes := make([]rune, 0, length)
	for len(runes) < length {
		var c rune
		if f.rng.Float64() < uniChance {
			c = rune(1 + f.rng.Intn(0x110000-1))
			if (c >= 0xD800 && c <= 0xDBFF) || (c >= 0xDC00 && c <= 0xDFFF) {
				continue
			}
		} else {
			c = rune(1 + f.rng.Intn(127))
		}
		runes = append(runes, c)
	}
	return string(runes)
}

// RandomNumeric returns a random numeric leaf: a wide-range integer,
// rescaled by a random power of ten between 10^-20 and 10^20, per
// JsonFaker.random_int/random_float (there rendered as int/float; here as
// a single Numeric node since the wire format draws no such distinction).
func (f *Faker) RandomNumeric() jsonbtest.Node {
	mag := new(big.Int).Lsh(big.NewInt(1), uint(10+f.rng.Intn(60)))
	v := new(big.Int).Rand(f.rng, mag)
	if f.rng.Intn(2) == 0 {
		v.Neg(v)
	}
	exp := f.rng.Intn(41) - 20
	return jsonbtest.Numeric(v, exp, v.Sign() < 0)
}
