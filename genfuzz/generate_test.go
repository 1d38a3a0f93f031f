package genfuzz_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongzhxu/jsonbparser/genfuzz"
	"github.com/gongzhxu/jsonbparser/jsonb"
	"github.com/gongzhxu/jsonbparser/jsonb/jsonbtest"
)

func TestFakerProducesDecodableTrees(t *testing.T) {
	f := genfuzz.NewFaker(rand.New(rand.NewSource(1)), 6)
	for i := 0; i < 50; i++ {
		tree := f.RandomJSON(f.ContainerChance, 0)
		raw := jsonbtest.Encode(tree)
		_, err := jsonb.Decode(raw)
		require.NoError(t, err)
	}
}

func TestFakerIsDeterministicForAGivenSeed(t *testing.T) {
	a := genfuzz.NewFaker(rand.New(rand.NewSource(42)), 6).RandomJSON(0.66, 0)
	b := genfuzz.NewFaker(rand.New(rand.NewSource(42)), 6).RandomJSON(0.66, 0)
	assert.Equal(t, jsonbtest.Encode(a), jsonbtest.Encode(b))
}

func TestGenerateCasesNamesEachCaseUniquely(t *testing.T) {
	cases := genfuzz.GenerateCases(genfuzz.NewFaker(rand.New(rand.NewSource(7)), 6), 20)
	seen := make(map[string]bool, len(cases))
	for _, c := range cases {
		assert.False(t, seen[c.Name], "duplicate case name %s", c.Name)
		seen[c.Name] = true
		_, err := jsonb.Decode(c.Raw)
		assert.NoError(t, err)
	}
}

func TestGenerateReturnsDecodedValueBoundedByMaxDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 20; i++ {
		v := genfuzz.Generate(rng, 3)
		assertDepthAtMost(t, v, 3)
	}
}

func assertDepthAtMost(t *testing.T, v jsonb.Value, remaining int) {
	t.Helper()
	arr, isArr := v.Array()
	obj, isObj := v.Object()
	if !isArr && !isObj {
		return
	}
	if remaining <= 0 {
		t.Fatalf("nesting exceeded allotted depth")
	}
	for _, e := range arr {
		assertDepthAtMost(t, e, remaining-1)
	}
	for _, e := range obj {
		assertDepthAtMost(t, e, remaining-1)
	}
}
