package jsonb_test

import (
	"encoding/binary"
	"math/big"
	"testing"

	pingcaperrors "github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongzhxu/jsonbparser/jsonb"
	"github.com/gongzhxu/jsonbparser/jsonb/jsonbtest"
)

func errorsCause(err error) error { return pingcaperrors.Cause(err) }

func TestDecodeLiteralScenarios(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want func(t *testing.T, v jsonb.Value)
	}{
		{"empty array", jsonbtest.EmptyArray(), func(t *testing.T, v jsonb.Value) {
			arr, ok := v.Array()
			require.True(t, ok)
			assert.Empty(t, arr)
		}},
		{"empty object", jsonbtest.EmptyObject(), func(t *testing.T, v jsonb.Value) {
			obj, ok := v.Object()
			require.True(t, ok)
			assert.Empty(t, obj)
		}},
		{"scalar true", jsonbtest.ScalarTrue(), func(t *testing.T, v jsonb.Value) {
			b, ok := v.Bool()
			require.True(t, ok)
			assert.True(t, b)
		}},
		{"scalar null", jsonbtest.ScalarNull(), func(t *testing.T, v jsonb.Value) {
			assert.True(t, v.IsNull())
		}},
		{"scalar hello", jsonbtest.ScalarHello(), func(t *testing.T, v jsonb.Value) {
			s, ok := v.Str()
			require.True(t, ok)
			assert.Equal(t, "hello", s)
		}},
		{`["a", []]`, jsonbtest.ArrayAEmptyArray(), func(t *testing.T, v jsonb.Value) {
			arr, ok := v.Array()
			require.True(t, ok)
			require.Len(t, arr, 2)

			s, ok := arr[0].Str()
			require.True(t, ok)
			assert.Equal(t, "a", s)

			inner, ok := arr[1].Array()
			require.True(t, ok)
			assert.Empty(t, inner)
		}},
		{`{"a":"b"}`, jsonbtest.ObjectAB(), func(t *testing.T, v jsonb.Value) {
			obj, ok := v.Object()
			require.True(t, ok)
			require.Len(t, obj, 1)
			s, ok := obj["a"].Str()
			require.True(t, ok)
			assert.Equal(t, "b", s)
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := jsonb.Decode(c.raw)
			require.NoError(t, err)
			c.want(t, v)
		})
	}
}

func TestDecodeRoundTripsArbitraryTrees(t *testing.T) {
	tree := jsonbtest.Arr(
		jsonbtest.Str("x"),
		jsonbtest.Obj(
			jsonbtest.Pair("k1", jsonbtest.Int(42)),
			jsonbtest.Pair("k2", jsonbtest.Bool(false)),
			jsonbtest.Pair("k3", jsonbtest.Null()),
		),
		jsonbtest.Arr(),
		jsonbtest.Int(-7),
	)

	v, err := jsonb.Decode(jsonbtest.Encode(tree))
	require.NoError(t, err)

	arr, ok := v.Array()
	require.True(t, ok)
	require.Len(t, arr, 4)

	s, ok := arr[0].Str()
	require.True(t, ok)
	assert.Equal(t, "x", s)

	obj, ok := arr[1].Object()
	require.True(t, ok)
	i, ok := obj["k1"].Int()
	require.True(t, ok)
	assert.EqualValues(t, 42, i)
	b, ok := obj["k2"].Bool()
	require.True(t, ok)
	assert.False(t, b)
	assert.True(t, obj["k3"].IsNull())

	inner, ok := arr[2].Array()
	require.True(t, ok)
	assert.Empty(t, inner)

	i, ok = arr[3].Int()
	require.True(t, ok)
	assert.EqualValues(t, -7, i)
}

func TestDecodeNumericExactIntegerRoundTrip(t *testing.T) {
	big63, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	tree := jsonbtest.BigInt(new(big.Int).Neg(big63))
	v, err := jsonb.Decode(jsonbtest.Encode(tree))
	require.NoError(t, err)

	dec, ok := v.Decimal()
	require.True(t, ok)
	assert.Equal(t, "-123456789012345678901234567890", dec.String())

	// Out of int64 range: Int() reports false, Float() still succeeds as
	// an approximation.
	_, isInt := v.Int()
	assert.False(t, isInt)
	f, isFloat := v.Float()
	require.True(t, isFloat)
	assert.Less(t, f, 0.0)
}

func TestDecodeNumericFractional(t *testing.T) {
	tree := jsonbtest.Numeric(big.NewInt(3140), -2, false)
	v, err := jsonb.Decode(jsonbtest.Encode(tree))
	require.NoError(t, err)

	f, ok := v.Float()
	require.True(t, ok)
	assert.InDelta(t, 31.40, f, 1e-9)

	_, isInt := v.Int()
	assert.False(t, isInt)
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	_, err := jsonb.Decode([]byte{0x01, 0x02})
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrTruncated, errorsCause(err))
}

func TestDecodeRejectsBadRootHeader(t *testing.T) {
	raw := jsonbtest.EmptyArray()
	// Clear both IS_ARRAY and IS_OBJECT bits.
	raw[3] = 0x00
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadRootHeader, errorsCause(err))
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	raw := jsonbtest.ScalarHello()
	// Overwrite the 5-byte string payload with an invalid UTF-8 sequence.
	copy(raw[8:], []byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb})
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrInvalidUTF8, errorsCause(err))
}

func TestDecodeRejectsBadNestedContainerHeader(t *testing.T) {
	tree := jsonbtest.Arr(jsonbtest.Arr())
	raw := jsonbtest.Encode(tree)
	// The nested (empty) array's header starts right after the outer
	// header and its single entry word, at byte 8; clear its IS_ARRAY bit
	// so it is neither array nor object.
	raw[11] = 0x00
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadHeader, errorsCause(err))
}

func TestDecodeRejectsUnknownEntryTypeCode(t *testing.T) {
	tree := jsonbtest.Arr(jsonbtest.Null())
	raw := jsonbtest.Encode(tree)
	// Overwrite the one JEntry with type code 6 (0x60000000), which the
	// format never assigns a meaning to, keeping length 0.
	binary.LittleEndian.PutUint32(raw[4:8], 0x60000000)
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadEntry, errorsCause(err))
}

func TestDecodeRejectsNullEntryWithNonzeroLength(t *testing.T) {
	tree := jsonbtest.Arr(jsonbtest.Null())
	raw := jsonbtest.Encode(tree)
	// Keep the null type bits but claim a nonzero length.
	binary.LittleEndian.PutUint32(raw[4:8], 0x40000005)
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadEntry, errorsCause(err))
}

func TestDecodeRejectsMalformedObjectKey(t *testing.T) {
	tree := jsonbtest.Obj(jsonbtest.Pair("k", jsonbtest.Str("v")))
	raw := jsonbtest.Encode(tree)
	// The key JEntry (index 0) is normally a string; retype it as null so
	// the object builder finds a non-string key.
	binary.LittleEndian.PutUint32(raw[4:8], 0x40000000)
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrMalformedObject, errorsCause(err))
}

func TestDecodeRejectsBadNumericSign(t *testing.T) {
	tree := jsonbtest.Arr(jsonbtest.Int(5))
	raw := jsonbtest.Encode(tree)
	// The numeric payload starts at byte 8 (header + one entry word); its
	// sign field sits 8 bytes further in (4-byte varlena + ndigits +
	// weight). 0x8000 is none of positive/negative/NaN.
	binary.LittleEndian.PutUint16(raw[16:18], 0x8000)
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadNumeric, errorsCause(err))
}

func TestDecodeRejectsTruncatedNumericHeader(t *testing.T) {
	tree := jsonbtest.Arr(jsonbtest.Int(5))
	raw := jsonbtest.Encode(tree)
	// Shrink the numeric entry's declared length to 2 bytes, too short to
	// hold even the ndigits/weight/sign/dscale header.
	binary.LittleEndian.PutUint32(raw[4:8], 0x10000000|2)
	_, err := jsonb.Decode(raw)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrBadNumeric, errorsCause(err))
}

func TestDecodeEnforcesMaxDepth(t *testing.T) {
	tree := jsonbtest.Null()
	for i := 0; i < 5; i++ {
		tree = jsonbtest.Arr(tree)
	}
	raw := jsonbtest.Encode(tree)

	_, err := jsonb.DecodeWithMaxDepth(raw, 2)
	require.Error(t, err)
	assert.Equal(t, jsonb.ErrTooDeep, errorsCause(err))

	v, err := jsonb.DecodeWithMaxDepth(raw, 10)
	require.NoError(t, err)
	assert.Equal(t, jsonb.KindArray, v.Kind())
}

func TestDescribeEntryAndContainerAreTotal(t *testing.T) {
	d := jsonb.DescribeEntry(0xE5000010)
	assert.Equal(t, jsonb.EntryUnknown, d.Kind)

	c := jsonb.DescribeContainer(0x00000000)
	assert.Equal(t, jsonb.ContainerInvalid, c.Kind)
}

func TestMarshalJSON(t *testing.T) {
	tree := jsonbtest.Obj(
		jsonbtest.Pair("a", jsonbtest.Str("b")),
	)
	v, err := jsonb.Decode(jsonbtest.Encode(tree))
	require.NoError(t, err)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, string(out))
}
