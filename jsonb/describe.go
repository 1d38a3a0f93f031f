package jsonb

import "fmt"

// EntryKind names a JEntry type code for diagnostics.
type EntryKind string

const (
	EntryString    EntryKind = "string"
	EntryNumeric   EntryKind = "numeric"
	EntryBoolTrue  EntryKind = "true"
	EntryBoolFalse EntryKind = "false"
	EntryNull      EntryKind = "null"
	EntryContainer EntryKind = "container"
	EntryUnknown   EntryKind = "unknown"
)

// EntryDescription is a human-readable disassembly of a raw JEntry word,
// grounded on the original parser's dis_je debug helper.
type EntryDescription struct {
	Kind      EntryKind
	OffLen    uint32
	HasOffset bool
}

func (d EntryDescription) String() string {
	rel := "len"
	if d.HasOffset {
		rel = "off"
	}
	return fmt.Sprintf("%s(%s=%d)", d.Kind, rel, d.OffLen)
}

// DescribeEntry decodes a raw JEntry word into a human-readable
// description, without validating it against any buffer. It never fails:
// unrecognized type codes are reported as EntryUnknown.
func DescribeEntry(je uint32) EntryDescription {
	kind := EntryUnknown
	switch jeTypeOf(je) {
	case jeTypeString:
		kind = EntryString
	case jeTypeNumeric:
		kind = EntryNumeric
	case jeTypeBoolTrue:
		kind = EntryBoolTrue
	case jeTypeBoolFalse:
		kind = EntryBoolFalse
	case jeTypeNull:
		kind = EntryNull
	case jeTypeContainer:
		kind = EntryContainer
	}
	return EntryDescription{Kind: kind, OffLen: jeOffLen(je), HasOffset: jeHasOff(je)}
}

// ContainerKind names a JContainer's array/object bit for diagnostics.
type ContainerKind string

const (
	ContainerArray   ContainerKind = "array"
	ContainerObject  ContainerKind = "object"
	ContainerInvalid ContainerKind = "invalid"
)

// ContainerDescription is a human-readable disassembly of a raw
// JContainer word, grounded on the original parser's dis_jc debug helper.
type ContainerDescription struct {
	Kind   ContainerKind
	Size   int
	Scalar bool
}

func (d ContainerDescription) String() string {
	if d.Scalar {
		return fmt.Sprintf("%s[scalar](size=%d)", d.Kind, d.Size)
	}
	return fmt.Sprintf("%s(size=%d)", d.Kind, d.Size)
}

// DescribeContainer decodes a raw JContainer word into a human-readable
// description. It never fails: a header with neither or both of
// IS_ARRAY/IS_OBJECT set is reported as ContainerInvalid.
func DescribeContainer(jc uint32) ContainerDescription {
	kind := ContainerInvalid
	switch {
	case jcIsArray(jc) && !jcIsObject(jc):
		kind = ContainerArray
	case jcIsObject(jc) && !jcIsArray(jc):
		kind = ContainerObject
	}
	return ContainerDescription{Kind: kind, Size: jcCount(jc), Scalar: jcIsScalar(jc)}
}
