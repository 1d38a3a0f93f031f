package jsonb

// frame is one level of the explicit work stack used in place of direct
// recursion (spec §9: "the redesign should prefer an explicit work stack
// ... frames carrying {container_pos, entry_count, entry_index, voff,
// partial_result}").
type frame struct {
	isObject    bool
	size        int // N: array element count, or object key/value pair count
	entryCount  int // N for arrays, 2N for objects
	idx         int // next JEntry index to process
	voff        int // running offset into the values area
	entriesPos  int // absolute position of the first JEntry
	valuesStart int // absolute position of the start of the values area

	values []Value // decoded children in JEntry order

	// consumedLen is set on a frame created to decode a nested container;
	// it is the JEntry length recorded by the parent for this child,
	// including any alignment padding, and is added to the parent's voff
	// once this frame completes.
	consumedLen int
}

// newFrame reads the JContainer header at pos and initializes a frame for
// iterating its JEntries.
func newFrame(data []byte, pos int) (*frame, error) {
	jc, ok := readU32LE(data, pos)
	if !ok {
		return nil, wrap(ErrTruncated, pos, "container header exceeds buffer")
	}
	isArray := jcIsArray(jc)
	isObject := jcIsObject(jc)
	if isArray == isObject {
		return nil, wrap(ErrBadHeader, pos, "header 0x%08x is neither array nor object", jc)
	}
	n := jcCount(jc)
	entryCount := n
	if isObject {
		entryCount = 2 * n
	}
	entriesPos := pos + 4
	valuesStart := entriesPos + 4*entryCount
	return &frame{
		isObject:    isObject,
		size:        n,
		entryCount:  entryCount,
		entriesPos:  entriesPos,
		valuesStart: valuesStart,
	}, nil
}

// build assembles the frame's decoded children into an array or object
// Value (spec §4.4 step 5).
func (f *frame) build() (Value, error) {
	if !f.isObject {
		return newArrayValue(f.values), nil
	}
	n := f.size
	m := make(map[string]Value, n)
	for i := 0; i < n; i++ {
		key := f.values[i]
		if key.kind != KindString {
			return Value{}, wrap(ErrMalformedObject, f.entriesPos, "object key %d is not a string", i)
		}
		// Duplicate keys: last wins (spec §3 invariants; shouldn't occur
		// in well-formed input).
		m[key.s] = f.values[n+i]
	}
	return newObjectValue(m), nil
}

// decodeContainer iteratively walks the array or object container whose
// JContainer header begins at pos, honoring the hybrid length/offset
// JEntry scheme and 4-byte alignment before nested containers (spec
// §4.4). depth is the nesting depth of pos itself (the root container is
// depth 1).
func decodeContainer(data []byte, pos int, depth int, maxDepth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, wrap(ErrTooDeep, pos, "nesting exceeds max depth %d", maxDepth)
	}

	top, err := newFrame(data, pos)
	if err != nil {
		return Value{}, err
	}
	stack := []*frame{top}
	depths := []int{depth}

	for {
		f := stack[len(stack)-1]
		curDepth := depths[len(depths)-1]

		if f.idx >= f.entryCount {
			val, err := f.build()
			if err != nil {
				return Value{}, err
			}
			consumed := f.consumedLen
			stack = stack[:len(stack)-1]
			depths = depths[:len(depths)-1]
			if len(stack) == 0 {
				return val, nil
			}
			parent := stack[len(stack)-1]
			parent.values = append(parent.values, val)
			parent.voff += consumed
			parent.idx++
			continue
		}

		jePos := f.entriesPos + 4*f.idx
		je, ok := readU32LE(data, jePos)
		if !ok {
			return Value{}, wrap(ErrTruncated, jePos, "JEntry read exceeds buffer")
		}

		raw := int(jeOffLen(je))
		length := raw
		if jeHasOff(je) {
			length = raw - f.voff
		}
		if length < 0 {
			return Value{}, wrap(ErrBadEntry, jePos, "entry length resolves negative (%d)", length)
		}

		childPos := f.valuesStart + f.voff
		switch jeTypeOf(je) {
		case jeTypeNull:
			if length != 0 {
				return Value{}, wrap(ErrBadEntry, jePos, "null entry has nonzero length %d", length)
			}
			f.values = append(f.values, newNullValue())
			f.voff += length
			f.idx++

		case jeTypeBoolTrue:
			if length != 0 {
				return Value{}, wrap(ErrBadEntry, jePos, "true entry has nonzero length %d", length)
			}
			f.values = append(f.values, newBoolValue(true))
			f.voff += length
			f.idx++

		case jeTypeBoolFalse:
			if length != 0 {
				return Value{}, wrap(ErrBadEntry, jePos, "false entry has nonzero length %d", length)
			}
			f.values = append(f.values, newBoolValue(false))
			f.voff += length
			f.idx++

		case jeTypeString:
			s, err := decodeString(data, childPos, length)
			if err != nil {
				return Value{}, err
			}
			f.values = append(f.values, newStringValue(s))
			f.voff += length
			f.idx++

		case jeTypeNumeric:
			v, err := decodeNumeric(data, childPos, length)
			if err != nil {
				return Value{}, err
			}
			f.values = append(f.values, v)
			f.voff += length
			f.idx++

		case jeTypeContainer:
			pad := alignPad(childPos)
			nestedPos := childPos + pad
			if curDepth+1 > maxDepth {
				return Value{}, wrap(ErrTooDeep, nestedPos, "nesting exceeds max depth %d", maxDepth)
			}
			nf, err := newFrame(data, nestedPos)
			if err != nil {
				return Value{}, err
			}
			nf.consumedLen = length
			stack = append(stack, nf)
			depths = append(depths, curDepth+1)
			// f.idx and f.voff advance once nf completes, above.

		default:
			return Value{}, wrap(ErrBadEntry, jePos, "unknown entry type code 0x%x", jeTypeOf(je)>>28)
		}
	}
}
