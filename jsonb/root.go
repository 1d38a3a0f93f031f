package jsonb

// decodeRoot inspects the top-level JContainer header and unwraps the
// synthetic 1-element array used to wrap scalar roots (spec §4.5).
func decodeRoot(data []byte, maxDepth int) (Value, error) {
	jc, ok := readU32LE(data, 0)
	if !ok {
		return Value{}, wrap(ErrTruncated, 0, "root header exceeds buffer")
	}

	switch {
	case jcIsArray(jc):
		val, err := decodeContainer(data, 0, 1, maxDepth)
		if err != nil {
			return Value{}, err
		}
		if jcIsScalar(jc) {
			if jcCount(jc) != 1 {
				return Value{}, wrap(ErrBadRootHeader, 0, "scalar root must have size 1, got %d", jcCount(jc))
			}
			arr, _ := val.Array()
			return arr[0], nil
		}
		return val, nil

	case jcIsObject(jc):
		return decodeContainer(data, 0, 1, maxDepth)

	default:
		return Value{}, wrap(ErrBadRootHeader, 0, "header 0x%08x is neither array nor object", jc)
	}
}
