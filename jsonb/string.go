package jsonb

import "unicode/utf8"

// decodeString validates and extracts length bytes of UTF-8 text starting
// at pos (spec §4.2). Zero-length strings are valid.
func decodeString(data []byte, pos, length int) (string, error) {
	if length == 0 {
		return "", nil
	}
	if pos < 0 || length < 0 || pos+length > len(data) {
		return "", wrap(ErrTruncated, pos, "string of length %d exceeds buffer (len %d)", length, len(data))
	}
	b := data[pos : pos+length]
	if !utf8.Valid(b) {
		return "", wrap(ErrInvalidUTF8, pos, "%d bytes starting at offset %d are not valid utf-8", length, pos)
	}
	// Copy out: the decoded tree owns its strings independently of the
	// input buffer (spec §9, ownership decision recorded in DESIGN.md).
	return string(b), nil
}
