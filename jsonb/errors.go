package jsonb

import (
	"fmt"

	"github.com/pingcap/errors"
)

// Sentinel error kinds returned by Decode. Compare with errors.Cause to
// tell which kind a failed decode returned, e.g.:
//
//	if errors.Cause(err) == jsonb.ErrTruncated { ... }
var (
	ErrTruncated       = errors.New("jsonb: truncated buffer")
	ErrBadRootHeader   = errors.New("jsonb: bad root header")
	ErrBadHeader       = errors.New("jsonb: bad container header")
	ErrBadEntry        = errors.New("jsonb: bad entry header")
	ErrMalformedObject = errors.New("jsonb: malformed object")
	ErrInvalidUTF8     = errors.New("jsonb: invalid utf-8 in string")
	ErrBadNumeric      = errors.New("jsonb: bad numeric payload")
	ErrTooDeep         = errors.New("jsonb: nesting too deep")
)

// wrap annotates a sentinel error kind with the byte offset at which it
// was detected (spec §7: "errors carry the byte offset at which detection
// occurred").
func wrap(sentinel error, offset int, format string, args ...interface{}) error {
	return errors.Annotatef(sentinel, "at offset %d: %s", offset, fmt.Sprintf(format, args...))
}
