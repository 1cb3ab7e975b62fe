package floatformat

import "github.com/zeebo/errs"

// Error classes. Membership is tested with Class.Has, so callers can
// distinguish construction-time schema problems from bad input buffers
// and from values a format simply cannot express.
var (
	// ErrSchema reports malformed format parameters. It is returned
	// once, by Compile; a compiled Spec never produces it.
	ErrSchema = errs.Class("floatformat: invalid format")

	// ErrEncoding reports a byte buffer that does not match the
	// format's declared layout during unpack. The buffer is rejected,
	// not repaired.
	ErrEncoding = errs.Class("floatformat: bad encoding")

	// ErrNotRepresentable reports a value the format has no encoding
	// for: Infinity or NaN without a reserved exponent slot, or a
	// finite value whose exponent still overflows after adjustment in
	// a format without an Infinity slot.
	ErrNotRepresentable = errs.Class("floatformat: not representable")
)
