// Package floatformat encodes and decodes numbers in arbitrary
// floating-point storage formats.
//
// A format is described declaratively by Params and compiled once into
// an immutable Spec: an ordered field layout, a significand radix with
// optional hidden digit, an exponent encoding with bias, reserved
// encodings for zero, subnormals, infinity and NaN, a negation rule and
// a byte order. The compiled Spec packs and unpacks Values, converts
// decimal numerals in both directions, and walks adjacent representable
// values.
//
// The same machinery covers the IEEE 754 binary and decimal
// interchange encodings, hexadecimal-radix mainframe formats, nibble
// oriented calculator registers and sum-of-two-doubles pairs.
package floatformat
