// Package bitfield provides the fixed-length byte buffers shared by the
// floatbits codecs.
//
// A format stores an encoding as a sequence of fields packed positionally
// into a single unsigned integer: the first declared field occupies the
// least-significant position, later fields are shifted above it. The
// integer is then serialized to a fixed number of bytes in one of three
// endianness conventions. Fields are measured either in bits (radix 2),
// decimal digits (radix 10, one digit per nibble) or hexadecimal digits
// (radix 16, one digit per nibble).
package bitfield

import (
	"math/big"

	"github.com/zeebo/errs"
)

// Error is the class of all errors returned by this package.
var Error = errs.Class("bitfield")

// ByteOrder selects how a packed integer is laid out in bytes.
type ByteOrder int

// Byte orders.
const (
	// LittleEndian stores the least-significant byte first.
	LittleEndian ByteOrder = iota
	// BigEndian stores the most-significant byte first.
	BigEndian
	// MiddleEndian (little-big) stores each 16-bit word little-endian
	// internally, with the words themselves ordered big-endian. It is
	// only defined for even byte counts.
	MiddleEndian
)

// String implements fmt.Stringer.
func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	case MiddleEndian:
		return "middle"
	default:
		return "<invalid>"
	}
}

// Convert re-serializes b from one byte order into another. The input is
// never mutated. Conversions that involve MiddleEndian require an even
// number of bytes; any such conversion normalizes through BigEndian and
// then swaps adjacent byte pairs (or the reverse, when converting out of
// middle-endian).
func Convert(b []byte, from, to ByteOrder) ([]byte, error) {
	out := make([]byte, len(b))
	copy(out, b)
	if from == to {
		return out, nil
	}
	if (from == MiddleEndian || to == MiddleEndian) && len(b)%2 != 0 {
		return nil, Error.New("middle-endian buffer must have an even length, got %d", len(b))
	}
	switch {
	case from == MiddleEndian:
		swapPairs(out) // middle -> big
		if to == LittleEndian {
			reverse(out)
		}
	case to == MiddleEndian:
		if from == LittleEndian {
			reverse(out)
		}
		swapPairs(out) // big -> middle
	default: // little <-> big
		reverse(out)
	}
	return out, nil
}

// ReverseBits returns a copy of b with the bit order reversed within each
// byte. It is used by formats whose fields are bit-little-endian.
func ReverseBits(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		c = c>>4&0x0F | c<<4&0xF0
		c = c>>2&0x33 | c<<2&0xCC
		c = c>>1&0x55 | c<<1&0xAA
		out[i] = c
	}
	return out
}

// ReverseNibbles returns a copy of b with the two nibbles of every byte
// swapped. BCD formats with big-endian nibble order need this when the
// surrounding byte order is little-endian.
func ReverseNibbles(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c>>4 | c<<4
	}
	return out
}

// Width returns the encoded byte length of a field layout: the total
// field width in bits (radix 2) or nibbles (radix 10 and 16), rounded up
// to whole bytes.
func Width(widths []int, radix int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	if radix == 2 {
		return (total + 7) / 8
	}
	return (total + 1) / 2
}

// Pack concatenates the field values into a single integer, first field
// least significant, and serializes it to Width(widths, radix) bytes in
// the given byte order. A nil value packs as zero. Values must lie in
// [0, radix^width) for their field.
func Pack(values []*big.Int, widths []int, radix int, order ByteOrder) ([]byte, error) {
	if len(values) != len(widths) {
		return nil, Error.New("have %d values for %d fields", len(values), len(widths))
	}
	if err := checkRadix(radix); err != nil {
		return nil, err
	}

	total := new(big.Int)
	shift := 0
	for i, v := range values {
		if v == nil {
			shift += widths[i]
			continue
		}
		if v.Sign() < 0 || digitLen(v, radix) > widths[i] {
			return nil, Error.New("field %d value %s does not fit %d radix-%d digits",
				i, v, widths[i], radix)
		}
		total.Add(total, new(big.Int).Mul(v, pow(radix, shift)))
		shift += widths[i]
	}

	size := Width(widths, radix)
	var buf []byte
	if radix == 10 {
		buf = digitsToBytes(total, 2*size)
	} else {
		buf = total.FillBytes(make([]byte, size))
	}
	return Convert(buf, BigEndian, order)
}

// Unpack parses a byte buffer produced by Pack back into its field
// values. The buffer length must equal Width(widths, radix) exactly.
func Unpack(data []byte, widths []int, radix int, order ByteOrder) ([]*big.Int, error) {
	if err := checkRadix(radix); err != nil {
		return nil, err
	}
	if size := Width(widths, radix); len(data) != size {
		return nil, Error.New("buffer is %d bytes, layout needs %d", len(data), size)
	}

	buf, err := Convert(data, order, BigEndian)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	if radix == 10 {
		total, err = bytesToDigits(buf)
		if err != nil {
			return nil, err
		}
	} else {
		total.SetBytes(buf)
	}

	values := make([]*big.Int, len(widths))
	rest := total
	for i, w := range widths {
		q, r := new(big.Int).QuoRem(rest, pow(radix, w), new(big.Int))
		values[i] = r
		rest = q
	}
	return values, nil
}

func checkRadix(radix int) error {
	switch radix {
	case 2, 10, 16:
		return nil
	default:
		return Error.New("unsupported field radix %d", radix)
	}
}

// digitLen returns the number of radix digits in x (1 for zero).
func digitLen(x *big.Int, radix int) int {
	switch {
	case x.Sign() == 0:
		return 1
	case radix == 2:
		return x.BitLen()
	case radix == 16:
		return (x.BitLen() + 3) / 4
	default:
		return len(x.Text(10))
	}
}

func pow(radix, n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(n)), nil)
}

// digitsToBytes renders x as exactly n decimal digits, one per nibble,
// most-significant digit in the high nibble of the first byte.
func digitsToBytes(x *big.Int, n int) []byte {
	s := x.Text(10)
	out := make([]byte, n/2)
	pad := n - len(s)
	for i, c := range []byte(s) {
		d := c - '0'
		pos := pad + i
		if pos%2 == 0 {
			out[pos/2] |= d << 4
		} else {
			out[pos/2] |= d
		}
	}
	return out
}

// bytesToDigits parses one decimal digit per nibble, rejecting nibbles
// greater than 9.
func bytesToDigits(buf []byte) (*big.Int, error) {
	s := make([]byte, 0, 2*len(buf))
	for _, c := range buf {
		hi, lo := c>>4, c&0x0F
		if hi > 9 || lo > 9 {
			return nil, Error.New("byte %#02x is not binary-coded decimal", c)
		}
		s = append(s, '0'+hi, '0'+lo)
	}
	total, ok := new(big.Int).SetString(string(s), 10)
	if !ok {
		return nil, Error.New("invalid digit string %q", s)
	}
	return total, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func swapPairs(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}
