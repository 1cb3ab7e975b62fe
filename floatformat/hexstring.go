package floatformat

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/floatbits/floatbits/bitfield"
)

// BytesText renders an encoded buffer as a hex dump in storage order,
// one two-digit group per byte joined by sep.
func (s *Spec) BytesText(enc []byte, sep string, upper bool) (string, error) {
	if len(enc) != s.size {
		return "", ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(enc), s.size)
	}
	groups := make([]string, len(enc))
	for i, b := range enc {
		h := hex.EncodeToString([]byte{b})
		if upper {
			h = strings.ToUpper(h)
		}
		groups[i] = h
	}
	return strings.Join(groups, sep), nil
}

// ParseBytesText parses a hex dump back into an encoded buffer. Either
// letter case is accepted and spaces, colons and underscores between
// digits are skipped; the digit count must match the format's size.
func (s *Spec) ParseBytesText(str string) ([]byte, error) {
	var digits []byte
	for _, r := range str {
		switch {
		case r == ' ' || r == ':' || r == '_':
		case r < 128:
			digits = append(digits, byte(r))
		default:
			return nil, ErrEncoding.New("%s: bad hex rune %q", s.name, r)
		}
	}
	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return nil, ErrEncoding.Wrap(err)
	}
	if len(out) != s.size {
		return nil, ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(out), s.size)
	}
	return out, nil
}

// DigitsText renders the encoded buffer as its nibble digit string in
// display order, most significant digit first. This is the natural form
// for calculator register dumps.
func (s *Spec) DigitsText(enc []byte) (string, error) {
	if len(enc) != s.size {
		return "", ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(enc), s.size)
	}
	be, err := bitfield.Convert(enc, s.endian, bitfield.BigEndian)
	if err != nil {
		return "", ErrEncoding.Wrap(err)
	}
	return hex.EncodeToString(be), nil
}

// BaseText renders the encoded buffer as one unsigned integer in the
// given base (2 to 36), most significant byte first regardless of the
// storage endianness.
func (s *Spec) BaseText(enc []byte, base int) (string, error) {
	if base < 2 || base > 36 {
		return "", ErrEncoding.New("%s: base %d out of range", s.name, base)
	}
	if len(enc) != s.size {
		return "", ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(enc), s.size)
	}
	be, err := bitfield.Convert(enc, s.endian, bitfield.BigEndian)
	if err != nil {
		return "", ErrEncoding.Wrap(err)
	}
	return new(big.Int).SetBytes(be).Text(base), nil
}

// ParseBaseText is the inverse of BaseText.
func (s *Spec) ParseBaseText(str string, base int) ([]byte, error) {
	if base < 2 || base > 36 {
		return nil, ErrEncoding.New("%s: base %d out of range", s.name, base)
	}
	n, ok := new(big.Int).SetString(str, base)
	if !ok || n.Sign() < 0 {
		return nil, ErrEncoding.New("%s: bad base-%d integer %q", s.name, base, str)
	}
	if n.BitLen() > 8*s.size {
		return nil, ErrEncoding.New("%s: %q does not fit %d bytes", s.name, str, s.size)
	}
	be := make([]byte, s.size)
	n.FillBytes(be)
	out, err := bitfield.Convert(be, bitfield.BigEndian, s.endian)
	if err != nil {
		return nil, ErrEncoding.Wrap(err)
	}
	return out, nil
}
