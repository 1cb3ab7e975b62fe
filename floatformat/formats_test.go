package floatformat

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/floatbits/floatbits/bitfield"
)

// Test fixtures covering one format per codec family. These mirror
// well-documented real layouts so every expected byte string below can
// be checked against published references.

func binary16Params() Params {
	return Params{
		Name:   "binary16",
		Family: Binary,
		Radix:  2,
		Fields: []Field{
			{FieldSignificand, 10},
			{FieldExponent, 5},
			{FieldSign, 1},
		},
		HiddenBit:        true,
		GradualUnderflow: true,
		Bias:             15,
		BiasMode:         BiasScientific,
		Inf:              AutoSlot(),
		NaN:              AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	}
}

func binary32Params() Params {
	return Params{
		Name:   "binary32",
		Family: Binary,
		Radix:  2,
		Fields: []Field{
			{FieldSignificand, 23},
			{FieldExponent, 8},
			{FieldSign, 1},
		},
		HiddenBit:        true,
		GradualUnderflow: true,
		Bias:             127,
		BiasMode:         BiasScientific,
		Inf:              AutoSlot(),
		NaN:              AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	}
}

func binary64Params() Params {
	return Params{
		Name:   "binary64",
		Family: Binary,
		Radix:  2,
		Fields: []Field{
			{FieldSignificand, 52},
			{FieldExponent, 11},
			{FieldSign, 1},
		},
		HiddenBit:        true,
		GradualUnderflow: true,
		Bias:             1023,
		BiasMode:         BiasScientific,
		Inf:              AutoSlot(),
		NaN:              AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	}
}

// x87 80-bit extended: no hidden bit, the leading significand bit is
// stored explicitly.
func extended80Params() Params {
	return Params{
		Name:   "x87-extended",
		Family: Binary,
		Radix:  2,
		Fields: []Field{
			{FieldSignificand, 64},
			{FieldExponent, 15},
			{FieldSign, 1},
		},
		GradualUnderflow: true,
		Bias:             16383,
		BiasMode:         BiasScientific,
		Inf:              AutoSlot(),
		NaN:              AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	}
}

// IBM System/360 short: radix-16 significand, fraction-biased exponent,
// truncating arithmetic, no specials.
func ibmSingleParams() Params {
	return Params{
		Name:   "ibm-single",
		Family: Hexadecimal,
		Radix:  16,
		Fields: []Field{
			{FieldSignificand, 24},
			{FieldExponent, 7},
			{FieldSign, 1},
		},
		Bias:       64,
		BiasMode:   BiasFractional,
		Rounding:   RoundZero,
		Endianness: bitfield.BigEndian,
	}
}

// IEEE 754-2008 decimal32 in the densely-packed-decimal encoding.
func decimal32Params() Params {
	return Params{
		Name:   "decimal32",
		Family: DPD,
		Radix:  10,
		Fields: []Field{
			{FieldSignificand, 20},
			{FieldExponent, 6},
			{FieldCombination, 5},
			{FieldSign, 1},
		},
		GradualUnderflow: true,
		Bias:             101,
		BiasMode:         BiasIntegral,
		Endianness:       bitfield.BigEndian,
	}
}

// HP-71B register: 12 BCD significand digits, a sign digit and a
// ten's-complement 3-digit exponent.
func hp71bParams() Params {
	return Params{
		Name:   "hp71b",
		Family: BCD,
		Radix:  10,
		Fields: []Field{
			{FieldExponent, 3},
			{FieldSignificand, 12},
			{FieldSign, 1},
		},
		GradualUnderflow: true,
		ExpMode:          ExpRadixComplement,
		Bias:             0,
		BiasMode:         BiasScientific,
		Inf:              AutoSlot(),
		NaN:              AutoSlot(),
		Endianness:       bitfield.BigEndian,
	}
}

func doubleDoubleParams() Params {
	half := binary64Params()
	return Params{
		Name:   "double-double",
		Family: PairedDouble,
		Half:   &half,
	}
}

var (
	binary16Fmt   = MustCompile(binary16Params())
	binary32Fmt   = MustCompile(binary32Params())
	binary64Fmt   = MustCompile(binary64Params())
	extended80Fmt = MustCompile(extended80Params())
	ibmSingleFmt  = MustCompile(ibmSingleParams())
	decimal32Fmt  = MustCompile(decimal32Params())
	hp71bFmt      = MustCompile(hp71bParams())
	ddFmt         = MustCompile(doubleDoubleParams())
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func mustPack(t *testing.T, s *Spec, v Value) []byte {
	t.Helper()
	b, err := s.Pack(v)
	if err != nil {
		t.Fatalf("%s: Pack(%v): %v", s.Name(), v, err)
	}
	return b
}

func mustUnpack(t *testing.T, s *Spec, b []byte) Value {
	t.Helper()
	v, err := s.Unpack(b)
	if err != nil {
		t.Fatalf("%s: Unpack(% X): %v", s.Name(), b, err)
	}
	return v
}

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad integer literal %q", s)
	}
	return n
}
