package tests

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/floatbits/floatbits/bitfield"
	"github.com/floatbits/floatbits/floatformat"
)

// Cross-family compliance suite: every vector here is checked through
// the public API only, the way an application would drive it. The
// per-package tests cover the corners; this file pins the published
// byte images end to end.

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func compile(t *testing.T, p floatformat.Params) *floatformat.Spec {
	t.Helper()
	s, err := floatformat.Compile(p)
	if err != nil {
		t.Fatalf("Compile(%s): %v", p.Name, err)
	}
	return s
}

func binary64(t *testing.T) *floatformat.Spec {
	return compile(t, floatformat.Params{
		Name:   "binary64",
		Family: floatformat.Binary,
		Radix:  2,
		Fields: []floatformat.Field{
			{Name: floatformat.FieldSignificand, Width: 52},
			{Name: floatformat.FieldExponent, Width: 11},
			{Name: floatformat.FieldSign, Width: 1},
		},
		HiddenBit:        true,
		GradualUnderflow: true,
		Bias:             1023,
		BiasMode:         floatformat.BiasScientific,
		Inf:              floatformat.AutoSlot(),
		NaN:              floatformat.AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	})
}

func extended80(t *testing.T) *floatformat.Spec {
	return compile(t, floatformat.Params{
		Name:   "x87-extended",
		Family: floatformat.Binary,
		Radix:  2,
		Fields: []floatformat.Field{
			{Name: floatformat.FieldSignificand, Width: 64},
			{Name: floatformat.FieldExponent, Width: 15},
			{Name: floatformat.FieldSign, Width: 1},
		},
		GradualUnderflow: true,
		Bias:             16383,
		BiasMode:         floatformat.BiasScientific,
		Inf:              floatformat.AutoSlot(),
		NaN:              floatformat.AutoSlot(),
		Endianness:       bitfield.LittleEndian,
	})
}

func decimal32(t *testing.T) *floatformat.Spec {
	return compile(t, floatformat.Params{
		Name:   "decimal32",
		Family: floatformat.DPD,
		Radix:  10,
		Fields: []floatformat.Field{
			{Name: floatformat.FieldSignificand, Width: 20},
			{Name: floatformat.FieldExponent, Width: 6},
			{Name: floatformat.FieldCombination, Width: 5},
			{Name: floatformat.FieldSign, Width: 1},
		},
		GradualUnderflow: true,
		Bias:             101,
		BiasMode:         floatformat.BiasIntegral,
		Endianness:       bitfield.BigEndian,
	})
}

func hp71b(t *testing.T) *floatformat.Spec {
	return compile(t, floatformat.Params{
		Name:   "hp71b",
		Family: floatformat.BCD,
		Radix:  10,
		Fields: []floatformat.Field{
			{Name: floatformat.FieldExponent, Width: 3},
			{Name: floatformat.FieldSignificand, Width: 12},
			{Name: floatformat.FieldSign, Width: 1},
		},
		GradualUnderflow: true,
		ExpMode:          floatformat.ExpRadixComplement,
		BiasMode:         floatformat.BiasScientific,
		Inf:              floatformat.AutoSlot(),
		NaN:              floatformat.AutoSlot(),
		Endianness:       bitfield.BigEndian,
	})
}

// TestPublishedVectors drives one value through each family and checks
// the full byte image.
func TestPublishedVectors(t *testing.T) {
	t.Run("binary64 0.1", func(t *testing.T) {
		s := binary64(t)
		v, err := s.FromDecimalString("0.1")
		if err != nil {
			t.Fatal(err)
		}
		b, err := s.Pack(v)
		if err != nil {
			t.Fatal(err)
		}
		if want := mustHex(t, "9a 99 99 99 99 99 b9 3f"); string(b) != string(want) {
			t.Fatalf("got % X, want % X", b, want)
		}
	})

	t.Run("extended80 123/4", func(t *testing.T) {
		s := extended80(t)
		b, err := s.Pack(floatformat.NewValue(1, big.NewInt(123), -2))
		if err != nil {
			t.Fatal(err)
		}
		if want := mustHex(t, "00 00 00 00 00 00 00 f6 03 40"); string(b) != string(want) {
			t.Fatalf("got % X, want % X", b, want)
		}
	})

	t.Run("decimal32 1.234", func(t *testing.T) {
		s := decimal32(t)
		v, err := s.FromDecimalString("1.234")
		if err != nil {
			t.Fatal(err)
		}
		b, err := s.Pack(v)
		if err != nil {
			t.Fatal(err)
		}
		if want := mustHex(t, "22 20 05 34"); string(b) != string(want) {
			t.Fatalf("got % X, want % X", b, want)
		}
	})

	t.Run("hp71b -0.21", func(t *testing.T) {
		s := hp71b(t)
		v, err := s.FromDecimalString("-0.21")
		if err != nil {
			t.Fatal(err)
		}
		b, err := s.Pack(v)
		if err != nil {
			t.Fatal(err)
		}
		reg, err := s.DigitsText(b)
		if err != nil {
			t.Fatal(err)
		}
		if reg != "9210000000000999" {
			t.Fatalf("register %s", reg)
		}
	})
}

// TestCrossFormatTranscode moves a value between formats through the
// decimal string surface.
func TestCrossFormatTranscode(t *testing.T) {
	src := binary64(t)
	dst := hp71b(t)

	v, err := src.FromDecimalString("0.1")
	if err != nil {
		t.Fatal(err)
	}
	// the shortest numeral of the double 0.1 is "0.1" again, so the
	// calculator receives the intended constant, not the double's
	// rounding error
	w, err := dst.FromDecimalString(src.ToDecimalString(v))
	if err != nil {
		t.Fatal(err)
	}
	b, err := dst.Pack(w)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := dst.DigitsText(b)
	if err != nil {
		t.Fatal(err)
	}
	if reg != "0100000000000999" {
		t.Fatalf("register %s", reg)
	}
}

// TestRoundTripSweep packs and unpacks a numeral sample in every
// format; unpacked values must compare equal to the packed ones.
func TestRoundTripSweep(t *testing.T) {
	numerals := []string{
		"0", "1", "-1", "0.5", "-0.25", "123456", "-3.14159",
		"1e10", "-1e-10", "7.25", "42",
	}
	specs := []*floatformat.Spec{binary64(t), extended80(t), decimal32(t), hp71b(t)}
	for _, s := range specs {
		for _, n := range numerals {
			v, err := s.FromDecimalString(n)
			if err != nil {
				t.Fatalf("%s: parse %q: %v", s.Name(), n, err)
			}
			b, err := s.Pack(v)
			if err != nil {
				t.Fatalf("%s: pack %q: %v", s.Name(), n, err)
			}
			back, err := s.Unpack(b)
			if err != nil {
				t.Fatalf("%s: unpack %q: %v", s.Name(), n, err)
			}
			if c, ok := s.Cmp(back, v); !ok || c != 0 {
				t.Errorf("%s: %q round-tripped to %v", s.Name(), n, back)
			}
		}
	}
}
