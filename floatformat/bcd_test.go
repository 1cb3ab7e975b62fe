package floatformat

import (
	"math/big"
	"testing"

	"github.com/floatbits/floatbits/bitfield"
)

func hp71bDigits(t *testing.T, v Value) string {
	t.Helper()
	b := mustPack(t, hp71bFmt, v)
	s, err := hp71bFmt.DigitsText(b)
	if err != nil {
		t.Fatalf("DigitsText: %v", err)
	}
	return s
}

// TestHP71BKnownRegisters pins calculator register images: sign digit,
// twelve mantissa digits, then the ten's-complement exponent.
func TestHP71BKnownRegisters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"-0.21", "9210000000000999"},
		{"1", "0100000000000000"},
		{"0.1", "0100000000000999"},
		{"1e10", "0100000000000010"},
		{"0", "0000000000000000"},
		{"-0", "9000000000000000"},
		{"9.99999999999e498", "0999999999999498"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			v, err := hp71bFmt.FromDecimalString(c.in)
			if err != nil {
				t.Fatalf("FromDecimalString: %v", err)
			}
			if got := hp71bDigits(t, v); got != c.want {
				t.Fatalf("register = %s, want %s", got, c.want)
			}
		})
	}
}

// TestHP71BComplementExponent checks that negative exponents decode
// through the ten's-complement rule: raw 999 is -1, raw 500 is -500.
func TestHP71BComplementExponent(t *testing.T) {
	b := mustPack(t, hp71bFmt, mustFromDecimal(t, hp71bFmt, "-0.21"))
	v := mustUnpack(t, hp71bFmt, b)
	if v.Sign != -1 || v.Exp != -12 || v.Coeff.Cmp(bigInt(t, "210000000000")) != 0 {
		t.Fatalf("unpacked %v", v)
	}

	// least positive subnormal: one unit at the exponent floor
	min := hp71bFmt.MinValue()
	if got := hp71bDigits(t, min); got != "0000000000001500" {
		t.Fatalf("min register = %s", got)
	}
	back := mustUnpack(t, hp71bFmt, mustPack(t, hp71bFmt, min))
	if !back.IsSubnormal() || back.Exp != -511 || back.Coeff.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("min round trip: %v", back)
	}
}

// TestHP71BSpecials exercises the shared top exponent: zero mantissa
// decodes as infinity, anything else as NaN.
func TestHP71BSpecials(t *testing.T) {
	if got := hp71bDigits(t, InfValue(1)); got != "0000000000000499" {
		t.Fatalf("+inf register = %s", got)
	}
	if got := hp71bDigits(t, InfValue(-1)); got != "9000000000000499" {
		t.Fatalf("-inf register = %s", got)
	}
	if got := hp71bDigits(t, NaNValue(1, nil)); got != "0100000000000499" {
		t.Fatalf("NaN register = %s", got)
	}

	v := mustUnpack(t, hp71bFmt, mustPack(t, hp71bFmt, InfValue(-1)))
	if !v.IsInf() || v.Sign != -1 {
		t.Fatalf("infinity round trip: %v", v)
	}
	v = mustUnpack(t, hp71bFmt, mustPack(t, hp71bFmt, NaNValue(1, big.NewInt(42))))
	if !v.IsNaN() || v.Coeff.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("NaN round trip: %v", v)
	}
}

func mustFromDecimal(t *testing.T, s *Spec, str string) Value {
	t.Helper()
	v, err := s.FromDecimalString(str)
	if err != nil {
		t.Fatalf("%s: FromDecimalString(%q): %v", s.Name(), str, err)
	}
	return v
}

// complement4Params builds a small sign-and-complement BCD format for
// exercising the negation rules: 4 significand digits, 3 exponent
// digits, excess-500 bias, 8 nibbles total.
func complement4Params(mode NegMode) Params {
	return Params{
		Name:   "bcd-complement",
		Family: BCD,
		Radix:  10,
		Fields: []Field{
			{FieldExponent, 3},
			{FieldSignificand, 4},
			{FieldSign, 1},
		},
		Bias:       500,
		BiasMode:   BiasIntegral,
		NegMode:    mode,
		Endianness: bitfield.BigEndian,
	}
}

// TestComplementNegation packs negatives under each complement rule and
// checks both the stored digits and the decode inverse.
func TestComplementNegation(t *testing.T) {
	cases := []struct {
		mode NegMode
		want string // register for -1234·10^0: sign | significand | exp
	}{
		{NegSignMagnitude, "91234500"},
		{NegRadixComplement, "98766500"},
		{NegDiminishedRadixComplement, "98765500"},
		{NegSignificandComplement, "98766500"},
	}
	for _, c := range cases {
		s := MustCompile(complement4Params(c.mode))
		v := NewValue(-1, big.NewInt(1234), 0)

		b := mustPack(t, s, v)
		// display order: sign digit, 4 significand digits, 3 excess-500
		// exponent digits
		got, err := s.DigitsText(b)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("mode %d: register %s, want %s", c.mode, got, c.want)
		}

		back := mustUnpack(t, s, b)
		if cc, ok := s.Cmp(back, v); !ok || cc != 0 {
			t.Errorf("mode %d: round trip %v", c.mode, back)
		}
		if back.Sign != -1 {
			t.Errorf("mode %d: sign %d", c.mode, back.Sign)
		}
	}
}

// TestDiminishedNegativeZero checks the ones'-style negative zero: all
// max digits in the significand with the minus sign digit.
func TestDiminishedNegativeZero(t *testing.T) {
	s := MustCompile(complement4Params(NegDiminishedRadixComplement))
	b := mustPack(t, s, ZeroValue(-1))
	got, err := s.DigitsText(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != "99999000" {
		t.Fatalf("register = %s", got)
	}
	v := mustUnpack(t, s, b)
	if !v.IsZero() || v.Sign != -1 {
		t.Fatalf("decoded %v", v)
	}
}
