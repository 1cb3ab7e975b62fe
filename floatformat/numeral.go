package floatformat

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// FromDecimalString parses a decimal numeral such as "-1.25e3",
// "Infinity" or "NaN" and converts it to the nearest representable
// value under the format's rounding policy. Magnitudes beyond the
// largest finite value convert to infinity, magnitudes below the
// smallest to zero.
//
// For decimal formats the conversion is cohort-preserving: the parsed
// coefficient and exponent are kept as written ("1.234" stays
// 1234e-3), matching the decimal interchange encodings.
func (s *Spec) FromDecimalString(str string) (Value, error) {
	d, _, err := new(apd.Decimal).SetString(str)
	if err != nil {
		return Value{}, ErrNotRepresentable.New("%s: parsing %q: %v", s.name, str, err)
	}
	sign := 1
	if d.Negative {
		sign = -1
	}
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return NaNValue(sign, nil), nil
	case apd.Infinite:
		return InfValue(sign), nil
	}
	coeff := d.Coeff.MathBigInt()
	exp := int(d.Exponent)
	if coeff.Sign() == 0 {
		v := ZeroValue(sign)
		if s.radix == 10 {
			v.Exp = exp
		}
		return v, nil
	}
	if s.radix == 10 {
		v := Value{Sign: sign, Coeff: coeff, Exp: exp, Class: Finite}
		if s.cmpMagnitude(v, s.MinNormal()) < 0 {
			v.Class = Subnormal
		}
		return v, nil
	}
	return s.scaleDecimal(sign, coeff, exp), nil
}

// scaleDecimal converts an exact decimal coeff·10^exp10 into the
// format's radix by exact fraction scaling: the value is kept as u/v
// and one side grows by a radix factor until the quotient lands in the
// significand window, after which the remainder decides the rounding.
func (s *Spec) scaleDecimal(sign int, coeff *big.Int, exp10 int) Value {
	u := new(big.Int).Set(coeff)
	v := big.NewInt(1)
	ten := big.NewInt(10)
	e10 := new(big.Int).SetInt64(int64(exp10))
	if exp10 >= 0 {
		u.Mul(u, new(big.Int).Exp(ten, e10, nil))
	} else {
		v.Exp(ten, e10.Neg(e10), nil)
	}

	r := big.NewInt(int64(s.radix))
	lo, hi := s.pow(s.digits-1), s.pow(s.digits)
	eMin, eMax := s.eMinInt(), s.eMaxInt()

	k := 0
	q, rem := new(big.Int), new(big.Int)
	for {
		q.Quo(u, v)
		switch {
		case q.Cmp(lo) < 0 && k > eMin:
			u.Mul(u, r)
			k--
		case q.Cmp(hi) >= 0:
			if k >= eMax {
				return InfValue(sign)
			}
			v.Mul(v, r)
			k++
		default:
			q.QuoRem(u, v, rem)
			if roundsUp(rem, v, digitEven(q, s.radix), sign, s.rounding) {
				q.Add(q, one)
			}
			if q.Cmp(hi) >= 0 {
				q.Quo(q, r)
				k++
				if k > eMax {
					return InfValue(sign)
				}
			}
			if q.Sign() == 0 {
				return ZeroValue(sign)
			}
			cls := Finite
			if q.Cmp(lo) < 0 {
				cls = Subnormal
			}
			return Value{Sign: sign, Coeff: q, Exp: k, Class: cls}
		}
	}
}

// ToExactDecimalString renders the exact decimal expansion of v. Every
// finite value of a radix 2, 10 or 16 format has one. Decimal formats
// keep their quantum, so 100e-2 renders as "1.00".
func (s *Spec) ToExactDecimalString(v Value) string {
	return s.toAPD(v).Text('g')
}

// ToDecimalString renders the shortest decimal numeral that converts
// back to v under FromDecimalString.
func (s *Spec) ToDecimalString(v Value) string {
	if v.Class == NaN || v.Class == Inf || v.Class == Zero {
		return s.ToExactDecimalString(v)
	}
	exact := s.toAPD(v)
	rounded := new(apd.Decimal)
	for prec := 1; prec <= s.DecimalDigits()+3; prec++ {
		ctx := apd.BaseContext.WithPrecision(uint32(prec))
		ctx.Rounding = apd.RoundHalfEven
		if _, err := ctx.Round(rounded, exact); err != nil {
			break
		}
		str := rounded.Text('g')
		back, err := s.FromDecimalString(str)
		if err != nil {
			break
		}
		if c, ok := s.Cmp(back, v); ok && c == 0 {
			return str
		}
	}
	return exact.Text('g')
}

// toAPD converts v to an exact apd decimal. NaN payloads are dropped.
func (s *Spec) toAPD(v Value) *apd.Decimal {
	d := new(apd.Decimal)
	d.Negative = v.Sign < 0
	switch v.Class {
	case NaN:
		d.Form = apd.NaN
		return d
	case Inf:
		d.Form = apd.Infinite
		return d
	case Zero:
		if s.radix == 10 && v.Exp < 0 {
			d.Exponent = int32(v.Exp)
		}
		return d
	}

	coeff, exp10 := new(big.Int).Set(v.Coeff), v.Exp
	switch s.radix {
	case 10:
	case 2, 16:
		b := exp10
		if s.radix == 16 {
			b *= 4
		}
		// coeff·2^b = coeff·5^-b · 10^b for b < 0
		if b >= 0 {
			coeff.Lsh(coeff, uint(b))
			exp10 = 0
		} else {
			coeff.Mul(coeff, new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-b)), nil))
			exp10 = b
		}
	}
	d.Coeff.SetMathBigInt(coeff)
	d.Exponent = int32(exp10)
	if s.radix != 10 {
		// drop trailing zeros introduced by the 5^n scaling; decimal
		// formats keep their quantum instead
		d.Reduce(d)
	}
	return d
}
