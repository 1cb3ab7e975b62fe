package floatformat

import "math/big"

// Next returns the least representable value greater than v, stepping
// one unit in the last place. Next of the largest finite value is
// infinity, whether or not the format can encode one; Next of either
// zero is the least positive value. NaN maps to itself.
//
// v must be a value of this format.
func (s *Spec) Next(v Value) Value {
	switch v.Class {
	case NaN:
		return v
	case Inf:
		if v.Sign > 0 {
			return v
		}
		return s.MaxValue().Neg()
	case Zero:
		return s.MinValue()
	}
	if v.Sign < 0 {
		return s.Prev(v.Neg()).Neg()
	}

	v = s.canonical(v.Sign, v.Coeff, v.Exp)
	coeff := new(big.Int).Add(v.Coeff, one)
	exp := v.Exp
	if coeff.Cmp(s.pow(s.digits)) == 0 {
		if exp == s.eMaxInt() {
			return InfValue(1)
		}
		coeff = s.pow(s.digits - 1)
		exp++
	}
	cls := Finite
	if coeff.Cmp(s.pow(s.digits-1)) < 0 {
		cls = Subnormal
	}
	return Value{Sign: 1, Coeff: coeff, Exp: exp, Class: cls}
}

// Prev returns the greatest representable value less than v. Prev of
// the least positive value is positive zero; Prev of either zero is the
// negated least positive value. NaN maps to itself.
//
// v must be a value of this format.
func (s *Spec) Prev(v Value) Value {
	switch v.Class {
	case NaN:
		return v
	case Inf:
		if v.Sign > 0 {
			return s.MaxValue()
		}
		return v
	case Zero:
		return s.MinValue().Neg()
	}
	if v.Sign < 0 {
		return s.Next(v.Neg()).Neg()
	}

	v = s.canonical(v.Sign, v.Coeff, v.Exp)
	exp := v.Exp
	if v.Coeff.Cmp(s.pow(s.digits-1)) == 0 {
		// crossing down over a power of the radix widens the step
		if exp > s.eMinInt() {
			coeff := new(big.Int).Sub(s.pow(s.digits), one)
			return Value{Sign: 1, Coeff: coeff, Exp: exp - 1, Class: Finite}
		}
		if !s.gradual {
			return ZeroValue(1)
		}
	}
	coeff := new(big.Int).Sub(v.Coeff, one)
	if coeff.Sign() == 0 {
		return ZeroValue(1)
	}
	cls := Finite
	if coeff.Cmp(s.pow(s.digits-1)) < 0 {
		cls = Subnormal
	}
	return Value{Sign: 1, Coeff: coeff, Exp: exp, Class: cls}
}

// ULP returns the distance between the two representable values
// bracketing v, following the convention where the gap below an exact
// power of the radix is the smaller one. ULP of a zero or subnormal is
// the least positive value, ULP of an infinity is the ULP of the
// largest finite value, and ULP of NaN is NaN. The result is always
// positive.
func (s *Spec) ULP(v Value) Value {
	switch v.Class {
	case NaN:
		return NaNValue(1, v.Coeff)
	case Inf:
		return s.ULP(s.MaxValue())
	case Zero, Subnormal:
		return s.MinValue()
	}
	v = s.canonical(v.Sign, v.Coeff, v.Exp)
	if v.Class == Subnormal {
		return s.MinValue()
	}
	exp := v.Exp
	if v.Coeff.Cmp(s.pow(s.digits-1)) == 0 && exp > s.eMinInt() {
		exp--
	}
	return s.canonical(1, big.NewInt(1), exp)
}
