package floatformat

import (
	"fmt"
	"math/big"
)

// Class tags the kind of number a Value holds.
type Class int

// Value classes.
const (
	Finite Class = iota
	Zero
	Subnormal
	Inf
	NaN
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Finite:
		return "finite"
	case Zero:
		return "zero"
	case Subnormal:
		return "subnormal"
	case Inf:
		return "inf"
	case NaN:
		return "nan"
	default:
		return "<invalid>"
	}
}

// Value is the canonical tuple shared by every codec: a finite value
// equals Sign × Coeff × radix^Exp, with Exp in the integral-significand
// convention (radix point after the last coefficient digit). The radix
// belongs to the Spec the value travels with, not to the value itself.
//
// For Zero and Inf only Sign is meaningful (Zero additionally keeps Exp
// as the preferred decimal quantum for cohort-preserving formats). For
// NaN, Coeff carries the payload when the format stores one.
//
// Values are treated as immutable: operations return fresh values and
// never modify Coeff in place.
type Value struct {
	Sign  int // +1 or -1
	Coeff *big.Int
	Exp   int
	Class Class
}

// NewValue returns a finite value sign × coeff × radix^exp. A zero
// coefficient yields a zero value with the given sign.
func NewValue(sign int, coeff *big.Int, exp int) Value {
	if sign >= 0 {
		sign = 1
	} else {
		sign = -1
	}
	if coeff == nil || coeff.Sign() == 0 {
		return Value{Sign: sign, Coeff: new(big.Int), Exp: exp, Class: Zero}
	}
	return Value{Sign: sign, Coeff: new(big.Int).Set(coeff), Exp: exp, Class: Finite}
}

// NewInt returns the value of a signed integer.
func NewInt(n int64) Value {
	coeff := new(big.Int).SetInt64(n)
	sign := 1
	if n < 0 {
		sign = -1
		coeff.Neg(coeff)
	}
	return NewValue(sign, coeff, 0)
}

// ZeroValue returns a signed zero.
func ZeroValue(sign int) Value {
	return NewValue(sign, nil, 0)
}

// InfValue returns a signed infinity.
func InfValue(sign int) Value {
	v := NewValue(sign, nil, 0)
	v.Class = Inf
	return v
}

// NaNValue returns a NaN carrying the given diagnostic payload in its
// coefficient. A nil payload means none; formats substitute their
// conventional quiet pattern when packing it.
func NaNValue(sign int, payload *big.Int) Value {
	if payload == nil {
		payload = new(big.Int)
	}
	if sign >= 0 {
		sign = 1
	} else {
		sign = -1
	}
	return Value{Sign: sign, Coeff: payload, Class: NaN}
}

// IsZero reports whether the value is a (signed) zero.
func (v Value) IsZero() bool { return v.Class == Zero }

// IsInf reports whether the value is an infinity.
func (v Value) IsInf() bool { return v.Class == Inf }

// IsNaN reports whether the value is a NaN.
func (v Value) IsNaN() bool { return v.Class == NaN }

// IsSubnormal reports whether the value decoded as a denormalized
// number.
func (v Value) IsSubnormal() bool { return v.Class == Subnormal }

// IsFinite reports whether the value is a number (including zero and
// subnormals).
func (v Value) IsFinite() bool {
	return v.Class == Finite || v.Class == Zero || v.Class == Subnormal
}

// Neg returns the value with its sign flipped. NaN is returned
// unchanged.
func (v Value) Neg() Value {
	if v.Class == NaN {
		return v
	}
	out := v
	out.Sign = -v.Sign
	return out
}

// Equal reports tuple identity: same sign, coefficient and exponent
// within the same class. Finite and Subnormal count as one class here:
// the subnormal tag is derived from a format's precision, which a
// caller-built tuple cannot know. Unlike Cmp, Equal distinguishes +0
// from -0 and distinct cohort members of the same numeric value, and
// treats two NaNs as equal.
func (v Value) Equal(o Value) bool {
	vc, oc := v.Class, o.Class
	if vc == Subnormal {
		vc = Finite
	}
	if oc == Subnormal {
		oc = Finite
	}
	if vc != oc {
		return false
	}
	switch vc {
	case NaN:
		return true
	case Inf:
		return v.Sign == o.Sign
	case Zero:
		return v.Sign == o.Sign && v.Exp == o.Exp
	default:
		return v.Sign == o.Sign && v.Exp == o.Exp && bigCmp(v.Coeff, o.Coeff) == 0
	}
}

// String renders the tuple for diagnostics. The exponent is a radix
// exponent, so the text is only a faithful numeral for radix-10 values.
func (v Value) String() string {
	switch v.Class {
	case Zero:
		if v.Sign < 0 {
			return "-0"
		}
		return "0"
	case Inf:
		if v.Sign < 0 {
			return "-Infinity"
		}
		return "Infinity"
	case NaN:
		return "NaN"
	}
	sign := ""
	if v.Sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s×r^%d", sign, v.Coeff, v.Exp)
}

// Cmp orders two values of this format. It returns -1, 0 or +1 and
// whether the operands were ordered at all: NaNs are unordered, and the
// two zeros compare equal regardless of sign.
func (s *Spec) Cmp(a, b Value) (int, bool) {
	if a.Class == NaN || b.Class == NaN {
		return 0, false
	}
	as, bs := valueSign(a), valueSign(b)
	if as != bs {
		if as < bs {
			return -1, true
		}
		return 1, true
	}
	if as == 0 {
		return 0, true
	}
	// Same nonzero sign: compare magnitudes.
	c := s.cmpMagnitude(a, b)
	if as < 0 {
		c = -c
	}
	return c, true
}

func valueSign(v Value) int {
	if v.Class == Zero {
		return 0
	}
	return v.Sign
}

func (s *Spec) cmpMagnitude(a, b Value) int {
	if a.Class == Inf || b.Class == Inf {
		switch {
		case a.Class == Inf && b.Class == Inf:
			return 0
		case a.Class == Inf:
			return 1
		default:
			return -1
		}
	}
	x, y := a.Coeff, b.Coeff
	if a.Exp > b.Exp {
		x = new(big.Int).Mul(x, s.pow(a.Exp-b.Exp))
	} else if b.Exp > a.Exp {
		y = new(big.Int).Mul(y, s.pow(b.Exp-a.Exp))
	}
	return x.Cmp(y)
}

func bigCmp(a, b *big.Int) int {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b)
}
