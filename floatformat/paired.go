package floatformat

import "math/big"

// A paired-double encoding stores two values of the half format, high
// part first, whose exact sum is the represented value. Pack always
// emits the canonical pair: the high part carries the leading digits
// and the low part the remainder, rounded to the half's precision when
// it does not fit. With ExtraPrecision the low part's sign may oppose
// the high part's, which narrows the remainder to half a unit in the
// last place of the high part and buys one extra digit.
//
// Unpack accepts any pair, canonical or not, and returns the exact sum.
// Pairs whose parts overlap digit ranges therefore decode losslessly,
// but they are a precondition violation for round-trip identity: Pack
// reproduces only canonical pairs byte for byte.
//
// A subnormal low part contributes its exact magnitude to the sum; it
// is never flushed to zero. Decoders that drop denormalized low parts
// disagree with this one on such pairs.

func (s *Spec) packPaired(v Value) ([]byte, error) {
	half := s.half

	switch v.Class {
	case NaN, Inf:
		return s.packPair(v, ZeroValue(1))
	case Zero:
		return s.packPair(v, ZeroValue(v.Sign))
	}

	coeff, exp, cls := s.clamp(v)
	switch cls {
	case Zero:
		return s.packPair(ZeroValue(v.Sign), ZeroValue(v.Sign))
	case Inf:
		return s.packPair(InfValue(v.Sign), ZeroValue(1))
	}

	k := s.digitLen(coeff) - half.digits
	if k < 0 {
		k = 0
	}
	div := s.pow(k)
	q, rem := new(big.Int), new(big.Int)
	q.QuoRem(coeff, div, rem)

	loSign := v.Sign
	if s.extraPrec && rem.Sign() != 0 {
		twice := new(big.Int).Lsh(rem, 1)
		if twice.Cmp(div) > 0 {
			q.Add(q, one)
			rem.Sub(div, rem)
			loSign = -loSign
		}
	}
	return s.packPair(NewValue(v.Sign, q, exp+k), NewValue(loSign, rem, exp))
}

func (s *Spec) packPair(hi, lo Value) ([]byte, error) {
	hb, err := s.half.Pack(hi)
	if err != nil {
		return nil, err
	}
	lb, err := s.half.Pack(lo)
	if err != nil {
		return nil, err
	}
	return append(hb, lb...), nil
}

func (s *Spec) unpackPaired(b []byte) (Value, error) {
	if len(b) != s.size {
		return Value{}, ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(b), s.size)
	}
	half := s.half
	hi, err := half.Unpack(b[:half.size])
	if err != nil {
		return Value{}, err
	}
	lo, err := half.Unpack(b[half.size:])
	if err != nil {
		return Value{}, err
	}

	switch hi.Class {
	case NaN, Inf:
		return hi, nil
	}
	switch lo.Class {
	case NaN, Inf:
		return Value{}, ErrEncoding.New("%s: special low part under a finite high part", s.name)
	case Zero:
		return s.classifyPaired(hi), nil
	}
	if hi.Class == Zero {
		return s.classifyPaired(lo), nil
	}

	// exact signed sum, aligned at the smaller exponent
	exp := hi.Exp
	if lo.Exp < exp {
		exp = lo.Exp
	}
	sum := new(big.Int).Mul(hi.Coeff, s.pow(hi.Exp-exp))
	if hi.Sign < 0 {
		sum.Neg(sum)
	}
	term := new(big.Int).Mul(lo.Coeff, s.pow(lo.Exp-exp))
	if lo.Sign < 0 {
		term.Neg(term)
	}
	sum.Add(sum, term)
	if sum.Sign() == 0 {
		return ZeroValue(hi.Sign), nil
	}
	sign := 1
	if sum.Sign() < 0 {
		sign = -1
		sum.Neg(sum)
	}
	// A wide-gap pair leaves the aligned sum with trailing zero digits
	// beyond the combined precision; shed them so the tuple carries the
	// smallest exact coefficient.
	r := big.NewInt(int64(s.radix))
	q, rem := new(big.Int), new(big.Int)
	for s.digitLen(sum) > s.digits {
		q.QuoRem(sum, r, rem)
		if rem.Sign() != 0 {
			break
		}
		sum.Set(q)
		exp++
	}
	return s.classifyPaired(Value{Sign: sign, Coeff: sum, Exp: exp, Class: Finite}), nil
}

func (s *Spec) classifyPaired(v Value) Value {
	if v.Class != Finite && v.Class != Subnormal {
		return v
	}
	v.Class = Finite
	if s.cmpMagnitude(v, s.MinNormal()) < 0 {
		v.Class = Subnormal
	}
	return v
}
