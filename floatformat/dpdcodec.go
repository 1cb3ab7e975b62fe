package floatformat

import (
	"math/big"

	"github.com/floatbits/floatbits/dpd"
)

// The IEEE 754-2008 decimal interchange encoding is cohort-preserving:
// a coefficient/exponent pair inside the format's ranges packs exactly
// as given, without normalization, and unpacks to the same pair. Only
// out-of-range inputs are adjusted, by rounding excess digits away or
// padding the coefficient with zeros.

const (
	comboInf = 0x1e
	comboNaN = 0x1f
)

func (s *Spec) packDPDFields(v Value) ([]*big.Int, error) {
	var (
		combo   int
		expCont int64
		cont    = new(big.Int)
	)

	switch v.Class {
	case NaN:
		combo = comboNaN
		payload := new(big.Int)
		if v.Coeff != nil {
			payload.Mod(v.Coeff, s.pow(s.digits-1))
		}
		cont = s.packDeclets(payload)
	case Inf:
		combo = comboInf
	default:
		coeff, exp, overflow := s.dpdAdjust(v)
		if overflow {
			combo = comboInf
			break
		}
		enc := exp + s.biasInt
		msd, trailing := new(big.Int), new(big.Int)
		msd.QuoRem(coeff, s.pow(s.digits-1), trailing)
		cont = s.packDeclets(trailing)
		expCont = int64(enc) & (1<<s.dpdExpW - 1)
		eMSB := enc >> s.dpdExpW
		if d := int(msd.Int64()); d <= 7 {
			combo = eMSB<<3 | d
		} else {
			combo = 0x18 | eMSB<<1 | d&1
		}
	}

	fields := make([]*big.Int, len(s.widths))
	for i := range fields {
		fields[i] = new(big.Int)
	}
	if v.Sign < 0 {
		s.setField(fields, FieldSign, big.NewInt(1))
	}
	s.setField(fields, FieldCombination, big.NewInt(int64(combo)))
	s.setField(fields, FieldExponent, big.NewInt(expCont))
	s.setField(fields, FieldSignificand, cont)
	return fields, nil
}

// dpdAdjust fits a finite value into the coefficient and exponent
// ranges with the minimal disturbance to its cohort. It reports
// overflow when even a fully padded coefficient cannot absorb the
// exponent excess.
func (s *Spec) dpdAdjust(v Value) (*big.Int, int, bool) {
	coeff := new(big.Int)
	if v.Coeff != nil {
		coeff.Set(v.Coeff)
	}
	exp := v.Exp
	eMin, eMax := s.eMinInt(), s.eMaxInt()

	k := s.digitLen(coeff) - s.digits
	if coeff.Sign() == 0 {
		k = 0
	}
	if up := eMin - exp; up > k {
		k = up
	}
	if k > 0 {
		div := s.pow(k)
		rem := new(big.Int)
		coeff.QuoRem(coeff, div, rem)
		if roundsUp(rem, div, digitEven(coeff, 10), v.Sign, s.rounding) {
			coeff.Add(coeff, one)
		}
		exp += k
		if s.digitLen(coeff) > s.digits {
			coeff.Quo(coeff, big.NewInt(10))
			exp++
		}
	}
	for exp > eMax && s.digitLen(coeff) < s.digits {
		coeff.Mul(coeff, big.NewInt(10))
		exp--
	}
	if exp > eMax {
		if coeff.Sign() == 0 {
			return coeff, eMax, false
		}
		return coeff, exp, true
	}
	if exp < eMin {
		// only reachable for zero, whose quantum just saturates
		exp = eMin
	}
	return coeff, exp, false
}

func (s *Spec) unpackDPDFields(fields []*big.Int) (Value, error) {
	sign := 1
	if sv := s.fieldValue(fields, FieldSign); sv != nil && sv.Sign() != 0 {
		sign = -1
	}
	combo := int(s.fieldValue(fields, FieldCombination).Int64())
	cont := s.fieldValue(fields, FieldSignificand)

	switch combo {
	case comboNaN:
		return NaNValue(sign, s.unpackDeclets(cont)), nil
	case comboInf:
		// trailing significand bits of an infinity are ignored
		return InfValue(sign), nil
	}

	var msd, eMSB int
	if combo>>3 == 3 {
		msd = 8 | combo&1
		eMSB = combo >> 1 & 3
	} else {
		msd = combo & 7
		eMSB = combo >> 3
	}
	enc := eMSB<<s.dpdExpW | int(s.fieldValue(fields, FieldExponent).Int64())
	exp := enc - s.biasInt

	coeff := new(big.Int).Mul(big.NewInt(int64(msd)), s.pow(s.digits-1))
	coeff.Add(coeff, s.unpackDeclets(cont))
	if coeff.Sign() == 0 {
		// a zero keeps its quantum
		return Value{Sign: sign, Coeff: coeff, Exp: exp, Class: Zero}, nil
	}
	cls := Finite
	v := Value{Sign: sign, Coeff: coeff, Exp: exp, Class: cls}
	if s.cmpMagnitude(v, s.MinNormal()) < 0 {
		v.Class = Subnormal
	}
	return v, nil
}

// packDeclets compresses the trailing digits (everything below the MSD)
// into densely packed declets, most significant declet in the highest
// bits.
func (s *Spec) packDeclets(trailing *big.Int) *big.Int {
	n := (s.digits - 1) / 3
	groups := make([]uint16, n)
	rest := new(big.Int).Set(trailing)
	tmp := new(big.Int)
	thousand := big.NewInt(1000)
	for i := 0; i < n; i++ {
		rest.QuoRem(rest, thousand, tmp)
		groups[i] = dpd.FromBCD(uint16(tmp.Int64()))
	}
	acc := new(big.Int)
	for i := n - 1; i >= 0; i-- {
		acc.Lsh(acc, 10)
		acc.Or(acc, tmp.SetInt64(int64(groups[i])))
	}
	return acc
}

func (s *Spec) unpackDeclets(cont *big.Int) *big.Int {
	n := (s.digits - 1) / 3
	acc := new(big.Int)
	tmp := new(big.Int)
	thousand := big.NewInt(1000)
	for i := n - 1; i >= 0; i-- {
		declet := uint16(tmp.Rsh(cont, uint(10*i)).And(tmp, big.NewInt(0x3ff)).Int64())
		acc.Mul(acc, thousand)
		acc.Add(acc, tmp.SetInt64(int64(dpd.ToBCD(declet))))
	}
	return acc
}
