package floatformat

import (
	"math/big"

	"github.com/floatbits/floatbits/bitfield"
)

// Pack encodes v into a fresh byte slice of Size() bytes. Values whose
// significand or exponent do not fit the format are rounded and clamped
// under the format's rounding policy; a magnitude beyond the largest
// finite value becomes infinity when the format has one and fails with
// ErrNotRepresentable otherwise.
func (s *Spec) Pack(v Value) ([]byte, error) {
	if s.family == PairedDouble {
		return s.packPaired(v)
	}
	fields, err := s.PackFields(v)
	if err != nil {
		return nil, err
	}
	if s.packHook != nil {
		s.packHook(s, fields)
	}
	return bitfield.Pack(fields, s.widths, s.fradix, s.endian)
}

// Unpack decodes b, which must be exactly Size() bytes.
func (s *Spec) Unpack(b []byte) (Value, error) {
	if s.family == PairedDouble {
		return s.unpackPaired(b)
	}
	if len(b) != s.size {
		return Value{}, ErrEncoding.New("%s: got %d bytes, want %d", s.name, len(b), s.size)
	}
	fields, err := bitfield.Unpack(b, s.widths, s.fradix, s.endian)
	if err != nil {
		return Value{}, ErrEncoding.Wrap(err)
	}
	if s.unpackHook != nil {
		s.unpackHook(s, fields)
	}
	return s.UnpackFields(fields)
}

// PackFields encodes v into raw per-field integers, in declaration
// order, without serializing them. Hooks are not applied.
func (s *Spec) PackFields(v Value) ([]*big.Int, error) {
	switch s.family {
	case DPD:
		return s.packDPDFields(v)
	case PairedDouble:
		return nil, ErrSchema.New("%s: paired-double formats have no field layout", s.name)
	default:
		return s.packCommonFields(v)
	}
}

// UnpackFields decodes raw per-field integers produced by PackFields or
// bitfield.Unpack.
func (s *Spec) UnpackFields(fields []*big.Int) (Value, error) {
	if len(fields) != len(s.widths) {
		return Value{}, ErrEncoding.New("%s: got %d fields, want %d", s.name, len(fields), len(s.widths))
	}
	switch s.family {
	case DPD:
		return s.unpackDPDFields(fields)
	case PairedDouble:
		return Value{}, ErrSchema.New("%s: paired-double formats have no field layout", s.name)
	default:
		return s.unpackCommonFields(fields)
	}
}

// fieldValue joins the pieces of a possibly split field, least
// significant piece first. It returns nil when the field is absent.
func (s *Spec) fieldValue(fields []*big.Int, name string) *big.Int {
	idx := s.index[name]
	if len(idx) == 0 {
		return nil
	}
	if len(idx) == 1 {
		return new(big.Int).Set(fields[idx[0]])
	}
	acc := new(big.Int)
	shift := 0
	for _, i := range idx {
		piece := new(big.Int).Mul(fields[i], s.fpow(shift))
		acc.Add(acc, piece)
		shift += s.widths[i]
	}
	return acc
}

// setField splits v across the pieces of a field, least significant
// piece first. Absent fields are ignored.
func (s *Spec) setField(fields []*big.Int, name string, v *big.Int) {
	idx := s.index[name]
	if len(idx) == 1 {
		fields[idx[0]] = new(big.Int).Set(v)
		return
	}
	rest := new(big.Int).Set(v)
	for _, i := range idx {
		piece := new(big.Int)
		rest.QuoRem(rest, s.fpow(s.widths[i]), piece)
		fields[i] = piece
	}
}

// digitEven reports whether the last radix-r digit of q is even.
func digitEven(q *big.Int, r int) bool {
	d := new(big.Int).Mod(q, big.NewInt(int64(r)))
	return d.Bit(0) == 0
}

// roundsUp decides whether a truncated quotient must be incremented,
// given the discarded remainder, the divisor and the value's sign.
func roundsUp(rem, div *big.Int, qEven bool, sign int, mode Rounding) bool {
	if rem.Sign() == 0 {
		return false
	}
	switch mode {
	case RoundZero:
		return false
	case RoundUp:
		return sign > 0
	case RoundDown:
		return sign < 0
	}
	twice := new(big.Int).Lsh(rem, 1)
	switch twice.Cmp(div) {
	case -1:
		return false
	case 1:
		return true
	}
	if mode == RoundAway {
		return true
	}
	return !qEven
}

// clamp fits an arbitrary finite coefficient and exponent into the
// format's digit and exponent windows, rounding when digits are shed.
// The returned class is Zero on total underflow, Inf on overflow,
// Subnormal when gradual underflow leaves a short coefficient, and
// Finite otherwise.
func (s *Spec) clamp(v Value) (*big.Int, int, Class) {
	coeff := new(big.Int).Set(v.Coeff)
	exp := v.Exp
	if coeff.Sign() == 0 {
		return coeff, 0, Zero
	}
	eMin, eMax := s.eMinInt(), s.eMaxInt()

	k := s.digitLen(coeff) - s.digits
	if up := eMin - exp; up > k {
		k = up
	}
	switch {
	case k > 0:
		div := s.pow(k)
		rem := new(big.Int)
		coeff.QuoRem(coeff, div, rem)
		if roundsUp(rem, div, digitEven(coeff, s.radix), v.Sign, s.rounding) {
			coeff.Add(coeff, one)
		}
		exp += k
		if s.digitLen(coeff) > s.digits {
			// carry out: coeff is exactly radix^digits
			coeff.Quo(coeff, big.NewInt(int64(s.radix)))
			exp++
		}
		if coeff.Sign() == 0 {
			return coeff, 0, Zero
		}
	case k < 0:
		up := -k
		if room := exp - eMin; room < up {
			up = room
		}
		if up > 0 {
			coeff.Mul(coeff, s.pow(up))
			exp -= up
		}
	}

	if exp > eMax {
		return coeff, 0, Inf
	}
	if coeff.Cmp(s.pow(s.digits-1)) < 0 {
		if !s.gradual {
			return coeff, 0, Zero
		}
		return coeff, exp, Subnormal
	}
	return coeff, exp, Finite
}

func (s *Spec) packCommonFields(v Value) ([]*big.Int, error) {
	fields := make([]*big.Int, len(s.widths))
	for i := range fields {
		fields[i] = new(big.Int)
	}

	coeff, exp, cls := new(big.Int), 0, v.Class
	if cls == Finite || cls == Subnormal {
		coeff, exp, cls = s.clamp(v)
	}

	m := new(big.Int)
	var enc int
	switch cls {
	case Zero:
		switch {
		case s.zeroEnc.ok:
			enc = s.zeroEnc.val
		case s.minEnc <= 0 && 0 <= s.maxEnc:
			// all-zero exponent digits, the canonical zero register
			enc = 0
		default:
			enc = s.minEnc
		}
	case Subnormal:
		enc = s.minEnc
		if s.subnEnc.ok {
			enc = s.subnEnc.val
		}
		m.Set(coeff)
	case Inf:
		if !s.infEnc.ok {
			return nil, ErrNotRepresentable.New("%s has no infinity", s.name)
		}
		enc = s.infEnc.val
	case NaN:
		if !s.nanEnc.ok {
			return nil, ErrNotRepresentable.New("%s has no NaN", s.name)
		}
		enc = s.nanEnc.val
		m.Set(s.nanPayload(v.Coeff))
	default:
		enc = exp + s.biasInt
		m.Set(coeff)
		if s.hidden {
			m.Sub(m, s.pow(s.digits-1))
		}
	}

	s.setField(fields, FieldExponent, s.encodeExp(enc))
	s.applySign(fields, m, v.Sign < 0)
	return fields, nil
}

// applySign writes the significand and sign fields, transforming the
// magnitude according to the negation mode when neg is set.
func (s *Spec) applySign(fields []*big.Int, m *big.Int, neg bool) {
	signVal := s.signPlus
	if neg {
		switch s.negMode {
		case NegSignMagnitude:
			signVal = s.signMinus
		case NegRadixComplement:
			if m.Sign() == 0 {
				// the complement encoding has no negative zero
				break
			}
			signVal = s.signMinus
			m.Sub(s.pow(s.stored), m)
		case NegDiminishedRadixComplement:
			signVal = s.signMinus
			m.Sub(new(big.Int).Sub(s.pow(s.stored), one), m)
		case NegSignificandComplement:
			signVal = s.signMinus
			if m.Sign() != 0 {
				m.Sub(s.pow(s.stored), m)
			}
		}
	}
	s.setField(fields, FieldSignificand, m)
	if len(s.index[FieldSign]) > 0 {
		s.setField(fields, FieldSign, new(big.Int).SetUint64(signVal))
	}
}

// readSign recovers the logical sign and the natural magnitude from the
// sign and significand fields.
func (s *Spec) readSign(fields []*big.Int) (int, *big.Int) {
	m := s.fieldValue(fields, FieldSignificand)
	sign := 1
	if sv := s.fieldValue(fields, FieldSign); sv != nil && sv.Uint64() != s.signPlus {
		sign = -1
	}
	if sign < 0 {
		switch s.negMode {
		case NegRadixComplement, NegSignificandComplement:
			if m.Sign() != 0 {
				m.Sub(s.pow(s.stored), m)
			}
		case NegDiminishedRadixComplement:
			m.Sub(new(big.Int).Sub(s.pow(s.stored), one), m)
		}
	}
	return sign, m
}

func (s *Spec) unpackCommonFields(fields []*big.Int) (Value, error) {
	sign, m := s.readSign(fields)
	enc := s.decodeExp(s.fieldValue(fields, FieldExponent))

	shared := s.infEnc.ok && s.nanEnc.ok && s.infEnc.val == s.nanEnc.val
	switch {
	case shared && enc == s.infEnc.val:
		if m.Sign() == 0 {
			return InfValue(sign), nil
		}
		return NaNValue(sign, m), nil
	case s.nanEnc.ok && enc == s.nanEnc.val:
		return NaNValue(sign, m), nil
	case s.infEnc.ok && enc == s.infEnc.val:
		if m.Sign() != 0 {
			return Value{}, ErrEncoding.New("%s: nonzero significand in the infinity slot", s.name)
		}
		return InfValue(sign), nil
	}

	if s.hidden {
		if s.zeroEnc.ok && enc == s.zeroEnc.val {
			if m.Sign() == 0 {
				return ZeroValue(sign), nil
			}
			if s.subnEnc.ok && s.subnEnc.val == enc {
				return Value{Sign: sign, Coeff: m, Exp: s.eMinInt(), Class: Subnormal}, nil
			}
			return Value{}, ErrEncoding.New("%s: denormalized significand without gradual underflow", s.name)
		}
		coeff := m.Add(m, s.pow(s.digits-1))
		return Value{Sign: sign, Coeff: coeff, Exp: enc - s.biasInt, Class: Finite}, nil
	}

	if m.Sign() == 0 {
		return ZeroValue(sign), nil
	}
	exp := enc - s.biasInt
	cls := Finite
	if s.gradual && exp == s.eMinInt() && m.Cmp(s.pow(s.digits-1)) < 0 {
		cls = Subnormal
	}
	return Value{Sign: sign, Coeff: m, Exp: exp, Class: cls}, nil
}

// nanPayload clamps a requested NaN payload to the stored significand
// width, substituting the conventional quiet pattern (a leading 1 digit)
// when the payload is zero or too wide.
func (s *Spec) nanPayload(p *big.Int) *big.Int {
	if p == nil || p.Sign() == 0 || p.Cmp(s.pow(s.stored)) >= 0 {
		return s.pow(s.stored - 1)
	}
	return p
}

func (s *Spec) encodeExp(enc int) *big.Int {
	if s.expMode == ExpRadixComplement && enc < 0 {
		enc += s.expSpan
	}
	return big.NewInt(int64(enc))
}

func (s *Spec) decodeExp(raw *big.Int) int {
	enc := int(raw.Int64())
	if s.expMode == ExpRadixComplement && enc >= s.expSpan/2 {
		enc -= s.expSpan
	}
	return enc
}
