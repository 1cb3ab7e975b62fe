package floatformat

import (
	"math"
	"math/big"

	"github.com/floatbits/floatbits/bitfield"
)

// Family selects the encoding scheme a format uses for its significand
// and exponent fields.
type Family int

// Families.
const (
	// Binary formats store a base-2 significand, optionally with a
	// hidden leading bit (IEEE 754 binary interchange, VAX, x87, ...).
	Binary Family = iota
	// Hexadecimal formats store a binary significand whose scaling
	// radix is 16 (IBM System/360 style). No hidden bit.
	Hexadecimal
	// BCD formats measure every field in decimal digits, one digit per
	// nibble (pocket calculators, HP Saturn).
	BCD
	// DPD formats are IEEE 754-2008 decimal interchange encodings: a
	// 5-bit combination field plus densely packed decimal declets.
	DPD
	// PairedDouble composes two encodings of a half format whose sum
	// is the represented value (double-double arithmetic).
	PairedDouble
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case Binary:
		return "binary"
	case Hexadecimal:
		return "hexadecimal"
	case BCD:
		return "bcd"
	case DPD:
		return "dpd"
	case PairedDouble:
		return "paired-double"
	default:
		return "<invalid>"
	}
}

// ExpMode selects how the exponent field encodes negative exponents.
type ExpMode int

// Exponent encodings.
const (
	// ExpExcess stores exponent+bias as an unsigned field.
	ExpExcess ExpMode = iota
	// ExpRadixComplement stores the (biased) exponent modulo the
	// field's radix power, radix-complementing negative values.
	ExpRadixComplement
)

// BiasMode names the significand interpretation a bias belongs to. The
// three interpretations place the radix point after the last digit
// (integral), before the first digit (fractional) or after the first
// digit (scientific), and their biases are mutually derivable.
type BiasMode int

// Bias interpretations.
const (
	BiasIntegral BiasMode = iota
	BiasFractional
	BiasScientific
)

// Rounding selects how pack and numeral conversion resolve inexact
// significands.
type Rounding int

// Rounding policies.
const (
	// RoundEven rounds to nearest, ties to an even last digit.
	RoundEven Rounding = iota
	// RoundAway rounds to nearest, ties away from zero.
	RoundAway
	// RoundZero truncates toward zero.
	RoundZero
	// RoundUp rounds toward positive infinity.
	RoundUp
	// RoundDown rounds toward negative infinity.
	RoundDown
)

// NegMode selects how negative values are encoded.
type NegMode int

// Negative-value encodings.
const (
	// NegSignMagnitude stores the magnitude with a sign field.
	NegSignMagnitude NegMode = iota
	// NegRadixComplement radix-complements the significand and sets
	// the sign field to its maximum digit (two's/ten's complement).
	NegRadixComplement
	// NegDiminishedRadixComplement uses the diminished complement
	// (one's/nines' complement); negative zero is all max digits.
	NegDiminishedRadixComplement
	// NegSignificandComplement radix-complements the significand only,
	// keeping an ordinary sign-magnitude sign field.
	NegSignificandComplement
)

// Well-known field names. Fields with other names are packed as zero and
// ignored on unpack (padding).
const (
	FieldSign        = "sign"
	FieldExponent    = "exponent"
	FieldSignificand = "significand"
	FieldCombination = "combination"
)

// Field is one entry of a format's ordered layout, least significant
// first. Width is in bits for Binary, Hexadecimal and DPD formats and in
// decimal digits for BCD formats. Repeating a name declares a split
// field; only Binary and BCD formats support splits.
type Field struct {
	Name  string
	Width int
}

// SlotRule says whether a special value gets a reserved encoded
// exponent.
type SlotRule int

// Slot rules.
const (
	// SlotOff declares the special value unrepresentable.
	SlotOff SlotRule = iota
	// SlotAuto reserves the topmost (or, for zero, bottommost)
	// encodable exponent.
	SlotAuto
	// SlotAt reserves a caller-chosen encoded exponent.
	SlotAt
)

// Slot is a special-value encoded-exponent marker. The zero value is
// SlotOff.
type Slot struct {
	Rule SlotRule
	At   int
}

// AutoSlot reserves an automatically assigned encoded exponent.
func AutoSlot() Slot { return Slot{Rule: SlotAuto} }

// SlotValue reserves the given encoded exponent.
func SlotValue(e int) Slot { return Slot{Rule: SlotAt, At: e} }

// Hook is a transform applied to the raw field values at a fixed point
// of pack (just before serialization) or unpack (just after parsing).
// It exists for the handful of historical formats whose negation or
// bias rule fits none of the NegMode/ExpMode combinations. Hooks must
// not retain the slice.
type Hook func(s *Spec, fields []*big.Int)

// Params is the declarative description consumed once by Compile.
// Invalid combinations fail there, never at pack/unpack time.
type Params struct {
	Name   string
	Family Family

	Fields []Field
	Radix  int // significand radix: 2, 10 or 16

	HiddenBit        bool
	GradualUnderflow bool

	ExpMode  ExpMode
	Bias     int
	BiasMode BiasMode

	// MinEncExp and MaxEncExp override the regular encoded exponent
	// bounds derived from the field width and the special slots.
	MinEncExp *int
	MaxEncExp *int

	Zero      Slot
	Subnormal Slot
	Inf       Slot
	NaN       Slot

	Endianness bitfield.ByteOrder
	Rounding   Rounding

	NegMode NegMode
	// SignPlus and SignMinus are the sign field values for positive
	// and negative numbers. A zero SignMinus means the default: the
	// sign field's maximum value (1 for a sign bit, 9 for a BCD sign
	// digit).
	SignPlus  uint64
	SignMinus uint64

	PackHook   Hook
	UnpackHook Hook

	// Half configures the component format of a PairedDouble.
	// ExtraPrecision lets the low half's sign diverge from the high
	// half's, buying one extra significand bit.
	Half           *Params
	ExtraPrecision bool
}

type slot struct {
	val int
	ok  bool
}

// Spec is a compiled format. It is immutable after Compile returns and
// therefore safe to share across concurrent pack/unpack calls; Values
// reference it without copying.
type Spec struct {
	name    string
	family  Family
	fields  []Field
	widths  []int
	index   map[string][]int
	radix   int
	fradix  int // field packing radix: 2 or 10
	digits  int
	stored  int // significand field width in significand digits
	hidden  bool
	gradual bool

	expMode   ExpMode
	expWidth  int // exponent field width in field digits
	expSpan   int // fradix^expWidth (complement modulus)
	dpdExpW   int // DPD: exponent continuation bits
	biasInt   int
	minEnc    int
	maxEnc    int
	zeroEnc   slot
	subnEnc   slot
	infEnc    slot
	nanEnc    slot
	rounding  Rounding
	negMode   NegMode
	signPlus  uint64
	signMinus uint64
	endian    bitfield.ByteOrder

	packHook   Hook
	unpackHook Hook

	half      *Spec
	extraPrec bool

	size int
}

// Compile resolves a parameter record into an immutable Spec. All schema
// validation happens here.
func Compile(p Params) (*Spec, error) {
	s := &Spec{
		name:       p.Name,
		family:     p.Family,
		hidden:     p.HiddenBit,
		gradual:    p.GradualUnderflow,
		expMode:    p.ExpMode,
		rounding:   p.Rounding,
		negMode:    p.NegMode,
		endian:     p.Endianness,
		packHook:   p.PackHook,
		unpackHook: p.UnpackHook,
	}
	if s.name == "" {
		s.name = p.Family.String()
	}

	if p.Family == PairedDouble {
		return compilePaired(s, p)
	}

	if err := s.compileLayout(p); err != nil {
		return nil, err
	}
	if err := s.compileExponent(p); err != nil {
		return nil, err
	}
	if err := s.compileSign(p); err != nil {
		return nil, err
	}
	s.size = bitfield.Width(s.widths, s.fradix)
	return s, nil
}

// MustCompile is Compile for format tables built at init time; it panics
// on schema errors.
func MustCompile(p Params) *Spec {
	s, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Spec) compileLayout(p Params) error {
	switch p.Family {
	case Binary:
		if p.Radix != 2 {
			return ErrSchema.New("%s: binary family requires radix 2, got %d", s.name, p.Radix)
		}
	case Hexadecimal:
		if p.Radix != 16 {
			return ErrSchema.New("%s: hexadecimal family requires radix 16, got %d", s.name, p.Radix)
		}
		if p.HiddenBit {
			return ErrSchema.New("%s: hexadecimal formats have no hidden bit", s.name)
		}
	case BCD, DPD:
		if p.Radix != 10 {
			return ErrSchema.New("%s: %s family requires radix 10, got %d", s.name, p.Family, p.Radix)
		}
		if p.HiddenBit {
			return ErrSchema.New("%s: %s formats have no hidden bit", s.name, p.Family)
		}
	default:
		return ErrSchema.New("%s: unknown family %d", s.name, int(p.Family))
	}
	s.radix = p.Radix
	s.fradix = 2
	if p.Family == BCD {
		s.fradix = 10
	}

	if len(p.Fields) == 0 {
		return ErrSchema.New("%s: no fields declared", s.name)
	}
	s.fields = make([]Field, len(p.Fields))
	copy(s.fields, p.Fields)
	s.widths = make([]int, len(p.Fields))
	s.index = make(map[string][]int, len(p.Fields))
	for i, f := range p.Fields {
		if f.Width <= 0 {
			return ErrSchema.New("%s: field %q has width %d", s.name, f.Name, f.Width)
		}
		s.widths[i] = f.Width
		s.index[f.Name] = append(s.index[f.Name], i)
	}
	splitOK := p.Family == Binary || p.Family == BCD
	for name, idx := range s.index {
		if len(idx) > 1 && !splitOK {
			return ErrSchema.New("%s: split field %q is not supported by the %s family",
				s.name, name, p.Family)
		}
	}

	sigWidth := s.fieldWidth(FieldSignificand)
	if sigWidth == 0 {
		return ErrSchema.New("%s: missing %q field", s.name, FieldSignificand)
	}
	switch p.Family {
	case Binary:
		s.stored = sigWidth
	case Hexadecimal:
		if sigWidth%4 != 0 {
			return ErrSchema.New("%s: hexadecimal significand width %d is not a whole number of nibbles",
				s.name, sigWidth)
		}
		s.stored = sigWidth / 4
	case BCD:
		s.stored = sigWidth
	case DPD:
		if sigWidth%10 != 0 {
			return ErrSchema.New("%s: significand continuation width %d is not a whole number of declets",
				s.name, sigWidth)
		}
		s.stored = 3*sigWidth/10 + 1 // continuation digits plus the combination-field MSD
		if w := s.fieldWidth(FieldCombination); w != 5 {
			return ErrSchema.New("%s: dpd formats need a 5-bit %q field, got %d bits",
				s.name, FieldCombination, w)
		}
	}
	s.digits = s.stored
	if s.hidden {
		s.digits++
	}
	return nil
}

func (s *Spec) compileExponent(p Params) error {
	s.expWidth = s.fieldWidth(FieldExponent)
	if s.expWidth == 0 {
		return ErrSchema.New("%s: missing %q field", s.name, FieldExponent)
	}

	var encLo, encHi int
	switch {
	case s.family == DPD:
		if s.expWidth > 56 {
			return ErrSchema.New("%s: exponent continuation of %d bits is too wide", s.name, s.expWidth)
		}
		if p.ExpMode != ExpExcess {
			return ErrSchema.New("%s: dpd formats use excess exponents only", s.name)
		}
		s.dpdExpW = s.expWidth
		encLo, encHi = 0, 3<<s.expWidth-1
	case s.fradix == 2:
		if s.expWidth > 60 {
			return ErrSchema.New("%s: exponent field of %d bits is too wide", s.name, s.expWidth)
		}
		s.expSpan = 1 << s.expWidth
		encLo, encHi = 0, s.expSpan-1
	default: // decimal digits
		if s.expWidth > 17 {
			return ErrSchema.New("%s: exponent field of %d digits is too wide", s.name, s.expWidth)
		}
		s.expSpan = 1
		for i := 0; i < s.expWidth; i++ {
			s.expSpan *= 10
		}
		encLo, encHi = 0, s.expSpan-1
	}
	if p.ExpMode == ExpRadixComplement {
		encLo, encHi = -s.expSpan/2, s.expSpan/2-1
	}

	switch p.BiasMode {
	case BiasIntegral:
		s.biasInt = p.Bias
	case BiasFractional:
		s.biasInt = p.Bias + s.digits
	case BiasScientific:
		s.biasInt = p.Bias + s.digits - 1
	default:
		return ErrSchema.New("%s: unknown bias mode %d", s.name, int(p.BiasMode))
	}

	s.minEnc, s.maxEnc = encLo, encHi

	// Infinity and NaN consume the top of the encodable range. When
	// both are automatic they share one slot, discriminated by the
	// significand (the IEEE convention).
	if s.family != DPD {
		switch p.NaN.Rule {
		case SlotAuto:
			s.nanEnc = slot{s.maxEnc, true}
		case SlotAt:
			s.nanEnc = slot{p.NaN.At, true}
		}
		switch p.Inf.Rule {
		case SlotAuto:
			if p.NaN.Rule == SlotAuto {
				s.infEnc = s.nanEnc
			} else {
				s.infEnc = slot{s.maxEnc, true}
			}
		case SlotAt:
			s.infEnc = slot{p.Inf.At, true}
		}
		for _, sl := range []slot{s.nanEnc, s.infEnc} {
			if !sl.ok {
				continue
			}
			if sl.val < encLo || sl.val > encHi {
				return ErrSchema.New("%s: special exponent %d outside the encodable range [%d,%d]",
					s.name, sl.val, encLo, encHi)
			}
			if sl.val-1 < s.maxEnc {
				s.maxEnc = sl.val - 1
			}
		}
	}
	if p.MaxEncExp != nil {
		if *p.MaxEncExp > encHi {
			return ErrSchema.New("%s: max encoded exponent %d exceeds the field range", s.name, *p.MaxEncExp)
		}
		s.maxEnc = *p.MaxEncExp
	}

	// A hidden-bit format reserves its conventional minimum encoded
	// exponent for zero, and for denormals under gradual underflow,
	// unless the caller overrode the minimum explicitly.
	switch {
	case p.MinEncExp != nil:
		s.minEnc = *p.MinEncExp
	case s.hidden:
		s.zeroEnc = slot{s.minEnc, true}
		if s.gradual {
			s.subnEnc = s.zeroEnc
		}
		s.minEnc++
	}
	if p.Zero.Rule == SlotAt {
		s.zeroEnc = slot{p.Zero.At, true}
	}
	if p.Subnormal.Rule == SlotAt {
		s.subnEnc = slot{p.Subnormal.At, true}
	}

	if s.minEnc > s.maxEnc {
		return ErrSchema.New("%s: empty exponent range [%d,%d] after slot reservation",
			s.name, s.minEnc, s.maxEnc)
	}
	return nil
}

func (s *Spec) compileSign(p Params) error {
	w := s.fieldWidth(FieldSign)
	if w == 0 {
		if p.NegMode != NegSignMagnitude {
			return ErrSchema.New("%s: negation mode %d needs a %q field", s.name, int(p.NegMode), FieldSign)
		}
		return nil
	}
	span := uint64(1)
	for i := 0; i < w; i++ {
		span *= uint64(s.fradix)
	}
	s.signPlus = p.SignPlus
	s.signMinus = p.SignMinus
	if s.signMinus == 0 {
		s.signMinus = span - 1
	}
	if s.signPlus >= span || s.signMinus >= span || s.signPlus == s.signMinus {
		return ErrSchema.New("%s: sign values %d/%d do not fit a %d-digit sign field",
			s.name, s.signPlus, s.signMinus, w)
	}
	return nil
}

func compilePaired(s *Spec, p Params) (*Spec, error) {
	if p.Half == nil {
		return nil, ErrSchema.New("%s: paired-double formats need a half format", s.name)
	}
	if len(p.Fields) != 0 {
		return nil, ErrSchema.New("%s: paired-double formats declare no fields of their own", s.name)
	}
	hp := *p.Half
	if hp.Name == "" {
		hp.Name = s.name + "/half"
	}
	half, err := Compile(hp)
	if err != nil {
		return nil, err
	}
	if half.family == PairedDouble {
		return nil, ErrSchema.New("%s: paired-double halves cannot nest", s.name)
	}
	if p.ExtraPrecision && half.radix != 2 {
		return nil, ErrSchema.New("%s: extra precision requires a radix-2 half", s.name)
	}
	s.half = half
	s.extraPrec = p.ExtraPrecision
	s.radix = half.radix
	s.fradix = half.fradix
	s.digits = 2 * half.digits
	if p.ExtraPrecision {
		s.digits++
	}
	s.gradual = half.gradual
	s.rounding = half.rounding
	s.endian = half.endian
	s.size = 2 * half.size

	// The combined exponent range is the half's, trimmed at the top so
	// the full-width significand of the high part still fits.
	s.biasInt = 0
	s.minEnc = half.eMinInt()
	s.maxEnc = half.eMaxInt() - (s.digits - half.digits)
	if half.infEnc.ok {
		s.infEnc = slot{0, true}
	}
	if half.nanEnc.ok {
		s.nanEnc = slot{0, true}
	}
	return s, nil
}

// Name returns the format's name.
func (s *Spec) Name() string { return s.name }

// Family returns the format's codec family.
func (s *Spec) Family() Family { return s.family }

// Radix returns the significand radix (2, 10 or 16).
func (s *Spec) Radix() int { return s.radix }

// Digits returns the significand precision in radix digits, counting the
// hidden bit.
func (s *Spec) Digits() int { return s.digits }

// HiddenBit reports whether the format stores an implicit leading
// significand digit.
func (s *Spec) HiddenBit() bool { return s.hidden }

// GradualUnderflow reports whether the minimum exponent carries
// denormalized values.
func (s *Spec) GradualUnderflow() bool { return s.gradual }

// Endianness returns the storage byte order.
func (s *Spec) Endianness() bitfield.ByteOrder { return s.endian }

// Rounding returns the format's rounding policy.
func (s *Spec) Rounding() Rounding { return s.rounding }

// Size returns the encoded length in bytes.
func (s *Spec) Size() int { return s.size }

// Fields returns a copy of the declared field layout. PairedDouble
// formats have no fields of their own.
func (s *Spec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Half returns the component format of a PairedDouble, or nil.
func (s *Spec) Half() *Spec { return s.half }

// Bias returns the exponent bias under the given significand
// interpretation.
func (s *Spec) Bias(mode BiasMode) int {
	switch mode {
	case BiasFractional:
		return s.biasInt - s.digits
	case BiasScientific:
		return s.biasInt - s.digits + 1
	default:
		return s.biasInt
	}
}

// MinExp returns the smallest regular radix exponent under the given
// interpretation.
func (s *Spec) MinExp(mode BiasMode) int { return s.minEnc - s.Bias(mode) }

// MaxExp returns the largest regular radix exponent under the given
// interpretation.
func (s *Spec) MaxExp(mode BiasMode) int { return s.maxEnc - s.Bias(mode) }

func (s *Spec) eMinInt() int { return s.minEnc - s.biasInt }
func (s *Spec) eMaxInt() int { return s.maxEnc - s.biasInt }

// MinValue returns the least positive representable magnitude: the
// smallest subnormal under gradual underflow, the minimum normal
// otherwise.
func (s *Spec) MinValue() Value {
	if s.gradual {
		return Value{Sign: 1, Coeff: big.NewInt(1), Exp: s.eMinInt(), Class: Subnormal}
	}
	return s.MinNormal()
}

// MinNormal returns the least positive normalized value.
func (s *Spec) MinNormal() Value {
	return Value{Sign: 1, Coeff: s.pow(s.digits - 1), Exp: s.eMinInt(), Class: Finite}
}

// MaxValue returns the largest finite value.
func (s *Spec) MaxValue() Value {
	coeff := s.pow(s.digits)
	coeff.Sub(coeff, one)
	return Value{Sign: 1, Coeff: coeff, Exp: s.eMaxInt(), Class: Finite}
}

// Epsilon returns the distance from 1 to the next larger representable
// value, radix^(1-digits).
func (s *Spec) Epsilon() Value {
	return s.canonical(1, big.NewInt(1), 1-s.digits)
}

// RadixPower returns radix^k as a value of this format.
func (s *Spec) RadixPower(k int) Value {
	return s.canonical(1, big.NewInt(1), k)
}

// DecimalDigits returns the number of decimal digits the format can
// round-trip: floor((digits-1) · log10(radix)).
func (s *Spec) DecimalDigits() int {
	if s.radix == 10 {
		return s.digits
	}
	return int(float64(s.digits-1) * math.Log10(float64(s.radix)))
}

var one = big.NewInt(1)

func (s *Spec) fieldWidth(name string) int {
	total := 0
	for _, i := range s.index[name] {
		total += s.widths[i]
	}
	return total
}

// pow returns radix^k for k >= 0.
func (s *Spec) pow(k int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(s.radix)), big.NewInt(int64(k)), nil)
}

func (s *Spec) fpow(k int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(s.fradix)), big.NewInt(int64(k)), nil)
}

// digitLen returns the number of radix digits of x (1 for zero).
func (s *Spec) digitLen(x *big.Int) int {
	switch {
	case x.Sign() == 0:
		return 1
	case s.radix == 2:
		return x.BitLen()
	case s.radix == 16:
		return (x.BitLen() + 3) / 4
	default:
		return len(x.Text(10))
	}
}

// canonical normalizes an exact (sign, coeff, exp) into the format's
// digit window without rounding: it scales up into [radix^(digits-1),
// radix^digits) when that is exact, leaves subnormals at the minimum
// exponent, and classifies the result. It must only be used where the
// scaling is known to be exact.
func (s *Spec) canonical(sign int, coeff *big.Int, exp int) Value {
	if coeff.Sign() == 0 {
		return ZeroValue(sign)
	}
	c := new(big.Int).Set(coeff)
	e := exp
	r := big.NewInt(int64(s.radix))
	min := s.pow(s.digits - 1)
	for s.digitLen(c) > s.digits {
		c.Quo(c, r)
		e++
	}
	for c.Cmp(min) < 0 && e > s.eMinInt() {
		c.Mul(c, r)
		e--
	}
	cls := Finite
	if c.Cmp(min) < 0 {
		cls = Subnormal
	}
	if e > s.eMaxInt() {
		return InfValue(sign)
	}
	return Value{Sign: sign, Coeff: c, Exp: e, Class: cls}
}
