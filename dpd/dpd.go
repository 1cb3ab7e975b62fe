// Package dpd converts groups of decimal digits to and from densely
// packed decimal declets, the IEEE 754-2008 decimal interchange encoding
// of three binary-coded-decimal digits in 10 bits.
//
// The conversion is pure combinational logic over named bits: the three
// input digits supply bits a..m, the declet carries bits p..y. The
// equations are Cowlishaw's and are reproduced bit-exactly; decoding
// accepts the non-canonical declets the standard aliases onto values
// whose digits are all eights and nines.
//
// Groups of one or two leading digits use truncated forms of the same
// equations: a single digit occupies 4 bits, a digit pair occupies 7.
package dpd

// FromBCD packs three decimal digits (0 <= n <= 999) into a 10-bit
// declet. Inputs outside the range produce an unspecified declet.
func FromBCD(n uint16) uint16 {
	d1 := n / 100 % 10
	d2 := n / 10 % 10
	d3 := n % 10

	a, b, c, d := d1&8 != 0, d1&4 != 0, d1&2 != 0, d1&1 != 0
	e, f, g, h := d2&8 != 0, d2&4 != 0, d2&2 != 0, d2&1 != 0
	i, j, k, m := d3&8 != 0, d3&4 != 0, d3&2 != 0, d3&1 != 0

	p := b || (a && j) || (a && f && i)
	q := c || (a && k) || (a && g && i)
	r := d
	s := (f && (!a || !i)) || (!a && e && j) || (e && i)
	t := g || (!a && e && k) || (a && i)
	u := h
	v := a || e || i
	w := a || (e && i) || (!e && j)
	x := e || (a && i) || (!a && k)
	y := m

	return declet(p, q, r, s, t, u, v, w, x, y)
}

// ToBCD unpacks a 10-bit declet into its three-digit value (0..999).
func ToBCD(code uint16) uint16 {
	p, q, r := code&0x200 != 0, code&0x100 != 0, code&0x080 != 0
	s, t, u := code&0x040 != 0, code&0x020 != 0, code&0x010 != 0
	v := code&0x008 != 0
	w, x, y := code&0x004 != 0, code&0x002 != 0, code&0x001 != 0

	a := v && w && (!x || !s || t)
	b := p && !a
	c := q && !a
	d := r
	e := v && x && (!w || s || !t)
	f := (s && (!v || !x)) || (p && v && w && x && !s && t)
	g := (t && (!v || !x)) || (q && v && w && x && !s && t)
	h := u
	i := v && ((!w && !x) || (w && x && (s || t)))
	j := (!v && w) || (v && !w && x && s) || (v && w && p && (!x || (!s && !t)))
	k := (!v && x) || (v && !w && x && t) || (v && w && q && (!x || (!s && !t)))
	m := y

	return 100*digit(a, b, c, d) + 10*digit(e, f, g, h) + digit(i, j, k, m)
}

// FromBCD2 packs a two-digit group (0 <= n <= 99) into 7 bits. It is the
// truncated form of FromBCD: with a zero leading digit the top three
// declet bits are always clear.
func FromBCD2(n uint8) uint8 {
	return uint8(FromBCD(uint16(n)) & 0x7F)
}

// ToBCD2 unpacks a 7-bit code into its two-digit value (0..99).
func ToBCD2(code uint8) uint8 {
	return uint8(ToBCD(uint16(code) & 0x7F))
}

// FromBCD1 packs a single digit (0 <= n <= 9) into 4 bits. The truncated
// equations collapse to the digit's own BCD bits.
func FromBCD1(n uint8) uint8 {
	return uint8(FromBCD(uint16(n)) & 0x0F)
}

// ToBCD1 unpacks a 4-bit code into its digit value (0..9).
func ToBCD1(code uint8) uint8 {
	return uint8(ToBCD(uint16(code) & 0x0F))
}

func declet(bits ...bool) uint16 {
	var out uint16
	for _, b := range bits {
		out <<= 1
		if b {
			out |= 1
		}
	}
	return out
}

func digit(b8, b4, b2, b1 bool) uint16 {
	var d uint16
	if b8 {
		d |= 8
	}
	if b4 {
		d |= 4
	}
	if b2 {
		d |= 2
	}
	if b1 {
		d |= 1
	}
	return d
}
