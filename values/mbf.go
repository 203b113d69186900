package values

import "math"

// ---------------------------------------------------------------------------
// Microsoft Binary Format
// ---------------------------------------------------------------------------
//
// MBF stores the exponent in the last byte (bias 128, zero meaning 0.0) and
// the sign in the top bit of the byte before it, where IEEE keeps the
// implicit leading mantissa bit.

// SingleFromMBF decodes a 4-byte MBF single.
func SingleFromMBF(b [4]byte) Single {
	if b[3] == 0 {
		return 0
	}
	mant := uint32(b[2]|0x80)<<16 | uint32(b[1])<<8 | uint32(b[0])
	f := math.Ldexp(float64(mant), int(b[3])-152)
	if b[2]&0x80 != 0 {
		f = -f
	}
	return Single(f)
}

// DoubleFromMBF decodes an 8-byte MBF double.
func DoubleFromMBF(b [8]byte) Double {
	if b[7] == 0 {
		return 0
	}
	var mant uint64 = uint64(b[6] | 0x80)
	for i := 5; i >= 0; i-- {
		mant = mant<<8 | uint64(b[i])
	}
	f := math.Ldexp(float64(mant), int(b[7])-184)
	if b[6]&0x80 != 0 {
		f = -f
	}
	return Double(f)
}

// MBFSingle encodes a single in MBF. Values too small for the format encode
// as zero; values too large raise Overflow.
func MBFSingle(s Single) [4]byte {
	var b [4]byte
	mant, exp, neg := split(float64(s), 24)
	if mant == 0 || exp <= 0 {
		return b
	}
	if exp > 255 {
		checkSingle(math.Inf(1))
	}
	b[0] = byte(mant)
	b[1] = byte(mant >> 8)
	b[2] = byte(mant>>16) & 0x7f
	if neg {
		b[2] |= 0x80
	}
	b[3] = byte(exp)
	return b
}

// MBFDouble encodes a double in MBF.
func MBFDouble(d Double) [8]byte {
	var b [8]byte
	mant, exp, neg := split(float64(d), 56)
	if mant == 0 || exp <= 0 {
		return b
	}
	if exp > 255 {
		checkDouble(math.Inf(1))
	}
	for i := 0; i < 6; i++ {
		b[i] = byte(mant >> (8 * i))
	}
	b[6] = byte(mant>>48) & 0x7f
	if neg {
		b[6] |= 0x80
	}
	b[7] = byte(exp)
	return b
}

// split returns an integer mantissa of the given width with its top bit set,
// the biased MBF exponent and the sign.
func split(f float64, width int) (mant uint64, exp int, neg bool) {
	if f == 0 {
		return 0, 0, false
	}
	neg = f < 0
	frac, e := math.Frexp(math.Abs(f))
	m := math.Round(math.Ldexp(frac, width))
	if m >= math.Ldexp(1, width) {
		m /= 2
		e++
	}
	return uint64(m), e + 128, neg
}
