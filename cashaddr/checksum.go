package cashaddr

// generator holds the XOR constants of the BCH code, generator[i] is applied
// when bit i of the five bits shifted out of the 40-bit state is set
var generator = [5]uint64{0x98f2bc8e61, 0x79b76d99e2, 0xf33e5fb3c4, 0xae2eabe2a8, 0x1e4f43e470}

// polyMod computes the residue of the polynomial given by 5-bit values v modulo the generator
func polyMod(v []byte) uint64 {
	c := uint64(1)
	for _, d := range v {
		c0 := c >> 35
		c = (c&0x07ffffffff)<<5 ^ uint64(d)
		for i := uint(0); i < 5; i++ {
			if (c0>>i)&1 != 0 {
				c ^= generator[i]
			}
		}
	}
	return c ^ 1
}

// expandPrefix returns the lower 5 bits of each character of the lower-cased prefix
// followed by the zero separator
func expandPrefix(prefix string) []byte {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c&0x1f)
	}
	return append(out, 0)
}

// Checksum returns the checksum values for the packed payload under the given prefix
func Checksum(prefix string, packed []byte) [ChecksumLength]byte {
	data := expandPrefix(prefix)
	data = append(data, packed...)
	data = append(data, make([]byte, ChecksumLength)...)
	mod := polyMod(data)
	var chk [ChecksumLength]byte
	for i := range chk {
		chk[i] = byte(mod>>(5*uint(ChecksumLength-1-i))) & 0x1f
	}
	return chk
}

// VerifyChecksum checks that values, the packed payload followed by its checksum, are valid under the given prefix
func VerifyChecksum(prefix string, values []byte) bool {
	data := append(expandPrefix(prefix), values...)
	return polyMod(data) == 0
}
