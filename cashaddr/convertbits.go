package cashaddr

// Pack5 regroups data into 5-bit values, most significant bit first.
// If the last group has fewer than 5 bits, it is padded with zero bits.
// The result has ceil(8*len(data)/5) values.
func Pack5(data []byte) []byte {
	out := make([]byte, 0, packedLen(len(data)))
	var acc uint32
	var bits uint
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, byte(acc>>bits)&0x1f)
		}
		acc &= 1<<bits - 1
	}
	if bits > 0 {
		out = append(out, byte(acc<<(5-bits))&0x1f)
	}
	return out
}

// Unpack5 is the inverse of Pack5, it joins 5-bit values into bytes, most significant bit first.
// Leftover bits that do not form a whole byte are dropped, they are the padding added by Pack5.
// The result has floor(5*len(values)/8) bytes.
func Unpack5(values []byte) []byte {
	out := make([]byte, 0, len(values)*5/8)
	var acc uint32
	var bits uint
	for _, v := range values {
		acc = acc<<5 | uint32(v&0x1f)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
		}
		acc &= 1<<bits - 1
	}
	return out
}

func packedLen(n int) int {
	return (n*8 + 4) / 5
}
