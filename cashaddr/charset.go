package cashaddr

import "github.com/juju/errors"

// charset is the base32 alphabet of CashAddr, value v is encoded as charset[v]
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// charsetRev maps ASCII characters (either case) to their 5-bit value, -1 marks characters outside of charset
var charsetRev = [128]int8{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	15, -1, 10, 17, 21, 20, 26, 30, 7, 5, -1, -1, -1, -1, -1, -1,
	-1, 29, -1, 24, 13, 25, 9, 8, 23, -1, 18, 22, 31, 27, 19, -1,
	1, 0, 3, 16, 11, 28, 12, 14, 6, 4, 2, -1, -1, -1, -1, -1,
	-1, 29, -1, 24, 13, 25, 9, 8, 23, -1, 18, 22, 31, 27, 19, -1,
	1, 0, 3, 16, 11, 28, 12, 14, 6, 4, 2, -1, -1, -1, -1, -1,
}

// CharToValue returns the 5-bit value of a base32 character, the lookup is case insensitive
func CharToValue(c rune) (byte, error) {
	if c < 0 || c >= rune(len(charsetRev)) || charsetRev[c] < 0 {
		return 0, errors.Annotatef(ErrInvalidCharacter, "'%c'", c)
	}
	return byte(charsetRev[c]), nil
}

// ValueToChar returns the base32 character of 5-bit value v.
// The caller must ensure that v is in the range [0,31].
func ValueToChar(v byte) byte {
	return charset[v]
}
