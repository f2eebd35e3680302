package cashaddr

import (
	"strings"

	"github.com/juju/errors"
)

// Encode builds a CashAddr address from its parts, hash160 is given as 40 hex characters
func Encode(prefix string, version uint8, t AddressType, hash160 string) (string, error) {
	if err := validate(prefix, version, t); err != nil {
		return "", err
	}
	h, err := ParseHash160(hash160)
	if err != nil {
		return "", err
	}
	a := Address{
		Prefix:  prefix,
		Version: version,
		Type:    t,
		Hash:    h,
	}
	return a.Encode()
}

// Encode returns the address in the form prefix:base32, the base32 part is lower case
func (a *Address) Encode() (string, error) {
	b, err := a.appendEncoded(make([]byte, 0, a.EncodedLen()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeTo writes the encoded address to dst and returns the number of bytes written.
// ErrBufferTooSmall is returned if dst is shorter than EncodedLen.
func (a *Address) EncodeTo(dst []byte) (int, error) {
	n := a.EncodedLen()
	if len(dst) < n {
		return 0, errors.Annotatef(ErrBufferTooSmall, "need %d bytes, have %d", n, len(dst))
	}
	b, err := a.appendEncoded(dst[:0])
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// EncodedLen returns the length of the encoded address
func (a *Address) EncodedLen() int {
	return len(a.Prefix) + 1 + packedLen(PayloadSize) + ChecksumLength
}

func (a *Address) appendEncoded(dst []byte) ([]byte, error) {
	if err := validate(a.Prefix, a.Version, a.Type); err != nil {
		return nil, err
	}
	packed := Pack5(a.Payload())
	chk := Checksum(a.Prefix, packed)
	dst = append(dst, a.Prefix...)
	dst = append(dst, ':')
	for _, v := range packed {
		dst = append(dst, ValueToChar(v))
	}
	for _, v := range chk {
		dst = append(dst, ValueToChar(v))
	}
	return dst, nil
}

func validate(prefix string, version uint8, t AddressType) error {
	if !t.Known() {
		return errors.Annotatef(ErrUnsupportedType, "type code %d", uint8(t))
	}
	if version > MaxVersion {
		return errors.Annotatef(ErrInvalidVersion, "%d", version)
	}
	if len(prefix) > MaxPrefixLength {
		return errors.Annotatef(ErrPrefixTooLong, "%d characters", len(prefix))
	}
	if i := strings.IndexByte(prefix, ':'); i >= 0 {
		return errors.Annotatef(ErrInvalidPrefix, "':' at position %d", i)
	}
	return nil
}
