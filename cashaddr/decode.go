package cashaddr

import (
	"strings"

	"github.com/juju/errors"
)

// Decode parses and validates a CashAddr address. Addresses without prefix
// are checked against DefaultPrefix.
func Decode(addr string) (*Address, error) {
	return DecodeWithPrefix(addr, DefaultPrefix)
}

// DecodeWithPrefix parses and validates a CashAddr address, defaultPrefix is used
// if the address does not contain a prefix.
// The prefix of the returned Address is lower case. If the payload is longer
// than PayloadSize, the bytes following the hash are ignored.
func DecodeWithPrefix(addr string, defaultPrefix string) (*Address, error) {
	prefix, data := splitAddress(addr, defaultPrefix)
	if len(prefix) > MaxPrefixLength {
		return nil, errors.Annotatef(ErrPrefixTooLong, "%d characters", len(prefix))
	}
	values := make([]byte, 0, len(data))
	for i, c := range data {
		v, err := CharToValue(c)
		if err != nil {
			return nil, errors.Annotatef(err, "position %d", i)
		}
		values = append(values, v)
	}
	if len(values) < ChecksumLength {
		return nil, errors.Annotatef(ErrAddressTooShort, "%d characters", len(values))
	}
	if !VerifyChecksum(prefix, values) {
		return nil, errors.Trace(ErrInvalidChecksum)
	}
	payload := Unpack5(values[:len(values)-ChecksumLength])
	if len(payload) < 1 {
		return nil, errors.Trace(ErrInvalidPayload)
	}
	if len(payload) < PayloadSize {
		return nil, errors.Annotatef(ErrPayloadTooShort, "%d bytes", len(payload))
	}
	a := &Address{
		Prefix:  strings.ToLower(prefix),
		Version: payload[0] & 0x07,
		Type:    AddressType(payload[0] >> 3),
	}
	copy(a.Hash[:], payload[1:PayloadSize])
	return a, nil
}

// splitAddress splits the address on the first colon to prefix and base32 part
func splitAddress(addr string, defaultPrefix string) (string, string) {
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		return addr[:i], addr[i+1:]
	}
	return defaultPrefix, addr
}
