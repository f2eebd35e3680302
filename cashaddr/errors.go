package cashaddr

import "github.com/juju/errors"

// Errors returned by Decode and Encode. The returned errors carry additional
// context, use errors.Cause to compare them with these values.
var (
	// ErrInvalidCharacter is returned when the base32 part contains a character outside of the alphabet
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrAddressTooShort is returned when the base32 part is shorter than the checksum
	ErrAddressTooShort = errors.New("address is too short")
	// ErrInvalidChecksum is returned when the checksum does not match the prefix and payload
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrInvalidPayload is returned when the payload does not contain even the version byte
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrPayloadTooShort is returned when the payload is shorter than the version byte and hash
	ErrPayloadTooShort = errors.New("payload length is insufficient")
	// ErrPrefixTooLong is returned when the prefix exceeds MaxPrefixLength
	ErrPrefixTooLong = errors.New("prefix is too long")
	// ErrInvalidPrefix is returned when encoding a prefix that contains the separator
	ErrInvalidPrefix = errors.New("invalid prefix")
	// ErrUnsupportedType is returned when encoding an address type other than P2PKH or P2SH
	ErrUnsupportedType = errors.New("unsupported address type")
	// ErrInvalidVersion is returned when encoding a version that does not fit into 3 bits
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidHash is returned when the hash is not exactly 40 hex characters
	ErrInvalidHash = errors.New("invalid hash160")
	// ErrBufferTooSmall is returned by EncodeTo when the destination cannot hold the address
	ErrBufferTooSmall = errors.New("output buffer is too small")
)
