package cashaddr

import (
	"encoding/hex"

	"github.com/juju/errors"
)

// Known CashAddr prefixes
const (
	MainNet = "bitcoincash"
	TestNet = "bchtest"
	RegTest = "bchreg"

	// DefaultPrefix is assumed when an address is given without prefix
	DefaultPrefix = MainNet
)

const (
	// HashSize is the size of the hash160 carried in the payload
	HashSize = 20
	// PayloadSize is the size of the payload, version byte followed by the hash
	PayloadSize = 1 + HashSize
	// ChecksumLength is the number of 5-bit checksum values at the end of the address
	ChecksumLength = 8
	// MaxPrefixLength is the maximum supported length of the prefix
	MaxPrefixLength = 31
	// MaxVersion is the highest version that fits into the version byte
	MaxVersion = 7
)

// AddressType is the type code stored in the upper 5 bits of the version byte.
// Only P2PKH and P2SH are known, any other code is reported as unknown by decoding
// and cannot be encoded.
type AddressType uint8

const (
	// P2PKH is pay to public key hash
	P2PKH AddressType = 0
	// P2SH is pay to script hash
	P2SH AddressType = 1
)

// Known returns true for P2PKH and P2SH
func (t AddressType) Known() bool {
	return t == P2PKH || t == P2SH
}

func (t AddressType) String() string {
	switch t {
	case P2PKH:
		return "P2PKH"
	case P2SH:
		return "P2SH"
	}
	return "Unknown Type"
}

// ParseAddressType converts the textual type "P2PKH" or "P2SH" to AddressType
func ParseAddressType(s string) (AddressType, error) {
	switch s {
	case "P2PKH":
		return P2PKH, nil
	case "P2SH":
		return P2SH, nil
	}
	return 0, errors.Annotatef(ErrUnsupportedType, "%q", s)
}

// Address is a decoded CashAddr address
type Address struct {
	Prefix  string
	Version uint8
	Type    AddressType
	Hash    [HashSize]byte
}

// ParseHash160 converts hash160 given as 40 hex characters to bytes
func ParseHash160(s string) ([HashSize]byte, error) {
	var h [HashSize]byte
	if len(s) != 2*HashSize {
		return h, errors.Annotatef(ErrInvalidHash, "length %d", len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, errors.Annotatef(ErrInvalidHash, "%v", err)
	}
	return h, nil
}

// Hex returns the hash160 as lower case hex string
func (a *Address) Hex() string {
	return hex.EncodeToString(a.Hash[:])
}

// Payload returns the version byte followed by the hash
func (a *Address) Payload() []byte {
	p := make([]byte, 0, PayloadSize)
	p = append(p, byte(a.Type)<<3|a.Version&0x07)
	return append(p, a.Hash[:]...)
}

// String returns the encoded address or an empty string if the address cannot be encoded
func (a *Address) String() string {
	s, err := a.Encode()
	if err != nil {
		return ""
	}
	return s
}
