package api

import (
	"encoding/hex"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/martinboehm/btcutil"
	"github.com/martinboehm/btcutil/chaincfg"
	"github.com/martinboehm/btcutil/txscript"
	"github.com/schancel/cashaddr-converter/legacy"
	"github.com/trezor/cashaddr/cashaddr"
	"github.com/trezor/cashaddr/common"
)

const about = "CashAddr - encoder, decoder and converter of Bitcoin Cash addresses"

// CashAddr prefixes of eCash, which shares the address format and legacy versions with Bitcoin Cash
const (
	ECashMainNet = "ecash"
	ECashTestNet = "ectest"
)

// legacy base58 version bytes of P2PKH and P2SH addresses by CashAddr prefix
var legacyVersions = map[string][2]uint8{
	cashaddr.MainNet: {legacy.P2KH, legacy.P2SH},
	cashaddr.TestNet: {legacy.P2KHTestnet, legacy.P2SHTestnet},
	cashaddr.RegTest: {legacy.P2KHTestnet, legacy.P2SHTestnet},
	ECashMainNet:     {legacy.P2KH, legacy.P2SH},
	ECashTestNet:     {legacy.P2KHTestnet, legacy.P2SHTestnet},
}

type legacyKind struct {
	prefix string
	typ    cashaddr.AddressType
}

var legacyKinds = map[uint8]legacyKind{
	legacy.P2KH:        {cashaddr.MainNet, cashaddr.P2PKH},
	legacy.P2SH:        {cashaddr.MainNet, cashaddr.P2SH},
	legacy.P2KHCopay:   {cashaddr.MainNet, cashaddr.P2PKH},
	legacy.P2SHCopay:   {cashaddr.MainNet, cashaddr.P2SH},
	legacy.P2KHTestnet: {cashaddr.TestNet, cashaddr.P2PKH},
	legacy.P2SHTestnet: {cashaddr.TestNet, cashaddr.P2SH},
}

// Worker is handle to api worker
type Worker struct {
	is      *common.InternalState
	metrics *common.Metrics
}

// NewWorker creates new api worker
func NewWorker(is *common.InternalState, metrics *common.Metrics) (*Worker, error) {
	if is.DefaultPrefix == "" {
		return nil, errors.New("Missing default prefix")
	}
	w := &Worker{
		is:      is,
		metrics: metrics,
	}
	return w, nil
}

// errorKind returns the name of the codec error, used as metrics label
func errorKind(err error) string {
	switch errors.Cause(err) {
	case cashaddr.ErrInvalidCharacter:
		return "InvalidCharacter"
	case cashaddr.ErrAddressTooShort:
		return "AddressTooShort"
	case cashaddr.ErrInvalidChecksum:
		return "InvalidChecksum"
	case cashaddr.ErrInvalidPayload:
		return "InvalidPayload"
	case cashaddr.ErrPayloadTooShort:
		return "PayloadTooShort"
	case cashaddr.ErrPrefixTooLong:
		return "PrefixTooLong"
	case cashaddr.ErrInvalidPrefix:
		return "InvalidPrefix"
	case cashaddr.ErrUnsupportedType:
		return "UnsupportedType"
	case cashaddr.ErrInvalidVersion:
		return "InvalidVersion"
	case cashaddr.ErrInvalidHash:
		return "InvalidHash"
	case cashaddr.ErrBufferTooSmall:
		return "BufferTooSmall"
	}
	return "Other"
}

// codecError counts the failure and converts it to error returned to the user
func (w *Worker) codecError(err error) error {
	w.metrics.CodecErrors.With(common.Labels{"kind": errorKind(err)}).Inc()
	glog.V(1).Info("codec error: ", errors.ErrorStack(err))
	return NewAPIError(err.Error(), true)
}

func (w *Worker) prefixOrDefault(prefix string) string {
	if prefix == "" {
		return w.is.DefaultPrefix
	}
	return prefix
}

// DecodeAddress decodes and validates CashAddr address, addresses without prefix use the configured default prefix
func (w *Worker) DecodeAddress(address string) (*Address, error) {
	w.is.Touch()
	a, err := cashaddr.DecodeWithPrefix(address, w.is.DefaultPrefix)
	if err != nil {
		return nil, w.codecError(err)
	}
	return w.getAddress(a)
}

// EncodeAddress encodes the parts of the address to CashAddr, empty prefix is replaced by the default prefix
func (w *Worker) EncodeAddress(prefix string, version int, addressType string, hash160 string) (*Address, error) {
	w.is.Touch()
	t, err := cashaddr.ParseAddressType(addressType)
	if err != nil {
		return nil, w.codecError(err)
	}
	if version < 0 || version > cashaddr.MaxVersion {
		return nil, w.codecError(errors.Annotatef(cashaddr.ErrInvalidVersion, "%d", version))
	}
	s, err := cashaddr.Encode(w.prefixOrDefault(prefix), uint8(version), t, hash160)
	if err != nil {
		return nil, w.codecError(err)
	}
	a, err := cashaddr.Decode(s)
	if err != nil {
		return nil, errors.Annotatef(err, "decode of encoded %v", s)
	}
	return w.getAddress(a)
}

// ConvertAddress accepts CashAddr or legacy base58 address and returns all its representations
func (w *Worker) ConvertAddress(address string) (*Address, error) {
	la, err := legacy.Decode(address)
	if err != nil {
		// not a legacy address, the error of the CashAddr decoding is reported
		return w.DecodeAddress(address)
	}
	w.is.Touch()
	k, ok := legacyKinds[la.Version]
	if !ok {
		return nil, NewAPIError("Unknown legacy address version "+hex.EncodeToString([]byte{la.Version}), true)
	}
	if len(la.Payload) != cashaddr.HashSize {
		return nil, NewAPIError("Invalid legacy address payload length", true)
	}
	a := &cashaddr.Address{
		Prefix: k.prefix,
		Type:   k.typ,
	}
	copy(a.Hash[:], la.Payload)
	return w.getAddress(a)
}

// AddressFromPubKey returns P2PKH address of the public key given in hex
func (w *Worker) AddressFromPubKey(prefix string, pubKey string) (*Address, error) {
	w.is.Touch()
	b, err := hex.DecodeString(pubKey)
	if err != nil || (len(b) != 33 && len(b) != 65) {
		return nil, NewAPIError("Invalid public key", true)
	}
	a := &cashaddr.Address{
		Prefix: w.prefixOrDefault(prefix),
		Type:   cashaddr.P2PKH,
	}
	copy(a.Hash[:], btcutil.Hash160(b))
	if _, err := a.Encode(); err != nil {
		return nil, w.codecError(err)
	}
	return w.getAddress(a)
}

func (w *Worker) getAddress(a *cashaddr.Address) (*Address, error) {
	r := &Address{
		CashAddr: a.String(),
		Prefix:   a.Prefix,
		Version:  a.Version,
		Type:     a.Type.String(),
		Hash160:  a.Hex(),
	}
	// the legacy format and the standard scripts exist only for version 0
	if a.Version != 0 || !a.Type.Known() {
		return r, nil
	}
	if v, ok := legacyVersions[a.Prefix]; ok {
		la := legacy.Address{Version: v[a.Type], Payload: a.Hash[:]}
		s, err := la.Encode()
		if err != nil {
			return nil, errors.Annotatef(err, "legacy %v", r.CashAddr)
		}
		r.Legacy = s
	}
	script, err := lockingScript(a)
	if err != nil {
		return nil, errors.Annotatef(err, "script %v", r.CashAddr)
	}
	r.ScriptPubKey = hex.EncodeToString(script)
	return r, nil
}

// lockingScript returns the standard output script paying to the address
func lockingScript(a *cashaddr.Address) ([]byte, error) {
	var addr btcutil.Address
	var err error
	if a.Type == cashaddr.P2SH {
		addr, err = btcutil.NewAddressScriptHashFromHash(a.Hash[:], &chaincfg.MainNetParams)
	} else {
		addr, err = btcutil.NewAddressPubKeyHash(a.Hash[:], &chaincfg.MainNetParams)
	}
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

// GetSystemInfo returns information about the running instance
func (w *Worker) GetSystemInfo() *SystemInfo {
	vi := common.GetVersionInfo()
	return &SystemInfo{
		About:         about,
		Coin:          w.is.Coin,
		Host:          w.is.Host,
		DefaultPrefix: w.is.DefaultPrefix,
		Version:       vi.Version,
		GitCommit:     vi.GitCommit,
		BuildTime:     vi.BuildTime,
		GoVersion:     vi.GoVersion,
		StartTime:     w.is.StartTime,
		Uptime:        w.is.Uptime().Truncate(time.Second).String(),
		LastRequest:   w.is.GetLastRequest(),
	}
}
