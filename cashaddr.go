package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trezor/cashaddr/api"
	"github.com/trezor/cashaddr/cashaddr"
	"github.com/trezor/cashaddr/common"
	"github.com/trezor/cashaddr/server"
)

// the exit code of single-shot modes when the input is rejected
const exitCodeInvalidInput = 1
const exitCodeFatal = 255

var (
	configFile = flag.String("config", "", "path to config file, built-in defaults are used if not set")

	publicBinding   = flag.String("public", "", "public http server binding [address]:port[/path], overrides config")
	internalBinding = flag.String("internal", "", "internal http server binding [address]:port[/path], overrides config")
	certFiles       = flag.String("certfile", "", "to enable SSL specify path to certificate files without .crt and .key suffixes")
	defaultPrefix   = flag.String("prefix", "", "prefix assumed for addresses without prefix and used for encoding, overrides config")
	debugMode       = flag.Bool("debug", false, "debug mode, return more verbose errors")

	decodeAddress  = flag.String("decode", "", "decode the CashAddr address, print its parts and exit")
	encodeAddress  = flag.Bool("encode", false, "encode CashAddr address from -version, -type and -hash, print it and exit")
	addrVersion    = flag.Int("version", 0, "address version used by -encode")
	addrType       = flag.String("type", "P2PKH", "address type used by -encode, P2PKH or P2SH")
	addrHash       = flag.String("hash", "", "hash160 as 40 hex characters used by -encode")
	pubKey         = flag.String("pubkey", "", "print P2PKH address of the public key given in hex and exit")
	convertAddress = flag.String("convert", "", "convert CashAddr or legacy address, print all its forms and exit")

	prof = flag.Bool("prof", false, "profile program execution, the cpu profile is written to the working directory")
)

var chanOsSignal chan os.Signal

func init() {
	glog.MaxSize = 1024 * 1024 * 8
	glog.CopyStandardLogTo("INFO")
}

func main() {
	defer func() {
		if e := recover(); e != nil {
			glog.Error("main recovered from panic: ", e)
			debug.PrintStack()
			os.Exit(exitCodeFatal)
		}
	}()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	flag.Parse()
	defer glog.Flush()

	if *prof {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	config, err := loadConfig()
	if err != nil {
		glog.Error("config: ", err)
		return exitCodeFatal
	}

	switch {
	case *decodeAddress != "":
		return exitCode(decode(*decodeAddress, config.DefaultPrefix))
	case *encodeAddress:
		return exitCode(encode(config.DefaultPrefix))
	case *pubKey != "" || *convertAddress != "":
		return exitCode(convert(config))
	}

	chanOsSignal = make(chan os.Signal, 1)
	signal.Notify(chanOsSignal, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	glog.Infof("cashaddr: %+v, debug mode %v", common.GetVersionInfo(), config.Debug)

	metrics, err := common.GetMetrics(config.CoinName, prometheus.DefaultRegisterer)
	if err != nil {
		glog.Error("metrics: ", err)
		return exitCodeFatal
	}
	is := common.NewInternalState(config)

	internalServer, err := startInternalServer(config, metrics, is)
	if err != nil {
		glog.Error("internal server: ", err)
		return exitCodeFatal
	}
	publicServer, err := startPublicServer(config, metrics, is)
	if err != nil {
		glog.Error("public server: ", err)
		return exitCodeFatal
	}

	waitForSignalAndShutdown(internalServer, publicServer, 10*time.Second)
	return 0
}

// loadConfig reads the config file if given and applies the command line overrides
func loadConfig() (*common.Config, error) {
	config := common.DefaultConfig()
	if *configFile != "" {
		var err error
		config, err = common.GetConfig(*configFile)
		if err != nil {
			return nil, err
		}
	}
	if *publicBinding != "" {
		config.PublicBinding = *publicBinding
	}
	if *internalBinding != "" {
		config.InternalBinding = *internalBinding
	}
	if *certFiles != "" {
		config.CertFiles = *certFiles
	}
	if *defaultPrefix != "" {
		config.DefaultPrefix = *defaultPrefix
	}
	if *debugMode {
		config.Debug = true
	}
	return config, nil
}

func exitCode(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		glog.V(1).Info(errors.ErrorStack(err))
		return exitCodeInvalidInput
	}
	return 0
}

func decode(addr string, defaultPrefix string) error {
	a, err := cashaddr.DecodeWithPrefix(addr, defaultPrefix)
	if err != nil {
		return err
	}
	dumpAddress(a)
	fmt.Println("Decoding Result:")
	fmt.Println("Prefix:", a.Prefix)
	fmt.Println("Version:", a.Version)
	fmt.Println("Type:", a.Type)
	fmt.Println("Hash160:", a.Hex())
	s, err := a.Encode()
	if err != nil {
		// addresses of unknown type are decoded but cannot be encoded
		glog.Warning("re-encode: ", err)
		return nil
	}
	fmt.Println("Re-encoded Address:", s)
	return nil
}

func encode(defaultPrefix string) error {
	t, err := cashaddr.ParseAddressType(*addrType)
	if err != nil {
		return err
	}
	if *addrVersion < 0 || *addrVersion > cashaddr.MaxVersion {
		return errors.Annotatef(cashaddr.ErrInvalidVersion, "%d", *addrVersion)
	}
	h, err := cashaddr.ParseHash160(*addrHash)
	if err != nil {
		return err
	}
	a := &cashaddr.Address{
		Prefix:  defaultPrefix,
		Version: uint8(*addrVersion),
		Type:    t,
		Hash:    h,
	}
	s, err := a.Encode()
	if err != nil {
		return err
	}
	dumpAddress(a)
	fmt.Println(s)
	return nil
}

// dumpAddress logs the intermediate arrays of the encoding at verbosity 1
func dumpAddress(a *cashaddr.Address) {
	if !glog.V(1) {
		return
	}
	payload := a.Payload()
	packed := cashaddr.Pack5(payload)
	glog.Infof("prefix %q, version byte %d", a.Prefix, payload[0])
	glog.Infof("payload bytes %v", payload)
	glog.Infof("5-bit payload %v", packed)
	glog.Infof("checksum %v", cashaddr.Checksum(a.Prefix, packed))
}

func convert(config *common.Config) error {
	metrics, err := common.GetMetrics(config.CoinName, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	w, err := api.NewWorker(common.NewInternalState(config), metrics)
	if err != nil {
		return err
	}
	var a *api.Address
	if *pubKey != "" {
		a, err = w.AddressFromPubKey("", *pubKey)
	} else {
		a, err = w.ConvertAddress(*convertAddress)
	}
	if err != nil {
		return err
	}
	buf, err := json.MarshalIndent(a, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func startInternalServer(config *common.Config, metrics *common.Metrics, is *common.InternalState) (*server.InternalServer, error) {
	internalServer, err := server.NewInternalServer(config.InternalBinding, config.CertFiles, prometheus.DefaultGatherer, metrics, is)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := internalServer.Run(); err != nil {
			if err == http.ErrServerClosed {
				glog.Info("internal server: closed")
			} else {
				glog.Error(err)
				return
			}
		}
	}()
	return internalServer, nil
}

func startPublicServer(config *common.Config, metrics *common.Metrics, is *common.InternalState) (*server.PublicServer, error) {
	publicServer, err := server.NewPublicServer(config.PublicBinding, config.CertFiles, metrics, is, config.Debug)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := publicServer.Run(); err != nil {
			if err == http.ErrServerClosed {
				glog.Info("public server: closed")
			} else {
				glog.Error(err)
				return
			}
		}
	}()
	return publicServer, nil
}

func waitForSignalAndShutdown(internal *server.InternalServer, public *server.PublicServer, timeout time.Duration) {
	sig := <-chanOsSignal
	common.SetInShutdown()
	glog.Infof("shutdown: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if public != nil {
		if err := public.Shutdown(ctx); err != nil {
			glog.Error("PublicServer.Shutdown error: ", err)
		}
	}

	if internal != nil {
		if err := internal.Shutdown(ctx); err != nil {
			glog.Error("InternalServer.Shutdown error: ", err)
		}
	}
}
