package common

import (
	"encoding/json"
	"os"

	"github.com/juju/errors"
)

// Config struct
type Config struct {
	CoinName        string `json:"coin_name"`
	CoinShortcut    string `json:"coin_shortcut"`
	DefaultPrefix   string `json:"default_prefix"`
	PublicBinding   string `json:"public_binding"`
	InternalBinding string `json:"internal_binding"`
	CertFiles       string `json:"cert_files"`
	Debug           bool   `json:"debug"`
}

// DefaultConfig returns configuration used when no config file is given
func DefaultConfig() *Config {
	return &Config{
		CoinName:        "Bitcoin Cash",
		CoinShortcut:    "BCH",
		DefaultPrefix:   "bitcoincash",
		PublicBinding:   ":9130",
		InternalBinding: ":9030",
	}
}

// GetConfig loads and parses the config file and returns Config struct,
// values missing in the file are taken from DefaultConfig
func GetConfig(configFile string) (*Config, error) {
	if configFile == "" {
		return nil, errors.New("Missing config parameter")
	}

	configFileContent, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Errorf("Error reading file %v, %v", configFile, err)
	}

	cn := DefaultConfig()
	err = json.Unmarshal(configFileContent, cn)
	if err != nil {
		return nil, errors.Annotatef(err, "Error parsing config file ")
	}
	if cn.DefaultPrefix == "" {
		return nil, errors.Errorf("Invalid config file %v, default_prefix must not be empty", configFile)
	}
	return cn, nil
}
