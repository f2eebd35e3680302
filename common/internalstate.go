package common

import (
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var inShutdown int32

// InternalState contains the data of the internal state
type InternalState struct {
	mux sync.Mutex

	Coin          string    `json:"coin"`
	CoinShortcut  string    `json:"coinShortcut"`
	Host          string    `json:"host"`
	DefaultPrefix string    `json:"defaultPrefix"`
	StartTime     time.Time `json:"startTime"`

	LastRequest time.Time `json:"lastRequest"`
}

// NewInternalState creates the internal state from the configuration
func NewInternalState(config *Config) *InternalState {
	host, _ := os.Hostname()
	return &InternalState{
		Coin:          config.CoinName,
		CoinShortcut:  config.CoinShortcut,
		Host:          host,
		DefaultPrefix: config.DefaultPrefix,
		StartTime:     time.Now(),
	}
}

// Touch records the time of the last served request
func (is *InternalState) Touch() {
	is.mux.Lock()
	defer is.mux.Unlock()
	is.LastRequest = time.Now()
}

// GetLastRequest returns the time of the last served request
func (is *InternalState) GetLastRequest() time.Time {
	is.mux.Lock()
	defer is.mux.Unlock()
	return is.LastRequest
}

// Uptime returns the time elapsed since the start of the service
func (is *InternalState) Uptime() time.Duration {
	return time.Since(is.StartTime)
}

// SetInShutdown sets the internal state to in shutdown state
func SetInShutdown() {
	atomic.StoreInt32(&inShutdown, 1)
}

// IsInShutdown returns true if in application shutdown state
func IsInShutdown() bool {
	return atomic.LoadInt32(&inShutdown) != 0
}
