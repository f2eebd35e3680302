package api

import (
	"time"
)

// APIError extends error by information if the error details should be returned to the end user
type APIError struct {
	Text   string
	Public bool
}

func (e *APIError) Error() string {
	return e.Text
}

// NewAPIError creates ApiError
func NewAPIError(s string, public bool) error {
	return &APIError{
		Text:   s,
		Public: public,
	}
}

// Address holds the parts of a CashAddr address together with its other representations
type Address struct {
	CashAddr     string `json:"cashaddr,omitempty"`
	Prefix       string `json:"prefix"`
	Version      uint8  `json:"version"`
	Type         string `json:"type"`
	Hash160      string `json:"hash160"`
	Legacy       string `json:"legacy,omitempty"`
	ScriptPubKey string `json:"scriptPubKey,omitempty"`
}

// SystemInfo contains information about the running instance
type SystemInfo struct {
	About         string    `json:"about"`
	Coin          string    `json:"coin"`
	Host          string    `json:"host"`
	DefaultPrefix string    `json:"defaultPrefix"`
	Version       string    `json:"version"`
	GitCommit     string    `json:"gitcommit"`
	BuildTime     string    `json:"buildtime"`
	GoVersion     string    `json:"goversion"`
	StartTime     time.Time `json:"startTime"`
	Uptime        string    `json:"uptime"`
	LastRequest   time.Time `json:"lastRequest"`
}
