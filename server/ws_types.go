package server

import "encoding/json"

// WsReq represents a generic websocket request with an ID, method, and raw parameters
type WsReq struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// WsRes represents a generic websocket response with the ID of the request and arbitrary data
type WsRes struct {
	ID   string      `json:"id"`
	Data interface{} `json:"data"`
}

// WsAddressReq carries parameters of the 'decodeAddress' and 'convertAddress' methods
type WsAddressReq struct {
	Address string `json:"address"`
}

// WsEncodeAddressReq carries parameters of the 'encodeAddress' method
type WsEncodeAddressReq struct {
	Prefix  string `json:"prefix,omitempty"`
	Version int    `json:"version,omitempty"`
	Type    string `json:"type"`
	Hash160 string `json:"hash160"`
}

// WsPubKeyReq carries parameters of the 'addressFromPubKey' method
type WsPubKeyReq struct {
	Prefix string `json:"prefix,omitempty"`
	PubKey string `json:"pubkey"`
}

// WsInfoRes is the result of the 'getInfo' method
type WsInfoRes struct {
	Name          string `json:"name"`
	Shortcut      string `json:"shortcut"`
	DefaultPrefix string `json:"defaultPrefix"`
	Version       string `json:"version"`
	GitCommit     string `json:"gitcommit"`
}

type resultError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
