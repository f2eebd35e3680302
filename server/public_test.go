//go:build unittest

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trezor/cashaddr/common"
)

func setupServers(t *testing.T) (*PublicServer, *InternalServer) {
	config := common.DefaultConfig()
	registry := prometheus.NewRegistry()
	metrics, err := common.GetMetrics(config.CoinName, registry)
	if err != nil {
		t.Fatal(err)
	}
	is := common.NewInternalState(config)
	ps, err := NewPublicServer("localhost:12345", "", metrics, is, false)
	if err != nil {
		t.Fatal(err)
	}
	ins, err := NewInternalServer("localhost:12346", "", registry, metrics, is)
	if err != nil {
		t.Fatal(err)
	}
	return ps, ins
}

func newGetRequest(u string) *http.Request {
	r, err := http.NewRequest("GET", u, nil)
	if err != nil {
		glog.Fatal(err)
	}
	return r
}

type httpTest struct {
	name        string
	r           *http.Request
	status      int
	contentType string
	body        []string
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(tt.r)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("StatusCode = %v, want %v", resp.StatusCode, tt.status)
			}
			if resp.Header.Get("Content-Type") != tt.contentType {
				t.Errorf("Content-Type = %v, want %v", resp.Header.Get("Content-Type"), tt.contentType)
			}
			bb, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			b := string(bb)
			for _, c := range tt.body {
				if !strings.Contains(b, c) {
					t.Errorf("got %v, want to contain %v", b, c)
					break
				}
			}
		})
	}
}

func httpTests(t *testing.T, ts *httptest.Server) {
	runHTTPTests(t, []httpTest{
		{
			name:        "apiDecode",
			r:           newGetRequest(ts.URL + "/api/v1/decode/bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"cashaddr":"bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a","prefix":"bitcoincash","version":0,"type":"P2PKH","hash160":"76a04053bda0a88bda5177b86a15c3b29f559873","legacy":"1BpEi6DfDAUFd7GtittLSdBeYJvcoaVggu","scriptPubKey":"76a91476a04053bda0a88bda5177b86a15c3b29f55987388ac"}`,
			},
		},
		{
			name:        "apiDecode without prefix",
			r:           newGetRequest(ts.URL + "/api/v1/decode/pzy0wuj9pjps5v8dmlwq32fatu4wrgcwzuayq5nfhh"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"cashaddr":"bitcoincash:pzy0wuj9pjps5v8dmlwq32fatu4wrgcwzuayq5nfhh"`,
				`"type":"P2SH"`,
				`"legacy":"3EBEFWPtDYWCNszQ7etoqtWmmygccayLiH"`,
			},
		},
		{
			name:        "apiDecode invalid checksum",
			r:           newGetRequest(ts.URL + "/api/v1/decode/bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6c"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"error":"invalid checksum"}`,
			},
		},
		{
			name:        "apiDecode invalid character",
			r:           newGetRequest(ts.URL + "/api/v1/decode/bitcoincash:qr6m7j9njldzl0qd7x5zx2fkucvmvn0casrccampoa"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`invalid character`,
			},
		},
		{
			name:        "apiDecode missing address",
			r:           newGetRequest(ts.URL + "/api/v1/decode/"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"error":"Missing address"}`,
			},
		},
		{
			name:        "apiEncode",
			r:           newGetRequest(ts.URL + "/api/v1/encode?prefix=bchtest&type=P2SH&hash=751e76e8199196d454941c45d1b3a323f1433bd6"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"cashaddr":"bchtest:pp63uahgrxged4z5jswyt5dn5v3lzsem6chzffgvkk"`,
				`"legacy":"2N3vVYSK5XRgVSGWy21PnsRmBUywSQNdCsf"`,
			},
		},
		{
			name:        "apiEncode version 3",
			r:           newGetRequest(ts.URL + "/api/v1/encode?prefix=BitcoinCash&version=3&type=P2PKH&hash=751e76e8199196d454941c45d1b3a323f1433bd6"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"cashaddr":"bitcoincash:qd63uahgrxged4z5jswyt5dn5v3lzsem6c4hlwytyh","prefix":"bitcoincash","version":3,"type":"P2PKH","hash160":"751e76e8199196d454941c45d1b3a323f1433bd6"}`,
			},
		},
		{
			name:        "apiEncode invalid version",
			r:           newGetRequest(ts.URL + "/api/v1/encode?version=x&type=P2PKH&hash=751e76e8199196d454941c45d1b3a323f1433bd6"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"error":"Parameter 'version' is not a number"}`,
			},
		},
		{
			name:        "apiEncode unsupported type",
			r:           newGetRequest(ts.URL + "/api/v1/encode?type=P2WPKH&hash=751e76e8199196d454941c45d1b3a323f1433bd6"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`unsupported address type`,
			},
		},
		{
			name:        "apiEncode separator in prefix",
			r:           newGetRequest(ts.URL + "/api/v1/encode?prefix=bitcoin:cash&type=P2PKH&hash=751e76e8199196d454941c45d1b3a323f1433bd6"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`invalid prefix`,
			},
		},
		{
			name:        "apiConvert legacy",
			r:           newGetRequest(ts.URL + "/api/v1/convert/129HiRqekqPVucKy2M8zsqvafGgKypciPp"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"cashaddr":"bitcoincash:qqxgjelx8qk85t9xfk8g2zlunxmhxms6p55xarv2r5"`,
				`"scriptPubKey":"76a9140c8967e6382c7a2ca64d8e850bfc99b7736e1a0d88ac"`,
			},
		},
		{
			name:        "apiPubKey",
			r:           newGetRequest(ts.URL + "/api/v1/pubkey/0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798?prefix=bchtest"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"cashaddr":"bchtest:qp63uahgrxged4z5jswyt5dn5v3lzsem6cq85x00dt"`,
				`"hash160":"751e76e8199196d454941c45d1b3a323f1433bd6"`,
			},
		},
		{
			name:        "apiPubKey invalid",
			r:           newGetRequest(ts.URL + "/api/v1/pubkey/0279be"),
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`{"error":"Invalid public key"}`,
			},
		},
		{
			name:        "index",
			r:           newGetRequest(ts.URL + "/"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"coin": "Bitcoin Cash"`,
				`"defaultPrefix": "bitcoincash"`,
				`"version": "unknown"`,
			},
		},
	})
}

func websocketTests(t *testing.T, ts *httptest.Server) {
	type websocketReq struct {
		ID     string      `json:"id"`
		Method string      `json:"method"`
		Params interface{} `json:"params,omitempty"`
	}
	type websocketResp struct {
		ID string `json:"id"`
	}
	url := strings.Replace(ts.URL, "http://", "ws://", 1) + "/websocket"
	s, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tests := []struct {
		name string
		req  websocketReq
		want string
	}{
		{
			name: "websocket getInfo",
			req: websocketReq{
				Method: "getInfo",
			},
			want: `{"id":"0","data":{"name":"Bitcoin Cash","shortcut":"BCH","defaultPrefix":"bitcoincash","version":"unknown","gitcommit":"unknown"}}`,
		},
		{
			name: "websocket decodeAddress",
			req: websocketReq{
				Method: "decodeAddress",
				Params: map[string]interface{}{
					"address": "bchreg:555555555555555555555555555555555555555555555udxmlmrz",
				},
			},
			want: `{"id":"1","data":{"prefix":"bchreg","version":5,"type":"Unknown Type","hash160":"294a5294a5294a5294a5294a5294a5294a5294a5"}}`,
		},
		{
			name: "websocket decodeAddress invalid checksum",
			req: websocketReq{
				Method: "decodeAddress",
				Params: map[string]interface{}{
					"address": "bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6c",
				},
			},
			want: `{"id":"2","data":{"error":{"message":"invalid checksum"}}}`,
		},
		{
			name: "websocket encodeAddress",
			req: websocketReq{
				Method: "encodeAddress",
				Params: map[string]interface{}{
					"type":    "P2PKH",
					"hash160": "751e76e8199196d454941c45d1b3a323f1433bd6",
				},
			},
			want: `{"id":"3","data":{"cashaddr":"bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h","prefix":"bitcoincash","version":0,"type":"P2PKH","hash160":"751e76e8199196d454941c45d1b3a323f1433bd6","legacy":"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH","scriptPubKey":"76a914751e76e8199196d454941c45d1b3a323f1433bd688ac"}}`,
		},
		{
			name: "websocket encodeAddress invalid version",
			req: websocketReq{
				Method: "encodeAddress",
				Params: map[string]interface{}{
					"version": 8,
					"type":    "P2PKH",
					"hash160": "751e76e8199196d454941c45d1b3a323f1433bd6",
				},
			},
			want: `{"id":"4","data":{"error":{"message":"8: invalid version"}}}`,
		},
		{
			name: "websocket convertAddress",
			req: websocketReq{
				Method: "convertAddress",
				Params: map[string]interface{}{
					"address": "mnnAKPTSrWjgoi3uEYaQkHA1QEC5btFeBr",
				},
			},
			want: `{"id":"5","data":{"cashaddr":"bchtest:qp86jfla8084048rckpv85ht90falr050s03ejaesm","prefix":"bchtest","version":0,"type":"P2PKH","hash160":"4fa927fd3bcf57d4e3c582c3d2eb2bd3df8df47c","legacy":"mnnAKPTSrWjgoi3uEYaQkHA1QEC5btFeBr","scriptPubKey":"76a9144fa927fd3bcf57d4e3c582c3d2eb2bd3df8df47c88ac"}}`,
		},
		{
			name: "websocket addressFromPubKey",
			req: websocketReq{
				Method: "addressFromPubKey",
				Params: map[string]interface{}{
					"pubkey": "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
				},
			},
			want: `{"id":"6","data":{"cashaddr":"bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h","prefix":"bitcoincash","version":0,"type":"P2PKH","hash160":"751e76e8199196d454941c45d1b3a323f1433bd6","legacy":"1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH","scriptPubKey":"76a914751e76e8199196d454941c45d1b3a323f1433bd688ac"}}`,
		},
		{
			name: "websocket ping",
			req: websocketReq{
				Method: "ping",
			},
			want: `{"id":"7","data":{}}`,
		},
	}

	// send all requests at once
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ID = strconv.Itoa(i)
			err = s.WriteJSON(tt.req)
			if err != nil {
				t.Fatal(err)
			}
		})
	}

	// wait for all responses
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < len(tests); i++ {
			_, message, err := s.ReadMessage()
			if err != nil {
				t.Error(err)
				return
			}
			var resp websocketResp
			err = json.Unmarshal(message, &resp)
			if err != nil {
				t.Error(err)
				return
			}
			id, err := strconv.Atoi(resp.ID)
			if err != nil {
				t.Error(err)
				return
			}
			got := strings.TrimSpace(string(message))
			if got != tests[id].want {
				t.Errorf("%s: got %v, want %v", tests[id].name, got, tests[id].want)
			} else {
				tests[id].want = "already checked, should not check twice"
			}
		}
	}()

	select {
	case <-done:
		break
	case <-time.After(time.Second * 10):
		t.Error("Timeout while waiting for websocket responses")
	}
}

func internalTests(t *testing.T, ts *httptest.Server) {
	runHTTPTests(t, []httpTest{
		{
			name:        "metrics",
			r:           newGetRequest(ts.URL + "/metrics"),
			status:      http.StatusOK,
			contentType: "text/plain; version=0.0.4; charset=utf-8",
			body: []string{
				`cashaddr_app_info{coin="Bitcoin Cash",gitcommit="unknown",version="unknown"} 1`,
				`cashaddr_requests{coin="Bitcoin Cash",method="api-decode",status="failure"} 3`,
				`cashaddr_codec_errors{coin="Bitcoin Cash",kind="InvalidChecksum"} 2`,
			},
		},
		{
			name:        "index",
			r:           newGetRequest(ts.URL + "/"),
			status:      http.StatusOK,
			contentType: "application/json; charset=utf-8",
			body: []string{
				`"defaultPrefix": "bitcoincash"`,
				`"inShutdown": false`,
			},
		},
	})
}

func Test_Servers(t *testing.T) {
	ps, ins := setupServers(t)
	// take the handlers of the servers and pass them to the test servers
	ts := httptest.NewServer(ps.https.Handler)
	defer ts.Close()
	its := httptest.NewServer(ins.https.Handler)
	defer its.Close()

	httpTests(t, ts)
	websocketTests(t, ts)
	internalTests(t, its)
}
