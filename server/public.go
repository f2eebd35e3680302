package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/trezor/cashaddr/api"
	"github.com/trezor/cashaddr/common"
)

// PublicServer is a handle to public http server
type PublicServer struct {
	binding   string
	certFiles string
	websocket *WebsocketServer
	https     *http.Server
	api       *api.Worker
	metrics   *common.Metrics
	is        *common.InternalState
	debug     bool
}

// NewPublicServer creates new public server http interface to the address codec and returns its handle
func NewPublicServer(binding string, certFiles string, metrics *common.Metrics, is *common.InternalState, debugMode bool) (*PublicServer, error) {
	api, err := api.NewWorker(is, metrics)
	if err != nil {
		return nil, err
	}

	websocket, err := NewWebsocketServer(api, metrics, is)
	if err != nil {
		return nil, err
	}

	addr, path := splitBinding(binding)
	serveMux := http.NewServeMux()
	https := &http.Server{
		Addr:    addr,
		Handler: serveMux,
	}

	s := &PublicServer{
		binding:   binding,
		certFiles: certFiles,
		https:     https,
		api:       api,
		websocket: websocket,
		metrics:   metrics,
		is:        is,
		debug:     debugMode,
	}

	// API calls
	serveMux.HandleFunc(path+"api/v1/decode/", s.jsonHandler(s.apiDecode, "api-decode"))
	serveMux.HandleFunc(path+"api/v1/encode", s.jsonHandler(s.apiEncode, "api-encode"))
	serveMux.HandleFunc(path+"api/v1/convert/", s.jsonHandler(s.apiConvert, "api-convert"))
	serveMux.HandleFunc(path+"api/v1/pubkey/", s.jsonHandler(s.apiPubKey, "api-pubkey"))
	// websocket interface
	serveMux.Handle(path+"websocket", websocket.GetHandler())
	// default handler
	serveMux.HandleFunc(path, s.index)

	return s, nil
}

// Run starts the server
func (s *PublicServer) Run() error {
	if s.certFiles == "" {
		glog.Info("public server: starting to listen on http://", s.https.Addr)
		return s.https.ListenAndServe()
	}
	glog.Info("public server: starting to listen on https://", s.https.Addr)
	return s.https.ListenAndServeTLS(fmt.Sprint(s.certFiles, ".crt"), fmt.Sprint(s.certFiles, ".key"))
}

// Close closes the server
func (s *PublicServer) Close() error {
	glog.Infof("public server: closing")
	return s.https.Close()
}

// Shutdown shuts down the server
func (s *PublicServer) Shutdown(ctx context.Context) error {
	glog.Infof("public server: shutdown")
	return s.https.Shutdown(ctx)
}

func splitBinding(binding string) (addr string, path string) {
	i := strings.Index(binding, "/")
	if i >= 0 {
		return binding[0:i], binding[i:]
	}
	return binding, "/"
}

func getFunctionName(i interface{}) string {
	return runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
}

func (s *PublicServer) jsonHandler(handler func(r *http.Request) (interface{}, error), method string) func(w http.ResponseWriter, r *http.Request) {
	type jsonError struct {
		Text       string `json:"error"`
		HTTPStatus int    `json:"-"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var data interface{}
		var err error
		t := time.Now()
		defer func() {
			if e := recover(); e != nil {
				glog.Error(getFunctionName(handler), " recovered from panic: ", e)
				if s.debug {
					data = jsonError{fmt.Sprint("Internal server error: recovered from panic ", e), http.StatusInternalServerError}
				} else {
					data = jsonError{"Internal server error", http.StatusInternalServerError}
				}
			}
			status := "success"
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if e, isError := data.(jsonError); isError {
				status = "failure"
				w.WriteHeader(e.HTTPStatus)
			}
			err = json.NewEncoder(w).Encode(data)
			if err != nil {
				glog.Warning("json encode ", err)
			}
			s.metrics.Requests.With(common.Labels{"method": method, "status": status}).Inc()
			s.metrics.ReqDuration.With(common.Labels{"method": method}).Observe(float64(time.Since(t)) / 1e3) // in microseconds
		}()
		data, err = handler(r)
		if err != nil || data == nil {
			if apiErr, ok := err.(*api.APIError); ok {
				if apiErr.Public {
					data = jsonError{apiErr.Error(), http.StatusBadRequest}
				} else {
					data = jsonError{apiErr.Error(), http.StatusInternalServerError}
				}
			} else {
				if err != nil {
					glog.Error(getFunctionName(handler), " error: ", err)
				}
				if s.debug {
					if data != nil {
						data = jsonError{fmt.Sprintf("Internal server error: %v, data %+v", err, data), http.StatusInternalServerError}
					} else {
						data = jsonError{fmt.Sprintf("Internal server error: %v", err), http.StatusInternalServerError}
					}
				} else {
					data = jsonError{"Internal server error", http.StatusInternalServerError}
				}
			}
		}
	}
}

func (s *PublicServer) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	buf, err := json.MarshalIndent(s.api.GetSystemInfo(), "", "    ")
	if err != nil {
		glog.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write(buf)
}

// lastPathElement returns the part of the url path after the last slash
func lastPathElement(r *http.Request) string {
	if i := strings.LastIndexByte(r.URL.Path, '/'); i >= 0 {
		return r.URL.Path[i+1:]
	}
	return ""
}

func (s *PublicServer) apiDecode(r *http.Request) (interface{}, error) {
	a := lastPathElement(r)
	if a == "" {
		return nil, api.NewAPIError("Missing address", true)
	}
	return s.api.DecodeAddress(a)
}

func (s *PublicServer) apiEncode(r *http.Request) (interface{}, error) {
	q := r.URL.Query()
	version := 0
	if v := q.Get("version"); v != "" {
		var err error
		version, err = strconv.Atoi(v)
		if err != nil {
			return nil, api.NewAPIError("Parameter 'version' is not a number", true)
		}
	}
	return s.api.EncodeAddress(q.Get("prefix"), version, q.Get("type"), q.Get("hash"))
}

func (s *PublicServer) apiConvert(r *http.Request) (interface{}, error) {
	a := lastPathElement(r)
	if a == "" {
		return nil, api.NewAPIError("Missing address", true)
	}
	return s.api.ConvertAddress(a)
}

func (s *PublicServer) apiPubKey(r *http.Request) (interface{}, error) {
	return s.api.AddressFromPubKey(r.URL.Query().Get("prefix"), lastPathElement(r))
}
