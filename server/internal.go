package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trezor/cashaddr/api"
	"github.com/trezor/cashaddr/common"
)

// InternalServer is handle to internal http server
type InternalServer struct {
	https     *http.Server
	certFiles string
	is        *common.InternalState
	api       *api.Worker
}

// NewInternalServer creates new internal http interface serving metrics gathered by g and the system info
func NewInternalServer(binding, certFiles string, g prometheus.Gatherer, metrics *common.Metrics, is *common.InternalState) (*InternalServer, error) {
	api, err := api.NewWorker(is, metrics)
	if err != nil {
		return nil, err
	}

	addr, path := splitBinding(binding)
	serveMux := http.NewServeMux()
	https := &http.Server{
		Addr:    addr,
		Handler: serveMux,
	}
	s := &InternalServer{
		https:     https,
		certFiles: certFiles,
		is:        is,
		api:       api,
	}

	serveMux.Handle(path+"metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	serveMux.HandleFunc(path, s.index)

	return s, nil
}

// Run starts the server
func (s *InternalServer) Run() error {
	if s.certFiles == "" {
		glog.Info("internal server: starting to listen on http://", s.https.Addr)
		return s.https.ListenAndServe()
	}
	glog.Info("internal server: starting to listen on https://", s.https.Addr)
	return s.https.ListenAndServeTLS(fmt.Sprint(s.certFiles, ".crt"), fmt.Sprint(s.certFiles, ".key"))
}

// Close closes the server
func (s *InternalServer) Close() error {
	glog.Infof("internal server: closing")
	return s.https.Close()
}

// Shutdown shuts down the server
func (s *InternalServer) Shutdown(ctx context.Context) error {
	glog.Infof("internal server: shutdown")
	return s.https.Shutdown(ctx)
}

func (s *InternalServer) index(w http.ResponseWriter, r *http.Request) {
	type resInternal struct {
		System   *api.SystemInfo    `json:"system"`
		Version  common.VersionInfo `json:"versionInfo"`
		Shutdown bool               `json:"inShutdown"`
	}
	buf, err := json.MarshalIndent(resInternal{
		System:   s.api.GetSystemInfo(),
		Version:  common.GetVersionInfo(),
		Shutdown: common.IsInShutdown(),
	}, "", "    ")
	if err != nil {
		glog.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(buf)
}
