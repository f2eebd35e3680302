package common

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds prometheus collectors for various metrics collected by the service
type Metrics struct {
	Requests                 *prometheus.CounterVec
	ReqDuration              *prometheus.HistogramVec
	WebsocketClients         prometheus.Gauge
	WebsocketPendingRequests *prometheus.GaugeVec
	CodecErrors              *prometheus.CounterVec
	AppInfo                  *prometheus.GaugeVec
}

// Labels represents a collection of label name -> value mappings.
type Labels = prometheus.Labels

// GetMetrics returns struct holding prometheus collectors and registers them to r
func GetMetrics(coin string, r prometheus.Registerer) (*Metrics, error) {
	metrics := Metrics{}

	metrics.Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "cashaddr_requests",
			Help:        "Total number of requests by method and status",
			ConstLabels: Labels{"coin": coin},
		},
		[]string{"method", "status"},
	)
	metrics.ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "cashaddr_req_duration",
			Help:        "Request duration by method (in microseconds)",
			Buckets:     []float64{1, 10, 100, 1_000, 10_000, 100_000},
			ConstLabels: Labels{"coin": coin},
		},
		[]string{"method"},
	)
	metrics.WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "cashaddr_websocket_clients",
			Help:        "Number of currently connected websocket clients",
			ConstLabels: Labels{"coin": coin},
		},
	)
	metrics.WebsocketPendingRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "cashaddr_websocket_pending_requests",
			Help:        "Number of unfinished requests in websocket interface",
			ConstLabels: Labels{"coin": coin},
		},
		[]string{"method"},
	)
	metrics.CodecErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "cashaddr_codec_errors",
			Help:        "Total number of rejected addresses and encode parameters by error kind",
			ConstLabels: Labels{"coin": coin},
		},
		[]string{"kind"},
	)
	metrics.AppInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "cashaddr_app_info",
			Help:        "Information about the running instance",
			ConstLabels: Labels{"coin": coin},
		},
		[]string{"version", "gitcommit"},
	)

	v := reflect.ValueOf(metrics)
	for i := 0; i < v.NumField(); i++ {
		c := v.Field(i).Interface().(prometheus.Collector)
		err := r.Register(c)
		if err != nil {
			return nil, err
		}
	}

	vi := GetVersionInfo()
	metrics.AppInfo.With(Labels{"version": vi.Version, "gitcommit": vi.GitCommit}).Set(1)

	return &metrics, nil
}
