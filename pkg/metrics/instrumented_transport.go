package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sotvokun/simple-jsonrpc/pkg/jsonrpc"
	"github.com/tidwall/gjson"
)

const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// InstrumentedTransport wraps another Transport and counts calls and
// durations per method and outcome. The method label is sniffed from the
// outbound body so the wrapper works below the client, where the
// envelope is already serialized.
type InstrumentedTransport struct {
	next     jsonrpc.Transport
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewInstrumentedTransport(next jsonrpc.Transport, reg prometheus.Registerer) *InstrumentedTransport {
	t := &InstrumentedTransport{
		next: next,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jrpc",
			Name:      "calls_total",
			Help:      "JSON-RPC calls by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jrpc",
			Name:      "call_duration_seconds",
			Help:      "Wall time of JSON-RPC calls by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(t.calls, t.duration)
	return t
}

func (t *InstrumentedTransport) Fetch(ctx context.Context, url string, opts *jsonrpc.RequestOptions) (*jsonrpc.Reply, error) {
	method := gjson.GetBytes(opts.Body, "method").String()
	if method == "" {
		method = "unknown"
	}

	start := time.Now()
	reply, err := t.next.Fetch(ctx, url, opts)
	t.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeTransportError
	} else if !reply.OK() {
		outcome = OutcomeHTTPError
	}
	t.calls.WithLabelValues(method, outcome).Inc()

	return reply, err
}
