package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/sotvokun/simple-jsonrpc/pkg/jsonrpc"
)

// RecordingTransport writes one logfmt line per call to an audit file:
// method, params and outcome. It never fails a call on its own; the
// wrapped transport's result passes through untouched.
type RecordingTransport struct {
	next   jsonrpc.Transport
	logger log15.Logger
}

func NewRecordingTransport(next jsonrpc.Transport, logFile string) (*RecordingTransport, error) {
	if logFile == "" {
		return nil, errors.New("no audit log file defined")
	}

	logger := log15.New()
	hdlr, err := log15.FileHandler(logFile, log15.LogfmtFormat())
	if err != nil {
		return nil, err
	}
	logger.SetHandler(hdlr)

	return &RecordingTransport{
		next:   next,
		logger: logger,
	}, nil
}

func (t *RecordingTransport) Fetch(ctx context.Context, url string, opts *jsonrpc.RequestOptions) (*jsonrpc.Reply, error) {
	start := time.Now()
	reply, err := t.next.Fetch(ctx, url, opts)
	t.record(url, opts.Body, reply, err, time.Since(start))
	return reply, err
}

func (t *RecordingTransport) record(url string, body []byte, reply *jsonrpc.Reply, fetchErr error, elapsed time.Duration) {
	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.logger.Error("sent request with invalid JSON body", "url", url, "err", err)
		return
	}

	params, err := json.Marshal(req.Params)
	if err != nil {
		params = []byte("?")
	}

	keys := []interface{}{
		"url", url,
		"rpc_method", req.Method,
		"rpc_params", string(params),
		"elapsed", elapsed,
	}
	if fetchErr != nil {
		t.logger.Error("JSON-RPC call failed in transport", append(keys, "err", fetchErr)...)
		return
	}

	t.logger.Info("sent JSON-RPC request", append(keys, "status", reply.Status)...)
}
