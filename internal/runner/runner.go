package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"
	"github.com/sotvokun/simple-jsonrpc/internal/audit"
	"github.com/sotvokun/simple-jsonrpc/pkg/concurrent"
	"github.com/sotvokun/simple-jsonrpc/pkg/config"
	"github.com/sotvokun/simple-jsonrpc/pkg/jsonrpc"
	"github.com/sotvokun/simple-jsonrpc/pkg/log"
	"github.com/sotvokun/simple-jsonrpc/pkg/rpccache"
	"github.com/tidwall/gjson"
)

// Runner owns the client a CLI invocation works through. The transport
// is assembled from the config: HTTP at the bottom, then the audit
// recorder, then the response cache.
type Runner struct {
	cfg    *config.Config
	client *jsonrpc.Client
	cacher rpccache.Cacher
	logger log15.Logger
}

func New(cfg *config.Config) (*Runner, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:    cfg,
		logger: log.NewLog("runner"),
	}

	var transport jsonrpc.Transport = jsonrpc.NewHTTPTransport(cfg.Timeout)
	if cfg.AuditLog != "" {
		recording, err := audit.NewRecordingTransport(transport, cfg.AuditLog)
		if err != nil {
			return nil, err
		}
		transport = recording
	}
	if cfg.CacheConfig != nil {
		r.cacher = newCacher(cfg)
		if err := r.cacher.Start(); err != nil {
			return nil, errors.Wrap(err, "failed to reach cache")
		}
		transport = rpccache.NewCachingTransport(transport, r.cacher, cfg.CacheConfig.Methods, cfg.CacheConfig.TTL)
	}

	header := make(http.Header)
	for key, val := range cfg.Headers {
		header.Set(key, val)
	}

	r.client = jsonrpc.NewClientWithOpts(cfg.URL, &jsonrpc.ClientOpts{
		Timeout:     cfg.Timeout,
		Transport:   transport,
		Header:      header,
		IDGenerator: idGenerator(cfg.IDMode),
	})
	return r, nil
}

func newCacher(cfg *config.Config) rpccache.Cacher {
	if cfg.RedisConfig != nil {
		return rpccache.NewRedisCacher(cfg.RedisConfig)
	}

	return rpccache.NewMemoryCacher()
}

func idGenerator(mode string) jsonrpc.IDFunc {
	switch mode {
	case config.IDModeTimestamp:
		return jsonrpc.TimestampID
	case config.IDModeULID:
		return jsonrpc.ULIDID
	case config.IDModeNone:
		return nil
	default:
		return jsonrpc.UUIDID
	}
}

func (r *Runner) Close() error {
	if r.cacher == nil {
		return nil
	}

	return r.cacher.Stop()
}

// CallOne performs a single call and renders the result. Arguments are
// decoded as JSON values where they parse, and passed through as strings
// where they don't, so `jrpc call eth_getBalance 0xabc true` works
// without shell-quoted quotes. A non-empty resultPath extracts one field
// from the result instead of printing all of it.
func (r *Runner) CallOne(ctx context.Context, method string, rawArgs []string, resultPath string) (string, error) {
	rctx, err := r.client.Call(ctx, method, parseArgs(rawArgs)...)
	if err != nil {
		return "", err
	}

	if resultPath != "" {
		field := gjson.GetBytes(rctx.Data, resultPath)
		if !field.Exists() {
			return "", errors.Errorf("no %q field in result", resultPath)
		}
		return field.String(), nil
	}

	return renderResult(rctx.Data), nil
}

// callSpec is one line of a run file.
type callSpec struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

// RunFile issues every call in a newline-delimited spec file, at most
// concurrency at a time, and reports how many failed. Blank lines and
// lines starting with # are skipped.
func (r *Runner) RunFile(ctx context.Context, lines []string, concurrency int) error {
	specs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" || line[0] == '#' {
			continue
		}
		specs = append(specs, line)
	}

	var failed int64
	concurrent.ConsumeStrings(specs, func(line string) {
		callCtx := context.WithValue(ctx, log.CallIDKey, uuid.NewV4().String())
		if err := r.runLine(callCtx, line); err != nil {
			atomic.AddInt64(&failed, 1)
		}
	}, concurrency)

	if failed > 0 {
		return errors.Errorf("%d of %d calls failed", failed, len(specs))
	}

	return nil
}

func (r *Runner) runLine(ctx context.Context, line string) error {
	var spec callSpec
	if err := json.Unmarshal([]byte(line), &spec); err != nil {
		r.logger.Error("skipping mal-formed call spec", log.WithCallID(ctx, "err", err)...)
		return err
	}
	if spec.Method == "" {
		err := errors.New("call spec has no method")
		r.logger.Error("skipping mal-formed call spec", log.WithCallID(ctx, "err", err)...)
		return err
	}

	var args []interface{}
	switch params := spec.Params.(type) {
	case nil:
	case []interface{}:
		args = params
	default:
		args = []interface{}{params}
	}

	rctx, err := r.client.Call(ctx, spec.Method, args...)
	if err != nil {
		r.logger.Error("call failed", log.WithCallID(ctx, "rpc_method", spec.Method, "err", err)...)
		return err
	}

	r.logger.Info("call succeeded", log.WithCallID(ctx, "rpc_method", spec.Method, "result", renderResult(rctx.Data))...)
	return nil
}

func parseArgs(rawArgs []string) []interface{} {
	args := make([]interface{}, len(rawArgs))
	for i, raw := range rawArgs {
		var val interface{}
		if err := json.Unmarshal([]byte(raw), &val); err != nil {
			args[i] = raw
			continue
		}
		args[i] = val
	}

	return args
}

func renderResult(data json.RawMessage) string {
	if len(data) == 0 {
		return "null"
	}

	return string(data)
}
