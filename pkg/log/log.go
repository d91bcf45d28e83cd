package log

import (
	"context"
	"os"

	"github.com/inconshreveable/log15"
)

var rootLog = log15.New()

const DefaultLevel = log15.LvlInfo
const CallIDKey = "call_id"

func init() {
	SetLevel(DefaultLevel)
}

func SetLevel(level log15.Lvl) {
	rootLog.SetHandler(log15.LvlFilterHandler(level, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
}

func NewLog(module string) log15.Logger {
	if module == "" {
		return rootLog
	}

	return rootLog.New("module", module)
}

// WithCallID appends the call id stored in ctx to a set of log keys, so
// every line emitted for one RPC call can be correlated.
func WithCallID(ctx context.Context, keys ...interface{}) []interface{} {
	return append(keys, []interface{}{
		CallIDKey,
		ctx.Value(CallIDKey),
	}...)
}
