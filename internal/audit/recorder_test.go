package audit

import (
	"context"
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sotvokun/simple-jsonrpc/pkg/jsonrpc"
)

func TestRecordingTransport(t *testing.T) {
	dir, err := ioutil.TempDir("", "audit")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	logFile := path.Join(dir, "audit.log")

	mock := jsonrpc.NewMockTransport(map[string]jsonrpc.MockHandler{
		"web3_clientVersion": func(req *jsonrpc.Request, opts *jsonrpc.RequestOptions) (*jsonrpc.Response, error) {
			return jsonrpc.NewMockResponse("jrpc/test"), nil
		},
	}, 0)

	transport, err := NewRecordingTransport(mock, logFile)
	require.NoError(t, err)

	client := jsonrpc.NewClientWithOpts("http://backend.test", &jsonrpc.ClientOpts{
		Transport: transport,
	})
	_, err = client.Call(context.Background(), "web3_clientVersion", "full")
	require.NoError(t, err)

	recorded, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(recorded), "rpc_method=web3_clientVersion")
	require.Contains(t, string(recorded), "status=200")
}

func TestRecordingTransport_RequiresLogFile(t *testing.T) {
	_, err := NewRecordingTransport(nil, "")
	require.Error(t, err)
}
