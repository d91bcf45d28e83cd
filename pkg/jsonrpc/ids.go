package jsonrpc

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/satori/go.uuid"
)

// TimestampID tags requests with the current unix time. Concurrent calls
// within the same second share an id, which is fine for servers that only
// echo it back.
func TimestampID() interface{} {
	return time.Now().Unix()
}

// UUIDID tags each request with a random v4 UUID.
func UUIDID() interface{} {
	return uuid.NewV4().String()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// ULIDID tags each request with a monotonic ULID, so ids from one process
// sort in issue order.
func ULIDID() interface{} {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
