package rpccache

import "time"

// Cacher is the storage behind a CachingTransport. Get returns nil with
// no error on a miss.
type Cacher interface {
	Start() error
	Stop() error
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	SetEx(key string, value []byte, expiration time.Duration) error
	Has(key string) (bool, error)
	Del(key string) error
}
