package cache

import "errors"

// ErrCacheMiss is returned by helpers that require a hit (such as
// [GetJSON]) when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")
