// Package storage provides the key-value stores sessions are persisted in.
// Every backend honors the same contract: values expire after their TTL,
// a missing key is ErrKeyNotFound and a closed store is ErrNotInitialized.
package storage

import "errors"

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrNotInitialized = errors.New("storage is not initialized")
	ErrInvalidTTL     = errors.New("ttl must be positive")
)
