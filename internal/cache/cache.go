// Package cache holds analysis reports in memory between requests.
package cache

import (
	"time"
)

// Cache defines the interface for byte caches
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// keyPrefix versions the stored report encoding
const keyPrefix = "plagcheck:v1:report:"

// ReportKey generates the cache key for an analysis ID
func ReportKey(id string) string {
	return keyPrefix + id
}
