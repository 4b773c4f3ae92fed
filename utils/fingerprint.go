// Package utils holds small helpers shared across packages.
package utils

import "hash/fnv"

// FingerprintString is the FNV-1a hash of s. It keys the prepared statement cache and
// groups statements in logs.
func FingerprintString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
