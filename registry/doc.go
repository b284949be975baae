// Package registry maintains the flyweight mapping from native handles to
// stable managed-side proxies, and owns the destruction protocol.
//
// The identity invariant is the centerpiece: wrapping the same live handle
// twice returns the same proxy instance, and invalidation clears the cache
// slot synchronously at destroy time so native reuse of a raw local ID can
// never alias a stale proxy. Proxies move through
// Active -> DestroyPending -> Destroyed; the pending state exists only while
// the destroy call itself runs.
//
// Accessors on destroyed proxies return sentinel values by default, or fail
// with a stale_handle error when strict destroyed-access mode is enabled.
package registry
