// Package cache provides the bounded LRU cache that holds conversion plans.
//
// Plans are keyed by (format descriptor, direction). Building a plan is
// cheap but not free: it validates the descriptor, selects the staging
// format and encodes the parameter block. Callers that convert many
// buffers of the same few formats hit the cache on every call after the
// first.
//
//	plans := cache.New[key, *Plan](64)
//	plan, err := plans.GetOrCreate(k, build)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
