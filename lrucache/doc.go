/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package lrucache provides a fixed-capacity in-memory cache with LRU eviction policy,
// usage statistics, and Prometheus metrics. The cache itself does no locking;
// the shardedcache package wraps it for concurrent use.
package lrucache
