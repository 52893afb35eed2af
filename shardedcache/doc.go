/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package shardedcache provides a thread-safe sharded wrapper around lrucache.
// Keys are distributed over a power-of-two number of shards, each shard owning
// its own mutex and lrucache.LRUCache, so goroutines working on different keys
// don't contend on a single lock.
package shardedcache
