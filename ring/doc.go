// Package ring implements a consistent hashing ring with virtual nodes.
// It maps arbitrary string keys to a dynamic set of named members so that
// adding or removing a member remaps only a small fraction of keys, and
// supports looking up one or several distinct members per key for
// primary/failover and replica selection. A Ring is safe for concurrent
// use by multiple goroutines.
package ring
