// Package cache provides a Redis-backed object cache and caching decorators
// for the option and term stores. Entries live in versioned groups: flushing a
// group bumps its generation so stale keys are never read again and expire
// through their TTL.
package cache
