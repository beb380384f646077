package redis

import (
	"context"
	"time"
)

// Pool manages a set of connections to a single server.
// Two implementations are provided: NewChannelPool (default) and
// NewPuddlePool.
type Pool interface {
	// Acquire returns a connection resource, waiting if the pool is at
	// capacity and no connection is idle.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle removes and returns all currently idle resources,
	// for health checking.
	AcquireAllIdle() []Resource

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats

	// Close closes the pool and all idle connections.
	Close()
}

// Resource is a pooled connection with its lifecycle metadata.
type Resource interface {
	// Value returns the underlying connection.
	Value() *Connection

	// Release returns the connection to the pool and marks it used.
	Release()

	// ReleaseUnused returns the connection without updating its idle clock,
	// used after health checks.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool.
	Destroy()

	// CreationTime returns when the connection was created.
	CreationTime() time.Time

	// IdleDuration returns how long the connection has been idle.
	IdleDuration() time.Duration
}

// PoolFactory builds a Pool from a connection constructor and a size limit.
// Config.Pool takes one of these.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
