package redis

import (
	"github.com/pior/redis/internal"
	"github.com/zeebo/xxh3"
)

// ServerSelector picks which server handles a given key.
// It receives the key and the current server count and returns an index
// into the server list.
type ServerSelector func(key string, serverCount int) int

// DefaultServerSelector uses xxh3 with Jump Hash for consistent server
// selection. Jump Hash provides good distribution and few key movements
// when servers are added or removed.
func DefaultServerSelector(key string, serverCount int) int {
	return internal.JumpHash(xxh3.HashString(key), serverCount)
}

// staticSelector is used in tests to always select a specific server.
func staticSelector(index int) ServerSelector {
	return func(key string, serverCount int) int {
		return index % serverCount
	}
}
