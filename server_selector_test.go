package redis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultServerSelector_Bounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("key-%d", i)
		index := DefaultServerSelector(key, 5)
		assert.GreaterOrEqual(t, index, 0)
		assert.Less(t, index, 5)
	}
}

func TestDefaultServerSelector_Deterministic(t *testing.T) {
	first := DefaultServerSelector("mykey", 10)
	second := DefaultServerSelector("mykey", 10)

	assert.Equal(t, first, second)
}

func TestDefaultServerSelector_SingleServer(t *testing.T) {
	assert.Equal(t, 0, DefaultServerSelector("anything", 1))
}

func TestDefaultServerSelector_Distribution(t *testing.T) {
	const servers = 4
	counts := make([]int, servers)
	for i := 0; i < 4000; i++ {
		counts[DefaultServerSelector(fmt.Sprintf("key-%d", i), servers)]++
	}

	// Rough balance: no server should be starved or hot.
	for i, count := range counts {
		assert.Greater(t, count, 500, "server %d starved: %d keys", i, count)
		assert.Less(t, count, 1500, "server %d hot: %d keys", i, count)
	}
}

func TestStaticSelector(t *testing.T) {
	selector := staticSelector(2)

	assert.Equal(t, 2, selector("any", 5))
	assert.Equal(t, 0, selector("any", 2))
}
