package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/internal/testutils"
)

// Both pool implementations must behave the same through the Pool interface.
func poolImplementations() map[string]PoolFactory {
	return map[string]PoolFactory{
		"channel": NewChannelPool,
		"puddle":  NewPuddlePool,
	}
}

func mockConnConstructor(replies ...string) func(ctx context.Context) (*Connection, error) {
	return func(ctx context.Context) (*Connection, error) {
		return NewConnection(testutils.NewConnectionMock(replies...)), nil
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 2)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			require.NotNil(t, res.Value())

			res.Release()

			stats := pool.Stats()
			assert.Equal(t, uint64(1), stats.CreatedConns)
			assert.Equal(t, int32(1), stats.TotalConns)
			assert.Equal(t, int32(1), stats.IdleConns)
		})
	}
}

func TestPool_ReusesIdleConnection(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 2)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			first := res.Value()
			res.Release()

			res, err = pool.Acquire(context.Background())
			require.NoError(t, err)
			assert.Same(t, first, res.Value())
			res.Release()

			assert.Equal(t, uint64(1), pool.Stats().CreatedConns)
		})
	}
}

func TestPool_ConstructorError(t *testing.T) {
	dialErr := errors.New("connection refused")
	failing := func(ctx context.Context) (*Connection, error) {
		return nil, dialErr
	}

	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(failing, 2)
			require.NoError(t, err)
			defer pool.Close()

			_, err = pool.Acquire(context.Background())
			assert.ErrorIs(t, err, dialErr)
			assert.Equal(t, int32(0), pool.Stats().TotalConns)
		})
	}
}

func TestPool_WaitsWhenFull(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)

			// Pool is at capacity: a second acquire must wait until release.
			done := make(chan struct{})
			go func() {
				defer close(done)
				second, err := pool.Acquire(context.Background())
				assert.NoError(t, err)
				second.Release()
			}()

			time.Sleep(10 * time.Millisecond)
			res.Release()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("acquire did not complete after release")
			}
		})
	}
}

func TestPool_AcquireTimeout(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			defer res.Release()

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err = pool.Acquire(ctx)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestPool_Destroy(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 2)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Destroy()

			stats := pool.Stats()
			assert.Equal(t, uint64(1), stats.DestroyedConns)
			assert.Equal(t, int32(0), stats.TotalConns)

			// The pool can create a fresh connection afterwards.
			res, err = pool.Acquire(context.Background())
			require.NoError(t, err)
			res.Release()
			assert.Equal(t, uint64(2), pool.Stats().CreatedConns)
		})
	}
}

func TestPool_AcquireAllIdle(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 3)
			require.NoError(t, err)
			defer pool.Close()

			first, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			second, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			first.Release()
			second.Release()

			idle := pool.AcquireAllIdle()
			require.Len(t, idle, 2)
			for _, res := range idle {
				res.ReleaseUnused()
			}

			assert.Equal(t, int32(2), pool.Stats().TotalConns)
		})
	}
}

func TestPool_ResourceMetadata(t *testing.T) {
	for name, factory := range poolImplementations() {
		t.Run(name, func(t *testing.T) {
			pool, err := factory(mockConnConstructor(), 1)
			require.NoError(t, err)
			defer pool.Close()

			res, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			defer res.Release()

			assert.WithinDuration(t, time.Now(), res.CreationTime(), time.Second)
			assert.Less(t, res.IdleDuration(), time.Second)
		})
	}
}
