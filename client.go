package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

// Config holds configuration for the client connection pools.
type Config struct {
	// MaxSize is the maximum number of connections per server pool.
	// Required: must be > 0.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can be idle before being closed.
	// Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often to check idle connections for health.
	// Zero disables health checks.
	HealthCheckInterval time.Duration

	// Dialer is the net.Dialer used to create new connections.
	// If nil, the default net.Dialer is used.
	Dialer *net.Dialer

	// Pool is the connection pool factory function.
	// If nil, uses the default channel-based pool (fastest).
	// Alternative: NewPuddlePool.
	Pool PoolFactory

	// SelectServer picks which server to use for a key.
	// If nil, uses DefaultServerSelector (xxh3 + jump hash).
	SelectServer ServerSelector

	// NewCircuitBreaker creates a circuit breaker for a server.
	// Called once per server address when the pool is created.
	// If nil, no circuit breaker is used.
	NewCircuitBreaker func(serverAddr string) CircuitBreaker

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

// serverPool wraps a pool with its server address.
type serverPool struct {
	addr           string
	pool           Pool
	circuitBreaker CircuitBreaker // nil if not configured
}

// poolConfig holds the pool configuration extracted from Config.
type poolConfig struct {
	maxSize             int32
	maxConnLifetime     time.Duration
	maxConnIdleTime     time.Duration
	healthCheckInterval time.Duration
	dialer              *net.Dialer
	poolFactory         PoolFactory
	newCircuitBreaker   func(serverAddr string) CircuitBreaker         // nil if not configured
	constructor         func(ctx context.Context) (*Connection, error) // for testing
}

// Client is a Redis client backed by per-server connection pools.
// It implements Executor (routing each command to a server by its key) and
// embeds Commands, so the full command catalog is available directly:
//
//	client, _ := redis.NewClient(redis.NewStaticServers("localhost:6379"), redis.Config{MaxSize: 8})
//	value, err := client.Get(ctx, "mykey")
type Client struct {
	*Commands

	servers      Servers
	selectServer ServerSelector

	// Multi-pool management
	mu    sync.RWMutex
	pools map[string]*serverPool

	// Pool configuration (same for all servers)
	poolConfig poolConfig

	// Health check management
	stopHealthCheck chan struct{}

	stats *clientStatsCollector
}

var (
	_ Querier       = (*Client)(nil)
	_ BatchExecutor = (*Client)(nil)
)

// NewClient creates a new client with the given servers and configuration.
// For a single server, use: NewClient(NewStaticServers("host:port"), config)
func NewClient(servers Servers, config Config) (*Client, error) {
	selectServer := config.SelectServer
	if selectServer == nil {
		selectServer = DefaultServerSelector
	}

	// Validate servers
	if len(servers.List()) == 0 {
		return nil, ErrNoServers
	}

	// Set up pool configuration
	dialer := config.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	poolFactory := config.Pool
	if poolFactory == nil {
		poolFactory = NewChannelPool
	}

	poolCfg := poolConfig{
		maxSize:             config.MaxSize,
		maxConnLifetime:     config.MaxConnLifetime,
		maxConnIdleTime:     config.MaxConnIdleTime,
		healthCheckInterval: config.HealthCheckInterval,
		dialer:              dialer,
		poolFactory:         poolFactory,
		newCircuitBreaker:   config.NewCircuitBreaker,
		constructor:         config.constructor,
	}

	client := &Client{
		servers:         servers,
		selectServer:    selectServer,
		pools:           make(map[string]*serverPool),
		poolConfig:      poolCfg,
		stopHealthCheck: make(chan struct{}),
		stats:           newClientStatsCollector(),
	}
	client.Commands = NewCommands(client)

	// Start health check goroutine if enabled
	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close closes the client and destroys all connections in all pools.
func (c *Client) Close() {
	// Stop health check goroutine if running
	if c.poolConfig.healthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}

	// Close all pools
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sp := range c.pools {
		sp.pool.Close()
	}
}

// Execute routes a single command to the server selected by its key and
// runs it on a pooled connection. Keyless commands (PING, MULTI, EXEC, ...)
// go to the first server; for transactions spanning several commands use
// WithConnection.
func (c *Client) Execute(ctx context.Context, cmd *resp.Command) (*resp.Reply, error) {
	sp, err := c.getPoolForKey(cmd.Key())
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	reply, err := c.execCommand(ctx, sp, cmd)
	c.recordCommand(cmd, reply, err)
	return reply, err
}

// ExecuteBatch pipelines several commands over one connection.
// All commands are routed by the first command's key: multi-server batch
// splitting is not done here.
func (c *Client) ExecuteBatch(ctx context.Context, cmds []*resp.Command) ([]*resp.Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	sp, err := c.getPoolForKey(cmds[0].Key())
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	resource, err := sp.pool.Acquire(ctx)
	if err != nil {
		c.stats.recordError()
		return nil, err
	}

	replies, err := resource.Value().SendBatch(ctx, cmds)
	if err != nil {
		c.stats.recordError()
		if resp.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	for i, cmd := range cmds {
		c.recordCommand(cmd, replies[i], nil)
	}
	return replies, nil
}

// WithConnection pins a single connection for the duration of fn, selected
// by key ("" routes to the first server). The Querier passed to fn runs all
// its commands on that connection, which is what MULTI/EXEC and WATCH
// require: the transaction state lives on the connection.
func (c *Client) WithConnection(ctx context.Context, key string, fn func(q Querier) error) error {
	sp, err := c.getPoolForKey(key)
	if err != nil {
		c.stats.recordError()
		return err
	}

	resource, err := sp.pool.Acquire(ctx)
	if err != nil {
		c.stats.recordError()
		return err
	}

	executor := &connectionExecutor{conn: resource.Value()}
	err = fn(NewCommands(executor))

	if executor.broken {
		resource.Destroy()
	} else {
		resource.Release()
	}
	return err
}

// connectionExecutor runs commands on one pinned connection.
type connectionExecutor struct {
	conn   *Connection
	broken bool
}

var _ BatchExecutor = (*connectionExecutor)(nil)

func (e *connectionExecutor) Execute(ctx context.Context, cmd *resp.Command) (*resp.Reply, error) {
	reply, err := e.conn.Send(ctx, cmd)
	if err != nil && resp.ShouldCloseConnection(err) {
		e.broken = true
	}
	return reply, err
}

func (e *connectionExecutor) ExecuteBatch(ctx context.Context, cmds []*resp.Command) ([]*resp.Reply, error) {
	replies, err := e.conn.SendBatch(ctx, cmds)
	if err != nil && resp.ShouldCloseConnection(err) {
		e.broken = true
	}
	return replies, err
}

// getPoolForKey returns the pool for the server that should handle this key.
// Creates the pool lazily if it doesn't exist.
func (c *Client) getPoolForKey(key string) (*serverPool, error) {
	addrs := c.servers.List()
	if len(addrs) == 0 {
		return nil, ErrNoServers
	}

	// Keyless commands go to the first server.
	index := 0
	if key != "" {
		index = c.selectServer(key, len(addrs))
	}
	if index < 0 || index >= len(addrs) {
		return nil, fmt.Errorf("server selector returned index %d for %d servers", index, len(addrs))
	}

	return c.getOrCreatePool(addrs[index])
}

// getOrCreatePool gets or creates a pool for the given server address.
func (c *Client) getOrCreatePool(addr string) (*serverPool, error) {
	// Fast path: read lock
	c.mu.RLock()
	sp, exists := c.pools[addr]
	c.mu.RUnlock()
	if exists {
		return sp, nil
	}

	// Slow path: write lock and create
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if sp, exists := c.pools[addr]; exists {
		return sp, nil
	}

	pool, cb, err := c.createPool(addr)
	if err != nil {
		return nil, err
	}

	sp = &serverPool{
		addr:           addr,
		pool:           pool,
		circuitBreaker: cb,
	}
	c.pools[addr] = sp
	return sp, nil
}

// createPool creates a new connection pool for a server
func (c *Client) createPool(addr string) (Pool, CircuitBreaker, error) {
	constructor := c.poolConfig.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			netConn, err := c.poolConfig.dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, err
			}
			return NewConnection(netConn), nil
		}
	}

	pool, err := c.poolConfig.poolFactory(constructor, c.poolConfig.maxSize)
	if err != nil {
		return nil, nil, err
	}

	var cb CircuitBreaker
	if c.poolConfig.newCircuitBreaker != nil {
		cb = c.poolConfig.newCircuitBreaker(addr)
	}

	return pool, cb, nil
}

// execCommand executes a single request-reply cycle with proper connection
// management. If a circuit breaker is configured for the server pool, the
// request is wrapped with it.
func (c *Client) execCommand(ctx context.Context, sp *serverPool, cmd *resp.Command) (*resp.Reply, error) {
	if sp.circuitBreaker != nil {
		return sp.circuitBreaker.Execute(func() (*resp.Reply, error) {
			return c.execCommandDirect(ctx, sp.pool, cmd)
		})
	}

	return c.execCommandDirect(ctx, sp.pool, cmd)
}

// execCommandDirect performs the actual execution without circuit breaker.
func (c *Client) execCommandDirect(ctx context.Context, pool Pool, cmd *resp.Command) (*resp.Reply, error) {
	resource, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := resource.Value().Send(ctx, cmd)
	if err != nil {
		if resp.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return nil, err
	}

	resource.Release()
	return reply, nil
}

// recordCommand updates client stats for one executed command.
func (c *Client) recordCommand(cmd *resp.Command, reply *resp.Reply, err error) {
	if err != nil || (reply != nil && reply.HasError()) {
		c.stats.recordError()
		return
	}

	switch cmd.Name() {
	case "GET", "MGET", "GETRANGE", "STRLEN", "GETBIT", "BITCOUNT", "BITPOS":
		c.stats.recordRead(reply != nil && !reply.IsNil())
	case "INCR", "DECR", "INCRBY", "DECRBY", "INCRBYFLOAT":
		c.stats.recordIncrement()
	case "MULTI", "EXEC", "DISCARD", "WATCH", "UNWATCH":
		c.stats.recordTransaction()
	default:
		c.stats.recordWrite()
	}
}

// healthCheckLoop periodically checks idle connections for health and lifecycle limits.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.poolConfig.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkAllPools()
		}
	}
}

// checkAllPools runs health checks on all existing pools
func (c *Client) checkAllPools() {
	c.mu.RLock()
	pools := make([]*serverPool, 0, len(c.pools))
	for _, sp := range c.pools {
		pools = append(pools, sp)
	}
	c.mu.RUnlock()

	for _, sp := range pools {
		c.checkPoolConnections(sp.pool)
	}
}

// checkPoolConnections checks all idle connections in a pool and destroys those that are stale or unhealthy.
func (c *Client) checkPoolConnections(pool Pool) {
	now := time.Now()

	for _, res := range pool.AcquireAllIdle() {
		// Check max connection lifetime
		if c.poolConfig.maxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.poolConfig.maxConnLifetime {
			res.Destroy()
			continue
		}

		// Check max idle time
		if c.poolConfig.maxConnIdleTime > 0 && res.IdleDuration() > c.poolConfig.maxConnIdleTime {
			res.Destroy()
			continue
		}

		// Health check with a PING
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := res.Value().Ping(ctx)
		cancel()
		if err != nil {
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// Ping checks connectivity to every configured server.
func (c *Client) Ping(ctx context.Context) error {
	var failures []string
	for _, addr := range c.servers.List() {
		sp, err := c.getOrCreatePool(addr)
		if err != nil {
			failures = append(failures, addr+": "+err.Error())
			continue
		}

		reply, err := c.execCommand(ctx, sp, resp.NewCommand("PING"))
		if err != nil {
			failures = append(failures, addr+": "+err.Error())
			continue
		}
		if reply.HasError() {
			failures = append(failures, addr+": "+reply.Err.Error())
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("ping failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// Stats returns a snapshot of client statistics.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// ServerPoolStats contains stats for a single server pool
type ServerPoolStats struct {
	Addr                string
	PoolStats           PoolStats
	CircuitBreakerState CircuitBreakerState
}

// AllPoolStats returns stats for all server pools
func (c *Client) AllPoolStats() []ServerPoolStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]ServerPoolStats, 0, len(c.pools))
	for _, sp := range c.pools {
		s := ServerPoolStats{
			Addr:      sp.addr,
			PoolStats: sp.pool.Stats(),
		}
		if sp.circuitBreaker != nil {
			s.CircuitBreakerState = sp.circuitBreaker.State()
		}
		stats = append(stats, s)
	}
	return stats
}
