package redis

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

var ErrConnectionClosed = errors.New("redis: connection closed")

// Connection is a single Redis connection carrying one request/reply
// exchange (or one pipelined batch) at a time. The mutex serializes callers;
// pooling across goroutines is the Pool's job.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// NewConnection wraps an established network connection.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		lastUsed: time.Now(),
	}
}

// Send writes a single command and reads its reply.
// The context deadline, if any, is applied to the socket for the whole
// exchange. Error replies from the server come back in Reply.Err; a Go
// error means the exchange itself failed and the connection is marked
// closed when the protocol state is no longer trustworthy.
func (c *Connection) Send(ctx context.Context, cmd *resp.Command) (*resp.Reply, error) {
	replies, err := c.SendBatch(ctx, []*resp.Command{cmd})
	if err != nil {
		return nil, err
	}
	return replies[0], nil
}

// SendBatch pipelines several commands: all writes first, then all replies
// in command order.
func (c *Connection) SendBatch(ctx context.Context, cmds []*resp.Command) ([]*resp.Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	if err := resp.WriteCommands(c.writer, cmds); err != nil {
		if resp.ShouldCloseConnection(err) {
			c.markClosed()
		}
		return nil, &resp.ConnectionError{Op: "write", Err: err}
	}

	replies := make([]*resp.Reply, 0, len(cmds))
	for range cmds {
		reply, err := resp.ReadReply(c.reader)
		if err != nil {
			c.markClosed()
			return nil, err
		}
		replies = append(replies, reply)
	}

	c.lastUsed = time.Now()
	return replies, nil
}

// Ping sends a PING and verifies the +PONG reply.
func (c *Connection) Ping(ctx context.Context) error {
	reply, err := c.Send(ctx, resp.NewCommand("PING"))
	if err != nil {
		return err
	}
	if reply.HasError() {
		return reply.Err
	}
	if reply.Type != resp.TypeStatus || reply.Text() != "PONG" {
		return &resp.ParseError{Message: "unexpected PING reply: " + reply.Text()}
	}
	return nil
}

// LastUsed returns when the connection last completed an exchange.
func (c *Connection) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// IsClosed returns whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.markClosed()
	return c.conn.Close()
}

// markClosed marks the connection as closed (must be called with lock held)
func (c *Connection) markClosed() {
	c.closed = true
}
