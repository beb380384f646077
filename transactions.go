package redis

import (
	"context"
	"fmt"

	"github.com/pior/redis/resp"
)

// Transaction-control operations. These are stateless emitters: whether the
// connection is in queued or executing mode is tracked by the server, not
// here. Callers must run a transaction's commands on a single connection;
// see Client.WithConnection.

// Multi marks the start of a transaction block on the current connection.
// Subsequent commands are queued until Exec or Discard.
func (c *Commands) Multi(ctx context.Context) error {
	reply, err := c.executor.Execute(ctx, resp.NewCommand("MULTI"))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "MULTI")
}

// Exec runs all commands queued since Multi and returns the raw array reply,
// one element per queued command in queue order. A nil reply means the
// transaction was aborted because a watched key changed; Exec returns a nil
// array reply in that case, not an error.
func (c *Commands) Exec(ctx context.Context) (*resp.Reply, error) {
	reply, err := c.executor.Execute(ctx, resp.NewCommand("EXEC"))
	if err != nil {
		return nil, err
	}
	if reply.HasError() {
		return nil, reply.Err
	}
	if reply.Type != resp.TypeArray {
		return nil, fmt.Errorf("unexpected reply type: %c", reply.Type)
	}
	return reply, nil
}

// Discard flushes all commands queued since Multi and leaves the
// transaction block.
func (c *Commands) Discard(ctx context.Context) error {
	reply, err := c.executor.Execute(ctx, resp.NewCommand("DISCARD"))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "DISCARD")
}

// Watch marks keys for optimistic locking: if any of them changes before
// Exec, the transaction aborts. At least one key is required.
func (c *Commands) Watch(ctx context.Context, keys ...string) error {
	if err := resp.ValidateKeys(keys); err != nil {
		return err
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("WATCH").AddKeys(keys...))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "WATCH")
}

// Unwatch drops all watched keys on the current connection.
func (c *Commands) Unwatch(ctx context.Context) error {
	reply, err := c.executor.Execute(ctx, resp.NewCommand("UNWATCH"))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "UNWATCH")
}
