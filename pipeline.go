package redis

import (
	"context"

	"github.com/pior/redis/resp"
)

// Pipeline batches commands and sends them in one round trip.
// Queue* methods validate immediately and report validation failures before
// anything is queued; Exec returns the raw replies in queue order.
//
// A Pipeline is not safe for concurrent use.
//
// Usage:
//
//	pipe := redis.NewPipeline(client)
//	pipe.QueueSet("a", "1")
//	pipe.QueueGet("b")
//	replies, err := pipe.Exec(ctx)
type Pipeline struct {
	executor Executor
	cmds     []*resp.Command
}

// NewPipeline creates a pipeline on the given executor.
// If the executor implements BatchExecutor (Client does), Exec uses a single
// pipelined exchange; otherwise it falls back to sequential execution.
func NewPipeline(executor Executor) *Pipeline {
	return &Pipeline{executor: executor}
}

// Queue appends an already-built command.
func (p *Pipeline) Queue(cmd *resp.Command) {
	p.cmds = append(p.cmds, cmd)
}

// QueueGet appends a GET.
func (p *Pipeline) QueueGet(key string) error {
	if err := resp.ValidateKey(key); err != nil {
		return err
	}
	p.Queue(resp.NewCommand("GET").AddKey(key))
	return nil
}

// QueueSet appends an unconditional SET.
func (p *Pipeline) QueueSet(key, value string) error {
	if err := resp.ValidateKey(key); err != nil {
		return err
	}
	p.Queue(resp.NewCommand("SET").AddKey(key).Add(value))
	return nil
}

// QueueIncrBy appends an INCRBY.
func (p *Pipeline) QueueIncrBy(key string, increment int64) error {
	if err := resp.ValidateKey(key); err != nil {
		return err
	}
	p.Queue(resp.NewCommand("INCRBY").AddKey(key).AddInt(increment))
	return nil
}

// Len returns the number of queued commands.
func (p *Pipeline) Len() int {
	return len(p.cmds)
}

// Exec sends all queued commands and returns one reply per command, in
// queue order, then resets the pipeline. Error replies from the server are
// carried in the corresponding Reply.Err, not as the returned error; the
// returned error indicates the exchange itself failed.
func (p *Pipeline) Exec(ctx context.Context) ([]*resp.Reply, error) {
	if len(p.cmds) == 0 {
		return nil, nil
	}

	cmds := p.cmds
	p.cmds = nil

	if batch, ok := p.executor.(BatchExecutor); ok {
		return batch.ExecuteBatch(ctx, cmds)
	}

	// Fallback: sequential execution
	replies := make([]*resp.Reply, 0, len(cmds))
	for _, cmd := range cmds {
		reply, err := p.executor.Execute(ctx, cmd)
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, nil
}
