package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/resp"
)

// batchSpyExecutor also records batches, to prove Exec took the pipelined path.
type batchSpyExecutor struct {
	spyExecutor
	batches [][]*resp.Command
}

func (s *batchSpyExecutor) ExecuteBatch(ctx context.Context, cmds []*resp.Command) ([]*resp.Reply, error) {
	s.batches = append(s.batches, cmds)
	if s.err != nil {
		return nil, s.err
	}
	replies := make([]*resp.Reply, 0, len(cmds))
	for range cmds {
		if len(s.replies) == 0 {
			replies = append(replies, statusReply("OK"))
			continue
		}
		replies = append(replies, s.replies[0])
		s.replies = s.replies[1:]
	}
	return replies, nil
}

func TestPipeline_Exec_Batch(t *testing.T) {
	spy := &batchSpyExecutor{}
	spy.replies = []*resp.Reply{statusReply("OK"), bulkReply("1"), intReply(6)}

	pipe := NewPipeline(spy)
	require.NoError(t, pipe.QueueSet("a", "1"))
	require.NoError(t, pipe.QueueGet("a"))
	require.NoError(t, pipe.QueueIncrBy("counter", 5))
	assert.Equal(t, 3, pipe.Len())

	replies, err := pipe.Exec(context.Background())

	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.True(t, replies[0].IsOK())
	assert.Equal(t, "1", replies[1].Text())
	assert.Equal(t, int64(6), replies[2].Int)

	// All three commands went out in a single batch.
	require.Len(t, spy.batches, 1)
	require.Len(t, spy.batches[0], 3)
	assert.Equal(t, []string{"SET", "a", "1"}, spy.batches[0][0].Args())
	assert.Equal(t, []string{"GET", "a"}, spy.batches[0][1].Args())
	assert.Equal(t, []string{"INCRBY", "counter", "5"}, spy.batches[0][2].Args())
	assert.Empty(t, spy.commands, "batch path must not fall back to Execute")
}

func TestPipeline_Exec_SequentialFallback(t *testing.T) {
	spy := &spyExecutor{replies: []*resp.Reply{statusReply("OK"), bulkReply("v")}}

	pipe := NewPipeline(spy)
	require.NoError(t, pipe.QueueSet("a", "v"))
	require.NoError(t, pipe.QueueGet("a"))

	replies, err := pipe.Exec(context.Background())

	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "v", replies[1].Text())
	require.Len(t, spy.commands, 2)
}

func TestPipeline_Exec_Empty(t *testing.T) {
	pipe := NewPipeline(&spyExecutor{})

	replies, err := pipe.Exec(context.Background())

	require.NoError(t, err)
	assert.Nil(t, replies)
}

func TestPipeline_Exec_Resets(t *testing.T) {
	spy := &batchSpyExecutor{}
	pipe := NewPipeline(spy)

	require.NoError(t, pipe.QueueGet("a"))
	_, err := pipe.Exec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, pipe.Len())

	replies, err := pipe.Exec(context.Background())
	require.NoError(t, err)
	assert.Nil(t, replies)
	assert.Len(t, spy.batches, 1)
}

func TestPipeline_Queue_ValidatesBeforeQueueing(t *testing.T) {
	pipe := NewPipeline(&spyExecutor{})

	err := pipe.QueueGet("")
	require.Error(t, err)
	assert.True(t, resp.IsInvalidArgument(err))

	err = pipe.QueueSet("", "v")
	require.Error(t, err)
	assert.True(t, resp.IsInvalidArgument(err))

	err = pipe.QueueIncrBy("", 1)
	require.Error(t, err)
	assert.True(t, resp.IsInvalidArgument(err))

	assert.Equal(t, 0, pipe.Len())
}

func TestPipeline_ErrorRepliesStayInReplies(t *testing.T) {
	spy := &batchSpyExecutor{}
	spy.replies = []*resp.Reply{
		statusReply("OK"),
		errorReply("WRONGTYPE Operation against a key holding the wrong kind of value"),
	}

	pipe := NewPipeline(spy)
	require.NoError(t, pipe.QueueSet("a", "v"))
	require.NoError(t, pipe.QueueIncrBy("a", 1))

	replies, err := pipe.Exec(context.Background())

	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.False(t, replies[0].HasError())
	assert.True(t, replies[1].HasError())
}
