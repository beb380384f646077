package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/resp"
)

func TestCommands_MultiExec(t *testing.T) {
	spy := &spyExecutor{replies: []*resp.Reply{
		statusReply("OK"),     // MULTI
		statusReply("QUEUED"), // SET
		statusReply("QUEUED"), // INCR
		arrayReply(statusReply("OK"), intReply(1)), // EXEC
	}}
	commands := NewCommands(spy)
	ctx := context.Background()

	require.NoError(t, commands.Multi(ctx))

	_, err := commands.Do(ctx, resp.NewCommand("SET").AddKey("k").Add("v"))
	require.NoError(t, err)
	_, err = commands.Do(ctx, resp.NewCommand("INCR").AddKey("counter"))
	require.NoError(t, err)

	reply, err := commands.Exec(ctx)
	require.NoError(t, err)
	require.Len(t, reply.Elems, 2)
	assert.True(t, reply.Elems[0].IsOK())
	assert.Equal(t, int64(1), reply.Elems[1].Int)

	require.Len(t, spy.commands, 4)
	assert.Equal(t, []string{"MULTI"}, spy.commands[0].Args())
	assert.Equal(t, []string{"EXEC"}, spy.commands[3].Args())
}

func TestCommands_Exec_Aborted(t *testing.T) {
	// A watched key changed: EXEC answers a nil array, which is not an error.
	spy := &spyExecutor{replies: []*resp.Reply{
		{Type: resp.TypeArray},
	}}
	commands := NewCommands(spy)

	reply, err := commands.Exec(context.Background())

	require.NoError(t, err)
	assert.True(t, reply.IsNil())
}

func TestCommands_Exec_WithoutMulti(t *testing.T) {
	spy := &spyExecutor{replies: []*resp.Reply{
		errorReply("ERR EXEC without MULTI"),
	}}
	commands := NewCommands(spy)

	_, err := commands.Exec(context.Background())

	require.Error(t, err)
	var cmdErr *resp.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "ERR", cmdErr.Code())
}

func TestCommands_Discard(t *testing.T) {
	spy := &spyExecutor{}
	commands := NewCommands(spy)

	require.NoError(t, commands.Discard(context.Background()))
	assert.Equal(t, []string{"DISCARD"}, spy.lastArgs(t))
}

func TestCommands_Watch(t *testing.T) {
	spy := &spyExecutor{}
	commands := NewCommands(spy)

	require.NoError(t, commands.Watch(context.Background(), "mykey"))
	assert.Equal(t, []string{"WATCH", "mykey"}, spy.lastArgs(t))
	assert.Len(t, spy.lastArgs(t), 2)

	require.NoError(t, commands.Watch(context.Background(), "a", "b", "c"))
	assert.Equal(t, []string{"WATCH", "a", "b", "c"}, spy.lastArgs(t))
	assert.Len(t, spy.lastArgs(t), 4)
}

func TestCommands_Watch_NoKeys(t *testing.T) {
	spy := &spyExecutor{}
	commands := NewCommands(spy)

	err := commands.Watch(context.Background())

	require.Error(t, err)
	assert.True(t, resp.IsInvalidArgument(err))
	assert.Empty(t, spy.commands)
}

func TestCommands_Watch_EmptyKey(t *testing.T) {
	spy := &spyExecutor{}
	commands := NewCommands(spy)

	err := commands.Watch(context.Background(), "a", "")

	require.Error(t, err)
	assert.True(t, resp.IsInvalidArgument(err))
	assert.Empty(t, spy.commands)
}

func TestCommands_Unwatch(t *testing.T) {
	spy := &spyExecutor{}
	commands := NewCommands(spy)

	require.NoError(t, commands.Unwatch(context.Background()))
	assert.Equal(t, []string{"UNWATCH"}, spy.lastArgs(t))
}

func TestCommands_Multi_UnexpectedStatus(t *testing.T) {
	spy := &spyExecutor{replies: []*resp.Reply{statusReply("NOPE")}}
	commands := NewCommands(spy)

	err := commands.Multi(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MULTI")
}
