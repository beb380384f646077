package resp

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(data string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(data))
}

func TestReadReply_Status(t *testing.T) {
	reply, err := ReadReply(reader("+OK\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeStatus, reply.Type)
	assert.Equal(t, "OK", reply.Text())
	assert.True(t, reply.IsOK())
	assert.False(t, reply.IsNil())
}

func TestReadReply_Error(t *testing.T) {
	reply, err := ReadReply(reader("-ERR unknown command 'FOO'\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeError, reply.Type)
	require.True(t, reply.HasError())

	var cmdErr *CommandError
	require.ErrorAs(t, reply.Err, &cmdErr)
	assert.Equal(t, "ERR unknown command 'FOO'", cmdErr.Message)
	assert.Equal(t, "ERR", cmdErr.Code())
	assert.False(t, ShouldCloseConnection(reply.Err))
}

func TestReadReply_ErrorCode(t *testing.T) {
	reply, err := ReadReply(reader("-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"))

	require.NoError(t, err)
	var cmdErr *CommandError
	require.ErrorAs(t, reply.Err, &cmdErr)
	assert.Equal(t, "WRONGTYPE", cmdErr.Code())
}

func TestReadReply_Integer(t *testing.T) {
	reply, err := ReadReply(reader(":42\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeInteger, reply.Type)
	assert.Equal(t, int64(42), reply.Int)

	reply, err = ReadReply(reader(":-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), reply.Int)
}

func TestReadReply_Bulk(t *testing.T) {
	reply, err := ReadReply(reader("$5\r\nhello\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeBulk, reply.Type)
	assert.Equal(t, "hello", reply.Text())
	assert.False(t, reply.IsNil())
}

func TestReadReply_EmptyBulk(t *testing.T) {
	reply, err := ReadReply(reader("$0\r\n\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "", reply.Text())
	assert.False(t, reply.IsNil())
}

func TestReadReply_NilBulk(t *testing.T) {
	reply, err := ReadReply(reader("$-1\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeBulk, reply.Type)
	assert.True(t, reply.IsNil())
	assert.Nil(t, reply.Data)
}

func TestReadReply_BinaryBulk(t *testing.T) {
	reply, err := ReadReply(reader("$7\r\na\r\nb\x00c\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\x00c", reply.Text())
}

func TestReadReply_Array(t *testing.T) {
	reply, err := ReadReply(reader("*3\r\n$1\r\n1\r\n$1\r\n2\r\n$-1\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeArray, reply.Type)
	require.Len(t, reply.Elems, 3)
	assert.Equal(t, "1", reply.Elems[0].Text())
	assert.Equal(t, "2", reply.Elems[1].Text())
	assert.True(t, reply.Elems[2].IsNil())
}

func TestReadReply_EmptyArray(t *testing.T) {
	reply, err := ReadReply(reader("*0\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeArray, reply.Type)
	assert.Len(t, reply.Elems, 0)
	assert.False(t, reply.IsNil())
}

func TestReadReply_NilArray(t *testing.T) {
	reply, err := ReadReply(reader("*-1\r\n"))

	require.NoError(t, err)
	assert.Equal(t, TypeArray, reply.Type)
	assert.True(t, reply.IsNil())
}

func TestReadReply_NestedArray(t *testing.T) {
	reply, err := ReadReply(reader("*2\r\n*2\r\n:1\r\n:2\r\n+OK\r\n"))

	require.NoError(t, err)
	require.Len(t, reply.Elems, 2)

	inner := reply.Elems[0]
	require.Equal(t, TypeArray, inner.Type)
	require.Len(t, inner.Elems, 2)
	assert.Equal(t, int64(1), inner.Elems[0].Int)
	assert.Equal(t, int64(2), inner.Elems[1].Int)

	assert.True(t, reply.Elems[1].IsOK())
}

func TestReadReply_Sequence(t *testing.T) {
	r := reader("+OK\r\n:10\r\n$3\r\nfoo\r\n")

	reply, err := ReadReply(r)
	require.NoError(t, err)
	assert.True(t, reply.IsOK())

	reply, err = ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reply.Int)

	reply, err = ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, "foo", reply.Text())

	_, err = ReadReply(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadReply_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown type", "@boom\r\n"},
		{"bad integer", ":abc\r\n"},
		{"bad bulk length", "$abc\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"bad array length", "*abc\r\n"},
		{"negative array length", "*-2\r\n"},
		{"missing bulk terminator", "$5\r\nhelloXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReply(reader(tt.data))
			require.Error(t, err)

			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				assert.True(t, ShouldCloseConnection(err))
			}
		})
	}
}

func TestReadReply_TruncatedBulk(t *testing.T) {
	_, err := ReadReply(reader("$10\r\nshort\r\n"))

	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
