package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"sync"
)

// Buffer pool for building commands
var bufferPool = sync.Pool{
	New: func() any {
		// Typical command is ~100 bytes, allocate 256 bytes
		return bytes.NewBuffer(make([]byte, 0, 256))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	// TODO: drop if buffer is too large
	buf.Reset()
	bufferPool.Put(buf)
}

// WriteCommand serializes a Command to wire format and writes it to w.
// Commands are always sent as a RESP array of bulk strings:
//
//	*<argc>\r\n$<len>\r\n<arg>\r\n...
//
// Bulk string framing makes every token binary-safe, so no escaping or
// validation of token contents is needed here; argument validation is the
// builder's job and has already happened.
//
// Performance considerations:
//   - Uses bufio.Writer when available for buffered writes
//   - Falls back to pooled buffer for other io.Writer types
func WriteCommand(w io.Writer, cmd *Command) error {
	if cmd == nil || cmd.Len() == 0 {
		return &InvalidArgumentError{Message: "empty command"}
	}

	// Optimize for bufio.Writer (used by Connection)
	if bw, ok := w.(*bufio.Writer); ok {
		appendCommand(bw, cmd)
		return bw.Flush()
	}

	// Fallback to bytes.Buffer approach for other writers (tests, etc.)
	buf := getBuffer()
	defer putBuffer(buf)

	appendCommand(buf, cmd)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteCommands serializes multiple commands back to back without flushing
// in between, for pipelined execution. With a bufio.Writer the whole batch
// goes out in one flush.
func WriteCommands(w io.Writer, cmds []*Command) error {
	if bw, ok := w.(*bufio.Writer); ok {
		for _, cmd := range cmds {
			if cmd == nil || cmd.Len() == 0 {
				return &InvalidArgumentError{Message: "empty command"}
			}
			appendCommand(bw, cmd)
		}
		return bw.Flush()
	}

	buf := getBuffer()
	defer putBuffer(buf)

	for _, cmd := range cmds {
		if cmd == nil || cmd.Len() == 0 {
			return &InvalidArgumentError{Message: "empty command"}
		}
		appendCommand(buf, cmd)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// tokenWriter is the subset of bufio.Writer and bytes.Buffer used by
// appendCommand. Both writers never fail mid-write (bufio defers errors to
// Flush), so appendCommand stays error-free.
type tokenWriter interface {
	WriteString(s string) (int, error)
	WriteByte(b byte) error
}

func appendCommand(w tokenWriter, cmd *Command) {
	args := cmd.Args()

	w.WriteByte(byte(TypeArray))
	w.WriteString(strconv.Itoa(len(args)))
	w.WriteString(CRLF)

	for _, arg := range args {
		w.WriteByte(byte(TypeBulk))
		w.WriteString(strconv.Itoa(len(arg)))
		w.WriteString(CRLF)
		w.WriteString(arg)
		w.WriteString(CRLF)
	}
}
