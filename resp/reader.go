package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

var crlfBytes = []byte(CRLF)

// ReadReply reads and parses a single reply from r.
//
// Error replies from the server (-ERR ..., -WRONGTYPE ...) are returned as
// Reply.Err (not as Go error). The caller should check Reply.HasError() and
// use ShouldCloseConnection() to determine connection handling.
//
// Go errors returned indicate I/O or parsing failures:
//   - io.EOF: connection closed
//   - ParseError: malformed reply, connection should be closed
//   - Other I/O errors: connection issues, connection should be closed
//
// Performance considerations:
//   - Uses ReadSlice for zero-allocation line reading
//   - Reads bulk payloads with their trailing CRLF in a single read
func ReadReply(r *bufio.Reader) (*Reply, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	if len(line) == 0 {
		return nil, &ParseError{Message: "empty reply line"}
	}

	kind := ReplyType(line[0])
	payload := line[1:]

	switch kind {
	case TypeStatus:
		// payload escapes the read buffer, copy it
		return &Reply{Type: TypeStatus, Data: append([]byte(nil), payload...)}, nil

	case TypeError:
		return &Reply{Type: TypeError, Err: &CommandError{Message: string(payload)}}, nil

	case TypeInteger:
		n, err := strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return nil, &ParseError{Message: "invalid integer reply", Err: err}
		}
		return &Reply{Type: TypeInteger, Int: n}, nil

	case TypeBulk:
		return readBulk(r, payload)

	case TypeArray:
		return readArray(r, payload)

	default:
		return nil, &ParseError{Message: "unknown reply type: " + string(line)}
	}
}

// readLine reads one CRLF-terminated line, without the terminator.
// The returned slice points into the reader's buffer and is only valid
// until the next read.
func readLine(r *bufio.Reader) ([]byte, error) {
	// ReadSlice is zero-allocation; fall back to ReadBytes for long lines
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		line, err = r.ReadBytes('\n')
	}
	if err != nil {
		return nil, err
	}

	if !bytes.HasSuffix(line, crlfBytes) {
		return nil, &ParseError{Message: "reply line not terminated by CRLF"}
	}
	return line[:len(line)-2], nil
}

func readBulk(r *bufio.Reader, payload []byte) (*Reply, error) {
	size, err := strconv.Atoi(string(payload))
	if err != nil {
		return nil, &ParseError{Message: "invalid bulk length", Err: err}
	}

	// $-1 is the nil bulk reply ("no value")
	if size == -1 {
		return &Reply{Type: TypeBulk, Data: nil}, nil
	}
	if size < 0 {
		return nil, &ParseError{Message: "negative bulk length"}
	}

	// Read data + CRLF together in single read
	data := make([]byte, size+2)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, &ParseError{Message: "failed to read bulk payload", Err: err}
	}

	if !bytes.HasSuffix(data, crlfBytes) {
		return nil, &ParseError{Message: "invalid bulk payload terminator"}
	}

	return &Reply{Type: TypeBulk, Data: data[:size]}, nil
}

func readArray(r *bufio.Reader, payload []byte) (*Reply, error) {
	count, err := strconv.Atoi(string(payload))
	if err != nil {
		return nil, &ParseError{Message: "invalid array length", Err: err}
	}

	// *-1 is the nil array reply (aborted EXEC)
	if count == -1 {
		return &Reply{Type: TypeArray, Elems: nil}, nil
	}
	if count < 0 {
		return nil, &ParseError{Message: "negative array length"}
	}

	elems := make([]*Reply, 0, count)
	for i := 0; i < count; i++ {
		elem, err := ReadReply(r)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}

	return &Reply{Type: TypeArray, Elems: elems}, nil
}
