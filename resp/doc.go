// Package resp provides a low-level wire protocol implementation for the
// Redis Serialization Protocol (RESP2).
//
// This package serves as a foundation for building higher-level Redis clients
// with different properties (pipelining, connection pooling, batching, etc.).
// It focuses on correctness and performance for serialization and parsing,
// without imposing architectural decisions on clients.
//
// # Core Types
//
// Command and Reply are pure data containers without embedded logic:
//
//   - Command: an ordered token sequence, first token is the operation name
//   - Reply: a parsed server reply (status, integer, bulk string, array, error)
//
// Commands are built fluently:
//
//	cmd := resp.NewCommand("SET").AddKey("mykey").Add("value").Add("EX").AddInt(60)
//
// # Serialization and Parsing
//
// WriteCommand serializes a command to wire format (a RESP array of bulk
// strings):
//
//	err := resp.WriteCommand(conn, cmd)
//
// ReadReply parses replies from wire format:
//
//	reply, err := resp.ReadReply(bufio.NewReader(conn))
//	if err != nil {
//	    if resp.ShouldCloseConnection(err) {
//	        conn.Close()
//	    }
//	    return err
//	}
//
// Error replies from the server (-ERR ...) are returned as Reply.Err, not as
// Go errors: the protocol exchange succeeded, the command did not.
//
// # Argument Encoding
//
// The Encode*/Format*/Validate* functions convert typed inputs into protocol
// tokens, validating before anything touches the wire. All validation
// failures are *InvalidArgumentError.
package resp
