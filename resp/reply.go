package resp

// Reply represents a parsed RESP reply.
// This is a low-level container for reply data without parsing logic.
// Exactly one variant is meaningful, identified by Type.
type Reply struct {
	// Type identifies the reply variant: status, error, integer, bulk, array.
	Type ReplyType

	// Int is the value of integer replies.
	Int int64

	// Data is the payload of bulk and status replies.
	// Nil for the nil bulk reply ($-1), which is how Redis encodes
	// "no value" (missing key, unmet NX/XX condition).
	Data []byte

	// Elems holds the elements of array replies, in wire order.
	// Nil elements inside an array are bulk replies with nil Data.
	Elems []*Reply

	// Err is set for error replies (-ERR ..., -WRONGTYPE ...).
	// When Err is set, other fields are empty.
	Err error
}

// IsNil returns true for the nil bulk reply and the nil array reply.
// A nil reply is not an error: it means "no value" (missing key,
// unmet SET NX/XX condition, aborted EXEC).
func (r *Reply) IsNil() bool {
	switch r.Type {
	case TypeBulk:
		return r.Data == nil
	case TypeArray:
		return r.Elems == nil
	default:
		return false
	}
}

// IsOK returns true for the +OK status reply.
func (r *Reply) IsOK() bool {
	return r.Type == TypeStatus && string(r.Data) == StatusOK
}

// HasError returns true if the reply is an error reply from the server.
func (r *Reply) HasError() bool {
	return r.Err != nil
}

// Text returns the payload of bulk and status replies as a string.
// Returns "" for the nil bulk reply; use IsNil to tell the two apart.
func (r *Reply) Text() string {
	return string(r.Data)
}
