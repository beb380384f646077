package resp

// ReplyType identifies which variant of a Reply is populated.
type ReplyType byte

// Reply variants, matching the RESP2 type bytes.
const (
	// TypeStatus is a simple string reply: +OK\r\n
	TypeStatus ReplyType = '+'

	// TypeError is an error reply: -ERR unknown command\r\n
	TypeError ReplyType = '-'

	// TypeInteger is an integer reply: :42\r\n
	TypeInteger ReplyType = ':'

	// TypeBulk is a bulk string reply: $5\r\nhello\r\n
	// A length of -1 ($-1\r\n) is the nil bulk string.
	TypeBulk ReplyType = '$'

	// TypeArray is an array reply: *2\r\n... with recursive elements.
	// A length of -1 (*-1\r\n) is the nil array.
	TypeArray ReplyType = '*'
)

// Protocol delimiters
const (
	// CRLF is the line terminator for the Redis protocol
	CRLF = "\r\n"
)

// StatusOK is the simple string reply for most successful write commands.
const StatusOK = "OK"

// StatusQueued is the simple string reply for commands queued inside a
// MULTI/EXEC transaction.
const StatusQueued = "QUEUED"

// Bit operation tokens accepted by EncodeBitOp.
const (
	BitOpAnd = "AND"
	BitOpOr  = "OR"
	BitOpXor = "XOR"
	BitOpNot = "NOT"
)

// Existence condition tokens accepted by EncodeExistMode.
const (
	ExistNX = "NX" // only set if the key does not exist
	ExistXX = "XX" // only set if the key already exists
)
