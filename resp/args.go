package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// Argument encoders: typed inputs in, protocol tokens out.
// Every command builder funnels its arguments through these, so validation
// and token formatting behave the same across the whole catalog.

// KeyValue is one entry of an ordered key/value list, used by multi-key
// write commands (MSET, MSETNX). A slice of KeyValue is used instead of a
// map so the token order on the wire is deterministic.
type KeyValue struct {
	Key   string
	Value string
}

// ValidateKey checks if a key is valid for the Redis protocol.
// Keys are binary-safe; the only client-side policy is that they must be
// non-empty. An empty key is almost always a caller bug and produces
// confusing server state, so it is rejected before hitting the wire.
func ValidateKey(key string) error {
	if len(key) == 0 {
		return &InvalidArgumentError{Message: "key is empty"}
	}
	return nil
}

// ValidateKeys checks a key list for commands that require at least one key
// (MGET, WATCH, BITOP sources). Each key is validated individually.
func ValidateKeys(keys []string) error {
	if len(keys) == 0 {
		return &InvalidArgumentError{Message: "at least one key is required"}
	}
	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePairs checks an ordered key/value list for multi-key writes.
// The list must be non-empty and every key must be valid.
func ValidatePairs(pairs []KeyValue) error {
	if len(pairs) == 0 {
		return &InvalidArgumentError{Message: "at least one key/value pair is required"}
	}
	for _, pair := range pairs {
		if err := ValidateKey(pair.Key); err != nil {
			return err
		}
	}
	return nil
}

// FormatInt returns the decimal token form of an integer argument.
func FormatInt(value int64) string {
	return strconv.FormatInt(value, 10)
}

// FormatFloat returns the decimal token form of a float argument
// (INCRBYFLOAT increments and similar). The shortest representation that
// round-trips is used, matching what the server parses.
func FormatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// EncodeBit converts a bit argument into the "0" or "1" token.
// Accepts bool and the integer types, valued 0 or 1.
func EncodeBit(value any) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return encodeBitInt(int64(v))
	case int32:
		return encodeBitInt(int64(v))
	case int64:
		return encodeBitInt(v)
	case uint:
		return encodeBitInt(int64(v))
	case uint32:
		return encodeBitInt(int64(v))
	case uint64:
		return encodeBitInt(int64(v))
	default:
		return "", &InvalidArgumentError{Message: fmt.Sprintf("bit must be 0, 1 or bool, got %T", value)}
	}
}

func encodeBitInt(v int64) (string, error) {
	switch v {
	case 0:
		return "0", nil
	case 1:
		return "1", nil
	default:
		return "", &InvalidArgumentError{Message: fmt.Sprintf("bit must be 0 or 1, got %d", v)}
	}
}

// EncodeBitOp normalizes a bitwise operation name for BITOP.
// Matching is case-insensitive; the canonical upper-case token is returned.
func EncodeBitOp(operation string) (string, error) {
	op := strings.ToUpper(operation)
	switch op {
	case BitOpAnd, BitOpOr, BitOpXor, BitOpNot:
		return op, nil
	default:
		return "", &InvalidArgumentError{Message: "unknown bit operation: " + operation}
	}
}

// EncodeExistMode normalizes an existence condition token (NX/XX) for SET.
// Matching is case-insensitive; the canonical upper-case token is returned.
func EncodeExistMode(mode string) (string, error) {
	m := strings.ToUpper(mode)
	switch m {
	case ExistNX, ExistXX:
		return m, nil
	default:
		return "", &InvalidArgumentError{Message: "exist mode must be NX or XX, got: " + mode}
	}
}
