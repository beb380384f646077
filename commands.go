package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pior/redis/resp"
)

// Value is the result of a read on a string key.
// Found distinguishes a missing key from an empty value.
type Value struct {
	Data  string
	Found bool
}

// StringCommands is the catalog of string-family operations.
type StringCommands interface {
	Append(ctx context.Context, key, value string) (int64, error)
	BitCount(ctx context.Context, key string, rangeArgs ...int64) (int64, error)
	BitOp(ctx context.Context, operation, destKey string, keys ...string) (int64, error)
	BitPos(ctx context.Context, key string, bit int, rangeArgs ...int64) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	DecrBy(ctx context.Context, key string, decrement int64) (int64, error)
	Get(ctx context.Context, key string) (Value, error)
	GetBit(ctx context.Context, key string, offset int64) (int64, error)
	GetRange(ctx context.Context, key string, start, end int64) (string, error)
	GetSet(ctx context.Context, key, value string) (Value, error)
	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, increment int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, increment float64) (float64, error)
	MGet(ctx context.Context, keys ...string) (map[string]Value, error)
	MSet(ctx context.Context, pairs ...resp.KeyValue) error
	MSetNX(ctx context.Context, pairs ...resp.KeyValue) (bool, error)
	PSetEx(ctx context.Context, key string, milliseconds int64, value string) error
	Set(ctx context.Context, key, value string, options *SetOptions) (bool, error)
	SetBit(ctx context.Context, key string, offset int64, bit int) (int64, error)
	SetEx(ctx context.Context, key string, seconds int64, value string) error
	SetNX(ctx context.Context, key, value string) (bool, error)
	SetRange(ctx context.Context, key string, offset int64, value string) (int64, error)
	StrLen(ctx context.Context, key string) (int64, error)
}

// TransactionCommands is the catalog of transaction-control operations.
// These are stateless command emitters: the queued/executing session state
// lives on the server and the connection, never in this layer.
type TransactionCommands interface {
	Multi(ctx context.Context) error
	Exec(ctx context.Context) (*resp.Reply, error)
	Discard(ctx context.Context) error
	Watch(ctx context.Context, keys ...string) error
	Unwatch(ctx context.Context) error
}

// Querier is the full command surface, string and transaction catalogs
// combined, plus the catalog-agnostic Do.
type Querier interface {
	StringCommands
	TransactionCommands
	Do(ctx context.Context, cmd *resp.Command) (*resp.Reply, error)
}

// Executor executes a single Redis command.
// The command carries its routing key to allow server selection.
type Executor interface {
	Execute(ctx context.Context, cmd *resp.Command) (*resp.Reply, error)
}

// BatchExecutor is an optional interface that Executors can implement to
// support efficient batch operations using pipelining.
// If the executor doesn't implement this, Pipeline falls back to individual
// Execute calls.
type BatchExecutor interface {
	Executor
	ExecuteBatch(ctx context.Context, cmds []*resp.Command) ([]*resp.Reply, error)
}

// Commands builds validated command token sequences and delegates execution
// to an injected Executor. It holds no state besides that reference: every
// call validates its arguments, assembles the token sequence in protocol
// order, and makes exactly one Execute call. Validation failures
// (*resp.InvalidArgumentError) are returned before the Executor is reached.
//
// This struct can be used independently with a custom Executor,
// or embedded in Client for full resilience features.
type Commands struct {
	executor Executor
}

var _ Querier = (*Commands)(nil)

// NewCommands creates a new Commands instance with the given executor.
func NewCommands(executor Executor) *Commands {
	return &Commands{executor: executor}
}

// Do executes an already-built command and returns the raw reply.
// Escape hatch for operations outside the typed catalog.
func (c *Commands) Do(ctx context.Context, cmd *resp.Command) (*resp.Reply, error) {
	return c.executor.Execute(ctx, cmd)
}

// SetOptions holds the optional arguments of Set.
// The zero value means "no options": a plain SET.
type SetOptions struct {
	// ExpireSeconds adds an EX <seconds> expiration. Zero means no EX.
	ExpireSeconds int64

	// ExpireMilliseconds adds a PX <milliseconds> expiration. Zero means no PX.
	// EX and PX are independent here; the server rejects the combination,
	// and that reply is propagated as-is.
	ExpireMilliseconds int64

	// Exist restricts the write: "NX" only sets missing keys, "XX" only
	// overwrites existing ones. Case-insensitive. Empty means unconditional.
	Exist string
}

// Append appends value to the string at key and returns the new length.
func (c *Commands) Append(ctx context.Context, key, value string) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}

	cmd := resp.NewCommand("APPEND").AddKey(key).Add(value)
	return c.execInt(ctx, cmd)
}

// BitCount counts the set bits in the string at key.
// rangeArgs is either empty (whole string) or a start/end byte-offset pair;
// giving exactly one bound is invalid.
func (c *Commands) BitCount(ctx context.Context, key string, rangeArgs ...int64) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	if len(rangeArgs) != 0 && len(rangeArgs) != 2 {
		return 0, &resp.InvalidArgumentError{Message: "BITCOUNT range requires both start and end"}
	}

	cmd := resp.NewCommand("BITCOUNT").AddKey(key)
	if len(rangeArgs) == 2 {
		cmd.AddInt(rangeArgs[0]).AddInt(rangeArgs[1])
	}
	return c.execInt(ctx, cmd)
}

// BitOp stores the bitwise combination of the source keys into destKey and
// returns the length of the resulting string. The operation is one of
// AND, OR, XOR, NOT (case-insensitive).
func (c *Commands) BitOp(ctx context.Context, operation, destKey string, keys ...string) (int64, error) {
	op, err := resp.EncodeBitOp(operation)
	if err != nil {
		return 0, err
	}
	if err := resp.ValidateKey(destKey); err != nil {
		return 0, err
	}
	if err := resp.ValidateKeys(keys); err != nil {
		return 0, err
	}

	cmd := resp.NewCommand("BITOP").Add(op).AddKey(destKey).AddKeys(keys...)
	return c.execInt(ctx, cmd)
}

// BitPos returns the position of the first bit equal to bit in the string
// at key, or -1 if absent. rangeArgs is up to two byte offsets: start, or
// start and end. An end without a start cannot be expressed.
func (c *Commands) BitPos(ctx context.Context, key string, bit int, rangeArgs ...int64) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	bitToken, err := resp.EncodeBit(bit)
	if err != nil {
		return 0, err
	}
	if len(rangeArgs) > 2 {
		return 0, &resp.InvalidArgumentError{Message: "BITPOS range takes at most start and end"}
	}

	cmd := resp.NewCommand("BITPOS").AddKey(key).Add(bitToken)
	for _, offset := range rangeArgs {
		cmd.AddInt(offset)
	}
	return c.execInt(ctx, cmd)
}

// Decr decrements the integer at key by one and returns the new value.
func (c *Commands) Decr(ctx context.Context, key string) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("DECR").AddKey(key))
}

// DecrBy decrements the integer at key by decrement and returns the new value.
func (c *Commands) DecrBy(ctx context.Context, key string, decrement int64) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("DECRBY").AddKey(key).AddInt(decrement))
}

// Get retrieves the string at key. A missing key is not an error:
// the returned Value has Found=false.
func (c *Commands) Get(ctx context.Context, key string) (Value, error) {
	if err := resp.ValidateKey(key); err != nil {
		return Value{}, err
	}
	return c.execValue(ctx, resp.NewCommand("GET").AddKey(key))
}

// GetBit returns the bit at offset in the string at key.
func (c *Commands) GetBit(ctx context.Context, key string, offset int64) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("GETBIT").AddKey(key).AddInt(offset))
}

// GetRange returns the substring of the string at key between the inclusive
// byte offsets start and end. Negative offsets count from the end.
func (c *Commands) GetRange(ctx context.Context, key string, start, end int64) (string, error) {
	if err := resp.ValidateKey(key); err != nil {
		return "", err
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("GETRANGE").AddKey(key).AddInt(start).AddInt(end))
	if err != nil {
		return "", err
	}
	if reply.HasError() {
		return "", reply.Err
	}
	if reply.Type != resp.TypeBulk {
		return "", fmt.Errorf("unexpected reply type: %c", reply.Type)
	}
	return reply.Text(), nil
}

// GetSet atomically sets key to value and returns the old value.
// Found=false if the key did not exist before.
func (c *Commands) GetSet(ctx context.Context, key, value string) (Value, error) {
	if err := resp.ValidateKey(key); err != nil {
		return Value{}, err
	}
	return c.execValue(ctx, resp.NewCommand("GETSET").AddKey(key).Add(value))
}

// Incr increments the integer at key by one and returns the new value.
func (c *Commands) Incr(ctx context.Context, key string) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("INCR").AddKey(key))
}

// IncrBy increments the integer at key by increment and returns the new value.
func (c *Commands) IncrBy(ctx context.Context, key string, increment int64) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("INCRBY").AddKey(key).AddInt(increment))
}

// IncrByFloat increments the number at key by increment and returns the new
// value. The server replies with the result as a bulk string.
func (c *Commands) IncrByFloat(ctx context.Context, key string, increment float64) (float64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("INCRBYFLOAT").AddKey(key).AddFloat(increment))
	if err != nil {
		return 0, err
	}
	if reply.HasError() {
		return 0, reply.Err
	}
	if reply.Type != resp.TypeBulk || reply.IsNil() {
		return 0, fmt.Errorf("unexpected reply type: %c", reply.Type)
	}

	value, err := strconv.ParseFloat(reply.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse INCRBYFLOAT result: %w", err)
	}
	return value, nil
}

// MGet retrieves multiple keys in one round trip. The flat array reply is
// reshaped into a map pairing each requested key with its value, in request
// order; missing keys map to Found=false.
func (c *Commands) MGet(ctx context.Context, keys ...string) (map[string]Value, error) {
	if err := resp.ValidateKeys(keys); err != nil {
		return nil, err
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("MGET").AddKeys(keys...))
	if err != nil {
		return nil, err
	}
	if reply.HasError() {
		return nil, reply.Err
	}
	if reply.Type != resp.TypeArray {
		return nil, fmt.Errorf("unexpected reply type: %c", reply.Type)
	}
	if len(reply.Elems) != len(keys) {
		return nil, fmt.Errorf("MGET reply has %d values for %d keys", len(reply.Elems), len(keys))
	}

	values := make(map[string]Value, len(keys))
	for i, key := range keys {
		elem := reply.Elems[i]
		if elem.IsNil() {
			values[key] = Value{}
			continue
		}
		values[key] = Value{Data: elem.Text(), Found: true}
	}
	return values, nil
}

// MSet sets all given key/value pairs atomically.
func (c *Commands) MSet(ctx context.Context, pairs ...resp.KeyValue) error {
	if err := resp.ValidatePairs(pairs); err != nil {
		return err
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("MSET").AddPairs(pairs...))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "MSET")
}

// MSetNX sets all given key/value pairs atomically, but only if none of the
// keys exist. Returns false (and no error) if any key already existed.
func (c *Commands) MSetNX(ctx context.Context, pairs ...resp.KeyValue) (bool, error) {
	if err := resp.ValidatePairs(pairs); err != nil {
		return false, err
	}

	n, err := c.execInt(ctx, resp.NewCommand("MSETNX").AddPairs(pairs...))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PSetEx sets key to value with an expiration in milliseconds.
func (c *Commands) PSetEx(ctx context.Context, key string, milliseconds int64, value string) error {
	if err := resp.ValidateKey(key); err != nil {
		return err
	}
	if milliseconds <= 0 {
		return &resp.InvalidArgumentError{Message: "PSETEX milliseconds must be positive"}
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("PSETEX").AddKey(key).AddInt(milliseconds).Add(value))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "PSETEX")
}

// Set stores value at key. Options add expiration (EX/PX) and existence
// conditions (NX/XX), in that protocol order. With a condition set, a nil
// reply means the condition was not met: Set returns (false, nil).
func (c *Commands) Set(ctx context.Context, key, value string, options *SetOptions) (bool, error) {
	if err := resp.ValidateKey(key); err != nil {
		return false, err
	}

	cmd := resp.NewCommand("SET").AddKey(key).Add(value)
	if options != nil {
		if options.ExpireSeconds != 0 {
			if options.ExpireSeconds < 0 {
				return false, &resp.InvalidArgumentError{Message: "SET EX seconds must be positive"}
			}
			cmd.Add("EX").AddInt(options.ExpireSeconds)
		}
		if options.ExpireMilliseconds != 0 {
			if options.ExpireMilliseconds < 0 {
				return false, &resp.InvalidArgumentError{Message: "SET PX milliseconds must be positive"}
			}
			cmd.Add("PX").AddInt(options.ExpireMilliseconds)
		}
		if options.Exist != "" {
			mode, err := resp.EncodeExistMode(options.Exist)
			if err != nil {
				return false, err
			}
			cmd.Add(mode)
		}
	}

	reply, err := c.executor.Execute(ctx, cmd)
	if err != nil {
		return false, err
	}
	if reply.HasError() {
		return false, reply.Err
	}
	// Nil reply: NX/XX condition not met. Not an error.
	if reply.IsNil() {
		return false, nil
	}
	if !reply.IsOK() {
		return false, fmt.Errorf("SET failed with reply: %s", reply.Text())
	}
	return true, nil
}

// SetBit sets the bit at offset in the string at key and returns the
// previous bit value.
func (c *Commands) SetBit(ctx context.Context, key string, offset int64, bit int) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	bitToken, err := resp.EncodeBit(bit)
	if err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, &resp.InvalidArgumentError{Message: "SETBIT offset must not be negative"}
	}

	return c.execInt(ctx, resp.NewCommand("SETBIT").AddKey(key).AddInt(offset).Add(bitToken))
}

// SetEx sets key to value with an expiration in seconds.
func (c *Commands) SetEx(ctx context.Context, key string, seconds int64, value string) error {
	if err := resp.ValidateKey(key); err != nil {
		return err
	}
	if seconds <= 0 {
		return &resp.InvalidArgumentError{Message: "SETEX seconds must be positive"}
	}

	reply, err := c.executor.Execute(ctx, resp.NewCommand("SETEX").AddKey(key).AddInt(seconds).Add(value))
	if err != nil {
		return err
	}
	return replyStatusOK(reply, "SETEX")
}

// SetNX sets key to value only if the key does not exist.
// Returns false (and no error) if the key was already present.
func (c *Commands) SetNX(ctx context.Context, key, value string) (bool, error) {
	if err := resp.ValidateKey(key); err != nil {
		return false, err
	}

	n, err := c.execInt(ctx, resp.NewCommand("SETNX").AddKey(key).Add(value))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetRange overwrites the string at key starting at the given byte offset
// and returns the new length.
func (c *Commands) SetRange(ctx context.Context, key string, offset int64, value string) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, &resp.InvalidArgumentError{Message: "SETRANGE offset must not be negative"}
	}

	return c.execInt(ctx, resp.NewCommand("SETRANGE").AddKey(key).AddInt(offset).Add(value))
}

// StrLen returns the length of the string at key, 0 for a missing key.
func (c *Commands) StrLen(ctx context.Context, key string) (int64, error) {
	if err := resp.ValidateKey(key); err != nil {
		return 0, err
	}
	return c.execInt(ctx, resp.NewCommand("STRLEN").AddKey(key))
}

// --- Reply mapping helpers ---

// execInt executes cmd and maps the reply to an integer result.
func (c *Commands) execInt(ctx context.Context, cmd *resp.Command) (int64, error) {
	reply, err := c.executor.Execute(ctx, cmd)
	if err != nil {
		return 0, err
	}
	if reply.HasError() {
		return 0, reply.Err
	}
	if reply.Type != resp.TypeInteger {
		return 0, fmt.Errorf("unexpected reply type: %c", reply.Type)
	}
	return reply.Int, nil
}

// execValue executes cmd and maps the reply to a string-or-absent result.
func (c *Commands) execValue(ctx context.Context, cmd *resp.Command) (Value, error) {
	reply, err := c.executor.Execute(ctx, cmd)
	if err != nil {
		return Value{}, err
	}
	if reply.HasError() {
		return Value{}, reply.Err
	}
	if reply.Type != resp.TypeBulk {
		return Value{}, fmt.Errorf("unexpected reply type: %c", reply.Type)
	}
	if reply.IsNil() {
		return Value{}, nil
	}
	return Value{Data: reply.Text(), Found: true}, nil
}

// replyStatusOK checks for the +OK status reply.
func replyStatusOK(reply *resp.Reply, operation string) error {
	if reply.HasError() {
		return reply.Err
	}
	if !reply.IsOK() {
		return fmt.Errorf("%s failed with reply: %s", operation, reply.Text())
	}
	return nil
}
