package resp

import "strings"

// Command represents a single Redis command as an ordered token sequence.
// This is a low-level container without serialization logic; tokens map
// directly to the elements of the RESP array sent on the wire.
//
// The first token is always the operation name, upper-cased. The routing key
// (first key argument, if any) is tracked separately so a multi-server client
// can pick a server without re-parsing the argument list.
//
// Commands are built fluently and are not safe for concurrent mutation;
// build once, then treat as read-only.
//
// Usage:
//
//	cmd := resp.NewCommand("SET").AddKey("mykey").Add("value").Add("EX").AddInt(60)
//	cmd.Args() // ["SET", "mykey", "value", "EX", "60"]
type Command struct {
	args []string
	key  string
}

// NewCommand creates a command with the given operation name.
// The name is normalized to upper case.
func NewCommand(name string) *Command {
	return &Command{args: []string{strings.ToUpper(name)}}
}

// Add appends a raw token.
func (c *Command) Add(token string) *Command {
	c.args = append(c.args, token)
	return c
}

// AddKey appends a key token. The first key added becomes the routing key.
// The key is assumed to be already validated (see ValidateKey).
func (c *Command) AddKey(key string) *Command {
	if c.key == "" {
		c.key = key
	}
	c.args = append(c.args, key)
	return c
}

// AddKeys appends key tokens in order, keeping the first as routing key.
func (c *Command) AddKeys(keys ...string) *Command {
	for _, key := range keys {
		c.AddKey(key)
	}
	return c
}

// AddInt appends the decimal token form of an integer.
func (c *Command) AddInt(value int64) *Command {
	c.args = append(c.args, FormatInt(value))
	return c
}

// AddFloat appends the decimal token form of a float.
func (c *Command) AddFloat(value float64) *Command {
	c.args = append(c.args, FormatFloat(value))
	return c
}

// AddPairs appends key/value pairs as a flat token sequence:
// key1, value1, key2, value2, ... in list order.
func (c *Command) AddPairs(pairs ...KeyValue) *Command {
	for _, pair := range pairs {
		c.AddKey(pair.Key)
		c.args = append(c.args, pair.Value)
	}
	return c
}

// Name returns the operation name (first token).
func (c *Command) Name() string {
	return c.args[0]
}

// Key returns the routing key, or "" for keyless commands (MULTI, EXEC, ...).
func (c *Command) Key() string {
	return c.key
}

// Args returns the full token sequence, operation name included.
// The returned slice is the command's backing storage; don't mutate it.
func (c *Command) Args() []string {
	return c.args
}

// Len returns the number of tokens, operation name included.
func (c *Command) Len() int {
	return len(c.args)
}

// String returns the tokens joined with spaces, for logs and errors.
func (c *Command) String() string {
	return strings.Join(c.args, " ")
}
