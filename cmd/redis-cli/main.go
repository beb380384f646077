package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pior/redis"
)

func main() {
	addr := "localhost:6379"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	fmt.Println("Redis CLI Tool")
	fmt.Println("==============")
	fmt.Println("Commands: get <key>, set <key> <value> [ex_seconds], setex <key> <seconds> <value>,")
	fmt.Println("          incr <key>, incrby <key> <n>, mget <key1> <key2> ..., append <key> <value>,")
	fmt.Println("          strlen <key>, stats, ping, quit")
	fmt.Println()

	client, err := redis.NewClient(redis.NewStaticServers(addr), redis.Config{MaxSize: 4})
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		command := strings.ToLower(parts[0])
		ctx := context.Background()

		switch command {
		case "get":
			if len(parts) != 2 {
				fmt.Println("Usage: get <key>")
				continue
			}
			handleGet(ctx, client, parts[1])

		case "set":
			if len(parts) < 3 || len(parts) > 4 {
				fmt.Println("Usage: set <key> <value> [ex_seconds]")
				continue
			}
			handleSet(ctx, client, parts)

		case "setex":
			if len(parts) != 4 {
				fmt.Println("Usage: setex <key> <seconds> <value>")
				continue
			}
			handleSetEx(ctx, client, parts)

		case "incr":
			if len(parts) != 2 {
				fmt.Println("Usage: incr <key>")
				continue
			}
			printInt(client.Incr(ctx, parts[1]))

		case "incrby":
			if len(parts) != 3 {
				fmt.Println("Usage: incrby <key> <n>")
				continue
			}
			n, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				fmt.Printf("Invalid increment: %v\n", err)
				continue
			}
			printInt(client.IncrBy(ctx, parts[1], n))

		case "mget":
			if len(parts) < 2 {
				fmt.Println("Usage: mget <key1> <key2> ...")
				continue
			}
			handleMGet(ctx, client, parts[1:])

		case "append":
			if len(parts) != 3 {
				fmt.Println("Usage: append <key> <value>")
				continue
			}
			printInt(client.Append(ctx, parts[1], parts[2]))

		case "strlen":
			if len(parts) != 2 {
				fmt.Println("Usage: strlen <key>")
				continue
			}
			printInt(client.StrLen(ctx, parts[1]))

		case "stats":
			handleStats(client)

		case "ping":
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("Ping failed: %v\n", err)
			} else {
				fmt.Println("PONG")
			}

		case "quit", "exit":
			return

		default:
			fmt.Printf("Unknown command: %s\n", command)
		}
	}
}

func handleGet(ctx context.Context, client *redis.Client, key string) {
	value, err := client.Get(ctx, key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !value.Found {
		fmt.Println("(nil)")
		return
	}
	fmt.Printf("%q\n", value.Data)
}

func handleSet(ctx context.Context, client *redis.Client, parts []string) {
	var options *redis.SetOptions
	if len(parts) == 4 {
		seconds, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			fmt.Printf("Invalid ex_seconds: %v\n", err)
			return
		}
		options = &redis.SetOptions{ExpireSeconds: seconds}
	}

	ok, err := client.Set(ctx, parts[1], parts[2], options)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !ok {
		fmt.Println("(not set)")
		return
	}
	fmt.Println("OK")
}

func handleSetEx(ctx context.Context, client *redis.Client, parts []string) {
	seconds, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		fmt.Printf("Invalid seconds: %v\n", err)
		return
	}
	if err := client.SetEx(ctx, parts[1], seconds, parts[3]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func handleMGet(ctx context.Context, client *redis.Client, keys []string) {
	values, err := client.MGet(ctx, keys...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, key := range keys {
		value := values[key]
		if !value.Found {
			fmt.Printf("%s: (nil)\n", key)
			continue
		}
		fmt.Printf("%s: %q\n", key, value.Data)
	}
}

func handleStats(client *redis.Client) {
	stats := client.Stats()
	fmt.Printf("reads=%d hits=%d writes=%d increments=%d transactions=%d errors=%d\n",
		stats.Reads, stats.ReadHits, stats.Writes, stats.Increments, stats.Transactions, stats.Errors)

	for _, ps := range client.AllPoolStats() {
		fmt.Printf("%s: total=%d idle=%d active=%d acquires=%d\n",
			ps.Addr, ps.PoolStats.TotalConns, ps.PoolStats.IdleConns, ps.PoolStats.ActiveConns, ps.PoolStats.AcquireCount)
	}
}

func printInt(n int64, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(n)
}
