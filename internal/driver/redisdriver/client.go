// Package redisdriver adapts go-redis to driver.KeyValueStore.
package redisdriver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 500

// Client is a connected Redis handle.
type Client struct {
	rdb *redis.Client
}

var _ driver.KeyValueStore = (*Client)(nil)

// Options builds go-redis options for a profile.
func Options(p types.ConnectionProfile, timeouts core.Timeouts) *redis.Options {
	timeouts = timeouts.WithDefaults()
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	port := p.Port
	if port == 0 {
		port = 6379
	}
	return &redis.Options{
		Addr:         host + ":" + strconv.Itoa(port),
		Password:     p.Password,
		DB:           p.DB,
		Protocol:     2,
		DialTimeout:  timeouts.Connect,
		ReadTimeout:  timeouts.Query,
		WriteTimeout: timeouts.Query,
	}
}

// Dial connects to the profile's server and verifies it with a ping.
func Dial(ctx context.Context, p types.ConnectionProfile, timeouts core.Timeouts) (*Client, error) {
	ctx, cancel := timeouts.ConnectContext(ctx)
	defer cancel()

	rdb := redis.NewClient(Options(p, timeouts))
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	debug.LogConnection("redis connected", map[string]interface{}{"address": p.Address(), "db": p.DB})
	return &Client{rdb: rdb}, nil
}

// Wrap adapts an existing go-redis client.
func Wrap(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping checks the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// nullable maps a missing-key reply to Null.
func nullable(s string, err error) (types.Value, error) {
	if errors.Is(err, redis.Nil) {
		return types.Null(), nil
	}
	if err != nil {
		return types.Null(), err
	}
	return types.String(s), nil
}

// Get returns the string value of key, or Null when it does not exist.
func (c *Client) Get(ctx context.Context, key string) (types.Value, error) {
	return nullable(c.rdb.Get(ctx, key).Result())
}

// Set stores value under key. A positive ttl sets an expiry.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del removes keys and returns how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	return c.rdb.Del(ctx, keys...).Result()
}

// Expire sets a key's time to live.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

// Type returns the type name of key ("none" when missing).
func (c *Client) Type(ctx context.Context, key string) (string, error) {
	return c.rdb.Type(ctx, key).Result()
}

// TTL returns the remaining lifetime of key in seconds.
func (c *Client) TTL(ctx context.Context, key string) (int64, error) {
	d, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// go-redis reports the -1/-2 sentinels as raw nanosecond counts.
	if d < 0 {
		return int64(d), nil
	}
	return int64(d / time.Second), nil
}

// Keys iterates SCAN until the cursor is exhausted or limit keys were seen.
func (c *Client) Keys(ctx context.Context, pattern string, limit int) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	keys := []string{}
	iter := c.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if limit > 0 && len(keys) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// HGet returns one hash field, or Null when absent.
func (c *Client) HGet(ctx context.Context, key, field string) (types.Value, error) {
	return nullable(c.rdb.HGet(ctx, key, field).Result())
}

// HGetAll returns every field of a hash.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

// LRange returns list elements between start and stop inclusive.
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.LRange(ctx, key, start, stop).Result()
}

// SMembers returns the members of a set.
func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.rdb.SMembers(ctx, key).Result()
}

// ZRangeWithScores returns sorted-set members with their scores.
func (c *Client) ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]driver.ScoredMember, error) {
	zs, err := c.rdb.ZRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]driver.ScoredMember, 0, len(zs))
	for _, z := range zs {
		out = append(out, driver.ScoredMember{Member: fmt.Sprint(z.Member), Score: z.Score})
	}
	return out, nil
}

// Info returns the server INFO report parsed into fields.
func (c *Client) Info(ctx context.Context, section string) (types.Object, error) {
	var (
		text string
		err  error
	)
	if section == "" {
		text, err = c.rdb.Info(ctx).Result()
	} else {
		text, err = c.rdb.Info(ctx, section).Result()
	}
	if err != nil {
		return nil, err
	}
	return ParseInfo(text), nil
}

// DBSize returns the number of keys in the selected database.
func (c *Client) DBSize(ctx context.Context) (int64, error) {
	return c.rdb.DBSize(ctx).Result()
}

// Do sends a raw command.
func (c *Client) Do(ctx context.Context, args ...interface{}) (types.Value, error) {
	reply, err := c.rdb.Do(ctx, args...).Result()
	if errors.Is(err, redis.Nil) {
		return types.Null(), nil
	}
	if err != nil {
		return types.Null(), err
	}
	return ReplyValue(reply), nil
}
