package redisdriver

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_StringsAndExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	require.NoError(t, c.Set(ctx, "greeting", "hello", 0))
	v, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, v.Equal(types.String("hello")))

	missing, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.True(t, missing.IsNull())

	ttl, err := c.TTL(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), ttl)

	require.NoError(t, c.Set(ctx, "temp", "x", 90*time.Second))
	ttl, err = c.TTL(ctx, "temp")
	require.NoError(t, err)
	assert.Equal(t, int64(90), ttl)

	ttl, err = c.TTL(ctx, "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), ttl)

	require.NoError(t, c.Expire(ctx, "greeting", time.Minute))
	mr.FastForward(2 * time.Minute)
	gone, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, gone.IsNull())
}

func TestClient_Collections(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	mr.HSet("user:1", "name", "Alice", "age", "30")
	_, _ = mr.Push("queue", "a", "b", "c")
	_, _ = mr.SAdd("tags", "x", "y")
	_, _ = mr.ZAdd("scores", 1.5, "bob")
	_, _ = mr.ZAdd("scores", 0.5, "amy")

	h, err := c.HGetAll(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "Alice", "age": "30"}, h)

	name, err := c.HGet(ctx, "user:1", "name")
	require.NoError(t, err)
	assert.True(t, name.Equal(types.String("Alice")))
	absent, err := c.HGet(ctx, "user:1", "email")
	require.NoError(t, err)
	assert.True(t, absent.IsNull())

	list, err := c.LRange(ctx, "queue", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, list)

	members, err := c.SMembers(ctx, "tags")
	require.NoError(t, err)
	sort.Strings(members)
	assert.Equal(t, []string{"x", "y"}, members)

	zs, err := c.ZRangeWithScores(ctx, "scores", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []driver.ScoredMember{{Member: "amy", Score: 0.5}, {Member: "bob", Score: 1.5}}, zs)

	for key, want := range map[string]string{
		"user:1": driver.TypeHash, "queue": driver.TypeList, "tags": driver.TypeSet,
		"scores": driver.TypeZSet, "nope": driver.TypeNone,
	} {
		got, err := c.Type(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}
}

func TestClient_KeysScansEverything(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	for i := 0; i < 1200; i++ {
		require.NoError(t, mr.Set("k:"+strconv.Itoa(i), "v"))
	}
	require.NoError(t, mr.Set("other", "v"))

	all, err := c.Keys(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1201)

	prefixed, err := c.Keys(ctx, "k:*", 0)
	require.NoError(t, err)
	assert.Len(t, prefixed, 1200)

	limited, err := c.Keys(ctx, "*", 10)
	require.NoError(t, err)
	assert.Len(t, limited, 10)

	size, err := c.DBSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1201), size)

	n, err := c.Del(ctx, "other", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Do(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	_, _ = mr.Push("queue", "a", "b")

	echo, err := c.Do(ctx, "ECHO", "hi")
	require.NoError(t, err)
	assert.True(t, echo.Equal(types.String("hi")))

	list, err := c.Do(ctx, "LRANGE", "queue", "0", "-1")
	require.NoError(t, err)
	assert.True(t, list.Equal(types.Array(types.String("a"), types.String("b"))))

	n, err := c.Do(ctx, "LLEN", "queue")
	require.NoError(t, err)
	assert.True(t, n.Equal(types.Int(2)))

	missing, err := c.Do(ctx, "GET", "nope")
	require.NoError(t, err)
	assert.True(t, missing.IsNull())

	_, err = c.Do(ctx, "NOSUCHCOMMAND")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts := Options(types.ConnectionProfile{Host: "cache", Port: 6380, Password: "pw", DB: 3}, core.Timeouts{})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, core.DefaultConnectTimeout, opts.DialTimeout)
	assert.Equal(t, core.DefaultQueryTimeout, opts.ReadTimeout)

	assert.Equal(t, "localhost:6379", Options(types.ConnectionProfile{}, core.Timeouts{}).Addr)
}
