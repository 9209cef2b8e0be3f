// Package driver declares the narrow capabilities the workbench needs from
// each store. Adapters live in the mongodriver and redisdriver packages.
package driver

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peternagy/dbquerytool/internal/types"
)

// DocumentStore is an open connection to a document store.
// Filters and pipelines arrive already parsed from Extended JSON.
type DocumentStore interface {
	Ping(ctx context.Context) error
	ListDatabases(ctx context.Context) ([]string, error)
	ListCollections(ctx context.Context, db string) ([]string, error)

	Find(ctx context.Context, db, coll string, filter bson.D, skip, limit int64) ([]types.Object, error)
	Aggregate(ctx context.Context, db, coll string, pipeline bson.A) ([]types.Object, error)
	Count(ctx context.Context, db, coll string, filter bson.D) (int64, error)
	InsertMany(ctx context.Context, db, coll string, docs []types.Object) (int, error)

	CollectionStats(ctx context.Context, db, coll string) (*types.CollectionStats, error)
	Indexes(ctx context.Context, db, coll string) ([]types.IndexInfo, error)

	Close(ctx context.Context) error
}

// ScoredMember is one entry of a sorted set.
type ScoredMember struct {
	Member string
	Score  float64
}

// Key types reported by KeyValueStore.Type.
const (
	TypeNone   = "none"
	TypeString = "string"
	TypeHash   = "hash"
	TypeList   = "list"
	TypeSet    = "set"
	TypeZSet   = "zset"
)

// KeyValueStore is an open connection to a key-value store.
// Missing keys read as Null rather than an error.
type KeyValueStore interface {
	Ping(ctx context.Context) error

	Get(ctx context.Context, key string) (types.Value, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Type(ctx context.Context, key string) (string, error)
	// TTL returns the remaining lifetime in seconds, -1 for persistent keys
	// and -2 for missing keys.
	TTL(ctx context.Context, key string) (int64, error)

	// Keys lists keys matching pattern. limit <= 0 returns every match.
	Keys(ctx context.Context, pattern string, limit int) ([]string, error)

	HGet(ctx context.Context, key, field string) (types.Value, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)

	Info(ctx context.Context, section string) (types.Object, error)
	DBSize(ctx context.Context) (int64, error)

	// Do sends a raw command and returns the normalized reply.
	Do(ctx context.Context, args ...interface{}) (types.Value, error)

	Close() error
}
