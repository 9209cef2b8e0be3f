package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/database"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/schema"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/types"
)

// The operations below browse or edit a store outside the query flow.
// They share the session lock and timeouts with Execute but are never
// recorded in history.

// KeyInspection is the type-driven view of a single key.
type KeyInspection struct {
	Key   string      `json:"key"`
	Type  string      `json:"type"`
	TTL   int64       `json:"ttl"`
	Value types.Value `json:"value"`
}

func documentStore(sess *session.Session) (driver.DocumentStore, error) {
	if sess == nil || sess.Kind != types.KindMongo {
		return nil, &core.ValidationError{Kind: types.KindMongo, Field: "session", Reason: "not a mongo session"}
	}
	store, ok := sess.Document()
	if !ok {
		return nil, &core.ValidationError{Kind: types.KindMongo, Field: "session", Reason: "session has no document store handle"}
	}
	return store, nil
}

func keyValueStore(sess *session.Session) (driver.KeyValueStore, error) {
	if sess == nil || sess.Kind != types.KindRedis {
		return nil, invalidKV("session", "not a redis session")
	}
	kv, ok := sess.KeyValue()
	if !ok {
		return nil, invalidKV("session", "session has no key-value handle")
	}
	return kv, nil
}

// browse runs fn under the session lock and wraps driver errors.
func (d *Dispatcher) browse(ctx context.Context, sess *session.Session, op, target string, fn func(ctx context.Context) error) error {
	if _, err := d.run(ctx, sess, sess.Kind, op, fn); err != nil {
		return &core.DriverExecutionError{Kind: sess.Kind, Target: target, Op: op, Err: err}
	}
	return nil
}

// InspectKey reads a key according to its type: string, hash, list, set or
// zset. A missing key reports type "none" and a null value.
func (d *Dispatcher) InspectKey(ctx context.Context, sess *session.Session, key string) (*KeyInspection, error) {
	kv, err := keyValueStore(sess)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, invalidKV("key", "a key is required")
	}

	out := &KeyInspection{Key: key, Value: types.Null()}
	err = d.browse(ctx, sess, "INSPECT", key, func(ctx context.Context) error {
		typ, err := kv.Type(ctx, key)
		if err != nil {
			return err
		}
		out.Type = typ
		if out.TTL, err = kv.TTL(ctx, key); err != nil {
			return err
		}

		switch typ {
		case driver.TypeString:
			out.Value, err = kv.Get(ctx, key)
		case driver.TypeHash:
			var fields map[string]string
			fields, err = kv.HGetAll(ctx, key)
			out.Value = types.FromInterface(fields)
		case driver.TypeList:
			var items []string
			items, err = kv.LRange(ctx, key, 0, -1)
			out.Value = stringsValue(items)
		case driver.TypeSet:
			var members []string
			members, err = kv.SMembers(ctx, key)
			sort.Strings(members)
			out.Value = stringsValue(members)
		case driver.TypeZSet:
			var members []driver.ScoredMember
			members, err = kv.ZRangeWithScores(ctx, key, 0, -1)
			out.Value = scoredValue(members)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteValue stores value as a string key. A positive ttl sets an expiry.
func (d *Dispatcher) WriteValue(ctx context.Context, sess *session.Session, key, value string, ttl time.Duration) error {
	kv, err := keyValueStore(sess)
	if err != nil {
		return err
	}
	if key == "" {
		return invalidKV("key", "a key is required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return d.browse(ctx, sess, "WRITE", key, func(ctx context.Context) error {
		return kv.Set(ctx, key, value, ttl)
	})
}

// DeleteKey removes key and reports whether it existed.
func (d *Dispatcher) DeleteKey(ctx context.Context, sess *session.Session, key string) (bool, error) {
	kv, err := keyValueStore(sess)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, invalidKV("key", "a key is required")
	}
	var n int64
	err = d.browse(ctx, sess, "DELETE", key, func(ctx context.Context) error {
		n, err = kv.Del(ctx, key)
		return err
	})
	return n > 0, err
}

// ListKeys returns keys matching pattern, "*" when empty, sorted.
func (d *Dispatcher) ListKeys(ctx context.Context, sess *session.Session, pattern string, limit int) ([]string, error) {
	kv, err := keyValueStore(sess)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "*"
	}
	var keys []string
	err = d.browse(ctx, sess, "SCAN", pattern, func(ctx context.Context) error {
		keys, err = kv.Keys(ctx, pattern, limit)
		return err
	})
	sort.Strings(keys)
	return keys, err
}

// ListDatabases returns the database names of a mongo session.
func (d *Dispatcher) ListDatabases(ctx context.Context, sess *session.Session) ([]string, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	var names []string
	err = d.browse(ctx, sess, "listDatabases", "", func(ctx context.Context) error {
		names, err = store.ListDatabases(ctx)
		return err
	})
	return names, err
}

// ListCollections returns the collection names of db.
func (d *Dispatcher) ListCollections(ctx context.Context, sess *session.Session, db string) ([]string, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateDatabaseName(db); err != nil {
		return nil, err
	}
	var names []string
	err = d.browse(ctx, sess, "listCollections", db, func(ctx context.Context) error {
		names, err = store.ListCollections(ctx, db)
		return err
	})
	return names, err
}

// CollectionStats returns storage statistics for a collection.
func (d *Dispatcher) CollectionStats(ctx context.Context, sess *session.Session, db, coll string) (*types.CollectionStats, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateDatabaseAndCollection(db, coll); err != nil {
		return nil, err
	}
	var stats *types.CollectionStats
	err = d.browse(ctx, sess, "collStats", db+"."+coll, func(ctx context.Context) error {
		stats, err = store.CollectionStats(ctx, db, coll)
		return err
	})
	return stats, err
}

// Indexes lists the indexes of a collection.
func (d *Dispatcher) Indexes(ctx context.Context, sess *session.Session, db, coll string) ([]types.IndexInfo, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateDatabaseAndCollection(db, coll); err != nil {
		return nil, err
	}
	var indexes []types.IndexInfo
	err = d.browse(ctx, sess, "listIndexes", db+"."+coll, func(ctx context.Context) error {
		indexes, err = store.Indexes(ctx, db, coll)
		return err
	})
	return indexes, err
}

// InferSchema samples up to sampleSize documents and reports field types.
func (d *Dispatcher) InferSchema(ctx context.Context, sess *session.Session, db, coll string, sampleSize int) (*types.SchemaResult, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateDatabaseAndCollection(db, coll); err != nil {
		return nil, err
	}
	var result *types.SchemaResult
	err = d.browse(ctx, sess, "schema", db+"."+coll, func(ctx context.Context) error {
		result, err = schema.Infer(ctx, store, db, coll, sampleSize)
		return err
	})
	return result, err
}

// Import inserts records into a collection. An empty batch is a no-op.
func (d *Dispatcher) Import(ctx context.Context, sess *session.Session, db, coll string, records []types.Object) (*types.ImportResult, error) {
	store, err := documentStore(sess)
	if err != nil {
		return nil, err
	}
	if err := database.ValidateDatabaseAndCollection(db, coll); err != nil {
		return nil, err
	}
	result := &types.ImportResult{Database: db, Collection: coll}
	if len(records) == 0 {
		return result, nil
	}
	err = d.browse(ctx, sess, "insertMany", db+"."+coll, func(ctx context.Context) error {
		result.Inserted, err = store.InsertMany(ctx, db, coll, records)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
