// Package drivertest provides in-memory driver fakes for tests.
package drivertest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peternagy/dbquerytool/internal/bsonutil"
	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected driver failure")

// DocumentStore is an in-memory driver.DocumentStore. Filters match on
// top-level field equality; aggregation supports $match, $skip and $limit.
type DocumentStore struct {
	mu      sync.Mutex
	data    map[string]map[string][]types.Object
	indexes map[string][]types.IndexInfo

	// Fail makes every call return ErrInjected.
	Fail bool

	calls    []string
	pipeline bson.A
	closed   bool
}

var _ driver.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		data:    map[string]map[string][]types.Object{},
		indexes: map[string][]types.IndexInfo{},
	}
}

// Seed appends documents to db.coll.
func (s *DocumentStore) Seed(db, coll string, docs ...types.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[db] == nil {
		s.data[db] = map[string][]types.Object{}
	}
	s.data[db][coll] = append(s.data[db][coll], docs...)
}

// SetIndexes sets the index list reported for db.coll.
func (s *DocumentStore) SetIndexes(db, coll string, idx ...types.IndexInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[db+"."+coll] = idx
}

// Calls returns the names of the driver methods invoked so far.
func (s *DocumentStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// LastPipeline returns the pipeline passed to the latest Aggregate call.
func (s *DocumentStore) LastPipeline() bson.A {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline
}

// Closed reports whether Close was called.
func (s *DocumentStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *DocumentStore) enter(name string) error {
	s.calls = append(s.calls, name)
	if s.Fail {
		return ErrInjected
	}
	return nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter("Ping")
}

func (s *DocumentStore) ListDatabases(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDatabases"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *DocumentStore) ListCollections(ctx context.Context, db string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCollections"); err != nil {
		return nil, err
	}
	names := []string{}
	for name := range s.data[db] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *DocumentStore) Find(ctx context.Context, db, coll string, filter bson.D, skip, limit int64) ([]types.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Find"); err != nil {
		return nil, err
	}
	return page(match(s.data[db][coll], filter), skip, limit), nil
}

func (s *DocumentStore) Aggregate(ctx context.Context, db, coll string, pipeline bson.A) ([]types.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Aggregate"); err != nil {
		return nil, err
	}
	s.pipeline = pipeline
	docs := append([]types.Object{}, s.data[db][coll]...)
	for _, stage := range pipeline {
		d, ok := stage.(bson.D)
		if !ok || len(d) != 1 {
			continue
		}
		switch d[0].Key {
		case "$match":
			if f, ok := d[0].Value.(bson.D); ok {
				docs = match(docs, f)
			}
		case "$skip":
			docs = page(docs, bsonutil.Int64(d[0].Value), 0)
		case "$limit":
			docs = page(docs, 0, bsonutil.Int64(d[0].Value))
		}
	}
	return docs, nil
}

func (s *DocumentStore) Count(ctx context.Context, db, coll string, filter bson.D) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Count"); err != nil {
		return 0, err
	}
	return int64(len(match(s.data[db][coll], filter))), nil
}

func (s *DocumentStore) InsertMany(ctx context.Context, db, coll string, docs []types.Object) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertMany"); err != nil {
		return 0, err
	}
	if s.data[db] == nil {
		s.data[db] = map[string][]types.Object{}
	}
	s.data[db][coll] = append(s.data[db][coll], docs...)
	return len(docs), nil
}

func (s *DocumentStore) CollectionStats(ctx context.Context, db, coll string) (*types.CollectionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CollectionStats"); err != nil {
		return nil, err
	}
	return &types.CollectionStats{
		Namespace:  db + "." + coll,
		Count:      int64(len(s.data[db][coll])),
		IndexCount: len(s.indexes[db+"."+coll]),
	}, nil
}

func (s *DocumentStore) Indexes(ctx context.Context, db, coll string) ([]types.IndexInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("Indexes"); err != nil {
		return nil, err
	}
	return append([]types.IndexInfo{}, s.indexes[db+"."+coll]...), nil
}

func (s *DocumentStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func match(docs []types.Object, filter bson.D) []types.Object {
	out := []types.Object{}
	for _, doc := range docs {
		ok := true
		for _, e := range filter {
			got, present := doc.Get(e.Key)
			if !present || !got.Equal(bsonutil.ToValue(e.Value)) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, doc)
		}
	}
	return out
}

func page(docs []types.Object, skip, limit int64) []types.Object {
	if skip > int64(len(docs)) {
		return []types.Object{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

// Dialer hands out preconfigured handles and records the profiles it was asked to dial.
type Dialer struct {
	mu sync.Mutex

	Document func() (driver.DocumentStore, error)
	KeyValue func() (driver.KeyValueStore, error)

	dialed []types.ConnectionProfile
}

// Dialed returns the profiles dialed so far.
func (d *Dialer) Dialed() []types.ConnectionProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.ConnectionProfile(nil), d.dialed...)
}

func (d *Dialer) record(p types.ConnectionProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialed = append(d.dialed, p)
}

// DialDocument implements session.Dialer.
func (d *Dialer) DialDocument(ctx context.Context, p types.ConnectionProfile, _ core.Timeouts) (driver.DocumentStore, error) {
	d.record(p)
	if d.Document == nil {
		return nil, ErrInjected
	}
	return d.Document()
}

// DialKeyValue implements session.Dialer.
func (d *Dialer) DialKeyValue(ctx context.Context, p types.ConnectionProfile, _ core.Timeouts) (driver.KeyValueStore, error) {
	d.record(p)
	if d.KeyValue == nil {
		return nil, ErrInjected
	}
	return d.KeyValue()
}
