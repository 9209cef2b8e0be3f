package mongodriver

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peternagy/dbquerytool/internal/bsonutil"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Find runs a filtered query. A limit of 0 means no limit.
func (c *Client) Find(ctx context.Context, db, coll string, filter bson.D, skip, limit int64) ([]types.Object, error) {
	findOpts := options.Find()
	if skip > 0 {
		findOpts.SetSkip(skip)
	}
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cursor, err := c.client.Database(db).Collection(coll).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// Aggregate runs an aggregation pipeline.
func (c *Client) Aggregate(ctx context.Context, db, coll string, pipeline bson.A) ([]types.Object, error) {
	cursor, err := c.client.Database(db).Collection(coll).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to run aggregation: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// Count returns the number of documents matching filter.
func (c *Client) Count(ctx context.Context, db, coll string, filter bson.D) (int64, error) {
	n, err := c.client.Database(db).Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// InsertMany inserts docs and returns how many were written.
func (c *Client) InsertMany(ctx context.Context, db, coll string, docs []types.Object) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = bsonutil.ObjectToDoc(d)
	}
	res, err := c.client.Database(db).Collection(coll).InsertMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to insert documents: %w", err)
	}
	return len(res.InsertedIDs), nil
}
