package mongodriver

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peternagy/dbquerytool/internal/bsonutil"
	"github.com/peternagy/dbquerytool/internal/types"
)

// CollectionStats returns statistics about a collection.
func (c *Client) CollectionStats(ctx context.Context, db, coll string) (*types.CollectionStats, error) {
	var result bson.M
	err := c.client.Database(db).RunCommand(ctx, bson.D{{Key: "collStats", Value: coll}}).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection stats: %w", err)
	}

	r := bsonutil.Reply(result)
	return &types.CollectionStats{
		Namespace:      fmt.Sprintf("%s.%s", db, coll),
		Count:          r.Int64("count"),
		Size:           r.Int64("size"),
		StorageSize:    r.Int64("storageSize"),
		AvgObjSize:     r.Int64("avgObjSize"),
		IndexCount:     int(r.Int64("nindexes")),
		TotalIndexSize: r.Int64("totalIndexSize"),
		Capped:         r.Bool("capped"),
	}, nil
}

// Indexes lists the indexes of a collection with their key documents.
func (c *Client) Indexes(ctx context.Context, db, coll string) ([]types.IndexInfo, error) {
	cursor, err := c.client.Database(db).Collection(coll).Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	indexes := []types.IndexInfo{}
	for cursor.Next(ctx) {
		var spec bson.D
		if err := cursor.Decode(&spec); err != nil {
			return nil, fmt.Errorf("failed to decode index: %w", err)
		}
		indexes = append(indexes, indexFromSpec(spec))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return indexes, nil
}

func indexFromSpec(spec bson.D) types.IndexInfo {
	info := types.IndexInfo{Keys: types.Object{}}
	for _, e := range spec {
		switch e.Key {
		case "name":
			info.Name = bsonutil.String(e.Value)
		case "key":
			if keys, ok := e.Value.(bson.D); ok {
				info.Keys = bsonutil.DocToObject(keys)
			}
		case "unique":
			info.Unique = bsonutil.Bool(e.Value)
		case "sparse":
			info.Sparse = bsonutil.Bool(e.Value)
		case "expireAfterSeconds":
			info.TTL = bsonutil.Int64(e.Value)
		}
	}
	return info
}
