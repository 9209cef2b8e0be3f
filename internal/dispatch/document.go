package dispatch

import (
	"context"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/database"
	"github.com/peternagy/dbquerytool/internal/document"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/types"
)

func (d *Dispatcher) planDocument(sess *session.Session, req types.QueryRequest) (*plan, error) {
	store, ok := sess.Document()
	if !ok {
		return nil, &core.ValidationError{Kind: types.KindMongo, Field: "session", Reason: "session has no document store handle"}
	}
	if err := database.ValidateDatabaseAndCollection(req.Database, req.Collection); err != nil {
		return nil, err
	}
	op, err := types.ParseOperation(string(req.Operation))
	if err != nil {
		return nil, &core.ValidationError{Kind: types.KindMongo, Field: "operation", Reason: err.Error()}
	}
	if req.Skip < 0 || req.Limit < 0 {
		return nil, &core.ValidationError{Kind: types.KindMongo, Field: "paging", Reason: "limit and skip must not be negative"}
	}

	p := &plan{
		op:     string(op),
		target: req.Target(),
		entry: types.HistoryEntry{
			Query:      req.Body,
			Database:   req.Database,
			Collection: req.Collection,
			Operation:  op,
		},
	}
	db, coll := req.Database, req.Collection

	switch op {
	case types.OpFind:
		filter, err := document.ParseFilter(req.Body)
		if err != nil {
			return nil, invalidBody(err)
		}
		limit := req.Limit
		if limit == 0 {
			limit = d.pageSize()
		}
		p.exec = func(ctx context.Context) ([]types.Object, error) {
			return store.Find(ctx, db, coll, filter, req.Skip, limit)
		}

	case types.OpAggregate:
		pipeline, err := document.ParsePipeline(req.Body)
		if err != nil {
			return nil, invalidBody(err)
		}
		p.exec = func(ctx context.Context) ([]types.Object, error) {
			return store.Aggregate(ctx, db, coll, pipeline)
		}

	case types.OpCount:
		filter, err := document.ParseFilter(req.Body)
		if err != nil {
			return nil, invalidBody(err)
		}
		p.exec = func(ctx context.Context) ([]types.Object, error) {
			n, err := store.Count(ctx, db, coll, filter)
			if err != nil {
				return nil, err
			}
			return []types.Object{types.Obj("count", n)}, nil
		}
	}
	return p, nil
}

func invalidBody(err error) error {
	return &core.ValidationError{Kind: types.KindMongo, Field: "body", Reason: "not a valid Extended JSON request", Err: err}
}
