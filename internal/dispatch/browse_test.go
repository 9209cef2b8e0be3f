package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

func TestInspectKey_ByType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mr.Set("str", "value")
	f.mr.SetTTL("str", 30*time.Second)
	f.mr.HSet("hash", "f", "v")
	_, _ = f.mr.Push("list", "a", "b")
	_, _ = f.mr.SAdd("set", "y", "x")
	_, _ = f.mr.ZAdd("zset", 3, "m")

	tests := []struct {
		key      string
		wantType string
		want     string
	}{
		{"str", driver.TypeString, `"value"`},
		{"hash", driver.TypeHash, `{"f":"v"}`},
		{"list", driver.TypeList, `["a","b"]`},
		{"set", driver.TypeSet, `["x","y"]`},
		{"zset", driver.TypeZSet, `[["m",3]]`},
		{"missing", driver.TypeNone, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := f.disp.InspectKey(ctx, f.redis, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			data, err := got.Value.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}

	str, err := f.disp.InspectKey(ctx, f.redis, "str")
	require.NoError(t, err)
	assert.Equal(t, int64(30), str.TTL)

	missing, err := f.disp.InspectKey(ctx, f.redis, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), missing.TTL)

	assert.Empty(t, f.historyOf(t, types.KindRedis), "browsing is not recorded")
}

func TestWriteAndDeleteKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.disp.WriteValue(ctx, f.redis, "plain", "v1", 0))
	require.NoError(t, f.disp.WriteValue(ctx, f.redis, "expiring", "v2", time.Hour))

	got, err := f.mr.Get("plain")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
	assert.Equal(t, time.Duration(0), f.mr.TTL("plain"))
	assert.Equal(t, time.Hour, f.mr.TTL("expiring"))

	keys, err := f.disp.ListKeys(ctx, f.redis, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"expiring", "plain"}, keys)

	existed, err := f.disp.DeleteKey(ctx, f.redis, "plain")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = f.disp.DeleteKey(ctx, f.redis, "plain")
	require.NoError(t, err)
	assert.False(t, existed)

	var ve *core.ValidationError
	assert.ErrorAs(t, f.disp.WriteValue(ctx, f.redis, "", "v", 0), &ve)
	assert.Empty(t, f.historyOf(t, types.KindRedis))
}

func TestBrowse_WrongSessionKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *core.ValidationError

	_, err := f.disp.InspectKey(ctx, f.mongo, "k")
	assert.ErrorAs(t, err, &ve)
	_, err = f.disp.ListDatabases(ctx, f.redis)
	assert.ErrorAs(t, err, &ve)
	_, err = f.disp.ListDatabases(ctx, nil)
	assert.ErrorAs(t, err, &ve)
}

func TestDocumentBrowsing(t *testing.T) {
	f := newFixture(t)
	seedPeople(f)
	f.docs.SetIndexes("app", "people", types.IndexInfo{Name: "_id_", Keys: types.Obj("_id", 1)})
	ctx := context.Background()

	dbs, err := f.disp.ListDatabases(ctx, f.mongo)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, dbs)

	colls, err := f.disp.ListCollections(ctx, f.mongo, "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, colls)

	stats, err := f.disp.CollectionStats(ctx, f.mongo, "app", "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, 1, stats.IndexCount)

	indexes, err := f.disp.Indexes(ctx, f.mongo, "app", "people")
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, "_id_", indexes[0].Name)

	report, err := f.disp.InferSchema(ctx, f.mongo, "app", "people", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.DocumentCount)
	assert.Equal(t, "int", report.Fields["age"].Type)

	_, err = f.disp.CollectionStats(ctx, f.mongo, "app", "$bad")
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)

	assert.Empty(t, f.historyOf(t, types.KindMongo))
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	records := []types.Object{types.Obj("name", "Dan"), types.Obj("name", "Eve")}
	result, err := f.disp.Import(ctx, f.mongo, "app", "people", records)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)

	res, err := f.disp.Execute(ctx, f.mongo, types.QueryRequest{Kind: types.KindMongo, Database: "app", Collection: "people", Operation: types.OpCount})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"count":2}]`, recordJSON(t, res))

	calls := len(f.docs.Calls())
	result, err = f.disp.Import(ctx, f.mongo, "app", "people", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Len(t, f.docs.Calls(), calls, "an empty import does not reach the driver")

	f.docs.Fail = true
	_, err = f.disp.Import(ctx, f.mongo, "app", "people", records)
	var de *core.DriverExecutionError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, "insertMany", de.Op)
}
