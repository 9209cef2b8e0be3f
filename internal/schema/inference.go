// Package schema infers collection structure from sampled documents.
package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/types"
)

// DefaultSampleSize is the number of documents sampled when none is given.
const DefaultSampleSize = 100

// Infer samples up to sampleSize documents of db.coll and reports the
// fields seen with their value types.
func Infer(ctx context.Context, store driver.DocumentStore, db, coll string, sampleSize int) (*types.SchemaResult, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	total, err := store.Count(ctx, db, coll, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	samples, err := store.Find(ctx, db, coll, bson.D{}, 0, int64(sampleSize))
	if err != nil {
		return nil, fmt.Errorf("failed to sample documents: %w", err)
	}

	result := Analyze(samples)
	result.Database = db
	result.Collection = coll
	result.DocumentCount = total

	debug.LogSchema("schema inferred", map[string]interface{}{
		"database":   db,
		"collection": coll,
		"sampled":    len(samples),
		"fields":     len(result.Fields),
	})
	return result, nil
}

// Analyze builds a schema from already fetched documents.
func Analyze(samples []types.Object) *types.SchemaResult {
	result := &types.SchemaResult{
		SampleSize: len(samples),
		Fields:     map[string]types.SchemaField{},
	}
	if len(samples) == 0 {
		return result
	}
	result.SampleDocument = samples[0]

	counts := make(map[string]int)
	fieldTypes := make(map[string]map[string]bool)
	nested := make(map[string][]types.Object)
	for _, doc := range samples {
		analyzeDocument("", doc, counts, fieldTypes, nested)
	}
	result.Fields = buildSchemaFields(counts, fieldTypes, nested, len(samples))
	return result
}

// analyzeDocument recursively analyzes a document's structure.
func analyzeDocument(prefix string, doc types.Object, counts map[string]int, fieldTypes map[string]map[string]bool, nested map[string][]types.Object) {
	for _, f := range doc {
		fullKey := f.Name
		if prefix != "" {
			fullKey = prefix + "." + f.Name
		}

		counts[fullKey]++
		if fieldTypes[fullKey] == nil {
			fieldTypes[fullKey] = make(map[string]bool)
		}
		fieldTypes[fullKey][typeName(f.Value)] = true

		if obj, ok := f.Value.Object(); ok {
			nested[fullKey] = append(nested[fullKey], obj)
			analyzeDocument(fullKey, obj, counts, fieldTypes, nested)
		}

		// Sample first element to determine array element schema
		if items, ok := f.Value.Items(); ok && len(items) > 0 {
			if elem, ok := items[0].Object(); ok {
				arrayKey := fullKey + "[]"
				nested[arrayKey] = append(nested[arrayKey], elem)
			}
		}
	}
}

// typeName returns a readable type name for a value.
func typeName(v types.Value) string {
	switch v.Kind() {
	case types.NullValue:
		return "null"
	case types.StringValue:
		return "string"
	case types.IntValue:
		return "int"
	case types.FloatValue:
		return "double"
	case types.BoolValue:
		return "boolean"
	case types.ObjectValue:
		return "object"
	case types.ArrayValue:
		if items, _ := v.Items(); len(items) > 0 {
			return "array<" + typeName(items[0]) + ">"
		}
		return "array"
	}
	return "unknown"
}

// buildSchemaFields constructs the schema field map from analysis results.
func buildSchemaFields(counts map[string]int, fieldTypes map[string]map[string]bool, nested map[string][]types.Object, totalSamples int) map[string]types.SchemaField {
	result := make(map[string]types.SchemaField)

	for key, count := range counts {
		if strings.Contains(key, ".") {
			continue // Nested fields are handled recursively
		}

		typeList := make([]string, 0, len(fieldTypes[key]))
		for t := range fieldTypes[key] {
			typeList = append(typeList, t)
		}
		sort.Strings(typeList)

		field := types.SchemaField{
			Type:       strings.Join(typeList, " | "),
			Occurrence: float64(count) / float64(totalSamples) * 100,
		}

		if docs := nested[key]; len(docs) > 0 {
			field.Fields = subSchema(docs)
		}

		if docs := nested[key+"[]"]; len(docs) > 0 {
			if arraySchema := subSchema(docs); len(arraySchema) > 0 {
				field.ArrayType = &types.SchemaField{Type: "object", Fields: arraySchema}
			}
		}

		result[key] = field
	}

	return result
}

func subSchema(docs []types.Object) map[string]types.SchemaField {
	counts := make(map[string]int)
	fieldTypes := make(map[string]map[string]bool)
	nested := make(map[string][]types.Object)
	for _, doc := range docs {
		analyzeDocument("", doc, counts, fieldTypes, nested)
	}
	return buildSchemaFields(counts, fieldTypes, nested, len(docs))
}
