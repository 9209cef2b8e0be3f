// Package document parses request bodies written in MongoDB Extended JSON.
package document

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// parseValue decodes any Extended JSON value. The body is wrapped in a
// document so top-level arrays decode as well.
func parseValue(body string) (interface{}, error) {
	wrapped := `{"v": ` + body + "\n}"
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(wrapped), false, &doc); err != nil {
		return nil, err
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("expected a single JSON value")
	}
	return doc[0].Value, nil
}

// ParseFilter parses a query filter. An empty body matches every document.
func ParseFilter(body string) (bson.D, error) {
	body = strings.TrimSpace(body)
	if body == "" || body == "{}" {
		return bson.D{}, nil
	}
	v, err := parseValue(body)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	doc, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("invalid query: filter must be a JSON object")
	}
	return doc, nil
}

// ParsePipeline parses an aggregation body. A single object is treated as
// a one-stage pipeline; an array is used as the pipeline itself.
func ParsePipeline(body string) (bson.A, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("invalid pipeline: body cannot be empty")
	}
	v, err := parseValue(body)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}
	switch p := v.(type) {
	case bson.D:
		return bson.A{p}, nil
	case bson.A:
		for i, stage := range p {
			if _, ok := stage.(bson.D); !ok {
				return nil, fmt.Errorf("invalid pipeline: stage %d must be a JSON object", i)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("invalid pipeline: expected a JSON object or array")
	}
}

// ValidateJSON validates JSON/Extended JSON syntax.
func ValidateJSON(jsonStr string) error {
	if _, err := parseValue(jsonStr); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
