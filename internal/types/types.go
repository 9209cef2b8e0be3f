// Package types contains shared type definitions used across the dbquerytool application.
package types

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// Store Kinds
// =============================================================================

// StoreKind tags which of the two stores an entity belongs to.
type StoreKind string

const (
	KindMongo StoreKind = "mongo"
	KindRedis StoreKind = "redis"
)

// Kinds lists the supported store kinds in persistence order.
var Kinds = []StoreKind{KindMongo, KindRedis}

// Valid reports whether k is a supported store kind.
func (k StoreKind) Valid() bool {
	return k == KindMongo || k == KindRedis
}

// ParseStoreKind converts a user supplied tag into a StoreKind.
func ParseStoreKind(s string) (StoreKind, error) {
	k := StoreKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown store kind %q (expected mongo or redis)", s)
	}
	return k, nil
}

// =============================================================================
// Session Entities
// =============================================================================

// ConnectionProfile is a named, reusable connection descriptor.
// Username and Database only apply to mongo profiles, DB only to redis profiles.
type ConnectionProfile struct {
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Username  string    `json:"username,omitempty"`
	Password  string    `json:"password,omitempty"`
	Database  string    `json:"database,omitempty"`
	DB        int       `json:"db,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// ItemName implements Named.
func (p ConnectionProfile) ItemName() string { return p.Name }

// Address returns host:port.
func (p ConnectionProfile) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// HistoryEntry records a previously executed request.
type HistoryEntry struct {
	Query         string    `json:"query"`
	Database      string    `json:"database"`
	Collection    string    `json:"collection"`
	ExecutionTime float64   `json:"execution_time"` // seconds
	Timestamp     Timestamp `json:"timestamp"`
	Operation     Operation `json:"operation,omitempty"`
}

// FavoriteEntry is a user-named saved request.
type FavoriteEntry struct {
	Name       string    `json:"name"`
	Query      string    `json:"query"`
	Database   string    `json:"database"`
	Collection string    `json:"collection"`
	CreatedAt  Timestamp `json:"created_at"`
	Operation  Operation `json:"operation,omitempty"`
}

// ItemName implements Named.
func (f FavoriteEntry) ItemName() string { return f.Name }

// =============================================================================
// Query Types
// =============================================================================

// Operation selects the document-store behaviour of a request.
type Operation string

const (
	OpFind      Operation = "find"
	OpAggregate Operation = "aggregate"
	OpCount     Operation = "count"
)

// ParseOperation validates a document-store operation name.
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case OpFind, OpAggregate, OpCount:
		return op, nil
	case "":
		return OpFind, nil
	default:
		return "", fmt.Errorf("unknown operation %q (expected find, aggregate or count)", s)
	}
}

// ReplayOperation picks the operation for a saved document-store request.
// Entries saved without one run as aggregate when the body is a JSON array
// and as find otherwise.
func ReplayOperation(op Operation, body string) Operation {
	if op != "" {
		return op
	}
	if strings.HasPrefix(strings.TrimSpace(body), "[") {
		return OpAggregate
	}
	return OpFind
}

// QueryRequest is a single request against one store.
type QueryRequest struct {
	Kind StoreKind `json:"kind"`

	// Document store target
	Database   string    `json:"database,omitempty"`
	Collection string    `json:"collection,omitempty"`
	Operation  Operation `json:"operation,omitempty"`

	// Key-value store target
	Key     string        `json:"key,omitempty"`
	Command KVCommand     `json:"command,omitempty"`
	TTL     time.Duration `json:"ttl,omitempty"` // expiry for SET, zero keeps the key persistent

	Body  string `json:"body"`
	Limit int64  `json:"limit,omitempty"`
	Skip  int64  `json:"skip,omitempty"`
}

// Target describes the request locator for error messages and logs.
func (r QueryRequest) Target() string {
	if r.Kind == KindRedis {
		return r.Key
	}
	if r.Collection == "" {
		return r.Database
	}
	return r.Database + "." + r.Collection
}

// QueryResult is the normalized outcome of one request.
type QueryResult struct {
	Records []Object      `json:"records"`
	Count   int           `json:"count"`
	Elapsed time.Duration `json:"elapsed"`
}

// NewQueryResult builds a result and fills in Count.
func NewQueryResult(records []Object, elapsed time.Duration) *QueryResult {
	if records == nil {
		records = []Object{}
	}
	return &QueryResult{Records: records, Count: len(records), Elapsed: elapsed}
}

// Text serializes the records as indented JSON.
func (r *QueryResult) Text() (string, error) {
	return RecordsText(r.Records)
}

// =============================================================================
// Database and Collection Types
// =============================================================================

// IndexInfo describes a MongoDB index.
type IndexInfo struct {
	Name   string `json:"name"`
	Keys   Object `json:"keys"`
	Unique bool   `json:"unique"`
	Sparse bool   `json:"sparse"`
	TTL    int64  `json:"ttl,omitempty"`
}

// CollectionStats contains statistics about a MongoDB collection.
type CollectionStats struct {
	Namespace      string `json:"namespace"`
	Count          int64  `json:"count"`
	Size           int64  `json:"size"`
	StorageSize    int64  `json:"storageSize"`
	AvgObjSize     int64  `json:"avgObjSize"`
	IndexCount     int    `json:"indexCount"`
	TotalIndexSize int64  `json:"totalIndexSize"`
	Capped         bool   `json:"capped"`
}

// =============================================================================
// Schema Types
// =============================================================================

// SchemaField represents a field in the inferred schema.
type SchemaField struct {
	Type       string                 `json:"type"`
	Occurrence float64                `json:"occurrence"`          // Percentage of sampled documents containing this field
	Fields     map[string]SchemaField `json:"fields,omitempty"`    // For nested objects
	ArrayType  *SchemaField           `json:"arrayType,omitempty"` // For arrays of objects
}

// SchemaResult represents the inferred schema of a collection.
type SchemaResult struct {
	Database       string                 `json:"database"`
	Collection     string                 `json:"collection"`
	DocumentCount  int64                  `json:"document_count"`
	SampleSize     int                    `json:"sample_size"`
	Fields         map[string]SchemaField `json:"fields"`
	SampleDocument Object                 `json:"sample_document,omitempty"`
}

// ImportResult reports the outcome of a record import.
type ImportResult struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
	Inserted   int    `json:"inserted"`
}
