// Package database validates MongoDB database and collection names.
package database

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/types"
)

// MongoDB naming constraints:
// - Database names: max 64 bytes, no /\. "$*<>:|? or null characters
// - Collection names: max 120 bytes, no $ prefix (except system), no null characters

func invalidName(typ, name, reason string) error {
	return &core.ValidationError{
		Kind:   types.KindMongo,
		Field:  typ + " name",
		Reason: fmt.Sprintf("%q %s", name, reason),
	}
}

// ValidateDatabaseName checks if a database name is valid according to MongoDB rules.
func ValidateDatabaseName(name string) error {
	if name == "" {
		return invalidName("database", name, "name cannot be empty")
	}

	if len(name) > 64 {
		return invalidName("database", name, "name exceeds 64 bytes")
	}

	invalidChars := `/\. "$*<>:|?`
	for _, r := range name {
		if r == 0 {
			return invalidName("database", name, "name contains null character")
		}
		if strings.ContainsRune(invalidChars, r) {
			return invalidName("database", name, fmt.Sprintf("name contains invalid character %q", r))
		}
	}

	return nil
}

// ValidateCollectionName checks if a collection name is valid according to MongoDB rules.
func ValidateCollectionName(name string) error {
	if name == "" {
		return invalidName("collection", name, "name cannot be empty")
	}

	if len(name) > 120 {
		return invalidName("collection", name, "name exceeds 120 bytes")
	}

	if strings.ContainsRune(name, 0) {
		return invalidName("collection", name, "name contains null character")
	}

	if strings.HasPrefix(name, "$") {
		return invalidName("collection", name, "name cannot start with $")
	}

	if !utf8.ValidString(name) {
		return invalidName("collection", name, "name is not valid UTF-8")
	}

	return nil
}

// ValidateDatabaseAndCollection validates both database and collection names.
func ValidateDatabaseAndCollection(dbName, collName string) error {
	if err := ValidateDatabaseName(dbName); err != nil {
		return err
	}
	return ValidateCollectionName(collName)
}
