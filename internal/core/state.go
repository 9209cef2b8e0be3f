// Package core provides shared timeouts and the error taxonomy.
package core

import (
	"context"
	"time"
)

// DefaultQueryTimeout is the default timeout for database queries.
const DefaultQueryTimeout = 30 * time.Second

// DefaultConnectTimeout is the default timeout for connection attempts.
const DefaultConnectTimeout = 10 * time.Second

// Timeouts bounds driver calls. Cancelling an in-flight call is left to these deadlines.
type Timeouts struct {
	Connect time.Duration
	Query   time.Duration
}

// DefaultTimeouts returns the default connect and query timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{Connect: DefaultConnectTimeout, Query: DefaultQueryTimeout}
}

// WithDefaults replaces non-positive values with the defaults.
func (t Timeouts) WithDefaults() Timeouts {
	if t.Connect <= 0 {
		t.Connect = DefaultConnectTimeout
	}
	if t.Query <= 0 {
		t.Query = DefaultQueryTimeout
	}
	return t
}

// QueryContext derives a context bounded by the query timeout.
func (t Timeouts) QueryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, t.WithDefaults().Query)
}

// ConnectContext derives a context bounded by the connect timeout.
func (t Timeouts) ConnectContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, t.WithDefaults().Connect)
}
