package keyspace

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/peternagy/dbquerytool/internal/debug"
)

// Lister enumerates keys matching a glob pattern. limit <= 0 lists every match.
type Lister func(ctx context.Context, pattern string, limit int) ([]string, error)

// Options tunes a Browser.
type Options struct {
	// Delimiter splits group prefixes. Default: ":".
	Delimiter string
	// MaxKeys caps the keys shown. Default: 1000.
	MaxKeys int
}

func (o *Options) defaults() {
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	if o.MaxKeys <= 0 {
		o.MaxKeys = DefaultMaxKeys
	}
}

// Browser rebuilds the key tree from a fresh listing on every refresh.
type Browser struct {
	list Lister
	opts Options
	last atomic.Pointer[Tree]

	// inFlight counts running refreshes. Timer-driven refreshes only start
	// when it is zero.
	inFlight atomic.Int32
}

// NewBrowser creates a Browser over list.
func NewBrowser(list Lister, opts Options) *Browser {
	opts.defaults()
	return &Browser{list: list, opts: opts}
}

// Refresh lists keys matching pattern ("*" when empty) and returns a new tree.
// The previous tree is kept when the listing fails.
func (b *Browser) Refresh(ctx context.Context, pattern string) (*Tree, error) {
	b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	return b.refresh(ctx, pattern)
}

// tryAcquire claims the browser when no refresh is running. The caller must
// call release when done.
func (b *Browser) tryAcquire() bool {
	return b.inFlight.CompareAndSwap(0, 1)
}

func (b *Browser) release() {
	b.inFlight.Add(-1)
}

func (b *Browser) refresh(ctx context.Context, pattern string) (*Tree, error) {
	if pattern == "" {
		pattern = "*"
	}
	keys, err := b.list(ctx, pattern, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	tree := Index(keys, b.opts.Delimiter, b.opts.MaxKeys)
	b.last.Store(tree)

	details := map[string]interface{}{
		"pattern": pattern,
		"total":   tree.Total,
		"groups":  len(tree.Groups),
	}
	if tree.Truncated {
		details["shown"] = b.opts.MaxKeys
		debug.Warn(debug.CategoryKeyspace, "key listing truncated", details)
	} else {
		debug.LogKeyspace("key tree rebuilt", details)
	}
	return tree, nil
}

// Last returns the most recent tree, or nil before the first refresh.
func (b *Browser) Last() *Tree {
	return b.last.Load()
}
