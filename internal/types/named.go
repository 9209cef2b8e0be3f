package types

// Named is implemented by entities keyed by a unique name.
type Named interface {
	ItemName() string
}

// NamedList is an insertion-ordered collection with unique names.
// Upserting an existing name replaces the item and keeps its position.
type NamedList[T Named] struct {
	order []string
	items map[string]T
}

// NewNamedList builds a list from items, later duplicates replacing earlier ones.
func NewNamedList[T Named](items ...T) *NamedList[T] {
	l := &NamedList[T]{items: make(map[string]T, len(items))}
	for _, it := range items {
		l.Upsert(it)
	}
	return l
}

// Upsert inserts or replaces by name. It reports whether the name was new.
func (l *NamedList[T]) Upsert(item T) bool {
	if l.items == nil {
		l.items = make(map[string]T)
	}
	name := item.ItemName()
	_, exists := l.items[name]
	l.items[name] = item
	if !exists {
		l.order = append(l.order, name)
	}
	return !exists
}

// Get returns the item with the given name.
func (l *NamedList[T]) Get(name string) (T, bool) {
	it, ok := l.items[name]
	return it, ok
}

// Delete removes name and reports whether it was present.
func (l *NamedList[T]) Delete(name string) bool {
	if _, ok := l.items[name]; !ok {
		return false
	}
	delete(l.items, name)
	for i, n := range l.order {
		if n == name {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of items.
func (l *NamedList[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Items returns the items in order. The slice is a copy.
func (l *NamedList[T]) Items() []T {
	if l == nil {
		return []T{}
	}
	out := make([]T, 0, len(l.order))
	for _, n := range l.order {
		out = append(out, l.items[n])
	}
	return out
}

// Clone returns an independent copy.
func (l *NamedList[T]) Clone() *NamedList[T] {
	if l == nil {
		return NewNamedList[T]()
	}
	return NewNamedList(l.Items()...)
}
