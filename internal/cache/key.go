package cache

// Kind is the closed set of resources the cache holds
type Kind string

const (
	KindMatches Kind = "matches"
	KindMatch   Kind = "match"
	KindProfile Kind = "profile"
)

// Ref identifies a cache entry without its value type. Every Key is a Ref.
type Ref interface {
	Kind() Kind
	ID() string
	String() string
}

// Key identifies a cache entry holding values of type T. Entries are
// addressed by kind and id only, so two keys with the same kind and id but
// different T would collide; define keys in one place to avoid that.
type Key[T any] struct {
	kind Kind
	id   string
}

// NewKey creates a key for the given kind and id. Use an empty id for
// singleton resources.
func NewKey[T any](kind Kind, id string) Key[T] {
	return Key[T]{kind: kind, id: id}
}

// Kind returns the resource kind
func (k Key[T]) Kind() Kind {
	return k.kind
}

// ID returns the resource id, empty for singletons
func (k Key[T]) ID() string {
	return k.id
}

// String renders the key as "kind" or "kind/id"
func (k Key[T]) String() string {
	if k.id == "" {
		return string(k.kind)
	}
	return string(k.kind) + "/" + k.id
}
