// Package cache is a process-wide keyed store for server snapshots. Values
// are replaced wholesale, never merged, and entries can be marked stale so
// the next read goes back to the server.
package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mcoot/battleship-client/internal/dependencies/clock"
)

// EventType describes what happened to an entry
type EventType string

const (
	EventUpdated     EventType = "updated"
	EventInvalidated EventType = "invalidated"
	EventRemoved     EventType = "removed"
)

// Event is delivered to subscribers after an entry changes
type Event struct {
	Kind Kind
	ID   string
	Type EventType
}

// Config holds cache settings
type Config struct {
	// StaleTime is how long a value stays fresh after it was stored.
	// Zero means values only go stale when invalidated.
	StaleTime time.Duration
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{}
}

type entry struct {
	value     any
	updatedAt time.Time
	stale     bool
}

// Cache holds the latest known value per key.
//
// Every change to a key (set, invalidate, remove, clear) advances its
// generation. A fetch only stores its result if the generation it started
// at is still current, and fetches started at different generations never
// share a call, so an invalidation always forces a new request.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*entry
	subscribers map[int]func(Event)
	nextSub     int
	group       singleflight.Group

	// generation bookkeeping, guarded by mu
	gen       uint64
	keyGens   map[string]uint64
	kindGens  map[Kind]uint64
	clearedAt uint64

	staleTime time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates an empty cache
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Cache{
		entries:     make(map[string]*entry),
		subscribers: make(map[int]func(Event)),
		keyGens:     make(map[string]uint64),
		kindGens:    make(map[Kind]uint64),
		staleTime:   cfg.StaleTime,
		clock:       clk,
		logger:      logger,
	}
}

// Get returns the cached value for key, stale or not
func Get[T any](c *Cache, key Key[T]) (T, bool) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	c.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	value, ok := e.value.(T)
	return value, ok
}

// Set replaces the value for key and marks it fresh
func Set[T any](c *Cache, key Key[T], value T) {
	c.mu.Lock()
	c.store(key.String(), value)
	c.mu.Unlock()

	c.logger.Debug("cache set", slog.String("key", key.String()))
	c.notify(Event{Kind: key.Kind(), ID: key.ID(), Type: EventUpdated})
}

// setIfCurrent stores value only if key is still at generation gen
func setIfCurrent[T any](c *Cache, key Key[T], value T, gen uint64) bool {
	c.mu.Lock()
	current := c.generation(key)
	if current == gen {
		c.store(key.String(), value)
	}
	c.mu.Unlock()

	if current != gen {
		c.logger.Debug("cache fetch outdated", slog.String("key", key.String()))
		return false
	}
	c.logger.Debug("cache set", slog.String("key", key.String()))
	c.notify(Event{Kind: key.Kind(), ID: key.ID(), Type: EventUpdated})
	return true
}

// Fetch returns the cached value for key while it is fresh. Otherwise it
// calls fetch and stores the result. Concurrent fetches for the same key
// share a single call, run with the context of the first caller, unless
// the key changed in between. A failed fetch leaves the cache unchanged,
// and so does a fetch that finishes after the key was changed by someone
// else.
func Fetch[T any](ctx context.Context, c *Cache, key Key[T], fetch func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	fresh := !c.isStale(key)
	e := c.entries[key.String()]
	gen := c.generation(key)
	c.mu.Unlock()

	if fresh {
		if value, ok := e.value.(T); ok {
			return value, nil
		}
	}

	flight := fmt.Sprintf("%s@%d", key, gen)
	result, err, shared := c.group.Do(flight, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		setIfCurrent(c, key, value, gen)
		return value, nil
	})
	if err != nil {
		c.logger.Debug("cache fetch failed", slog.String("key", key.String()), slog.Any("error", err))
		var zero T
		return zero, err
	}
	if shared {
		c.logger.Debug("cache fetch shared", slog.String("key", key.String()))
	}

	value, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: unexpected value type %T for %s", result, key)
	}
	return value, nil
}

// Invalidate marks the entry for ref stale. The value stays readable
// until it is refetched.
func (c *Cache) Invalidate(ref Ref) {
	c.mu.Lock()
	c.advance(ref.String())
	e, ok := c.entries[ref.String()]
	if ok {
		e.stale = true
	}
	c.mu.Unlock()

	if ok {
		c.logger.Debug("cache invalidated", slog.String("key", ref.String()))
		c.notify(Event{Kind: ref.Kind(), ID: ref.ID(), Type: EventInvalidated})
	}
}

// InvalidateKind marks every entry of the given kind stale
func (c *Cache) InvalidateKind(kind Kind) {
	var events []Event

	c.mu.Lock()
	c.gen++
	c.kindGens[kind] = c.gen
	for name, e := range c.entries {
		k, id := splitName(name)
		if k != kind {
			continue
		}
		e.stale = true
		events = append(events, Event{Kind: k, ID: id, Type: EventInvalidated})
	}
	c.mu.Unlock()

	for _, event := range events {
		c.notify(event)
	}
}

// IsStale returns true if ref has no entry, was invalidated, or is older
// than the configured stale time
func (c *Cache) IsStale(ref Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isStale(ref)
}

// Callers hold c.mu.
func (c *Cache) isStale(ref Ref) bool {
	e, ok := c.entries[ref.String()]
	if !ok || e.stale {
		return true
	}
	if c.staleTime > 0 && c.clock.Now().Sub(e.updatedAt) >= c.staleTime {
		return true
	}
	return false
}

// UpdatedAt returns when the entry for ref was last stored
func (c *Cache) UpdatedAt(ref Ref) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ref.String()]
	if !ok {
		return time.Time{}, false
	}
	return e.updatedAt, true
}

// Remove deletes the entry for ref
func (c *Cache) Remove(ref Ref) {
	c.mu.Lock()
	c.advance(ref.String())
	_, ok := c.entries[ref.String()]
	delete(c.entries, ref.String())
	c.mu.Unlock()

	if ok {
		c.notify(Event{Kind: ref.Kind(), ID: ref.ID(), Type: EventRemoved})
	}
}

// Clear deletes every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	events := make([]Event, 0, len(c.entries))
	for name := range c.entries {
		kind, id := splitName(name)
		events = append(events, Event{Kind: kind, ID: id, Type: EventRemoved})
	}
	c.entries = make(map[string]*entry)
	c.gen++
	c.clearedAt = c.gen
	c.mu.Unlock()

	c.logger.Debug("cache cleared", slog.Int("entries", len(events)))
	for _, event := range events {
		c.notify(event)
	}
}

// Len returns the number of entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe registers fn to receive every event. Events are delivered
// synchronously on the goroutine that caused them. Call the returned
// function to unsubscribe.
func (c *Cache) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(event Event) {
	c.mu.Lock()
	subscribers := make([]func(Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

// store replaces the entry for name and advances its generation.
// Callers hold c.mu.
func (c *Cache) store(name string, value any) {
	c.advance(name)
	c.entries[name] = &entry{value: value, updatedAt: c.clock.Now()}
}

// advance moves name to a new generation. Callers hold c.mu.
func (c *Cache) advance(name string) {
	c.gen++
	c.keyGens[name] = c.gen
}

// generation is the latest change affecting ref: its own, its kind's or a
// clear. Callers hold c.mu.
func (c *Cache) generation(ref Ref) uint64 {
	return max(c.keyGens[ref.String()], c.kindGens[ref.Kind()], c.clearedAt)
}

func splitName(name string) (Kind, string) {
	kind, id, _ := strings.Cut(name, "/")
	return Kind(kind), id
}
