// Package ttldict provides a thread-safe map whose entries expire a fixed
// duration after they were last written.
//
// Expiration is lazy: every operation first purges entries whose time has
// passed, driven by a FIFO of scheduled expirations rather than a scan of
// the whole map. Nothing is removed while nobody calls the Dict, unless a
// cleaner was started with StartCleaner.
package ttldict

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Callback is invoked with the key and value of an entry once it expired.
type Callback[K comparable, V any] func(key K, value V)

// KeyCallback adapts a callback that only cares about the expired key.
func KeyCallback[K comparable, V any](fn func(key K)) Callback[K, V] {
	return func(key K, _ V) {
		fn(key)
	}
}

// Item is a key-value pair returned by Items and PopItem.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

type Map[K comparable, V any] interface {
	Contains(key K) bool
	Get(key K) (V, bool)
	GetOr(key K, def V) V
	Lookup(key K) (V, error)
	GetExpires(key K) (time.Time, error)
	Set(key K, value V, cb ...Callback[K, V])
	SetDefault(key K, def V) V
	Delete(key K) error
	Pop(key K) (V, error)
	PopOr(key K, def V) V
	PopItem() (K, V, error)
	Len() int
	Keys() []K
	Values() []V
	Items() []Item[K, V]
	Clear()
	Purge()
}

var _ Map[string, any] = (*Dict[string, any])(nil)

////////////////////
// IMPLEMENTATION

type entry[V any] struct {
	val V
	exp time.Time
	seq uint64
}

type firedCallback[K comparable, V any] struct {
	key K
	val V
	cb  Callback[K, V]
}

// Dict is a TTL keyed map. The zero value is not usable; create one with
// New or NewFrom.
//
// By default expiration callbacks run synchronously while the Dict's lock
// is held: a slow callback stalls every other caller, and a callback must
// not call back into the same Dict. Use WithDeferredCallbacks to run them
// after the lock is released.
type Dict[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	store   map[K]entry[V]
	queue   expiryQueue[K, V]
	seq     uint64
	pending []firedCallback[K, V]

	now            func() time.Time
	log            *slog.Logger
	metrics        Metrics
	deferCallbacks bool

	cleanerMu   sync.Mutex
	stopCleaner context.CancelFunc
	cleanerDone chan struct{}
}

// New creates an empty Dict whose entries live for ttl after each write.
// A non-positive ttl makes entries expire at the first later operation.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Dict[K, V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Dict[K, V]{
		ttl:            ttl,
		store:          make(map[K]entry[V]),
		now:            o.now,
		log:            o.log,
		metrics:        o.metrics,
		deferCallbacks: o.deferCallbacks,
	}
}

// NewFrom creates a Dict pre-populated with entries. Every initial entry is
// written like a regular Set and expires ttl after construction.
func NewFrom[K comparable, V any](ttl time.Duration, entries map[K]V, opts ...Option) *Dict[K, V] {
	d := New[K, V](ttl, opts...)

	d.lock()
	defer d.unlock()
	for k, v := range entries {
		d.setLocked(k, v, nil)
	}

	return d
}

func (d *Dict[K, V]) TTL() time.Duration {
	return d.ttl
}

func (d *Dict[K, V]) Contains(key K) bool {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	_, ok := d.lookupLocked(key)
	return ok
}

// Get returns the value stored for key and whether it is live.
func (d *Dict[K, V]) Get(key K) (v V, ok bool) {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	e, ok := d.lookupLocked(key)
	if !ok {
		return
	}
	return e.val, true
}

// GetOr returns the value stored for key, or def if the key is absent or
// expired.
func (d *Dict[K, V]) GetOr(key K, def V) V {
	if v, ok := d.Get(key); ok {
		return v
	}
	return def
}

// Lookup returns the value stored for key or ErrKeyNotFound.
func (d *Dict[K, V]) Lookup(key K) (v V, err error) {
	v, ok := d.Get(key)
	if !ok {
		err = ErrKeyNotFound
	}
	return
}

// GetExpires returns the time at which key is scheduled to expire.
func (d *Dict[K, V]) GetExpires(key K) (exp time.Time, err error) {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	e, ok := d.store[key]
	if !ok {
		err = ErrKeyNotFound
		return
	}

	exp = e.exp
	return
}

// Set inserts or overwrites key with a fresh ttl. If cb is passed, its
// first element is called once the entry expires. Overwriting an entry
// cancels the callback registered by the previous write.
func (d *Dict[K, V]) Set(key K, value V, cb ...Callback[K, V]) {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	var c Callback[K, V]
	if len(cb) > 0 {
		c = cb[0]
	}
	d.setLocked(key, value, c)
}

// SetDefault returns the live value of key without touching its
// expiration. If key is absent, def is written with a fresh ttl and
// returned.
func (d *Dict[K, V]) SetDefault(key K, def V) V {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	if e, ok := d.lookupLocked(key); ok {
		return e.val
	}

	d.setLocked(key, def, nil)
	return def
}

func (d *Dict[K, V]) Delete(key K) error {
	_, err := d.Pop(key)
	return err
}

// Pop removes key and returns its value. The expiration callback of a
// popped entry is never called.
func (d *Dict[K, V]) Pop(key K) (v V, err error) {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	e, ok := d.store[key]
	if !ok {
		err = ErrKeyNotFound
		return
	}

	d.removeLocked(key)
	return e.val, nil
}

func (d *Dict[K, V]) PopOr(key K, def V) V {
	if v, err := d.Pop(key); err == nil {
		return v
	}
	return def
}

// PopItem removes and returns an arbitrary live entry. Which entry is
// chosen is unspecified and may differ between calls on equal contents.
func (d *Dict[K, V]) PopItem() (key K, v V, err error) {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	for k, e := range d.store {
		d.removeLocked(k)
		return k, e.val, nil
	}

	err = ErrEmpty
	return
}

func (d *Dict[K, V]) Len() int {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	return len(d.store)
}

// Keys returns a snapshot of all live keys in unspecified order.
func (d *Dict[K, V]) Keys() []K {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	keys := make([]K, 0, len(d.store))
	for k := range d.store {
		keys = append(keys, k)
	}
	return keys
}

// Values returns a snapshot of all live values in unspecified order.
func (d *Dict[K, V]) Values() []V {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	values := make([]V, 0, len(d.store))
	for _, e := range d.store {
		values = append(values, e.val)
	}
	return values
}

// Items returns a snapshot of all live entries in unspecified order.
func (d *Dict[K, V]) Items() []Item[K, V] {
	d.lock()
	defer d.unlock()
	d.purgeLocked()

	items := make([]Item[K, V], 0, len(d.store))
	for k, e := range d.store {
		items = append(items, Item[K, V]{Key: k, Value: e.val})
	}
	return items
}

// Clear drops every entry and every scheduled expiration. It does not
// purge first, so no expiration callback fires for the dropped entries.
func (d *Dict[K, V]) Clear() {
	d.lock()
	defer d.unlock()

	d.store = make(map[K]entry[V])
	d.queue.reset()
	d.metrics.Size(0)
}

// Purge removes every expired entry and fires its callback. All other
// operations purge implicitly; calling it directly is only useful to
// release memory or fire callbacks early.
func (d *Dict[K, V]) Purge() {
	d.lock()
	defer d.unlock()
	d.purgeLocked()
}

func (d *Dict[K, V]) lock() {
	d.mu.Lock()
}

// unlock releases the lock and then runs callbacks deferred by the purge
// performed under it.
func (d *Dict[K, V]) unlock() {
	fired := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, f := range fired {
		d.invoke(f)
	}
}

func (d *Dict[K, V]) lookupLocked(key K) (e entry[V], ok bool) {
	e, ok = d.store[key]
	if ok {
		d.metrics.Hit()
	} else {
		d.metrics.Miss()
	}
	return
}

func (d *Dict[K, V]) setLocked(key K, value V, cb Callback[K, V]) {
	d.seq++
	exp := d.now().Add(d.ttl)

	d.store[key] = entry[V]{val: value, exp: exp, seq: d.seq}
	d.queue.push(record[K, V]{exp: exp, seq: d.seq, key: key, cb: cb})

	d.metrics.Write()
	d.metrics.Size(len(d.store))
}

// removeLocked deletes key from the store only. Its queue records stay
// behind and are discarded by a later purge.
func (d *Dict[K, V]) removeLocked(key K) {
	delete(d.store, key)
	d.metrics.Size(len(d.store))
}
