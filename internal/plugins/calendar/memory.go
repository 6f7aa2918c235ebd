package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rdleal/intervalst/interval"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// spanKey identifies one interval in the search tree. Events with the
// same span share a tree node.
type spanKey struct {
	lo, hi int64
}

// spanBucket is the value stored per tree node: the IDs of every event
// with that exact span.
type spanBucket struct {
	ids map[string]struct{}
}

// storedEvent pairs an event with its insertion sequence.
type storedEvent struct {
	evt Event
	seq uint64
}

// memoryRepo is an in-process EventRepository. Range queries go through an
// interval search tree; results are re-filtered and sorted by insertion
// sequence so they match the MariaDB repository.
type memoryRepo struct {
	mu      sync.RWMutex
	seq     uint64
	events  map[string]*storedEvent
	tree    *interval.SearchTree[*spanBucket, time.Time]
	buckets map[spanKey]*spanBucket

	// insert adds a node to tree. Replaced in tests.
	insert func(lo, hi time.Time, b *spanBucket) error
}

// NewMemoryEventRepository creates an empty in-memory repository.
func NewMemoryEventRepository() EventRepository {
	return newMemoryRepo()
}

func newMemoryRepo() *memoryRepo {
	r := &memoryRepo{
		events:  make(map[string]*storedEvent),
		tree:    interval.NewSearchTree[*spanBucket](func(x, y time.Time) int { return x.Compare(y) }),
		buckets: make(map[spanKey]*spanBucket),
	}
	r.insert = r.tree.Insert
	return r
}

// treeSpan orders an event's endpoints so malformed events (end before
// start) can still be indexed.
func treeSpan(e Event) (lo, hi time.Time) {
	if e.End.Before(e.Start) {
		return e.End, e.Start
	}
	return e.Start, e.End
}

func (r *memoryRepo) index(e Event) error {
	lo, hi := treeSpan(e)
	key := spanKey{lo.UnixNano(), hi.UnixNano()}
	if b, ok := r.buckets[key]; ok {
		b.ids[e.ID] = struct{}{}
		return nil
	}
	b := &spanBucket{ids: map[string]struct{}{e.ID: {}}}
	if err := r.insert(lo, hi, b); err != nil {
		return err
	}
	r.buckets[key] = b
	return nil
}

func (r *memoryRepo) unindex(e Event) error {
	lo, hi := treeSpan(e)
	key := spanKey{lo.UnixNano(), hi.UnixNano()}
	b, ok := r.buckets[key]
	if !ok {
		return nil
	}
	delete(b.ids, e.ID)
	if len(b.ids) > 0 {
		return nil
	}
	delete(r.buckets, key)
	return r.tree.Delete(lo, hi)
}

// Create stores a copy of evt. A duplicate ID is a conflict.
func (r *memoryRepo) Create(_ context.Context, evt *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[evt.ID]; exists {
		return apperror.NewConflict("an event with this id already exists")
	}
	if err := r.index(*evt); err != nil {
		return apperror.NewInternal(err)
	}
	r.seq++
	r.events[evt.ID] = &storedEvent{evt: *evt, seq: r.seq}
	return nil
}

// FindByID returns a copy of the stored event.
func (r *memoryRepo) FindByID(_ context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.events[id]
	if !ok {
		return nil, apperror.NewNotFound("event not found")
	}
	evt := s.evt
	return &evt, nil
}

// Update replaces the stored event, keeping its insertion position.
func (r *memoryRepo) Update(_ context.Context, evt *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.events[evt.ID]
	if !ok {
		return apperror.NewNotFound("event not found")
	}
	if err := r.unindex(s.evt); err != nil {
		return apperror.NewInternal(err)
	}
	if err := r.index(*evt); err != nil {
		// Put the old span back so the event stays reachable by range.
		if rerr := r.index(s.evt); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return apperror.NewInternal(err)
	}
	s.evt = *evt
	return nil
}

// Delete removes an event by ID.
func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.events[id]
	if !ok {
		return apperror.NewNotFound("event not found")
	}
	if err := r.unindex(s.evt); err != nil {
		return apperror.NewInternal(err)
	}
	delete(r.events, id)
	return nil
}

// List returns every event in insertion order.
func (r *memoryRepo) List(_ context.Context) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := make([]*storedEvent, 0, len(r.events))
	for _, s := range r.events {
		stored = append(stored, s)
	}
	return sortedEvents(stored), nil
}

// ListRange returns events whose start or end falls in [from, to] or whose
// span covers it, in insertion order.
func (r *memoryRepo) ListRange(_ context.Context, from, to time.Time) ([]Event, error) {
	if to.Before(from) {
		return make([]Event, 0), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Widen by a nanosecond so spans touching either bound are candidates
	// whether or not the tree treats endpoints as inclusive.
	buckets, ok := r.tree.AllIntersections(from.Add(-time.Nanosecond), to.Add(time.Nanosecond))
	if !ok {
		return make([]Event, 0), nil
	}

	stored := make([]*storedEvent, 0)
	for _, b := range buckets {
		for id := range b.ids {
			stored = append(stored, r.events[id])
		}
	}
	// The tree matches any overlap; keep the exact range rule.
	return EventsInRange(sortedEvents(stored), from, to), nil
}

func sortedEvents(stored []*storedEvent) []Event {
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })
	out := make([]Event, len(stored))
	for i, s := range stored {
		out[i] = s.evt
	}
	return out
}
