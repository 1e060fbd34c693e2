package ring

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ErrEmptyCircle is returned by lookups when the ring has no members.
var ErrEmptyCircle = errors.New("empty circle")

const defaultReplicas = 20

// Ring implements consistent hashing with virtual nodes.
//
// The hash->member circle and the member set are sharded concurrent maps,
// so mutations from different goroutines do not serialize behind a single
// lock. The sorted lookup index is a materialized view of the circle,
// rebuilt wholesale on every mutation under its own lock. A lookup racing
// a mutation may observe an index that is one rebuild behind the circle;
// stale index entries are skipped during the walk.
type Ring struct {
	circle   cmap.ConcurrentMap[uint32, string]   // vnode hash -> member
	members  cmap.ConcurrentMap[string, struct{}] // active member names
	replicas int

	mu           sync.RWMutex
	sortedHashes []uint32

	count atomic.Int64
}

// Option configures a Ring at construction time.
type Option func(*Ring)

// WithReplicas sets the number of virtual nodes placed on the ring per
// member. Higher values smooth the key distribution at the cost of a
// larger index and slower mutation. Non-positive values keep the default
// of 20. Changing the count after members were added does not
// re-replicate them, so it must be set before the first Add.
func WithReplicas(n int) Option {
	return func(r *Ring) {
		if n > 0 {
			r.replicas = n
		}
	}
}

// New creates an empty ring.
func New(opts ...Option) *Ring {
	r := &Ring{
		circle: cmap.NewWithCustomShardingFunction[uint32, string](func(h uint32) uint32 {
			// vnode hashes are already uniform
			return h
		}),
		members:  cmap.New[struct{}](),
		replicas: defaultReplicas,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add places a member on the ring with the configured number of virtual
// nodes and rebuilds the lookup index. Re-adding a present member
// refreshes its virtual nodes without changing membership. If two virtual
// nodes hash to the same 32-bit position the later insertion overwrites
// the earlier one, silently under-replicating the overwritten member.
func (r *Ring) Add(member string) {
	for i := 0; i < r.replicas; i++ {
		r.circle.Set(hashKey(vnodeKey(member, i)), member)
	}
	if r.members.SetIfAbsent(member, struct{}{}) {
		r.count.Add(1)
	}
	r.rebuild()
}

// Remove takes a member off the ring by deleting its re-derived virtual
// node positions and rebuilds the lookup index. Removing an absent member
// is a no-op on membership and count.
func (r *Ring) Remove(member string) {
	for i := 0; i < r.replicas; i++ {
		r.circle.Remove(hashKey(vnodeKey(member, i)))
	}
	if _, present := r.members.Pop(member); present {
		r.count.Add(-1)
	}
	r.rebuild()
}

// Set converges membership to the given list, duplicates tolerated.
// Members not in the list are removed, new ones are added, and members
// already present keep their virtual nodes unchanged. The convergence is
// not atomic: concurrent readers may observe intermediate states.
func (r *Ring) Set(members []string) {
	desired := make(map[string]bool, len(members))
	for _, m := range members {
		desired[m] = true
	}

	for _, m := range r.members.Keys() {
		if !desired[m] {
			r.Remove(m)
		}
	}
	for _, m := range members {
		if !r.members.Has(m) {
			r.Add(m)
		}
	}
}

// Members returns a snapshot of the current member names in no
// particular order.
func (r *Ring) Members() []string {
	return r.members.Keys()
}

// Count returns the number of active members. The counter is maintained
// with relaxed ordering and may briefly disagree with Members under
// concurrent mutation.
func (r *Ring) Count() int {
	return int(r.count.Load())
}

// Get returns the member owning key: the member of the first virtual node
// clockwise from the key's position, wrapping past the highest hash back
// to the lowest.
func (r *Ring) Get(key string) (string, error) {
	if r.circle.IsEmpty() {
		return "", ErrEmptyCircle
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := r.walk(hashKey(key), 1)
	if len(owners) == 0 {
		return "", ErrEmptyCircle
	}
	return owners[0], nil
}

// GetTwo returns the member owning key and the next distinct member
// encountered walking clockwise from it, for primary plus failover
// selection. The second name is empty when only one member exists.
func (r *Ring) GetTwo(key string) (string, string, error) {
	if r.circle.IsEmpty() {
		return "", "", ErrEmptyCircle
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := r.walk(hashKey(key), 2)
	switch len(owners) {
	case 0:
		return "", "", ErrEmptyCircle
	case 1:
		return owners[0], "", nil
	default:
		return owners[0], owners[1], nil
	}
}

// GetN returns up to min(n, member count) distinct members, starting at
// the owner of key and proceeding clockwise. Requesting more members than
// exist is not an error; the result is truncated to the membership size.
func (r *Ring) GetN(key string, n int) ([]string, error) {
	if r.circle.IsEmpty() {
		return nil, ErrEmptyCircle
	}
	if count := int(r.count.Load()); count < n {
		n = count
	}
	if n <= 0 {
		return []string{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := r.walk(hashKey(key), n)
	if len(owners) == 0 {
		return nil, ErrEmptyCircle
	}
	return owners, nil
}

// walk collects up to n distinct member names clockwise from the first
// virtual node strictly past hash, terminating after at most one full
// circle. Callers must hold mu for reading. Index entries whose circle
// lookup misses (the index racing a mutation) are skipped.
func (r *Ring) walk(hash uint32, n int) []string {
	if len(r.sortedHashes) == 0 {
		return nil
	}

	start := sort.Search(len(r.sortedHashes), func(i int) bool {
		return r.sortedHashes[i] > hash
	})
	if start >= len(r.sortedHashes) {
		start = 0
	}

	owners := make([]string, 0, n)
	for i := 0; i < len(r.sortedHashes) && len(owners) < n; i++ {
		pos := (start + i) % len(r.sortedHashes)
		member, ok := r.circle.Get(r.sortedHashes[pos])
		if !ok {
			continue
		}
		if !containsName(owners, member) {
			owners = append(owners, member)
		}
	}
	return owners
}

// rebuild recomputes the sorted lookup index from the circle. The circle
// is read without exclusion, so the rebuild of a racing mutation may land
// first and be overwritten; last writer wins.
func (r *Ring) rebuild() {
	hashes := r.circle.Keys()
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i] < hashes[j]
	})

	r.mu.Lock()
	r.sortedHashes = hashes
	r.mu.Unlock()
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
