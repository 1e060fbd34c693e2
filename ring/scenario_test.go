package ring_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ringhash/ring"
)

// TestScenario_CacheTopologyChanges replays the canonical demo flow:
// route a fixed set of keys over [A, B, C], grow the ring with D and E,
// then shrink it by removing C, asserting minimal disruption throughout.
func TestScenario_CacheTopologyChanges(t *testing.T) {
	r := ring.New()
	r.Add("cacheA")
	r.Add("cacheB")
	r.Add("cacheC")

	users := []string{"user_mcnulty", "user_bunk", "user_omar", "user_bunny", "user_stringer"}
	initial := map[string]bool{"cacheA": true, "cacheB": true, "cacheC": true}

	before := make(map[string]string, len(users))
	for _, u := range users {
		owner, err := r.Get(u)
		require.NoError(t, err)
		assert.True(t, initial[owner], "key %s routed outside [A, B, C]: %s", u, owner)
		before[u] = owner
	}

	// Grow: surviving assignments must not move between pre-existing members.
	r.Add("cacheD")
	r.Add("cacheE")
	grown := map[string]bool{
		"cacheA": true, "cacheB": true, "cacheC": true, "cacheD": true, "cacheE": true,
	}
	afterGrow := make(map[string]string, len(users))
	for _, u := range users {
		owner, err := r.Get(u)
		require.NoError(t, err)
		assert.True(t, grown[owner], "key %s routed outside the grown ring: %s", u, owner)
		if owner != before[u] {
			assert.True(t, owner == "cacheD" || owner == "cacheE",
				"key %s moved to pre-existing member %s", u, owner)
		}
		afterGrow[u] = owner
	}

	// Shrink: only keys owned by cacheC may move.
	r.Remove("cacheC")
	remaining := map[string]bool{"cacheA": true, "cacheB": true, "cacheD": true, "cacheE": true}
	for _, u := range users {
		owner, err := r.Get(u)
		require.NoError(t, err)
		assert.True(t, remaining[owner], "key %s routed to a removed or unknown member: %s", u, owner)
		if afterGrow[u] != "cacheC" {
			assert.Equal(t, afterGrow[u], owner, "key %s not owned by cacheC moved", u)
		}
	}

	members := r.Members()
	assert.Len(t, members, 4)
	assert.NotContains(t, members, "cacheC")
	assert.Equal(t, 4, r.Count())
}

// TestScenario_ConcurrentMutationAndLookup hammers one ring from mutating
// and querying goroutines. Lookups may race topology changes, so the only
// assertions are that results are well-formed: an error is ErrEmptyCircle
// and a success names a member that existed at some point.
func TestScenario_ConcurrentMutationAndLookup(t *testing.T) {
	r := ring.New()
	r.Add("node-stable")

	known := map[string]bool{"node-stable": true}
	for i := 0; i < 8; i++ {
		known[fmt.Sprintf("node-%d", i)] = true
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				member := fmt.Sprintf("node-%d", (g*200+i)%8)
				if i%2 == 0 {
					r.Add(member)
				} else {
					r.Remove(member)
				}
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i)
				owner, err := r.Get(key)
				if err != nil {
					assert.ErrorIs(t, err, ring.ErrEmptyCircle)
					continue
				}
				assert.True(t, known[owner], "lookup returned unknown member %s", owner)

				owners, err := r.GetN(key, 3)
				if err != nil {
					assert.ErrorIs(t, err, ring.ErrEmptyCircle)
					continue
				}
				seen := make(map[string]bool, len(owners))
				for _, o := range owners {
					assert.False(t, seen[o], "GetN returned duplicate member %s", o)
					seen[o] = true
				}
			}
		}(g)
	}
	wg.Wait()

	// node-stable is never removed, so lookups settle on a live ring.
	owner, err := r.Get("final-key")
	require.NoError(t, err)
	assert.True(t, known[owner])
}
