package ring

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// hashKey maps a string onto the 32-bit ring space.
func hashKey(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}

// vnodeKey derives the hash input for the i-th virtual node of a member.
// Removal re-derives the same keys, so no reverse index is needed.
func vnodeKey(member string, i int) string {
	return strconv.Itoa(i) + member
}
