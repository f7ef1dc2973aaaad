package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInternIdempotence checks that interning the same byte sequence
// twice yields the same identity.
func TestInternIdempotence(t *testing.T) {
	var objs []*Obj
	is := NewInternSet(&objs)

	a := is.Intern("hello")
	b := is.Intern("hello")

	assert.Same(t, a, b)
	assert.Len(t, objs, 1, "the second Intern must not allocate a new Obj")
}

func TestInternDistinctContentDiffers(t *testing.T) {
	var objs []*Obj
	is := NewInternSet(&objs)

	a := is.Intern("ab")
	b := is.Intern("ba")

	assert.NotSame(t, a, b)
}

func TestFNV1a32KnownVector(t *testing.T) {
	// FNV-1a 32-bit of the empty string is the offset basis itself.
	require.Equal(t, fnvOffset32, fnv1a32String(""))
}

func TestInternGrowsPastInitialCapacity(t *testing.T) {
	var objs []*Obj
	is := NewInternSet(&objs)

	for i := 0; i < 100; i++ {
		is.Intern(string(rune('a' + i%26)))
	}

	assert.LessOrEqual(t, len(objs), 26)
}
