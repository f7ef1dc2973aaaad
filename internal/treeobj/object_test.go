package treeobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthyOnlyNilAndFalseAreFalsy(t *testing.T) {
	falsy := []Object{NilValue, Bool{Value: false}}
	for _, o := range falsy {
		assert.False(t, IsTruthy(o), "%v should be falsy", o)
	}

	truthy := []Object{Bool{Value: true}, Number{Value: 0}, String{Value: ""}}
	for _, o := range truthy {
		assert.True(t, IsTruthy(o), "%v should be truthy", o)
	}
}

// TestEqualIsSymmetric checks that Equal(a, b) == Equal(b, a) across
// every pairing of a representative value from each type, including
// cross-type pairs that must always compare unequal.
func TestEqualIsSymmetric(t *testing.T) {
	values := []Object{
		NilValue,
		Bool{Value: true},
		Bool{Value: false},
		Number{Value: 1},
		Number{Value: 0},
		String{Value: "a"},
		String{Value: ""},
	}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, Equal(a, b), Equal(b, a), "Equal(%v, %v) should be symmetric", a, b)
		}
	}
}

func TestEqualSameValueDifferentInstance(t *testing.T) {
	assert.True(t, Equal(Number{Value: 1}, Number{Value: 1}))
	assert.True(t, Equal(String{Value: "ab"}, String{Value: "ab"}))
	assert.False(t, Equal(String{Value: "ab"}, String{Value: "ba"}))
}

func TestEqualRejectsCrossTypeComparison(t *testing.T) {
	assert.False(t, Equal(Number{Value: 0}, Bool{Value: false}))
	assert.False(t, Equal(String{Value: ""}, NilValue))
	assert.False(t, Equal(Bool{Value: true}, String{Value: "true"}))
}

func TestTypeNameMatchesBuiltinNaming(t *testing.T) {
	assert.Equal(t, "number", TypeName(Number{Value: 1}))
	assert.Equal(t, "string", TypeName(String{Value: "x"}))
	assert.Equal(t, "nil", TypeName(NilValue))
	assert.Equal(t, "boolean", TypeName(Bool{Value: true}))
}

func TestEnvironmentShadowingAndAncestorWalk(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", Number{Value: 1})

	inner := NewEnvironment(global)
	inner.Define("a", Number{Value: 2})

	v, err := inner.GetAt(0, "a")
	assert.NoError(t, err)
	assert.Equal(t, Number{Value: 2}, v)

	v, err = inner.GetAt(1, "a")
	assert.NoError(t, err)
	assert.Equal(t, Number{Value: 1}, v)
}

func TestEnvironmentAssignToUndefinedIsError(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign(1, "nope", Number{Value: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestEnvironmentGetWalksToParent(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", String{Value: "outer"})
	inner := NewEnvironment(global)

	v, err := inner.Get(1, "a")
	assert.NoError(t, err)
	assert.Equal(t, String{Value: "outer"}, v)
}
