package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkWriteTracksLines(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpTrue, 1)
	c.WriteOp(OpPop, 2)

	assert.Equal(t, []int{1, 1, 2}, c.Lines)
	assert.Equal(t, []byte{byte(OpNil), byte(OpTrue), byte(OpPop)}, c.Code)
}

func TestChunkAddConstant(t *testing.T) {
	c := NewChunk()
	i0 := c.AddConstant(Number(1))
	i1 := c.AddConstant(Number(2))

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Len(t, c.Constants, 2)
}
