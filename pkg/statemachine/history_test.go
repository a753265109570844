package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_Commit(t *testing.T) {
	var h history

	h.commit("a")
	require.Len(t, h.slots, 2, "期望初始占位 + 1 项")
	assert.True(t, h.slots[0].initial)
	assert.Equal(t, 1, h.cursor)

	h.commit("b")
	h.commit("c")
	s, ok := h.undo("init")
	assert.True(t, ok)
	assert.Equal(t, State("b"), s)

	h.commit("d")
	assert.False(t, h.canRedo(), "提交新状态后不应该可以重做")
	assert.Equal(t, []State{"init", "a", "b", "d"}, h.states("init"))
}

func TestHistory_UndoToInitial(t *testing.T) {
	var h history
	h.commit("a")

	s, ok := h.undo("init")
	assert.True(t, ok)
	assert.Equal(t, State("init"), s)

	_, ok = h.undo("init")
	assert.False(t, ok, "游标为 0 时不应该可以撤销")

	s, ok = h.redo("init")
	assert.True(t, ok)
	assert.Equal(t, State("a"), s)
}

func TestHistory_Clear(t *testing.T) {
	var h history
	h.commit("a")
	h.commit("b")
	h.clear()

	assert.Equal(t, 0, h.cursor)
	assert.Empty(t, h.slots)
	assert.False(t, h.canUndo())
	assert.False(t, h.canRedo())
}
