package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backtestcore/internal/model"
)

func TestPushPopBeforeOrdersByTimeThenInsertion(t *testing.T) {
	s := New()
	s.Push(100, model.DelayedAction{Kind: model.Cancel, AssetId: 1})
	s.Push(50, model.DelayedAction{Kind: model.Cancel, AssetId: 2})
	s.Push(50, model.DelayedAction{Kind: model.Cancel, AssetId: 3})

	actions := s.PopBefore(100)
	assert.Len(t, actions, 2)
	assert.Equal(t, 2, actions[0].AssetId)
	assert.Equal(t, 3, actions[1].AssetId)
	assert.Equal(t, 1, s.Len(), "the action at t=100 is not popped by a t_end of 100")
}

func TestPopBeforeLeavesLaterActionsInPlace(t *testing.T) {
	s := New()
	s.Push(10, model.DelayedAction{Kind: model.Cancel})
	s.Push(20, model.DelayedAction{Kind: model.Cancel})

	assert.Len(t, s.PopBefore(15), 1)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.PopBefore(25), 1)
	assert.Equal(t, 0, s.Len())
}

func TestPeekTimeReportsEarliestPending(t *testing.T) {
	s := New()
	_, ok := s.PeekTime()
	assert.False(t, ok)

	s.Push(30, model.DelayedAction{})
	s.Push(10, model.DelayedAction{})
	ts, ok := s.PeekTime()
	assert.True(t, ok)
	assert.Equal(t, model.Timestamp(10), ts)
}
