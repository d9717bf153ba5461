// Package scheduler implements the delayed-action queue (C4): an ordered
// multimap from execution timestamp to DelayedAction, standing in for the
// original engine's std::multimap<Timestamp, DelayedAction>. Duplicate
// keys are common (many actions can be due at the same microsecond) and
// are resolved by insertion order.
package scheduler

import (
	"github.com/tidwall/btree"

	"backtestcore/internal/model"
)

type entry struct {
	executeTime model.Timestamp
	seq         uint64
	action      model.DelayedAction
}

// Scheduler is an ordered multimap keyed by (execute_time, insertion
// order). Push and PopBefore are its only mutating operations; nothing
// ever reads or removes an individual entry out of order.
type Scheduler struct {
	tree *btree.BTreeG[entry]
	seq  uint64
}

func New() *Scheduler {
	less := func(a, b entry) bool {
		if a.executeTime != b.executeTime {
			return a.executeTime < b.executeTime
		}
		return a.seq < b.seq
	}
	return &Scheduler{tree: btree.NewBTreeG(less)}
}

// Push schedules an action to execute at the given timestamp.
func (s *Scheduler) Push(executeTime model.Timestamp, action model.DelayedAction) {
	s.tree.Set(entry{executeTime: executeTime, seq: s.seq, action: action})
	s.seq++
}

// PeekTime returns the execute_time of the earliest pending action, and
// false if the scheduler is empty.
func (s *Scheduler) PeekTime() (model.Timestamp, bool) {
	e, ok := s.tree.Min()
	if !ok {
		return 0, false
	}
	return e.executeTime, true
}

// PopBefore removes and returns every action with execute_time < tEnd, in
// (execute_time, insertion order).
func (s *Scheduler) PopBefore(tEnd model.Timestamp) []model.DelayedAction {
	var out []model.DelayedAction
	for {
		e, ok := s.tree.Min()
		if !ok || e.executeTime >= tEnd {
			break
		}
		s.tree.Delete(e)
		out = append(out, e.action)
	}
	return out
}

// Len reports the number of pending actions.
func (s *Scheduler) Len() int {
	return s.tree.Len()
}
