// Package turn orders combatants by speed and hands out turns round-robin.
package turn

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/udisondev/partybattle/internal/model"
)

// Scheduler holds the turn order snapshot of one battle.
//
// The order is sorted once in Begin by speed descending, ties broken by
// ascending id. It is never re-sorted mid-battle, even if speed modifiers
// change.
// TODO: confirm with design whether speed buffs should reorder the queue.
type Scheduler struct {
	order []*model.Combatant
	index int
	round int
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Begin snapshots and sorts the roster, resetting the cursor to the fastest unit.
func (s *Scheduler) Begin(roster []*model.Combatant) {
	order := make([]*model.Combatant, 0, len(roster))
	for _, c := range roster {
		if c != nil {
			order = append(order, c)
		}
	}
	slices.SortStableFunc(order, func(a, b *model.Combatant) int {
		if c := cmp.Compare(b.Speed(), a.Speed()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})

	s.order = order
	s.index = 0
	s.round = 1

	slog.Debug("turn order set", "size", len(order), "first", s.firstID())
}

func (s *Scheduler) firstID() uint32 {
	if len(s.order) == 0 {
		return 0
	}
	return s.order[0].ID()
}

// Order returns a copy of the turn order snapshot.
func (s *Scheduler) Order() []*model.Combatant {
	return slices.Clone(s.order)
}

// Round returns the 1-based round number; it increments each time the index wraps.
func (s *Scheduler) Round() int { return s.round }

// Current returns the live combatant whose turn it is, skipping dead ones.
// Returns nil when the order is empty or nobody is alive; the cursor and
// round are then left where they were.
func (s *Scheduler) Current() *model.Combatant {
	index, round := s.index, s.round
	for range len(s.order) {
		c := s.order[s.index]
		if c.IsAlive() {
			return c
		}
		s.step()
	}
	s.index, s.round = index, round
	return nil
}

// Advance moves past the current combatant and returns the next live one.
func (s *Scheduler) Advance() *model.Combatant {
	if len(s.order) == 0 {
		return nil
	}
	s.step()
	return s.Current()
}

func (s *Scheduler) step() {
	s.index++
	if s.index >= len(s.order) {
		s.index = 0
		s.round++
	}
}
