package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/partybattle/internal/model"
)

func unit(id uint32, name string, side model.Side, speed int32) *model.Combatant {
	return model.NewCombatant(id, name, side, model.LocationFront, model.Source{}, model.Stats{MaxHP: 10, Speed: speed})
}

func names(cs []*model.Combatant) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name())
	}
	return out
}

func TestScheduler_SpeedTieBrokenByID(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 12)
	b := unit(2, "B", model.SideAlly, 12)
	c := unit(3, "C", model.SideEnemy, 9)

	s := NewScheduler()
	s.Begin([]*model.Combatant{c, b, a})

	var got []string
	got = append(got, s.Current().Name())
	for range 5 {
		got = append(got, s.Advance().Name())
	}

	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, got)
	assert.Equal(t, 2, s.Round())
}

func TestScheduler_OrderSnapshot(t *testing.T) {
	slow := unit(1, "Slow", model.SideAlly, 5)
	fast := unit(2, "Fast", model.SideEnemy, 20)

	s := NewScheduler()
	s.Begin([]*model.Combatant{slow, fast})
	assert.Equal(t, []string{"Fast", "Slow"}, names(s.Order()))

	// A mid-battle speed change does not reorder.
	require.True(t, slow.AddModifier(model.StatSpeed, 100, 5))
	s.Advance()
	s.Advance()
	assert.Equal(t, []string{"Fast", "Slow"}, names(s.Order()))
	assert.Equal(t, "Fast", s.Current().Name())
}

func TestScheduler_SkipsDead(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 30)
	b := unit(2, "B", model.SideAlly, 20)
	c := unit(3, "C", model.SideEnemy, 10)

	s := NewScheduler()
	s.Begin([]*model.Combatant{a, b, c})
	b.Kill()

	assert.Equal(t, "A", s.Current().Name())
	assert.Equal(t, "C", s.Advance().Name())
	assert.Equal(t, "A", s.Advance().Name())
}

func TestScheduler_DeadFirstUnit(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 30)
	b := unit(2, "B", model.SideEnemy, 20)

	s := NewScheduler()
	s.Begin([]*model.Combatant{a, b})
	a.Kill()

	assert.Equal(t, "B", s.Current().Name())
}

func TestScheduler_AllDead(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 30)
	s := NewScheduler()
	s.Begin([]*model.Combatant{a})
	a.Kill()

	assert.Nil(t, s.Current())
	assert.Nil(t, s.Advance())
}

func TestScheduler_AllDeadKeepsRound(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 30)
	b := unit(2, "B", model.SideEnemy, 20)
	s := NewScheduler()
	s.Begin([]*model.Combatant{a, b})
	require.Same(t, b, s.Advance())
	round := s.Round()

	a.Kill()
	b.Kill()
	for range 5 {
		assert.Nil(t, s.Current())
	}
	assert.Equal(t, round, s.Round())
}

func TestScheduler_Empty(t *testing.T) {
	s := NewScheduler()
	s.Begin(nil)

	assert.Nil(t, s.Current())
	assert.Nil(t, s.Advance())
	assert.Empty(t, s.Order())
}

func TestScheduler_SingleUnitWraps(t *testing.T) {
	a := unit(1, "A", model.SideAlly, 1)
	s := NewScheduler()
	s.Begin([]*model.Combatant{a})

	assert.Same(t, a, s.Advance())
	assert.Same(t, a, s.Advance())
	assert.Equal(t, 3, s.Round())
}
