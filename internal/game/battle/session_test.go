package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/game/targeting"
	"github.com/udisondev/partybattle/internal/model"
)

type party struct {
	knight, cleric, orc, goblin *model.Combatant
	roster                      []*model.Combatant
}

// newParty builds a 2v2 roster. Turn order: knight, orc, cleric, goblin.
func newParty() party {
	mk := func(id uint32, name string, side model.Side, loc model.Location, speed int32) *model.Combatant {
		return model.NewCombatant(id, name, side, loc, model.Source{}, model.Stats{MaxHP: 100, Speed: speed, Hit: 100})
	}
	p := party{
		knight: mk(1, "Knight", model.SideAlly, model.LocationFront, 10),
		cleric: mk(2, "Cleric", model.SideAlly, model.LocationBack, 8),
		orc:    mk(3, "Orc", model.SideEnemy, model.LocationFront, 9),
		goblin: mk(4, "Goblin", model.SideEnemy, model.LocationBack, 5),
	}
	p.roster = []*model.Combatant{p.knight, p.cleric, p.orc, p.goblin}
	return p
}

func newSession(t *testing.T, p party) *Session {
	t.Helper()
	s := New(p.roster, &combat.FixedRoller{Values: []float64{0}})
	require.NoError(t, s.BeginBattle())
	return s
}

func slash(power int32) *skill.Skill {
	return &skill.Skill{
		ID:      "slash",
		Name:    "Slash",
		Target:  targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaSingle},
		Effects: []skill.Effect{skill.Damage(power)},
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestSession_BeginBattle(t *testing.T) {
	_, err := New(nil, nil).NextTurn()
	assert.ErrorIs(t, err, ErrNotStarted)

	assert.ErrorIs(t, New(nil, nil).BeginBattle(), ErrEmptyRoster)

	p := newParty()
	s := newSession(t, p)
	assert.ErrorIs(t, s.BeginBattle(), ErrAlreadyStarted)
	assert.Equal(t, []*model.Combatant{p.knight, p.orc, p.cleric, p.goblin}, s.TurnOrder())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_SelectAndResolve(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.knight, turn.Actor)
	assert.False(t, turn.Skipped)
	assert.Equal(t, StateActiveUnitChosen, s.State())

	sk := slash(20)
	require.NoError(t, s.SelectSkill(sk))
	assert.True(t, s.IsTargeting())
	caster, pending := s.Pending()
	assert.Same(t, p.knight, caster)
	assert.Same(t, sk, pending)
	assert.Equal(t, []*model.Combatant{p.orc, p.goblin}, s.Candidates())

	res, err := s.Resolve(p.orc)
	require.NoError(t, err)
	assert.False(t, res.Fizzled)
	require.Len(t, res.Results, 1)
	assert.Equal(t, skill.OutcomeApplied, res.Results[0].Outcome)
	assert.Equal(t, int32(80), p.orc.CurrentHP())
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.IsTargeting())

	turn, err = s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.orc, turn.Actor)
}

func TestSession_ResolveWithoutSelection(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	_, err := s.Resolve(p.orc)
	assert.ErrorIs(t, err, ErrNotTargeting)

	_, err = s.NextTurn()
	require.NoError(t, err)
	_, err = s.Resolve(p.orc)
	assert.ErrorIs(t, err, ErrNotTargeting)

	_, err = s.NextTurn()
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSession_CancelHasNoSideEffects(t *testing.T) {
	p := newParty()
	s := newSession(t, p)
	require.True(t, p.knight.AddModifier(model.StatDefense, 5, 1))

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(slash(20)))
	s.Events()

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.IsTargeting())
	assert.Equal(t, []EventKind{EventTargetingCancelled}, kinds(s.Events()))

	// No turn consumed, no status tick, no damage.
	assert.Equal(t, int32(100), p.orc.CurrentHP())
	assert.True(t, p.knight.HasModifier(model.StatDefense))

	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.knight, turn.Actor)

	assert.ErrorIs(t, New(p.roster, nil).Cancel(), ErrWrongState)
}

func TestSession_FizzleConsumesTurn(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(slash(20)))
	s.Events()

	// Clicking an ally with an enemy skill yields no targets.
	res, err := s.Resolve(p.cleric)
	require.NoError(t, err)
	assert.True(t, res.Fizzled)
	assert.Empty(t, res.Results)
	assert.Equal(t, int32(100), p.cleric.CurrentHP())
	assert.Equal(t, []EventKind{EventCastFizzled, EventTurnEnded}, kinds(s.Events()))

	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.orc, turn.Actor)
}

func TestSession_SkillLocationGate(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	prayer := &skill.Skill{
		ID:          "prayer",
		Target:      targeting.Rule{Axis: targeting.AxisAlly, Area: targeting.AreaEntire},
		UseLocation: model.LocationBack,
		Effects:     []skill.Effect{skill.Heal(10)},
	}

	assert.ErrorIs(t, s.SelectSkill(prayer), ErrWrongState)

	_, err := s.NextTurn()
	require.NoError(t, err)
	assert.ErrorIs(t, s.SelectSkill(prayer), ErrSkillUnusable)
	assert.ErrorIs(t, s.SelectSkill(nil), ErrSkillUnusable)
	assert.Equal(t, StateActiveUnitChosen, s.State())

	usable := s.UsableSkills([]*skill.Skill{prayer, slash(1)})
	require.Len(t, usable, 1)
	assert.Equal(t, "slash", usable[0].ID)
}

func TestSession_StunnedUnitPasses(t *testing.T) {
	p := newParty()
	s := newSession(t, p)
	p.orc.AddCrowdControl(model.CrowdControlStun, 1)

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.Pass())

	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.orc, turn.Actor)
	assert.True(t, turn.Skipped)
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, p.orc.CanAct(), "stun expires at the end of the skipped turn")

	turn, err = s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.cleric, turn.Actor)
}

func TestSession_DotTicksAtEndOfOwnTurn(t *testing.T) {
	p := newParty()
	s := newSession(t, p)
	p.orc.AddDot("Poison", 5, 2)

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.Pass())
	assert.Equal(t, int32(100), p.orc.CurrentHP(), "knight's turn end does not tick the orc")

	_, err = s.NextTurn()
	require.NoError(t, err)
	s.Events()
	require.NoError(t, s.Pass())
	assert.Equal(t, int32(95), p.orc.CurrentHP())

	events := s.Events()
	assert.Equal(t, []EventKind{EventHPChanged, EventStatusTick, EventTurnEnded}, kinds(events))
	assert.Equal(t, int32(5), events[1].Amount)
}

func TestSession_TauntRedirect(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	provoke := &skill.Skill{
		ID:      "provoke",
		Target:  targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaSingle},
		Effects: []skill.Effect{skill.InflictDebuff(skill.DebuffTaunt, 1, 0, 2)},
	}

	// Knight taunts the orc.
	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(provoke))
	_, err = s.Resolve(p.orc)
	require.NoError(t, err)
	assert.Same(t, p.knight, s.Protector(model.SideAlly))
	assert.True(t, p.orc.HasCrowdControl(model.CrowdControlTaunt))

	// Orc's single-target attack is forced onto the knight.
	turn, err := s.NextTurn()
	require.NoError(t, err)
	require.Same(t, p.orc, turn.Actor)
	require.NoError(t, s.SelectSkill(slash(30)))
	assert.Equal(t, []*model.Combatant{p.knight}, s.Candidates())

	res, err := s.Resolve(p.cleric)
	require.NoError(t, err)
	assert.Equal(t, []*model.Combatant{p.knight}, res.Targets)
	assert.Equal(t, int32(70), p.knight.CurrentHP())
	assert.Equal(t, int32(100), p.cleric.CurrentHP())

	// Area skills ignore the protector.
	_, err = s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.Pass())
	_, err = s.NextTurn()
	require.NoError(t, err)
	quake := &skill.Skill{
		ID:      "quake",
		Target:  targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaEntire},
		Effects: []skill.Effect{skill.Damage(1)},
	}
	require.NoError(t, s.SelectSkill(quake))
	assert.Len(t, s.Candidates(), 2)

	// The goblin was never taunted, so its single-target attack is free.
	require.False(t, p.goblin.HasCrowdControl(model.CrowdControlTaunt))
	require.NoError(t, s.SelectSkill(slash(10)))
	assert.Equal(t, []*model.Combatant{p.knight, p.cleric}, s.Candidates())
	require.NoError(t, s.Pass())

	// The registration ends when the knight's own turn starts.
	turn, err = s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.knight, turn.Actor)
	assert.Nil(t, s.Protector(model.SideAlly))
}

func TestSession_TauntCleansedFreesTarget(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	provoke := &skill.Skill{
		ID:      "provoke",
		Target:  targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaSingle},
		Effects: []skill.Effect{skill.InflictDebuff(skill.DebuffTaunt, 1, 0, 2)},
	}

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(provoke))
	_, err = s.Resolve(p.orc)
	require.NoError(t, err)

	require.True(t, p.orc.RemoveCrowdControl(model.CrowdControlTaunt))

	turn, err := s.NextTurn()
	require.NoError(t, err)
	require.Same(t, p.orc, turn.Actor)
	assert.Same(t, p.knight, s.Protector(model.SideAlly), "registration outlives the cleansed CC")

	require.NoError(t, s.SelectSkill(slash(30)))
	assert.Equal(t, []*model.Combatant{p.knight, p.cleric}, s.Candidates())

	res, err := s.Resolve(p.cleric)
	require.NoError(t, err)
	assert.Equal(t, []*model.Combatant{p.cleric}, res.Targets)
	assert.Equal(t, int32(70), p.cleric.CurrentHP())
	assert.Equal(t, int32(100), p.knight.CurrentHP())
}

func TestSession_EffectOrderWithinSkill(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	expose := &skill.Skill{
		ID:     "expose",
		Target: targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaSingle},
		Effects: []skill.Effect{
			skill.InflictDebuff(skill.DebuffSign, 1, 0, 2),
			skill.MarkedDamage(40, combat.DefaultMarkedBonus),
		},
	}

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(expose))
	res, err := s.Resolve(p.goblin)
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, skill.EffectInflictDebuff, res.Results[0].Kind)
	assert.Equal(t, skill.EffectMarkedDamage, res.Results[1].Kind)
	assert.Equal(t, int32(46), res.Results[1].Amount)
	assert.Equal(t, int32(54), p.goblin.CurrentHP())
}

func TestSession_BattleOver(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	wipe := &skill.Skill{
		ID:      "wipe",
		Target:  targeting.Rule{Axis: targeting.AxisEnemy, Area: targeting.AreaEntire},
		Effects: []skill.Effect{skill.Damage(500)},
	}

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(wipe))
	res, err := s.Resolve(p.orc)
	require.NoError(t, err)
	assert.Len(t, res.Targets, 2)

	assert.Equal(t, Outcome{Decided: true, Winner: model.SideAlly}, s.Outcome())

	_, err = s.NextTurn()
	assert.ErrorIs(t, err, ErrBattleOver)
	_, err = s.NextTurn()
	assert.ErrorIs(t, err, ErrBattleOver)

	var ended int
	for _, e := range s.Events() {
		if e.Kind == EventBattleEnded {
			ended++
		}
	}
	assert.Equal(t, 1, ended)
}

func TestSession_DeathEventsForwarded(t *testing.T) {
	p := newParty()
	s := newSession(t, p)

	_, err := s.NextTurn()
	require.NoError(t, err)
	require.NoError(t, s.SelectSkill(slash(200)))
	s.Events()
	_, err = s.Resolve(p.orc)
	require.NoError(t, err)

	events := s.Events()
	assert.Equal(t, []EventKind{EventHPChanged, EventDied, EventEffectResolved, EventTurnEnded}, kinds(events))
	assert.Equal(t, p.orc.ID(), events[1].TargetID)
	assert.Equal(t, int32(0), events[0].NewHP)

	// The dead orc is skipped by the scheduler.
	turn, err := s.NextTurn()
	require.NoError(t, err)
	assert.Same(t, p.cleric, turn.Actor)
}
