// Package battle holds the battle session: the single context object that
// drives turns, targeting and effect application for one battle.
package battle

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/game/targeting"
	"github.com/udisondev/partybattle/internal/game/turn"
	"github.com/udisondev/partybattle/internal/model"
)

var (
	ErrEmptyRoster    = errors.New("battle roster is empty")
	ErrAlreadyStarted = errors.New("battle already started")
	ErrNotStarted     = errors.New("battle not started")
	ErrBattleOver     = errors.New("battle is over")
	ErrWrongState     = errors.New("operation not allowed in current state")
	ErrNotTargeting   = errors.New("no skill awaiting a target")
	ErrSkillUnusable  = errors.New("skill cannot be used by the active unit")
)

// State is the turn state machine.
type State int8

const (
	StateIdle State = iota
	StateActiveUnitChosen
	StateAwaitingResolution
	StateEffectsApplying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActiveUnitChosen:
		return "active_unit_chosen"
	case StateAwaitingResolution:
		return "awaiting_resolution"
	case StateEffectsApplying:
		return "effects_applying"
	default:
		return "unknown"
	}
}

// Turn is returned by NextTurn.
// Skipped is true when the unit could not act (stun); its turn already ended.
type Turn struct {
	Actor   *model.Combatant
	Round   int
	Skipped bool
}

// CastResult describes a resolved skill.
type CastResult struct {
	Caster  *model.Combatant
	Skill   *skill.Skill
	Targets []*model.Combatant
	Results []skill.Result
	Fizzled bool
}

// Outcome reports whether one side has been wiped out.
type Outcome struct {
	Decided bool
	Winner  model.Side
}

// Session is the battle context: created at battle start, discarded at
// battle end. It is the only writer of combatant state and is not safe for
// concurrent use.
type Session struct {
	roster []*model.Combatant
	sched  *turn.Scheduler
	roller combat.Roller

	started bool
	ended   bool
	state   State
	active  *model.Combatant
	pending *skill.Skill

	// protectors holds the taunt protector per side. A registration lasts
	// until the protector's own next turn starts.
	protectors map[model.Side]*model.Combatant

	events []Event
}

// New creates a session over roster. The roller drives every hit and debuff draw.
func New(roster []*model.Combatant, roller combat.Roller) *Session {
	s := &Session{
		roster:     slices.Clone(roster),
		sched:      turn.NewScheduler(),
		roller:     roller,
		protectors: make(map[model.Side]*model.Combatant, 2),
	}
	for _, c := range s.roster {
		c.Subscribe(s.onCombatantEvent)
	}
	return s
}

func (s *Session) onCombatantEvent(ev model.Event) {
	kind := EventHPChanged
	if ev.Kind == model.EventDied {
		kind = EventDied
	}
	s.push(Event{Kind: kind, TargetID: ev.CombatantID, OldHP: ev.OldHP, NewHP: ev.NewHP})
}

func (s *Session) push(ev Event) {
	ev.Round = s.sched.Round()
	s.events = append(s.events, ev)
}

// Events drains the outbound event queue.
func (s *Session) Events() []Event {
	out := s.events
	s.events = nil
	return out
}

// Roster returns the combatants in roster order.
func (s *Session) Roster() []*model.Combatant { return slices.Clone(s.roster) }

// TurnOrder returns the fixed turn order snapshot.
func (s *Session) TurnOrder() []*model.Combatant { return s.sched.Order() }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Round returns the current round (1-based once started).
func (s *Session) Round() int { return s.sched.Round() }

// IsTargeting reports whether a skill is waiting for a clicked target.
func (s *Session) IsTargeting() bool { return s.state == StateAwaitingResolution }

// Active returns the unit whose turn it is, or nil when idle.
func (s *Session) Active() *model.Combatant { return s.active }

// Pending returns the caster and skill awaiting a target.
func (s *Session) Pending() (*model.Combatant, *skill.Skill) {
	if s.state != StateAwaitingResolution {
		return nil, nil
	}
	return s.active, s.pending
}

// BeginBattle fixes the turn order and moves to idle.
func (s *Session) BeginBattle() error {
	if s.started {
		return ErrAlreadyStarted
	}
	if len(s.roster) == 0 {
		return ErrEmptyRoster
	}
	s.sched.Begin(s.roster)
	s.started = true
	s.state = StateIdle

	slog.Info("battle started", "combatants", len(s.roster))
	s.push(Event{Kind: EventBattleStarted})
	return nil
}

// Outcome reports the winner once one side has no live units.
func (s *Session) Outcome() Outcome {
	var allies, enemies int
	for _, c := range s.roster {
		if !c.IsAlive() {
			continue
		}
		if c.Side() == model.SideAlly {
			allies++
		} else {
			enemies++
		}
	}
	switch {
	case allies > 0 && enemies > 0:
		return Outcome{}
	case allies > 0:
		return Outcome{Decided: true, Winner: model.SideAlly}
	default:
		return Outcome{Decided: true, Winner: model.SideEnemy}
	}
}

// NextTurn chooses the acting unit. A unit that cannot act has its turn
// ended immediately (statuses still tick) and is returned with Skipped set.
func (s *Session) NextTurn() (Turn, error) {
	if !s.started {
		return Turn{}, ErrNotStarted
	}
	if s.state != StateIdle {
		return Turn{}, ErrWrongState
	}
	if s.finished() {
		return Turn{}, ErrBattleOver
	}

	actor := s.sched.Current()
	if actor == nil {
		return Turn{}, ErrBattleOver
	}

	s.releaseProtector(actor)
	s.push(Event{Kind: EventTurnStarted, ActorID: actor.ID()})
	t := Turn{Actor: actor, Round: s.sched.Round()}

	if !actor.CanAct() {
		slog.Debug("turn skipped", "actor", actor.ID(), "cc", actor.CrowdControl())
		s.push(Event{Kind: EventTurnSkipped, ActorID: actor.ID()})
		s.endTurn(actor)
		t.Skipped = true
		return t, nil
	}

	s.active = actor
	s.state = StateActiveUnitChosen
	return t, nil
}

// finished emits the end event once when the battle is decided.
func (s *Session) finished() bool {
	out := s.Outcome()
	if !out.Decided {
		return false
	}
	if !s.ended {
		s.ended = true
		slog.Info("battle ended", "winner", out.Winner, "round", s.sched.Round())
		s.push(Event{Kind: EventBattleEnded})
	}
	return true
}

// SelectSkill moves to awaiting-resolution for sk. Selecting again while
// awaiting replaces the pending skill.
func (s *Session) SelectSkill(sk *skill.Skill) error {
	if s.state != StateActiveUnitChosen && s.state != StateAwaitingResolution {
		return ErrWrongState
	}
	if sk == nil || !sk.CanUse(s.active) {
		return ErrSkillUnusable
	}
	s.pending = sk
	s.state = StateAwaitingResolution
	s.push(Event{Kind: EventSkillSelected, ActorID: s.active.ID(), SkillID: sk.ID})
	return nil
}

// UsableSkills filters skills by the active unit's location.
func (s *Session) UsableSkills(skills []*skill.Skill) []*skill.Skill {
	if s.active == nil {
		return nil
	}
	var out []*skill.Skill
	for _, sk := range skills {
		if sk.CanUse(s.active) {
			out = append(out, sk)
		}
	}
	return out
}

// Candidates returns the highlight set for the pending skill.
func (s *Session) Candidates() []*model.Combatant {
	if s.state != StateAwaitingResolution {
		return nil
	}
	if p := s.protectorFor(s.active, s.pending); p != nil {
		return []*model.Combatant{p}
	}
	return targeting.Candidates(s.active, s.roster, s.pending.Target)
}

// Resolve resolves the execution targets for clicked, applies every effect
// of the pending skill in order, ends the turn and advances.
// An empty target list fizzles: no effects run but the turn is consumed.
func (s *Session) Resolve(clicked *model.Combatant) (CastResult, error) {
	if s.state != StateAwaitingResolution {
		return CastResult{}, ErrNotTargeting
	}

	caster, sk := s.active, s.pending
	s.state = StateEffectsApplying

	if p := s.protectorFor(caster, sk); p != nil {
		clicked = p
	}
	targets := targeting.Resolve(caster, clicked, s.roster, sk.Target)
	res := CastResult{Caster: caster, Skill: sk, Targets: targets}

	if len(targets) == 0 {
		slog.Debug("cast fizzled", "caster", caster.ID(), "skill", sk.ID)
		s.push(Event{Kind: EventCastFizzled, ActorID: caster.ID(), SkillID: sk.ID})
		res.Fizzled = true
	} else {
		env := skill.Env{Roller: s.roller, Taunts: s}
		res.Results = sk.ApplyAll(env, caster, targets)
		for _, r := range res.Results {
			s.push(Event{
				Kind:     EventEffectResolved,
				ActorID:  caster.ID(),
				TargetID: r.TargetID,
				SkillID:  sk.ID,
				Effect:   r.Kind,
				Outcome:  r.Outcome,
				Amount:   r.Amount,
			})
		}
		slog.Debug("skill resolved", "caster", caster.ID(), "skill", sk.ID, "targets", len(targets))
	}

	s.endTurn(caster)
	return res, nil
}

// Cancel abandons skill selection and returns to idle with no side effects.
// The same unit is chosen again by the next NextTurn.
func (s *Session) Cancel() error {
	if s.state != StateActiveUnitChosen && s.state != StateAwaitingResolution {
		return ErrWrongState
	}
	actor := s.active
	s.active, s.pending = nil, nil
	s.state = StateIdle
	s.push(Event{Kind: EventTargetingCancelled, ActorID: actor.ID()})
	return nil
}

// Pass ends the active unit's turn without using a skill.
func (s *Session) Pass() error {
	if s.state != StateActiveUnitChosen && s.state != StateAwaitingResolution {
		return ErrWrongState
	}
	s.endTurn(s.active)
	return nil
}

// RegisterTaunt records protector as the taunt target of its side.
func (s *Session) RegisterTaunt(protector *model.Combatant) {
	if protector == nil || protector.IsDead() {
		return
	}
	s.protectors[protector.Side()] = protector
	slog.Debug("taunt protector registered", "protector", protector.ID(), "side", protector.Side())
	s.push(Event{Kind: EventTauntRegistered, ActorID: protector.ID()})
}

// Protector returns the registered taunt protector of side, if any.
func (s *Session) Protector(side model.Side) *model.Combatant {
	p := s.protectors[side]
	if p == nil || p.IsDead() {
		return nil
	}
	return p
}

// releaseProtector drops registrations that end at actor's turn start,
// along with protectors that died.
func (s *Session) releaseProtector(actor *model.Combatant) {
	for side, p := range s.protectors {
		if p == actor || p.IsDead() {
			delete(s.protectors, side)
		}
	}
}

// protectorFor returns the protector a single-target enemy skill must hit.
// Only a caster under Taunt is redirected; cleansing or expiring the CC
// frees it even while the protector stays registered.
func (s *Session) protectorFor(caster *model.Combatant, sk *skill.Skill) *model.Combatant {
	if caster == nil || sk == nil || !caster.HasCrowdControl(model.CrowdControlTaunt) {
		return nil
	}
	if sk.Target.Axis != targeting.AxisEnemy || sk.Target.Area != targeting.AreaSingle {
		return nil
	}
	p := s.Protector(caster.Side().Opposite())
	if p == nil || !targeting.IsCandidate(caster, p, sk.Target) {
		return nil
	}
	return p
}

// endTurn is the single per-unit status checkpoint, followed by advance.
func (s *Session) endTurn(c *model.Combatant) {
	rep := c.TickStatus()
	if !rep.Empty() {
		s.push(Event{Kind: EventStatusTick, TargetID: c.ID(), Amount: rep.DotDamage})
	}
	s.push(Event{Kind: EventTurnEnded, ActorID: c.ID()})

	s.active, s.pending = nil, nil
	s.state = StateIdle
	s.sched.Advance()
}
