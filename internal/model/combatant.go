package model

import "log/slog"

// Side partitions the roster for every targeting filter.
type Side int8

const (
	SideAlly Side = iota
	SideEnemy
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideAlly {
		return SideEnemy
	}
	return SideAlly
}

func (s Side) String() string {
	if s == SideAlly {
		return "ally"
	}
	return "enemy"
}

// Location is the row a combatant stands in.
// LocationNone never matches a Front/Back requirement.
type Location int8

const (
	LocationNone Location = iota
	LocationFront
	LocationBack
)

func (l Location) String() string {
	switch l {
	case LocationFront:
		return "front"
	case LocationBack:
		return "back"
	default:
		return "none"
	}
}

// SourceKind tells whether a combatant was built from a hero or a monster record.
type SourceKind int8

const (
	SourceHero SourceKind = iota
	SourceMonster
)

// Source is the backing record a combatant was created from.
// Persistence reads it after battle to map results back to saves.
type Source struct {
	Kind       SourceKind
	TemplateID string
}

// Combatant is the runtime record of one battle participant.
//
// Invariant: 0 <= currentHP <= maxHP. Reaching 0 HP (or Kill) moves the
// combatant to the terminal dead state exactly once.
//
// A Combatant is owned by a single battle session and is not safe for
// concurrent mutation. Collaborators read it between session calls.
type Combatant struct {
	id       uint32
	name     string
	side     Side
	location Location
	source   Source

	level      int32
	experience int64

	base      Stats
	deltas    [statCount]int32
	currentHP int32

	killed bool
	dead   bool

	status statusSet

	observers []func(Event)
}

// NewCombatant creates a combatant at full HP.
// MaxHP below 1 is raised to 1.
func NewCombatant(id uint32, name string, side Side, loc Location, src Source, stats Stats) *Combatant {
	if stats.MaxHP < 1 {
		stats.MaxHP = 1
	}
	return &Combatant{
		id:        id,
		name:      name,
		side:      side,
		location:  loc,
		source:    src,
		level:     1,
		base:      stats,
		currentHP: stats.MaxHP,
		status:    newStatusSet(),
	}
}

func (c *Combatant) ID() uint32         { return c.id }
func (c *Combatant) Name() string       { return c.name }
func (c *Combatant) Side() Side         { return c.side }
func (c *Combatant) Location() Location { return c.location }
func (c *Combatant) Source() Source     { return c.source }
func (c *Combatant) Level() int32       { return c.level }
func (c *Combatant) Experience() int64  { return c.experience }

// SetLocation moves the combatant to another row.
func (c *Combatant) SetLocation(loc Location) { c.location = loc }

// SetProgress sets level and experience carried from the save record.
func (c *Combatant) SetProgress(level int32, experience int64) {
	if level < 1 {
		level = 1
	}
	c.level = level
	c.experience = experience
}

// GainExperience adds experience. Non-positive amounts are ignored.
func (c *Combatant) GainExperience(exp int64) {
	if exp > 0 {
		c.experience += exp
	}
}

// CurrentHP returns current HP.
func (c *Combatant) CurrentHP() int32 { return c.currentHP }

// MaxHP returns maximum HP.
func (c *Combatant) MaxHP() int32 { return c.base.MaxHP }

// IsAlive reports currentHP > 0 and not explicitly killed.
func (c *Combatant) IsAlive() bool {
	return !c.dead && !c.killed && c.currentHP > 0
}

// IsDead is the negation of IsAlive.
func (c *Combatant) IsDead() bool { return !c.IsAlive() }

// Subscribe registers an observer for HP-changed and died notifications.
// Observers are called synchronously and must not block.
func (c *Combatant) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	c.observers = append(c.observers, fn)
}

func (c *Combatant) notify(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}

// ApplyDamage subtracts amount from HP, flooring at 0.
// Negative amounts are treated as 0. Returns the HP actually removed.
// Dead combatants are not affected.
func (c *Combatant) ApplyDamage(amount int32) int32 {
	if c.IsDead() {
		return 0
	}
	if amount < 0 {
		amount = 0
	}

	old := c.currentHP
	hp := old - amount
	if hp < 0 {
		hp = 0
	}
	c.currentHP = hp

	c.notify(Event{Kind: EventHPChanged, CombatantID: c.id, OldHP: old, NewHP: hp})

	if hp == 0 {
		c.die()
	}
	return old - hp
}

// HealHP restores HP, clamping at maxHP. Dead combatants are never healed.
// Returns the HP actually restored.
func (c *Combatant) HealHP(amount int32) int32 {
	if c.IsDead() || amount <= 0 {
		return 0
	}

	old := c.currentHP
	hp := old + amount
	if hp > c.base.MaxHP {
		hp = c.base.MaxHP
	}
	c.currentHP = hp

	if hp != old {
		c.notify(Event{Kind: EventHPChanged, CombatantID: c.id, OldHP: old, NewHP: hp})
	}
	return hp - old
}

// Kill moves the combatant to the dead state without touching HP.
func (c *Combatant) Kill() {
	if c.dead {
		return
	}
	c.killed = true
	c.die()
}

// die performs the one-time death transition.
func (c *Combatant) die() {
	if c.dead {
		return
	}
	c.dead = true
	slog.Debug("combatant died", "id", c.id, "name", c.name, "side", c.side)
	c.notify(Event{Kind: EventDied, CombatantID: c.id, OldHP: c.currentHP, NewHP: c.currentHP})
}
