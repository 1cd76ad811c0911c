package model

import (
	"log/slog"
	"maps"
	"slices"
)

// CC names recognised by the engine.
const (
	CrowdControlStun  = "Stun"
	CrowdControlTaunt = "Taunt"
)

// TimedModifier is a signed stat delta that expires after Remaining turns.
// Reverting subtracts exactly Value.
type TimedModifier struct {
	Stat      StatKind
	Value     int32
	Remaining int32
}

// IsDebuff reports whether the modifier lowers the stat.
func (m TimedModifier) IsDebuff() bool { return m.Value < 0 }

// DotInstance is a damage-over-time entry.
type DotInstance struct {
	Name          string
	DamagePerTurn int32
	Remaining     int32
	Stacks        int32
}

// Mark is a binary tag consumed by bonus-damage effects.
type Mark struct {
	Active    bool
	Remaining int32
}

// TickReport summarises one status checkpoint for logging and events.
type TickReport struct {
	DotDamage        int32
	ExpiredDots      []string
	ExpiredModifiers []TimedModifier
	ExpiredCC        []string
	MarkExpired      bool
}

// Empty reports whether nothing happened during the tick.
func (r TickReport) Empty() bool {
	return r.DotDamage == 0 && len(r.ExpiredDots) == 0 && len(r.ExpiredModifiers) == 0 &&
		len(r.ExpiredCC) == 0 && !r.MarkExpired
}

type statusSet struct {
	modifiers []TimedModifier
	dots      []DotInstance
	cc        map[string]int32
	mark      Mark
	canAct    bool
}

func newStatusSet() statusSet {
	return statusSet{
		modifiers: make([]TimedModifier, 0, 4),
		dots:      make([]DotInstance, 0, 4),
		cc:        make(map[string]int32),
		canAct:    true,
	}
}

func minTurns(turns int32) int32 {
	if turns < 1 {
		return 1
	}
	return turns
}

// CanAct is false while the combatant is stunned or dead.
func (c *Combatant) CanAct() bool {
	return c.IsAlive() && c.status.canAct
}

// HasModifier reports whether a modifier on stat k is active.
func (c *Combatant) HasModifier(k StatKind) bool {
	return slices.ContainsFunc(c.status.modifiers, func(m TimedModifier) bool { return m.Stat == k })
}

// AddModifier registers a timed modifier under the first-wins policy.
// If a modifier on the same stat is already active the call is rejected and
// nothing changes. On success the delta is applied immediately.
func (c *Combatant) AddModifier(k StatKind, value, turns int32) bool {
	if c.IsDead() || k < 0 || k >= statCount {
		return false
	}
	if c.HasModifier(k) {
		slog.Debug("modifier rejected, already active", "target", c.id, "stat", k, "value", value)
		return false
	}

	mod := TimedModifier{Stat: k, Value: value, Remaining: minTurns(turns)}
	c.status.modifiers = append(c.status.modifiers, mod)
	c.deltas[k] += value
	return true
}

// ActiveModifiers returns a copy of active modifiers.
func (c *Combatant) ActiveModifiers() []TimedModifier {
	return slices.Clone(c.status.modifiers)
}

// IsBuffed reports whether any non-negative modifier is active.
func (c *Combatant) IsBuffed() bool {
	return slices.ContainsFunc(c.status.modifiers, func(m TimedModifier) bool { return !m.IsDebuff() })
}

// IsDebuffed reports whether any negative modifier is active.
func (c *Combatant) IsDebuffed() bool {
	return slices.ContainsFunc(c.status.modifiers, TimedModifier.IsDebuff)
}

func (c *Combatant) revert(m TimedModifier) {
	c.deltas[m.Stat] -= m.Value
}

// AddDot adds or merges a damage-over-time instance.
// Same name: damage per turn accumulates, remaining becomes the longer of the two.
func (c *Combatant) AddDot(name string, damagePerTurn, turns int32) {
	if c.IsDead() {
		return
	}
	turns = minTurns(turns)
	for i := range c.status.dots {
		d := &c.status.dots[i]
		if d.Name != name {
			continue
		}
		d.DamagePerTurn += damagePerTurn
		d.Remaining = max(d.Remaining, turns)
		d.Stacks++
		return
	}
	c.status.dots = append(c.status.dots, DotInstance{
		Name:          name,
		DamagePerTurn: damagePerTurn,
		Remaining:     turns,
		Stacks:        1,
	})
}

// RemoveDot drops a DOT regardless of remaining turns or stacks.
func (c *Combatant) RemoveDot(name string) bool {
	n := len(c.status.dots)
	c.status.dots = slices.DeleteFunc(c.status.dots, func(d DotInstance) bool { return d.Name == name })
	return len(c.status.dots) != n
}

// ActiveDots returns a copy of active DOT instances.
func (c *Combatant) ActiveDots() []DotInstance {
	return slices.Clone(c.status.dots)
}

// HasDot reports whether a DOT with this name is active.
func (c *Combatant) HasDot(name string) bool {
	return slices.ContainsFunc(c.status.dots, func(d DotInstance) bool { return d.Name == name })
}

// AddCrowdControl sets a CC entry. An existing entry keeps the longer duration.
func (c *Combatant) AddCrowdControl(name string, turns int32) {
	if c.IsDead() {
		return
	}
	c.status.cc[name] = max(c.status.cc[name], minTurns(turns))
	c.deriveCanAct()
}

// RemoveCrowdControl drops a CC entry.
func (c *Combatant) RemoveCrowdControl(name string) bool {
	if _, ok := c.status.cc[name]; !ok {
		return false
	}
	delete(c.status.cc, name)
	c.deriveCanAct()
	return true
}

// HasCrowdControl reports whether the named CC is active.
func (c *Combatant) HasCrowdControl(name string) bool {
	_, ok := c.status.cc[name]
	return ok
}

// CrowdControl returns a copy of the CC map (name -> remaining turns).
func (c *Combatant) CrowdControl() map[string]int32 {
	return maps.Clone(c.status.cc)
}

func (c *Combatant) deriveCanAct() {
	_, stunned := c.status.cc[CrowdControlStun]
	c.status.canAct = !stunned
}

// SetMark applies the mark; an active mark keeps the longer duration.
func (c *Combatant) SetMark(turns int32) {
	if c.IsDead() {
		return
	}
	c.status.mark.Active = true
	c.status.mark.Remaining = max(c.status.mark.Remaining, minTurns(turns))
}

// ClearMark removes the mark.
func (c *Combatant) ClearMark() bool {
	was := c.status.mark.Active
	c.status.mark = Mark{}
	return was
}

// IsMarked reports whether the mark is active.
func (c *Combatant) IsMarked() bool { return c.status.mark.Active }

// MarkState returns the current mark.
func (c *Combatant) MarkState() Mark { return c.status.mark }

// ClearDebuffs removes every negative modifier (reverting it), all DOTs,
// all CC entries and the mark. Returns the number of entries removed.
func (c *Combatant) ClearDebuffs() int {
	removed := 0

	kept := c.status.modifiers[:0]
	for _, m := range c.status.modifiers {
		if m.IsDebuff() {
			c.revert(m)
			removed++
			continue
		}
		kept = append(kept, m)
	}
	c.status.modifiers = kept

	removed += len(c.status.dots)
	c.status.dots = c.status.dots[:0]

	removed += len(c.status.cc)
	clear(c.status.cc)
	c.deriveCanAct()

	if c.ClearMark() {
		removed++
	}
	return removed
}

// TickStatus runs the end-of-turn checkpoint. It must be called exactly once
// per combatant per round.
//
// Order: DOT damage (batched), modifier countdown and revert, CC countdown
// and canAct re-derivation, mark countdown.
func (c *Combatant) TickStatus() TickReport {
	var rep TickReport
	if c.IsDead() {
		return rep
	}

	// DOTs: decide on the pre-tick snapshot, then apply damage once.
	snapshot := slices.Clone(c.status.dots)
	next := make([]DotInstance, 0, len(snapshot))
	for _, d := range snapshot {
		rep.DotDamage += d.DamagePerTurn
		d.Remaining--
		if d.Remaining <= 0 {
			rep.ExpiredDots = append(rep.ExpiredDots, d.Name)
			continue
		}
		next = append(next, d)
	}
	c.status.dots = next
	if rep.DotDamage > 0 {
		c.ApplyDamage(rep.DotDamage)
	}

	kept := c.status.modifiers[:0]
	for _, m := range c.status.modifiers {
		m.Remaining--
		if m.Remaining <= 0 {
			c.revert(m)
			rep.ExpiredModifiers = append(rep.ExpiredModifiers, m)
			continue
		}
		kept = append(kept, m)
	}
	c.status.modifiers = kept

	for name, turns := range c.status.cc {
		turns--
		if turns <= 0 {
			delete(c.status.cc, name)
			rep.ExpiredCC = append(rep.ExpiredCC, name)
			continue
		}
		c.status.cc[name] = turns
	}
	slices.Sort(rep.ExpiredCC)
	c.deriveCanAct()

	if c.status.mark.Active {
		c.status.mark.Remaining--
		if c.status.mark.Remaining <= 0 {
			c.status.mark = Mark{}
			rep.MarkExpired = true
		}
	}

	if !rep.Empty() {
		slog.Debug("status tick",
			"target", c.id,
			"dotDamage", rep.DotDamage,
			"expiredModifiers", len(rep.ExpiredModifiers),
			"expiredCC", rep.ExpiredCC,
			"markExpired", rep.MarkExpired)
	}
	return rep
}
