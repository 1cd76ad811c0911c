package model

import (
	"fmt"
	"strings"
)

// StatKind names a stat that timed modifiers can change.
type StatKind int8

const (
	StatSpeed StatKind = iota
	StatDefense
	StatResistance
	StatHit
	StatDamageBonus
	StatHealBonus

	statCount
)

var statNames = [statCount]string{
	StatSpeed:       "speed",
	StatDefense:     "defense",
	StatResistance:  "resistance",
	StatHit:         "hit",
	StatDamageBonus: "damage_bonus",
	StatHealBonus:   "heal_bonus",
}

func (k StatKind) String() string {
	if k < 0 || k >= statCount {
		return "unknown"
	}
	return statNames[k]
}

// ParseStatKind converts a stat name (case-insensitive) to StatKind.
func ParseStatKind(name string) (StatKind, error) {
	for i, n := range statNames {
		if strings.EqualFold(n, name) {
			return StatKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// Stats holds base values as loaded from a hero or monster record.
type Stats struct {
	Speed       int32 `yaml:"speed"`
	MaxHP       int32 `yaml:"max_hp"`
	Defense     int32 `yaml:"defense"`
	Resistance  int32 `yaml:"resistance"`
	Hit         int32 `yaml:"hit"`
	DamageBonus int32 `yaml:"damage_bonus"`
	HealBonus   int32 `yaml:"heal_bonus"`
}

// Grow returns s plus growth applied steps times. Negative steps are ignored.
func (s Stats) Grow(growth Stats, steps int32) Stats {
	if steps <= 0 {
		return s
	}
	s.Speed += growth.Speed * steps
	s.MaxHP += growth.MaxHP * steps
	s.Defense += growth.Defense * steps
	s.Resistance += growth.Resistance * steps
	s.Hit += growth.Hit * steps
	s.DamageBonus += growth.DamageBonus * steps
	s.HealBonus += growth.HealBonus * steps
	return s
}

func (s Stats) get(k StatKind) int32 {
	switch k {
	case StatSpeed:
		return s.Speed
	case StatDefense:
		return s.Defense
	case StatResistance:
		return s.Resistance
	case StatHit:
		return s.Hit
	case StatDamageBonus:
		return s.DamageBonus
	case StatHealBonus:
		return s.HealBonus
	default:
		return 0
	}
}

// BaseStat returns the unmodified value of a stat.
func (c *Combatant) BaseStat(k StatKind) int32 {
	return c.base.get(k)
}

// Stat returns base value plus all active modifier deltas.
// There is no derived cache: the value is read through on every call.
func (c *Combatant) Stat(k StatKind) int32 {
	if k < 0 || k >= statCount {
		return 0
	}
	return c.base.get(k) + c.deltas[k]
}

// Speed returns effective speed.
func (c *Combatant) Speed() int32       { return c.Stat(StatSpeed) }
func (c *Combatant) Defense() int32     { return c.Stat(StatDefense) }
func (c *Combatant) Resistance() int32  { return c.Stat(StatResistance) }
func (c *Combatant) Hit() int32         { return c.Stat(StatHit) }
func (c *Combatant) DamageBonus() int32 { return c.Stat(StatDamageBonus) }
func (c *Combatant) HealBonus() int32   { return c.Stat(StatHealBonus) }
