package sim

import (
	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/model"
)

// HealThreshold is the HP ratio under which the picker prefers healing.
const HealThreshold = 0.5

// Picker stands in for the UI: it orders the skills to try and chooses a
// target from the highlighted candidates.
type Picker interface {
	Order(actor *model.Combatant, usable []*skill.Skill, roster []*model.Combatant) []*skill.Skill
	Target(actor *model.Combatant, sk *skill.Skill, candidates []*model.Combatant) *model.Combatant
}

// GreedyPicker heals wounded allies first, otherwise attacks with a random
// usable skill and focuses the weakest candidate.
type GreedyPicker struct {
	Roller combat.Roller
}

// Order puts healing skills first when an ally is below HealThreshold and
// last otherwise. Within each group skills rotate from a random offset.
func (p GreedyPicker) Order(actor *model.Combatant, usable []*skill.Skill, roster []*model.Combatant) []*skill.Skill {
	if len(usable) == 0 {
		return nil
	}

	start := 0
	if p.Roller != nil {
		start = min(int(p.Roller.Float64()*float64(len(usable))), len(usable)-1)
	}

	var heals, rest []*skill.Skill
	for i := range usable {
		sk := usable[(start+i)%len(usable)]
		if isHealing(sk) {
			heals = append(heals, sk)
		} else {
			rest = append(rest, sk)
		}
	}

	if woundedAlly(actor, roster) {
		return append(heals, rest...)
	}
	return append(rest, heals...)
}

// Target picks the candidate with the lowest HP ratio.
// Ties keep the first candidate in roster order.
func (p GreedyPicker) Target(_ *model.Combatant, _ *skill.Skill, candidates []*model.Combatant) *model.Combatant {
	var (
		best      *model.Combatant
		bestRatio float64
	)
	for _, c := range candidates {
		r := hpRatio(c)
		if best == nil || r < bestRatio {
			best, bestRatio = c, r
		}
	}
	return best
}

func woundedAlly(actor *model.Combatant, roster []*model.Combatant) bool {
	for _, c := range roster {
		if c.Side() == actor.Side() && c.IsAlive() && hpRatio(c) < HealThreshold {
			return true
		}
	}
	return false
}

func isHealing(sk *skill.Skill) bool {
	for _, e := range sk.Effects {
		if e.Kind == skill.EffectHeal {
			return true
		}
	}
	return false
}

func hpRatio(c *model.Combatant) float64 {
	return float64(c.CurrentHP()) / float64(c.MaxHP())
}
