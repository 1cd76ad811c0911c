package skill

import (
	"github.com/udisondev/partybattle/internal/game/targeting"
	"github.com/udisondev/partybattle/internal/model"
)

// Skill is an immutable skill definition shared by every caster.
// Do not modify after loading.
type Skill struct {
	ID   string
	Name string

	// Target is the targeting descriptor (axis, target location, area).
	Target targeting.Rule
	// UseLocation is the row the caster must stand in; None means anywhere.
	UseLocation model.Location

	Effects []Effect

	// HitCorrection overrides the default correction of 0 when set.
	HitCorrection *int32
}

// Correction returns the hit-chance correction for this skill.
func (s *Skill) Correction() int32 {
	if s.HitCorrection == nil {
		return 0
	}
	return *s.HitCorrection
}

// CanUse reports whether caster is alive and stands in the required row.
func (s *Skill) CanUse(caster *model.Combatant) bool {
	if caster == nil || caster.IsDead() {
		return false
	}
	if s.UseLocation == model.LocationNone {
		return true
	}
	return caster.Location() == s.UseLocation
}

// ApplyAll runs every effect in declaration order against every target.
// Effect order is the outer loop, so an earlier effect's state (e.g. a
// debuff) is visible to later effects on the same target.
func (s *Skill) ApplyAll(env Env, caster *model.Combatant, targets []*model.Combatant) []Result {
	results := make([]Result, 0, len(s.Effects)*len(targets))
	env.HitCorrection = s.Correction()
	for _, e := range s.Effects {
		for _, t := range targets {
			results = append(results, e.Apply(env, caster, t))
		}
	}
	return results
}
