package combat

import (
	"log/slog"
	"math"

	"github.com/udisondev/partybattle/internal/model"
)

// SpeedHitFactor is how much each point of defender speed lowers hit chance.
const SpeedHitFactor = 3

// DefaultMarkedBonus is the extra damage ratio against a marked target.
const DefaultMarkedBonus = 0.15

// HitChance returns hit chance in percent, clamped to 0..100.
//
//	chance = clamp(attackerHit - defenderSpeed*3 + correction, 0, 100)
func HitChance(attackerHit, defenderSpeed, correction int32) int32 {
	chance := attackerHit - defenderSpeed*SpeedHitFactor + correction
	return min(max(chance, 0), 100)
}

// IsHit reports whether roll (in [0,100)) lands under chance.
func IsHit(chance int32, roll float64) bool {
	return roll < float64(chance)
}

// RollHit draws a roll and resolves the attack.
// Nil attacker or defender never hits.
func RollHit(r Roller, attacker, defender *model.Combatant, correction int32) bool {
	if attacker == nil || defender == nil {
		return false
	}
	chance := HitChance(attacker.Hit(), defender.Speed(), correction)
	roll := r.Float64() * 100
	hit := IsHit(chance, roll)

	slog.Debug("hit roll",
		"attacker", attacker.ID(),
		"defender", defender.ID(),
		"chance", chance,
		"roll", roll,
		"hit", hit)

	return hit
}

// PhysicalDamage mitigates raw damage by defense percent:
//
//	final = raw - floor(raw*defense/100)
//
// Both inputs are clamped to >= 0; the result is within [0, raw].
func PhysicalDamage(raw, defense int32) int32 {
	raw = max(raw, 0)
	defense = max(defense, 0)
	mitigation := int64(raw) * int64(defense) / 100
	return int32(max(int64(raw)-mitigation, 0))
}

// MagicDamage subtracts resistance flat from raw, flooring at 0.
// Unlike PhysicalDamage this is not percentage-scaled.
func MagicDamage(raw, resistance int32) int32 {
	return max(max(raw, 0)-max(resistance, 0), 0)
}

// MarkedRaw scales raw damage by (1 + bonus), rounding to nearest.
func MarkedRaw(raw int32, bonus float64) int32 {
	return int32(math.Round(float64(raw) * (1 + bonus)))
}

// PercentHeal returns max(1, floor(maxHP * rate)).
func PercentHeal(maxHP int32, rate float64) int32 {
	return max(int32(math.Floor(float64(maxHP)*rate)), 1)
}
