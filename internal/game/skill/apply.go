package skill

import (
	"log/slog"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/model"
)

// TauntRegistrar records the caster of a Taunt as protector of its side.
// Implemented by the battle session.
type TauntRegistrar interface {
	RegisterTaunt(protector *model.Combatant)
}

// Env carries per-cast collaborators into Apply.
type Env struct {
	Roller        combat.Roller
	HitCorrection int32
	Taunts        TauntRegistrar
}

// zeroRoller always draws 0: attacks with positive chance hit, debuffs land.
type zeroRoller struct{}

func (zeroRoller) Float64() float64 { return 0 }

func (env Env) roller() combat.Roller {
	if env.Roller == nil {
		return zeroRoller{}
	}
	return env.Roller
}

// Outcome classifies what an effect did to one target.
type Outcome int8

const (
	OutcomeSkipped  Outcome = iota // nil or dead target
	OutcomeApplied                 // state changed (or callback ran)
	OutcomeMissed                  // hit roll or debuff chance failed
	OutcomeRejected                // first-wins collision
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeMissed:
		return "missed"
	case OutcomeRejected:
		return "rejected"
	default:
		return "skipped"
	}
}

// Result reports the effect of Apply on a single target.
// Amount is HP removed/restored, or the number of statuses removed.
type Result struct {
	Kind     EffectKind
	TargetID uint32
	Outcome  Outcome
	Amount   int32
}

// Apply runs the effect against target. A nil or dead target is a no-op.
// Only the target's own state is mutated, except Taunt which also registers
// the caster with env.Taunts.
func (e Effect) Apply(env Env, caster, target *model.Combatant) Result {
	res := Result{Kind: e.Kind}
	if target == nil || target.IsDead() {
		return res
	}
	res.TargetID = target.ID()

	switch e.Kind {
	case EffectDamage, EffectMagicDamage, EffectMarkedDamage:
		return e.applyDamage(env, caster, target, res)
	case EffectHeal:
		return e.applyHeal(caster, target, res)
	case EffectAbilityModify:
		return e.applyModify(target, res)
	case EffectInflictDebuff:
		return e.applyDebuff(env, caster, target, res)
	case EffectCleanse:
		return e.applyCleanse(target, res)
	case EffectScripted:
		if e.Script == nil {
			slog.Debug("scripted effect without callback", "script", e.ScriptID, "target", target.ID())
			return res
		}
		e.Script(caster, target)
		slog.Debug("scripted effect", "script", e.ScriptID, "target", target.ID())
		res.Outcome = OutcomeApplied
		return res
	default:
		slog.Warn("unknown effect kind", "kind", int(e.Kind))
		return res
	}
}

func (e Effect) applyDamage(env Env, caster, target *model.Combatant, res Result) Result {
	if caster == nil {
		return res
	}
	if !combat.RollHit(env.roller(), caster, target, env.HitCorrection) {
		slog.Debug("attack missed", "effect", e.Kind, "caster", caster.ID(), "target", target.ID())
		res.Outcome = OutcomeMissed
		return res
	}

	raw := e.Damage.Power + caster.DamageBonus()
	var final int32
	switch e.Kind {
	case EffectMagicDamage:
		final = combat.MagicDamage(raw, target.Resistance())
	case EffectMarkedDamage:
		if target.IsMarked() {
			raw = combat.MarkedRaw(raw, e.Damage.Bonus)
		}
		final = combat.PhysicalDamage(raw, target.Defense())
	default:
		final = combat.PhysicalDamage(raw, target.Defense())
	}

	res.Amount = target.ApplyDamage(final)
	res.Outcome = OutcomeApplied

	slog.Debug("damage dealt",
		"effect", e.Kind,
		"raw", raw,
		"damage", res.Amount,
		"caster", caster.ID(),
		"target", target.ID())
	return res
}

func (e Effect) applyHeal(caster, target *model.Combatant, res Result) Result {
	var amount int32
	if e.Heal.Percent {
		amount = combat.PercentHeal(target.MaxHP(), e.Heal.Rate)
	} else {
		amount = e.Heal.Amount
		if caster != nil {
			amount += caster.HealBonus()
		}
	}

	res.Amount = target.HealHP(amount)
	res.Outcome = OutcomeApplied
	slog.Debug("heal", "amount", amount, "healed", res.Amount, "target", target.ID())
	return res
}

func (e Effect) applyModify(target *model.Combatant, res Result) Result {
	if e.Modify.Remove {
		res.Amount = int32(target.ClearDebuffs())
		res.Outcome = OutcomeApplied
		slog.Debug("debuffs removed", "count", res.Amount, "target", target.ID())
		return res
	}

	if !target.AddModifier(e.Modify.Stat, e.Modify.Value, e.Duration) {
		res.Outcome = OutcomeRejected
		return res
	}
	res.Outcome = OutcomeApplied
	res.Amount = e.Modify.Value
	slog.Debug("ability modified",
		"stat", e.Modify.Stat,
		"value", e.Modify.Value,
		"turns", e.Duration,
		"target", target.ID())
	return res
}

func (e Effect) applyDebuff(env Env, caster, target *model.Combatant, res Result) Result {
	draw := env.roller().Float64()
	if draw > e.Debuff.Chance {
		slog.Debug("debuff resisted", "debuff", e.Debuff.Kind, "draw", draw, "chance", e.Debuff.Chance, "target", target.ID())
		res.Outcome = OutcomeMissed
		return res
	}

	switch e.Debuff.Kind {
	case DebuffPoison, DebuffBleeding, DebuffBurn:
		target.AddDot(e.Debuff.Kind.String(), e.Debuff.Power, e.Duration)
	case DebuffSign:
		target.SetMark(e.Duration)
	case DebuffFaint:
		target.AddCrowdControl(model.CrowdControlStun, e.Duration)
	case DebuffTaunt:
		target.AddCrowdControl(model.CrowdControlTaunt, e.Duration)
		if env.Taunts != nil && caster != nil {
			env.Taunts.RegisterTaunt(caster)
		}
	}

	res.Outcome = OutcomeApplied
	slog.Debug("debuff inflicted", "debuff", e.Debuff.Kind, "turns", e.Duration, "target", target.ID())
	return res
}

func (e Effect) applyCleanse(target *model.Combatant, res Result) Result {
	kinds := e.Cleanse.Kinds
	if len(kinds) == 0 {
		kinds = AllDebuffs
	}

	var removed int32
	for _, k := range kinds {
		if removeDebuff(target, k) {
			removed++
		}
	}

	res.Amount = removed
	res.Outcome = OutcomeApplied
	slog.Debug("cleanse", "removed", removed, "target", target.ID())
	return res
}

func removeDebuff(target *model.Combatant, k DebuffKind) bool {
	switch k {
	case DebuffPoison, DebuffBleeding, DebuffBurn:
		return target.RemoveDot(k.String())
	case DebuffSign:
		return target.ClearMark()
	case DebuffFaint:
		return target.RemoveCrowdControl(model.CrowdControlStun)
	case DebuffTaunt:
		return target.RemoveCrowdControl(model.CrowdControlTaunt)
	default:
		return false
	}
}
