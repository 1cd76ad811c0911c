package skill

import (
	"fmt"
	"strings"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/model"
)

// EffectKind is the variant tag of an Effect.
type EffectKind int8

const (
	EffectDamage EffectKind = iota
	EffectMagicDamage
	EffectMarkedDamage
	EffectHeal
	EffectAbilityModify
	EffectInflictDebuff
	EffectCleanse
	EffectScripted
)

var effectKindNames = [...]string{
	EffectDamage:        "Damage",
	EffectMagicDamage:   "MagicDamage",
	EffectMarkedDamage:  "MarkedDamage",
	EffectHeal:          "Heal",
	EffectAbilityModify: "AbilityModify",
	EffectInflictDebuff: "InflictDebuff",
	EffectCleanse:       "Cleanse",
	EffectScripted:      "Scripted",
}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(effectKindNames) {
		return "Unknown"
	}
	return effectKindNames[k]
}

// DebuffKind names a debuff that InflictDebuff and Cleanse operate on.
type DebuffKind int8

const (
	DebuffPoison DebuffKind = iota
	DebuffBleeding
	DebuffBurn
	DebuffSign
	DebuffFaint
	DebuffTaunt
)

// AllDebuffs is the default Cleanse subset.
var AllDebuffs = []DebuffKind{DebuffPoison, DebuffBleeding, DebuffBurn, DebuffSign, DebuffFaint, DebuffTaunt}

var debuffNames = [...]string{
	DebuffPoison:   "Poison",
	DebuffBleeding: "Bleeding",
	DebuffBurn:     "Burn",
	DebuffSign:     "Sign",
	DebuffFaint:    "Faint",
	DebuffTaunt:    "Taunt",
}

func (d DebuffKind) String() string {
	if d < 0 || int(d) >= len(debuffNames) {
		return "Unknown"
	}
	return debuffNames[d]
}

// IsDot reports whether the debuff is a damage-over-time.
func (d DebuffKind) IsDot() bool {
	return d == DebuffPoison || d == DebuffBleeding || d == DebuffBurn
}

// ParseDebuffKind parses a debuff name (case-insensitive).
func ParseDebuffKind(s string) (DebuffKind, error) {
	for i, n := range debuffNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return DebuffKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown debuff %q", s)
}

// DamageParams is the payload of Damage, MagicDamage and MarkedDamage.
// Bonus is only read by MarkedDamage.
type DamageParams struct {
	Power int32
	Bonus float64
}

// HealParams is the payload of Heal.
type HealParams struct {
	Amount  int32
	Percent bool
	Rate    float64
}

// ModifyParams is the payload of AbilityModify.
// Remove clears all debuffs instead of registering a modifier.
type ModifyParams struct {
	Stat   model.StatKind
	Value  int32
	Remove bool
}

// DebuffParams is the payload of InflictDebuff.
// Power is damage per turn for Poison, Bleeding and Burn.
type DebuffParams struct {
	Kind   DebuffKind
	Chance float64
	Power  int32
}

// CleanseParams is the payload of Cleanse. Empty Kinds means AllDebuffs.
type CleanseParams struct {
	Kinds []DebuffKind
}

// ScriptFunc is an injected callback for bespoke item/equipment behaviour.
type ScriptFunc func(caster, target *model.Combatant)

// Effect is a tagged union: Kind selects which payload is meaningful.
// Effects are values; the same Effect may be applied to many targets.
type Effect struct {
	Kind     EffectKind
	Duration int32

	Damage  DamageParams
	Heal    HealParams
	Modify  ModifyParams
	Debuff  DebuffParams
	Cleanse CleanseParams

	ScriptID string
	Script   ScriptFunc
}

// Name returns the variant name, as used by the registry.
func (e Effect) Name() string { return e.Kind.String() }

func Damage(power int32) Effect {
	return Effect{Kind: EffectDamage, Damage: DamageParams{Power: power}}
}

func MagicDamage(power int32) Effect {
	return Effect{Kind: EffectMagicDamage, Damage: DamageParams{Power: power}}
}

// MarkedDamage builds a damage effect scaled by (1 + bonus) against marked
// targets. A bonus <= 0 means combat.DefaultMarkedBonus.
func MarkedDamage(power int32, bonus float64) Effect {
	if bonus <= 0 {
		bonus = combat.DefaultMarkedBonus
	}
	return Effect{Kind: EffectMarkedDamage, Damage: DamageParams{Power: power, Bonus: bonus}}
}

func Heal(amount int32) Effect {
	return Effect{Kind: EffectHeal, Heal: HealParams{Amount: amount}}
}

func HealPercent(rate float64) Effect {
	return Effect{Kind: EffectHeal, Heal: HealParams{Percent: true, Rate: rate}}
}

// AbilityModify builds a timed stat modifier. Positive value buffs, negative debuffs.
func AbilityModify(stat model.StatKind, value, turns int32) Effect {
	return Effect{Kind: EffectAbilityModify, Duration: turns, Modify: ModifyParams{Stat: stat, Value: value}}
}

// RemoveDebuffs builds the AbilityModify Remove variant.
func RemoveDebuffs() Effect {
	return Effect{Kind: EffectAbilityModify, Modify: ModifyParams{Remove: true}}
}

func InflictDebuff(kind DebuffKind, chance float64, power, turns int32) Effect {
	return Effect{Kind: EffectInflictDebuff, Duration: turns, Debuff: DebuffParams{Kind: kind, Chance: chance, Power: power}}
}

func Cleanse(kinds ...DebuffKind) Effect {
	return Effect{Kind: EffectCleanse, Cleanse: CleanseParams{Kinds: kinds}}
}

func Scripted(id string, fn ScriptFunc) Effect {
	return Effect{Kind: EffectScripted, ScriptID: id, Script: fn}
}
