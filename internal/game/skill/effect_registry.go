package skill

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/model"
)

var (
	ErrUnknownEffect = errors.New("unknown effect type")
	ErrUnknownScript = errors.New("unknown script")
)

// EffectFactory builds an Effect from string parameters.
type EffectFactory func(params map[string]string) (Effect, error)

// effectRegistry maps effect name → factory.
// Skill data and the item/equipment bridge both build effects through it,
// so bridged effects are identical to skill-authored ones.
var effectRegistry = map[string]EffectFactory{}

// scriptRegistry maps script id → callback for Scripted effects.
var scriptRegistry = map[string]ScriptFunc{}

// RegisterEffect registers an effect factory by name.
func RegisterEffect(name string, factory EffectFactory) {
	effectRegistry[name] = factory
}

// RegisterScript makes a callback available to Scripted effects by id.
func RegisterScript(id string, fn ScriptFunc) {
	scriptRegistry[id] = fn
}

// CreateEffect creates an effect by name using the registered factory.
func CreateEffect(name string, params map[string]string) (Effect, error) {
	factory, ok := effectRegistry[name]
	if !ok {
		return Effect{}, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}
	e, err := factory(params)
	if err != nil {
		return Effect{}, fmt.Errorf("building %s: %w", name, err)
	}
	return e, nil
}

func init() {
	RegisterEffect("Damage", newDamageEffect(EffectDamage))
	RegisterEffect("MagicDamage", newDamageEffect(EffectMagicDamage))
	RegisterEffect("MarkedDamage", newDamageEffect(EffectMarkedDamage))
	RegisterEffect("Heal", newHealEffect)
	RegisterEffect("AbilityModify", newAbilityModifyEffect)
	RegisterEffect("InflictDebuff", newInflictDebuffEffect)
	RegisterEffect("Cleanse", newCleanseEffect)
	RegisterEffect("Scripted", newScriptedEffect)
}

// Params: "power" (int), "bonus" (float, MarkedDamage only, default 0.15).
func newDamageEffect(kind EffectKind) EffectFactory {
	return func(params map[string]string) (Effect, error) {
		power, err := intParam(params, "power", 0)
		if err != nil {
			return Effect{}, err
		}
		e := Effect{Kind: kind, Damage: DamageParams{Power: power}}
		if kind == EffectMarkedDamage {
			bonus, err := floatParam(params, "bonus", combat.DefaultMarkedBonus)
			if err != nil {
				return Effect{}, err
			}
			e.Damage.Bonus = bonus
		}
		return e, nil
	}
}

// Params: "amount" (int) or "percent" (bool) with "rate" (float).
func newHealEffect(params map[string]string) (Effect, error) {
	percent, err := boolParam(params, "percent")
	if err != nil {
		return Effect{}, err
	}
	if percent {
		rate, err := floatParam(params, "rate", 0)
		if err != nil {
			return Effect{}, err
		}
		return HealPercent(rate), nil
	}
	amount, err := intParam(params, "amount", 0)
	if err != nil {
		return Effect{}, err
	}
	return Heal(amount), nil
}

// Params: "stat" (stat name or "remove"), "value" (int), "duration" (turns).
func newAbilityModifyEffect(params map[string]string) (Effect, error) {
	if strings.EqualFold(params["stat"], "remove") {
		return RemoveDebuffs(), nil
	}
	stat, err := model.ParseStatKind(params["stat"])
	if err != nil {
		return Effect{}, err
	}
	value, err := intParam(params, "value", 0)
	if err != nil {
		return Effect{}, err
	}
	turns, err := intParam(params, "duration", 1)
	if err != nil {
		return Effect{}, err
	}
	return AbilityModify(stat, value, turns), nil
}

// Params: "debuff" (name), "chance" (0..1, default 1), "power" (int), "duration" (turns).
func newInflictDebuffEffect(params map[string]string) (Effect, error) {
	kind, err := ParseDebuffKind(params["debuff"])
	if err != nil {
		return Effect{}, err
	}
	chance, err := floatParam(params, "chance", 1)
	if err != nil {
		return Effect{}, err
	}
	power, err := intParam(params, "power", 0)
	if err != nil {
		return Effect{}, err
	}
	turns, err := intParam(params, "duration", 1)
	if err != nil {
		return Effect{}, err
	}
	return InflictDebuff(kind, chance, power, turns), nil
}

// Params: "debuffs" (comma separated, empty = all).
func newCleanseEffect(params map[string]string) (Effect, error) {
	raw := strings.TrimSpace(params["debuffs"])
	if raw == "" {
		return Cleanse(), nil
	}
	var kinds []DebuffKind
	for _, part := range strings.Split(raw, ",") {
		k, err := ParseDebuffKind(part)
		if err != nil {
			return Effect{}, err
		}
		kinds = append(kinds, k)
	}
	return Cleanse(kinds...), nil
}

// Params: "script" (registered id).
func newScriptedEffect(params map[string]string) (Effect, error) {
	id := params["script"]
	fn, ok := scriptRegistry[id]
	if !ok {
		return Effect{}, fmt.Errorf("%w: %q", ErrUnknownScript, id)
	}
	return Scripted(id, fn), nil
}

func intParam(params map[string]string, key string, def int32) (int32, error) {
	s, ok := params[key]
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return int32(v), nil
}

func floatParam(params map[string]string, key string, def float64) (float64, error) {
	s, ok := params[key]
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}

func boolParam(params map[string]string, key string) (bool, error) {
	s, ok := params[key]
	if !ok || s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("param %s: %w", key, err)
	}
	return v, nil
}
