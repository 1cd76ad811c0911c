package battle

import (
	"github.com/udisondev/partybattle/internal/game/skill"
)

// EventKind identifies an outbound battle event.
type EventKind int8

const (
	EventBattleStarted EventKind = iota
	EventTurnStarted
	EventTurnSkipped
	EventSkillSelected
	EventTargetingCancelled
	EventEffectResolved
	EventCastFizzled
	EventHPChanged
	EventDied
	EventStatusTick
	EventTauntRegistered
	EventTurnEnded
	EventBattleEnded
)

var eventKindNames = [...]string{
	EventBattleStarted:      "battle_started",
	EventTurnStarted:        "turn_started",
	EventTurnSkipped:        "turn_skipped",
	EventSkillSelected:      "skill_selected",
	EventTargetingCancelled: "targeting_cancelled",
	EventEffectResolved:     "effect_resolved",
	EventCastFizzled:        "cast_fizzled",
	EventHPChanged:          "hp_changed",
	EventDied:               "died",
	EventStatusTick:         "status_tick",
	EventTauntRegistered:    "taunt_registered",
	EventTurnEnded:          "turn_ended",
	EventBattleEnded:        "battle_ended",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is queued by the session and drained by collaborators
// (animation, UI, logging). Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Round    int
	ActorID  uint32
	TargetID uint32
	SkillID  string

	Effect  skill.EffectKind
	Outcome skill.Outcome
	Amount  int32

	OldHP int32
	NewHP int32
}
