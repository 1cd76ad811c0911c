package model

// EventKind identifies a combatant notification.
type EventKind int8

const (
	EventHPChanged EventKind = iota
	EventDied
)

func (k EventKind) String() string {
	switch k {
	case EventHPChanged:
		return "hp_changed"
	case EventDied:
		return "died"
	default:
		return "unknown"
	}
}

// Event is emitted by a Combatant to its observers.
type Event struct {
	Kind        EventKind
	CombatantID uint32
	OldHP       int32
	NewHP       int32
}
