package data

import (
	"log/slog"

	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/model"
)

// ExecuteThreshold is the HP ratio at or below which "execute" kills outright.
const ExecuteThreshold = 0.25

// Built-in scripts referenced by the default catalog.
func init() {
	skill.RegisterScript("execute", scriptExecute)
	skill.RegisterScript("swap_row", scriptSwapRow)
}

// scriptExecute kills a target at or below ExecuteThreshold of its max HP.
func scriptExecute(caster, target *model.Combatant) {
	if float64(target.CurrentHP()) > float64(target.MaxHP())*ExecuteThreshold {
		return
	}
	var casterID uint32
	if caster != nil {
		casterID = caster.ID()
	}
	slog.Debug("execute", "caster", casterID, "target", target.ID(), "hp", target.CurrentHP())
	target.Kill()
}

// scriptSwapRow moves the target between front and back rows.
func scriptSwapRow(_, target *model.Combatant) {
	switch target.Location() {
	case model.LocationFront:
		target.SetLocation(model.LocationBack)
	case model.LocationBack:
		target.SetLocation(model.LocationFront)
	}
}
