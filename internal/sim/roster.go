// Package sim runs unattended battles: it builds a roster from catalog
// templates and drives a battle session with an automatic skill picker.
package sim

import (
	"fmt"

	"github.com/udisondev/partybattle/internal/config"
	"github.com/udisondev/partybattle/internal/data"
	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/game/targeting"
	"github.com/udisondev/partybattle/internal/model"
)

// Unit is a combatant together with the skills it may use.
type Unit struct {
	Combatant *model.Combatant
	Skills    []*skill.Skill
}

// BuildRoster spawns the party as allies and the enemies as the opposing
// side. Ids are assigned in order starting at 1.
func BuildRoster(cat *data.Catalog, party, enemies []config.RosterEntry) ([]Unit, error) {
	units := make([]Unit, 0, len(party)+len(enemies))
	var id uint32

	add := func(side model.Side, entries []config.RosterEntry) error {
		for _, e := range entries {
			id++
			loc, err := targeting.ParseLocation(e.Location)
			if err != nil {
				return fmt.Errorf("roster entry %s: %w", e.Template, err)
			}
			c, err := cat.Spawn(id, e.Template, side, loc, e.Level)
			if err != nil {
				return fmt.Errorf("roster entry %d: %w", id, err)
			}
			tpl, _ := cat.Template(c.Source())
			units = append(units, Unit{Combatant: c, Skills: cat.SkillsOf(tpl)})
		}
		return nil
	}

	if err := add(model.SideAlly, party); err != nil {
		return nil, err
	}
	if err := add(model.SideEnemy, enemies); err != nil {
		return nil, err
	}
	return units, nil
}

// Combatants returns the combatants of units in order.
func Combatants(units []Unit) []*model.Combatant {
	out := make([]*model.Combatant, 0, len(units))
	for _, u := range units {
		out = append(out, u.Combatant)
	}
	return out
}

// AwardExperience splits the experience of every dead monster among the
// living allies and returns the total awarded. Nothing is awarded unless
// the allies won.
func AwardExperience(cat *data.Catalog, roster []*model.Combatant) int64 {
	var (
		pool      int64
		survivors []*model.Combatant
	)
	for _, c := range roster {
		switch {
		case c.Side() == model.SideAlly && c.IsAlive():
			survivors = append(survivors, c)
		case c.Side() == model.SideEnemy && c.IsAlive():
			return 0
		case c.Side() == model.SideEnemy && c.Source().Kind == model.SourceMonster:
			if tpl, ok := cat.Template(c.Source()); ok {
				pool += tpl.Experience
			}
		}
	}
	if len(survivors) == 0 || pool == 0 {
		return 0
	}

	share := pool / int64(len(survivors))
	for _, c := range survivors {
		c.GainExperience(share)
	}
	return share * int64(len(survivors))
}
