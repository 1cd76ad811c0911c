// Package targeting computes preview candidates and execution targets for a skill.
// It only reads the entity model and never mutates it.
package targeting

import (
	"fmt"
	"strings"

	"github.com/udisondev/partybattle/internal/model"
)

// Axis selects which side a skill may target.
type Axis int8

const (
	AxisEnemy Axis = iota
	AxisAlly
	AxisSelf
)

func (a Axis) String() string {
	switch a {
	case AxisEnemy:
		return "enemy"
	case AxisAlly:
		return "ally"
	case AxisSelf:
		return "self"
	default:
		return "unknown"
	}
}

// Area is the breadth of an execution target set.
type Area int8

const (
	AreaSingle Area = iota
	AreaRow
	AreaEntire
)

func (a Area) String() string {
	switch a {
	case AreaSingle:
		return "single"
	case AreaRow:
		return "row"
	case AreaEntire:
		return "entire"
	default:
		return "unknown"
	}
}

// Rule is the targeting descriptor of a skill.
// Location pins the target row; LocationNone accepts any row.
type Rule struct {
	Axis     Axis
	Location model.Location
	Area     Area
}

// ParseAxis parses "enemy", "ally" or "self".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "enemy", "":
		return AxisEnemy, nil
	case "ally":
		return AxisAlly, nil
	case "self":
		return AxisSelf, nil
	}
	return 0, fmt.Errorf("unknown target axis %q", s)
}

// ParseArea parses "single", "row" or "entire".
func ParseArea(s string) (Area, error) {
	switch strings.ToLower(s) {
	case "single", "":
		return AreaSingle, nil
	case "row":
		return AreaRow, nil
	case "entire":
		return AreaEntire, nil
	}
	return 0, fmt.Errorf("unknown area %q", s)
}

// ParseLocation parses "none", "front" or "back".
func ParseLocation(s string) (model.Location, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return model.LocationNone, nil
	case "front":
		return model.LocationFront, nil
	case "back":
		return model.LocationBack, nil
	}
	return 0, fmt.Errorf("unknown location %q", s)
}

// MatchesAxis applies the target-axis filter.
func MatchesAxis(caster, c *model.Combatant, axis Axis) bool {
	switch axis {
	case AxisEnemy:
		return c.Side() != caster.Side()
	case AxisAlly:
		return c.Side() == caster.Side()
	case AxisSelf:
		return c == caster
	default:
		return false
	}
}

// MatchesLocation applies the target-location filter.
// A combatant with no location never matches a Front/Back requirement.
func MatchesLocation(c *model.Combatant, loc model.Location) bool {
	if loc == model.LocationNone {
		return true
	}
	return c.Location() == loc
}

func eligible(caster, c *model.Combatant, rule Rule) bool {
	return c != nil && c.IsAlive() && MatchesAxis(caster, c, rule.Axis) && MatchesLocation(c, rule.Location)
}

// IsCandidate reports whether c should be highlighted for the rule.
// Row re-applies the location filter only when the rule pins a row, so an
// unpinned Row skill previews both rows.
func IsCandidate(caster, c *model.Combatant, rule Rule) bool {
	if caster == nil || !eligible(caster, c, rule) {
		return false
	}
	if rule.Area == AreaRow && rule.Location != model.LocationNone {
		return MatchesLocation(c, rule.Location)
	}
	return true
}

// Candidates returns the highlight set for preview, in roster order.
func Candidates(caster *model.Combatant, roster []*model.Combatant, rule Rule) []*model.Combatant {
	var out []*model.Combatant
	for _, c := range roster {
		if IsCandidate(caster, c, rule) {
			out = append(out, c)
		}
	}
	return out
}

// Resolve returns the execution target list for a clicked combatant.
// An empty result means the cast fizzles.
func Resolve(caster, clicked *model.Combatant, roster []*model.Combatant, rule Rule) []*model.Combatant {
	if caster == nil || !eligible(caster, clicked, rule) {
		return nil
	}

	switch rule.Area {
	case AreaSingle:
		return []*model.Combatant{clicked}
	case AreaRow:
		row := rule.Location
		if row == model.LocationNone {
			row = clicked.Location()
		}
		var out []*model.Combatant
		for _, c := range roster {
			if eligible(caster, c, rule) && c.Location() == row {
				out = append(out, c)
			}
		}
		return out
	case AreaEntire:
		var out []*model.Combatant
		for _, c := range roster {
			if eligible(caster, c, rule) {
				out = append(out, c)
			}
		}
		return out
	default:
		return nil
	}
}
