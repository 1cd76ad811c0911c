// Package data loads skill, hero and monster definitions from YAML.
package data

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/partybattle/internal/game/combat"
	"github.com/udisondev/partybattle/internal/game/skill"
	"github.com/udisondev/partybattle/internal/game/targeting"
	"github.com/udisondev/partybattle/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownSkill    = errors.New("unknown skill")
	ErrUnknownTemplate = errors.New("unknown template")
)

// SkillDef is a skill as written in the catalog.
type SkillDef struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	Target        TargetDef   `yaml:"target"`
	UseLocation   string      `yaml:"use_location"`
	HitCorrection *int32      `yaml:"hit_correction"`
	Effects       []EffectDef `yaml:"effects"`
}

// TargetDef is the targeting descriptor as written in the catalog.
type TargetDef struct {
	Axis     string `yaml:"axis"`
	Location string `yaml:"location"`
	Area     string `yaml:"area"`
}

// EffectDef names a registered effect and its parameters.
// Item and equipment effects use the same shape.
type EffectDef struct {
	Name   string            `yaml:"name"`
	Params map[string]string `yaml:"params"`
}

// Template is a hero or monster record.
type Template struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Stats  model.Stats `yaml:"stats"`
	Growth model.Stats `yaml:"growth"` // added per level above 1
	Skills []string    `yaml:"skills"`

	// Experience is awarded to the winning party when a monster dies.
	Experience int64 `yaml:"experience"`
}

type catalogFile struct {
	Skills   []SkillDef `yaml:"skills"`
	Heroes   []Template `yaml:"heroes"`
	Monsters []Template `yaml:"monsters"`
}

// Options tune how definitions are turned into runtime skills.
type Options struct {
	// MarkedDamageBonus is used by MarkedDamage effects without an explicit bonus.
	MarkedDamageBonus float64
}

// DefaultOptions returns Options with the standard marked-damage bonus.
func DefaultOptions() Options {
	return Options{MarkedDamageBonus: combat.DefaultMarkedBonus}
}

// Catalog holds built skills and templates. Read-only after loading.
type Catalog struct {
	skills   map[string]*skill.Skill
	heroes   map[string]*Template
	monsters map[string]*Template
}

// LoadCatalog reads a catalog file. An empty path loads the embedded default.
func LoadCatalog(path string, opts Options) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog, opts)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog parses catalog YAML and builds every skill.
// Template skill lists must reference defined skills.
func ParseCatalog(raw []byte, opts Options) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		skills:   make(map[string]*skill.Skill, len(f.Skills)),
		heroes:   make(map[string]*Template, len(f.Heroes)),
		monsters: make(map[string]*Template, len(f.Monsters)),
	}

	for _, def := range f.Skills {
		if _, dup := c.skills[def.ID]; dup {
			return nil, fmt.Errorf("duplicate skill %q", def.ID)
		}
		sk, err := BuildSkill(def, opts)
		if err != nil {
			return nil, err
		}
		c.skills[def.ID] = sk
	}

	if err := c.addTemplates(c.heroes, f.Heroes); err != nil {
		return nil, fmt.Errorf("heroes: %w", err)
	}
	if err := c.addTemplates(c.monsters, f.Monsters); err != nil {
		return nil, fmt.Errorf("monsters: %w", err)
	}

	slog.Debug("catalog loaded",
		"skills", len(c.skills),
		"heroes", len(c.heroes),
		"monsters", len(c.monsters))

	return c, nil
}

func (c *Catalog) addTemplates(dst map[string]*Template, list []Template) error {
	for i := range list {
		t := &list[i]
		if t.ID == "" {
			return fmt.Errorf("template #%d has no id", i)
		}
		if _, dup := dst[t.ID]; dup {
			return fmt.Errorf("duplicate template %q", t.ID)
		}
		for _, id := range t.Skills {
			if _, ok := c.skills[id]; !ok {
				return fmt.Errorf("template %q: %w: %s", t.ID, ErrUnknownSkill, id)
			}
		}
		dst[t.ID] = t
	}
	return nil
}

// BuildSkill turns a definition into a runtime skill via the effect registry.
func BuildSkill(def SkillDef, opts Options) (*skill.Skill, error) {
	if def.ID == "" {
		return nil, errors.New("skill without id")
	}

	axis, err := targeting.ParseAxis(def.Target.Axis)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", def.ID, err)
	}
	area, err := targeting.ParseArea(def.Target.Area)
	if err != nil {
		return nil, fmt.Errorf("skill %s: %w", def.ID, err)
	}
	loc, err := targeting.ParseLocation(def.Target.Location)
	if err != nil {
		return nil, fmt.Errorf("skill %s: target %w", def.ID, err)
	}
	useLoc, err := targeting.ParseLocation(def.UseLocation)
	if err != nil {
		return nil, fmt.Errorf("skill %s: use %w", def.ID, err)
	}

	effects := make([]skill.Effect, 0, len(def.Effects))
	for i, ed := range def.Effects {
		params := ed.Params
		if ed.Name == "MarkedDamage" {
			params = withDefault(params, "bonus", strconv.FormatFloat(opts.MarkedDamageBonus, 'f', -1, 64))
		}
		e, err := skill.CreateEffect(ed.Name, params)
		if err != nil {
			return nil, fmt.Errorf("skill %s effect #%d: %w", def.ID, i, err)
		}
		effects = append(effects, e)
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}

	return &skill.Skill{
		ID:            def.ID,
		Name:          name,
		Target:        targeting.Rule{Axis: axis, Location: loc, Area: area},
		UseLocation:   useLoc,
		Effects:       effects,
		HitCorrection: def.HitCorrection,
	}, nil
}

// BuildEffects converts item or equipment effect definitions.
func BuildEffects(defs []EffectDef) ([]skill.Effect, error) {
	out := make([]skill.Effect, 0, len(defs))
	for i, d := range defs {
		e, err := skill.CreateEffect(d.Name, d.Params)
		if err != nil {
			return nil, fmt.Errorf("effect #%d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func withDefault(params map[string]string, key, value string) map[string]string {
	if _, ok := params[key]; ok {
		return params
	}
	out := make(map[string]string, len(params)+1)
	maps.Copy(out, params)
	out[key] = value
	return out
}

// Skill returns a skill by id.
func (c *Catalog) Skill(id string) (*skill.Skill, bool) {
	sk, ok := c.skills[id]
	return sk, ok
}

// SkillIDs returns all skill ids, sorted.
func (c *Catalog) SkillIDs() []string {
	return slices.Sorted(maps.Keys(c.skills))
}

// Hero returns a hero template by id.
func (c *Catalog) Hero(id string) (*Template, bool) {
	t, ok := c.heroes[id]
	return t, ok
}

// Monster returns a monster template by id.
func (c *Catalog) Monster(id string) (*Template, bool) {
	t, ok := c.monsters[id]
	return t, ok
}

// Template looks up src in the hero or monster table.
func (c *Catalog) Template(src model.Source) (*Template, bool) {
	if src.Kind == model.SourceHero {
		return c.Hero(src.TemplateID)
	}
	return c.Monster(src.TemplateID)
}

// SkillsOf returns the skills of a template in declaration order.
func (c *Catalog) SkillsOf(t *Template) []*skill.Skill {
	out := make([]*skill.Skill, 0, len(t.Skills))
	for _, id := range t.Skills {
		out = append(out, c.skills[id])
	}
	return out
}

// Spawn creates a combatant from a template. Heroes are looked up first,
// then monsters; the source kind follows the table the template came from.
func (c *Catalog) Spawn(id uint32, templateID string, side model.Side, loc model.Location, level int32) (*model.Combatant, error) {
	src := model.Source{Kind: model.SourceHero, TemplateID: templateID}
	t, ok := c.heroes[templateID]
	if !ok {
		src.Kind = model.SourceMonster
		if t, ok = c.monsters[templateID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
		}
	}

	level = max(level, 1)
	stats := t.Stats.Grow(t.Growth, level-1)

	name := t.Name
	if name == "" {
		name = t.ID
	}

	cb := model.NewCombatant(id, name, side, loc, src, stats)
	cb.SetProgress(level, 0)
	return cb, nil
}
