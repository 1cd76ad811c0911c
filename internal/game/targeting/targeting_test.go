package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/partybattle/internal/model"
)

type testRoster struct {
	hero, priest, archer          *model.Combatant
	orcFront, wolfFront, shamanBk *model.Combatant
	ghost                         *model.Combatant
	all                           []*model.Combatant
}

func newTestRoster() testRoster {
	mk := func(id uint32, name string, side model.Side, loc model.Location) *model.Combatant {
		return model.NewCombatant(id, name, side, loc, model.Source{}, model.Stats{MaxHP: 50})
	}
	r := testRoster{
		hero:      mk(1, "Hero", model.SideAlly, model.LocationFront),
		priest:    mk(2, "Priest", model.SideAlly, model.LocationBack),
		archer:    mk(3, "Archer", model.SideAlly, model.LocationBack),
		orcFront:  mk(10, "Orc", model.SideEnemy, model.LocationFront),
		wolfFront: mk(11, "Wolf", model.SideEnemy, model.LocationFront),
		shamanBk:  mk(12, "Shaman", model.SideEnemy, model.LocationBack),
		ghost:     mk(13, "Ghost", model.SideEnemy, model.LocationNone),
	}
	r.all = []*model.Combatant{r.hero, r.priest, r.archer, r.orcFront, r.wolfFront, r.shamanBk, r.ghost}
	return r
}

func ids(cs []*model.Combatant) []uint32 {
	out := make([]uint32, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID())
	}
	return out
}

func TestCandidates_Axis(t *testing.T) {
	r := newTestRoster()

	tests := []struct {
		name string
		rule Rule
		want []uint32
	}{
		{name: "enemy", rule: Rule{Axis: AxisEnemy}, want: []uint32{10, 11, 12, 13}},
		{name: "ally", rule: Rule{Axis: AxisAlly}, want: []uint32{1, 2, 3}},
		{name: "self", rule: Rule{Axis: AxisSelf}, want: []uint32{1}},
		{name: "enemy front", rule: Rule{Axis: AxisEnemy, Location: model.LocationFront}, want: []uint32{10, 11}},
		{name: "enemy back, none never matches", rule: Rule{Axis: AxisEnemy, Location: model.LocationBack}, want: []uint32{12}},
		{name: "row unpinned previews both rows", rule: Rule{Axis: AxisEnemy, Area: AreaRow}, want: []uint32{10, 11, 12, 13}},
		{name: "row pinned back", rule: Rule{Axis: AxisEnemy, Area: AreaRow, Location: model.LocationBack}, want: []uint32{12}},
		{name: "entire ally", rule: Rule{Axis: AxisAlly, Area: AreaEntire}, want: []uint32{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(r.hero, r.all, tt.rule)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCandidates_SkipsDead(t *testing.T) {
	r := newTestRoster()
	r.wolfFront.Kill()

	got := Candidates(r.hero, r.all, Rule{Axis: AxisEnemy})
	assert.Equal(t, []uint32{10, 12, 13}, ids(got))
}

func TestResolve_Single(t *testing.T) {
	r := newTestRoster()
	got := Resolve(r.hero, r.wolfFront, r.all, Rule{Axis: AxisEnemy})
	assert.Equal(t, []uint32{11}, ids(got))
}

func TestResolve_FailedFilterFizzles(t *testing.T) {
	r := newTestRoster()

	tests := []struct {
		name    string
		clicked *model.Combatant
		rule    Rule
	}{
		{name: "ally clicked for enemy skill", clicked: r.priest, rule: Rule{Axis: AxisEnemy}},
		{name: "enemy clicked for ally skill", clicked: r.orcFront, rule: Rule{Axis: AxisAlly, Area: AreaEntire}},
		{name: "other ally for self skill", clicked: r.priest, rule: Rule{Axis: AxisSelf}},
		{name: "wrong row", clicked: r.shamanBk, rule: Rule{Axis: AxisEnemy, Location: model.LocationFront}},
		{name: "no location vs pinned", clicked: r.ghost, rule: Rule{Axis: AxisEnemy, Location: model.LocationBack, Area: AreaRow}},
		{name: "nil clicked", clicked: nil, rule: Rule{Axis: AxisEnemy}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Resolve(r.hero, tt.clicked, r.all, tt.rule))
		})
	}
}

func TestResolve_DeadClickedFizzles(t *testing.T) {
	r := newTestRoster()
	r.orcFront.Kill()
	assert.Empty(t, Resolve(r.hero, r.orcFront, r.all, Rule{Axis: AxisEnemy}))
}

func TestResolve_RowUnpinnedUsesClickedLocation(t *testing.T) {
	r := newTestRoster()
	rule := Rule{Axis: AxisEnemy, Area: AreaRow}

	front := Resolve(r.hero, r.wolfFront, r.all, rule)
	assert.Equal(t, []uint32{10, 11}, ids(front))

	back := Resolve(r.hero, r.shamanBk, r.all, rule)
	assert.Equal(t, []uint32{12}, ids(back))
}

func TestResolve_RowPinned(t *testing.T) {
	r := newTestRoster()
	rule := Rule{Axis: AxisAlly, Area: AreaRow, Location: model.LocationBack}

	got := Resolve(r.hero, r.archer, r.all, rule)
	assert.Equal(t, []uint32{2, 3}, ids(got))
}

func TestResolve_RowSkipsDead(t *testing.T) {
	r := newTestRoster()
	r.orcFront.Kill()

	got := Resolve(r.hero, r.wolfFront, r.all, Rule{Axis: AxisEnemy, Area: AreaRow})
	assert.Equal(t, []uint32{11}, ids(got))
}

func TestResolve_Entire(t *testing.T) {
	r := newTestRoster()

	got := Resolve(r.hero, r.ghost, r.all, Rule{Axis: AxisEnemy, Area: AreaEntire})
	assert.Equal(t, []uint32{10, 11, 12, 13}, ids(got))

	pinned := Resolve(r.hero, r.orcFront, r.all, Rule{Axis: AxisEnemy, Area: AreaEntire, Location: model.LocationFront})
	assert.Equal(t, []uint32{10, 11}, ids(pinned))
}

func TestParse(t *testing.T) {
	axis, err := ParseAxis("Ally")
	require.NoError(t, err)
	assert.Equal(t, AxisAlly, axis)

	area, err := ParseArea("row")
	require.NoError(t, err)
	assert.Equal(t, AreaRow, area)

	loc, err := ParseLocation("BACK")
	require.NoError(t, err)
	assert.Equal(t, model.LocationBack, loc)

	_, err = ParseAxis("neutral")
	assert.Error(t, err)
	_, err = ParseArea("cone")
	assert.Error(t, err)
	_, err = ParseLocation("middle")
	assert.Error(t, err)
}
