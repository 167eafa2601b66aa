package model

import "testing"

func TestTerrainGridAt(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
		Grid: []TerrainType{
			Land, Land, Water, Water,
			Land, Forest, Water, Water,
			Cliff, Bridge, Land, Rock,
			Cliff, Land, Land, Land,
		},
	}

	tests := []struct {
		col, row int
		want     TerrainType
	}{
		{0, 0, Land},
		{2, 0, Water},
		{1, 1, Forest},
		{0, 2, Cliff},
		{1, 2, Bridge},
		{3, 2, Rock},
		{3, 3, Land},
	}
	for _, tc := range tests {
		got := grid.At(tc.col, tc.row)
		if got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.col, tc.row, got, tc.want)
		}
	}
}

func TestTerrainGridOutOfBounds(t *testing.T) {
	grid := NewTerrainGrid(2, 2)
	for i := range grid.Grid {
		grid.Grid[i] = Water
	}

	// Out-of-bounds reads return Land, writes are dropped.
	if got := grid.At(-1, 0); got != Land {
		t.Errorf("At(-1, 0) = %d, want Land", got)
	}
	if got := grid.At(0, 2); got != Land {
		t.Errorf("At(0, 2) = %d, want Land", got)
	}
	grid.Set(5, 5, Forest)
	for i, tt := range grid.Grid {
		if tt != Water {
			t.Errorf("Grid[%d] = %d after out-of-bounds Set, want Water", i, tt)
		}
	}
}

func TestTerrainGridAtMapPos(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
		Grid: []TerrainType{
			Land, Land, Water, Water,
			Land, Land, Water, Water,
			Cliff, Bridge, Land, Land,
			Cliff, Land, Land, Land,
		},
	}

	tests := []struct {
		pos  Vec2
		want TerrainType
	}{
		{Vec2{0, 0}, Land},
		{Vec2{4, 0}, Land},
		{Vec2{16, 0}, Water},
		{Vec2{24, 16}, Land},
		{Vec2{0, 16}, Cliff},
		{Vec2{8, 16}, Bridge},
	}
	for _, tc := range tests {
		got := grid.AtMapPos(tc.pos)
		if got != tc.want {
			t.Errorf("AtMapPos(%v) = %d, want %d", tc.pos, got, tc.want)
		}
	}

	zero := &TerrainGrid{Cols: 2, Rows: 2, Grid: []TerrainType{Water, Water, Water, Water}}
	if got := zero.AtMapPos(Vec2{5, 5}); got != Land {
		t.Errorf("AtMapPos with zero cells = %d, want Land", got)
	}
}

func TestTerrainGridZoneCenter(t *testing.T) {
	grid := &TerrainGrid{Cols: 4, Rows: 4, CellW: 8, CellH: 8}

	if got := grid.ZoneCenter(0, 0); got != (Vec2{4, 4}) {
		t.Errorf("ZoneCenter(0,0) = %v, want (4,4)", got)
	}
	if got := grid.ZoneCenter(1, 2); got != (Vec2{12, 20}) {
		t.Errorf("ZoneCenter(1,2) = %v, want (12,20)", got)
	}
}

func TestTerrainPassable(t *testing.T) {
	tests := []struct {
		terrain TerrainType
		mask    MoveMask
		want    bool
	}{
		{Land, MoveLand, true},
		{Land, MoveSea, false},
		{Water, MoveSea, true},
		{Water, MoveLand, false},
		{Bridge, MoveLand, true},
		{Forest, MoveLand, false},
		{Cliff, MoveAir, true},
		{Rock, MoveLand | MoveSea, false},
	}
	for _, tc := range tests {
		if got := tc.terrain.Passable(tc.mask); got != tc.want {
			t.Errorf("%d.Passable(%b) = %v, want %v", tc.terrain, tc.mask, got, tc.want)
		}
	}
	if Forest.Fields() != FieldForest || Bridge.Fields() != FieldLand|FieldWater {
		t.Errorf("unexpected field masks: forest=%b bridge=%b", Forest.Fields(), Bridge.Fields())
	}
}

func TestCostMaskKinds(t *testing.T) {
	var m CostMask
	m = m.With(GoldCost).With(OilCost)
	if !m.Has(GoldCost) || m.Has(WoodCost) || !m.Has(OilCost) {
		t.Fatalf("mask %b has wrong kinds", m)
	}
	if got := m.Format(DefaultResourceNames); got != "gold|oil" {
		t.Errorf("Format = %q, want %q", got, "gold|oil")
	}
	if got := CostMask(0).Format(DefaultResourceNames); got != "none" {
		t.Errorf("Format(0) = %q, want none", got)
	}
	c := Costs{100, 10, 20, 0, 0, 0, 5}
	if c.Sum() != 35 {
		t.Errorf("Sum() = %d, want 35 (time excluded)", c.Sum())
	}
}
