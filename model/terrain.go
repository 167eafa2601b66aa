package model

// TerrainType classifies a grid zone.
type TerrainType byte

const (
	Land   TerrainType = 0 // passable ground
	Water  TerrainType = 1 // naval only
	Cliff  TerrainType = 2 // impassable
	Bridge TerrainType = 3 // land corridor over water
	Forest TerrainType = 4 // harvestable wood, impassable until cut
	Rock   TerrainType = 5 // harvestable stone, impassable until mined
)

// FieldMask describes what a zone contains. Terrain harvesters look for a
// field of their resource; exploration requests carry a MoveMask instead.
type FieldMask uint16

const (
	FieldLand FieldMask = 1 << iota
	FieldWater
	FieldCliff
	FieldForest
	FieldRock
)

// MoveMask is the set of movement domains a unit can use.
type MoveMask uint8

const (
	MoveLand MoveMask = 1 << iota
	MoveSea
	MoveAir
)

// Fields returns the field mask for a terrain type.
func (t TerrainType) Fields() FieldMask {
	switch t {
	case Water:
		return FieldWater
	case Cliff:
		return FieldCliff
	case Bridge:
		return FieldLand | FieldWater
	case Forest:
		return FieldForest
	case Rock:
		return FieldRock
	default:
		return FieldLand
	}
}

// Passable reports whether a unit with mask m can stand on t.
func (t TerrainType) Passable(m MoveMask) bool {
	if m&MoveAir != 0 {
		return true
	}
	switch t {
	case Land:
		return m&MoveLand != 0
	case Water:
		return m&MoveSea != 0
	case Bridge:
		return m&(MoveLand|MoveSea) != 0
	default:
		return false
	}
}

// TerrainGrid is a row-major grid of zones. Each zone covers CellW x CellH
// map tiles; a per-tile grid uses CellW = CellH = 1.
type TerrainGrid struct {
	Cols  int
	Rows  int
	CellW int
	CellH int
	Grid  []TerrainType // row-major: Grid[row*Cols + col]
}

// NewTerrainGrid returns an all-Land per-tile grid.
func NewTerrainGrid(cols, rows int) *TerrainGrid {
	return &TerrainGrid{Cols: cols, Rows: rows, CellW: 1, CellH: 1, Grid: make([]TerrainType, cols*rows)}
}

// At returns the terrain type at grid coordinates (col, row).
// Returns Land for out-of-bounds coordinates.
func (g *TerrainGrid) At(col, row int) TerrainType {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return Land
	}
	return g.Grid[row*g.Cols+col]
}

// Set changes a zone; out-of-bounds writes are ignored.
func (g *TerrainGrid) Set(col, row int, t TerrainType) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return
	}
	g.Grid[row*g.Cols+col] = t
}

// AtMapPos converts map coordinates to grid coordinates and returns the
// terrain type. Returns Land for out-of-bounds or zero-sized cells.
func (g *TerrainGrid) AtMapPos(p Vec2) TerrainType {
	if g.CellW <= 0 || g.CellH <= 0 {
		return Land
	}
	return g.At(p.X/g.CellW, p.Y/g.CellH)
}

// ZoneCenter returns the map coordinates of the center of zone (col, row).
func (g *TerrainGrid) ZoneCenter(col, row int) Vec2 {
	return Vec2{X: col*g.CellW + g.CellW/2, Y: row*g.CellH + g.CellH/2}
}

// Clone returns a deep copy.
func (g *TerrainGrid) Clone() *TerrainGrid {
	if g == nil {
		return nil
	}
	c := *g
	c.Grid = append([]TerrainType(nil), g.Grid...)
	return &c
}
