package model

// Vec2 is a tile position on the map.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPos is the "no position hint" sentinel.
var NoPos = Vec2{X: -1, Y: -1}

// Valid reports whether the position is non-negative. It says nothing about
// the map bounds; use the world's IsPointOnMap for that.
func (v Vec2) Valid() bool { return v.X >= 0 && v.Y >= 0 }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// ChebyshevTo is the tile distance used by square-range spatial queries.
func (v Vec2) ChebyshevTo(o Vec2) int {
	dx := abs(v.X - o.X)
	dy := abs(v.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
