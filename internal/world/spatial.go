package world

import (
	"math"

	"github.com/openrift/riftd/internal/model"
)

// CellKey identifies one grid cell by floored coordinates.
type CellKey struct {
	X int32
	Z int32
}

// SpatialIndex is a uniform hash grid over the XZ plane used for all
// proximity queries. Mutations are O(1) amortized; QueryCircle touches only
// the cells overlapped by the query radius, never the whole population.
//
// The index keeps the last inserted/moved position per id so queries can
// apply the exact distance test and so stale membership can be repaired.
type SpatialIndex struct {
	cellSize  float64
	cells     map[CellKey]map[uint32]struct{}
	positions map[uint32]model.Vec3
}

// NewSpatialIndex creates an index with the given cell edge length.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		panic("world: non-positive spatial cell size")
	}
	return &SpatialIndex{
		cellSize:  cellSize,
		cells:     make(map[CellKey]map[uint32]struct{}),
		positions: make(map[uint32]model.Vec3),
	}
}

// CellOf hashes a position to its cell. Floor, not truncation: negative
// coordinates must map to negative cell indices.
func (s *SpatialIndex) CellOf(pos model.Vec3) CellKey {
	return CellKey{
		X: int32(math.Floor(pos.X / s.cellSize)),
		Z: int32(math.Floor(pos.Z / s.cellSize)),
	}
}

// CellChanged reports whether two positions hash to different cells.
func (s *SpatialIndex) CellChanged(a, b model.Vec3) bool {
	return s.CellOf(a) != s.CellOf(b)
}

// Insert adds an entity at the given position.
func (s *SpatialIndex) Insert(id uint32, pos model.Vec3) {
	s.addToCell(id, s.CellOf(pos))
	s.positions[id] = pos
}

// Remove drops an entity from the cell its position hashes to. The cell is
// deleted when it empties so an idle world holds no cells at all.
func (s *SpatialIndex) Remove(id uint32, pos model.Vec3) {
	s.dropFromCell(id, s.CellOf(pos))
	delete(s.positions, id)
}

// Move relocates an entity. No-op on the cell maps when both positions hash
// to the same cell, checked before any map mutation.
func (s *SpatialIndex) Move(id uint32, oldPos, newPos model.Vec3) {
	oldKey := s.CellOf(oldPos)
	newKey := s.CellOf(newPos)
	if oldKey != newKey {
		s.dropFromCell(id, oldKey)
		s.addToCell(id, newKey)
	}
	s.positions[id] = newPos
}

// QueryCircle returns the ids whose recorded position lies within radius of
// center. Scans the ceil(radius/cellSize) square neighborhood of cells and
// applies the exact distance test; set-backed cells make the result
// duplicate-free even though neighboring cells overlap the circle.
func (s *SpatialIndex) QueryCircle(center model.Vec3, radius float64) []uint32 {
	if radius < 0 {
		return nil
	}
	span := int32(math.Ceil(radius / s.cellSize))
	c := s.CellOf(center)
	rSq := radius * radius

	var out []uint32
	for dx := -span; dx <= span; dx++ {
		for dz := -span; dz <= span; dz++ {
			cell, ok := s.cells[CellKey{X: c.X + dx, Z: c.Z + dz}]
			if !ok {
				continue
			}
			for id := range cell {
				if pos, ok := s.positions[id]; ok && pos.DistanceSquared(center) <= rSq {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// Position returns the last recorded position for an id.
func (s *SpatialIndex) Position(id uint32) (model.Vec3, bool) {
	pos, ok := s.positions[id]
	return pos, ok
}

// Repair re-derives cell membership from the authoritative position. Called
// when a cell-membership invariant violation is detected; it never fails.
func (s *SpatialIndex) Repair(id uint32, authoritative model.Vec3) {
	if old, ok := s.positions[id]; ok {
		s.dropFromCell(id, s.CellOf(old))
	}
	s.addToCell(id, s.CellOf(authoritative))
	s.positions[id] = authoritative
}

// Contains reports whether the entity is registered in the cell its recorded
// position hashes to. Used by invariant checks, not by gameplay paths.
func (s *SpatialIndex) Contains(id uint32, pos model.Vec3) bool {
	cell, ok := s.cells[s.CellOf(pos)]
	if !ok {
		return false
	}
	_, ok = cell[id]
	return ok
}

// CellCount returns the number of live cells, for tests and metrics.
func (s *SpatialIndex) CellCount() int {
	return len(s.cells)
}

func (s *SpatialIndex) addToCell(id uint32, key CellKey) {
	cell, ok := s.cells[key]
	if !ok {
		cell = make(map[uint32]struct{}, 4)
		s.cells[key] = cell
	}
	cell[id] = struct{}{}
}

func (s *SpatialIndex) dropFromCell(id uint32, key CellKey) {
	cell, ok := s.cells[key]
	if !ok {
		return
	}
	delete(cell, id)
	if len(cell) == 0 {
		delete(s.cells, key)
	}
}
