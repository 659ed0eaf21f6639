package agent

import (
	"maps"
	"slices"
	"strings"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// CellSet is an unordered set of cells. Iteration helpers return cells
// row-major so that the agent behaves deterministically.
type CellSet map[mines.Cell]struct{}

func NewCellSet(cells ...mines.Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s.Add(c)
	}
	return s
}

func (s CellSet) Add(c mines.Cell) {
	s[c] = struct{}{}
}

func (s CellSet) Remove(c mines.Cell) {
	delete(s, c)
}

func (s CellSet) Has(c mines.Cell) bool {
	_, ok := s[c]
	return ok
}

func (s CellSet) Clone() CellSet {
	return maps.Clone(s)
}

func (s CellSet) Union(other CellSet) {
	for c := range other {
		s.Add(c)
	}
}

func (s CellSet) Equal(other CellSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

func (s CellSet) SubsetOf(other CellSet) bool {
	if len(s) > len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Difference returns s \ other as a new set.
func (s CellSet) Difference(other CellSet) CellSet {
	ret := make(CellSet, len(s))
	for c := range s {
		if !other.Has(c) {
			ret.Add(c)
		}
	}
	return ret
}

func (s CellSet) Sorted() []mines.Cell {
	return slices.SortedFunc(maps.Keys(s), mines.CompareCells)
}

func (s CellSet) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
