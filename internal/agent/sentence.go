package agent

import (
	"fmt"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// Sentence states that exactly Count of Cells are mines.
type Sentence struct {
	cells CellSet
	count int
}

func NewSentence(cells []mines.Cell, count int) *Sentence {
	return &Sentence{cells: NewCellSet(cells...), count: count}
}

func newSentence(cells CellSet, count int) *Sentence {
	return &Sentence{cells: cells, count: count}
}

// Cells returns a copy of the cell set.
func (s *Sentence) Cells() CellSet {
	return s.cells.Clone()
}

func (s *Sentence) Count() int {
	return s.count
}

func (s *Sentence) Len() int {
	return len(s.cells)
}

func (s *Sentence) Equal(other *Sentence) bool {
	return s.count == other.count && s.cells.Equal(other.cells)
}

// Consistent reports whether the sentence can still be satisfied.
func (s *Sentence) Consistent() bool {
	return 0 <= s.count && s.count <= len(s.cells)
}

// KnownMines returns every cell when they all must be mines. An empty
// sentence carries no information and yields nothing.
func (s *Sentence) KnownMines() CellSet {
	if len(s.cells) == s.count && s.count != 0 {
		return s.cells.Clone()
	}
	return CellSet{}
}

func (s *Sentence) KnownSafes() CellSet {
	if s.count == 0 {
		return s.cells.Clone()
	}
	return CellSet{}
}

func (s *Sentence) MarkMine(c mines.Cell) {
	if s.cells.Has(c) {
		s.cells.Remove(c)
		s.count--
	}
}

func (s *Sentence) MarkSafe(c mines.Cell) {
	s.cells.Remove(c)
}

func (s *Sentence) clone() Sentence {
	return Sentence{cells: s.cells.Clone(), count: s.count}
}

// key identifies a sentence by value; equal sentences share a key.
func (s *Sentence) key() string {
	return fmt.Sprintf("%s=%d", s.cells, s.count)
}

func (s *Sentence) String() string {
	return fmt.Sprintf("%s = %d", s.cells, s.count)
}
