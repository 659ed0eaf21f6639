// Package agent is a knowledge-based minesweeper player. It turns
// observations into sentences about the board and deduces which cells are
// certainly safe and which are certainly mines.
//
// An Agent is not safe for concurrent use. Every method runs to
// completion and the caller must serialize access; one agent plays one
// board.
package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gammazero/deque"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

var Log *slog.Logger = slog.Default()

var ErrInconsistent = errors.New("inconsistent knowledge")

type Option func(*Agent)

// WithDeepInference makes AddObservation repeat propagation and subset
// resolution until resolution derives nothing new, instead of running a
// single resolution pass per observation.
func WithDeepInference() Option {
	return func(a *Agent) {
		a.deep = true
	}
}

type Stats struct {
	Observations    int
	InferenceRounds int
	Derived         int
}

type Agent struct {
	height, width int
	deep          bool

	movesMade CellSet
	safes     CellSet
	mines     CellSet
	knowledge []*Sentence

	stats Stats
}

func New(height, width int, opts ...Option) *Agent {
	a := &Agent{
		height:    height,
		width:     width,
		movesMade: CellSet{},
		safes:     CellSet{},
		mines:     CellSet{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) check(c mines.Cell) error {
	if c.Row < 0 || c.Row >= a.height || c.Col < 0 || c.Col >= a.width {
		return fmt.Errorf("%w: %s on %dx%d board", mines.ErrOutOfBounds, c, a.height, a.width)
	}
	return nil
}

// MarkMine records c as a mine and removes it from every sentence.
func (a *Agent) MarkMine(c mines.Cell) error {
	if err := a.check(c); err != nil {
		return err
	}
	return a.markMine(c)
}

// MarkSafe records c as safe and removes it from every sentence.
func (a *Agent) MarkSafe(c mines.Cell) error {
	if err := a.check(c); err != nil {
		return err
	}
	return a.markSafe(c)
}

func (a *Agent) markMine(c mines.Cell) error {
	if a.safes.Has(c) {
		return fmt.Errorf("%w: %s is known to be safe", ErrInconsistent, c)
	}
	a.mines.Add(c)
	for _, s := range a.knowledge {
		s.MarkMine(c)
	}
	return a.validate(c)
}

func (a *Agent) markSafe(c mines.Cell) error {
	if a.mines.Has(c) {
		return fmt.Errorf("%w: %s is known to be a mine", ErrInconsistent, c)
	}
	a.safes.Add(c)
	for _, s := range a.knowledge {
		s.MarkSafe(c)
	}
	return a.validate(c)
}

func (a *Agent) validate(c mines.Cell) error {
	for _, s := range a.knowledge {
		if !s.Consistent() {
			return fmt.Errorf("%w: %s after marking %s", ErrInconsistent, s, c)
		}
	}
	return nil
}

// AddObservation tells the agent that the safe cell c, which has just been
// played, borders count mines.
func (a *Agent) AddObservation(c mines.Cell, count int) error {
	if err := a.check(c); err != nil {
		return err
	}

	a.stats.Observations++
	a.movesMade.Add(c)
	if err := a.markSafe(c); err != nil {
		return err
	}

	/*
	 * Only undetermined neighbours go into the new sentence; every
	 * neighbour already known to be a mine accounts for one of count.
	 */
	unknown := CellSet{}
	mineCount := count
	for _, n := range mines.Neighbors(c, a.height, a.width) {
		switch {
		case a.mines.Has(n):
			mineCount--
		case a.safes.Has(n):
		default:
			unknown.Add(n)
		}
	}

	if len(unknown) > 0 {
		s := newSentence(unknown, mineCount)
		if !s.Consistent() {
			return fmt.Errorf("%w: %s observed %d gives %s", ErrInconsistent, c, count, s)
		}
		a.knowledge = append(a.knowledge, s)
		Log.Debug("new sentence", slog.String("cell", c.String()), slog.String("sentence", s.String()))
	} else if mineCount != 0 {
		return fmt.Errorf("%w: %s observed %d, %d mines unaccounted for",
			ErrInconsistent, c, count, mineCount)
	}

	for {
		if err := a.infer(); err != nil {
			return err
		}
		n, err := a.resolve()
		if err != nil {
			return err
		}
		if !a.deep || n == 0 {
			break
		}
	}
	return nil
}

type fact struct {
	cell mines.Cell
	mine bool
}

// infer marks every cell some sentence proves to be a mine or safe and
// rescans until no sentence proves anything.
func (a *Agent) infer() error {
	var pending deque.Deque[fact]
	for {
		newMines, newSafes := CellSet{}, CellSet{}
		for _, s := range a.knowledge {
			newMines.Union(s.KnownMines())
			newSafes.Union(s.KnownSafes())
		}
		if len(newMines) == 0 && len(newSafes) == 0 {
			return nil
		}
		a.stats.InferenceRounds++

		for _, c := range newMines.Sorted() {
			if newSafes.Has(c) {
				return fmt.Errorf("%w: %s is both safe and a mine", ErrInconsistent, c)
			}
			pending.PushBack(fact{c, true})
		}
		for _, c := range newSafes.Sorted() {
			pending.PushBack(fact{c, false})
		}

		for pending.Len() > 0 {
			f := pending.PopFront()
			var err error
			if f.mine {
				err = a.markMine(f.cell)
			} else {
				err = a.markSafe(f.cell)
			}
			if err != nil {
				return err
			}
		}

		Log.Debug("inferred",
			slog.String("mines", newMines.String()),
			slog.String("safes", newSafes.String()),
		)
	}
}

// resolve runs one pass of subset resolution: whenever the cells of A are
// a proper subset of the cells of B, the cells of B \ A hold exactly
// B.count - A.count mines. New sentences are appended to the knowledge
// base and their number is returned.
func (a *Agent) resolve() (int, error) {
	seen := make(map[string]struct{}, len(a.knowledge))
	for _, s := range a.knowledge {
		seen[s.key()] = struct{}{}
	}

	var derived []*Sentence
	for _, s1 := range a.knowledge {
		/*
		 * An empty sentence only ever reproduces the other one.
		 */
		if len(s1.cells) == 0 {
			continue
		}
		for _, s2 := range a.knowledge {
			if len(s1.cells) >= len(s2.cells) || !s1.cells.SubsetOf(s2.cells) {
				continue
			}
			s := newSentence(s2.cells.Difference(s1.cells), s2.count-s1.count)
			if !s.Consistent() {
				return 0, fmt.Errorf("%w: %s and %s give %s", ErrInconsistent, s1, s2, s)
			}
			k := s.key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			derived = append(derived, s)
		}
	}

	if len(derived) > 0 {
		a.knowledge = append(a.knowledge, derived...)
		a.stats.Derived += len(derived)
		Log.Debug("derived sentences", slog.Int("count", len(derived)))
	}
	return len(derived), nil
}

func (a *Agent) Height() int { return a.height }

func (a *Agent) Width() int { return a.width }

func (a *Agent) Stats() Stats { return a.stats }

func (a *Agent) IsKnownSafe(c mines.Cell) bool { return a.safes.Has(c) }

func (a *Agent) IsKnownMine(c mines.Cell) bool { return a.mines.Has(c) }

func (a *Agent) Safes() []mines.Cell { return a.safes.Sorted() }

func (a *Agent) Mines() []mines.Cell { return a.mines.Sorted() }

func (a *Agent) MovesMade() []mines.Cell { return a.movesMade.Sorted() }

// Knowledge returns copies of the sentences in insertion order.
func (a *Agent) Knowledge() []Sentence {
	ret := make([]Sentence, 0, len(a.knowledge))
	for _, s := range a.knowledge {
		ret = append(ret, s.clone())
	}
	return ret
}
