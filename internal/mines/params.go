package mines

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

type GameParams struct {
	Height    int `schema:"height,required" json:"height"`
	Width     int `schema:"width,required" json:"width"`
	MineCount int `schema:"mine_count,required" json:"mine_count"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func (p GameParams) Unpack() (h int, w int, mc int) {
	return p.Height, p.Width, p.MineCount
}

func (p GameParams) Validate() error {
	if p.Height <= 0 || p.Width <= 0 || p.MineCount < 0 {
		return fmt.Errorf("%w: %dx%d with %d mines",
			ErrInvalidParams, p.Height, p.Width, p.MineCount)
	}
	if p.MineCount > p.Height*p.Width {
		return fmt.Errorf("%w: %d mines on %dx%d",
			ErrTooManyMines, p.MineCount, p.Height, p.Width)
	}
	return nil
}

func (p GameParams) InBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < p.Height && 0 <= c.Col && c.Col < p.Width
}

func (p GameParams) CellCount() int {
	return p.Height * p.Width
}

// Seed encodes params as "height:width:mines".
func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Height, p.Width, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Height, &p.Width, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

// DecodeParams reads params from query values such as
// height=8&width=8&mine_count=10.
func DecodeParams(src url.Values) (*GameParams, error) {
	p := &GameParams{}
	if err := decoder.Decode(p, src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return p, nil
}

// ParseParams accepts either a query string or a seed.
func ParseParams(s string) (*GameParams, error) {
	if !strings.Contains(s, "=") {
		return ParseSeed(s)
	}
	values, err := url.ParseQuery(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return DecodeParams(values)
}
