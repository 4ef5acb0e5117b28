// Package levelgrid is the tile grid behind the level editor: a boolean
// cell per tile, toggled by the user and persisted as one JSON document.
package levelgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/core"
)

// DefaultKey is the storage key the grid is saved under.
const DefaultKey = "levelData"

// Tints for filled and empty tiles.
const (
	TintOn  = core.ColorRed
	TintOff = core.ColorWhite
)

var (
	// ErrNotFound is returned by a Store when the key has no value.
	ErrNotFound = errors.New("levelgrid: key not found")

	// ErrOutOfBounds is returned for tile coordinates outside the grid.
	ErrOutOfBounds = errors.New("levelgrid: tile out of bounds")

	// ErrNoLevelData is returned by Load when nothing was saved yet.
	ErrNoLevelData = errors.New("levelgrid: no level data found")

	// ErrDimensionMismatch is returned by Load when the saved grid has a
	// different size than the current one.
	ErrDimensionMismatch = errors.New("levelgrid: saved grid size does not match")

	// ErrNoStore is returned by Save and Load when the grid has no store.
	ErrNoStore = errors.New("levelgrid: no storage configured")
)

// Store is the persistent key-value storage the grid saves into.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Option configures a Grid.
type Option func(*Grid)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(g *Grid) {
		if key != "" {
			g.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Grid is a width x height array of on/off tiles.
type Grid struct {
	width    int
	height   int
	tileSize int
	tiles    [][]bool // [y][x]
	store    Store
	key      string
	logger   *log.Logger
}

// New creates an empty grid covering a viewW x viewH viewport with square
// tiles of tileSize. Partial tiles at the edges are dropped.
func New(viewW, viewH, tileSize int, store Store, opts ...Option) (*Grid, error) {
	if tileSize <= 0 {
		return nil, fmt.Errorf("levelgrid: tile size must be positive, got %d", tileSize)
	}
	w, h := viewW/tileSize, viewH/tileSize
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("levelgrid: viewport %dx%d holds no %dpx tiles", viewW, viewH, tileSize)
	}

	g := &Grid{
		width:    w,
		height:   h,
		tileSize: tileSize,
		tiles:    make([][]bool, h),
		store:    store,
		key:      DefaultKey,
		logger:   log.Default(),
	}
	for y := range g.tiles {
		g.tiles[y] = make([]bool, w)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Width returns the number of tile columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of tile rows.
func (g *Grid) Height() int { return g.height }

// TileSize returns the tile edge length in viewport units.
func (g *Grid) TileSize() int { return g.tileSize }

// Key returns the storage key.
func (g *Grid) Key() string { return g.key }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Tile reports whether the tile at (x, y) is filled. Out of range is empty.
func (g *Grid) Tile(x, y int) bool {
	return g.inBounds(x, y) && g.tiles[y][x]
}

// Tint returns the display tint for the tile at (x, y).
func (g *Grid) Tint(x, y int) core.Color {
	if g.Tile(x, y) {
		return TintOn
	}
	return TintOff
}

// Set fills or clears one tile.
func (g *Grid) Set(x, y int, on bool) error {
	if !g.inBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	g.tiles[y][x] = on
	return nil
}

// Toggle flips the tile at (x, y) and returns its new tint. Coordinates
// outside the grid are logged and leave it unchanged.
func (g *Grid) Toggle(x, y int) (core.Color, error) {
	if !g.inBounds(x, y) {
		g.logger.Warn("toggle outside grid", "x", x, "y", y, "width", g.width, "height", g.height)
		return TintOff, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	g.tiles[y][x] = !g.tiles[y][x]
	return g.Tint(x, y), nil
}

// TileAt maps a viewport position to tile coordinates.
func (g *Grid) TileAt(px, py int) (x, y int, ok bool) {
	if px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y = px/g.tileSize, py/g.tileSize
	return x, y, g.inBounds(x, y)
}

// Cells returns a copy of the tile array, indexed [y][x].
func (g *Grid) Cells() [][]bool {
	out := make([][]bool, g.height)
	for y := range g.tiles {
		out[y] = append([]bool(nil), g.tiles[y]...)
	}
	return out
}

// Filled returns the number of filled tiles.
func (g *Grid) Filled() int {
	n := 0
	for _, row := range g.tiles {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// Clear empties every tile.
func (g *Grid) Clear() {
	for _, row := range g.tiles {
		clear(row)
	}
}

// Save writes the whole grid to the store.
func (g *Grid) Save(ctx context.Context) error {
	if g.store == nil {
		return ErrNoStore
	}
	data, err := Encode(g.tiles)
	if err != nil {
		return err
	}
	if err := g.store.Put(ctx, g.key, data); err != nil {
		return fmt.Errorf("levelgrid: save: %w", err)
	}
	g.logger.Info("level saved", "key", g.key, "filled", g.Filled())
	return nil
}

// Load replaces the grid with the saved one. The grid is left untouched when
// nothing is saved, the data is malformed, or the sizes differ.
func (g *Grid) Load(ctx context.Context) error {
	if g.store == nil {
		return ErrNoStore
	}
	data, err := g.store.Get(ctx, g.key)
	if errors.Is(err, ErrNotFound) {
		g.logger.Error("no level data found", "key", g.key)
		return ErrNoLevelData
	}
	if err != nil {
		return fmt.Errorf("levelgrid: load: %w", err)
	}

	tiles, err := Decode(data)
	if err != nil {
		return err
	}
	if len(tiles) != g.height {
		return fmt.Errorf("%w: saved %d rows, grid has %d", ErrDimensionMismatch, len(tiles), g.height)
	}
	for y, row := range tiles {
		if len(row) != g.width {
			return fmt.Errorf("%w: saved row %d has %d tiles, grid has %d", ErrDimensionMismatch, y, len(row), g.width)
		}
	}

	for y, row := range tiles {
		copy(g.tiles[y], row)
	}
	g.logger.Info("level loaded", "key", g.key, "filled", g.Filled())
	return nil
}

// Render draws the grid with its top-left corner at (originX, originY).
// Each tile takes two columns so tiles look square in a terminal.
func (g *Grid) Render(dst *core.Screen, originX, originY int) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			r := '░'
			if g.tiles[y][x] {
				r = '█'
			}
			tint := g.Tint(x, y)
			dst.SetColored(originX+x*2, originY+y, r, tint)
			dst.SetColored(originX+x*2+1, originY+y, r, tint)
		}
	}
}

// cell accepts the 0/1 numbers the grid writes as well as JSON booleans.
type cell bool

func (c *cell) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*c = cell(t)
	case float64:
		*c = t != 0
	case nil:
		*c = false
	default:
		return fmt.Errorf("levelgrid: tile value %s is not a number or boolean", b)
	}
	return nil
}

// Encode serializes tiles as a JSON array of rows of 0/1.
func Encode(tiles [][]bool) ([]byte, error) {
	rows := make([][]int, len(tiles))
	for y, row := range tiles {
		rows[y] = make([]int, len(row))
		for x, on := range row {
			if on {
				rows[y][x] = 1
			}
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("levelgrid: encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of rows into tiles.
func Decode(data []byte) ([][]bool, error) {
	var rows [][]cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("levelgrid: decode: %w", err)
	}
	tiles := make([][]bool, len(rows))
	for y, row := range rows {
		tiles[y] = make([]bool, len(row))
		for x, c := range row {
			tiles[y][x] = bool(c)
		}
	}
	return tiles, nil
}
