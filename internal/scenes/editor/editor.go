// Package editor is the level editor scene: a cursor over the tile grid,
// toggling with the keyboard or pointer, saving and loading through the
// configured store.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/levelgrid"
	"github.com/vovakirdan/arcade-features/internal/registry"
)

// ID is the registry identifier of the scene.
const ID = "editor"

const (
	originX   = 1
	originY   = 2
	ioTimeout = 5 * time.Second
)

// Game implements the level editor scene.
type Game struct {
	grid    *levelgrid.Grid
	logger  *log.Logger
	cursorX int
	cursorY int
	status  string
	paused  bool
}

func init() {
	registry.Register(ID, "Level Editor", func(deps registry.Deps) (registry.Game, error) {
		return New(deps)
	})
}

// New creates the editor from injected dependencies. A nil store leaves
// saving and loading disabled.
func New(deps registry.Deps) (*Game, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	ed := deps.Features.Editor

	var store levelgrid.Store
	if deps.Store != nil {
		store = deps.Store
	}
	grid, err := levelgrid.New(ed.ViewportWidth, ed.ViewportHeight, ed.TileSize, store,
		levelgrid.WithKey(ed.Key), levelgrid.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Game{grid: grid, logger: logger}, nil
}

// ID returns the scene identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Level Editor" }

// Grid exposes the edited grid.
func (g *Game) Grid() *levelgrid.Grid { return g.grid }

// Status returns the result line of the last action.
func (g *Game) Status() string { return g.status }

// Reset clears the grid and homes the cursor.
func (g *Game) Reset(core.RuntimeConfig) {
	g.grid.Clear()
	g.cursorX, g.cursorY = 0, 0
	g.status = "Arrows move  Space toggles  S saves  L loads"
	g.paused = false
}

// Step applies one tick of input.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.cursorY--
	case in.Has(core.ActionDown):
		g.cursorY++
	case in.Has(core.ActionLeft):
		g.cursorX--
	case in.Has(core.ActionRight):
		g.cursorX++
	}
	g.cursorX = core.Clamp(g.cursorX, 0, g.grid.Width()-1)
	g.cursorY = core.Clamp(g.cursorY, 0, g.grid.Height()-1)

	if in.Has(core.ActionToggle) {
		g.toggle(g.cursorX, g.cursorY)
	}
	for _, p := range in.Clicks {
		g.click(p)
	}

	switch {
	case in.Has(core.ActionSave):
		g.save()
	case in.Has(core.ActionLoad):
		g.load()
	case in.Has(core.ActionRestart):
		g.grid.Clear()
		g.status = "Grid cleared"
	}

	return core.StepResult{State: g.State()}
}

// click maps a screen cell to viewport units and toggles the tile there.
// Tiles are two columns wide on screen.
func (g *Game) click(p core.Pointer) {
	ts := g.grid.TileSize()
	px := (p.X - originX) * ts / 2
	py := (p.Y - originY) * ts
	if p.X < originX || p.Y < originY {
		return
	}
	x, y, ok := g.grid.TileAt(px, py)
	if !ok {
		return
	}
	g.cursorX, g.cursorY = x, y
	g.toggle(x, y)
}

func (g *Game) toggle(x, y int) {
	if _, err := g.grid.Toggle(x, y); err != nil {
		g.status = err.Error()
		return
	}
	state := "empty"
	if g.grid.Tile(x, y) {
		state = "filled"
	}
	g.status = fmt.Sprintf("Tile (%d, %d) %s", x, y, state)
}

func (g *Game) save() {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	if err := g.grid.Save(ctx); err != nil {
		g.logger.Error("cannot save level", "error", err)
		g.status = "Save failed: " + err.Error()
		return
	}
	g.status = fmt.Sprintf("Level saved (%d tiles)", g.grid.Filled())
}

func (g *Game) load() {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	err := g.grid.Load(ctx)
	switch {
	case err == nil:
		g.status = fmt.Sprintf("Level loaded (%d tiles)", g.grid.Filled())
	case errors.Is(err, levelgrid.ErrNoLevelData):
		g.status = "No level data found"
	default:
		g.logger.Error("cannot load level", "error", err)
		g.status = "Load failed: " + err.Error()
	}
}

// State returns the scene state; the score is the number of filled tiles.
func (g *Game) State() core.GameState {
	return core.GameState{Score: g.grid.Filled(), Paused: g.paused}
}

// Render draws the grid, the cursor and the status line.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	dst.DrawText(0, 0, fmt.Sprintf(" Level Editor | %dx%d tiles  Filled: %d  Cursor: %d,%d",
		g.grid.Width(), g.grid.Height(), g.grid.Filled(), g.cursorX, g.cursorY))
	for x, n := 0, dst.Width(); x < n; x++ {
		dst.Set(x, 1, '─')
	}

	g.grid.Render(dst, originX, originY)

	cx, cy := originX+g.cursorX*2, originY+g.cursorY
	r := '▒'
	if g.grid.Tile(g.cursorX, g.cursorY) {
		r = '▓'
	}
	dst.SetColored(cx, cy, r, core.ColorYellow)
	dst.SetColored(cx+1, cy, r, core.ColorYellow)

	dst.DrawTextColored(0, dst.Height()-1, " "+g.status, core.ColorGray)
	if g.paused {
		dst.DrawTextCentered(dst.Height()/2, "Paused - press P to continue")
	}
}
