// Package playground is a small scene exercising the feature modules
// together: a moving player collects coins and power-ups, clearing a wave
// counts as a win, and achievements unlock along the way.
package playground

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/achievements"
	"github.com/vovakirdan/arcade-features/internal/collectibles"
	"github.com/vovakirdan/arcade-features/internal/config"
	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/powerups"
	"github.com/vovakirdan/arcade-features/internal/registry"
)

const (
	// ID is the registry identifier of the scene.
	ID = "playground"

	hudHeight    = 2
	footerHeight = 1
	toastTTL     = 3 * time.Second
	maxToasts    = 3
	winBonus     = 10

	defaultPowerupDuration = 5 * time.Second

	// Metric names fed to the achievement tracker.
	MetricCoins     = "coins"
	MetricPowerups  = "powerups"
	MetricWins      = "wins"
	MetricWinStreak = "winStreak"
)

type toast struct {
	text string
	task *core.Task
}

// Game implements the playground scene.
type Game struct {
	features config.Features
	store    registry.Store
	logger   *log.Logger

	sched    *core.Scheduler
	tracker  *achievements.Tracker
	items    *collectibles.Registry
	powerups *powerups.Controller

	cfg    core.RuntimeConfig
	rng    *rand.Rand
	player *player
	fieldW int
	fieldH int

	wave      map[collectibles.Handle]bool
	waveStart time.Duration
	toasts    []*toast

	score    int
	coins    int
	wins     int
	paused   bool
	loaded   string // player whose saved progress was restored
	closed   bool
	lastTime time.Duration
}

func init() {
	registry.Register(ID, "Feature Playground", func(deps registry.Deps) (registry.Game, error) {
		return New(deps)
	})
}

// New creates the scene from injected dependencies.
func New(deps registry.Deps) (*Game, error) {
	if err := deps.Features.Validate(); err != nil {
		return nil, err
	}
	catalog, err := deps.Features.Catalog()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	sched := core.NewScheduler()
	effects := powerups.DefaultEffects(deps.Features.Powerups.EffectConfig())

	return &Game{
		features: deps.Features,
		store:    deps.Store,
		logger:   logger,
		sched:    sched,
		tracker:  achievements.NewTracker(catalog, logger),
		items:    collectibles.NewRegistry(logger),
		powerups: powerups.NewController(sched, effects, logger),
	}, nil
}

// ID returns the scene identifier.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Feature Playground" }

// Reset starts a fresh round. Achievement progress carries over; it is
// restored from storage the first time a player name is seen.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	if cfg.Player == "" {
		cfg.Player = core.DefaultConfig().Player
	}
	g.cfg = cfg
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.fieldW = max(1, cfg.ScreenW)
	g.fieldH = max(1, cfg.ScreenH-hudHeight-footerHeight)

	// Timers belong to the previous round's entities.
	g.powerups.ReleaseAll()
	g.sched.CancelAll()
	g.items.Clear()
	g.toasts = nil
	g.closed = false

	g.score = 0
	g.coins = 0
	g.wins = 0
	g.paused = false
	g.lastTime = 0

	pc := g.features.Player
	g.player = &player{
		pos:  core.Vec{X: float64(g.fieldW / 4), Y: float64(g.fieldH / 2)},
		vel:  core.Vec{X: pc.Speed},
		tint: core.ColorDefault,
		w:    pc.Width,
		h:    pc.Height,
	}

	g.restoreProgress()
	g.spawnWave()
	g.scheduleSpawner()
}

func (g *Game) restoreProgress() {
	if g.store == nil || g.loaded == g.cfg.Player {
		return
	}
	saved, err := g.store.LoadProgress(g.cfg.Player)
	if err != nil {
		g.logger.Error("cannot load achievement progress", "player", g.cfg.Player, "error", err)
		return
	}
	g.tracker.Restore(saved)
	g.loaded = g.cfg.Player
}

// spawnWave places the configured collectibles and restarts the clear timer.
func (g *Game) spawnWave() {
	g.wave = make(map[collectibles.Handle]bool)
	for _, s := range g.features.Collectibles.Wave {
		var h collectibles.Handle
		if typ, ok := config.PowerupType(s.Kind); ok {
			d := g.features.Powerups.Duration(typ, defaultPowerupDuration)
			h = g.spawnPowerup(s.X, s.Y, s.Width, s.Height, s.Texture, typ, d)
		} else {
			h = g.items.Create(g.fit(s.X, s.Y, s.Width, s.Height), s.Texture, s.Kind, g.collectCoin)
		}
		g.wave[h] = true
	}
	g.waveStart = g.sched.Now()
}

// fit moves a box inside the field.
func (g *Game) fit(x, y, w, h int) core.Rect {
	return core.NewRect(
		core.Clamp(x, 0, max(0, g.fieldW-w)),
		core.Clamp(y, 0, max(0, g.fieldH-h)),
		w, h,
	)
}

func (g *Game) spawnPowerup(x, y, w, h int, texture string, typ powerups.Type, d time.Duration) collectibles.Handle {
	kind := config.PowerupKindPrefix + string(typ)
	return g.items.Create(g.fit(x, y, w, h), texture, kind, func(collectibles.Collectible) error {
		if _, err := g.powerups.Activate(g.player, typ, d); err != nil {
			return err
		}
		g.observe(map[string]float64{MetricPowerups: 1})
		return nil
	})
}

func (g *Game) collectCoin(collectibles.Collectible) error {
	g.coins++
	g.score++
	g.observe(map[string]float64{MetricCoins: 1})
	return nil
}

// scheduleSpawner drops a random power-up every interval.
func (g *Game) scheduleSpawner() {
	sp := g.features.Powerups.Spawner
	types := g.features.Powerups.Types()
	if !sp.Enabled || sp.Interval <= 0 || len(types) == 0 {
		return
	}
	g.sched.After(sp.Interval, func() {
		typ := types[g.rng.Intn(len(types))]
		d := sp.MinDuration
		if span := sp.MaxDuration - sp.MinDuration; span > 0 {
			d += time.Duration(g.rng.Int63n(int64(span) + 1))
		}
		x := g.rng.Intn(max(1, g.fieldW-sp.Width+1))
		y := g.rng.Intn(max(1, g.fieldH-sp.Height+1))
		g.spawnPowerup(x, y, sp.Width, sp.Height, textureFor(typ), typ, d)
		g.scheduleSpawner()
	})
}

func textureFor(typ powerups.Type) string {
	switch typ {
	case powerups.TypeSpeed:
		return ">"
	case powerups.TypeInvincibility:
		return "*"
	}
	return "?"
}

// observe feeds the tracker and announces unlocks.
func (g *Game) observe(delta map[string]float64) {
	unlocked := g.tracker.Observe(delta)
	for _, u := range unlocked {
		g.notify("Achievement unlocked: " + u.Definition.Name)
	}
	if len(unlocked) > 0 {
		g.saveProgress()
	}
}

func (g *Game) notify(text string) {
	t := &toast{text: text}
	t.task = g.sched.After(toastTTL, func() { g.dropToast(t) })
	g.toasts = append(g.toasts, t)
	if len(g.toasts) > maxToasts {
		g.toasts[0].task.Cancel()
		g.toasts = g.toasts[1:]
	}
}

func (g *Game) dropToast(t *toast) {
	for i, cur := range g.toasts {
		if cur == t {
			g.toasts = append(g.toasts[:i], g.toasts[i+1:]...)
			return
		}
	}
}

func (g *Game) saveProgress() {
	if g.store == nil {
		return
	}
	if err := g.store.SaveProgress(g.cfg.Player, g.tracker.Snapshot()); err != nil {
		g.logger.Error("cannot save achievement progress", "player", g.cfg.Player, "error", err)
	}
}

// Step advances the scene by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.player == nil {
		g.Reset(core.DefaultConfig())
	}

	if in.Has(core.ActionRestart) {
		cfg := g.cfg
		cfg.Seed = g.rng.Int63()
		g.Reset(cfg)
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.player.turn(0, -1)
	case in.Has(core.ActionDown):
		g.player.turn(0, 1)
	case in.Has(core.ActionLeft):
		g.player.turn(-1, 0)
	case in.Has(core.ActionRight):
		g.player.turn(1, 0)
	}

	dt := g.cfg.Frame()
	g.sched.Advance(dt)
	g.player.move(dt.Seconds(), g.fieldW, g.fieldH)

	for _, p := range g.items.CollectOverlap(g.player.Bounds()) {
		delete(g.wave, p.Handle)
	}
	if len(g.wave) == 0 && len(g.features.Collectibles.Wave) > 0 {
		g.clearWave()
	}

	return core.StepResult{State: g.State()}
}

// clearWave counts a win, records the clear time and spawns the next wave.
func (g *Game) clearWave() {
	elapsed := g.sched.Now() - g.waveStart
	g.wins++
	g.score += winBonus
	g.lastTime = elapsed

	if g.store != nil {
		if _, err := g.store.SaveTime(g.cfg.Player, g.features.Leaderboard.Level, elapsed); err != nil {
			g.logger.Error("cannot save completion time", "player", g.cfg.Player, "error", err)
		}
	}
	g.notify("Wave cleared in " + leaderboard.FormatTime(elapsed))
	g.observe(map[string]float64{MetricWins: 1, MetricWinStreak: 1})
	g.spawnWave()
}

// State returns the current scene state.
func (g *Game) State() core.GameState {
	return core.GameState{Score: g.score, Paused: g.paused}
}

// Tracker exposes achievement progress for display.
func (g *Game) Tracker() *achievements.Tracker { return g.tracker }

// Close stops pending timers and saves achievement progress.
func (g *Game) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.powerups.ReleaseAll()
	g.sched.CancelAll()
	g.toasts = nil
	g.saveProgress()
	return nil
}

// Render draws the scene.
func (g *Game) Render(dst *core.Screen) {
	if g.player == nil {
		return
	}
	dst.Clear()
	g.renderHUD(dst)

	for _, c := range g.items.Live() {
		r := []rune(c.Texture)
		if len(r) == 0 {
			r = []rune{'?'}
		}
		color := core.ColorYellow
		if strings.HasPrefix(c.Kind, config.PowerupKindPrefix) {
			color = core.ColorMagenta
		}
		b := c.Bounds
		b.Y += hudHeight
		dst.DrawRect(b, r[0], color)
	}

	pb := g.player.Bounds()
	pb.Y += hudHeight
	dst.DrawRect(pb, '█', g.player.tint)

	g.renderFooter(dst)

	for i, t := range g.toasts {
		y := dst.Height() - footerHeight - len(g.toasts) + i
		dst.DrawTextColored(1, y, t.text, core.ColorBrightCyan)
	}

	if g.paused {
		dst.DrawTextCentered(dst.Height()/2, "Paused - press P to continue")
	}
}

func (g *Game) renderHUD(dst *core.Screen) {
	hud := fmt.Sprintf(" Playground | Score: %d  Coins: %d  Wins: %d  Speed: %.0f",
		g.score, g.coins, g.wins, g.player.Speed())
	if g.lastTime > 0 {
		hud += "  Last: " + leaderboard.FormatTime(g.lastTime)
	}
	dst.DrawText(0, 0, hud)
	for x, n := 0, dst.Width(); x < n; x++ {
		dst.Set(x, 1, '─')
	}
}

func (g *Game) renderFooter(dst *core.Screen) {
	var parts []string
	for _, a := range g.powerups.Active(g.player) {
		parts = append(parts, fmt.Sprintf("%s %.1fs", a.Type, a.Remaining().Seconds()))
	}
	line := " Arrows turn  P pause  R restart  Q quit"
	if len(parts) > 0 {
		line = " Active: " + strings.Join(parts, "  ")
	}
	dst.DrawTextColored(0, dst.Height()-1, line, core.ColorGray)
}
