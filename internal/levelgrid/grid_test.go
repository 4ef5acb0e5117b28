package levelgrid

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/core"
)

type memStore struct {
	data map[string][]byte
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func newTestGrid(t *testing.T, store Store, buf *bytes.Buffer) *Grid {
	t.Helper()
	g, err := New(800, 600, 32, store, WithLogger(log.New(buf)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g
}

func TestNewDimensions(t *testing.T) {
	g := newTestGrid(t, nil, &bytes.Buffer{})
	if g.Width() != 25 || g.Height() != 18 {
		t.Errorf("grid = %dx%d, expected 25x18", g.Width(), g.Height())
	}
	if g.Key() != DefaultKey {
		t.Errorf("Key() = %q, expected %q", g.Key(), DefaultKey)
	}

	if _, err := New(800, 600, 0, nil); err == nil {
		t.Error("New() should reject zero tile size")
	}
	if _, err := New(10, 600, 32, nil); err == nil {
		t.Error("New() should reject a viewport narrower than one tile")
	}
}

func TestToggle(t *testing.T) {
	g := newTestGrid(t, nil, &bytes.Buffer{})

	tint, err := g.Toggle(3, 4)
	if err != nil || tint != TintOn || !g.Tile(3, 4) {
		t.Fatalf("first Toggle() = %v, %v; expected filled red tile", tint, err)
	}
	tint, _ = g.Toggle(3, 4)
	if tint != TintOff || g.Tile(3, 4) {
		t.Errorf("second Toggle() = %v, expected empty white tile", tint)
	}
}

func TestToggleOutOfBounds(t *testing.T) {
	var buf bytes.Buffer
	g := newTestGrid(t, nil, &buf)

	for _, p := range [][2]int{{-1, 0}, {25, 0}, {0, 18}} {
		if _, err := g.Toggle(p[0], p[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Toggle(%d, %d) error = %v, expected ErrOutOfBounds", p[0], p[1], err)
		}
	}
	if g.Filled() != 0 {
		t.Error("out of bounds toggle changed the grid")
	}
	if !strings.Contains(buf.String(), "toggle outside grid") {
		t.Error("out of bounds toggle not logged")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	g := newTestGrid(t, store, &bytes.Buffer{})

	pattern := [][2]int{{0, 0}, {24, 17}, {5, 9}, {6, 9}, {12, 0}}
	for _, p := range pattern {
		g.Toggle(p[0], p[1])
	}
	want := g.Cells()

	if err := g.Save(ctx); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	g.Clear()
	g.Toggle(1, 1)
	if err := g.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	got := g.Cells()
	for y := range want {
		for x := range want[y] {
			if got[y][x] != want[y][x] {
				t.Fatalf("tile (%d, %d) = %v after load, expected %v", x, y, got[y][x], want[y][x])
			}
		}
	}

	// A second grid with the same geometry sees the same level.
	other := newTestGrid(t, store, &bytes.Buffer{})
	if err := other.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if other.Filled() != len(pattern) {
		t.Errorf("Filled() = %d, expected %d", other.Filled(), len(pattern))
	}
}

func TestSaveFormat(t *testing.T) {
	store := newMemStore()
	g, err := New(64, 32, 32, store)
	if err != nil {
		t.Fatal(err)
	}
	g.Toggle(1, 0)
	if err := g.Save(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := string(store.data[DefaultKey]); got != "[[0,1]]" {
		t.Errorf("saved %q, expected [[0,1]]", got)
	}
}

func TestLoadMissing(t *testing.T) {
	var buf bytes.Buffer
	g := newTestGrid(t, newMemStore(), &buf)
	g.Toggle(2, 2)

	if err := g.Load(context.Background()); !errors.Is(err, ErrNoLevelData) {
		t.Errorf("Load() error = %v, expected ErrNoLevelData", err)
	}
	if !g.Tile(2, 2) {
		t.Error("failed load changed the grid")
	}
	if !strings.Contains(buf.String(), "no level data found") {
		t.Error("missing data not logged")
	}
}

func TestLoadDimensionMismatch(t *testing.T) {
	store := newMemStore()
	store.data[DefaultKey] = []byte("[[1,1],[1,1]]")
	g := newTestGrid(t, store, &bytes.Buffer{})

	if err := g.Load(context.Background()); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Load() error = %v, expected ErrDimensionMismatch", err)
	}
	if g.Filled() != 0 {
		t.Error("mismatched load changed the grid")
	}
}

func TestLoadMalformedAndStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.data[DefaultKey] = []byte(`{"not":"a grid"}`)
	g := newTestGrid(t, store, &bytes.Buffer{})

	if err := g.Load(ctx); err == nil {
		t.Error("Load() should fail on malformed data")
	}

	store.err = errors.New("disk full")
	if err := g.Save(ctx); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Save() error = %v, expected wrapped store error", err)
	}

	bare := newTestGrid(t, nil, &bytes.Buffer{})
	if err := bare.Save(ctx); !errors.Is(err, ErrNoStore) {
		t.Errorf("Save() without store = %v, expected ErrNoStore", err)
	}
}

func TestDecodeAcceptsBooleans(t *testing.T) {
	tiles, err := Decode([]byte(`[[true,false],[0,1]]`))
	if err != nil {
		t.Fatal(err)
	}
	if !tiles[0][0] || tiles[0][1] || tiles[1][0] || !tiles[1][1] {
		t.Errorf("Decode() = %v", tiles)
	}
	if _, err := Decode([]byte(`[["x"]]`)); err == nil {
		t.Error("Decode() should reject string tiles")
	}
}

func TestTileAt(t *testing.T) {
	g := newTestGrid(t, nil, &bytes.Buffer{})
	if x, y, ok := g.TileAt(65, 33); !ok || x != 2 || y != 1 {
		t.Errorf("TileAt(65, 33) = %d, %d, %v", x, y, ok)
	}
	if _, _, ok := g.TileAt(-1, 0); ok {
		t.Error("TileAt(-1, 0) should be outside")
	}
	if _, _, ok := g.TileAt(800, 0); ok {
		t.Error("TileAt(800, 0) should be outside")
	}
}

func TestRender(t *testing.T) {
	g, err := New(96, 32, 32, nil)
	if err != nil {
		t.Fatal(err)
	}
	g.Toggle(1, 0)
	s := core.NewScreen(8, 2)
	g.Render(s, 1, 1)

	if s.Row(1) != " ░░██░░ " {
		t.Errorf("Row(1) = %q", s.Row(1))
	}
	if s.GetCell(3, 1).Color != TintOn || s.GetCell(1, 1).Color != TintOff {
		t.Error("Render() should tint tiles")
	}
}
