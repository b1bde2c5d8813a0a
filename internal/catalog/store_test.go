package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/deck-engine/internal/decktest"
	"github.com/pdiddy/deck-engine/internal/extract"
	"github.com/pdiddy/deck-engine/internal/inventory"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := NewStore(types.CatalogConfig{
		CatalogDir: filepath.Join(tmpDir, "catalog"),
		MaxResults: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, tmpDir
}

// writeDeck writes a pptx fixture to disk and returns its path and
// extracted inventory.
func writeDeck(t *testing.T, dir, name string, shapes ...string) (string, *types.Inventory) {
	t.Helper()
	pkg := decktest.New(shapes...)
	path := filepath.Join(dir, name)
	if err := pkg.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	m, err := extract.Extract(pkg)
	if err != nil {
		t.Fatal(err)
	}
	return path, inventory.Build(m)
}

func indexDeck(t *testing.T, store *Store, path string, inv *types.Inventory) IndexSummary {
	t.Helper()
	var buf strings.Builder
	summary, err := store.IndexDeck(context.Background(), path, inv, &buf)
	if err != nil {
		t.Fatalf("IndexDeck: %v (output: %s)", err, buf.String())
	}
	return summary
}

// --- schema ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testStore(t)

	for _, table := range []string{"decks", "shapes", "shapes_fts"} {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	catalogDir := filepath.Join(tmpDir, "catalog")

	store, err := NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(catalogDir, dbFile)); os.IsNotExist(err) {
		t.Error("database file not created")
	}
}

// --- indexing ---

func TestDeckID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/decks/q3-review.pptx", "q3-review"},
		{"plain.pptx", "plain"},
		{"/a/b/noext", "noext"},
	}
	for _, tt := range tests {
		if got := DeckID(tt.path); got != tt.want {
			t.Errorf("DeckID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIndexDeck(t *testing.T) {
	store, tmpDir := testStore(t)
	path, inv := writeDeck(t, tmpDir, "review.pptx",
		decktest.TitleShape("Quarterly Review"),
		decktest.BodyShape("revenue grew fifteen percent", "headcount flat"),
	)

	summary := indexDeck(t, store, path, inv)
	if summary.Indexed != 1 {
		t.Errorf("Indexed = %d, want 1", summary.Indexed)
	}

	var shapeCount int
	if err := store.db.QueryRow(`SELECT count(*) FROM shapes`).Scan(&shapeCount); err != nil {
		t.Fatal(err)
	}
	if shapeCount != 2 {
		t.Errorf("shapes rows = %d, want 2 (title + body)", shapeCount)
	}
}

func TestIndexDeckSkipsUnchanged(t *testing.T) {
	store, tmpDir := testStore(t)
	path, inv := writeDeck(t, tmpDir, "deck.pptx", decktest.TitleShape("Stable"))

	indexDeck(t, store, path, inv)
	summary := indexDeck(t, store, path, inv)
	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Errorf("summary = %+v, want one skip", summary)
	}
}

func TestIndexDeckUpdatesChanged(t *testing.T) {
	store, tmpDir := testStore(t)
	path, inv := writeDeck(t, tmpDir, "deck.pptx", decktest.TitleShape("Before"))
	indexDeck(t, store, path, inv)

	// Rewrite the deck with new content and a newer mod time.
	path, inv = writeDeck(t, tmpDir, "deck.pptx", decktest.TitleShape("After edit"))
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	summary := indexDeck(t, store, path, inv)
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want one update", summary)
	}

	// Old rows replaced, not accumulated.
	results, err := store.Search(context.Background(), "Before")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("stale content still searchable: %+v", results)
	}
}

func TestIndexDeckMissingFile(t *testing.T) {
	store, tmpDir := testStore(t)
	var buf strings.Builder
	inv := &types.Inventory{Slides: map[string]map[string]types.Shape{}}

	summary, err := store.IndexDeck(context.Background(), filepath.Join(tmpDir, "gone.pptx"), inv, &buf)
	if err == nil {
		t.Fatal("expected error for missing deck file")
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

// --- search ---

func TestSearch(t *testing.T) {
	store, tmpDir := testStore(t)

	pathA, invA := writeDeck(t, tmpDir, "finance.pptx",
		decktest.TitleShape("Budget Overview"),
		decktest.BodyShape("capital expenditure stayed within budget"),
	)
	pathB, invB := writeDeck(t, tmpDir, "eng.pptx",
		decktest.TitleShape("Engineering Roadmap"),
	)
	indexDeck(t, store, pathA, invA)
	indexDeck(t, store, pathB, invB)

	tests := []struct {
		query    string
		wantDeck string
		wantMin  int
	}{
		{"budget", "finance", 1},
		{"roadmap", "eng", 1},
		{"nonexistent-term-xyzzy", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := store.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(results) < tt.wantMin {
				t.Fatalf("got %d results, want >= %d", len(results), tt.wantMin)
			}
			for _, r := range results {
				if r.DeckID != tt.wantDeck {
					t.Errorf("result from deck %q, want %q", r.DeckID, tt.wantDeck)
				}
				if r.SlideID == "" || r.ShapeID == "" {
					t.Errorf("result missing location: %+v", r)
				}
				if r.Snippet == "" {
					t.Errorf("result missing snippet: %+v", r)
				}
			}
		})
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	store, _ := testStore(t)
	if _, err := store.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestSearchRespectsMaxResults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(types.CatalogConfig{
		CatalogDir: filepath.Join(tmpDir, "catalog"),
		MaxResults: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	path, inv := writeDeck(t, tmpDir, "deck.pptx",
		decktest.BodyShape("alpha item"),
		decktest.BodyShape("alpha again"),
		decktest.BodyShape("alpha third"),
	)
	var buf strings.Builder
	if _, err := store.IndexDeck(context.Background(), path, inv, &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Search(context.Background(), "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want <= 2", len(results))
	}
}

// --- listing ---

func TestDecks(t *testing.T) {
	store, tmpDir := testStore(t)
	path, inv := writeDeck(t, tmpDir, "only.pptx",
		decktest.TitleShape("One"),
		decktest.TitleShape("Two"),
	)
	indexDeck(t, store, path, inv)

	decks, err := store.Decks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(decks) != 1 {
		t.Fatalf("got %d decks, want 1", len(decks))
	}
	d := decks[0]
	if d.ID != "only" || d.Path != path || d.SlideCount != 2 {
		t.Errorf("deck = %+v", d)
	}
	if d.IndexedAt == "" {
		t.Error("IndexedAt not recorded")
	}
}

// --- summary ---

func TestIndexSummaryTotal(t *testing.T) {
	s := IndexSummary{Indexed: 2, Updated: 1, Skipped: 3, Failed: 1}
	if s.Total() != 7 {
		t.Errorf("Total() = %d, want 7", s.Total())
	}
}
