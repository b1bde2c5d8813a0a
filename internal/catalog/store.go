// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists extracted deck text in a SQLite database
// with FTS5 full-text search, so a workflow can answer "which slide in
// which deck says X" without re-opening every package. The catalog is
// the only durable store in the pipeline; every other stage is a pure
// transformation over its inputs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deck-engine/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the deck catalog database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the catalog database at
// catalogDir/catalog.db, creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			slide_count INTEGER NOT NULL,
			file_mod_time TEXT NOT NULL,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS shapes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			deck_id TEXT NOT NULL REFERENCES decks(id),
			slide_id TEXT NOT NULL,
			shape_id TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shapes_deck_id ON shapes(deck_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='shapes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE shapes_fts USING fts5(content, content=shapes, content_rowid=rowid)`,
			`CREATE TRIGGER shapes_ai AFTER INSERT ON shapes BEGIN
				INSERT INTO shapes_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER shapes_ad AFTER DELETE ON shapes BEGIN
				INSERT INTO shapes_fts(shapes_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IndexSummary holds counts from a catalog indexing run.
type IndexSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of decks processed.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// DeckID derives the catalog identifier for a deck path.
func DeckID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IndexDeck ingests one extracted inventory. Decks whose file has not
// changed since the last run are skipped.
func (s *Store) IndexDeck(ctx context.Context, path string, inv *types.Inventory, w io.Writer) (IndexSummary, error) {
	var summary IndexSummary
	deckID := DeckID(path)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", deckID, err)
		summary.Failed++
		return summary, err
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM decks WHERE id = ?`, deckID,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s\n", deckID)
		summary.Skipped++
		return summary, nil
	}
	isUpdate := err == nil

	if err := s.ingestDeck(ctx, deckID, path, inv, modTime, isUpdate); err != nil {
		fmt.Fprintf(w, "failed  %s: %v\n", deckID, err)
		summary.Failed++
		return summary, err
	}

	if isUpdate {
		fmt.Fprintf(w, "updated %s (%d slides)\n", deckID, inv.SlideCount())
		summary.Updated++
	} else {
		fmt.Fprintf(w, "indexed %s (%d slides)\n", deckID, inv.SlideCount())
		summary.Indexed++
	}
	return summary, nil
}

func (s *Store) ingestDeck(ctx context.Context, deckID, path string, inv *types.Inventory, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shapes WHERE deck_id = ?`, deckID); err != nil {
			return fmt.Errorf("deleting old shapes: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO decks (id, path, slide_count, file_mod_time, indexed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			path=excluded.path, slide_count=excluded.slide_count,
			file_mod_time=excluded.file_mod_time, indexed_at=excluded.indexed_at`,
		deckID, path, inv.SlideCount(), modTime, now,
	)
	if err != nil {
		return fmt.Errorf("upserting deck: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shapes (deck_id, slide_id, shape_id, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, slideID := range sortedKeys(inv.Slides) {
		shapes := inv.Slides[slideID]
		for _, shapeID := range sortedKeys(shapes) {
			content := shapeText(shapes[shapeID])
			if content == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, deckID, slideID, shapeID, content); err != nil {
				return fmt.Errorf("inserting %s/%s: %w", slideID, shapeID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func shapeText(shape types.Shape) string {
	var lines []string
	for _, p := range shape.Paragraphs {
		if strings.TrimSpace(p.Text) != "" {
			lines = append(lines, p.Text)
		}
	}
	return strings.Join(lines, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SearchResult is one full-text hit with provenance back to the deck,
// slide, and shape.
type SearchResult struct {
	DeckID  string `json:"deck_id" yaml:"deck_id"`
	Path    string `json:"path" yaml:"path"`
	SlideID string `json:"slide_id" yaml:"slide_id"`
	ShapeID string `json:"shape_id" yaml:"shape_id"`
	Snippet string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 query over the catalog, best matches first.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sh.deck_id, d.path, sh.slide_id, sh.shape_id,
		        snippet(shapes_fts, 0, '[', ']', '…', 8)
		 FROM shapes_fts
		 JOIN shapes sh ON sh.rowid = shapes_fts.rowid
		 JOIN decks d ON d.id = sh.deck_id
		 WHERE shapes_fts MATCH ?
		 ORDER BY bm25(shapes_fts)
		 LIMIT ?`,
		query, s.maxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DeckID, &r.Path, &r.SlideID, &r.ShapeID, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	return results, nil
}

// Decks lists the cataloged decks, most recently indexed first.
func (s *Store) Decks(ctx context.Context) ([]DeckInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, slide_count, indexed_at FROM decks ORDER BY indexed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	defer rows.Close()

	var decks []DeckInfo
	for rows.Next() {
		var d DeckInfo
		if err := rows.Scan(&d.ID, &d.Path, &d.SlideCount, &d.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning deck: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeckInfo is a catalog listing entry.
type DeckInfo struct {
	ID         string `json:"id" yaml:"id"`
	Path       string `json:"path" yaml:"path"`
	SlideCount int    `json:"slide_count" yaml:"slide_count"`
	IndexedAt  string `json:"indexed_at" yaml:"indexed_at"`
}
