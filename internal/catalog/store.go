// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a SQLite index of measurement metadata, one row
// per instrument file, for lab-notebook queries across a data directory.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/spm-report/internal/nanonis"
	"github.com/pdiddy/spm-report/internal/params"
	"github.com/pdiddy/spm-report/pkg/types"
)

// Entry is one catalog row.
type Entry struct {
	Path       string
	Name       string
	Index      int
	Format     string
	Bias       float64 // volts
	Setpoint   float64 // amps
	Recorded   string
	Comment    string
	IngestedAt time.Time
}

// Summary is the outcome of one catalog scan.
type Summary struct {
	Indexed int
	Failed  int
}

// Store wraps the catalog database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at path, creating the
// schema if it does not exist.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS measurements (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			idx INTEGER,
			format TEXT NOT NULL,
			bias REAL,
			setpoint REAL,
			recorded TEXT,
			comment TEXT,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_idx ON measurements(idx)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_format ON measurements(format)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// fileIndex extracts the zero-padded index embedded before the extension,
// e.g. Au111_0016.sxm -> 16. Files without one return -1.
var fileIndexPattern = regexp.MustCompile(`_(\d{4})\.[^.]+$`)

func fileIndex(name string) int {
	m := fileIndexPattern.FindStringSubmatch(name)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// Scan walks dir for supported instrument files, parses each, and upserts
// one catalog row per file. Parse failures are reported on w and counted,
// not fatal.
func (s *Store) Scan(ctx context.Context, dir string, w io.Writer) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading %s: %w", dir, err)
	}

	var sum Summary
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".sxm", ".dat", ".3ds":
		default:
			continue
		}

		path := filepath.Join(dir, de.Name())
		m, err := nanonis.Load(path)
		if err != nil {
			fmt.Fprintf(w, "  warning: %v\n", err)
			sum.Failed++
			continue
		}

		entry := entryFrom(m, w)
		if err := s.upsert(ctx, entry); err != nil {
			return sum, fmt.Errorf("indexing %s: %w", m.Name, err)
		}
		fmt.Fprintf(w, "indexed: %s\n", m.Name)
		sum.Indexed++
	}
	return sum, nil
}

func entryFrom(m *types.Measurement, w io.Writer) Entry {
	e := Entry{
		Path:       m.Path,
		Name:       m.Name,
		Index:      fileIndex(m.Name),
		Format:     string(m.Kind),
		IngestedAt: time.Now().UTC(),
	}

	switch m.Kind {
	case types.FormatScan:
		if p, err := params.FromScan(m.Scan, w); err == nil {
			e.Bias = p.Bias
			e.Setpoint = p.Setpoint
			e.Recorded = p.ScanDate + " " + p.ScanTime
		}
		e.Comment = m.Scan.Header["comment"]
	case types.FormatSpectrum:
		if p, err := params.FromSpectrum(m.Spectrum, w); err == nil {
			e.Bias = p.Bias
			e.Setpoint = p.Setpoint
			e.Recorded = p.SavedDate
			e.Comment = p.Comment
		}
	case types.FormatGrid:
		p := params.FromGrid(m.Grid)
		e.Recorded = p.StartTime
		e.Comment = m.Grid.Header["Comment"]
	}
	return e
}

func (s *Store) upsert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO measurements (path, name, idx, format, bias, setpoint, recorded, comment, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			idx = excluded.idx,
			format = excluded.format,
			bias = excluded.bias,
			setpoint = excluded.setpoint,
			recorded = excluded.recorded,
			comment = excluded.comment,
			ingested_at = excluded.ingested_at`,
		e.Path, e.Name, e.Index, e.Format, e.Bias, e.Setpoint, e.Recorded, e.Comment,
		e.IngestedAt.Format(time.RFC3339))
	return err
}

// List returns catalog rows ordered by file index, optionally restricted to
// one format ("sxm", "dat", "3ds").
func (s *Store) List(ctx context.Context, format string) ([]Entry, error) {
	return s.Query(ctx, Filter{Format: format})
}

// Filter narrows a catalog query. Zero-valued fields do not constrain;
// FromIndex/ToIndex bound the file index inclusively when positive.
type Filter struct {
	Format    string
	Name      string // substring match on the file name
	FromIndex int
	ToIndex   int
}

// Query returns catalog rows matching the filter, ordered by file index.
func (s *Store) Query(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT path, name, idx, format, bias, setpoint, recorded, comment, ingested_at
		FROM measurements WHERE 1=1`
	var args []any
	if f.Format != "" {
		query += ` AND format = ?`
		args = append(args, f.Format)
	}
	if f.Name != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+f.Name+"%")
	}
	if f.FromIndex > 0 {
		query += ` AND idx >= ?`
		args = append(args, f.FromIndex)
	}
	if f.ToIndex > 0 {
		query += ` AND idx <= ?`
		args = append(args, f.ToIndex)
	}
	query += ` ORDER BY idx, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ingested string
		if err := rows.Scan(&e.Path, &e.Name, &e.Index, &e.Format, &e.Bias, &e.Setpoint,
			&e.Recorded, &e.Comment, &ingested); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, ingested); err == nil {
			e.IngestedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
