package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sitemetrics/sitemetrics-go/internal/project"
)

const schema = `
CREATE TABLE IF NOT EXISTS imports (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    project_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    stage TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    document TEXT NOT NULL,
    import_id TEXT NOT NULL REFERENCES imports(id),
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_position ON projects(position);
`

// ImportBatch records one import into the SQLite store.
type ImportBatch struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	ProjectCount int       `json:"projectCount"`
	WarningCount int       `json:"warningCount"`
	ImportedAt   time.Time `json:"importedAt"`
}

// SQLiteProvider stores project records as JSON documents in SQLite.
type SQLiteProvider struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite store and applies the
// schema.
func OpenSQLite(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteProvider{db: db, path: path, now: time.Now}, nil
}

// Name returns the source string of the store.
func (s *SQLiteProvider) Name() string {
	return SchemeSQLite + s.path
}

// Close closes the database.
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

// Import upserts every record of the portfolio in one transaction and
// records the batch. Projects keep their original position when they are
// re-imported.
func (s *SQLiteProvider) Import(ctx context.Context, p *project.Portfolio) (*ImportBatch, error) {
	_, warnings := project.CountIssues(p.Validate())
	batch := &ImportBatch{
		ID:           uuid.NewString(),
		Source:       p.Source(),
		ProjectCount: p.Len(),
		WarningCount: warnings,
		ImportedAt:   s.now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := batch.ImportedAt.Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, project_count, warning_count, imported_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.Source, batch.ProjectCount, batch.WarningCount, stamp); err != nil {
		return nil, fmt.Errorf("recording import: %w", err)
	}

	for _, rec := range p.All() {
		doc, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding project %s: %w", rec.Code, err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO projects (code, name, stage, position, document, import_id, updated_at)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM projects), ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
    name = excluded.name,
    stage = excluded.stage,
    document = excluded.document,
    import_id = excluded.import_id,
    updated_at = excluded.updated_at`,
			rec.Code, rec.Name, rec.Stage, string(doc), batch.ID, stamp); err != nil {
			return nil, fmt.Errorf("storing project %s: %w", rec.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return batch, nil
}

// Load reads all stored projects in position order.
func (s *SQLiteProvider) Load(ctx context.Context) (*project.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, document FROM projects ORDER BY position, code`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	p := project.NewPortfolio()
	p.SetSource(s.Name())
	for rows.Next() {
		var code, doc string
		if err := rows.Scan(&code, &doc); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		rec, err := decodeRecord(code, doc)
		if err != nil {
			return nil, err
		}
		if err := p.Add(rec); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading projects: %w", err)
	}
	return p, nil
}

// Get reads one project by code.
func (s *SQLiteProvider) Get(ctx context.Context, code string) (*project.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE code = ?`, code).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project %q: %w", code, err)
	}
	return decodeRecord(code, doc)
}

// Imports lists import batches, most recent first.
func (s *SQLiteProvider) Imports(ctx context.Context) ([]ImportBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, project_count, warning_count, imported_at
FROM imports ORDER BY imported_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying imports: %w", err)
	}
	defer rows.Close()

	var batches []ImportBatch
	for rows.Next() {
		var b ImportBatch
		var stamp string
		if err := rows.Scan(&b.ID, &b.Source, &b.ProjectCount, &b.WarningCount, &stamp); err != nil {
			return nil, fmt.Errorf("scanning import: %w", err)
		}
		if b.ImportedAt, err = time.Parse(time.RFC3339, stamp); err != nil {
			return nil, fmt.Errorf("import %s: invalid timestamp %q", b.ID, stamp)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func decodeRecord(code, doc string) (*project.Record, error) {
	var rec project.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", code, err)
	}
	if rec.Extra == nil {
		rec.Extra = make(map[string]string)
	}
	return &rec, nil
}
