// Package sqldriver implements storage.Driver over database/sql. The sqlite
// and postgres packages open the connection and pick a Dialect.
package sqldriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adgenius/adgen/pkg/storage"
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	Name string

	// Schema holds the statements run on open.
	Schema []string

	// NumberedParams rewrites "?" placeholders to "$1", "$2", ...
	NumberedParams bool
}

// SQLite is the dialect used with github.com/mattn/go-sqlite3.
var SQLite = Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			aspect_ratio TEXT NOT NULL DEFAULT '',
			data         BLOB NOT NULL,
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS projects_updated_at ON projects (updated_at)`,
		`CREATE TABLE IF NOT EXISTS autosaves (
			session_id TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			saved_at   INTEGER NOT NULL
		)`,
	},
}

// Postgres is the dialect used with the pgx stdlib driver.
var Postgres = Dialect{
	Name: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			aspect_ratio TEXT NOT NULL DEFAULT '',
			data         BYTEA NOT NULL,
			created_at   BIGINT NOT NULL,
			updated_at   BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS projects_updated_at ON projects (updated_at)`,
		`CREATE TABLE IF NOT EXISTS autosaves (
			session_id TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			saved_at   BIGINT NOT NULL
		)`,
	},
	NumberedParams: true,
}

// Driver implements storage.Driver on a *sql.DB. Timestamps are stored as
// unix nanoseconds so both dialects scan them the same way.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect

	now func() time.Time
}

// New wraps db and creates the schema.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Driver, error) {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Driver{DB: db, Dialect: d, now: time.Now}, nil
}

// SaveProject upserts p.
func (d *Driver) SaveProject(ctx context.Context, p *storage.Project) error {
	if p == nil {
		return errors.New("cannot store nil project")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	now := d.now().UTC()
	created := now
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt
	}

	_, err := d.DB.ExecContext(ctx, d.rebind(`
		INSERT INTO projects (id, name, aspect_ratio, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			aspect_ratio = excluded.aspect_ratio,
			data = excluded.data,
			updated_at = excluded.updated_at`),
		p.ID, p.Name, p.AspectRatio, []byte(p.Data), created.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving project %s: %w", p.ID, err)
	}

	// Read back the stored creation time, which an update keeps.
	var createdNanos int64
	err = d.DB.QueryRowContext(ctx, d.rebind(`SELECT created_at FROM projects WHERE id = ?`), p.ID).
		Scan(&createdNanos)
	if err != nil {
		return fmt.Errorf("reading project %s: %w", p.ID, err)
	}
	p.CreatedAt = time.Unix(0, createdNanos).UTC()
	p.UpdatedAt = now
	return nil
}

// GetProject retrieves a project by id.
func (d *Driver) GetProject(ctx context.Context, id string) (*storage.Project, error) {
	row := d.DB.QueryRowContext(ctx, d.rebind(`
		SELECT id, name, aspect_ratio, data, created_at, updated_at
		FROM projects WHERE id = ?`), id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns every project, most recently updated first.
func (d *Driver) ListProjects(ctx context.Context) ([]*storage.Project, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, name, aspect_ratio, data, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*storage.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return out, nil
}

// DeleteProject removes a project.
func (d *Driver) DeleteProject(ctx context.Context, id string) error {
	res, err := d.DB.ExecContext(ctx, d.rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n == 0 {
		return storage.NotFoundError{Kind: "project", ID: id}
	}
	return nil
}

// SaveAutosave overwrites the session's autosave slot.
func (d *Driver) SaveAutosave(ctx context.Context, sessionID string, data []byte) error {
	_, err := d.DB.ExecContext(ctx, d.rebind(`
		INSERT INTO autosaves (session_id, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			data = excluded.data,
			saved_at = excluded.saved_at`),
		sessionID, data, d.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving autosave %s: %w", sessionID, err)
	}
	return nil
}

// LoadAutosave returns the session's autosave.
func (d *Driver) LoadAutosave(ctx context.Context, sessionID string) ([]byte, error) {
	var data []byte
	err := d.DB.QueryRowContext(ctx, d.rebind(`SELECT data FROM autosaves WHERE session_id = ?`), sessionID).
		Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "autosave", ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading autosave %s: %w", sessionID, err)
	}
	return data, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*storage.Project, error) {
	var (
		p                storage.Project
		data             []byte
		created, updated int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.AspectRatio, &data, &created, &updated); err != nil {
		return nil, err
	}
	p.Data = data
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

// rebind rewrites "?" placeholders for dialects with numbered parameters.
func (d *Driver) rebind(query string) string {
	if !d.Dialect.NumberedParams {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
