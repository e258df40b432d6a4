package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/motioneffector/wiki/internal/models"
)

const pagesSchemaSQL = `
CREATE TABLE IF NOT EXISTS pages (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	type       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SQLite implements Provider backed by a single SQLite database.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(pagesSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Load reads a single page row.
func (s *SQLite) Load(id string) (*models.Page, error) {
	row := s.conn.QueryRow(
		`SELECT id, title, content, tags, type, created_at, updated_at FROM pages WHERE id = ?`, id)
	p, err := scanPage(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", id, err)
	}
	return p, nil
}

// Save upserts the page row.
func (s *SQLite) Save(p *models.Page) error {
	tagsJSON, _ := json.Marshal(p.Tags)
	_, err := s.conn.Exec(`
		INSERT INTO pages (id, title, content, tags, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			tags       = excluded.tags,
			type       = excluded.type,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, p.Content, string(tagsJSON), p.Type, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes the page row. Deleting an absent page is an error.
func (s *SQLite) Delete(id string) error {
	res, err := s.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: delete %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// List returns every stored page.
func (s *SQLite) List() ([]*models.Page, error) {
	rows, err := s.conn.Query(
		`SELECT id, title, content, tags, type, created_at, updated_at FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer rows.Close()

	var out []*models.Page
	for rows.Next() {
		p, err := scanPage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: list scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func scanPage(scan func(dest ...any) error) (*models.Page, error) {
	var p models.Page
	var tagsJSON string
	var created, updated time.Time
	if err := scan(&p.ID, &p.Title, &p.Content, &tagsJSON, &p.Type, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
		p.Tags = nil
	}
	p.CreatedAt = created
	p.UpdatedAt = updated
	return &p, nil
}

var _ Provider = (*SQLite)(nil)
