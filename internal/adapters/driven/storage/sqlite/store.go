package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/redline-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a SQLite-backed session store. All status updates run inside
// a transaction, so a bulk accept/decline is observed atomically.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.redline/data/sessions.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".redline", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "sessions.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save persists a new session, replacing any previous session with the
// same ID.
func (s *Store) Save(ctx context.Context, result *domain.RedlineResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// ON DELETE CASCADE clears any previous changes.
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", result.ID); err != nil {
		return fmt.Errorf("clearing previous session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, file_name, original_text, edited_text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, result.ID, result.FileName, result.OriginalText, result.EditedText, result.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, c := range result.Changes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO changes (id, session_id, type, original, replacement, position, status, context)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, result.ID, string(c.Type), c.Original, c.Replacement, c.Position, string(c.Status), c.Context)
		if err != nil {
			return fmt.Errorf("inserting change %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.RedlineResult, error) {
	result := &domain.RedlineResult{}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, original_text, edited_text, created_at
		FROM sessions WHERE id = ?
	`, id)
	err := row.Scan(&result.ID, &result.FileName, &result.OriginalText, &result.EditedText, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	if err := s.loadChanges(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Latest returns the most recently created session.
func (s *Store) Latest(ctx context.Context) (*domain.RedlineResult, error) {
	var id string
	row := s.db.QueryRowContext(ctx, "SELECT id FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT 1")
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest session: %w", err)
	}
	return s.Get(ctx, id)
}

// loadChanges populates the session's change list in proposal order.
func (s *Store) loadChanges(ctx context.Context, result *domain.RedlineResult) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, original, replacement, position, status, context
		FROM changes WHERE session_id = ? ORDER BY position
	`, result.ID)
	if err != nil {
		return fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Change
		var changeType, status string
		if err := rows.Scan(&c.ID, &changeType, &c.Original, &c.Replacement, &c.Position, &status, &c.Context); err != nil {
			return fmt.Errorf("scanning change: %w", err)
		}
		c.Type = domain.ChangeType(changeType)
		c.Status = domain.ChangeStatus(status)
		result.Changes = append(result.Changes, c)
	}
	return rows.Err()
}

// UpdateStatuses applies the status map in a single transaction.
func (s *Store) UpdateStatuses(ctx context.Context, sessionID string, statuses map[string]domain.ChangeStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE changes SET status = ? WHERE id = ? AND session_id = ?")
	if err != nil {
		return fmt.Errorf("preparing update: %w", err)
	}
	defer stmt.Close()

	for changeID, status := range statuses {
		res, err := stmt.ExecContext(ctx, string(status), changeID, sessionID)
		if err != nil {
			return fmt.Errorf("updating change %s: %w", changeID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking update of change %s: %w", changeID, err)
		}
		if affected == 0 {
			return fmt.Errorf("change %s in session %s: %w", changeID, sessionID, domain.ErrNotFound)
		}
	}

	return tx.Commit()
}

// Delete removes a session and, via cascade, its changes.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
