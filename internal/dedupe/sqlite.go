package dedupe

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultSQLiteTable = "checked_items"
)

// SQLiteStore keeps the checked set in memory and flushes newly added ids to
// a SQLite table on Save.
type SQLiteStore struct {
	mu         sync.Mutex
	db         *sql.DB
	table      string
	tableIdent string
	dryRun     bool
	set        memSet
	pending    []string
	logger     *slog.Logger
}

func NewSQLiteStore(ctx context.Context, dsn string, table string, dryRun bool, logger *slog.Logger) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	if table == "" {
		table = defaultSQLiteTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	tableIdent, err := quoteSQLiteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{
		db:         db,
		table:      table,
		tableIdent: tableIdent,
		dryRun:     dryRun,
		set:        newMemSet(),
		logger:     logger,
	}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.load(ctx); err != nil {
		logger.Warn("Failed to read checked items from sqlite, starting empty", slog.String("table", table), slog.String("error", err.Error()))
		store.set = newMemSet()
	}
	return store, nil
}

func (s *SQLiteStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.contains(id)
}

func (s *SQLiteStore) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.add(id) {
		s.pending = append(s.pending, id)
	}
}

func (s *SQLiteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.set.order)
}

// Save upserts every id added since the last successful Save in a single
// transaction. Pending ids are kept if the transaction fails.
func (s *SQLiteStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dryRun || len(s.pending) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(
		ctx,
		fmt.Sprintf("INSERT INTO %s (id, checked_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING", s.tableIdent),
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	now := time.Now().UTC()
	for _, id := range s.pending {
		if _, err := stmt.ExecContext(ctx, id, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id FROM %s ORDER BY checked_at, rowid", s.tableIdent))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		s.set.add(id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.logger.Info("Loaded checked items", slog.String("table", s.table), slog.Int("count", len(s.set.order)))
	return nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		checked_at TIMESTAMP NOT NULL
	)`, s.tableIdent)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sqlite table: %w", err)
	}
	return nil
}

func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") {
		dsn = strings.TrimPrefix(dsn, "file:")
		if idx := strings.IndexRune(dsn, '?'); idx >= 0 {
			dsn = dsn[:idx]
		}
	}
	if dsn == "" || dsn == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

var sqliteIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteSQLiteIdentifier(identifier string) (string, error) {
	if !sqliteIdentifierPattern.MatchString(identifier) {
		return "", fmt.Errorf("sqlite table name %q must match %s", identifier, sqliteIdentifierPattern.String())
	}
	return `"` + identifier + `"`, nil
}
