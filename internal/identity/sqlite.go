package identity

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ecorelay/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// StoreConfig configures the sqlite link store.
type StoreConfig struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// SQLiteStore is the persistent LinkStore. Links are written by an
// out-of-band linking flow (account verification); the relay only reads.
type SQLiteStore struct {
	db  *sql.DB
	log logx.Logger
}

func OpenSQLite(cfg StoreConfig, log logx.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &SQLiteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ExternalID(ctx context.Context, accountID string) (string, error) {
	if accountID == "" {
		return "", nil
	}
	var ext string
	err := s.db.QueryRowContext(ctx,
		`SELECT external_id FROM links WHERE account_id = ?`, accountID).Scan(&ext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ext, nil
}

// Link inserts or replaces an account link.
func (s *SQLiteStore) Link(ctx context.Context, accountID, externalID string) error {
	if accountID == "" || externalID == "" {
		return errors.New("account and external ids are required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO links(account_id, external_id, updated_at) VALUES(?,?,?)
		 ON CONFLICT(account_id) DO UPDATE SET external_id=excluded.external_id, updated_at=excluded.updated_at`,
		accountID, externalID, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Unlink removes an account link. Unknown accounts are a no-op.
func (s *SQLiteStore) Unlink(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE account_id = ?`, accountID)
	return err
}
