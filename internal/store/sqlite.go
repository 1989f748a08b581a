package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type kvRecord struct {
	bun.BaseModel `bun:"table:clipguard_kv"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type SQLite struct {
	db *bun.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// One connection serializes writers; sqlite allows a single writer anyway.
	sqldb.SetMaxOpenConns(1)

	s := &SQLite{db: bun.NewDB(sqldb, sqlitedialect.New())}
	if err := s.migrate(context.Background()); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*kvRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec kvRecord
	err := s.db.NewSelect().Model(&rec).Where("name = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(rec.Value), true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	rec := &kvRecord{Name: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
