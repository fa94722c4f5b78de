package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteAdapter is a file-backed stock backend for local and single-node
// deployments, where running MySQL or Redis would be overkill.
type SQLiteAdapter struct {
	db *sql.DB
}

func NewSQLiteAdapter(dbPath string) (*SQLiteAdapter, error) {
	// busy_timeout avoids "database is locked" when the handler and a
	// seeding pass touch the file at the same time.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(2 * time.Minute)
	db.SetMaxOpenConns(1)

	a := &SQLiteAdapter{db: db}
	if err := a.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *SQLiteAdapter) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS stock(
  item_id     TEXT PRIMARY KEY,
  stock_count INTEGER NOT NULL DEFAULT 0,
  version     INTEGER NOT NULL DEFAULT 0,
  updated_at  INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

func (a *SQLiteAdapter) Close() error { return a.db.Close() }

func (a *SQLiteAdapter) SetStock(ctx context.Context, itemID string, value int) (int, error) {
	if value < 0 {
		value = 0
	}

	_, err := a.db.ExecContext(ctx, `
INSERT INTO stock(item_id, stock_count, version, updated_at)
VALUES(?, ?, 1, strftime('%s','now'))
ON CONFLICT(item_id) DO UPDATE SET
  stock_count = excluded.stock_count,
  version = version + 1,
  updated_at = strftime('%s','now')`,
		itemID, value,
	)
	if err != nil {
		return 0, fmt.Errorf("set stock: %w", err)
	}
	return value, nil
}

func (a *SQLiteAdapter) ApplyDelta(ctx context.Context, itemID string, delta int) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO stock(item_id, stock_count, version, updated_at)
VALUES(?, MAX(0, ?), 1, strftime('%s','now'))
ON CONFLICT(item_id) DO UPDATE SET
  stock_count = MAX(0, stock_count + ?),
  version = version + 1,
  updated_at = strftime('%s','now')`,
		itemID, delta, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("apply delta: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT stock_count FROM stock WHERE item_id = ?`, itemID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("read back stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return count, nil
}

func (a *SQLiteAdapter) GetStock(ctx context.Context, itemID string) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx,
		`SELECT stock_count FROM stock WHERE item_id = ?`, itemID,
	).Scan(&count)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query stock: %w", err)
	}
	return count, nil
}
