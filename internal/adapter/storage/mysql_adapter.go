package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MySQLAdapter persists stock counts in a `stock` table:
//
//	CREATE TABLE stock (
//	  item_id     VARCHAR(64) PRIMARY KEY,
//	  stock_count INT NOT NULL DEFAULT 0,
//	  version     INT NOT NULL DEFAULT 0,
//	  updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
//	);
//
// Clamping happens in SQL (GREATEST) so the stored value can never go
// negative regardless of what clients send. The version column bumps on
// every accepted write.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) SetStock(ctx context.Context, itemID string, value int) (int, error) {
	if value < 0 {
		value = 0
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock (item_id, stock_count, version)
		VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE stock_count = VALUES(stock_count), version = version + 1`,
		itemID, value,
	)
	if err != nil {
		return 0, fmt.Errorf("set stock: %w", err)
	}
	return value, nil
}

func (m *MySQLAdapter) ApplyDelta(ctx context.Context, itemID string, delta int) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock (item_id, stock_count, version)
		VALUES (?, GREATEST(0, ?), 1)
		ON DUPLICATE KEY UPDATE
			stock_count = GREATEST(0, stock_count + ?),
			version = version + 1`,
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

func (m *MySQLAdapter) GetStock(ctx context.Context, itemID string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
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
