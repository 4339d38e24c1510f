package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstracts pgxpool.Pool and pgx.Tx so that repository methods can
// accept either a pool or a transaction without knowing which one they hold.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner is implemented by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// SnapshotTxOptions open a read-only transaction that sees one consistent
// snapshot of the database for all of its statements.
var SnapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// WithSnapshot executes fn within a REPEATABLE READ, READ ONLY transaction.
// The transaction is always rolled back since it cannot have written anything.
func WithSnapshot(ctx context.Context, db TxBeginner, fn func(q Querier) error) error {
	tx, err := db.BeginTx(ctx, SnapshotTxOptions)
	if err != nil {
		return fmt.Errorf("postgres: begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	return fn(tx)
}
