package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// insertBatchSize keeps each INSERT well below the Postgres parameter limit.
const insertBatchSize = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresSnapshot mirrors the canonical dataset into one Postgres table.
// Every stage rewrites the whole table inside a transaction.
type PostgresSnapshot struct {
	db    *sql.DB
	table string
}

var _ ports.CanonicalTarget = (*PostgresSnapshot)(nil)

// NewPostgresSnapshot wires a sql.DB implementation.
func NewPostgresSnapshot(db *sql.DB, table string) *PostgresSnapshot {
	return &PostgresSnapshot{db: db, table: table}
}

// Name identifies the target in reports.
func (p *PostgresSnapshot) Name() string {
	return "postgres:" + p.table
}

// EnsureSchema creates the snapshot table when absent.
func (p *PostgresSnapshot) EnsureSchema(ctx context.Context) error {
	if p.db == nil {
		return fmt.Errorf("postgres snapshot: no database")
	}
	if _, err := p.db.ExecContext(ctx, createTableStatement(p.table)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Stage replaces the table contents in an open transaction.
func (p *PostgresSnapshot) Stage(ctx context.Context, records []domain.Record) (ports.StagedWrite, error) {
	if p.db == nil {
		return nil, fmt.Errorf("postgres snapshot: no database")
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	query, args, err := deleteStatement(p.table).ToSql()
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("clear snapshot: %w", err)
	}

	for _, insert := range insertStatements(p.table, records) {
		query, args, err := insert.ToSql()
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert snapshot: %w", err)
		}
	}

	return stagedTx{tx: tx}, nil
}

type stagedTx struct {
	tx *sql.Tx
}

func (s stagedTx) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (s stagedTx) Abort() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback snapshot: %w", err)
	}
	return nil
}

func createTableStatement(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	position     INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	link         TEXT NOT NULL,
	summary      TEXT NOT NULL,
	publisher    TEXT NOT NULL,
	reporter     TEXT NOT NULL,
	signal       TEXT NOT NULL CHECK (signal IN ('BULL', 'BEAR', 'FLAT')),
	collected_at TEXT NOT NULL
)`, pq.QuoteIdentifier(table))
}

func deleteStatement(table string) sq.DeleteBuilder {
	return psql.Delete(pq.QuoteIdentifier(table))
}

func insertStatements(table string, records []domain.Record) []sq.InsertBuilder {
	columns := append([]string{"position"}, domain.Columns...)

	var batches []sq.InsertBuilder
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		insert := psql.Insert(pq.QuoteIdentifier(table)).Columns(columns...)
		for i, record := range records[start:end] {
			values := []any{start + i}
			for _, v := range record.Values() {
				values = append(values, v)
			}
			insert = insert.Values(values...)
		}
		batches = append(batches, insert)
	}
	return batches
}
