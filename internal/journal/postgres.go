package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ledger_journal (
    id             UUID PRIMARY KEY,
    transaction_id UUID NOT NULL,
    handle         TEXT NOT NULL,
    kind           TEXT NOT NULL,
    amount         NUMERIC(20, 4) NOT NULL,
    recorded_at    TIMESTAMPTZ NOT NULL
)`

// PostgresJournal appends journal entries to PostgreSQL.
type PostgresJournal struct {
	db *pgxpool.Pool
}

// NewPostgresJournal constructs a Postgres-backed journal.
func NewPostgresJournal(db *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Migrate creates the journal table when it does not exist.
func (j *PostgresJournal) Migrate(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create ledger_journal: %w", err)
	}
	return nil
}

// Record inserts all entries in a single transaction.
func (j *PostgresJournal) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, e := range entries {
		id, err := parseOrNew(e.ID)
		if err != nil {
			return fmt.Errorf("entry id: %w", err)
		}
		txID, err := parseOrNew(e.TransactionID)
		if err != nil {
			return fmt.Errorf("transaction id: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO ledger_journal (id, transaction_id, handle, kind, amount, recorded_at)
        VALUES ($1, $2, $3, $4, $5::numeric, $6)`, id, txID, e.Handle, e.Kind, e.Amount.String(), e.RecordedAt.UTC()); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func parseOrNew(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(id)
}
