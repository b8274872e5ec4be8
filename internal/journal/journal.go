package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindTransferOut = "transfer_out"
	KindTransferIn  = "transfer_in"
	KindLoan        = "loan"
	KindClosure     = "closure"
)

// Entry is one audited ledger event. Postings of a single operation share a
// TransactionID.
type Entry struct {
	ID            string
	TransactionID string
	Handle        string
	Kind          string
	Amount        decimal.Decimal
	RecordedAt    time.Time
}

// Journal is an append-only audit trail of ledger postings. It is write-only
// from the engine's point of view: accounts are never rebuilt from it.
type Journal interface {
	Record(ctx context.Context, entries ...Entry) error
}
