package ledger

import (
	"context"

	"caja/internal/core"
)

// Ports for the storage adapter.
type (
	TransactionWriter interface {
		// AppendTransaction inserts a new transaction and returns its row id.
		AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	}

	TransactionLister interface {
		// TransactionsByDate returns all transactions for one calendar day,
		// newest id first.
		TransactionsByDate(ctx context.Context, date core.Date) ([]core.Transaction, error)
	}

	// ClosingStore persists finalized daily closings.
	ClosingStore interface {
		// ClosingByDate returns the closing for a date, or nil when the day
		// is still open.
		ClosingByDate(ctx context.Context, date core.Date) (*core.DailyClosing, error)
		// CreateClosing inserts the closing unless one already exists for its
		// date. It returns the stored row and whether this call created it.
		CreateClosing(ctx context.Context, c core.DailyClosing) (core.DailyClosing, bool, error)
		// Closings returns all closings, newest date first.
		Closings(ctx context.Context) ([]core.DailyClosing, error)
	}
)
