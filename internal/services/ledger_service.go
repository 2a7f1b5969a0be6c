package services

import (
	"context"
	"fmt"
	"log/slog"

	"caja/internal/core"
	"caja/internal/ledger"
)

// LedgerService orchestrates till operations over the storage ports.
type LedgerService struct {
	writer   ledger.TransactionWriter
	lister   ledger.TransactionLister
	closings ledger.ClosingStore
}

func NewLedgerService(w ledger.TransactionWriter, l ledger.TransactionLister, c ledger.ClosingStore) *LedgerService {
	return &LedgerService{
		writer:   w,
		lister:   l,
		closings: c,
	}
}

// DayReport is the derived view of one calendar day: its transactions newest
// first plus their totals.
type DayReport struct {
	Date         core.Date
	Transactions []core.Transaction
	Summary      core.DaySummary
}

// Record validates a submitted entry and appends it dated today.
// The amount string is checked for format before positivity so each failure
// keeps its own message; nothing is written on either.
func (s *LedgerService) Record(ctx context.Context, kindStr, description, amountStr string) (core.Transaction, error) {
	cents, err := core.ParseAmountCents(amountStr)
	if err != nil {
		return core.Transaction{}, err
	}

	kind, err := core.ParseKind(kindStr)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Kind:        kind,
		Amount:      core.Money{Cents: cents},
		Description: description,
		Date:        core.Today(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id, err := s.writer.AppendTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	return tx, nil
}

// Report reads the day's transactions fresh and computes their totals.
// A day with no transactions reports zeros.
func (s *LedgerService) Report(ctx context.Context, date core.Date) (DayReport, error) {
	txs, err := s.lister.TransactionsByDate(ctx, date)
	if err != nil {
		return DayReport{}, fmt.Errorf("list day transactions: %w", err)
	}
	return DayReport{
		Date:         date,
		Transactions: txs,
		Summary:      core.Summarize(txs),
	}, nil
}

// ClosingStatus returns the stored closing for a date, or nil while the day
// is still open. The live totals always come from Report, never from here.
func (s *LedgerService) ClosingStatus(ctx context.Context, date core.Date) (*core.DailyClosing, error) {
	c, err := s.closings.ClosingByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("closing status: %w", err)
	}
	return c, nil
}

// FinalizeDay snapshots the day's totals into a closing. Totals are
// re-aggregated here, not reused from an earlier view. When the day is
// already closed the stored snapshot comes back unchanged and created is
// false; the caller treats that as a no-op, not an error.
func (s *LedgerService) FinalizeDay(ctx context.Context, date core.Date) (core.DailyClosing, bool, error) {
	report, err := s.Report(ctx, date)
	if err != nil {
		return core.DailyClosing{}, false, err
	}

	stored, created, err := s.closings.CreateClosing(ctx, core.DailyClosing{
		Date:       date,
		Income:     report.Summary.Income,
		Withdrawal: report.Summary.Withdrawal,
		Balance:    report.Summary.Balance,
	})
	if err != nil {
		return core.DailyClosing{}, false, fmt.Errorf("finalize day: %w", err)
	}

	if !created {
		slog.InfoContext(ctx, "Day already closed, finalize skipped", "closing_date", date.String())
	}

	return stored, created, nil
}

// ClosingHistory lists all finalized days, newest date first.
func (s *LedgerService) ClosingHistory(ctx context.Context) ([]core.DailyClosing, error) {
	closings, err := s.closings.Closings(ctx)
	if err != nil {
		return nil, fmt.Errorf("closing history: %w", err)
	}
	return closings, nil
}
