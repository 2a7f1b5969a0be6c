package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"caja/internal/core"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Immediate transactions take the write lock at BEGIN, so concurrent
	// finalizes queue on the busy timeout instead of failing mid-transaction.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (kind, amount_cents, description, entry_date) VALUES (?, ?, ?, ?)`,
		string(tx.Kind), tx.Amount.Cents, tx.Description, tx.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"kind", string(tx.Kind),
		"amount_cents", tx.Amount.Cents,
		"entry_date", tx.Date.String())

	return id, nil
}

// TransactionsByDate implements ledger.TransactionLister. Rows come back
// newest id first, the order the daily report and export show them in.
func (r *SQLiteRepository) TransactionsByDate(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, description, entry_date
		 FROM transactions WHERE entry_date = ? ORDER BY id DESC`,
		date.String())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			kind    string
			dateStr string
		)
		if err := rows.Scan(&tx.ID, &kind, &tx.Amount.Cents, &tx.Description, &dateStr); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.Kind(kind)
		if tx.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", dateStr, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// ClosingByDate implements ledger.ClosingStore. A nil closing means the day
// is still open.
func (r *SQLiteRepository) ClosingByDate(ctx context.Context, date core.Date) (*core.DailyClosing, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, closing_date, income_cents, withdrawal_cents, balance_cents
		 FROM daily_closings WHERE closing_date = ?`,
		date.String())

	c, err := scanClosing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query closing: %w", err)
	}
	return &c, nil
}

// CreateClosing inserts the closing for its date unless one already exists.
// The existence check and the insert run in a single immediate transaction;
// the UNIQUE constraint on closing_date backstops a concurrent racer, whose
// losing insert resolves to the stored row instead of an error.
func (r *SQLiteRepository) CreateClosing(ctx context.Context, c core.DailyClosing) (core.DailyClosing, bool, error) {
	stored, created, err := r.createClosing(ctx, c)
	if err != nil && isLocked(err) {
		// Lost to a concurrent finalize that held the write lock past the
		// busy timeout. The winner's row must be there by now.
		if existing, lookupErr := r.ClosingByDate(ctx, c.Date); lookupErr == nil && existing != nil {
			return *existing, false, nil
		}
	}
	return stored, created, err
}

func (r *SQLiteRepository) createClosing(ctx context.Context, c core.DailyClosing) (core.DailyClosing, bool, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DailyClosing{}, false, fmt.Errorf("begin closing tx: %w", err)
	}
	defer dbTx.Rollback()

	row := dbTx.QueryRowContext(ctx,
		`SELECT id, closing_date, income_cents, withdrawal_cents, balance_cents
		 FROM daily_closings WHERE closing_date = ?`,
		c.Date.String())
	existing, err := scanClosing(row)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.DailyClosing{}, false, fmt.Errorf("check existing closing: %w", err)
	}

	res, err := dbTx.ExecContext(ctx,
		`INSERT INTO daily_closings (closing_date, income_cents, withdrawal_cents, balance_cents)
		 VALUES (?, ?, ?, ?)`,
		c.Date.String(), c.Income.Cents, c.Withdrawal.Cents, c.Balance.Cents)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race: another request finalized the day between our
			// check and insert. Hand back the stored row.
			stored, lookupErr := r.ClosingByDate(ctx, c.Date)
			if lookupErr != nil || stored == nil {
				return core.DailyClosing{}, false, fmt.Errorf("closing already exists but lookup failed: %w", err)
			}
			return *stored, false, nil
		}
		return core.DailyClosing{}, false, fmt.Errorf("insert closing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.DailyClosing{}, false, fmt.Errorf("closing id: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return core.DailyClosing{}, false, fmt.Errorf("commit closing: %w", err)
	}

	c.ID = id
	slog.InfoContext(ctx, "Daily closing saved",
		"id", id,
		"closing_date", c.Date.String(),
		"balance_cents", c.Balance.Cents)

	return c, true, nil
}

// Closings implements ledger.ClosingStore, newest date first.
func (r *SQLiteRepository) Closings(ctx context.Context) ([]core.DailyClosing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, closing_date, income_cents, withdrawal_cents, balance_cents
		 FROM daily_closings ORDER BY closing_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query closings: %w", err)
	}
	defer rows.Close()

	var closings []core.DailyClosing
	for rows.Next() {
		c, err := scanClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan closing: %w", err)
		}
		closings = append(closings, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closings: %w", err)
	}

	return closings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClosing(row rowScanner) (core.DailyClosing, error) {
	var (
		c       core.DailyClosing
		dateStr string
	)
	if err := row.Scan(&c.ID, &dateStr, &c.Income.Cents, &c.Withdrawal.Cents, &c.Balance.Cents); err != nil {
		return core.DailyClosing{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.DailyClosing{}, fmt.Errorf("parse closing date %q: %w", dateStr, err)
	}
	c.Date = date
	return c, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func isLocked(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_BUSY || se.Code() == sqlite3.SQLITE_LOCKED
	}
	return false
}
