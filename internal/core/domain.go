package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income     Kind = "Ingreso"
	Withdrawal Kind = "Retiro"
)

type (
	// Kind is one of the two transaction kinds handled by the till.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single cash movement. Rows are immutable once written.
	Transaction struct {
		ID          int64
		Kind        Kind
		Amount      Money
		Description string
		Date        Date
	}

	// DailyClosing is the finalized arqueo for one calendar day. At most one
	// exists per date, and it is a snapshot: later transactions for that day
	// do not change it.
	DailyClosing struct {
		ID         int64
		Date       Date
		Income     Money
		Withdrawal Money
		Balance    Money
	}
)

var (
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrAmountFormat      = errors.New("amount is not numeric")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// ParseKind maps a form value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.TrimSpace(s)) {
	case Income:
		return Income, nil
	case Withdrawal:
		return Withdrawal, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Validate() error {
	if k != Income && k != Withdrawal {
		return ErrInvalidKind
	}
	return nil
}

const dateLayout = "2006-01-02"

// Today returns the current calendar day from the server's local clock.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the canonical YYYY-MM-DD form used in storage and filenames.
func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrAmountNotPositive
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Date.Validate()
}
