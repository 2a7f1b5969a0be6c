package core

// DaySummary holds the derived totals for one calendar day.
type DaySummary struct {
	Income     Money
	Withdrawal Money
	Balance    Money
}

// Summarize computes the totals for a set of same-day transactions.
// An empty set yields zero totals, not an error.
func Summarize(txs []Transaction) DaySummary {
	var s DaySummary
	for _, t := range txs {
		switch t.Kind {
		case Income:
			s.Income.Cents += t.Amount.Cents
		case Withdrawal:
			s.Withdrawal.Cents += t.Amount.Cents
		}
	}
	s.Balance.Cents = s.Income.Cents - s.Withdrawal.Cents
	return s
}
