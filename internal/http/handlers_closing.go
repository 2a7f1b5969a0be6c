package http

import (
	"log/slog"
	"net/http"

	"caja/internal/core"
)

type closingView struct {
	Date       string
	Income     string
	Withdrawal string
	Balance    string
	Closed     bool
}

type closingRow struct {
	Date       string
	Income     string
	Withdrawal string
	Balance    string
}

// handleClosing shows today's live totals and whether the day is already
// closed. It never transitions state; the totals always come from a fresh
// aggregation, not from a stored closing.
func (s *Server) handleClosing(w http.ResponseWriter, r *http.Request) {
	today := core.Today()

	report, err := s.ledger.Report(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Closing totals error", "error", err, "date", today.String())
		http.Error(w, "error al calcular el arqueo", http.StatusInternalServerError)
		return
	}
	stored, err := s.ledger.ClosingStatus(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Closing status error", "error", err, "date", today.String())
		http.Error(w, "error al consultar el arqueo", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "arqueo.html", closingView{
		Date:       today.String(),
		Income:     report.Summary.Income.Amount(),
		Withdrawal: report.Summary.Withdrawal.Amount(),
		Balance:    report.Summary.Balance.Amount(),
		Closed:     stored != nil,
	})
}

// handleSaveClosing finalizes today. An already-closed day is a silent
// no-op; either way the browser lands back on the arqueo page.
func (s *Server) handleSaveClosing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	today := core.Today()
	closing, created, err := s.ledger.FinalizeDay(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Finalize day error", "error", err, "date", today.String())
		http.Error(w, "error al guardar el arqueo", http.StatusInternalServerError)
		return
	}
	if created {
		slog.InfoContext(r.Context(), "Day closed",
			"date", today.String(),
			"balance_cents", closing.Balance.Cents)
	}

	http.Redirect(w, r, "/arqueo", http.StatusSeeOther)
}

func (s *Server) handleClosingHistory(w http.ResponseWriter, r *http.Request) {
	closings, err := s.ledger.ClosingHistory(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Closing history error", "error", err)
		http.Error(w, "error al consultar los arqueos", http.StatusInternalServerError)
		return
	}

	rows := make([]closingRow, 0, len(closings))
	for _, c := range closings {
		rows = append(rows, closingRow{
			Date:       c.Date.String(),
			Income:     c.Income.Amount(),
			Withdrawal: c.Withdrawal.Amount(),
			Balance:    c.Balance.Amount(),
		})
	}

	s.render(w, r, "arqueos.html", struct{ Closings []closingRow }{Closings: rows})
}
