package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"caja/internal/core"
	"caja/internal/export"
)

type transactionRow struct {
	ID          int64
	Kind        string
	Amount      string
	Description string
	Date        string
}

type reportView struct {
	Date         string
	Income       string
	Withdrawal   string
	Balance      string
	Transactions []transactionRow
}

func reportRows(txs []core.Transaction) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow{
			ID:          tx.ID,
			Kind:        string(tx.Kind),
			Amount:      tx.Amount.Amount(),
			Description: tx.Description,
			Date:        tx.Date.String(),
		})
	}
	return rows
}

// handleReport renders today's transactions with their totals. The view is
// purely derived: nothing is written, and an empty day shows zero totals.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	report, err := s.ledger.Report(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Day report error", "error", err, "date", today.String())
		http.Error(w, "error al generar el reporte", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "reporte.html", reportView{
		Date:         today.String(),
		Income:       report.Summary.Income.Amount(),
		Withdrawal:   report.Summary.Withdrawal.Amount(),
		Balance:      report.Summary.Balance.Amount(),
		Transactions: reportRows(report.Transactions),
	})
}

// handleReportExcel writes today's report to the export directory and
// streams the file back as an attachment. The same day always maps to the
// same filename, so a repeated export overwrites the previous file.
func (s *Server) handleReportExcel(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	report, err := s.ledger.Report(r.Context(), today)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export report error", "error", err, "date", today.String())
		http.Error(w, "error al generar el reporte", http.StatusInternalServerError)
		return
	}

	path, err := s.exporter.WriteDay(r.Context(), today, report.Transactions)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export write error", "error", err, "date", today.String())
		http.Error(w, "error al exportar el reporte", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(today)))
	http.ServeFile(w, r, path)
}
