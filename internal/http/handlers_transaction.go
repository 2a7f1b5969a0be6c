package http

import (
	"errors"
	"log/slog"
	"net/http"

	"caja/internal/core"
)

type transactionView struct {
	Message string
	Success bool
}

// handleTransaction serves the entry form and records submissions.
// Validation failures re-render the form with their message and write
// nothing; a valid entry is persisted dated today and echoed back.
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "transaccion.html", transactionView{})
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse transaction form error", "error", err)
		s.render(w, r, "transaccion.html", transactionView{Message: "Formato de solicitud no válido"})
		return
	}

	kind := r.Form.Get("tipo")
	description := sanitizeInput(r.Form.Get("descripcion"))
	amount := r.Form.Get("monto")

	tx, err := s.ledger.Record(r.Context(), kind, description, amount)
	switch {
	case errors.Is(err, core.ErrAmountFormat):
		s.render(w, r, "transaccion.html", transactionView{Message: "Error: el monto debe ser numérico"})
		return
	case errors.Is(err, core.ErrAmountNotPositive):
		s.render(w, r, "transaccion.html", transactionView{Message: "Error: el monto debe ser mayor a 0"})
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Record transaction error", "error", err, "kind", kind)
		s.render(w, r, "transaccion.html", transactionView{Message: "Error al guardar la transacción"})
		return
	}

	slog.InfoContext(r.Context(), "Transaction recorded",
		"id", tx.ID,
		"kind", string(tx.Kind),
		"amount_cents", tx.Amount.Cents)
	s.render(w, r, "transaccion.html", transactionView{
		Message: "Transacción registrada correctamente",
		Success: true,
	})
}
