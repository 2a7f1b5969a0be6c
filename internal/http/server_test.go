package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"caja/internal/auth"
	"caja/internal/core"
	"caja/internal/export"
	"caja/internal/services"
)

// memStore implements the ledger ports in memory for handler tests.
type memStore struct {
	txs      []core.Transaction
	closings []core.DailyClosing
	nextID   int64
}

func (m *memStore) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	m.nextID++
	tx.ID = m.nextID
	m.txs = append(m.txs, tx)
	return tx.ID, nil
}

func (m *memStore) TransactionsByDate(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for i := len(m.txs) - 1; i >= 0; i-- {
		if m.txs[i].Date.String() == date.String() {
			out = append(out, m.txs[i])
		}
	}
	return out, nil
}

func (m *memStore) ClosingByDate(ctx context.Context, date core.Date) (*core.DailyClosing, error) {
	for i := range m.closings {
		if m.closings[i].Date.String() == date.String() {
			return &m.closings[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateClosing(ctx context.Context, c core.DailyClosing) (core.DailyClosing, bool, error) {
	if existing, _ := m.ClosingByDate(ctx, c.Date); existing != nil {
		return *existing, false, nil
	}
	c.ID = int64(len(m.closings) + 1)
	m.closings = append(m.closings, c)
	return c, true, nil
}

func (m *memStore) Closings(ctx context.Context) ([]core.DailyClosing, error) {
	out := make([]core.DailyClosing, len(m.closings))
	copy(out, m.closings)
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	store := &memStore{}
	srv := NewServer(":0",
		services.NewLedgerService(store, store, store),
		export.NewExporter(t.TempDir()),
		auth.StaticCredentials{User: "admin", Password: "1234"},
		auth.NewSessionManager("test-secret", time.Hour))
	return srv, store
}

// loginCookie performs a login and returns the session cookie.
func loginCookie(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	form := url.Values{"usuario": {"admin"}, "clave": {"1234"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status=%d", rr.Code)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestLoginPageAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(srv, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login page status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Caja registradora") {
		t.Fatalf("login body missing heading")
	}

	rr = get(srv, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	if rr := get(srv, "/no-such-page", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := postForm(srv, "/", url.Values{"usuario": {"admin"}, "clave": {"wrong"}}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected re-rendered form, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Usuario o clave incorrectos") {
		t.Fatalf("expected bad-credentials message")
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			t.Fatalf("no session may be set on failed login")
		}
	}
}

func TestAuthGateRedirectsWithoutSession(t *testing.T) {
	srv, store := newTestServer(t)

	protected := []string{"/menu", "/transaccion", "/reporte", "/reporte_excel", "/arqueo", "/arqueos"}
	for _, path := range protected {
		rr := get(srv, path, nil)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("%s expected 303, got %d", path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Fatalf("%s expected redirect to /, got %q", path, loc)
		}
	}

	// POST routes are gated too, with no side effects.
	rr := postForm(srv, "/guardar_arqueo", url.Values{}, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("guardar_arqueo expected 303 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if len(store.closings) != 0 {
		t.Fatalf("gated request must not write")
	}
}

func TestAuthGateRejectsForgedCookie(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(srv, "/menu", &http.Cookie{Name: sessionCookie, Value: "forged"})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for forged cookie, got %d", rr.Code)
	}
}

func TestMenuAfterLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := get(srv, "/menu", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("menu status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "admin") {
		t.Fatalf("menu missing operator name")
	}
}

func TestTransactionEntryValidation(t *testing.T) {
	srv, store := newTestServer(t)
	cookie := loginCookie(t, srv)

	// Form renders.
	if rr := get(srv, "/transaccion", cookie); rr.Code != http.StatusOK {
		t.Fatalf("form status=%d", rr.Code)
	}

	// Non-numeric amount.
	rr := postForm(srv, "/transaccion", url.Values{
		"tipo": {"Ingreso"}, "descripcion": {"x"}, "monto": {"abc"},
	}, cookie)
	if !strings.Contains(rr.Body.String(), "el monto debe ser numérico") {
		t.Fatalf("expected format message, body: %s", rr.Body.String())
	}

	// Non-positive amount.
	rr = postForm(srv, "/transaccion", url.Values{
		"tipo": {"Ingreso"}, "descripcion": {"x"}, "monto": {"0"},
	}, cookie)
	if !strings.Contains(rr.Body.String(), "el monto debe ser mayor a 0") {
		t.Fatalf("expected positivity message, body: %s", rr.Body.String())
	}

	if len(store.txs) != 0 {
		t.Fatalf("rejected entries must not persist, got %d rows", len(store.txs))
	}

	// Valid entry.
	rr = postForm(srv, "/transaccion", url.Values{
		"tipo": {"Retiro"}, "descripcion": {"devolución"}, "monto": {"30.00"},
	}, cookie)
	if !strings.Contains(rr.Body.String(), "Transacción registrada correctamente") {
		t.Fatalf("expected success message, body: %s", rr.Body.String())
	}
	if len(store.txs) != 1 {
		t.Fatalf("expected one stored row, got %d", len(store.txs))
	}
	tx := store.txs[0]
	if tx.Kind != core.Withdrawal || tx.Amount.Cents != 3000 || tx.Date.String() != core.Today().String() {
		t.Fatalf("unexpected stored transaction: %+v", tx)
	}
}

func TestReportEmptyDay(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := get(srv, "/reporte", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Sin transacciones registradas hoy") {
		t.Fatalf("expected empty-day notice")
	}
	if strings.Count(body, "0.00") < 3 {
		t.Fatalf("expected zero totals, body: %s", body)
	}
}

func TestReportTotals(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	postForm(srv, "/transaccion", url.Values{"tipo": {"Ingreso"}, "descripcion": {"venta"}, "monto": {"100.00"}}, cookie)
	postForm(srv, "/transaccion", url.Values{"tipo": {"Retiro"}, "descripcion": {"devolución"}, "monto": {"30.00"}}, cookie)

	rr := get(srv, "/reporte", cookie)
	body := rr.Body.String()
	for _, want := range []string{"100.00", "30.00", "70.00", "venta", "devolución"} {
		if !strings.Contains(body, want) {
			t.Fatalf("report missing %q, body: %s", want, body)
		}
	}
	// Newest row first: the withdrawal (id 2) appears before the income (id 1).
	if strings.Index(body, "devolución") > strings.Index(body, "venta") {
		t.Fatalf("expected newest transaction first")
	}
}

func TestReportExcelDownload(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	postForm(srv, "/transaccion", url.Values{"tipo": {"Ingreso"}, "descripcion": {"venta"}, "monto": {"100.00"}}, cookie)

	rr := get(srv, "/reporte_excel", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	cd := rr.Header().Get("Content-Disposition")
	want := export.Filename(core.Today())
	if !strings.Contains(cd, "attachment") || !strings.Contains(cd, want) {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("expected spreadsheet bytes")
	}
}

func TestClosingFlow(t *testing.T) {
	srv, store := newTestServer(t)
	cookie := loginCookie(t, srv)

	postForm(srv, "/transaccion", url.Values{"tipo": {"Ingreso"}, "descripcion": {"venta"}, "monto": {"100.00"}}, cookie)
	postForm(srv, "/transaccion", url.Values{"tipo": {"Retiro"}, "descripcion": {"devolución"}, "monto": {"30.00"}}, cookie)

	// View shows live totals and an open day.
	rr := get(srv, "/arqueo", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("arqueo status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Guardar arqueo") {
		t.Fatalf("expected finalize button on open day")
	}
	if len(store.closings) != 0 {
		t.Fatalf("viewing must not close the day")
	}

	// Finalize.
	rr = postForm(srv, "/guardar_arqueo", url.Values{}, cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/arqueo" {
		t.Fatalf("finalize expected 303 to /arqueo, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if len(store.closings) != 1 {
		t.Fatalf("expected one closing, got %d", len(store.closings))
	}
	c := store.closings[0]
	if c.Income.Cents != 10000 || c.Withdrawal.Cents != 3000 || c.Balance.Cents != 7000 {
		t.Fatalf("unexpected closing: %+v", c)
	}

	// Repeat finalize is a silent no-op.
	rr = postForm(srv, "/guardar_arqueo", url.Values{}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("repeat finalize status=%d", rr.Code)
	}
	if len(store.closings) != 1 {
		t.Fatalf("repeat finalize must not duplicate, got %d", len(store.closings))
	}

	// View now reports the day closed.
	rr = get(srv, "/arqueo", cookie)
	if !strings.Contains(rr.Body.String(), "ya fue guardado") {
		t.Fatalf("expected closed notice")
	}

	// History lists the closing.
	rr = get(srv, "/arqueos", cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("history status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "70.00") {
		t.Fatalf("history missing balance")
	}
}

func TestSaveClosingRequiresPOST(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := get(srv, "/guardar_arqueo", cookie)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := loginCookie(t, srv)

	rr := get(srv, "/logout", cookie)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("logout expected 303 to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected session cookie cleared")
	}
}
