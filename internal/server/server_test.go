package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/invoicekit/internal/backup"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/render"
	invoicerepository "github.com/smallbiznis/invoicekit/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/invoicekit/internal/invoice/service"
	"github.com/smallbiznis/invoicekit/internal/observability"
	obsmetrics "github.com/smallbiznis/invoicekit/internal/observability/metrics"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	partyrepository "github.com/smallbiznis/invoicekit/internal/party/repository"
	partyservice "github.com/smallbiznis/invoicekit/internal/party/service"
	"github.com/smallbiznis/invoicekit/internal/providers/pdf"
	sequencedomain "github.com/smallbiznis/invoicekit/internal/sequence/domain"
	sequencerepository "github.com/smallbiznis/invoicekit/internal/sequence/repository"
	sequenceservice "github.com/smallbiznis/invoicekit/internal/sequence/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invoiceBody = `{
  "invoiceNumber": "INV-001",
  "issueDate": "2025-03-10",
  "dueDate": "2025-03-24",
  "status": "sent",
  "paymentMethod": "E-transfer",
  "sender": {"firstName": "Ann", "lastName": "Lee", "addressLine1": "1 Main St", "city": "Ottawa",
    "province": "ON", "country": "Canada", "postalCode": "K1A 0A1", "email": "ann@example.com", "phone": "6135550100"},
  "recipient": {"name": "Bob Smith", "address": "2 King St", "city": "Ottawa", "province": "ON",
    "country": "Canada", "postalCode": "K1P 1J1", "email": "bob@example.com", "phone": "+44 2071234567"},
  "items": [{"description": "Design", "quantity": "2", "price": 10.005}],
  "taxRate": "13",
  "shipping": 5
}`

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&partydomain.Profile{}, &invoicedomain.Invoice{}, &sequencedomain.Setting{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{DefaultDueDays: 14}
	registry := prometheus.NewRegistry()
	httpMetrics, err := obsmetrics.NewHTTPMetrics(obsmetrics.Config{ServiceName: "invoicekit-test"}, registry)
	require.NoError(t, err)

	seq := sequenceservice.New(sequenceservice.Params{
		DB: db, Log: log, Clock: clk, Config: cfg, Repo: sequencerepository.Provide(),
	})
	partyRepo := partyrepository.Provide()
	invoiceRepo := invoicerepository.Provide()
	invoices := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Config: cfg, Repo: invoiceRepo, Sequence: seq,
	})
	parties := partyservice.New(partyservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: partyRepo,
	})
	renderer := render.New(render.Params{
		Log:      log,
		Clock:    clk,
		Invoices: invoices,
		Layout:   config.NewStaticLayoutConfigHolder(config.LayoutFile{}, "CA$"),
		PDF:      pdf.New(pdf.Params{Log: log}),
	})
	backups := backup.New(backup.Params{
		DB: db, Log: log, GenID: node, Clock: clk, PartyRepo: partyRepo, InvoiceRepo: invoiceRepo, Sequence: seq,
	})

	engine := NewEngine(EngineParams{
		ObsCfg:      observability.Config{ServiceName: "invoicekit-test", Environment: "test"},
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
	})
	NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		Log:        log,
		InvoiceSvc: invoices,
		PartySvc:   parties,
		Renderer:   renderer,
		BackupSvc:  backups,
	})
	return engine
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out, ok := decode(t, w)["data"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return out
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	payload, ok := decode(t, w)["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return payload["type"].(string)
}

func createInvoice(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/invoices", invoiceBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return data(t, w)["id"].(string)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invoicekit_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorType(t, w))
}

func TestProfiles_SaveListDelete(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodPost, "/api/clients", `{"name":"Bob Smith","address":"2 King St","phone":"6135550100"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data(t, w)
	assert.Equal(t, "Bob", created["firstName"])
	assert.Equal(t, "Smith", created["lastName"])
	assert.Equal(t, "2 King St", created["addressLine1"])
	assert.Equal(t, "+1 (613) 555-0100", created["phone"])
	id := created["id"].(string)

	w = do(r, http.MethodPost, "/api/clients", `{"firstName":"bob","lastName":"SMITH","city":"Ottawa"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, data(t, w)["id"])

	w = do(r, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = do(r, http.MethodGet, "/api/issuers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 0)

	w = do(r, http.MethodPost, "/api/issuers", `{"firstName":"Ann"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorType(t, w))

	w = do(r, http.MethodGet, "/api/clients/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/api/clients/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/clients/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoices_SaveAndFetch(t *testing.T) {
	r := newTestEngine(t)
	id := createInvoice(t, r)

	w := do(r, http.MethodGet, "/api/invoices/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	inv := data(t, w)
	assert.Equal(t, "INV-001", inv["invoiceNumber"])
	assert.Equal(t, "SENT", inv["status"])
	assert.Equal(t, "Bob Smith", inv["clientName"])

	w = do(r, http.MethodGet, "/api/invoices/next-number", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-002", data(t, w)["invoiceNumber"])

	update := strings.Replace(invoiceBody, `"invoiceNumber"`, `"id": "`+id+`", "invoiceNumber"`, 1)
	update = strings.Replace(update, `"sent"`, `"paid"`, 1)
	w = do(r, http.MethodPost, "/api/invoices", update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PAID", data(t, w)["status"])

	w = do(r, http.MethodGet, "/api/invoices/next-number", "")
	assert.Equal(t, "INV-002", data(t, w)["invoiceNumber"])
}

func TestInvoices_SaveErrors(t *testing.T) {
	r := newTestEngine(t)
	createInvoice(t, r)

	w := do(r, http.MethodPost, "/api/invoices", invoiceBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorType(t, w))

	w = do(r, http.MethodPost, "/api/invoices", `{"invoiceNumber":"INV-009","items":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decode(t, w)["error"].(map[string]any)
	fields := payload["errors"].([]any)
	require.NotEmpty(t, fields)
	assert.Equal(t, "sender.firstName", fields[0].(map[string]any)["field"])
	assert.Equal(t, "required", fields[0].(map[string]any)["code"])

	w = do(r, http.MethodPost, "/api/invoices", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/invoices/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoices_List(t *testing.T) {
	r := newTestEngine(t)
	createInvoice(t, r)

	w := do(r, http.MethodGet, "/api/invoices?page_size=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, false, body["page_info"].(map[string]any)["has_more"])

	w = do(r, http.MethodGet, "/api/invoices?status=paid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 0)

	w = do(r, http.MethodGet, "/api/invoices?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/invoices?page_token=bad!token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoices_DraftAndClone(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodGet, "/api/invoices/draft", "")
	require.Equal(t, http.StatusOK, w.Code)
	draft := data(t, w)
	assert.Equal(t, "INV-001", draft["invoiceNumber"])
	assert.Equal(t, "2025-03-10", draft["issueDate"])
	assert.Equal(t, "2025-03-24", draft["dueDate"])

	id := createInvoice(t, r)
	w = do(r, http.MethodPost, "/api/invoices/"+id+"/clone", "")
	require.Equal(t, http.StatusOK, w.Code)
	clone := data(t, w)
	assert.Equal(t, "INV-002", clone["invoiceNumber"])
	assert.Nil(t, clone["id"])
	assert.Equal(t, "Design", clone["items"].([]any)[0].(map[string]any)["description"])
}

func TestInvoices_Documents(t *testing.T) {
	r := newTestEngine(t)
	id := createInvoice(t, r)

	w := do(r, http.MethodGet, "/api/invoices/"+id+"/layout", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, data(t, w)["pages"], 1)

	w = do(r, http.MethodGet, "/api/invoices/"+id+"/pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Invoice-INV-001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = do(r, http.MethodGet, "/api/invoices/history.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Invoice-History-2025-03-10.pdf"`, w.Header().Get("Content-Disposition"))

	w = do(r, http.MethodDelete, "/api/invoices/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/invoices/"+id+"/pdf", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewTotals(t *testing.T) {
	r := newTestEngine(t)

	w := do(r, http.MethodPost, "/api/totals", `{"items":[{"description":"a","quantity":2,"price":"10.005"}],"taxRate":"13","shipping":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	display := data(t, w)["display"].(map[string]any)
	assert.Equal(t, "20.01", display["subtotal"])
	assert.Equal(t, "2.60", display["taxAmount"])
	assert.Equal(t, "0.00", display["shipping"])
	assert.Equal(t, "22.61", display["grandTotal"])
}

func TestBackup_ExportImport(t *testing.T) {
	r := newTestEngine(t)
	createInvoice(t, r)

	w := do(r, http.MethodGet, "/api/backup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice-data-backup-2025-03-10.json"`, w.Header().Get("Content-Disposition"))
	exported := w.Body.String()
	assert.Equal(t, "INV-001", decode(t, w)["lastInvoiceNum"])

	w = do(r, http.MethodPost, "/api/backup", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := data(t, w)
	assert.EqualValues(t, 3, result["collections"])
	assert.EqualValues(t, 1, result["invoices"])

	w = do(r, http.MethodPost, "/api/backup", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/backup", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
