package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boddenberg/expense-feed-go/internal/domain"
	"github.com/boddenberg/expense-feed-go/internal/handler"
	"github.com/boddenberg/expense-feed-go/internal/infra/memory"
	"github.com/boddenberg/expense-feed-go/internal/infra/observability"

	"go.uber.org/zap"
)

func newRouter(cfg handler.RouterConfig) http.Handler {
	return handler.NewRouter(memory.NewSeeded(zap.NewNop()), cfg, observability.NewMetrics(), zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newRouter(handler.RouterConfig{}), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	rec := do(t, newRouter(handler.RouterConfig{}), http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newRouter(handler.RouterConfig{})
	do(t, router, http.MethodDelete, "/expenses/1", "")

	rec := do(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "feed_mutations_total") {
		t.Error("expected feed metrics to be exposed")
	}
}

func TestListExpenses(t *testing.T) {
	rec := do(t, newRouter(handler.RouterConfig{}), http.MethodGet,
		"/expenses?page=0&size=2&sort=date,desc&startDate=2025-11-01&endDate=2025-11-30T23:59:59Z", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page domain.Page[domain.Expense]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || page.Last || len(page.Content) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
	if page.Content[0].ID != "3" {
		t.Errorf("expected newest first, got %s", page.Content[0].ID)
	}
	if !strings.Contains(rec.Body.String(), `"amount":25.99`) {
		t.Errorf("expected numeric amounts: %s", rec.Body.String())
	}
}

func TestListExpenses_HugePageIsEmpty(t *testing.T) {
	rec := do(t, newRouter(handler.RouterConfig{}), http.MethodGet, "/expenses?page=1844674407370955161&size=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.Page[domain.Expense]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Content) != 0 || !page.Last || page.TotalElements != 5 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestListExpenses_BadCriteria(t *testing.T) {
	router := newRouter(handler.RouterConfig{})
	for _, target := range []string{"/expenses?page=-1", "/expenses?size=abc", "/expenses?startDate=soon"} {
		rec := do(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestUpsertExpense(t *testing.T) {
	router := newRouter(handler.RouterConfig{})

	rec := do(t, router, http.MethodPut, "/expenses",
		`{"amount":3.20,"description":"Coffee","categoryId":"1","date":"2025-11-10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("expected id and timestamps, got %+v", created)
	}

	rec = do(t, router, http.MethodGet, "/expenses?size=50", "")
	var page domain.Page[domain.Expense]
	_ = json.Unmarshal(rec.Body.Bytes(), &page)
	if page.TotalElements != 6 {
		t.Errorf("expected the new expense to be visible, got %d", page.TotalElements)
	}

	rec = do(t, router, http.MethodPut, "/expenses",
		`{"id":"404","amount":1,"description":"Ghost","categoryId":"1","date":"2025-11-10"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPut, "/expenses", `{"amount":0,"description":"","categoryId":"1","date":"2025-11-10"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"amount"`) {
		t.Errorf("expected 400 on amount, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPut, "/expenses", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	router := newRouter(handler.RouterConfig{})

	if rec := do(t, router, http.MethodDelete, "/expenses/2", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, "/expenses/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	router := newRouter(handler.RouterConfig{})

	rec := do(t, router, http.MethodGet, "/v2/categories?sort=name,asc&name=TR", "")
	var filtered []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Transport" {
		t.Errorf("unexpected filtered categories %+v", filtered)
	}

	rec = do(t, router, http.MethodGet, "/categories?page=1&size=2&sort=name,asc", "")
	var page domain.Page[domain.Category]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || len(page.Content) != 2 || page.Content[0].Name != "Healthcare" {
		t.Errorf("unexpected category page %+v", page)
	}

	rec = do(t, router, http.MethodPut, "/categories", `{"name":"Travel"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPut, "/categories", `{"name":" "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank name, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodDelete, "/categories/1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/categories?size=-1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative size, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	router := newRouter(handler.RouterConfig{BearerToken: "s3cret"})

	if rec := do(t, router, http.MethodGet, "/expenses", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/expenses", "", "Authorization", "Basic abc"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong scheme, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/expenses", "", "Authorization", "Bearer nope"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong token, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/expenses", "", "Authorization", "Bearer s3cret"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("expected operational endpoints to stay open, got %d", rec.Code)
	}
}
