package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"parcelrate/internal/db"
	"parcelrate/internal/rate"
	"parcelrate/internal/tariff"
)

// helper to parse standardized error
type stdError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type memStore struct {
	mu      sync.Mutex
	quotes  map[uuid.UUID]db.QuoteRecord
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{quotes: make(map[uuid.UUID]db.QuoteRecord)}
}

func (m *memStore) SaveQuote(_ context.Context, rec db.QuoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.quotes[rec.ID] = rec
	return nil
}

func (m *memStore) GetQuote(_ context.Context, id uuid.UUID) (db.QuoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.quotes[id]
	if !ok {
		return db.QuoteRecord{}, db.ErrNotFound
	}
	return rec, nil
}

func newHandler(t *testing.T, store QuoteStore) http.Handler {
	t.Helper()
	table, err := tariff.Default()
	if err != nil {
		t.Fatalf("load tariffs: %v", err)
	}
	return New(rate.NewEngine(table, nil), store, nil)
}

func do(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	rr := do(newHandler(t, nil), "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("expected body 'ok', got %q", body)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	rr := do(newHandler(t, nil), "/healthz")
	if rid := rr.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	newHandler(t, nil).ServeHTTP(rr, req)
	if rid := rr.Header().Get("X-Request-ID"); rid != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", rid)
	}
}

func TestGetRates(t *testing.T) {
	rr := do(newHandler(t, nil), "/rates?length=19.6&width=13&height=1.3&weight=170")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var res RateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.QuoteID != "" {
		t.Fatalf("expected no quote id without a store, got %q", res.QuoteID)
	}
	if res.Country != "Nederland" {
		t.Fatalf("unexpected country: %s", res.Country)
	}
	if res.Summary != "PostNL Brievenbuspakje € 4.30 / DHL Brievenbuspakket € 3.95" {
		t.Fatalf("unexpected summary: %s", res.Summary)
	}
	if len(res.Options) != 2 || res.Options[0].Carrier != "PostNL" || res.Options[1].Price != "3.95" {
		t.Fatalf("unexpected options: %+v", res.Options)
	}
}

func TestGetRates_BelgiumOmitsUnmatchedCarrier(t *testing.T) {
	rr := do(newHandler(t, nil), "/rates?length=19.6&width=13&height=1.3&weight=170&country=be")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var res RateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.Country != "België" || len(res.Options) != 1 || res.Options[0].Carrier != "DHL" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestGetRates_NoOptions(t *testing.T) {
	rr := do(newHandler(t, nil), "/rates?length=19.6&width=13&height=1.3&weight=0")
	var res RateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if res.Summary != rate.NoOptionsMessage {
		t.Fatalf("unexpected summary: %s", res.Summary)
	}
	if res.Options == nil || len(res.Options) != 0 {
		t.Fatalf("expected empty options, got %+v", res.Options)
	}
}

func TestGetRates_InvalidInput_ErrorJSON(t *testing.T) {
	for _, target := range []string{
		"/rates?width=13&height=1.3&weight=170",
		"/rates?length=abc&width=13&height=1.3&weight=170",
		"/rates?length=19.6&width=13&height=1.3&weight=NaN",
	} {
		rr := do(newHandler(t, nil), target)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
		var e stdError
		if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if e.Error.Code != "invalid_request" {
			t.Fatalf("%s: unexpected error code: %s", target, e.Error.Code)
		}
	}
}

func TestQuoteHistory(t *testing.T) {
	store := newMemStore()
	h := newHandler(t, store)

	rr := do(h, "/rates?length=19.6&width=13&height=1.3&weight=170")
	var res RateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if _, err := uuid.Parse(res.QuoteID); err != nil {
		t.Fatalf("expected quote id, got %q", res.QuoteID)
	}

	rr = do(h, "/quotes/"+res.QuoteID)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rr.Code, rr.Body.String())
	}
	var got QuoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.QuoteID != res.QuoteID || got.Weight != 170 || len(got.Options) != 2 {
		t.Fatalf("unexpected quote: %+v", got)
	}

	rr = do(h, "/quotes/"+uuid.NewString())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	rr = do(h, "/quotes/not-a-uuid")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestQuoteHistory_Disabled(t *testing.T) {
	rr := do(newHandler(t, nil), "/quotes/"+uuid.NewString())
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetRates_StoreFailure_ErrorJSON(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("connection refused")
	rr := do(newHandler(t, store), "/rates?length=19.6&width=13&height=1.3&weight=170")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var e stdError
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if e.Error.Code != "db_error" {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
}
