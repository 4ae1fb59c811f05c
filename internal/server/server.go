package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"parcelrate/internal/db"
	"parcelrate/internal/rate"
	"parcelrate/internal/tariff"
)

// QuoteStore persists handed out quotes. *db.QuoteStore implements it.
type QuoteStore interface {
	SaveQuote(ctx context.Context, rec db.QuoteRecord) error
	GetQuote(ctx context.Context, id uuid.UUID) (db.QuoteRecord, error)
}

type Server struct {
	est    rate.Estimator
	store  QuoteStore
	logger *zap.Logger
}

// New returns the API handler. store may be nil, which disables quote
// history; logger may be nil.
func New(est rate.Estimator, store QuoteStore, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{est: est, store: store, logger: logger}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/rates", s.handleGetRates)
	r.Get("/quotes/{id}", s.handleGetQuote)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Rates
type RateResponse struct {
	QuoteID string           `json:"quote_id,omitempty"`
	Country string           `json:"country"`
	Summary string           `json:"summary"`
	Options []db.QuoteOption `json:"options"`
}

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var dims [4]float64
	for i, name := range []string{"length", "width", "height", "weight"} {
		v := strings.TrimSpace(q.Get(name))
		if v == "" {
			writeErrorJSON(w, http.StatusBadRequest, "invalid_request", name+" required")
			return
		}
		f, err := parseFloat(v)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid "+name)
			return
		}
		dims[i] = f
	}
	parcel, err := rate.NewParcel(dims[0], dims[1], dims[2], dims[3], tariff.ResolveCountry(q.Get("country")))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	quote := s.est.Estimate(parcel)
	res := RateResponse{
		Country: parcel.Country.Key(),
		Summary: rate.NoOptionsMessage,
		Options: toOptions(quote),
	}
	if line, ok := quote.Summary(); ok {
		res.Summary = line
	}

	if s.store != nil {
		id := uuid.New()
		err := s.store.SaveQuote(r.Context(), db.QuoteRecord{
			ID:        id,
			Length:    parcel.Length,
			Width:     parcel.Width,
			Height:    parcel.Height,
			Weight:    parcel.Weight,
			Country:   res.Country,
			Options:   res.Options,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			s.logger.Error("save quote failed", zap.Error(err))
			writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to store quote")
			return
		}
		res.QuoteID = id.String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Quote history
type QuoteResponse struct {
	QuoteID   string           `json:"quote_id"`
	Length    float64          `json:"length"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Weight    float64          `json:"weight"`
	Country   string           `json:"country"`
	Options   []db.QuoteOption `json:"options"`
	CreatedAt string           `json:"created_at"`
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid quote id")
		return
	}
	if s.store == nil {
		writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "quote history disabled")
		return
	}
	rec, err := s.store.GetQuote(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "not found")
			return
		}
		s.logger.Error("get quote failed", zap.String("quote_id", id.String()), zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
		return
	}
	resp := QuoteResponse{
		QuoteID:   rec.ID.String(),
		Length:    rec.Length,
		Width:     rec.Width,
		Height:    rec.Height,
		Weight:    rec.Weight,
		Country:   rec.Country,
		Options:   rec.Options,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if resp.Options == nil {
		resp.Options = []db.QuoteOption{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toOptions lists the carriers that have a match, in quote order.
func toOptions(q rate.Quote) []db.QuoteOption {
	out := []db.QuoteOption{}
	for _, r := range q.Results {
		if r.Best == nil {
			continue
		}
		out = append(out, db.QuoteOption{
			Carrier:   string(r.Carrier),
			Service:   r.Best.Service,
			Price:     r.Best.Price.Amount.StringFixed(2),
			PriceText: r.Best.Price.Text,
		})
	}
	return out
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", ww.Header().Get("X-Request-ID")),
			)
		})
	}
}

func parseFloat(s string) (float64, error) {
	var n json.Number = json.Number(s)
	return n.Float64()
}
