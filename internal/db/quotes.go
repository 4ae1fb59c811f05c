package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no quote exists for an id.
var ErrNotFound = errors.New("quote not found")

// QuoteOption is the selected service of one carrier.
type QuoteOption struct {
	Carrier   string `json:"carrier"`
	Service   string `json:"service"`
	Price     string `json:"price"`
	PriceText string `json:"price_text"`
}

// QuoteRecord is a persisted quote.
type QuoteRecord struct {
	ID        uuid.UUID
	Length    float64
	Width     float64
	Height    float64
	Weight    float64
	Country   string
	Options   []QuoteOption
	CreatedAt time.Time
}

// QuoteStore keeps the history of quotes handed out.
type QuoteStore struct {
	pool *pgxpool.Pool
}

func NewQuoteStore(pool *pgxpool.Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

// EnsureSchema creates the quotes table if it does not exist.
func (s *QuoteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *QuoteStore) SaveQuote(ctx context.Context, rec QuoteRecord) error {
	options := rec.Options
	if options == nil {
		options = []QuoteOption{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quotes (id, length_cm, width_cm, height_cm, weight_g, country, options, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`, rec.ID, rec.Length, rec.Width, rec.Height, rec.Weight, rec.Country, string(raw), rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("quote %s already stored: %w", rec.ID, err)
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (s *QuoteStore) GetQuote(ctx context.Context, id uuid.UUID) (QuoteRecord, error) {
	rec := QuoteRecord{ID: id}
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT length_cm, width_cm, height_cm, weight_g, country, options, created_at
		FROM quotes
		WHERE id = $1
	`, id).Scan(&rec.Length, &rec.Width, &rec.Height, &rec.Weight, &rec.Country, &raw, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRecord{}, ErrNotFound
		}
		return QuoteRecord{}, fmt.Errorf("select quote: %w", err)
	}
	if err := json.Unmarshal(raw, &rec.Options); err != nil {
		return QuoteRecord{}, fmt.Errorf("decode quote options: %w", err)
	}
	return rec, nil
}
