package rate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"parcelrate/internal/tariff"
)

// NoOptionsMessage is reported when no carrier has a matching service.
const NoOptionsMessage = "No shipping options found for these dimensions/weight"

// Estimator defines the interface for rate estimation engines.
type Estimator interface {
	Estimate(p Parcel) Quote
}

// Parcel is the item to ship. Sides are in centimeters and unordered;
// weight is in grams.
type Parcel struct {
	Length  float64
	Width   float64
	Height  float64
	Weight  float64
	Country tariff.Country
}

// ErrInvalidParcel is returned by NewParcel for NaN or infinite measurements.
var ErrInvalidParcel = errors.New("invalid parcel")

// NewParcel builds a Parcel, rejecting values that cannot be compared.
// Zero and negative values are accepted; they simply fail every weight bound.
func NewParcel(length, width, height, weight float64, country tariff.Country) (Parcel, error) {
	for _, v := range []struct {
		name string
		val  float64
	}{{"length", length}, {"width", width}, {"height", height}, {"weight", weight}} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return Parcel{}, fmt.Errorf("%w: %s is %v", ErrInvalidParcel, v.name, v.val)
		}
	}
	return Parcel{Length: length, Width: width, Height: height, Weight: weight, Country: country}, nil
}

// Sides returns the parcel dimensions as a slice.
func (p Parcel) Sides() []float64 {
	return []float64{p.Length, p.Width, p.Height}
}

// Candidate is a service whose constraints the parcel satisfies.
type Candidate struct {
	Service string
	Price   tariff.Price
}

// Result is the outcome for one carrier. Best is nil when nothing matched.
type Result struct {
	Carrier tariff.Carrier
	Best    *Candidate
}

// Quote holds one Result per supported carrier, in tariff.Carriers order.
type Quote struct {
	Country tariff.Country
	Results []Result
}

// Summary renders the matching services as "<carrier> <service> <price>"
// joined by " / ". It returns false when no carrier matched.
func (q Quote) Summary() (string, bool) {
	parts := make([]string, 0, len(q.Results))
	for _, r := range q.Results {
		if r.Best == nil {
			continue
		}
		parts = append(parts, string(r.Carrier)+" "+r.Best.Service+" "+r.Best.Price.Text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " / "), true
}

// Engine evaluates parcels against a loaded tariff table.
type Engine struct {
	table  *tariff.Table
	logger *zap.Logger
}

// NewEngine returns an Engine for table. A nil logger disables logging.
func NewEngine(table *tariff.Table, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{table: table, logger: logger}
}

// Estimate picks the preferred service of every supported carrier for p.
// Carriers are evaluated independently.
func (e *Engine) Estimate(p Parcel) Quote {
	q := Quote{Country: p.Country, Results: make([]Result, 0, len(tariff.Carriers))}
	for _, carrier := range tariff.Carriers {
		log := e.logger.With(
			zap.String("carrier", string(carrier)),
			zap.String("country", p.Country.Key()),
		)
		cands := candidates(e.table, carrier, p, log)
		res := Result{Carrier: carrier}
		if best, ok := Select(cands); ok {
			res.Best = &best
			log.Debug("selected service",
				zap.String("service", best.Service),
				zap.String("price", best.Price.Amount.String()),
				zap.Int("candidates", len(cands)),
			)
		} else {
			log.Debug("no matching service")
		}
		q.Results = append(q.Results, res)
	}
	return q
}
