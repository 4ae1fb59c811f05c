package rate

import (
	"slices"

	"go.uber.org/zap"

	"parcelrate/internal/tariff"
)

// FitsInBox reports whether a parcel with the given sides fits a box with the
// given maximum sides in some orientation. Both lists are sorted and compared
// pairwise, smallest to smallest. When the box lists fewer sides than the
// parcel, the parcel's largest sides are left unchecked.
func FitsInBox(parcel, box []float64) bool {
	ps := slices.Clone(parcel)
	bs := slices.Clone(box)
	slices.Sort(ps)
	slices.Sort(bs)
	for i := 0; i < len(ps) && i < len(bs); i++ {
		if ps[i] > bs[i] {
			return false
		}
	}
	return true
}

// WithinWeight reports whether grams lies within the rule's declared weight
// bounds, both inclusive. An undeclared bound does not restrict.
func WithinWeight(rule tariff.Rule, grams float64) bool {
	if rule.MaxWeight != nil && grams > *rule.MaxWeight {
		return false
	}
	if rule.MinWeight != nil && grams < *rule.MinWeight {
		return false
	}
	return true
}

// Candidates returns every priced service of carrier in the parcel's country
// whose constraints the parcel satisfies, in document order.
func Candidates(table *tariff.Table, carrier tariff.Carrier, p Parcel) []Candidate {
	return candidates(table, carrier, p, zap.NewNop())
}

func candidates(table *tariff.Table, carrier tariff.Carrier, p Parcel, log *zap.Logger) []Candidate {
	entries, ok := table.Entries(carrier, p.Country.Key())
	if !ok {
		log.Debug("carrier has no tariffs for country")
		return nil
	}
	sides := p.Sides()
	var out []Candidate
	for _, e := range entries {
		if e.Kind != tariff.Service {
			continue
		}
		rule := e.Rule
		if d := rule.MaxDimensions; d != nil {
			if d.Unsupported {
				log.Debug("skipping service with unsupported dimensions", zap.String("service", e.Name))
				continue
			}
			if !FitsInBox(sides, d.Sides) {
				log.Debug("parcel does not fit", zap.String("service", e.Name))
				continue
			}
		}
		if !WithinWeight(rule, p.Weight) {
			log.Debug("weight out of range", zap.String("service", e.Name))
			continue
		}
		if rule.Price == nil {
			continue
		}
		out = append(out, Candidate{Service: e.Name, Price: *rule.Price})
	}
	return out
}
