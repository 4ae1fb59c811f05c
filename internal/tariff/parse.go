package tariff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// compositeMarker identifies dimension phrases such as
// "L + B + H = max. 90 cm, langste zijde = max. 60 cm".
const compositeMarker = "L + B + H"

// ParseDimensions parses a maximum-dimensions string like "38 x 26.5 x 3.2 cm"
// or "14 x 9 cm". Composite phrases yield Dimensions{Unsupported: true}.
func ParseDimensions(s string) (Dimensions, error) {
	if strings.Contains(s, compositeMarker) {
		return Dimensions{Unsupported: true}, nil
	}
	parts := strings.Split(strings.TrimSpace(strings.ReplaceAll(s, "cm", "")), "x")
	sides := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Dimensions{}, fmt.Errorf("%w: dimensions %q: %v", ErrParse, s, err)
		}
		sides = append(sides, v)
	}
	return Dimensions{Sides: sides}, nil
}

// ParseWeight parses a weight like "2 kg" or "500 g" into grams. A bare number
// is taken to be grams already.
func ParseWeight(s string) (float64, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	factor := 1.0
	switch {
	case strings.Contains(w, "kg"):
		w = strings.ReplaceAll(w, "kg", "")
		factor = 1000
	case strings.Contains(w, "g"):
		w = strings.ReplaceAll(w, "g", "")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: weight %q: %v", ErrParse, s, err)
	}
	return v * factor, nil
}

// ParsePrice parses a price like "€ 4.25".
func ParsePrice(s string) (Price, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, "€", "")))
	if err != nil {
		return Price{}, fmt.Errorf("%w: price %q: %v", ErrParse, s, err)
	}
	return Price{Amount: amount, Text: s}, nil
}
