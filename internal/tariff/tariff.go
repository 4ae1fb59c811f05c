// Package tariff models the carrier tariff document: carriers, destination
// countries and the service rules each carrier offers there.
package tariff

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrConfig is returned when the tariff document is missing, unreadable
	// or not shaped as carrier -> country -> service mappings.
	ErrConfig = errors.New("tariff config error")
	// ErrParse is returned when a weight, price or dimension string in the
	// document does not have the expected format.
	ErrParse = errors.New("tariff parse error")
)

// Carrier is the name of a shipping provider as it appears in the document.
type Carrier string

const (
	PostNL Carrier = "PostNL"
	DHL    Carrier = "DHL"
)

// Carriers lists the supported carriers in evaluation and output order.
var Carriers = []Carrier{PostNL, DHL}

// Country is a supported destination market.
type Country int

const (
	Netherlands Country = iota
	Belgium
)

// Key returns the country name used as key in the tariff document.
func (c Country) Key() string {
	switch c {
	case Belgium:
		return "België"
	default:
		return "Nederland"
	}
}

func (c Country) String() string { return c.Key() }

// ResolveCountry maps a free-form country token to a supported country.
// Unknown tokens resolve to the Netherlands.
func ResolveCountry(token string) Country {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "BE", "BELGIË", "BELGIUM":
		return Belgium
	default:
		return Netherlands
	}
}

// EntryKind tells service rules apart from other lines in a country table.
type EntryKind int

const (
	NonService EntryKind = iota
	Service
)

// extraOptions is a DHL line item listing surcharges, not a service.
const extraOptions = "Extra opties"

// Entry is one named line of a carrier's country table.
type Entry struct {
	Name string
	Kind EntryKind
	Rule Rule
}

// Rule holds the constraints and price of a single service.
// Nil fields are not declared by the document.
type Rule struct {
	MaxDimensions *Dimensions
	MinWeight     *float64 // grams
	MaxWeight     *float64 // grams
	Price         *Price
}

// Dimensions is a parsed maximum-dimensions constraint. Unsupported is set for
// composite phrases (sum of sides, longest side) which cannot be expressed as
// a list of sides; such a rule never matches.
type Dimensions struct {
	Sides       []float64
	Unsupported bool
}

// Price is a service price: the amount for comparison and the text exactly as
// written in the document, for display.
type Price struct {
	Amount decimal.Decimal
	Text   string
}

// Table is a loaded tariff document. It is not modified after loading and may
// be shared between goroutines.
type Table struct {
	carriers map[string]map[string][]Entry
}

// Entries returns the entries of a carrier for a country key in document
// order, and whether that carrier/country exists.
func (t *Table) Entries(carrier Carrier, countryKey string) ([]Entry, bool) {
	if t == nil {
		return nil, false
	}
	countries, ok := t.carriers[string(carrier)]
	if !ok {
		return nil, false
	}
	entries, ok := countries[countryKey]
	return entries, ok
}

// Carriers returns the names of the supported carriers present in the document.
func (t *Table) Carriers() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.carriers))
	for name := range t.carriers {
		names = append(names, name)
	}
	return names
}
