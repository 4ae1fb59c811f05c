package tariff

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document keys of a service rule.
const (
	keyMaxDimensions = "max. dimensions"
	keyMinWeight     = "min. weight"
	keyMaxWeight     = "max. weight"
	keyPrice         = "price"
)

//go:embed tariffs.yaml
var defaultDocument []byte

// Default returns the tariff table shipped with the binary.
func Default() (*Table, error) {
	return Parse(defaultDocument)
}

// Load reads the tariff document at path, or the shipped document when path
// is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// LoadFile reads and parses the tariff document at path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	return Parse(data)
}

// Parse builds a Table from a YAML document shaped as
// carrier -> country -> service -> fields. Carriers outside Carriers are
// skipped without inspection. Every service entry of a supported carrier is
// classified and its fields parsed here, so a returned Table is fully validated.
func Parse(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrConfig)
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrConfig)
	}

	t := &Table{carriers: make(map[string]map[string][]Entry)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		carrier := root.Content[i].Value
		if !supported(carrier) {
			continue
		}
		countriesNode := resolve(root.Content[i+1])
		if countriesNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: carrier %q is not a mapping", ErrConfig, carrier)
		}
		countries := make(map[string][]Entry)
		for j := 0; j+1 < len(countriesNode.Content); j += 2 {
			country := countriesNode.Content[j].Value
			servicesNode := resolve(countriesNode.Content[j+1])
			if servicesNode.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: %s/%s is not a mapping", ErrConfig, carrier, country)
			}
			entries := make([]Entry, 0, len(servicesNode.Content)/2)
			for k := 0; k+1 < len(servicesNode.Content); k += 2 {
				name := servicesNode.Content[k].Value
				entry, err := classify(name, resolve(servicesNode.Content[k+1]))
				if err != nil {
					return nil, fmt.Errorf("%s/%s/%s: %w", carrier, country, name, err)
				}
				entries = append(entries, entry)
			}
			countries[country] = entries
		}
		t.carriers[carrier] = countries
	}
	return t, nil
}

func classify(name string, n *yaml.Node) (Entry, error) {
	if n.Kind != yaml.MappingNode || name == extraOptions {
		return Entry{Name: name, Kind: NonService}, nil
	}
	var rule Rule
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := resolve(n.Content[i+1])
		switch key {
		case keyMaxDimensions, keyMinWeight, keyMaxWeight, keyPrice:
		default:
			continue
		}
		if val.Kind != yaml.ScalarNode {
			return Entry{}, fmt.Errorf("%w: %q is not a scalar", ErrParse, key)
		}
		switch key {
		case keyMaxDimensions:
			d, err := ParseDimensions(val.Value)
			if err != nil {
				return Entry{}, err
			}
			rule.MaxDimensions = &d
		case keyMinWeight:
			w, err := ParseWeight(val.Value)
			if err != nil {
				return Entry{}, err
			}
			rule.MinWeight = &w
		case keyMaxWeight:
			w, err := ParseWeight(val.Value)
			if err != nil {
				return Entry{}, err
			}
			rule.MaxWeight = &w
		case keyPrice:
			p, err := ParsePrice(val.Value)
			if err != nil {
				return Entry{}, err
			}
			rule.Price = &p
		}
	}
	return Entry{Name: name, Kind: Service, Rule: rule}, nil
}

func supported(name string) bool {
	for _, c := range Carriers {
		if string(c) == name {
			return true
		}
	}
	return false
}

// resolve follows YAML aliases to the anchored node.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
