// Package capfile loads the inflation cap table from YAML.
package capfile

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

//go:embed inflation_caps.yaml
var defaultTable []byte

type document struct {
	Caps map[int]rate `yaml:"caps"`
}

type rate decimal.Decimal

func (r *rate) UnmarshalYAML(n *yaml.Node) error {
	d, err := decimal.NewFromString(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid rate %q", n.Line, n.Value)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("line %d: rate %s out of range [0, 1)", n.Line, d)
	}
	*r = rate(d)
	return nil
}

// Default returns the embedded cap table.
func Default() (service.StaticInflationCaps, error) {
	return Parse(defaultTable)
}

// Load reads the table at path, or the embedded table when path is empty.
func Load(path string) (service.StaticInflationCaps, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return service.StaticInflationCaps{}, fmt.Errorf("read inflation caps: %w", err)
	}
	caps, err := Parse(data)
	if err != nil {
		return service.StaticInflationCaps{}, fmt.Errorf("%s: %w", path, err)
	}
	return caps, nil
}

// Parse decodes a YAML document of the form "caps: {year: rate}".
func Parse(data []byte) (service.StaticInflationCaps, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return service.StaticInflationCaps{}, fmt.Errorf("parse inflation caps: %w", err)
	}
	caps := make(map[int]decimal.Decimal, len(doc.Caps))
	for year, r := range doc.Caps {
		caps[year] = decimal.Decimal(r)
	}
	return service.NewStaticInflationCaps(caps), nil
}
