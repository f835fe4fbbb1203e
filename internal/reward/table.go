package reward

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Band is an inclusive amount range.
type Band struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// Table is the weighted list of reward bands. A granted amount is a band
// picked by weight, then a uniform amount inside it.
type Table []Option[Band]

// DefaultTable always yields an amount in [15, 50].
func DefaultTable() Table {
	return Table{
		{Label: "common", Weight: 60, Value: Band{Min: 15, Max: 25}},
		{Label: "uncommon", Weight: 30, Value: Band{Min: 26, Max: 40}},
		{Label: "rare", Weight: 10, Value: Band{Min: 41, Max: 50}},
	}
}

// Validate checks that bands are positive and ordered and some weight is set.
func (t Table) Validate() error {
	total := 0
	for _, o := range t {
		if o.Weight < 0 {
			return fmt.Errorf("reward %q: negative weight", o.Label)
		}
		if o.Value.Min <= 0 || o.Value.Max < o.Value.Min {
			return fmt.Errorf("reward %q: invalid band %d..%d", o.Label, o.Value.Min, o.Value.Max)
		}
		total += o.Weight
	}
	if total == 0 {
		return ErrNoOptions
	}
	return nil
}

// Draw picks a band and an amount inside it.
func (t Table) Draw(r Rand) (string, int64, error) {
	o, err := Pick[Band](r, t)
	if err != nil {
		return "", 0, err
	}
	span := o.Value.Max - o.Value.Min + 1
	return o.Label, o.Value.Min + int64(r.IntN(int(span))), nil
}

type tableFile struct {
	Rewards []struct {
		Label  string `yaml:"label"`
		Weight int    `yaml:"weight"`
		Min    int64  `yaml:"min"`
		Max    int64  `yaml:"max"`
	} `yaml:"rewards"`
}

// LoadTable reads a YAML reward table:
//
//	rewards:
//	  - {label: common, weight: 60, min: 15, max: 25}
//	  - {label: rare, weight: 10, min: 41, max: 50}
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reward table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reward table %s: %w", path, err)
	}
	t := make(Table, 0, len(f.Rewards))
	for _, r := range f.Rewards {
		t = append(t, Option[Band]{Label: r.Label, Weight: r.Weight, Value: Band{Min: r.Min, Max: r.Max}})
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("reward table %s: %w", path, err)
	}
	return t, nil
}
