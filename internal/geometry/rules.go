package geometry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is the expected geometric signature for one sign label. Any field
// may be omitted; only present fields participate in scoring.
type Rule struct {
	// FingersExtended is the expected per-finger extension pattern
	// (thumb, index, middle, ring, pinky), each entry 0 or 1.
	FingersExtended *[5]int `yaml:"fingers_extended"`

	// OpennessMin / OpennessMax bound the allowed hand openness.
	OpennessMin *float64 `yaml:"openness_min"`
	OpennessMax *float64 `yaml:"openness_max"`
}

func pattern(bits ...int) *[5]int {
	var p [5]int
	copy(p[:], bits)
	return &p
}

func bound(v float64) *float64 { return &v }

// DefaultRules returns the built-in signature table for common BIM signs.
// The table is intentionally partial; signs without a rule are never
// penalized.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		// Open palm
		"TOLONG": {
			FingersExtended: pattern(1, 1, 1, 1, 1),
			OpennessMin:     bound(0.6),
		},
		// Closed fist
		"TERIMA KASIH": {
			FingersExtended: pattern(0, 0, 0, 0, 0),
			OpennessMax:     bound(0.3),
		},
		// Index pointing
		"SAYA": {
			FingersExtended: pattern(0, 1, 0, 0, 0),
		},
		// Thumb up
		"YA": {
			FingersExtended: pattern(1, 0, 0, 0, 0),
			OpennessMax:     bound(0.4),
		},
		// Index + middle
		"TIDAK": {
			FingersExtended: pattern(0, 1, 1, 0, 0),
		},
	}
}

// LoadRules reads additional signature rules from a YAML file and merges
// them over the defaults. File entries win on label collision.
func LoadRules(path string) (map[string]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var fileRules map[string]Rule
	if err := yaml.Unmarshal(data, &fileRules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	rules := DefaultRules()
	for label, rule := range fileRules {
		rules[label] = rule
	}
	return rules, nil
}
