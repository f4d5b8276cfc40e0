package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/grassgen/fin"
)

// Range is a [low, high] pair. In YAML it is written as a scalar (both
// bounds equal) or a one- or two-element list.
type Range struct {
	Low  float64
	High float64
}

// Normalized returns the range with Low <= High.
func (r Range) Normalized() Range {
	if r.Low > r.High {
		return Range{Low: r.High, High: r.Low}
	}
	return r
}

// Fin converts to the simulation range type.
func (r Range) Fin() fin.Range {
	return fin.Range{Lo: r.Low, Hi: r.High}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*r = Range{Low: v, High: v}
		return nil
	case yaml.SequenceNode:
		var vs []float64
		if err := value.Decode(&vs); err != nil {
			return err
		}
		switch len(vs) {
		case 1:
			*r = Range{Low: vs[0], High: vs[0]}
		case 2:
			*r = Range{Low: vs[0], High: vs[1]}
		default:
			return fmt.Errorf("line %d: range needs 1 or 2 values, got %d", value.Line, len(vs))
		}
		return nil
	}
	return fmt.Errorf("line %d: range must be a number or a list", value.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (r Range) MarshalYAML() (interface{}, error) {
	if r.Low == r.High {
		return r.Low, nil
	}
	return []float64{r.Low, r.High}, nil
}
