package prefabs

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/milk9111/chromashapes/levels"
	"gopkg.in/yaml.v3"
)

const ShapeTuningFile = "shape.yaml"

var ErrInvalidTuning = errors.New("invalid tuning")

// ShapeTuning holds the gameplay constants for shapes and the play area.
// Scales are multiples of BaseSize.
type ShapeTuning struct {
	ExpandSeconds   float64     `yaml:"expand_seconds"`
	ShrinkSeconds   float64     `yaml:"shrink_seconds"`
	MaxScale        float64     `yaml:"max_scale"`
	BaseSize        float64     `yaml:"base_size"`
	DragSpeed       float64     `yaml:"drag_speed"`
	AspectTolerance float64     `yaml:"aspect_tolerance"`
	BorderPercent   float64     `yaml:"border_percent"`
	Damping         float64     `yaml:"damping"`
	Friction        float64     `yaml:"friction"`
	Elasticity      float64     `yaml:"elasticity"`
	BorderColor     *YAMLColor  `yaml:"border_color"`
	Audio           []AudioSpec `yaml:"audio"`
}

// AudioSpec describes a generated tone. Jitter is the fraction the pitch
// may vary each time the cue plays.
type AudioSpec struct {
	Name      string  `yaml:"name"`
	Frequency float64 `yaml:"frequency"`
	Seconds   float64 `yaml:"seconds"`
	Volume    float64 `yaml:"volume"`
	Jitter    float64 `yaml:"jitter"`
}

func DefaultShapeTuning() ShapeTuning {
	return ShapeTuning{
		ExpandSeconds:   1.5,
		ShrinkSeconds:   0.5,
		MaxScale:        50,
		BaseSize:        64,
		DragSpeed:       12,
		AspectTolerance: 0.02,
		BorderPercent:   0.9,
		Damping:         0.9,
		Friction:        0.4,
		Elasticity:      0.1,
	}
}

// LoadShapeTuning reads shape.yaml. Keys missing from the file keep their
// defaults.
func LoadShapeTuning() (ShapeTuning, error) {
	data, err := Load(ShapeTuningFile)
	if err != nil {
		return DefaultShapeTuning(), fmt.Errorf("prefabs: load %s: %w", ShapeTuningFile, err)
	}
	return ParseShapeTuning(data)
}

// ParseShapeTuning unmarshals data over the defaults and validates the
// result. On error the defaults are returned.
func ParseShapeTuning(data []byte) (ShapeTuning, error) {
	spec := DefaultShapeTuning()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return DefaultShapeTuning(), fmt.Errorf("prefabs: unmarshal %s: %w", ShapeTuningFile, err)
	}
	if err := spec.Validate(); err != nil {
		return DefaultShapeTuning(), err
	}
	return spec, nil
}

func (t ShapeTuning) Validate() error {
	switch {
	case t.ExpandSeconds <= 0:
		return fmt.Errorf("prefabs: %w: expand_seconds must be positive", ErrInvalidTuning)
	case t.ShrinkSeconds <= 0:
		return fmt.Errorf("prefabs: %w: shrink_seconds must be positive", ErrInvalidTuning)
	case t.MaxScale <= 1:
		return fmt.Errorf("prefabs: %w: max_scale must exceed 1", ErrInvalidTuning)
	case t.BaseSize <= 0:
		return fmt.Errorf("prefabs: %w: base_size must be positive", ErrInvalidTuning)
	case t.BorderPercent <= 0 || t.BorderPercent > 1:
		return fmt.Errorf("prefabs: %w: border_percent must be in (0, 1]", ErrInvalidTuning)
	case t.AspectTolerance < 0:
		return fmt.Errorf("prefabs: %w: aspect_tolerance must not be negative", ErrInvalidTuning)
	case t.Damping <= 0 || t.Damping > 1:
		return fmt.Errorf("prefabs: %w: damping must be in (0, 1]", ErrInvalidTuning)
	}
	return nil
}

// Sound returns the cue with the given name.
func (t ShapeTuning) Sound(name string) (AudioSpec, bool) {
	for _, a := range t.Audio {
		if a.Name == name {
			return a, true
		}
	}
	return AudioSpec{}, false
}

// Border returns the border color, gray when unset.
func (t ShapeTuning) Border() color.Color {
	if t.BorderColor == nil || t.BorderColor.Color == nil {
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	return t.BorderColor.Color
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := levels.ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}
