package models

import "fmt"

// Resize defaults, used when the configuration leaves a field unset
const (
	DefaultMaxEdge         = 1080
	DefaultTolerance       = 90
	DefaultShrinkFactor    = 0.9375
	DefaultMaxShrinkRounds = 200
)

// DefaultBoxSizes returns the stock box list, in priority order
func DefaultBoxSizes() []Dimensions {
	return []Dimensions{
		{Width: 600, Height: 850},
		{Width: 724, Height: 1024},
		{Width: 1000, Height: 750},
		{Width: 1200, Height: 750},
		{Width: 1024, Height: 768},
		{Width: 1280, Height: 800},
		{Width: 1280, Height: 960},
	}
}

// ResizeConfig drives both resize policies. It is built once per run and
// passed by value; nothing in the engine reads global defaults.
type ResizeConfig struct {
	// MaxEdge caps the longer edge of the wide variant
	MaxEdge int

	// BoxSizes are the accepted target boxes for the box-fit variant.
	// List order is priority order.
	BoxSizes []Dimensions

	// Tolerance is the pixel slack added to each box when testing a fit
	Tolerance int

	// ShrinkFactor is applied to both axes after every unmatched scan
	ShrinkFactor float64

	// MaxShrinkRounds bounds the shrink loop
	MaxShrinkRounds int
}

// DefaultResizeConfig returns the stock resize configuration
func DefaultResizeConfig() ResizeConfig {
	return ResizeConfig{
		MaxEdge:         DefaultMaxEdge,
		BoxSizes:        DefaultBoxSizes(),
		Tolerance:       DefaultTolerance,
		ShrinkFactor:    DefaultShrinkFactor,
		MaxShrinkRounds: DefaultMaxShrinkRounds,
	}
}

// Validate checks the configuration before a batch starts
func (c ResizeConfig) Validate() error {
	if c.MaxEdge < 1 {
		return &ValidationError{Field: "MaxEdge", Message: "must be at least 1"}
	}
	if len(c.BoxSizes) == 0 {
		return &ValidationError{Field: "BoxSizes", Message: "at least one box size is required"}
	}
	for i, box := range c.BoxSizes {
		if !box.Valid() {
			return &ValidationError{
				Field:   fmt.Sprintf("BoxSizes[%d]", i),
				Message: fmt.Sprintf("dimensions must be positive, got %s", box),
			}
		}
	}
	if c.Tolerance < 0 {
		return &ValidationError{Field: "Tolerance", Message: "must not be negative"}
	}
	if c.ShrinkFactor <= 0 || c.ShrinkFactor > 1 {
		return &ValidationError{Field: "ShrinkFactor", Message: "must be in (0, 1]"}
	}
	if c.MaxShrinkRounds < 1 {
		return &ValidationError{Field: "MaxShrinkRounds", Message: "must be at least 1"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
