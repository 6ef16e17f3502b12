// Package resize decides output dimensions for the wide and box-fit variants.
// It performs no I/O and no pixel work.
package resize

import (
	"errors"
	"fmt"
	"math"

	"github.com/sdejongh/canvasync/pkg/models"
)

var (
	// ErrNoBoxSizes is returned when the box list is empty
	ErrNoBoxSizes = errors.New("no box sizes configured")

	// ErrNoBoxFits is returned when shrinking never produces a match
	ErrNoBoxFits = errors.New("no box fits the image")

	// ErrInvalidDimensions is returned for zero or negative input
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// Targets holds the computed size of each derivative
type Targets struct {
	Wide   models.Dimensions
	BoxFit models.Dimensions
}

// Plan computes both variants for an image
func Plan(d models.Dimensions, cfg models.ResizeConfig) (Targets, error) {
	if !d.Valid() {
		return Targets{}, fmt.Errorf("%w: %s", ErrInvalidDimensions, d)
	}

	box, err := FitDiscreteBox(d, cfg)
	if err != nil {
		return Targets{}, err
	}

	return Targets{
		Wide:   FitMaxEdge(d, cfg.MaxEdge),
		BoxFit: box,
	}, nil
}

// FitMaxEdge scales d down so its longer edge equals maxEdge. Width governs
// when the image is square. Images already within the cap are returned as is.
func FitMaxEdge(d models.Dimensions, maxEdge int) models.Dimensions {
	switch {
	case d.Width >= d.Height && d.Width > maxEdge:
		ratio := float64(maxEdge) / float64(d.Width)
		return models.Dimensions{Width: maxEdge, Height: floorPositive(float64(d.Height) * ratio)}
	case d.Height >= d.Width && d.Height > maxEdge:
		ratio := float64(maxEdge) / float64(d.Height)
		return models.Dimensions{Width: floorPositive(float64(d.Width) * ratio), Height: maxEdge}
	default:
		return d
	}
}

// FitDiscreteBox shrinks d by cfg.ShrinkFactor until it fits one of
// cfg.BoxSizes plus cfg.Tolerance. Boxes are tried in list order and the
// first match wins. The loop gives up with ErrNoBoxFits after
// cfg.MaxShrinkRounds rounds or once an axis would floor to zero.
func FitDiscreteBox(d models.Dimensions, cfg models.ResizeConfig) (models.Dimensions, error) {
	if len(cfg.BoxSizes) == 0 {
		return models.Dimensions{}, ErrNoBoxSizes
	}
	if !d.Valid() {
		return models.Dimensions{}, fmt.Errorf("%w: %s", ErrInvalidDimensions, d)
	}

	w, h := float64(d.Width), float64(d.Height)
	for round := 0; !matchesBox(w, h, cfg.BoxSizes, cfg.Tolerance); round++ {
		if round >= cfg.MaxShrinkRounds {
			return models.Dimensions{}, fmt.Errorf("%w: %s after %d shrink rounds", ErrNoBoxFits, d, round)
		}
		w *= cfg.ShrinkFactor
		h *= cfg.ShrinkFactor
		if math.Floor(w) < 1 || math.Floor(h) < 1 {
			return models.Dimensions{}, fmt.Errorf("%w: %s shrank below one pixel", ErrNoBoxFits, d)
		}
	}

	// never upscale
	out := models.Dimensions{
		Width:  min(floorPositive(w), d.Width),
		Height: min(floorPositive(h), d.Height),
	}
	return out, nil
}

func matchesBox(w, h float64, boxes []models.Dimensions, tolerance int) bool {
	for _, box := range boxes {
		if float64(box.Width+tolerance) >= w && float64(box.Height+tolerance) >= h {
			return true
		}
	}
	return false
}

func floorPositive(v float64) int {
	n := int(math.Floor(v))
	if n < 1 {
		return 1
	}
	return n
}
