package models

import "fmt"

// Dimensions is a pixel width and height pair
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Valid reports whether both axes are strictly positive
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// LongEdge returns the larger of the two axes
func (d Dimensions) LongEdge() int {
	if d.Width >= d.Height {
		return d.Width
	}
	return d.Height
}

// Fits reports whether d fits inside other on both axes
func (d Dimensions) Fits(other Dimensions) bool {
	return d.Width <= other.Width && d.Height <= other.Height
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
