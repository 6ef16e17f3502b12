// Package imaging decodes PNG headers and resamples PNG images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/sdejongh/canvasync/pkg/models"
)

// ErrEmptyImage is returned for zero-length input
var ErrEmptyImage = errors.New("empty image data")

// Codec is the pixel collaborator of the image batch
type Codec interface {
	// DecodeConfig reads the image dimensions without decoding pixels
	DecodeConfig(data []byte) (models.Dimensions, error)

	// Resample scales the image to fit inside target. It never upscales.
	Resample(data []byte, target models.Dimensions) ([]byte, error)
}

// PNGCodec resamples PNG images with a Catmull-Rom kernel
type PNGCodec struct {
	scaler  draw.Scaler
	encoder png.Encoder
}

// NewPNGCodec creates a codec using Catmull-Rom resampling
func NewPNGCodec() *PNGCodec {
	return &PNGCodec{
		scaler:  draw.CatmullRom,
		encoder: png.Encoder{CompressionLevel: png.DefaultCompression},
	}
}

// DecodeConfig reads the PNG header
func (c *PNGCodec) DecodeConfig(data []byte) (models.Dimensions, error) {
	if len(data) == 0 {
		return models.Dimensions{}, ErrEmptyImage
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.Dimensions{}, fmt.Errorf("failed to decode png header: %w", err)
	}

	d := models.Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !d.Valid() {
		return models.Dimensions{}, fmt.Errorf("invalid image dimensions %s", d)
	}
	return d, nil
}

// Resample scales data to target. A target larger than the image on either
// axis is first fitted inside the image so nothing is upscaled; when that
// leaves the size unchanged the input bytes are returned as is.
func (c *PNGCodec) Resample(data []byte, target models.Dimensions) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if !target.Valid() {
		return nil, fmt.Errorf("invalid target dimensions %s", target)
	}

	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}

	bounds := src.Bounds()
	orig := models.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}
	out := target
	if !target.Fits(orig) {
		out = fitInside(orig, target)
	}
	if out == orig {
		return data, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, out.Width, out.Height))
	c.scaler.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := c.encoder.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// fitInside returns the largest size inside box with the aspect ratio of
// orig, never larger than orig itself
func fitInside(orig, box models.Dimensions) models.Dimensions {
	if orig.Fits(box) {
		return orig
	}

	wr := float64(box.Width) / float64(orig.Width)
	hr := float64(box.Height) / float64(orig.Height)
	if wr <= hr {
		h := int(float64(orig.Height)*wr + 0.5)
		return models.Dimensions{Width: box.Width, Height: max(min(h, box.Height), 1)}
	}
	w := int(float64(orig.Width)*hr + 0.5)
	return models.Dimensions{Width: max(min(w, box.Width), 1), Height: box.Height}
}
