//go:build ocr

// Package ocr extracts the text of a layout block so it can be copied to
// the clipboard or handed to a screen reader.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/raster"
)

// Client wraps Tesseract for block text extraction.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client. The client should be closed when no
// longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set segmentation mode: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for OCR recognition. Multiple
// languages can be specified as a "+" separated string (e.g. "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// BlockText recognizes the text inside one layout block, cropped from
// the page's coarse pixmap. Returns the recognized text with
// leading/trailing whitespace trimmed.
func (c *Client) BlockText(pix *raster.Pixmap, block *model.LayoutBlock) (string, error) {
	img, err := cropBlock(pix, block)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode block image: %w", err)
	}
	if err := c.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// cropBlock extracts the block's region of the pixmap as an RGBA image.
func cropBlock(pix *raster.Pixmap, block *model.LayoutBlock) (image.Image, error) {
	if pix.PageWidth <= 0 || pix.PageHeight <= 0 {
		return nil, fmt.Errorf("pixmap has no page dimensions")
	}
	scaleX := pix.PageWidth / float64(pix.Width)
	scaleY := pix.PageHeight / float64(pix.Height)

	x0 := clampInt(int(block.BBox.X/scaleX), 0, pix.Width)
	y0 := clampInt(int(block.BBox.Y/scaleY), 0, pix.Height)
	x1 := clampInt(int(block.BBox.Right()/scaleX+0.5), 0, pix.Width)
	y1 := clampInt(int(block.BBox.Bottom()/scaleY+0.5), 0, pix.Height)
	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("block region is empty")
	}

	img := image.NewRGBA(image.Rect(0, 0, x1-x0, y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b := pix.At(x, y)
			i := img.PixOffset(x-x0, y-y0)
			img.Pix[i] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = b
			img.Pix[i+3] = 255
		}
	}
	return img, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
