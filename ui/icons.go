// Package ui provides the graphical user interface for Rig Panel.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/dysperse/rigpanel/common"
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	AccentColor color.RGBA
	SymbolColor color.RGBA
	// Glow draws rays around the bulb.
	Glow bool
}

// DefaultOnlineIconConfig returns the config for a reachable rig.
func DefaultOnlineIconConfig() IconConfig {
	return IconConfig{
		Size:        common.TrayIconSize,
		FillColor:   color.RGBA{142, 68, 173, 255},  // Purple
		BorderColor: color.RGBA{187, 107, 217, 255}, // Light purple
		AccentColor: color.RGBA{232, 218, 239, 255}, // Highlight
		SymbolColor: color.RGBA{255, 255, 255, 255}, // White
		Glow:        true,
	}
}

// DefaultOfflineIconConfig returns the config for an unreachable rig.
func DefaultOfflineIconConfig() IconConfig {
	return IconConfig{
		Size:        common.TrayIconSize,
		FillColor:   color.RGBA{117, 117, 117, 255}, // Dark gray
		BorderColor: color.RGBA{158, 158, 158, 255}, // Gray
		AccentColor: color.RGBA{189, 189, 189, 255}, // Light gray
		SymbolColor: color.RGBA{255, 255, 255, 255}, // White
	}
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawBulb(img)
	g.drawBase(img)
	if g.config.Glow {
		g.drawGlow(img)
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// drawBulb draws a filled circle in the upper part of the icon with a
// highlight in its top-left quarter.
func (g *IconGenerator) drawBulb(img *image.RGBA) {
	size := float64(g.config.Size)
	cx, cy := size/2, size*0.42
	r := size * 0.30

	for y := 0; y < g.config.Size; y++ {
		for x := 0; x < g.config.Size; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			d := math.Sqrt(dx*dx + dy*dy)
			switch {
			case d <= r-1:
				if dx < 0 && dy < 0 && d < r*0.55 {
					img.Set(x, y, g.config.AccentColor)
				} else {
					img.Set(x, y, g.config.FillColor)
				}
			case d <= r:
				img.Set(x, y, g.config.BorderColor)
			}
		}
	}
}

// drawBase draws the screw base under the bulb.
func (g *IconGenerator) drawBase(img *image.RGBA) {
	size := g.config.Size
	left, right := size*2/5, size-size*2/5
	top := int(float64(size)*0.72) + 1
	for y := top; y < top+3 && y < size; y++ {
		for x := left; x < right; x++ {
			img.Set(x, y, g.config.SymbolColor)
		}
	}
}

// drawGlow draws short rays around the bulb.
func (g *IconGenerator) drawGlow(img *image.RGBA) {
	size := float64(g.config.Size)
	cx, cy := size/2, size*0.42
	inner, outer := size*0.36, size*0.46

	for i := 0; i < 8; i++ {
		angle := float64(i) * math.Pi / 4
		if math.Sin(angle) > 0.5 {
			// No rays below the bulb; the base is there.
			continue
		}
		for r := inner; r <= outer; r += 0.5 {
			x := int(cx + r*math.Cos(angle))
			y := int(cy - r*math.Sin(angle))
			if x >= 0 && x < g.config.Size && y >= 0 && y < g.config.Size {
				img.Set(x, y, g.config.BorderColor)
			}
		}
	}
}

// GenerateOnlineIcon generates the online state icon.
func GenerateOnlineIcon() []byte {
	return NewIconGenerator(DefaultOnlineIconConfig()).Generate()
}

// GenerateOfflineIcon generates the offline state icon.
func GenerateOfflineIcon() []byte {
	return NewIconGenerator(DefaultOfflineIconConfig()).Generate()
}
