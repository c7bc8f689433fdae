// Package tray provides the system tray indicator for WireGuard GUI.
// This file contains icon generation for the tray.
package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	AccentColor color.RGBA
	SymbolColor color.RGBA
	// Connected draws a checkmark instead of a lock.
	Connected bool
}

// ConnectedIconConfig returns the icon config for the connected state.
func ConnectedIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		FillColor:   color.RGBA{136, 23, 26, 255},   // WireGuard red
		BorderColor: color.RGBA{181, 44, 48, 255},
		AccentColor: color.RGBA{232, 160, 162, 255},
		SymbolColor: color.RGBA{255, 255, 255, 255},
		Connected:   true,
	}
}

// DisconnectedIconConfig returns the icon config for the disconnected state.
func DisconnectedIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		FillColor:   color.RGBA{117, 117, 117, 255},
		BorderColor: color.RGBA{158, 158, 158, 255},
		AccentColor: color.RGBA{189, 189, 189, 255},
		SymbolColor: color.RGBA{255, 255, 255, 255},
	}
}

// RenderIcon draws a shield with the state symbol and encodes it as PNG.
func RenderIcon(cfg IconConfig) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Size, cfg.Size))

	drawShield(img, cfg)
	if cfg.Connected {
		drawCheckmark(img, cfg)
	} else {
		drawLock(img, cfg)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inShield reports whether (x, y) falls inside a shield of the given size:
// straight sides on the upper half, a parabolic taper to the tip below.
func inShield(size int, x, y float64) bool {
	top, bottom := 1.0, float64(size)-2
	halfWidth := (float64(size) - 4) / 2

	rel := (y - top) / (bottom - top)
	if rel < 0 || rel > 1 {
		return false
	}
	w := halfWidth - rel*0.5
	if rel >= 0.5 {
		p := (rel - 0.5) * 2
		w = (halfWidth - 0.25) * (1 - p*p)
	}
	cx := float64(size) / 2
	return x >= cx-w && x <= cx+w
}

func drawShield(img *image.RGBA, cfg IconConfig) {
	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !inShield(cfg.Size, fx, fy) {
				continue
			}
			edge := !inShield(cfg.Size, fx-1, fy) || !inShield(cfg.Size, fx+1, fy) ||
				!inShield(cfg.Size, fx, fy-1) || !inShield(cfg.Size, fx, fy+1)
			switch {
			case edge:
				img.Set(x, y, cfg.BorderColor)
			case float64(y) < 0.3*float64(cfg.Size):
				img.Set(x, y, cfg.AccentColor)
			default:
				img.Set(x, y, cfg.FillColor)
			}
		}
	}
}

func drawCheckmark(img *image.RGBA, cfg IconConfig) {
	points := [][2]int{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8},
	}
	for _, p := range points {
		img.Set(p[0], p[1], cfg.SymbolColor)
	}
}

func drawLock(img *image.RGBA, cfg IconConfig) {
	c := cfg.SymbolColor

	// Body.
	for y := 10; y <= 15; y++ {
		for x := 8; x <= 14; x++ {
			if y == 10 || y == 15 || x == 8 || x == 14 {
				img.Set(x, y, c)
			}
		}
	}
	// Shackle.
	for x := 9; x <= 13; x++ {
		img.Set(x, 6, c)
	}
	for y := 7; y <= 9; y++ {
		img.Set(9, y, c)
		img.Set(13, y, c)
	}
}
