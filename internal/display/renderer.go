// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display renders text on a monochrome OLED panel.
//
// Draw calls only touch an in-memory frame; Flush pushes that frame to the
// device. The frame is kept between flushes, so Clear must be called before
// redrawing a screen.
package display

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// ErrNotFound means the panel did not acknowledge on the bus.
var ErrNotFound = errors.New("display not found")

// LineHeight is the baseline distance of the text face.
const LineHeight = 13

// Addr is the I²C address ssd1306.NewI2C talks to. The driver does not
// take another one.
const Addr = 0x3C

// Opts describes the attached panel.
type Opts struct {
	W int
	H int
}

// Renderer owns the frame buffer of one panel.
type Renderer struct {
	dev   display.Drawer
	frame *image1bit.VerticalLSB
	face  font.Face
}

// Open initializes an SSD1306 on bus.
func Open(bus i2c.Bus, opts Opts) (*Renderer, error) {
	o := ssd1306.DefaultOpts
	o.W = opts.W
	o.H = opts.H

	dev, err := ssd1306.NewI2C(bus, &o)
	if err != nil {
		return nil, fmt.Errorf("%w at 0x%02X: %v", ErrNotFound, Addr, err)
	}
	return New(dev), nil
}

// New wraps an already initialized drawer.
func New(dev display.Drawer) *Renderer {
	return &Renderer{
		dev:   dev,
		frame: image1bit.NewVerticalLSB(dev.Bounds()),
		face:  basicfont.Face7x13,
	}
}

// Clear blanks the frame.
func (r *Renderer) Clear() {
	for i := range r.frame.Pix {
		r.frame.Pix[i] = 0
	}
}

// DrawText renders text with its baseline starting at pos.
func (r *Renderer) DrawText(pos image.Point, text string) {
	drawer := &font.Drawer{
		Dst:  r.frame,
		Src:  &image.Uniform{image1bit.On},
		Face: r.face,
		Dot:  fixed.P(pos.X, pos.Y),
	}
	drawer.DrawString(text)
}

// TextWidth returns the advance of text in pixels.
func (r *Renderer) TextWidth(text string) int {
	return font.MeasureString(r.face, text).Ceil()
}

// Flush pushes the frame to the panel.
func (r *Renderer) Flush() error {
	if err := r.dev.Draw(r.dev.Bounds(), r.frame, image.Point{}); err != nil {
		return fmt.Errorf("display flush: %w", err)
	}
	return nil
}

// Splash shows lines horizontally centered, one per text row.
func (r *Renderer) Splash(lines ...string) error {
	r.Clear()
	b := r.dev.Bounds()
	top := (b.Dy()-len(lines)*LineHeight)/2 + LineHeight - 2
	for i, line := range lines {
		x := (b.Dx() - r.TextWidth(line)) / 2
		if x < 0 {
			x = 0
		}
		r.DrawText(image.Pt(x, top+i*LineHeight), line)
	}
	return r.Flush()
}

// Halt blanks the panel and turns it off.
func (r *Renderer) Halt() error {
	r.Clear()
	if err := r.Flush(); err != nil {
		return err
	}
	return r.dev.Halt()
}

func (r *Renderer) String() string {
	return r.dev.String()
}
