// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"io"
	"sort"
	"strings"
)

// Terminal prints frames as text rows. It stands in for the panel on
// machines without one.
type Terminal struct {
	w     io.Writer
	texts []placedText
}

type placedText struct {
	pos  image.Point
	text string
}

// NewTerminal writes flushed frames to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Clear() {
	t.texts = t.texts[:0]
}

func (t *Terminal) DrawText(pos image.Point, text string) {
	t.texts = append(t.texts, placedText{pos: pos, text: text})
}

// Flush prints one line per baseline, texts ordered left to right.
func (t *Terminal) Flush() error {
	sorted := append([]placedText(nil), t.texts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].pos.Y != sorted[j].pos.Y {
			return sorted[i].pos.Y < sorted[j].pos.Y
		}
		return sorted[i].pos.X < sorted[j].pos.X
	})

	var b strings.Builder
	b.WriteString("+----------------+\n")
	for i := 0; i < len(sorted); {
		y := sorted[i].pos.Y
		var row []string
		for ; i < len(sorted) && sorted[i].pos.Y == y; i++ {
			row = append(row, sorted[i].text)
		}
		fmt.Fprintf(&b, "| %s\n", strings.Join(row, " "))
	}
	b.WriteString("+----------------+\n")

	if _, err := io.WriteString(t.w, b.String()); err != nil {
		return fmt.Errorf("terminal flush: %w", err)
	}
	return nil
}

// Halt is a no-op; there is nothing to power down.
func (t *Terminal) Halt() error {
	return nil
}
