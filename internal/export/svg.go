// Package export renders run data as standalone SVG images.
package export

import (
	"fmt"
	"math"
	"strings"
)

// SeriesToSVG draws values as a polyline, x spaced evenly. It returns ""
// for fewer than two points.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	last := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// PlaneToSVG draws a square grid of magnitudes as a heat map, one cell
// per value, brightest at the maximum. grid is indexed [row][col].
func PlaneToSVG(grid [][]float64, scale float64) string {
	if len(grid) == 0 {
		return ""
	}

	peak := 0.0
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				peak = math.Max(peak, v)
			}
		}
	}
	if peak == 0 {
		peak = 1
	}

	rows, cols := len(grid), len(grid[0])
	width := float64(cols) * scale
	height := float64(rows) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for r, row := range grid {
		for c, v := range row {
			level := v / peak
			if math.IsNaN(level) || math.IsInf(level, 0) {
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ff00ff"/>
`, float64(c)*scale, float64(r)*scale, scale, scale))
				continue
			}
			if level <= 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(c)*scale, float64(r)*scale, scale, scale, heat(level)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// heat maps [0, 1] from dark blue through cyan to white.
func heat(level float64) string {
	level = math.Max(0, math.Min(1, level))
	var r, g, b float64
	if level < 0.5 {
		t := level * 2
		r, g, b = 0, t*255, 96+t*159
	} else {
		t := (level - 0.5) * 2
		r, g, b = t*255, 255, 255
	}
	return fmt.Sprintf("#%02x%02x%02x", int(r), int(g), int(b))
}
