// Package export renders stored runs as standalone SVG files.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/animattach/internal/metrics"
)

var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#8888ff"}

type point struct{ X, Y float64 }

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) add(p point) {
	b.minX = math.Min(b.minX, p.X)
	b.maxX = math.Max(b.maxX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxY = math.Max(b.maxY, p.Y)
}

// pad widens b by 10% per side and never leaves a zero range.
func (b *bounds) pad() {
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

// TrajectorySVG draws every dependent's path seen from above (owner X to
// the right, owner Z up) as a solid line, and its propagated targets as a
// dashed line in the same color. Bodies are drawn in first-seen order.
func TrajectorySVG(samples []metrics.Sample, width, height int) string {
	order := make([]string, 0)
	actual := make(map[string][]point)
	target := make(map[string][]point)
	b := bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}

	for _, s := range samples {
		if _, seen := actual[s.Body]; !seen {
			order = append(order, s.Body)
		}
		a := point{s.Actual.Position.X, s.Actual.Position.Z}
		actual[s.Body] = append(actual[s.Body], a)
		b.add(a)
		if s.Propagated {
			t := point{s.Target.Position.X, s.Target.Position.Z}
			target[s.Body] = append(target[s.Body], t)
			b.add(t)
		}
	}
	if len(order) == 0 {
		return ""
	}
	b.pad()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, body := range order {
		color := palette[i%len(palette)]
		sb.WriteString(fmt.Sprintf("<g id=%q>\n", body))
		writePath(&sb, actual[body], b, width, height, color, "")
		writePath(&sb, target[body], b, width, height, color, ` stroke-dasharray="4 3"`)
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), color, body))
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writePath(sb *strings.Builder, points []point, b bounds, width, height int, color, extra string) {
	if len(points) < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, color, extra))
	for i, p := range points {
		x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
		y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
