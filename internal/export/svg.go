// Package export renders stored runs as SVG.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/satsim/internal/analysis"
	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/viz"
)

const (
	background  = "#0a0a0a"
	traceColor  = "#00ccff"
	outageColor = "#ffaa00"
	dotColor    = "#00ff00"
)

// WriteCanvasSVG draws every lit Braille dot of c as a circle.
func WriteCanvasSVG(w io.Writer, c *viz.Canvas, scale float64) error {
	cw, ch := c.PixelSize()
	width, height := float64(cw)*scale, float64(ch)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, dotColor)

	r := scale * 0.4
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if c.Get(x, y) {
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// WriteTraceSVG plots the newest gyro reading against tick, shading the
// stretches where no attitude reading was available.
func WriteTraceSVG(w io.Writer, steps []episode.Step, width, height int) error {
	if len(steps) < 2 {
		return fmt.Errorf("export: need at least 2 steps, got %d", len(steps))
	}

	minY, maxY := steps[0].Observation.Gyros[0], steps[0].Observation.Gyros[0]
	for _, s := range steps {
		minY = min(minY, s.Observation.Gyros[0])
		maxY = max(maxY, s.Observation.Gyros[0])
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	first := float64(steps[0].Index)
	spanX := float64(steps[len(steps)-1].Index) - first
	if spanX == 0 {
		spanX = 1
	}
	px := func(index int) float64 { return (float64(index) - first) / spanX * float64(width) }
	py := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	fmt.Fprintf(bw, "<g fill=\"%s\" fill-opacity=\"0.15\">\n", outageColor)
	tick := float64(width) / spanX
	for _, o := range analysis.Outages(steps) {
		x := px(o.Start) - tick/2
		fmt.Fprintf(bw, "<rect class=\"outage\" x=\"%.1f\" y=\"0\" width=\"%.1f\" height=\"%d\"/>\n",
			max(x, 0), float64(o.Length)*tick, height)
	}
	bw.WriteString("</g>\n")

	if minY <= 0 && minY+rangeY >= 0 {
		fmt.Fprintf(bw, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444466\"/>\n", py(0), width, py(0))
	}

	fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, traceColor)
	for i, s := range steps {
		if i > 0 {
			bw.WriteString(" L")
		}
		fmt.Fprintf(bw, "%.1f,%.1f", px(s.Index), py(s.Observation.Gyros[0]))
	}
	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}
