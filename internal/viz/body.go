package viz

import (
	"math"

	"github.com/san-kum/satsim/internal/satellite"
)

// Body geometry in metres: length is given in cm, height in mm.
func halfExtents(snap satellite.Snapshot) (halfLen, halfHeight, bound float64) {
	halfLen = snap.Length / 200
	halfHeight = snap.Height / 2000
	bound = snap.Length/100 + 0.002
	return
}

// BodyCorners returns the four corners of the body outline in canvas
// sub-pixels, rotated counter-clockwise by the snapshot orientation.
func BodyCorners(c *Canvas, snap satellite.Snapshot) [][2]int {
	cw, ch := c.PixelSize()
	cx, cy := float64(cw-1)/2, float64(ch-1)/2

	halfLen, halfHeight, bound := halfExtents(snap)
	scale := math.Min(cx, cy) / bound

	// Keep a visible thickness on small canvases.
	hh := math.Max(halfHeight*scale, 1)
	hl := halfLen * scale

	sin, cos := math.Sincos(snap.Orientation)
	local := [4][2]float64{{-hl, -hh}, {-hl, hh}, {hl, hh}, {hl, -hh}}
	pts := make([][2]int, len(local))
	for i, p := range local {
		x := p[0]*cos - p[1]*sin
		y := p[0]*sin + p[1]*cos
		// screen y grows downward
		pts[i] = [2]int{int(math.Round(cx + x)), int(math.Round(cy - y))}
	}
	return pts
}

// DrawBody clears c and draws the satellite outline with a marker on the
// leading (+x) end.
func DrawBody(c *Canvas, snap satellite.Snapshot) {
	c.Clear()
	pts := BodyCorners(c, snap)
	c.DrawPolygon(pts)

	cw, ch := c.PixelSize()
	cx, cy := (cw-1)/2, (ch-1)/2
	nose := [2]int{(pts[2][0] + pts[3][0]) / 2, (pts[2][1] + pts[3][1]) / 2}
	c.DrawLine(cx, cy, nose[0], nose[1])
}
