package analysis

import (
	"strings"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

type Point struct{ X, Y float64 }

// Portrait holds orientation (x, radians in [0, 2π)) against measured rate
// (y, rad/tick).
type Portrait struct {
	Points []Point
}

func NewPortrait(steps []episode.Step) *Portrait {
	p := &Portrait{Points: make([]Point, 0, len(steps))}
	for _, s := range steps {
		p.Points = append(p.Points, Point{
			X: satellite.NormalizeAngle(s.Orientation),
			Y: s.Observation.Gyros[0],
		})
	}
	return p
}

// ASCII renders the portrait on a width×height character grid with the zero
// rate axis drawn where visible.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minY <= 0 && minY+rangeY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			grid[row][col] = '─'
		}
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
