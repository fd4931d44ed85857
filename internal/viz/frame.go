package viz

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/satsim/internal/satellite"
)

const (
	frameWidth  = 40
	frameHeight = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// FrameRenderer draws snapshots as full-screen ANSI frames, dropping any that
// arrive faster than the frame rate. A non-positive rate draws every frame.
type FrameRenderer struct {
	out       io.Writer
	title     string
	frameRate int
	now       func() time.Time
	lastFrame time.Time
	canvas    *Canvas
	frames    int
	seen      int
}

func NewFrameRenderer(out io.Writer, title string, frameRate int) *FrameRenderer {
	return &FrameRenderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		now:       time.Now,
		canvas:    NewCanvas(frameWidth, frameHeight),
	}
}

func (r *FrameRenderer) Render(snap satellite.Snapshot) {
	r.seen++
	if r.frameRate > 0 {
		now := r.now()
		if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = now
	}

	DrawBody(r.canvas, snap)
	r.frames++

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  tick=%d\n", r.title, r.seen)
	b.WriteString("  " + strings.Repeat("-", frameWidth) + "\n")
	for _, row := range r.canvas.Grid {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", frameWidth) + "\n")
	fmt.Fprintf(&b, "  θ=%.3f rad (%.1f°)\n",
		satellite.NormalizeAngle(snap.Orientation),
		satellite.NormalizeAngle(snap.Orientation)*180/math.Pi)

	io.WriteString(r.out, b.String())
}

// Frames reports how many frames were actually drawn.
func (r *FrameRenderer) Frames() int { return r.frames }

func (r *FrameRenderer) Start() { io.WriteString(r.out, hideCursor) }
func (r *FrameRenderer) Stop()  { io.WriteString(r.out, showCursor) }
