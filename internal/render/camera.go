package render

import (
	"math"

	"github.com/san-kum/lorenzlab/internal/dynamo"
)

type Vec3 struct {
	X, Y, Z float64
}

// Camera orients a 3D point cloud before it is flattened onto a canvas.
// Yaw turns about the vertical axis, Pitch tilts toward the viewer.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

func (c *Camera) Rotate(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Project rotates p and drops depth. With zero angles the result is the
// (x, z) plane, the usual side view of the Lorenz butterfly.
func (c *Camera) Project(p Vec3) (float64, float64) {
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	x, y := p.X*cy-p.Y*sy, p.X*sy+p.Y*cy
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	return x, p.Z*cp - y*sp
}

// Attractor draws the trajectory through components (i, j, k) as a
// connected Braille curve, fitted to a w x h character canvas. Segments
// touching a non-finite sample are left out.
func Attractor(states []dynamo.State, i, j, k int, cam *Camera, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if cam == nil {
		cam = NewCamera()
	}

	xs := make([]float64, len(states))
	ys := make([]float64, len(states))
	ok := make([]bool, len(states))
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for n, s := range states {
		if !s.IsValid() || i >= len(s) || j >= len(s) || k >= len(s) {
			continue
		}
		xs[n], ys[n] = cam.Project(Vec3{s[i], s[j], s[k]})
		ok[n] = true
		minX, maxX = math.Min(minX, xs[n]), math.Max(maxX, xs[n])
		minY, maxY = math.Min(minY, ys[n]), math.Max(maxY, ys[n])
	}
	if math.IsInf(minX, 1) {
		return c
	}

	pw, ph := float64(2*w-1), float64(4*h-1)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	scale := math.Min(pw/spanX, ph/spanY) * cam.Zoom
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	px := func(n int) (int, int) {
		return int(math.Round(pw/2 + (xs[n]-cx)*scale)), int(math.Round(ph/2 - (ys[n]-cy)*scale))
	}

	prev := -1
	for n := range states {
		if !ok[n] {
			prev = -1
			continue
		}
		x1, y1 := px(n)
		if prev < 0 {
			c.Set(x1, y1)
		} else {
			x0, y0 := px(prev)
			c.DrawLine(x0, y0, x1, y1)
		}
		prev = n
	}
	return c
}
