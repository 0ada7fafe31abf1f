// Package geometry computes where a frame lands inside the window.
package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Size struct {
	W int
	H int
}

func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Rect is in window pixels with a top-left origin.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

func (r Rect) Dx() int { return r.Right - r.Left }

func (r Rect) Dy() int { return r.Bottom - r.Top }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Fit scales inner to the largest size that fits in outer without changing
// its aspect ratio and centres it along the other axis (letterboxing).
// inner must not be empty.
func Fit(inner, outer Size) Rect {
	aspectInner := float32(inner.W) / float32(inner.H)
	aspectOuter := float32(outer.W) / float32(outer.H)

	if aspectInner > aspectOuter {
		// inner is wider than outer
		h := (outer.W * inner.H) / inner.W
		y := (outer.H - h) / 2
		return Rect{Left: 0, Top: y, Right: outer.W, Bottom: y + h}
	} else if aspectOuter > aspectInner {
		w := (outer.H * inner.W) / inner.H
		x := (outer.W - w) / 2
		return Rect{Left: x, Top: 0, Right: x + w, Bottom: outer.H}
	}
	return Rect{Left: 0, Top: 0, Right: outer.W, Bottom: outer.H}
}

// QuadPositions returns the corners of r as x,y pairs in triangle strip
// order: top-left, bottom-left, top-right, bottom-right.
func QuadPositions(r Rect) [8]float32 {
	l, t := float32(r.Left), float32(r.Top)
	rt, b := float32(r.Right), float32(r.Bottom)
	return [8]float32{
		l, t,
		l, b,
		rt, t,
		rt, b,
	}
}

// QuadTexCoords returns the unit square in the same order as QuadPositions.
func QuadTexCoords() [8]float32 {
	return [8]float32{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	}
}

// Ortho maps window pixels, origin top-left, to clip space.
func Ortho(width, height int) mgl32.Mat4 {
	return mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}
