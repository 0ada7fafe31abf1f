package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitExamples(t *testing.T) {
	tests := []struct {
		name  string
		inner Size
		outer Size
		want  Rect
	}{
		{"wide into square", Size{4, 3}, Size{100, 100}, Rect{0, 12, 100, 87}},
		{"tall into square", Size{3, 4}, Size{100, 100}, Rect{12, 0, 87, 100}},
		{"same aspect", Size{2, 2}, Size{10, 10}, Rect{0, 0, 10, 10}},
		{"scaled same aspect", Size{1920, 1080}, Size{1280, 720}, Rect{0, 0, 1280, 720}},
		{"hd into 4:3", Size{1920, 1080}, Size{800, 600}, Rect{0, 75, 800, 525}},
		{"4:3 into hd", Size{640, 480}, Size{1920, 1080}, Rect{240, 0, 1680, 1080}},
		{"truncation", Size{3, 1}, Size{10, 10}, Rect{0, 3, 10, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fit(tt.inner, tt.outer))
		})
	}
}

func TestFitProperties(t *testing.T) {
	for iw := 1; iw <= 24; iw += 3 {
		for ih := 1; ih <= 24; ih += 5 {
			for ow := 1; ow <= 300; ow += 37 {
				for oh := 1; oh <= 300; oh += 41 {
					inner := Size{iw, ih}
					outer := Size{ow, oh}
					r := Fit(inner, outer)

					require.GreaterOrEqual(t, r.Left, 0, "%v in %v", inner, outer)
					require.GreaterOrEqual(t, r.Top, 0, "%v in %v", inner, outer)
					require.LessOrEqual(t, r.Right, ow, "%v in %v", inner, outer)
					require.LessOrEqual(t, r.Bottom, oh, "%v in %v", inner, outer)

					horizontal := r.Left == 0 && r.Right == ow
					vertical := r.Top == 0 && r.Bottom == oh
					ai := float32(iw) / float32(ih)
					ao := float32(ow) / float32(oh)
					switch {
					case ai > ao:
						assert.True(t, horizontal, "%v in %v: %v", inner, outer, r)
						// truncation can at most lose one pixel
						want := float64(ow) / float64(ai)
						assert.LessOrEqual(t, math.Abs(float64(r.Dy())-want), 1.0, "%v in %v: %v", inner, outer, r)
					case ao > ai:
						assert.True(t, vertical, "%v in %v: %v", inner, outer, r)
						want := float64(oh) * float64(ai)
						assert.LessOrEqual(t, math.Abs(float64(r.Dx())-want), 1.0, "%v in %v: %v", inner, outer, r)
					default:
						assert.True(t, horizontal && vertical, "%v in %v: %v", inner, outer, r)
					}
				}
			}
		}
	}
}

func TestQuadWinding(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 30, Bottom: 40}
	assert.Equal(t, [8]float32{10, 20, 10, 40, 30, 20, 30, 40}, QuadPositions(r))
	assert.Equal(t, [8]float32{0, 0, 0, 1, 1, 0, 1, 1}, QuadTexCoords())
}

func TestOrthoCorners(t *testing.T) {
	m := Ortho(200, 100)

	topLeft := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	bottomRight := m.Mul4x1(mgl32.Vec4{200, 100, 0, 1})
	centre := m.Mul4x1(mgl32.Vec4{100, 50, 0, 1})

	assert.InDelta(t, -1, topLeft.X(), 1e-6)
	assert.InDelta(t, 1, topLeft.Y(), 1e-6)
	assert.InDelta(t, 1, bottomRight.X(), 1e-6)
	assert.InDelta(t, -1, bottomRight.Y(), 1e-6)
	assert.InDelta(t, 0, centre.X(), 1e-6)
	assert.InDelta(t, 0, centre.Y(), 1e-6)
}

func TestOrthoIsDeterministic(t *testing.T) {
	a := Ortho(1280, 720)
	b := Ortho(1280, 720)
	for i := range a {
		assert.Equal(t, math.Float32bits(a[i]), math.Float32bits(b[i]))
	}
}
