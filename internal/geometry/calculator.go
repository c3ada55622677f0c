// Package geometry holds the pure calculators behind sketch measurements:
// distance/angle trigonometry, polygon area and perimeter via the shoelace
// formula, and canvas-pixel to real-unit scaling. No state, no side effects.
package geometry

import (
	"fmt"
	"math"

	"homesketch-data/internal/domain"
)

// Distance returns the Euclidean distance between two canvas points.
func Distance(p1, p2 domain.Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// AngleDegrees returns the direction from p1 to p2 in degrees, normalized to
// [0, 360).
func AngleDegrees(p1, p2 domain.Point) float64 {
	deg := math.Atan2(p2.Y-p1.Y, p2.X-p1.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// PolygonAreaPerimeter computes a simple polygon's area (shoelace formula) and
// perimeter (sum of consecutive edges including the closing edge) over the
// ordered vertex list. Fails closed: fewer than 3 points yields {0, 0} rather
// than an error, so degenerate work-in-progress geometry stays representable.
func PolygonAreaPerimeter(points []domain.Point) (area, perimeter float64) {
	n := len(points)
	if n < 3 {
		return 0, 0
	}
	var cross float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross += points[i].X*points[j].Y - points[j].X*points[i].Y
		perimeter += Distance(points[i], points[j])
	}
	area = math.Abs(cross) / 2
	return area, perimeter
}

// AreaPerimeter computes pixel-space area and perimeter for any of the three
// geometry types. Degenerate inputs (zero radius, collinear polygons) compute
// to 0; an unknown type is a structural error, not an arithmetic one.
func AreaPerimeter(g domain.Geometry) (area, perimeter float64, err error) {
	switch g.Type {
	case domain.GeometryPolygon:
		area, perimeter = PolygonAreaPerimeter(g.Points)
	case domain.GeometryRectangle:
		area = g.Width * g.Height
		perimeter = 2 * (g.Width + g.Height)
	case domain.GeometryCircle:
		area = math.Pi * g.Radius * g.Radius
		perimeter = 2 * math.Pi * g.Radius
	default:
		return 0, 0, fmt.Errorf("geometry: unknown type %q", g.Type)
	}
	return area, perimeter, nil
}

// RealLength converts a canvas-pixel length to real units through the sketch
// scale factor (pixels per unit). A non-positive scale factor passes the value
// through unchanged.
func RealLength(pixels, scaleFactor float64) float64 {
	if scaleFactor <= 0 {
		return pixels
	}
	return pixels / scaleFactor
}

// RealArea converts a canvas-pixel area to real units. Area scales by the
// square of the scale factor.
func RealArea(pixels, scaleFactor float64) float64 {
	if scaleFactor <= 0 {
		return pixels
	}
	return pixels / (scaleFactor * scaleFactor)
}

// AreaResult 无状态面积计算结果（calculate-area API）
type AreaResult struct {
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	Unit        string  `json:"unit"`
	ScaleFactor float64 `json:"scale_factor"`
}

// AreaFromGeometry computes real-unit area and perimeter for a geometry
// payload without touching persisted state: pixel-space computation first,
// then linear measures divide by the scale factor and area by its square.
func AreaFromGeometry(g domain.Geometry, scaleFactor float64, unit string) (*AreaResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	area, perimeter, err := AreaPerimeter(g)
	if err != nil {
		return nil, err
	}
	return &AreaResult{
		Area:        RealArea(area, scaleFactor),
		Perimeter:   RealLength(perimeter, scaleFactor),
		Unit:        unit,
		ScaleFactor: scaleFactor,
	}, nil
}
