package domain

import (
	"encoding/json"
	"fmt"
)

// GeometryType 房间几何类型
type GeometryType string

const (
	GeometryPolygon   GeometryType = "polygon"
	GeometryRectangle GeometryType = "rectangle"
	GeometryCircle    GeometryType = "circle"
)

// Point 画布坐标点（像素空间）
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry 房间几何（JSONB 列，tagged union）
// Wire shape: {"type":"polygon","points":[{"x":..,"y":..},...]},
// {"type":"rectangle","x":..,"y":..,"width":..,"height":..} or
// {"type":"circle","x":..,"y":..,"radius":..}.
// Coordinates are authored in canvas-pixel space; conversion to real units
// happens in the geometry package, never here.
type Geometry struct {
	Type   GeometryType `json:"type"`
	Points []Point      `json:"points,omitempty"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	Width  float64      `json:"width,omitempty"`
	Height float64      `json:"height,omitempty"`
	Radius float64      `json:"radius,omitempty"`
}

// MarshalJSON emits only the fields that belong to the geometry type, keeping
// explicit zeros (a rectangle at the canvas origin still carries x and y).
func (g Geometry) MarshalJSON() ([]byte, error) {
	switch g.Type {
	case GeometryPolygon:
		return json.Marshal(struct {
			Type   GeometryType `json:"type"`
			Points []Point      `json:"points"`
		}{g.Type, g.Points})
	case GeometryRectangle:
		return json.Marshal(struct {
			Type   GeometryType `json:"type"`
			X      float64      `json:"x"`
			Y      float64      `json:"y"`
			Width  float64      `json:"width"`
			Height float64      `json:"height"`
		}{g.Type, g.X, g.Y, g.Width, g.Height})
	case GeometryCircle:
		return json.Marshal(struct {
			Type   GeometryType `json:"type"`
			X      float64      `json:"x"`
			Y      float64      `json:"y"`
			Radius float64      `json:"radius"`
		}{g.Type, g.X, g.Y, g.Radius})
	}
	return nil, fmt.Errorf("geometry: unknown type %q", g.Type)
}

// geometryPayload mirrors Geometry with pointer fields so that missing keys can
// be told apart from explicit zeros. Malformed payloads are rejected here, not
// silently coerced to defaults.
type geometryPayload struct {
	Type   *string `json:"type"`
	Points []struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"points"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Radius *float64 `json:"radius"`
}

// UnmarshalJSON validates the payload structurally while decoding: unknown
// type, missing coordinates and undersized polygons are errors. Degenerate
// values (zero radius, collinear points) are accepted; they compute to area 0
// downstream so work-in-progress sketches stay savable.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var p geometryPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == nil {
		return fmt.Errorf("geometry: type is required")
	}
	out := Geometry{Type: GeometryType(*p.Type)}
	switch out.Type {
	case GeometryPolygon:
		if len(p.Points) < 3 {
			return fmt.Errorf("geometry: polygon requires at least 3 points, got %d", len(p.Points))
		}
		out.Points = make([]Point, 0, len(p.Points))
		for i, pt := range p.Points {
			if pt.X == nil || pt.Y == nil {
				return fmt.Errorf("geometry: polygon point %d is missing x or y", i)
			}
			out.Points = append(out.Points, Point{X: *pt.X, Y: *pt.Y})
		}
	case GeometryRectangle:
		if p.X == nil || p.Y == nil || p.Width == nil || p.Height == nil {
			return fmt.Errorf("geometry: rectangle requires numeric x, y, width, height")
		}
		out.X, out.Y, out.Width, out.Height = *p.X, *p.Y, *p.Width, *p.Height
	case GeometryCircle:
		if p.X == nil || p.Y == nil || p.Radius == nil {
			return fmt.Errorf("geometry: circle requires numeric x, y, radius")
		}
		out.X, out.Y, out.Radius = *p.X, *p.Y, *p.Radius
	default:
		return fmt.Errorf("geometry: unknown type %q", *p.Type)
	}
	*g = out
	return nil
}

// Validate re-checks the structural rules for a Geometry built in code (the
// JSON path already enforces them while decoding).
func (g *Geometry) Validate() error {
	switch g.Type {
	case GeometryPolygon:
		if len(g.Points) < 3 {
			return fmt.Errorf("geometry: polygon requires at least 3 points, got %d", len(g.Points))
		}
	case GeometryRectangle, GeometryCircle:
		// All fields are plain numerics once decoded; nothing further to check.
	default:
		return fmt.Errorf("geometry: unknown type %q", g.Type)
	}
	return nil
}
