package httpapi

import (
	"homesketch-data/internal/domain"
)

// 辅助函数：domain 结构体转 JSON 视图（sql.Null* 为 NULL 时不输出该键）

func sketchToJSON(s *domain.Sketch) map[string]any {
	m := map[string]any{
		"sketch_id":       s.SketchID,
		"name":            s.Name,
		"scale_factor":    s.ScaleFactor,
		"scale_unit":      s.ScaleUnit,
		"canvas_width":    s.CanvasWidth,
		"canvas_height":   s.CanvasHeight,
		"total_area":      s.TotalArea,
		"total_perimeter": s.TotalPerimeter,
		"total_wall_area": s.TotalWallArea,
		"status":          s.Status,
		"version":         s.Version,
		"is_template":     s.IsTemplate,
	}
	if s.Description.Valid {
		m["description"] = s.Description.String
	}
	if s.EstimateID.Valid {
		m["estimate_id"] = s.EstimateID.String
	}
	if s.InvoiceID.Valid {
		m["invoice_id"] = s.InvoiceID.String
	}
	if s.WorkOrderID.Valid {
		m["work_order_id"] = s.WorkOrderID.String
	}
	if s.CreatedAt.Valid {
		m["created_at"] = s.CreatedAt.Time
	}
	if s.UpdatedAt.Valid {
		m["updated_at"] = s.UpdatedAt.Time
	}
	return m
}

func sketchesToJSON(items []*domain.Sketch) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, s := range items {
		out = append(out, sketchToJSON(s))
	}
	return out
}

func roomToJSON(r *domain.Room) map[string]any {
	m := map[string]any{
		"room_id":        r.RoomID,
		"sketch_id":      r.SketchID,
		"name":           r.Name,
		"geometry":       r.Geometry,
		"area":           r.Area,
		"perimeter":      r.Perimeter,
		"ceiling_height": r.CeilingHeight,
		"estimated_cost": r.EstimatedCost,
		"sort_order":     r.SortOrder,
	}
	if r.CostCategory.Valid {
		m["cost_category"] = r.CostCategory.String
	}
	if r.CreatedAt.Valid {
		m["created_at"] = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		m["updated_at"] = r.UpdatedAt.Time
	}
	return m
}

func roomsToJSON(items []*domain.Room) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, r := range items {
		out = append(out, roomToJSON(r))
	}
	return out
}

func wallToJSON(w *domain.Wall) map[string]any {
	m := map[string]any{
		"wall_id":          w.WallID,
		"room_id":          w.RoomID,
		"start_point":      domain.Point{X: w.StartX, Y: w.StartY},
		"end_point":        domain.Point{X: w.EndX, Y: w.EndY},
		"length":           w.Length,
		"height":           w.Height,
		"thickness":        w.Thickness,
		"angle":            w.Angle,
		"area":             w.Area,
		"cost_per_sq_unit": w.CostPerSqUnit,
		"estimated_cost":   w.EstimatedCost,
		"sort_order":       w.SortOrder,
	}
	if w.CreatedAt.Valid {
		m["created_at"] = w.CreatedAt.Time
	}
	if w.UpdatedAt.Valid {
		m["updated_at"] = w.UpdatedAt.Time
	}
	return m
}

func wallsToJSON(items []*domain.Wall) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, w := range items {
		out = append(out, wallToJSON(w))
	}
	return out
}

func fixtureToJSON(f *domain.Fixture) map[string]any {
	m := map[string]any{
		"fixture_id":        f.FixtureID,
		"room_id":           f.RoomID,
		"name":              f.Name,
		"fixture_type":      f.FixtureType,
		"x":                 f.X,
		"y":                 f.Y,
		"width":             f.Width,
		"height":            f.Height,
		"depth":             f.Depth,
		"unit_cost":         f.UnitCost,
		"installation_cost": f.InstallationCost,
		"total_cost":        f.TotalCost,
		"sort_order":        f.SortOrder,
	}
	if f.WallID.Valid {
		m["wall_id"] = f.WallID.String
	}
	if f.CreatedAt.Valid {
		m["created_at"] = f.CreatedAt.Time
	}
	if f.UpdatedAt.Valid {
		m["updated_at"] = f.UpdatedAt.Time
	}
	return m
}

func fixturesToJSON(items []*domain.Fixture) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, f := range items {
		out = append(out, fixtureToJSON(f))
	}
	return out
}

func measurementToJSON(m *domain.Measurement) map[string]any {
	out := map[string]any{
		"measurement_id": m.MeasurementID,
		"sketch_id":      m.SketchID,
		"type":           m.Type,
		"value":          m.Value,
		"unit":           m.Unit,
	}
	if m.StartX.Valid && m.StartY.Valid {
		out["start_point"] = domain.Point{X: m.StartX.Float64, Y: m.StartY.Float64}
	}
	if m.EndX.Valid && m.EndY.Valid {
		out["end_point"] = domain.Point{X: m.EndX.Float64, Y: m.EndY.Float64}
	}
	if m.Label.Valid {
		out["label"] = m.Label.String
	}
	if m.AssociatedEntityType.Valid {
		out["associated_entity_type"] = m.AssociatedEntityType.String
	}
	if m.AssociatedEntityID.Valid {
		out["associated_entity_id"] = m.AssociatedEntityID.String
	}
	if m.CreatedAt.Valid {
		out["created_at"] = m.CreatedAt.Time
	}
	if m.UpdatedAt.Valid {
		out["updated_at"] = m.UpdatedAt.Time
	}
	return out
}

func measurementsToJSON(items []*domain.Measurement) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, m := range items {
		out = append(out, measurementToJSON(m))
	}
	return out
}
