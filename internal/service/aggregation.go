package service

import (
	"context"
	"fmt"

	"homesketch-data/internal/domain"
	"homesketch-data/internal/repository"
)

// ComputeSketchTotals sums the derived totals over the current child set:
// total_area and total_perimeter over rooms, total_wall_area over walls.
// Pure, so the arithmetic is testable without a store; idempotent by
// construction.
func ComputeSketchTotals(rooms []*domain.Room, walls []*domain.Wall) domain.Totals {
	var t domain.Totals
	for _, room := range rooms {
		t.TotalArea += room.Area
		t.TotalPerimeter += room.Perimeter
	}
	for _, wall := range walls {
		t.TotalWallArea += wall.Area
	}
	return t
}

// recomputeSketchTotals reloads the sketch's rooms and walls, recomputes the
// three totals and persists them. Runs against the transaction-bound repos of
// the triggering mutation, after the child writes: the propagation order is
// always leaf → room → sketch. Any lookup failure fails the whole operation:
// a partially-summed total is never persisted.
func recomputeSketchTotals(ctx context.Context, r repository.Repos, sketchID string) error {
	rooms, err := r.Rooms.ListBySketch(ctx, sketchID)
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}
	walls, err := r.Walls.ListBySketch(ctx, sketchID)
	if err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}
	totals := ComputeSketchTotals(rooms, walls)
	if err := r.Sketches.UpdateTotals(ctx, sketchID, totals); err != nil {
		return fmt.Errorf("aggregation: %w", err)
	}
	return nil
}
