package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"homesketch-data/internal/domain"
)

// MemoryStore 内存实现的 Store（单测/DB 未就绪时使用）
// Values are stored by value, so readers get copies and cannot mutate shared
// state. WithinTx serializes transactions and restores a snapshot on error,
// mirroring the rollback semantics of the Postgres store closely enough for
// the service tests to exercise all-or-nothing behavior.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	sketches     map[string]domain.Sketch
	rooms        map[string]domain.Room
	walls        map[string]domain.Wall
	fixtures     map[string]domain.Fixture
	measurements map[string]domain.Measurement
}

// NewMemoryStore 创建内存 Store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sketches:     map[string]domain.Sketch{},
		rooms:        map[string]domain.Room{},
		walls:        map[string]domain.Wall{},
		fixtures:     map[string]domain.Fixture{},
		measurements: map[string]domain.Measurement{},
	}
}

var _ Store = (*MemoryStore)(nil)

// Repos returns repositories bound to the shared maps.
func (s *MemoryStore) Repos() Repos {
	return Repos{
		Sketches:     &memorySketches{s},
		Rooms:        &memoryRooms{s},
		Walls:        &memoryWalls{s},
		Fixtures:     &memoryFixtures{s},
		Measurements: &memoryMeasurements{s},
	}
}

type memorySnapshot struct {
	sketches     map[string]domain.Sketch
	rooms        map[string]domain.Room
	walls        map[string]domain.Wall
	fixtures     map[string]domain.Fixture
	measurements map[string]domain.Measurement
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memorySnapshot{
		sketches:     make(map[string]domain.Sketch, len(s.sketches)),
		rooms:        make(map[string]domain.Room, len(s.rooms)),
		walls:        make(map[string]domain.Wall, len(s.walls)),
		fixtures:     make(map[string]domain.Fixture, len(s.fixtures)),
		measurements: make(map[string]domain.Measurement, len(s.measurements)),
	}
	for k, v := range s.sketches {
		snap.sketches[k] = v
	}
	for k, v := range s.rooms {
		v.Geometry.Points = append([]domain.Point(nil), v.Geometry.Points...)
		snap.rooms[k] = v
	}
	for k, v := range s.walls {
		snap.walls[k] = v
	}
	for k, v := range s.fixtures {
		snap.fixtures[k] = v
	}
	for k, v := range s.measurements {
		snap.measurements[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sketches = snap.sketches
	s.rooms = snap.rooms
	s.walls = snap.walls
	s.fixtures = snap.fixtures
	s.measurements = snap.measurements
}

// WithinTx runs fn against the shared maps, restoring the pre-transaction
// snapshot if fn fails.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func nowTime() sql.NullTime {
	return sql.NullTime{Time: time.Now(), Valid: true}
}

// ============================================
// Sketches
// ============================================

type memorySketches struct{ s *MemoryStore }

func (r *memorySketches) Create(_ context.Context, sketch *domain.Sketch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.sketches[sketch.SketchID]; exists {
		return fmt.Errorf("sketch %s already exists", sketch.SketchID)
	}
	sketch.CreatedAt = nowTime()
	sketch.UpdatedAt = sketch.CreatedAt
	r.s.sketches[sketch.SketchID] = *sketch
	return nil
}

func (r *memorySketches) Get(_ context.Context, sketchID string) (*domain.Sketch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sketches[sketchID]
	if !ok {
		return nil, fmt.Errorf("sketch %s: %w", sketchID, ErrNotFound)
	}
	return &s, nil
}

func (r *memorySketches) List(_ context.Context, filters SketchFilters, page, size int) ([]*domain.Sketch, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}
	matched := []*domain.Sketch{}
	for _, s := range r.s.sketches {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		if filters.IsTemplate != nil && s.IsTemplate != *filters.IsTemplate {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filters.Search)) {
			continue
		}
		s := s
		matched = append(matched, &s)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Time.Equal(matched[j].UpdatedAt.Time) {
			return matched[i].UpdatedAt.Time.After(matched[j].UpdatedAt.Time)
		}
		return matched[i].SketchID < matched[j].SketchID
	})
	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []*domain.Sketch{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memorySketches) Update(_ context.Context, sketch *domain.Sketch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.sketches[sketch.SketchID]
	if !ok {
		return fmt.Errorf("sketch %s: %w", sketch.SketchID, ErrNotFound)
	}
	next := *sketch
	// Totals travel through UpdateTotals only
	next.TotalArea = prev.TotalArea
	next.TotalPerimeter = prev.TotalPerimeter
	next.TotalWallArea = prev.TotalWallArea
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = nowTime()
	r.s.sketches[sketch.SketchID] = next
	return nil
}

func (r *memorySketches) UpdateTotals(_ context.Context, sketchID string, totals domain.Totals) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sketches[sketchID]
	if !ok {
		return fmt.Errorf("sketch %s: %w", sketchID, ErrNotFound)
	}
	s.TotalArea = totals.TotalArea
	s.TotalPerimeter = totals.TotalPerimeter
	s.TotalWallArea = totals.TotalWallArea
	s.UpdatedAt = nowTime()
	r.s.sketches[sketchID] = s
	return nil
}

func (r *memorySketches) UpdateStatus(_ context.Context, sketchID string, status domain.SketchStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sketches[sketchID]
	if !ok {
		return fmt.Errorf("sketch %s: %w", sketchID, ErrNotFound)
	}
	s.Status = status
	s.UpdatedAt = nowTime()
	r.s.sketches[sketchID] = s
	return nil
}

func (r *memorySketches) Delete(_ context.Context, sketchID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sketches[sketchID]; !ok {
		return fmt.Errorf("sketch %s: %w", sketchID, ErrNotFound)
	}
	delete(r.s.sketches, sketchID)
	return nil
}

// ============================================
// Rooms
// ============================================

type memoryRooms struct{ s *MemoryStore }

func (r *memoryRooms) Create(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.rooms[room.RoomID]; exists {
		return fmt.Errorf("room %s already exists", room.RoomID)
	}
	room.CreatedAt = nowTime()
	room.UpdatedAt = room.CreatedAt
	r.s.rooms[room.RoomID] = *room
	return nil
}

func (r *memoryRooms) Get(_ context.Context, roomID string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	return &room, nil
}

func (r *memoryRooms) ListBySketch(_ context.Context, sketchID string) ([]*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Room{}
	for _, room := range r.s.rooms {
		if room.SketchID != sketchID {
			continue
		}
		room := room
		out = append(out, &room)
	}
	sortByOrder(out, func(room *domain.Room) (int, time.Time, string) {
		return room.SortOrder, room.CreatedAt.Time, room.RoomID
	})
	return out, nil
}

func (r *memoryRooms) Update(_ context.Context, room *domain.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.rooms[room.RoomID]
	if !ok {
		return fmt.Errorf("room %s: %w", room.RoomID, ErrNotFound)
	}
	next := *room
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = nowTime()
	r.s.rooms[room.RoomID] = next
	return nil
}

func (r *memoryRooms) UpdateSortOrder(_ context.Context, roomID string, sortOrder int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	room.SortOrder = sortOrder
	room.UpdatedAt = nowTime()
	r.s.rooms[roomID] = room
	return nil
}

func (r *memoryRooms) Delete(_ context.Context, roomID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[roomID]; !ok {
		return fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	delete(r.s.rooms, roomID)
	return nil
}

func (r *memoryRooms) DeleteBySketch(_ context.Context, sketchID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, room := range r.s.rooms {
		if room.SketchID == sketchID {
			delete(r.s.rooms, id)
		}
	}
	return nil
}

// ============================================
// Walls
// ============================================

type memoryWalls struct{ s *MemoryStore }

func (r *memoryWalls) Create(_ context.Context, wall *domain.Wall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.walls[wall.WallID]; exists {
		return fmt.Errorf("wall %s already exists", wall.WallID)
	}
	wall.CreatedAt = nowTime()
	wall.UpdatedAt = wall.CreatedAt
	r.s.walls[wall.WallID] = *wall
	return nil
}

func (r *memoryWalls) Get(_ context.Context, wallID string) (*domain.Wall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.walls[wallID]
	if !ok {
		return nil, fmt.Errorf("wall %s: %w", wallID, ErrNotFound)
	}
	return &w, nil
}

func (r *memoryWalls) ListByRoom(_ context.Context, roomID string) ([]*domain.Wall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Wall{}
	for _, w := range r.s.walls {
		if w.RoomID != roomID {
			continue
		}
		w := w
		out = append(out, &w)
	}
	sortByOrder(out, func(w *domain.Wall) (int, time.Time, string) {
		return w.SortOrder, w.CreatedAt.Time, w.WallID
	})
	return out, nil
}

func (r *memoryWalls) ListBySketch(_ context.Context, sketchID string) ([]*domain.Wall, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roomIDs := map[string]bool{}
	for id, room := range r.s.rooms {
		if room.SketchID == sketchID {
			roomIDs[id] = true
		}
	}
	out := []*domain.Wall{}
	for _, w := range r.s.walls {
		if !roomIDs[w.RoomID] {
			continue
		}
		w := w
		out = append(out, &w)
	}
	sortByOrder(out, func(w *domain.Wall) (int, time.Time, string) {
		return w.SortOrder, w.CreatedAt.Time, w.WallID
	})
	return out, nil
}

func (r *memoryWalls) Update(_ context.Context, wall *domain.Wall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.walls[wall.WallID]
	if !ok {
		return fmt.Errorf("wall %s: %w", wall.WallID, ErrNotFound)
	}
	next := *wall
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = nowTime()
	r.s.walls[wall.WallID] = next
	return nil
}

func (r *memoryWalls) UpdateSortOrder(_ context.Context, wallID string, sortOrder int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.walls[wallID]
	if !ok {
		return fmt.Errorf("wall %s: %w", wallID, ErrNotFound)
	}
	w.SortOrder = sortOrder
	w.UpdatedAt = nowTime()
	r.s.walls[wallID] = w
	return nil
}

func (r *memoryWalls) Delete(_ context.Context, wallID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.walls[wallID]; !ok {
		return fmt.Errorf("wall %s: %w", wallID, ErrNotFound)
	}
	delete(r.s.walls, wallID)
	return nil
}

func (r *memoryWalls) DeleteByRoom(_ context.Context, roomID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, w := range r.s.walls {
		if w.RoomID == roomID {
			delete(r.s.walls, id)
		}
	}
	return nil
}

// ============================================
// Fixtures
// ============================================

type memoryFixtures struct{ s *MemoryStore }

func (r *memoryFixtures) Create(_ context.Context, fixture *domain.Fixture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.fixtures[fixture.FixtureID]; exists {
		return fmt.Errorf("fixture %s already exists", fixture.FixtureID)
	}
	fixture.CreatedAt = nowTime()
	fixture.UpdatedAt = fixture.CreatedAt
	r.s.fixtures[fixture.FixtureID] = *fixture
	return nil
}

func (r *memoryFixtures) Get(_ context.Context, fixtureID string) (*domain.Fixture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fixtures[fixtureID]
	if !ok {
		return nil, fmt.Errorf("fixture %s: %w", fixtureID, ErrNotFound)
	}
	return &f, nil
}

func (r *memoryFixtures) ListByRoom(_ context.Context, roomID string) ([]*domain.Fixture, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Fixture{}
	for _, f := range r.s.fixtures {
		if f.RoomID != roomID {
			continue
		}
		f := f
		out = append(out, &f)
	}
	sortByOrder(out, func(f *domain.Fixture) (int, time.Time, string) {
		return f.SortOrder, f.CreatedAt.Time, f.FixtureID
	})
	return out, nil
}

func (r *memoryFixtures) Update(_ context.Context, fixture *domain.Fixture) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.fixtures[fixture.FixtureID]
	if !ok {
		return fmt.Errorf("fixture %s: %w", fixture.FixtureID, ErrNotFound)
	}
	next := *fixture
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = nowTime()
	r.s.fixtures[fixture.FixtureID] = next
	return nil
}

func (r *memoryFixtures) UpdateSortOrder(_ context.Context, fixtureID string, sortOrder int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("fixture %s: %w", fixtureID, ErrNotFound)
	}
	f.SortOrder = sortOrder
	f.UpdatedAt = nowTime()
	r.s.fixtures[fixtureID] = f
	return nil
}

func (r *memoryFixtures) Delete(_ context.Context, fixtureID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fixtures[fixtureID]; !ok {
		return fmt.Errorf("fixture %s: %w", fixtureID, ErrNotFound)
	}
	delete(r.s.fixtures, fixtureID)
	return nil
}

func (r *memoryFixtures) DeleteByRoom(_ context.Context, roomID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.fixtures {
		if f.RoomID == roomID {
			delete(r.s.fixtures, id)
		}
	}
	return nil
}

func (r *memoryFixtures) DeleteByWall(_ context.Context, wallID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.fixtures {
		if f.WallID.Valid && f.WallID.String == wallID {
			delete(r.s.fixtures, id)
		}
	}
	return nil
}

// ============================================
// Measurements
// ============================================

type memoryMeasurements struct{ s *MemoryStore }

func (r *memoryMeasurements) Create(_ context.Context, m *domain.Measurement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.measurements[m.MeasurementID]; exists {
		return fmt.Errorf("measurement %s already exists", m.MeasurementID)
	}
	m.CreatedAt = nowTime()
	m.UpdatedAt = m.CreatedAt
	r.s.measurements[m.MeasurementID] = *m
	return nil
}

func (r *memoryMeasurements) Get(_ context.Context, measurementID string) (*domain.Measurement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.measurements[measurementID]
	if !ok {
		return nil, fmt.Errorf("measurement %s: %w", measurementID, ErrNotFound)
	}
	return &m, nil
}

func (r *memoryMeasurements) ListBySketch(_ context.Context, sketchID string) ([]*domain.Measurement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Measurement{}
	for _, m := range r.s.measurements {
		if m.SketchID != sketchID {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sortByOrder(out, func(m *domain.Measurement) (int, time.Time, string) {
		return 0, m.CreatedAt.Time, m.MeasurementID
	})
	return out, nil
}

func (r *memoryMeasurements) Update(_ context.Context, m *domain.Measurement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.measurements[m.MeasurementID]
	if !ok {
		return fmt.Errorf("measurement %s: %w", m.MeasurementID, ErrNotFound)
	}
	next := *m
	next.SketchID = prev.SketchID
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = nowTime()
	r.s.measurements[m.MeasurementID] = next
	return nil
}

func (r *memoryMeasurements) Delete(_ context.Context, measurementID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.measurements[measurementID]; !ok {
		return fmt.Errorf("measurement %s: %w", measurementID, ErrNotFound)
	}
	delete(r.s.measurements, measurementID)
	return nil
}

func (r *memoryMeasurements) DeleteBySketch(_ context.Context, sketchID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.measurements {
		if m.SketchID == sketchID {
			delete(r.s.measurements, id)
		}
	}
	return nil
}

// sortByOrder 按 (sort_order, created_at, id) 稳定排序
func sortByOrder[T any](items []T, key func(T) (int, time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		oi, ti, idi := key(items[i])
		oj, tj, idj := key(items[j])
		if oi != oj {
			return oi < oj
		}
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}
