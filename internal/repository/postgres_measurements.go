package repository

import (
	"context"
	"database/sql"
	"fmt"

	"homesketch-data/internal/domain"
)

// PostgresMeasurementsRepository 测量项Repository实现
type PostgresMeasurementsRepository struct {
	db DBTX
}

// NewPostgresMeasurementsRepository 创建测量项Repository
func NewPostgresMeasurementsRepository(db DBTX) *PostgresMeasurementsRepository {
	return &PostgresMeasurementsRepository{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepository)(nil)

const measurementColumns = `
	measurement_id::text,
	sketch_id::text,
	type,
	value,
	unit,
	start_x,
	start_y,
	end_x,
	end_y,
	label,
	associated_entity_type,
	associated_entity_id::text,
	created_at,
	updated_at`

func scanMeasurement(row interface{ Scan(...any) error }) (*domain.Measurement, error) {
	var m domain.Measurement
	err := row.Scan(
		&m.MeasurementID,
		&m.SketchID,
		&m.Type,
		&m.Value,
		&m.Unit,
		&m.StartX,
		&m.StartY,
		&m.EndX,
		&m.EndY,
		&m.Label,
		&m.AssociatedEntityType,
		&m.AssociatedEntityID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create 插入测量项
func (r *PostgresMeasurementsRepository) Create(ctx context.Context, m *domain.Measurement) error {
	query := `
		INSERT INTO measurements (
			measurement_id, sketch_id, type, value, unit,
			start_x, start_y, end_x, end_y, label,
			associated_entity_type, associated_entity_id,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::uuid, NOW(), NOW()
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.MeasurementID, m.SketchID, m.Type, m.Value, m.Unit,
		m.StartX, m.StartY, m.EndX, m.EndY, m.Label,
		m.AssociatedEntityType, m.AssociatedEntityID,
	)
	if err != nil {
		return fmt.Errorf("failed to create measurement: %w", err)
	}
	return nil
}

// Get 根据 measurement_id 获取测量项
func (r *PostgresMeasurementsRepository) Get(ctx context.Context, measurementID string) (*domain.Measurement, error) {
	if measurementID == "" {
		return nil, fmt.Errorf("measurement_id is required")
	}
	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE measurement_id = $1::uuid`
	m, err := scanMeasurement(r.db.QueryRowContext(ctx, query, measurementID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("measurement %s: %w", measurementID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}

// ListBySketch 列出草图下全部测量项
func (r *PostgresMeasurementsRepository) ListBySketch(ctx context.Context, sketchID string) ([]*domain.Measurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE sketch_id = $1::uuid ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, sketchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	out := []*domain.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update 更新测量项
func (r *PostgresMeasurementsRepository) Update(ctx context.Context, m *domain.Measurement) error {
	query := `
		UPDATE measurements SET
			type = $2,
			value = $3,
			unit = $4,
			start_x = $5,
			start_y = $6,
			end_x = $7,
			end_y = $8,
			label = $9,
			associated_entity_type = $10,
			associated_entity_id = $11::uuid,
			updated_at = NOW()
		WHERE measurement_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query,
		m.MeasurementID, m.Type, m.Value, m.Unit,
		m.StartX, m.StartY, m.EndX, m.EndY, m.Label,
		m.AssociatedEntityType, m.AssociatedEntityID,
	)
	if err != nil {
		return fmt.Errorf("failed to update measurement: %w", err)
	}
	return requireRowAffected(res, "measurement", m.MeasurementID)
}

// Delete 删除测量项行
func (r *PostgresMeasurementsRepository) Delete(ctx context.Context, measurementID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM measurements WHERE measurement_id = $1::uuid`, measurementID)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return requireRowAffected(res, "measurement", measurementID)
}

// DeleteBySketch 删除草图下全部测量项（sketch 级联用）
func (r *PostgresMeasurementsRepository) DeleteBySketch(ctx context.Context, sketchID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM measurements WHERE sketch_id = $1::uuid`, sketchID)
	if err != nil {
		return fmt.Errorf("failed to delete measurements of sketch: %w", err)
	}
	return nil
}
