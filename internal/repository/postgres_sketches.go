package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"homesketch-data/internal/domain"
)

// PostgresSketchesRepository 草图Repository实现
type PostgresSketchesRepository struct {
	db DBTX
}

// NewPostgresSketchesRepository 创建草图Repository
func NewPostgresSketchesRepository(db DBTX) *PostgresSketchesRepository {
	return &PostgresSketchesRepository{db: db}
}

// 确保实现了接口
var _ SketchesRepository = (*PostgresSketchesRepository)(nil)

const sketchColumns = `
	sketch_id::text,
	name,
	description,
	scale_factor,
	scale_unit,
	canvas_width,
	canvas_height,
	total_area,
	total_perimeter,
	total_wall_area,
	status,
	version,
	estimate_id::text,
	invoice_id::text,
	work_order_id::text,
	is_template,
	created_at,
	updated_at`

func scanSketch(row interface{ Scan(...any) error }) (*domain.Sketch, error) {
	var s domain.Sketch
	err := row.Scan(
		&s.SketchID,
		&s.Name,
		&s.Description,
		&s.ScaleFactor,
		&s.ScaleUnit,
		&s.CanvasWidth,
		&s.CanvasHeight,
		&s.TotalArea,
		&s.TotalPerimeter,
		&s.TotalWallArea,
		&s.Status,
		&s.Version,
		&s.EstimateID,
		&s.InvoiceID,
		&s.WorkOrderID,
		&s.IsTemplate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create 插入草图（ID 由调用方生成）
func (r *PostgresSketchesRepository) Create(ctx context.Context, sketch *domain.Sketch) error {
	query := `
		INSERT INTO sketches (
			sketch_id, name, description, scale_factor, scale_unit,
			canvas_width, canvas_height, total_area, total_perimeter, total_wall_area,
			status, version, estimate_id, invoice_id, work_order_id, is_template,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13::uuid, $14::uuid, $15::uuid, $16, NOW(), NOW()
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		sketch.SketchID, sketch.Name, sketch.Description,
		sketch.ScaleFactor, sketch.ScaleUnit,
		sketch.CanvasWidth, sketch.CanvasHeight,
		sketch.TotalArea, sketch.TotalPerimeter, sketch.TotalWallArea,
		sketch.Status, sketch.Version,
		sketch.EstimateID, sketch.InvoiceID, sketch.WorkOrderID,
		sketch.IsTemplate,
	)
	if err != nil {
		return fmt.Errorf("failed to create sketch: %w", err)
	}
	return nil
}

// Get 根据 sketch_id 获取草图
func (r *PostgresSketchesRepository) Get(ctx context.Context, sketchID string) (*domain.Sketch, error) {
	if sketchID == "" {
		return nil, fmt.Errorf("sketch_id is required")
	}
	query := `SELECT ` + sketchColumns + ` FROM sketches WHERE sketch_id = $1::uuid`
	s, err := scanSketch(r.db.QueryRowContext(ctx, query, sketchID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sketch %s: %w", sketchID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sketch: %w", err)
	}
	return s, nil
}

// List 查询草图列表（支持分页、状态过滤、名称搜索）
func (r *PostgresSketchesRepository) List(ctx context.Context, filters SketchFilters, page, size int) ([]*domain.Sketch, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}

	where := []string{"TRUE"}
	args := []any{}
	argIdx := 1
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filters.Status)
		argIdx++
	}
	if filters.IsTemplate != nil {
		where = append(where, fmt.Sprintf("is_template = $%d", argIdx))
		args = append(args, *filters.IsTemplate)
		argIdx++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM sketches WHERE ` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sketches: %w", err)
	}

	query := `SELECT ` + sketchColumns + `
		FROM sketches
		WHERE ` + whereClause + `
		ORDER BY updated_at DESC
		LIMIT $` + fmt.Sprintf("%d", argIdx) + ` OFFSET $` + fmt.Sprintf("%d", argIdx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sketches: %w", err)
	}
	defer rows.Close()

	out := []*domain.Sketch{}
	for rows.Next() {
		s, err := scanSketch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sketch: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Update 更新草图（全字段；totals 由 UpdateTotals 单独维护，但这里也一并写入，
// 便于 duplicate 等整体拷贝场景）
func (r *PostgresSketchesRepository) Update(ctx context.Context, sketch *domain.Sketch) error {
	query := `
		UPDATE sketches SET
			name = $2,
			description = $3,
			scale_factor = $4,
			scale_unit = $5,
			canvas_width = $6,
			canvas_height = $7,
			status = $8,
			version = $9,
			estimate_id = $10::uuid,
			invoice_id = $11::uuid,
			work_order_id = $12::uuid,
			is_template = $13,
			updated_at = NOW()
		WHERE sketch_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query,
		sketch.SketchID, sketch.Name, sketch.Description,
		sketch.ScaleFactor, sketch.ScaleUnit,
		sketch.CanvasWidth, sketch.CanvasHeight,
		sketch.Status, sketch.Version,
		sketch.EstimateID, sketch.InvoiceID, sketch.WorkOrderID,
		sketch.IsTemplate,
	)
	if err != nil {
		return fmt.Errorf("failed to update sketch: %w", err)
	}
	return requireRowAffected(res, "sketch", sketch.SketchID)
}

// UpdateTotals 仅更新三项派生汇总值
func (r *PostgresSketchesRepository) UpdateTotals(ctx context.Context, sketchID string, totals domain.Totals) error {
	query := `
		UPDATE sketches SET
			total_area = $2,
			total_perimeter = $3,
			total_wall_area = $4,
			updated_at = NOW()
		WHERE sketch_id = $1::uuid
	`
	res, err := r.db.ExecContext(ctx, query, sketchID,
		totals.TotalArea, totals.TotalPerimeter, totals.TotalWallArea)
	if err != nil {
		return fmt.Errorf("failed to update sketch totals: %w", err)
	}
	return requireRowAffected(res, "sketch", sketchID)
}

// UpdateStatus 仅更新生命周期状态
func (r *PostgresSketchesRepository) UpdateStatus(ctx context.Context, sketchID string, status domain.SketchStatus) error {
	query := `UPDATE sketches SET status = $2, updated_at = NOW() WHERE sketch_id = $1::uuid`
	res, err := r.db.ExecContext(ctx, query, sketchID, status)
	if err != nil {
		return fmt.Errorf("failed to update sketch status: %w", err)
	}
	return requireRowAffected(res, "sketch", sketchID)
}

// Delete 删除草图行（子实体级联由 service 层显式执行）
func (r *PostgresSketchesRepository) Delete(ctx context.Context, sketchID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sketches WHERE sketch_id = $1::uuid`, sketchID)
	if err != nil {
		return fmt.Errorf("failed to delete sketch: %w", err)
	}
	return requireRowAffected(res, "sketch", sketchID)
}

// requireRowAffected 将"0行受影响"的 UPDATE/DELETE 映射为 ErrNotFound
func requireRowAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}
