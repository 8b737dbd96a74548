// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/pkg/model"
)

// PlanRepository 行程仓储
// 多日行程整体以 JSONB 存储，编辑操作按需加载整条记录
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建行程仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create 保存行程
func (r *PlanRepository) Create(ctx context.Context, trip *model.TripRecord) error {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	profileJSON, _ := json.Marshal(trip.Profile)
	daysJSON, _ := json.Marshal(trip.Days)

	query := `
		INSERT INTO trip_plans (id, name, region, profile, days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Name, trip.Region, profileJSON, daysJSON, trip.CreatedAt, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存行程失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取行程
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TripRecord, error) {
	query := `
		SELECT id, name, region, profile, days, created_at, updated_at
		FROM trip_plans
		WHERE id = $1 AND deleted_at IS NULL
	`

	trip := &model.TripRecord{}
	var profileJSON, daysJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trip.ID, &trip.Name, &trip.Region, &profileJSON, &daysJSON, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描行程数据失败: %w", err)
	}

	json.Unmarshal(profileJSON, &trip.Profile)
	json.Unmarshal(daysJSON, &trip.Days)

	return trip, nil
}

// Update 更新行程内容
func (r *PlanRepository) Update(ctx context.Context, trip *model.TripRecord) error {
	trip.UpdatedAt = time.Now()

	profileJSON, _ := json.Marshal(trip.Profile)
	daysJSON, _ := json.Marshal(trip.Days)

	query := `
		UPDATE trip_plans SET name = $2, region = $3, profile = $4, days = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Name, trip.Region, profileJSON, daysJSON, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新行程失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("行程不存在")
	}

	return nil
}

// Delete 软删除行程
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE trip_plans SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除行程失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("行程不存在")
	}

	return nil
}

// List 查询行程列表
func (r *PlanRepository) List(ctx context.Context, filter ListFilter) ([]*model.TripRecord, int, error) {
	countQuery := `SELECT COUNT(*) FROM trip_plans WHERE deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := `
		SELECT id, name, region, profile, days, created_at, updated_at
		FROM trip_plans
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var trips []*model.TripRecord
	for rows.Next() {
		trip := &model.TripRecord{}
		var profileJSON, daysJSON []byte
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.Region, &profileJSON, &daysJSON, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("扫描行程数据失败: %w", err)
		}
		json.Unmarshal(profileJSON, &trip.Profile)
		json.Unmarshal(daysJSON, &trip.Days)
		trips = append(trips, trip)
	}

	return trips, total, nil
}
