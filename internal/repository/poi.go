// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xingcheng/xingcheng/pkg/model"
)

// POIRepository 景点仓储
type POIRepository struct {
	db DB
}

// NewPOIRepository 创建景点仓储
func NewPOIRepository(db DB) *POIRepository {
	return &POIRepository{db: db}
}

// Create 创建景点
func (r *POIRepository) Create(ctx context.Context, poi *model.POI) error {
	if poi.ID == uuid.Nil {
		poi.ID = uuid.New()
	}
	now := time.Now()
	poi.CreatedAt = now
	poi.UpdatedAt = now

	locJSON, _ := json.Marshal(poi.Location)
	weeklyJSON, _ := json.Marshal(poi.WeeklyHours)
	seasonalJSON, _ := json.Marshal(poi.SeasonalHours)
	pricingJSON, _ := json.Marshal(poi.Pricing)
	parkingJSON, _ := json.Marshal(poi.Parking)

	query := `
		INSERT INTO pois (
			id, name, description, category, location, region,
			duration_min, duration_max, weekly_hours, seasonal_hours, seasons,
			pricing, target_groups, intensity, space, weather_dependency,
			recommended_time, crowd_level, priority, tags, parking,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.ExecContext(ctx, query,
		poi.ID, poi.Name, poi.Description, poi.Category, locJSON, poi.Region,
		poi.DurationMinM, poi.DurationMaxM, weeklyJSON, seasonalJSON, pq.Array(seasonStrings(poi.Seasons)),
		pricingJSON, pq.Array(groupStrings(poi.TargetGroups)), poi.Intensity, poi.Space, poi.WeatherDep,
		poi.Recommended, poi.CrowdLevel, poi.Priority, pq.Array(poi.Tags), parkingJSON,
		poi.CreatedAt, poi.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建景点失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取景点
func (r *POIRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.POI, error) {
	query := poiSelectColumns + `
		FROM pois
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanPOI(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新景点
func (r *POIRepository) Update(ctx context.Context, poi *model.POI) error {
	poi.UpdatedAt = time.Now()

	locJSON, _ := json.Marshal(poi.Location)
	weeklyJSON, _ := json.Marshal(poi.WeeklyHours)
	seasonalJSON, _ := json.Marshal(poi.SeasonalHours)
	pricingJSON, _ := json.Marshal(poi.Pricing)
	parkingJSON, _ := json.Marshal(poi.Parking)

	query := `
		UPDATE pois SET
			name = $2, description = $3, category = $4, location = $5, region = $6,
			duration_min = $7, duration_max = $8, weekly_hours = $9, seasonal_hours = $10,
			seasons = $11, pricing = $12, target_groups = $13, intensity = $14,
			space = $15, weather_dependency = $16, recommended_time = $17,
			crowd_level = $18, priority = $19, tags = $20, parking = $21, updated_at = $22
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		poi.ID, poi.Name, poi.Description, poi.Category, locJSON, poi.Region,
		poi.DurationMinM, poi.DurationMaxM, weeklyJSON, seasonalJSON,
		pq.Array(seasonStrings(poi.Seasons)), pricingJSON, pq.Array(groupStrings(poi.TargetGroups)), poi.Intensity,
		poi.Space, poi.WeatherDep, poi.Recommended,
		poi.CrowdLevel, poi.Priority, pq.Array(poi.Tags), parkingJSON, poi.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新景点失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("景点不存在")
	}

	return nil
}

// Delete 软删除景点
func (r *POIRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE pois SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除景点失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("景点不存在")
	}

	return nil
}

// List 查询景点列表
func (r *POIRepository) List(ctx context.Context, filter ListFilter) ([]*model.POI, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("region = $%d", argIndex))
		args = append(args, filter.Region)
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	// 适宜季节：数组为空表示全年适宜
	if filter.Season != "" {
		conditions = append(conditions, fmt.Sprintf("(seasons = '{}' OR $%d = ANY(seasons))", argIndex))
		args = append(args, filter.Season)
		argIndex++
	}

	if filter.Tier != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, filter.Tier)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM pois WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`%s
		FROM pois
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, poiSelectColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var pois []*model.POI
	for rows.Next() {
		poi, err := r.scanPOIRow(rows)
		if err != nil {
			return nil, 0, err
		}
		pois = append(pois, poi)
	}

	return pois, total, nil
}

// ListByRegion 获取地区内全部景点（规划候选目录）
func (r *POIRepository) ListByRegion(ctx context.Context, region string) ([]*model.POI, error) {
	filter := DefaultListFilter().WithRegion(region).WithLimit(10000)
	pois, _, err := r.List(ctx, filter)
	return pois, err
}

// ListByIDs 根据ID列表获取景点
func (r *POIRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.POI, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := poiSelectColumns + `
		FROM pois
		WHERE id = ANY($1) AND deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("查询景点失败: %w", err)
	}
	defer rows.Close()

	var pois []*model.POI
	for rows.Next() {
		poi, err := r.scanPOIRow(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, poi)
	}

	return pois, nil
}

const poiSelectColumns = `
	SELECT id, name, description, category, location, region,
		duration_min, duration_max, weekly_hours, seasonal_hours, seasons,
		pricing, target_groups, intensity, space, weather_dependency,
		recommended_time, crowd_level, priority, tags, parking,
		created_at, updated_at`

// scanPOI 扫描单行景点数据
func (r *POIRepository) scanPOI(row *sql.Row) (*model.POI, error) {
	return scanPOIFrom(row)
}

// scanPOIRow 扫描Rows中的景点数据
func (r *POIRepository) scanPOIRow(rows *sql.Rows) (*model.POI, error) {
	poi, err := scanPOIFrom(rows)
	if err != nil {
		return nil, err
	}
	if poi == nil {
		return nil, fmt.Errorf("扫描景点数据失败: 空行")
	}
	return poi, nil
}

func scanPOIFrom(s Scanner) (*model.POI, error) {
	poi := &model.POI{}
	var locJSON, weeklyJSON, seasonalJSON, pricingJSON, parkingJSON []byte
	var seasons, groups, tags pq.StringArray

	err := s.Scan(
		&poi.ID, &poi.Name, &poi.Description, &poi.Category, &locJSON, &poi.Region,
		&poi.DurationMinM, &poi.DurationMaxM, &weeklyJSON, &seasonalJSON, &seasons,
		&pricingJSON, &groups, &poi.Intensity, &poi.Space, &poi.WeatherDep,
		&poi.Recommended, &poi.CrowdLevel, &poi.Priority, &tags, &parkingJSON,
		&poi.CreatedAt, &poi.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描景点数据失败: %w", err)
	}

	json.Unmarshal(locJSON, &poi.Location)
	json.Unmarshal(weeklyJSON, &poi.WeeklyHours)
	json.Unmarshal(seasonalJSON, &poi.SeasonalHours)
	json.Unmarshal(pricingJSON, &poi.Pricing)
	if len(parkingJSON) > 0 && string(parkingJSON) != "null" {
		json.Unmarshal(parkingJSON, &poi.Parking)
	}

	for _, v := range seasons {
		poi.Seasons = append(poi.Seasons, model.Season(v))
	}
	for _, v := range groups {
		poi.TargetGroups = append(poi.TargetGroups, model.TargetGroup(v))
	}
	poi.Tags = tags

	return poi, nil
}

func seasonStrings(seasons []model.Season) []string {
	out := make([]string, len(seasons))
	for i, s := range seasons {
		out[i] = string(s)
	}
	return out
}

func groupStrings(groups []model.TargetGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}
