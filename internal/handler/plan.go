// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/internal/metrics"
	"github.com/xingcheng/xingcheng/internal/repository"
	"github.com/xingcheng/xingcheng/pkg/errors"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/stats"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// POICatalog 景点目录来源
type POICatalog interface {
	ListByRegion(ctx context.Context, region string) ([]*model.POI, error)
}

// PlanStore 行程存取接口
type PlanStore interface {
	Create(ctx context.Context, trip *model.TripRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TripRecord, error)
	Update(ctx context.Context, trip *model.TripRecord) error
	List(ctx context.Context, filter repository.ListFilter) ([]*model.TripRecord, int, error)
}

// PlanHandler 行程规划处理器
type PlanHandler struct {
	pois  POICatalog
	plans PlanStore
	cfg   builder.Config
	seed  int64
}

// NewPlanHandler 创建行程规划处理器
func NewPlanHandler(pois POICatalog, plans PlanStore, cfg builder.Config, seed int64) *PlanHandler {
	return &PlanHandler{pois: pois, plans: plans, cfg: cfg, seed: seed}
}

// GenerateRequest 行程生成请求
type GenerateRequest struct {
	Name    string       `json:"name,omitempty"`
	Region  string       `json:"region"`
	Profile ProfileInput `json:"profile"`
	Days    []DayInput   `json:"days"`

	// POIs 非空时使用内联目录替代地区目录
	POIs []POIInput `json:"pois,omitempty"`
}

// ProfileInput 用户画像输入
type ProfileInput struct {
	TargetGroup    string   `json:"target_group"`
	GroupSize      int      `json:"group_size"`
	ChildrenAge    int      `json:"children_age,omitempty"`
	CrowdTolerance string   `json:"crowd_tolerance,omitempty"`
	Budget         string   `json:"budget,omitempty"`
	Preferences    []string `json:"preferences,omitempty"`
	TravelStyle    string   `json:"travel_style,omitempty"`
}

// DayInput 单日行程输入
type DayInput struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Transport     string  `json:"transport,omitempty"`
	Precipitation bool    `json:"precipitation,omitempty"`
	TempC         float64 `json:"temp_c,omitempty"`
}

// HoursInput 开放时段输入（HH:MM）
type HoursInput struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// POIInput 景点输入
type POIInput struct {
	ID           string                `json:"id,omitempty"`
	Name         string                `json:"name"`
	Category     string                `json:"category,omitempty"`
	Latitude     float64               `json:"latitude"`
	Longitude    float64               `json:"longitude"`
	DurationMin  int                   `json:"duration_min"`
	DurationMax  int                   `json:"duration_max"`
	WeeklyHours  map[string]HoursInput `json:"weekly_hours,omitempty"` // 键为英文小写星期名
	Seasons      []string              `json:"seasons,omitempty"`
	PriceNormal  float64               `json:"price_normal,omitempty"`
	PriceReduced float64               `json:"price_reduced,omitempty"`
	Free         bool                  `json:"free,omitempty"`
	TargetGroups []string              `json:"target_groups,omitempty"`
	Intensity    string                `json:"intensity,omitempty"`
	Space        string                `json:"space,omitempty"`
	WeatherDep   string                `json:"weather_dependency,omitempty"`
	Recommended  string                `json:"recommended_time,omitempty"`
	CrowdLevel   string                `json:"crowd_level,omitempty"`
	Priority     string                `json:"priority"`
	Tags         []string              `json:"tags,omitempty"`
	ParkingName  string                `json:"parking_name,omitempty"`
	ParkingWalk  int                   `json:"parking_walk_minutes,omitempty"`
}

// GenerateResponse 行程生成响应
type GenerateResponse struct {
	Success  bool             `json:"success"`
	PlanID   string           `json:"plan_id,omitempty"`
	Days     []*model.DayPlan `json:"days"`
	Stats    *stats.TripStats `json:"stats"`
	Duration string           `json:"duration"`
}

// Generate 生成多日行程
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if err := validateGenerateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	catalog, appErr := h.loadCatalog(r.Context(), &req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	profile := req.Profile.toModel()
	days := make([]builder.DayRequest, 0, len(req.Days))
	for _, d := range req.Days {
		transport := model.TransportMode(d.Transport)
		if transport == "" {
			transport = model.TransportWalk
		}
		trip, err := model.NewTripContext(d.Date, model.WeatherSnapshot{
			Precipitation: d.Precipitation,
			TempC:         d.TempC,
		}, transport)
		if err != nil {
			respondError(w, errors.InvalidInput("days", "日期格式无效: "+d.Date))
			return
		}
		days = append(days, builder.DayRequest{Trip: trip})
	}

	planner := builder.NewTripPlanner(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), h.cfg)
	if h.seed != 0 {
		planner.SetSeed(h.seed)
	}

	start := time.Now()
	result := planner.Plan(catalog, profile, days)
	elapsed := time.Since(start)
	metrics.RecordPlanGeneration(true, elapsed)

	analyzer := stats.NewAnalyzer(h.cfg.DayStartMin, h.cfg.DayEndMin)
	tripStats := analyzer.AnalyzeTrip(result.Days)
	if tripStats.Days > 0 {
		metrics.SetAttractionsPerDay(float64(tripStats.TotalAttractions) / float64(tripStats.Days))
	}

	resp := GenerateResponse{
		Success:  true,
		Days:     result.Days,
		Stats:    tripStats,
		Duration: elapsed.String(),
	}

	if h.plans != nil {
		record := &model.TripRecord{
			BaseModel: model.NewBaseModel(),
			Name:      req.Name,
			Region:    req.Region,
			Profile:   *profile,
			Days:      result.Days,
		}
		if err := h.plans.Create(r.Context(), record); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存行程失败"))
			return
		}
		resp.PlanID = record.ID.String()
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get 获取已保存行程
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	if h.plans == nil {
		respondError(w, errors.New(errors.CodeNotFound, "未启用行程持久化"))
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		respondError(w, errors.InvalidInput("id", "无效的行程ID格式"))
		return
	}

	record, err := h.plans.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询行程失败"))
		return
	}
	if record == nil {
		respondError(w, errors.New(errors.CodeNotFound, "行程不存在"))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// List 列出已保存行程
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	if h.plans == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"total": 0, "plans": []*model.TripRecord{}})
		return
	}

	records, total, err := h.plans.List(r.Context(), repository.DefaultListFilter())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询行程列表失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"plans": records,
	})
}

// loadCatalog 加载候选景点目录
func (h *PlanHandler) loadCatalog(ctx context.Context, req *GenerateRequest) ([]*model.POI, *errors.AppError) {
	if len(req.POIs) > 0 {
		catalog := make([]*model.POI, 0, len(req.POIs))
		for i := range req.POIs {
			catalog = append(catalog, req.POIs[i].toModel())
		}
		return catalog, nil
	}

	if h.pois == nil {
		return nil, errors.New(errors.CodeEmptyCatalog, "未提供景点目录")
	}
	catalog, err := h.pois.ListByRegion(ctx, req.Region)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载景点目录失败")
	}
	if len(catalog) == 0 {
		return nil, errors.New(errors.CodeEmptyCatalog, "地区内没有可用景点: "+req.Region)
	}
	return catalog, nil
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.Region == "" && len(req.POIs) == 0 {
		ve.Add("region", "地区和内联景点目录至少提供其一")
	}
	if len(req.Days) == 0 {
		ve.Add("days", "行程天数不能为空")
	}
	if req.Profile.GroupSize <= 0 {
		ve.Add("profile.group_size", "出行人数必须大于0")
	}

	for _, d := range req.Days {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			ve.Add("days", "日期格式无效，应为YYYY-MM-DD: "+d.Date)
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// toModel 转换用户画像输入
func (p ProfileInput) toModel() *model.UserProfile {
	return &model.UserProfile{
		TargetGroup:    model.TargetGroup(p.TargetGroup),
		GroupSize:      p.GroupSize,
		ChildrenAge:    p.ChildrenAge,
		CrowdTolerance: model.CrowdLevel(p.CrowdTolerance),
		Budget:         model.BudgetLevel(p.Budget),
		Preferences:    p.Preferences,
		TravelStyle:    model.TravelStyle(p.TravelStyle),
	}
}

// weekdayNames 英文小写星期名映射
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// toModel 转换景点输入
func (p POIInput) toModel() *model.POI {
	poi := &model.POI{
		BaseModel:    model.NewBaseModel(),
		Name:         p.Name,
		Category:     p.Category,
		Location:     model.Location{Latitude: p.Latitude, Longitude: p.Longitude},
		DurationMinM: p.DurationMin,
		DurationMaxM: p.DurationMax,
		Pricing: model.TicketPricing{
			Normal:  p.PriceNormal,
			Reduced: p.PriceReduced,
			Free:    p.Free,
		},
		Intensity:   model.IntensityLevel(p.Intensity),
		Space:       model.SpaceType(p.Space),
		WeatherDep:  model.WeatherDependency(p.WeatherDep),
		Recommended: model.DayPeriod(p.Recommended),
		CrowdLevel:  model.CrowdLevel(p.CrowdLevel),
		Priority:    model.PriorityTier(p.Priority),
		Tags:        p.Tags,
	}

	if id, err := uuid.Parse(p.ID); err == nil {
		poi.ID = id
	}

	if len(p.WeeklyHours) > 0 {
		poi.WeeklyHours = make(model.WeeklyHours)
		for name, hours := range p.WeeklyHours {
			day, ok := weekdayNames[name]
			if !ok {
				continue
			}
			open, err1 := timeutil.ParseClock(hours.Open)
			close, err2 := timeutil.ParseClock(hours.Close)
			if err1 != nil || err2 != nil {
				continue
			}
			poi.WeeklyHours[day] = model.OpenInterval{OpenMin: open, CloseMin: close}
		}
	}

	for _, s := range p.Seasons {
		poi.Seasons = append(poi.Seasons, model.Season(s))
	}
	for _, g := range p.TargetGroups {
		poi.TargetGroups = append(poi.TargetGroups, model.TargetGroup(g))
	}

	if p.ParkingName != "" {
		poi.Parking = &model.ParkingInfo{
			Name:        p.ParkingName,
			Location:    poi.Location,
			WalkMinutes: p.ParkingWalk,
		}
	}

	return poi
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
