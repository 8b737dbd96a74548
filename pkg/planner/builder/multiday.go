package builder

import (
	"sort"
	"time"

	"github.com/xingcheng/xingcheng/pkg/explain"
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/timeline"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// DayRequest 单日规划请求
// 同一行程中每天可以携带不同的天气和交通方式
type DayRequest struct {
	Trip *model.TripContext
}

// TripPlan 多日行程结果
type TripPlan struct {
	Days []*model.DayPlan  `json:"days"`
	Used *model.UsedPOISet `json:"-"`
}

// TripPlanner 多日协调器
// 按日期顺序逐日构建，共享已用 POI 集合保证全程不重复，
// 每日完成后依次执行空档填补与时序校验修复
type TripPlanner struct {
	builder   *DayBuilder
	gapFiller *GapFiller
	healer    *timeline.Healer
	log       *logger.PlannerLogger
}

// NewTripPlanner 创建多日协调器
func NewTripPlanner(filters *filter.Chain, scorer *score.Engine, estimator *travel.Estimator, cfg Config) *TripPlanner {
	return &TripPlanner{
		builder:   NewDayBuilder(filters, scorer, estimator, cfg),
		gapFiller: NewGapFiller(filters, scorer, estimator, cfg),
		healer:    timeline.NewHealer(),
		log:       logger.NewPlannerLogger(),
	}
}

// SetSeed 固定随机种子，便于可复现的规划结果
func (t *TripPlanner) SetSeed(seed int64) {
	t.builder.SetSeed(seed)
}

// Plan 构建完整多日行程
// days 会先按日期升序排序；catalog 为候选 POI 全集
func (t *TripPlanner) Plan(catalog []*model.POI, profile *model.UserProfile, days []DayRequest) *TripPlan {
	ordered := make([]DayRequest, 0, len(days))
	for _, d := range days {
		if d.Trip != nil {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Trip.ParsedDate().Before(ordered[j].Trip.ParsedDate())
	})

	used := model.NewUsedPOISet()
	plan := &TripPlan{Used: used}

	for _, d := range ordered {
		start := time.Now()
		day := t.builder.Build(catalog, profile, d.Trip, used)
		t.gapFiller.Fill(day, catalog, profile, d.Trip, used)
		day.Items, day.Warnings = t.healDay(day.Items)
		// 填补会改变景点数量，按最终条目重算当日徽章
		day.Badges = explain.DayBadges(day, profile)
		plan.Days = append(plan.Days, day)
		t.log.PlanComplete(d.Trip.Date, len(day.Attractions()), time.Since(start))
	}
	return plan
}

// PlanRange 按连续日期区间构建行程，每天沿用同一份行程上下文模板
func (t *TripPlanner) PlanRange(catalog []*model.POI, profile *model.UserProfile, template model.TripContext, startDate string, numDays int) (*TripPlan, error) {
	first, err := timeutil.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	days := make([]DayRequest, 0, numDays)
	for i := 0; i < numDays; i++ {
		trip := &model.TripContext{
			Date:       timeutil.FormatDate(first.AddDate(0, 0, i)),
			Season:     template.Season,
			Weather:    template.Weather,
			RegionType: template.RegionType,
			Transport:  template.Transport,
			HasCar:     template.HasCar,
		}
		days = append(days, DayRequest{Trip: trip})
	}
	return t.Plan(catalog, profile, days), nil
}

// healDay 校验单日时间线并做级联前移修复，返回修复后的条目和残留告警
func (t *TripPlanner) healDay(items []model.ScheduleItem) ([]model.ScheduleItem, []string) {
	overlaps := timeline.Validate(items)
	if len(overlaps) == 0 {
		return items, nil
	}
	healed, residual := t.healer.Heal(items)
	if len(residual) > 0 {
		t.log.ResidualOverlaps(len(residual))
	}
	return healed, timeline.Warnings(residual)
}
