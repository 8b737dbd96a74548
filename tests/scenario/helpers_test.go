// Package scenario 提供场景测试
package scenario

import (
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// createPOI 构造全天开放的测试景点，经纬度以市中心为基准偏移
func createPOI(name, category string, tier model.PriorityTier, durationMin int, latOffset float64) *model.POI {
	return &model.POI{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Category:     category,
		Location:     model.Location{Latitude: 48.137 + latOffset, Longitude: 11.575},
		DurationMinM: durationMin,
		DurationMaxM: durationMin,
		Priority:     tier,
		Pricing:      model.TicketPricing{Normal: 15, Reduced: 8},
	}
}

// createTrip 构造指定日期的行程上下文
func createTrip(t *testing.T, date string, weather model.WeatherSnapshot, transport model.TransportMode) *model.TripContext {
	t.Helper()
	trip, err := model.NewTripContext(date, weather, transport)
	if err != nil {
		t.Fatalf("创建行程上下文失败: %v", err)
	}
	return trip
}

// newPlanner 创建固定种子的多日规划器
func newPlanner() *builder.TripPlanner {
	p := builder.NewTripPlanner(
		filter.Default(),
		score.NewEngine(score.DefaultWeights()),
		travel.NewEstimator(),
		builder.DefaultConfig(),
	)
	p.SetSeed(42)
	return p
}

// newDayBuilderWith 创建指定配置、固定种子的单日构建器
func newDayBuilderWith(cfg builder.Config) *builder.DayBuilder {
	b := builder.NewDayBuilder(
		filter.Default(),
		score.NewEngine(score.DefaultWeights()),
		travel.NewEstimator(),
		cfg,
	)
	b.SetSeed(42)
	return b
}

// assertTimelineValid 验证单日行程时序：从不重叠、时间单调递增
func assertTimelineValid(t *testing.T, day *model.DayPlan) {
	t.Helper()
	for i := 1; i < len(day.Items); i++ {
		prev, cur := day.Items[i-1], day.Items[i]
		if cur.StartMin < prev.EndMin {
			t.Errorf("%s: %s[%s] 与前项 %s[%s] 重叠",
				day.Date, cur.Kind, cur.StartClock(), prev.Kind, prev.EndClock())
		}
	}
}

// assertStructuralItems 验证结构性条目恰好各出现一次
func assertStructuralItems(t *testing.T, day *model.DayPlan) {
	t.Helper()
	counts := make(map[model.ItemKind]int)
	for _, it := range day.Items {
		counts[it.Kind]++
	}
	for _, k := range []model.ItemKind{model.ItemDayStart, model.ItemLunchBreak, model.ItemDayEnd} {
		if counts[k] != 1 {
			t.Errorf("%s: %s 出现 %d 次，期望恰好 1 次", day.Date, k, counts[k])
		}
	}
}
