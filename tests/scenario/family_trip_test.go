package scenario

import (
	"strings"
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/stats"
)

// TestFamilyDayTrip 亲子家庭单日行程测试
func TestFamilyDayTrip(t *testing.T) {
	playground := createPOI("冒险游乐园", "park", model.TierCore, 120, 0)
	playground.TargetGroups = []model.TargetGroup{model.GroupFamily}
	playground.Tags = []string{"亲子", "户外"}

	zoo := createPOI("城市动物园", "zoo", model.TierCore, 90, 0.006)
	zoo.TargetGroups = []model.TargetGroup{model.GroupFamily}
	zoo.Tags = []string{"亲子", "动物"}

	climbing := createPOI("高空攀岩馆", "sport", model.TierSecondary, 90, 0.012)
	climbing.Intensity = model.IntensityHigh

	museum := createPOI("玩具博物馆", "museum", model.TierSecondary, 60, 0.018)
	museum.Tags = []string{"亲子", "室内"}

	catalog := []*model.POI{playground, zoo, climbing, museum}

	profile := &model.UserProfile{
		TargetGroup: model.GroupFamily,
		GroupSize:   4,
		ChildrenAge: 5,
		Preferences: []string{"亲子"},
	}

	trip := createTrip(t, "2026-07-11", model.WeatherSnapshot{TempC: 24}, model.TransportWalk)
	result := newPlanner().Plan(catalog, profile, []builder.DayRequest{{Trip: trip}})

	if len(result.Days) != 1 {
		t.Fatalf("期望 1 天行程，得到 %d 天", len(result.Days))
	}
	day := result.Days[0]
	assertTimelineValid(t, day)
	assertStructuralItems(t, day)

	// 带低龄儿童：高强度景点必须被排除
	for _, it := range day.Attractions() {
		if it.Label == "高空攀岩馆" {
			t.Error("带低龄儿童的家庭不应安排高强度景点")
		}
	}

	// 匹配偏好的景点应附带推荐理由
	for _, it := range day.Attractions() {
		if it.Label == "冒险游乐园" && len(it.Reasons) == 0 {
			t.Error("偏好命中的景点应有推荐理由")
		}
	}

	report := stats.DefaultAnalyzer().GenerateReport(stats.DefaultAnalyzer().AnalyzeTrip(result.Days))
	if !strings.Contains(report, "行程统计报告") {
		t.Error("统计报告缺少标题")
	}
	t.Logf("安排景点数: %d", len(day.Attractions()))
}
