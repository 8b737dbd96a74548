package scenario

import (
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
)

// TestRainyDayPrefersIndoor 雨天行程偏向室内景点测试
func TestRainyDayPrefersIndoor(t *testing.T) {
	garden := createPOI("植物园", "park", model.TierCore, 90, 0)
	garden.Space = model.SpaceOutdoor
	garden.WeatherDep = model.WeatherDepHigh

	gallery := createPOI("国家美术馆", "museum", model.TierCore, 90, 0.004)
	gallery.Space = model.SpaceIndoor
	gallery.WeatherDep = model.WeatherDepLow

	profile := &model.UserProfile{TargetGroup: model.GroupCouple, GroupSize: 2}

	// 限制单日只排一个景点，逼出评分倾向
	cfg := builder.DefaultConfig()
	cfg.MaxAttractions = 1

	plan := func(precip bool) string {
		b := newDayBuilderWith(cfg)
		trip := createTrip(t, "2026-04-18", model.WeatherSnapshot{Precipitation: precip, TempC: 12}, model.TransportWalk)
		day := b.Build([]*model.POI{garden, gallery}, profile, trip, nil)
		attractions := day.Attractions()
		if len(attractions) != 1 {
			t.Fatalf("期望恰好 1 个景点，得到 %d 个", len(attractions))
		}
		return attractions[0].Label
	}

	if got := plan(true); got != "国家美术馆" {
		t.Errorf("雨天应选择室内景点，实际选择 %s", got)
	}
	if got := plan(false); got != "植物园" {
		t.Errorf("晴天户外核心景点不应被压制，实际选择 %s", got)
	}
}
