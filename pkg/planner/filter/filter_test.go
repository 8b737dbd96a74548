package filter

import (
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
)

func validPOI() *model.POI {
	return &model.POI{
		BaseModel:    model.NewBaseModel(),
		Name:         "老城博物馆",
		Location:     model.Location{Latitude: 48.13, Longitude: 11.57},
		DurationMinM: 60,
		DurationMaxM: 120,
	}
}

func testTrip(t *testing.T, date string) *model.TripContext {
	t.Helper()
	trip, err := model.NewTripContext(date, model.WeatherSnapshot{TempC: 20}, model.TransportWalk)
	if err != nil {
		t.Fatalf("NewTripContext: %v", err)
	}
	return trip
}

func TestMalformedDataFilter(t *testing.T) {
	f := NewMalformedDataFilter()

	if f.Excludes(validPOI(), nil, nil) {
		t.Error("valid POI should not be excluded")
	}

	noCoords := validPOI()
	noCoords.Location = model.Location{}
	if !f.Excludes(noCoords, nil, nil) {
		t.Error("POI without coordinates should be excluded")
	}

	noDuration := validPOI()
	noDuration.DurationMinM = 0
	noDuration.DurationMaxM = 0
	if !f.Excludes(noDuration, nil, nil) {
		t.Error("POI without duration should be excluded")
	}
}

func TestTargetGroupFilter(t *testing.T) {
	f := NewTargetGroupFilter()
	poi := validPOI()
	poi.TargetGroups = []model.TargetGroup{model.GroupFamily, model.GroupFriends}

	family := &model.UserProfile{TargetGroup: model.GroupFamily}
	seniors := &model.UserProfile{TargetGroup: model.GroupSeniors}

	if f.Excludes(poi, family, nil) {
		t.Error("matching group should not be excluded")
	}
	if !f.Excludes(poi, seniors, nil) {
		t.Error("non-matching group should be excluded")
	}

	// 空人群列表 ⇒ 适合所有人
	open := validPOI()
	if f.Excludes(open, seniors, nil) {
		t.Error("empty target group list should not exclude anyone")
	}
}

func TestIntensityFilter_Seniors(t *testing.T) {
	f := NewIntensityFilter()
	poi := validPOI()
	poi.Intensity = model.IntensityHigh

	seniors := &model.UserProfile{TargetGroup: model.GroupSeniors}
	// 高强度对老年人无条件排除
	if !f.Excludes(poi, seniors, nil) {
		t.Error("high intensity must be excluded for seniors")
	}

	poi.Intensity = model.IntensityMedium
	if f.Excludes(poi, seniors, nil) {
		t.Error("medium intensity should pass for seniors")
	}
}

func TestIntensityFilter_YoungChildren(t *testing.T) {
	f := NewIntensityFilter()
	poi := validPOI()
	poi.Intensity = model.IntensityHigh

	toddlers := &model.UserProfile{TargetGroup: model.GroupFamily, ChildrenAge: 4}
	teens := &model.UserProfile{TargetGroup: model.GroupFamily, ChildrenAge: 14}

	if !f.Excludes(poi, toddlers, nil) {
		t.Error("high intensity should be excluded for family with young children")
	}
	// 年龄门槛例外：大孩子家庭不受限
	if f.Excludes(poi, teens, nil) {
		t.Error("high intensity should pass for family with teenagers")
	}
}

func TestSeasonalityFilter(t *testing.T) {
	f := NewSeasonalityFilter()
	poi := validPOI()
	poi.Seasons = []model.Season{model.SeasonSummer}

	summer := testTrip(t, "2026-07-15")
	winter := testTrip(t, "2026-01-15")

	if f.Excludes(poi, nil, summer) {
		t.Error("summer POI should pass in summer")
	}
	if !f.Excludes(poi, nil, winter) {
		t.Error("summer POI should be excluded in winter")
	}

	// 空季节列表 ⇒ 全年适宜
	allYear := validPOI()
	if f.Excludes(allYear, nil, winter) {
		t.Error("empty season list should never exclude")
	}
}

func TestChain_Eligible(t *testing.T) {
	chain := Default()
	trip := testTrip(t, "2026-07-15")
	profile := &model.UserProfile{TargetGroup: model.GroupSeniors, GroupSize: 2}

	ok := validPOI()
	tooIntense := validPOI()
	tooIntense.Intensity = model.IntensityHigh
	broken := validPOI()
	broken.Location = model.Location{}

	eligible := chain.Eligible([]*model.POI{ok, tooIntense, broken}, profile, trip)
	if len(eligible) != 1 || eligible[0] != ok {
		t.Errorf("expected only the valid POI to survive, got %d", len(eligible))
	}
}

func TestChain_RegisterReplacesSameType(t *testing.T) {
	chain := NewChain()
	chain.Register(NewIntensityFilter())
	chain.Register(NewIntensityFilter())
	if chain.Count() != 1 {
		t.Errorf("duplicate type should replace, count = %d", chain.Count())
	}
	chain.Unregister(TypeIntensity)
	if chain.Count() != 0 {
		t.Errorf("expected empty chain, count = %d", chain.Count())
	}
}
