package builder

import (
	"testing"
	"time"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

func newTestGapFiller() *GapFiller {
	return NewGapFiller(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), DefaultConfig())
}

func weekday(d int) time.Weekday {
	return time.Weekday(d)
}

func mustTrip(t *testing.T, date string) *model.TripContext {
	t.Helper()
	trip, err := model.NewTripContext(date, model.WeatherSnapshot{TempC: 22}, model.TransportWalk)
	if err != nil {
		t.Fatal(err)
	}
	return trip
}

// gappyPlan 构造带 45 分钟空档的单日行程：
// 10:00-11:00 景点A  [空档 45min]  11:45-12:45 景点B
func gappyPlan() (*model.DayPlan, *model.POI, *model.POI) {
	a := testPOI("景点A", model.TierCore, 60, 0)
	b := testPOI("景点B", model.TierCore, 60, 0.002)

	itemA := model.NewItem(model.ItemAttraction, 10*60, 60)
	itemA.POI = a
	idA := a.ID
	itemA.POIID = &idA
	itemA.Label = a.Name

	itemB := model.NewItem(model.ItemAttraction, 11*60+45, 60)
	itemB.POI = b
	idB := b.ID
	itemB.POIID = &idB
	itemB.Label = b.Name

	plan := &model.DayPlan{
		Date: "2026-07-04",
		Items: []model.ScheduleItem{
			model.NewItem(model.ItemDayStart, 9*60, 0),
			itemA,
			itemB,
		},
	}
	return plan, a, b
}

func TestFill_FreeTimeWhenNoCandidate(t *testing.T) {
	plan, _, nextPOI := gappyPlan()
	// 下一个景点尚未开放，空档不能靠提前开始消化
	nextPOI.WeeklyHours = model.WeeklyHours{}
	for d := 0; d < 7; d++ {
		nextPOI.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 11*60 + 45, CloseMin: 18 * 60}
	}

	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()
	g.Fill(plan, nil, testProfile(), trip, model.NewUsedPOISet())

	var free []model.ScheduleItem
	for _, it := range plan.Items {
		if it.Kind == model.ItemFreeTime {
			free = append(free, it)
		}
	}
	if len(free) != 1 {
		t.Fatalf("expected exactly one free time item, got %d", len(free))
	}
	if free[0].DurationMin > DefaultConfig().FreeTimeMaxMin {
		t.Errorf("free time duration %d exceeds cap %d", free[0].DurationMin, DefaultConfig().FreeTimeMaxMin)
	}
	if free[0].StartMin != 11*60 {
		t.Errorf("free time should start at gap start, got %s", free[0].StartClock())
	}
}

func TestFill_SkipsWhenNextCanStartEarlier(t *testing.T) {
	plan, _, _ := gappyPlan()
	// 两个景点均全天开放：空档属于时序问题，不做填补
	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()

	before := len(plan.Items)
	g.Fill(plan, nil, testProfile(), trip, model.NewUsedPOISet())
	if len(plan.Items) != before {
		t.Errorf("plan grew from %d to %d items; open-at-gap attraction should suppress filling", before, len(plan.Items))
	}
}

func TestFill_InsertsShortPOI(t *testing.T) {
	plan, _, nextPOI := gappyPlan()
	nextPOI.WeeklyHours = model.WeeklyHours{}
	for d := 0; d < 7; d++ {
		nextPOI.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 11*60 + 45, CloseMin: 18 * 60}
	}

	// 紧邻空档起点的 30 分钟小景点
	small := testPOI("街角画廊", model.TierOptional, 30, 0.0005)
	small.Pricing = model.TicketPricing{Free: true}

	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()
	used := model.NewUsedPOISet()
	g.Fill(plan, []*model.POI{small}, testProfile(), trip, used)

	found := false
	for _, it := range plan.Items {
		if it.Kind == model.ItemAttraction && it.Label == "街角画廊" {
			found = true
			if it.EndMin > 11*60+45 {
				t.Errorf("filler overruns gap: ends %s", it.EndClock())
			}
		}
		if it.Kind == model.ItemFreeTime {
			t.Error("free time inserted although a POI filler fit")
		}
	}
	if !found {
		t.Fatal("expected gallery to fill the gap")
	}
	if !used.Has(small.ID) {
		t.Error("filler POI not registered in used set")
	}
}

func TestFill_PullsLunchForward(t *testing.T) {
	lunch := model.NewItem(model.ItemLunchBreak, 12*60+25, 60)
	plan := &model.DayPlan{
		Date: "2026-07-04",
		Items: []model.ScheduleItem{
			model.NewItem(model.ItemDayStart, 9*60, 0),
			model.NewItem(model.ItemAttraction, 10*60, 120),
			lunch,
		},
	}
	plan.Items[1].POI = testPOI("景点", model.TierCore, 120, 0)

	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()
	g.Fill(plan, nil, testProfile(), trip, model.NewUsedPOISet())

	got := plan.Items[2]
	if got.Kind != model.ItemLunchBreak {
		t.Fatalf("expected lunch at index 2, got %s", got.Kind)
	}
	if got.StartMin != 12*60 {
		t.Errorf("lunch not pulled forward: starts %s", got.StartClock())
	}
	if got.DurationMin != 60 {
		t.Errorf("lunch duration changed to %d", got.DurationMin)
	}
}

func TestFill_RespectsDailyAttractionCap(t *testing.T) {
	// 老年团每日上限 4：已有 2 个景点时，超大空档最多再填 2 个
	seniors := &model.UserProfile{TargetGroup: model.GroupSeniors, GroupSize: 2, Budget: model.BudgetMedium}

	first := testPOI("宫殿花园", model.TierCore, 60, 0)
	last := testPOI("晚间剧院", model.TierCore, 60, 0.001)
	last.WeeklyHours = model.WeeklyHours{}
	for d := 0; d < 7; d++ {
		last.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 17 * 60, CloseMin: 19 * 60}
	}

	itemA := model.NewItem(model.ItemAttraction, 9*60, 60)
	itemA.POI = first
	idA := first.ID
	itemA.POIID = &idA
	itemA.Label = first.Name
	itemB := model.NewItem(model.ItemAttraction, 17*60, 60)
	itemB.POI = last
	idB := last.ID
	itemB.POIID = &idB
	itemB.Label = last.Name

	plan := &model.DayPlan{
		Date: "2026-07-04",
		Items: []model.ScheduleItem{
			model.NewItem(model.ItemDayStart, 9*60, 0),
			itemA,
			itemB,
		},
	}

	catalog := []*model.POI{
		testPOI("手工市集", model.TierSecondary, 30, 0.0005),
		testPOI("旧港码头", model.TierSecondary, 30, 0.0010),
		testPOI("城墙步道", model.TierSecondary, 30, 0.0015),
		testPOI("街角画廊", model.TierOptional, 30, 0.0020),
		testPOI("雕塑小院", model.TierOptional, 30, 0.0025),
	}

	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()
	g.Fill(plan, catalog, seniors, trip, model.NewUsedPOISet())

	if got := len(plan.Attractions()); got != 4 {
		t.Errorf("seniors day holds %d attractions, want cap of 4", got)
	}
}

func TestFill_ResidualGapAfterShortPOI(t *testing.T) {
	// 2 小时空档里只放得下一个 30 分钟小景点：
	// 剩余空档仍超过阈值，必须补上自由活动而非跳过不管
	first := testPOI("宫殿花园", model.TierCore, 60, 0)
	last := testPOI("晚间剧院", model.TierCore, 60, 0.001)
	last.WeeklyHours = model.WeeklyHours{}
	for d := 0; d < 7; d++ {
		last.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 13 * 60, CloseMin: 19 * 60}
	}

	itemA := model.NewItem(model.ItemAttraction, 10*60, 60)
	itemA.POI = first
	idA := first.ID
	itemA.POIID = &idA
	itemA.Label = first.Name
	itemB := model.NewItem(model.ItemAttraction, 13*60, 60)
	itemB.POI = last
	idB := last.ID
	itemB.POIID = &idB
	itemB.Label = last.Name

	plan := &model.DayPlan{
		Date: "2026-07-04",
		Items: []model.ScheduleItem{
			model.NewItem(model.ItemDayStart, 9*60, 0),
			itemA,
			itemB,
		},
	}

	small := testPOI("街角画廊", model.TierOptional, 30, 0.0005)
	small.Pricing = model.TicketPricing{Free: true}

	trip := mustTrip(t, "2026-07-04")
	g := newTestGapFiller()
	g.Fill(plan, []*model.POI{small}, testProfile(), trip, model.NewUsedPOISet())

	galleryIdx := -1
	for i, it := range plan.Items {
		if it.Kind == model.ItemAttraction && it.Label == "街角画廊" {
			galleryIdx = i
		}
	}
	if galleryIdx < 0 {
		t.Fatal("expected gallery to fill part of the gap")
	}

	var free []model.ScheduleItem
	for _, it := range plan.Items[galleryIdx+1:] {
		if it.Kind == model.ItemFreeTime {
			free = append(free, it)
		}
	}
	if len(free) != 1 {
		t.Fatalf("expected one free time item after the gallery, got %d", len(free))
	}
	if free[0].StartMin != plan.Items[galleryIdx].EndMin {
		t.Errorf("free time starts %s, want right after gallery ends %s",
			free[0].StartClock(), plan.Items[galleryIdx].EndClock())
	}
}

func TestPlan_MultiDaySharedUsage(t *testing.T) {
	planner := NewTripPlanner(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), DefaultConfig())
	planner.SetSeed(7)

	catalog := testCatalog()
	trip, err := planner.PlanRange(catalog, testProfile(), model.TripContext{
		Weather:   model.WeatherSnapshot{TempC: 20},
		Transport: model.TransportWalk,
	}, "2026-07-04", 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(trip.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(trip.Days))
	}

	seen := make(map[string]bool)
	for _, day := range trip.Days {
		for _, it := range day.Attractions() {
			key := it.POIID.String()
			if seen[key] {
				t.Errorf("POI %s reused across days", it.Label)
			}
			seen[key] = true
		}
	}

	// 日期必须升序
	for i := 1; i < len(trip.Days); i++ {
		if trip.Days[i].Date <= trip.Days[i-1].Date {
			t.Errorf("days out of order: %s after %s", trip.Days[i].Date, trip.Days[i-1].Date)
		}
	}
}

func TestPlan_BadgesReflectFilledDay(t *testing.T) {
	// 清晨集市闭市太早，驾车的停车开销让调度器赶不上；
	// 它只能由空档填补补进上午——当日徽章必须按填补后的条目计算
	market := testPOI("清晨集市", model.TierOptional, 60, 0)
	market.Pricing = model.TicketPricing{Free: true}
	market.WeeklyHours = model.WeeklyHours{}
	gallery := testPOI("河岸美术馆", model.TierCore, 60, 0.001)
	gallery.WeeklyHours = model.WeeklyHours{}
	for d := 0; d < 7; d++ {
		market.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 9 * 60, CloseMin: 10*60 + 5}
		gallery.WeeklyHours[weekday(d)] = model.OpenInterval{OpenMin: 13 * 60, CloseMin: 18 * 60}
	}

	trip, err := model.NewTripContext("2026-07-04", model.WeatherSnapshot{TempC: 22}, model.TransportCar)
	if err != nil {
		t.Fatal(err)
	}

	planner := NewTripPlanner(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), DefaultConfig())
	planner.SetSeed(7)
	result := planner.Plan([]*model.POI{market, gallery}, testProfile(), []DayRequest{{Trip: trip}})

	if len(result.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(result.Days))
	}
	day := result.Days[0]

	filled := false
	for _, it := range day.Attractions() {
		if it.Label == "清晨集市" {
			filled = true
		}
	}
	if !filled {
		t.Fatal("expected the market to be added during gap filling")
	}

	// 两个景点中一个免费：徽章必须反映填补后的高性价比
	hasValue := false
	for _, b := range day.Badges {
		if b == "高性价比" {
			hasValue = true
		}
	}
	if !hasValue {
		t.Errorf("badges %v computed before gap filling, want 高性价比", day.Badges)
	}
}

func TestPlan_HealedTimelineHasNoOverlaps(t *testing.T) {
	planner := NewTripPlanner(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), DefaultConfig())
	planner.SetSeed(7)

	trip, err := planner.PlanRange(testCatalog(), testProfile(), model.TripContext{
		Weather:   model.WeatherSnapshot{TempC: 20},
		Transport: model.TransportWalk,
	}, "2026-07-04", 2)
	if err != nil {
		t.Fatal(err)
	}

	for _, day := range trip.Days {
		for i := 1; i < len(day.Items); i++ {
			prev, cur := day.Items[i-1], day.Items[i]
			if cur.StartMin < prev.EndMin {
				t.Errorf("%s: %s starts %s before %s ends %s",
					day.Date, cur.Kind, cur.StartClock(), prev.Kind, prev.EndClock())
			}
		}
	}
}
