// Package builder 提供单日贪心调度器、多日协调器和空档填补
package builder

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/xingcheng/xingcheng/pkg/explain"
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// State 单日调度状态机
type State string

const (
	StateAtDayStart    State = "at_day_start"
	StateScheduling    State = "scheduling"
	StateLunchInserted State = "lunch_inserted"
	StateDayEnded      State = "day_ended"
)

// Config 调度配置
type Config struct {
	DayStartMin int `json:"day_start_min"`
	DayEndMin   int `json:"day_end_min"`

	// 午餐窗口：时钟进入窗口即强制插入，受行程压力时允许提前
	LunchStartMin    int `json:"lunch_start_min"`
	LunchLatestMin   int `json:"lunch_latest_min"`
	LunchDurationMin int `json:"lunch_duration_min"`

	// 驾车时第一个景点的停车/初始步行开销
	ParkingOverheadMin int `json:"parking_overhead_min"`

	// 空档填补
	GapThresholdMin     int `json:"gap_threshold_min"`
	FreeTimeMaxMin      int `json:"free_time_max_min"`
	LunchPullForwardMin int `json:"lunch_pull_forward_min"`

	// 近分候选随机化的分差带宽（占最高分的比例）
	EpsilonRatio float64 `json:"epsilon_ratio"`

	// 每日各优先级层级的景点数量上限
	TierCaps       map[model.PriorityTier]int `json:"tier_caps"`
	MaxAttractions int                        `json:"max_attractions"`
}

// DefaultConfig 返回默认调度配置
func DefaultConfig() Config {
	return Config{
		DayStartMin:         timeutil.MustParseClock("09:00"),
		DayEndMin:           timeutil.MustParseClock("19:00"),
		LunchStartMin:       timeutil.MustParseClock("12:00"),
		LunchLatestMin:      timeutil.MustParseClock("14:30"),
		LunchDurationMin:    60,
		ParkingOverheadMin:  10,
		GapThresholdMin:     20,
		FreeTimeMaxMin:      40,
		LunchPullForwardMin: 30,
		EpsilonRatio:        0.05,
		TierCaps: map[model.PriorityTier]int{
			model.TierCore:      3,
			model.TierSecondary: 3,
			model.TierOptional:  2,
		},
		MaxAttractions: 6,
	}
}

// maxAttractionsFor 返回适用于指定画像的每日景点上限
// 老年人和带低龄儿童的家庭采用更保守的节奏
func (c Config) maxAttractionsFor(profile *model.UserProfile) int {
	max := c.MaxAttractions
	if profile == nil {
		return max
	}
	if profile.TargetGroup == model.GroupSeniors || profile.HasYoungChildren() {
		if max > 4 {
			return 4
		}
	}
	return max
}

// DayBuilder 单日贪心调度器
type DayBuilder struct {
	filters   *filter.Chain
	scorer    *score.Engine
	estimator *travel.Estimator
	cfg       Config
	rng       *rand.Rand
	log       *logger.PlannerLogger
}

// NewDayBuilder 创建单日调度器
func NewDayBuilder(filters *filter.Chain, scorer *score.Engine, estimator *travel.Estimator, cfg Config) *DayBuilder {
	return &DayBuilder{
		filters:   filters,
		scorer:    scorer,
		estimator: estimator,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       logger.NewPlannerLogger(),
	}
}

// SetSeed 固定随机种子
// 生产环境使用时间种子带来同输入下的日间轮换；测试固定种子保证确定性
func (b *DayBuilder) SetSeed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// candidate 一次迭代中的候选景点
type candidate struct {
	poi       *model.POI
	travelMin int
	arrival   int
	duration  int
	score     float64
	input     *score.Input
}

// Build 生成单日行程
// used 为跨日共享的已用集合；传 nil 表示无外部排除。
// 无论候选情况如何，结果至少包含 DayStart/LunchBreak/DayEnd，从不报错
func (b *DayBuilder) Build(catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) *model.DayPlan {
	startedAt := time.Now()
	if used == nil {
		used = model.NewUsedPOISet()
	}

	eligible := b.filters.Eligible(catalog, profile, trip)
	b.log.StartPlan(trip.Date, len(eligible))

	state := StateAtDayStart
	items := []model.ScheduleItem{model.NewItem(model.ItemDayStart, b.cfg.DayStartMin, 0)}
	cur := b.cfg.DayStartMin
	fatigue := 0.0
	lunchDone := false
	first := true
	var lastPOI *model.POI

	tierCount := make(map[model.PriorityTier]int)
	attractions := 0
	maxAttractions := b.cfg.maxAttractionsFor(profile)

	state = StateScheduling
	for state == StateScheduling || state == StateLunchInserted {
		// 时钟进入午餐窗口立即强制插入
		if !lunchDone && cur >= b.cfg.LunchStartMin {
			items, cur = b.insertLunch(items, cur)
			lunchDone = true
			state = StateLunchInserted
			continue
		}

		if attractions >= maxAttractions {
			state = StateDayEnded
			continue
		}

		cands := b.collectCandidates(eligible, profile, trip, used, tierCount, cur, fatigue, lunchDone, first, lastPOI)
		if len(cands) == 0 {
			if !lunchDone {
				// 行程压力下提前午餐，之后还可能有下午开放的候选
				items, cur = b.insertLunch(items, cur)
				lunchDone = true
				state = StateLunchInserted
				continue
			}
			state = StateDayEnded
			continue
		}
		state = StateScheduling

		chosen := b.pickCandidate(cands)

		items, cur = b.emit(items, chosen, trip, cur, first)
		used.Use(chosen.poi.ID)
		tierCount[chosen.poi.Priority]++
		attractions++
		fatigue += visitFatigue(chosen.poi, chosen.duration)
		lastPOI = chosen.poi
		first = false

		b.log.POIPlaced(trip.Date, chosen.poi.Name, chosen.arrival, chosen.score)
	}

	if !lunchDone {
		items, cur = b.insertLunch(items, cur)
	}

	items = append(items, model.NewItem(model.ItemDayEnd, b.cfg.DayEndMin, 0))

	plan := &model.DayPlan{Date: trip.Date, Items: items}
	plan.Badges = explain.DayBadges(plan, profile)

	b.log.PlanComplete(trip.Date, attractions, time.Since(startedAt))
	return plan
}

// collectCandidates 收集当前迭代的可行候选
func (b *DayBuilder) collectCandidates(
	eligible []*model.POI,
	profile *model.UserProfile,
	trip *model.TripContext,
	used *model.UsedPOISet,
	tierCount map[model.PriorityTier]int,
	cur int,
	fatigue float64,
	lunchDone, first bool,
	lastPOI *model.POI,
) []candidate {
	date := trip.ParsedDate()
	var cands []candidate

	for _, p := range eligible {
		if used.Has(p.ID) {
			continue
		}
		if cap, ok := b.cfg.TierCaps[p.Priority]; ok && tierCount[p.Priority] >= cap {
			continue
		}

		travelMin := b.travelTo(p, trip, first, lastPOI)
		arrival := cur + travelMin
		duration := p.VisitDuration()

		if arrival+duration > b.cfg.DayEndMin {
			continue
		}
		// 午餐未插入时，候选必须给午餐窗口留出空间
		if !lunchDone && arrival+duration > b.cfg.LunchLatestMin {
			continue
		}
		if !p.IsOpenAt(date, arrival, duration) {
			continue
		}

		in := &score.Input{
			POI:           p,
			Profile:       profile,
			Trip:          trip,
			ArrivalMin:    arrival,
			TravelMinutes: travelMin,
			Fatigue:       fatigue,
		}
		cands = append(cands, candidate{
			poi:       p,
			travelMin: travelMin,
			arrival:   arrival,
			duration:  duration,
			score:     b.scorer.Score(in),
			input:     in,
		})
	}
	return cands
}

// travelTo 估算到达候选景点的交通耗时
// 第一个景点：驾车时计停车/初始步行开销，带停车信息的再加步行时间；
// 其余方式视为从出发地即刻开始
func (b *DayBuilder) travelTo(p *model.POI, trip *model.TripContext, first bool, lastPOI *model.POI) int {
	if first {
		if trip.HasCar {
			overhead := b.cfg.ParkingOverheadMin
			if p.Parking != nil {
				overhead += p.Parking.WalkMinutes
			}
			return overhead
		}
		return 0
	}
	if lastPOI == nil {
		return 0
	}
	return b.estimator.Minutes(lastPOI.Location, p.Location, trip.Transport)
}

// pickCandidate 在近分头部候选中做有界随机选择
// 给同输入的重复请求带来日间轮换，同时保持可测试的确定性（固定种子）
func (b *DayBuilder) pickCandidate(cands []candidate) candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	top := cands[0].score
	band := math.Abs(top) * b.cfg.EpsilonRatio
	if band < 0.5 {
		band = 0.5
	}

	n := 1
	for n < len(cands) && cands[n].score >= top-band {
		n++
	}
	return cands[b.rng.Intn(n)]
}

// emit 输出选中候选对应的条目（可能带停车或交通前导）
func (b *DayBuilder) emit(items []model.ScheduleItem, c candidate, trip *model.TripContext, cur int, first bool) ([]model.ScheduleItem, int) {
	attractionStart := c.arrival

	if first && trip.HasCar && c.poi.Parking != nil {
		// 停车条目 + 步行间隔；c.arrival 已含步行时间，与可行性检查一致
		parking := model.NewItem(model.ItemParking, cur, b.cfg.ParkingOverheadMin)
		parking.Label = c.poi.Parking.Name
		parking.WalkMinutes = c.poi.Parking.WalkMinutes
		items = append(items, parking)
	} else if c.travelMin > 0 {
		transit := model.NewItem(model.ItemTransit, cur, c.travelMin)
		transit.TravelMode = trip.Transport
		items = append(items, transit)
	}

	attraction := model.NewItem(model.ItemAttraction, attractionStart, c.duration)
	attraction.POI = c.poi
	poiID := c.poi.ID
	attraction.POIID = &poiID
	attraction.Label = c.poi.Name
	attraction.CostEstimate = EstimateCost(c.poi, c.input.Profile)
	attraction.TicketNote = TicketNote(c.poi)
	attraction.Reasons = explain.Reasons(c.input, b.scorer.Breakdown(c.input))
	attraction.Badges = explain.POIBadges(c.poi, c.input.Profile)
	items = append(items, attraction)

	return items, attraction.EndMin
}

// insertLunch 插入午餐条目
// 正常情况下在进入窗口的时刻开始；行程压力下允许早于窗口
func (b *DayBuilder) insertLunch(items []model.ScheduleItem, cur int) ([]model.ScheduleItem, int) {
	start := cur
	if start < b.cfg.LunchStartMin {
		// 上午候选提前耗尽时午餐仍落在正常窗口，空档交给填补处理
		start = b.cfg.LunchStartMin
	}
	if start+b.cfg.LunchDurationMin > b.cfg.DayEndMin {
		start = b.cfg.DayEndMin - b.cfg.LunchDurationMin
	}

	lunch := model.NewItem(model.ItemLunchBreak, start, b.cfg.LunchDurationMin)
	lunch.Label = "午餐"
	items = append(items, lunch)
	return items, lunch.EndMin
}

// visitFatigue 计算一次游览增加的疲劳值
func visitFatigue(p *model.POI, durationMin int) float64 {
	factor := 1.0
	switch p.Intensity {
	case model.IntensityMedium:
		factor = 1.3
	case model.IntensityHigh:
		factor = 1.7
	}
	return float64(durationMin) / 60 * 10 * factor
}

// EstimateCost 估算整组人的门票开销
func EstimateCost(p *model.POI, profile *model.UserProfile) float64 {
	if p.Pricing.Free {
		return 0
	}
	if profile == nil || profile.GroupSize <= 0 {
		return p.Pricing.Normal
	}

	adults := profile.GroupSize
	children := 0
	if profile.TargetGroup == model.GroupFamily && profile.ChildrenAge > 0 && profile.GroupSize > 2 {
		children = profile.GroupSize - 2
		adults = 2
	}

	cost := float64(adults) * p.Pricing.PriceFor(profile.TargetGroup, false)
	cost += float64(children) * p.Pricing.PriceFor(profile.TargetGroup, true)
	return cost
}

// TicketNote 生成票务说明
func TicketNote(p *model.POI) string {
	switch {
	case p.Pricing.Free:
		return "免费入场"
	case p.Pricing.Reduced > 0:
		return "儿童/老年优惠票可用"
	default:
		return ""
	}
}
