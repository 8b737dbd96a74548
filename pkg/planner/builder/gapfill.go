package builder

import (
	"sort"

	"github.com/xingcheng/xingcheng/pkg/explain"
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// GapFiller 空档填补器
// 在交通/停车时间调整之后对完成的单日行程做后处理：
// 超过阈值的空档优先用合适的小景点填补，否则插入受限时长的自由活动
type GapFiller struct {
	filters   *filter.Chain
	scorer    *score.Engine
	estimator *travel.Estimator
	cfg       Config
	log       *logger.PlannerLogger
}

// NewGapFiller 创建空档填补器
func NewGapFiller(filters *filter.Chain, scorer *score.Engine, estimator *travel.Estimator, cfg Config) *GapFiller {
	return &GapFiller{
		filters:   filters,
		scorer:    scorer,
		estimator: estimator,
		cfg:       cfg,
		log:       logger.NewPlannerLogger(),
	}
}

// Fill 填补行程中的空档，原地更新 plan.Items
// 新选入的 POI 会登记进 used，保证跨日不重复
func (g *GapFiller) Fill(plan *model.DayPlan, catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) {
	if plan == nil || len(plan.Items) < 2 {
		return
	}
	if used == nil {
		used = model.NewUsedPOISet()
	}

	eligible := g.filters.Eligible(catalog, profile, trip)
	date := trip.ParsedDate()

	i := 0
	for i < len(plan.Items)-1 {
		cur := plan.Items[i]
		next := &plan.Items[i+1]

		gap := next.StartMin - cur.EndMin
		if gap <= g.cfg.GapThresholdMin {
			i++
			continue
		}

		// 午餐前的小空档：直接把午餐提前，不做填补
		if next.Kind == model.ItemLunchBreak && gap <= g.cfg.LunchPullForwardMin {
			next.StartMin = cur.EndMin
			next.EndMin = next.StartMin + next.DurationMin
			i++
			continue
		}

		// 下一个景点本就开放、完全可以提前开始：空档属于时序调整，
		// 交给重排处理而非填补
		if next.Kind == model.ItemAttraction && next.POI != nil &&
			next.POI.IsOpenAt(date, cur.EndMin, next.DurationMin) {
			i++
			continue
		}

		if inserted := g.fillWithPOI(plan, i, gap, eligible, profile, trip, used); inserted > 0 {
			// 小景点可能没吃满空档，残余配对重新检查
			i += inserted
			continue
		}
		i += g.fillWithFreeTime(plan, i, gap, trip) + 1
	}
}

// fillWithPOI 尝试用小景点填补空档，返回插入的条目数
// 与单日调度同样遵守层级上限和每日景点总数上限
func (g *GapFiller) fillWithPOI(plan *model.DayPlan, idx, gap int, eligible []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) int {
	if len(plan.Attractions()) >= g.cfg.maxAttractionsFor(profile) {
		return 0
	}
	cur := plan.Items[idx]
	date := trip.ParsedDate()
	prevPOI := lastPOIBefore(plan.Items, idx)

	type fillCandidate struct {
		poi       *model.POI
		travelMin int
		arrival   int
		duration  int
		rank      float64
		input     *score.Input
	}

	var cands []fillCandidate
	for _, p := range eligible {
		if used.Has(p.ID) {
			continue
		}
		if cap, ok := g.cfg.TierCaps[p.Priority]; ok && plan.TierCount(p.Priority) >= cap {
			continue
		}

		travelMin := 0
		if prevPOI != nil {
			travelMin = g.estimator.Minutes(prevPOI.Location, p.Location, trip.Transport)
		}
		duration := p.VisitDuration()
		if travelMin+duration > gap {
			continue
		}
		arrival := cur.EndMin + travelMin
		if !p.IsOpenAt(date, arrival, duration) {
			continue
		}

		in := &score.Input{
			POI:           p,
			Profile:       profile,
			Trip:          trip,
			ArrivalMin:    arrival,
			TravelMinutes: travelMin,
		}
		// 在基础评分之上强烈偏向短游览、低交通的填充项
		rank := g.scorer.Score(in) - 1.5*float64(duration) - 2.0*float64(travelMin)
		cands = append(cands, fillCandidate{
			poi:       p,
			travelMin: travelMin,
			arrival:   arrival,
			duration:  duration,
			rank:      rank,
			input:     in,
		})
	}

	if len(cands) == 0 {
		return 0
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].rank > cands[j].rank })
	best := cands[0]

	var insert []model.ScheduleItem
	if best.travelMin > 0 {
		transit := model.NewItem(model.ItemTransit, cur.EndMin, best.travelMin)
		transit.TravelMode = trip.Transport
		insert = append(insert, transit)
	}

	attraction := model.NewItem(model.ItemAttraction, best.arrival, best.duration)
	attraction.POI = best.poi
	poiID := best.poi.ID
	attraction.POIID = &poiID
	attraction.Label = best.poi.Name
	attraction.CostEstimate = EstimateCost(best.poi, profile)
	attraction.TicketNote = TicketNote(best.poi)
	attraction.Reasons = explain.Reasons(best.input, g.scorer.Breakdown(best.input))
	attraction.Badges = explain.POIBadges(best.poi, profile)
	insert = append(insert, attraction)

	plan.Items = spliceItems(plan.Items, idx+1, insert)
	used.Use(best.poi.ID)
	g.log.GapFilled(trip.Date, string(model.ItemAttraction), best.duration)
	return len(insert)
}

// fillWithFreeTime 插入受限时长的自由活动条目，返回插入的条目数
func (g *GapFiller) fillWithFreeTime(plan *model.DayPlan, idx, gap int, trip *model.TripContext) int {
	cur := plan.Items[idx]
	next := plan.Items[idx+1]

	duration := gap
	if duration > g.cfg.FreeTimeMaxMin {
		duration = g.cfg.FreeTimeMaxMin
	}

	free := model.NewItem(model.ItemFreeTime, cur.EndMin, duration)
	free.Label = freeTimeLabel(cur, next)

	plan.Items = spliceItems(plan.Items, idx+1, []model.ScheduleItem{free})
	g.log.GapFilled(trip.Date, string(model.ItemFreeTime), duration)
	return 1
}

// freeTimeLabel 根据空档位置生成上下文相关的标签
func freeTimeLabel(prev, next model.ScheduleItem) string {
	switch {
	case prev.Kind == model.ItemLunchBreak:
		return "午后自由漫步"
	case next.Kind == model.ItemDayEnd || prev.EndMin >= 17*60:
		return "傍晚自由时光"
	default:
		return "自由活动"
	}
}

// lastPOIBefore 返回下标 idx 及之前最近一个景点的 POI
func lastPOIBefore(items []model.ScheduleItem, idx int) *model.POI {
	for i := idx; i >= 0; i-- {
		if items[i].Kind == model.ItemAttraction && items[i].POI != nil {
			return items[i].POI
		}
	}
	return nil
}

// spliceItems 在下标 at 处插入条目序列
func spliceItems(items []model.ScheduleItem, at int, insert []model.ScheduleItem) []model.ScheduleItem {
	out := make([]model.ScheduleItem, 0, len(items)+len(insert))
	out = append(out, items[:at]...)
	out = append(out, insert...)
	out = append(out, items[at:]...)
	return out
}
