// Package editor 提供已生成行程的局部编辑操作
// 所有操作原地修改单日行程，并在结束前重排时间线、校验无重叠
package editor

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/pkg/errors"
	"github.com/xingcheng/xingcheng/pkg/explain"
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/timeline"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// Editor 行程编辑器
type Editor struct {
	filters    *filter.Chain
	scorer     *score.Engine
	estimator  *travel.Estimator
	cfg        builder.Config
	healer     *timeline.Healer
	simWeights SimilarityWeights
	log        *logger.PlannerLogger
}

// New 创建编辑器
func New(filters *filter.Chain, scorer *score.Engine, estimator *travel.Estimator, cfg builder.Config) *Editor {
	return &Editor{
		filters:    filters,
		scorer:     scorer,
		estimator:  estimator,
		cfg:        cfg,
		healer:     timeline.NewHealer(),
		simWeights: DefaultSimilarityWeights(),
		log:        logger.NewPlannerLogger(),
	}
}

// RemoveItem 从行程中移除指定条目
// 结构性条目（一日开始/结束、午餐）不可移除；
// 移除景点会连带移除其前导交通/停车条目，释放 POI 供后续日期使用，
// 并用空档填补消化留下的空窗——被移除的 POI 在本次填补中处于冷却期，不会被选回
func (e *Editor) RemoveItem(plan *model.DayPlan, itemID uuid.UUID, catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) error {
	idx := plan.FindItem(itemID)
	if idx < 0 {
		return errors.ItemNotFound(itemID.String())
	}
	item := plan.Items[idx]
	if item.Kind.Structural() {
		return errors.ItemNotEditable(string(item.Kind))
	}

	from, to := idx, idx
	if idx > 0 {
		switch plan.Items[idx-1].Kind {
		case model.ItemTransit, model.ItemParking:
			from = idx - 1
		}
	}
	// 后随交通的耗时按被移除景点计算，同样失效
	if to+1 < len(plan.Items) && plan.Items[to+1].Kind == model.ItemTransit {
		to++
	}

	var removed *uuid.UUID
	if item.Kind == model.ItemAttraction && item.POIID != nil {
		removed = item.POIID
	}

	plan.Items = append(plan.Items[:from], plan.Items[to+1:]...)
	e.reflow(plan, trip)

	// 冷却期内填补不得选回刚移除的 POI
	cooldown := used
	if cooldown == nil {
		cooldown = model.NewUsedPOISet()
	}
	if removed != nil {
		cooldown.Use(*removed)
	}
	filler := builder.NewGapFiller(e.filters, e.scorer, e.estimator, e.cfg)
	filler.Fill(plan, catalog, profile, trip, cooldown)

	if removed != nil && used != nil {
		used.Release(*removed)
	}

	e.reflow(plan, trip)
	e.log.EditApplied("remove", itemID.String())
	return nil
}

// ReplaceItem 用目录中最相似的可用景点替换指定景点
// 替换项必须仍可放入原槽位（开放时间、邻项边界），否则返回无候选错误
func (e *Editor) ReplaceItem(plan *model.DayPlan, itemID uuid.UUID, catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) error {
	idx := plan.FindItem(itemID)
	if idx < 0 {
		return errors.ItemNotFound(itemID.String())
	}
	item := plan.Items[idx]
	if item.Kind != model.ItemAttraction || item.POI == nil {
		return errors.ItemNotEditable(string(item.Kind))
	}
	if used == nil {
		used = model.NewUsedPOISet()
	}

	slotEnd := e.cfg.DayEndMin
	if idx+1 < len(plan.Items) {
		slotEnd = plan.Items[idx+1].StartMin
	}
	slotLen := slotEnd - item.StartMin
	date := trip.ParsedDate()
	orig := item.POI

	type replacement struct {
		poi *model.POI
		sim float64
	}
	var cands []replacement
	for _, p := range e.filters.Eligible(catalog, profile, trip) {
		if p.ID == orig.ID || used.Has(p.ID) {
			continue
		}
		duration := p.VisitDuration()
		if duration > slotLen {
			continue
		}
		if !p.IsOpenAt(date, item.StartMin, duration) {
			continue
		}
		cands = append(cands, replacement{poi: p, sim: e.simWeights.Similarity(orig, p)})
	}
	if len(cands) == 0 {
		return errors.NoCandidate("没有可放入原槽位的相似景点")
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].sim > cands[j].sim })
	best := cands[0].poi

	next := model.NewItem(model.ItemAttraction, item.StartMin, best.VisitDuration())
	next.ID = item.ID
	next.POI = best
	poiID := best.ID
	next.POIID = &poiID
	next.Label = best.Name
	next.CostEstimate = builder.EstimateCost(best, profile)
	next.TicketNote = builder.TicketNote(best)
	in := &score.Input{POI: best, Profile: profile, Trip: trip, ArrivalMin: item.StartMin}
	next.Reasons = explain.Reasons(in, e.scorer.Breakdown(in))
	next.Badges = explain.POIBadges(best, profile)
	plan.Items[idx] = next

	used.Release(orig.ID)
	used.Use(best.ID)

	e.reflow(plan, trip)
	e.log.EditApplied("replace", itemID.String())
	return nil
}

// RegenerateRange 重新生成两个条目之间（含端点）的行程片段
// pinned 中列出的景点保留原有先后顺序，其余片段内景点释放并重新挑选
func (e *Editor) RegenerateRange(plan *model.DayPlan, fromID, toID uuid.UUID, pinned []uuid.UUID, catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used *model.UsedPOISet) error {
	fromIdx := plan.FindItem(fromID)
	toIdx := plan.FindItem(toID)
	if fromIdx < 0 {
		return errors.ItemNotFound(fromID.String())
	}
	if toIdx < 0 {
		return errors.ItemNotFound(toID.String())
	}
	if fromIdx > toIdx {
		return errors.InvalidTimeRange(fromID.String(), toID.String())
	}
	for _, i := range []int{fromIdx, toIdx} {
		if plan.Items[i].Kind.Structural() {
			return errors.ItemNotEditable(string(plan.Items[i].Kind))
		}
	}
	if used == nil {
		used = model.NewUsedPOISet()
	}

	pinnedSet := make(map[uuid.UUID]bool, len(pinned))
	for _, id := range pinned {
		pinnedSet[id] = true
	}

	slotStart := plan.Items[fromIdx].StartMin
	slotEnd := e.cfg.DayEndMin
	if toIdx+1 < len(plan.Items) {
		slotEnd = plan.Items[toIdx+1].StartMin
	}

	// 片段内保留项按原序排队，其余释放进入冷却期；午餐始终保留
	var keep []model.ScheduleItem
	cooldown := used.Clone()
	for _, it := range plan.Items[fromIdx : toIdx+1] {
		switch {
		case it.Kind == model.ItemLunchBreak:
			keep = append(keep, it)
		case it.Kind != model.ItemAttraction || it.POIID == nil:
			// 交通、停车、自由活动随片段重建丢弃
		case pinnedSet[it.ID] || pinnedSet[*it.POIID]:
			keep = append(keep, it)
		default:
			used.Release(*it.POIID)
		}
	}

	lastPOI := lastAttractionPOI(plan.Items[:fromIdx])
	segment := e.rebuildSegment(keep, catalog, profile, trip, used, cooldown, lastPOI, slotStart, slotEnd)

	items := make([]model.ScheduleItem, 0, len(plan.Items))
	items = append(items, plan.Items[:fromIdx]...)
	items = append(items, segment...)
	items = append(items, plan.Items[toIdx+1:]...)
	plan.Items = items

	e.reflow(plan, trip)
	e.log.EditApplied("regenerate", fromID.String())
	return nil
}

// rebuildSegment 在槽位内贪心重建片段
// 新候选与待放置的保留项竞争空间：保留项永远能放下（放置顺序不变），
// 新候选必须在不挤占剩余保留项时长的前提下才会入选
func (e *Editor) rebuildSegment(keep []model.ScheduleItem, catalog []*model.POI, profile *model.UserProfile, trip *model.TripContext, used, cooldown *model.UsedPOISet, lastPOI *model.POI, slotStart, slotEnd int) []model.ScheduleItem {
	date := trip.ParsedDate()
	eligible := e.filters.Eligible(catalog, profile, trip)

	var segment []model.ScheduleItem
	cur := slotStart

	for {
		reserved := 0
		for _, k := range keep {
			reserved += k.DurationMin
		}

		type cand struct {
			poi       *model.POI
			travelMin int
			arrival   int
			duration  int
			score     float64
			input     *score.Input
		}
		var best *cand
		for _, p := range eligible {
			if used.Has(p.ID) || cooldown.Has(p.ID) {
				continue
			}
			travelMin := 0
			if lastPOI != nil {
				travelMin = e.estimator.Minutes(lastPOI.Location, p.Location, trip.Transport)
			}
			arrival := cur + travelMin
			duration := p.VisitDuration()
			if arrival+duration+reserved > slotEnd {
				continue
			}
			if !p.IsOpenAt(date, arrival, duration) {
				continue
			}
			in := &score.Input{POI: p, Profile: profile, Trip: trip, ArrivalMin: arrival, TravelMinutes: travelMin}
			s := e.scorer.Score(in)
			if best == nil || s > best.score {
				best = &cand{poi: p, travelMin: travelMin, arrival: arrival, duration: duration, score: s, input: in}
			}
		}

		if best != nil {
			if best.travelMin > 0 {
				transit := model.NewItem(model.ItemTransit, cur, best.travelMin)
				transit.TravelMode = trip.Transport
				segment = append(segment, transit)
			}
			attraction := model.NewItem(model.ItemAttraction, best.arrival, best.duration)
			attraction.POI = best.poi
			poiID := best.poi.ID
			attraction.POIID = &poiID
			attraction.Label = best.poi.Name
			attraction.CostEstimate = builder.EstimateCost(best.poi, profile)
			attraction.TicketNote = builder.TicketNote(best.poi)
			attraction.Reasons = explain.Reasons(best.input, e.scorer.Breakdown(best.input))
			attraction.Badges = explain.POIBadges(best.poi, profile)
			segment = append(segment, attraction)

			used.Use(best.poi.ID)
			cur = attraction.EndMin
			lastPOI = best.poi
			continue
		}

		if len(keep) == 0 {
			return segment
		}

		// 放置下一个保留项
		k := keep[0]
		keep = keep[1:]
		travelMin := 0
		if lastPOI != nil && k.POI != nil {
			travelMin = e.estimator.Minutes(lastPOI.Location, k.POI.Location, trip.Transport)
		}
		if travelMin > 0 {
			transit := model.NewItem(model.ItemTransit, cur, travelMin)
			transit.TravelMode = trip.Transport
			segment = append(segment, transit)
		}
		k.StartMin = cur + travelMin
		k.EndMin = k.StartMin + k.DurationMin
		segment = append(segment, k)
		cur = k.EndMin
		if k.POI != nil {
			lastPOI = k.POI
		}
	}
}

// Reflow 顺序重排整日时间线
// 编辑后条目时间可能出现空洞或挤压：从一日开始逐项推进，
// 景点会推迟到当日开放时刻，午餐贴靠正常窗口，最后做级联修复兜底
func (e *Editor) Reflow(plan *model.DayPlan, trip *model.TripContext) {
	e.reflow(plan, trip)
}

func (e *Editor) reflow(plan *model.DayPlan, trip *model.TripContext) {
	date := trip.ParsedDate()
	cur := e.cfg.DayStartMin

	for i := range plan.Items {
		it := &plan.Items[i]
		switch it.Kind {
		case model.ItemDayStart:
			it.StartMin = e.cfg.DayStartMin
			it.EndMin = it.StartMin
			cur = it.EndMin
		case model.ItemDayEnd:
			if cur < e.cfg.DayEndMin {
				it.StartMin = e.cfg.DayEndMin
			} else {
				it.StartMin = cur
			}
			it.EndMin = it.StartMin
		case model.ItemLunchBreak:
			start := cur
			if start < e.cfg.LunchStartMin {
				start = e.cfg.LunchStartMin
			}
			it.StartMin = start
			it.EndMin = start + it.DurationMin
			cur = it.EndMin
		case model.ItemAttraction:
			start := cur
			if it.POI != nil && !it.POI.IsOpenAt(date, start, it.DurationMin) {
				if open := openingAfter(it.POI, date, start); open > start {
					start = open
				}
			}
			it.StartMin = start
			it.EndMin = start + it.DurationMin
			cur = it.EndMin
		default:
			it.StartMin = cur
			it.EndMin = cur + it.DurationMin
			cur = it.EndMin
		}
	}

	if overlaps := timeline.Validate(plan.Items); len(overlaps) > 0 {
		var residual []timeline.Overlap
		plan.Items, residual = e.healer.Heal(plan.Items)
		plan.Warnings = timeline.Warnings(residual)
	}
}

// openingAfter 返回当日不早于 at 的开放时刻；当日闭馆或已开放时返回 at
func openingAfter(p *model.POI, date time.Time, at int) int {
	interval, open := p.HoursOn(date)
	if !open {
		return at
	}
	if interval.OpenMin > at {
		return interval.OpenMin
	}
	return at
}

// lastAttractionPOI 返回条目序列中最后一个景点的 POI
func lastAttractionPOI(items []model.ScheduleItem) *model.POI {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Kind == model.ItemAttraction && items[i].POI != nil {
			return items[i].POI
		}
	}
	return nil
}
