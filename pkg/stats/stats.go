// Package stats 提供行程统计分析功能
package stats

import (
	"fmt"
	"strings"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
)

// DayStats 单日行程指标
type DayStats struct {
	Date string `json:"date"`

	// 条目构成
	Attractions int                        `json:"attractions"`
	ByTier      map[model.PriorityTier]int `json:"by_tier"`

	// 时间分配（分钟）
	VisitMinutes    int `json:"visit_minutes"`
	TransitMinutes  int `json:"transit_minutes"`
	FreeTimeMinutes int `json:"free_time_minutes"`
	LunchMinutes    int `json:"lunch_minutes"`

	// 忙碌度：游览+交通时间占全天窗口的比例 (%)
	BusyRatio float64 `json:"busy_ratio"`

	// 门票开销合计
	TicketCost float64 `json:"ticket_cost"`

	Warnings int `json:"warnings"`
}

// TripStats 多日行程汇总指标
type TripStats struct {
	Days             int        `json:"days"`
	Daily            []DayStats `json:"daily"`
	TotalAttractions int        `json:"total_attractions"`
	TotalTicketCost  float64    `json:"total_ticket_cost"`
	AvgBusyRatio     float64    `json:"avg_busy_ratio"`

	// 最松和最紧的一天（按忙碌度）
	LightestDay string `json:"lightest_day,omitempty"`
	HeaviestDay string `json:"heaviest_day,omitempty"`
}

// Analyzer 行程统计分析器
type Analyzer struct {
	dayStartMin int
	dayEndMin   int
}

// NewAnalyzer 创建统计分析器
func NewAnalyzer(dayStartMin, dayEndMin int) *Analyzer {
	return &Analyzer{dayStartMin: dayStartMin, dayEndMin: dayEndMin}
}

// AnalyzeDay 统计单日行程
func (a *Analyzer) AnalyzeDay(plan *model.DayPlan) DayStats {
	s := DayStats{ByTier: make(map[model.PriorityTier]int)}
	if plan == nil {
		return s
	}
	s.Date = plan.Date
	s.Warnings = len(plan.Warnings)

	for _, it := range plan.Items {
		switch it.Kind {
		case model.ItemAttraction:
			s.Attractions++
			s.VisitMinutes += it.DurationMin
			s.TicketCost += it.CostEstimate
			if it.POI != nil {
				s.ByTier[it.POI.Priority]++
			}
		case model.ItemTransit, model.ItemParking:
			s.TransitMinutes += it.DurationMin
		case model.ItemFreeTime:
			s.FreeTimeMinutes += it.DurationMin
		case model.ItemLunchBreak:
			s.LunchMinutes += it.DurationMin
		}
	}

	window := a.dayEndMin - a.dayStartMin
	if window > 0 {
		s.BusyRatio = float64(s.VisitMinutes+s.TransitMinutes) / float64(window) * 100
	}
	return s
}

// AnalyzeTrip 统计多日行程
func (a *Analyzer) AnalyzeTrip(days []*model.DayPlan) *TripStats {
	t := &TripStats{Days: len(days)}
	if len(days) == 0 {
		return t
	}

	sum := 0.0
	for _, day := range days {
		ds := a.AnalyzeDay(day)
		t.Daily = append(t.Daily, ds)
		t.TotalAttractions += ds.Attractions
		t.TotalTicketCost += ds.TicketCost
		sum += ds.BusyRatio

		if t.LightestDay == "" || ds.BusyRatio < a.busyOf(t, t.LightestDay) {
			t.LightestDay = ds.Date
		}
		if t.HeaviestDay == "" || ds.BusyRatio > a.busyOf(t, t.HeaviestDay) {
			t.HeaviestDay = ds.Date
		}
	}
	t.AvgBusyRatio = sum / float64(len(days))
	return t
}

// busyOf 查找已记录日期的忙碌度
func (a *Analyzer) busyOf(t *TripStats, date string) float64 {
	for _, d := range t.Daily {
		if d.Date == date {
			return d.BusyRatio
		}
	}
	return 0
}

// GenerateReport 生成可读的行程统计报告
func (a *Analyzer) GenerateReport(t *TripStats) string {
	var b strings.Builder
	b.WriteString("=== 行程统计报告 ===\n\n")

	b.WriteString("【整体概况】\n")
	fmt.Fprintf(&b, "  行程天数: %d\n", t.Days)
	fmt.Fprintf(&b, "  景点总数: %d\n", t.TotalAttractions)
	fmt.Fprintf(&b, "  门票合计: %.2f\n", t.TotalTicketCost)
	fmt.Fprintf(&b, "  平均忙碌度: %.1f%%\n\n", t.AvgBusyRatio)

	b.WriteString("【逐日明细】\n")
	for _, d := range t.Daily {
		fmt.Fprintf(&b, "  %s: %d 个景点, 游览 %s, 交通 %s, 忙碌度 %.1f%%\n",
			d.Date, d.Attractions,
			formatMinutes(d.VisitMinutes), formatMinutes(d.TransitMinutes), d.BusyRatio)
	}

	if t.LightestDay != "" && t.Days > 1 {
		fmt.Fprintf(&b, "\n  最轻松: %s  最紧凑: %s\n", t.LightestDay, t.HeaviestDay)
	}
	return b.String()
}

// formatMinutes 把分钟格式化为时长文本
func formatMinutes(min int) string {
	if min < 60 {
		return fmt.Sprintf("%d分钟", min)
	}
	if min%60 == 0 {
		return fmt.Sprintf("%d小时", min/60)
	}
	return fmt.Sprintf("%d小时%d分钟", min/60, min%60)
}

// DefaultAnalyzer 使用默认全天窗口创建分析器
func DefaultAnalyzer() *Analyzer {
	return NewAnalyzer(timeutil.MustParseClock("09:00"), timeutil.MustParseClock("19:00"))
}
