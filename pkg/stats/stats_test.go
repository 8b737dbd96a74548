package stats

import (
	"strings"
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
)

func dayWithItems(date string, items ...model.ScheduleItem) *model.DayPlan {
	return &model.DayPlan{Date: date, Items: items}
}

func attraction(startMin, durationMin int, tier model.PriorityTier, cost float64) model.ScheduleItem {
	it := model.NewItem(model.ItemAttraction, startMin, durationMin)
	it.CostEstimate = cost
	it.POI = &model.POI{BaseModel: model.NewBaseModel(), Priority: tier}
	return it
}

func TestAnalyzeDay(t *testing.T) {
	plan := dayWithItems("2026-07-04",
		model.NewItem(model.ItemDayStart, 9*60, 0),
		attraction(9*60, 90, model.TierCore, 24),
		model.NewItem(model.ItemTransit, 10*60+30, 15),
		attraction(10*60+45, 60, model.TierSecondary, 0),
		model.NewItem(model.ItemLunchBreak, 12*60, 60),
		model.NewItem(model.ItemFreeTime, 13*60, 30),
		model.NewItem(model.ItemDayEnd, 19*60, 0),
	)

	s := DefaultAnalyzer().AnalyzeDay(plan)

	if s.Attractions != 2 {
		t.Errorf("attractions = %d, want 2", s.Attractions)
	}
	if s.VisitMinutes != 150 {
		t.Errorf("visit minutes = %d, want 150", s.VisitMinutes)
	}
	if s.TransitMinutes != 15 {
		t.Errorf("transit minutes = %d, want 15", s.TransitMinutes)
	}
	if s.FreeTimeMinutes != 30 {
		t.Errorf("free minutes = %d, want 30", s.FreeTimeMinutes)
	}
	if s.TicketCost != 24 {
		t.Errorf("ticket cost = %f, want 24", s.TicketCost)
	}
	if s.ByTier[model.TierCore] != 1 || s.ByTier[model.TierSecondary] != 1 {
		t.Errorf("tier breakdown wrong: %v", s.ByTier)
	}
	// (150+15)/600 = 27.5%
	if s.BusyRatio < 27.4 || s.BusyRatio > 27.6 {
		t.Errorf("busy ratio = %f, want ~27.5", s.BusyRatio)
	}
}

func TestAnalyzeDay_Nil(t *testing.T) {
	s := DefaultAnalyzer().AnalyzeDay(nil)
	if s.Attractions != 0 || s.BusyRatio != 0 {
		t.Errorf("nil plan should yield zero stats: %+v", s)
	}
}

func TestAnalyzeTrip(t *testing.T) {
	light := dayWithItems("2026-07-04", attraction(10*60, 60, model.TierCore, 10))
	heavy := dayWithItems("2026-07-05",
		attraction(9*60, 120, model.TierCore, 20),
		attraction(11*60+15, 120, model.TierSecondary, 15),
	)

	ts := DefaultAnalyzer().AnalyzeTrip([]*model.DayPlan{light, heavy})

	if ts.Days != 2 {
		t.Fatalf("days = %d, want 2", ts.Days)
	}
	if ts.TotalAttractions != 3 {
		t.Errorf("total attractions = %d, want 3", ts.TotalAttractions)
	}
	if ts.TotalTicketCost != 45 {
		t.Errorf("total cost = %f, want 45", ts.TotalTicketCost)
	}
	if ts.LightestDay != "2026-07-04" {
		t.Errorf("lightest day = %s", ts.LightestDay)
	}
	if ts.HeaviestDay != "2026-07-05" {
		t.Errorf("heaviest day = %s", ts.HeaviestDay)
	}
}

func TestGenerateReport(t *testing.T) {
	a := DefaultAnalyzer()
	ts := a.AnalyzeTrip([]*model.DayPlan{
		dayWithItems("2026-07-04", attraction(10*60, 90, model.TierCore, 12)),
	})

	report := a.GenerateReport(ts)
	for _, want := range []string{"行程统计报告", "2026-07-04", "1 个景点", "1小时30分钟"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
