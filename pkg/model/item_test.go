package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestUsedPOISet(t *testing.T) {
	set := NewUsedPOISet()
	id := uuid.New()

	if set.Has(id) {
		t.Error("new set should be empty")
	}

	set.Use(id)
	if !set.Has(id) {
		t.Error("expected id to be used")
	}
	if set.Len() != 1 {
		t.Errorf("expected len 1, got %d", set.Len())
	}

	set.Release(id)
	if set.Has(id) {
		t.Error("released id should not be used")
	}
}

func TestUsedPOISet_Clone(t *testing.T) {
	set := NewUsedPOISet()
	id := uuid.New()
	set.Use(id)

	clone := set.Clone()
	clone.Use(uuid.New())

	// 副本独立，不影响原集合
	if set.Len() != 1 {
		t.Errorf("original set mutated: len %d", set.Len())
	}
	if clone.Len() != 2 {
		t.Errorf("clone expected len 2, got %d", clone.Len())
	}
}

func TestItemKind_Structural(t *testing.T) {
	structural := []ItemKind{ItemDayStart, ItemDayEnd, ItemLunchBreak}
	for _, k := range structural {
		if !k.Structural() {
			t.Errorf("%s should be structural", k)
		}
	}
	editable := []ItemKind{ItemAttraction, ItemTransit, ItemFreeTime, ItemParking}
	for _, k := range editable {
		if k.Structural() {
			t.Errorf("%s should not be structural", k)
		}
	}
}

func TestNewItem(t *testing.T) {
	it := NewItem(ItemAttraction, 600, 90)
	if it.StartMin != 600 || it.EndMin != 690 || it.DurationMin != 90 {
		t.Errorf("unexpected item timing: %d-%d (%d)", it.StartMin, it.EndMin, it.DurationMin)
	}
	if it.StartClock() != "10:00" || it.EndClock() != "11:30" {
		t.Errorf("unexpected clocks: %s-%s", it.StartClock(), it.EndClock())
	}
}

func TestDayPlan_TierCount(t *testing.T) {
	core := &POI{BaseModel: NewBaseModel(), Priority: TierCore}
	opt := &POI{BaseModel: NewBaseModel(), Priority: TierOptional}

	plan := &DayPlan{
		Date: "2026-07-04",
		Items: []ScheduleItem{
			{Kind: ItemDayStart},
			{Kind: ItemAttraction, POI: core},
			{Kind: ItemAttraction, POI: core},
			{Kind: ItemAttraction, POI: opt},
			{Kind: ItemDayEnd},
		},
	}

	if got := plan.TierCount(TierCore); got != 2 {
		t.Errorf("TierCount(core) = %d, want 2", got)
	}
	if got := plan.TierCount(TierSecondary); got != 0 {
		t.Errorf("TierCount(secondary) = %d, want 0", got)
	}
	if len(plan.Attractions()) != 3 {
		t.Errorf("Attractions() = %d, want 3", len(plan.Attractions()))
	}
}
