package timeline

import (
	"reflect"
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
)

// buildValidItems 构造一条合法时间线：09:00 景点 → 10:40 景点
func buildValidItems() []model.ScheduleItem {
	a := model.NewItem(model.ItemAttraction, 9*60, 90)
	tr := model.NewItem(model.ItemTransit, 10*60+30, 10)
	b := model.NewItem(model.ItemAttraction, 10*60+40, 60)
	return []model.ScheduleItem{a, tr, b}
}

func TestValidate_NoOverlap(t *testing.T) {
	if got := Validate(buildValidItems()); len(got) != 0 {
		t.Errorf("valid timeline should have no overlaps, got %d", len(got))
	}
}

func TestValidate_DetectsOverlap(t *testing.T) {
	a := model.NewItem(model.ItemAttraction, 9*60, 90) // 09:00-10:30
	b := model.NewItem(model.ItemAttraction, 10*60, 60)

	overlaps := Validate([]model.ScheduleItem{a, b})
	if len(overlaps) != 1 {
		t.Fatalf("expected 1 overlap, got %d", len(overlaps))
	}
	o := overlaps[0]
	if o.ShortfallMin != 30 {
		t.Errorf("shortfall = %d, want 30", o.ShortfallMin)
	}
	if o.PrevID != a.ID || o.ItemID != b.ID {
		t.Error("overlap references wrong items")
	}
}

func TestValidate_ParkingWalkGap(t *testing.T) {
	// 停车→景点 要求至少步行时间的间隔
	p := model.NewItem(model.ItemParking, 9*60, 5) // 09:00-09:05
	p.WalkMinutes = 8
	a := model.NewItem(model.ItemAttraction, 9*60+10, 60) // 间隔 5 < 8

	overlaps := Validate([]model.ScheduleItem{p, a})
	if len(overlaps) != 1 {
		t.Fatalf("expected walk-gap violation, got %d overlaps", len(overlaps))
	}
	if overlaps[0].RequiredGapMin != 8 || overlaps[0].ShortfallMin != 3 {
		t.Errorf("required=%d shortfall=%d, want 8/3", overlaps[0].RequiredGapMin, overlaps[0].ShortfallMin)
	}

	// 间隔足够时无冲突
	ok := model.NewItem(model.ItemAttraction, 9*60+13, 60)
	if got := Validate([]model.ScheduleItem{p, ok}); len(got) != 0 {
		t.Errorf("sufficient walk gap should pass, got %d overlaps", len(got))
	}
}

func TestHealer_CascadingShift(t *testing.T) {
	a := model.NewItem(model.ItemAttraction, 9*60, 90)  // 09:00-10:30
	b := model.NewItem(model.ItemAttraction, 10*60, 60) // 与 a 重叠 30 分钟
	c := model.NewItem(model.ItemAttraction, 11*60+10, 45)

	healed, residual := NewHealer().Heal([]model.ScheduleItem{a, b, c})
	if len(residual) != 0 {
		t.Fatalf("expected full heal, residual = %d", len(residual))
	}

	// 时长保持不变
	for i, it := range healed {
		if it.EndMin-it.StartMin != it.DurationMin {
			t.Errorf("item %d duration corrupted", i)
		}
	}
	// 修复后无重叠且顺序保持
	if len(Validate(healed)) != 0 {
		t.Error("healed timeline still has overlaps")
	}
	if healed[0].ID != a.ID || healed[1].ID != b.ID || healed[2].ID != c.ID {
		t.Error("relative order not preserved")
	}
	// b 被推迟到 a 结束之后
	if healed[1].StartMin != 10*60+30 {
		t.Errorf("b should start at 10:30, got %s", healed[1].StartClock())
	}
}

func TestHealer_ValidPlanUnchanged(t *testing.T) {
	items := buildValidItems()
	healed, residual := NewHealer().Heal(items)

	if len(residual) != 0 {
		t.Fatalf("valid plan should have no residual overlaps")
	}
	if !reflect.DeepEqual(items, healed) {
		t.Error("healing a valid plan should return it unchanged")
	}
}

func TestHealer_BoundedPasses(t *testing.T) {
	// 即使轮次上限极低也返回尽力结果而非报错
	a := model.NewItem(model.ItemAttraction, 9*60, 90)
	b := model.NewItem(model.ItemAttraction, 9*60, 60)
	c := model.NewItem(model.ItemAttraction, 9*60, 45)

	h := NewHealer()
	h.SetMaxPasses(1)
	healed, residual := h.Heal([]model.ScheduleItem{a, b, c})

	if len(healed) != 3 {
		t.Fatalf("best-effort result must keep all items")
	}
	// 一轮修不完三重重叠
	if len(residual) == 0 {
		t.Error("expected residual overlaps with 1 pass")
	}
	if len(Warnings(residual)) != len(residual) {
		t.Error("each residual overlap should produce one warning")
	}
}

func TestValidate_Idempotent(t *testing.T) {
	items := buildValidItems()
	for i := 0; i < 3; i++ {
		if got := Validate(items); len(got) != 0 {
			t.Fatalf("run %d: valid plan reported %d overlaps", i, len(got))
		}
	}
}
