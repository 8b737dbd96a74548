// Package timeline 提供行程时间线的校验与级联修复
package timeline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
)

// Overlap 结构化的时间重叠信息
type Overlap struct {
	Index          int            `json:"index"` // 冲突条目在排序后序列中的下标
	PrevID         uuid.UUID      `json:"prev_id"`
	ItemID         uuid.UUID      `json:"item_id"`
	PrevKind       model.ItemKind `json:"prev_kind"`
	Kind           model.ItemKind `json:"kind"`
	RequiredGapMin int            `json:"required_gap_min"`
	ActualGapMin   int            `json:"actual_gap_min"`
	ShortfallMin   int            `json:"shortfall_min"`
	Message        string         `json:"message"`
}

// requiredGap 返回相邻条目之间要求的最小间隔（分钟）
// 停车→景点 需要预留步行时间，其余情况为 0
func requiredGap(prev, next model.ScheduleItem) int {
	if prev.Kind == model.ItemParking && next.Kind == model.ItemAttraction {
		return prev.WalkMinutes
	}
	return 0
}

// sortItems 返回按开始时间稳定排序的副本
func sortItems(items []model.ScheduleItem) []model.ScheduleItem {
	sorted := make([]model.ScheduleItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMin < sorted[j].StartMin
	})
	return sorted
}

// Validate 检测时间线中的重叠
// 先按开始时间排序，再对每对相邻的计时条目比较实际间隔与要求间隔
func Validate(items []model.ScheduleItem) []Overlap {
	sorted := sortItems(items)

	var overlaps []Overlap
	prevIdx := -1
	for i, it := range sorted {
		if !it.Kind.Timed() && it.DurationMin == 0 {
			// 零时长的边界条目（DayStart/DayEnd）不参与重叠检测，
			// 但仍作为前驱参与排序
			continue
		}
		if prevIdx >= 0 {
			prev := sorted[prevIdx]
			required := requiredGap(prev, it)
			actual := it.StartMin - prev.EndMin
			if actual < required {
				overlaps = append(overlaps, Overlap{
					Index:          i,
					PrevID:         prev.ID,
					ItemID:         it.ID,
					PrevKind:       prev.Kind,
					Kind:           it.Kind,
					RequiredGapMin: required,
					ActualGapMin:   actual,
					ShortfallMin:   required - actual,
					Message: fmt.Sprintf("条目 %s(%s) 与 %s(%s) 间隔 %d 分钟，要求至少 %d 分钟",
						prev.Kind, timeutil.FormatClock(prev.EndMin),
						it.Kind, timeutil.FormatClock(it.StartMin),
						actual, required),
				})
			}
		}
		prevIdx = i
	}
	return overlaps
}
