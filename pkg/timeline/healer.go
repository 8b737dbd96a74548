// Package timeline 提供行程时间线的校验与级联修复
package timeline

import (
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
)

// DefaultMaxPasses 默认修复轮次上限
const DefaultMaxPasses = 10

// Healer 时间线修复器
// 对检测到的重叠执行级联前移：把冲突条目及其后所有条目整体
// 向后平移缺口大小，保持每个条目的时长和相对顺序不变
type Healer struct {
	maxPasses int
	logger    *logger.PlannerLogger
}

// NewHealer 创建修复器
func NewHealer() *Healer {
	return &Healer{
		maxPasses: DefaultMaxPasses,
		logger:    logger.NewPlannerLogger(),
	}
}

// SetMaxPasses 设置修复轮次上限
func (h *Healer) SetMaxPasses(n int) {
	if n > 0 {
		h.maxPasses = n
	}
}

// Heal 修复时间线
// 返回修复后的新序列和修复轮次耗尽后仍残留的重叠列表；
// 残留重叠作为结构化警告交由调用方决定取舍，从不报错。
// 输入序列不被修改
func (h *Healer) Heal(items []model.ScheduleItem) ([]model.ScheduleItem, []Overlap) {
	current := sortItems(items)

	for pass := 1; pass <= h.maxPasses; pass++ {
		overlaps := Validate(current)
		if len(overlaps) == 0 {
			return current, nil
		}
		h.logger.HealPass(pass, len(overlaps))

		// 只处理第一个重叠：级联平移会改变后续条目的间隔，
		// 下一轮重新校验
		first := overlaps[0]
		shift := first.ShortfallMin
		for i := first.Index; i < len(current); i++ {
			current[i].StartMin += shift
			current[i].EndMin += shift
		}
		current = sortItems(current)
	}

	residual := Validate(current)
	if len(residual) > 0 {
		h.logger.ResidualOverlaps(len(residual))
	}
	return current, residual
}

// Warnings 把残留重叠转为用户可读的警告文本
func Warnings(overlaps []Overlap) []string {
	if len(overlaps) == 0 {
		return nil
	}
	out := make([]string, 0, len(overlaps))
	for _, o := range overlaps {
		out = append(out, o.Message)
	}
	return out
}
