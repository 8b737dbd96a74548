// Package model 定义行程规划引擎的核心数据模型
package model

import (
	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/pkg/timeutil"
)

// ItemKind 行程条目类型
type ItemKind string

const (
	ItemDayStart   ItemKind = "day_start"
	ItemDayEnd     ItemKind = "day_end"
	ItemParking    ItemKind = "parking"
	ItemTransit    ItemKind = "transit"
	ItemAttraction ItemKind = "attraction"
	ItemLunchBreak ItemKind = "lunch_break"
	ItemFreeTime   ItemKind = "free_time"
)

// Structural 结构性条目不可被编辑操作移除
func (k ItemKind) Structural() bool {
	return k == ItemDayStart || k == ItemDayEnd || k == ItemLunchBreak
}

// Timed 是否为占用时间的条目
func (k ItemKind) Timed() bool {
	return k != ItemDayStart && k != ItemDayEnd
}

// ScheduleItem 行程条目（联合类型，Kind 决定有效字段）
// 条目按值传递；重排/修复操作返回新的序列而非原地修改
type ScheduleItem struct {
	ID          uuid.UUID `json:"id"`
	Kind        ItemKind  `json:"kind"`
	StartMin    int       `json:"start_min"`
	EndMin      int       `json:"end_min"`
	DurationMin int       `json:"duration_min"`
	Label       string    `json:"label,omitempty"`

	// Attraction 专有字段
	POIID        *uuid.UUID `json:"poi_id,omitempty"`
	POI          *POI       `json:"-"`
	CostEstimate float64    `json:"cost_estimate,omitempty"`
	TicketNote   string     `json:"ticket_note,omitempty"`
	Reasons      []string   `json:"reasons,omitempty"`
	Badges       []string   `json:"badges,omitempty"`

	// Transit 专有字段
	TravelMode TransportMode `json:"travel_mode,omitempty"`

	// Parking 专有字段
	WalkMinutes int `json:"walk_minutes,omitempty"`
}

// StartClock 返回开始时刻的 HH:MM 表示
func (i ScheduleItem) StartClock() string {
	return timeutil.FormatClock(i.StartMin)
}

// EndClock 返回结束时刻的 HH:MM 表示
func (i ScheduleItem) EndClock() string {
	return timeutil.FormatClock(i.EndMin)
}

// NewItem 创建行程条目
func NewItem(kind ItemKind, startMin, durationMin int) ScheduleItem {
	return ScheduleItem{
		ID:          uuid.New(),
		Kind:        kind,
		StartMin:    startMin,
		EndMin:      startMin + durationMin,
		DurationMin: durationMin,
	}
}

// DayPlan 单日行程
type DayPlan struct {
	Date     string         `json:"date"`
	Items    []ScheduleItem `json:"items"`
	Badges   []string       `json:"badges,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Attractions 返回所有景点条目
func (p *DayPlan) Attractions() []ScheduleItem {
	var out []ScheduleItem
	for _, it := range p.Items {
		if it.Kind == ItemAttraction {
			out = append(out, it)
		}
	}
	return out
}

// FindItem 按 ID 查找条目，返回下标；未找到返回 -1
func (p *DayPlan) FindItem(id uuid.UUID) int {
	for i, it := range p.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// TierCount 返回指定优先级层级的景点数量
func (p *DayPlan) TierCount(tier PriorityTier) int {
	n := 0
	for _, it := range p.Items {
		if it.Kind == ItemAttraction && it.POI != nil && it.POI.Priority == tier {
			n++
		}
	}
	return n
}

// UsedPOISet 已使用 POI 集合
// 作用域为单次行程（跨天共享）或单次编辑操作（含冷却排除）
type UsedPOISet struct {
	used map[uuid.UUID]bool
}

// NewUsedPOISet 创建空集合
func NewUsedPOISet() *UsedPOISet {
	return &UsedPOISet{used: make(map[uuid.UUID]bool)}
}

// Use 标记 POI 为已使用
func (s *UsedPOISet) Use(id uuid.UUID) {
	s.used[id] = true
}

// Has 检查 POI 是否已被使用
func (s *UsedPOISet) Has(id uuid.UUID) bool {
	return s.used[id]
}

// Release 释放 POI，使其可被重新选中
func (s *UsedPOISet) Release(id uuid.UUID) {
	delete(s.used, id)
}

// Len 返回集合大小
func (s *UsedPOISet) Len() int {
	return len(s.used)
}

// Clone 返回集合的独立副本
func (s *UsedPOISet) Clone() *UsedPOISet {
	c := NewUsedPOISet()
	for id := range s.used {
		c.used[id] = true
	}
	return c
}

// Seed 批量标记已使用的 POI
func (s *UsedPOISet) Seed(ids []uuid.UUID) {
	for _, id := range ids {
		s.used[id] = true
	}
}
