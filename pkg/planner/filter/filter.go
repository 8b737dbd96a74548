// Package filter 定义硬性排除规则接口和过滤链
package filter

import (
	"sync"

	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/model"
)

// Type 过滤器类型标识
type Type string

const (
	TypeMalformedData Type = "malformed_data"
	TypeTargetGroup   Type = "target_group"
	TypeIntensity     Type = "intensity"
	TypeSeasonality   Type = "seasonality"
)

// Filter 硬性排除规则接口
// 返回 true 表示将 POI 从候选集中排除；规则从不报错，数据缺失时默认不排除
type Filter interface {
	// Name 返回规则名称
	Name() string

	// Type 返回规则类型
	Type() Type

	// Excludes 判断 POI 是否被排除
	Excludes(poi *model.POI, profile *model.UserProfile, trip *model.TripContext) bool
}

// Chain 过滤链
type Chain struct {
	filters []Filter
	mu      sync.RWMutex
	logger  *logger.PlannerLogger
}

// NewChain 创建空过滤链
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
		logger:  logger.NewPlannerLogger(),
	}
}

// Default 创建包含全部内置规则的过滤链
func Default() *Chain {
	c := NewChain()
	c.Register(NewMalformedDataFilter())
	c.Register(NewTargetGroupFilter())
	c.Register(NewIntensityFilter())
	c.Register(NewSeasonalityFilter())
	return c
}

// Register 注册过滤器；同类型的已有规则被替换
func (c *Chain) Register(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.filters {
		if existing.Type() == f.Type() {
			c.filters[i] = f
			return
		}
	}
	c.filters = append(c.filters, f)
}

// Unregister 注销过滤器
func (c *Chain) Unregister(t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, f := range c.filters {
		if f.Type() == t {
			c.filters = append(c.filters[:i], c.filters[i+1:]...)
			return
		}
	}
}

// Count 返回过滤器数量
func (c *Chain) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.filters)
}

// ExcludedBy 返回排除 POI 的第一条规则名称
func (c *Chain) ExcludedBy(poi *model.POI, profile *model.UserProfile, trip *model.TripContext) (string, bool) {
	c.mu.RLock()
	filters := make([]Filter, len(c.filters))
	copy(filters, c.filters)
	c.mu.RUnlock()

	for _, f := range filters {
		if f.Excludes(poi, profile, trip) {
			return f.Name(), true
		}
	}
	return "", false
}

// Eligible 返回通过全部硬性规则的 POI 子集
func (c *Chain) Eligible(pois []*model.POI, profile *model.UserProfile, trip *model.TripContext) []*model.POI {
	out := make([]*model.POI, 0, len(pois))
	for _, p := range pois {
		if p == nil {
			continue
		}
		if rule, excluded := c.ExcludedBy(p, profile, trip); excluded {
			c.logger.FilterExcluded(p.Name, rule)
			continue
		}
		out = append(out, p)
	}
	return out
}
