// Package filter 定义硬性排除规则接口和过滤链
package filter

import (
	"github.com/xingcheng/xingcheng/pkg/model"
)

// MalformedDataFilter 数据不完整排除
// 缺少坐标或游览时长的 POI 无法被安全排入行程
type MalformedDataFilter struct{}

// NewMalformedDataFilter 创建数据不完整排除规则
func NewMalformedDataFilter() *MalformedDataFilter {
	return &MalformedDataFilter{}
}

// Name 返回规则名称
func (f *MalformedDataFilter) Name() string { return "数据不完整" }

// Type 返回规则类型
func (f *MalformedDataFilter) Type() Type { return TypeMalformedData }

// Excludes 判断 POI 是否被排除
func (f *MalformedDataFilter) Excludes(poi *model.POI, _ *model.UserProfile, _ *model.TripContext) bool {
	if poi == nil {
		return true
	}
	if !poi.Location.Valid() {
		return true
	}
	return poi.VisitDuration() <= 0
}

// TargetGroupFilter 目标人群排除
// POI 的人群列表非空时必须包含用户人群；空列表表示适合所有人
type TargetGroupFilter struct{}

// NewTargetGroupFilter 创建目标人群排除规则
func NewTargetGroupFilter() *TargetGroupFilter {
	return &TargetGroupFilter{}
}

// Name 返回规则名称
func (f *TargetGroupFilter) Name() string { return "目标人群不符" }

// Type 返回规则类型
func (f *TargetGroupFilter) Type() Type { return TypeTargetGroup }

// Excludes 判断 POI 是否被排除
func (f *TargetGroupFilter) Excludes(poi *model.POI, profile *model.UserProfile, _ *model.TripContext) bool {
	if profile == nil || profile.TargetGroup == "" {
		return false
	}
	return !poi.MatchesGroup(profile.TargetGroup)
}

// IntensityFilter 活动强度排除
// 高强度活动对老年人排除；带低龄儿童（6 岁以下）的家庭同样排除
type IntensityFilter struct{}

// NewIntensityFilter 创建活动强度排除规则
func NewIntensityFilter() *IntensityFilter {
	return &IntensityFilter{}
}

// Name 返回规则名称
func (f *IntensityFilter) Name() string { return "活动强度过高" }

// Type 返回规则类型
func (f *IntensityFilter) Type() Type { return TypeIntensity }

// Excludes 判断 POI 是否被排除
func (f *IntensityFilter) Excludes(poi *model.POI, profile *model.UserProfile, _ *model.TripContext) bool {
	if profile == nil || poi.Intensity != model.IntensityHigh {
		return false
	}
	if profile.TargetGroup == model.GroupSeniors {
		return true
	}
	return profile.HasYoungChildren()
}

// SeasonalityFilter 季节适宜性排除
// POI 的季节列表非空时必须包含行程日期对应的季节
type SeasonalityFilter struct{}

// NewSeasonalityFilter 创建季节适宜性排除规则
func NewSeasonalityFilter() *SeasonalityFilter {
	return &SeasonalityFilter{}
}

// Name 返回规则名称
func (f *SeasonalityFilter) Name() string { return "季节不适宜" }

// Type 返回规则类型
func (f *SeasonalityFilter) Type() Type { return TypeSeasonality }

// Excludes 判断 POI 是否被排除
func (f *SeasonalityFilter) Excludes(poi *model.POI, _ *model.UserProfile, trip *model.TripContext) bool {
	if trip == nil {
		return false
	}
	return !poi.InSeason(trip.DerivedSeason())
}
