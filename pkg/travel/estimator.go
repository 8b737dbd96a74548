// Package travel 提供交通时间估算
package travel

import (
	"math"

	"github.com/xingcheng/xingcheng/pkg/model"
)

// modeProfile 交通方式参数
type modeProfile struct {
	SpeedKmh    float64 // 平均速度
	OverheadMin int     // 固定额外耗时（等车/取车等）
}

// Estimator 基于大圆距离的交通时间估算器
type Estimator struct {
	profiles   map[model.TransportMode]modeProfile
	defaultMin int // 坐标缺失时的保守估算
	minMin     int // 非零距离的最小耗时
	maxMin     int // 单段交通的上限
}

// NewEstimator 创建估算器
func NewEstimator() *Estimator {
	return &Estimator{
		profiles: map[model.TransportMode]modeProfile{
			model.TransportWalk:   {SpeedKmh: 4.5, OverheadMin: 0},
			model.TransportBike:   {SpeedKmh: 15, OverheadMin: 2},
			model.TransportCar:    {SpeedKmh: 40, OverheadMin: 5},
			model.TransportPublic: {SpeedKmh: 25, OverheadMin: 8},
		},
		defaultMin: 15,
		minMin:     3,
		maxMin:     180,
	}
}

// Minutes 估算两点间的交通耗时（分钟）
// 坐标缺失或无效时返回保守默认值而非报错
func (e *Estimator) Minutes(from, to model.Location, mode model.TransportMode) int {
	if !from.Valid() || !to.Valid() {
		return e.defaultMin
	}

	km := from.Distance(to)
	if km < 0.05 {
		return 0
	}

	profile, ok := e.profiles[mode]
	if !ok {
		profile = e.profiles[model.TransportWalk]
	}

	minutes := int(math.Ceil(km/profile.SpeedKmh*60)) + profile.OverheadMin
	if minutes < e.minMin {
		minutes = e.minMin
	}
	if minutes > e.maxMin {
		minutes = e.maxMin
	}
	return minutes
}
