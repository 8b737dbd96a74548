// Package score 提供多因子 POI 评分引擎
//
// 评分被表达为一条固定顺序的贡献者流水线：每个贡献者针对
// (POI, 用户画像, 行程上下文, 当日运行状态) 返回一个数值贡献，
// 引擎将其求和为单一标量。权重集中在 Weights 中，是唯一的调参入口。
// 任何字段缺失时，对应贡献者退化为 0 贡献而非报错。
package score

import (
	"github.com/xingcheng/xingcheng/pkg/model"
)

// Input 单次评分的输入
type Input struct {
	POI     *model.POI
	Profile *model.UserProfile
	Trip    *model.TripContext

	// 当日运行状态
	ArrivalMin    int     // 候选到达时刻（当日分钟数）
	TravelMinutes int     // 距上一个已排景点的交通耗时
	Fatigue       float64 // 累计疲劳 [0,100]
}

// Contribution 单个贡献者的输出
type Contribution struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Contributor 评分贡献者接口
type Contributor interface {
	// Name 返回贡献者名称
	Name() string

	// Score 返回该信号的加权贡献；数据缺失时返回 0
	Score(in *Input) float64
}

// Weights 评分权重表
type Weights struct {
	PreferenceMatch    float64 `json:"preference_match"`     // 每个偏好标签命中
	TopPreferenceBoost float64 `json:"top_preference_boost"` // 前三偏好的倍率
	PriorityCore       float64 `json:"priority_core"`
	PrioritySecondary  float64 `json:"priority_secondary"`
	CrowdFit           float64 `json:"crowd_fit"`
	BudgetFit          float64 `json:"budget_fit"`
	StyleMatch         float64 `json:"style_match"`
	Weather            float64 `json:"weather"`
	TimeOfDay          float64 `json:"time_of_day"`
	IntensityFit       float64 `json:"intensity_fit"`
	SpaceFit           float64 `json:"space_fit"`
	FatiguePenalty     float64 `json:"fatigue_penalty"`
	TravelPenalty      float64 `json:"travel_penalty"` // 每分钟交通
}

// DefaultWeights 返回默认权重表
func DefaultWeights() Weights {
	return Weights{
		PreferenceMatch:    10,
		TopPreferenceBoost: 2.0,
		PriorityCore:       25,
		PrioritySecondary:  10,
		CrowdFit:           6,
		BudgetFit:          8,
		StyleMatch:         8,
		Weather:            10,
		TimeOfDay:          12,
		IntensityFit:       6,
		SpaceFit:           6,
		FatiguePenalty:     15,
		TravelPenalty:      0.3,
	}
}

// Engine 评分引擎：固定顺序的贡献者流水线
type Engine struct {
	contributors []Contributor
}

// NewEngine 按权重表创建引擎
func NewEngine(w Weights) *Engine {
	return &Engine{
		contributors: []Contributor{
			&preferenceContributor{w: w},
			&priorityContributor{w: w},
			&crowdContributor{w: w},
			&budgetContributor{w: w},
			&styleContributor{w: w},
			&weatherContributor{w: w},
			&timeOfDayContributor{w: w},
			&intensityContributor{w: w},
			&spaceContributor{w: w},
			&fatigueContributor{w: w},
			&travelContributor{w: w},
		},
	}
}

// Score 计算总分
func (e *Engine) Score(in *Input) float64 {
	if in == nil || in.POI == nil {
		return 0
	}
	var total float64
	for _, c := range e.contributors {
		total += c.Score(in)
	}
	return total
}

// Breakdown 返回逐贡献者的评分明细（用于可解释性输出）
func (e *Engine) Breakdown(in *Input) []Contribution {
	if in == nil || in.POI == nil {
		return nil
	}
	out := make([]Contribution, 0, len(e.contributors))
	for _, c := range e.contributors {
		out = append(out, Contribution{Name: c.Name(), Value: c.Score(in)})
	}
	return out
}
