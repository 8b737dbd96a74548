// Package score 提供多因子 POI 评分引擎
package score

import (
	"github.com/xingcheng/xingcheng/pkg/model"
)

// 贡献者名称（也是可解释性输出的信号键）
const (
	NamePreference = "preference_match"
	NamePriority   = "priority_tier"
	NameCrowd      = "crowd_fit"
	NameBudget     = "budget_fit"
	NameStyle      = "style_match"
	NameWeather    = "weather_fit"
	NameTimeOfDay  = "time_of_day_fit"
	NameIntensity  = "intensity_fit"
	NameSpace      = "space_fit"
	NameFatigue    = "fatigue"
	NameTravel     = "travel_penalty"
)

// preferenceContributor 偏好标签命中
// 前三个偏好按约两倍权重计算
type preferenceContributor struct{ w Weights }

func (c *preferenceContributor) Name() string { return NamePreference }

func (c *preferenceContributor) Score(in *Input) float64 {
	if in.Profile == nil || len(in.Profile.Preferences) == 0 {
		return 0
	}
	var total float64
	for _, tag := range in.POI.Tags {
		rank := in.Profile.PreferenceRank(tag)
		if rank < 0 {
			continue
		}
		if rank < 3 {
			total += c.w.PreferenceMatch * c.w.TopPreferenceBoost
		} else {
			total += c.w.PreferenceMatch
		}
	}
	return total
}

// priorityContributor 优先级层级加成
type priorityContributor struct{ w Weights }

func (c *priorityContributor) Name() string { return NamePriority }

func (c *priorityContributor) Score(in *Input) float64 {
	switch in.POI.Priority {
	case model.TierCore:
		return c.w.PriorityCore
	case model.TierSecondary:
		return c.w.PrioritySecondary
	default:
		return 0
	}
}

// crowdContributor 人流承受度匹配
// 对称匹配：低承受度奖励低人流，高承受度奖励高人流，错配受罚。
// 比较的是 POI 的实际人流水平，而非其知名度
type crowdContributor struct{ w Weights }

func (c *crowdContributor) Name() string { return NameCrowd }

func (c *crowdContributor) Score(in *Input) float64 {
	if in.Profile == nil {
		return 0
	}
	tolerance := in.Profile.CrowdTolerance.Rank()
	crowd := in.POI.CrowdLevel.Rank()
	if tolerance < 0 || crowd < 0 {
		return 0
	}
	switch diff := abs(tolerance - crowd); diff {
	case 0:
		return c.w.CrowdFit
	case 1:
		return 0
	default:
		return -c.w.CrowdFit
	}
}

// budgetContributor 预算匹配
// 免费入场特殊处理：任何预算水平都获得奖励
type budgetContributor struct{ w Weights }

func (c *budgetContributor) Name() string { return NameBudget }

func (c *budgetContributor) Score(in *Input) float64 {
	if in.Profile == nil || in.Profile.Budget == "" {
		return 0
	}
	if in.POI.Pricing.Free {
		return c.w.BudgetFit
	}

	price := in.POI.Pricing.Normal
	var priceTier int
	switch {
	case price <= 10:
		priceTier = 0
	case price <= 25:
		priceTier = 1
	default:
		priceTier = 2
	}

	var budgetTier int
	switch in.Profile.Budget {
	case model.BudgetLow:
		budgetTier = 0
	case model.BudgetMedium:
		budgetTier = 1
	default:
		budgetTier = 2
	}

	switch {
	case priceTier <= budgetTier:
		return c.w.BudgetFit / 2
	case priceTier-budgetTier == 1:
		return -c.w.BudgetFit / 2
	default:
		return -c.w.BudgetFit
	}
}

// 人群类型 × POI 类别的加成/惩罚表，取值范围 [-1, 1]
var groupCategoryTable = map[model.TargetGroup]map[string]float64{
	model.GroupFamily: {
		"zoo": 1, "theme_park": 1, "playground": 1, "museum": 0.3,
		"nightlife": -1, "winery": -0.8, "casino": -1,
	},
	model.GroupSeniors: {
		"garden": 0.8, "museum": 0.8, "castle": 0.6, "church": 0.6,
		"theme_park": -0.6, "nightlife": -1, "climbing": -1,
	},
	model.GroupCouple: {
		"viewpoint": 0.8, "winery": 0.8, "castle": 0.5, "nightlife": 0.4,
		"playground": -0.8,
	},
	model.GroupFriends: {
		"nightlife": 0.8, "theme_park": 0.6, "brewery": 0.6, "viewpoint": 0.3,
	},
	model.GroupSolo: {
		"museum": 0.6, "viewpoint": 0.5, "gallery": 0.5,
	},
}

// 旅行风格 × POI 类别的加成/惩罚表
var styleCategoryTable = map[model.TravelStyle]map[string]float64{
	model.StyleRelaxed: {
		"garden": 0.8, "park": 0.8, "spa": 1, "viewpoint": 0.5,
		"climbing": -0.8, "theme_park": -0.4,
	},
	model.StyleCultural: {
		"museum": 1, "castle": 0.8, "church": 0.8, "gallery": 0.8, "old_town": 0.6,
		"theme_park": -0.4,
	},
	model.StyleActive: {
		"climbing": 1, "hiking": 1, "bike_tour": 0.8, "theme_park": 0.5,
		"museum": -0.3,
	},
	model.StyleFoodie: {
		"market": 1, "winery": 0.8, "brewery": 0.8, "food_tour": 1,
	},
}

// styleContributor 人群/风格与 POI 类别的匹配矩阵
type styleContributor struct{ w Weights }

func (c *styleContributor) Name() string { return NameStyle }

func (c *styleContributor) Score(in *Input) float64 {
	if in.Profile == nil || in.POI.Category == "" {
		return 0
	}
	var factor float64
	if table, ok := groupCategoryTable[in.Profile.TargetGroup]; ok {
		factor += table[in.POI.Category]
	}
	if table, ok := styleCategoryTable[in.Profile.TravelStyle]; ok {
		factor += table[in.POI.Category]
	}
	return c.w.StyleMatch * factor
}

// weatherContributor 天气依赖度调整
// 坏天气惩罚高依赖度 POI，好天气轻微奖励
type weatherContributor struct{ w Weights }

func (c *weatherContributor) Name() string { return NameWeather }

func (c *weatherContributor) Score(in *Input) float64 {
	if in.Trip == nil || in.POI.WeatherDep == "" {
		return 0
	}
	bad := in.Trip.Weather.Bad()
	switch in.POI.WeatherDep {
	case model.WeatherDepHigh:
		if bad {
			return -c.w.Weather
		}
		return c.w.Weather / 2
	case model.WeatherDepMedium:
		if bad {
			return -c.w.Weather / 2
		}
		return 0
	default:
		return 0
	}
}

// timeOfDayContributor 推荐时段匹配
// 以实际到达时刻而非全天笼统判断：完全命中强奖励，相邻时段弱奖励，
// 相反时段（尤其是夜间场所被排进白天）强惩罚
type timeOfDayContributor struct{ w Weights }

func (c *timeOfDayContributor) Name() string { return NameTimeOfDay }

func (c *timeOfDayContributor) Score(in *Input) float64 {
	rec := in.POI.Recommended
	if rec == "" || rec == model.PeriodAny {
		return 0
	}
	actual := model.PeriodOfMinute(in.ArrivalMin)
	if rec == actual {
		return c.w.TimeOfDay
	}
	if adjacentPeriods(rec, actual) {
		return c.w.TimeOfDay * 0.3
	}
	return -c.w.TimeOfDay
}

// adjacentPeriods 判断两个时段是否相邻
func adjacentPeriods(a, b model.DayPeriod) bool {
	if a == model.PeriodAfternoon || b == model.PeriodAfternoon {
		return a != b
	}
	return false
}

// intensityContributor 活动强度软匹配
// 硬排除之外的群体倾向权重
type intensityContributor struct{ w Weights }

func (c *intensityContributor) Name() string { return NameIntensity }

func (c *intensityContributor) Score(in *Input) float64 {
	if in.Profile == nil {
		return 0
	}
	rank := in.POI.Intensity.Rank()
	if rank < 0 {
		return 0
	}

	switch {
	case in.Profile.TargetGroup == model.GroupSeniors || in.Profile.HasYoungChildren():
		// 偏好低强度
		switch rank {
		case 0:
			return c.w.IntensityFit / 2
		case 1:
			return -c.w.IntensityFit / 3
		default:
			return -c.w.IntensityFit
		}
	case in.Profile.TravelStyle == model.StyleActive:
		// 偏好高强度
		switch rank {
		case 2:
			return c.w.IntensityFit / 2
		case 0:
			return -c.w.IntensityFit / 3
		default:
			return 0
		}
	default:
		return 0
	}
}

// spaceContributor 室内/室外与天气和偏好的匹配
type spaceContributor struct{ w Weights }

func (c *spaceContributor) Name() string { return NameSpace }

func (c *spaceContributor) Score(in *Input) float64 {
	if in.Trip == nil || in.POI.Space == "" {
		return 0
	}
	bad := in.Trip.Weather.Bad()
	switch in.POI.Space {
	case model.SpaceIndoor:
		if bad {
			return c.w.SpaceFit
		}
		return 0
	case model.SpaceOutdoor:
		if bad {
			return -c.w.SpaceFit
		}
		return c.w.SpaceFit / 2
	default:
		// both：任何天气都可行，轻微加成
		return c.w.SpaceFit / 4
	}
}

// fatigueContributor 疲劳/体力衰减
// 当日已排景点越多，高强度 POI 的吸引力越低
type fatigueContributor struct{ w Weights }

func (c *fatigueContributor) Name() string { return NameFatigue }

func (c *fatigueContributor) Score(in *Input) float64 {
	if in.Fatigue <= 0 {
		return 0
	}
	factor := 1.0
	switch in.POI.Intensity {
	case model.IntensityHigh:
		factor = 1.6
	case model.IntensityMedium:
		factor = 1.2
	}
	return -c.w.FatiguePenalty * (in.Fatigue / 100) * factor
}

// travelContributor 交通耗时惩罚
type travelContributor struct{ w Weights }

func (c *travelContributor) Name() string { return NameTravel }

func (c *travelContributor) Score(in *Input) float64 {
	if in.TravelMinutes <= 0 {
		return 0
	}
	return -c.w.TravelPenalty * float64(in.TravelMinutes)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
