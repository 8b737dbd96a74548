// Package model 定义行程规划引擎的核心数据模型
package model

// POI 景点/兴趣点
// 规划运行期间视为不可变的参考数据
type POI struct {
	BaseModel
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description,omitempty" db:"description"`
	Category    string   `json:"category,omitempty" db:"category"` // museum/park/castle/viewpoint/...
	Location    Location `json:"location" db:"location"`
	Region      string   `json:"region,omitempty" db:"region"`

	// 游览时长范围（分钟）
	DurationMinM int `json:"duration_min" db:"duration_min"`
	DurationMaxM int `json:"duration_max" db:"duration_max"`

	// 开放时间：每周开放表 + 可选的季节性子开放表
	WeeklyHours   WeeklyHours        `json:"weekly_hours,omitempty" db:"weekly_hours"`
	SeasonalHours []SeasonalSchedule `json:"seasonal_hours,omitempty" db:"seasonal_hours"`
	Seasons       []Season           `json:"seasons,omitempty" db:"seasons"` // 为空表示全年适宜

	Pricing TicketPricing `json:"pricing" db:"pricing"`

	TargetGroups []TargetGroup     `json:"target_groups,omitempty" db:"target_groups"`
	Intensity    IntensityLevel    `json:"intensity,omitempty" db:"intensity"`
	Space        SpaceType         `json:"space,omitempty" db:"space"`
	WeatherDep   WeatherDependency `json:"weather_dependency,omitempty" db:"weather_dependency"`
	Recommended  DayPeriod         `json:"recommended_time,omitempty" db:"recommended_time"`
	CrowdLevel   CrowdLevel        `json:"crowd_level,omitempty" db:"crowd_level"`
	Priority     PriorityTier      `json:"priority" db:"priority"`
	Tags         []string          `json:"tags,omitempty" db:"tags"`

	Parking *ParkingInfo `json:"parking,omitempty" db:"parking"`
}

// TicketPricing 票价信息
type TicketPricing struct {
	Normal  float64 `json:"normal"`
	Reduced float64 `json:"reduced"`
	Free    bool    `json:"free"`
}

// ParkingInfo 停车信息
type ParkingInfo struct {
	Name        string   `json:"name,omitempty"`
	Address     string   `json:"address,omitempty"`
	Location    Location `json:"location"`
	WalkMinutes int      `json:"walk_minutes"`
}

// VisitDuration 返回推荐的游览时长（分钟）
// 取时长范围的中间值；数据缺失时返回 0
func (p *POI) VisitDuration() int {
	if p.DurationMinM <= 0 && p.DurationMaxM <= 0 {
		return 0
	}
	if p.DurationMaxM <= 0 {
		return p.DurationMinM
	}
	if p.DurationMinM <= 0 {
		return p.DurationMaxM
	}
	return (p.DurationMinM + p.DurationMaxM) / 2
}

// HasTag 检查是否包含指定标签
func (p *POI) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MatchesGroup 检查目标人群是否匹配
// 空人群列表表示适合所有人群
func (p *POI) MatchesGroup(group TargetGroup) bool {
	if len(p.TargetGroups) == 0 {
		return true
	}
	for _, g := range p.TargetGroups {
		if g == group {
			return true
		}
	}
	return false
}

// InSeason 检查季节是否适宜
// 空季节列表表示全年适宜
func (p *POI) InSeason(season Season) bool {
	if len(p.Seasons) == 0 {
		return true
	}
	for _, s := range p.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

// PriceFor 返回指定人群的单人票价估算
func (t TicketPricing) PriceFor(group TargetGroup, child bool) float64 {
	if t.Free {
		return 0
	}
	if child || group == GroupSeniors {
		if t.Reduced > 0 {
			return t.Reduced
		}
	}
	return t.Normal
}
