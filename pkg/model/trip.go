// Package model 定义行程规划引擎的核心数据模型
package model

import (
	"time"

	"github.com/xingcheng/xingcheng/pkg/timeutil"
)

// WeatherSnapshot 天气快照
// 由上层在规划前解析好传入，引擎不主动获取天气
type WeatherSnapshot struct {
	Precipitation bool    `json:"precipitation"`
	TempC         float64 `json:"temp_c"`
}

// Bad 判断是否为不适宜户外活动的天气
func (w WeatherSnapshot) Bad() bool {
	return w.Precipitation || w.TempC < 5
}

// TripContext 单日行程上下文
type TripContext struct {
	Date       string          `json:"date"` // YYYY-MM-DD
	Season     Season          `json:"season,omitempty"`
	Weather    WeatherSnapshot `json:"weather"`
	RegionType string          `json:"region_type,omitempty"` // city/countryside/coast
	Transport  TransportMode   `json:"transport"`
	HasCar     bool            `json:"has_car"`

	parsedDate *time.Time
}

// NewTripContext 创建行程上下文并推导季节
func NewTripContext(date string, weather WeatherSnapshot, transport TransportMode) (*TripContext, error) {
	d, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return &TripContext{
		Date:       date,
		Season:     SeasonForDate(d),
		Weather:    weather,
		Transport:  transport,
		HasCar:     transport == TransportCar,
		parsedDate: &d,
	}, nil
}

// ParsedDate 返回解析后的日期；解析失败时返回零值
func (c *TripContext) ParsedDate() time.Time {
	if c.parsedDate != nil {
		return *c.parsedDate
	}
	d, err := timeutil.ParseDate(c.Date)
	if err != nil {
		return time.Time{}
	}
	c.parsedDate = &d
	return d
}

// Weekday 返回行程日期对应的星期
func (c *TripContext) Weekday() time.Weekday {
	return c.ParsedDate().Weekday()
}

// DerivedSeason 返回季节；未显式设置时从日期推导
func (c *TripContext) DerivedSeason() Season {
	if c.Season != "" {
		return c.Season
	}
	return SeasonForDate(c.ParsedDate())
}

// TripRecord 已保存的多日行程
// 规划结果持久化后供后续编辑操作加载
type TripRecord struct {
	BaseModel
	Name    string      `json:"name" db:"name"`
	Region  string      `json:"region,omitempty" db:"region"`
	Profile UserProfile `json:"profile" db:"profile"`
	Days    []*DayPlan  `json:"days" db:"days"`
}

// DayByDate 按日期查找单日行程，未找到返回 nil
func (t *TripRecord) DayByDate(date string) *DayPlan {
	for _, d := range t.Days {
		if d.Date == date {
			return d
		}
	}
	return nil
}

// UserProfile 用户画像
type UserProfile struct {
	TargetGroup    TargetGroup `json:"target_group"`
	GroupSize      int         `json:"group_size"`
	ChildrenAge    int         `json:"children_age,omitempty"` // 最小孩子年龄，无孩子为 0
	CrowdTolerance CrowdLevel  `json:"crowd_tolerance,omitempty"`
	Budget         BudgetLevel `json:"budget,omitempty"`
	Preferences    []string    `json:"preferences,omitempty"` // 按优先级排序，前三项权重更高
	TravelStyle    TravelStyle `json:"travel_style,omitempty"`
}

// HasYoungChildren 是否带有低龄儿童（6 岁以下）
func (u *UserProfile) HasYoungChildren() bool {
	return u.TargetGroup == GroupFamily && u.ChildrenAge > 0 && u.ChildrenAge < 6
}

// PreferenceRank 返回标签在偏好列表中的位置，未命中返回 -1
func (u *UserProfile) PreferenceRank(tag string) int {
	for i, p := range u.Preferences {
		if p == tag {
			return i
		}
	}
	return -1
}
