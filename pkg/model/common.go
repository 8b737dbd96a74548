// Package model 定义行程规划引擎的核心数据模型
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// Location 地理位置
type Location struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	District  string  `json:"district,omitempty"`
}

// Valid 检查坐标是否有效
// (0,0) 视为缺失坐标，规划时按数据不完整处理
func (l Location) Valid() bool {
	if l.Latitude == 0 && l.Longitude == 0 {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Distance 计算两个位置之间的距离（公里）
// 使用 Haversine 公式
func (l Location) Distance(other Location) float64 {
	const earthRadius = 6371.0 // 地球半径（公里）

	lat1Rad := l.Latitude * math.Pi / 180
	lat2Rad := other.Latitude * math.Pi / 180
	deltaLat := (other.Latitude - l.Latitude) * math.Pi / 180
	deltaLon := (other.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// TargetGroup 目标人群
type TargetGroup string

const (
	GroupFamily  TargetGroup = "family"  // 亲子家庭
	GroupCouple  TargetGroup = "couple"  // 情侣
	GroupSeniors TargetGroup = "seniors" // 老年人
	GroupFriends TargetGroup = "friends" // 朋友结伴
	GroupSolo    TargetGroup = "solo"    // 独行
)

// IntensityLevel 活动强度
type IntensityLevel string

const (
	IntensityLow    IntensityLevel = "low"
	IntensityMedium IntensityLevel = "medium"
	IntensityHigh   IntensityLevel = "high"
)

// Rank 返回强度的序数（用于比较和相似度计算）
func (i IntensityLevel) Rank() int {
	switch i {
	case IntensityLow:
		return 0
	case IntensityMedium:
		return 1
	case IntensityHigh:
		return 2
	default:
		return -1
	}
}

// SpaceType 室内/室外类型
type SpaceType string

const (
	SpaceIndoor  SpaceType = "indoor"
	SpaceOutdoor SpaceType = "outdoor"
	SpaceMixed   SpaceType = "both"
)

// WeatherDependency 天气依赖程度
type WeatherDependency string

const (
	WeatherDepLow    WeatherDependency = "low"
	WeatherDepMedium WeatherDependency = "medium"
	WeatherDepHigh   WeatherDependency = "high"
)

// DayPeriod 一天中的时段
type DayPeriod string

const (
	PeriodMorning   DayPeriod = "morning"   // 06:00-12:00
	PeriodAfternoon DayPeriod = "afternoon" // 12:00-18:00
	PeriodEvening   DayPeriod = "evening"   // 18:00-24:00
	PeriodAny       DayPeriod = "any"
)

// PeriodOfMinute 返回当日分钟数所属的时段
func PeriodOfMinute(minute int) DayPeriod {
	switch {
	case minute < 12*60:
		return PeriodMorning
	case minute < 18*60:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// CrowdLevel 人流水平
type CrowdLevel string

const (
	CrowdLow    CrowdLevel = "low"
	CrowdMedium CrowdLevel = "medium"
	CrowdHigh   CrowdLevel = "high"
)

// Rank 返回人流水平的序数
func (c CrowdLevel) Rank() int {
	switch c {
	case CrowdLow:
		return 0
	case CrowdMedium:
		return 1
	case CrowdHigh:
		return 2
	default:
		return -1
	}
}

// PriorityTier 优先级层级
type PriorityTier string

const (
	TierCore      PriorityTier = "core"      // 必游
	TierSecondary PriorityTier = "secondary" // 推荐
	TierOptional  PriorityTier = "optional"  // 备选
)

// TransportMode 交通方式
type TransportMode string

const (
	TransportWalk   TransportMode = "walk"
	TransportBike   TransportMode = "bike"
	TransportCar    TransportMode = "car"
	TransportPublic TransportMode = "public"
)

// BudgetLevel 预算水平
type BudgetLevel string

const (
	BudgetLow    BudgetLevel = "low"
	BudgetMedium BudgetLevel = "medium"
	BudgetHigh   BudgetLevel = "high"
)

// TravelStyle 旅行风格
type TravelStyle string

const (
	StyleRelaxed  TravelStyle = "relaxed"  // 休闲
	StyleCultural TravelStyle = "cultural" // 人文
	StyleActive   TravelStyle = "active"   // 活力
	StyleFoodie   TravelStyle = "foodie"   // 美食
)

// Season 季节
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// SeasonForDate 根据日期推导季节（北半球）
func SeasonForDate(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
