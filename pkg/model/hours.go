// Package model 定义行程规划引擎的核心数据模型
package model

import "time"

// OpenInterval 单日开放时段（当日分钟数）
type OpenInterval struct {
	OpenMin  int `json:"open"`
	CloseMin int `json:"close"`
}

// Covers 检查 [arrival, arrival+duration] 是否完全落在开放时段内
func (o OpenInterval) Covers(arrivalMin, durationMin int) bool {
	return o.OpenMin <= arrivalMin && arrivalMin+durationMin <= o.CloseMin
}

// WeeklyHours 每周开放表
// 缺少某个星期的条目表示该日闭馆；整表为空表示全天候开放
type WeeklyHours map[time.Weekday]OpenInterval

// MonthDay 月-日（用于跨年循环的季节性日期范围）
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// ordinal 返回月日的可比较序数
func (m MonthDay) ordinal() int {
	return int(m.Month)*100 + m.Day
}

// SeasonalSchedule 季节性子开放表
// From/To 为每年循环的日期范围，支持跨年（如 11-01 至 02-28）
type SeasonalSchedule struct {
	From  MonthDay    `json:"from"`
	To    MonthDay    `json:"to"`
	Hours WeeklyHours `json:"hours,omitempty"`
}

// ContainsDate 检查日期是否落在季节性范围内（忽略年份，支持跨年）
func (s SeasonalSchedule) ContainsDate(date time.Time) bool {
	d := MonthDay{Month: date.Month(), Day: date.Day()}.ordinal()
	from := s.From.ordinal()
	to := s.To.ordinal()
	if from <= to {
		return from <= d && d <= to
	}
	// 跨年范围
	return d >= from || d <= to
}

// IsOpenAt 判断 POI 在指定日期、到达时间、游览时长下是否开放
//
// 判定顺序：
//  1. 若存在季节性子开放表，日期必须落在至少一个范围内，否则闭馆；
//     命中的子表（若带有自己的每周开放表）优先于全局每周表；
//  2. 每周表非空但缺少该星期条目 ⇒ 当日闭馆；整表为空 ⇒ 全天候开放；
//  3. 开放时段必须完全覆盖 [arrival, arrival+duration]
func (p *POI) IsOpenAt(date time.Time, arrivalMin, durationMin int) bool {
	interval, open := p.HoursOn(date)
	if !open {
		return false
	}
	return interval.Covers(arrivalMin, durationMin)
}

// HoursOn 返回指定日期的有效开放时段
// 第二返回值为 false 表示当日闭馆；全天候开放返回 [00:00, 24:00]
func (p *POI) HoursOn(date time.Time) (OpenInterval, bool) {
	hours := p.WeeklyHours

	if len(p.SeasonalHours) > 0 {
		matched := false
		for _, sub := range p.SeasonalHours {
			if !sub.ContainsDate(date) {
				continue
			}
			matched = true
			if len(sub.Hours) > 0 {
				hours = sub.Hours
			}
			break
		}
		if !matched {
			return OpenInterval{}, false
		}
	}

	if len(hours) == 0 {
		return OpenInterval{OpenMin: 0, CloseMin: 24 * 60}, true
	}

	interval, ok := hours[date.Weekday()]
	return interval, ok
}
