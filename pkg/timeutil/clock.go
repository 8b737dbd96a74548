// Package timeutil 提供时钟字符串与当日分钟数的转换工具
package timeutil

import (
	"fmt"
	"time"
)

// MinutesPerDay 一天的分钟数
const MinutesPerDay = 24 * 60

// ParseClock 解析 HH:MM 格式的时钟字符串，返回当日分钟数
func ParseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("时钟格式无效 '%s': %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MustParseClock 解析时钟字符串，失败时返回 0
// 用于常量和已校验输入的场景
func MustParseClock(clock string) int {
	m, err := ParseClock(clock)
	if err != nil {
		return 0
	}
	return m
}

// FormatClock 把当日分钟数格式化为 HH:MM
func FormatClock(minute int) string {
	minute = ClampDay(minute)
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ClampDay 把分钟数限制在 [0, MinutesPerDay] 范围内
func ClampDay(minute int) int {
	if minute < 0 {
		return 0
	}
	if minute > MinutesPerDay {
		return MinutesPerDay
	}
	return minute
}

// MinuteOfDay 返回时间点对应的当日分钟数
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseDate 解析 YYYY-MM-DD 格式的日期
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 '%s': %w", date, err)
	}
	return t, nil
}

// FormatDate 格式化日期为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
