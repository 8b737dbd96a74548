package editor

import (
	"math"

	"github.com/xingcheng/xingcheng/pkg/model"
)

// SimilarityWeights 替换候选相似度各维度权重
type SimilarityWeights struct {
	Tags         float64 `json:"tags"`
	TargetGroups float64 `json:"target_groups"`
	Intensity    float64 `json:"intensity"`
	Duration     float64 `json:"duration"`
}

// DefaultSimilarityWeights 返回默认相似度权重
// 标签重合占主导，人群/强度/时长作为次要信号
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{
		Tags:         0.5,
		TargetGroups: 0.25,
		Intensity:    0.125,
		Duration:     0.125,
	}
}

// Similarity 计算两个景点的相似度，范围 [0,1]
func (w SimilarityWeights) Similarity(a, b *model.POI) float64 {
	if a == nil || b == nil {
		return 0
	}
	s := w.Tags * jaccardStrings(a.Tags, b.Tags)
	s += w.TargetGroups * jaccardGroups(a.TargetGroups, b.TargetGroups)
	s += w.Intensity * intensityCloseness(a.Intensity, b.Intensity)
	s += w.Duration * durationCloseness(a.VisitDuration(), b.VisitDuration())
	return s
}

// jaccardStrings 字符串集合的 Jaccard 相似度；两侧均空视为完全相似
func jaccardStrings(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	inter := 0
	union := len(set)
	for _, s := range b {
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func jaccardGroups(a, b []model.TargetGroup) float64 {
	as := make([]string, len(a))
	for i, g := range a {
		as[i] = string(g)
	}
	bs := make([]string, len(b))
	for i, g := range b {
		bs[i] = string(g)
	}
	return jaccardStrings(as, bs)
}

// intensityCloseness 强度等级越接近越相似，相差两级为 0
func intensityCloseness(a, b model.IntensityLevel) float64 {
	diff := math.Abs(float64(a.Rank() - b.Rank()))
	return 1 - diff/2
}

// durationCloseness 游览时长的相对接近度
func durationCloseness(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0.5
	}
	longer := math.Max(float64(a), float64(b))
	return 1 - math.Abs(float64(a-b))/longer
}
