// Package explain 从评分信号派生用户可见的推荐理由和质量标签
package explain

import (
	"fmt"
	"sort"

	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
)

// fallbackReason 兜底理由，保证每个景点至少有一条
const fallbackReason = "综合评分适合排入当日行程"

// maxReasons 理由数量上限
const maxReasons = 3

// rankedReason 候选理由及其排序依据
type rankedReason struct {
	text  string
	value float64
}

// Reasons 为已排入的景点生成最多三条推荐理由
//
// 理由严格派生自评分引擎实际计算出的信号：只有贡献为正的信号
// 才会被转写为理由，且理由文本必须被 POI 的真实属性支撑。
// 任何情况下至少返回一条（兜底理由）
func Reasons(in *score.Input, breakdown []score.Contribution) []string {
	if in == nil || in.POI == nil {
		return []string{fallbackReason}
	}

	byName := make(map[string]float64, len(breakdown))
	for _, c := range breakdown {
		byName[c.Name] = c.Value
	}

	var candidates []rankedReason

	// 必游层级
	if v := byName[score.NamePriority]; v > 0 && in.POI.Priority == model.TierCore {
		candidates = append(candidates, rankedReason{
			text:  "当地必游的核心景点",
			value: v,
		})
	}

	// 偏好标签命中
	if v := byName[score.NamePreference]; v > 0 && in.Profile != nil {
		if tag := firstMatchedPreference(in.POI, in.Profile); tag != "" {
			candidates = append(candidates, rankedReason{
				text:  fmt.Sprintf("匹配你的兴趣偏好「%s」", tag),
				value: v,
			})
		}
	}

	// 人群/风格画像匹配
	if v := byName[score.NameStyle]; v > 0 && in.Profile != nil {
		candidates = append(candidates, rankedReason{
			text:  fmt.Sprintf("与%s的出行画像契合", groupLabel(in.Profile.TargetGroup)),
			value: v,
		})
	}

	// 人流匹配（真实人流水平，而非知名度）
	if v := byName[score.NameCrowd]; v > 0 && in.Profile != nil {
		switch in.POI.CrowdLevel {
		case model.CrowdLow:
			candidates = append(candidates, rankedReason{text: "人流较少，游览体验清静", value: v})
		case model.CrowdHigh:
			candidates = append(candidates, rankedReason{text: "氛围热闹，符合你的偏好", value: v})
		}
	}

	// 预算匹配
	if v := byName[score.NameBudget]; v > 0 {
		if in.POI.Pricing.Free {
			candidates = append(candidates, rankedReason{text: "免费入场", value: v})
		} else {
			candidates = append(candidates, rankedReason{text: "票价符合预算", value: v})
		}
	}

	// 按信号强度排序，取前三
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value > candidates[j].value
	})

	out := make([]string, 0, maxReasons)
	for _, c := range candidates {
		if len(out) >= maxReasons {
			break
		}
		out = append(out, c.text)
	}
	if len(out) == 0 {
		out = append(out, fallbackReason)
	}
	return out
}

// firstMatchedPreference 返回 POI 标签中命中用户偏好且排序最靠前的一个
func firstMatchedPreference(poi *model.POI, profile *model.UserProfile) string {
	best := ""
	bestRank := -1
	for _, tag := range poi.Tags {
		rank := profile.PreferenceRank(tag)
		if rank < 0 {
			continue
		}
		if bestRank == -1 || rank < bestRank {
			best = tag
			bestRank = rank
		}
	}
	return best
}

// groupLabel 返回人群的中文标签
func groupLabel(g model.TargetGroup) string {
	switch g {
	case model.GroupFamily:
		return "亲子家庭"
	case model.GroupSeniors:
		return "老年游客"
	case model.GroupCouple:
		return "情侣"
	case model.GroupFriends:
		return "朋友结伴"
	case model.GroupSolo:
		return "独行旅客"
	default:
		return "当前"
	}
}
