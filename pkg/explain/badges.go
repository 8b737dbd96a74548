// Package explain 从评分信号派生用户可见的推荐理由和质量标签
package explain

import (
	"github.com/xingcheng/xingcheng/pkg/model"
)

// 质量标签只由 POI 的静态属性和用户画像决定，
// 与具体排入的时刻无关：同一 POI + 同一画像在任何一次运行中
// 都会得到完全相同的标签

// POIBadges 计算单个景点的质量标签
func POIBadges(poi *model.POI, profile *model.UserProfile) []string {
	if poi == nil {
		return nil
	}
	var badges []string

	if poi.Priority == model.TierCore {
		badges = append(badges, "必游")
	}
	if poi.Pricing.Free {
		badges = append(badges, "免费")
	}
	if poi.Space == model.SpaceIndoor {
		badges = append(badges, "雨天备选")
	}
	if poi.CrowdLevel == model.CrowdLow {
		badges = append(badges, "小众清静")
	}

	if profile != nil {
		if profile.TargetGroup == model.GroupFamily && poi.MatchesGroup(model.GroupFamily) && len(poi.TargetGroups) > 0 {
			badges = append(badges, "亲子友好")
		}
		if profile.TargetGroup == model.GroupSeniors && poi.Intensity == model.IntensityLow {
			badges = append(badges, "轻松无负担")
		}
	}

	return badges
}

// DayBadges 计算单日行程的整体质量标签
func DayBadges(plan *model.DayPlan, profile *model.UserProfile) []string {
	if plan == nil {
		return nil
	}

	attractions := plan.Attractions()
	if len(attractions) == 0 {
		return nil
	}

	var badges []string

	free, indoor, core := 0, 0, 0
	for _, it := range attractions {
		if it.POI == nil {
			continue
		}
		if it.POI.Pricing.Free {
			free++
		}
		if it.POI.Space == model.SpaceIndoor {
			indoor++
		}
		if it.POI.Priority == model.TierCore {
			core++
		}
	}

	n := len(attractions)
	if n <= 3 {
		badges = append(badges, "轻松节奏")
	}
	if core >= 2 {
		badges = append(badges, "经典路线")
	}
	if free*2 >= n {
		badges = append(badges, "高性价比")
	}
	if indoor*3 >= n*2 {
		badges = append(badges, "室内为主")
	}

	return badges
}
