package travel

import (
	"testing"

	"github.com/xingcheng/xingcheng/pkg/model"
)

var (
	// 慕尼黑市中心与英国花园，相距约 3 公里
	marienplatz   = model.Location{Latitude: 48.1374, Longitude: 11.5755}
	englishGarden = model.Location{Latitude: 48.1642, Longitude: 11.6056}
)

func TestMinutes_ModeOrdering(t *testing.T) {
	e := NewEstimator()

	walk := e.Minutes(marienplatz, englishGarden, model.TransportWalk)
	car := e.Minutes(marienplatz, englishGarden, model.TransportCar)

	if walk <= 0 || car <= 0 {
		t.Fatalf("expected positive estimates, walk=%d car=%d", walk, car)
	}
	// 步行应明显慢于驾车
	if walk <= car {
		t.Errorf("walk (%d) should take longer than car (%d)", walk, car)
	}
}

func TestMinutes_SameLocation(t *testing.T) {
	e := NewEstimator()
	if got := e.Minutes(marienplatz, marienplatz, model.TransportWalk); got != 0 {
		t.Errorf("same location should cost 0 minutes, got %d", got)
	}
}

func TestMinutes_InvalidCoordinates(t *testing.T) {
	e := NewEstimator()

	// 坐标缺失 → 保守默认值，不报错
	missing := model.Location{}
	if got := e.Minutes(missing, englishGarden, model.TransportWalk); got != e.defaultMin {
		t.Errorf("missing coords should yield default %d, got %d", e.defaultMin, got)
	}

	// 越界坐标同样处理
	bogus := model.Location{Latitude: 200, Longitude: 11}
	if got := e.Minutes(bogus, englishGarden, model.TransportCar); got != e.defaultMin {
		t.Errorf("invalid coords should yield default %d, got %d", e.defaultMin, got)
	}
}

func TestMinutes_UnknownModeFallsBackToWalk(t *testing.T) {
	e := NewEstimator()
	walk := e.Minutes(marienplatz, englishGarden, model.TransportWalk)
	unknown := e.Minutes(marienplatz, englishGarden, model.TransportMode("hoverboard"))
	if walk != unknown {
		t.Errorf("unknown mode should fall back to walk: %d != %d", unknown, walk)
	}
}

func TestMinutes_Capped(t *testing.T) {
	e := NewEstimator()
	// 跨洲距离被上限裁剪
	tokyo := model.Location{Latitude: 35.68, Longitude: 139.69}
	if got := e.Minutes(marienplatz, tokyo, model.TransportWalk); got != e.maxMin {
		t.Errorf("expected cap %d, got %d", e.maxMin, got)
	}
}
