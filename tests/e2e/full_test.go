// Package e2e 提供端到端流程测试
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/internal/handler"
	"github.com/xingcheng/xingcheng/internal/repository"
	"github.com/xingcheng/xingcheng/pkg/editor"
	"github.com/xingcheng/xingcheng/pkg/model"
	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// memCatalog 内存景点目录
type memCatalog struct {
	pois []*model.POI
}

func (c *memCatalog) ListByRegion(_ context.Context, _ string) ([]*model.POI, error) {
	return c.pois, nil
}

// memStore 内存行程存储
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.TripRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*model.TripRecord)}
}

func (s *memStore) Create(_ context.Context, trip *model.TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[trip.ID] = trip
	return nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*model.TripRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id], nil
}

func (s *memStore) Update(_ context.Context, trip *model.TripRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[trip.ID] = trip
	return nil
}

func (s *memStore) List(_ context.Context, _ repository.ListFilter) ([]*model.TripRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.TripRecord
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

func cityPOI(name string, tier model.PriorityTier, durationMin int, latOffset float64) *model.POI {
	return &model.POI{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Category:     "sight",
		Region:       "munich",
		Location:     model.Location{Latitude: 48.137 + latOffset, Longitude: 11.575},
		DurationMinM: durationMin,
		DurationMaxM: durationMin,
		Priority:     tier,
		Pricing:      model.TicketPricing{Normal: 14, Reduced: 9},
	}
}

// TestFullFlow_GenerateThenEdit 生成-持久化-编辑的完整流程
func TestFullFlow_GenerateThenEdit(t *testing.T) {
	catalog := &memCatalog{pois: []*model.POI{
		cityPOI("王宫", model.TierCore, 90, 0),
		cityPOI("大教堂", model.TierCore, 60, 0.005),
		cityPOI("美术馆", model.TierSecondary, 60, 0.010),
		cityPOI("河畔公园", model.TierSecondary, 45, 0.015),
		cityPOI("观景塔", model.TierOptional, 30, 0.020),
		cityPOI("手工市集", model.TierOptional, 30, 0.025),
	}}
	store := newMemStore()

	cfg := builder.DefaultConfig()
	planHandler := handler.NewPlanHandler(catalog, store, cfg, 42)
	ed := editor.New(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), cfg)
	editHandler := handler.NewEditHandler(catalog, store, ed)

	// 第一步：生成并持久化两日行程
	genBody, _ := json.Marshal(map[string]interface{}{
		"name":   "慕尼黑两日游",
		"region": "munich",
		"profile": map[string]interface{}{
			"target_group": "couple",
			"group_size":   2,
		},
		"days": []map[string]interface{}{
			{"date": "2026-10-03", "transport": "walk", "temp_c": 15},
			{"date": "2026-10-04", "transport": "walk", "temp_c": 16},
		},
	})
	genReq := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate", bytes.NewReader(genBody))
	genRec := httptest.NewRecorder()
	planHandler.Generate(genRec, genReq)

	if genRec.Code != http.StatusOK {
		t.Fatalf("生成失败: %d %s", genRec.Code, genRec.Body.String())
	}
	var genResp struct {
		Success bool   `json:"success"`
		PlanID  string `json:"plan_id"`
	}
	if err := json.Unmarshal(genRec.Body.Bytes(), &genResp); err != nil {
		t.Fatalf("解析生成响应失败: %v", err)
	}
	if genResp.PlanID == "" {
		t.Fatal("期望返回持久化的行程ID")
	}

	planID := uuid.MustParse(genResp.PlanID)
	record, _ := store.GetByID(context.Background(), planID)
	if record == nil || len(record.Days) != 2 {
		t.Fatal("行程未正确持久化")
	}

	// 第二步：移除第一天的一个景点
	day1 := record.Days[0]
	attractions := day1.Attractions()
	if len(attractions) == 0 {
		t.Fatal("第一天没有可移除的景点")
	}
	target := attractions[len(attractions)-1]

	editBody, _ := json.Marshal(map[string]interface{}{
		"plan_id": genResp.PlanID,
		"date":    day1.Date,
		"op":      "remove",
		"item_id": target.ID.String(),
	})
	editReq := httptest.NewRequest(http.MethodPost, "/api/v1/plans/edit", bytes.NewReader(editBody))
	editRec := httptest.NewRecorder()
	editHandler.Edit(editRec, editReq)

	if editRec.Code != http.StatusOK {
		t.Fatalf("编辑失败: %d %s", editRec.Code, editRec.Body.String())
	}
	var editResp struct {
		Success bool           `json:"success"`
		Day     *model.DayPlan `json:"day"`
	}
	if err := json.Unmarshal(editRec.Body.Bytes(), &editResp); err != nil {
		t.Fatalf("解析编辑响应失败: %v", err)
	}

	// 被移除的条目不再出现，结构性条目保持完整
	kinds := make(map[model.ItemKind]int)
	for _, it := range editResp.Day.Items {
		if it.ID == target.ID {
			t.Error("被移除的条目仍在行程中")
		}
		kinds[it.Kind]++
	}
	for _, k := range []model.ItemKind{model.ItemDayStart, model.ItemLunchBreak, model.ItemDayEnd} {
		if kinds[k] != 1 {
			t.Errorf("%s 出现 %d 次，期望恰好 1 次", k, kinds[k])
		}
	}

	// 编辑结果已写回存储
	updated, _ := store.GetByID(context.Background(), planID)
	for _, it := range updated.DayByDate(day1.Date).Items {
		if it.ID == target.ID {
			t.Error("存储中仍保留被移除的条目")
		}
	}

	// 第三步：移除结构性条目应被拒绝
	var lunchID uuid.UUID
	for _, it := range updated.DayByDate(day1.Date).Items {
		if it.Kind == model.ItemLunchBreak {
			lunchID = it.ID
		}
	}
	badBody, _ := json.Marshal(map[string]interface{}{
		"plan_id": genResp.PlanID,
		"date":    day1.Date,
		"op":      "remove",
		"item_id": lunchID.String(),
	})
	badReq := httptest.NewRequest(http.MethodPost, "/api/v1/plans/edit", bytes.NewReader(badBody))
	badRec := httptest.NewRecorder()
	editHandler.Edit(badRec, badReq)

	if badRec.Code == http.StatusOK {
		t.Error("移除午餐应被拒绝")
	}
}
