package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/xingcheng/xingcheng/internal/metrics"
	"github.com/xingcheng/xingcheng/pkg/editor"
	"github.com/xingcheng/xingcheng/pkg/errors"
	"github.com/xingcheng/xingcheng/pkg/model"
)

// 编辑操作类型
const (
	OpRemove     = "remove"
	OpReplace    = "replace"
	OpRegenerate = "regenerate"
)

// EditHandler 行程编辑处理器
type EditHandler struct {
	pois   POICatalog
	plans  PlanStore
	editor *editor.Editor
}

// NewEditHandler 创建行程编辑处理器
func NewEditHandler(pois POICatalog, plans PlanStore, ed *editor.Editor) *EditHandler {
	return &EditHandler{pois: pois, plans: plans, editor: ed}
}

// EditRequest 行程编辑请求
type EditRequest struct {
	PlanID string `json:"plan_id"`
	Date   string `json:"date"`
	Op     string `json:"op"` // remove/replace/regenerate
	ItemID string `json:"item_id,omitempty"`

	// regenerate 专用：片段端点和保留项
	FromID string   `json:"from_id,omitempty"`
	ToID   string   `json:"to_id,omitempty"`
	Pinned []string `json:"pinned,omitempty"`
}

// EditResponse 行程编辑响应
type EditResponse struct {
	Success bool           `json:"success"`
	Day     *model.DayPlan `json:"day"`
}

// Edit 对已保存行程执行编辑操作
func (h *EditHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		respondError(w, errors.InvalidInput("plan_id", "无效的行程ID格式"))
		return
	}

	record, err := h.plans.GetByID(r.Context(), planID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询行程失败"))
		return
	}
	if record == nil {
		respondError(w, errors.New(errors.CodeNotFound, "行程不存在"))
		return
	}

	day := record.DayByDate(req.Date)
	if day == nil {
		respondError(w, errors.InvalidInput("date", "行程中不存在该日期: "+req.Date))
		return
	}

	trip, err := model.NewTripContext(req.Date, model.WeatherSnapshot{}, model.TransportWalk)
	if err != nil {
		respondError(w, errors.InvalidInput("date", "日期格式无效"))
		return
	}

	catalog, appErr := h.catalogFor(r, record)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	rehydratePOIs(day, catalog)

	// 跨日已用集合：编辑当天以外所有已排 POI 保持占用
	used := model.NewUsedPOISet()
	for _, d := range record.Days {
		for _, it := range d.Attractions() {
			if it.POIID != nil {
				used.Use(*it.POIID)
			}
		}
	}

	if appErr := h.applyOp(&req, day, catalog, record, trip, used); appErr != nil {
		metrics.RecordEditOperation(req.Op, false)
		respondError(w, appErr)
		return
	}
	metrics.RecordEditOperation(req.Op, true)

	if err := h.plans.Update(r.Context(), record); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存编辑结果失败"))
		return
	}

	respondJSON(w, http.StatusOK, EditResponse{Success: true, Day: day})
}

// applyOp 分发执行编辑操作
func (h *EditHandler) applyOp(req *EditRequest, day *model.DayPlan, catalog []*model.POI, record *model.TripRecord, trip *model.TripContext, used *model.UsedPOISet) *errors.AppError {
	profile := &record.Profile

	switch req.Op {
	case OpRemove, OpReplace:
		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			return errors.InvalidInput("item_id", "无效的条目ID格式")
		}
		if req.Op == OpRemove {
			return asAppError(h.editor.RemoveItem(day, itemID, catalog, profile, trip, used))
		}
		return asAppError(h.editor.ReplaceItem(day, itemID, catalog, profile, trip, used))

	case OpRegenerate:
		fromID, err := uuid.Parse(req.FromID)
		if err != nil {
			return errors.InvalidInput("from_id", "无效的条目ID格式")
		}
		toID, err := uuid.Parse(req.ToID)
		if err != nil {
			return errors.InvalidInput("to_id", "无效的条目ID格式")
		}
		pinned := make([]uuid.UUID, 0, len(req.Pinned))
		for _, p := range req.Pinned {
			id, err := uuid.Parse(p)
			if err != nil {
				return errors.InvalidInput("pinned", "无效的条目ID格式: "+p)
			}
			pinned = append(pinned, id)
		}
		return asAppError(h.editor.RegenerateRange(day, fromID, toID, pinned, catalog, profile, trip, used))

	default:
		return errors.InvalidInput("op", "不支持的编辑操作: "+req.Op)
	}
}

// catalogFor 加载行程对应的景点目录；无目录来源时编辑仅做移除类操作
func (h *EditHandler) catalogFor(r *http.Request, record *model.TripRecord) ([]*model.POI, *errors.AppError) {
	if h.pois == nil || record.Region == "" {
		return nil, nil
	}
	catalog, err := h.pois.ListByRegion(r.Context(), record.Region)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "加载景点目录失败")
	}
	return catalog, nil
}

// rehydratePOIs 反序列化后的行程条目只带POIID，编辑前从目录补回POI指针
func rehydratePOIs(day *model.DayPlan, catalog []*model.POI) {
	if day == nil || len(catalog) == 0 {
		return
	}
	byID := make(map[uuid.UUID]*model.POI, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	for i := range day.Items {
		it := &day.Items[i]
		if it.POI == nil && it.POIID != nil {
			it.POI = byID[*it.POIID]
		}
	}
}

// asAppError 把编辑器错误归一为应用错误
func asAppError(err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "编辑操作失败")
}
