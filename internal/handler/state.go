package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/youlu/youlu/internal/repository"
	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
)

// StateHandler 优化状态查询处理器
type StateHandler struct {
	states repository.StateRepositoryInterface
}

// NewStateHandler 创建优化状态查询处理器
func NewStateHandler(states repository.StateRepositoryInterface) *StateHandler {
	return &StateHandler{states: states}
}

// StateListResponse 状态列表响应
type StateListResponse struct {
	Success bool                       `json:"success"`
	Count   int                        `json:"count"`
	States  []*model.OptimizationState `json:"states"`
}

// StateResponse 单个状态响应
type StateResponse struct {
	Success bool                     `json:"success"`
	State   *model.OptimizationState `json:"state"`
}

// available 状态存储是否可用
func (h *StateHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return false
	}
	if h.states == nil {
		respondError(w, errors.New(errors.CodeInternal, "状态存储未配置"))
		return false
	}
	return true
}

// Get 获取单个优化状态
// GET /api/v1/states?state_id=...
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("state_id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的状态ID格式"))
		return
	}

	state, err := h.states.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StateResponse{Success: true, State: state})
}

// Latest 获取办事处某日最新的优化状态
// GET /api/v1/states/latest?office_id=...&date=YYYY-MM-DD
func (h *StateHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	officeID, date, appErr := officeQuery(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	state, err := h.states.GetLatest(r.Context(), officeID, date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StateResponse{Success: true, State: state})
}

// List 列出办事处某日的全部优化状态
// GET /api/v1/states/list?office_id=...&date=YYYY-MM-DD
func (h *StateHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	officeID, date, appErr := officeQuery(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	states, err := h.states.ListByOffice(r.Context(), officeID, date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StateListResponse{
		Success: true,
		Count:   len(states),
		States:  states,
	})
}

// Lineage 回溯一个状态的完整审计链路（从新到旧）
// GET /api/v1/states/lineage?state_id=...
func (h *StateHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	id, err := uuid.Parse(r.URL.Query().Get("state_id"))
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的状态ID格式"))
		return
	}

	chain, err := h.states.Lineage(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StateListResponse{
		Success: true,
		Count:   len(chain),
		States:  chain,
	})
}

// officeQuery 解析办事处与日期查询参数
func officeQuery(r *http.Request) (uuid.UUID, string, *errors.AppError) {
	officeID, err := uuid.Parse(r.URL.Query().Get("office_id"))
	if err != nil {
		return uuid.Nil, "", errors.Wrap(err, errors.CodeInvalidInput, "无效的办事处ID格式")
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		return uuid.Nil, "", errors.InvalidInput("date", "日期不能为空")
	}

	return officeID, date, nil
}
