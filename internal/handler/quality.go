package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/youlu/youlu/internal/metrics"
	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/stats"
	"github.com/youlu/youlu/pkg/validator"
)

// QualityHandler 路线校验与质量分析处理器
// 不经过求解器，直接对提交的路线做规则校验与质量打分
type QualityHandler struct {
	validators *validator.Register
	analyzer   *stats.RouteAnalyzer
	metrics    *metrics.Metrics
}

// NewQualityHandler 创建路线质量处理器
func NewQualityHandler(validators *validator.Register, analyzer *stats.RouteAnalyzer, m *metrics.Metrics) *QualityHandler {
	return &QualityHandler{
		validators: validators,
		analyzer:   analyzer,
		metrics:    m,
	}
}

// RoutesRequest 路线集合请求
type RoutesRequest struct {
	OfficeID string       `json:"office_id"`
	Routes   []RouteInput `json:"routes"`
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Success    bool                `json:"success"`
	Compliant  bool                `json:"compliant"`
	Violations map[string][]string `json:"violations,omitempty"`
}

// Validate 校验路线集合
// POST /api/v1/validate
func (h *QualityHandler) Validate(w http.ResponseWriter, r *http.Request) {
	routes, appErr := h.parseRoutes(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	violations := make(map[string][]string)
	for _, route := range routes {
		found, err := h.validators.Validate(route)
		if err != nil {
			respondError(w, err)
			return
		}
		if len(found) > 0 {
			violations[route.ID.String()] = found
		}
		for _, v := range found {
			h.metrics.RecordViolation(v)
		}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{
		Success:    true,
		Compliant:  len(violations) == 0,
		Violations: violations,
	})
}

// QualityResponse 质量分析响应
type QualityResponse struct {
	Success  bool                    `json:"success"`
	Quality  []*stats.QualitySummary `json:"quality"`
	Averages []stats.Average         `json:"averages"`
}

// Quality 计算路线集合的质量度量
// POST /api/v1/quality
func (h *QualityHandler) Quality(w http.ResponseWriter, r *http.Request) {
	routes, appErr := h.parseRoutes(r)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	summaries := make([]*stats.QualitySummary, 0, len(routes))
	for _, route := range routes {
		summaries = append(summaries, h.analyzer.Analyze(route))
	}

	respondJSON(w, http.StatusOK, QualityResponse{
		Success:  true,
		Quality:  summaries,
		Averages: h.analyzer.Averages(summaries),
	})
}

// parseRoutes 解析路线集合请求
func (h *QualityHandler) parseRoutes(r *http.Request) ([]*model.Route, *errors.AppError) {
	if r.Method != http.MethodPost {
		return nil, errors.New(errors.CodeInvalidInput, "仅支持POST方法")
	}

	var req RoutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败")
	}

	officeID, err := uuid.Parse(req.OfficeID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的办事处ID格式")
	}

	if len(req.Routes) == 0 {
		return nil, errors.InvalidInput("routes", "至少需要一条路线")
	}

	routes := make([]*model.Route, 0, len(req.Routes))
	for i := range req.Routes {
		route, appErr := buildRoute(officeID, &req.Routes[i])
		if appErr != nil {
			return nil, appErr
		}
		routes = append(routes, route)
	}

	return routes, nil
}
