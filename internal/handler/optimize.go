package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/internal/metrics"
	"github.com/youlu/youlu/internal/repository"
	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/logger"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/optimizer"
	"github.com/youlu/youlu/pkg/optimizer/rule"
	"github.com/youlu/youlu/pkg/solver"
	"github.com/youlu/youlu/pkg/stats"
	"github.com/youlu/youlu/pkg/validator"
)

// OptimizeHandler 路线优化HTTP处理器
type OptimizeHandler struct {
	engine     *optimizer.Engine
	rules      *rule.Registry
	validators *validator.Register
	analyzer   *stats.RouteAnalyzer
	states     repository.StateRepositoryInterface
	metrics    *metrics.Metrics
}

// NewOptimizeHandler 创建路线优化处理器
func NewOptimizeHandler(
	engine *optimizer.Engine,
	rules *rule.Registry,
	validators *validator.Register,
	analyzer *stats.RouteAnalyzer,
	states repository.StateRepositoryInterface,
	m *metrics.Metrics,
) *OptimizeHandler {
	return &OptimizeHandler{
		engine:     engine,
		rules:      rules,
		validators: validators,
		analyzer:   analyzer,
		states:     states,
		metrics:    m,
	}
}

// OptimizeRequest 优化请求
type OptimizeRequest struct {
	OfficeID string `json:"office_id"`
	Date     string `json:"date"`

	// Simulation 模拟模式：流程与优化一致，结果不作为当日方案
	Simulation bool `json:"simulation,omitempty"`

	// UseAdditionalRules 叠加追加规则（低利用率提速、容量扩展）
	UseAdditionalRules bool `json:"use_additional_rules,omitempty"`

	Routes []RouteInput `json:"routes"`
}

// OptimizeResponse 优化响应
type OptimizeResponse struct {
	Success    bool                      `json:"success"`
	State      *model.OptimizationState `json:"state,omitempty"`
	Violations map[string][]string       `json:"violations,omitempty"`
	Quality    []*stats.QualitySummary   `json:"quality,omitempty"`
	Averages   []stats.Average           `json:"averages,omitempty"`
	Duration   string                    `json:"duration,omitempty"`
}

// Optimize 处理优化请求
// POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	preState, appErr := h.buildState(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	h.persist(r.Context(), preState)

	rules := h.rules.GeneralOptimizationRules()
	if req.UseAdditionalRules {
		rules = append(rules, h.rules.AdditionalOptimizationRules()...)
	}

	mode := "optimize"
	run := h.engine.Optimize
	if req.Simulation {
		mode = "simulate"
		run = h.engine.Simulate
	}

	started := time.Now()
	newState, err := run(r.Context(), preState, rules)
	elapsed := time.Since(started)
	h.metrics.RecordOptimization(mode, err == nil, elapsed)

	if err != nil {
		logger.Error().Err(err).
			Str("office_id", req.OfficeID).
			Str("date", req.Date).
			Msg("优化执行失败")
		respondError(w, translateSolverError(err))
		return
	}

	h.persist(r.Context(), newState)

	violations := h.validate(newState)
	summaries := h.analyzer.AnalyzeState(newState)
	h.reportQuality(newState.OfficeID, summaries)

	respondJSON(w, http.StatusOK, OptimizeResponse{
		Success:    true,
		State:      newState,
		Violations: violations,
		Quality:    summaries,
		Averages:   h.analyzer.Averages(summaries),
		Duration:   elapsed.String(),
	})
}

// Plan 处理规划请求：对既有分配计算行驶时间与距离，不做重排
// POST /api/v1/plan
func (h *OptimizeHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	preState, appErr := h.buildState(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	h.persist(r.Context(), preState)

	started := time.Now()
	newState, err := h.engine.Plan(r.Context(), preState)
	elapsed := time.Since(started)
	h.metrics.RecordOptimization("plan", err == nil, elapsed)

	if err != nil {
		logger.Error().Err(err).
			Str("office_id", req.OfficeID).
			Str("date", req.Date).
			Msg("规划执行失败")
		respondError(w, translateSolverError(err))
		return
	}

	h.persist(r.Context(), newState)

	respondJSON(w, http.StatusOK, OptimizeResponse{
		Success:    true,
		State:      newState,
		Violations: h.validate(newState),
		Duration:   elapsed.String(),
	})
}

// RouteRequest 单路线优化请求
type RouteRequest struct {
	OfficeID string     `json:"office_id"`
	Route    RouteInput `json:"route"`
}

// RouteResponse 单路线优化响应
type RouteResponse struct {
	Success    bool                  `json:"success"`
	Route      *model.Route          `json:"route,omitempty"`
	Violations []string              `json:"violations,omitempty"`
	Quality    *stats.QualitySummary `json:"quality,omitempty"`
}

// OptimizeRoute 处理单路线优化请求
// POST /api/v1/routes/optimize
func (h *OptimizeHandler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "请求体解析失败"))
		return
	}

	officeID, err := uuid.Parse(req.OfficeID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的办事处ID格式"))
		return
	}

	route, appErr := buildRoute(officeID, &req.Route)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	started := time.Now()
	optimized, err := h.engine.OptimizeSingleRoute(r.Context(), route)
	h.metrics.RecordOptimization("single_route", err == nil, time.Since(started))

	if err != nil {
		logger.Error().Err(err).
			Str("route_id", route.ID.String()).
			Msg("单路线优化失败")
		respondError(w, translateSolverError(err))
		return
	}

	violations, err := h.validators.Validate(optimized)
	if err != nil {
		respondError(w, err)
		return
	}
	for _, v := range violations {
		h.metrics.RecordViolation(v)
	}

	respondJSON(w, http.StatusOK, RouteResponse{
		Success:    true,
		Route:      optimized,
		Violations: violations,
		Quality:    h.analyzer.Analyze(optimized),
	})
}

// buildState 解析请求并构造优化前状态
func (h *OptimizeHandler) buildState(req *OptimizeRequest) (*model.OptimizationState, *errors.AppError) {
	officeID, err := uuid.Parse(req.OfficeID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的办事处ID格式")
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, errors.InvalidInput("date", "日期格式必须为YYYY-MM-DD")
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

	return model.NewState(officeID, req.Date, model.StatusPre, routes), nil
}

// persist 落库优化状态；仓储未配置或失败时仅记录日志，不阻断请求
func (h *OptimizeHandler) persist(ctx context.Context, state *model.OptimizationState) {
	if h.states == nil {
		return
	}
	if err := h.states.Create(ctx, state); err != nil {
		logger.Warn().Err(err).
			Str("state_id", state.ID.String()).
			Msg("优化状态落库失败")
	}
}

// validate 校验状态下所有路线并上报违规指标
func (h *OptimizeHandler) validate(state *model.OptimizationState) map[string][]string {
	violations, err := h.validators.ValidateState(state)
	if err != nil {
		logger.Warn().Err(err).Msg("路线校验执行失败")
		return nil
	}
	for _, list := range violations {
		for _, v := range list {
			h.metrics.RecordViolation(v)
		}
	}
	return violations
}

// reportQuality 上报办事处的平均质量评分
func (h *OptimizeHandler) reportQuality(officeID uuid.UUID, summaries []*stats.QualitySummary) {
	if len(summaries) == 0 {
		return
	}
	total := 0.0
	for _, s := range summaries {
		total += s.Rating
	}
	h.metrics.SetRouteQuality(officeID.String(), total/float64(len(summaries)))
}

// translateSolverError 将求解器客户端错误映射为应用错误
func translateSolverError(err error) error {
	if solverErr, ok := err.(*solver.Error); ok {
		return errors.Wrap(solverErr, errors.CodeSolverError, "求解器请求失败").
			WithDetails(solverErr.Message)
	}
	return err
}
