// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/youlu/youlu/pkg/event"
)

// Metrics 指标集合
// 同时实现 event.Listener，把优化事件流转换为监控指标
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	optimizationRuns     *prometheus.CounterVec
	optimizationDuration *prometheus.HistogramVec
	solverRequests       *prometheus.CounterVec
	solverFailures       prometheus.Counter
	ruleApplications     *prometheus.CounterVec
	statesProduced       *prometheus.CounterVec
	routeViolations      *prometheus.CounterVec
	routeQuality         *prometheus.GaugeVec
}

// New 创建指标集合
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_http_requests_total",
			Help: "HTTP请求总数",
		}, []string{"method", "path", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "youlu_http_request_duration_seconds",
			Help:    "HTTP请求延迟",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "path"}),

		optimizationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_optimization_runs_total",
			Help: "优化执行次数",
		}, []string{"mode", "status"}),

		optimizationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "youlu_optimization_duration_seconds",
			Help:    "优化执行延迟",
			Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0},
		}, []string{"mode"}),

		solverRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_solver_requests_total",
			Help: "求解器HTTP请求次数",
		}, []string{"status_code"}),

		solverFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "youlu_solver_failures_total",
			Help: "求解器请求最终失败次数",
		}),

		ruleApplications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_rule_applications_total",
			Help: "业务规则应用次数",
		}, []string{"rule"}),

		statesProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_optimization_states_total",
			Help: "产出的优化状态数",
		}, []string{"status"}),

		routeViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "youlu_route_violations_total",
			Help: "路线校验违规次数",
		}, []string{"violation"}),

		routeQuality: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "youlu_route_quality_rating",
			Help: "路线质量综合评分 (0-5)",
		}, []string{"office_id"}),
	}
}

// Handler 返回指标HTTP处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Handle 实现 event.Listener 接口
func (m *Metrics) Handle(e event.Event) {
	switch e.Type {
	case event.TypeResponseReceived:
		m.solverRequests.WithLabelValues(strconv.Itoa(e.StatusCode)).Inc()
	case event.TypeRequestFailed:
		m.solverFailures.Inc()
	case event.TypeRuleApplied:
		m.ruleApplications.WithLabelValues(e.Rule).Inc()
	case event.TypeStateUpdated:
		m.statesProduced.WithLabelValues(e.Status).Inc()
	}
}

// RecordHTTPRequest 记录请求指标
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOptimization 记录优化执行指标
func (m *Metrics) RecordOptimization(mode string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.optimizationRuns.WithLabelValues(mode, status).Inc()
	m.optimizationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordViolation 记录路线校验违规
func (m *Metrics) RecordViolation(violation string) {
	m.routeViolations.WithLabelValues(violation).Inc()
}

// SetRouteQuality 设置办事处的路线质量评分
func (m *Metrics) SetRouteQuality(officeID string, rating float64) {
	m.routeQuality.WithLabelValues(officeID).Set(rating)
}
