package stats

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/model"
)

// 度量键
const (
	KeyRouteUtilization        = "route_utilization"
	KeyDriveTimePerAppointment = "drive_time_per_appointment"
	KeyIdleTime                = "idle_time"
)

// QualitySummary 一条路线的质量汇总
type QualitySummary struct {
	RouteID                  uuid.UUID `json:"route_id"`
	Metrics                  []Metric  `json:"metrics"`
	TotalWeightedScore       float64   `json:"total_weighted_score"`
	MaxPossibleWeightedScore float64   `json:"max_possible_weighted_score"`

	// Rating 归一化综合评分 (0-5)
	Rating float64 `json:"rating"`
}

// RouteAnalyzer 路线质量分析器
type RouteAnalyzer struct {
	utilizationWeight Weight
	driveTimeWeight   Weight
	idleTimeWeight    Weight

	// 人均行驶时间评分区间：低于goodDrive得满分，高于badDrive得0分
	goodDriveMinutes float64
	badDriveMinutes  float64

	// 空闲时间评分区间：超过maxIdle得0分
	maxIdleMinutes float64
}

// NewRouteAnalyzer 创建路线质量分析器
func NewRouteAnalyzer() *RouteAnalyzer {
	utilization, _ := NewWeight(0.4)
	driveTime, _ := NewWeight(0.35)
	idleTime, _ := NewWeight(0.25)

	return &RouteAnalyzer{
		utilizationWeight: utilization,
		driveTimeWeight:   driveTime,
		idleTimeWeight:    idleTime,
		goodDriveMinutes:  10,
		badDriveMinutes:   40,
		maxIdleMinutes:    120,
	}
}

// Analyze 计算一条路线的质量度量与综合评分
func (a *RouteAnalyzer) Analyze(route *model.Route) *QualitySummary {
	metrics := []Metric{
		a.utilizationMetric(route),
		a.driveTimeMetric(route),
		a.idleTimeMetric(route),
	}

	total := 0.0
	max := 0.0
	for _, m := range metrics {
		total += m.WeightedScore()
		max += m.MaxPossibleWeightedScore()
	}

	rating := 0.0
	if max > 0 {
		rating = total / max * maxScore
	}

	return &QualitySummary{
		RouteID:                  route.ID,
		Metrics:                  metrics,
		TotalWeightedScore:       total,
		MaxPossibleWeightedScore: max,
		Rating:                   rating,
	}
}

// AnalyzeState 计算一次优化状态下所有路线的质量汇总
func (a *RouteAnalyzer) AnalyzeState(state *model.OptimizationState) []*QualitySummary {
	summaries := make([]*QualitySummary, 0, len(state.Routes))
	for _, route := range state.Routes {
		summaries = append(summaries, a.Analyze(route))
	}
	return summaries
}

// Averages 按度量键汇总多条路线的平均评分
func (a *RouteAnalyzer) Averages(summaries []*QualitySummary) []Average {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	keys := make([]string, 0)

	for _, s := range summaries {
		for _, m := range s.Metrics {
			if _, seen := counts[m.Key]; !seen {
				keys = append(keys, m.Key)
			}
			sums[m.Key] += m.Score.Value()
			counts[m.Key]++
		}
	}

	averages := make([]Average, 0, len(keys))
	for _, key := range keys {
		score, err := NewScore(sums[key] / float64(counts[key]))
		if err != nil {
			continue
		}
		averages = append(averages, NewAverage(key, score))
	}
	return averages
}

// utilizationMetric 利用率度量：预约数占容量的百分比，越接近满载评分越高
func (a *RouteAnalyzer) utilizationMetric(route *model.Route) Metric {
	utilization := float64(route.Utilization())
	score := a.mustScore(math.Min(utilization, 100) / 100 * maxScore)
	return NewMetric(KeyRouteUtilization, utilization, a.utilizationWeight, score)
}

// driveTimeMetric 人均行驶时间度量：行驶总时长摊到每个预约上，越短评分越高
func (a *RouteAnalyzer) driveTimeMetric(route *model.Route) Metric {
	count := route.AppointmentCount()
	if count == 0 {
		return NewMetric(KeyDriveTimePerAppointment, 0, a.driveTimeWeight, a.mustScore(0))
	}

	perAppointment := route.TotalDriveTime.Minutes() / float64(count)
	score := a.mustScore(a.linearScore(perAppointment, a.goodDriveMinutes, a.badDriveMinutes))
	return NewMetric(KeyDriveTimePerAppointment, perAppointment, a.driveTimeWeight, score)
}

// idleTimeMetric 空闲时间度量：等待事件总时长，越短评分越高
func (a *RouteAnalyzer) idleTimeMetric(route *model.Route) Metric {
	var idle time.Duration
	for _, ev := range route.Events {
		if ev.Kind() == model.KindWaiting {
			idle += ev.Duration()
		}
	}

	minutes := idle.Minutes()
	score := a.mustScore(a.linearScore(minutes, 0, a.maxIdleMinutes))
	return NewMetric(KeyIdleTime, minutes, a.idleTimeWeight, score)
}

// linearScore 在 [good, bad] 区间上线性打分：v<=good得满分，v>=bad得0分
func (a *RouteAnalyzer) linearScore(v, good, bad float64) float64 {
	if v <= good {
		return maxScore
	}
	if v >= bad {
		return 0
	}
	return (bad - v) / (bad - good) * maxScore
}

// mustScore 构造已在范围内的评分
func (a *RouteAnalyzer) mustScore(v float64) Score {
	score, err := NewScore(math.Max(0, math.Min(maxScore, v)))
	if err != nil {
		return Score{}
	}
	return score
}
