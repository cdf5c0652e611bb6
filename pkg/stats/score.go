// Package stats 提供路线质量度量与评分功能
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Score 质量评分，取值范围 [0, 5]，保留2位小数
// 构造时先四舍五入再校验范围
type Score struct {
	value float64
}

// NewScore 创建评分
func NewScore(v float64) (Score, error) {
	rounded := math.Round(v*100) / 100
	if rounded < 0 || rounded > 5 {
		return Score{}, fmt.Errorf("评分 %v 超出范围 [0, 5]", v)
	}
	return Score{value: rounded}, nil
}

// Value 返回评分数值
func (s Score) Value() float64 { return s.value }

// MarshalJSON 以数值形式序列化
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// Weight 度量权重，取值范围 [0, 1]
type Weight struct {
	value float64
}

// NewWeight 创建权重
func NewWeight(v float64) (Weight, error) {
	if v < 0 || v > 1 {
		return Weight{}, fmt.Errorf("权重 %v 超出范围 [0, 1]", v)
	}
	return Weight{value: v}, nil
}

// Value 返回权重数值
func (w Weight) Value() float64 { return w.value }

// MarshalJSON 以数值形式序列化
func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.value)
}

// maxScore 单项评分上限
const maxScore = 5.0

// Metric 一项路线质量度量
// 将原始测量值、权重与评分绑定到一个命名指标上
type Metric struct {
	Key      string  `json:"key"`
	RawValue float64 `json:"raw_value"`
	Weight   Weight  `json:"weight"`
	Score    Score   `json:"score"`
}

// NewMetric 创建度量
func NewMetric(key string, rawValue float64, weight Weight, score Score) Metric {
	return Metric{
		Key:      key,
		RawValue: rawValue,
		Weight:   weight,
		Score:    score,
	}
}

// WeightedScore 返回加权评分
func (m Metric) WeightedScore() float64 {
	return m.Weight.Value() * m.Score.Value()
}

// MaxPossibleWeightedScore 返回该度量可能的最高加权评分
func (m Metric) MaxPossibleWeightedScore() float64 {
	return m.Weight.Value() * maxScore
}

// DisplayName 返回可读名称：snake_case键逐词首字母大写
func (m Metric) DisplayName() string {
	return displayName(m.Key)
}

// Average 不带权重的键/评分对，用于汇总报表
type Average struct {
	Key   string `json:"key"`
	Score Score  `json:"score"`
}

// NewAverage 创建平均值条目
func NewAverage(key string, score Score) Average {
	return Average{Key: key, Score: score}
}

// DisplayName 返回可读名称
func (a Average) DisplayName() string {
	return displayName(a.Key)
}

// displayName 将snake_case键转换为标题格式
func displayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
