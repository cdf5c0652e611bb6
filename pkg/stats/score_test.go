package stats

import (
	"math"
	"testing"
)

func TestNewScore(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		want    float64
		wantErr bool
	}{
		{"下界", 0, 0, false},
		{"上界", 5, 5, false},
		{"中间值", 3.5, 3.5, false},
		{"四舍五入后落入范围", 4.996, 5.0, false},
		{"保留2位小数", 3.14159, 3.14, false},
		{"低于下界", -0.1, 0, true},
		{"高于上界", 5.1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := NewScore(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewScore(%v) 应返回错误", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewScore(%v) 失败: %v", tt.input, err)
			}
			if score.Value() != tt.want {
				t.Errorf("NewScore(%v) = %v, expected %v", tt.input, score.Value(), tt.want)
			}
		})
	}
}

func TestNewWeight(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"下界", 0, false},
		{"上界", 1, false},
		{"中间值", 0.4, false},
		{"低于下界", -0.01, true},
		{"高于上界", 1.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeight(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("NewWeight(%v) 应返回错误", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("NewWeight(%v) 失败: %v", tt.input, err)
			}
		})
	}
}

func TestMetric_WeightedScore(t *testing.T) {
	weight, err := NewWeight(0.4)
	if err != nil {
		t.Fatalf("创建权重失败: %v", err)
	}
	score, err := NewScore(3.5)
	if err != nil {
		t.Fatalf("创建评分失败: %v", err)
	}

	metric := NewMetric("route_utilization", 70, weight, score)

	if got := metric.WeightedScore(); math.Abs(got-1.4) > 1e-9 {
		t.Errorf("WeightedScore() = %v, expected 1.4", got)
	}
	if got := metric.MaxPossibleWeightedScore(); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("MaxPossibleWeightedScore() = %v, expected 2.0", got)
	}
}

func TestMetric_DisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"route_utilization", "Route Utilization"},
		{"drive_time_per_appointment", "Drive Time Per Appointment"},
		{"idle_time", "Idle Time"},
		{"rating", "Rating"},
	}

	for _, tt := range tests {
		metric := Metric{Key: tt.key}
		if got := metric.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, expected %q", tt.key, got, tt.want)
		}
	}
}
