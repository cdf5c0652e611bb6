package builtin

import (
	"github.com/youlu/youlu/pkg/optimizer/rule"
)

// Config 内置规则参数配置
type Config struct {
	// SpeedDelta 常规提速规则的速度系数增量
	SpeedDelta float64 `yaml:"speed_delta"`

	// UnderutilizedSpeedDelta 低利用率路线提速的速度系数增量
	UnderutilizedSpeedDelta float64 `yaml:"underutilized_speed_delta"`

	// UnderutilizedThreshold 低利用率判定阈值（百分比）
	UnderutilizedThreshold int `yaml:"underutilized_threshold"`

	// CapacityIncrease 追加重试时的路线容量增量
	CapacityIncrease int `yaml:"capacity_increase"`
}

// DefaultConfig 返回默认规则配置
func DefaultConfig() Config {
	return Config{
		SpeedDelta:              0.01,
		UnderutilizedSpeedDelta: 0.05,
		UnderutilizedThreshold:  65,
		CapacityIncrease:        2,
	}
}

// NewRegistry 按配置建立内置规则注册表
// 常规优化启用全局提速与交通声明；追加重试在此之上放宽容量并
// 对低利用率路线进一步提速；规划模式只保留声明性规则
func NewRegistry(cfg Config) (*rule.Registry, error) {
	general := []rule.Factory{
		func() (rule.Rule, error) { return NewMustConsiderRoadTraffic() },
		func() (rule.Rule, error) { return NewIncreaseTravelSpeed(cfg.SpeedDelta) },
	}

	additional := []rule.Factory{
		func() (rule.Rule, error) {
			return NewIncreaseTravelSpeedForUnderutilizedRoutes(cfg.UnderutilizedSpeedDelta, cfg.UnderutilizedThreshold)
		},
		func() (rule.Rule, error) { return NewExtendRouteCapacity(cfg.CapacityIncrease) },
	}

	plan := []rule.Factory{
		func() (rule.Rule, error) { return NewMustConsiderRoadTraffic() },
	}

	return rule.NewRegistry(general, additional, plan)
}
