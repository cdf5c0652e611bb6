// Package rule 定义业务规则接口和注册表
// 业务规则是无状态的纯策略对象，可在多次优化之间复用
package rule

// Type 规则类型标识
type Type string

const (
	TypeIncreaseTravelSpeed                       Type = "increase_travel_speed"
	TypeIncreaseTravelSpeedForUnderutilizedRoutes Type = "increase_travel_speed_for_underutilized_routes"
	TypeExtendRouteCapacity                       Type = "extend_route_capacity"
	TypeMustConsiderRoadTraffic                   Type = "must_consider_road_traffic"
)

// Rule 业务规则接口
type Rule interface {
	// Name 返回规则名称
	Name() string

	// Type 返回规则类型
	Type() Type
}

// Factory 规则构造函数
// 参数非法时返回错误，由注册表视为致命配置错误
type Factory func() (Rule, error)
