package caster

import (
	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/optimizer/rule"
	"github.com/youlu/youlu/pkg/optimizer/rule/builtin"
	"github.com/youlu/youlu/pkg/solver"
)

// TravelSpeedCaster 行驶速度施放器
// 对每辆有技师坐镇的车辆追加规则指定的速度系数增量
type TravelSpeedCaster struct{}

// NewTravelSpeedCaster 创建行驶速度施放器
func NewTravelSpeedCaster() *TravelSpeedCaster {
	return &TravelSpeedCaster{}
}

// RuleType 返回该施放器处理的规则类型
func (c *TravelSpeedCaster) RuleType() rule.Type {
	return rule.TypeIncreaseTravelSpeed
}

// Cast 将规则效果改写到求解器输入上
func (c *TravelSpeedCaster) Cast(input *solver.Input, state *model.OptimizationState, r rule.Rule) *solver.Input {
	speedRule, ok := r.(*builtin.IncreaseTravelSpeed)
	if !ok {
		return input
	}

	for i := range input.Vehicles {
		route := routeOfVehicle(state, input.Vehicles[i].ID)
		if route == nil || route.AssignedPro == nil {
			continue
		}
		bumpSpeed(&input.Vehicles[i], speedRule.Delta())
	}
	return input
}

// TravelSpeedForUnderutilizedRoutesCaster 低利用率路线提速施放器
// 先在施放前的优化状态上求出利用率低于阈值的技师集合，
// 再只对这些技师所属车辆追加速度增量
type TravelSpeedForUnderutilizedRoutesCaster struct{}

// NewTravelSpeedForUnderutilizedRoutesCaster 创建低利用率路线提速施放器
func NewTravelSpeedForUnderutilizedRoutesCaster() *TravelSpeedForUnderutilizedRoutesCaster {
	return &TravelSpeedForUnderutilizedRoutesCaster{}
}

// RuleType 返回该施放器处理的规则类型
func (c *TravelSpeedForUnderutilizedRoutesCaster) RuleType() rule.Type {
	return rule.TypeIncreaseTravelSpeedForUnderutilizedRoutes
}

// Cast 将规则效果改写到求解器输入上
func (c *TravelSpeedForUnderutilizedRoutesCaster) Cast(input *solver.Input, state *model.OptimizationState, r rule.Rule) *solver.Input {
	speedRule, ok := r.(*builtin.IncreaseTravelSpeedForUnderutilizedRoutes)
	if !ok {
		return input
	}

	underutilized := state.UnderutilizedProIDs(speedRule.ThresholdPercent())

	for i := range input.Vehicles {
		route := routeOfVehicle(state, input.Vehicles[i].ID)
		if route == nil || route.AssignedPro == nil {
			continue
		}
		if underutilized[route.AssignedPro.ID] {
			bumpSpeed(&input.Vehicles[i], speedRule.Delta())
		}
	}
	return input
}

// routeOfVehicle 根据车辆ID定位原始路线
func routeOfVehicle(state *model.OptimizationState, vehicleID string) *model.Route {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil
	}
	return state.RouteByID(id)
}

// bumpSpeed 在车辆既有速度系数上追加增量（未设置时基准为1.0）
func bumpSpeed(v *solver.Vehicle, delta float64) {
	if v.SpeedFactor == 0 {
		v.SpeedFactor = 1.0
	}
	v.SpeedFactor += delta
}
