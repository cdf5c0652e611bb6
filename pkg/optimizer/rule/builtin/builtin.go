package builtin

import (
	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/optimizer/rule"
)

// IncreaseTravelSpeed 提升行驶速度规则
// 对所有已分配技师的车辆追加固定的速度系数增量
type IncreaseTravelSpeed struct {
	*BaseRule
	delta float64
}

// NewIncreaseTravelSpeed 创建提升行驶速度规则
func NewIncreaseTravelSpeed(delta float64) (*IncreaseTravelSpeed, error) {
	if delta <= 0 {
		return nil, errors.RuleConfigInvalid("提升行驶速度", "速度增量必须大于0")
	}
	return &IncreaseTravelSpeed{
		BaseRule: NewBaseRule("提升行驶速度", rule.TypeIncreaseTravelSpeed),
		delta:    delta,
	}, nil
}

// Delta 返回速度系数增量
func (r *IncreaseTravelSpeed) Delta() float64 {
	return r.delta
}

// IncreaseTravelSpeedForUnderutilizedRoutes 低利用率路线提速规则
// 仅对利用率低于阈值的路线所属车辆追加速度系数增量
type IncreaseTravelSpeedForUnderutilizedRoutes struct {
	*BaseRule
	delta            float64
	thresholdPercent int
}

// NewIncreaseTravelSpeedForUnderutilizedRoutes 创建低利用率路线提速规则
func NewIncreaseTravelSpeedForUnderutilizedRoutes(delta float64, thresholdPercent int) (*IncreaseTravelSpeedForUnderutilizedRoutes, error) {
	if delta <= 0 {
		return nil, errors.RuleConfigInvalid("低利用率路线提速", "速度增量必须大于0")
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		return nil, errors.RuleConfigInvalid("低利用率路线提速", "利用率阈值必须在 (0, 100] 范围内")
	}
	return &IncreaseTravelSpeedForUnderutilizedRoutes{
		BaseRule:         NewBaseRule("低利用率路线提速", rule.TypeIncreaseTravelSpeedForUnderutilizedRoutes),
		delta:            delta,
		thresholdPercent: thresholdPercent,
	}, nil
}

// Delta 返回速度系数增量
func (r *IncreaseTravelSpeedForUnderutilizedRoutes) Delta() float64 {
	return r.delta
}

// ThresholdPercent 返回利用率阈值（百分比）
func (r *IncreaseTravelSpeedForUnderutilizedRoutes) ThresholdPercent() int {
	return r.thresholdPercent
}

// ExtendRouteCapacity 扩展路线容量规则
// 在转换为求解器输入之前对每条路线的容量追加固定增量，
// 由编排器在转换前施加，无需对应的求解器字段改写
type ExtendRouteCapacity struct {
	*BaseRule
	extra int
}

// NewExtendRouteCapacity 创建扩展路线容量规则
func NewExtendRouteCapacity(extra int) (*ExtendRouteCapacity, error) {
	if extra <= 0 {
		return nil, errors.RuleConfigInvalid("扩展路线容量", "容量增量必须大于0")
	}
	return &ExtendRouteCapacity{
		BaseRule: NewBaseRule("扩展路线容量", rule.TypeExtendRouteCapacity),
		extra:    extra,
	}, nil
}

// Extra 返回容量增量
func (r *ExtendRouteCapacity) Extra() int {
	return r.extra
}

// MustConsiderRoadTraffic 考虑道路交通规则
// 纯声明性规则，无对应的求解器字段改写
type MustConsiderRoadTraffic struct {
	*BaseRule
}

// NewMustConsiderRoadTraffic 创建考虑道路交通规则
func NewMustConsiderRoadTraffic() (*MustConsiderRoadTraffic, error) {
	return &MustConsiderRoadTraffic{
		BaseRule: NewBaseRule("考虑道路交通", rule.TypeMustConsiderRoadTraffic),
	}, nil
}
