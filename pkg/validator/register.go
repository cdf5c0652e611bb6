package validator

import (
	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/logger"
	"github.com/youlu/youlu/pkg/model"
)

// Factory 校验器构造函数
type Factory func() (RouteValidator, error)

// Register 路线校验器注册表
// 持有固定的校验器清单，按需逐个实例化
type Register struct {
	factories  []Factory
	validators []RouteValidator
	log        *logger.OptimizerLogger
}

// NewRegister 创建包含全部内置校验器的注册表
func NewRegister() *Register {
	return &Register{
		factories: []Factory{
			func() (RouteValidator, error) { return NewLongInactivity(), nil },
			func() (RouteValidator, error) { return NewInactivityBeforeFirstAppointment(), nil },
			func() (RouteValidator, error) { return NewTwoBreaksInARow(), nil },
		},
		log: logger.NewOptimizerLogger(),
	}
}

// Validators 返回全部校验器实例
// 首次调用时实例化；任一校验器实例化失败属于致命配置错误
func (r *Register) Validators() ([]RouteValidator, error) {
	if r.validators != nil {
		return r.validators, nil
	}

	validators := make([]RouteValidator, 0, len(r.factories))
	for _, factory := range r.factories {
		v, err := factory()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeRuleConfigInvalid, "校验器实例化失败")
		}
		validators = append(validators, v)
	}

	r.validators = validators
	return validators, nil
}

// Validate 运行全部校验器并收集违规描述
// 校验失败只记录和上报，不产生错误
func (r *Register) Validate(route *model.Route) ([]string, error) {
	validators, err := r.Validators()
	if err != nil {
		return nil, err
	}

	var violations []string
	for _, v := range validators {
		if !v.Validate(route) {
			violations = append(violations, v.Violation())
			r.log.RouteViolation(route.ID.String(), v.Violation())
		}
	}
	return violations, nil
}

// ValidateState 对状态下全部路线运行校验
// 返回路线ID字符串到违规描述的映射，仅包含有违规的路线
func (r *Register) ValidateState(state *model.OptimizationState) (map[string][]string, error) {
	result := make(map[string][]string)
	for _, route := range state.Routes {
		violations, err := r.Validate(route)
		if err != nil {
			return nil, err
		}
		if len(violations) > 0 {
			result[route.ID.String()] = violations
		}
	}
	return result, nil
}
