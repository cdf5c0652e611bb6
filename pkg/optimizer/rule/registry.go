package rule

import (
	"github.com/youlu/youlu/pkg/errors"
)

// Registry 业务规则注册表
// 持有三组有序规则清单：常规优化、追加重试优化、规划模式。
// 清单顺序即施加顺序：两条规则触及同一求解器字段时，后注册者覆盖前者
type Registry struct {
	general    []Rule
	additional []Rule
	plan       []Rule
}

// NewRegistry 通过规则构造函数建立注册表
// 任一规则实例化失败即返回配置错误，调用方必须中止启动
func NewRegistry(general, additional, plan []Factory) (*Registry, error) {
	generalRules, err := build(general)
	if err != nil {
		return nil, err
	}
	additionalRules, err := build(additional)
	if err != nil {
		return nil, err
	}
	planRules, err := build(plan)
	if err != nil {
		return nil, err
	}

	return &Registry{
		general:    generalRules,
		additional: additionalRules,
		plan:       planRules,
	}, nil
}

// build 依次实例化规则
func build(factories []Factory) ([]Rule, error) {
	rules := make([]Rule, 0, len(factories))
	for _, factory := range factories {
		r, err := factory()
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok {
				return nil, appErr
			}
			return nil, errors.Wrap(err, errors.CodeRuleConfigInvalid, "规则实例化失败")
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// GeneralOptimizationRules 返回常规优化规则（有序）
func (r *Registry) GeneralOptimizationRules() []Rule {
	return r.general
}

// AdditionalOptimizationRules 返回追加重试优化规则（有序）
// 首轮优化失败后重新排队时附加启用
func (r *Registry) AdditionalOptimizationRules() []Rule {
	return r.additional
}

// GeneralPlanRules 返回规划模式规则（有序）
func (r *Registry) GeneralPlanRules() []Rule {
	return r.plan
}
