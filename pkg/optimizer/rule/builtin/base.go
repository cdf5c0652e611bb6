// Package builtin 提供内置业务规则实现
package builtin

import (
	"github.com/youlu/youlu/pkg/optimizer/rule"
)

// BaseRule 规则公共字段
type BaseRule struct {
	name     string
	ruleType rule.Type
}

// NewBaseRule 创建规则基础
func NewBaseRule(name string, ruleType rule.Type) *BaseRule {
	return &BaseRule{
		name:     name,
		ruleType: ruleType,
	}
}

// Name 返回规则名称
func (r *BaseRule) Name() string {
	return r.name
}

// Type 返回规则类型
func (r *BaseRule) Type() rule.Type {
	return r.ruleType
}
