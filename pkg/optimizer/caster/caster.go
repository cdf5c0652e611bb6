// Package caster 将业务规则的意图改写到已转换的求解器输入上
// 施放器按规则类型匹配，在注册表顺序上逐条作用于累积结果；
// 没有施放器的规则类型静默跳过
package caster

import (
	"github.com/youlu/youlu/pkg/event"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/optimizer/rule"
	"github.com/youlu/youlu/pkg/solver"
)

// Caster 业务规则施放器
type Caster interface {
	// RuleType 返回该施放器处理的规则类型
	RuleType() rule.Type

	// Cast 将规则效果改写到求解器输入上
	// 输入被原地修改并返回，供后续施放器在累积结果上继续作用
	Cast(input *solver.Input, state *model.OptimizationState, r rule.Rule) *solver.Input
}

// Set 施放器集合
// 规则类型到施放器的查找表在启动时一次建立
type Set struct {
	casters map[rule.Type]Caster
	events  *event.Dispatcher
}

// NewSet 创建施放器集合
func NewSet(events *event.Dispatcher, casters ...Caster) *Set {
	byType := make(map[rule.Type]Caster, len(casters))
	for _, c := range casters {
		byType[c.RuleType()] = c
	}
	return &Set{
		casters: byType,
		events:  events,
	}
}

// DefaultSet 创建包含全部内置施放器的集合
func DefaultSet(events *event.Dispatcher) *Set {
	return NewSet(events,
		NewTravelSpeedCaster(),
		NewTravelSpeedForUnderutilizedRoutesCaster(),
	)
}

// Apply 按注册表顺序施放全部启用规则
// 每次成功施放发布一条规则应用事件；未匹配的规则不发事件
func (s *Set) Apply(input *solver.Input, state *model.OptimizationState, rules []rule.Rule) *solver.Input {
	for _, r := range rules {
		c, ok := s.casters[r.Type()]
		if !ok {
			continue
		}

		input = c.Cast(input, state, r)

		s.events.Publish(event.Event{
			Type:     event.TypeRuleApplied,
			Rule:     string(r.Type()),
			OfficeID: state.OfficeID,
			Date:     state.Date,
			StateID:  state.ID,
		})
	}
	return input
}
