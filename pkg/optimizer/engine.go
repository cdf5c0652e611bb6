// Package optimizer 提供路线优化的编排引擎
// 引擎驱动一次完整的优化/规划/单路线循环：转换、规则施放、
// 求解器调用、结果还原与事件发布
package optimizer

import (
	"context"
	"time"

	"github.com/youlu/youlu/pkg/event"
	"github.com/youlu/youlu/pkg/logger"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/optimizer/caster"
	"github.com/youlu/youlu/pkg/optimizer/rule"
	"github.com/youlu/youlu/pkg/optimizer/rule/builtin"
	"github.com/youlu/youlu/pkg/optimizer/translate"
	"github.com/youlu/youlu/pkg/solver"
)

// Engine 优化编排引擎
// 引擎自身无可变状态，不同办事处/日期的优化可并发执行
type Engine struct {
	translator *translate.Translator
	casters    *caster.Set
	client     *solver.Client
	events     *event.Dispatcher
	log        *logger.OptimizerLogger
}

// NewEngine 创建优化引擎
func NewEngine(client *solver.Client, casters *caster.Set, events *event.Dispatcher) *Engine {
	return &Engine{
		translator: translate.NewTranslator(),
		casters:    casters,
		client:     client,
		events:     events,
		log:        logger.NewOptimizerLogger(),
	}
}

// Optimize 对优化状态执行一次全量优化
// 返回状态标记为post的新状态，失败时返回求解器或转换错误
func (e *Engine) Optimize(ctx context.Context, state *model.OptimizationState, rules []rule.Rule) (*model.OptimizationState, error) {
	return e.run(ctx, state, rules, model.StatusPost)
}

// Simulate 以模拟模式执行一次全量优化
// 与Optimize流程一致，仅结果状态标记为simulation，供方案比较使用
func (e *Engine) Simulate(ctx context.Context, state *model.OptimizationState, rules []rule.Rule) (*model.OptimizationState, error) {
	return e.run(ctx, state, rules, model.StatusSimulation)
}

// run 执行一次优化循环
func (e *Engine) run(ctx context.Context, state *model.OptimizationState, rules []rule.Rule, status model.StateStatus) (*model.OptimizationState, error) {
	started := time.Now()
	e.log.StartRun(state.ID.String(), state.OfficeID.String(), len(state.Routes), len(rules))

	prepared := e.applyPreTranslationRules(state, rules)

	input, err := e.translator.ToSolverInput(prepared)
	if err != nil {
		return nil, err
	}

	input = e.casters.Apply(input, prepared, rules)

	plan, err := e.client.Solve(ctx, &solver.Request{
		Input:    input,
		OfficeID: prepared.OfficeID,
		Date:     prepared.Date,
	})
	if err != nil {
		return nil, err
	}

	newState, err := e.translator.FromSolverPlan(plan, prepared, status)
	if err != nil {
		return nil, err
	}

	e.publishStateUpdated(newState)
	e.log.RunComplete(newState.ID.String(), time.Since(started))
	return newState, nil
}

// Plan 对既有分配计算行驶时间与距离，不做重排
// 规划模式不施放规则，结果状态标记为plan
func (e *Engine) Plan(ctx context.Context, state *model.OptimizationState) (*model.OptimizationState, error) {
	started := time.Now()
	e.log.StartRun(state.ID.String(), state.OfficeID.String(), len(state.Routes), 0)

	input, err := e.translator.ToPlanInput(state)
	if err != nil {
		return nil, err
	}

	plan, err := e.client.Solve(ctx, &solver.Request{
		Input:    input,
		OfficeID: state.OfficeID,
		Date:     state.Date,
	})
	if err != nil {
		return nil, err
	}

	newState, err := e.translator.FromSolverPlan(plan, state, model.StatusPlan)
	if err != nil {
		return nil, err
	}

	e.publishStateUpdated(newState)
	e.log.RunComplete(newState.ID.String(), time.Since(started))
	return newState, nil
}

// OptimizeSingleRoute 重新优化单条路线
func (e *Engine) OptimizeSingleRoute(ctx context.Context, route *model.Route) (*model.Route, error) {
	input, err := e.translator.ToSingleRouteInput(route)
	if err != nil {
		return nil, err
	}

	plan, err := e.client.Solve(ctx, &solver.Request{
		Input:    input,
		OfficeID: route.OfficeID,
	})
	if err != nil {
		return nil, err
	}

	return e.translator.FromSingleRoutePlan(plan, route)
}

// applyPreTranslationRules 在转换前施加不依赖求解器字段的规则
// 容量扩展直接作用在路线工作副本上；原状态保持不变
func (e *Engine) applyPreTranslationRules(state *model.OptimizationState, rules []rule.Rule) *model.OptimizationState {
	extra := 0
	for _, r := range rules {
		if capacityRule, ok := r.(*builtin.ExtendRouteCapacity); ok {
			extra += capacityRule.Extra()
			e.log.RuleApplied(string(r.Type()))
		}
	}
	if extra == 0 {
		return state
	}

	routes := make([]*model.Route, len(state.Routes))
	for i, src := range state.Routes {
		clone := *src
		clone.Capacity += extra
		routes[i] = &clone
	}

	prepared := *state
	prepared.Routes = routes
	return &prepared
}

// publishStateUpdated 发布状态更新事件
func (e *Engine) publishStateUpdated(state *model.OptimizationState) {
	e.events.Publish(event.Event{
		Type:     event.TypeStateUpdated,
		StateID:  state.ID,
		Status:   string(state.Status),
		OfficeID: state.OfficeID,
		Date:     state.Date,
	})
}
