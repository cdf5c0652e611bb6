package translate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/solver"
)

// FromSolverPlan 将求解器计划还原为新的优化状态
// 每个步骤的任务/休息ID必须能解析回原始工作事件，否则本轮优化
// 结果不可用；未出现在计划中的路线原样保留
func (t *Translator) FromSolverPlan(plan *solver.Plan, src *model.OptimizationState, status model.StateStatus) (*model.OptimizationState, error) {
	if plan.Code != 0 {
		return nil, errors.TranslationFailed(fmt.Sprintf("求解器返回错误码 %d: %s", plan.Code, plan.Error))
	}

	index := indexEvents(src.Routes)

	planned := make(map[uuid.UUID]bool)
	routes := make([]*model.Route, 0, len(src.Routes))

	for i := range plan.Routes {
		planRoute := &plan.Routes[i]

		routeID, err := uuid.Parse(planRoute.VehicleID)
		if err != nil {
			return nil, errors.TranslationFailed(fmt.Sprintf("无法解析车辆ID '%s'", planRoute.VehicleID))
		}
		srcRoute := src.RouteByID(routeID)
		if srcRoute == nil {
			return nil, errors.TranslationFailed(fmt.Sprintf("车辆 '%s' 没有对应的路线", planRoute.VehicleID))
		}

		rebuilt, err := t.rebuildRoute(srcRoute, planRoute, index)
		if err != nil {
			return nil, err
		}

		planned[routeID] = true
		routes = append(routes, rebuilt)
	}

	for _, srcRoute := range src.Routes {
		if !planned[srcRoute.ID] {
			routes = append(routes, srcRoute)
		}
	}

	return src.Derive(status, routes), nil
}

// FromSingleRoutePlan 将单路线计划还原为路线
func (t *Translator) FromSingleRoutePlan(plan *solver.Plan, src *model.Route) (*model.Route, error) {
	if plan.Code != 0 {
		return nil, errors.TranslationFailed(fmt.Sprintf("求解器返回错误码 %d: %s", plan.Code, plan.Error))
	}
	if len(plan.Routes) != 1 {
		return nil, errors.TranslationFailed(fmt.Sprintf("单路线优化应返回1条路线，实际 %d 条", len(plan.Routes)))
	}
	if plan.Routes[0].VehicleID != src.ID.String() {
		return nil, errors.TranslationFailed(fmt.Sprintf("车辆 '%s' 与路线不匹配", plan.Routes[0].VehicleID))
	}

	return t.rebuildRoute(src, &plan.Routes[0], indexEvents([]*model.Route{src}))
}

// rebuildRoute 按计划步骤序列重建路线的有序事件序列
// 相邻步骤之间的行驶以Travel事件插入，时长与距离取累计值的增量
func (t *Translator) rebuildRoute(src *model.Route, planRoute *solver.PlanRoute, index map[string]model.WorkEvent) (*model.Route, error) {
	rebuilt := &model.Route{
		ID:                 src.ID,
		OfficeID:           src.OfficeID,
		AssignedPro:        src.AssignedPro,
		Capacity:           src.Capacity,
		StartLocation:      src.StartLocation,
		EndLocation:        src.EndLocation,
		TimeWindow:         src.TimeWindow,
		Events:             make(model.WorkEvents, 0, len(planRoute.Steps)),
		TotalDriveTime:     time.Duration(planRoute.Duration) * time.Second,
		TotalDriveDistance: int(planRoute.Distance),
	}

	var prevDuration, prevDistance int64

	for _, step := range planRoute.Steps {
		switch step.Type {
		case solver.StepStart, solver.StepEnd:
			driveTime := step.Duration - prevDuration
			driveDistance := step.Distance - prevDistance
			if driveTime > 0 {
				rebuilt.Events = append(rebuilt.Events, travelEvent(step.Arrival, driveTime, driveDistance))
			}
			prevDuration = step.Duration
			prevDistance = step.Distance

		case solver.StepJob, solver.StepBreak:
			driveTime := step.Duration - prevDuration
			driveDistance := step.Distance - prevDistance
			if driveTime > 0 {
				rebuilt.Events = append(rebuilt.Events, travelEvent(step.Arrival, driveTime, driveDistance))
			}
			if step.Waiting > 0 {
				rebuilt.Events = append(rebuilt.Events, waitingEvent(step.Arrival, step.Waiting))
			}

			ev, ok := index[step.ID]
			if !ok {
				return nil, errors.TranslationFailed(fmt.Sprintf("无法解析步骤ID '%s'", step.ID))
			}
			start := time.Unix(step.Arrival+step.Waiting, 0).UTC()
			rebuilt.Events = append(rebuilt.Events, placeEvent(ev, model.TimeRange{
				Start: start,
				End:   start.Add(ev.Duration()),
			}))

			prevDuration = step.Duration
			prevDistance = step.Distance

		default:
			return nil, errors.TranslationFailed(fmt.Sprintf("未知步骤类型 '%s'", step.Type))
		}
	}

	return rebuilt, nil
}

// indexEvents 对全部路线的工作事件按ID建立索引
// 优化可能把事件从一条路线移到另一条，因此索引必须跨路线
func indexEvents(routes []*model.Route) map[string]model.WorkEvent {
	index := make(map[string]model.WorkEvent)
	for _, route := range routes {
		for _, ev := range route.Events {
			index[ev.EventID().String()] = ev
		}
	}
	return index
}

// travelEvent 构建步骤之间的行驶事件
func travelEvent(arrival, seconds, meters int64) *model.Travel {
	end := time.Unix(arrival, 0).UTC()
	return &model.Travel{
		BaseEvent: model.BaseEvent{
			ID: uuid.New(),
			TimeWindow: model.TimeRange{
				Start: end.Add(-time.Duration(seconds) * time.Second),
				End:   end,
			},
			Span: time.Duration(seconds) * time.Second,
		},
		DistanceMeters: int(meters),
	}
}

// waitingEvent 构建到达后开工前的等待事件
func waitingEvent(arrival, seconds int64) *model.Waiting {
	start := time.Unix(arrival, 0).UTC()
	return &model.Waiting{
		BaseEvent: model.BaseEvent{
			ID: uuid.New(),
			TimeWindow: model.TimeRange{
				Start: start,
				End:   start.Add(time.Duration(seconds) * time.Second),
			},
			Span: time.Duration(seconds) * time.Second,
		},
	}
}

// placeEvent 按计划时间窗口复制工作事件
// 原事件保持不变，新状态持有带新窗口的副本
func placeEvent(ev model.WorkEvent, window model.TimeRange) model.WorkEvent {
	switch e := ev.(type) {
	case *model.Appointment:
		clone := *e
		clone.TimeWindow = window
		return &clone
	case *model.WorkBreak:
		clone := *e
		clone.TimeWindow = window
		return &clone
	case *model.Meeting:
		clone := *e
		clone.TimeWindow = window
		return &clone
	case *model.ReservedTime:
		clone := *e
		clone.TimeWindow = window
		return &clone
	case *model.Travel:
		clone := *e
		clone.TimeWindow = window
		return &clone
	case *model.Waiting:
		clone := *e
		clone.TimeWindow = window
		return &clone
	}
	return ev
}
