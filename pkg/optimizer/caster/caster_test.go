package caster

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/event"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/optimizer/rule"
	"github.com/youlu/youlu/pkg/optimizer/rule/builtin"
	"github.com/youlu/youlu/pkg/solver"
)

type ruleEventRecorder struct {
	mu    sync.Mutex
	rules []string
}

func (r *ruleEventRecorder) Handle(e event.Event) {
	if e.Type != event.TypeRuleApplied {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, e.Rule)
}

func routeWithUtilization(capacity, appointments int) *model.Route {
	route := &model.Route{
		ID:       uuid.New(),
		OfficeID: uuid.New(),
		AssignedPro: &model.ServicePro{
			ID:   uuid.New(),
			Name: "李娜",
		},
		Capacity: capacity,
	}
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < appointments; i++ {
		route.Events = append(route.Events, &model.Appointment{
			BaseEvent: model.BaseEvent{
				ID:         uuid.New(),
				TimeWindow: model.TimeRange{Start: start, End: start.Add(time.Hour)},
				Span:       30 * time.Minute,
			},
			Location: model.Location{Latitude: 40.5, Longitude: -111.9},
		})
		start = start.Add(time.Hour)
	}
	return route
}

func inputForRoutes(routes []*model.Route) *solver.Input {
	input := &solver.Input{}
	for _, r := range routes {
		input.Vehicles = append(input.Vehicles, solver.Vehicle{
			ID:          r.ID.String(),
			SpeedFactor: 1.00,
		})
	}
	return input
}

func TestTravelSpeedCaster(t *testing.T) {
	assigned := routeWithUtilization(10, 5)
	unassigned := routeWithUtilization(10, 5)
	unassigned.AssignedPro = nil

	routes := []*model.Route{assigned, unassigned}
	state := model.NewState(assigned.OfficeID, "2026-03-02", model.StatusPre, routes)
	input := inputForRoutes(routes)

	speedRule, err := builtin.NewIncreaseTravelSpeed(0.01)
	if err != nil {
		t.Fatalf("创建规则失败: %v", err)
	}

	caster := NewTravelSpeedCaster()
	result := caster.Cast(input, state, speedRule)

	// 有技师的车辆从1.00提升到1.01
	if got := result.Vehicles[0].SpeedFactor; math.Abs(got-1.01) > 1e-9 {
		t.Errorf("已分配车辆速度系数 = %v, expected 1.01", got)
	}
	// 无技师的车辆不受影响
	if got := result.Vehicles[1].SpeedFactor; got != 1.00 {
		t.Errorf("未分配车辆速度系数 = %v, expected 1.00", got)
	}
}

func TestTravelSpeedForUnderutilizedRoutesCaster(t *testing.T) {
	// 容量20承载10个预约 = 50%利用率，低于阈值65
	underutilized := routeWithUtilization(20, 10)
	// 容量10承载7个预约 = 70%利用率，高于阈值
	wellUtilized := routeWithUtilization(10, 7)

	routes := []*model.Route{underutilized, wellUtilized}
	state := model.NewState(underutilized.OfficeID, "2026-03-02", model.StatusPre, routes)
	input := inputForRoutes(routes)

	speedRule, err := builtin.NewIncreaseTravelSpeedForUnderutilizedRoutes(0.05, 65)
	if err != nil {
		t.Fatalf("创建规则失败: %v", err)
	}

	caster := NewTravelSpeedForUnderutilizedRoutesCaster()
	result := caster.Cast(input, state, speedRule)

	if got := result.Vehicles[0].SpeedFactor; math.Abs(got-1.05) > 1e-9 {
		t.Errorf("低利用率车辆速度系数 = %v, expected 1.05", got)
	}
	if got := result.Vehicles[1].SpeedFactor; got != 1.00 {
		t.Errorf("高利用率车辆速度系数 = %v, expected 1.00", got)
	}
}

func TestSet_Apply(t *testing.T) {
	recorder := &ruleEventRecorder{}
	dispatcher := event.NewDispatcher()
	dispatcher.Subscribe(recorder)

	route := routeWithUtilization(20, 10)
	routes := []*model.Route{route}
	state := model.NewState(route.OfficeID, "2026-03-02", model.StatusPre, routes)
	input := inputForRoutes(routes)

	speedRule, _ := builtin.NewIncreaseTravelSpeed(0.01)
	underutilizedRule, _ := builtin.NewIncreaseTravelSpeedForUnderutilizedRoutes(0.05, 65)
	trafficRule, _ := builtin.NewMustConsiderRoadTraffic()

	set := DefaultSet(dispatcher)
	result := set.Apply(input, state, []rule.Rule{speedRule, underutilizedRule, trafficRule})

	// 两个施放器在累积结果上先后作用：1.00 + 0.01 + 0.05
	if got := result.Vehicles[0].SpeedFactor; math.Abs(got-1.06) > 1e-9 {
		t.Errorf("速度系数 = %v, expected 1.06", got)
	}

	// 仅成功施放的规则发事件；无施放器的声明性规则静默跳过
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.rules) != 2 {
		t.Fatalf("规则应用事件数 = %d, expected 2", len(recorder.rules))
	}
	if recorder.rules[0] != string(rule.TypeIncreaseTravelSpeed) {
		t.Errorf("事件[0] = %s", recorder.rules[0])
	}
	if recorder.rules[1] != string(rule.TypeIncreaseTravelSpeedForUnderutilizedRoutes) {
		t.Errorf("事件[1] = %s", recorder.rules[1])
	}
}
