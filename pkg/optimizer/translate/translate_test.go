package translate

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/solver"
)

var dayStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func buildRoute(appointments int, withBreak bool) *model.Route {
	route := &model.Route{
		ID:       uuid.New(),
		OfficeID: uuid.New(),
		AssignedPro: &model.ServicePro{
			ID:   uuid.New(),
			Name: "张伟",
		},
		Capacity:      10,
		StartLocation: model.Location{Latitude: 40.4, Longitude: -111.8},
		EndLocation:   model.Location{Latitude: 40.4, Longitude: -111.8},
		TimeWindow:    model.TimeRange{Start: dayStart, End: dayStart.Add(9 * time.Hour)},
	}

	at := dayStart
	for i := 0; i < appointments; i++ {
		route.Events = append(route.Events, &model.Appointment{
			BaseEvent: model.BaseEvent{
				ID:         uuid.New(),
				TimeWindow: model.TimeRange{Start: at, End: at.Add(time.Hour)},
				Span:       30 * time.Minute,
			},
			Location: model.Location{Latitude: 40.5, Longitude: -111.9},
			Skills:   []int{3, 7},
			Priority: 10,
		})
		at = at.Add(time.Hour)
	}

	if withBreak {
		route.Events = append(route.Events, &model.WorkBreak{
			BaseEvent: model.BaseEvent{
				ID:         uuid.New(),
				TimeWindow: model.TimeRange{Start: at, End: at.Add(time.Hour)},
				Span:       30 * time.Minute,
			},
			MinAppointmentsBefore: 2,
		})
	}

	return route
}

func buildState(routes ...*model.Route) *model.OptimizationState {
	return model.NewState(routes[0].OfficeID, "2026-03-02", model.StatusPre, routes)
}

func TestTranslator_ToSolverInput(t *testing.T) {
	translator := NewTranslator()
	route := buildRoute(3, true)
	state := buildState(route)

	input, err := translator.ToSolverInput(state)
	if err != nil {
		t.Fatalf("ToSolverInput() 失败: %v", err)
	}

	if !input.Options.Geometry || !input.Options.ChooseETA {
		t.Errorf("优化模式选项不正确: %+v", input.Options)
	}
	if len(input.Vehicles) != 1 {
		t.Fatalf("车辆数 = %d, expected 1", len(input.Vehicles))
	}
	if len(input.Jobs) != 3 {
		t.Fatalf("任务数 = %d, expected 3", len(input.Jobs))
	}

	vehicle := input.Vehicles[0]
	if vehicle.ID != route.ID.String() {
		t.Errorf("车辆ID = %s", vehicle.ID)
	}
	if len(vehicle.Capacity) != 1 || vehicle.Capacity[0] != 10 {
		t.Errorf("车辆容量 = %v", vehicle.Capacity)
	}
	if len(vehicle.Breaks) != 1 {
		t.Fatalf("休息数 = %d, expected 1", len(vehicle.Breaks))
	}
	// 休息最大负载 = 路线预约数3 − 休息前最少预约数2
	if len(vehicle.Breaks[0].MaxLoad) != 1 || vehicle.Breaks[0].MaxLoad[0] != 1 {
		t.Errorf("休息最大负载 = %v, expected [1]", vehicle.Breaks[0].MaxLoad)
	}

	job := input.Jobs[0]
	if job.Service != 1800 {
		t.Errorf("服务时长 = %d, expected 1800", job.Service)
	}
	if len(job.Delivery) != 1 || job.Delivery[0] != 1 {
		t.Errorf("配送量 = %v, expected [1]", job.Delivery)
	}
	if job.Location.Lng() != -111.9 || job.Location.Lat() != 40.5 {
		t.Errorf("坐标 = %v, 应为[经度, 纬度]", job.Location)
	}
	if len(job.Skills) != 2 {
		t.Errorf("技能 = %v", job.Skills)
	}
}

func TestTranslator_ToPlanInput(t *testing.T) {
	translator := NewTranslator()
	state := buildState(buildRoute(2, false))

	input, err := translator.ToPlanInput(state)
	if err != nil {
		t.Fatalf("ToPlanInput() 失败: %v", err)
	}

	// 规划模式禁止求解器重排
	if input.Options.ChooseETA {
		t.Error("规划模式不应允许自选到达时间")
	}
	if !input.Options.Geometry {
		t.Error("规划模式仍需返回距离信息")
	}
}

func TestTranslator_NoBreaksNoBreakRule(t *testing.T) {
	translator := NewTranslator()
	state := buildState(buildRoute(2, false))

	input, err := translator.ToSolverInput(state)
	if err != nil {
		t.Fatalf("ToSolverInput() 失败: %v", err)
	}
	if len(input.Vehicles[0].Breaks) != 0 {
		t.Errorf("无休息的路线不应携带休息请求: %v", input.Vehicles[0].Breaks)
	}
}

func TestTranslator_MissingLocation(t *testing.T) {
	translator := NewTranslator()
	route := buildRoute(1, false)
	route.Events[0].(*model.Appointment).Location = model.Location{}
	state := buildState(route)

	if _, err := translator.ToSolverInput(state); err == nil {
		t.Fatal("缺少位置的预约应返回错误")
	}
}

func TestTranslator_RoundTrip(t *testing.T) {
	translator := NewTranslator()
	route := buildRoute(3, false)
	state := buildState(route)

	input, err := translator.ToSolverInput(state)
	if err != nil {
		t.Fatalf("ToSolverInput() 失败: %v", err)
	}

	// 构造保留全部任务ID的求解器响应（顺序反转，每步之间有行驶）
	base := dayStart.Unix()
	steps := []solver.Step{{Type: solver.StepStart, Arrival: base}}
	var cumDuration, cumDistance int64
	for i := len(input.Jobs) - 1; i >= 0; i-- {
		cumDuration += 600
		cumDistance += 5000
		steps = append(steps, solver.Step{
			Type:     solver.StepJob,
			ID:       input.Jobs[i].ID,
			Arrival:  base + cumDuration,
			Service:  input.Jobs[i].Service,
			Duration: cumDuration,
			Distance: cumDistance,
		})
	}
	cumDuration += 600
	cumDistance += 5000
	steps = append(steps, solver.Step{Type: solver.StepEnd, Arrival: base + cumDuration, Duration: cumDuration, Distance: cumDistance})

	plan := &solver.Plan{
		Routes: []solver.PlanRoute{{
			VehicleID: route.ID.String(),
			Steps:     steps,
			Duration:  cumDuration,
			Distance:  cumDistance,
		}},
	}

	newState, err := translator.FromSolverPlan(plan, state, model.StatusPost)
	if err != nil {
		t.Fatalf("FromSolverPlan() 失败: %v", err)
	}

	if newState.Status != model.StatusPost {
		t.Errorf("状态 = %s, expected post", newState.Status)
	}
	if newState.ID == state.ID {
		t.Error("新状态应有独立ID")
	}
	if newState.PreviousStateID == nil || *newState.PreviousStateID != state.ID {
		t.Error("新状态应链接到源状态")
	}

	rebuilt := newState.RouteByID(route.ID)
	if rebuilt == nil {
		t.Fatal("重建后找不到路线")
	}

	// N个预约应按响应步骤顺序完整还原
	appointments := rebuilt.Appointments()
	if len(appointments) != 3 {
		t.Fatalf("预约数 = %d, expected 3", len(appointments))
	}
	for i, a := range appointments {
		wantID := plan.Routes[0].Steps[i+1].ID
		if a.ID.String() != wantID {
			t.Errorf("预约[%d].ID = %s, expected %s", i, a.ID, wantID)
		}
	}

	// 步骤之间的行驶应以Travel事件插入（3个任务+终点 = 4段行驶）
	travels := 0
	for _, ev := range rebuilt.Events {
		if ev.Kind() == model.KindTravel {
			travels++
			if ev.Duration() != 10*time.Minute {
				t.Errorf("行驶时长 = %v, expected 10m", ev.Duration())
			}
		}
	}
	if travels != 4 {
		t.Errorf("行驶事件数 = %d, expected 4", travels)
	}

	if rebuilt.TotalDriveTime != time.Duration(cumDuration)*time.Second {
		t.Errorf("总行驶时长 = %v", rebuilt.TotalDriveTime)
	}
	if rebuilt.TotalDriveDistance != int(cumDistance) {
		t.Errorf("总行驶距离 = %d", rebuilt.TotalDriveDistance)
	}
}

func TestTranslator_UnresolvableStepID(t *testing.T) {
	translator := NewTranslator()
	route := buildRoute(1, false)
	state := buildState(route)

	plan := &solver.Plan{
		Routes: []solver.PlanRoute{{
			VehicleID: route.ID.String(),
			Steps: []solver.Step{
				{Type: solver.StepStart},
				{Type: solver.StepJob, ID: uuid.New().String()},
				{Type: solver.StepEnd},
			},
		}},
	}

	_, err := translator.FromSolverPlan(plan, state, model.StatusPost)
	if err == nil {
		t.Fatal("无法解析的步骤ID应返回转换失败")
	}
	if !errors.Is(err, errors.CodeTranslationFailed) {
		t.Errorf("错误码 = %s, expected TRANSLATION_FAILED", errors.GetCode(err))
	}
}

func TestTranslator_UnknownVehicle(t *testing.T) {
	translator := NewTranslator()
	state := buildState(buildRoute(1, false))

	plan := &solver.Plan{
		Routes: []solver.PlanRoute{{VehicleID: uuid.New().String()}},
	}

	if _, err := translator.FromSolverPlan(plan, state, model.StatusPost); err == nil {
		t.Fatal("未知车辆ID应返回转换失败")
	}
}

func TestWholeSeconds_Truncates(t *testing.T) {
	if got := wholeSeconds(90*time.Second + 900*time.Millisecond); got != 90 {
		t.Errorf("wholeSeconds() = %d, expected 90", got)
	}
}
