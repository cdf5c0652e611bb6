// Package translate 提供领域模型与求解器线格式的双向无损转换
// 转换器无状态，可被多次优化并发复用
package translate

import (
	"time"

	"github.com/youlu/youlu/pkg/errors"
	"github.com/youlu/youlu/pkg/model"
	"github.com/youlu/youlu/pkg/solver"
)

// Translator 领域模型与求解器模型的转换器
type Translator struct{}

// NewTranslator 创建转换器
func NewTranslator() *Translator {
	return &Translator{}
}

// ToSolverInput 将优化状态转换为全量优化输入
// 允许求解器重排事件并自选到达时间
func (t *Translator) ToSolverInput(state *model.OptimizationState) (*solver.Input, error) {
	return t.toInput(state.Routes, solver.Options{Geometry: true, ChooseETA: true})
}

// ToPlanInput 将优化状态转换为规划输入
// 规划模式只在既有顺序上计算行驶时间与距离，禁止求解器重排
func (t *Translator) ToPlanInput(state *model.OptimizationState) (*solver.Input, error) {
	return t.toInput(state.Routes, solver.Options{Geometry: true, ChooseETA: false})
}

// ToSingleRouteInput 将单条路线转换为优化输入
func (t *Translator) ToSingleRouteInput(route *model.Route) (*solver.Input, error) {
	return t.toInput([]*model.Route{route}, solver.Options{Geometry: true, ChooseETA: true})
}

// toInput 构建求解器请求体
func (t *Translator) toInput(routes []*model.Route, options solver.Options) (*solver.Input, error) {
	input := &solver.Input{
		Vehicles: make([]solver.Vehicle, 0, len(routes)),
		Jobs:     make([]solver.Job, 0),
		Options:  options,
	}

	for _, route := range routes {
		vehicle, err := t.vehicleFromRoute(route)
		if err != nil {
			return nil, err
		}
		input.Vehicles = append(input.Vehicles, *vehicle)

		for _, ev := range route.Events {
			switch e := ev.(type) {
			case *model.Appointment:
				job, err := t.jobFromAppointment(e)
				if err != nil {
					return nil, err
				}
				input.Jobs = append(input.Jobs, *job)
			case *model.Meeting:
				job, err := t.jobFromMeeting(e)
				if err != nil {
					return nil, err
				}
				input.Jobs = append(input.Jobs, *job)
			}
		}
	}

	return input, nil
}

// vehicleFromRoute 路线转换为求解器车辆
// 仅当路线包含休息或预留时间时附带休息请求
func (t *Translator) vehicleFromRoute(route *model.Route) (*solver.Vehicle, error) {
	window := windowOf(route.TimeWindow)
	vehicle := &solver.Vehicle{
		ID:         route.ID.String(),
		Start:      coordOf(route.StartLocation),
		End:        coordOf(route.EndLocation),
		Capacity:   []int{route.Capacity},
		TimeWindow: &window,
	}

	if route.HasBreaks() {
		appointments := route.AppointmentCount()
		for _, ev := range route.Breaks() {
			vehicle.Breaks = append(vehicle.Breaks, t.breakFromEvent(ev, appointments))
		}
	}

	return vehicle, nil
}

// jobFromAppointment 预约转换为求解器任务
// 合成单位配送量1，用于让求解器按车辆容量跟踪路线负载
func (t *Translator) jobFromAppointment(a *model.Appointment) (*solver.Job, error) {
	if a.Location.IsZero() {
		return nil, errors.InvalidInput("location", "预约必须携带具体地理位置")
	}
	return &solver.Job{
		ID:          a.ID.String(),
		Description: a.Description,
		Skills:      skillCodes(a.Skills),
		Service:     wholeSeconds(a.Duration()),
		Delivery:    []int{1},
		Location:    coordOf(a.Location),
		Priority:    a.Priority,
		Setup:       wholeSeconds(a.SetupDuration),
		TimeWindows: []solver.TimeWindow{windowOf(a.TimeWindow)},
	}, nil
}

// jobFromMeeting 会议转换为求解器任务
func (t *Translator) jobFromMeeting(m *model.Meeting) (*solver.Job, error) {
	if m.Location.IsZero() {
		return nil, errors.InvalidInput("location", "会议必须携带具体地理位置")
	}
	return &solver.Job{
		ID:          m.ID.String(),
		Description: m.Description,
		Service:     wholeSeconds(m.Duration()),
		Delivery:    []int{1},
		Location:    coordOf(m.Location),
		TimeWindows: []solver.TimeWindow{windowOf(m.TimeWindow)},
	}, nil
}

// breakFromEvent 休息或预留时间转换为求解器休息
// 最大负载 = 路线预约数 − 休息前最少预约数；未配置最少预约数则不限制
func (t *Translator) breakFromEvent(ev model.WorkEvent, appointmentsOnRoute int) solver.Break {
	b := solver.Break{
		ID:          ev.EventID().String(),
		Service:     wholeSeconds(ev.Duration()),
		TimeWindows: []solver.TimeWindow{windowOf(ev.Window())},
	}

	switch e := ev.(type) {
	case *model.WorkBreak:
		b.Description = e.Description
		if e.MinAppointmentsBefore > 0 {
			maxLoad := appointmentsOnRoute - e.MinAppointmentsBefore
			if maxLoad < 0 {
				maxLoad = 0
			}
			b.MaxLoad = []int{maxLoad}
		}
	case *model.ReservedTime:
		b.Description = e.Description
	}

	return b
}

// coordOf 位置转换为求解器坐标（经度在前）
func coordOf(loc model.Location) solver.Coordinates {
	return solver.Coordinates{loc.Longitude, loc.Latitude}
}

// windowOf 时间范围转换为求解器时间窗口
func windowOf(tr model.TimeRange) solver.TimeWindow {
	start, end := tr.UnixWindow()
	return solver.TimeWindow{start, end}
}

// wholeSeconds 时长转换为整秒（截断小数部分）
func wholeSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// skillCodes 技能码的恒等映射
func skillCodes(skills []int) []int {
	if len(skills) == 0 {
		return nil
	}
	codes := make([]int, len(skills))
	copy(codes, skills)
	return codes
}
