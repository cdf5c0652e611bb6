package validator

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youlu/youlu/pkg/model"
)

var dayStart = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func eventAt(offset time.Duration, span time.Duration) model.BaseEvent {
	start := dayStart.Add(offset)
	return model.BaseEvent{
		ID:         uuid.New(),
		TimeWindow: model.TimeRange{Start: start, End: start.Add(span)},
		Span:       span,
	}
}

func routeOf(events ...model.WorkEvent) *model.Route {
	return &model.Route{
		ID:       uuid.New(),
		OfficeID: uuid.New(),
		Capacity: 10,
		Events:   events,
	}
}

func TestLongInactivity(t *testing.T) {
	tests := []struct {
		name    string
		waiting time.Duration
		want    bool
	}{
		{"59分钟合规", 59 * time.Minute, true},
		{"60分钟违规", 60 * time.Minute, false},
		{"61分钟违规", 61 * time.Minute, false},
	}

	v := NewLongInactivity()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := routeOf(
				&model.Appointment{BaseEvent: eventAt(0, 30*time.Minute)},
				&model.Waiting{BaseEvent: eventAt(time.Hour, tt.waiting)},
			)
			if got := v.Validate(route); got != tt.want {
				t.Errorf("Validate() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestLongInactivity_NoWaiting(t *testing.T) {
	v := NewLongInactivity()
	route := routeOf(&model.Appointment{BaseEvent: eventAt(0, 30*time.Minute)})
	if !v.Validate(route) {
		t.Error("没有等待事件的路线应合规")
	}
}

func TestInactivityBeforeFirstAppointment(t *testing.T) {
	v := NewInactivityBeforeFirstAppointment()

	tests := []struct {
		name   string
		events []model.WorkEvent
		want   bool
	}{
		{
			name: "首个预约前等待21分钟违规",
			events: []model.WorkEvent{
				&model.Waiting{BaseEvent: eventAt(0, 21*time.Minute)},
				&model.Appointment{BaseEvent: eventAt(30*time.Minute, time.Hour)},
			},
			want: false,
		},
		{
			name: "首个预约前等待19分钟合规",
			events: []model.WorkEvent{
				&model.Waiting{BaseEvent: eventAt(0, 19*time.Minute)},
				&model.Appointment{BaseEvent: eventAt(30*time.Minute, time.Hour)},
			},
			want: true,
		},
		{
			name: "首个预约后等待21分钟合规",
			events: []model.WorkEvent{
				&model.Appointment{BaseEvent: eventAt(0, time.Hour)},
				&model.Waiting{BaseEvent: eventAt(2*time.Hour, 21*time.Minute)},
			},
			want: true,
		},
		{
			name: "没有预约合规",
			events: []model.WorkEvent{
				&model.Waiting{BaseEvent: eventAt(0, time.Hour)},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(routeOf(tt.events...)); got != tt.want {
				t.Errorf("Validate() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestTwoBreaksInARow(t *testing.T) {
	v := NewTwoBreaksInARow()

	breakAt := func(offset time.Duration) *model.WorkBreak {
		return &model.WorkBreak{BaseEvent: eventAt(offset, 30*time.Minute)}
	}

	tests := []struct {
		name   string
		events []model.WorkEvent
		want   bool
	}{
		{
			name:   "相邻两次休息违规",
			events: []model.WorkEvent{breakAt(0), breakAt(30 * time.Minute)},
			want:   false,
		},
		{
			name: "休息之间有预约合规",
			events: []model.WorkEvent{
				breakAt(0),
				&model.Appointment{BaseEvent: eventAt(time.Hour, time.Hour)},
				breakAt(3 * time.Hour),
			},
			want: true,
		},
		{
			name: "休息之间有行驶合规",
			events: []model.WorkEvent{
				breakAt(0),
				&model.Travel{BaseEvent: eventAt(time.Hour, 15*time.Minute)},
				breakAt(2 * time.Hour),
			},
			want: true,
		},
		{
			name: "休息之间有等待合规",
			events: []model.WorkEvent{
				breakAt(0),
				&model.Waiting{BaseEvent: eventAt(time.Hour, 15*time.Minute)},
				breakAt(2 * time.Hour),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(routeOf(tt.events...)); got != tt.want {
				t.Errorf("Validate() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestRegister_Validate(t *testing.T) {
	register := NewRegister()

	// 同时触发长空闲与连续休息
	route := routeOf(
		&model.WorkBreak{BaseEvent: eventAt(0, 30*time.Minute)},
		&model.WorkBreak{BaseEvent: eventAt(30*time.Minute, 30*time.Minute)},
		&model.Waiting{BaseEvent: eventAt(time.Hour, 90*time.Minute)},
	)

	violations, err := register.Validate(route)
	if err != nil {
		t.Fatalf("Validate() 失败: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("违规数 = %d, expected 2: %v", len(violations), violations)
	}
}

func TestRegister_ValidateState(t *testing.T) {
	register := NewRegister()

	clean := routeOf(&model.Appointment{BaseEvent: eventAt(0, time.Hour)})
	dirty := routeOf(
		&model.WorkBreak{BaseEvent: eventAt(0, 30*time.Minute)},
		&model.WorkBreak{BaseEvent: eventAt(30*time.Minute, 30*time.Minute)},
	)

	state := model.NewState(uuid.New(), "2026-03-02", model.StatusPost, []*model.Route{clean, dirty})

	result, err := register.ValidateState(state)
	if err != nil {
		t.Fatalf("ValidateState() 失败: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("有违规的路线数 = %d, expected 1", len(result))
	}
	if _, ok := result[dirty.ID.String()]; !ok {
		t.Error("违规路线未出现在结果中")
	}
}
