package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func makeAppointment(start time.Time, dur time.Duration) *Appointment {
	return &Appointment{
		BaseEvent: BaseEvent{
			ID:         uuid.New(),
			TimeWindow: TimeRange{Start: start, End: start.Add(dur)},
			Span:       dur,
		},
		Location: Location{Latitude: 40.39, Longitude: -111.84},
		Priority: 1,
	}
}

func TestRoute_Utilization(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		appointments int
		expected     int
	}{
		{"半满路线", 20, 10, 50},
		{"向上取整", 3, 1, 34},
		{"满载路线", 10, 10, 100},
		{"空路线", 10, 0, 0},
		{"容量为零", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Route{Capacity: tt.capacity}
			start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
			for i := 0; i < tt.appointments; i++ {
				r.Events = append(r.Events, makeAppointment(start.Add(time.Duration(i)*time.Hour), 30*time.Minute))
			}
			if got := r.Utilization(); got != tt.expected {
				t.Errorf("Utilization() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestRoute_FirstAppointment(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	first := makeAppointment(start.Add(time.Hour), 30*time.Minute)

	r := &Route{
		Events: WorkEvents{
			&Waiting{BaseEvent: BaseEvent{ID: uuid.New(), TimeWindow: TimeRange{Start: start, End: start.Add(time.Hour)}, Span: time.Hour}},
			first,
			makeAppointment(start.Add(2*time.Hour), 30*time.Minute),
		},
	}

	got := r.FirstAppointment()
	if got == nil || got.EventID() != first.EventID() {
		t.Error("应返回第一个预约事件")
	}
}

func TestRoute_HasBreaks(t *testing.T) {
	r := &Route{Events: WorkEvents{makeAppointment(time.Now(), time.Hour)}}
	if r.HasBreaks() {
		t.Error("无休息事件的路线应返回false")
	}

	r.Events = append(r.Events, &WorkBreak{BaseEvent: BaseEvent{ID: uuid.New(), Span: 15 * time.Minute}})
	if !r.HasBreaks() {
		t.Error("含休息事件的路线应返回true")
	}
}

func TestServicePro_CanServe(t *testing.T) {
	pro := &ServicePro{ID: uuid.New(), Name: "张伟", Skills: []int{1, 3, 5}}

	a := makeAppointment(time.Now(), time.Hour)
	a.Skills = []int{1, 3}
	if !pro.CanServe(a) {
		t.Error("技能齐备时应返回true")
	}

	a.Skills = []int{1, 2}
	if pro.CanServe(a) {
		t.Error("缺少技能时应返回false")
	}
}

func TestOptimizationState_Derive(t *testing.T) {
	state := NewState(uuid.New(), "2026-03-02", StatusPre, nil)
	derived := state.Derive(StatusPost, nil)

	if derived.ID == state.ID {
		t.Error("派生状态应有新的ID")
	}
	if derived.PreviousStateID == nil || *derived.PreviousStateID != state.ID {
		t.Error("派生状态应链接到源状态")
	}
	if derived.Status != StatusPost {
		t.Errorf("Status = %s, expected %s", derived.Status, StatusPost)
	}
	if derived.OfficeID != state.OfficeID || derived.Date != state.Date {
		t.Error("派生状态应继承办事处与日期")
	}
}

func TestOptimizationState_UnderutilizedProIDs(t *testing.T) {
	proA := &ServicePro{ID: uuid.New(), Name: "A"}
	proB := &ServicePro{ID: uuid.New(), Name: "B"}

	low := &Route{ID: uuid.New(), AssignedPro: proA, Capacity: 20}
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ { // 50%
		low.Events = append(low.Events, makeAppointment(start.Add(time.Duration(i)*time.Hour), 30*time.Minute))
	}

	high := &Route{ID: uuid.New(), AssignedPro: proB, Capacity: 10}
	for i := 0; i < 7; i++ { // 70%
		high.Events = append(high.Events, makeAppointment(start.Add(time.Duration(i)*time.Hour), 30*time.Minute))
	}

	state := NewState(uuid.New(), "2026-03-02", StatusPre, []*Route{low, high})

	ids := state.UnderutilizedProIDs(65)
	if !ids[proA.ID] {
		t.Error("利用率50%低于阈值65%，技师A应在集合中")
	}
	if ids[proB.ID] {
		t.Error("利用率70%不低于阈值65%，技师B不应在集合中")
	}
}

func TestWorkEvents_JSONRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := WorkEvents{
		makeAppointment(start, 30*time.Minute),
		&WorkBreak{BaseEvent: BaseEvent{ID: uuid.New(), Span: 15 * time.Minute}, MinAppointmentsBefore: 2},
		&Travel{BaseEvent: BaseEvent{ID: uuid.New(), Span: 10 * time.Minute}, DistanceMeters: 4200},
		&Waiting{BaseEvent: BaseEvent{ID: uuid.New(), Span: 5 * time.Minute}},
		&Meeting{BaseEvent: BaseEvent{ID: uuid.New(), Span: time.Hour}, Description: "晨会"},
		&ReservedTime{BaseEvent: BaseEvent{ID: uuid.New(), Span: 20 * time.Minute}},
	}

	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	var decoded WorkEvents
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}

	if len(decoded) != len(events) {
		t.Fatalf("事件数 = %d, expected %d", len(decoded), len(events))
	}
	for i, e := range events {
		if decoded[i].Kind() != e.Kind() {
			t.Errorf("第%d个事件类型 = %s, expected %s", i, decoded[i].Kind(), e.Kind())
		}
		if decoded[i].EventID() != e.EventID() {
			t.Errorf("第%d个事件ID不匹配", i)
		}
	}
}

func TestWorkEvents_UnmarshalUnknownKind(t *testing.T) {
	var decoded WorkEvents
	err := json.Unmarshal([]byte(`[{"kind":"lunch","data":{}}]`), &decoded)
	if err == nil {
		t.Error("未知事件类型应返回错误")
	}
}
